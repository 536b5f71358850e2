package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/car-rental/logger"
	"github.com/joy095/car-rental/utils"
	"github.com/joy095/car-rental/utils/jwt_parse"
)

// AuthMiddleware validates the JWT access token and guarantees the identity
// claims the booking flow relies on are present in the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		jwt_parse.ParseJWTToken()(c)
		if c.IsAborted() {
			return
		}

		if _, exists := c.Get("user_id"); !exists {
			logger.ErrorLogger.Error("User ID not found in context after JWT parsing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": utils.ErrUnauthorized.Error(),
			})
			return
		}

		c.Next()
	}
}
