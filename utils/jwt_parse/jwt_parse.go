package jwt_parse

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joy095/car-rental/logger"
	"github.com/joy095/car-rental/utils"
)

// ParseJWTToken parses and validates the JWT access token and sets the
// identity claims (user_id, name, email, phone_no) in the gin context.
func ParseJWTToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.ErrorLogger.Error("No authorization header provided")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization token"})
			c.Abort()
			return
		}

		var tokenString string
		if len(authHeader) > 7 && strings.ToLower(authHeader[:7]) == "bearer " {
			tokenString = authHeader[7:]
		} else {
			logger.ErrorLogger.Error("Invalid authorization header format")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return utils.GetJWTSecret(), nil
		})

		if err != nil {
			logger.ErrorLogger.Errorf("Failed to parse JWT token: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			logger.ErrorLogger.Error("Invalid JWT claims")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		idStr, _ := claims["id"].(string)
		name, _ := claims["name"].(string)
		email, _ := claims["email"].(string)
		phoneNo, _ := claims["phone_no"].(string)

		if idStr == "" || name == "" || email == "" || phoneNo == "" {
			logger.ErrorLogger.Error("Token is missing required identity claims")
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid token: missing required fields"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(idStr)
		if err != nil {
			logger.ErrorLogger.Errorf("Invalid user id in token: %v", err)
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid token: bad user id"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("name", name)
		c.Set("email", email)
		c.Set("phone_no", phoneNo)

		c.Next()
	}
}
