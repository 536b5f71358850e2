package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/car-rental/config/db"
	"github.com/joy095/car-rental/controllers/user_controllers"
	middleware "github.com/joy095/car-rental/middlewares"
	"github.com/joy095/car-rental/middlewares/auth"
	"github.com/redis/go-redis/v9"
)

func RegisterUserRoutes(router *gin.Engine, rdb *redis.Client) {
	userController := user_controllers.NewUserController(db.DB, rdb)

	// Public routes
	router.POST("/register", middleware.CombinedRateLimiter("register", "10-2m", "30-60m"), userController.Register)
	router.POST("/login", middleware.CombinedRateLimiter("login", "10-2m", "30-30m"), userController.Login)

	router.POST("/resend-otp", middleware.CombinedRateLimiter("resend-otp", "5-1m", "20-10m"), userController.ResendVerificationOTP)
	router.POST("/verify-email", middleware.CombinedRateLimiter("verify-email", "5-1m", "20-10m"), userController.VerifyEmail)

	router.POST("/forgot-password", middleware.NewRateLimiter("10-5m", "forgot-password"), userController.ForgotPassword)
	router.POST("/reset-password", middleware.CombinedRateLimiter("reset-password", "5-1m", "20-10m"), userController.ResetPassword)

	// Protected routes
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/profile", middleware.NewRateLimiter("15-30s", "profile"), userController.GetMyProfile)
	}
}
