package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/car-rental/config/db"
	"github.com/joy095/car-rental/controllers/car_controller"
	middleware "github.com/joy095/car-rental/middlewares"
	"github.com/joy095/car-rental/middlewares/auth"
)

func RegisterCarRoutes(router *gin.Engine) {
	carController := car_controller.NewCarController(db.DB)

	// Browsing the catalog is public
	router.GET("/cars", middleware.NewRateLimiter("30-30s", "list-cars"), carController.GetAllCars)

	// Protected routes
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/cars", middleware.NewRateLimiter("10-1m", "create-car"), carController.CreateCar)
		protected.PATCH("/cars/:id", middleware.NewRateLimiter("10-1m", "update-car"), carController.UpdateCar)
		protected.DELETE("/cars/:id", middleware.NewRateLimiter("10-1m", "delete-car"), carController.DeleteCar)
		protected.POST("/cars/:id/photo", middleware.NewRateLimiter("10-1m", "upload-car-photo"), carController.UploadPhoto)
	}
}
