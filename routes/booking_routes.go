package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/car-rental/config/db"
	"github.com/joy095/car-rental/controllers/booking_controller"
	middleware "github.com/joy095/car-rental/middlewares"
	"github.com/joy095/car-rental/middlewares/auth"
	"github.com/redis/go-redis/v9"
)

func RegisterBookingRoutes(router *gin.Engine, rdb *redis.Client) {
	bookingController := booking_controller.NewBookingController(db.DB, rdb)

	// Protected routes
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/bookings", middleware.NewRateLimiter("15-1m", "open-booking"), bookingController.OpenBooking)
		protected.GET("/bookings/:booking_id/available-cars", middleware.NewRateLimiter("30-1m", "available-cars"), bookingController.GetAvailableCars)
		protected.POST("/bookings/:booking_id/select-car", middleware.NewRateLimiter("15-1m", "select-car"), bookingController.SelectCar)
		protected.POST("/bookings/:booking_id/payment-otp", middleware.CombinedRateLimiter("payment-otp", "5-1m", "20-10m"), bookingController.SendPaymentOTP)
		protected.POST("/bookings/confirm", middleware.CombinedRateLimiter("confirm-booking", "5-1m", "20-10m"), bookingController.ConfirmBooking)
		protected.POST("/bookings/:booking_id/cancel", middleware.NewRateLimiter("10-1m", "cancel-booking"), bookingController.CancelBooking)
	}
}
