package booking_controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/car-rental/logger"
	"github.com/joy095/car-rental/models/booking_models"
	"github.com/joy095/car-rental/models/car_models"
	"github.com/joy095/car-rental/utils"
	"github.com/joy095/car-rental/utils/mail"
	"github.com/joy095/car-rental/utils/shared_utils"
	"github.com/redis/go-redis/v9"
)

const dateLayout = "2006-01-02"

// BookingController holds dependencies for the booking lifecycle.
type BookingController struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
}

// NewBookingController creates a new instance of BookingController.
func NewBookingController(db *pgxpool.Pool, rdb *redis.Client) *BookingController {
	return &BookingController{
		DB:    db,
		Redis: rdb,
	}
}

type OpenBookingRequest struct {
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	CarCapacity string `json:"car_capacity" binding:"required"`
}

type SelectCarRequest struct {
	CarName string `json:"car_name" binding:"required"`
}

type ConfirmBookingRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

// AvailableCarResponse mirrors the public car listing shown while booking.
type AvailableCarResponse struct {
	CarName     string  `json:"car_name"`
	CarCapacity string  `json:"car_capacity"`
	CarRent     int     `json:"car_rent"`
	CarPicture  *string `json:"car_picture"`
	CarDetail   string  `json:"car_detail"`
}

// identityFromContext pulls the authenticated identity set by the auth middleware.
func identityFromContext(c *gin.Context) (uuid.UUID, string, string, string, bool) {
	idVal, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, "", "", "", false
	}
	userID, ok := idVal.(uuid.UUID)
	if !ok {
		return uuid.Nil, "", "", "", false
	}
	name := c.GetString("name")
	email := c.GetString("email")
	phoneNo := c.GetString("phone_no")
	if name == "" || email == "" || phoneNo == "" {
		return uuid.Nil, "", "", "", false
	}
	return userID, name, email, phoneNo, true
}

// today returns the current calendar day at midnight UTC.
func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OpenBooking starts a booking draft from a date range and capacity tier.
func (bc *BookingController) OpenBooking(c *gin.Context) {
	logger.InfoLogger.Info("Starting date and capacity selection for booking")

	userID, name, email, phoneNo, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": utils.ErrUserIDNotFound.Error()})
		return
	}

	var req OpenBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	startDate, err := time.ParseInLocation(dateLayout, req.StartDate, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date, expected YYYY-MM-DD"})
		return
	}
	endDate, err := time.ParseInLocation(dateLayout, req.EndDate, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date, expected YYYY-MM-DD"})
		return
	}

	if err := booking_models.ValidateInterval(startDate, endDate, today()); err != nil {
		logger.WarnLogger.Warnf("Invalid interval for %s: %v", email, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	exists, err := car_models.CapacityExists(ctx, bc.DB, req.CarCapacity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check car capacity"})
		return
	}
	if !exists {
		logger.WarnLogger.Warnf("No car found with capacity %q", req.CarCapacity)
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found with the given capacity"})
		return
	}

	booking, err := booking_models.NewBooking(userID, name, email, phoneNo, req.CarCapacity, startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}
	if err := booking_models.CreateBooking(ctx, bc.DB, booking); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// GetAvailableCars lists the cars free for the draft's interval and capacity.
func (bc *BookingController) GetAvailableCars(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	ctx := c.Request.Context()

	booking, err := booking_models.GetBookingByID(ctx, bc.DB, bookingID)
	if err != nil {
		if errors.Is(err, booking_models.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		return
	}

	cars, err := booking_models.GetAvailableCars(ctx, bc.DB, booking)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch available cars"})
		return
	}
	if len(cars) == 0 {
		logger.WarnLogger.Warnf("No cars available for booking %s", bookingID)
		c.JSON(http.StatusNotFound, gin.H{"error": "No cars available for the selected date range"})
		return
	}

	resp := make([]AvailableCarResponse, 0, len(cars))
	for _, car := range cars {
		resp = append(resp, AvailableCarResponse{
			CarName:     car.CarName,
			CarCapacity: car.CarCapacity,
			CarRent:     car.CarRent,
			CarPicture:  car.CarPicture,
			CarDetail:   car.CarDetail,
		})
	}

	logger.InfoLogger.Infof("Found %d available cars for booking %s", len(resp), bookingID)
	c.JSON(http.StatusOK, resp)
}

// SelectCar attaches a chosen car to the draft. At most one of several
// concurrent selections of the same car for overlapping dates wins.
func (bc *BookingController) SelectCar(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	var req SelectCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	booking, car, err := booking_models.AssignCar(c.Request.Context(), bc.DB, bookingID, req.CarName)
	if err != nil {
		switch {
		case errors.Is(err, booking_models.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid booking ID"})
		case errors.Is(err, car_models.ErrCarNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		case errors.Is(err, booking_models.ErrBookingNotInProcess):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Booking is not in process"})
		case errors.Is(err, booking_models.ErrCarTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Car is already booked for the selected dates"})
		default:
			logger.ErrorLogger.Errorf("Failed to select car for booking %s: %v", bookingID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to select car"})
		}
		return
	}

	logger.InfoLogger.Infof("Car %s assigned to booking %s", car.CarName, booking.BookingID)
	c.JSON(http.StatusOK, gin.H{
		"car_name":     car.CarName,
		"car_capacity": car.CarCapacity,
		"car_rent":     car.CarRent,
	})
}

// SendPaymentOTP computes the bill for the draft and emails a payment code.
func (bc *BookingController) SendPaymentOTP(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	ctx := c.Request.Context()

	booking, err := booking_models.GetBookingByID(ctx, bc.DB, bookingID)
	if err != nil {
		if errors.Is(err, booking_models.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		return
	}
	if err := booking.CanBill(); err != nil {
		logger.WarnLogger.Warnf("Refusing to bill booking %s in state %s", bookingID, booking.State())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if booking.CarID == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found for this booking"})
		return
	}

	car, err := car_models.GetCarByID(ctx, bc.DB, *booking.CarID)
	if err != nil {
		if errors.Is(err, car_models.ErrCarNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch car"})
		return
	}

	// A same-day interval passes draft validation but cannot be billed.
	rentalDays := booking_models.RentalDays(booking.StartDate, booking.EndDate)
	if rentalDays <= 0 {
		logger.WarnLogger.Warnf("Invalid rental period on booking %s: %d days", bookingID, rentalDays)
		c.JSON(http.StatusBadRequest, gin.H{"error": booking_models.ErrNonPositiveRental.Error()})
		return
	}

	billAmount := booking_models.ComputeBill(rentalDays, car.CarRent)
	logger.InfoLogger.Infof("Calculated bill amount %d for booking %s", billAmount, bookingID)

	if err := booking_models.SetBill(ctx, bc.DB, bookingID, car.CarRent, billAmount); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save bill"})
		return
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate OTP"})
		return
	}
	if err := shared_utils.StoreOTP(ctx, bc.Redis, shared_utils.PaymentOTPKey(booking.Email), otp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store OTP"})
		return
	}

	email, name := booking.Email, booking.Name
	mail.SendAsync(func() error {
		return mail.SendPaymentOTP(email, name, billAmount, otp)
	})

	c.JSON(http.StatusOK, gin.H{"message": "Email sent successfully. Please complete payment."})
}

// ConfirmBooking verifies the payment code and flips the pending booking to
// CONFIRMED. The code survives a failed attempt so the caller may retry.
func (bc *BookingController) ConfirmBooking(c *gin.Context) {
	var req ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	ctx := c.Request.Context()

	pending, err := booking_models.GetPendingBookingByEmail(ctx, bc.DB, req.Email)
	if err != nil {
		if errors.Is(err, booking_models.ErrNoPendingBooking) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No booking in process for this email"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		return
	}

	otpKey := shared_utils.PaymentOTPKey(req.Email)
	valid, err := shared_utils.VerifyOTP(ctx, bc.Redis, otpKey, req.OTP)
	if err != nil {
		if errors.Is(err, shared_utils.ErrOTPNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or OTP"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify OTP"})
		return
	}
	if !valid {
		logger.WarnLogger.Warnf("OTP mismatch for %s", req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or OTP"})
		return
	}

	booking, err := booking_models.ConfirmBooking(ctx, bc.DB, pending.BookingID)
	if err != nil {
		switch {
		case errors.Is(err, booking_models.ErrNoPendingBooking):
			c.JSON(http.StatusNotFound, gin.H{"error": "No booking in process for this email"})
		case errors.Is(err, booking_models.ErrCarTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Car was confirmed by another booking for these dates"})
		default:
			logger.ErrorLogger.Errorf("Failed to confirm booking %s: %v", pending.BookingID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm booking"})
		}
		return
	}

	// Consume the code only after the booking committed.
	if err := shared_utils.ClearOTP(ctx, bc.Redis, otpKey); err != nil {
		logger.ErrorLogger.Errorf("Failed to consume OTP for %s: %v", req.Email, err)
	}

	email, name := booking.Email, booking.Name
	carName := ""
	if booking.CarName != nil {
		carName = *booking.CarName
	}
	start := booking.StartDate.Format(dateLayout)
	end := booking.EndDate.Format(dateLayout)
	mail.SendAsync(func() error {
		return mail.SendBookingConfirmed(email, name, carName, start, end)
	})

	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully", "booking": booking})
}

// CancelBooking cancels a confirmed booking.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	booking, err := booking_models.CancelBooking(c.Request.Context(), bc.DB, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, booking_models.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, booking_models.ErrBookingNotConfirmed):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, booking_models.ErrAlreadyCancelled):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Booking is already cancelled"})
		default:
			logger.ErrorLogger.Errorf("Failed to cancel booking %s: %v", bookingID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	email, name := booking.Email, booking.Name
	carName := ""
	if booking.CarName != nil {
		carName = *booking.CarName
	}
	mail.SendAsync(func() error {
		return mail.SendBookingCancelled(email, name, carName)
	})

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully", "booking": booking})
}
