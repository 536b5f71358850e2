package user_controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/car-rental/logger"
	"github.com/joy095/car-rental/models/user_models"
	"github.com/joy095/car-rental/utils"
	"github.com/joy095/car-rental/utils/mail"
	"github.com/joy095/car-rental/utils/shared_utils"
	"github.com/redis/go-redis/v9"
)

const accessTokenTTL = 24 * time.Hour

// UserController holds dependencies for account operations.
type UserController struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
}

// NewUserController creates a new instance of UserController.
func NewUserController(db *pgxpool.Pool, rdb *redis.Client) *UserController {
	return &UserController{
		DB:    db,
		Redis: rdb,
	}
}

type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	PhoneNo  string `json:"phone_no" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" binding:"required,email"`
	OTP             string `json:"otp" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// issueOTP generates a code, stores its hash under key and dispatches it
// asynchronously with send.
func (uc *UserController) issueOTP(c *gin.Context, key string, send func(otp string) error) error {
	otp, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	if err := shared_utils.StoreOTP(c.Request.Context(), uc.Redis, key, otp); err != nil {
		return err
	}
	mail.SendAsync(func() error {
		return send(otp)
	})
	return nil
}

// Register creates an unverified account and sends a verification code.
func (uc *UserController) Register(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	user, err := user_models.NewUser(req.Name, req.Email, req.PhoneNo, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	if err := user_models.CreateUser(c.Request.Context(), uc.DB, user); err != nil {
		if errors.Is(err, user_models.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	email, name := user.Email, user.Name
	if err := uc.issueOTP(c, shared_utils.EmailVerificationOTPKey(email), func(otp string) error {
		return mail.SendVerificationOTP(email, name, otp)
	}); err != nil {
		logger.ErrorLogger.Errorf("Failed to issue verification OTP for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully, now proceed for verification",
		"user":    user,
	})
}

// ResendVerificationOTP issues a fresh verification code for an unverified
// account, superseding any live one.
func (uc *UserController) ResendVerificationOTP(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	user, err := user_models.GetUserByEmail(c.Request.Context(), uc.DB, req.Email)
	if err != nil {
		if errors.Is(err, user_models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	if user.IsVerified {
		c.JSON(http.StatusBadRequest, gin.H{"error": user_models.ErrAlreadyVerified.Error()})
		return
	}

	email, name := user.Email, user.Name
	if err := uc.issueOTP(c, shared_utils.EmailVerificationOTPKey(email), func(otp string) error {
		return mail.SendVerificationOTP(email, name, otp)
	}); err != nil {
		logger.ErrorLogger.Errorf("Failed to reissue verification OTP for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP generated successfully, now check your email"})
}

// VerifyEmail consumes the verification code and marks the account verified.
func (uc *UserController) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	ctx := c.Request.Context()

	user, err := user_models.GetUserByEmail(ctx, uc.DB, req.Email)
	if err != nil {
		if errors.Is(err, user_models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	if user.IsVerified {
		c.JSON(http.StatusBadRequest, gin.H{"error": user_models.ErrAlreadyVerified.Error()})
		return
	}

	otpKey := shared_utils.EmailVerificationOTPKey(req.Email)
	valid, err := shared_utils.VerifyOTP(ctx, uc.Redis, otpKey, req.OTP)
	if err != nil {
		if errors.Is(err, shared_utils.ErrOTPNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "OTP not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify OTP"})
		return
	}
	if !valid {
		logger.WarnLogger.Warnf("Verification OTP mismatch for %s", req.Email)
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP not found"})
		return
	}

	if err := user_models.MarkUserVerified(ctx, uc.DB, req.Email); err != nil {
		if errors.Is(err, user_models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify user"})
		return
	}

	if err := shared_utils.ClearOTP(ctx, uc.Redis, otpKey); err != nil {
		logger.ErrorLogger.Errorf("Failed to consume verification OTP for %s: %v", req.Email, err)
	}

	email, name := user.Email, user.Name
	mail.SendAsync(func() error {
		return mail.SendWelcomeEmail(email, name)
	})

	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully"})
}

// ForgotPassword issues a password reset code for a verified account.
func (uc *UserController) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	user, err := user_models.GetUserByEmail(c.Request.Context(), uc.DB, req.Email)
	if err != nil {
		if errors.Is(err, user_models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	email, name := user.Email, user.Name
	if err := uc.issueOTP(c, shared_utils.ForgotPasswordOTPKey(email), func(otp string) error {
		return mail.SendPasswordResetOTP(email, name, otp)
	}); err != nil {
		logger.ErrorLogger.Errorf("Failed to issue password reset OTP for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// ResetPassword consumes the reset code and stores the new password.
func (uc *UserController) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password confirmation does not match new password"})
		return
	}

	ctx := c.Request.Context()

	otpKey := shared_utils.ForgotPasswordOTPKey(req.Email)
	valid, err := shared_utils.VerifyOTP(ctx, uc.Redis, otpKey, req.OTP)
	if err != nil {
		if errors.Is(err, shared_utils.ErrOTPNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "OTP not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify OTP"})
		return
	}
	if !valid {
		logger.WarnLogger.Warnf("Password reset OTP mismatch for %s", req.Email)
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP not found"})
		return
	}

	if err := user_models.UpdatePassword(ctx, uc.DB, req.Email, req.NewPassword); err != nil {
		if errors.Is(err, user_models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	if err := shared_utils.ClearOTP(ctx, uc.Redis, otpKey); err != nil {
		logger.ErrorLogger.Errorf("Failed to consume password reset OTP for %s: %v", req.Email, err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// Login verifies credentials and issues a JWT access token. Only verified
// accounts may log in.
func (uc *UserController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	ctx := c.Request.Context()

	user, err := user_models.GetUserByEmail(ctx, uc.DB, req.Email)
	if err != nil {
		if errors.Is(err, user_models.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": user_models.ErrBadCredentials.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	valid, err := user_models.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !valid {
		logger.WarnLogger.Warnf("Failed login attempt for %s", req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": user_models.ErrBadCredentials.Error()})
		return
	}

	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Email not verified"})
		return
	}

	token, err := user_models.GenerateAccessToken(user, accessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "user": user})
}

// GetMyProfile returns the authenticated user's profile.
func (uc *UserController) GetMyProfile(c *gin.Context) {
	idVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	userID, ok := idVal.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	user, err := user_models.GetUserByID(c.Request.Context(), uc.DB, userID)
	if err != nil {
		if errors.Is(err, user_models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}
