package shared_utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joy095/car-rental/logger"
	"github.com/joy095/car-rental/utils"
	"github.com/redis/go-redis/v9"
)

const (
	// PAYMENT_OTP_EXP_MINUTES is how long a payment code stays valid.
	PAYMENT_OTP_EXP_MINUTES = 10
)

const (
	PAYMENT_OTP_PREFIX            = "payment_otp:"
	EMAIL_VERIFICATION_OTP_PREFIX = "email_verification_otp:"
	FORGOT_PASSWORD_OTP_PREFIX    = "forgot_password_otp:"
)

// ErrOTPNotFound is returned when an OTP is not found or expired.
var ErrOTPNotFound = errors.New("otp not found or expired")

// PaymentOTPKey builds the Redis key holding the live payment code for an email.
// One live code per email: issuing a new code overwrites the previous one.
func PaymentOTPKey(email string) string {
	return PAYMENT_OTP_PREFIX + email
}

// EmailVerificationOTPKey builds the key for the registration verification code.
func EmailVerificationOTPKey(email string) string {
	return EMAIL_VERIFICATION_OTP_PREFIX + email
}

// ForgotPasswordOTPKey builds the key for the password reset code.
func ForgotPasswordOTPKey(email string) string {
	return FORGOT_PASSWORD_OTP_PREFIX + email
}

// StoreOTP stores the argon2 hash of the code in Redis with expiration.
func StoreOTP(ctx context.Context, rdb *redis.Client, key string, otp string) error {
	hashedOTP := utils.HashOTP(otp)

	err := rdb.Set(ctx, key, hashedOTP, PAYMENT_OTP_EXP_MINUTES*time.Minute).Err()
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to store OTP with key %s: %v", key, err)
		return fmt.Errorf("failed to store OTP: %w", err)
	}
	return nil
}

// RetrieveOTP fetches the stored hash from Redis.
func RetrieveOTP(ctx context.Context, rdb *redis.Client, key string) (string, error) {
	storedHash, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrOTPNotFound
		}
		logger.ErrorLogger.Errorf("Failed to retrieve OTP for key %s: %v", key, err)
		return "", fmt.Errorf("failed to retrieve OTP: %w", err)
	}
	return storedHash, nil
}

// VerifyOTP compares a submitted code against the stored hash. The record is
// left in place on mismatch so the caller may retry with the correct code.
func VerifyOTP(ctx context.Context, rdb *redis.Client, key string, otp string) (bool, error) {
	storedHash, err := RetrieveOTP(ctx, rdb, key)
	if err != nil {
		return false, err
	}
	return utils.HashOTP(otp) == storedHash, nil
}

// ClearOTP consumes the code after successful verification.
func ClearOTP(ctx context.Context, rdb *redis.Client, key string) error {
	err := rdb.Del(ctx, key).Err()
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to clear OTP for key %s: %v", key, err)
		return fmt.Errorf("failed to clear OTP: %w", err)
	}
	return nil
}
