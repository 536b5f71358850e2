package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"

	"github.com/joy095/car-rental/logger"
	"golang.org/x/crypto/argon2"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Println("WARNING: JWT_SECRET environment variable not set.")
		return []byte("default-insecure-secret-only-for-development")
	}
	return []byte(secret)
}

// GenerateOTP generates a secure 4-digit code in [1000, 9999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		logger.ErrorLogger.Errorf("Error generating secure OTP: %v", err)
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

// HashOTP produces a deterministic argon2 digest of the code so only the
// hash is kept in Redis. The salt is fixed: the same code must hash to the
// same value for lookup.
func HashOTP(otp string) string {
	salt := []byte("car-rental-otp-salt")
	hashed := argon2.IDKey([]byte(otp), salt, 1, 64*1024, 4, 32)
	return fmt.Sprintf("%x", hashed)
}
