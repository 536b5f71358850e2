package user_models

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/car-rental/logger"
	"github.com/joy095/car-rental/utils"
	"golang.org/x/crypto/argon2"
)

// Argon2 parameters
const (
	Memory      = 64 * 1024
	Iterations  = 3
	Parallelism = 4
	SaltLength  = 16
	KeyLength   = 64
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrBadCredentials  = errors.New("invalid email or password")
	ErrAlreadyVerified = errors.New("email already verified")
)

// isUniqueViolation reports whether err is a unique-constraint violation
// (SQLSTATE 23505), raised when a concurrent insert wins the email race.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// User Model
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhoneNo      string    `json:"phone_no"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	IsDeleted    bool      `json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at"`
}

// generateSalt generates a secure random salt
func generateSalt(size int) ([]byte, error) {
	salt := make([]byte, size)
	_, err := rand.Read(salt)
	if err != nil {
		return nil, err
	}
	return salt, nil
}

// HashPassword hashes a password using Argon2id
func HashPassword(password string) (string, error) {
	salt, err := generateSalt(SaltLength)
	if err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, Iterations, Memory, uint8(Parallelism), KeyLength)

	saltBase64 := base64.RawStdEncoding.EncodeToString(salt)
	hashBase64 := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("%s$%s", saltBase64, hashBase64), nil
}

// VerifyPassword verifies a password against a stored hash
func VerifyPassword(password, storedHash string) (bool, error) {
	parts := strings.Split(storedHash, "$")
	if len(parts) != 2 {
		logger.ErrorLogger.Error("invalid stored hash format")
		return false, errors.New("invalid stored hash format")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[0])
	if err != nil {
		return false, err
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, err
	}

	computedHash := argon2.IDKey([]byte(password), salt, Iterations, Memory, uint8(Parallelism), KeyLength)
	if subtle.ConstantTimeCompare(computedHash, expectedHash) == 1 {
		return true, nil
	}
	return false, nil
}

// NewUser creates a User struct with a hashed password.
func NewUser(name, email, phoneNo, password string) (*User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for user: %w", err)
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		PhoneNo:      phoneNo,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		ModifiedAt:   now,
	}, nil
}

// CreateUser inserts a new user; the email must not already be registered.
func CreateUser(ctx context.Context, db *pgxpool.Pool, user *User) error {
	logger.InfoLogger.Infof("Attempting to register user %s", user.Email)

	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND is_deleted = FALSE)`,
		user.Email,
	).Scan(&exists)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to check email %s: %v", user.Email, err)
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return ErrEmailTaken
	}

	query := `
		INSERT INTO users (id, name, email, phone_no, password_hash, is_active, is_verified, is_deleted, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, FALSE, $7, $8)`

	_, err = db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PhoneNo, user.PasswordHash,
		user.IsActive, user.CreatedAt, user.ModifiedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			logger.WarnLogger.Warnf("Concurrent registration for %s lost the race", user.Email)
			return ErrEmailTaken
		}
		logger.ErrorLogger.Errorf("Failed to insert user %s: %v", user.Email, err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.InfoLogger.Infof("User %s registered successfully (%s)", user.Email, user.ID)
	return nil
}

// GetUserByEmail fetches an active, non-deleted user by email.
func GetUserByEmail(ctx context.Context, db *pgxpool.Pool, email string) (*User, error) {
	user := &User{}
	query := `
		SELECT id, name, email, phone_no, password_hash, is_active, is_verified, is_deleted, created_at, modified_at
		FROM users
		WHERE email = $1 AND is_deleted = FALSE`

	err := db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PhoneNo,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsVerified,
		&user.IsDeleted,
		&user.CreatedAt,
		&user.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch user %s: %v", email, err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return user, nil
}

// GetUserByID fetches a user by ID.
func GetUserByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*User, error) {
	user := &User{}
	query := `
		SELECT id, name, email, phone_no, password_hash, is_active, is_verified, is_deleted, created_at, modified_at
		FROM users
		WHERE id = $1 AND is_deleted = FALSE`

	err := db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PhoneNo,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsVerified,
		&user.IsDeleted,
		&user.CreatedAt,
		&user.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch user %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return user, nil
}

// MarkUserVerified flips is_verified on an active, not-yet-verified user.
func MarkUserVerified(ctx context.Context, db *pgxpool.Pool, email string) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE users SET is_verified = TRUE, modified_at = $2
		 WHERE email = $1 AND is_active = TRUE AND is_verified = FALSE AND is_deleted = FALSE`,
		email, time.Now(),
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark user %s verified: %v", email, err)
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	logger.InfoLogger.Infof("User %s verified", email)
	return nil
}

// UpdatePassword stores a new password hash for a verified user.
func UpdatePassword(ctx context.Context, db *pgxpool.Pool, email, password string) error {
	passwordHash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	cmdTag, err := db.Exec(ctx,
		`UPDATE users SET password_hash = $2, modified_at = $3
		 WHERE email = $1 AND is_active = TRUE AND is_verified = TRUE AND is_deleted = FALSE`,
		email, passwordHash, time.Now(),
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update password for %s: %v", email, err)
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	logger.InfoLogger.Infof("Password changed for %s", email)
	return nil
}

// GenerateAccessToken issues a signed JWT carrying the identity claims the
// booking flow needs (id, name, email, phone_no).
func GenerateAccessToken(user *User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":       user.ID.String(),
		"name":     user.Name,
		"email":    user.Email,
		"phone_no": user.PhoneNo,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(utils.GetJWTSecret())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to sign access token for %s: %v", user.Email, err)
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
