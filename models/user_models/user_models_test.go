package user_models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joy095/car-rental/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotContains(t, hash, "correct horse")

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	// Each hash uses a fresh salt.
	hash2, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestVerifyPasswordBadFormat(t *testing.T) {
	_, err := VerifyPassword("anything", "not-a-valid-stored-hash")
	assert.Error(t, err)
}

func TestNewUser(t *testing.T) {
	user, err := NewUser("Alice", "alice@example.com", "1234567890", "s3cret-password")
	require.NoError(t, err)

	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "1234567890", user.PhoneNo)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "s3cret-password", user.PasswordHash)

	ok, err := VerifyPassword("s3cret-password", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}

func TestGenerateAccessToken(t *testing.T) {
	user, err := NewUser("Alice", "alice@example.com", "1234567890", "s3cret-password")
	require.NoError(t, err)

	tokenStr, err := GenerateAccessToken(user, time.Hour)
	require.NoError(t, err)

	token, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (interface{}, error) {
		return utils.GetJWTSecret(), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID.String(), claims["id"])
	assert.Equal(t, "Alice", claims["name"])
	assert.Equal(t, "alice@example.com", claims["email"])
	assert.Equal(t, "1234567890", claims["phone_no"])
}
