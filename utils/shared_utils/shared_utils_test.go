package shared_utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestOTPKeys(t *testing.T) {
	assert.Equal(t, "payment_otp:alice@example.com", PaymentOTPKey("alice@example.com"))
	assert.Equal(t, "email_verification_otp:alice@example.com", EmailVerificationOTPKey("alice@example.com"))
	assert.Equal(t, "forgot_password_otp:alice@example.com", ForgotPasswordOTPKey("alice@example.com"))
}

func TestOTPKeysAreIndependent(t *testing.T) {
	_, rdb := testRedis(t)
	ctx := context.Background()

	// A payment code must never satisfy a verification or reset check.
	require.NoError(t, StoreOTP(ctx, rdb, PaymentOTPKey("alice@example.com"), "1234"))

	_, err := VerifyOTP(ctx, rdb, EmailVerificationOTPKey("alice@example.com"), "1234")
	assert.ErrorIs(t, err, ErrOTPNotFound)

	_, err = VerifyOTP(ctx, rdb, ForgotPasswordOTPKey("alice@example.com"), "1234")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestStoreAndVerifyOTP(t *testing.T) {
	_, rdb := testRedis(t)
	ctx := context.Background()
	key := PaymentOTPKey("alice@example.com")

	require.NoError(t, StoreOTP(ctx, rdb, key, "4321"))

	ok, err := VerifyOTP(ctx, rdb, key, "4321")
	require.NoError(t, err)
	assert.True(t, ok)

	// A wrong code fails but leaves the record in place for a retry.
	ok, err = VerifyOTP(ctx, rdb, key, "1111")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = VerifyOTP(ctx, rdb, key, "4321")
	require.NoError(t, err)
	assert.True(t, ok, "record must survive a failed attempt")
}

func TestVerifyOTPMissing(t *testing.T) {
	_, rdb := testRedis(t)

	_, err := VerifyOTP(context.Background(), rdb, PaymentOTPKey("nobody@example.com"), "1234")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestReissueSupersedesOTP(t *testing.T) {
	_, rdb := testRedis(t)
	ctx := context.Background()
	key := PaymentOTPKey("alice@example.com")

	require.NoError(t, StoreOTP(ctx, rdb, key, "1111"))
	require.NoError(t, StoreOTP(ctx, rdb, key, "2222"))

	ok, err := VerifyOTP(ctx, rdb, key, "1111")
	require.NoError(t, err)
	assert.False(t, ok, "old code must be dead after reissue")

	ok, err = VerifyOTP(ctx, rdb, key, "2222")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClearOTPConsumesCode(t *testing.T) {
	_, rdb := testRedis(t)
	ctx := context.Background()
	key := PaymentOTPKey("alice@example.com")

	require.NoError(t, StoreOTP(ctx, rdb, key, "4321"))
	require.NoError(t, ClearOTP(ctx, rdb, key))

	_, err := VerifyOTP(ctx, rdb, key, "4321")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPExpires(t *testing.T) {
	mr, rdb := testRedis(t)
	ctx := context.Background()
	key := PaymentOTPKey("alice@example.com")

	require.NoError(t, StoreOTP(ctx, rdb, key, "4321"))

	ttl := mr.TTL(key)
	assert.Equal(t, PAYMENT_OTP_EXP_MINUTES*time.Minute, ttl)

	mr.FastForward((PAYMENT_OTP_EXP_MINUTES + 1) * time.Minute)

	_, err := VerifyOTP(ctx, rdb, key, "4321")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}
