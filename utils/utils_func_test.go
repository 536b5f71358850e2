package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, otp, 4)

		n, err := strconv.Atoi(otp)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9999)

		seen[otp] = true
	}

	// 200 draws from 9000 values should not collapse to a handful.
	assert.Greater(t, len(seen), 100, "generated codes look non-random")
}

func TestHashOTP(t *testing.T) {
	h1 := HashOTP("1234")
	h2 := HashOTP("1234")
	h3 := HashOTP("1235")

	assert.Equal(t, h1, h2, "hash must be deterministic for lookup")
	assert.NotEqual(t, h1, h3)
	assert.NotEqual(t, "1234", h1)
	assert.Len(t, h1, 64) // 32 bytes hex-encoded
}
