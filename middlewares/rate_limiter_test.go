package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomRate(t *testing.T) {
	tests := []struct {
		in     string
		limit  int64
		period time.Duration
	}{
		{"10-2m", 10, 2 * time.Minute},
		{"30-60m", 30, 60 * time.Minute},
		{"5-1h", 5, time.Hour},
		{"20-10s", 20, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			rate, err := ParseCustomRate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.limit, rate.Limit)
			assert.Equal(t, tt.period, rate.Period)
		})
	}
}

func TestParseCustomRateInvalid(t *testing.T) {
	for _, in := range []string{"", "10", "10-", "-2m", "ten-2m", "10-2d", "10-2"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseCustomRate(in)
			assert.Error(t, err)
		})
	}
}
