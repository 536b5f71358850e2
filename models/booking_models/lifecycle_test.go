package booking_models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, time.September, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical intervals", day(1), day(5), day(1), day(5), true},
		{"contained interval", day(1), day(10), day(3), day(5), true},
		{"partial overlap", day(1), day(5), day(4), day(8), true},
		{"shared boundary day", day(1), day(5), day(5), day(8), true},
		{"adjacent intervals", day(1), day(4), day(5), day(8), false},
		{"disjoint intervals", day(1), day(2), day(10), day(12), false},
		{"single day inside", day(3), day(3), day(1), day(5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// The relation is symmetric.
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestValidateInterval(t *testing.T) {
	today := day(10)

	assert.NoError(t, ValidateInterval(day(11), day(14), today))
	assert.NoError(t, ValidateInterval(day(10), day(10), today), "same-day interval is accepted at draft time")
	assert.NoError(t, ValidateInterval(day(8), day(10), today), "interval ending today is still usable")

	assert.ErrorIs(t, ValidateInterval(day(14), day(11), today), ErrInvalidInterval)
	assert.ErrorIs(t, ValidateInterval(day(2), day(5), today), ErrPastInterval)
}

func TestRentalDaysAndBill(t *testing.T) {
	assert.Equal(t, 3, RentalDays(day(1), day(4)))
	assert.Equal(t, 0, RentalDays(day(4), day(4)), "same-day rental has zero billable days")
	assert.Equal(t, 1500, ComputeBill(3, 500))
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking(uuid.New(), "Alice", "alice@example.com", "1234567890", "4", day(11), day(14))
	require.NoError(t, err)
	return b
}

func TestStateProgression(t *testing.T) {
	b := newTestBooking(t)
	assert.Equal(t, StateDraft, b.State())
	assert.True(t, b.FlagsConsistent())

	carID := uuid.New()
	b.CarID = &carID
	b.CarRent = 500
	assert.Equal(t, StateCarSelected, b.State())

	bill := 1500
	b.BillAmount = &bill
	assert.Equal(t, StateAwaitingPayment, b.State())

	b.ApplyConfirm(time.Now())
	assert.Equal(t, StateConfirmed, b.State())
	assert.True(t, b.FlagsConsistent())
	assert.NotNil(t, b.BookedAt)

	b.ApplyCancel(time.Now())
	assert.Equal(t, StateCancelled, b.State())
	assert.True(t, b.FlagsConsistent())
	assert.NotNil(t, b.CancelledAt)
}

func TestCanBillGuards(t *testing.T) {
	b := newTestBooking(t)
	carID := uuid.New()
	bill := 1500
	b.CarID = &carID
	b.BillAmount = &bill

	assert.NoError(t, b.CanBill())

	// A confirmed booking is a historical record and must not be re-billed.
	b.ApplyConfirm(time.Now())
	assert.ErrorIs(t, b.CanBill(), ErrBookingNotInProcess)

	b.ApplyCancel(time.Now())
	assert.ErrorIs(t, b.CanBill(), ErrBookingNotInProcess)

	abandoned := newTestBooking(t)
	abandoned.InProcess = false
	assert.ErrorIs(t, abandoned.CanBill(), ErrBookingNotInProcess)
}

func TestCanConfirmGuards(t *testing.T) {
	b := newTestBooking(t)

	// Draft without a car cannot be confirmed.
	assert.ErrorIs(t, b.CanConfirm(), ErrNoPendingBooking)

	carID := uuid.New()
	b.CarID = &carID
	assert.ErrorIs(t, b.CanConfirm(), ErrNoPendingBooking, "car selected but no bill yet")

	bill := 1500
	b.BillAmount = &bill
	assert.NoError(t, b.CanConfirm())

	b.ApplyConfirm(time.Now())
	assert.ErrorIs(t, b.CanConfirm(), ErrNoPendingBooking, "already confirmed")
}

func TestCanCancelGuards(t *testing.T) {
	b := newTestBooking(t)

	// A draft is abandoned, never cancelled.
	assert.ErrorIs(t, b.CanCancel(), ErrBookingNotConfirmed)

	carID := uuid.New()
	bill := 1500
	b.CarID = &carID
	b.BillAmount = &bill
	b.ApplyConfirm(time.Now())
	assert.NoError(t, b.CanCancel())

	b.ApplyCancel(time.Now())
	assert.ErrorIs(t, b.CanCancel(), ErrAlreadyCancelled, "cancelling twice is rejected")
}

func TestAbandonedState(t *testing.T) {
	b := newTestBooking(t)
	b.InProcess = false
	assert.Equal(t, StateAbandoned, b.State())
	assert.ErrorIs(t, b.CanConfirm(), ErrNoPendingBooking)
	assert.ErrorIs(t, b.CanCancel(), ErrBookingNotConfirmed)
}
