package booking_models

import "time"

// Lifecycle states derived from the three mutually-exclusive flags plus the
// car/bill snapshot. At most one of in_process/is_booked/is_cancelled is ever
// true; the sub-states of in_process follow from what has been attached.
const (
	StateDraft           = "draft"
	StateCarSelected     = "car_selected"
	StateAwaitingPayment = "awaiting_payment"
	StateConfirmed       = "confirmed"
	StateCancelled       = "cancelled"
	StateAbandoned       = "abandoned"
)

// Overlaps reports whether two closed day intervals share at least one
// calendar day: [s1,e1] and [s2,e2] overlap iff s1 <= e2 and s2 <= e1.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// ValidateInterval checks a requested interval at draft time. A same-day
// interval (start == end) is accepted here; it is rejected later when the
// bill is computed.
func ValidateInterval(start, end, today time.Time) error {
	if start.After(end) {
		return ErrInvalidInterval
	}
	if end.Before(today) {
		return ErrPastInterval
	}
	return nil
}

// RentalDays returns the rental length in days (end - start).
func RentalDays(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

// ComputeBill returns days * rent. Callers must reject days <= 0 first.
func ComputeBill(days, rent int) int {
	return days * rent
}

// State derives the lifecycle state from the flags and snapshot.
func (b *Booking) State() string {
	switch {
	case b.IsCancelled:
		return StateCancelled
	case b.IsBooked:
		return StateConfirmed
	case !b.InProcess:
		return StateAbandoned
	case b.CarID == nil:
		return StateDraft
	case b.BillAmount == nil:
		return StateCarSelected
	default:
		return StateAwaitingPayment
	}
}

// FlagsConsistent reports whether at most one lifecycle flag is set.
func (b *Booking) FlagsConsistent() bool {
	set := 0
	for _, f := range []bool{b.InProcess, b.IsBooked, b.IsCancelled} {
		if f {
			set++
		}
	}
	return set <= 1
}

// CanBill checks the guards for computing the bill and issuing a payment
// code. Only an in-process draft may be billed; confirmed and cancelled
// bookings are a historical record and must not be mutated.
func (b *Booking) CanBill() error {
	if !b.InProcess || b.IsBooked || b.IsCancelled {
		return ErrBookingNotInProcess
	}
	return nil
}

// CanConfirm checks the guards for the AWAITING_PAYMENT -> CONFIRMED
// transition. A confirmed booking requires an assigned car and a bill.
func (b *Booking) CanConfirm() error {
	if !b.InProcess || b.IsBooked {
		return ErrNoPendingBooking
	}
	if b.CarID == nil || b.BillAmount == nil {
		return ErrNoPendingBooking
	}
	return nil
}

// ApplyConfirm flips the booking to CONFIRMED.
func (b *Booking) ApplyConfirm(now time.Time) {
	b.IsBooked = true
	b.InProcess = false
	b.BookedAt = &now
	b.UpdatedAt = now
}

// CanCancel checks the guards for cancellation. Only a confirmed booking can
// be cancelled; drafts are simply abandoned.
func (b *Booking) CanCancel() error {
	if b.IsCancelled {
		return ErrAlreadyCancelled
	}
	if !b.IsBooked {
		return ErrBookingNotConfirmed
	}
	return nil
}

// ApplyCancel flips a confirmed booking to CANCELLED.
func (b *Booking) ApplyCancel(now time.Time) {
	b.IsCancelled = true
	b.IsBooked = false
	b.InProcess = false
	b.CancelledAt = &now
	b.UpdatedAt = now
}
