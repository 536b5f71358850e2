package booking_models

import "errors"

var (
	ErrInvalidInterval     = errors.New("end date must not be before start date")
	ErrPastInterval        = errors.New("scheduled time must be in the future")
	ErrNonPositiveRental   = errors.New("rental period must be at least one day")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrBookingNotInProcess = errors.New("booking is not in process")
	ErrCarTaken            = errors.New("car is already booked for the selected dates")
	ErrNoPendingBooking    = errors.New("no booking in process for this email")
	ErrBookingNotConfirmed = errors.New("booking is not confirmed")
	ErrAlreadyCancelled    = errors.New("booking is already cancelled")
)
