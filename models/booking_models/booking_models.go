package booking_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/car-rental/logger"
	"github.com/joy095/car-rental/models/car_models"
)

// Booking owns its requested interval and lifecycle flags. The car fields are
// a denormalized snapshot taken when a car is selected, kept for the
// historical record even if the car is later edited or soft-deleted.
type Booking struct {
	BookingID   uuid.UUID  `json:"booking_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	PhoneNo     string     `json:"phone_no"`
	CarID       *uuid.UUID `json:"car_id"`
	CarName     *string    `json:"car_name"`
	CarRC       *string    `json:"car_rc"`
	CarPicture  *string    `json:"car_picture"`
	CarCapacity string     `json:"car_capacity"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	CarRent     int        `json:"car_rent"`
	BillAmount  *int       `json:"bill_amount"`
	InProcess   bool       `json:"in_process"`
	IsBooked    bool       `json:"is_booked"`
	IsCancelled bool       `json:"is_cancelled"`
	BookedAt    *time.Time `json:"booked_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewBooking opens a draft for a requested interval and capacity tier.
func NewBooking(userID uuid.UUID, name, email, phoneNo, capacity string, startDate, endDate time.Time) (*Booking, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
	}
	now := time.Now()
	return &Booking{
		BookingID:   id,
		UserID:      userID,
		Name:        name,
		Email:       email,
		PhoneNo:     phoneNo,
		CarCapacity: capacity,
		StartDate:   startDate,
		EndDate:     endDate,
		InProcess:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

const bookingColumns = `booking_id, user_id, name, email, phone_no, car_id, car_name, car_rc, car_picture,
	car_capacity, start_date, end_date, car_rent, bill_amount, in_process, is_booked, is_cancelled,
	booked_at, cancelled_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	err := row.Scan(
		&b.BookingID,
		&b.UserID,
		&b.Name,
		&b.Email,
		&b.PhoneNo,
		&b.CarID,
		&b.CarName,
		&b.CarRC,
		&b.CarPicture,
		&b.CarCapacity,
		&b.StartDate,
		&b.EndDate,
		&b.CarRent,
		&b.BillAmount,
		&b.InProcess,
		&b.IsBooked,
		&b.IsCancelled,
		&b.BookedAt,
		&b.CancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateBooking inserts a freshly opened draft.
func CreateBooking(ctx context.Context, db *pgxpool.Pool, b *Booking) error {
	logger.InfoLogger.Infof("Creating booking draft %s for %s", b.BookingID, b.Email)

	query := `
		INSERT INTO bookings (booking_id, user_id, name, email, phone_no, car_capacity,
			start_date, end_date, car_rent, in_process, is_booked, is_cancelled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, TRUE, FALSE, FALSE, $9, $10)`

	_, err := db.Exec(ctx, query,
		b.BookingID, b.UserID, b.Name, b.Email, b.PhoneNo, b.CarCapacity,
		b.StartDate, b.EndDate, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert booking %s: %v", b.BookingID, err)
		return fmt.Errorf("failed to create booking: %w", err)
	}

	logger.InfoLogger.Infof("Booking draft %s created", b.BookingID)
	return nil
}

// GetBookingByID fetches a booking by its ID.
func GetBookingByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*Booking, error) {
	b, err := scanBooking(db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch booking %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}

// GetAvailableCars returns every non-deleted car of the draft's capacity tier
// that has no active (in-process or confirmed) booking overlapping the
// draft's interval. The coarse cars.is_booked flag is deliberately ignored:
// availability is always computed per interval.
func GetAvailableCars(ctx context.Context, db *pgxpool.Pool, draft *Booking) ([]car_models.Car, error) {
	query := `
		SELECT c.id, c.car_name, c.car_rc, c.car_capacity, c.car_rent, c.car_picture, c.car_detail,
		       c.is_booked, c.is_deleted, c.created_at, c.updated_at
		FROM cars c
		WHERE c.car_capacity = $1
		  AND c.is_deleted = FALSE
		  AND NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.car_id = c.id
			  AND (b.in_process = TRUE OR b.is_booked = TRUE)
			  AND b.start_date <= $3
			  AND $2 <= b.end_date
		  )
		ORDER BY c.car_name`

	rows, err := db.Query(ctx, query, draft.CarCapacity, draft.StartDate, draft.EndDate)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to query available cars for booking %s: %v", draft.BookingID, err)
		return nil, fmt.Errorf("failed to query available cars: %w", err)
	}
	defer rows.Close()

	var cars []car_models.Car
	for rows.Next() {
		var c car_models.Car
		err := rows.Scan(
			&c.ID, &c.CarName, &c.CarRC, &c.CarCapacity, &c.CarRent, &c.CarPicture,
			&c.CarDetail, &c.IsBooked, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

// AssignCar attaches a car to a draft inside a transaction. The booking row
// is locked, then the car row, so two concurrent selections of the same car
// serialize and the loser sees the winner's booking in the overlap re-check.
func AssignCar(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID, carName string) (*Booking, *car_models.Car, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := scanBooking(tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1 FOR UPDATE`, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrBookingNotFound
		}
		return nil, nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	if !booking.InProcess {
		return nil, nil, ErrBookingNotInProcess
	}

	car := &car_models.Car{}
	err = tx.QueryRow(ctx,
		`SELECT id, car_name, car_rc, car_capacity, car_rent, car_picture, car_detail, is_booked, is_deleted, created_at, updated_at
		 FROM cars WHERE car_name = $1 AND is_deleted = FALSE FOR UPDATE`, carName,
	).Scan(
		&car.ID, &car.CarName, &car.CarRC, &car.CarCapacity, &car.CarRent, &car.CarPicture,
		&car.CarDetail, &car.IsBooked, &car.IsDeleted, &car.CreatedAt, &car.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, car_models.ErrCarNotFound
		}
		return nil, nil, fmt.Errorf("database error fetching car: %w", err)
	}

	var taken int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE car_id = $1
		   AND booking_id <> $2
		   AND (in_process = TRUE OR is_booked = TRUE)
		   AND start_date <= $4
		   AND $3 <= end_date`,
		car.ID, booking.BookingID, booking.StartDate, booking.EndDate,
	).Scan(&taken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}
	if taken > 0 {
		logger.WarnLogger.Warnf("Car %s already taken for booking %s interval", car.CarName, bookingID)
		return nil, nil, ErrCarTaken
	}

	now := time.Now()
	_, err = tx.Exec(ctx,
		`UPDATE bookings SET car_id = $2, car_name = $3, car_rc = $4, car_picture = $5, updated_at = $6
		 WHERE booking_id = $1`,
		booking.BookingID, car.ID, car.CarName, car.CarRC, car.CarPicture, now,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to assign car: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit car assignment: %w", err)
	}

	booking.CarID = &car.ID
	booking.CarName = &car.CarName
	booking.CarRC = &car.CarRC
	booking.CarPicture = car.CarPicture
	booking.UpdatedAt = now

	logger.InfoLogger.Infof("Car %s assigned to booking %s", car.CarName, bookingID)
	return booking, car, nil
}

// SetBill persists the per-day rent and computed bill on the booking.
func SetBill(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID, rent, bill int) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE bookings SET car_rent = $2, bill_amount = $3, updated_at = $4 WHERE booking_id = $1`,
		bookingID, rent, bill, time.Now(),
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to set bill on booking %s: %v", bookingID, err)
		return fmt.Errorf("failed to set bill: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// GetPendingBookingByEmail returns the booking awaiting payment for an email:
// in process, not yet booked, with a car and bill attached. If several drafts
// exist the most recently updated one wins.
func GetPendingBookingByEmail(ctx context.Context, db *pgxpool.Pool, email string) (*Booking, error) {
	b, err := scanBooking(db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE email = $1
		   AND in_process = TRUE
		   AND is_booked = FALSE
		   AND car_id IS NOT NULL
		   AND bill_amount IS NOT NULL
		 ORDER BY updated_at DESC
		 LIMIT 1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoPendingBooking
		}
		logger.ErrorLogger.Errorf("Failed to fetch pending booking for %s: %v", email, err)
		return nil, fmt.Errorf("database error fetching pending booking: %w", err)
	}
	return b, nil
}

// ConfirmBooking flips a pending booking to CONFIRMED inside a transaction.
// The car row is locked and the confirmed-overlap check re-run atomically:
// selecting a car does not lock out other drafts, so this is the last gate.
func ConfirmBooking(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) (*Booking, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := scanBooking(tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1 FOR UPDATE`, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	if err := booking.CanConfirm(); err != nil {
		return nil, err
	}

	// Lock ordering matches AssignCar: booking row, then car row.
	var carID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM cars WHERE id = $1 FOR UPDATE`, *booking.CarID).Scan(&carID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, car_models.ErrCarNotFound
		}
		return nil, fmt.Errorf("database error locking car: %w", err)
	}

	var taken int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings
		 WHERE car_id = $1
		   AND booking_id <> $2
		   AND is_booked = TRUE
		   AND start_date <= $4
		   AND $3 <= end_date`,
		carID, booking.BookingID, booking.StartDate, booking.EndDate,
	).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("failed to check confirmed bookings: %w", err)
	}
	if taken > 0 {
		logger.WarnLogger.Warnf("Confirm rejected: car %s already confirmed for overlapping interval (booking %s)", carID, bookingID)
		return nil, ErrCarTaken
	}

	now := time.Now()
	booking.ApplyConfirm(now)

	_, err = tx.Exec(ctx,
		`UPDATE bookings SET is_booked = TRUE, in_process = FALSE, booked_at = $2, updated_at = $2
		 WHERE booking_id = $1`,
		booking.BookingID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE cars SET is_booked = TRUE, updated_at = $2 WHERE id = $1`, carID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update car flag: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit confirmation: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s confirmed", bookingID)
	return booking, nil
}

// CancelBooking cancels a confirmed booking inside a transaction and
// recomputes the car's coarse is_booked flag.
func CancelBooking(ctx context.Context, db *pgxpool.Pool, bookingID uuid.UUID) (*Booking, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := scanBooking(tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE booking_id = $1 FOR UPDATE`, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	if err := booking.CanCancel(); err != nil {
		return nil, err
	}

	now := time.Now()
	booking.ApplyCancel(now)

	_, err = tx.Exec(ctx,
		`UPDATE bookings SET is_cancelled = TRUE, is_booked = FALSE, in_process = FALSE, cancelled_at = $2, updated_at = $2
		 WHERE booking_id = $1`,
		booking.BookingID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	if booking.CarID != nil {
		_, err = tx.Exec(ctx,
			`UPDATE cars SET is_booked = EXISTS (
				SELECT 1 FROM bookings WHERE car_id = $1 AND is_booked = TRUE
			 ), updated_at = $2
			 WHERE id = $1`,
			*booking.CarID, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update car flag: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s cancelled", bookingID)
	return booking, nil
}
