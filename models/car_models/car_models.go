package car_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/car-rental/logger"
)

var (
	ErrCarNotFound    = errors.New("car not found")
	ErrDuplicateRC    = errors.New("car registration code already exists")
	ErrCarBooked      = errors.New("car is currently booked")
	ErrAlreadyDeleted = errors.New("car already deleted")
)

// isUniqueViolation reports whether err is a unique-constraint violation
// (SQLSTATE 23505). The partial unique index on car_rc raises it when a
// concurrent insert slips past the lookup check.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Car is a single vehicle in the catalog. IsBooked is a coarse flag only:
// real availability is computed per requested interval against bookings.
type Car struct {
	ID          uuid.UUID `json:"id"`
	CarName     string    `json:"car_name"`
	CarRC       string    `json:"car_rc"`
	CarCapacity string    `json:"car_capacity"`
	CarRent     int       `json:"car_rent"`
	CarPicture  *string   `json:"car_picture"`
	CarDetail   string    `json:"car_detail"`
	IsBooked    bool      `json:"is_booked"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCar creates a new Car struct with a fresh UUID.
func NewCar(name, rc, capacity, detail string, rent int) (*Car, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for car: %w", err)
	}
	now := time.Now()
	return &Car{
		ID:          id,
		CarName:     name,
		CarRC:       rc,
		CarCapacity: capacity,
		CarRent:     rent,
		CarDetail:   detail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

const carColumns = `id, car_name, car_rc, car_capacity, car_rent, car_picture, car_detail, is_booked, is_deleted, created_at, updated_at`

func scanCar(row pgx.Row) (*Car, error) {
	car := &Car{}
	err := row.Scan(
		&car.ID,
		&car.CarName,
		&car.CarRC,
		&car.CarCapacity,
		&car.CarRent,
		&car.CarPicture,
		&car.CarDetail,
		&car.IsBooked,
		&car.IsDeleted,
		&car.CreatedAt,
		&car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return car, nil
}

// CreateCar inserts a new car after checking the registration code is unique
// among non-deleted cars.
func CreateCar(ctx context.Context, db *pgxpool.Pool, car *Car) error {
	logger.InfoLogger.Infof("Attempting to list new car: %s", car.CarName)

	_, err := GetCarByRC(ctx, db, car.CarRC)
	if err == nil {
		logger.WarnLogger.Warnf("Duplicate car RC: %s", car.CarRC)
		return ErrDuplicateRC
	}
	if !errors.Is(err, ErrCarNotFound) {
		return err
	}

	query := `
		INSERT INTO cars (id, car_name, car_rc, car_capacity, car_rent, car_picture, car_detail, is_booked, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, FALSE, $8, $9)`

	_, err = db.Exec(ctx, query,
		car.ID, car.CarName, car.CarRC, car.CarCapacity, car.CarRent,
		car.CarPicture, car.CarDetail, car.CreatedAt, car.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			logger.WarnLogger.Warnf("Concurrent listing for RC %s lost the race", car.CarRC)
			return ErrDuplicateRC
		}
		logger.ErrorLogger.Errorf("Failed to insert car %s: %v", car.CarName, err)
		return fmt.Errorf("failed to create car: %w", err)
	}

	logger.InfoLogger.Infof("Car %s listed successfully (%s)", car.CarName, car.ID)
	return nil
}

// GetAllCars returns all non-deleted cars.
func GetAllCars(ctx context.Context, db *pgxpool.Pool) ([]Car, error) {
	rows, err := db.Query(ctx,
		`SELECT `+carColumns+` FROM cars WHERE is_deleted = FALSE ORDER BY created_at DESC`)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch cars: %v", err)
		return nil, fmt.Errorf("failed to fetch cars: %w", err)
	}
	defer rows.Close()

	var cars []Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to scan car row: %v", err)
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, *car)
	}
	return cars, rows.Err()
}

// GetCarByID fetches a car by its ID.
func GetCarByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*Car, error) {
	car, err := scanCar(db.QueryRow(ctx,
		`SELECT `+carColumns+` FROM cars WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch car %s: %v", id, err)
		return nil, fmt.Errorf("database error fetching car: %w", err)
	}
	return car, nil
}

// GetCarByName fetches a non-deleted car by its display name.
func GetCarByName(ctx context.Context, db *pgxpool.Pool, name string) (*Car, error) {
	car, err := scanCar(db.QueryRow(ctx,
		`SELECT `+carColumns+` FROM cars WHERE car_name = $1 AND is_deleted = FALSE`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch car %q: %v", name, err)
		return nil, fmt.Errorf("database error fetching car: %w", err)
	}
	return car, nil
}

// GetCarByRC fetches a non-deleted car by its registration code.
func GetCarByRC(ctx context.Context, db *pgxpool.Pool, rc string) (*Car, error) {
	car, err := scanCar(db.QueryRow(ctx,
		`SELECT `+carColumns+` FROM cars WHERE car_rc = $1 AND is_deleted = FALSE`, rc))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch car with RC %q: %v", rc, err)
		return nil, fmt.Errorf("database error fetching car: %w", err)
	}
	return car, nil
}

// FindByCapacity returns all non-deleted cars of the given capacity tier.
func FindByCapacity(ctx context.Context, db *pgxpool.Pool, capacity string) ([]Car, error) {
	rows, err := db.Query(ctx,
		`SELECT `+carColumns+` FROM cars WHERE car_capacity = $1 AND is_deleted = FALSE`, capacity)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to fetch cars of capacity %q: %v", capacity, err)
		return nil, fmt.Errorf("failed to fetch cars: %w", err)
	}
	defer rows.Close()

	var cars []Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, *car)
	}
	return cars, rows.Err()
}

// CapacityExists reports whether any non-deleted car of the capacity exists.
func CapacityExists(ctx context.Context, db *pgxpool.Pool, capacity string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cars WHERE car_capacity = $1 AND is_deleted = FALSE)`,
		capacity,
	).Scan(&exists)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to check capacity %q: %v", capacity, err)
		return false, fmt.Errorf("failed to check capacity: %w", err)
	}
	return exists, nil
}

// CarUpdate is the fixed set of fields that may be patched on a car.
// Nil means "leave unchanged".
type CarUpdate struct {
	CarRent     *int    `json:"car_rent"`
	CarDetail   *string `json:"car_detail"`
	CarCapacity *string `json:"car_capacity"`
}

// Validate checks every provided field before it is applied.
func (u *CarUpdate) Validate() error {
	if u.CarRent == nil && u.CarDetail == nil && u.CarCapacity == nil {
		return errors.New("no fields to update")
	}
	if u.CarRent != nil && *u.CarRent <= 0 {
		return errors.New("car_rent must be positive")
	}
	if u.CarCapacity != nil && *u.CarCapacity == "" {
		return errors.New("car_capacity must not be empty")
	}
	return nil
}

// UpdateCar applies a validated CarUpdate to a non-deleted car.
func UpdateCar(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, update *CarUpdate) (*Car, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	car, err := GetCarByID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if car.IsDeleted {
		return nil, ErrCarNotFound
	}

	if update.CarRent != nil {
		car.CarRent = *update.CarRent
	}
	if update.CarDetail != nil {
		car.CarDetail = *update.CarDetail
	}
	if update.CarCapacity != nil {
		car.CarCapacity = *update.CarCapacity
	}
	car.UpdatedAt = time.Now()

	_, err = db.Exec(ctx,
		`UPDATE cars SET car_rent = $2, car_detail = $3, car_capacity = $4, updated_at = $5 WHERE id = $1`,
		car.ID, car.CarRent, car.CarDetail, car.CarCapacity, car.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update car %s: %v", id, err)
		return nil, fmt.Errorf("failed to update car: %w", err)
	}

	logger.InfoLogger.Infof("Car %s updated successfully", id)
	return car, nil
}

// SoftDeleteCar marks a car deleted. A car with a live booking cannot be removed.
func SoftDeleteCar(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*Car, error) {
	car, err := GetCarByID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if car.IsDeleted {
		return nil, ErrAlreadyDeleted
	}
	if car.IsBooked {
		return nil, ErrCarBooked
	}

	car.IsDeleted = true
	car.UpdatedAt = time.Now()

	_, err = db.Exec(ctx,
		`UPDATE cars SET is_deleted = TRUE, updated_at = $2 WHERE id = $1`,
		car.ID, car.UpdatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to soft-delete car %s: %v", id, err)
		return nil, fmt.Errorf("failed to delete car: %w", err)
	}

	logger.InfoLogger.Infof("Car %s soft-deleted", id)
	return car, nil
}

// AttachPhoto stores the picture reference on a car.
func AttachPhoto(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, picture string) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE cars SET car_picture = $2, updated_at = $3 WHERE id = $1 AND is_deleted = FALSE`,
		id, picture, time.Now(),
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to attach photo to car %s: %v", id, err)
		return fmt.Errorf("failed to attach photo: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCarNotFound
	}

	logger.InfoLogger.Infof("Photo attached to car %s", id)
	return nil
}
