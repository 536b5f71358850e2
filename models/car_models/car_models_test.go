package car_models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCar(t *testing.T) {
	car, err := NewCar("Swift Dzire", "KA01AB1234", "4", "Compact sedan", 1200)
	require.NoError(t, err)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", car.ID.String())
	assert.Equal(t, "Swift Dzire", car.CarName)
	assert.Equal(t, "KA01AB1234", car.CarRC)
	assert.Equal(t, "4", car.CarCapacity)
	assert.Equal(t, 1200, car.CarRent)
	assert.False(t, car.IsBooked)
	assert.False(t, car.IsDeleted)
	assert.Nil(t, car.CarPicture)
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "cars_car_rc_active_idx"}

	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("failed to create car: %w", dup)),
		"wrapped unique violations must still map")
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func TestCarUpdateValidate(t *testing.T) {
	rent := 1500
	badRent := 0
	detail := "updated"
	capacity := "7"
	empty := ""

	tests := []struct {
		name    string
		update  CarUpdate
		wantErr bool
	}{
		{"empty update", CarUpdate{}, true},
		{"rent only", CarUpdate{CarRent: &rent}, false},
		{"non-positive rent", CarUpdate{CarRent: &badRent}, true},
		{"detail only", CarUpdate{CarDetail: &detail}, false},
		{"capacity only", CarUpdate{CarCapacity: &capacity}, false},
		{"empty capacity", CarUpdate{CarCapacity: &empty}, true},
		{"all fields", CarUpdate{CarRent: &rent, CarDetail: &detail, CarCapacity: &capacity}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.update.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
