package booking_controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// withIdentity mimics the auth middleware for handler tests.
func withIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uuid.New())
		c.Set("name", "Alice")
		c.Set("email", "alice@example.com")
		c.Set("phone_no", "1234567890")
		c.Next()
	}
}

// setupRouter wires the booking handlers without any backing stores. Only
// request validation paths are exercised here; everything that reaches
// Postgres or Redis is covered by the model tests.
func setupRouter(authed bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	bc := NewBookingController(nil, nil)

	r := gin.New()
	if authed {
		r.Use(withIdentity())
	}
	r.POST("/bookings", bc.OpenBooking)
	r.GET("/bookings/:booking_id/available-cars", bc.GetAvailableCars)
	r.POST("/bookings/:booking_id/select-car", bc.SelectCar)
	r.POST("/bookings/:booking_id/payment-otp", bc.SendPaymentOTP)
	r.POST("/bookings/confirm", bc.ConfirmBooking)
	r.POST("/bookings/:booking_id/cancel", bc.CancelBooking)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOpenBookingRequiresIdentity(t *testing.T) {
	r := setupRouter(false)

	w := doJSON(r, http.MethodPost, "/bookings",
		`{"start_date":"2026-09-10","end_date":"2026-09-12","car_capacity":"4"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOpenBookingValidation(t *testing.T) {
	r := setupRouter(true)

	tests := []struct {
		name string
		body string
	}{
		{"missing fields", `{"start_date":"2026-09-10"}`},
		{"malformed json", `{`},
		{"bad start date", `{"start_date":"10-09-2026","end_date":"2026-09-12","car_capacity":"4"}`},
		{"bad end date", `{"start_date":"2026-09-10","end_date":"12/09/2026","car_capacity":"4"}`},
		{"inverted interval", `{"start_date":"2026-09-12","end_date":"2026-09-10","car_capacity":"4"}`},
		{"interval in the past", `{"start_date":"2020-01-01","end_date":"2020-01-05","car_capacity":"4"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/bookings", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestBookingIDMustBeUUID(t *testing.T) {
	r := setupRouter(true)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"available cars", http.MethodGet, "/bookings/not-a-uuid/available-cars", ""},
		{"select car", http.MethodPost, "/bookings/not-a-uuid/select-car", `{"car_name":"Swift"}`},
		{"payment otp", http.MethodPost, "/bookings/not-a-uuid/payment-otp", ""},
		{"cancel", http.MethodPost, "/bookings/not-a-uuid/cancel", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSelectCarRequiresCarName(t *testing.T) {
	r := setupRouter(true)

	w := doJSON(r, http.MethodPost, "/bookings/"+uuid.NewString()+"/select-car", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfirmBookingValidation(t *testing.T) {
	r := setupRouter(true)

	tests := []struct {
		name string
		body string
	}{
		{"missing otp", `{"email":"alice@example.com"}`},
		{"missing email", `{"otp":"1234"}`},
		{"invalid email", `{"email":"not-an-email","otp":"1234"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/bookings/confirm", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
