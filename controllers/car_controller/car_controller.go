package car_controller

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/car-rental/logger"
	"github.com/joy095/car-rental/models/car_models"
)

const uploadDir = "photos"

// CarController holds dependencies for car catalog management.
type CarController struct {
	DB *pgxpool.Pool
}

// NewCarController creates a new instance of CarController.
func NewCarController(db *pgxpool.Pool) *CarController {
	return &CarController{DB: db}
}

type CarListingRequest struct {
	CarName     string `json:"car_name" binding:"required"`
	CarRC       string `json:"car_rc" binding:"required"`
	CarRent     int    `json:"car_rent" binding:"required,gt=0"`
	CarCapacity string `json:"car_capacity" binding:"required"`
	CarDetail   string `json:"car_detail"`
}

// CreateCar lists a new car in the catalog.
func (cc *CarController) CreateCar(c *gin.Context) {
	var req CarListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	car, err := car_models.NewCar(req.CarName, req.CarRC, req.CarCapacity, req.CarDetail, req.CarRent)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create car"})
		return
	}

	if err := car_models.CreateCar(c.Request.Context(), cc.DB, car); err != nil {
		if errors.Is(err, car_models.ErrDuplicateRC) {
			c.JSON(http.StatusConflict, gin.H{"error": "Car RC already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create car"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Car added successfully", "car": car})
}

// GetAllCars returns all non-deleted cars.
func (cc *CarController) GetAllCars(c *gin.Context) {
	cars, err := car_models.GetAllCars(c.Request.Context(), cc.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cars"})
		return
	}
	if len(cars) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No cars available"})
		return
	}

	c.JSON(http.StatusOK, cars)
}

// UpdateCar applies an explicit set of optional fields to a car.
func (cc *CarController) UpdateCar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid car id"})
		return
	}

	var update car_models.CarUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := update.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car, err := car_models.UpdateCar(c.Request.Context(), cc.DB, id, &update)
	if err != nil {
		if errors.Is(err, car_models.ErrCarNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update car"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Car updated successfully", "car": car})
}

// DeleteCar soft-deletes a car that is not currently booked.
func (cc *CarController) DeleteCar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid car id"})
		return
	}

	car, err := car_models.SoftDeleteCar(c.Request.Context(), cc.DB, id)
	if err != nil {
		switch {
		case errors.Is(err, car_models.ErrCarNotFound), errors.Is(err, car_models.ErrCarBooked):
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found or currently booked"})
		case errors.Is(err, car_models.ErrAlreadyDeleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Car already deleted"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete car"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Car deleted successfully", "car": car})
}

// UploadPhoto saves the uploaded picture and attaches its path to the car.
func (cc *CarController) UploadPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid car id"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required"})
		return
	}

	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		logger.ErrorLogger.Errorf("Failed to create upload directory: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo"})
		return
	}

	location := filepath.Join(uploadDir, file.Filename)
	if err := c.SaveUploadedFile(file, location); err != nil {
		logger.ErrorLogger.Errorf("Failed to save uploaded photo: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo"})
		return
	}

	if err := car_models.AttachPhoto(c.Request.Context(), cc.DB, id, location); err != nil {
		if errors.Is(err, car_models.ErrCarNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car ID incorrect"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach photo"})
		return
	}

	logger.InfoLogger.Infof("Photo %q attached to car %s", file.Filename, id)
	c.JSON(http.StatusOK, gin.H{"info": "File '" + file.Filename + "' saved at '" + location + "'"})
}
