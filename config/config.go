package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/joy095/car-rental/logger"
)

var loadOnce sync.Once

// LoadEnv loads variables from .env into the process environment.
// Missing .env is fine in production where variables come from the platform.
func LoadEnv() {
	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			if os.Getenv("APP_ENV") == "" || os.Getenv("APP_ENV") == "development" {
				logger.WarnLogger.Warnf("No .env file loaded: %v", err)
			}
			return
		}
		logger.InfoLogger.Info("Environment variables loaded from .env")
	})
}
