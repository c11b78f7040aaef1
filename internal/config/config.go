// Package config provides configuration for the discovery service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/xiaot623/gogo/foodshare/internal/domain"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int
	RPCPort  int

	// Catalog
	CatalogSource string
	BaseLocation  domain.Point

	// Study
	StudyConfig  string
	UserLocation domain.Point

	// Discovery
	DefaultDistanceKm float64
	MaxDistanceKm     float64
	FuzzyThreshold    float64
	MissFlagDelay     time.Duration

	// Database
	DatabaseURL string

	// Ingress settings
	IngressURL string

	// Policy
	PolicyFile string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:      getEnvInt("HTTP_PORT", 8080),
		RPCPort:       getEnvInt("RPC_PORT", 8081),
		CatalogSource: getEnv("CATALOG_SOURCE", "data/listings.json"),
		BaseLocation: domain.Point{
			Lat: getEnvFloat("BASE_LAT", 51.3766938),
			Lon: getEnvFloat("BASE_LON", -2.3234206),
		},
		StudyConfig: getEnv("STUDY_CONFIG", "data/study.yaml"),
		UserLocation: domain.Point{
			Lat: getEnvFloat("USER_LAT", 51.369837),
			Lon: getEnvFloat("USER_LON", -2.3655009),
		},
		DefaultDistanceKm: getEnvFloat("DEFAULT_DISTANCE_KM", 10),
		MaxDistanceKm:     getEnvFloat("MAX_DISTANCE_KM", 20),
		FuzzyThreshold:    getEnvFloat("FUZZY_THRESHOLD", 0.4),
		MissFlagDelay:     time.Duration(getEnvInt("MISS_FLAG_DELAY_MS", 500)) * time.Millisecond,
		DatabaseURL:       getEnv("DATABASE_URL", "file:foodshare.db?cache=shared&mode=rwc"),
		IngressURL:        getEnv("INGRESS_URL", ""),
		PolicyFile:        getEnv("POLICY_FILE", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.MaxDistanceKm <= 0 {
		return fmt.Errorf("MAX_DISTANCE_KM must be positive, got %g", c.MaxDistanceKm)
	}
	if c.DefaultDistanceKm < 0 || c.DefaultDistanceKm > c.MaxDistanceKm {
		return fmt.Errorf("DEFAULT_DISTANCE_KM must be within [0, %g], got %g", c.MaxDistanceKm, c.DefaultDistanceKm)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("FUZZY_THRESHOLD must be within [0, 1], got %g", c.FuzzyThreshold)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
