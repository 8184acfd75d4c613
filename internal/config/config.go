package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// JWT (tokens are minted by the identity provider; we only verify)
	JWTSecret string

	// Background Workers
	WorkerCount int

	// Deduction scheduler trigger interval
	DeductionIntervalHours int

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string

	// Reconciliation constants. The penalty tolerance is a business
	// configuration value, not a code constant: the shortfall percentage a
	// collector may miss before a penalty is charged.
	PenaltyTolerancePercent float64
	PenaltyRatePerLiter     float64
	CollectorFeePerLiter    float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Environment:             getEnv("ENVIRONMENT", "development"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		WorkerCount:             getEnvAsInt("WORKER_COUNT", 5),
		DeductionIntervalHours:  getEnvAsInt("DEDUCTION_INTERVAL_HOURS", 24),
		AllowedOrigins:          getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:               getEnv("SENTRY_DSN", ""),
		PenaltyTolerancePercent: getEnvAsFloat("PENALTY_TOLERANCE_PERCENT", 5.0),
		PenaltyRatePerLiter:     getEnvAsFloat("PENALTY_RATE_PER_LITER", 2.0),
		CollectorFeePerLiter:    getEnvAsFloat("COLLECTOR_FEE_PER_LITER", 1.5),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	if cfg.PenaltyTolerancePercent < 0 {
		return nil, fmt.Errorf("PENALTY_TOLERANCE_PERCENT must not be negative")
	}
	if cfg.PenaltyRatePerLiter < 0 || cfg.CollectorFeePerLiter < 0 {
		return nil, fmt.Errorf("per-liter rates must not be negative")
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat reads an environment variable as float64
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
