package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// ActiveRiskMode is the cap profile this deployment reports and sizes
	// against ("conservative" or "balanced").
	ActiveRiskMode string

	// FetchTimeoutSeconds bounds every outbound request to the yields API.
	FetchTimeoutSeconds int

	// FetchRateRPS is the sustained request rate allowed against the yields API.
	FetchRateRPS float64
	// FetchRateBurst is the burst capacity allowed against the yields API.
	FetchRateBurst int
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. Endpoint variables are required; the rest fall back to
// safe defaults.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	ActiveRiskMode = getEnvWithDefault("RISK_MODE", "conservative")
	if ActiveRiskMode != "conservative" && ActiveRiskMode != "balanced" {
		return errors.New("environment variable RISK_MODE must be 'conservative' or 'balanced', got: " + ActiveRiskMode)
	}

	FetchTimeoutSeconds, err = getEnvAsIntWithDefault("FETCH_TIMEOUT_SECONDS", 30)
	if err != nil {
		return err
	}
	if FetchTimeoutSeconds <= 0 {
		return errors.New("environment variable FETCH_TIMEOUT_SECONDS must be positive")
	}

	FetchRateRPS, err = getEnvAsFloat64WithDefault("FETCH_RATE_RPS", 1.0)
	if err != nil {
		return err
	}
	if FetchRateRPS <= 0 {
		return errors.New("environment variable FETCH_RATE_RPS must be positive")
	}

	FetchRateBurst, err = getEnvAsIntWithDefault("FETCH_RATE_BURST", 2)
	if err != nil {
		return err
	}
	if FetchRateBurst <= 0 {
		return errors.New("environment variable FETCH_RATE_BURST must be positive")
	}

	// Load endpoint configuration
	if err := loadEndpointConfig(); err != nil {
		return err
	}

	log.Debug().
		Str("ActiveRiskMode", ActiveRiskMode).
		Int("FetchTimeoutSeconds", FetchTimeoutSeconds).
		Float64("FetchRateRPS", FetchRateRPS).
		Int("FetchRateBurst", FetchRateBurst).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvWithDefault retrieves a string environment variable, falling back to a
// default when unset or empty.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault retrieves an environment variable as an int, falling
// back to a default when unset. Returns error if set but invalid.
func getEnvAsIntWithDefault(key string, defaultValue int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsFloat64WithDefault retrieves an environment variable as a float64,
// falling back to a default when unset. Returns error if set but invalid.
func getEnvAsFloat64WithDefault(key string, defaultValue float64) (float64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid float64, got: " + valueStr)
	}
	return value, nil
}
