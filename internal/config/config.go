package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the detection core
type Config struct {
	// ModelPath points at the XGBoost model artifact. A missing artifact is
	// non-fatal: the engine falls back to a neutral probability.
	ModelPath string

	// DatabaseURL enables the scan history store when set. Empty disables
	// persistence entirely.
	DatabaseURL string

	// Verdict thresholds, floats in [0,1]. PhishingThreshold must be at
	// least SuspiciousThreshold.
	PhishingThreshold   float64
	SuspiciousThreshold float64

	// FusionPolicy selects how rule and model scores combine: "max"
	// (default) or "priority".
	FusionPolicy string
}

// Load reads configuration from the environment, with an optional .env file,
// and validates threshold constraints.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		ModelPath:           getEnv("MODEL_PATH", "models/phishing_model.xgb"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		PhishingThreshold:   getEnvAsFloat("PHISHING_THRESHOLD", 0.8),
		SuspiciousThreshold: getEnvAsFloat("SUSPICIOUS_THRESHOLD", 0.5),
		FusionPolicy:        getEnv("FUSION_POLICY", "max"),
	}

	for name, v := range map[string]float64{
		"PHISHING_THRESHOLD":   cfg.PhishingThreshold,
		"SUSPICIOUS_THRESHOLD": cfg.SuspiciousThreshold,
	} {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
	}
	if cfg.PhishingThreshold < cfg.SuspiciousThreshold {
		return nil, fmt.Errorf("PHISHING_THRESHOLD (%v) must be >= SUSPICIOUS_THRESHOLD (%v)",
			cfg.PhishingThreshold, cfg.SuspiciousThreshold)
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

// getEnvAsFloat reads an environment variable as a float64
// If the variable doesn't exist or can't be parsed, returns the default
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
