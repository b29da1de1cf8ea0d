package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names understood by parseEnv.
const (
	envAPIBaseURL     = "PETMAN_API_URL"
	envAuthPath       = "PETMAN_AUTH_PATH"
	envDatabaseDSN    = "PETMAN_DATABASE_DSN"
	envHealthInterval = "PETMAN_HEALTH_INTERVAL"
	envHealthTimeout  = "PETMAN_HEALTH_TIMEOUT"
	envLogLevel       = "PETMAN_LOG_LEVEL"
)

// parseEnv overlays Config with values from the process environment. A .env
// file in the working directory is loaded first, if present; real environment
// variables win over .env entries (godotenv does not override existing vars).
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv(envAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv(envAuthPath); v != "" {
		cfg.AuthPath = v
	}
	if v := os.Getenv(envDatabaseDSN); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv(envHealthInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HealthInterval = d
		}
	}
	if v := os.Getenv(envHealthTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HealthTimeout = d
		}
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
}
