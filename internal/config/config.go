// Package config loads runtime settings for the petman CLI.
package config

import "time"

// Config holds runtime settings for the petman CLI.
//
// Fields:
//   - APIBaseURL: base URL of the pet manager backend.
//   - AuthPath: path prefix of the authentication endpoints.
//   - DatabaseDSN: SQLite DSN for the local credential store.
//   - HealthInterval / HealthTimeout: liveness probe schedule and per-probe
//     timeout.
//   - LogLevel: minimal level for the structured logger.
type Config struct {
	APIBaseURL     string
	AuthPath       string
	DatabaseDSN    string
	HealthInterval time.Duration
	HealthTimeout  time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://pet-manager-api.geia.vip"
	c.AuthPath = "/autenticacao"
	c.DatabaseDSN = "petman.db"
	c.HealthInterval = 60 * time.Second
	c.HealthTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (including an optional .env file), a JSON file and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
