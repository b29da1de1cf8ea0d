package config

import (
	"encoding/json"
	"os"

	"github.com/petmanager/petman/internal/flagx"
	"github.com/petmanager/petman/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "60s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type jsonConfig struct {
	APIBaseURL     string         `json:"api_base_url"`
	AuthPath       string         `json:"auth_path"`
	DatabaseDSN    string         `json:"database_dsn"`
	HealthInterval timex.Duration `json:"health_interval"`
	HealthTimeout  timex.Duration `json:"health_timeout"`
	LogLevel       string         `json:"log_level"`
}

// parseJSON overlays Config with values loaded from a JSON file. The file
// path comes from the -c/--config flags; if absent, nothing is loaded.
// Fields left empty in the file keep their current values.
//
// Panics on read or unmarshal errors: a present but broken config file is a
// deployment mistake the user must see immediately.
func parseJSON(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.AuthPath != "" {
		cfg.AuthPath = jc.AuthPath
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.HealthInterval.Duration != 0 {
		cfg.HealthInterval = jc.HealthInterval.Duration
	}
	if jc.HealthTimeout.Duration != 0 {
		cfg.HealthTimeout = jc.HealthTimeout.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
