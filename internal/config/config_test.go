package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.Equal(t, "https://pet-manager-api.geia.vip", cfg.APIBaseURL)
	require.Equal(t, "/autenticacao", cfg.AuthPath)
	require.Equal(t, "petman.db", cfg.DatabaseDSN)
	require.Equal(t, 60*time.Second, cfg.HealthInterval)
	require.Equal(t, 10*time.Second, cfg.HealthTimeout)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestParseEnv_OverridesDefaults(t *testing.T) {
	t.Setenv(envAPIBaseURL, "http://localhost:8080")
	t.Setenv(envHealthInterval, "30s")
	t.Setenv(envLogLevel, "debug")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	require.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	require.Equal(t, 30*time.Second, cfg.HealthInterval)
	require.Equal(t, "debug", cfg.LogLevel)
	// untouched fields keep defaults
	require.Equal(t, "/autenticacao", cfg.AuthPath)
}

func TestParseEnv_IgnoresBadDuration(t *testing.T) {
	t.Setenv(envHealthTimeout, "not-a-duration")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	require.Equal(t, 10*time.Second, cfg.HealthTimeout)
}

func TestParseJSON_OverlaysFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")

	jc := map[string]any{
		"api_base_url":    "http://example.test",
		"health_interval": "90s",
	}
	data, err := json.Marshal(jc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	oldArgs := os.Args
	os.Args = []string{"petman", "-c", path}
	t.Cleanup(func() { os.Args = oldArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)

	require.Equal(t, "http://example.test", cfg.APIBaseURL)
	require.Equal(t, 90*time.Second, cfg.HealthInterval)
	require.Equal(t, "petman.db", cfg.DatabaseDSN)
}

func TestParseFlags_OverridesEverything(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"petman", "-a", "http://flagged:9090", "--interval", "15"}
	t.Cleanup(func() { os.Args = oldArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	require.Equal(t, "http://flagged:9090", cfg.APIBaseURL)
	require.Equal(t, 15*time.Second, cfg.HealthInterval)
}
