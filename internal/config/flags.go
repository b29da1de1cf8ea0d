package config

import (
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/petmanager/petman/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a, --api string        base URL of the pet manager backend
//	-d, --database string   SQLite DSN for the local credential store
//	-i, --interval int      health probe interval in seconds
//	-l, --log-level string  log level (debug|info|warn|error)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "--api",
		"-d", "--database",
		"-i", "--interval",
		"-l", "--log-level",
	})

	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)

	fs.StringVarP(&cfg.APIBaseURL, "api", "a", cfg.APIBaseURL, "base URL of the pet manager backend")
	fs.StringVarP(&cfg.DatabaseDSN, "database", "d", cfg.DatabaseDSN, "SQLite DSN for the local credential store")
	interval := fs.IntP("interval", "i", int(cfg.HealthInterval.Seconds()), "health probe interval (in seconds)")
	fs.StringVarP(&cfg.LogLevel, "log-level", "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.HealthInterval = time.Duration(*interval) * time.Second
}
