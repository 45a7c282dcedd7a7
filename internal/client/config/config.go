// Package config loads the console settings: defaults, then an optional JSON
// file (-c/-config), then command-line flags. Later sources win.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the admin console.
//
// Fields:
//   - APIBaseURL: root URL of the user administration API.
//   - RequestTimeout: per-request HTTP timeout.
//   - DatabasePath: SQLite file holding the persisted session.
//   - SearchDebounce: quiet period after the last search keystroke.
//   - PageLimit: rows requested per list page.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	DatabasePath   string
	SearchDebounce time.Duration
	PageLimit      int
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "console.db"
	c.SearchDebounce = 500 * time.Millisecond
	c.PageLimit = 10
	c.LogLevel = "info"
}

// Load builds a Config from defaults, the JSON file named in args, and the
// flags in args.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
