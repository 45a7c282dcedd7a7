// Package config handles configuration for the development backend,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime settings for the fake user administration API.
//
// Fields:
//   - Addr: HTTP listen address.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default outside development.
//   - TokenValidity: access token lifetime.
//   - BcryptCost: cost for password hashes.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Addr          string
	SecretKey     string
	TokenValidity time.Duration
	BcryptCost    int
	LogLevel      string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.SecretKey = "secretKey"
	c.TokenValidity = 60 * time.Minute
	c.BcryptCost = bcrypt.DefaultCost
	c.LogLevel = "info"
}

// Load applies defaults, then the JSON file named by -c/-config in args,
// then the flags in args.
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
