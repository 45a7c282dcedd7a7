package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/useradmin/internal/flagx"
	"github.com/dmitrijs2005/useradmin/internal/timex"
)

// JsonConfig is the JSON file layout. TokenValidity accepts "15m" style
// strings or integer nanoseconds.
type JsonConfig struct {
	Addr          string         `json:"addr"`
	SecretKey     string         `json:"secret_key"`
	TokenValidity timex.Duration `json:"token_validity"`
	BcryptCost    int            `json:"bcrypt_cost"`
	LogLevel      string         `json:"log_level"`
}

// parseJSON overlays config with the non-zero values of the file named by
// -c or -config.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.Addr != "" {
		config.Addr = jc.Addr
	}
	if jc.SecretKey != "" {
		config.SecretKey = jc.SecretKey
	}
	if jc.TokenValidity.Duration > 0 {
		config.TokenValidity = jc.TokenValidity.Duration
	}
	if jc.BcryptCost > 0 {
		config.BcryptCost = jc.BcryptCost
	}
	if jc.LogLevel != "" {
		config.LogLevel = jc.LogLevel
	}
	return nil
}
