package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"os"
)

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
}

var validBlockTags = map[string]bool{
	"latest":    true,
	"pending":   true,
	"earliest":  true,
	"safe":      true,
	"finalized": true,
}

// validate checks the configuration for errors
func validate(cfg *Config) error {
	if cfg.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("endpoint scheme must be http(s) or ws(s), got %q", u.Scheme)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return errors.New("logLevel must be one of: debug, info, warn, error")
	}

	if cfg.RequestTimeout < 0 {
		return errors.New("requestTimeout must be non-negative")
	}

	if cfg.MulticallAddress != "" && !isHexAddress(cfg.MulticallAddress) {
		return fmt.Errorf("multicallAddress %q is not a valid address", cfg.MulticallAddress)
	}

	if cfg.Block != "" && !validBlockTags[cfg.Block] {
		if _, ok := new(big.Int).SetString(cfg.Block, 0); !ok {
			return fmt.Errorf("block must be a tag or a number, got %q", cfg.Block)
		}
	}

	switch cfg.InputKind {
	case "", "data", "input", "both":
	default:
		return fmt.Errorf("inputKind must be data, input or both, got %q", cfg.InputKind)
	}

	for addr := range cfg.StateOverrides {
		if !isHexAddress(addr) {
			return fmt.Errorf("stateOverrides: %q is not a valid address", addr)
		}
	}

	if len(cfg.Calls) == 0 {
		return errors.New("at least one call is required")
	}
	for i, call := range cfg.Calls {
		if !isHexAddress(call.Target) {
			return fmt.Errorf("call[%d]: target %q is not a valid address", i, call.Target)
		}
		if call.Signature == "" {
			return fmt.Errorf("call[%d]: signature is required", i)
		}
		if call.Value != "" {
			if _, ok := new(big.Int).SetString(call.Value, 0); !ok {
				return fmt.Errorf("call[%d]: invalid value %q", i, call.Value)
			}
		}
	}

	return nil
}

// isHexAddress checks for a 0x-prefixed 20-byte hex address
func isHexAddress(s string) bool {
	if len(s) != 42 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return false
	}
	for i := 2; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
