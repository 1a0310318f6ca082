package app

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds the process-level settings that come from the command line.
type Config struct {
	ConfigPath string // cache configuration file; empty runs with no regions
	Listen     string // HTTP API address; empty disables the API

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error

	switch strings.ToLower(cfg.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat))
	}

	if _, ok := parseLevel(cfg.LogLevel); !ok && cfg.LogLevel != "" {
		errs = append(errs, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
