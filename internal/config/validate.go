package config

import (
	"fmt"
	"strings"
)

var (
	validDrivers       = map[string]bool{"sqlite3": true, "postgres": true, "mysql": true}
	validLevels        = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats       = map[string]bool{"json": true, "text": true}
	validOutputFormats = map[string]bool{"json": true, "text": true}
)

// Validate checks the configuration for errors. All problems are reported
// together.
func (c *Config) Validate() error {
	var errs []string

	if !validDrivers[c.Database.Driver] {
		errs = append(errs, fmt.Sprintf("invalid database driver: %s (must be sqlite3, postgres, or mysql)", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, "database dsn is required")
	}

	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level))
	}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be json or text)", c.Logging.Format))
	}

	if !validOutputFormats[c.Output.Format] {
		errs = append(errs, fmt.Sprintf("invalid output format: %s (must be json or text)", c.Output.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
