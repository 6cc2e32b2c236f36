// Package config loads the bundle tool's YAML configuration.
package config

// Config is the root configuration structure.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Output   OutputConfig   `yaml:"output"`

	// BaseDir is the directory of the loaded config file; relative paths
	// are resolved against it. Empty when no file was loaded.
	BaseDir string `yaml:"-"`
}

// DatabaseConfig selects the database/sql driver and data source.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite3, postgres or mysql
	DSN    string `yaml:"dsn"`
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	Output string `yaml:"output"` // stderr, stdout or a file path
}

// OutputConfig configures command output.
type OutputConfig struct {
	Format string `yaml:"format"` // text or json
}

// Defaults returns a Config with default values.
func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "bundle.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}
