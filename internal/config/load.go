package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable holding a config file path.
const EnvConfig = "BUNDLE_CONFIG"

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "bundle.yaml"

// Load reads configuration from a file with ENV interpolation.
//
// Search order: explicit path > BUNDLE_CONFIG env > ./bundle.yaml. When no
// explicit path is given and no file is found, Defaults are returned.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Defaults(), nil
	}

	// Get absolute path and directory for resolving relative paths
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Interpolate environment variables
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseDir = baseDir

	// Resolve relative sqlite path
	if cfg.Database.Driver == "sqlite3" && cfg.Database.DSN != "" &&
		!isSpecialSQLiteDSN(cfg.Database.DSN) && !filepath.IsAbs(cfg.Database.DSN) {
		cfg.Database.DSN = filepath.Join(baseDir, cfg.Database.DSN)
	}

	// Resolve relative log file path
	if o := cfg.Logging.Output; o != "" && o != "stderr" && o != "stdout" && !filepath.IsAbs(o) {
		cfg.Logging.Output = filepath.Join(baseDir, o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isSpecialSQLiteDSN reports DSNs that are not plain file paths.
func isSpecialSQLiteDSN(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file:")
}

// resolveConfigPath finds the config file to use. An empty result means no
// file was found and none was required.
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	// Try BUNDLE_CONFIG environment variable
	if envPath := getenv(EnvConfig); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s file not found: %s", EnvConfig, envPath)
		}
		return envPath, nil
	}

	// Try ./bundle.yaml
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking %s: %w", DefaultFile, err)
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}
