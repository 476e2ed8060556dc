// Package config holds faultgen configuration and its viper-backed loader.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Config is the complete faultgen configuration.
type Config struct {
	Generate GenerateConfig `mapstructure:"generate"`
	Search   SearchConfig   `mapstructure:"search"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
}

// GenerateConfig controls code generation.
type GenerateConfig struct {
	// OutputDir receives generated files. Empty writes next to each declaration.
	OutputDir string `mapstructure:"output_dir"`
	// Colorize emits ANSI colored prefixes in generated Error() methods.
	Colorize bool `mapstructure:"colorize"`
	// LogOutput, when set, is a file every generated source is appended to.
	LogOutput string `mapstructure:"log_output"`
	// AllowUnused turns unused-field failures into warnings.
	AllowUnused bool `mapstructure:"allow_unused"`
}

// SearchConfig controls where declarations are discovered.
type SearchConfig struct {
	Paths           []string `mapstructure:"paths"`
	IncludeBuiltins bool     `mapstructure:"include_builtins"`
}

// DatabaseConfig locates the generation ledger.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DaemonConfig controls the compile service.
type DaemonConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// RateLimit enables per-method request limits.
	RateLimit bool `mapstructure:"rate_limit"`
}

// DefaultPort is the compile service port used when none is configured.
const DefaultPort = 50071

var (
	validLevels  = []string{"trace", "debug", "info", "warn", "error"}
	validFormats = []string{"console", "json"}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Paths: []string{},
		},
		Database: DatabaseConfig{
			Path: filepath.Join(DataDir(), "faultgen.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Daemon: DaemonConfig{
			Host:      "127.0.0.1",
			Port:      DefaultPort,
			RateLimit: true,
		},
	}
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("logging.level %q must be one of %s", c.Logging.Level, strings.Join(validLevels, ", ")))
	}
	if !slices.Contains(validFormats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format %q must be one of %s", c.Logging.Format, strings.Join(validFormats, ", ")))
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if strings.TrimSpace(c.Daemon.Host) == "" {
		errs = append(errs, errors.New("daemon.host is required"))
	}
	if c.Daemon.Port < 1 || c.Daemon.Port > 65535 {
		errs = append(errs, fmt.Errorf("daemon.port %d is out of range", c.Daemon.Port))
	}
	for i, path := range c.Search.Paths {
		if strings.TrimSpace(path) == "" {
			errs = append(errs, fmt.Errorf("search.paths[%d] is empty", i))
		}
	}
	return errors.Join(errs...)
}

// ExpandPaths resolves a leading "~" in every path setting.
func (c *Config) ExpandPaths() {
	c.Generate.OutputDir = expandHome(c.Generate.OutputDir)
	c.Generate.LogOutput = expandHome(c.Generate.LogOutput)
	c.Database.Path = expandHome(c.Database.Path)
	for i, path := range c.Search.Paths {
		c.Search.Paths[i] = expandHome(path)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ConfigDir returns the user configuration directory for faultgen.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "faultgen")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "faultgen")
}

// DataDir returns the user data directory for faultgen.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "faultgen")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "faultgen")
}

// ProjectDir returns the per-project configuration directory.
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, ".faultgen")
}
