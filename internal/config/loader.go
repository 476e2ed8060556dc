package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FAULTGEN_LOGGING_LEVEL.
const EnvPrefix = "FAULTGEN"

// Loader reads configuration from defaults, a YAML file and the environment.
type Loader struct {
	v          *viper.Viper
	configFile string
	projectDir string
}

// NewLoader creates a loader with no explicit file.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// SetConfigFile forces a specific config file. A missing file is an error.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// SetProjectDir adds <dir>/.faultgen to the config search path.
func (l *Loader) SetProjectDir(dir string) {
	l.projectDir = dir
}

// ConfigFileUsed returns the file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Load merges defaults, the config file and environment overrides, then
// validates the result.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults(DefaultConfig())

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")
		if l.projectDir != "" {
			l.v.AddConfigPath(ProjectDir(l.projectDir))
		}
		l.v.AddConfigPath(ConfigDir())
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ExpandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (l *Loader) setDefaults(cfg *Config) {
	l.v.SetDefault("generate.output_dir", cfg.Generate.OutputDir)
	l.v.SetDefault("generate.colorize", cfg.Generate.Colorize)
	l.v.SetDefault("generate.log_output", cfg.Generate.LogOutput)
	l.v.SetDefault("generate.allow_unused", cfg.Generate.AllowUnused)
	l.v.SetDefault("search.paths", cfg.Search.Paths)
	l.v.SetDefault("search.include_builtins", cfg.Search.IncludeBuiltins)
	l.v.SetDefault("database.path", cfg.Database.Path)
	l.v.SetDefault("logging.level", cfg.Logging.Level)
	l.v.SetDefault("logging.format", cfg.Logging.Format)
	l.v.SetDefault("daemon.host", cfg.Daemon.Host)
	l.v.SetDefault("daemon.port", cfg.Daemon.Port)
	l.v.SetDefault("daemon.rate_limit", cfg.Daemon.RateLimit)
}
