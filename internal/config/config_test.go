package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	return home
}

func TestDefaultConfigIsValid(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultPort, cfg.Daemon.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"
	cfg.Daemon.Port = 70000
	cfg.Database.Path = " "
	cfg.Search.Paths = []string{"ok", ""}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"logging.level", "logging.format", "daemon.port", "database.path", "search.paths[1]"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := isolate(t)

	loader := NewLoader()
	loader.SetProjectDir(t.TempDir())
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Empty(t, loader.ConfigFileUsed())
	assert.Equal(t, filepath.Join(home, ".local", "share", "faultgen", "faultgen.db"), cfg.Database.Path)
	assert.Equal(t, "127.0.0.1", cfg.Daemon.Host)
}

func TestLoadProjectFileAndEnv(t *testing.T) {
	home := isolate(t)
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(ProjectDir(project), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ProjectDir(project), "config.yaml"), []byte(`
generate:
  output_dir: ~/gen
  colorize: true
search:
  paths: [faults, more/faults]
logging:
  level: debug
daemon:
  port: 6000
`), 0o644))
	t.Setenv("FAULTGEN_DAEMON_PORT", "7000")

	loader := NewLoader()
	loader.SetProjectDir(project)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(ProjectDir(project), "config.yaml"), loader.ConfigFileUsed())
	assert.Equal(t, filepath.Join(home, "gen"), cfg.Generate.OutputDir)
	assert.True(t, cfg.Generate.Colorize)
	assert.Equal(t, []string{"faults", "more/faults"}, cfg.Search.Paths)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 7000, cfg.Daemon.Port)
}

func TestLoadExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  format: json\n"), 0o644))

	loader := NewLoader()
	loader.SetConfigFile(path)
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	loader := NewLoader()
	loader.SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := loader.Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))

	loader := NewLoader()
	loader.SetConfigFile(path)
	_, err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestConfigDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/faultgen", ConfigDir())
}
