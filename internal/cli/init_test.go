package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencode-ai/faultgen/internal/catalog"
)

func TestCreateConfigFile(t *testing.T) {
	tempDir := t.TempDir()

	originalFunc := configDirFunc
	configDirFunc = func() string {
		return tempDir
	}
	defer func() {
		configDirFunc = originalFunc
	}()

	originalForce := initForce
	initForce = true
	defer func() {
		initForce = originalForce
	}()

	result := createConfigFile()

	if result.status != "done" {
		t.Errorf("expected status 'done', got %q: %s", result.status, result.message)
	}

	configPath := filepath.Join(tempDir, "config.yaml")
	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	if !strings.Contains(string(content), "faultgen Configuration File") {
		t.Error("config file doesn't contain expected header")
	}
	if !strings.Contains(string(content), "rate_limit: true") {
		t.Error("config file doesn't contain expected default")
	}
}

func TestCreateConfigFile_ExistingNoForce(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("existing"), 0644); err != nil {
		t.Fatalf("failed to create existing config: %v", err)
	}

	originalFunc := configDirFunc
	configDirFunc = func() string {
		return tempDir
	}
	defer func() {
		configDirFunc = originalFunc
	}()

	originalForce := initForce
	initForce = false
	defer func() {
		initForce = originalForce
	}()

	result := createConfigFile()

	if result.status != "skipped" {
		t.Errorf("expected status 'skipped', got %q: %s", result.status, result.message)
	}

	content, _ := os.ReadFile(configPath)
	if string(content) != "existing" {
		t.Error("existing config was modified")
	}
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if dir := defaultConfigDir(); dir != "/custom/config/faultgen" {
		t.Errorf("expected /custom/config/faultgen, got %s", dir)
	}
}

func TestConfigTemplateSections(t *testing.T) {
	if !strings.HasPrefix(configTemplate, "# faultgen Configuration File") {
		t.Error("config template doesn't have expected header")
	}

	sections := []string{
		"generate:",
		"search:",
		"database:",
		"logging:",
		"daemon:",
	}
	for _, section := range sections {
		if !strings.Contains(configTemplate, section) {
			t.Errorf("config template missing section: %s", section)
		}
	}
}

func TestCreateProjectLayoutWritesValidDeclaration(t *testing.T) {
	root := t.TempDir()

	result := createProjectLayout(root)
	if result.status != "done" {
		t.Fatalf("expected status 'done', got %q: %s", result.status, result.message)
	}

	decl, err := catalog.LoadDeclaration(filepath.Join(root, ".faultgen", "faults", "example.yaml"))
	if err != nil {
		t.Fatalf("example declaration does not load: %v", err)
	}
	if decl.Name != "ExampleError" {
		t.Errorf("expected ExampleError, got %s", decl.Name)
	}

	if again := createProjectLayout(root); again.status != "skipped" {
		t.Errorf("expected second run to skip, got %q", again.status)
	}
}
