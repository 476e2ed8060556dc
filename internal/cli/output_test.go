package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWriteOutputJSONLines(t *testing.T) {
	original := jsonlOutput
	jsonlOutput = true
	defer func() { jsonlOutput = original }()

	var buf bytes.Buffer
	entries := []DeclarationEntry{{Name: "A", Package: "a"}, {Name: "B", Package: "b"}}
	if err := WriteOutput(&buf, entries); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"name":"A"`) || !strings.Contains(lines[1], `"name":"B"`) {
		t.Errorf("unexpected lines: %q", lines)
	}
}

func TestWriteOutputIndentedJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, map[string]int{"deleted": 3}); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	if buf.String() != "{\n  \"deleted\": 3\n}\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestErrorOutputAndExitCode(t *testing.T) {
	preflight := &PreflightError{Message: "no fault declarations found", Hint: "add one", NextStep: "faultgen init"}

	payload := errorOutput(preflight)
	if payload.Error != preflight.Message || payload.NextStep != "faultgen init" {
		t.Errorf("unexpected payload %+v", payload)
	}
	if code := ExitCode(preflight); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if code := ExitCode(errors.New("boom")); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if code := ExitCode(nil); code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
}

func TestExitCodeWrappedPreflight(t *testing.T) {
	err := fmt.Errorf("loading declarations: %w", &PreflightError{Message: "no fault declarations found"})
	if code := ExitCode(err); code != 2 {
		t.Errorf("expected exit code 2 for wrapped preflight error, got %d", code)
	}
}

func TestUsageErrorsExitWithTwo(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing argument", []string{"inspect"}, "accepts 1 arg(s), received 0"},
		{"too many arguments", []string{"play", "a", "b"}, "accepts at most 1 arg(s), received 2"},
		{"unknown flag", []string{"generate", "--bogus"}, "unknown flag: --bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd.SetArgs(tt.args)
			defer rootCmd.SetArgs(nil)

			err := Execute()
			if err == nil {
				t.Fatal("expected a usage error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, err.Error())
			}
			if code := ExitCode(err); code != 2 {
				t.Errorf("expected exit code 2, got %d", code)
			}

			var preflight *PreflightError
			if errors.As(err, &preflight) && !strings.Contains(preflight.NextStep, "--help") {
				t.Errorf("expected a --help next step, got %q", preflight.NextStep)
			}
		})
	}
}
