package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// IsJSONOutput reports whether --json was given.
func IsJSONOutput() bool {
	return jsonOutput
}

// IsJSONLOutput reports whether --jsonl was given.
func IsJSONLOutput() bool {
	return jsonlOutput
}

// WriteOutput writes v as indented JSON, or as JSON lines when --jsonl is
// set. In JSON lines mode slices are written one element per line.
func WriteOutput(out io.Writer, v any) error {
	if IsJSONLOutput() {
		return writeJSONLines(out, v)
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func writeJSONLines(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	value := reflect.ValueOf(v)
	if value.Kind() != reflect.Slice {
		return encoder.Encode(v)
	}
	for i := 0; i < value.Len(); i++ {
		if err := encoder.Encode(value.Index(i).Interface()); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	}
	return nil
}

type errorPayload struct {
	Error    string `json:"error"`
	Hint     string `json:"hint,omitempty"`
	NextStep string `json:"next_step,omitempty"`
}

func errorOutput(err error) errorPayload {
	var preflight *PreflightError
	if errors.As(err, &preflight) {
		return errorPayload{Error: preflight.Message, Hint: preflight.Hint, NextStep: preflight.NextStep}
	}
	return errorPayload{Error: err.Error()}
}
