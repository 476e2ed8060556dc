package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AppendLog appends generated source to a debug log, one section per file.
func AppendLog(path, name string, src []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open generation log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "// ---- %s (%s)\n%s\n", name, time.Now().UTC().Format(time.RFC3339), src); err != nil {
		return fmt.Errorf("write generation log: %w", err)
	}
	return nil
}
