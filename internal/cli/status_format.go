package cli

import (
	"fmt"
	"strings"

	"github.com/opencode-ai/faultgen/internal/models"
)

// Declaration outcomes reported by generate and check.
const (
	statusGenerated = "generated"
	statusUnchanged = "unchanged"
	statusDryRun    = "dry_run"
	statusPassed    = "passed"
	statusFailed    = "failed"
)

func formatEventType(eventType models.EventType) string {
	label, color := statusLabelForEvent(eventType)
	return colorize(formatStatusLabel(label, string(eventType)), color)
}

func formatOutcome(status string) string {
	label, color := statusLabelForOutcome(status)
	return colorize(formatStatusLabel(label, status), color)
}

func statusLabelForEvent(eventType models.EventType) (string, string) {
	switch eventType {
	case models.EventTypeGenerationCompleted, models.EventTypeCheckPassed:
		return "OK", colorGreen
	case models.EventTypeGenerationSkipped:
		return "SKIP", colorCyan
	case models.EventTypeCheckFailed:
		return "ERR", colorRed
	default:
		return "WARN", colorYellow
	}
}

func statusLabelForOutcome(status string) (string, string) {
	switch status {
	case statusGenerated, statusPassed:
		return "OK", colorGreen
	case statusUnchanged:
		return "SKIP", colorCyan
	case statusDryRun:
		return "DRY", colorMagenta
	case statusFailed:
		return "ERR", colorRed
	default:
		return "WARN", colorYellow
	}
}

func formatStatusLabel(label, status string) string {
	normalized := strings.TrimSpace(status)
	if normalized != "" {
		normalized = strings.NewReplacer("_", " ", ".", " ").Replace(normalized)
	}
	if normalized == "" {
		return label
	}
	return fmt.Sprintf("%s %s", label, normalized)
}
