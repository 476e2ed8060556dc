package cli

import "strings"

// PreflightError is a user-facing failure with guidance on what to do next.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
}

func (e *PreflightError) Error() string {
	return e.Message
}

// Detailed renders the message with its hint and next step.
func (e *PreflightError) Detailed() string {
	var b strings.Builder
	b.WriteString(colorize("error:", colorRed) + " " + e.Message + "\n")
	if e.Hint != "" {
		b.WriteString("  hint: " + e.Hint + "\n")
	}
	if e.NextStep != "" {
		b.WriteString("  try:  " + e.NextStep + "\n")
	}
	return b.String()
}
