package codegen

import (
	"strings"

	"github.com/opencode-ai/faultgen/internal/placeholder"
)

// GoFormat translates a normalized template into a fmt format string:
// escaped brace pairs collapse to one brace, markers become %v and literal
// percent signs are doubled. Markers are emitted in template order, which is
// the order of the keyword arguments.
func GoFormat(normalized string) string {
	return translate(normalized, true)
}

// LiteralText unescapes a normalized template that holds no markers.
func LiteralText(normalized string) string {
	return translate(normalized, false)
}

func translate(normalized string, verbs bool) string {
	runes := []rune(normalized)
	var b strings.Builder
	b.Grow(len(normalized))

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case (r == '{' || r == '}') && i+1 < len(runes) && runes[i+1] == r:
			b.WriteRune(r)
			i += 2
		case r == '{' && isMarkerAt(runes, i):
			end := i + 1
			for runes[end] != '}' {
				end++
			}
			if verbs {
				b.WriteString("%v")
			} else {
				b.WriteString(string(runes[i : end+1]))
			}
			i = end + 1
		case r == '%' && verbs:
			b.WriteString("%%")
			i++
		default:
			b.WriteRune(r)
			i++
		}
	}
	return b.String()
}

// isMarkerAt reports whether runes[i:] starts with "{placeholderN}".
func isMarkerAt(runes []rune, i int) bool {
	prefix := []rune("{" + placeholder.MarkerPrefix)
	if i+len(prefix) >= len(runes) {
		return false
	}
	for j, r := range prefix {
		if runes[i+j] != r {
			return false
		}
	}
	j := i + len(prefix)
	digits := 0
	for j < len(runes) && runes[j] >= '0' && runes[j] <= '9' {
		j++
		digits++
	}
	return digits > 0 && j < len(runes) && runes[j] == '}'
}
