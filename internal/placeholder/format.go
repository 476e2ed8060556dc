package placeholder

import (
	"strconv"
	"strings"
)

// MarkerPrefix is the name prefix of every generic marker in a normalized template.
const MarkerPrefix = "placeholder"

// Marker returns the name of the i-th marker, e.g. "placeholder0".
func Marker(i int) string {
	return MarkerPrefix + strconv.Itoa(i)
}

// Format rewrites text so that every active placeholder becomes a generic
// marker "{placeholderN}" and returns the raw placeholder contents in order.
//
// Unbalanced braces never fail: a lone active '{' or '}' becomes its own
// marker with the brace itself as argument, and a '{' followed later by an
// active '}' captures everything in between. Escaped runs are copied
// verbatim. text is scanned as runes, so invalid UTF-8 bytes come back as
// U+FFFD; callers accepting untrusted bytes should check utf8.ValidString.
func Format(text string) (string, []string) {
	runes := []rune(text)
	args := make([]string, 0, 4)

	var out strings.Builder
	out.Grow(len(text))

	checkpoint := 0
	for checkpoint < len(runes) {
		open, hasOpen := FindActiveOpen(runes, checkpoint)
		closing, hasClose := FindActiveClose(runes, checkpoint)

		switch {
		case hasOpen && hasClose && open < closing:
			out.WriteString(string(runes[checkpoint:open]))
			writeMarker(&out, len(args))
			args = append(args, string(runes[open+1:closing]))
			checkpoint = closing + 1
		case hasOpen && !hasClose:
			out.WriteString(string(runes[checkpoint:open]))
			writeMarker(&out, len(args))
			args = append(args, string(openBrace))
			checkpoint = open + 1
		case hasClose:
			// Either no open brace at all, or the close comes first and is unmatched.
			out.WriteString(string(runes[checkpoint:closing]))
			writeMarker(&out, len(args))
			args = append(args, string(closeBrace))
			checkpoint = closing + 1
		default:
			out.WriteString(string(runes[checkpoint:]))
			checkpoint = len(runes)
		}
	}

	return out.String(), args
}

func writeMarker(out *strings.Builder, i int) {
	out.WriteRune(openBrace)
	out.WriteString(Marker(i))
	out.WriteRune(closeBrace)
}
