// Package placeholder compiles brace-delimited message templates.
//
// A template is literal text with placeholders such as "{name}". Braces
// escape each other in pairs: a run of an even number of identical braces is
// literal text, while a run of an odd number holds exactly one active brace.
// For an opening run the active brace is the last of the run, for a closing
// run it is the first, so the delimiter always sits next to the placeholder
// content. All positions are rune indices.
package placeholder

import "fmt"

const (
	openBrace  = '{'
	closeBrace = '}'
)

// FindActiveOpen returns the index of the next active '{' at or after from.
func FindActiveOpen(text []rune, from int) (int, bool) {
	checkFrom(text, from)
	for i := from; i < len(text); {
		start := indexRune(text, i, openBrace)
		if start < 0 {
			return -1, false
		}
		end := runEnd(text, start)
		if (end-start)%2 == 1 {
			return end - 1, true
		}
		i = end
	}
	return -1, false
}

// FindActiveClose returns the index of the next active '}' at or after from.
func FindActiveClose(text []rune, from int) (int, bool) {
	checkFrom(text, from)
	for i := from; i < len(text); {
		start := indexRune(text, i, closeBrace)
		if start < 0 {
			return -1, false
		}
		end := runEnd(text, start)
		if (end-start)%2 == 1 {
			return start, true
		}
		i = end
	}
	return -1, false
}

func checkFrom(text []rune, from int) {
	if from < 0 || from > len(text) {
		panic(fmt.Sprintf("placeholder: scan position %d out of range [0, %d]", from, len(text)))
	}
}

func indexRune(text []rune, from int, r rune) int {
	for i := from; i < len(text); i++ {
		if text[i] == r {
			return i
		}
	}
	return -1
}

// runEnd returns the index just past the run of text[start] beginning at start.
func runEnd(text []rune, start int) int {
	end := start + 1
	for end < len(text) && text[end] == text[start] {
		end++
	}
	return end
}
