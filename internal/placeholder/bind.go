package placeholder

import (
	"fmt"
	"strconv"
)

// ArgKind tells how a marker obtains its value.
type ArgKind int

const (
	// ArgLiteral uses the raw placeholder text as a string constant.
	ArgLiteral ArgKind = iota
	// ArgField uses the pattern binding of a field.
	ArgField
)

func (k ArgKind) String() string {
	switch k {
	case ArgField:
		return "field"
	case ArgLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k ArgKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KeywordArg is the value plan for one marker of a normalized template.
type KeywordArg struct {
	Marker  string  `json:"marker"`
	Kind    ArgKind `json:"kind"`
	Field   int     `json:"field"`             // index into the field set, -1 for literals
	Pattern string  `json:"pattern,omitempty"` // binding name for field arguments
	Literal string  `json:"literal,omitempty"` // raw text for literal arguments
}

// String renders the argument as "marker = pattern" or `marker = "literal"`.
func (a KeywordArg) String() string {
	if a.Kind == ArgField {
		return a.Marker + " = " + a.Pattern
	}
	return a.Marker + " = " + strconv.Quote(a.Literal)
}

// AffixPattern wraps a field identifier so that positional identifiers such
// as "0" become usable binding names ("_0_").
func AffixPattern(id string) string {
	return "_" + id + "_"
}

// Bind resolves extracted arguments against a field set.
//
// patterns holds one binding name per field, in field order, whether or not
// any argument refers to it. kwargs holds one entry per argument, in marker
// order. Field identifiers must be unique.
func Bind(args, fields []string, affix bool) ([]string, []KeywordArg) {
	index := make(map[string]int, len(fields))
	patterns := make([]string, len(fields))
	for i, field := range fields {
		if prev, dup := index[field]; dup {
			panic(fmt.Sprintf("placeholder: duplicate field identifier %q at %d and %d", field, prev, i))
		}
		index[field] = i
		if affix {
			patterns[i] = AffixPattern(field)
		} else {
			patterns[i] = field
		}
	}

	kwargs := make([]KeywordArg, len(args))
	for i, arg := range args {
		kwarg := KeywordArg{Marker: Marker(i), Field: -1}
		if fi, ok := index[arg]; ok {
			kwarg.Kind = ArgField
			kwarg.Field = fi
			kwarg.Pattern = patterns[fi]
		} else {
			kwarg.Kind = ArgLiteral
			kwarg.Literal = arg
		}
		kwargs[i] = kwarg
	}

	return patterns, kwargs
}

// Referenced reports, per field, whether any keyword argument binds it.
func Referenced(fieldCount int, kwargs []KeywordArg) []bool {
	used := make([]bool, fieldCount)
	for _, kwarg := range kwargs {
		if kwarg.Kind == ArgField && kwarg.Field >= 0 && kwarg.Field < fieldCount {
			used[kwarg.Field] = true
		}
	}
	return used
}
