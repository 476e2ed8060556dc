package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/opencode-ai/faultgen/internal/catalog"
	"github.com/opencode-ai/faultgen/internal/placeholder"
)

// ErrUnusedField matches every *UnusedFieldsError.
var ErrUnusedField = errors.New("field is not used by any message")

// UnusedField is a declared field that no authored message references.
type UnusedField struct {
	Variant    string `json:"variant"`
	Field      string `json:"field"`
	Suggestion string `json:"suggestion,omitempty"` // closest literal placeholder, if any
}

// UnusedFieldsError reports every unused field of a declaration at once.
type UnusedFieldsError struct {
	Declaration string
	Source      string
	Fields      []UnusedField
}

func (e *UnusedFieldsError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, field := range e.Fields {
		part := fmt.Sprintf("field %s of variant %s is not used in the error, cause, or debug message", field.Field, field.Variant)
		if field.Suggestion != "" {
			part += fmt.Sprintf(" (did you mean {%s}?)", field.Suggestion)
		}
		parts[i] = part
	}
	return fmt.Sprintf("%s: %s", e.Declaration, strings.Join(parts, "; "))
}

// Is reports whether target is ErrUnusedField.
func (e *UnusedFieldsError) Is(target error) bool {
	return target == ErrUnusedField
}

// unusedFields checks the authored messages of a variant. The state message
// references every field by construction, so it never counts as a use.
func unusedFields(variant catalog.Variant, compiled *Variant) []UnusedField {
	ids := compiled.FieldIDs
	if len(ids) == 0 {
		return nil
	}

	authored := []Message{compiled.Error, compiled.Cause, compiled.Debug}
	argLists := make([][]string, 0, len(authored))
	var literals []string
	for _, msg := range authored {
		argLists = append(argLists, msg.Arguments)
		for _, arg := range msg.Args {
			if arg.Kind == placeholder.ArgLiteral && arg.Literal != "{" && arg.Literal != "}" {
				literals = append(literals, arg.Literal)
			}
		}
	}

	unused := placeholder.UnusedFields(ids, argLists...)
	if len(unused) == 0 {
		return nil
	}

	out := make([]UnusedField, len(unused))
	for i, field := range unused {
		out[i] = UnusedField{
			Variant:    variant.Name,
			Field:      field,
			Suggestion: suggest(field, literals),
		}
	}
	return out
}

// suggest returns the literal placeholder that fuzzy-matches field best.
func suggest(field string, literals []string) string {
	best := ""
	bestScore := 0
	for _, literal := range literals {
		literal = strings.TrimSpace(literal)
		if literal == "" {
			continue
		}
		matches := fuzzy.Find(literal, []string{field})
		if len(matches) == 0 {
			continue
		}
		if best == "" || matches[0].Score > bestScore {
			best = literal
			bestScore = matches[0].Score
		}
	}
	return best
}
