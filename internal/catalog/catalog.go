// Package catalog loads fault declarations: YAML descriptions of tagged error
// types whose variants carry error, cause and debug message templates.
package catalog

import "strconv"

// Declaration describes one generated error type and its variants.
type Declaration struct {
	Name        string    `yaml:"name" json:"name"`
	Package     string    `yaml:"package" json:"package"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Tags        []string  `yaml:"tags,omitempty" json:"tags,omitempty"`
	Imports     []string  `yaml:"imports,omitempty" json:"imports,omitempty"` // packages referenced by field types
	Variants    []Variant `yaml:"variants" json:"variants"`
	Source      string    `yaml:"-" json:"source"` // file path or "builtin"
}

// Variant is one case of a declaration.
type Variant struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Fields      []Field `yaml:"fields,omitempty" json:"fields,omitempty"`
	Error       string  `yaml:"error" json:"error"`
	Cause       string  `yaml:"cause,omitempty" json:"cause,omitempty"`
	Debug       string  `yaml:"debug,omitempty" json:"debug,omitempty"`
}

// Field is a payload value of a variant. Positional fields leave Name empty.
type Field struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Type string `yaml:"type" json:"type"`
}

// Kind classifies the shape of a variant's payload.
type Kind string

const (
	KindUnit       Kind = "unit"
	KindPositional Kind = "positional"
	KindNamed      Kind = "named"
)

// Category names one message template of a variant.
type Category string

const (
	CategoryError Category = "error"
	CategoryCause Category = "cause"
	CategoryDebug Category = "debug"
	CategoryState Category = "state"
)

// AuthoredCategories are the categories written by hand in declarations.
var AuthoredCategories = []Category{CategoryError, CategoryCause, CategoryDebug}

// Kind reports the payload shape. Mixed named and unnamed fields report
// KindNamed; validation rejects them before they reach the compiler.
func (v Variant) Kind() Kind {
	if len(v.Fields) == 0 {
		return KindUnit
	}
	for _, field := range v.Fields {
		if field.Name != "" {
			return KindNamed
		}
	}
	return KindPositional
}

// FieldIDs returns the identifiers placeholders use to reference the fields:
// "0", "1", ... for positional variants, the field names otherwise.
func (v Variant) FieldIDs() []string {
	ids := make([]string, len(v.Fields))
	positional := v.Kind() == KindPositional
	for i, field := range v.Fields {
		if positional {
			ids[i] = strconv.Itoa(i)
		} else {
			ids[i] = field.Name
		}
	}
	return ids
}

// Message returns the authored template of the given category.
func (v Variant) Message(category Category) string {
	switch category {
	case CategoryError:
		return v.Error
	case CategoryCause:
		return v.Cause
	case CategoryDebug:
		return v.Debug
	default:
		return ""
	}
}
