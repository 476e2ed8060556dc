package catalog

import (
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Declaration validation errors.
var (
	ErrEmptyDeclaration    = errors.New("declaration has no variants")
	ErrMissingName         = errors.New("name is required")
	ErrMissingErrorMessage = errors.New("error message is required")
	ErrEmptyMessage        = errors.New("message cannot be blank")
	ErrMixedFields         = errors.New("fields must be either all named or all positional")
	ErrInvalidIdentifier   = errors.New("invalid identifier")
	ErrDuplicateName       = errors.New("duplicate name")
	ErrInvalidType         = errors.New("invalid field type")
)

// reservedNames cannot be used as field names because generated methods use
// them as the receiver, the fmt import and the blank identifier.
var reservedNames = map[string]struct{}{
	"e":   {},
	"fmt": {},
	"_":   {},
}

// methodNames are generated on every variant type, so no exported field may use them.
var methodNames = map[string]struct{}{
	"Error":    {},
	"State":    {},
	"Message":  {},
	"Cause":    {},
	"Debug":    {},
	"GoString": {},
}

// Problem is a single validation failure at a path inside a declaration.
type Problem struct {
	Path   string
	Err    error
	Detail string
}

func (p Problem) Error() string {
	msg := p.Err.Error()
	if p.Detail != "" {
		msg += ": " + p.Detail
	}
	if p.Path == "" {
		return msg
	}
	return p.Path + ": " + msg
}

// ValidationErrors collects every problem found in a declaration.
type ValidationErrors struct {
	Problems []Problem
}

// Add records a problem.
func (v *ValidationErrors) Add(path string, err error, detail string) {
	v.Problems = append(v.Problems, Problem{Path: path, Err: err, Detail: detail})
}

// Err returns nil when no problems were recorded.
func (v *ValidationErrors) Err() error {
	if len(v.Problems) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) Error() string {
	parts := make([]string, len(v.Problems))
	for i, problem := range v.Problems {
		parts[i] = problem.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the sentinel of every problem to errors.Is.
func (v *ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v.Problems))
	for i, problem := range v.Problems {
		errs[i] = problem.Err
	}
	return errs
}

// Validate checks a declaration and reports every problem at once.
func Validate(decl *Declaration) error {
	if decl == nil {
		return fmt.Errorf("declaration is required")
	}

	validation := &ValidationErrors{}

	checkIdentifier(validation, "name", decl.Name)
	if decl.Name != "" && !isExported(decl.Name) {
		validation.Add("name", ErrInvalidIdentifier, fmt.Sprintf("%q must be exported", decl.Name))
	}
	checkIdentifier(validation, "package", decl.Package)
	for i, path := range decl.Imports {
		if strings.TrimSpace(path) == "" || strings.ContainsAny(path, "\" \t\n") {
			validation.Add(fmt.Sprintf("imports[%d]", i), ErrInvalidIdentifier, strconv.Quote(path))
		}
	}

	if len(decl.Variants) == 0 {
		validation.Add("variants", ErrEmptyDeclaration, "")
	}

	variantNames := make(map[string]int, len(decl.Variants))
	for i := range decl.Variants {
		variant := &decl.Variants[i]
		path := fmt.Sprintf("variants[%d]", i)
		if variant.Name != "" {
			path = fmt.Sprintf("variants[%s]", variant.Name)
		}

		checkIdentifier(validation, path+".name", variant.Name)
		if prev, dup := variantNames[variant.Name]; dup && variant.Name != "" {
			validation.Add(path+".name", ErrDuplicateName, fmt.Sprintf("also used by variants[%d]", prev))
		} else {
			variantNames[variant.Name] = i
		}

		validateMessages(validation, path, variant)
		validateFields(validation, path, variant)
	}

	return validation.Err()
}

func validateMessages(validation *ValidationErrors, path string, variant *Variant) {
	if strings.TrimSpace(variant.Error) == "" {
		validation.Add(path+".error", ErrMissingErrorMessage, "")
	}
	for _, category := range []Category{CategoryCause, CategoryDebug} {
		msg := variant.Message(category)
		if msg != "" && strings.TrimSpace(msg) == "" {
			validation.Add(path+"."+string(category), ErrEmptyMessage, "")
		}
	}
}

func validateFields(validation *ValidationErrors, path string, variant *Variant) {
	named := 0
	for _, field := range variant.Fields {
		if field.Name != "" {
			named++
		}
	}
	if named > 0 && named < len(variant.Fields) {
		validation.Add(path+".fields", ErrMixedFields, "")
	}

	exported := make(map[string]string, len(variant.Fields))
	for i, field := range variant.Fields {
		fieldPath := fmt.Sprintf("%s.fields[%d]", path, i)

		if field.Name != "" {
			fieldPath = fmt.Sprintf("%s.fields[%s]", path, field.Name)
			checkIdentifier(validation, fieldPath+".name", field.Name)
			if _, reserved := reservedNames[field.Name]; reserved {
				validation.Add(fieldPath+".name", ErrInvalidIdentifier, fmt.Sprintf("%q is reserved", field.Name))
			}
			goName := ExportedName(field.Name)
			if _, clash := methodNames[goName]; clash {
				validation.Add(fieldPath+".name", ErrInvalidIdentifier, fmt.Sprintf("%q collides with method %s", field.Name, goName))
			}
			if prev, dup := exported[goName]; dup {
				validation.Add(fieldPath+".name", ErrDuplicateName, fmt.Sprintf("%q collides with %q", field.Name, prev))
			} else {
				exported[goName] = field.Name
			}
		}

		if field.Type == "" {
			validation.Add(fieldPath+".type", ErrInvalidType, "type is required")
			continue
		}
		if _, err := parser.ParseExpr(field.Type); err != nil {
			validation.Add(fieldPath+".type", ErrInvalidType, fmt.Sprintf("%q: %v", field.Type, err))
		}
	}
}

func checkIdentifier(validation *ValidationErrors, path, name string) {
	switch {
	case name == "":
		validation.Add(path, ErrMissingName, "")
	case token.IsKeyword(name):
		validation.Add(path, ErrInvalidIdentifier, fmt.Sprintf("%q is a Go keyword", name))
	case !token.IsIdentifier(name):
		validation.Add(path, ErrInvalidIdentifier, strconv.Quote(name))
	}
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// ExportedName returns name with its first letter upper-cased.
func ExportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// GoFieldName returns the struct field name generated for the i-th field.
func GoFieldName(variant Variant, i int) string {
	if variant.Kind() == KindPositional {
		return "V" + strconv.Itoa(i)
	}
	return ExportedName(variant.Fields[i].Name)
}
