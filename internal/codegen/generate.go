// Package codegen emits Go source for compiled fault declarations.
package codegen

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/opencode-ai/faultgen/internal/catalog"
	"github.com/opencode-ai/faultgen/internal/compiler"
	"github.com/opencode-ai/faultgen/internal/placeholder"
)

// Tool is the generator name written into file headers.
const Tool = "faultgen"

//go:embed fault.go.tmpl
var faultTemplateText string

var faultTemplate = template.Must(template.New("fault").Parse(faultTemplateText))

// Options controls code generation.
type Options struct {
	// Colorize wraps the [error], [cause] and [debug] prefixes of Error()
	// in ANSI color sequences.
	Colorize bool
}

type fileData struct {
	Tool        string
	Source      string
	Package     string
	Name        string
	Description string
	Imports     []string
	Variants    []variantData
	ErrorPrefix string
	CausePrefix string
	DebugPrefix string
}

type variantData struct {
	TypeName    string
	Description string
	Fields      []fieldData
	Methods     []methodData
}

type fieldData struct {
	Name string
	Type string
}

type methodData struct {
	Name   string
	Locals []localData
	Expr   string
}

type localData struct {
	Name  string
	Field string
}

// methodNames maps message categories to the generated accessor names.
var methodNames = map[catalog.Category]string{
	catalog.CategoryState: "State",
	catalog.CategoryError: "Message",
	catalog.CategoryCause: "Cause",
	catalog.CategoryDebug: "Debug",
}

// Generate renders the Go source of a compiled fault. The result is gofmt'ed.
func Generate(fault *compiler.Fault, opts Options) ([]byte, error) {
	if fault == nil || fault.Declaration == nil {
		return nil, fmt.Errorf("compiled fault is required")
	}

	data := buildFile(fault, opts)

	var buf bytes.Buffer
	if err := faultTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", data.Name, err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source for %s: %w", data.Name, err)
	}
	return src, nil
}

func buildFile(fault *compiler.Fault, opts Options) fileData {
	decl := fault.Declaration
	data := fileData{
		Tool:        Tool,
		Source:      sourceName(decl.Source),
		Package:     decl.Package,
		Name:        decl.Name,
		Description: commentText(decl.Description),
		ErrorPrefix: strconv.Quote(StylePrefix(catalog.CategoryError, opts.Colorize)),
		CausePrefix: strconv.Quote(StylePrefix(catalog.CategoryCause, opts.Colorize)),
		DebugPrefix: strconv.Quote(StylePrefix(catalog.CategoryDebug, opts.Colorize)),
	}

	usesFmt := false
	for i := range fault.Variants {
		variant := &fault.Variants[i]
		vd := variantData{
			TypeName:    variant.TypeName,
			Description: commentText(decl.Variants[i].Description),
		}
		for j, goField := range variant.GoFields {
			vd.Fields = append(vd.Fields, fieldData{Name: goField, Type: variant.Types[j]})
		}
		for _, msg := range variant.Messages() {
			method := buildMethod(variant, msg)
			if len(msg.Args) > 0 {
				usesFmt = true
			}
			vd.Methods = append(vd.Methods, method)
		}
		data.Variants = append(data.Variants, vd)
	}

	data.Imports = imports(decl.Imports, usesFmt)
	return data
}

func buildMethod(variant *compiler.Variant, msg compiler.Message) methodData {
	method := methodData{Name: methodNames[msg.Category]}

	if len(msg.Args) == 0 {
		method.Expr = strconv.Quote(LiteralText(msg.Normalized))
		return method
	}

	for i, used := range placeholder.Referenced(len(variant.Patterns), msg.Args) {
		if used {
			method.Locals = append(method.Locals, localData{
				Name:  variant.Patterns[i],
				Field: variant.GoFields[i],
			})
		}
	}

	values := make([]string, 0, len(msg.Args)+1)
	values = append(values, strconv.Quote(GoFormat(msg.Normalized)))
	for _, arg := range msg.Args {
		if arg.Kind == placeholder.ArgField {
			values = append(values, arg.Pattern)
		} else {
			values = append(values, strconv.Quote(arg.Literal))
		}
	}
	method.Expr = "fmt.Sprintf(" + strings.Join(values, ", ") + ")"
	return method
}

func imports(declared []string, usesFmt bool) []string {
	paths := make([]string, 0, len(declared)+1)
	if usesFmt {
		paths = append(paths, "fmt")
	}
	for _, path := range declared {
		if path != "" && !slices.Contains(paths, path) {
			paths = append(paths, path)
		}
	}
	slices.Sort(paths)
	quoted := make([]string, len(paths))
	for i, path := range paths {
		quoted[i] = strconv.Quote(path)
	}
	return quoted
}

// commentText folds a description onto one comment line.
func commentText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func sourceName(source string) string {
	if source == "" || source == catalog.BuiltinSource {
		return catalog.BuiltinSource
	}
	return filepath.Base(source)
}

// OutputFileName returns the file generated code for fault is written to,
// e.g. "storage_error_faultgen.go" for StorageError.
func OutputFileName(fault *compiler.Fault) string {
	return SnakeCase(fault.Declaration.Name) + "_" + Tool + ".go"
}

// SnakeCase converts a Go identifier to snake_case, keeping acronyms
// together: "HTTPError" becomes "http_error".
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || (nextLower && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
