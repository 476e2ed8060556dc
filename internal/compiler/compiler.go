// Package compiler turns fault declarations into compiled message plans: every
// template normalized to generic markers and every marker bound to a field or
// a literal.
package compiler

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/opencode-ai/faultgen/internal/catalog"
	"github.com/opencode-ai/faultgen/internal/placeholder"
)

// Message is one compiled template of a variant.
type Message struct {
	Category   catalog.Category         `json:"category"`
	Template   string                   `json:"template"`
	Normalized string                   `json:"normalized"`
	Arguments  []string                 `json:"arguments"`
	Args       []placeholder.KeywordArg `json:"keyword_args"`
}

// Empty reports whether the message has no text at all.
func (m Message) Empty() bool {
	return m.Template == ""
}

// Variant is a compiled declaration variant.
type Variant struct {
	Name     string       `json:"name"`
	TypeName string       `json:"type_name"`
	Kind     catalog.Kind `json:"kind"`
	FieldIDs []string     `json:"field_ids"`
	Patterns []string     `json:"patterns"`
	GoFields []string     `json:"go_fields"`
	Types    []string     `json:"types"`
	State    Message      `json:"state"`
	Error    Message      `json:"error"`
	Cause    Message      `json:"cause"`
	Debug    Message      `json:"debug"`
}

// Messages returns the compiled messages in state, error, cause, debug order.
func (v *Variant) Messages() []Message {
	return []Message{v.State, v.Error, v.Cause, v.Debug}
}

// Fault is a compiled declaration.
type Fault struct {
	Declaration *catalog.Declaration `json:"declaration"`
	Variants    []Variant            `json:"variants"`
	Unused      []UnusedField        `json:"unused,omitempty"`
}

// UnusedErr returns an *UnusedFieldsError when any declared field is not
// referenced by the messages of its variant.
func (f *Fault) UnusedErr() error {
	if len(f.Unused) == 0 {
		return nil
	}
	return &UnusedFieldsError{
		Declaration: f.Declaration.Name,
		Source:      f.Declaration.Source,
		Fields:      f.Unused,
	}
}

// Compiler compiles declarations.
type Compiler struct {
	logger zerolog.Logger
}

// New creates a Compiler that logs through logger.
func New(logger zerolog.Logger) *Compiler {
	return &Compiler{logger: logger}
}

// Compile compiles every variant of decl. Unused fields do not fail the
// compilation; they are recorded on the result for the caller to judge.
func (c *Compiler) Compile(decl *catalog.Declaration) (*Fault, error) {
	if decl == nil {
		return nil, fmt.Errorf("declaration is required")
	}
	if err := catalog.Validate(decl); err != nil {
		return nil, fmt.Errorf("invalid declaration %s: %w", decl.Name, err)
	}

	fault := &Fault{
		Declaration: decl,
		Variants:    make([]Variant, 0, len(decl.Variants)),
	}

	for _, variant := range decl.Variants {
		compiled := c.compileVariant(decl, variant)
		fault.Variants = append(fault.Variants, compiled)
		fault.Unused = append(fault.Unused, unusedFields(variant, &compiled)...)
	}

	if len(fault.Unused) > 0 {
		c.logger.Warn().
			Str("declaration", decl.Name).
			Int("unused", len(fault.Unused)).
			Msg("declaration has unused fields")
	}

	return fault, nil
}

// CompileAll compiles declarations concurrently and returns them in input order.
func (c *Compiler) CompileAll(ctx context.Context, decls []*catalog.Declaration) ([]*Fault, error) {
	faults := make([]*Fault, len(decls))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))

	for i, decl := range decls {
		i, decl := i, decl
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fault, err := c.Compile(decl)
			if err != nil {
				return err
			}
			faults[i] = fault
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return faults, nil
}

func (c *Compiler) compileVariant(decl *catalog.Declaration, variant catalog.Variant) Variant {
	kind := variant.Kind()
	ids := variant.FieldIDs()
	affix := kind != catalog.KindNamed

	compiled := Variant{
		Name:     variant.Name,
		TypeName: decl.Name + variant.Name,
		Kind:     kind,
		FieldIDs: ids,
		GoFields: make([]string, len(variant.Fields)),
		Types:    make([]string, len(variant.Fields)),
	}
	for i, field := range variant.Fields {
		compiled.GoFields[i] = catalog.GoFieldName(variant, i)
		compiled.Types[i] = field.Type
	}

	compiled.State, compiled.Patterns = compileMessage(catalog.CategoryState, StateTemplate(decl.Name, variant), ids, affix)
	compiled.Error, _ = compileMessage(catalog.CategoryError, variant.Error, ids, affix)
	compiled.Cause, _ = compileMessage(catalog.CategoryCause, variant.Cause, ids, affix)
	compiled.Debug, _ = compileMessage(catalog.CategoryDebug, variant.Debug, ids, affix)

	for _, msg := range compiled.Messages() {
		if msg.Empty() {
			continue
		}
		c.logger.Debug().
			Str("type", compiled.TypeName).
			Str("category", string(msg.Category)).
			Str("normalized", msg.Normalized).
			Strs("arguments", msg.Arguments).
			Msg("compiled message")
	}

	return compiled
}

func compileMessage(category catalog.Category, template string, ids []string, affix bool) (Message, []string) {
	normalized, args := placeholder.Format(template)
	patterns, kwargs := placeholder.Bind(args, ids, affix)
	return Message{
		Category:   category,
		Template:   template,
		Normalized: normalized,
		Arguments:  args,
		Args:       kwargs,
	}, patterns
}

// StateTemplate builds the structural template of a variant:
// "Name.Variant", "Name.Variant({0}, {1})" or "Name.Variant{{a: {a}, b: {b}}}".
func StateTemplate(name string, variant catalog.Variant) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('.')
	b.WriteString(variant.Name)

	ids := variant.FieldIDs()
	switch variant.Kind() {
	case catalog.KindPositional:
		b.WriteByte('(')
		for i, id := range ids {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("{" + id + "}")
		}
		b.WriteByte(')')
	case catalog.KindNamed:
		b.WriteString("{{")
		for i, id := range ids {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(id + ": {" + id + "}")
		}
		b.WriteString("}}")
	}
	return b.String()
}
