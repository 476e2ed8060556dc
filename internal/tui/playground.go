// Package tui implements the interactive placeholder playground.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opencode-ai/faultgen/internal/placeholder"
	"github.com/opencode-ai/faultgen/internal/tui/styles"
)

// Options configure the playground.
type Options struct {
	// Template pre-fills the input line.
	Template string
	// Fields are the identifiers placeholders may bind to.
	Fields []string
	// Named binds fields by name; otherwise identifiers are affixed ("_0_").
	Named bool
	// Theme selects a palette from styles.Themes.
	Theme string
}

// Run launches the playground and returns the final template.
func Run(opts Options) (string, error) {
	m, err := newModel(opts)
	if err != nil {
		return "", err
	}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", err
	}
	return string(final.(model).input), nil
}

type model struct {
	input  []rune
	cursor int
	fields []string
	affix  bool
	styles styles.Styles
	width  int
	result analysis
}

const minWidth = 40

func newModel(opts Options) (model, error) {
	seen := make(map[string]struct{}, len(opts.Fields))
	for _, field := range opts.Fields {
		if _, dup := seen[field]; dup {
			return model{}, fmt.Errorf("duplicate field %q", field)
		}
		seen[field] = struct{}{}
	}

	m := model{
		input:  []rune(opts.Template),
		fields: opts.Fields,
		affix:  !opts.Named,
		styles: styles.ForTheme(opts.Theme),
	}
	m.cursor = len(m.input)
	m.refresh()
	return m, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		case tea.KeyRunes:
			m.insert(msg.Runes...)
		case tea.KeySpace:
			m.insert(' ')
		case tea.KeyBackspace:
			if m.cursor > 0 {
				m.input = append(m.input[:m.cursor-1], m.input[m.cursor:]...)
				m.cursor--
			}
		case tea.KeyDelete:
			if m.cursor < len(m.input) {
				m.input = append(m.input[:m.cursor], m.input[m.cursor+1:]...)
			}
		case tea.KeyLeft:
			if m.cursor > 0 {
				m.cursor--
			}
		case tea.KeyRight:
			if m.cursor < len(m.input) {
				m.cursor++
			}
		case tea.KeyHome, tea.KeyCtrlA:
			m.cursor = 0
		case tea.KeyEnd, tea.KeyCtrlE:
			m.cursor = len(m.input)
		case tea.KeyCtrlU:
			m.input = m.input[:0]
			m.cursor = 0
		}
		m.refresh()
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m *model) insert(runes ...rune) {
	tail := append([]rune{}, m.input[m.cursor:]...)
	m.input = append(append(m.input[:m.cursor], runes...), tail...)
	m.cursor += len(runes)
}

func (m *model) refresh() {
	m.result = analyze(string(m.input), m.fields, m.affix)
}

func (m model) View() string {
	if m.width > 0 && m.width < minWidth {
		return m.styles.Warning.Render(fmt.Sprintf("Terminal too narrow (%d columns).", m.width)) + "\n"
	}

	lines := []string{
		m.styles.Title.Render("faultgen playground"),
		"",
		m.styles.Muted.Render("template   ") + m.inputLine(),
		m.styles.Muted.Render("normalized ") + m.highlightMarkers(m.result.Normalized),
		"",
	}

	if len(m.result.Arguments) == 0 {
		lines = append(lines, m.styles.Muted.Render("no arguments"))
	}
	for i, arg := range m.result.Arguments {
		line := fmt.Sprintf("%s  %q", m.styles.Marker.Render(placeholder.Marker(i)), arg)
		if len(m.fields) > 0 {
			kwarg := m.result.Kwargs[i]
			if kwarg.Kind == placeholder.ArgField {
				line += "  " + m.styles.Field.Render("field "+kwarg.Pattern)
			} else {
				line += "  " + m.styles.Literal.Render("literal")
			}
		}
		lines = append(lines, line)
	}

	if len(m.fields) > 0 {
		lines = append(lines, "")
		if len(m.result.Unused) == 0 {
			lines = append(lines, m.styles.Field.Render("all fields used"))
		} else {
			lines = append(lines, m.styles.Warning.Render("unused: "+strings.Join(m.result.Unused, ", ")))
		}
	}

	body := m.styles.Panel.Render(strings.Join(lines, "\n"))
	help := m.styles.Muted.Render("enter/esc quit | ctrl+u clear | ←/→ move")
	return body + "\n" + help + "\n"
}

func (m model) inputLine() string {
	before := string(m.input[:m.cursor])
	if m.cursor == len(m.input) {
		return m.styles.Text.Render(before) + m.styles.Cursor.Render(" ")
	}
	at := string(m.input[m.cursor])
	after := string(m.input[m.cursor+1:])
	return m.styles.Text.Render(before) + m.styles.Cursor.Render(at) + m.styles.Text.Render(after)
}

// highlightMarkers styles every marker of a normalized template, leaving
// escaped brace pairs untouched.
func (m model) highlightMarkers(normalized string) string {
	var b strings.Builder
	for i := 0; i < len(normalized); {
		rest := normalized[i:]
		switch {
		case strings.HasPrefix(rest, "{{") || strings.HasPrefix(rest, "}}"):
			b.WriteString(rest[:2])
			i += 2
		case rest[0] == '{' && strings.HasPrefix(rest[1:], placeholder.MarkerPrefix):
			end := strings.IndexByte(rest, '}')
			if end < 0 {
				b.WriteString(rest)
				return b.String()
			}
			b.WriteString(m.styles.Marker.Render(rest[:end+1]))
			i += end + 1
		default:
			b.WriteByte(rest[0])
			i++
		}
	}
	return b.String()
}
