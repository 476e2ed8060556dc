package codegen

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/opencode-ai/faultgen/internal/catalog"
)

// ansiRenderer always emits ANSI sequences: prefixes are baked into generated
// source, so the terminal running the generator does not matter.
var ansiRenderer = func() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	return r
}()

var prefixColors = map[catalog.Category]lipgloss.Color{
	catalog.CategoryError: lipgloss.Color("1"),
	catalog.CategoryCause: lipgloss.Color("3"),
	catalog.CategoryDebug: lipgloss.Color("2"),
}

// StylePrefix returns the label printed before a message of the category,
// e.g. "[error]", bold and colored when colorize is set.
func StylePrefix(category catalog.Category, colorize bool) string {
	label := "[" + string(category) + "]"
	color, ok := prefixColors[category]
	if !colorize || !ok {
		return label
	}
	return ansiRenderer.NewStyle().Bold(true).Foreground(color).Render(label)
}
