package tui

import "github.com/opencode-ai/faultgen/internal/placeholder"

// analysis is everything the playground shows for one template.
type analysis struct {
	Normalized string
	Arguments  []string
	Patterns   []string
	Kwargs     []placeholder.KeywordArg
	Unused     []string
}

func analyze(template string, fields []string, affix bool) analysis {
	normalized, args := placeholder.FormatCached(template)
	result := analysis{Normalized: normalized, Arguments: args}
	if len(fields) == 0 {
		return result
	}
	result.Patterns, result.Kwargs = placeholder.Bind(args, fields, affix)
	result.Unused = placeholder.UnusedFields(fields, args)
	return result
}
