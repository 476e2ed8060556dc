package styles

import "testing"

func TestThemesHaveEveryToken(t *testing.T) {
	for name, theme := range Themes {
		tokens := theme.Tokens
		for role, value := range map[string]string{
			"text": tokens.Text, "muted": tokens.TextMuted, "border": tokens.Border,
			"accent": tokens.Accent, "focus": tokens.Focus, "field": tokens.Field,
			"literal": tokens.Literal, "warning": tokens.Warning, "error": tokens.Error,
		} {
			if value == "" {
				t.Errorf("theme %s has no %s color", name, role)
			}
		}
		if theme.Name != name {
			t.Errorf("theme registered as %q is named %q", name, theme.Name)
		}
	}
}

func TestForThemeFallsBack(t *testing.T) {
	if got := ForTheme("high-contrast").Theme.Name; got != "high-contrast" {
		t.Errorf("ForTheme(high-contrast) = %q", got)
	}
	if got := ForTheme("missing").Theme.Name; got != "default" {
		t.Errorf("ForTheme(missing) = %q, want default", got)
	}
}
