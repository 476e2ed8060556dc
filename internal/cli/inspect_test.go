package cli

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/faultgen/internal/compilerd"
	"github.com/opencode-ai/faultgen/internal/config"
	"github.com/opencode-ai/faultgen/internal/placeholder"
)

func TestInspectTemplate(t *testing.T) {
	tests := []struct {
		name       string
		template   string
		fields     []string
		affix      bool
		normalized string
		arguments  []string
		patterns   []string
		unused     []string
	}{
		{
			name:       "no fields",
			template:   "{{literal}} {x}",
			normalized: "{{literal}} {placeholder0}",
			arguments:  []string{"x"},
		},
		{
			name:       "positional",
			template:   "object {0} missing",
			fields:     []string{"0", "1"},
			affix:      true,
			normalized: "object {placeholder0} missing",
			arguments:  []string{"0"},
			patterns:   []string{"_0_", "_1_"},
			unused:     []string{"1"},
		},
		{
			name:       "named",
			template:   "{used} of {limit}",
			fields:     []string{"used", "limit"},
			normalized: "{placeholder0} of {placeholder1}",
			arguments:  []string{"used", "limit"},
			patterns:   []string{"used", "limit"},
			unused:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := inspectTemplate(tt.template, tt.fields, tt.affix)
			require.NoError(t, err)
			assert.Equal(t, tt.normalized, result.Normalized)
			assert.Equal(t, tt.arguments, result.Arguments)
			assert.Equal(t, tt.patterns, result.Patterns)
			if tt.fields != nil {
				assert.Equal(t, tt.unused, result.Unused)
				assert.Len(t, result.KeywordArgs, len(tt.arguments))
			}
		})
	}
}

func TestInspectTemplateRejectsDuplicateFields(t *testing.T) {
	_, err := inspectTemplate("{a}", []string{"a", "a"}, false)
	var preflight *PreflightError
	require.True(t, errors.As(err, &preflight))
	assert.Contains(t, preflight.Message, `"a"`)
}

func TestInspectTemplateRejectsInvalidUTF8(t *testing.T) {
	_, err := inspectTemplate("a\xffb {x}", nil, false)
	var preflight *PreflightError
	require.ErrorAs(t, err, &preflight)
	assert.Contains(t, preflight.Message, "UTF-8")

	_, err = inspectRemoteTemplate(context.Background(), "127.0.0.1:1", "a\xffb", nil, false)
	require.ErrorAs(t, err, &preflight)
	assert.Contains(t, preflight.Message, "UTF-8")
}

func TestInspectRemoteMatchesLocal(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Daemon.RateLimit = false
	daemon, err := compilerd.New(cfg, zerolog.Nop(), compilerd.Options{Version: "test"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- daemon.Serve(ctx, listener) }()
	defer func() {
		cancel()
		<-done
	}()

	template := "{path} has {{braces}} and {missing}"
	fields := []string{"path", "size"}

	remote, err := inspectRemoteTemplate(context.Background(), listener.Addr().String(), template, fields, false)
	require.NoError(t, err)
	local, err := inspectTemplate(template, fields, false)
	require.NoError(t, err)

	assert.Equal(t, local.Normalized, remote.Normalized)
	assert.Equal(t, local.Arguments, remote.Arguments)
	assert.Equal(t, local.Patterns, remote.Patterns)
	assert.Equal(t, local.Unused, remote.Unused)
	require.Len(t, remote.KeywordArgs, 2)
	assert.Equal(t, placeholder.ArgField, remote.KeywordArgs[0].Kind)
	assert.Equal(t, placeholder.ArgLiteral, remote.KeywordArgs[1].Kind)
	assert.Equal(t, "missing", remote.KeywordArgs[1].Literal)
}
