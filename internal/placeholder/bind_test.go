package placeholder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kwargStrings(kwargs []KeywordArg) []string {
	out := make([]string, len(kwargs))
	for i, kwarg := range kwargs {
		out[i] = kwarg.String()
	}
	return out
}

func TestBind(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		fields   []string
		affix    bool
		patterns []string
		kwargs   []string
	}{
		{
			name:     "nothing",
			patterns: []string{},
			kwargs:   []string{},
		},
		{
			name:     "fields without arguments",
			fields:   []string{"x", "y", "z"},
			affix:    true,
			patterns: []string{"_x_", "_y_", "_z_"},
			kwargs:   []string{},
		},
		{
			name:     "arguments without fields",
			args:     []string{"x", "y", "z"},
			affix:    true,
			patterns: []string{},
			kwargs:   []string{`placeholder0 = "x"`, `placeholder1 = "y"`, `placeholder2 = "z"`},
		},
		{
			name:     "named fields",
			args:     []string{"x", "y", "z"},
			fields:   []string{"x", "y"},
			patterns: []string{"x", "y"},
			kwargs:   []string{"placeholder0 = x", "placeholder1 = y", `placeholder2 = "z"`},
		},
		{
			name:     "positional fields",
			args:     []string{"0", "y", "1", "0", "-0", ""},
			fields:   []string{"0", "1"},
			affix:    true,
			patterns: []string{"_0_", "_1_"},
			kwargs: []string{
				"placeholder0 = _0_",
				`placeholder1 = "y"`,
				"placeholder2 = _1_",
				"placeholder3 = _0_",
				`placeholder4 = "-0"`,
				`placeholder5 = ""`,
			},
		},
		{
			name:     "no partial matches",
			args:     []string{"size_bytes", " size", "Size"},
			fields:   []string{"size"},
			patterns: []string{"size"},
			kwargs:   []string{`placeholder0 = "size_bytes"`, `placeholder1 = " size"`, `placeholder2 = "Size"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns, kwargs := Bind(tt.args, tt.fields, tt.affix)
			assert.Equal(t, tt.patterns, patterns)
			assert.Equal(t, tt.kwargs, kwargStrings(kwargs))
		})
	}
}

func TestBindRoundTrip(t *testing.T) {
	fields := []string{"path", "size"}
	args := []string{"size", "path", "other", "{"}

	_, kwargs := Bind(args, fields, false)
	require.Len(t, kwargs, len(args))

	for i, kwarg := range kwargs {
		assert.Equal(t, Marker(i), kwarg.Marker)
		switch args[i] {
		case "path", "size":
			assert.Equal(t, ArgField, kwarg.Kind)
			assert.Equal(t, args[i], fields[kwarg.Field])
			assert.Equal(t, args[i], kwarg.Pattern)
			assert.Empty(t, kwarg.Literal)
		default:
			assert.Equal(t, ArgLiteral, kwarg.Kind)
			assert.Equal(t, -1, kwarg.Field)
			assert.Equal(t, args[i], kwarg.Literal)
			assert.Empty(t, kwarg.Pattern)
		}
	}
}

func TestBindDuplicateFieldsPanics(t *testing.T) {
	assert.Panics(t, func() {
		Bind([]string{"a"}, []string{"a", "b", "a"}, false)
	})
}

func TestReferenced(t *testing.T) {
	_, kwargs := Bind([]string{"1", "x", "1"}, []string{"0", "1", "2"}, true)
	assert.Equal(t, []bool{false, true, false}, Referenced(3, kwargs))
	assert.Equal(t, []bool{}, Referenced(0, nil))
}

func TestKeywordArgJSON(t *testing.T) {
	_, kwargs := Bind([]string{"a", "b"}, []string{"a"}, false)

	data, err := json.Marshal(kwargs)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"marker":"placeholder0","kind":"field","field":0,"pattern":"a"},
		{"marker":"placeholder1","kind":"literal","field":-1,"literal":"b"}
	]`, string(data))
}
