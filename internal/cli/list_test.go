package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/faultgen/internal/catalog"
)

func TestListDeclarations(t *testing.T) {
	decls, err := catalog.LoadBuiltinDeclarations()
	require.NoError(t, err)

	names := func(entries []DeclarationEntry) []string {
		out := make([]string, len(entries))
		for i, entry := range entries {
			out[i] = entry.Name
		}
		return out
	}

	all := listDeclarations(decls, nil, "")
	assert.ElementsMatch(t, []string{"ConfigError", "RequestError", "StorageError"}, names(all))

	tagged := listDeclarations(decls, []string{"io"}, "")
	assert.Equal(t, []string{"StorageError"}, names(tagged))
	assert.Equal(t, catalog.BuiltinSource, tagged[0].Source)
	assert.Equal(t, 4, tagged[0].Variants)

	searched := listDeclarations(decls, nil, "reqerr")
	assert.Equal(t, []string{"RequestError"}, names(searched))

	assert.Empty(t, listDeclarations(decls, nil, "zzz"))
}

func TestSearchDirs(t *testing.T) {
	dirs := searchDirs("/work/project", []string{"faults", "/abs/faults"})
	assert.Equal(t, []string{"/work/project/faults", "/abs/faults"}, dirs)
}
