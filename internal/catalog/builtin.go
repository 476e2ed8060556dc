package catalog

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// BuiltinSource marks declarations bundled with faultgen.
const BuiltinSource = "builtin"

// LoadBuiltinDeclarations returns the example declarations bundled with faultgen.
func LoadBuiltinDeclarations() ([]*Declaration, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin declarations: %w", err)
	}

	decls := make([]*Declaration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin declaration %s: %w", entry.Name(), err)
		}
		decl, err := ParseDeclaration(data)
		if err != nil {
			return nil, fmt.Errorf("parse builtin declaration %s: %w", entry.Name(), err)
		}
		decl.Source = BuiltinSource
		decls = append(decls, decl)
	}

	sortByName(decls)
	return decls, nil
}
