package catalog

import (
	"os"
	"path/filepath"
)

// SearchPaths returns declaration directories in precedence order.
func SearchPaths(projectDir string) []string {
	paths := make([]string, 0, 3)
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, ".faultgen", "faults"))
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, ".config", "faultgen", "faults"))
	}

	paths = append(paths, filepath.Join(string(filepath.Separator), "usr", "share", "faultgen", "faults"))
	return paths
}

// LoadFromSearchPaths loads declarations with first-hit precedence by name.
// Extra directories are searched before the standard ones and builtins come
// last unless includeBuiltins is false.
func LoadFromSearchPaths(projectDir string, extra []string, includeBuiltins bool) ([]*Declaration, error) {
	paths := append(append([]string{}, extra...), SearchPaths(projectDir)...)
	seen := make(map[string]*Declaration)
	order := make([]string, 0)

	add := func(decls []*Declaration) {
		for _, decl := range decls {
			if _, exists := seen[decl.Name]; exists {
				continue
			}
			seen[decl.Name] = decl
			order = append(order, decl.Name)
		}
	}

	for _, path := range paths {
		decls, err := LoadDeclarationsFromDir(path)
		if err != nil {
			return nil, err
		}
		add(decls)
	}

	if includeBuiltins {
		builtins, err := LoadBuiltinDeclarations()
		if err != nil {
			return nil, err
		}
		add(builtins)
	}

	resolved := make([]*Declaration, 0, len(order))
	for _, name := range order {
		resolved = append(resolved, seen[name])
	}
	return resolved, nil
}
