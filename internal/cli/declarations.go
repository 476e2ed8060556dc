package cli

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/opencode-ai/faultgen/internal/catalog"
	"github.com/opencode-ai/faultgen/internal/codegen"
)

// loadDeclarations loads explicit paths, or every declaration on the search
// paths when none are given.
func loadDeclarations(paths []string) ([]*catalog.Declaration, error) {
	if len(paths) > 0 {
		decls, err := catalog.LoadPaths(paths)
		if err != nil {
			return nil, &PreflightError{
				Message:  err.Error(),
				Hint:     "Check the declaration files passed on the command line",
				NextStep: "faultgen check " + paths[0],
			}
		}
		return decls, nil
	}

	cfg := configOrDefault()
	project := resolveProjectDir()
	decls, err := catalog.LoadFromSearchPaths(project, searchDirs(project, cfg.Search.Paths), cfg.Search.IncludeBuiltins)
	if err != nil {
		return nil, &PreflightError{
			Message:  err.Error(),
			Hint:     "Fix or remove the invalid declaration file",
			NextStep: "faultgen list",
		}
	}
	if len(decls) == 0 {
		return nil, &PreflightError{
			Message:  "no fault declarations found",
			Hint:     fmt.Sprintf("Add YAML declarations under %s or pass files explicitly", filepath.Join(project, ".faultgen", "faults")),
			NextStep: "faultgen init",
		}
	}
	return decls, nil
}

// searchDirs resolves configured search paths against the project root.
func searchDirs(project string, paths []string) []string {
	dirs := make([]string, 0, len(paths))
	for _, path := range paths {
		if !filepath.IsAbs(path) {
			path = filepath.Join(project, path)
		}
		dirs = append(dirs, path)
	}
	return dirs
}

// entityID identifies a declaration in the ledger.
func entityID(decl *catalog.Declaration) string {
	if decl.Source == "" || decl.Source == catalog.BuiltinSource {
		return catalog.BuiltinSource + ":" + decl.Name
	}
	if abs, err := filepath.Abs(decl.Source); err == nil {
		return abs
	}
	return decl.Source
}

// declarationChecksum fingerprints everything that affects generated output.
func declarationChecksum(decl *catalog.Declaration, opts codegen.Options) (string, error) {
	data, err := json.Marshal(struct {
		Declaration *catalog.Declaration `json:"declaration"`
		Options     codegen.Options      `json:"options"`
		Version     string               `json:"version"`
	}{decl, opts, Version})
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint %s: %w", decl.Name, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// outputDir picks where generated code for decl is written.
func outputDir(decl *catalog.Declaration, override string) string {
	if override != "" {
		return override
	}
	if decl.Source == "" || decl.Source == catalog.BuiltinSource {
		return resolveProjectDir()
	}
	return filepath.Dir(decl.Source)
}
