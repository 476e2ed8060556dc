package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDeclaration reads a single declaration from disk.
func LoadDeclaration(path string) (*Declaration, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("declaration path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read declaration %s: %w", path, err)
	}

	decl, err := ParseDeclaration(data)
	if err != nil {
		return nil, fmt.Errorf("parse declaration %s: %w", path, err)
	}
	decl.Source = path
	return decl, nil
}

// LoadDeclarationsFromDir loads all declarations from a directory.
// A missing directory yields no declarations.
func LoadDeclarationsFromDir(dir string) ([]*Declaration, error) {
	if strings.TrimSpace(dir) == "" {
		return []*Declaration{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Declaration{}, nil
		}
		return nil, fmt.Errorf("read declarations dir %s: %w", dir, err)
	}

	decls := make([]*Declaration, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !isYAML(entry.Name()) {
			continue
		}
		decl, err := LoadDeclaration(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}

	sortByName(decls)
	return decls, nil
}

// LoadPaths loads declarations from explicit files or directories.
func LoadPaths(paths []string) ([]*Declaration, error) {
	decls := make([]*Declaration, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			loaded, err := LoadDeclarationsFromDir(path)
			if err != nil {
				return nil, err
			}
			decls = append(decls, loaded...)
			continue
		}
		decl, err := LoadDeclaration(path)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// ParseDeclaration decodes and validates a declaration document.
func ParseDeclaration(data []byte) (*Declaration, error) {
	var decl Declaration
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return nil, err
	}

	decl.Name = strings.TrimSpace(decl.Name)
	decl.Package = strings.TrimSpace(decl.Package)
	decl.Description = strings.TrimSpace(decl.Description)
	for i := range decl.Variants {
		variant := &decl.Variants[i]
		variant.Name = strings.TrimSpace(variant.Name)
		variant.Description = strings.TrimSpace(variant.Description)
		for j := range variant.Fields {
			variant.Fields[j].Name = strings.TrimSpace(variant.Fields[j].Name)
			variant.Fields[j].Type = strings.TrimSpace(variant.Fields[j].Type)
		}
	}

	if err := Validate(&decl); err != nil {
		return nil, err
	}
	return &decl, nil
}

// FindByName returns the declaration with the given name, ignoring case.
func FindByName(decls []*Declaration, name string) *Declaration {
	for _, decl := range decls {
		if strings.EqualFold(decl.Name, name) {
			return decl
		}
	}
	return nil
}

// FilterByTags keeps declarations carrying at least one of the tags.
func FilterByTags(decls []*Declaration, tags []string) []*Declaration {
	if len(tags) == 0 {
		return decls
	}

	wanted := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		wanted[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}

	filtered := make([]*Declaration, 0, len(decls))
	for _, decl := range decls {
		for _, tag := range decl.Tags {
			if _, ok := wanted[strings.ToLower(tag)]; ok {
				filtered = append(filtered, decl)
				break
			}
		}
	}
	return filtered
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func sortByName(decls []*Declaration) {
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
}
