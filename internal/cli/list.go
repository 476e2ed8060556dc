package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/opencode-ai/faultgen/internal/catalog"
)

var (
	listTags   []string
	listSearch string
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringSliceVar(&listTags, "tag", nil, "only declarations carrying any of the tags")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "fuzzy match declaration names")
}

var listCmd = &cobra.Command{
	Use:     "list [paths...]",
	Aliases: []string{"ls"},
	Short:   "List discovered fault declarations",
	RunE: func(cmd *cobra.Command, args []string) error {
		decls, err := loadDeclarations(args)
		if err != nil {
			return err
		}

		entries := listDeclarations(decls, listTags, listSearch)
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, entries)
		}

		if len(entries) == 0 {
			logger.Info().Msg("no declarations matched")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, []string{
				entry.Name,
				entry.Package,
				strconv.Itoa(entry.Variants),
				strings.Join(entry.Tags, ","),
				sourceLabel(entry.Source),
			})
		}
		return writeTable(os.Stdout, []string{"NAME", "PACKAGE", "VARIANTS", "TAGS", "SOURCE"}, rows)
	},
}

// DeclarationEntry summarizes a declaration for listings.
type DeclarationEntry struct {
	Name        string   `json:"name"`
	Package     string   `json:"package"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Variants    int      `json:"variants"`
	Source      string   `json:"source"`
}

// listDeclarations filters by tags and, when search is set, orders by fuzzy
// match score instead of name.
func listDeclarations(decls []*catalog.Declaration, tags []string, search string) []DeclarationEntry {
	decls = catalog.FilterByTags(decls, tags)

	if search != "" {
		names := make([]string, len(decls))
		for i, decl := range decls {
			names[i] = decl.Name
		}
		matches := fuzzy.Find(search, names)
		ranked := make([]*catalog.Declaration, len(matches))
		for i, match := range matches {
			ranked[i] = decls[match.Index]
		}
		decls = ranked
	}

	entries := make([]DeclarationEntry, 0, len(decls))
	for _, decl := range decls {
		entries = append(entries, DeclarationEntry{
			Name:        decl.Name,
			Package:     decl.Package,
			Description: decl.Description,
			Tags:        decl.Tags,
			Variants:    len(decl.Variants),
			Source:      decl.Source,
		})
	}
	return entries
}
