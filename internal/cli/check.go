package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/faultgen/internal/catalog"
	"github.com/opencode-ai/faultgen/internal/codegen"
	"github.com/opencode-ai/faultgen/internal/compiler"
	"github.com/opencode-ai/faultgen/internal/db"
	"github.com/opencode-ai/faultgen/internal/events"
	"github.com/opencode-ai/faultgen/internal/logging"
	"github.com/opencode-ai/faultgen/internal/models"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Validate fault declarations without generating code",
	Long: `Compile every declaration and report fields that no error, cause or
debug message references. Results are recorded in the generation ledger.`,
	Example: `  faultgen check
  faultgen check faults/storage.yaml --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		decls, err := loadDeclarations(args)
		if err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		results, err := runCheck(cmd.Context(), decls, db.NewEventRepository(database))
		if err != nil {
			return err
		}

		if IsJSONOutput() || IsJSONLOutput() {
			if err := WriteOutput(os.Stdout, results); err != nil {
				return err
			}
		} else {
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				rows = append(rows, []string{
					result.Declaration,
					sourceLabel(result.Source),
					strconv.Itoa(result.Variants),
					formatOutcome(result.Status),
					truncate(result.Error, 80),
				})
			}
			if err := writeTable(os.Stdout, []string{"DECLARATION", "SOURCE", "VARIANTS", "STATUS", "DETAIL"}, rows); err != nil {
				return err
			}
		}

		failed := 0
		for _, result := range results {
			if result.Status == statusFailed {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d declarations failed checks", failed, len(results))
		}
		return nil
	},
}

// CheckResult reports the outcome of checking one declaration.
type CheckResult struct {
	Declaration string                 `json:"declaration"`
	Source      string                 `json:"source"`
	Status      string                 `json:"status"`
	Variants    int                    `json:"variants"`
	Unused      []compiler.UnusedField `json:"unused,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// runCheck compiles each declaration on its own so one failure does not hide
// the others.
func runCheck(ctx context.Context, decls []*catalog.Declaration, ledger *db.EventRepository) ([]CheckResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	comp := compiler.New(logging.Component("compiler"))
	results := make([]CheckResult, 0, len(decls))
	for _, decl := range decls {
		result := CheckResult{
			Declaration: decl.Name,
			Source:      decl.Source,
			Variants:    len(decl.Variants),
			Status:      statusPassed,
		}

		fault, err := comp.Compile(decl)
		switch {
		case err != nil:
			result.Status = statusFailed
			result.Error = err.Error()
		case fault.UnusedErr() != nil:
			result.Status = statusFailed
			result.Unused = fault.Unused
			result.Error = fault.UnusedErr().Error()
		}

		checksum, err := declarationChecksum(decl, codegen.Options{})
		if err != nil {
			return results, err
		}

		var unused []string
		if fault != nil {
			unused = unusedNames(fault.Unused)
		}
		if err := events.LogCheck(ctx, ledger, entityID(decl), models.CheckPayload{
			Declaration: decl.Name,
			Checksum:    checksum,
			Variants:    result.Variants,
			Unused:      unused,
			Error:       result.Error,
		}, ledgerMetadata()); err != nil {
			return results, err
		}

		results = append(results, result)
	}
	return results, nil
}

func sourceLabel(source string) string {
	if source == "" {
		return catalog.BuiltinSource
	}
	return truncate(source, 48)
}
