package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
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

var (
	generateOut         string
	generateForce       bool
	generateColor       bool
	generateAllowUnused bool
	generateDryRun      bool
	generateOnly        []string
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "directory for generated files (default: next to each declaration)")
	generateCmd.Flags().BoolVar(&generateForce, "force", false, "regenerate even when the declaration is unchanged")
	generateCmd.Flags().BoolVar(&generateColor, "color", false, "emit ANSI colored prefixes in Error()")
	generateCmd.Flags().BoolVar(&generateAllowUnused, "allow-unused", false, "generate even when fields are unused")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "compile and render without writing files")
	generateCmd.Flags().StringSliceVar(&generateOnly, "only", nil, "generate only the named declarations")
}

var generateCmd = &cobra.Command{
	Use:   "generate [paths...]",
	Short: "Generate Go error types from fault declarations",
	Long: `Compile fault declarations and write one Go file per declaration.

Without paths, declarations are discovered under .faultgen/faults in the
project, the user config directory and any configured search paths.
Declarations whose content has not changed since the last generation are
skipped unless --force is given.`,
	Example: `  faultgen generate
  faultgen generate faults/storage.yaml --out internal/errs
  faultgen generate --only StorageError --dry-run --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		decls, err := loadDeclarations(args)
		if err != nil {
			return err
		}
		if decls, err = selectDeclarations(decls, generateOnly); err != nil {
			return err
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		opts := generateOptionsFromFlags(cmd)
		progress := startProgress("Generating", len(decls))
		opts.OnResult = func(result GenerateResult) { progress.Advance(result.Declaration) }
		results, err := runGenerate(cmd.Context(), decls, db.NewEventRepository(database), opts)
		if err != nil {
			progress.Fail(err)
			return err
		}
		progress.Done()

		if IsJSONOutput() || IsJSONLOutput() {
			if err := WriteOutput(os.Stdout, results); err != nil {
				return err
			}
		} else if err := printGenerateResults(results); err != nil {
			return err
		}

		if failed := countStatus(results, statusFailed); failed > 0 {
			return fmt.Errorf("%d of %d declarations failed", failed, len(results))
		}
		return nil
	},
}

type generateOptions struct {
	OutputDir   string
	Colorize    bool
	AllowUnused bool
	Force       bool
	DryRun      bool
	LogOutput   string
	// OnResult, when set, is called after each declaration is handled.
	OnResult func(GenerateResult)
}

// Reasons recorded on generation.skipped events.
const (
	reasonUnchanged    = "unchanged"
	reasonUnusedFields = "unused fields"
)

// GenerateResult reports what generate did with one declaration.
type GenerateResult struct {
	Declaration string                 `json:"declaration"`
	Source      string                 `json:"source"`
	Output      string                 `json:"output,omitempty"`
	Status      string                 `json:"status"`
	Variants    int                    `json:"variants"`
	Checksum    string                 `json:"checksum"`
	Unused      []compiler.UnusedField `json:"unused,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

func (o generateOptions) codegen() codegen.Options {
	return codegen.Options{Colorize: o.Colorize}
}

func generateOptionsFromFlags(cmd *cobra.Command) generateOptions {
	cfg := configOrDefault()
	opts := generateOptions{
		OutputDir:   cfg.Generate.OutputDir,
		Colorize:    cfg.Generate.Colorize,
		AllowUnused: cfg.Generate.AllowUnused,
		LogOutput:   cfg.Generate.LogOutput,
		Force:       generateForce,
		DryRun:      generateDryRun,
	}
	if cmd.Flags().Changed("out") {
		opts.OutputDir = generateOut
	}
	if cmd.Flags().Changed("color") {
		opts.Colorize = generateColor
	}
	if cmd.Flags().Changed("allow-unused") {
		opts.AllowUnused = generateAllowUnused
	}
	return opts
}

func runGenerate(ctx context.Context, decls []*catalog.Declaration, ledger *db.EventRepository, opts generateOptions) ([]GenerateResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	faults, err := compiler.New(logging.Component("compiler")).CompileAll(ctx, decls)
	if err != nil {
		return nil, err
	}

	results := make([]GenerateResult, 0, len(faults))
	for _, fault := range faults {
		result, err := generateOne(ctx, fault, ledger, opts)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		if opts.OnResult != nil {
			opts.OnResult(result)
		}
	}
	return results, nil
}

func generateOne(ctx context.Context, fault *compiler.Fault, ledger *db.EventRepository, opts generateOptions) (GenerateResult, error) {
	decl := fault.Declaration
	result := GenerateResult{
		Declaration: decl.Name,
		Source:      decl.Source,
		Variants:    len(fault.Variants),
		Unused:      fault.Unused,
	}

	codegenOpts := opts.codegen()
	checksum, err := declarationChecksum(decl, codegenOpts)
	if err != nil {
		return result, err
	}
	result.Checksum = checksum

	if unusedErr := fault.UnusedErr(); unusedErr != nil && !opts.AllowUnused {
		result.Status = statusFailed
		result.Error = unusedErr.Error()
		if opts.DryRun {
			return result, nil
		}
		// No checksum: a refusal must never satisfy the unchanged check.
		err := events.LogGeneration(ctx, ledger, models.EventTypeGenerationSkipped, entityID(decl), models.GenerationPayload{
			Declaration: decl.Name,
			Variants:    result.Variants,
			Unused:      unusedNames(fault.Unused),
			Reason:      reasonUnusedFields,
		}, ledgerMetadata())
		return result, err
	}

	outPath := filepath.Join(outputDir(decl, opts.OutputDir), codegen.OutputFileName(fault))
	result.Output = outPath

	if !opts.Force && !opts.DryRun {
		previous, err := ledger.LatestChecksum(ctx, entityID(decl))
		if err != nil {
			return result, err
		}
		if previous == checksum && fileExists(outPath) {
			result.Status = statusUnchanged
			logger.Debug().Str("declaration", decl.Name).Msg("declaration unchanged, skipping")
			err := events.LogGeneration(ctx, ledger, models.EventTypeGenerationSkipped, entityID(decl), models.GenerationPayload{
				Declaration: decl.Name,
				Checksum:    checksum,
				Output:      outPath,
				Variants:    result.Variants,
				Unused:      unusedNames(fault.Unused),
				Reason:      reasonUnchanged,
			}, ledgerMetadata())
			return result, err
		}
	}

	src, err := codegen.Generate(fault, codegenOpts)
	if err != nil {
		result.Status = statusFailed
		result.Error = err.Error()
		return result, nil
	}

	if opts.DryRun {
		result.Status = statusDryRun
		return result, nil
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return result, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		return result, fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	if opts.LogOutput != "" {
		if err := codegen.AppendLog(opts.LogOutput, decl.Name, src); err != nil {
			return result, err
		}
	}

	result.Status = statusGenerated
	logger.Info().Str("declaration", decl.Name).Str("output", outPath).Msg("generated")

	err = events.LogGeneration(ctx, ledger, models.EventTypeGenerationCompleted, entityID(decl), models.GenerationPayload{
		Declaration: decl.Name,
		Checksum:    checksum,
		Output:      outPath,
		Variants:    result.Variants,
		Unused:      unusedNames(fault.Unused),
	}, ledgerMetadata())
	return result, err
}

func ledgerMetadata() map[string]string {
	return map[string]string{"version": Version}
}

func unusedNames(fields []compiler.UnusedField) []string {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Variant + "." + field.Field
	}
	return names
}

func printGenerateResults(results []GenerateResult) error {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		detail := result.Output
		if result.Error != "" {
			detail = result.Error
		}
		rows = append(rows, []string{
			result.Declaration,
			strconv.Itoa(result.Variants),
			formatOutcome(result.Status),
			truncate(detail, 80),
		})
	}
	return writeTable(os.Stdout, []string{"DECLARATION", "VARIANTS", "STATUS", "OUTPUT"}, rows)
}

func countStatus(results []GenerateResult, status string) int {
	count := 0
	for _, result := range results {
		if result.Status == status {
			count++
		}
	}
	return count
}

// selectDeclarations keeps the declarations named in only, in that order.
func selectDeclarations(decls []*catalog.Declaration, only []string) ([]*catalog.Declaration, error) {
	if len(only) == 0 {
		return decls, nil
	}
	selected := make([]*catalog.Declaration, 0, len(only))
	for _, name := range only {
		decl := catalog.FindByName(decls, name)
		if decl == nil {
			return nil, &PreflightError{
				Message:  fmt.Sprintf("declaration %q not found", name),
				Hint:     "Names are matched case-insensitively against discovered declarations",
				NextStep: "faultgen list",
			}
		}
		selected = append(selected, decl)
	}
	return selected, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
