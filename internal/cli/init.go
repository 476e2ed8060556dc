package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/faultgen/internal/config"
)

var (
	initForce     bool
	initNoProject bool

	configDirFunc = defaultConfigDir
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
	initCmd.Flags().BoolVar(&initNoProject, "no-project", false, "only write the user config")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config, ledger and an example declaration",
	Long: `Initialize faultgen:

  1. Write a commented config.yaml to the user config directory
  2. Scaffold .faultgen/faults/example.yaml in the project
  3. Create the generation ledger database`,
	RunE: func(cmd *cobra.Command, args []string) error {
		results := []initResult{createConfigFile()}
		if !initNoProject {
			results = append(results, createProjectLayout(resolveProjectDir()))
		}
		results = append(results, initDatabase())

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, initResultsOutput(results))
		}

		failed := 0
		for _, result := range results {
			fmt.Printf("%-22s %s %s\n", result.name, formatInitStatus(result.status), result.message)
			if result.status == "failed" {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d init steps failed", failed)
		}
		fmt.Println("\nNext: faultgen check, then faultgen generate")
		return nil
	},
}

type initResult struct {
	name    string
	status  string // done, skipped, failed
	message string
}

type initResultOutput struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func initResultsOutput(results []initResult) []initResultOutput {
	out := make([]initResultOutput, len(results))
	for i, result := range results {
		out[i] = initResultOutput{Name: result.name, Status: result.status, Message: result.message}
	}
	return out
}

func formatInitStatus(status string) string {
	switch status {
	case "done":
		return colorize("✓", colorGreen)
	case "skipped":
		return colorize("-", colorCyan)
	default:
		return colorize("✗", colorRed)
	}
}

func defaultConfigDir() string {
	return config.ConfigDir()
}

func createConfigFile() initResult {
	result := initResult{name: "Config file"}
	path := filepath.Join(configDirFunc(), "config.yaml")
	return writeInitFile(result, path, configTemplate)
}

func createProjectLayout(root string) initResult {
	result := initResult{name: "Example declaration"}
	path := filepath.Join(config.ProjectDir(root), "faults", "example.yaml")
	return writeInitFile(result, path, exampleDeclaration)
}

func writeInitFile(result initResult, path, content string) initResult {
	if _, err := os.Stat(path); err == nil && !initForce {
		result.status = "skipped"
		result.message = fmt.Sprintf("%s already exists (use --force to overwrite)", path)
		return result
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		result.status = "failed"
		result.message = err.Error()
		return result
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		result.status = "failed"
		result.message = err.Error()
		return result
	}
	result.status = "done"
	result.message = path
	return result
}

func initDatabase() initResult {
	result := initResult{name: "Ledger database"}
	database, err := openDatabase()
	if err != nil {
		result.status = "failed"
		result.message = err.Error()
		return result
	}
	defer database.Close()

	result.status = "done"
	result.message = database.Path()
	return result
}

const configTemplate = `# faultgen Configuration File
#
# Values here are overridden by <project>/.faultgen/config.yaml and by
# FAULTGEN_* environment variables (FAULTGEN_LOGGING_LEVEL=debug).

generate:
  # Directory for generated files. Empty writes next to each declaration.
  output_dir: ""
  # Emit ANSI colored [error]/[cause]/[debug] prefixes in Error().
  colorize: false
  # Append every generated file to this log.
  log_output: ""
  # Generate even when a declared field is never referenced.
  allow_unused: false

search:
  # Extra declaration directories, searched before the standard ones.
  paths: []
  # Also offer the builtin example declarations.
  include_builtins: false

database:
  # Generation ledger.
  path: ~/.local/share/faultgen/faultgen.db

logging:
  level: info       # trace, debug, info, warn, error
  format: console   # console or json

daemon:
  host: 127.0.0.1
  port: 50071
  rate_limit: true
`

const exampleDeclaration = `name: ExampleError
package: errs
description: A starting point; rename and edit.
tags: [example]
variants:
  - name: NotFound
    fields:
      - type: string
    error: "{0} was not found"
    debug: "check the {{name}} you passed"
  - name: Timeout
    fields:
      - {name: op, type: string}
      - {name: seconds, type: int}
    error: "{op} timed out after {seconds}s"
    cause: "the upstream did not answer"
`
