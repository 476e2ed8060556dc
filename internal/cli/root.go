// Package cli implements the faultgen command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/opencode-ai/faultgen/internal/config"
	"github.com/opencode-ai/faultgen/internal/logging"
)

// Version is set at build time.
var Version = "dev"

var (
	cfgFile        string
	projectDir     string
	jsonOutput     bool
	jsonlOutput    bool
	verbose        bool
	nonInteractive bool
	noProgress     bool
	logLevel       string

	appConfig *config.Config
	logger    = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "faultgen",
	Short: "Generate Go error types from placeholder templates",
	Long: `faultgen compiles fault declarations into Go error types.

Each declaration names an error type and its variants. Every variant carries
error, cause and debug message templates whose {placeholders} reference the
variant's fields; escaped braces ({{ and }}) stay literal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: <project>/.faultgen/config.yaml or ~/.config/faultgen/config.yaml)")
	flags.StringVar(&projectDir, "project", "", "project root (default: current directory)")
	flags.BoolVar(&jsonOutput, "json", false, "output JSON")
	flags.BoolVar(&jsonlOutput, "jsonl", false, "output JSON lines")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never prompt; fail instead")
	flags.BoolVar(&noProgress, "no-progress", false, "disable progress output")
	flags.StringVar(&logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(cmd, err)
	})
}

// usageArgs reports argument count errors as usage failures.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(cmd, err)
		}
		return nil
	}
}

func usageError(cmd *cobra.Command, err error) error {
	return &PreflightError{
		Message:  err.Error(),
		Hint:     "Usage: " + cmd.UseLine(),
		NextStep: cmd.CommandPath() + " --help",
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initConfig() error {
	if jsonOutput && jsonlOutput {
		return &PreflightError{
			Message:  "--json and --jsonl cannot be combined",
			Hint:     "Pick one output format",
			NextStep: "faultgen list --json",
		}
	}

	loader := config.NewLoader()
	if cfgFile != "" {
		loader.SetConfigFile(cfgFile)
	}
	loader.SetProjectDir(resolveProjectDir())

	cfg, err := loader.Load()
	if err != nil {
		return &PreflightError{
			Message:  err.Error(),
			Hint:     "Fix the configuration file or environment overrides",
			NextStep: "faultgen init --force",
		}
	}

	if logLevel != "" {
		cfg.Logging.Level = strings.ToLower(logLevel)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logger = logging.Component("cli")
	if used := loader.ConfigFileUsed(); used != "" {
		logger.Debug().Str("path", used).Msg("loaded config")
	}

	appConfig = cfg
	return nil
}

// GetConfig returns the loaded configuration, or nil before initialization.
func GetConfig() *config.Config {
	return appConfig
}

func configOrDefault() *config.Config {
	if cfg := GetConfig(); cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}

func resolveProjectDir() string {
	if projectDir != "" {
		return projectDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// ExitCode maps an Execute error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var preflight *PreflightError
	if errors.As(err, &preflight) {
		return 2
	}
	return 1
}

// PrintError writes err to stderr in the command's output mode.
func PrintError(err error) {
	if err == nil {
		return
	}
	if IsJSONOutput() || IsJSONLOutput() {
		_ = WriteOutput(os.Stderr, errorOutput(err))
		return
	}
	var preflight *PreflightError
	if errors.As(err, &preflight) {
		fmt.Fprint(os.Stderr, preflight.Detailed())
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", colorize("error:", colorRed), err)
}
