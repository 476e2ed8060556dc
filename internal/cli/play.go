package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/faultgen/internal/tui"
)

var (
	playFields []string
	playNamed  bool
	playTheme  string
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringSliceVarP(&playFields, "field", "f", nil, "field ids to bind (repeatable)")
	playCmd.Flags().BoolVar(&playNamed, "named", false, "treat fields as named struct fields")
	playCmd.Flags().StringVar(&playTheme, "theme", "default", "color theme (default, high-contrast)")
}

var playCmd = &cobra.Command{
	Use:   "play [template]",
	Short: "Edit a template interactively and watch it normalize",
	Args:  usageArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if IsJSONOutput() || IsJSONLOutput() || IsNonInteractive() {
			return &PreflightError{
				Message:  "the playground needs an interactive terminal",
				Hint:     "Use faultgen inspect for scripted analysis",
				NextStep: "faultgen inspect '<template>' --json",
			}
		}

		opts := tui.Options{Fields: playFields, Named: playNamed, Theme: playTheme}
		if len(args) == 1 {
			opts.Template = args[0]
		}

		final, err := tui.Run(opts)
		if err != nil {
			return err
		}
		if final != "" {
			fmt.Println(final)
		}
		return nil
	},
}
