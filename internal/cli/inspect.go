package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/opencode-ai/faultgen/internal/compilerd"
	"github.com/opencode-ai/faultgen/internal/placeholder"
)

var (
	inspectFields []string
	inspectNamed  bool
	inspectRemote string
)

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringSliceVarP(&inspectFields, "field", "f", nil, "field ids to bind (repeatable)")
	inspectCmd.Flags().BoolVar(&inspectNamed, "named", false, "treat fields as named struct fields instead of positional ones")
	inspectCmd.Flags().StringVar(&inspectRemote, "remote", "", "compile through a running faultgen service at host:port")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <template>",
	Short: "Show how a template is normalized and bound",
	Long: `Normalize a single message template and, when fields are given, bind
its placeholders to them and report the fields it leaves unused.`,
	Example: `  faultgen inspect 'object {0} was not found' --field 0
  faultgen inspect 'quota {used}/{limit}' -f used -f limit --named
  faultgen inspect '{{literal}} {x}' --remote 127.0.0.1:50071`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			result *InspectResult
			err    error
		)
		if inspectRemote != "" {
			result, err = inspectRemoteTemplate(cmd.Context(), inspectRemote, args[0], inspectFields, !inspectNamed)
		} else {
			result, err = inspectTemplate(args[0], inspectFields, !inspectNamed)
		}
		if err != nil {
			return err
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(os.Stdout, result)
		}
		return printInspectResult(result)
	},
}

// InspectResult is the analysis of one template.
type InspectResult struct {
	Template    string                   `json:"template"`
	Normalized  string                   `json:"normalized"`
	Arguments   []string                 `json:"arguments"`
	Patterns    []string                 `json:"patterns,omitempty"`
	KeywordArgs []placeholder.KeywordArg `json:"keyword_args,omitempty"`
	Unused      []string                 `json:"unused,omitempty"`
}

func inspectTemplate(template string, fields []string, affix bool) (*InspectResult, error) {
	if err := checkInspectInput(template, fields); err != nil {
		return nil, err
	}

	normalized, arguments := placeholder.Format(template)
	result := &InspectResult{Template: template, Normalized: normalized, Arguments: arguments}
	if len(fields) == 0 {
		return result, nil
	}
	result.Patterns, result.KeywordArgs = placeholder.Bind(arguments, fields, affix)
	result.Unused = placeholder.UnusedFields(fields, arguments)
	return result, nil
}

func inspectRemoteTemplate(ctx context.Context, addr, template string, fields []string, affix bool) (*InspectResult, error) {
	if err := checkInspectInput(template, fields); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, &PreflightError{
			Message:  fmt.Sprintf("cannot connect to %s: %v", addr, err),
			Hint:     "Start the service with faultgen serve",
			NextStep: "faultgen serve",
		}
	}
	defer conn.Close()

	client := compilerd.NewClient(conn)
	ping, err := client.Ping(ctx)
	if err != nil {
		return nil, &PreflightError{
			Message:  fmt.Sprintf("compile service at %s is not reachable: %v", addr, err),
			Hint:     "Start the service with faultgen serve",
			NextStep: "faultgen serve",
		}
	}
	logger.Debug().Str("addr", addr).Str("version", ping.Version).Msg("connected to compile service")

	normalized, arguments, err := client.Format(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("remote format failed: %w", err)
	}
	result := &InspectResult{Template: template, Normalized: normalized, Arguments: arguments}
	if len(fields) == 0 {
		return result, nil
	}

	result.Patterns, result.KeywordArgs, err = client.Bind(ctx, arguments, fields, affix)
	if err != nil {
		return nil, fmt.Errorf("remote bind failed: %w", err)
	}
	result.Unused, err = client.CheckUsage(ctx, fields, arguments)
	if err != nil {
		return nil, fmt.Errorf("remote usage check failed: %w", err)
	}
	return result, nil
}

func printInspectResult(result *InspectResult) error {
	fmt.Printf("Template:   %s\n", result.Template)
	fmt.Printf("Normalized: %s\n", result.Normalized)
	if len(result.Arguments) == 0 {
		fmt.Println("Arguments:  (none)")
		return nil
	}

	if len(result.KeywordArgs) == 0 {
		rows := make([][]string, len(result.Arguments))
		for i, arg := range result.Arguments {
			rows[i] = []string{placeholder.Marker(i), arg}
		}
		fmt.Println()
		return writeTable(os.Stdout, []string{"MARKER", "ARGUMENT"}, rows)
	}

	rows := make([][]string, len(result.KeywordArgs))
	for i, kwarg := range result.KeywordArgs {
		value := kwarg.Literal
		if kwarg.Kind == placeholder.ArgField {
			value = kwarg.Pattern
		}
		rows[i] = []string{kwarg.Marker, result.Arguments[i], kwarg.Kind.String(), value}
	}
	fmt.Println()
	if err := writeTable(os.Stdout, []string{"MARKER", "ARGUMENT", "KIND", "VALUE"}, rows); err != nil {
		return err
	}
	if len(result.Unused) > 0 {
		fmt.Printf("\n%s %s\n", colorize("Unused fields:", colorYellow), strings.Join(result.Unused, ", "))
	}
	return nil
}

func checkInspectInput(template string, fields []string) error {
	if !utf8.ValidString(template) {
		return &PreflightError{
			Message:  "template is not valid UTF-8",
			Hint:     "Templates are scanned as characters; invalid bytes cannot round-trip",
			NextStep: "faultgen inspect '<template>'",
		}
	}
	if dup := duplicateField(fields); dup != "" {
		return duplicateFieldError(dup)
	}
	return nil
}

func duplicateField(fields []string) string {
	seen := make(map[string]bool, len(fields))
	for _, field := range fields {
		if seen[field] {
			return field
		}
		seen[field] = true
	}
	return ""
}

func duplicateFieldError(field string) error {
	return &PreflightError{
		Message:  fmt.Sprintf("field %q is given more than once", field),
		Hint:     "Field ids must be unique within a variant",
		NextStep: "faultgen inspect <template> --field a --field b",
	}
}
