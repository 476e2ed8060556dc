package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/faultgen/internal/compilerd"
	"github.com/opencode-ai/faultgen/internal/logging"
)

var (
	serveHost        string
	servePort        int
	serveNoRateLimit bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "address to listen on (default: daemon.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (default: daemon.port)")
	serveCmd.Flags().BoolVar(&serveNoRateLimit, "no-rate-limit", false, "disable per-method rate limits")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the compile service",
	Long: `Serve the faultgen.v1.Compiler gRPC service so editors and build tools
can format templates, bind fields and generate code without spawning the CLI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *configOrDefault()
		if serveNoRateLimit {
			cfg.Daemon.RateLimit = false
		}

		daemon, err := compilerd.New(&cfg, logging.Component("compilerd"), compilerd.Options{
			Hostname: serveHost,
			Port:     servePort,
			Version:  Version,
		})
		if err != nil {
			return err
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		return daemon.Run(ctx)
	},
}
