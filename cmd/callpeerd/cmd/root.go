package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkravchuk/telecore/internal/config"
	"github.com/mkravchuk/telecore/internal/service/peer"
	"github.com/mkravchuk/telecore/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for running the call service peer.
	rootCmd = &cobra.Command{
		Use:   "callpeerd [listen-address]",
		Short: "Run a reference call service peer over gRPC.",
		Long: `Starts a gRPC call service that hosts can bind to. The peer acknowledges
every command, remembers the configured adapter target, and keeps a table of
the calls it was asked to place.

The peer listens on the specified address or uses settings from configuration
file. Only the port from PeerAddress config is used for listening (e.g. :9000).
Listen address can be provided as argument to override config (e.g. :9100,
0.0.0.0:9000). Only one instance may run per host.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &peer.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
			}

			return peer.Run(ctx, options)
		},
	}
)

// Execute runs the callpeerd CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
