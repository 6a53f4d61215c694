package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkravchuk/telecore/internal/config"
	"github.com/mkravchuk/telecore/internal/service/simulator"
	"github.com/mkravchuk/telecore/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// interactive switches from the scripted walkthrough to the command loop.
	interactive bool

	// rootCmd represents the base command for running the ringing simulator.
	rootCmd = &cobra.Command{
		Use:   "ringsim [peer-address]",
		Short: "Simulate a device ringing for incoming calls.",
		Long: `Runs a host device simulation: incoming calls ring, compete for the single
audible output, and yield to the call-waiting tone when the user is busy.

By default a scripted scenario walks through the arbitration behaviors; pass
--interactive to drive calls by hand. When a peer address is configured (or
given as an argument, e.g. localhost:9000), outgoing calls are forwarded to
that call service over gRPC.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use peer address argument if provided, otherwise rely on config.
			var peerAddress string
			if len(args) > 0 {
				peerAddress = args[0]
			}

			options := &simulator.Options{
				ConfigPath:  configPath,
				PeerAddress: peerAddress,
				Interactive: interactive,
			}

			return simulator.Run(ctx, options)
		},
	}
)

// Execute runs the ringsim CLI and exits with non-zero status on error.
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
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "drive calls interactively instead of the scripted scenario")
}
