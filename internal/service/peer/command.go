package peer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"
	"google.golang.org/grpc"

	api "github.com/mkravchuk/telecore/internal/api/grpc/callservice"
	"github.com/mkravchuk/telecore/internal/config"
	"github.com/mkravchuk/telecore/internal/logger"
)

// Options controls the callpeerd process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
}

// ErrNoPeerAddress indicates missing peer address configuration.
var ErrNoPeerAddress = errors.New("no peer address configured")

// ErrAlreadyRunning indicates another callpeerd instance owns this host.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "callpeerd")

	// Load configuration first to get peer settings.
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logger.Configure(settings.LogLevel, settings.LogFile)

	// Only one peer may answer for a host; a second instance would fight
	// over the listen port and confuse bound hosts.
	if err = ensureSingleInstance(); err != nil {
		return err
	}

	// Determine listen address: CLI argument overrides config port extraction.
	listenAddress, err := resolveListenAddress(settings.PeerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	svc := newService()

	// Setup TCP listener for gRPC server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	// Create and configure gRPC server with the call service.
	grpcServer := grpc.NewServer()
	api.RegisterCallServiceServer(grpcServer, svc)

	logger.InfoKV(ctx, "Call service peer listening", "listen_address", listenAddress)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// ensureSingleInstance scans the process table for another copy of this
// executable and refuses to start if one is found.
func ensureSingleInstance() error {
	processList, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	executable := filepath.Base(os.Args[0])
	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == executable {
			return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, process.Pid())
		}
	}

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	// Use override address if provided (e.g., ":9090", "0.0.0.0:8080").
	if override != "" {
		return override, nil
	}

	// Extract port from config address (e.g., "peer.example.com:8080" -> ":8080").
	if configAddr == "" {
		return "", ErrNoPeerAddress
	}

	// Parse the address to extract port.
	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid peer address format %q: %w", configAddr, err)
	}

	// Return port-only listen address to bind on all interfaces.
	return ":" + port, nil
}
