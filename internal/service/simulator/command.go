package simulator

import (
	"context"
	"fmt"

	api "github.com/mkravchuk/telecore/internal/api/grpc/callservice"
	"github.com/mkravchuk/telecore/internal/audio"
	"github.com/mkravchuk/telecore/internal/audio/console"
	"github.com/mkravchuk/telecore/internal/audio/miniaudio"
	"github.com/mkravchuk/telecore/internal/config"
	"github.com/mkravchuk/telecore/internal/logger"
	"github.com/mkravchuk/telecore/internal/service/calls"
	"github.com/mkravchuk/telecore/internal/service/callservice"
	"github.com/mkravchuk/telecore/internal/service/ringer"
)

// Options configures the ringsim process.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// PeerAddress overrides the call-service peer address from config.
	PeerAddress string

	// Interactive switches from the scripted walkthrough to the REPL.
	Interactive bool
}

// Run wires the ringer to actuators and, when a peer address is configured,
// binds a call-service proxy, then drives the simulation until it finishes or
// the context is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "ringsim")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	logger.Configure(cfg.LogLevel, cfg.LogFile)

	// Use peer address from options if provided, otherwise use config.
	peerAddress := cfg.PeerAddress
	if opts.PeerAddress != "" {
		peerAddress = opts.PeerAddress
	}

	actuators, closeActuators, err := buildActuators(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		if err := closeActuators(); err != nil {
			logger.WarnKV(ctx, "Closing audio backend failed", "error", err)
		}
	}()

	// Assemble the event pipeline: manager -> ringer -> actuators.
	mgr := calls.NewManager()
	rng := ringer.New(
		mgr,
		actuators.router,
		actuators.settings,
		actuators.ringtone,
		actuators.vibrator,
		actuators.tones,
	)
	mgr.AddListener(rng)

	// Without a peer the simulation runs purely locally.
	var proxy *callservice.Proxy

	if peerAddress != "" {
		proxy = callservice.New(peerAddress,
			callservice.WithAdapter(callservice.Adapter{Target: cfg.AdapterTarget}))
		defer proxy.Close()

		binder, err := api.NewBinder(peerAddress, proxy,
			api.WithClientOptions(api.WithCallTimeout(cfg.Timeout)))
		if err != nil {
			return fmt.Errorf("create binder: %w", err)
		}

		defer func() {
			_ = binder.Close()
		}()

		binder.Bind(ctx)

		logger.InfoKV(ctx, "Binding to call service peer", "peer_address", peerAddress)
	}

	if opts.Interactive {
		return runREPL(ctx, mgr, rng, proxy)
	}

	return runScenario(ctx, mgr, rng, proxy)
}

// actuatorSet names the audio collaborators the ringer needs, regardless of
// which backend provides them.
type actuatorSet struct {
	router   audio.Router
	settings audio.Settings
	ringtone audio.RingtonePlayer
	vibrator audio.Vibrator
	tones    audio.ToneFactory
}

// buildActuators assembles the configured audio backend. The console backend
// implements every collaborator itself; the miniaudio backend produces real
// sound for the ringtone and tones while the console still simulates the
// routing, settings and vibration hardware.
func buildActuators(ctx context.Context, cfg *config.Config) (*actuatorSet, func() error, error) {
	mode, _ := audio.ParseRingerMode(cfg.RingerMode)

	sim := console.New(ctx, console.Options{
		RingVolume:           cfg.EffectiveRingVolume(),
		ExternalDeviceActive: cfg.ExternalRingingDevice,
		RingerMode:           mode,
		VibrateWhenRinging:   cfg.VibrateWhenRinging,
	})

	set := &actuatorSet{
		router:   sim,
		settings: sim,
		ringtone: sim,
		vibrator: sim,
		tones:    sim,
	}

	if cfg.AudioBackend != config.AudioBackendMiniaudio {
		return set, func() error { return nil }, nil
	}

	engine, err := miniaudio.NewEngine(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("initialise audio backend: %w", err)
	}

	set.ringtone = engine
	set.tones = engine

	return set, engine.Close, nil
}
