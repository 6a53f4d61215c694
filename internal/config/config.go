package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mkravchuk/telecore/internal/audio"
)

// Config holds the settings shared by the telecore binaries.
type Config struct {
	// PeerAddress is the gRPC address of the remote call service. Empty
	// runs the simulator without a proxy.
	PeerAddress string `yaml:"peer_addr"`
	// AdapterTarget is the callback address peers report outcomes to.
	AdapterTarget string `yaml:"adapter_target"`
	// Timeout bounds individual forwarded operations.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level for log output (debug/info/warn/error).
	LogLevel string `yaml:"log_level"`
	// LogFile, when set, adds a size-rotated log file sink.
	LogFile string `yaml:"log_file"`

	// RingVolume is the ring stream volume, 0 to 7; zero mutes the ringtone.
	RingVolume int `yaml:"ring_volume"`
	// RingerMode is the device-wide ringer mode: normal, vibrate or silent.
	RingerMode string `yaml:"ringer_mode"`
	// VibrateWhenRinging is the user vibrate preference.
	VibrateWhenRinging bool `yaml:"vibrate_when_ringing"`
	// ExternalRingingDevice simulates a paired device announcing calls itself.
	ExternalRingingDevice bool `yaml:"external_ringing_device"`
	// AudioBackend selects the actuator implementation: console or miniaudio.
	AudioBackend string `yaml:"audio_backend"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "telecore-settings.yaml"

	// DefaultTimeout is the default duration for forwarded operations.
	DefaultTimeout = 5 * time.Second

	// DefaultRingVolume is the ring stream volume used when unset.
	DefaultRingVolume = 5

	// MaxRingVolume is the loudest ring stream volume.
	MaxRingVolume = 7

	// DefaultFilePermissions is the permission mask for written settings.
	DefaultFilePermissions = 0o600
)

// Audio backend names accepted in AudioBackend.
const (
	AudioBackendConsole   = "console"
	AudioBackendMiniaudio = "miniaudio"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errRingVolumeOutOfRange is returned for volumes outside 0..MaxRingVolume.
	errRingVolumeOutOfRange = errors.New("ring volume out of range")
)

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.PeerAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.PeerAddress); err != nil {
			return fmt.Errorf("invalid peer address: %w", err)
		}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	switch {
	case cfg.RingVolume == 0:
		cfg.RingVolume = DefaultRingVolume
	case cfg.RingVolume == MutedRingVolume:
		// Explicitly muted.
	case cfg.RingVolume < 0 || cfg.RingVolume > MaxRingVolume:
		return fmt.Errorf("%w: %d", errRingVolumeOutOfRange, cfg.RingVolume)
	}

	if _, ok := audio.ParseRingerMode(cfg.RingerMode); !ok {
		return fmt.Errorf("unknown ringer mode %q", cfg.RingerMode)
	}

	switch cfg.AudioBackend {
	case "", AudioBackendConsole:
		cfg.AudioBackend = AudioBackendConsole
	case AudioBackendMiniaudio:
	default:
		return fmt.Errorf("unknown audio backend %q", cfg.AudioBackend)
	}

	if cfg.LogLevel == "" {
		return nil
	}

	if _, ok := logLevelNames[cfg.LogLevel]; !ok {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	return nil
}

// logLevelNames lists the accepted log level settings.
//
//nolint:gochecknoglobals // Static lookup table.
var logLevelNames = map[string]struct{}{
	"debug":  {},
	"info":   {},
	"warn":   {},
	"error":  {},
	"dpanic": {},
	"panic":  {},
	"fatal":  {},
}

// MutedRingVolume explicitly silences the ringtone. Validate treats a zero
// volume as "unset", so muted configurations use this negative marker and
// EffectiveRingVolume maps it back to zero.
const MutedRingVolume = -1

// EffectiveRingVolume returns the ring volume the actuators should report.
func (c *Config) EffectiveRingVolume() int {
	if c.RingVolume == MutedRingVolume {
		return 0
	}

	return c.RingVolume
}
