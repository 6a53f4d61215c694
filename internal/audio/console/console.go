package console

import (
	"context"
	"sync"
	"time"

	"github.com/mkravchuk/telecore/internal/audio"
	"github.com/mkravchuk/telecore/internal/logger"
)

// Options carries the static device state the simulated actuators report.
type Options struct {
	// RingVolume is the fixed ring stream volume to report.
	RingVolume int
	// ExternalDeviceActive reports a paired device announcing calls itself.
	ExternalDeviceActive bool
	// RingerMode is the device-wide ringer mode to report.
	RingerMode audio.RingerMode
	// VibrateWhenRinging is the user vibrate preference to report.
	VibrateWhenRinging bool
	// NoVibrator disables the simulated vibration hardware.
	NoVibrator bool
}

// Actuators is a log-only implementation of every audio collaborator the
// ringer drives. It satisfies audio.RingtonePlayer, audio.Vibrator,
// audio.ToneFactory, audio.Router and audio.Settings at once, which keeps
// simulator wiring short.
type Actuators struct {
	// ctx carries the scoped logger for actuator output.
	ctx context.Context
	// opts is the static device state reported to the ringer.
	opts Options

	// mu protects the playing/vibrating/ringingMode flags.
	mu sync.Mutex
	// playing tracks the single logical ringtone session.
	playing bool
	// vibrating tracks the single logical vibration session.
	vibrating bool
	// ringingMode tracks the requested audio mode.
	ringingMode bool
}

// New creates console actuators logging under the "audio" component name.
func New(ctx context.Context, opts Options) *Actuators {
	return &Actuators{
		ctx:  logger.WithName(ctx, "audio"),
		opts: opts,
	}
}

// Play starts simulated ringtone playback. Starting twice is a no-op.
func (a *Actuators) Play(ringtone string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.playing {
		return
	}

	a.playing = true

	logger.InfoKV(a.ctx, "Ringtone started", "ringtone", displayRingtone(ringtone))
}

// Stop ends simulated ringtone playback. Stopping twice is a no-op.
func (a *Actuators) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.playing {
		return
	}

	a.playing = false

	logger.Info(a.ctx, "Ringtone stopped")
}

// HasVibrator reports whether simulated vibration hardware is present.
func (a *Actuators) HasVibrator() bool {
	return !a.opts.NoVibrator
}

// Vibrate starts a simulated repeating vibration pattern.
func (a *Actuators) Vibrate(pattern []time.Duration, repeatAt int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.vibrating {
		return
	}

	a.vibrating = true

	logger.InfoKV(a.ctx, "Vibration started", "pattern", pattern, "repeat_at", repeatAt)
}

// Cancel stops any simulated vibration.
func (a *Actuators) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.vibrating {
		return
	}

	a.vibrating = false

	logger.Info(a.ctx, "Vibration cancelled")
}

// NewTonePlayer creates a single-use simulated tone session.
func (a *Actuators) NewTonePlayer(tone audio.Tone) audio.TonePlayer {
	return &tonePlayer{ctx: a.ctx, tone: tone}
}

// RingVolume reports the configured ring stream volume.
func (a *Actuators) RingVolume() int {
	return a.opts.RingVolume
}

// IsExternalDeviceActive reports the configured external-device state.
func (a *Actuators) IsExternalDeviceActive() bool {
	return a.opts.ExternalDeviceActive
}

// SetIsRinging records the requested audio mode.
func (a *Actuators) SetIsRinging(ringing bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ringingMode == ringing {
		return
	}

	a.ringingMode = ringing

	logger.InfoKV(a.ctx, "Ringing audio mode changed", "ringing", ringing)
}

// RingerMode reports the configured device ringer mode.
func (a *Actuators) RingerMode() audio.RingerMode {
	return a.opts.RingerMode
}

// VibrateWhenRinging reports the configured user vibrate preference.
func (a *Actuators) VibrateWhenRinging() bool {
	return a.opts.VibrateWhenRinging
}

// displayRingtone substitutes a readable name for the default profile.
func displayRingtone(ringtone string) string {
	if ringtone == "" {
		return "default"
	}

	return ringtone
}

// tonePlayer is a single-use simulated in-call tone session.
type tonePlayer struct {
	// ctx carries the scoped logger.
	ctx context.Context
	// tone identifies which tone this session plays.
	tone audio.Tone

	// mu protects started.
	mu sync.Mutex
	// started tracks whether the session is currently sounding.
	started bool
}

// StartTone begins the simulated tone.
func (p *tonePlayer) StartTone() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}

	p.started = true

	logger.InfoKV(p.ctx, "Tone started", "tone", p.tone)
}

// StopTone ends the simulated tone.
func (p *tonePlayer) StopTone() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.started = false

	logger.InfoKV(p.ctx, "Tone stopped", "tone", p.tone)
}
