package miniaudio

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/mkravchuk/telecore/internal/audio"
	"github.com/mkravchuk/telecore/internal/logger"
)

const (
	// sampleRate is the playback rate for generated tones.
	sampleRate = 44100
	// amplitude scales generated samples below full scale to avoid clipping
	// when two frequencies are mixed.
	amplitude = 0.3
)

// Engine renders ring and in-call tones through the default playback device.
// It implements audio.RingtonePlayer and audio.ToneFactory; routing state and
// vibration stay with the console actuators.
type Engine struct {
	// ctx carries the scoped logger.
	ctx context.Context
	// audioContext is the shared miniaudio context for all tone devices.
	audioContext *malgo.AllocatedContext

	// mu protects ring.
	mu sync.Mutex
	// ring is the active ringtone device, nil while silent.
	ring *toneDevice
}

// NewEngine initialises the miniaudio backend.
func NewEngine(ctx context.Context) (*Engine, error) {
	audioContext, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	return &Engine{
		ctx:          logger.WithName(ctx, "miniaudio"),
		audioContext: audioContext,
	}, nil
}

// Close stops playback and releases the miniaudio context.
func (e *Engine) Close() error {
	e.Stop()

	if err := e.audioContext.Uninit(); err != nil {
		return fmt.Errorf("uninit audio context: %w", err)
	}

	e.audioContext.Free()

	return nil
}

// Play starts ringtone playback: a dual 440/480 Hz ring with a two seconds
// on, four seconds off cadence. Starting while already ringing is a no-op.
// The ringtone profile only affects logging; every profile maps to the same
// generated ring.
func (e *Engine) Play(ringtone string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ring != nil {
		return
	}

	device, err := newToneDevice(e.audioContext, []float64{440, 480}, 2*time.Second, 4*time.Second)
	if err != nil {
		logger.ErrorKV(e.ctx, "Unable to start ringtone device", "error", err)

		return
	}

	e.ring = device

	logger.InfoKV(e.ctx, "Ringtone started", "ringtone", ringtone)
}

// Stop ends ringtone playback. Stopping while silent is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ring == nil {
		return
	}

	e.ring.close()
	e.ring = nil

	logger.Info(e.ctx, "Ringtone stopped")
}

// NewTonePlayer creates a single-use call-waiting tone session: short 440 Hz
// beeps with a long silent gap.
func (e *Engine) NewTonePlayer(tone audio.Tone) audio.TonePlayer {
	return &toneSession{
		engine: e,
		tone:   tone,
	}
}

// toneSession is a single-use in-call tone backed by its own device.
type toneSession struct {
	// engine supplies the shared audio context and logger.
	engine *Engine
	// tone identifies which tone this session plays.
	tone audio.Tone

	// mu protects device.
	mu sync.Mutex
	// device is the live tone device, nil before start and after stop.
	device *toneDevice
}

// StartTone begins the tone asynchronously.
func (s *toneSession) StartTone() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device != nil {
		return
	}

	device, err := newToneDevice(s.engine.audioContext, []float64{440}, 300*time.Millisecond, 9700*time.Millisecond)
	if err != nil {
		logger.ErrorKV(s.engine.ctx, "Unable to start tone device", "tone", s.tone, "error", err)

		return
	}

	s.device = device

	logger.InfoKV(s.engine.ctx, "Tone started", "tone", s.tone)
}

// StopTone ends the tone and releases the session.
func (s *toneSession) StopTone() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == nil {
		return
	}

	s.device.close()
	s.device = nil

	logger.InfoKV(s.engine.ctx, "Tone stopped", "tone", s.tone)
}

// toneDevice generates a cadenced mix of sine tones in the device callback.
type toneDevice struct {
	// device is the underlying playback device.
	device *malgo.Device
	// freqs are the sine frequencies mixed into the output.
	freqs []float64
	// onFrames and cycleFrames describe the cadence in whole frames.
	onFrames    uint64
	cycleFrames uint64
	// frame is the running frame counter advanced by the callback.
	frame uint64
}

// newToneDevice initialises and starts a playback device for the cadence.
func newToneDevice(audioContext *malgo.AllocatedContext, freqs []float64, on, off time.Duration) (*toneDevice, error) {
	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = sampleRate
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.Alsa.NoMMap = 1
	// ~100ms of audio per period keeps stop latency low.
	config.PeriodSizeInFrames = sampleRate / 10

	t := &toneDevice{
		freqs:       freqs,
		onFrames:    uint64(on.Seconds() * sampleRate),
		cycleFrames: uint64((on + off).Seconds() * sampleRate),
	}

	device, err := malgo.InitDevice(audioContext.Context, config, malgo.DeviceCallbacks{Data: t.render})
	if err != nil {
		return nil, fmt.Errorf("init playback device: %w", err)
	}

	t.device = device

	if err := device.Start(); err != nil {
		device.Uninit()

		return nil, fmt.Errorf("start playback device: %w", err)
	}

	return t, nil
}

// render fills the output buffer with the cadenced tone mix.
func (t *toneDevice) render(pOutput, _ []byte, frameCount uint32) {
	for i := uint32(0); i < frameCount; i++ {
		var sample float64

		if t.frame%t.cycleFrames < t.onFrames {
			seconds := float64(t.frame) / sampleRate
			for _, freq := range t.freqs {
				sample += amplitude * math.Sin(2*math.Pi*freq*seconds)
			}
		}

		value := int16(sample * math.MaxInt16)
		pOutput[2*i] = byte(uint16(value))
		pOutput[2*i+1] = byte(uint16(value) >> 8)

		t.frame++
	}
}

// close stops and releases the device.
func (t *toneDevice) close() {
	_ = t.device.Stop()
	t.device.Uninit()
}
