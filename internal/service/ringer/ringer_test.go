package ringer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkravchuk/telecore/internal/audio"
	"github.com/mkravchuk/telecore/internal/domain/call"
	"github.com/mkravchuk/telecore/internal/service/calls"
)

// The ringer implements every lifecycle event itself.
var _ calls.Listener = (*Ringer)(nil)

// fixture implements every collaborator the ringer consumes and records the
// observable actuator state.
type fixture struct {
	// Collaborator state fed to the ringer.
	foreground         *call.Call
	ringVolume         int
	externalDevice     bool
	mode               audio.RingerMode
	vibrateWhenRinging bool
	noVibrator         bool

	// Recorded actuator state.
	playing      bool
	lastRingtone string
	vibrating    bool
	vibrateCount int
	ringingMode  bool
	tones        []*fakeTone
}

// fakeTone records one in-call tone session.
type fakeTone struct {
	started bool
	stopped bool
}

func (f *fakeTone) StartTone() { f.started = true }
func (f *fakeTone) StopTone()  { f.stopped = true }

func (f *fixture) ForegroundCall() *call.Call { return f.foreground }

func (f *fixture) Play(ringtone string) {
	f.playing = true
	f.lastRingtone = ringtone
}
func (f *fixture) Stop() { f.playing = false }

func (f *fixture) HasVibrator() bool { return !f.noVibrator }
func (f *fixture) Vibrate([]time.Duration, int) {
	f.vibrating = true
	f.vibrateCount++
}
func (f *fixture) Cancel() { f.vibrating = false }

func (f *fixture) NewTonePlayer(audio.Tone) audio.TonePlayer {
	tone := new(fakeTone)
	f.tones = append(f.tones, tone)

	return tone
}

func (f *fixture) RingVolume() int              { return f.ringVolume }
func (f *fixture) IsExternalDeviceActive() bool { return f.externalDevice }
func (f *fixture) SetIsRinging(ringing bool)    { f.ringingMode = ringing }

func (f *fixture) RingerMode() audio.RingerMode { return f.mode }
func (f *fixture) VibrateWhenRinging() bool     { return f.vibrateWhenRinging }

// activeTones counts sessions started and not yet stopped.
func (f *fixture) activeTones() int {
	active := 0
	for _, tone := range f.tones {
		if tone.started && !tone.stopped {
			active++
		}
	}

	return active
}

// newFixture returns a fixture with loud ringing and vibration enabled.
func newFixture() *fixture {
	return &fixture{
		ringVolume:         5,
		mode:               audio.RingerModeNormal,
		vibrateWhenRinging: true,
	}
}

// newRinger wires a ringer to the fixture.
func newRinger(f *fixture) *Ringer {
	return New(f, f, f, f, f, f)
}

// ringingCall returns an incoming call already in the ringing state.
func ringingCall(handle string) *call.Call {
	c := call.New(call.DirectionIncoming, handle)
	c.SetState(call.StateRinging)

	return c
}

// TestOnCallAdded_KeepsArrivalOrder verifies the ringing set is strictly FIFO.
func TestOnCallAdded_KeepsArrivalOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	r := newRinger(f)

	a, b, c := ringingCall("a"), ringingCall("b"), ringingCall("c")
	r.OnCallAdded(ctx, a)
	r.OnCallAdded(ctx, b)
	r.OnCallAdded(ctx, c)

	require.Equal(t, []*call.Call{a, b, c}, r.ringingCalls)
	require.Same(t, a, r.topMostUnansweredCall())
}

// TestOnCallAdded_IgnoresIrrelevantCalls checks outgoing and non-ringing calls
// never enter the set.
func TestOnCallAdded_IgnoresIrrelevantCalls(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	r := newRinger(f)

	outgoing := call.New(call.DirectionOutgoing, "out")
	outgoing.SetState(call.StateRinging)
	r.OnCallAdded(ctx, outgoing)

	created := call.New(call.DirectionIncoming, "in")
	r.OnCallAdded(ctx, created)

	require.Empty(t, r.ringingCalls)
	require.False(t, f.playing)
}

// TestOnCallAdded_DuplicateIsReportedNotFatal ensures a duplicate add leaves
// the set intact.
func TestOnCallAdded_DuplicateIsReportedNotFatal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	r := newRinger(f)

	a := ringingCall("a")
	f.foreground = a
	r.OnCallAdded(ctx, a)
	r.OnCallAdded(ctx, a)

	require.Equal(t, []*call.Call{a}, r.ringingCalls)
	require.True(t, f.playing)
}

// TestForegroundRinging_RingsWithCallProfile covers the loud path: ringing
// audio mode requested, the foreground call's own ringtone played, vibration
// per policy, no call-waiting tone.
func TestForegroundRinging_RingsWithCallProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	r := newRinger(f)

	a := ringingCall("a")
	a.Ringtone = "marimba"
	f.foreground = a

	r.OnCallAdded(ctx, a)

	require.True(t, f.ringingMode)
	require.True(t, f.playing)
	require.Equal(t, "marimba", f.lastRingtone)
	require.True(t, f.vibrating)
	require.Zero(t, f.activeTones())
}

// TestForegroundRinging_ZeroVolumeSkipsRingtone verifies a muted ring stream
// suppresses the ringtone but not vibration.
func TestForegroundRinging_ZeroVolumeSkipsRingtone(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	f.ringVolume = 0
	r := newRinger(f)

	a := ringingCall("a")
	f.foreground = a
	r.OnCallAdded(ctx, a)

	require.False(t, f.playing)
	require.False(t, f.ringingMode)
	require.True(t, f.vibrating)
}

// TestForegroundRinging_ExternalDeviceSuppressesLocalPlayback checks that a
// paired device announcing the call keeps the local ringtone silent while the
// ringing audio mode is still requested.
func TestForegroundRinging_ExternalDeviceSuppressesLocalPlayback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	f.externalDevice = true
	r := newRinger(f)

	a := ringingCall("a")
	f.foreground = a
	r.OnCallAdded(ctx, a)

	require.True(t, f.ringingMode)
	require.False(t, f.playing)
}

// TestVibration_SingleSessionAcrossSimultaneousCalls ensures a second ringing
// call never stacks a second vibration session.
func TestVibration_SingleSessionAcrossSimultaneousCalls(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	r := newRinger(f)

	a := ringingCall("a")
	f.foreground = a
	r.OnCallAdded(ctx, a)
	r.OnCallAdded(ctx, ringingCall("b"))

	require.True(t, f.vibrating)
	require.Equal(t, 1, f.vibrateCount)
}

// TestVibration_PolicyDisabled verifies no vibration in silent mode or
// without hardware.
func TestVibration_PolicyDisabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for name, mutate := range map[string]func(*fixture){
		"silent mode": func(f *fixture) { f.mode = audio.RingerModeSilent },
		"no hardware": func(f *fixture) { f.noVibrator = true },
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			mutate(f)
			r := newRinger(f)

			a := ringingCall("a")
			f.foreground = a
			r.OnCallAdded(ctx, a)

			require.False(t, f.vibrating)
		})
	}
}

// TestBackgroundRinging_PlaysSingleCallWaitingTone covers the background path:
// ringtone and vibration stopped, exactly one shared call-waiting tone.
func TestBackgroundRinging_PlaysSingleCallWaitingTone(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	f.foreground = call.New(call.DirectionOutgoing, "other")
	r := newRinger(f)

	r.OnCallAdded(ctx, ringingCall("a"))
	r.OnCallAdded(ctx, ringingCall("b"))

	require.False(t, f.playing)
	require.False(t, f.vibrating)
	require.Len(t, f.tones, 1)
	require.Equal(t, 1, f.activeTones())
}

// TestAnswer_TopMostSilencesWithoutRemoving verifies the two-step answer
// behavior: output stops immediately, set membership survives until the
// follow-up state change.
func TestAnswer_TopMostSilencesWithoutRemoving(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	r := newRinger(f)

	a, b := ringingCall("a"), ringingCall("b")
	f.foreground = a
	r.OnCallAdded(ctx, a)
	r.OnCallAdded(ctx, b)
	require.True(t, f.playing)

	r.OnIncomingCallAnswered(ctx, a)

	require.False(t, f.playing)
	require.False(t, f.vibrating)
	require.False(t, f.ringingMode)
	require.Zero(t, f.activeTones())
	require.Equal(t, []*call.Call{a, b}, r.ringingCalls)

	// The follow-up state change performs the removal.
	a.SetState(call.StateAnswered)
	r.OnCallStateChanged(ctx, a, call.StateRinging, call.StateAnswered)

	require.Equal(t, []*call.Call{b}, r.ringingCalls)
}

// TestAnswer_NonTopMostKeepsOutput checks responding to a background ringing
// call leaves the current output alone.
func TestAnswer_NonTopMostKeepsOutput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	r := newRinger(f)

	a, b := ringingCall("a"), ringingCall("b")
	f.foreground = a
	r.OnCallAdded(ctx, a)
	r.OnCallAdded(ctx, b)

	r.OnIncomingCallRejected(ctx, b, false, "")

	require.True(t, f.playing)
}

// TestSilence_ClearsSetAndIsIdempotent verifies silencing twice produces the
// same idle actuator state as once.
func TestSilence_ClearsSetAndIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	r := newRinger(f)

	a := ringingCall("a")
	f.foreground = a
	r.OnCallAdded(ctx, a)
	require.True(t, f.playing)

	r.Silence(ctx)

	require.Empty(t, r.ringingCalls)
	require.False(t, f.playing)
	require.False(t, f.vibrating)
	require.False(t, f.ringingMode)
	require.Zero(t, f.activeTones())

	tonesBefore := len(f.tones)
	r.Silence(ctx)

	require.Empty(t, r.ringingCalls)
	require.False(t, f.playing)
	require.Len(t, f.tones, tonesBefore)
}

// TestForegroundChange_IgnoresUnrelatedSwitches ensures switches between
// calls outside the ringing set do not touch the actuators.
func TestForegroundChange_IgnoresUnrelatedSwitches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	r := newRinger(f)

	other1 := call.New(call.DirectionOutgoing, "x")
	other2 := call.New(call.DirectionOutgoing, "y")
	f.foreground = other1

	r.OnCallAdded(ctx, ringingCall("a"))
	require.Equal(t, 1, f.activeTones())

	tonesBefore := len(f.tones)
	f.foreground = other2
	r.OnForegroundCallChanged(ctx, other1, other2)

	// No recomputation: the same session keeps playing, none added.
	require.Len(t, f.tones, tonesBefore)
	require.Equal(t, 1, f.activeTones())
}

// TestScenario_TwoIncomingCallsWalkthrough replays the reference sequence:
// ring for the foreground call, fall back to call-waiting when an unrelated
// call takes the foreground, silence on answer, resume call-waiting for the
// remaining ringing call after removal.
func TestScenario_TwoIncomingCallsWalkthrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture()
	r := newRinger(f)

	a, b := ringingCall("a"), ringingCall("b")
	unrelated := call.New(call.DirectionOutgoing, "c")

	// Both calls ring while A holds the foreground: loud ring, no tone.
	f.foreground = a
	r.OnCallAdded(ctx, a)
	r.OnCallAdded(ctx, b)
	require.True(t, f.playing)
	require.Zero(t, f.activeTones())

	// An unrelated call takes the foreground: call-waiting replaces the ring.
	f.foreground = unrelated
	r.OnForegroundCallChanged(ctx, a, unrelated)
	require.False(t, f.playing)
	require.False(t, f.vibrating)
	require.Equal(t, 1, f.activeTones())

	// A is answered: output silences immediately, A stays in the set.
	r.OnIncomingCallAnswered(ctx, a)
	require.Zero(t, f.activeTones())
	require.Equal(t, []*call.Call{a, b}, r.ringingCalls)

	// A's state change removes it; B is still background, so the
	// call-waiting tone resumes as a fresh session.
	a.SetState(call.StateAnswered)
	r.OnCallStateChanged(ctx, a, call.StateRinging, call.StateAnswered)
	require.Equal(t, []*call.Call{b}, r.ringingCalls)
	require.Equal(t, 1, f.activeTones())
	require.False(t, f.playing)
}
