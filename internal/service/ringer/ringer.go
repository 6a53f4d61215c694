package ringer

import (
	"context"
	"slices"

	"github.com/mkravchuk/telecore/internal/audio"
	"github.com/mkravchuk/telecore/internal/domain/call"
	"github.com/mkravchuk/telecore/internal/logger"
)

// Host is the view of the calls manager the ringer needs.
type Host interface {
	// ForegroundCall returns the call currently surfaced to the user, or nil.
	ForegroundCall() *call.Call
}

// Ringer arbitrates, from the set of calls currently demanding attention,
// which single audible or haptic treatment to present: ringtone plus
// vibration when a ringing call is in the foreground, a single call-waiting
// tone when every ringing call is in the background, silence otherwise.
//
// One Ringer serves the whole device. Its entry points are the lifecycle
// events broadcast by the calls manager and must arrive one at a time; the
// Ringer holds no locks of its own.
type Ringer struct {
	// host answers the foreground-call query during recomputation.
	host Host
	// router requests the ringing audio mode and reports routing state.
	router audio.Router
	// settings supplies the ringer mode and the user vibrate preference.
	settings audio.Settings
	// ringtone is the exclusively owned ringtone player.
	ringtone audio.RingtonePlayer
	// vibrator is the exclusively owned vibration motor.
	vibrator audio.Vibrator
	// tones creates single-use in-call tone sessions.
	tones audio.ToneFactory

	// ringingCalls keeps unanswered incoming calls in arrival order. The
	// first entry is the top-most call, the one silenced by answer/reject.
	ringingCalls []*call.Call
	// callWaiting is the single live call-waiting tone session, nil when
	// none is sounding. Stopped sessions are discarded, never reused.
	callWaiting audio.TonePlayer
	// vibrating tracks the vibrator session across simultaneous incoming
	// calls, so a second ringing call never stacks a second session.
	vibrating bool
}

// New creates a ringer driving the provided actuators. Register the result
// with the calls manager to start receiving lifecycle events.
func New(
	host Host,
	router audio.Router,
	settings audio.Settings,
	ringtone audio.RingtonePlayer,
	vibrator audio.Vibrator,
	tones audio.ToneFactory,
) *Ringer {
	return &Ringer{
		host:     host,
		router:   router,
		settings: settings,
		ringtone: ringtone,
		vibrator: vibrator,
		tones:    tones,
	}
}

// OnCallAdded starts tracking an incoming ringing call and recomputes output.
// A duplicate add is a defect in the event source: it is reported and the set
// is left untouched.
func (r *Ringer) OnCallAdded(ctx context.Context, c *call.Call) {
	if !c.IsIncoming() || c.State() != call.StateRinging {
		return
	}

	if r.contains(c) {
		logger.DPanicKV(ctx, "New ringing call is already in the list of unanswered calls",
			"call_id", c.ID)

		return
	}

	r.ringingCalls = append(r.ringingCalls, c)
	r.updateOutput(ctx)
}

// OnCallRemoved stops tracking the call and recomputes output. Removing an
// untracked call is a safe no-op.
func (r *Ringer) OnCallRemoved(ctx context.Context, c *call.Call) {
	r.removeFromUnanswered(ctx, c)
}

// OnCallStateChanged stops tracking a call the moment it leaves the ringing
// state.
func (r *Ringer) OnCallStateChanged(ctx context.Context, c *call.Call, _, newState call.State) {
	if newState != call.StateRinging {
		r.removeFromUnanswered(ctx, c)
	}
}

// OnIncomingCallAnswered silences output if the answered call is the top-most
// ringing call.
func (r *Ringer) OnIncomingCallAnswered(ctx context.Context, c *call.Call) {
	r.respondedToIncomingCall(ctx, c)
}

// OnIncomingCallRejected silences output if the rejected call is the top-most
// ringing call.
func (r *Ringer) OnIncomingCallRejected(ctx context.Context, c *call.Call, _ bool, _ string) {
	r.respondedToIncomingCall(ctx, c)
}

// OnForegroundCallChanged recomputes output, but only when the switch involves
// a ringing call; unrelated foreground switches change nothing audible.
func (r *Ringer) OnForegroundCallChanged(ctx context.Context, oldForeground, newForeground *call.Call) {
	if r.contains(oldForeground) || r.contains(newForeground) {
		r.updateOutput(ctx)
	}
}

// Silence stops all notification output for every actively ringing call, the
// "silence all" user action. The calls themselves keep ringing for the remote
// parties.
func (r *Ringer) Silence(ctx context.Context) {
	r.ringingCalls = nil
	r.updateOutput(ctx)
}

// respondedToIncomingCall silences output for an answered or rejected call.
// The call stays in the ringing set until the follow-up state-change or
// removal event arrives, keeping set membership with a single source of
// truth; collapsing the two steps would reorder subsequent foreground-change
// recomputations.
func (r *Ringer) respondedToIncomingCall(ctx context.Context, c *call.Call) {
	if r.topMostUnansweredCall() == c {
		r.stopRinging(ctx)
		r.stopCallWaiting(ctx)
	}
}

// topMostUnansweredCall returns the oldest ringing call, or nil.
func (r *Ringer) topMostUnansweredCall() *call.Call {
	if len(r.ringingCalls) == 0 {
		return nil
	}

	return r.ringingCalls[0]
}

// contains reports whether the call is in the ringing set. Safe for nil.
func (r *Ringer) contains(c *call.Call) bool {
	return c != nil && slices.Contains(r.ringingCalls, c)
}

// removeFromUnanswered drops the call from the ringing set, if present, and
// recomputes output.
func (r *Ringer) removeFromUnanswered(ctx context.Context, c *call.Call) {
	if i := slices.Index(r.ringingCalls, c); i >= 0 {
		r.ringingCalls = slices.Delete(r.ringingCalls, i, i+1)
	}

	r.updateOutput(ctx)
}

// updateOutput recomputes the single correct output action from the current
// ringing set. It runs after every relevant event, so output after event n
// always reflects events 1..n.
func (r *Ringer) updateOutput(ctx context.Context) {
	if len(r.ringingCalls) == 0 {
		r.stopRinging(ctx)
		r.stopCallWaiting(ctx)

		return
	}

	r.startRingingOrCallWaiting(ctx)
}

// startRingingOrCallWaiting picks between loud ringing and the call-waiting
// tone based on whether the foreground call is one of the ringing calls.
func (r *Ringer) startRingingOrCallWaiting(ctx context.Context) {
	foreground := r.host.ForegroundCall()

	if !r.contains(foreground) {
		// All ringing calls are in the background, so a single shared
		// call-waiting tone replaces the ringtone.
		logger.Debug(ctx, "Playing call-waiting tone")

		r.stopRinging(ctx)

		if r.callWaiting == nil {
			r.callWaiting = r.tones.NewTonePlayer(audio.ToneCallWaiting)
			r.callWaiting.StartTone()
		}

		return
	}

	// The foreground call is one of the ringing calls: ring out loud.
	r.stopCallWaiting(ctx)

	if r.router.RingVolume() > 0 {
		r.router.SetIsRinging(true)

		// An external device announcing the call itself makes local
		// ringtone playback redundant.
		if !r.router.IsExternalDeviceActive() {
			r.ringtone.Play(foreground.Ringtone)
		}
	} else {
		logger.DebugKV(ctx, "Skipping ringtone, ring volume is zero", "call_id", foreground.ID)
	}

	shouldVibrate := audio.ShouldVibrate(
		r.vibrator.HasVibrator(),
		r.settings.RingerMode(),
		r.settings.VibrateWhenRinging(),
	)
	if shouldVibrate && !r.vibrating {
		r.vibrator.Vibrate(audio.VibrationPattern, audio.VibrationRepeat)
		r.vibrating = true
	}
}

// stopRinging ends ringtone playback and vibration. The actuator stops are
// asynchronous, but releasing the ringing audio mode eagerly is harmless.
func (r *Ringer) stopRinging(ctx context.Context) {
	logger.Debug(ctx, "Stop ringing")

	r.ringtone.Stop()

	if r.vibrating {
		r.vibrator.Cancel()
		r.vibrating = false
	}

	r.router.SetIsRinging(false)
}

// stopCallWaiting tears down the call-waiting tone session, if any, so a
// fresh one is created next time it is needed.
func (r *Ringer) stopCallWaiting(ctx context.Context) {
	if r.callWaiting != nil {
		logger.Debug(ctx, "Stop call-waiting tone")

		r.callWaiting.StopTone()
		r.callWaiting = nil
	}
}
