package simulator

import (
	"context"
	"time"

	"github.com/mkravchuk/telecore/internal/domain/call"
	"github.com/mkravchuk/telecore/internal/logger"
	"github.com/mkravchuk/telecore/internal/service/calls"
	"github.com/mkravchuk/telecore/internal/service/callservice"
	"github.com/mkravchuk/telecore/internal/service/ringer"
)

// stepPause is how long the scripted scenario lets each output state sound
// before moving on.
const stepPause = 3 * time.Second

// bindWait is how long the scenario waits for the peer binding to come up
// before skipping the forwarding steps.
const bindWait = 5 * time.Second

// runScenario drives a scripted sequence covering the arbitration behaviors:
// loud ringing for a foreground call, the shared call-waiting tone once the
// user switches away, the two-step answer (immediate silence, removal on the
// later state change), rejection, and the silence-all action. Each step pauses
// so the output is observable; canceling the context skips ahead and exits.
func runScenario(ctx context.Context, mgr *calls.Manager, rng *ringer.Ringer, proxy *callservice.Proxy) error {
	logger.Info(ctx, "Starting scripted scenario")

	// Two incoming calls arrive almost together; the first one reaches the
	// foreground, so it rings out loud.
	alice := newRingingCall("tel:+15550100", "marimba")
	bob := newRingingCall("tel:+15550101", "chimes")

	mgr.AddCall(ctx, alice)
	mgr.SetForegroundCall(ctx, alice)
	mgr.AddCall(ctx, bob)

	if !pause(ctx) {
		return ctx.Err()
	}

	// The user switches to an unrelated outgoing call, placed through the
	// remote peer when one is bound. Both ringing calls are now in the
	// background, so the ringtone yields to a single call-waiting tone.
	carol := call.New(call.DirectionOutgoing, "tel:+15550102")

	mgr.AddCall(ctx, carol)

	if proxy != nil {
		// Issuing operations before the binding is up would be a protocol
		// violation, so give the peer a moment and skip if it never binds.
		if awaitBound(ctx, proxy) {
			proxy.IsCompatibleWith(ctx, carol.ToInfo())
			proxy.Call(ctx, carol.ToInfo())
		} else {
			logger.WarnKV(ctx, "Peer never bound, skipping call forwarding",
				"call_id", carol.ID)
		}
	}

	mgr.SetCallState(ctx, carol, call.StateActive)
	mgr.SetForegroundCall(ctx, carol)

	if !pause(ctx) {
		return ctx.Err()
	}

	// Answering the oldest ringing call silences output immediately. The
	// call leaves the ringing set only when its state changes, at which
	// point the tone resumes for the other waiting call.
	mgr.SetForegroundCall(ctx, alice)
	mgr.AnswerCall(ctx, alice)

	if !pause(ctx) {
		return ctx.Err()
	}

	mgr.SetCallState(ctx, alice, call.StateAnswered)
	mgr.SetCallState(ctx, alice, call.StateActive)

	if !pause(ctx) {
		return ctx.Err()
	}

	// The remaining ringing call is declined with a message and torn down
	// through the peer.
	mgr.RejectCall(ctx, bob, true, "In a meeting, call you back")
	mgr.SetCallState(ctx, bob, call.StateRejected)
	mgr.RemoveCall(ctx, bob)

	if proxy != nil && proxy.Bound() {
		proxy.Disconnect(ctx, carol.ID.String())
	}

	mgr.SetCallState(ctx, carol, call.StateDisconnected)
	mgr.RemoveCall(ctx, carol)

	if !pause(ctx) {
		return ctx.Err()
	}

	// One last arrival demonstrates the silence-all action: output stops
	// while the call keeps ringing for the remote party.
	dave := newRingingCall("tel:+15550103", "bells")

	mgr.AddCall(ctx, dave)
	mgr.SetForegroundCall(ctx, dave)

	if !pause(ctx) {
		return ctx.Err()
	}

	rng.Silence(ctx)

	mgr.SetCallState(ctx, dave, call.StateDisconnected)
	mgr.RemoveCall(ctx, dave)
	mgr.SetCallState(ctx, alice, call.StateDisconnected)
	mgr.RemoveCall(ctx, alice)

	logger.Info(ctx, "Scenario finished")

	return nil
}

// newRingingCall creates an incoming call already demanding attention, the
// state a signalling stack would deliver it in.
func newRingingCall(handle, ringtone string) *call.Call {
	c := call.New(call.DirectionIncoming, handle)
	c.Ringtone = ringtone
	c.SetState(call.StateRinging)

	return c
}

// awaitBound polls the proxy's bound state for up to bindWait, reporting
// false if the context ended or the wait ran out first.
func awaitBound(ctx context.Context, proxy *callservice.Proxy) bool {
	deadline := time.NewTimer(bindWait)
	defer deadline.Stop()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if proxy.Bound() {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-ticker.C:
		}
	}
}

// pause waits one step, reporting false if the context ended first.
func pause(ctx context.Context) bool {
	timer := time.NewTimer(stepPause)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
