package calls

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkravchuk/telecore/internal/domain/call"
)

// recorder captures dispatched events as readable strings.
type recorder struct {
	// name distinguishes recorders when checking registration order.
	name string
	// events collects the observed event descriptions.
	events *[]string
}

func (r *recorder) log(format string, args ...any) {
	*r.events = append(*r.events, r.name+":"+fmt.Sprintf(format, args...))
}

func (r *recorder) OnCallAdded(_ context.Context, c *call.Call) {
	r.log("added %s", c.Handle)
}

func (r *recorder) OnCallRemoved(_ context.Context, c *call.Call) {
	r.log("removed %s", c.Handle)
}

func (r *recorder) OnCallStateChanged(_ context.Context, c *call.Call, oldState, newState call.State) {
	r.log("state %s %s->%s", c.Handle, oldState, newState)
}

func (r *recorder) OnIncomingCallAnswered(_ context.Context, c *call.Call) {
	r.log("answered %s", c.Handle)
}

func (r *recorder) OnIncomingCallRejected(_ context.Context, c *call.Call, _ bool, _ string) {
	r.log("rejected %s", c.Handle)
}

func (r *recorder) OnForegroundCallChanged(_ context.Context, oldForeground, newForeground *call.Call) {
	r.log("foreground %s->%s", handleOf(oldForeground), handleOf(newForeground))
}

func handleOf(c *call.Call) string {
	if c == nil {
		return "none"
	}

	return c.Handle
}

// newRingingCall returns an incoming call already in the ringing state.
func newRingingCall(handle string) *call.Call {
	c := call.New(call.DirectionIncoming, handle)
	c.SetState(call.StateRinging)

	return c
}

// TestManager_DispatchesInRegistrationOrder verifies every listener sees each
// event, in the order listeners were registered.
func TestManager_DispatchesInRegistrationOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewManager()

	var events []string
	m.AddListener(&recorder{name: "first", events: &events})
	m.AddListener(&recorder{name: "second", events: &events})

	m.AddCall(ctx, newRingingCall("a"))

	require.Equal(t, []string{"first:added a", "second:added a"}, events)
}

// TestManager_DuplicateAddIsIgnored ensures re-adding a tracked call neither
// dispatches nor corrupts the table.
func TestManager_DuplicateAddIsIgnored(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewManager()

	var events []string
	m.AddListener(&recorder{name: "l", events: &events})

	c := newRingingCall("a")
	m.AddCall(ctx, c)
	m.AddCall(ctx, c)

	require.Equal(t, []string{"l:added a"}, events)
	require.Len(t, m.Calls(), 1)
}

// TestManager_StateChangeDispatchesOldAndNew checks transitions carry both
// states and that a no-op transition stays silent.
func TestManager_StateChangeDispatchesOldAndNew(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewManager()

	var events []string
	m.AddListener(&recorder{name: "l", events: &events})

	c := newRingingCall("a")
	m.AddCall(ctx, c)
	m.SetCallState(ctx, c, call.StateAnswered)
	m.SetCallState(ctx, c, call.StateAnswered)

	require.Equal(t, []string{"l:added a", "l:state a ringing->answered"}, events)
	require.Equal(t, call.StateAnswered, c.State())
}

// TestManager_AnswerAndRejectRequireRinging verifies user responses to calls
// that are not ringing are refused without dispatch, and that responses do
// not change state by themselves.
func TestManager_AnswerAndRejectRequireRinging(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewManager()

	var events []string
	m.AddListener(&recorder{name: "l", events: &events})

	ringing := newRingingCall("a")
	m.AddCall(ctx, ringing)
	m.AnswerCall(ctx, ringing)

	require.Equal(t, []string{"l:added a", "l:answered a"}, events)
	require.Equal(t, call.StateRinging, ringing.State())

	outgoing := call.New(call.DirectionOutgoing, "b")
	m.AddCall(ctx, outgoing)
	m.AnswerCall(ctx, outgoing)
	m.RejectCall(ctx, outgoing, false, "")

	require.Equal(t, []string{"l:added a", "l:answered a", "l:added b"}, events)
}

// TestManager_ForegroundSwitch verifies foreground changes dispatch both
// sides, skip no-ops, and clear when the foreground call is removed.
func TestManager_ForegroundSwitch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewManager()

	var events []string
	m.AddListener(&recorder{name: "l", events: &events})

	a := newRingingCall("a")
	b := newRingingCall("b")
	m.AddCall(ctx, a)
	m.AddCall(ctx, b)

	m.SetForegroundCall(ctx, a)
	m.SetForegroundCall(ctx, a)
	m.SetForegroundCall(ctx, b)
	require.Same(t, b, m.ForegroundCall())

	m.RemoveCall(ctx, b)
	require.Nil(t, m.ForegroundCall())

	require.Equal(t, []string{
		"l:added a",
		"l:added b",
		"l:foreground none->a",
		"l:foreground a->b",
		"l:removed b",
		"l:foreground b->none",
	}, events)
}

// TestManager_RemoveUntrackedIsNoOp ensures removing an unknown call neither
// dispatches nor fails.
func TestManager_RemoveUntrackedIsNoOp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewManager()

	var events []string
	m.AddListener(&recorder{name: "l", events: &events})

	m.RemoveCall(ctx, newRingingCall("ghost"))

	require.Empty(t, events)
}

// TestManager_Lookup verifies Call and Calls reflect the live table.
func TestManager_Lookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewManager()

	a := newRingingCall("a")
	m.AddCall(ctx, a)

	got, ok := m.Call(a.ID)
	require.True(t, ok)
	require.Same(t, a, got)

	m.RemoveCall(ctx, a)

	_, ok = m.Call(a.ID)
	require.False(t, ok)
	require.Empty(t, m.Calls())
}
