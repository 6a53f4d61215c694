package calls

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mkravchuk/telecore/internal/domain/call"
	"github.com/mkravchuk/telecore/internal/logger"
)

// Listener receives call lifecycle events broadcast by the Manager.
// Implementations must not block: events are dispatched inline on the
// manager's event path.
type Listener interface {
	// OnCallAdded fires after a call joins the live table.
	OnCallAdded(ctx context.Context, c *call.Call)
	// OnCallRemoved fires after a call leaves the live table.
	OnCallRemoved(ctx context.Context, c *call.Call)
	// OnCallStateChanged fires after a lifecycle state transition.
	OnCallStateChanged(ctx context.Context, c *call.Call, oldState, newState call.State)
	// OnIncomingCallAnswered fires when the user accepts a ringing call,
	// before the call's state actually changes.
	OnIncomingCallAnswered(ctx context.Context, c *call.Call)
	// OnIncomingCallRejected fires when the user declines a ringing call,
	// before the call's state actually changes.
	OnIncomingCallRejected(ctx context.Context, c *call.Call, rejectWithMessage bool, message string)
	// OnForegroundCallChanged fires after the foreground call switches.
	OnForegroundCallChanged(ctx context.Context, oldForeground, newForeground *call.Call)
}

// Manager owns the live call table and the foreground call and fans lifecycle
// events out to registered listeners in registration order. Mutations are
// serialized internally, so the listeners observe one event at a time in
// delivery order; dispatch itself happens outside the table lock so listeners
// may query the manager.
type Manager struct {
	// mu protects the call table, the foreground call and the listener set.
	mu sync.Mutex
	// calls is the live call table keyed by call identity.
	calls map[uuid.UUID]*call.Call
	// foreground is the call currently surfaced to the user, may be nil.
	foreground *call.Call
	// listeners receive lifecycle events in registration order.
	listeners []Listener
	// dispatchMu serializes event dispatch so listeners never observe
	// concurrent events.
	dispatchMu sync.Mutex
}

// NewManager creates an empty calls manager.
func NewManager() *Manager {
	return &Manager{
		calls: make(map[uuid.UUID]*call.Call),
	}
}

// AddListener registers a lifecycle event listener. Listeners cannot be
// removed; registration happens once at wiring time.
func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, l)
}

// AddCall inserts a call into the live table and announces it. Re-adding a
// tracked call is reported as a defect and ignored.
func (m *Manager) AddCall(ctx context.Context, c *call.Call) {
	m.mu.Lock()
	if _, ok := m.calls[c.ID]; ok {
		m.mu.Unlock()
		logger.DPanicKV(ctx, "Call is already tracked", "call_id", c.ID)

		return
	}

	m.calls[c.ID] = c
	m.mu.Unlock()

	logger.InfoKV(ctx, "Call added", "call_id", c.ID, "direction", c.Direction, "state", c.State())

	m.dispatch(func(l Listener) { l.OnCallAdded(ctx, c) })
}

// RemoveCall drops a call from the live table and announces the removal.
// If the removed call was the foreground call, the foreground clears too.
func (m *Manager) RemoveCall(ctx context.Context, c *call.Call) {
	m.mu.Lock()
	if _, ok := m.calls[c.ID]; !ok {
		m.mu.Unlock()

		return
	}

	delete(m.calls, c.ID)
	m.mu.Unlock()

	logger.InfoKV(ctx, "Call removed", "call_id", c.ID)

	m.dispatch(func(l Listener) { l.OnCallRemoved(ctx, c) })

	m.mu.Lock()
	wasForeground := m.foreground == c
	m.mu.Unlock()

	if wasForeground {
		m.SetForegroundCall(ctx, nil)
	}
}

// SetCallState transitions a call's lifecycle state and announces the change.
// Setting the current state again is a no-op.
func (m *Manager) SetCallState(ctx context.Context, c *call.Call, newState call.State) {
	oldState := c.State()
	if oldState == newState {
		return
	}

	c.SetState(newState)

	logger.InfoKV(ctx, "Call state changed",
		"call_id", c.ID, "old_state", oldState, "new_state", newState)

	m.dispatch(func(l Listener) { l.OnCallStateChanged(ctx, c, oldState, newState) })
}

// AnswerCall announces the user accepting a ringing incoming call. The
// lifecycle state changes later, when the serving call service confirms, so
// listeners see the response and the state change as two events.
func (m *Manager) AnswerCall(ctx context.Context, c *call.Call) {
	if !c.IsIncoming() || c.State() != call.StateRinging {
		logger.WarnKV(ctx, "Answer requested for a call that is not ringing",
			"call_id", c.ID, "state", c.State())

		return
	}

	logger.InfoKV(ctx, "Call answered", "call_id", c.ID)

	m.dispatch(func(l Listener) { l.OnIncomingCallAnswered(ctx, c) })
}

// RejectCall announces the user declining a ringing incoming call, optionally
// with a text message. As with AnswerCall, the state change follows later.
func (m *Manager) RejectCall(ctx context.Context, c *call.Call, rejectWithMessage bool, message string) {
	if !c.IsIncoming() || c.State() != call.StateRinging {
		logger.WarnKV(ctx, "Reject requested for a call that is not ringing",
			"call_id", c.ID, "state", c.State())

		return
	}

	logger.InfoKV(ctx, "Call rejected", "call_id", c.ID, "with_message", rejectWithMessage)

	m.dispatch(func(l Listener) { l.OnIncomingCallRejected(ctx, c, rejectWithMessage, message) })
}

// SetForegroundCall switches which call is surfaced to the user and announces
// the change. Passing the current foreground call is a no-op.
func (m *Manager) SetForegroundCall(ctx context.Context, c *call.Call) {
	m.mu.Lock()
	oldForeground := m.foreground
	if oldForeground == c {
		m.mu.Unlock()

		return
	}

	m.foreground = c
	m.mu.Unlock()

	logger.InfoKV(ctx, "Foreground call changed",
		"old", callID(oldForeground), "new", callID(c))

	m.dispatch(func(l Listener) { l.OnForegroundCallChanged(ctx, oldForeground, c) })
}

// ForegroundCall returns the call currently surfaced to the user, or nil.
func (m *Manager) ForegroundCall() *call.Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.foreground
}

// Call looks up a tracked call by identity.
func (m *Manager) Call(id uuid.UUID) (*call.Call, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.calls[id]

	return c, ok
}

// Calls returns a snapshot of the live call table.
func (m *Manager) Calls() []*call.Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]*call.Call, 0, len(m.calls))
	for _, c := range m.calls {
		snapshot = append(snapshot, c)
	}

	return snapshot
}

// dispatch delivers one event to every listener in registration order.
// Listeners may call back into the manager's query methods.
func (m *Manager) dispatch(event func(Listener)) {
	m.mu.Lock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	for _, l := range listeners {
		event(l)
	}
}

// callID formats a possibly nil call for logging.
func callID(c *call.Call) string {
	if c == nil {
		return "none"
	}

	return c.ID.String()
}
