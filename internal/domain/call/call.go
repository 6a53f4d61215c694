package call

import "github.com/google/uuid"

// Direction tells whether a call originates locally or from the network.
type Direction int

const (
	// DirectionOutgoing marks a call placed from this device.
	DirectionOutgoing Direction = iota
	// DirectionIncoming marks a call arriving from the network.
	DirectionIncoming
)

// String returns a readable direction name for logs.
func (d Direction) String() string {
	if d == DirectionIncoming {
		return "incoming"
	}

	return "outgoing"
}

// State enumerates the lifecycle states a call moves through.
type State int

const (
	// StateCreated is the initial state before any signalling progress.
	StateCreated State = iota
	// StateRinging marks an incoming call demanding user attention.
	StateRinging
	// StateAnswered marks an incoming call the user accepted.
	StateAnswered
	// StateRejected marks an incoming call the user declined.
	StateRejected
	// StateActive marks an established two-way call.
	StateActive
	// StateDisconnected is the terminal state.
	StateDisconnected
)

// String returns a readable state name for logs and wire payloads.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRinging:
		return "ringing"
	case StateAnswered:
		return "answered"
	case StateRejected:
		return "rejected"
	case StateActive:
		return "active"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Call is a single phone call tracked by the calls manager. Collaborators such
// as the ringer hold non-owning references and never mutate it; state changes
// flow exclusively through the manager.
type Call struct {
	// ID identifies the call for the whole of its lifetime.
	ID uuid.UUID
	// Handle is the remote party address (a number or URI).
	Handle string
	// Direction records who initiated the call.
	Direction Direction
	// Ringtone is the notification profile to play while the call rings.
	// Empty selects the default ringtone.
	Ringtone string

	// state is the current lifecycle state, owned by the calls manager.
	state State
}

// New creates a call in the created state with a fresh identity.
func New(direction Direction, handle string) *Call {
	return &Call{
		ID:        uuid.New(),
		Handle:    handle,
		Direction: direction,
		state:     StateCreated,
	}
}

// State returns the current lifecycle state.
func (c *Call) State() State {
	return c.state
}

// SetState replaces the lifecycle state. Only the owning calls manager should
// call this; everyone else observes state through lifecycle events.
func (c *Call) SetState(s State) {
	c.state = s
}

// IsIncoming reports whether the call arrived from the network.
func (c *Call) IsIncoming() bool {
	return c.Direction == DirectionIncoming
}

// Info is the wire payload describing a call to a remote call service.
type Info struct {
	// ID is the call identity in string form.
	ID string `json:"id"`
	// Handle is the remote party address.
	Handle string `json:"handle"`
	// State is the readable lifecycle state name.
	State string `json:"state"`
}

// ToInfo snapshots the call into a wire payload.
func (c *Call) ToInfo() Info {
	return Info{
		ID:     c.ID.String(),
		Handle: c.Handle,
		State:  c.state.String(),
	}
}
