package callservice

import (
	"github.com/mkravchuk/telecore/internal/domain/call"
	callsvc "github.com/mkravchuk/telecore/internal/service/callservice"
)

// Fully qualified method names of the call service.
const (
	serviceName      = "telecore.callservice.v1.CallService"
	methodSetAdapter = "/" + serviceName + "/SetAdapter"
	methodCompatible = "/" + serviceName + "/IsCompatibleWith"
	methodPlaceCall  = "/" + serviceName + "/PlaceCall"
	methodDisconnect = "/" + serviceName + "/Disconnect"
)

// SetAdapterRequest tells the peer where to deliver callbacks.
type SetAdapterRequest struct {
	// Adapter is the callback target description.
	Adapter callsvc.Adapter `json:"adapter"`
}

// CompatibilityRequest asks whether the peer can serve the call.
type CompatibilityRequest struct {
	// Call describes the call to check.
	Call call.Info `json:"call"`
}

// PlaceCallRequest asks the peer to place or accept the call.
type PlaceCallRequest struct {
	// Call describes the call to place.
	Call call.Info `json:"call"`
}

// DisconnectRequest asks the peer to tear the call down.
type DisconnectRequest struct {
	// CallID identifies the call to disconnect.
	CallID string `json:"call_id"`
}

// Ack is the empty reply to one-way operations. Receiving it only confirms
// delivery; outcomes arrive through the configured adapter.
type Ack struct{}
