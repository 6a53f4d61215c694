package peer

import (
	"context"
	"sync"

	api "github.com/mkravchuk/telecore/internal/api/grpc/callservice"
	"github.com/mkravchuk/telecore/internal/domain/call"
	"github.com/mkravchuk/telecore/internal/logger"
)

// service is a reference call-service peer: it acknowledges every one-way
// command, remembers the configured adapter target and the calls it serves.
// Real peers would drive actual signalling here; this one exists so hosts
// have something to bind against.
type service struct {
	// mu protects adapterTarget and served.
	mu sync.Mutex
	// adapterTarget is where outcomes would be reported back.
	adapterTarget string
	// served tracks calls placed and not yet disconnected, by call id.
	served map[string]call.Info
}

// newService creates an empty peer service.
func newService() *service {
	return &service{
		served: make(map[string]call.Info),
	}
}

// SetAdapter remembers the callback target for outcome reporting.
func (s *service) SetAdapter(ctx context.Context, req *api.SetAdapterRequest) (*api.Ack, error) {
	s.mu.Lock()
	s.adapterTarget = req.Adapter.Target
	s.mu.Unlock()

	logger.InfoKV(ctx, "Adapter configured", "target", req.Adapter.Target)

	return &api.Ack{}, nil
}

// IsCompatibleWith logs the compatibility check. The reference peer serves
// every handle; a selective peer would answer through the adapter.
func (s *service) IsCompatibleWith(ctx context.Context, req *api.CompatibilityRequest) (*api.Ack, error) {
	logger.InfoKV(ctx, "Compatibility requested", "call_id", req.Call.ID, "handle", req.Call.Handle)

	return &api.Ack{}, nil
}

// PlaceCall starts serving the call.
func (s *service) PlaceCall(ctx context.Context, req *api.PlaceCallRequest) (*api.Ack, error) {
	s.mu.Lock()
	s.served[req.Call.ID] = req.Call
	s.mu.Unlock()

	logger.InfoKV(ctx, "Call placed", "call_id", req.Call.ID, "handle", req.Call.Handle, "state", req.Call.State)

	return &api.Ack{}, nil
}

// Disconnect stops serving the call. Disconnecting an unknown call is logged
// and acknowledged; the caller promised fire-and-forget semantics.
func (s *service) Disconnect(ctx context.Context, req *api.DisconnectRequest) (*api.Ack, error) {
	s.mu.Lock()
	_, known := s.served[req.CallID]
	delete(s.served, req.CallID)
	s.mu.Unlock()

	if !known {
		logger.WarnKV(ctx, "Disconnect for an unknown call", "call_id", req.CallID)

		return &api.Ack{}, nil
	}

	logger.InfoKV(ctx, "Call disconnected", "call_id", req.CallID)

	return &api.Ack{}, nil
}

// AdapterTarget returns the most recently configured callback target.
func (s *service) AdapterTarget() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.adapterTarget
}

// ServedCalls returns a snapshot of the calls currently being served.
func (s *service) ServedCalls() []call.Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]call.Info, 0, len(s.served))
	for _, info := range s.served {
		snapshot = append(snapshot, info)
	}

	return snapshot
}
