package peer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	api "github.com/mkravchuk/telecore/internal/api/grpc/callservice"
	"github.com/mkravchuk/telecore/internal/domain/call"
	callsvc "github.com/mkravchuk/telecore/internal/service/callservice"
)

// TestService_SetAdapter verifies the callback target is remembered.
func TestService_SetAdapter(t *testing.T) {
	t.Parallel()

	s := newService()

	_, err := s.SetAdapter(context.Background(), &api.SetAdapterRequest{
		Adapter: callsvc.Adapter{Target: "host.example.com:9000"},
	})

	require.NoError(t, err)
	require.Equal(t, "host.example.com:9000", s.AdapterTarget())
}

// TestService_PlaceAndDisconnect verifies the served-call table follows
// place and disconnect commands.
func TestService_PlaceAndDisconnect(t *testing.T) {
	t.Parallel()

	s := newService()

	info := call.Info{
		ID:     "c1",
		Handle: "tel:+15551234567",
		State:  "created",
	}

	_, err := s.PlaceCall(context.Background(), &api.PlaceCallRequest{Call: info})
	require.NoError(t, err)
	require.Equal(t, []call.Info{info}, s.ServedCalls())

	_, err = s.Disconnect(context.Background(), &api.DisconnectRequest{CallID: "c1"})
	require.NoError(t, err)
	require.Empty(t, s.ServedCalls())
}

// TestService_DisconnectUnknownCall asserts disconnecting an unserved call
// is acknowledged without error.
func TestService_DisconnectUnknownCall(t *testing.T) {
	t.Parallel()

	s := newService()

	_, err := s.Disconnect(context.Background(), &api.DisconnectRequest{CallID: "missing"})

	require.NoError(t, err)
}

// TestService_IsCompatibleWith asserts the reference peer accepts every handle.
func TestService_IsCompatibleWith(t *testing.T) {
	t.Parallel()

	s := newService()

	_, err := s.IsCompatibleWith(context.Background(), &api.CompatibilityRequest{
		Call: call.Info{ID: "c1", Handle: "sip:alice@example.com"},
	})

	require.NoError(t, err)
}

// TestResolveListenAddress covers override, port extraction, and error cases.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("peer.example.com:9000", ":7000")
	require.NoError(t, err)
	require.Equal(t, ":7000", addr)

	addr, err = resolveListenAddress("peer.example.com:9000", "")
	require.NoError(t, err)
	require.Equal(t, ":9000", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoPeerAddress)

	_, err = resolveListenAddress("no-port-here", "")
	require.Error(t, err)
}
