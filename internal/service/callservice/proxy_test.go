package callservice

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkravchuk/telecore/internal/domain/call"
)

var errPeerGone = errors.New("peer gone")

// fakeHandle records forwarded operations in arrival order.
type fakeHandle struct {
	// mu protects ops.
	mu sync.Mutex
	// ops lists forwarded operations as "op:key" strings.
	ops []string
	// err, when set, is returned from every forwarded operation.
	err error
}

func (h *fakeHandle) record(op string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ops = append(h.ops, op)

	return h.err
}

func (h *fakeHandle) SetAdapter(_ context.Context, adapter Adapter) error {
	return h.record("adapter:" + adapter.Target)
}

func (h *fakeHandle) IsCompatibleWith(_ context.Context, info call.Info) error {
	return h.record("compat:" + info.ID)
}

func (h *fakeHandle) Call(_ context.Context, info call.Info) error {
	return h.record("call:" + info.ID)
}

func (h *fakeHandle) Disconnect(_ context.Context, callID string) error {
	return h.record("disconnect:" + callID)
}

func (h *fakeHandle) recorded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]string, len(h.ops))
	copy(result, h.ops)

	return result
}

// TestProxy_UnboundOperationsAreAbandoned ensures commands issued while
// unbound neither forward nor panic.
func TestProxy_UnboundOperationsAreAbandoned(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := New("peer-a")

	info := call.Info{ID: "c1", Handle: "+15550100", State: "ringing"}
	p.SetAdapter(ctx, Adapter{Target: "host:9000"})
	p.IsCompatibleWith(ctx, info)
	p.Call(ctx, info)
	p.Disconnect(ctx, "c1")

	require.False(t, p.Bound())

	p.Close()
}

// TestProxy_BoundForwardsInOrder verifies operations reach the peer in
// enqueue order while bound.
func TestProxy_BoundForwardsInOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := New("peer-a")
	h := new(fakeHandle)

	p.OnConnected(ctx, h)
	require.True(t, p.Bound())

	info := call.Info{ID: "c1"}
	p.IsCompatibleWith(ctx, info)
	p.Call(ctx, info)
	p.Disconnect(ctx, "c1")
	p.Close()

	require.Equal(t, []string{"compat:c1", "call:c1", "disconnect:c1"}, h.recorded())
}

// TestProxy_AdapterReForwardedOnEveryReconnect checks that the most recently
// configured adapter is re-sent on each (re)connection, before any operation
// enqueued afterwards.
func TestProxy_AdapterReForwardedOnEveryReconnect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := New("peer-a")

	// Configured while unbound: recorded, reported, not forwarded.
	p.SetAdapter(ctx, Adapter{Target: "host:9000"})

	first := new(fakeHandle)
	p.OnConnected(ctx, first)
	p.Call(ctx, call.Info{ID: "c1"})

	p.OnDisconnected(ctx)
	require.False(t, p.Bound())

	second := new(fakeHandle)
	p.OnConnected(ctx, second)
	p.Disconnect(ctx, "c1")
	p.Close()

	require.Equal(t, []string{"adapter:host:9000", "call:c1"}, first.recorded())
	require.Equal(t, []string{"adapter:host:9000", "disconnect:c1"}, second.recorded())
}

// TestProxy_AdapterNeverOvertakenOnReconnect races operations against the
// connection watcher delivering the bound transition: the instant Bound
// reports true, the re-forwarded adapter must already sit ahead of any
// operation in the send queue.
func TestProxy_AdapterNeverOvertakenOnReconnect(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for range 200 {
		p := New("peer-a", WithAdapter(Adapter{Target: "host:9000"}))
		h := new(fakeHandle)

		connected := make(chan struct{})

		go func() {
			p.OnConnected(ctx, h)
			close(connected)
		}()

		for !p.Bound() {
			runtime.Gosched()
		}

		p.Call(ctx, call.Info{ID: "c1"})

		<-connected
		p.Close()

		require.Equal(t, []string{"adapter:host:9000", "call:c1"}, h.recorded())
	}
}

// TestProxy_SetAdapterWhileBoundForwardsImmediately covers the explicit
// configure path on an established connection.
func TestProxy_SetAdapterWhileBoundForwardsImmediately(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := New("peer-a")
	h := new(fakeHandle)

	p.OnConnected(ctx, h)
	p.SetAdapter(ctx, Adapter{Target: "host:9001"})
	p.Close()

	require.Equal(t, []string{"adapter:host:9001"}, h.recorded())
}

// TestProxy_ForwardingFailureIsContained ensures a failing peer neither
// panics nor poisons later operations.
func TestProxy_ForwardingFailureIsContained(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := New("peer-a")
	h := &fakeHandle{err: errPeerGone}

	p.OnConnected(ctx, h)
	p.Call(ctx, call.Info{ID: "c1"})
	p.Call(ctx, call.Info{ID: "c2"})
	p.Close()

	require.True(t, p.Bound())
	require.Equal(t, []string{"call:c1", "call:c2"}, h.recorded())
}
