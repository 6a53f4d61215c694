package callservice

import (
	"context"
	"sync"

	"github.com/mkravchuk/telecore/internal/domain/call"
	"github.com/mkravchuk/telecore/internal/logger"
)

// Adapter describes the callback target a remote call service uses to report
// call outcomes back to the host.
type Adapter struct {
	// Target is the address the peer dials to deliver callbacks.
	Target string `json:"target"`
}

// Handle is the live callable surface of a bound remote call service. A
// handle only exists while the connection lifecycle reports the peer bound.
type Handle interface {
	// SetAdapter tells the peer where to deliver callbacks.
	SetAdapter(ctx context.Context, adapter Adapter) error
	// IsCompatibleWith asks the peer whether it can serve the call. The
	// answer arrives through the adapter, never synchronously.
	IsCompatibleWith(ctx context.Context, info call.Info) error
	// Call asks the peer to place or accept the call.
	Call(ctx context.Context, info call.Info) error
	// Disconnect asks the peer to tear the call down.
	Disconnect(ctx context.Context, callID string) error
}

// sendQueueSize bounds the number of forwarded operations waiting for the
// send worker. Overflow drops the operation, consistent with fire-and-forget.
const sendQueueSize = 64

// Proxy wraps a handle to one remote call service. Every operation is gated
// on the current bound state: while unbound, issuing a command is a protocol
// violation by the caller, reported at the highest local severity and
// abandoned. While bound, operations are forwarded in order as one-way
// messages; forwarding failures are logged with the call identity and never
// surface to the caller, whose only failure signal is the absence of a
// callback through the configured adapter.
type Proxy struct {
	// endpoint names the remote peer in logs.
	endpoint string

	// mu protects adapter, hasAdapter and handle against the connection
	// lifecycle watcher, which reports transitions from its own goroutine.
	// Enqueues happen under mu too: installing a handle and re-forwarding
	// the adapter must be atomic against concurrent operations, or an
	// operation racing the reconnect could reach the peer ahead of the
	// refreshed adapter.
	mu sync.Mutex
	// adapter is the most recently configured callback description. It is
	// re-forwarded on every (re)connection.
	adapter Adapter
	// hasAdapter distinguishes "never configured" from a zero adapter.
	hasAdapter bool
	// handle is the live remote surface, nil while unbound.
	handle Handle

	// sends feeds the worker that forwards operations in enqueue order.
	sends chan func()
	// closeOnce guards the send queue shutdown.
	closeOnce sync.Once
	// done closes when the send worker drains and exits.
	done chan struct{}
}

// Option configures a proxy at construction time.
type Option func(*Proxy)

// WithAdapter preconfigures the callback description forwarded on every
// (re)connection, sparing the host an explicit SetAdapter under a binding.
func WithAdapter(adapter Adapter) Option {
	return func(p *Proxy) {
		p.adapter = adapter
		p.hasAdapter = true
	}
}

// New creates a proxy for the named peer in the unbound state and starts its
// send worker.
func New(endpoint string, opts ...Option) *Proxy {
	p := &Proxy{
		endpoint: endpoint,
		sends:    make(chan func(), sendQueueSize),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	go p.sendLoop()

	return p
}

// Close stops the send worker after the queue drains. Call it only once no
// more operations or lifecycle transitions will arrive.
func (p *Proxy) Close() {
	p.closeOnce.Do(func() {
		close(p.sends)
	})
	<-p.done
}

// Bound reports whether a live handle is currently installed.
func (p *Proxy) Bound() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.handle != nil
}

// OnConnected installs the live handle for a newly established connection and
// immediately re-forwards the configured adapter. Install and re-forward
// happen in one critical section, so no operation issued once Bound reports
// true can overtake the adapter in the send queue.
func (p *Proxy) OnConnected(ctx context.Context, h Handle) {
	p.mu.Lock()
	p.handle = h

	if p.hasAdapter {
		adapter := p.adapter
		p.enqueue(ctx, "set adapter", "", func() error { return h.SetAdapter(ctx, adapter) })
	}
	p.mu.Unlock()

	logger.InfoKV(ctx, "Call service bound", "endpoint", p.endpoint)
}

// OnDisconnected clears the handle when the connection is lost.
func (p *Proxy) OnDisconnected(ctx context.Context) {
	p.mu.Lock()
	p.handle = nil
	p.mu.Unlock()

	logger.InfoKV(ctx, "Call service unbound", "endpoint", p.endpoint)
}

// SetAdapter records the callback description and forwards it to the peer.
// The recorded value is also re-forwarded automatically on every reconnect.
func (p *Proxy) SetAdapter(ctx context.Context, adapter Adapter) {
	p.mu.Lock()
	p.adapter = adapter
	p.hasAdapter = true
	h := p.handle

	if h != nil {
		p.enqueue(ctx, "set adapter", "", func() error { return h.SetAdapter(ctx, adapter) })
	}
	p.mu.Unlock()

	if h == nil {
		p.reportUnbound(ctx, "SetAdapter")
	}
}

// IsCompatibleWith asks the bound peer whether it can serve the call.
func (p *Proxy) IsCompatibleWith(ctx context.Context, info call.Info) {
	p.forward(ctx, "IsCompatibleWith", "compatibility check", info.ID,
		func(h Handle) error { return h.IsCompatibleWith(ctx, info) })
}

// Call asks the bound peer to place or accept the call.
func (p *Proxy) Call(ctx context.Context, info call.Info) {
	p.forward(ctx, "Call", "place call", info.ID,
		func(h Handle) error { return h.Call(ctx, info) })
}

// Disconnect asks the bound peer to tear the call down.
func (p *Proxy) Disconnect(ctx context.Context, callID string) {
	p.forward(ctx, "Disconnect", "disconnect call", callID,
		func(h Handle) error { return h.Disconnect(ctx, callID) })
}

// forward enqueues one operation against the live handle, or reports the
// protocol violation while unbound. Reading the handle and enqueueing happen
// under the same lock as OnConnected's install-and-re-forward, which is what
// keeps the adapter ahead of every later operation across reconnects.
func (p *Proxy) forward(ctx context.Context, operation, what, callID string, send func(Handle) error) {
	p.mu.Lock()
	h := p.handle

	if h != nil {
		p.enqueue(ctx, what, callID, func() error { return send(h) })
	}
	p.mu.Unlock()

	if h == nil {
		p.reportUnbound(ctx, operation)
	}
}

// reportUnbound logs a command issued while no connection is bound. The
// caller broke the protocol of only issuing commands under an active binding,
// so this is loud; the operation itself is abandoned safely.
func (p *Proxy) reportUnbound(ctx context.Context, operation string) {
	logger.DPanicKV(ctx, "Operation invoked while the call service is unbound",
		"endpoint", p.endpoint, "operation", operation)
}

// enqueue hands one forwarding thunk to the send worker, preserving order
// with everything enqueued before it. A full queue drops the operation.
func (p *Proxy) enqueue(ctx context.Context, what, callID string, send func() error) {
	thunk := func() {
		if err := send(); err != nil {
			logger.ErrorKV(ctx, "Forwarding to call service failed",
				"endpoint", p.endpoint, "operation", what, "call_id", callID, "error", err)
		}
	}

	select {
	case p.sends <- thunk:
	default:
		logger.ErrorKV(ctx, "Send queue full, dropping operation",
			"endpoint", p.endpoint, "operation", what, "call_id", callID)
	}
}

// sendLoop forwards queued operations one at a time until the queue closes.
func (p *Proxy) sendLoop() {
	defer close(p.done)

	for thunk := range p.sends {
		thunk()
	}
}
