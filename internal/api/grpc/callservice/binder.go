package callservice

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mkravchuk/telecore/internal/logger"
	callsvc "github.com/mkravchuk/telecore/internal/service/callservice"
)

// Endpoint receives bound-state transitions from the binder. The proxy in
// internal/service/callservice is the intended implementation.
type Endpoint interface {
	// OnConnected delivers the live handle for a newly ready connection.
	OnConnected(ctx context.Context, h callsvc.Handle)
	// OnDisconnected announces that the connection left the ready state.
	OnDisconnected(ctx context.Context)
}

// Binder owns the client connection to one call-service peer and drives the
// bind/unbind lifecycle: it watches connectivity transitions and reports them
// to the endpoint. The proxy behind the endpoint never dials on its own.
type Binder struct {
	// address is the peer address, used in logs.
	address string
	// conn is the owned client connection.
	conn *grpc.ClientConn
	// endpoint receives bound-state transitions.
	endpoint Endpoint
	// clientOpts configure the handle created per connection.
	clientOpts []ClientOption
}

// BinderOption configures the binder.
type BinderOption func(*binderConfig)

// binderConfig collects dial and client options.
type binderConfig struct {
	dialOpts   []grpc.DialOption
	clientOpts []ClientOption
}

// WithDialOptions appends extra gRPC dial options; tests use this to dial
// in-memory listeners.
func WithDialOptions(opts ...grpc.DialOption) BinderOption {
	return func(cfg *binderConfig) {
		cfg.dialOpts = append(cfg.dialOpts, opts...)
	}
}

// WithClientOptions configures the handles the binder hands to the endpoint.
func WithClientOptions(opts ...ClientOption) BinderOption {
	return func(cfg *binderConfig) {
		cfg.clientOpts = append(cfg.clientOpts, opts...)
	}
}

// NewBinder creates a binder for the peer at the provided address.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func NewBinder(address string, endpoint Endpoint, opts ...BinderOption) (*Binder, error) {
	cfg := &binderConfig{
		dialOpts: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	conn, err := grpc.NewClient(address, cfg.dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial call service: %w", err)
	}

	return &Binder{
		address:    address,
		conn:       conn,
		endpoint:   endpoint,
		clientOpts: cfg.clientOpts,
	}, nil
}

// Bind starts connecting and watches connectivity until ctx is canceled or
// the binder is closed.
func (b *Binder) Bind(ctx context.Context) {
	b.conn.Connect()

	go b.watch(logger.WithKV(ctx, "peer", b.address))
}

// Close tears the connection down; the endpoint sees a final OnDisconnected
// from the watcher if it was bound.
func (b *Binder) Close() error {
	if err := b.conn.Close(); err != nil {
		return fmt.Errorf("close call service connection: %w", err)
	}

	return nil
}

// watch translates connectivity transitions into endpoint notifications.
func (b *Binder) watch(ctx context.Context) {
	bound := false

	for {
		state := b.conn.GetState()

		switch {
		case state == connectivity.Ready && !bound:
			bound = true
			b.endpoint.OnConnected(ctx, NewClient(b.conn, b.clientOpts...))
		case state != connectivity.Ready && bound:
			bound = false
			b.endpoint.OnDisconnected(ctx)
		}

		if state == connectivity.Shutdown {
			logger.Debug(ctx, "Call service connection shut down, stopping watcher")

			return
		}

		// A lost connection parks in idle after backoff; kick it to redial.
		if state == connectivity.Idle {
			b.conn.Connect()
		}

		if !b.conn.WaitForStateChange(ctx, state) {
			// Context canceled: report the loss so the proxy unbinds.
			if bound {
				b.endpoint.OnDisconnected(ctx)
			}

			return
		}
	}
}
