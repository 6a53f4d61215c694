package callservice

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/mkravchuk/telecore/internal/domain/call"
	callsvc "github.com/mkravchuk/telecore/internal/service/callservice"
)

// defaultCallTimeout bounds individual forwarded operations.
const defaultCallTimeout = 5 * time.Second

// Client is a callsvc.Handle backed by a gRPC connection. It performs plain
// unary invocations with the JSON codec, so no generated stubs are involved.
type Client struct {
	// conn is the underlying gRPC connection to the peer.
	conn *grpc.ClientConn
	// callTimeout is the per-operation deadline.
	callTimeout time.Duration
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithCallTimeout sets the per-operation deadline.
func WithCallTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// NewClient wraps an established connection in a call-service handle.
func NewClient(conn *grpc.ClientConn, opts ...ClientOption) *Client {
	client := &Client{
		conn:        conn,
		callTimeout: defaultCallTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// SetAdapter tells the peer where to deliver callbacks.
func (c *Client) SetAdapter(ctx context.Context, adapter callsvc.Adapter) error {
	return c.invoke(ctx, methodSetAdapter, &SetAdapterRequest{Adapter: adapter})
}

// IsCompatibleWith asks the peer whether it can serve the call.
func (c *Client) IsCompatibleWith(ctx context.Context, info call.Info) error {
	return c.invoke(ctx, methodCompatible, &CompatibilityRequest{Call: info})
}

// Call asks the peer to place or accept the call.
func (c *Client) Call(ctx context.Context, info call.Info) error {
	return c.invoke(ctx, methodPlaceCall, &PlaceCallRequest{Call: info})
}

// Disconnect asks the peer to tear the call down.
func (c *Client) Disconnect(ctx context.Context, callID string) error {
	return c.invoke(ctx, methodDisconnect, &DisconnectRequest{CallID: callID})
}

// invoke performs one unary call with the JSON codec and the client deadline.
func (c *Client) invoke(ctx context.Context, method string, request any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var ack Ack

	return c.conn.Invoke(callCtx, method, request, &ack, grpc.CallContentSubtype(codecName))
}
