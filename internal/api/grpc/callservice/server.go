package callservice

import (
	"context"

	"google.golang.org/grpc"
)

// Server is the surface a call-service peer implements. Every method is a
// one-way operation from the caller's point of view: the Ack only confirms
// delivery, outcomes travel through the adapter configured via SetAdapter.
type Server interface {
	SetAdapter(ctx context.Context, req *SetAdapterRequest) (*Ack, error)
	IsCompatibleWith(ctx context.Context, req *CompatibilityRequest) (*Ack, error)
	PlaceCall(ctx context.Context, req *PlaceCallRequest) (*Ack, error)
	Disconnect(ctx context.Context, req *DisconnectRequest) (*Ack, error)
}

// RegisterCallServiceServer registers the call service on a gRPC server.
func RegisterCallServiceServer(registrar grpc.ServiceRegistrar, srv Server) {
	registrar.RegisterService(&serviceDesc, srv)
}

// serviceDesc is maintained by hand; the wire payloads are JSON, so there is
// no generated descriptor to lean on.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SetAdapter", Handler: setAdapterHandler},
		{MethodName: "IsCompatibleWith", Handler: isCompatibleWithHandler},
		{MethodName: "PlaceCall", Handler: placeCallHandler},
		{MethodName: "Disconnect", Handler: disconnectHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/api/grpc/callservice",
}

func setAdapterHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(SetAdapterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(Server).SetAdapter(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSetAdapter}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).SetAdapter(ctx, req.(*SetAdapterRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func isCompatibleWithHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(CompatibilityRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(Server).IsCompatibleWith(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodCompatible}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).IsCompatibleWith(ctx, req.(*CompatibilityRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func placeCallHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(PlaceCallRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(Server).PlaceCall(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPlaceCall}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).PlaceCall(ctx, req.(*PlaceCallRequest))
	}

	return interceptor(ctx, in, info, handler)
}

func disconnectHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(DisconnectRequest)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(Server).Disconnect(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDisconnect}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).Disconnect(ctx, req.(*DisconnectRequest))
	}

	return interceptor(ctx, in, info, handler)
}
