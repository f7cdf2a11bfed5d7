package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ladder.v1.Ladder"

const (
	methodExpected     = "/" + ServiceName + "/Expected"
	methodNoProtection = "/" + ServiceName + "/NoProtection"
	methodSimulate     = "/" + ServiceName + "/Simulate"
)

// LadderServer is the server API. Requests and responses are
// google.protobuf.Struct messages.
type LadderServer interface {
	Expected(context.Context, *structpb.Struct) (*structpb.Struct, error)
	NoProtection(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterLadderServer attaches srv to s.
func RegisterLadderServer(s grpc.ServiceRegistrar, srv LadderServer) {
	s.RegisterService(&LadderServiceDesc, srv)
}

// LadderServiceDesc describes the Ladder service for grpc.Server.
var LadderServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LadderServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Expected", Handler: unaryHandler(methodExpected, LadderServer.Expected)},
		{MethodName: "NoProtection", Handler: unaryHandler(methodNoProtection, LadderServer.NoProtection)},
		{MethodName: "Simulate", Handler: unaryHandler(methodSimulate, LadderServer.Simulate)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ladder/v1/ladder.proto",
}

type unaryMethod func(LadderServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, m unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return m(srv.(LadderServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return m(srv.(LadderServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
