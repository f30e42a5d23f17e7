package daemon

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "polish.daemon.v1.DaemonService"

// RPC method names.
const (
	MethodPing       = "Ping"
	MethodStatus     = "Status"
	MethodWillSave   = "WillSave"
	MethodInvalidate = "Invalidate"
	MethodShutdown   = "Shutdown"
)

// daemonService is the server side of the service. Every message is a
// structpb.Struct so no generated code is needed.
type daemonService interface {
	Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Status(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	WillSave(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Invalidate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Shutdown(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(daemonService, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(method string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			svc, _ := srv.(daemonService)
			if interceptor == nil {
				return call(svc, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				r, _ := req.(*structpb.Struct)
				return call(svc, ctx, r)
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*daemonService)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, daemonService.Ping),
		unary(MethodStatus, daemonService.Status),
		unary(MethodWillSave, daemonService.WillSave),
		unary(MethodInvalidate, daemonService.Invalidate),
		unary(MethodShutdown, daemonService.Shutdown),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "polish/daemon/v1/daemon.proto",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}
