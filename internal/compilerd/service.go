// Package compilerd serves the placeholder compiler over gRPC.
//
// Requests and responses are google.protobuf.Struct messages, so the service
// is described by a hand-written ServiceDesc instead of generated stubs.
package compilerd

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "faultgen.v1.Compiler"

// Full method names.
const (
	MethodPing       = "/" + ServiceName + "/Ping"
	MethodFormat     = "/" + ServiceName + "/Format"
	MethodBind       = "/" + ServiceName + "/Bind"
	MethodCheckUsage = "/" + ServiceName + "/CheckUsage"
	MethodGenerate   = "/" + ServiceName + "/Generate"
)

// CompilerServer is the server API of the compile service.
type CompilerServer interface {
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Format(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Bind(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckUsage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Generate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(CompilerServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CompilerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CompilerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the compile service for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CompilerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unaryHandler(MethodPing, CompilerServer.Ping)},
		{MethodName: "Format", Handler: unaryHandler(MethodFormat, CompilerServer.Format)},
		{MethodName: "Bind", Handler: unaryHandler(MethodBind, CompilerServer.Bind)},
		{MethodName: "CheckUsage", Handler: unaryHandler(MethodCheckUsage, CompilerServer.CheckUsage)},
		{MethodName: "Generate", Handler: unaryHandler(MethodGenerate, CompilerServer.Generate)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "faultgen/v1/compiler.proto",
}

// RegisterCompilerServer registers srv on s.
func RegisterCompilerServer(s grpc.ServiceRegistrar, srv CompilerServer) {
	s.RegisterService(&ServiceDesc, srv)
}
