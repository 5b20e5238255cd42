// Package rpc serves the engine over gRPC. Messages travel as
// google.protobuf.Struct carrying the engine's JSON shapes, so the service
// needs no generated code.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "rivenwatch.v1.Engine"

const (
	methodGrade       = "Grade"
	methodIdentity    = "Identity"
	methodEncodeQuery = "EncodeQuery"
	methodProject     = "Project"
)

// #region server-api
// EngineServer is the server side of the Engine service.
type EngineServer interface {
	Grade(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Identity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EncodeQuery(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Project(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(EngineServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EngineServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(EngineServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// EngineServiceDesc describes the Engine service for grpc.Server.RegisterService.
var EngineServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: methodGrade, Handler: unaryHandler(methodGrade, EngineServer.Grade)},
		{MethodName: methodIdentity, Handler: unaryHandler(methodIdentity, EngineServer.Identity)},
		{MethodName: methodEncodeQuery, Handler: unaryHandler(methodEncodeQuery, EngineServer.EncodeQuery)},
		{MethodName: methodProject, Handler: unaryHandler(methodProject, EngineServer.Project)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterEngineServer registers srv on s.
func RegisterEngineServer(s grpc.ServiceRegistrar, srv EngineServer) {
	s.RegisterService(&EngineServiceDesc, srv)
}

// #endregion server-api

// #region client-api
// EngineClient is the client side of the Engine service.
type EngineClient interface {
	Grade(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Identity(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	EncodeQuery(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Project(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type engineClient struct {
	cc grpc.ClientConnInterface
}

// NewEngineClient binds an EngineClient to a connection.
func NewEngineClient(cc grpc.ClientConnInterface) EngineClient {
	return &engineClient{cc: cc}
}

func (c *engineClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *engineClient) Grade(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGrade, in, opts...)
}

func (c *engineClient) Identity(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodIdentity, in, opts...)
}

func (c *engineClient) EncodeQuery(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodEncodeQuery, in, opts...)
}

func (c *engineClient) Project(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodProject, in, opts...)
}

// #endregion client-api

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}
