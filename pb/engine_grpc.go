// Package pb holds the gRPC contract of the blockfall engine service.
//
// Messages are protobuf well-known types: actions travel as
// google.protobuf.StringValue and snapshots as google.protobuf.Struct,
// see snapshot.go for the field layout.
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	EngineService_Play_FullMethodName  = "/blockfall.v1.EngineService/Play"
	EngineService_Watch_FullMethodName = "/blockfall.v1.EngineService/Watch"
)

// EngineServiceClient is the client API for EngineService.
type EngineServiceClient interface {
	// Play opens a new game session. Inbound messages are action names,
	// outbound messages are snapshots published after every command.
	Play(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[wrapperspb.StringValue, structpb.Struct], error)
	// Watch streams the snapshots of an existing session.
	Watch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type engineServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewEngineServiceClient(cc grpc.ClientConnInterface) EngineServiceClient {
	return &engineServiceClient{cc}
}

func (c *engineServiceClient) Play(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[wrapperspb.StringValue, structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &EngineService_ServiceDesc.Streams[0], EngineService_Play_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wrapperspb.StringValue, structpb.Struct]{ClientStream: stream}
	return x, nil
}

func (c *engineServiceClient) Watch(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &EngineService_ServiceDesc.Streams[1], EngineService_Watch_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wrapperspb.StringValue, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// EngineServiceServer is the server API for EngineService.
// Implementations must embed UnimplementedEngineServiceServer.
type EngineServiceServer interface {
	Play(grpc.BidiStreamingServer[wrapperspb.StringValue, structpb.Struct]) error
	Watch(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error
	mustEmbedUnimplementedEngineServiceServer()
}

type UnimplementedEngineServiceServer struct{}

func (UnimplementedEngineServiceServer) Play(grpc.BidiStreamingServer[wrapperspb.StringValue, structpb.Struct]) error {
	return status.Errorf(codes.Unimplemented, "method Play not implemented")
}
func (UnimplementedEngineServiceServer) Watch(*wrapperspb.StringValue, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Errorf(codes.Unimplemented, "method Watch not implemented")
}
func (UnimplementedEngineServiceServer) mustEmbedUnimplementedEngineServiceServer() {}

func RegisterEngineServiceServer(s grpc.ServiceRegistrar, srv EngineServiceServer) {
	s.RegisterService(&EngineService_ServiceDesc, srv)
}

func _EngineService_Play_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(EngineServiceServer).Play(&grpc.GenericServerStream[wrapperspb.StringValue, structpb.Struct]{ServerStream: stream})
}

func _EngineService_Watch_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(EngineServiceServer).Watch(m, &grpc.GenericServerStream[wrapperspb.StringValue, structpb.Struct]{ServerStream: stream})
}

var EngineService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "blockfall.v1.EngineService",
	HandlerType: (*EngineServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Play",
			Handler:       _EngineService_Play_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
		{
			StreamName:    "Watch",
			Handler:       _EngineService_Watch_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "blockfall/v1/engine.proto",
}
