package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/draft-assistant/internal/pubsub"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "draftassistant.DraftService"

// DraftServiceServer is the server API for the draft service. Requests and
// responses are JSON-shaped google.protobuf.Struct messages.
type DraftServiceServer interface {
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DraftPlayer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UndoPick(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetDraft(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAdvice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPlayers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WatchEvents(*structpb.Struct, grpc.ServerStream) error
}

// RegisterDraftServiceServer registers srv on s
func RegisterDraftServiceServer(s grpc.ServiceRegistrar, srv DraftServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unaryHandler(call func(DraftServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error), method string) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DraftServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DraftServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchEventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(DraftServiceServer).WatchEvents(in, stream)
}

// ServiceDesc describes the draft service for registration
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DraftServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateSession", Handler: unaryHandler(DraftServiceServer.CreateSession, "CreateSession")},
		{MethodName: "GetState", Handler: unaryHandler(DraftServiceServer.GetState, "GetState")},
		{MethodName: "DraftPlayer", Handler: unaryHandler(DraftServiceServer.DraftPlayer, "DraftPlayer")},
		{MethodName: "UndoPick", Handler: unaryHandler(DraftServiceServer.UndoPick, "UndoPick")},
		{MethodName: "ResetDraft", Handler: unaryHandler(DraftServiceServer.ResetDraft, "ResetDraft")},
		{MethodName: "GetAdvice", Handler: unaryHandler(DraftServiceServer.GetAdvice, "GetAdvice")},
		{MethodName: "ListPlayers", Handler: unaryHandler(DraftServiceServer.ListPlayers, "ListPlayers")},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchEvents", Handler: watchEventsHandler, ServerStreams: true},
	},
	Metadata: "draftassistant/draft_service.proto",
}

// Client calls the draft service over a connection
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client on cc
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes a unary method by name
func (c *Client) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// WatchEvents opens the event stream. Recv blocks until the next event.
func (c *Client) WatchEvents(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (func() (pubsub.Event, error), error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+ServiceName+"/WatchEvents", opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return func() (pubsub.Event, error) {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			return pubsub.Event{}, err
		}
		var event pubsub.Event
		err := fromStruct(msg, &event)
		return event, err
	}, nil
}
