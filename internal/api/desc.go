package api

import (
	"context"

	"google.golang.org/grpc"
)

const (
	SessionServiceName = "wppsim.v1.SessionService"
	ChatServiceName    = "wppsim.v1.ChatService"
	MessageServiceName = "wppsim.v1.MessageService"
	ProfileServiceName = "wppsim.v1.ProfileService"
)

func fullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// unary builds a MethodDesc that decodes *Req and dispatches to fn on the
// registered service value.
func unary[S, Req, Resp any](service, method string, fn func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	name := fullMethod(service, method)
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return fn(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(srv.(S), ctx, req.(*Req))
			})
		},
	}
}

var sessionServiceDesc = grpc.ServiceDesc{
	ServiceName: SessionServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary(SessionServiceName, "GetStatus", (*SessionService).GetStatus),
	},
}

var chatServiceDesc = grpc.ServiceDesc{
	ServiceName: ChatServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary(ChatServiceName, "ListChats", (*ChatService).ListChats),
		unary(ChatServiceName, "GetChat", (*ChatService).GetChat),
		unary(ChatServiceName, "Select", (*ChatService).Select),
		unary(ChatServiceName, "Deselect", (*ChatService).Deselect),
		unary(ChatServiceName, "Open", (*ChatService).Open),
		unary(ChatServiceName, "CreateGroup", (*ChatService).CreateGroup),
		unary(ChatServiceName, "TogglePin", (*ChatService).TogglePin),
		unary(ChatServiceName, "ToggleMute", (*ChatService).ToggleMute),
		unary(ChatServiceName, "ToggleArchive", (*ChatService).ToggleArchive),
		unary(ChatServiceName, "MuteFor", (*ChatService).MuteFor),
		unary(ChatServiceName, "SetFolder", (*ChatService).SetFolder),
		unary(ChatServiceName, "Lock", (*ChatService).Lock),
		unary(ChatServiceName, "Unlock", (*ChatService).Unlock),
		unary(ChatServiceName, "ClearHistory", (*ChatService).ClearHistory),
		unary(ChatServiceName, "SetNote", (*ChatService).SetNote),
		unary(ChatServiceName, "SetWallpaper", (*ChatService).SetWallpaper),
		unary(ChatServiceName, "SetEphemeral", (*ChatService).SetEphemeral),
		unary(ChatServiceName, "MarkUnread", (*ChatService).MarkUnread),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchEvents",
			ServerStreams: true,
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(WatchRequest)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(*ChatService).WatchEvents(in, &eventServerStream{stream})
			},
		},
	},
}

var messageServiceDesc = grpc.ServiceDesc{
	ServiceName: MessageServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary(MessageServiceName, "ListMessages", (*MessageService).ListMessages),
		unary(MessageServiceName, "Send", (*MessageService).Send),
		unary(MessageServiceName, "Forward", (*MessageService).Forward),
		unary(MessageServiceName, "React", (*MessageService).React),
		unary(MessageServiceName, "Edit", (*MessageService).Edit),
		unary(MessageServiceName, "Delete", (*MessageService).Delete),
		unary(MessageServiceName, "Star", (*MessageService).Star),
		unary(MessageServiceName, "Pin", (*MessageService).Pin),
		unary(MessageServiceName, "Vote", (*MessageService).Vote),
		unary(MessageServiceName, "Search", (*MessageService).Search),
		unary(MessageServiceName, "Suggest", (*MessageService).Suggest),
	},
}

var profileServiceDesc = grpc.ServiceDesc{
	ServiceName: ProfileServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary(ProfileServiceName, "GetProfile", (*ProfileService).GetProfile),
		unary(ProfileServiceName, "UpdateProfile", (*ProfileService).UpdateProfile),
		unary(ProfileServiceName, "UpdateSettings", (*ProfileService).UpdateSettings),
		unary(ProfileServiceName, "SetPIN", (*ProfileService).SetPIN),
		unary(ProfileServiceName, "ListContacts", (*ProfileService).ListContacts),
		unary(ProfileServiceName, "Block", (*ProfileService).Block),
		unary(ProfileServiceName, "Unblock", (*ProfileService).Unblock),
		unary(ProfileServiceName, "ListStories", (*ProfileService).ListStories),
		unary(ProfileServiceName, "AddStory", (*ProfileService).AddStory),
		unary(ProfileServiceName, "ViewStory", (*ProfileService).ViewStory),
		unary(ProfileServiceName, "ReplyStory", (*ProfileService).ReplyStory),
		unary(ProfileServiceName, "StartCall", (*ProfileService).StartCall),
		unary(ProfileServiceName, "EndCall", (*ProfileService).EndCall),
		unary(ProfileServiceName, "ListCalls", (*ProfileService).ListCalls),
	},
}

// Register adds every wppsim service to srv.
func Register(srv grpc.ServiceRegistrar, session *SessionService, chat *ChatService, message *MessageService, profile *ProfileService) {
	srv.RegisterService(&sessionServiceDesc, session)
	srv.RegisterService(&chatServiceDesc, chat)
	srv.RegisterService(&messageServiceDesc, message)
	srv.RegisterService(&profileServiceDesc, profile)
}

// EventStream is the server side of WatchEvents.
type EventStream interface {
	Send(*Event) error
	Context() context.Context
}

type eventServerStream struct {
	grpc.ServerStream
}

func (s *eventServerStream) Send(e *Event) error {
	return s.ServerStream.SendMsg(e)
}
