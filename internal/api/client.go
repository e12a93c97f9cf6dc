package api

import (
	"context"
	"errors"
	"io"

	"google.golang.org/grpc"

	"github.com/matheus3301/wppsim/internal/model"
)

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, service, method string, req any) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, fullMethod(service, method), req, out, grpc.CallContentSubtype(CodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

// SessionClient calls SessionService.
type SessionClient struct{ cc grpc.ClientConnInterface }

func NewSessionClient(cc grpc.ClientConnInterface) *SessionClient { return &SessionClient{cc} }

func (c *SessionClient) GetStatus(ctx context.Context) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, SessionServiceName, "GetStatus", &Empty{})
}

// ChatClient calls ChatService.
type ChatClient struct{ cc grpc.ClientConnInterface }

func NewChatClient(cc grpc.ClientConnInterface) *ChatClient { return &ChatClient{cc} }

func (c *ChatClient) call(ctx context.Context, method string, req any) error {
	_, err := invoke[Empty](ctx, c.cc, ChatServiceName, method, req)
	return err
}

func (c *ChatClient) toggle(ctx context.Context, method, chatID string) (bool, error) {
	resp, err := invoke[ToggleResponse](ctx, c.cc, ChatServiceName, method, &ChatRef{ChatID: chatID})
	if err != nil {
		return false, err
	}
	return resp.On, nil
}

func (c *ChatClient) ListChats(ctx context.Context, req *ListChatsRequest) (*ListChatsResponse, error) {
	return invoke[ListChatsResponse](ctx, c.cc, ChatServiceName, "ListChats", req)
}

func (c *ChatClient) GetChat(ctx context.Context, chatID string) (*ChatDetail, error) {
	return invoke[ChatDetail](ctx, c.cc, ChatServiceName, "GetChat", &ChatRef{ChatID: chatID})
}

func (c *ChatClient) Select(ctx context.Context, chatID string) error {
	return c.call(ctx, "Select", &ChatRef{ChatID: chatID})
}

func (c *ChatClient) Deselect(ctx context.Context) error {
	return c.call(ctx, "Deselect", &Empty{})
}

func (c *ChatClient) Open(ctx context.Context, userID string) (string, error) {
	resp, err := invoke[ChatRef](ctx, c.cc, ChatServiceName, "Open", &OpenRequest{UserID: userID})
	if err != nil {
		return "", err
	}
	return resp.ChatID, nil
}

func (c *ChatClient) CreateGroup(ctx context.Context, name string, memberIDs []string) (string, error) {
	resp, err := invoke[ChatRef](ctx, c.cc, ChatServiceName, "CreateGroup", &CreateGroupRequest{Name: name, MemberIDs: memberIDs})
	if err != nil {
		return "", err
	}
	return resp.ChatID, nil
}

func (c *ChatClient) TogglePin(ctx context.Context, chatID string) (bool, error) {
	return c.toggle(ctx, "TogglePin", chatID)
}

func (c *ChatClient) ToggleMute(ctx context.Context, chatID string) (bool, error) {
	return c.toggle(ctx, "ToggleMute", chatID)
}

func (c *ChatClient) ToggleArchive(ctx context.Context, chatID string) (bool, error) {
	return c.toggle(ctx, "ToggleArchive", chatID)
}

func (c *ChatClient) MuteFor(ctx context.Context, chatID, duration string) error {
	return c.call(ctx, "MuteFor", &MuteForRequest{ChatID: chatID, Duration: duration})
}

func (c *ChatClient) SetFolder(ctx context.Context, req *SetFolderRequest) error {
	return c.call(ctx, "SetFolder", req)
}

func (c *ChatClient) Lock(ctx context.Context, chatID, pin string) error {
	return c.call(ctx, "Lock", &LockRequest{ChatID: chatID, PIN: pin})
}

func (c *ChatClient) Unlock(ctx context.Context, chatID string) error {
	return c.call(ctx, "Unlock", &ChatRef{ChatID: chatID})
}

func (c *ChatClient) ClearHistory(ctx context.Context, chatID string, confirm bool) error {
	return c.call(ctx, "ClearHistory", &ClearHistoryRequest{ChatID: chatID, Confirm: confirm})
}

func (c *ChatClient) SetNote(ctx context.Context, chatID, note string) error {
	return c.call(ctx, "SetNote", &SetTextRequest{ChatID: chatID, Value: note})
}

func (c *ChatClient) SetWallpaper(ctx context.Context, chatID, wallpaper string) error {
	return c.call(ctx, "SetWallpaper", &SetTextRequest{ChatID: chatID, Value: wallpaper})
}

func (c *ChatClient) SetEphemeral(ctx context.Context, chatID string, on bool) error {
	return c.call(ctx, "SetEphemeral", &SetEphemeralRequest{ChatID: chatID, On: on})
}

func (c *ChatClient) MarkUnread(ctx context.Context, chatID string) error {
	return c.call(ctx, "MarkUnread", &ChatRef{ChatID: chatID})
}

// WatchEvents opens the event stream. Cancel ctx to close it.
func (c *ChatClient) WatchEvents(ctx context.Context, prefix string) (*EventReceiver, error) {
	desc := &chatServiceDesc.Streams[0]
	stream, err := c.cc.NewStream(ctx, desc, fullMethod(ChatServiceName, desc.StreamName), grpc.CallContentSubtype(CodecName))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&WatchRequest{Prefix: prefix}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &EventReceiver{stream: stream}, nil
}

// EventReceiver reads events from a WatchEvents stream.
type EventReceiver struct {
	stream grpc.ClientStream
}

// Recv blocks for the next event. It returns io.EOF when the daemon closes
// the stream.
func (r *EventReceiver) Recv() (*Event, error) {
	evt := new(Event)
	if err := r.stream.RecvMsg(evt); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	return evt, nil
}

// MessageClient calls MessageService.
type MessageClient struct{ cc grpc.ClientConnInterface }

func NewMessageClient(cc grpc.ClientConnInterface) *MessageClient { return &MessageClient{cc} }

func (c *MessageClient) call(ctx context.Context, method string, req any) error {
	_, err := invoke[Empty](ctx, c.cc, MessageServiceName, method, req)
	return err
}

func (c *MessageClient) ListMessages(ctx context.Context, chatID string, limit int) ([]model.Message, error) {
	resp, err := invoke[ListMessagesResponse](ctx, c.cc, MessageServiceName, "ListMessages", &ListMessagesRequest{ChatID: chatID, Limit: limit})
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *MessageClient) Send(ctx context.Context, req *SendRequest) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, MessageServiceName, "Send", req)
}

func (c *MessageClient) Forward(ctx context.Context, req *ForwardRequest) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, MessageServiceName, "Forward", req)
}

func (c *MessageClient) React(ctx context.Context, chatID, messageID, emoji string) error {
	return c.call(ctx, "React", &ReactRequest{ChatID: chatID, MessageID: messageID, Emoji: emoji})
}

func (c *MessageClient) Edit(ctx context.Context, chatID, messageID, content string) error {
	return c.call(ctx, "Edit", &EditRequest{ChatID: chatID, MessageID: messageID, Content: content})
}

func (c *MessageClient) Delete(ctx context.Context, chatID, messageID string) error {
	return c.call(ctx, "Delete", &MessageRef{ChatID: chatID, MessageID: messageID})
}

func (c *MessageClient) Star(ctx context.Context, chatID, messageID string) (bool, error) {
	resp, err := invoke[ToggleResponse](ctx, c.cc, MessageServiceName, "Star", &MessageRef{ChatID: chatID, MessageID: messageID})
	if err != nil {
		return false, err
	}
	return resp.On, nil
}

func (c *MessageClient) Pin(ctx context.Context, chatID, messageID string) (bool, error) {
	resp, err := invoke[ToggleResponse](ctx, c.cc, MessageServiceName, "Pin", &MessageRef{ChatID: chatID, MessageID: messageID})
	if err != nil {
		return false, err
	}
	return resp.On, nil
}

func (c *MessageClient) Vote(ctx context.Context, chatID, messageID, optionID string) error {
	return c.call(ctx, "Vote", &VoteRequest{ChatID: chatID, MessageID: messageID, OptionID: optionID})
}

func (c *MessageClient) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	return invoke[SearchResponse](ctx, c.cc, MessageServiceName, "Search", req)
}

func (c *MessageClient) Suggest(ctx context.Context, chatID string) ([]string, error) {
	resp, err := invoke[SuggestResponse](ctx, c.cc, MessageServiceName, "Suggest", &ChatRef{ChatID: chatID})
	if err != nil {
		return nil, err
	}
	return resp.Replies, nil
}

// ProfileClient calls ProfileService.
type ProfileClient struct{ cc grpc.ClientConnInterface }

func NewProfileClient(cc grpc.ClientConnInterface) *ProfileClient { return &ProfileClient{cc} }

func (c *ProfileClient) call(ctx context.Context, method string, req any) error {
	_, err := invoke[Empty](ctx, c.cc, ProfileServiceName, method, req)
	return err
}

func (c *ProfileClient) GetProfile(ctx context.Context) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, ProfileServiceName, "GetProfile", &Empty{})
}

func (c *ProfileClient) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, ProfileServiceName, "UpdateProfile", req)
}

func (c *ProfileClient) UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, ProfileServiceName, "UpdateSettings", req)
}

func (c *ProfileClient) SetPIN(ctx context.Context, current, next string) error {
	return c.call(ctx, "SetPIN", &SetPINRequest{Current: current, Next: next})
}

func (c *ProfileClient) ListContacts(ctx context.Context) ([]Contact, error) {
	resp, err := invoke[ContactsResponse](ctx, c.cc, ProfileServiceName, "ListContacts", &Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Contacts, nil
}

func (c *ProfileClient) Block(ctx context.Context, userID string, confirm bool) error {
	return c.call(ctx, "Block", &BlockRequest{UserID: userID, Confirm: confirm})
}

func (c *ProfileClient) Unblock(ctx context.Context, userID string) error {
	return c.call(ctx, "Unblock", &UserRef{UserID: userID})
}

func (c *ProfileClient) ListStories(ctx context.Context, includeExpired bool) (*StoriesResponse, error) {
	return invoke[StoriesResponse](ctx, c.cc, ProfileServiceName, "ListStories", &ListStoriesRequest{IncludeExpired: includeExpired})
}

func (c *ProfileClient) AddStory(ctx context.Context, req *AddStoryRequest) (*StoryResponse, error) {
	return invoke[StoryResponse](ctx, c.cc, ProfileServiceName, "AddStory", req)
}

func (c *ProfileClient) ViewStory(ctx context.Context, storyID string) error {
	return c.call(ctx, "ViewStory", &StoryRef{StoryID: storyID})
}

func (c *ProfileClient) ReplyStory(ctx context.Context, storyID, text string) (*MessageResponse, error) {
	return invoke[MessageResponse](ctx, c.cc, ProfileServiceName, "ReplyStory", &ReplyStoryRequest{StoryID: storyID, Text: text})
}

func (c *ProfileClient) StartCall(ctx context.Context, req *StartCallRequest) (*CallResponse, error) {
	return invoke[CallResponse](ctx, c.cc, ProfileServiceName, "StartCall", req)
}

func (c *ProfileClient) EndCall(ctx context.Context, callID string) (*CallResponse, error) {
	return invoke[CallResponse](ctx, c.cc, ProfileServiceName, "EndCall", &CallRef{CallID: callID})
}

func (c *ProfileClient) ListCalls(ctx context.Context) (*CallsResponse, error) {
	return invoke[CallsResponse](ctx, c.cc, ProfileServiceName, "ListCalls", &Empty{})
}
