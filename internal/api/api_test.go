package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/matheus3301/wppsim/internal/bus"
	"github.com/matheus3301/wppsim/internal/calls"
	"github.com/matheus3301/wppsim/internal/clock"
	"github.com/matheus3301/wppsim/internal/interact"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/outbox"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/seed"
	"github.com/matheus3301/wppsim/internal/status"
	"github.com/matheus3301/wppsim/internal/stories"
	"github.com/matheus3301/wppsim/internal/suggest"
)

type harness struct {
	clock   *clock.FakeClock
	store   *roster.Store
	session *SessionClient
	chat    *ChatClient
	message *MessageClient
	profile *ProfileClient
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()
	clk := clock.Fake(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	b := bus.New()
	store := roster.NewStore(seed.Default(clk.Now()), b, clk, logger)
	sender := outbox.NewSender(store, b, outbox.Options{AutoReplies: []string{"ok!"}}, logger)
	cm := calls.NewManager(store, b, 0, logger)
	handlers := interact.New(store, b, logger)
	handlers.OnBlock(func(userID string) { cm.EndWith(userID) })
	machine := status.NewMachine(b)
	_ = machine.Transition(status.Loading)
	_ = machine.Transition(status.Ready)

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryErrors(logger)),
		grpc.ChainStreamInterceptor(StreamErrors(logger)),
	)
	Register(srv,
		NewSessionService(SessionInfo{Name: "test", Backend: "memory"}, machine, store, sender, nil),
		NewChatService(store, sender, b, "test", logger),
		NewMessageService(store, sender, handlers, suggest.NewService(nil, 0, logger)),
		NewProfileService(store, handlers, sender, stories.New(store), cm),
	)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
		sender.Stop()
		cm.Stop()
		b.Close()
	})
	return &harness{
		clock:   clk,
		store:   store,
		session: NewSessionClient(conn),
		chat:    NewChatClient(conn),
		message: NewMessageClient(conn),
		profile: NewProfileClient(conn),
	}
}

func wantCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	if got := grpcstatus.Code(err); got != code {
		t.Fatalf("code = %v (%v), want %v", got, err, code)
	}
}

func TestListChatsViews(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	all, err := h.chat.ListChats(ctx, &ListChatsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Chats) == 0 || all.Chats[0].ID != "chat-ana" {
		t.Fatalf("first chat = %+v, want pinned chat-ana", all.Chats)
	}
	for _, c := range all.Chats {
		if c.ID == "chat-dev" {
			t.Error("archived chat listed in the all view")
		}
	}

	archived, err := h.chat.ListChats(ctx, &ListChatsRequest{View: "archived"})
	if err != nil {
		t.Fatal(err)
	}
	if len(archived.Chats) != 1 || archived.Chats[0].ID != "chat-dev" {
		t.Errorf("archived = %+v", archived.Chats)
	}

	byName, err := h.chat.ListChats(ctx, &ListChatsRequest{Query: "hike"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byName.Chats) != 1 || byName.Chats[0].ID != "chat-team" {
		t.Errorf("query hike = %+v", byName.Chats)
	}

	_, err = h.chat.ListChats(ctx, &ListChatsRequest{View: "spam"})
	wantCode(t, err, codes.InvalidArgument)
}

func TestGetChatNotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.chat.GetChat(context.Background(), "nope")
	wantCode(t, err, codes.NotFound)
}

func TestSendLifecycleOverRPC(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.chat.Select(ctx, "chat-emma"); err != nil {
		t.Fatal(err)
	}
	resp, err := h.message.Send(ctx, &SendRequest{ChatID: "chat-emma", Content: "Hi"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Message.Status != model.Sent || resp.Message.Content != "Hi" {
		t.Fatalf("sent = %+v", resp.Message)
	}

	h.clock.Advance(5 * time.Second)

	msgs, err := h.message.ListMessages(ctx, "chat-emma", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want sent + reply", len(msgs))
	}
	if msgs[0].Status != model.Read {
		t.Errorf("status = %s, want read", msgs[0].Status)
	}
	if msgs[1].SenderID != "u-emma" || msgs[1].Content != "ok!" {
		t.Errorf("reply = %+v", msgs[1])
	}

	_, err = h.message.Send(ctx, &SendRequest{ChatID: "chat-emma", Content: "   "})
	wantCode(t, err, codes.InvalidArgument)
}

func TestBlockedSend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	wantCode(t, h.profile.Block(ctx, "u-ben", false), codes.FailedPrecondition)
	if err := h.profile.Block(ctx, "u-ben", true); err != nil {
		t.Fatal(err)
	}

	_, err := h.message.Send(ctx, &SendRequest{ChatID: "chat-ben", Content: "hey"})
	wantCode(t, err, codes.FailedPrecondition)
	if !strings.Contains(grpcstatus.Convert(err).Message(), "unblock") {
		t.Errorf("message = %q", grpcstatus.Convert(err).Message())
	}

	contacts, err := h.profile.ListContacts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range contacts {
		if c.User.ID == "u-ben" && !c.Blocked {
			t.Error("u-ben not reported blocked")
		}
	}

	if err := h.profile.Unblock(ctx, "u-ben"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.message.Send(ctx, &SendRequest{ChatID: "chat-ben", Content: "hey"}); err != nil {
		t.Errorf("send after unblock: %v", err)
	}
}

func TestBlockHangsUpCall(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	call, err := h.profile.StartCall(ctx, &StartCallRequest{UserID: "u-ben", Kind: model.VideoCall})
	if err != nil {
		t.Fatal(err)
	}
	if err := h.profile.Block(ctx, "u-ben", true); err != nil {
		t.Fatal(err)
	}
	calls, err := h.profile.ListCalls(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if calls.Active != nil {
		t.Errorf("call still active after block: %+v", calls.Active)
	}
	for _, c := range calls.Calls {
		if c.ID == call.Call.ID && c.State != model.CallMissed {
			t.Errorf("ringing call ended as %s, want missed", c.State)
		}
	}
}

func TestPINNeverLeaves(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	wantCode(t, h.chat.Lock(ctx, "chat-ben", "1234"), codes.PermissionDenied)
	if err := h.profile.SetPIN(ctx, "", "1234"); err != nil {
		t.Fatal(err)
	}
	wantCode(t, h.chat.Lock(ctx, "chat-ben", "9999"), codes.PermissionDenied)
	if err := h.chat.Lock(ctx, "chat-ben", "1234"); err != nil {
		t.Fatal(err)
	}

	p, err := h.profile.GetProfile(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !p.PINSet {
		t.Error("PINSet = false")
	}
	if p.Me.Settings != nil && p.Me.Settings.LockPINHash != "" {
		t.Error("PIN hash returned to client")
	}

	locked, err := h.chat.ListChats(ctx, &ListChatsRequest{View: "locked"})
	if err != nil {
		t.Fatal(err)
	}
	if len(locked.Chats) != 1 || locked.Chats[0].ID != "chat-ben" {
		t.Errorf("locked = %+v", locked.Chats)
	}
}

func TestMessageActions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.message.React(ctx, "chat-ana", "ana-4", "🔥"); err != nil {
		t.Fatal(err)
	}
	on, err := h.message.Star(ctx, "chat-ana", "ana-4")
	if err != nil || !on {
		t.Fatalf("Star = %v, %v", on, err)
	}
	wantCode(t, h.message.Edit(ctx, "chat-ana", "ana-4", "mine now"), codes.PermissionDenied)
	if err := h.message.Vote(ctx, "chat-team", "team-3", "opt-sun"); err != nil {
		t.Fatal(err)
	}
	wantCode(t, h.message.Vote(ctx, "chat-team", "team-3", "opt-mon"), codes.InvalidArgument)

	starred, err := h.message.Search(ctx, &SearchRequest{Starred: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(starred.Hits) != 2 {
		t.Errorf("starred hits = %d, want 2", len(starred.Hits))
	}

	found, err := h.message.Search(ctx, &SearchRequest{Query: "BRUNCH"})
	if err != nil {
		t.Fatal(err)
	}
	if len(found.Hits) == 0 || found.Hits[0].ChatID != "chat-ana" {
		t.Errorf("search hits = %+v", found.Hits)
	}

	if err := h.message.Delete(ctx, "chat-ana", "ana-4"); err != nil {
		t.Fatal(err)
	}
	wantCode(t, h.message.React(ctx, "chat-ana", "ana-4", "👍"), codes.FailedPrecondition)

	replies, err := h.message.Suggest(ctx, "chat-ana")
	if err != nil {
		t.Fatal(err)
	}
	if len(replies) != len(suggest.Fallback) {
		t.Errorf("replies = %v", replies)
	}
}

func TestCallsOverRPC(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	started, err := h.profile.StartCall(ctx, &StartCallRequest{UserID: "u-ana", Kind: model.VideoCall})
	if err != nil {
		t.Fatal(err)
	}
	_, err = h.profile.StartCall(ctx, &StartCallRequest{UserID: "u-ben"})
	wantCode(t, err, codes.FailedPrecondition)

	h.clock.Advance(calls.DefaultRingAfter)
	list, err := h.profile.ListCalls(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if list.Active == nil || list.Active.ID != started.Call.ID || list.Active.State != model.CallConnected {
		t.Fatalf("active = %+v", list.Active)
	}

	h.clock.Advance(time.Minute)
	ended, err := h.profile.EndCall(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if ended.Call.State != model.CallEnded || ended.Call.Duration() != time.Minute {
		t.Errorf("ended = %+v (%v)", ended.Call, ended.Call.Duration())
	}
	_, err = h.profile.EndCall(ctx, "")
	wantCode(t, err, codes.NotFound)
}

func TestStoriesOverRPC(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	added, err := h.profile.AddStory(ctx, &AddStoryRequest{Type: model.StoryText, Content: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	groups, err := h.profile.ListStories(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups.Groups) == 0 || groups.Groups[0].Stories[0].ID != added.Story.ID {
		t.Fatalf("own group not first: %+v", groups.Groups)
	}

	reply, err := h.profile.ReplyStory(ctx, "story-ana-2", "yum")
	if err != nil {
		t.Fatal(err)
	}
	if reply.ChatID != "chat-ana" || !strings.Contains(reply.Message.Content, "yum") {
		t.Errorf("reply = %+v", reply)
	}
}

func TestGetStatus(t *testing.T) {
	h := newHarness(t)
	st, err := h.session.GetStatus(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Status != string(status.Ready) || st.Session != "test" || st.ChatCount != len(h.store.Snapshot().Chats) {
		t.Errorf("status = %+v", st)
	}
	if st.UnreadCount == 0 || st.MessageCount == 0 {
		t.Errorf("counts = %+v", st)
	}
}

func TestWatchEvents(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := h.chat.WatchEvents(ctx, bus.KindStateChanged)
	if err != nil {
		t.Fatal(err)
	}

	// The server subscribes asynchronously; keep poking until the first event lands.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = h.chat.Select(ctx, "chat-ana")
			}
		}
	}()

	evt, err := events.Recv()
	if err != nil {
		t.Fatal(err)
	}
	if evt.Kind != bus.KindStateChanged || evt.Session != "test" || evt.ID == "" {
		t.Fatalf("event = %+v", evt)
	}
	var change roster.Change
	if err := json.Unmarshal(evt.Payload, &change); err != nil {
		t.Fatal(err)
	}
	if change.Op != "select_chat" || change.Version == 0 {
		t.Errorf("change = %+v", change)
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{roster.ErrChatNotFound, codes.NotFound},
		{fmt.Errorf("%w: story x", roster.ErrMessageNotFound), codes.NotFound},
		{calls.ErrCallNotFound, codes.NotFound},
		{outbox.ErrBlocked, codes.FailedPrecondition},
		{calls.ErrCallInProgress, codes.FailedPrecondition},
		{roster.ErrConfirmationRequired, codes.FailedPrecondition},
		{roster.ErrPINMismatch, codes.PermissionDenied},
		{interact.ErrNotOwner, codes.PermissionDenied},
		{roster.ErrInvalidFolder, codes.InvalidArgument},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("disk on fire"), codes.Internal},
		{grpcstatus.Error(codes.Unavailable, "x"), codes.Unavailable},
	}
	for _, tt := range tests {
		if got := grpcstatus.Code(toStatus(tt.err)); got != tt.want {
			t.Errorf("toStatus(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
	if toStatus(nil) != nil {
		t.Error("toStatus(nil) != nil")
	}
}
