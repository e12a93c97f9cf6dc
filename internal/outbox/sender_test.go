package outbox

import (
	"errors"
	"testing"
	"time"

	"github.com/matheus3301/wppsim/internal/bus"
	"github.com/matheus3301/wppsim/internal/clock"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
)

var epoch = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store  *roster.Store
	clock  *clock.FakeClock
	bus    *bus.Bus
	sender *Sender
}

func newFixture(t *testing.T, readReceipts bool) *fixture {
	t.Helper()
	old := model.Message{ID: "m0", SenderID: "u1", Content: "earlier", Type: model.Text,
		Timestamp: epoch.Add(-time.Hour), Status: model.Read, Reactions: []model.Reaction{}}
	c1 := model.Chat{ID: "c1", Type: model.Individual, Participants: []string{"me", "u1"},
		Messages: []model.Message{old}, Unread: 2}
	c1.SyncLast()
	recent := old
	recent.ID, recent.Timestamp = "m9", epoch.Add(-time.Minute)
	c2 := model.Chat{ID: "c2", Type: model.Individual, Participants: []string{"me", "u2"},
		Messages: []model.Message{recent}}
	c2.SyncLast()
	pinned := model.Chat{ID: "c3", Type: model.Individual, Participants: []string{"me", "u3"},
		Messages: []model.Message{}, Pinned: true}

	st := &roster.State{
		Me:       model.User{ID: "me", Name: "Me", Settings: &model.Settings{ReadReceipts: readReceipts}},
		Contacts: []model.User{{ID: "u1", Name: "Alice"}, {ID: "u2", Name: "Bob"}, {ID: "u3", Name: "Carol"}},
		Chats:    []model.Chat{c1, c2, pinned},
		Stories: []model.Story{{ID: "s1", AuthorID: "u2", Type: model.StoryText, Content: "Beach day",
			Timestamp: epoch.Add(-time.Hour), ExpiresAt: epoch.Add(23 * time.Hour), Viewers: []string{}}},
	}
	clk := clock.Fake(epoch)
	b := bus.New()
	store := roster.NewStore(st, b, clk, nil)
	return &fixture{
		store:  store,
		clock:  clk,
		bus:    b,
		sender: NewSender(store, b, Options{AutoReplies: []string{"pong"}}, nil),
	}
}

func (f *fixture) message(t *testing.T, chatID, id string) model.Message {
	t.Helper()
	_, m, ok := f.store.Snapshot().Message(chatID, id)
	if !ok {
		t.Fatalf("message %s/%s missing", chatID, id)
	}
	return *m
}

func (f *fixture) chat(t *testing.T, id string) model.Chat {
	t.Helper()
	c, ok := f.store.Snapshot().Chat(id)
	if !ok {
		t.Fatalf("chat %s missing", id)
	}
	return *c
}

// TestHiScenario walks the whole lifecycle of a text sent to the open chat.
func TestHiScenario(t *testing.T) {
	f := newFixture(t, true)
	if err := f.store.SelectChat("c1"); err != nil {
		t.Fatal(err)
	}

	msg, err := f.sender.Send(SendRequest{ChatID: "c1", Content: "Hi"})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Status != model.Sent || msg.SenderID != "me" || !msg.Timestamp.Equal(epoch) {
		t.Fatalf("sent message = %+v", msg)
	}
	c := f.chat(t, "c1")
	if c.LastMessage == nil || c.LastMessage.ID != msg.ID || c.Unread != 0 {
		t.Fatalf("chat after send = %+v", c)
	}

	f.clock.Advance(999 * time.Millisecond)
	if got := f.message(t, "c1", msg.ID).Status; got != model.Sent {
		t.Errorf("at 999ms status = %s, want sent", got)
	}
	f.clock.Advance(time.Millisecond)
	if got := f.message(t, "c1", msg.ID).Status; got != model.Delivered {
		t.Errorf("at 1000ms status = %s, want delivered", got)
	}
	if c := f.chat(t, "c1"); c.LastMessage.Status != model.Delivered {
		t.Errorf("cached last message status = %s", c.LastMessage.Status)
	}

	f.clock.Advance(time.Second)
	if !f.store.Snapshot().Typing["c1"] {
		t.Error("at 2000ms counterpart should be typing")
	}
	f.clock.Advance(500 * time.Millisecond)
	if got := f.message(t, "c1", msg.ID).Status; got != model.Read {
		t.Errorf("at 2500ms status = %s, want read", got)
	}

	f.clock.Advance(2 * time.Second)
	st := f.store.Snapshot()
	if st.Typing["c1"] {
		t.Error("typing should stop at 4500ms")
	}
	c = f.chat(t, "c1")
	last := c.Messages[len(c.Messages)-1]
	if last.SenderID != "u1" || last.Content != "pong" {
		t.Errorf("auto reply = %+v", last)
	}
	if c.Unread != 0 {
		t.Errorf("unread = %d, want 0 while chat is active", c.Unread)
	}
	if f.sender.Pending() != 0 {
		t.Errorf("pending = %d after lifecycle", f.sender.Pending())
	}
}

func TestReadReceiptsOff(t *testing.T) {
	f := newFixture(t, false)
	msg, err := f.sender.Send(SendRequest{ChatID: "c1", Content: "quiet"})
	if err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(10 * time.Second)
	if got := f.message(t, "c1", msg.ID).Status; got != model.Delivered {
		t.Errorf("status = %s, want delivered without read receipts", got)
	}
}

func TestBlockedSendScenario(t *testing.T) {
	f := newFixture(t, true)
	f.store.Update("block", func(st *roster.State) error {
		st.Me.BlockedIDs = []string{"u1"}
		return nil
	})
	notices, unsub := f.bus.Subscribe("notice.", 4)
	defer unsub()
	before := len(f.chat(t, "c1").Messages)

	_, err := f.sender.Send(SendRequest{ChatID: "c1", Content: "hello?"})
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("err = %v, want ErrBlocked", err)
	}
	if got := len(f.chat(t, "c1").Messages); got != before {
		t.Errorf("messages = %d, want %d", got, before)
	}
	if len(notices) != 1 {
		t.Error("expected a user notice")
	}
	if f.sender.Pending() != 0 {
		t.Error("blocked send scheduled timers")
	}
}

func TestSendToUnknownChat(t *testing.T) {
	f := newFixture(t, true)
	if _, err := f.sender.Send(SendRequest{ChatID: "nope", Content: "x"}); !errors.Is(err, roster.ErrChatNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestSendMovesChatToTopOfTier(t *testing.T) {
	f := newFixture(t, true)
	if _, err := f.sender.Send(SendRequest{ChatID: "c1", Content: "bump"}); err != nil {
		t.Fatal(err)
	}
	chats := f.store.Snapshot().Chats
	if chats[0].ID != "c3" || chats[1].ID != "c1" {
		t.Errorf("order = %s %s %s, want pinned c3 then c1", chats[0].ID, chats[1].ID, chats[2].ID)
	}
	if f.chat(t, "c1").Unread != 0 {
		t.Error("send should zero unread")
	}

	// Sends at the same instant: the latest one still leads its tier.
	for _, id := range []string{"c2", "c1"} {
		if _, err := f.sender.Send(SendRequest{ChatID: id, Content: "tie"}); err != nil {
			t.Fatal(err)
		}
	}
	chats = f.store.Snapshot().Chats
	if chats[0].ID != "c3" || chats[1].ID != "c1" || chats[2].ID != "c2" {
		t.Errorf("order after tie = %s %s %s, want c3 c1 c2", chats[0].ID, chats[1].ID, chats[2].ID)
	}
}

func TestAutoReplyMovesChatToTopOfTier(t *testing.T) {
	f := newFixture(t, true)
	f.store.SelectChat("c1")
	if _, err := f.sender.Send(SendRequest{ChatID: "c1", Content: "ping"}); err != nil {
		t.Fatal(err)
	}
	// c2 gets a message stamped with the instant the reply will land.
	replyAt := epoch.Add(DefaultTimings().TypingStopAfter)
	f.store.Update("incoming", func(st *roster.State) error {
		c, _ := st.Chat("c2")
		c.Messages = append(c.Messages, model.Message{ID: "m10", SenderID: "u2", Content: "hey",
			Type: model.Text, Timestamp: replyAt, Status: model.Read, Reactions: []model.Reaction{}})
		c.SyncLast()
		return nil
	})
	if got := f.store.Snapshot().Chats[1].ID; got != "c2" {
		t.Fatalf("setup order: %s leads the unpinned tier", got)
	}

	f.clock.Advance(DefaultTimings().TypingStopAfter)
	chats := f.store.Snapshot().Chats
	if chats[1].ID != "c1" || chats[2].ID != "c2" {
		t.Errorf("order = %s %s %s, want c3 c1 c2", chats[0].ID, chats[1].ID, chats[2].ID)
	}
}

func TestMessagesStayChronological(t *testing.T) {
	f := newFixture(t, true)
	f.store.SelectChat("c1")
	for i := 0; i < 3; i++ {
		if _, err := f.sender.Send(SendRequest{ChatID: "c1", Content: "n"}); err != nil {
			t.Fatal(err)
		}
		f.clock.Advance(3 * time.Second)
	}
	f.clock.Advance(10 * time.Second)
	msgs := f.chat(t, "c1").Messages
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Before(msgs[i-1].Timestamp) {
			t.Fatalf("message %d (%v) before message %d (%v)", i, msgs[i].Timestamp, i-1, msgs[i-1].Timestamp)
		}
	}
}

func TestInactiveChatGetsNoTyping(t *testing.T) {
	f := newFixture(t, true)
	if _, err := f.sender.Send(SendRequest{ChatID: "c2", Content: "hi"}); err != nil {
		t.Fatal(err)
	}
	if f.sender.Pending() != 2 {
		t.Errorf("pending = %d, want deliver and read only", f.sender.Pending())
	}
}

func TestReplyWhileAwayCountsUnread(t *testing.T) {
	f := newFixture(t, true)
	f.store.SelectChat("c1")
	if _, err := f.sender.Send(SendRequest{ChatID: "c1", Content: "brb"}); err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(3 * time.Second)
	f.store.SelectChat("c2")
	f.clock.Advance(2 * time.Second)

	if got := f.chat(t, "c1").Unread; got != 1 {
		t.Errorf("unread = %d, want 1", got)
	}
}

func TestDeletedMessageKeepsStatus(t *testing.T) {
	f := newFixture(t, true)
	msg, _ := f.sender.Send(SendRequest{ChatID: "c2", Content: "oops"})
	f.store.Update("delete", func(st *roster.State) error {
		_, m, _ := st.Message("c2", msg.ID)
		m.Deleted = true
		m.Content = model.DeletedPlaceholder
		return nil
	})
	f.clock.Advance(5 * time.Second)
	if got := f.message(t, "c2", msg.ID).Status; got != model.Sent {
		t.Errorf("status = %s, want sent", got)
	}
}

// TestClearedChatCallbacksAreNoops: once history is cleared the pending
// callbacks must neither resurrect the message nor append a reply.
func TestClearedChatCallbacksAreNoops(t *testing.T) {
	f := newFixture(t, true)
	f.store.SelectChat("c1")
	if _, err := f.sender.Send(SendRequest{ChatID: "c1", Content: "gone soon"}); err != nil {
		t.Fatal(err)
	}
	if err := f.store.ClearHistory("c1", true); err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(10 * time.Second)
	if c := f.chat(t, "c1"); len(c.Messages) != 1 || c.Messages[0].SenderID != "u1" {
		t.Errorf("messages after clear = %+v, want only the reply", c.Messages)
	}

	if _, err := f.sender.Send(SendRequest{ChatID: "c1", Content: "again"}); err != nil {
		t.Fatal(err)
	}
	f.sender.CancelChat("c1")
	f.store.ClearHistory("c1", true)
	f.clock.Advance(10 * time.Second)
	if c := f.chat(t, "c1"); len(c.Messages) != 0 {
		t.Errorf("messages after cancel+clear = %+v", c.Messages)
	}
}

func TestStopCancelsEverything(t *testing.T) {
	f := newFixture(t, true)
	f.store.SelectChat("c1")
	msg, _ := f.sender.Send(SendRequest{ChatID: "c1", Content: "bye"})
	f.sender.Stop()
	f.clock.Advance(10 * time.Second)
	if got := f.message(t, "c1", msg.ID).Status; got != model.Sent {
		t.Errorf("status = %s after Stop", got)
	}
	if f.clock.PendingCount() != 0 {
		t.Errorf("clock still has %d timers", f.clock.PendingCount())
	}
}

func TestSendPoll(t *testing.T) {
	f := newFixture(t, true)
	msg, err := f.sender.Send(SendRequest{ChatID: "c2", Type: model.Poll, Content: "Lunch?",
		PollOptions: []string{"Pizza", "Sushi"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(msg.PollOptions) != 2 || msg.PollOptions[0].ID == "" || msg.PollOptions[0].Voters == nil {
		t.Errorf("poll options = %+v", msg.PollOptions)
	}
	if _, err := f.sender.Send(SendRequest{ChatID: "c2", Type: model.Poll, Content: "?",
		PollOptions: []string{"only"}}); !errors.Is(err, roster.ErrInvalidArgument) {
		t.Errorf("single option poll err = %v", err)
	}
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t, true)
	tests := []struct {
		name string
		req  SendRequest
	}{
		{"empty text", SendRequest{ChatID: "c1", Content: "  "}},
		{"image without media", SendRequest{ChatID: "c1", Type: model.Image}},
		{"system", SendRequest{ChatID: "c1", Type: model.System, Content: "x"}},
		{"unknown type", SendRequest{ChatID: "c1", Type: "hologram", Content: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.sender.Send(tt.req); !errors.Is(err, roster.ErrInvalidArgument) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestReplyToMissingMessageIsDropped(t *testing.T) {
	f := newFixture(t, true)
	msg, _ := f.sender.Send(SendRequest{ChatID: "c1", Content: "re", ReplyToID: "ghost"})
	if msg.ReplyToID != "" {
		t.Errorf("reply target = %q, want dropped", msg.ReplyToID)
	}
	msg, _ = f.sender.Send(SendRequest{ChatID: "c1", Content: "re", ReplyToID: "m0"})
	if msg.ReplyToID != "m0" {
		t.Errorf("reply target = %q, want m0", msg.ReplyToID)
	}
}

func TestForwardScenario(t *testing.T) {
	f := newFixture(t, true)
	f.store.SelectChat("c1")
	f.clock.Advance(time.Minute)

	fwd, err := f.sender.Forward("c1", "m0", "c2")
	if err != nil {
		t.Fatal(err)
	}
	st := f.store.Snapshot()
	if st.ActiveChatID != "c2" {
		t.Errorf("active = %q, want c2", st.ActiveChatID)
	}
	if !fwd.Forwarded || fwd.ID == "m0" || !fwd.Timestamp.Equal(epoch.Add(time.Minute)) || fwd.Content != "earlier" {
		t.Errorf("forwarded message = %+v", fwd)
	}
	if orig := f.message(t, "c1", "m0"); orig.Forwarded || orig.Content != "earlier" {
		t.Errorf("original changed: %+v", orig)
	}
	if f.sender.Pending() != 2 {
		t.Errorf("pending = %d, forward must not simulate typing", f.sender.Pending())
	}
	if _, err := f.sender.Forward("c1", "nope", "c2"); !errors.Is(err, roster.ErrMessageNotFound) {
		t.Errorf("missing source err = %v", err)
	}
}

func TestForwardToBlockedChat(t *testing.T) {
	f := newFixture(t, true)
	f.store.SelectChat("c1")
	f.store.Update("block", func(st *roster.State) error {
		st.Me.BlockedIDs = []string{"u2"}
		return nil
	})
	notices, unsub := f.bus.Subscribe("notice.", 4)
	defer unsub()
	before := len(f.chat(t, "c2").Messages)

	if _, err := f.sender.Forward("c1", "m0", "c2"); !errors.Is(err, ErrBlocked) {
		t.Fatalf("err = %v, want ErrBlocked", err)
	}
	if got := f.store.Snapshot().ActiveChatID; got != "c1" {
		t.Errorf("active = %q, want c1 unchanged", got)
	}
	if got := len(f.chat(t, "c2").Messages); got != before {
		t.Errorf("messages = %d, want %d", got, before)
	}
	if len(notices) != 1 {
		t.Error("expected a user notice")
	}
	if _, err := f.sender.Forward("c1", "m0", "nope"); !errors.Is(err, roster.ErrChatNotFound) {
		t.Errorf("unknown target err = %v", err)
	}
}

func TestReplyToStory(t *testing.T) {
	f := newFixture(t, true)
	chatID, msg, err := f.sender.ReplyToStory("s1", "looks fun")
	if err != nil {
		t.Fatal(err)
	}
	if chatID != "c2" || f.store.Snapshot().ActiveChatID != "c2" {
		t.Errorf("chat = %q", chatID)
	}
	if msg.Content != `Replying to your status "Beach day": looks fun` {
		t.Errorf("content = %q", msg.Content)
	}
	if _, _, err := f.sender.ReplyToStory("s1", " "); !errors.Is(err, roster.ErrInvalidArgument) {
		t.Errorf("empty reply err = %v", err)
	}
}

func TestReplyToBlockedAuthorsStory(t *testing.T) {
	f := newFixture(t, true)
	f.store.Update("setup", func(st *roster.State) error {
		st.Contacts = append(st.Contacts, model.User{ID: "u4", Name: "Dan"})
		st.Stories = append(st.Stories, model.Story{ID: "s2", AuthorID: "u4", Type: model.StoryText,
			Content: "Hi", Timestamp: epoch, ExpiresAt: epoch.Add(24 * time.Hour), Viewers: []string{}})
		st.Me.BlockedIDs = []string{"u4"}
		return nil
	})
	notices, unsub := f.bus.Subscribe("notice.", 4)
	defer unsub()

	if _, _, err := f.sender.ReplyToStory("s2", "hey"); !errors.Is(err, ErrBlocked) {
		t.Fatalf("err = %v, want ErrBlocked", err)
	}
	st := f.store.Snapshot()
	if len(st.Chats) != 3 || st.ActiveChatID != "" {
		t.Errorf("chats = %d active = %q, want no new chat opened", len(st.Chats), st.ActiveChatID)
	}
	if len(notices) != 1 {
		t.Error("expected a user notice")
	}
}
