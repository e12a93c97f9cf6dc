package views

import (
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/stories"
	"github.com/matheus3301/wppsim/internal/tui/ui"
)

func fixNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestSanitizeForTerminal(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"👍\U0001F3FB", "👍"},
		{"👨\u200d👩\u200d👧", "👨👩👧"},
		{"❤\uFE0F", "❤"},
		{"evil\u202Etxt.exe", "eviltxt.exe"},
		{"a\x1b[31mb\nc", "a[31mb\nc"},
	}
	for _, tt := range tests {
		if got := sanitizeForTerminal(tt.in); got != tt.want {
			t.Errorf("sanitizeForTerminal(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeliveryTick(t *testing.T) {
	theme := ui.DefaultTheme()
	if got := deliveryTick(theme, model.Sent); !strings.Contains(got, "✓") || strings.Contains(got, "✓✓") {
		t.Errorf("sent tick = %q", got)
	}
	delivered := deliveryTick(theme, model.Delivered)
	read := deliveryTick(theme, model.Read)
	if !strings.Contains(read, "✓✓") || read == delivered {
		t.Errorf("read tick %q should differ in color from delivered %q", read, delivered)
	}
	if got := deliveryTick(theme, model.Failed); !strings.Contains(got, "!") {
		t.Errorf("failed tick = %q", got)
	}
	if got := deliveryTick(theme, ""); got != "" {
		t.Errorf("unknown status tick = %q", got)
	}
}

func TestReactionsLine(t *testing.T) {
	got := reactionsLine([]model.Reaction{
		{Emoji: "👍", Count: 2, Mine: true},
		{Emoji: "😂", Count: 1},
	})
	if got != "(👍2) 😂" {
		t.Errorf("reactionsLine = %q", got)
	}
	if reactionsLine(nil) != "" {
		t.Error("no reactions should render empty")
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		msg  *model.Message
		want string
	}{
		{nil, ""},
		{&model.Message{Type: model.Text, Content: "hi\nthere"}, "hi …"},
		{&model.Message{Type: model.Image, Content: "beach"}, "[image] beach"},
		{&model.Message{Type: model.Audio}, "[audio]"},
		{&model.Message{Type: model.Poll, Content: "Lunch?"}, "📊 Lunch?"},
		{&model.Message{Type: model.Text, Content: "secret", Deleted: true}, model.DeletedPlaceholder},
	}
	for _, tt := range tests {
		if got := preview(tt.msg); got != tt.want {
			t.Errorf("preview(%+v) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestLastSeen(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fixNow(t, at)

	if got := lastSeen(model.User{Presence: model.Online}); got != "online" {
		t.Errorf("online = %q", got)
	}
	if got := lastSeen(model.User{Presence: model.Offline}); got != "offline" {
		t.Errorf("offline without timestamp = %q", got)
	}
	got := lastSeen(model.User{Presence: model.Offline, LastSeen: at.Add(-3 * time.Hour)})
	if got != "last seen 3 hours ago" {
		t.Errorf("lastSeen = %q", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	fixNow(t, at)

	if got := formatTimestamp(time.Time{}); got != "" {
		t.Errorf("zero = %q", got)
	}
	if got := formatTimestamp(at.Add(-2 * time.Hour)); got != "10:00" {
		t.Errorf("same day = %q", got)
	}
	if got := formatTimestamp(at.AddDate(0, 0, -3)); got != "04/28" {
		t.Errorf("older = %q", got)
	}
}

func TestFolderTitle(t *testing.T) {
	title := folderTitle(ui.DefaultTheme(), roster.ViewWork, 3, "ann")
	if !strings.Contains(title, "work(3)") {
		t.Errorf("current tab not counted: %q", title)
	}
	for _, v := range roster.Views {
		if !strings.Contains(title, string(v)) {
			t.Errorf("title missing tab %s", v)
		}
	}
	if !strings.HasSuffix(title, "/ann ") {
		t.Errorf("filter not shown: %q", title)
	}
}

func TestConversationListIndex(t *testing.T) {
	cl := NewConversationList(ui.DefaultTheme())
	cl.Update([]api.ChatSummary{
		{ID: "a", Title: "Ann", Unread: 2, Pinned: true},
		{ID: "b", Title: "Bob", Typing: true},
	}, roster.ViewAll, "")

	if got := cl.ChatByIndex(2); got != "b" {
		t.Errorf("ChatByIndex(2) = %q", got)
	}
	if got := cl.ChatByIndex(3); got != "" {
		t.Errorf("ChatByIndex out of range = %q", got)
	}
	cl.SelectChat("b")
	if got := cl.SelectedChat(); got != "b" {
		t.Errorf("SelectedChat = %q", got)
	}
	if name := cl.GetCell(1, 0).Text; !strings.Contains(name, "(2) Ann") || !strings.Contains(name, "📌") {
		t.Errorf("name cell = %q", name)
	}
	if last := cl.GetCell(2, 1).Text; !strings.Contains(last, "typing") {
		t.Errorf("typing chat preview = %q", last)
	}
}

func threadFixture() (*api.ChatDetail, []model.Message) {
	ts := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	detail := &api.ChatDetail{
		Chat:        model.Chat{ID: "chat-1", PinnedMessageID: "m1"},
		Title:       "Emma",
		Counterpart: &model.User{ID: "emma", Name: "Emma", Presence: model.Online},
	}
	msgs := []model.Message{
		{ID: "m1", SenderID: "emma", Content: "Lunch?", Type: model.Text, Timestamp: ts},
		{ID: "m2", SenderID: "me", Content: "Sure", Type: model.Text, Timestamp: ts.Add(time.Minute), Status: model.Read, ReplyToID: "m1", Starred: true},
		{ID: "m3", SenderID: "me", Content: "Where?", Type: model.Poll, Timestamp: ts.Add(2 * time.Minute),
			PollOptions: []model.PollOption{{ID: "o1", Text: "Tacos", Voters: []string{"me"}}, {ID: "o2", Text: "Sushi"}}},
	}
	return detail, msgs
}

func TestMessageThreadCursor(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme())
	mt.SetSelf("me")
	detail, msgs := threadFixture()
	mt.Update(detail, msgs)

	if mt.Selected() != nil {
		t.Fatal("fresh thread should have no selection")
	}
	mt.MoveCursor(-1)
	if sel := mt.Selected(); sel == nil || sel.ID != "m3" {
		t.Fatalf("first move should select newest, got %+v", sel)
	}
	mt.MoveCursor(-5)
	if sel := mt.Selected(); sel.ID != "m1" {
		t.Errorf("cursor not clamped: %s", sel.ID)
	}

	// A refresh of the same chat keeps the selection.
	mt.Update(detail, msgs)
	if sel := mt.Selected(); sel == nil || sel.ID != "m1" {
		t.Errorf("selection lost on refresh: %+v", sel)
	}

	other := *detail
	other.Chat.ID = "chat-2"
	mt.Update(&other, msgs)
	if mt.Selected() != nil {
		t.Error("switching chats should drop the selection")
	}
	if mt.ClearSelection() {
		t.Error("ClearSelection with nothing selected returned true")
	}
}

func TestMessageThreadRender(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme())
	mt.SetSelf("me")
	detail, msgs := threadFixture()
	mt.Update(detail, msgs)

	byID := map[string]int{"m1": 0, "m2": 1, "m3": 2}
	reply := mt.renderMessage(1, byID)
	for _, want := range []string{"You", "✓✓", "★", "┃ Emma: Lunch?", "Sure"} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply render missing %q:\n%s", want, reply)
		}
	}
	if pinned := mt.renderMessage(0, byID); !strings.Contains(pinned, "📌") {
		t.Errorf("pinned message not marked:\n%s", pinned)
	}
	poll := mt.renderMessage(2, byID)
	for _, want := range []string{"Where?", "1. ● Tacos  1 (100%)", "2. ○ Sushi  0 (0%)"} {
		if !strings.Contains(poll, want) {
			t.Errorf("poll render missing %q:\n%s", want, poll)
		}
	}
	if got := mt.messages.GetTitle(); !strings.Contains(got, "Emma · online") {
		t.Errorf("title = %q", got)
	}
}

func TestReplyToAndSend(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme())
	detail, msgs := threadFixture()
	mt.Update(detail, msgs)

	mt.SetReplyTo(&msgs[0])
	if !strings.Contains(mt.composer.GetLabel(), "Lunch?") {
		t.Errorf("composer label = %q", mt.composer.GetLabel())
	}
	mt.SetReplyTo(nil)
	if mt.composer.GetLabel() != " > " {
		t.Errorf("label not reset: %q", mt.composer.GetLabel())
	}
}

func TestContactCardQR(t *testing.T) {
	pv := NewProfileView(ui.DefaultTheme())
	pv.Update(&api.ProfileResponse{Me: model.User{ID: "me", Name: "Me", Phone: "+1 555 0100"}}, nil)
	qr := pv.GetText(false)
	if !strings.ContainsAny(qr, "█▀▄") {
		t.Errorf("QR render has no blocks:\n%s", qr)
	}
}

func TestUpdatesStoryIndex(t *testing.T) {
	uv := NewUpdatesView(ui.DefaultTheme())
	fixNow(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	ts := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)
	uv.Update([]stories.Group{
		{Author: model.User{Name: "Ann"}, Stories: []model.Story{{ID: "s1", Type: model.StoryText, Content: "hi", Timestamp: ts}}},
		{Author: model.User{Name: "Bob"}, Stories: []model.Story{{ID: "s2", Timestamp: ts}, {ID: "s3", Timestamp: ts}}},
	}, &api.CallsResponse{})

	if s, ok := uv.StoryByIndex(3); !ok || s.ID != "s3" {
		t.Errorf("StoryByIndex(3) = %+v %v", s, ok)
	}
	if _, ok := uv.StoryByIndex(4); ok {
		t.Error("StoryByIndex past end should fail")
	}
	if !strings.Contains(uv.GetText(true), "1 hour ago") {
		t.Errorf("story age missing:\n%s", uv.GetText(true))
	}
}

func TestConversationInfoRender(t *testing.T) {
	ci := NewConversationInfo(ui.DefaultTheme())
	detail, _ := threadFixture()
	detail.Chat.Note = "met at conf"
	out := ci.render(detail)
	for _, want := range []string{"Emma", "Direct Message", "online", "met at conf"} {
		if !strings.Contains(out, want) {
			t.Errorf("details missing %q:\n%s", want, out)
		}
	}
}

func TestCallDuration(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(95 * time.Second)
	if got := callDuration(model.CallRecord{ConnectedAt: &start, EndedAt: &end}); got != "1m35s" {
		t.Errorf("callDuration = %q", got)
	}
	if got := callDuration(model.CallRecord{}); got != "-" {
		t.Errorf("unconnected = %q", got)
	}
}

func TestHighlight(t *testing.T) {
	tests := []struct{ s, q, want string }{
		{"Lunch at noon", "", "Lunch at noon"},
		{"Lunch at noon", "NOON", "Lunch at [::u]noon[::-]"},
		{"no no", "no", "[::u]no[::-] [::u]no[::-]"},
		{"see [red]", "see", "[::u]see[::-] [red[]"},
	}
	for _, tt := range tests {
		if got := highlight(tt.s, tt.q); got != tt.want {
			t.Errorf("highlight(%q, %q) = %q, want %q", tt.s, tt.q, got, tt.want)
		}
	}
}

func TestSearchViewSelection(t *testing.T) {
	sv := NewSearchView(ui.DefaultTheme())
	hits := []roster.Hit{
		{ChatID: "c1", ChatTitle: "Ana", Message: model.Message{ID: "m1", Content: "lunch?"}},
		{ChatID: "c2", ChatTitle: "Team", Message: model.Message{ID: "m2", Content: "Lunch at 1", Starred: true}},
	}
	sv.Update("lunch", false, hits)
	if got := sv.Results().GetRowCount(); got != 3 {
		t.Fatalf("rows = %d, want header plus 2", got)
	}
	if !strings.Contains(sv.Results().GetTitle(), "Results for lunch (2)") {
		t.Errorf("title = %q", sv.Results().GetTitle())
	}
	sv.Results().Select(2, 0)
	if chat, msg := sv.SelectedResult(); chat != "c2" || msg != "m2" {
		t.Errorf("selected = %s/%s", chat, msg)
	}
	sv.Reset()
	if chat, _ := sv.SelectedResult(); chat != "" {
		t.Errorf("after reset selected %q", chat)
	}
}
