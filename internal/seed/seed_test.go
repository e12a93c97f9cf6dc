package seed

import (
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func TestDefaultDatasetLoads(t *testing.T) {
	st := Default(now)
	if st.Me.ID != "me" || !st.Me.ReadReceipts() {
		t.Errorf("me = %+v", st.Me)
	}
	if len(st.Contacts) == 0 || len(st.Chats) == 0 || len(st.Stories) == 0 {
		t.Fatalf("dataset is empty: %d contacts %d chats %d stories", len(st.Contacts), len(st.Chats), len(st.Stories))
	}
	for _, c := range st.Chats {
		for i := 1; i < len(c.Messages); i++ {
			if c.Messages[i].Timestamp.Before(c.Messages[i-1].Timestamp) {
				t.Errorf("chat %s: messages out of order at %d", c.ID, i)
			}
		}
		if n := len(c.Messages); n > 0 && (c.LastMessage == nil || c.LastMessage.ID != c.Messages[n-1].ID) {
			t.Errorf("chat %s: last message not synced", c.ID)
		}
	}
}

func TestDefaultHasPollAndGroup(t *testing.T) {
	st := Default(now)
	c, ok := st.Chat("chat-team")
	if !ok || c.Type != model.Group || c.Name == "" {
		t.Fatalf("group chat = %+v", c)
	}
	_, m, ok := st.Message("chat-team", "team-3")
	if !ok || m.Type != model.Poll || len(m.PollOptions) != 2 {
		t.Errorf("poll = %+v", m)
	}
}

func TestRelativeTimes(t *testing.T) {
	st := Default(now)
	_, m, _ := st.Message("chat-ana", "ana-1")
	if want := now.Add(-3 * time.Hour); !m.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", m.Timestamp, want)
	}
	for _, c := range st.Calls {
		if c.ID == "call-1" && c.Duration() != 7*time.Minute+12*time.Second {
			t.Errorf("call duration = %v", c.Duration())
		}
	}
}

func TestDefaultOrdersInStore(t *testing.T) {
	store := roster.NewStore(Default(now), nil, nil, nil)
	if first := store.Snapshot().Chats[0]; !first.Pinned {
		t.Errorf("first chat %s is not pinned", first.ID)
	}
}

func TestParseRejectsBadReferences(t *testing.T) {
	tests := []struct {
		name, doc, want string
	}{
		{"unknown participant", "me: {id: me}\nchats:\n  - {id: c, participants: [me, ghost]}\n", "unknown participant"},
		{"bad duration", "me: {id: me}\ncontacts:\n  - {id: u, last_seen: soon}\n", "bad duration"},
		{"no me", "contacts: []\n", "no id"},
		{"not yaml", "me: [", "decode seed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), now)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
