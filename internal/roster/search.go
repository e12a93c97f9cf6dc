package roster

import (
	"slices"
	"strings"

	"github.com/matheus3301/wppsim/internal/model"
)

// Hit is a message matched by Search.
type Hit struct {
	ChatID    string
	ChatTitle string
	Message   model.Message
}

// Search finds messages whose content contains query, case-insensitively,
// newest first. Locked chats and deleted messages are skipped.
func Search(st *State, query string, limit int) []Hit {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var hits []Hit
	for _, c := range st.Chats {
		if c.IsLocked() {
			continue
		}
		title := st.ChatTitle(c)
		for _, m := range c.Messages {
			if m.Deleted || m.Type == model.System {
				continue
			}
			if strings.Contains(strings.ToLower(m.Content), q) {
				hits = append(hits, Hit{ChatID: c.ID, ChatTitle: title, Message: m})
			}
		}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return b.Message.Timestamp.Compare(a.Message.Timestamp)
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Starred returns every starred message, newest first.
func Starred(st *State) []Hit {
	var hits []Hit
	for _, c := range st.Chats {
		for _, m := range c.Messages {
			if m.Starred && !m.Deleted {
				hits = append(hits, Hit{ChatID: c.ID, ChatTitle: st.ChatTitle(c), Message: m})
			}
		}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		return b.Message.Timestamp.Compare(a.Message.Timestamp)
	})
	return hits
}
