package roster

import (
	"slices"
	"time"

	"github.com/matheus3301/wppsim/internal/model"
)

// Compare orders chats for display: pinned before unpinned, then newest
// activity first, chats without messages last within their tier. Equal chats
// compare as 0 so a stable sort keeps their previous order.
func Compare(a, b model.Chat) int {
	if a.Pinned != b.Pinned {
		if a.Pinned {
			return -1
		}
		return 1
	}
	at, aok := lastActivity(a)
	bt, bok := lastActivity(b)
	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case !aok && !bok:
		return 0
	}
	return bt.Compare(at)
}

// Sort applies Compare in place.
func Sort(chats []model.Chat) {
	slices.SortStableFunc(chats, Compare)
}

func lastActivity(c model.Chat) (time.Time, bool) {
	if c.LastMessage != nil {
		return c.LastMessage.Timestamp, true
	}
	if n := len(c.Messages); n > 0 {
		return c.Messages[n-1].Timestamp, true
	}
	return time.Time{}, false
}
