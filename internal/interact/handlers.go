package interact

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/matheus3301/wppsim/internal/bus"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
)

// Handlers applies interactions to the roster store.
type Handlers struct {
	store  *roster.Store
	bus    *bus.Bus
	logger *zap.Logger

	mu      sync.Mutex
	onBlock []func(userID string)
}

// New creates Handlers over store.
func New(store *roster.Store, b *bus.Bus, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{store: store, bus: b, logger: logger}
}

// React toggles the current user's emoji reaction on a message.
func (h *Handlers) React(chatID, messageID, emoji string) error {
	if strings.TrimSpace(emoji) == "" {
		return fmt.Errorf("%w: emoji is required", roster.ErrInvalidArgument)
	}
	return h.onMessage("react", chatID, messageID, func(_ *roster.State, m *model.Message) error {
		if m.Deleted {
			return ErrMessageDeleted
		}
		ToggleReaction(m, emoji)
		return nil
	})
}

// Edit replaces the content of one of the current user's messages.
func (h *Handlers) Edit(chatID, messageID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}
	return h.onMessage("edit", chatID, messageID, func(st *roster.State, m *model.Message) error {
		if m.Deleted {
			return ErrMessageDeleted
		}
		if m.SenderID != st.Me.ID {
			return ErrNotOwner
		}
		m.Content = content
		m.Edited = true
		return nil
	})
}

// Delete replaces a message with the deleted placeholder. Deleting twice is a no-op.
func (h *Handlers) Delete(chatID, messageID string) error {
	return h.onMessage("delete", chatID, messageID, func(st *roster.State, m *model.Message) error {
		MarkDeleted(m)
		if c, ok := st.Chat(chatID); ok && c.PinnedMessageID == messageID {
			c.PinnedMessageID = ""
		}
		return nil
	})
}

// ToggleStar flips the starred flag of a message.
func (h *Handlers) ToggleStar(chatID, messageID string) (bool, error) {
	var starred bool
	err := h.onMessage("star", chatID, messageID, func(_ *roster.State, m *model.Message) error {
		if m.Deleted {
			return ErrMessageDeleted
		}
		m.Starred = !m.Starred
		starred = m.Starred
		return nil
	})
	return starred, err
}

// TogglePinMessage pins a message in its chat, replacing any previous pin.
// Pinning the pinned message unpins it.
func (h *Handlers) TogglePinMessage(chatID, messageID string) (bool, error) {
	var pinned bool
	err := h.onMessage("pin_message", chatID, messageID, func(st *roster.State, m *model.Message) error {
		if m.Deleted {
			return ErrMessageDeleted
		}
		c, _ := st.Chat(chatID)
		if c.PinnedMessageID == messageID {
			c.PinnedMessageID = ""
		} else {
			c.PinnedMessageID = messageID
			pinned = true
		}
		return nil
	})
	return pinned, err
}

// VotePoll toggles the current user's vote on one poll option.
func (h *Handlers) VotePoll(chatID, messageID, optionID string) error {
	return h.onMessage("vote_poll", chatID, messageID, func(st *roster.State, m *model.Message) error {
		if m.Deleted {
			return ErrMessageDeleted
		}
		return TogglePollVote(m, optionID, st.Me.ID)
	})
}

// onMessage runs fn against a message and keeps the chat's cached last
// message in step with the edit.
func (h *Handlers) onMessage(op, chatID, messageID string, fn func(*roster.State, *model.Message) error) error {
	_, err := h.store.Update(op, func(st *roster.State) error {
		c, m, ok := st.Message(chatID, messageID)
		if c == nil {
			return roster.ErrChatNotFound
		}
		if !ok {
			return roster.ErrMessageNotFound
		}
		if err := fn(st, m); err != nil {
			return err
		}
		c.SyncLast()
		return nil
	})
	if err != nil && !roster.IsNotFound(err) {
		h.logger.Debug("interaction rejected", zap.String("op", op), zap.String("chat", chatID),
			zap.String("message", messageID), zap.Error(err))
	}
	return err
}
