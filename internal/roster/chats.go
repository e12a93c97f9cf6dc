package roster

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matheus3301/wppsim/internal/model"
)

// SelectChat makes chatID the active chat and clears its unread counter.
func (s *Store) SelectChat(chatID string) error {
	_, err := s.Update("select_chat", func(st *State) error {
		c, ok := st.Chat(chatID)
		if !ok {
			return ErrChatNotFound
		}
		c.Unread = 0
		st.ActiveChatID = chatID
		return nil
	})
	return err
}

// DeselectChat clears the active chat.
func (s *Store) DeselectChat() error {
	_, err := s.Update("deselect_chat", func(st *State) error {
		st.ActiveChatID = ""
		return nil
	})
	return err
}

// CreateOrOpenChat selects the one-to-one chat with userID, creating it if needed.
func (s *Store) CreateOrOpenChat(userID string) (string, error) {
	var chatID string
	_, err := s.Update("open_chat", func(st *State) error {
		if c, ok := st.IndividualChatWith(userID); ok {
			c.Unread = 0
			chatID = c.ID
			st.ActiveChatID = chatID
			return nil
		}
		if userID == st.Me.ID {
			return fmt.Errorf("%w: cannot open a chat with yourself", ErrInvalidArgument)
		}
		if _, ok := st.User(userID); !ok {
			return ErrUserNotFound
		}
		chatID = uuid.NewString()
		st.Chats = append(st.Chats, model.Chat{
			ID:           chatID,
			Type:         model.Individual,
			Participants: []string{st.Me.ID, userID},
			Messages:     []model.Message{},
			Folder:       model.FolderDefault,
		})
		st.ActiveChatID = chatID
		return nil
	})
	return chatID, err
}

// CreateGroup creates and selects a group chat with the given members.
func (s *Store) CreateGroup(name string, memberIDs []string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: group name is required", ErrInvalidArgument)
	}
	if len(memberIDs) == 0 {
		return "", fmt.Errorf("%w: a group needs at least one member", ErrInvalidArgument)
	}
	now := s.Now()
	var chatID string
	_, err := s.Update("create_group", func(st *State) error {
		participants := []string{st.Me.ID}
		for _, id := range memberIDs {
			if _, ok := st.User(id); !ok || id == st.Me.ID {
				return fmt.Errorf("%w: %s", ErrUserNotFound, id)
			}
			participants = append(participants, id)
		}
		chatID = uuid.NewString()
		c := model.Chat{
			ID:           chatID,
			Type:         model.Group,
			Name:         name,
			Participants: participants,
			Messages: []model.Message{{
				ID:        uuid.NewString(),
				SenderID:  st.Me.ID,
				Content:   fmt.Sprintf("You created group %q", name),
				Type:      model.System,
				Timestamp: now,
				Status:    model.Read,
				Reactions: []model.Reaction{},
			}},
			Folder: model.FolderDefault,
		}
		c.SyncLast()
		st.Chats = append(st.Chats, c)
		st.ActiveChatID = chatID
		return nil
	})
	return chatID, err
}

// TogglePin flips the pinned flag.
func (s *Store) TogglePin(chatID string) (bool, error) {
	return s.toggle("toggle_pin", chatID, func(c *model.Chat) *bool { return &c.Pinned })
}

// ToggleMute flips the mute state as it stands now, so an expired timed mute
// counts as unmuted. Any mute deadline is dropped.
func (s *Store) ToggleMute(chatID string) (bool, error) {
	now := s.Now()
	return s.toggle("toggle_mute", chatID, func(c *model.Chat) *bool {
		c.Muted = c.IsMuted(now)
		c.MutedUntil = nil
		return &c.Muted
	})
}

// ToggleArchive flips the archived flag. Archiving the active chat deselects it.
func (s *Store) ToggleArchive(chatID string) (bool, error) {
	var archived bool
	_, err := s.Update("toggle_archive", func(st *State) error {
		c, ok := st.Chat(chatID)
		if !ok {
			return ErrChatNotFound
		}
		c.Archived = !c.Archived
		archived = c.Archived
		if archived && st.ActiveChatID == chatID {
			st.ActiveChatID = ""
		}
		return nil
	})
	return archived, err
}

func (s *Store) toggle(op, chatID string, field func(*model.Chat) *bool) (bool, error) {
	var v bool
	_, err := s.Update(op, func(st *State) error {
		c, ok := st.Chat(chatID)
		if !ok {
			return ErrChatNotFound
		}
		f := field(c)
		*f = !*f
		v = *f
		return nil
	})
	return v, err
}

// MuteFor mutes the chat until now+d. A zero or negative d unmutes.
func (s *Store) MuteFor(chatID string, d time.Duration) error {
	until := s.Now().Add(d)
	return s.mutate("mute_for", chatID, func(c *model.Chat) {
		if d <= 0 {
			c.Muted = false
			c.MutedUntil = nil
			return
		}
		c.Muted = true
		c.MutedUntil = &until
	})
}

// MarkUnread flags the chat as having unread messages and deselects it if active.
func (s *Store) MarkUnread(chatID string) error {
	_, err := s.Update("mark_unread", func(st *State) error {
		c, ok := st.Chat(chatID)
		if !ok {
			return ErrChatNotFound
		}
		if c.Unread == 0 {
			c.Unread = 1
		}
		if st.ActiveChatID == chatID {
			st.ActiveChatID = ""
		}
		return nil
	})
	return err
}

// ClearHistory removes every message of the chat. It requires confirm.
func (s *Store) ClearHistory(chatID string, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	return s.mutate("clear_history", chatID, func(c *model.Chat) {
		c.Messages = []model.Message{}
		c.LastMessage = nil
		c.Unread = 0
		c.PinnedMessageID = ""
	})
}

// SetWallpaper stores a per-chat wallpaper override. Empty resets it.
func (s *Store) SetWallpaper(chatID, wallpaper string) error {
	return s.mutate("set_wallpaper", chatID, func(c *model.Chat) { c.Wallpaper = wallpaper })
}

// SetEphemeral toggles disappearing messages for the chat.
func (s *Store) SetEphemeral(chatID string, on bool) error {
	return s.mutate("set_ephemeral", chatID, func(c *model.Chat) { c.Ephemeral = on })
}

// SetNote stores a private note about the chat's contact.
func (s *Store) SetNote(chatID, note string) error {
	return s.mutate("set_note", chatID, func(c *model.Chat) { c.Note = strings.TrimSpace(note) })
}

func (s *Store) mutate(op, chatID string, fn func(*model.Chat)) error {
	_, err := s.Update(op, func(st *State) error {
		c, ok := st.Chat(chatID)
		if !ok {
			return ErrChatNotFound
		}
		fn(c)
		return nil
	})
	return err
}
