package roster

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/matheus3301/wppsim/internal/model"
)

// View selects a subset of the chat list.
type View string

const (
	ViewAll      View = "all"
	ViewUnread   View = "unread"
	ViewGroups   View = "groups"
	ViewPersonal View = "personal"
	ViewWork     View = "work"
	ViewLocked   View = "locked"
	ViewArchived View = "archived"
)

// Views lists every view in display order.
var Views = []View{ViewAll, ViewUnread, ViewGroups, ViewPersonal, ViewWork, ViewArchived, ViewLocked}

// ParseView maps a name to a View. Empty means all.
func ParseView(name string) (View, error) {
	if name == "" {
		return ViewAll, nil
	}
	for _, v := range Views {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown view %q", ErrInvalidArgument, name)
}

// Filter returns the chats visible in view, keeping roster order.
// Locked chats only show in the locked view and archived chats only in the
// archived view.
func Filter(st *State, view View) []model.Chat {
	var out []model.Chat
	for _, c := range st.Chats {
		if visible(c, view) {
			out = append(out, c)
		}
	}
	return out
}

func visible(c model.Chat, view View) bool {
	if view == ViewLocked {
		return c.IsLocked()
	}
	if c.IsLocked() {
		return false
	}
	if view == ViewArchived {
		return c.Archived
	}
	if c.Archived {
		return false
	}
	switch view {
	case ViewUnread:
		return c.Unread > 0
	case ViewGroups:
		return c.Type == model.Group
	case ViewPersonal:
		return c.Folder == model.FolderPersonal
	case ViewWork:
		return c.Folder == model.FolderWork
	}
	return true
}

// SetFolder files the chat under personal, work or default. Locking goes
// through LockChat.
func (s *Store) SetFolder(chatID string, folder model.Folder) error {
	switch folder {
	case model.FolderDefault, model.FolderPersonal, model.FolderWork:
	case model.FolderLocked:
		return fmt.Errorf("%w: use lock to move a chat into the locked folder", ErrInvalidFolder)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFolder, folder)
	}
	return s.mutate("set_folder", chatID, func(c *model.Chat) { c.Folder = folder })
}

// LockChat moves the chat into the locked folder after checking pin against
// the configured lock PIN. Locking the active chat deselects it.
func (s *Store) LockChat(chatID, pin string) error {
	_, err := s.Update("lock_chat", func(st *State) error {
		c, ok := st.Chat(chatID)
		if !ok {
			return ErrChatNotFound
		}
		if err := CheckPIN(st.Me, pin); err != nil {
			return err
		}
		c.Folder = model.FolderLocked
		if st.ActiveChatID == chatID {
			st.ActiveChatID = ""
		}
		return nil
	})
	return err
}

// UnlockChat returns a locked chat to the default folder. No PIN is asked.
func (s *Store) UnlockChat(chatID string) error {
	return s.mutate("unlock_chat", chatID, func(c *model.Chat) {
		if c.IsLocked() {
			c.Folder = model.FolderDefault
		}
	})
}

// HashPIN returns the stored form of a lock PIN.
func HashPIN(pin string) (string, error) {
	if len(pin) < 4 {
		return "", fmt.Errorf("%w: PIN must have at least 4 characters", ErrInvalidArgument)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash PIN: %w", err)
	}
	return string(h), nil
}

// CheckPIN verifies pin against the user's configured lock PIN.
func CheckPIN(me model.User, pin string) error {
	if me.Settings == nil || me.Settings.LockPINHash == "" {
		return ErrPINRequired
	}
	if bcrypt.CompareHashAndPassword([]byte(me.Settings.LockPINHash), []byte(pin)) != nil {
		return ErrPINMismatch
	}
	return nil
}
