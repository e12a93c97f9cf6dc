package interact

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
)

// Block adds userID to the current user's blocked list and clears any typing
// indicator from them. Hooks registered with OnBlock run after the change is
// committed; the daemon uses one to hang up calls with the user.
func (h *Handlers) Block(userID string, confirm bool) error {
	if !confirm {
		return roster.ErrConfirmationRequired
	}
	_, err := h.store.Update("block", func(st *roster.State) error {
		if userID == st.Me.ID {
			return fmt.Errorf("%w: cannot block yourself", roster.ErrInvalidArgument)
		}
		if _, ok := st.User(userID); !ok {
			return roster.ErrUserNotFound
		}
		if !st.Me.HasBlocked(userID) {
			st.Me.BlockedIDs = append(st.Me.BlockedIDs, userID)
		}
		if c, ok := st.IndividualChatWith(userID); ok {
			delete(st.Typing, c.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	h.logger.Info("contact blocked", zap.String("user", userID))
	h.mu.Lock()
	hooks := slices.Clone(h.onBlock)
	h.mu.Unlock()
	for _, fn := range hooks {
		fn(userID)
	}
	return nil
}

// OnBlock registers fn to run after a user is blocked.
func (h *Handlers) OnBlock(fn func(userID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onBlock = append(h.onBlock, fn)
}

// Unblock removes userID from the blocked list.
func (h *Handlers) Unblock(userID string) error {
	_, err := h.store.Update("unblock", func(st *roster.State) error {
		if _, ok := st.User(userID); !ok {
			return roster.ErrUserNotFound
		}
		st.Me.BlockedIDs = slices.DeleteFunc(st.Me.BlockedIDs, func(id string) bool { return id == userID })
		return nil
	})
	return err
}

// ProfileUpdate carries the profile fields to change. Nil fields are kept.
type ProfileUpdate struct {
	Name     *string
	Bio      *string
	Avatar   *string
	Presence *model.Presence
}

// UpdateProfile edits the current user's profile.
func (h *Handlers) UpdateProfile(u ProfileUpdate) error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", roster.ErrInvalidArgument)
	}
	if u.Presence != nil {
		switch *u.Presence {
		case model.Online, model.Offline, model.Busy:
		default:
			return fmt.Errorf("%w: unknown presence %q", roster.ErrInvalidArgument, *u.Presence)
		}
	}
	_, err := h.store.Update("update_profile", func(st *roster.State) error {
		if u.Name != nil {
			st.Me.Name = strings.TrimSpace(*u.Name)
		}
		if u.Bio != nil {
			st.Me.Bio = *u.Bio
		}
		if u.Avatar != nil {
			st.Me.Avatar = *u.Avatar
		}
		if u.Presence != nil {
			st.Me.Presence = *u.Presence
			if *u.Presence == model.Offline {
				st.Me.LastSeen = h.store.Now()
			}
		}
		return nil
	})
	return err
}

// SettingsUpdate carries the settings to change. Nil fields are kept.
type SettingsUpdate struct {
	ReadReceipts *bool
	EnterToSend  *bool
	Theme        *string
	Wallpaper    *string
}

// UpdateSettings edits the current user's preferences.
func (h *Handlers) UpdateSettings(u SettingsUpdate) error {
	_, err := h.store.Update("update_settings", func(st *roster.State) error {
		s := settingsOf(st)
		if u.ReadReceipts != nil {
			s.ReadReceipts = *u.ReadReceipts
		}
		if u.EnterToSend != nil {
			s.EnterToSend = *u.EnterToSend
		}
		if u.Theme != nil {
			s.Theme = *u.Theme
		}
		if u.Wallpaper != nil {
			s.Wallpaper = *u.Wallpaper
		}
		return nil
	})
	return err
}

// SetLockPIN configures the PIN guarding the locked folder. Changing an
// existing PIN requires the current one.
func (h *Handlers) SetLockPIN(current, next string) error {
	hash, err := roster.HashPIN(next)
	if err != nil {
		return err
	}
	_, err = h.store.Update("set_lock_pin", func(st *roster.State) error {
		s := settingsOf(st)
		if s.LockPINHash != "" {
			if err := roster.CheckPIN(st.Me, current); err != nil {
				return err
			}
		}
		s.LockPINHash = hash
		return nil
	})
	return err
}

func settingsOf(st *roster.State) *model.Settings {
	if st.Me.Settings == nil {
		st.Me.Settings = &model.Settings{ReadReceipts: true}
	}
	return st.Me.Settings
}
