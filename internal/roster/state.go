// Package roster owns the client state and the chat-list operations over it.
package roster

import (
	"maps"
	"slices"

	"github.com/matheus3301/wppsim/internal/model"
)

// State is one immutable snapshot of everything the client knows.
// Values returned by Store.Snapshot must not be modified.
type State struct {
	Me           model.User
	Contacts     []model.User
	Chats        []model.Chat
	Stories      []model.Story
	Calls        []model.CallRecord
	ActiveChatID string
	// Typing holds chat ids whose counterpart is currently typing. Not persisted.
	Typing  map[string]bool
	Version uint64
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	out := &State{
		Me:           s.Me.Clone(),
		ActiveChatID: s.ActiveChatID,
		Typing:       maps.Clone(s.Typing),
		Version:      s.Version,
		Calls:        slices.Clone(s.Calls),
	}
	if out.Typing == nil {
		out.Typing = make(map[string]bool)
	}
	out.Contacts = make([]model.User, len(s.Contacts))
	for i, u := range s.Contacts {
		out.Contacts[i] = u.Clone()
	}
	out.Chats = make([]model.Chat, len(s.Chats))
	for i, c := range s.Chats {
		out.Chats[i] = c.Clone()
	}
	out.Stories = make([]model.Story, len(s.Stories))
	for i, st := range s.Stories {
		out.Stories[i] = st.Clone()
	}
	return out
}

// ChatIndex returns the position of chatID in Chats or -1.
func (s *State) ChatIndex(chatID string) int {
	return slices.IndexFunc(s.Chats, func(c model.Chat) bool { return c.ID == chatID })
}

// Chat returns a pointer into Chats for chatID.
func (s *State) Chat(chatID string) (*model.Chat, bool) {
	i := s.ChatIndex(chatID)
	if i < 0 {
		return nil, false
	}
	return &s.Chats[i], true
}

// Bump moves chatID to the front of Chats so that it wins ties in the next
// stable sort. Pointers returned by Chat are invalid afterwards.
func (s *State) Bump(chatID string) {
	i := s.ChatIndex(chatID)
	if i <= 0 {
		return
	}
	c := s.Chats[i]
	copy(s.Chats[1:i+1], s.Chats[:i])
	s.Chats[0] = c
}

// Message finds a message by chat and message id.
func (s *State) Message(chatID, messageID string) (*model.Chat, *model.Message, bool) {
	c, ok := s.Chat(chatID)
	if !ok {
		return nil, nil, false
	}
	i := c.MessageIndex(messageID)
	if i < 0 {
		return c, nil, false
	}
	return c, &c.Messages[i], true
}

// User looks up a contact or the current user.
func (s *State) User(userID string) (model.User, bool) {
	if userID == s.Me.ID {
		return s.Me, true
	}
	i := slices.IndexFunc(s.Contacts, func(u model.User) bool { return u.ID == userID })
	if i < 0 {
		return model.User{}, false
	}
	return s.Contacts[i], true
}

// ActiveChat returns the selected chat, if any.
func (s *State) ActiveChat() (*model.Chat, bool) {
	if s.ActiveChatID == "" {
		return nil, false
	}
	return s.Chat(s.ActiveChatID)
}

// ChatTitle is the group name or the counterpart's display name.
func (s *State) ChatTitle(c model.Chat) string {
	if c.Type == model.Group && c.Name != "" {
		return c.Name
	}
	if u, ok := s.User(c.Counterpart(s.Me.ID)); ok {
		return u.Name
	}
	return c.ID
}

// IndividualChatWith returns the one-to-one chat whose only other participant is userID.
func (s *State) IndividualChatWith(userID string) (*model.Chat, bool) {
	for i := range s.Chats {
		c := &s.Chats[i]
		if c.Type != model.Individual {
			continue
		}
		others := 0
		match := false
		for _, p := range c.Participants {
			if p == s.Me.ID {
				continue
			}
			others++
			match = p == userID
		}
		if others == 1 && match {
			return c, true
		}
	}
	return nil, false
}

// BlocksCounterpart reports whether the current user has blocked the other
// participant of an individual chat.
func (s *State) BlocksCounterpart(c model.Chat) bool {
	if c.Type != model.Individual {
		return false
	}
	return s.Me.HasBlocked(c.Counterpart(s.Me.ID))
}
