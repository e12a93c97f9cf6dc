// Package interact implements the user actions on existing messages,
// contacts and the profile.
package interact

import (
	"errors"
	"slices"

	"github.com/matheus3301/wppsim/internal/model"
)

var (
	ErrEmptyContent   = errors.New("message content is empty")
	ErrMessageDeleted = errors.New("message was deleted")
	ErrNotOwner       = errors.New("only your own messages can be edited")
	ErrNotPoll        = errors.New("message is not a poll")
	ErrOptionNotFound = errors.New("poll option not found")
)

// ToggleReaction adds or removes the current user's reaction with emoji.
// A bucket whose last contributor leaves is removed.
func ToggleReaction(m *model.Message, emoji string) {
	i := slices.IndexFunc(m.Reactions, func(r model.Reaction) bool { return r.Emoji == emoji })
	if i < 0 {
		m.Reactions = append(m.Reactions, model.Reaction{Emoji: emoji, Count: 1, Mine: true})
		return
	}
	r := &m.Reactions[i]
	if !r.Mine {
		r.Count++
		r.Mine = true
		return
	}
	r.Count--
	r.Mine = false
	if r.Count <= 0 {
		m.Reactions = slices.Delete(m.Reactions, i, i+1)
	}
}

// MarkDeleted replaces the message with the deleted placeholder.
func MarkDeleted(m *model.Message) {
	m.Deleted = true
	m.Content = model.DeletedPlaceholder
	m.Type = model.Text
	m.MediaURL = ""
	m.PollOptions = nil
	m.Reactions = []model.Reaction{}
	m.Starred = false
}

// TogglePollVote adds or removes voterID on one option. Votes on other
// options are left alone.
func TogglePollVote(m *model.Message, optionID, voterID string) error {
	if len(m.PollOptions) == 0 {
		return ErrNotPoll
	}
	i := slices.IndexFunc(m.PollOptions, func(o model.PollOption) bool { return o.ID == optionID })
	if i < 0 {
		return ErrOptionNotFound
	}
	opt := &m.PollOptions[i]
	if j := slices.Index(opt.Voters, voterID); j >= 0 {
		opt.Voters = slices.Delete(opt.Voters, j, j+1)
	} else {
		opt.Voters = append(opt.Voters, voterID)
	}
	return nil
}
