package model

import "slices"

// Clone returns a deep copy of m.
func (m Message) Clone() Message {
	m.Reactions = slices.Clone(m.Reactions)
	if m.PollOptions != nil {
		opts := make([]PollOption, len(m.PollOptions))
		for i, o := range m.PollOptions {
			o.Voters = slices.Clone(o.Voters)
			opts[i] = o
		}
		m.PollOptions = opts
	}
	return m
}

// Clone returns a deep copy of c.
func (c Chat) Clone() Chat {
	c.Participants = slices.Clone(c.Participants)
	if c.Messages != nil {
		msgs := make([]Message, len(c.Messages))
		for i, m := range c.Messages {
			msgs[i] = m.Clone()
		}
		c.Messages = msgs
	}
	if c.LastMessage != nil {
		last := c.LastMessage.Clone()
		c.LastMessage = &last
	}
	if c.MutedUntil != nil {
		t := *c.MutedUntil
		c.MutedUntil = &t
	}
	return c
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	u.BlockedIDs = slices.Clone(u.BlockedIDs)
	if u.Settings != nil {
		s := *u.Settings
		u.Settings = &s
	}
	return u
}

// Clone returns a deep copy of s.
func (s Story) Clone() Story {
	s.Viewers = slices.Clone(s.Viewers)
	return s
}

// SyncLast points LastMessage at a copy of the tail of Messages.
func (c *Chat) SyncLast() {
	if len(c.Messages) == 0 {
		c.LastMessage = nil
		return
	}
	last := c.Messages[len(c.Messages)-1].Clone()
	c.LastMessage = &last
}
