// Package model holds the domain types shared by the daemon and its clients.
package model

import (
	"slices"
	"strings"
	"time"
)

// DeletedPlaceholder replaces the content of every deleted message.
const DeletedPlaceholder = "This message was deleted"

// Presence is a user's availability.
type Presence string

const (
	Online  Presence = "online"
	Offline Presence = "offline"
	Busy    Presence = "busy"
)

// MessageType classifies message content.
type MessageType string

const (
	Text     MessageType = "text"
	Image    MessageType = "image"
	Video    MessageType = "video"
	Audio    MessageType = "audio"
	Document MessageType = "document"
	Location MessageType = "location"
	Contact  MessageType = "contact"
	System   MessageType = "system"
	Poll     MessageType = "poll"
)

// Delivery is the delivery status of an outgoing message.
type Delivery string

const (
	Sent      Delivery = "sent"
	Delivered Delivery = "delivered"
	Read      Delivery = "read"
	Failed    Delivery = "failed"
)

// ChatType distinguishes one-to-one chats from groups.
type ChatType string

const (
	Individual ChatType = "individual"
	Group      ChatType = "group"
)

// Folder is the chat-list bucket a chat is filed under.
type Folder string

const (
	FolderDefault  Folder = "default"
	FolderPersonal Folder = "personal"
	FolderWork     Folder = "work"
	FolderLocked   Folder = "locked"
)

// StoryType is the kind of a story post.
type StoryType string

const (
	StoryImage StoryType = "image"
	StoryVideo StoryType = "video"
	StoryText  StoryType = "text"
)

// StoryTTL is how long a story stays visible after creation.
const StoryTTL = 24 * time.Hour

// Settings is the current user's preferences.
type Settings struct {
	ReadReceipts bool   `json:"readReceipts"`
	EnterToSend  bool   `json:"enterToSend"`
	Theme        string `json:"theme,omitempty"`
	Wallpaper    string `json:"wallpaper,omitempty"`
	LockPINHash  string `json:"lockPinHash,omitempty"`
}

// User is a person known to the client, including the current user.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar,omitempty"`
	Presence   Presence  `json:"status"`
	LastSeen   time.Time `json:"lastSeen"`
	Bio        string    `json:"bio,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	BlockedIDs []string  `json:"blockedUsers,omitempty"`
	Settings   *Settings `json:"settings,omitempty"`
}

// HasBlocked reports whether u has blocked userID.
func (u User) HasBlocked(userID string) bool {
	return slices.Contains(u.BlockedIDs, userID)
}

// VCard encodes u as a minimal vCard 3.0 contact.
func (u User) VCard() string {
	lines := []string{"BEGIN:VCARD", "VERSION:3.0", "FN:" + u.Name}
	if u.Phone != "" {
		lines = append(lines, "TEL:"+u.Phone)
	}
	if u.Bio != "" {
		lines = append(lines, "NOTE:"+u.Bio)
	}
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\n")
}

// ReadReceipts reports whether read receipts are enabled. They default to on.
func (u User) ReadReceipts() bool {
	return u.Settings == nil || u.Settings.ReadReceipts
}

// Reaction is an emoji bucket on a message.
type Reaction struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
	Mine  bool   `json:"userReacted"`
}

// PollOption is a single choice of a poll message.
type PollOption struct {
	ID     string   `json:"id"`
	Text   string   `json:"text"`
	Voters []string `json:"voters"`
}

// Message is a single entry in a chat.
type Message struct {
	ID          string       `json:"id"`
	SenderID    string       `json:"senderId"`
	Content     string       `json:"content"`
	Type        MessageType  `json:"type"`
	Timestamp   time.Time    `json:"timestamp"`
	Status      Delivery     `json:"status"`
	MediaURL    string       `json:"mediaUrl,omitempty"`
	ReplyToID   string       `json:"replyTo,omitempty"`
	Forwarded   bool         `json:"isForwarded,omitempty"`
	Edited      bool         `json:"isEdited,omitempty"`
	Deleted     bool         `json:"isDeleted,omitempty"`
	Starred     bool         `json:"isStarred,omitempty"`
	Reactions   []Reaction   `json:"reactions"`
	PollOptions []PollOption `json:"pollOptions,omitempty"`
}

// Chat is a conversation with one or more participants.
type Chat struct {
	ID              string     `json:"id"`
	Type            ChatType   `json:"type"`
	Name            string     `json:"name,omitempty"`
	Participants    []string   `json:"participants"`
	Messages        []Message  `json:"messages"`
	Unread          int        `json:"unreadCount"`
	LastMessage     *Message   `json:"lastMessage,omitempty"`
	Pinned          bool       `json:"isPinned,omitempty"`
	Archived        bool       `json:"isArchived,omitempty"`
	Muted           bool       `json:"isMuted,omitempty"`
	MutedUntil      *time.Time `json:"mutedUntil,omitempty"`
	Wallpaper       string     `json:"wallpaper,omitempty"`
	PinnedMessageID string     `json:"pinnedMessageId,omitempty"`
	Ephemeral       bool       `json:"isEphemeral,omitempty"`
	Folder          Folder     `json:"folder,omitempty"`
	Note            string     `json:"contactNote,omitempty"`
}

// Counterpart returns the first participant that is not selfID.
func (c Chat) Counterpart(selfID string) string {
	for _, p := range c.Participants {
		if p != selfID {
			return p
		}
	}
	return ""
}

// IsMuted reports whether notifications are muted at now.
func (c Chat) IsMuted(now time.Time) bool {
	if c.MutedUntil != nil {
		return now.Before(*c.MutedUntil)
	}
	return c.Muted
}

// IsLocked reports whether the chat lives in the locked folder.
func (c Chat) IsLocked() bool {
	return c.Folder == FolderLocked
}

// MessageIndex returns the position of messageID or -1.
func (c Chat) MessageIndex(messageID string) int {
	return slices.IndexFunc(c.Messages, func(m Message) bool { return m.ID == messageID })
}

// Story is an ephemeral status post.
type Story struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"userId"`
	Type       StoryType `json:"type"`
	Content    string    `json:"content"`
	Background string    `json:"backgroundColor,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Viewers    []string  `json:"viewers"`
}

// Expired reports whether the story is past its expiry at now.
func (s Story) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CallKind is audio or video.
type CallKind string

const (
	AudioCall CallKind = "audio"
	VideoCall CallKind = "video"
)

// CallState is the lifecycle position of a call.
type CallState string

const (
	CallRinging   CallState = "ringing"
	CallConnected CallState = "connected"
	CallEnded     CallState = "ended"
	CallMissed    CallState = "missed"
)

// CallRecord is a call log entry.
type CallRecord struct {
	ID          string     `json:"id"`
	PeerID      string     `json:"peerId"`
	Kind        CallKind   `json:"kind"`
	State       CallState  `json:"state"`
	StartedAt   time.Time  `json:"startedAt"`
	ConnectedAt *time.Time `json:"connectedAt,omitempty"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
}

// Duration is the connected time of the call, zero if it never connected.
func (c CallRecord) Duration() time.Duration {
	if c.ConnectedAt == nil || c.EndedAt == nil {
		return 0
	}
	return c.EndedAt.Sub(*c.ConnectedAt)
}

// Active reports whether the call has not ended yet.
func (c CallRecord) Active() bool {
	return c.State == CallRinging || c.State == CallConnected
}
