package api

import (
	"encoding/json"
	"time"

	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/stories"
)

// Empty is used by calls that carry no data.
type Empty struct{}

type ChatRef struct {
	ChatID string `json:"chatId"`
}

type MessageRef struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
}

type UserRef struct {
	UserID string `json:"userId"`
}

type ToggleResponse struct {
	On bool `json:"on"`
}

// Session

type StatusResponse struct {
	Session       string `json:"session"`
	Status        string `json:"status"`
	Backend       string `json:"backend"`
	UptimeMs      int64  `json:"uptimeMs"`
	Version       uint64 `json:"version"`
	ChatCount     int    `json:"chatCount"`
	MessageCount  int    `json:"messageCount"`
	UnreadCount   int    `json:"unreadCount"`
	PendingTimers int    `json:"pendingTimers"`
	SavedVersion  uint64 `json:"savedVersion"`
	FromSeed      bool   `json:"fromSeed"`
}

// Chats

type ListChatsRequest struct {
	View  string `json:"view,omitempty"`
	Query string `json:"query,omitempty"`
}

// ChatSummary is a roster row. Messages are not included.
type ChatSummary struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Type        model.ChatType `json:"type"`
	Unread      int            `json:"unreadCount"`
	LastMessage *model.Message `json:"lastMessage,omitempty"`
	Pinned      bool           `json:"isPinned,omitempty"`
	Muted       bool           `json:"isMuted,omitempty"`
	Archived    bool           `json:"isArchived,omitempty"`
	Folder      model.Folder   `json:"folder,omitempty"`
	Typing      bool           `json:"isTyping,omitempty"`
	Blocked     bool           `json:"isBlocked,omitempty"`
	Presence    model.Presence `json:"presence,omitempty"`
}

type ListChatsResponse struct {
	Chats        []ChatSummary `json:"chats"`
	ActiveChatID string        `json:"activeChatId,omitempty"`
	Version      uint64        `json:"version"`
}

type ChatDetail struct {
	Chat        model.Chat   `json:"chat"`
	Title       string       `json:"title"`
	Typing      bool         `json:"isTyping,omitempty"`
	Blocked     bool         `json:"isBlocked,omitempty"`
	Muted       bool         `json:"isMuted,omitempty"`
	Counterpart *model.User  `json:"counterpart,omitempty"`
	Members     []model.User `json:"members,omitempty"`
}

type OpenRequest struct {
	UserID string `json:"userId"`
}

type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds"`
}

type MuteForRequest struct {
	ChatID   string `json:"chatId"`
	Duration string `json:"duration"`
}

type SetFolderRequest struct {
	ChatID string       `json:"chatId"`
	Folder model.Folder `json:"folder"`
}

type LockRequest struct {
	ChatID string `json:"chatId"`
	PIN    string `json:"pin"`
}

type ClearHistoryRequest struct {
	ChatID  string `json:"chatId"`
	Confirm bool   `json:"confirm"`
}

type SetTextRequest struct {
	ChatID string `json:"chatId"`
	Value  string `json:"value"`
}

type SetEphemeralRequest struct {
	ChatID string `json:"chatId"`
	On     bool   `json:"on"`
}

// Events

type WatchRequest struct {
	// Prefix filters event kinds, e.g. "message." Empty means everything.
	Prefix string `json:"prefix,omitempty"`
}

type Event struct {
	ID         string          `json:"id"`
	Session    string          `json:"session"`
	Kind       string          `json:"kind"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Messages

type ListMessagesRequest struct {
	ChatID string `json:"chatId"`
	// Limit keeps only the newest messages. Zero means all.
	Limit int `json:"limit,omitempty"`
}

type ListMessagesResponse struct {
	Messages []model.Message `json:"messages"`
}

type SendRequest struct {
	ChatID      string            `json:"chatId"`
	Content     string            `json:"content"`
	Type        model.MessageType `json:"type,omitempty"`
	MediaURL    string            `json:"mediaUrl,omitempty"`
	ReplyToID   string            `json:"replyTo,omitempty"`
	PollOptions []string          `json:"pollOptions,omitempty"`
}

type MessageResponse struct {
	ChatID  string        `json:"chatId"`
	Message model.Message `json:"message"`
}

type ForwardRequest struct {
	ChatID       string `json:"chatId"`
	MessageID    string `json:"messageId"`
	TargetChatID string `json:"targetChatId"`
}

type ReactRequest struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
}

type EditRequest struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
}

type VoteRequest struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	OptionID  string `json:"optionId"`
}

type SearchRequest struct {
	Query string `json:"query,omitempty"`
	Limit int    `json:"limit,omitempty"`
	// Starred lists starred messages instead of matching Query.
	Starred bool `json:"starred,omitempty"`
}

type SearchResponse struct {
	Hits []roster.Hit `json:"hits"`
}

type SuggestResponse struct {
	Replies []string `json:"replies"`
}

// Profile

type ProfileResponse struct {
	Me     model.User `json:"me"`
	PINSet bool       `json:"pinSet"`
}

type UpdateProfileRequest struct {
	Name     *string         `json:"name,omitempty"`
	Bio      *string         `json:"bio,omitempty"`
	Avatar   *string         `json:"avatar,omitempty"`
	Presence *model.Presence `json:"status,omitempty"`
}

type UpdateSettingsRequest struct {
	ReadReceipts *bool   `json:"readReceipts,omitempty"`
	EnterToSend  *bool   `json:"enterToSend,omitempty"`
	Theme        *string `json:"theme,omitempty"`
	Wallpaper    *string `json:"wallpaper,omitempty"`
}

type SetPINRequest struct {
	Current string `json:"current,omitempty"`
	Next    string `json:"next"`
}

type Contact struct {
	User    model.User `json:"user"`
	Blocked bool       `json:"isBlocked,omitempty"`
	ChatID  string     `json:"chatId,omitempty"`
}

type ContactsResponse struct {
	Contacts []Contact `json:"contacts"`
}

type BlockRequest struct {
	UserID  string `json:"userId"`
	Confirm bool   `json:"confirm"`
}

type ListStoriesRequest struct {
	IncludeExpired bool `json:"includeExpired,omitempty"`
}

type StoriesResponse struct {
	Groups []stories.Group `json:"groups"`
}

type AddStoryRequest struct {
	Type       model.StoryType `json:"type"`
	Content    string          `json:"content"`
	Background string          `json:"backgroundColor,omitempty"`
}

type StoryResponse struct {
	Story model.Story `json:"story"`
}

type StoryRef struct {
	StoryID string `json:"storyId"`
}

type ReplyStoryRequest struct {
	StoryID string `json:"storyId"`
	Text    string `json:"text"`
}

type StartCallRequest struct {
	UserID string         `json:"userId"`
	Kind   model.CallKind `json:"kind"`
}

type CallRef struct {
	CallID string `json:"callId"`
}

type CallResponse struct {
	Call model.CallRecord `json:"call"`
}

type CallsResponse struct {
	Calls  []model.CallRecord `json:"calls"`
	Active *model.CallRecord  `json:"active,omitempty"`
}
