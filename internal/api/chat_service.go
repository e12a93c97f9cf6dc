package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matheus3301/wppsim/internal/bus"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/outbox"
	"github.com/matheus3301/wppsim/internal/roster"
)

// ChatService implements the ChatService gRPC service.
type ChatService struct {
	store       *roster.Store
	sender      *outbox.Sender
	bus         *bus.Bus
	sessionName string
	logger      *zap.Logger
}

// NewChatService creates a new chat service backed by the roster store.
func NewChatService(store *roster.Store, sender *outbox.Sender, b *bus.Bus, sessionName string, logger *zap.Logger) *ChatService {
	return &ChatService{store: store, sender: sender, bus: b, sessionName: sessionName, logger: logger}
}

func (s *ChatService) ListChats(_ context.Context, req *ListChatsRequest) (*ListChatsResponse, error) {
	view, err := roster.ParseView(req.View)
	if err != nil {
		return nil, err
	}
	st := s.store.Snapshot()
	now := s.store.Now()
	q := strings.ToLower(strings.TrimSpace(req.Query))

	resp := &ListChatsResponse{Chats: []ChatSummary{}, ActiveChatID: st.ActiveChatID, Version: st.Version}
	for _, c := range roster.Filter(st, view) {
		summary := summarize(st, c, now)
		if q != "" && !strings.Contains(strings.ToLower(summary.Title), q) {
			continue
		}
		resp.Chats = append(resp.Chats, summary)
	}
	return resp, nil
}

func summarize(st *roster.State, c model.Chat, now time.Time) ChatSummary {
	out := ChatSummary{
		ID:          c.ID,
		Title:       st.ChatTitle(c),
		Type:        c.Type,
		Unread:      c.Unread,
		LastMessage: c.LastMessage,
		Pinned:      c.Pinned,
		Muted:       c.IsMuted(now),
		Archived:    c.Archived,
		Folder:      c.Folder,
		Typing:      st.Typing[c.ID],
		Blocked:     st.BlocksCounterpart(c),
	}
	if c.Type == model.Individual {
		if u, ok := st.User(c.Counterpart(st.Me.ID)); ok {
			out.Presence = u.Presence
		}
	}
	return out
}

func (s *ChatService) GetChat(_ context.Context, req *ChatRef) (*ChatDetail, error) {
	st := s.store.Snapshot()
	c, ok := st.Chat(req.ChatID)
	if !ok {
		return nil, roster.ErrChatNotFound
	}
	d := &ChatDetail{
		Chat:    c.Clone(),
		Title:   st.ChatTitle(*c),
		Typing:  st.Typing[c.ID],
		Blocked: st.BlocksCounterpart(*c),
		Muted:   c.IsMuted(s.store.Now()),
	}
	if c.Type == model.Individual {
		if u, ok := st.User(c.Counterpart(st.Me.ID)); ok {
			pu := publicUser(u)
			d.Counterpart = &pu
		}
	} else {
		for _, id := range c.Participants {
			if u, ok := st.User(id); ok {
				d.Members = append(d.Members, publicUser(u))
			}
		}
	}
	return d, nil
}

func (s *ChatService) Select(_ context.Context, req *ChatRef) (*Empty, error) {
	return &Empty{}, s.store.SelectChat(req.ChatID)
}

func (s *ChatService) Deselect(_ context.Context, _ *Empty) (*Empty, error) {
	return &Empty{}, s.store.DeselectChat()
}

func (s *ChatService) Open(_ context.Context, req *OpenRequest) (*ChatRef, error) {
	id, err := s.store.CreateOrOpenChat(req.UserID)
	if err != nil {
		return nil, err
	}
	return &ChatRef{ChatID: id}, nil
}

func (s *ChatService) CreateGroup(_ context.Context, req *CreateGroupRequest) (*ChatRef, error) {
	id, err := s.store.CreateGroup(req.Name, req.MemberIDs)
	if err != nil {
		return nil, err
	}
	return &ChatRef{ChatID: id}, nil
}

func (s *ChatService) TogglePin(_ context.Context, req *ChatRef) (*ToggleResponse, error) {
	on, err := s.store.TogglePin(req.ChatID)
	return &ToggleResponse{On: on}, err
}

func (s *ChatService) ToggleMute(_ context.Context, req *ChatRef) (*ToggleResponse, error) {
	on, err := s.store.ToggleMute(req.ChatID)
	return &ToggleResponse{On: on}, err
}

func (s *ChatService) ToggleArchive(_ context.Context, req *ChatRef) (*ToggleResponse, error) {
	on, err := s.store.ToggleArchive(req.ChatID)
	return &ToggleResponse{On: on}, err
}

func (s *ChatService) MuteFor(_ context.Context, req *MuteForRequest) (*Empty, error) {
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		return nil, fmt.Errorf("%w: duration %q", roster.ErrInvalidArgument, req.Duration)
	}
	return &Empty{}, s.store.MuteFor(req.ChatID, d)
}

func (s *ChatService) SetFolder(_ context.Context, req *SetFolderRequest) (*Empty, error) {
	return &Empty{}, s.store.SetFolder(req.ChatID, req.Folder)
}

func (s *ChatService) Lock(_ context.Context, req *LockRequest) (*Empty, error) {
	return &Empty{}, s.store.LockChat(req.ChatID, req.PIN)
}

func (s *ChatService) Unlock(_ context.Context, req *ChatRef) (*Empty, error) {
	return &Empty{}, s.store.UnlockChat(req.ChatID)
}

func (s *ChatService) ClearHistory(_ context.Context, req *ClearHistoryRequest) (*Empty, error) {
	if err := s.store.ClearHistory(req.ChatID, req.Confirm); err != nil {
		return nil, err
	}
	if s.sender != nil {
		s.sender.CancelChat(req.ChatID)
	}
	return &Empty{}, nil
}

func (s *ChatService) SetNote(_ context.Context, req *SetTextRequest) (*Empty, error) {
	return &Empty{}, s.store.SetNote(req.ChatID, req.Value)
}

func (s *ChatService) SetWallpaper(_ context.Context, req *SetTextRequest) (*Empty, error) {
	return &Empty{}, s.store.SetWallpaper(req.ChatID, req.Value)
}

func (s *ChatService) SetEphemeral(_ context.Context, req *SetEphemeralRequest) (*Empty, error) {
	return &Empty{}, s.store.SetEphemeral(req.ChatID, req.On)
}

func (s *ChatService) MarkUnread(_ context.Context, req *ChatRef) (*Empty, error) {
	return &Empty{}, s.store.MarkUnread(req.ChatID)
}

// WatchEvents streams bus events whose kind starts with req.Prefix until the
// client goes away.
func (s *ChatService) WatchEvents(req *WatchRequest, stream EventStream) error {
	ch, unsub := s.bus.Subscribe(req.Prefix, 256)
	defer unsub()

	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return nil
			}
			out := &Event{
				ID:         uuid.NewString(),
				Session:    s.sessionName,
				Kind:       evt.Kind,
				OccurredAt: evt.Timestamp,
			}
			if evt.Payload != nil {
				payload, err := json.Marshal(evt.Payload)
				if err != nil {
					s.logger.Warn("event payload not encodable", zap.String("kind", evt.Kind), zap.Error(err))
				} else {
					out.Payload = payload
				}
			}
			if err := stream.Send(out); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}

// publicUser drops fields that must not leave the daemon.
func publicUser(u model.User) model.User {
	u = u.Clone()
	if u.Settings != nil {
		u.Settings.LockPINHash = ""
	}
	return u
}
