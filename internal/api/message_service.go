package api

import (
	"context"

	"github.com/matheus3301/wppsim/internal/interact"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/outbox"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/suggest"
)

const defaultSearchLimit = 50

// MessageService implements the MessageService gRPC service.
type MessageService struct {
	store    *roster.Store
	sender   *outbox.Sender
	handlers *interact.Handlers
	suggest  *suggest.Service
}

// NewMessageService creates a new message service.
func NewMessageService(store *roster.Store, sender *outbox.Sender, handlers *interact.Handlers, sg *suggest.Service) *MessageService {
	return &MessageService{store: store, sender: sender, handlers: handlers, suggest: sg}
}

func (s *MessageService) ListMessages(_ context.Context, req *ListMessagesRequest) (*ListMessagesResponse, error) {
	c, ok := s.store.Snapshot().Chat(req.ChatID)
	if !ok {
		return nil, roster.ErrChatNotFound
	}
	msgs := c.Messages
	if req.Limit > 0 && len(msgs) > req.Limit {
		msgs = msgs[len(msgs)-req.Limit:]
	}
	out := make([]model.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return &ListMessagesResponse{Messages: out}, nil
}

func (s *MessageService) Send(_ context.Context, req *SendRequest) (*MessageResponse, error) {
	msg, err := s.sender.Send(outbox.SendRequest{
		ChatID:      req.ChatID,
		Content:     req.Content,
		Type:        req.Type,
		MediaURL:    req.MediaURL,
		ReplyToID:   req.ReplyToID,
		PollOptions: req.PollOptions,
	})
	if err != nil {
		return nil, err
	}
	return &MessageResponse{ChatID: req.ChatID, Message: msg}, nil
}

func (s *MessageService) Forward(_ context.Context, req *ForwardRequest) (*MessageResponse, error) {
	msg, err := s.sender.Forward(req.ChatID, req.MessageID, req.TargetChatID)
	if err != nil {
		return nil, err
	}
	return &MessageResponse{ChatID: req.TargetChatID, Message: msg}, nil
}

func (s *MessageService) React(_ context.Context, req *ReactRequest) (*Empty, error) {
	return &Empty{}, s.handlers.React(req.ChatID, req.MessageID, req.Emoji)
}

func (s *MessageService) Edit(_ context.Context, req *EditRequest) (*Empty, error) {
	return &Empty{}, s.handlers.Edit(req.ChatID, req.MessageID, req.Content)
}

func (s *MessageService) Delete(_ context.Context, req *MessageRef) (*Empty, error) {
	return &Empty{}, s.handlers.Delete(req.ChatID, req.MessageID)
}

func (s *MessageService) Star(_ context.Context, req *MessageRef) (*ToggleResponse, error) {
	on, err := s.handlers.ToggleStar(req.ChatID, req.MessageID)
	return &ToggleResponse{On: on}, err
}

func (s *MessageService) Pin(_ context.Context, req *MessageRef) (*ToggleResponse, error) {
	on, err := s.handlers.TogglePinMessage(req.ChatID, req.MessageID)
	return &ToggleResponse{On: on}, err
}

func (s *MessageService) Vote(_ context.Context, req *VoteRequest) (*Empty, error) {
	return &Empty{}, s.handlers.VotePoll(req.ChatID, req.MessageID, req.OptionID)
}

func (s *MessageService) Search(_ context.Context, req *SearchRequest) (*SearchResponse, error) {
	st := s.store.Snapshot()
	var hits []roster.Hit
	if req.Starred {
		hits = roster.Starred(st)
	} else {
		limit := req.Limit
		if limit <= 0 {
			limit = defaultSearchLimit
		}
		hits = roster.Search(st, req.Query, limit)
	}
	if hits == nil {
		hits = []roster.Hit{}
	}
	return &SearchResponse{Hits: hits}, nil
}

func (s *MessageService) Suggest(ctx context.Context, req *ChatRef) (*SuggestResponse, error) {
	st := s.store.Snapshot()
	c, ok := st.Chat(req.ChatID)
	if !ok {
		return nil, roster.ErrChatNotFound
	}
	return &SuggestResponse{Replies: s.suggest.Suggest(ctx, *c, st.Me.ID)}, nil
}
