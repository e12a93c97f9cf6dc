package api

import (
	"context"
	"slices"

	"github.com/matheus3301/wppsim/internal/calls"
	"github.com/matheus3301/wppsim/internal/interact"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/outbox"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/stories"
)

// ProfileService implements the ProfileService gRPC service: the current
// user, contacts, stories and calls.
type ProfileService struct {
	store    *roster.Store
	handlers *interact.Handlers
	sender   *outbox.Sender
	stories  *stories.Service
	calls    *calls.Manager
}

// NewProfileService creates a new profile service.
func NewProfileService(store *roster.Store, handlers *interact.Handlers, sender *outbox.Sender, st *stories.Service, cm *calls.Manager) *ProfileService {
	return &ProfileService{store: store, handlers: handlers, sender: sender, stories: st, calls: cm}
}

func (s *ProfileService) profile() *ProfileResponse {
	me := s.store.Snapshot().Me
	return &ProfileResponse{
		Me:     publicUser(me),
		PINSet: me.Settings != nil && me.Settings.LockPINHash != "",
	}
}

func (s *ProfileService) GetProfile(_ context.Context, _ *Empty) (*ProfileResponse, error) {
	return s.profile(), nil
}

func (s *ProfileService) UpdateProfile(_ context.Context, req *UpdateProfileRequest) (*ProfileResponse, error) {
	err := s.handlers.UpdateProfile(interact.ProfileUpdate{
		Name:     req.Name,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
		Presence: req.Presence,
	})
	if err != nil {
		return nil, err
	}
	return s.profile(), nil
}

func (s *ProfileService) UpdateSettings(_ context.Context, req *UpdateSettingsRequest) (*ProfileResponse, error) {
	err := s.handlers.UpdateSettings(interact.SettingsUpdate{
		ReadReceipts: req.ReadReceipts,
		EnterToSend:  req.EnterToSend,
		Theme:        req.Theme,
		Wallpaper:    req.Wallpaper,
	})
	if err != nil {
		return nil, err
	}
	return s.profile(), nil
}

func (s *ProfileService) SetPIN(_ context.Context, req *SetPINRequest) (*Empty, error) {
	return &Empty{}, s.handlers.SetLockPIN(req.Current, req.Next)
}

func (s *ProfileService) ListContacts(_ context.Context, _ *Empty) (*ContactsResponse, error) {
	st := s.store.Snapshot()
	resp := &ContactsResponse{Contacts: make([]Contact, 0, len(st.Contacts))}
	for _, u := range st.Contacts {
		c := Contact{User: publicUser(u), Blocked: st.Me.HasBlocked(u.ID)}
		if chat, ok := st.IndividualChatWith(u.ID); ok {
			c.ChatID = chat.ID
		}
		resp.Contacts = append(resp.Contacts, c)
	}
	slices.SortFunc(resp.Contacts, func(a, b Contact) int {
		switch {
		case a.User.Name < b.User.Name:
			return -1
		case a.User.Name > b.User.Name:
			return 1
		}
		return 0
	})
	return resp, nil
}

func (s *ProfileService) Block(_ context.Context, req *BlockRequest) (*Empty, error) {
	return &Empty{}, s.handlers.Block(req.UserID, req.Confirm)
}

func (s *ProfileService) Unblock(_ context.Context, req *UserRef) (*Empty, error) {
	return &Empty{}, s.handlers.Unblock(req.UserID)
}

func (s *ProfileService) ListStories(_ context.Context, req *ListStoriesRequest) (*StoriesResponse, error) {
	groups := s.stories.List(req.IncludeExpired)
	for i := range groups {
		groups[i].Author = publicUser(groups[i].Author)
	}
	if groups == nil {
		groups = []stories.Group{}
	}
	return &StoriesResponse{Groups: groups}, nil
}

func (s *ProfileService) AddStory(_ context.Context, req *AddStoryRequest) (*StoryResponse, error) {
	story, err := s.stories.Add(req.Type, req.Content, req.Background)
	if err != nil {
		return nil, err
	}
	return &StoryResponse{Story: story}, nil
}

func (s *ProfileService) ViewStory(_ context.Context, req *StoryRef) (*Empty, error) {
	return &Empty{}, s.stories.View(req.StoryID)
}

func (s *ProfileService) ReplyStory(_ context.Context, req *ReplyStoryRequest) (*MessageResponse, error) {
	chatID, msg, err := s.sender.ReplyToStory(req.StoryID, req.Text)
	if err != nil {
		return nil, err
	}
	return &MessageResponse{ChatID: chatID, Message: msg}, nil
}

func (s *ProfileService) StartCall(_ context.Context, req *StartCallRequest) (*CallResponse, error) {
	kind := req.Kind
	if kind == "" {
		kind = model.AudioCall
	}
	rec, err := s.calls.Start(req.UserID, kind)
	if err != nil {
		return nil, err
	}
	return &CallResponse{Call: rec}, nil
}

func (s *ProfileService) EndCall(_ context.Context, req *CallRef) (*CallResponse, error) {
	callID := req.CallID
	if callID == "" {
		active, ok := s.calls.Active()
		if !ok {
			return nil, calls.ErrCallNotFound
		}
		callID = active.ID
	}
	rec, err := s.calls.End(callID)
	if err != nil {
		return nil, err
	}
	return &CallResponse{Call: rec}, nil
}

func (s *ProfileService) ListCalls(_ context.Context, _ *Empty) (*CallsResponse, error) {
	st := s.store.Snapshot()
	resp := &CallsResponse{Calls: slices.Clone(st.Calls)}
	if resp.Calls == nil {
		resp.Calls = []model.CallRecord{}
	}
	slices.SortFunc(resp.Calls, func(a, b model.CallRecord) int { return b.StartedAt.Compare(a.StartedAt) })
	if active, ok := s.calls.Active(); ok {
		resp.Active = &active
	}
	return resp, nil
}
