package api

import (
	"context"
	"time"

	"github.com/matheus3301/wppsim/internal/outbox"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/status"
)

// SessionInfo describes how the daemon was started.
type SessionInfo struct {
	Name     string
	Backend  string
	FromSeed bool
}

// SnapshotCounter reports the last persisted state version.
type SnapshotCounter interface {
	Saved() uint64
}

// SessionService implements the SessionService gRPC service.
type SessionService struct {
	info      SessionInfo
	startedAt time.Time
	machine   *status.Machine
	store     *roster.Store
	sender    *outbox.Sender
	snapshots SnapshotCounter
}

// NewSessionService creates a new session service.
func NewSessionService(info SessionInfo, machine *status.Machine, store *roster.Store, sender *outbox.Sender, snapshots SnapshotCounter) *SessionService {
	return &SessionService{
		info:      info,
		startedAt: time.Now(),
		machine:   machine,
		store:     store,
		sender:    sender,
		snapshots: snapshots,
	}
}

func (s *SessionService) GetStatus(_ context.Context, _ *Empty) (*StatusResponse, error) {
	st := s.store.Snapshot()
	resp := &StatusResponse{
		Session:   s.info.Name,
		Status:    string(s.machine.Current()),
		Backend:   s.info.Backend,
		FromSeed:  s.info.FromSeed,
		UptimeMs:  time.Since(s.startedAt).Milliseconds(),
		Version:   st.Version,
		ChatCount: len(st.Chats),
	}
	for _, c := range st.Chats {
		resp.MessageCount += len(c.Messages)
		resp.UnreadCount += c.Unread
	}
	if s.sender != nil {
		resp.PendingTimers = s.sender.Pending()
	}
	if s.snapshots != nil {
		resp.SavedVersion = s.snapshots.Saved()
	}
	return resp, nil
}
