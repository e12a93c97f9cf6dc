// Package calls simulates voice and video calls with contacts and keeps the call log.
package calls

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matheus3301/wppsim/internal/bus"
	"github.com/matheus3301/wppsim/internal/clock"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/status"
)

var (
	ErrBlocked        = errors.New("you blocked this contact, unblock them to call")
	ErrCallInProgress = errors.New("another call is in progress")
	ErrCallNotFound   = errors.New("call not found")
)

// DefaultRingAfter is how long a call rings before the peer picks up.
const DefaultRingAfter = 2 * time.Second

// Manager places calls and records them in the roster's call log.
type Manager struct {
	store     *roster.Store
	clock     clock.Clock
	bus       *bus.Bus
	logger    *zap.Logger
	ringAfter time.Duration

	mu      sync.Mutex
	pending map[string]clock.Timer
	onEnd   []func(model.CallRecord)
}

// NewManager creates a Manager. A non-positive ringAfter uses DefaultRingAfter.
func NewManager(store *roster.Store, b *bus.Bus, ringAfter time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ringAfter <= 0 {
		ringAfter = DefaultRingAfter
	}
	return &Manager{
		store:     store,
		clock:     store.Clock(),
		bus:       b,
		logger:    logger,
		ringAfter: ringAfter,
		pending:   make(map[string]clock.Timer),
	}
}

// OnEnd registers fn to run after every call ends.
func (m *Manager) OnEnd(fn func(model.CallRecord)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnd = append(m.onEnd, fn)
}

// Start rings peerID. The call connects once the ring delay elapses.
func (m *Manager) Start(peerID string, kind model.CallKind) (model.CallRecord, error) {
	if kind != model.AudioCall && kind != model.VideoCall {
		return model.CallRecord{}, fmt.Errorf("%w: unknown call kind %q", roster.ErrInvalidArgument, kind)
	}
	var rec model.CallRecord
	_, err := m.store.Update("call_start", func(st *roster.State) error {
		if _, ok := st.User(peerID); !ok || peerID == st.Me.ID {
			return roster.ErrUserNotFound
		}
		if st.Me.HasBlocked(peerID) {
			return ErrBlocked
		}
		if slices.ContainsFunc(st.Calls, model.CallRecord.Active) {
			return ErrCallInProgress
		}
		rec = model.CallRecord{
			ID:        uuid.NewString(),
			PeerID:    peerID,
			Kind:      kind,
			State:     model.CallRinging,
			StartedAt: m.clock.Now(),
		}
		st.Calls = append(st.Calls, rec)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBlocked) && m.bus != nil {
			m.bus.Emit(bus.KindNotice, ErrBlocked.Error())
		}
		return model.CallRecord{}, err
	}

	m.logger.Info("call started", zap.String("call", rec.ID), zap.String("peer", peerID), zap.String("kind", string(kind)))
	m.emit(bus.KindCallStarted, rec)

	m.mu.Lock()
	m.pending[rec.ID] = m.clock.AfterFunc(m.ringAfter, func() { m.connect(rec.ID) })
	m.mu.Unlock()
	return rec, nil
}

func (m *Manager) connect(callID string) {
	m.mu.Lock()
	delete(m.pending, callID)
	m.mu.Unlock()

	rec, err := m.transition("call_connect", callID, model.CallConnected)
	if err != nil {
		m.logger.Debug("call connect skipped", zap.String("call", callID), zap.Error(err))
		return
	}
	m.emit(bus.KindCallConnected, rec)
}

// End hangs up. A call that never connected is logged as missed.
func (m *Manager) End(callID string) (model.CallRecord, error) {
	m.mu.Lock()
	if t, ok := m.pending[callID]; ok {
		t.Stop()
		delete(m.pending, callID)
	}
	m.mu.Unlock()

	st := m.store.Snapshot()
	i := slices.IndexFunc(st.Calls, func(c model.CallRecord) bool { return c.ID == callID })
	if i < 0 {
		return model.CallRecord{}, ErrCallNotFound
	}
	next := model.CallEnded
	if st.Calls[i].State == model.CallRinging {
		next = model.CallMissed
	}
	rec, err := m.transition("call_end", callID, next)
	if err != nil {
		return model.CallRecord{}, err
	}
	m.logger.Info("call ended", zap.String("call", callID), zap.Duration("duration", rec.Duration()))
	m.emit(bus.KindCallEnded, rec)

	m.mu.Lock()
	handlers := slices.Clone(m.onEnd)
	m.mu.Unlock()
	for _, fn := range handlers {
		fn(rec)
	}
	return rec, nil
}

// EndWith hangs up every live call with peerID, e.g. after they are blocked.
func (m *Manager) EndWith(peerID string) []model.CallRecord {
	var ended []model.CallRecord
	for _, c := range m.store.Snapshot().Calls {
		if c.PeerID != peerID || !c.Active() {
			continue
		}
		rec, err := m.End(c.ID)
		if err != nil {
			m.logger.Debug("hang up skipped", zap.String("call", c.ID), zap.Error(err))
			continue
		}
		ended = append(ended, rec)
	}
	return ended
}

// Active returns the call in progress, if any.
func (m *Manager) Active() (model.CallRecord, bool) {
	for _, c := range m.store.Snapshot().Calls {
		if c.Active() {
			return c, true
		}
	}
	return model.CallRecord{}, false
}

// Stop cancels every pending connect.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.pending {
		t.Stop()
		delete(m.pending, id)
	}
}

func (m *Manager) transition(op, callID string, to model.CallState) (model.CallRecord, error) {
	var rec model.CallRecord
	now := m.clock.Now()
	_, err := m.store.Update(op, func(st *roster.State) error {
		i := slices.IndexFunc(st.Calls, func(c model.CallRecord) bool { return c.ID == callID })
		if i < 0 {
			return ErrCallNotFound
		}
		c := &st.Calls[i]
		if !status.CanAdvanceCall(c.State, to) {
			return fmt.Errorf("%w: call is %s", roster.ErrInvalidArgument, c.State)
		}
		c.State = to
		switch to {
		case model.CallConnected:
			c.ConnectedAt = &now
		case model.CallEnded, model.CallMissed:
			c.EndedAt = &now
		}
		rec = *c
		return nil
	})
	return rec, err
}

func (m *Manager) emit(kind string, rec model.CallRecord) {
	if m.bus != nil {
		m.bus.Emit(kind, rec)
	}
}
