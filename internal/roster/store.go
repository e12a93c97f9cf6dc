package roster

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/wppsim/internal/bus"
	"github.com/matheus3301/wppsim/internal/clock"
)

// Change is the payload of a state.changed event.
type Change struct {
	Op      string
	Version uint64
}

// Store holds the current State and serialises every update to it.
// Readers never block: Snapshot returns the latest committed value.
type Store struct {
	mu     sync.Mutex
	state  atomic.Pointer[State]
	bus    *bus.Bus
	clock  clock.Clock
	logger *zap.Logger
}

// NewStore creates a Store seeded with initial.
func NewStore(initial *State, b *bus.Bus, clk clock.Clock, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.Real()
	}
	s := &Store{bus: b, clock: clk, logger: logger}
	if initial == nil {
		initial = &State{}
	}
	st := initial.Clone()
	Sort(st.Chats)
	s.state.Store(st)
	return s
}

// Snapshot returns the current state. The result must be treated as read-only.
func (s *Store) Snapshot() *State {
	return s.state.Load()
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// Clock returns the clock the store stamps changes with.
func (s *Store) Clock() clock.Clock {
	return s.clock
}

// Update derives a new state by applying fn to a private copy of the current
// one. If fn returns an error nothing is committed. The chat list is re-sorted
// and a state.changed event is published on success.
func (s *Store) Update(op string, fn func(*State) error) (*State, error) {
	s.mu.Lock()
	next := s.state.Load().Clone()
	if err := fn(next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	Sort(next.Chats)
	next.Version++
	s.state.Store(next)
	s.mu.Unlock()

	s.logger.Debug("state updated", zap.String("op", op), zap.Uint64("version", next.Version))
	if s.bus != nil {
		s.bus.Emit(bus.KindStateChanged, Change{Op: op, Version: next.Version})
	}
	return next, nil
}

// Replace swaps in a loaded state wholesale.
func (s *Store) Replace(st *State) {
	s.Update("replace", func(cur *State) error {
		next := st.Clone()
		next.Version = cur.Version
		*cur = *next
		return nil
	})
}
