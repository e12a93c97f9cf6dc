package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/matheus3301/wppsim/internal/bus"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/status"
)

// Persister writes the latest state to a Backend after every change.
// Bursts of changes collapse into one write.
type Persister struct {
	backend Backend
	store   *roster.Store
	bus     *bus.Bus
	machine *status.Machine
	logger  *zap.Logger

	mu     sync.Mutex
	saved  uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPersister creates a Persister. machine may be nil; when set, write
// failures move the daemon to DEGRADED and the next success back to READY.
func NewPersister(backend Backend, store *roster.Store, b *bus.Bus, machine *status.Machine, logger *zap.Logger) *Persister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{
		backend: backend,
		store:   store,
		bus:     b,
		machine: machine,
		logger:  logger,
		saved:   store.Snapshot().Version,
	}
}

// Start subscribes to state changes and saves in the background.
func (p *Persister) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	events, unsub := p.bus.Subscribe(bus.KindStateChanged, 64)
	go func() {
		defer close(p.done)
		defer unsub()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Coalesce whatever queued up behind this event.
				for len(events) > 0 {
					<-events
				}
				_ = p.Flush(ctx)
			}
		}
	}()
}

// Flush saves the current state if it changed since the last save.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.store.Snapshot()
	if st.Version <= p.saved {
		return nil
	}
	if err := Save(ctx, p.backend, st); err != nil {
		p.logger.Error("failed to persist state", zap.Uint64("version", st.Version), zap.Error(err))
		p.setStatus(status.Degraded)
		return err
	}
	p.saved = st.Version
	p.setStatus(status.Ready)
	return nil
}

// Saved returns the last persisted state version.
func (p *Persister) Saved() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saved
}

// Stop ends the background loop and writes any pending change.
func (p *Persister) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
	return p.Flush(ctx)
}

func (p *Persister) setStatus(s status.State) {
	if p.machine == nil {
		return
	}
	cur := p.machine.Current()
	if cur != status.Ready && cur != status.Degraded {
		return
	}
	if err := p.machine.Transition(s); err != nil {
		p.logger.Debug("status transition skipped", zap.Error(err))
	}
}
