package daemon

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/bus"
	"github.com/matheus3301/wppsim/internal/calls"
	"github.com/matheus3301/wppsim/internal/clock"
	"github.com/matheus3301/wppsim/internal/config"
	"github.com/matheus3301/wppsim/internal/interact"
	"github.com/matheus3301/wppsim/internal/lock"
	"github.com/matheus3301/wppsim/internal/logging"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/outbox"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/session"
	"github.com/matheus3301/wppsim/internal/status"
	"github.com/matheus3301/wppsim/internal/store"
	"github.com/matheus3301/wppsim/internal/stories"
	"github.com/matheus3301/wppsim/internal/suggest"
)

const loadTimeout = 10 * time.Second

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
	SocketPath  string // optional override for testing; empty = use default

	// Optional overrides for testing.
	Config  *config.Config // nil = read config.toml
	Clock   clock.Clock    // nil = wall clock
	Backend store.Backend  // nil = open the backend named in Config
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideClock,
			provideBus,
			provideStateMachine,
			provideLock,
			provideBackend,
			provideRoster,
			providePersister,
			provideSender,
			provideHandlers,
			provideCalls,
			provideStories,
			provideSuggest,
			provideSessionService,
			provideChatService,
			provideMessageService,
			provideProfileService,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	if p.Config != nil {
		return p.Config, p.Config.Validate()
	}
	if err := config.LoadEnv(session.EnvPath()); err != nil {
		return nil, err
	}
	return config.Load(session.ConfigPath())
}

func provideLogger(p Params, cfg *config.Config) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.SessionName), p.SessionName, cfg.LogLevel)
}

func provideClock(p Params) clock.Clock {
	if p.Clock != nil {
		return p.Clock
	}
	return clock.Real()
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired")
	return l, nil
}

// provideBackend opens the storage backend. It depends on the lock so two
// daemons never share a sqlite file.
func provideBackend(p Params, cfg *config.Config, _ *lock.Lock, logger *zap.Logger) (store.Backend, error) {
	if p.Backend != nil {
		return p.Backend, nil
	}
	switch cfg.Storage.Backend {
	case "memory":
		logger.Warn("memory backend selected, state will not survive a restart")
		return store.NewMemory(), nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		r, err := store.OpenRedis(ctx, cfg.Storage.RedisURL, "wppsim:"+p.SessionName+":")
		if err != nil {
			return nil, err
		}
		logger.Info("store initialized", zap.String("backend", "redis"))
		return r, nil
	case "sqlite", "":
		dbPath := session.AppDBPath(p.SessionName)
		db, err := store.OpenSQLite(dbPath)
		if err != nil {
			return nil, err
		}
		logger.Info("store initialized", zap.String("backend", "sqlite"), zap.String("path", dbPath))
		return db, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

type rosterOut struct {
	fx.Out

	Store *roster.Store
	Info  api.SessionInfo
}

func provideRoster(p Params, cfg *config.Config, backend store.Backend, b *bus.Bus, clk clock.Clock, machine *status.Machine, logger *zap.Logger) (rosterOut, error) {
	if err := machine.Transition(status.Loading); err != nil {
		return rosterOut{}, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	st, fromSeed, err := store.Load(ctx, backend, clk.Now(), logger)
	if err != nil {
		return rosterOut{}, fmt.Errorf("load state: %w", err)
	}
	logger.Info("state loaded", zap.Int("chats", len(st.Chats)), zap.Bool("from_seed", fromSeed))
	backendName := cfg.Storage.Backend
	if p.Backend != nil {
		backendName = fmt.Sprintf("%T", p.Backend)
	}
	return rosterOut{
		Store: roster.NewStore(st, b, clk, logger),
		Info:  api.SessionInfo{Name: p.SessionName, Backend: backendName, FromSeed: fromSeed},
	}, nil
}

func providePersister(backend store.Backend, rst *roster.Store, b *bus.Bus, machine *status.Machine, logger *zap.Logger) *store.Persister {
	return store.NewPersister(backend, rst, b, machine, logger)
}

func provideSender(rst *roster.Store, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *outbox.Sender {
	sim := cfg.Simulation
	return outbox.NewSender(rst, b, outbox.Options{
		Timings: outbox.Timings{
			DeliverAfter:     sim.DeliverAfter.Duration,
			ReadAfter:        sim.ReadAfter.Duration,
			TypingStartAfter: sim.TypingStartAfter.Duration,
			TypingStopAfter:  sim.TypingStopAfter.Duration,
		},
		AutoReplies: sim.AutoReplies,
	}, logger)
}

func provideHandlers(rst *roster.Store, b *bus.Bus, cm *calls.Manager, logger *zap.Logger) *interact.Handlers {
	h := interact.New(rst, b, logger)
	h.OnBlock(func(userID string) { cm.EndWith(userID) })
	return h
}

func provideCalls(rst *roster.Store, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *calls.Manager {
	m := calls.NewManager(rst, b, cfg.Simulation.RingAfter.Duration, logger)
	m.OnEnd(func(rec model.CallRecord) {
		logger.Info("call finished", zap.String("call", rec.ID), zap.String("state", string(rec.State)),
			zap.Duration("duration", rec.Duration()))
	})
	return m
}

func provideStories(rst *roster.Store) *stories.Service {
	return stories.New(rst)
}

func provideSuggest(cfg *config.Config, logger *zap.Logger) *suggest.Service {
	sc := cfg.Suggest
	var provider suggest.Provider
	if sc.Endpoint != "" {
		provider = suggest.NewOpenAI(&http.Client{Timeout: sc.Timeout.Duration}, sc.Endpoint, sc.Model, sc.APIKey())
		logger.Info("reply suggestions enabled", zap.String("endpoint", sc.Endpoint), zap.String("model", sc.Model))
	}
	return suggest.NewService(provider, sc.Timeout.Duration, logger)
}

func provideSessionService(info api.SessionInfo, m *status.Machine, rst *roster.Store, sender *outbox.Sender, persister *store.Persister) *api.SessionService {
	return api.NewSessionService(info, m, rst, sender, persister)
}

func provideChatService(p Params, rst *roster.Store, sender *outbox.Sender, b *bus.Bus, logger *zap.Logger) *api.ChatService {
	return api.NewChatService(rst, sender, b, p.SessionName, logger)
}

func provideMessageService(rst *roster.Store, sender *outbox.Sender, h *interact.Handlers, sg *suggest.Service) *api.MessageService {
	return api.NewMessageService(rst, sender, h, sg)
}

func provideProfileService(rst *roster.Store, h *interact.Handlers, sender *outbox.Sender, st *stories.Service, cm *calls.Manager) *api.ProfileService {
	return api.NewProfileService(rst, h, sender, st, cm)
}

type lifecycleIn struct {
	fx.In

	Server    *Server
	Lock      *lock.Lock
	Backend   store.Backend
	Persister *store.Persister
	Sender    *outbox.Sender
	Calls     *calls.Manager
	Machine   *status.Machine
	Bus       *bus.Bus
	Logger    *zap.Logger
}

func registerLifecycle(lc fx.Lifecycle, in lifecycleIn) {
	logger := in.Logger
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Persist in the background for the daemon's whole life.
			in.Persister.Start(context.Background())

			// Start gRPC server in background.
			go func() {
				if err := in.Server.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()

			return in.Machine.Transition(status.Ready)
		},
		OnStop: func(ctx context.Context) error {
			_ = in.Machine.Transition(status.Stopping)
			in.Server.Stop(ctx)
			in.Sender.Stop()
			in.Calls.Stop()
			if err := in.Persister.Stop(ctx); err != nil {
				logger.Error("final snapshot failed", zap.Error(err))
			}
			if err := in.Backend.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			in.Bus.Close()
			if err := in.Lock.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
