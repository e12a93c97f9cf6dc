package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/clock"
	"github.com/matheus3301/wppsim/internal/config"
	"github.com/matheus3301/wppsim/internal/lock"
	"github.com/matheus3301/wppsim/internal/session"
	"github.com/matheus3301/wppsim/internal/status"
	"github.com/matheus3301/wppsim/internal/store"
)

// shortHome points the session tree at a short /tmp path to stay under the
// 104-char Unix socket limit on macOS.
func shortHome(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "wppsim-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	t.Setenv("WPPSIM_HOME", dir)
	return dir
}

func dial(t *testing.T, socketPath string) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient("unix://"+socketPath, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func testParams(name string) Params {
	return Params{
		SessionName: name,
		Config:      config.Default(),
		Clock:       clock.Fake(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
	}
}

// TestFxModuleWiring verifies the fx dependency graph resolves without errors.
// Regression test: a constructor taking a bare `string` param makes fx fail
// with "missing type: string" at startup.
func TestFxModuleWiring(t *testing.T) {
	shortHome(t)
	if err := fx.ValidateApp(Module(testParams("fxtest")), fx.NopLogger); err != nil {
		t.Fatalf("ValidateApp() error = %v", err)
	}
}

func TestDaemonLifecycle(t *testing.T) {
	shortHome(t)
	ctx := context.Background()
	p := testParams("main")

	app := fxtest.New(t, fx.NopLogger, Module(p))
	app.RequireStart()

	conn := dial(t, session.SocketPath("main"))
	sessions := api.NewSessionClient(conn)
	chats := api.NewChatClient(conn)
	messages := api.NewMessageClient(conn)

	st, err := sessions.GetStatus(ctx)
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if st.Status != string(status.Ready) || !st.FromSeed || st.Backend != "sqlite" {
		t.Errorf("status = %+v, want READY from seed on sqlite", st)
	}

	if err := chats.Select(ctx, "chat-emma"); err != nil {
		t.Fatal(err)
	}
	if _, err := messages.Send(ctx, &api.SendRequest{ChatID: "chat-emma", Content: "Hi"}); err != nil {
		t.Fatal(err)
	}

	// A second daemon for the same session must not start.
	second := fx.New(fx.NopLogger, Module(testParams("main")))
	if err := second.Err(); err == nil || !strings.Contains(err.Error(), "session lock held") {
		t.Errorf("second daemon err = %v, want lock held", err)
	}

	app.RequireStop()

	if _, err := os.Stat(session.SocketPath("main")); !os.IsNotExist(err) {
		t.Errorf("socket left behind: %v", err)
	}
	if pid, _ := lock.Holder(session.Dir("main")); pid != 0 {
		t.Errorf("lock still held by %d", pid)
	}

	// Restart: the sent message comes back from sqlite.
	app = fxtest.New(t, fx.NopLogger, Module(testParams("main")))
	app.RequireStart()
	defer app.RequireStop()

	conn = dial(t, session.SocketPath("main"))
	st, err = api.NewSessionClient(conn).GetStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.FromSeed {
		t.Error("restart loaded the seed instead of stored state")
	}
	msgs, err := api.NewMessageClient(conn).ListMessages(ctx, "chat-emma", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Content != "Hi" {
		t.Errorf("messages after restart = %+v", msgs)
	}
}

// TestUnreadableStoreFallsBackToSeed starts a daemon over a backend holding
// garbage and expects the seed to be served rather than a startup failure.
func TestUnreadableStoreFallsBackToSeed(t *testing.T) {
	shortHome(t)
	ctx := context.Background()

	mem := store.NewMemory()
	if err := mem.PutAll(ctx, map[string][]byte{store.KeyChats: []byte("{not json")}); err != nil {
		t.Fatal(err)
	}
	p := testParams("broken")
	p.Backend = mem
	p.SocketPath = filepath.Join(session.Dir("broken"), "d.sock")

	app := fxtest.New(t, fx.NopLogger, Module(p))
	app.RequireStart()
	defer app.RequireStop()

	conn := dial(t, p.SocketPath)
	st, err := api.NewSessionClient(conn).GetStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !st.FromSeed || st.ChatCount == 0 {
		t.Errorf("status = %+v, want seed fallback", st)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	shortHome(t)
	p := testParams("badcfg")
	p.Config.Storage.Backend = "floppy"

	app := fx.New(fx.NopLogger, Module(p))
	if err := app.Err(); err == nil || !strings.Contains(err.Error(), "storage.backend") {
		t.Errorf("err = %v, want config validation error", err)
	}
}
