package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DefaultSession = "work"
	cfg.Simulation.DeliverAfter = Duration{200 * time.Millisecond}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultSession != "work" {
		t.Errorf("DefaultSession = %q, want %q", loaded.DefaultSession, "work")
	}
	if loaded.Simulation.DeliverAfter.Duration != 200*time.Millisecond {
		t.Errorf("DeliverAfter = %v", loaded.Simulation.DeliverAfter)
	}
}

func TestLoadMissingGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Simulation.ReadAfter.Duration != 2500*time.Millisecond {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := "log_level = \"debug\"\n[simulation]\nread_after = \"3s\"\nauto_replies = [\"ok\", \"later\"]\n"
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" || cfg.Simulation.ReadAfter.Duration != 3*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Simulation.DeliverAfter.Duration != time.Second {
		t.Errorf("deliver_after default lost: %v", cfg.Simulation.DeliverAfter)
	}
	if len(cfg.Simulation.AutoReplies) != 2 {
		t.Errorf("auto replies = %v", cfg.Simulation.AutoReplies)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad backend", "[storage]\nbackend = \"floppy\"\n", "storage.backend"},
		{"redis without url", "[storage]\nbackend = \"redis\"\n", "redis_url"},
		{"bad level", "log_level = \"loud\"\n", "log_level"},
		{"zero delay", "[simulation]\ndeliver_after = \"0s\"\n", "deliver_after"},
		{"read before deliver", "[simulation]\ndeliver_after = \"3s\"\nread_after = \"1s\"\n", "read_after"},
		{"typing order", "[simulation]\ntyping_start_after = \"5s\"\ntyping_stop_after = \"4s\"\n", "typing_stop_after"},
		{"bad endpoint", "[suggest]\nendpoint = \"not a url\"\n", "endpoint"},
		{"blank reply", "[simulation]\nauto_replies = [\"\"]\n", "auto_replies"},
		{"bad duration", "[simulation]\nread_after = \"soon\"\n", "invalid duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.doc), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestSavePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := Save(path, &Config{DefaultSession: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadEnv(filepath.Join(dir, ".env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("WPPSIM_TEST_KEY=sk-from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WPPSIM_TEST_KEY", "")
	os.Unsetenv("WPPSIM_TEST_KEY")
	if err := LoadEnv(path); err != nil {
		t.Fatal(err)
	}
	s := Suggest{APIKeyEnv: "WPPSIM_TEST_KEY"}
	if got := s.APIKey(); got != "sk-from-file" {
		t.Errorf("APIKey() = %q", got)
	}
}
