package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/matheus3301/wppsim/internal/session"
	"github.com/matheus3301/wppsim/internal/tui"
	"github.com/matheus3301/wppsim/internal/tui/client"
)

const (
	daemonBinary = "wppsimd"
	startTimeout = 10 * time.Second
)

func main() {
	flags := pflag.NewFlagSet("wppsim", pflag.ContinueOnError)
	sessionFlag := flags.String("session", "", "session name (overrides $WPPSIM_SESSION)")
	noStart := flags.Bool("no-start", false, "do not start wppsimd when it is not running")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	c, err := client.New(session.SocketPath(sessionName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to daemon: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	if !probe(c) {
		if *noStart {
			fmt.Fprintf(os.Stderr, "daemon not running for session %q\n", sessionName)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "daemon not running for session %q, starting...\n", sessionName)
		if err := startDaemon(sessionName); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
			os.Exit(1)
		}
		if !waitForDaemon(c, startTimeout) {
			fmt.Fprintf(os.Stderr, "daemon did not become ready, see %s\n", session.LogPath(sessionName))
			os.Exit(1)
		}
	}

	app := tui.NewApp(c, sessionName)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// probe checks that the daemon answers a real RPC, not just that the socket exists.
func probe(c *client.Client) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.Ping(ctx) == nil
}

// startDaemon launches wppsimd from next to this executable, falling back to $PATH.
func startDaemon(sessionName string) error {
	bin := daemonBinary
	if exe, err := os.Executable(); err == nil {
		if p := filepath.Join(filepath.Dir(exe), daemonBinary); fileExists(p) {
			bin = p
		}
	}
	cmd := exec.Command(bin, "--session", sessionName)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	// The daemon outlives the TUI.
	return cmd.Process.Release()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func waitForDaemon(c *client.Client, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probe(c) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
