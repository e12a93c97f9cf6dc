package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/fx"

	"github.com/matheus3301/wppsim/internal/daemon"
	"github.com/matheus3301/wppsim/internal/session"
)

func main() {
	flags := pflag.NewFlagSet("wppsimd", pflag.ContinueOnError)
	sessionFlag := flags.String("session", "", "session name (overrides $WPPSIM_SESSION)")
	socketFlag := flags.String("socket", "", "socket path (default: <session dir>/daemon.sock)")
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

	app := fx.New(
		daemon.Module(daemon.Params{SessionName: sessionName, SocketPath: *socketFlag}),
	)

	app.Run()
}
