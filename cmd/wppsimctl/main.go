package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/grpc/status"

	"github.com/matheus3301/wppsim/internal/session"
	"github.com/matheus3301/wppsim/internal/tui/client"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", describe(err))
		os.Exit(1)
	}
}

// ctl carries the global flags and the lazily dialed daemon connection.
type ctl struct {
	session string
	json    bool
	timeout time.Duration
	out     io.Writer

	client *client.Client
}

func run(args []string, stdout, stderr io.Writer) error {
	x := &ctl{out: stdout}

	flags := pflag.NewFlagSet("wppsimctl", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.SetOutput(io.Discard)
	flags.StringVar(&x.session, "session", "", "session name (overrides $WPPSIM_SESSION)")
	flags.BoolVar(&x.json, "json", false, "output in JSON format")
	flags.DurationVar(&x.timeout, "timeout", 10*time.Second, "per-call timeout")
	if err := flags.Parse(args); err != nil {
		return err
	}

	root := newRoot(x)
	root.help = stderr
	defer x.close()
	return root.Execute(flags.Args())
}

func newRoot(x *ctl) *Command {
	return &Command{
		Name:    "wppsimctl",
		Summary: "Control a running wppsimd session.",
		Subcommands: []*Command{
			statusCommand(x),
			chatsCommand(x),
			chatCommand(x),
			messagesCommand(x),
			sendCommand(x),
			messageCommand(x),
			searchCommand(x),
			suggestCommand(x),
			profileCommand(x),
			contactsCommand(x),
			blockCommand(x),
			unblockCommand(x),
			storiesCommand(x),
			storyCommand(x),
			callCommand(x),
			callsCommand(x),
			watchCommand(x),
		},
	}
}

func (x *ctl) connect() (*client.Client, error) {
	if x.client != nil {
		return x.client, nil
	}
	name := session.Resolve(x.session)
	if err := session.ValidateName(name); err != nil {
		return nil, err
	}
	c, err := client.New(session.SocketPath(name))
	if err != nil {
		return nil, fmt.Errorf("connect to daemon for session %q: %w", name, err)
	}
	x.client = c
	return c, nil
}

func (x *ctl) close() {
	if x.client != nil {
		_ = x.client.Close()
	}
}

// call connects and runs fn under the per-call timeout.
func (x *ctl) call(fn func(ctx context.Context, c *client.Client) error) error {
	c, err := x.connect()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), x.timeout)
	defer cancel()
	return fn(ctx, c)
}

// emit prints v as JSON with --json, otherwise runs human.
func (x *ctl) emit(v any, human func(w io.Writer)) error {
	if x.json {
		return outputJSON(x.out, v)
	}
	human(x.out)
	return nil
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// describe strips the gRPC envelope from daemon errors.
func describe(err error) string {
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) {
		st := se.GRPCStatus()
		return fmt.Sprintf("%s (%s)", st.Message(), st.Code())
	}
	return err.Error()
}
