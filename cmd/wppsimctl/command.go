package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is a node of the wppsimctl command tree.
type Command struct {
	Name    string
	Summary string
	// Usage lists the positional arguments, e.g. "<chat-id> <text>".
	Usage string

	// Flags builds the command's flag set. Nil means the command takes no flags.
	Flags func(fs *pflag.FlagSet)

	Subcommands []*Command
	Run         func(args []string) error

	parent *Command
	help   io.Writer
}

var errUsage = errors.New("usage")

// Execute dispatches args down the tree and runs the matching command.
func (c *Command) Execute(args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(c.helpOut())
		return nil
	}

	if len(c.Subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		for _, sub := range c.Subcommands {
			if sub.Name == args[0] {
				sub.parent = c
				return sub.Execute(args[1:])
			}
		}
		if c.Run == nil {
			return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage", args[0], c.fullName())
		}
	}

	if c.Run == nil {
		c.PrintHelp(c.helpOut())
		return errors.New("subcommand required")
	}

	fs := c.flagSet()
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\n\nRun '%s --help' for usage", err, c.fullName())
	}
	err := c.Run(fs.Args())
	if errors.Is(err, errUsage) {
		return fmt.Errorf("usage: %s %s", c.fullName(), c.Usage)
	}
	return err
}

func (c *Command) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(c.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if c.Flags != nil {
		c.Flags(fs)
	}
	return fs
}

// PrintHelp writes the usage, subcommands and flags of c to w.
func (c *Command) PrintHelp(w io.Writer) {
	if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}
	switch {
	case c.Run != nil:
		fmt.Fprintf(w, "Usage:\n  %s [flags] %s\n", c.fullName(), c.Usage)
	default:
		fmt.Fprintf(w, "Usage:\n  %s <command>\n", c.fullName())
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		_ = tw.Flush()
	}

	if c.Flags != nil {
		var flagHelp strings.Builder
		fs := c.flagSet()
		fs.SetOutput(&flagHelp)
		fs.PrintDefaults()
		if flagHelp.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", flagHelp.String())
		}
	}
}

func (c *Command) helpOut() io.Writer {
	for n := c; n != nil; n = n.parent {
		if n.help != nil {
			return n.help
		}
	}
	return io.Discard
}

func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
