package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/tui/client"
)

func statusCommand(x *ctl) *Command {
	return &Command{
		Name:    "status",
		Summary: "Show session status",
		Run: func([]string) error {
			return x.call(func(ctx context.Context, c *client.Client) error {
				st, err := c.Session.GetStatus(ctx)
				if err != nil {
					return err
				}
				return x.emit(st, func(w io.Writer) {
					uptime := time.Duration(st.UptimeMs) * time.Millisecond
					fmt.Fprintf(w, "Session:  %s\n", st.Session)
					fmt.Fprintf(w, "Status:   %s (%s backend)\n", st.Status, st.Backend)
					fmt.Fprintf(w, "Uptime:   %s\n", uptime.Truncate(time.Second))
					fmt.Fprintf(w, "Chats:    %d (%d unread)\n", st.ChatCount, st.UnreadCount)
					fmt.Fprintf(w, "Messages: %d\n", st.MessageCount)
					fmt.Fprintf(w, "Version:  %d (saved %d)\n", st.Version, st.SavedVersion)
					fmt.Fprintf(w, "Timers:   %d pending\n", st.PendingTimers)
				})
			})
		},
	}
}

func chatsCommand(x *ctl) *Command {
	var view string
	return &Command{
		Name:    "chats",
		Summary: "List chats in roster order",
		Usage:   "[query]",
		Flags: func(fs *pflag.FlagSet) {
			fs.StringVar(&view, "view", "all", "all, unread, groups, personal, work, archived or locked")
		},
		Run: func(args []string) error {
			return x.call(func(ctx context.Context, c *client.Client) error {
				resp, err := c.Chat.ListChats(ctx, &api.ListChatsRequest{View: view, Query: strings.Join(args, " ")})
				if err != nil {
					return err
				}
				return x.emit(resp, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tTITLE\tUNREAD\tFLAGS\tLAST")
					for _, ch := range resp.Chats {
						fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", ch.ID, ch.Title, ch.Unread, chatFlags(ch, resp.ActiveChatID), lastLine(ch.LastMessage))
					}
					_ = tw.Flush()
				})
			})
		},
	}
}

func chatFlags(ch api.ChatSummary, active string) string {
	var flags []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{ch.ID == active, "active"},
		{ch.Pinned, "pinned"},
		{ch.Muted, "muted"},
		{ch.Archived, "archived"},
		{ch.Blocked, "blocked"},
		{ch.Typing, "typing"},
		{ch.Folder != "" && ch.Folder != model.FolderDefault, string(ch.Folder)},
	} {
		if f.on {
			flags = append(flags, f.name)
		}
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func lastLine(m *model.Message) string {
	if m == nil {
		return ""
	}
	text := m.Content
	if m.Type != model.Text && m.Type != model.System {
		text = "[" + string(m.Type) + "] " + text
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return humanize.Time(m.Timestamp) + "  " + text
}

func chatCommand(x *ctl) *Command {
	// chatCall wraps the many chat subcommands that take a chat ID and
	// return nothing.
	chatCall := func(name, summary, usage string, nargs int, fn func(ctx context.Context, c *client.Client, args []string) error) *Command {
		return &Command{
			Name:    name,
			Summary: summary,
			Usage:   usage,
			Run: func(args []string) error {
				if len(args) < nargs {
					return errUsage
				}
				return x.call(func(ctx context.Context, c *client.Client) error {
					if err := fn(ctx, c, args); err != nil {
						return err
					}
					return x.emit(api.Empty{}, func(w io.Writer) { fmt.Fprintln(w, "ok") })
				})
			},
		}
	}
	toggle := func(name, summary string, fn func(c *client.Client) func(context.Context, string) (bool, error)) *Command {
		return &Command{
			Name:    name,
			Summary: summary,
			Usage:   "<chat-id>",
			Run: func(args []string) error {
				if len(args) != 1 {
					return errUsage
				}
				return x.call(func(ctx context.Context, c *client.Client) error {
					on, err := fn(c)(ctx, args[0])
					if err != nil {
						return err
					}
					return x.emit(api.ToggleResponse{On: on}, func(w io.Writer) {
						fmt.Fprintf(w, "%s: %s\n", name, onOff(on))
					})
				})
			},
		}
	}
	var confirm bool

	return &Command{
		Name:    "chat",
		Summary: "Inspect and manage a single chat",
		Subcommands: []*Command{
			{
				Name:    "show",
				Summary: "Show chat details",
				Usage:   "<chat-id>",
				Run: func(args []string) error {
					if len(args) != 1 {
						return errUsage
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						d, err := c.Chat.GetChat(ctx, args[0])
						if err != nil {
							return err
						}
						return x.emit(d, func(w io.Writer) { printChat(w, d) })
					})
				},
			},
			{
				Name:    "open",
				Summary: "Open (or create) the one-to-one chat with a contact",
				Usage:   "<user-id>",
				Run: func(args []string) error {
					if len(args) != 1 {
						return errUsage
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						id, err := c.Chat.Open(ctx, args[0])
						if err != nil {
							return err
						}
						return x.emit(api.ChatRef{ChatID: id}, func(w io.Writer) { fmt.Fprintln(w, id) })
					})
				},
			},
			{
				Name:    "group",
				Summary: "Create a group chat",
				Usage:   "<name> <user-id>...",
				Run: func(args []string) error {
					if len(args) < 2 {
						return errUsage
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						id, err := c.Chat.CreateGroup(ctx, args[0], args[1:])
						if err != nil {
							return err
						}
						return x.emit(api.ChatRef{ChatID: id}, func(w io.Writer) { fmt.Fprintln(w, id) })
					})
				},
			},
			chatCall("select", "Make a chat the active chat", "<chat-id>", 1, func(ctx context.Context, c *client.Client, args []string) error {
				return c.Chat.Select(ctx, args[0])
			}),
			chatCall("deselect", "Clear the active chat", "", 0, func(ctx context.Context, c *client.Client, _ []string) error {
				return c.Chat.Deselect(ctx)
			}),
			toggle("pin", "Toggle pinned", func(c *client.Client) func(context.Context, string) (bool, error) { return c.Chat.TogglePin }),
			toggle("mute", "Toggle muted", func(c *client.Client) func(context.Context, string) (bool, error) { return c.Chat.ToggleMute }),
			toggle("archive", "Toggle archived", func(c *client.Client) func(context.Context, string) (bool, error) { return c.Chat.ToggleArchive }),
			chatCall("mute-for", "Mute for a duration, e.g. 8h", "<chat-id> <duration>", 2, func(ctx context.Context, c *client.Client, args []string) error {
				return c.Chat.MuteFor(ctx, args[0], args[1])
			}),
			chatCall("folder", "File a chat under default, personal or work", "<chat-id> <folder>", 2, func(ctx context.Context, c *client.Client, args []string) error {
				return c.Chat.SetFolder(ctx, &api.SetFolderRequest{ChatID: args[0], Folder: model.Folder(args[1])})
			}),
			chatCall("lock", "Move a chat to the locked folder", "<chat-id> <pin>", 2, func(ctx context.Context, c *client.Client, args []string) error {
				return c.Chat.Lock(ctx, args[0], args[1])
			}),
			chatCall("unlock", "Take a chat out of the locked folder", "<chat-id>", 1, func(ctx context.Context, c *client.Client, args []string) error {
				return c.Chat.Unlock(ctx, args[0])
			}),
			{
				Name:    "clear",
				Summary: "Delete every message of a chat",
				Usage:   "<chat-id>",
				Flags: func(fs *pflag.FlagSet) {
					fs.BoolVar(&confirm, "yes", false, "confirm clearing the history")
				},
				Run: func(args []string) error {
					if len(args) != 1 {
						return errUsage
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						if err := c.Chat.ClearHistory(ctx, args[0], confirm); err != nil {
							return err
						}
						return x.emit(api.Empty{}, func(w io.Writer) { fmt.Fprintln(w, "ok") })
					})
				},
			},
			chatCall("unread", "Mark a chat unread", "<chat-id>", 1, func(ctx context.Context, c *client.Client, args []string) error {
				return c.Chat.MarkUnread(ctx, args[0])
			}),
			chatCall("note", "Set the contact note", "<chat-id> [text]", 1, func(ctx context.Context, c *client.Client, args []string) error {
				return c.Chat.SetNote(ctx, args[0], strings.Join(args[1:], " "))
			}),
			chatCall("wallpaper", "Set the chat wallpaper", "<chat-id> [name]", 1, func(ctx context.Context, c *client.Client, args []string) error {
				return c.Chat.SetWallpaper(ctx, args[0], strings.Join(args[1:], " "))
			}),
			chatCall("ephemeral", "Turn disappearing messages on or off", "<chat-id> on|off", 2, func(ctx context.Context, c *client.Client, args []string) error {
				on, err := parseSwitch(args[1])
				if err != nil {
					return err
				}
				return c.Chat.SetEphemeral(ctx, args[0], on)
			}),
		},
	}
}

func printChat(w io.Writer, d *api.ChatDetail) {
	ch := d.Chat
	fmt.Fprintf(w, "Chat:     %s (%s)\n", d.Title, ch.ID)
	fmt.Fprintf(w, "Type:     %s\n", ch.Type)
	if d.Counterpart != nil {
		fmt.Fprintf(w, "Contact:  %s, %s\n", d.Counterpart.ID, presence(*d.Counterpart))
	}
	if len(d.Members) > 0 {
		names := make([]string, len(d.Members))
		for i, m := range d.Members {
			names[i] = m.Name
		}
		fmt.Fprintf(w, "Members:  %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "Messages: %d (%d unread)\n", len(ch.Messages), ch.Unread)
	if ch.Folder != "" {
		fmt.Fprintf(w, "Folder:   %s\n", ch.Folder)
	}
	if d.Muted {
		until := "indefinitely"
		if ch.MutedUntil != nil {
			until = "until " + humanize.Time(*ch.MutedUntil)
		}
		fmt.Fprintf(w, "Muted:    %s\n", until)
	}
	fmt.Fprintf(w, "Pinned:   %s\n", onOff(ch.Pinned))
	fmt.Fprintf(w, "Archived: %s\n", onOff(ch.Archived))
	fmt.Fprintf(w, "Timer:    %s\n", onOff(ch.Ephemeral))
	if d.Blocked {
		fmt.Fprintln(w, "Blocked:  yes")
	}
	if d.Typing {
		fmt.Fprintln(w, "Typing…")
	}
	if ch.Note != "" {
		fmt.Fprintf(w, "Note:     %s\n", ch.Note)
	}
}

func presence(u model.User) string {
	if u.Presence == model.Offline && !u.LastSeen.IsZero() {
		return "last seen " + humanize.Time(u.LastSeen)
	}
	return string(u.Presence)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return v, nil
}
