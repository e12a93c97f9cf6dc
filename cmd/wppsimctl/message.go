package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/media"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/tui/client"
)

func messagesCommand(x *ctl) *Command {
	var limit int
	return &Command{
		Name:    "messages",
		Summary: "List the messages of a chat",
		Usage:   "<chat-id>",
		Flags: func(fs *pflag.FlagSet) {
			fs.IntVarP(&limit, "limit", "n", 50, "newest messages to show, 0 for all")
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			return x.call(func(ctx context.Context, c *client.Client) error {
				msgs, err := c.Message.ListMessages(ctx, args[0], limit)
				if err != nil {
					return err
				}
				return x.emit(api.ListMessagesResponse{Messages: msgs}, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
					for _, m := range msgs {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Timestamp.Local().Format("01/02 15:04"), m.SenderID, m.Status, messageText(m))
					}
					_ = tw.Flush()
				})
			})
		},
	}
}

func messageText(m model.Message) string {
	var b strings.Builder
	if m.Forwarded {
		b.WriteString("[fwd] ")
	}
	if m.ReplyToID != "" {
		b.WriteString("↪" + m.ReplyToID + " ")
	}
	switch {
	case m.Deleted:
		b.WriteString(model.DeletedPlaceholder)
	case m.Type == model.Poll:
		b.WriteString("📊 " + m.Content + " ")
		for i, o := range m.PollOptions {
			fmt.Fprintf(&b, "[%d] %s (%d) ", i+1, o.Text, len(o.Voters))
		}
	case m.Type != model.Text && m.Type != model.System:
		fmt.Fprintf(&b, "[%s] %s", m.Type, m.Content)
	default:
		b.WriteString(strings.ReplaceAll(m.Content, "\n", " ⏎ "))
	}
	if m.Edited {
		b.WriteString(" (edited)")
	}
	if m.Starred {
		b.WriteString(" ★")
	}
	for _, r := range m.Reactions {
		fmt.Fprintf(&b, " %s%d", r.Emoji, r.Count)
	}
	return b.String()
}

func sendCommand(x *ctl) *Command {
	var replyTo, file, poll string
	return &Command{
		Name:    "send",
		Summary: "Send a message to a chat",
		Usage:   "<chat-id> <text>...",
		Flags: func(fs *pflag.FlagSet) {
			fs.StringVar(&replyTo, "reply", "", "ID of the message being replied to")
			fs.StringVar(&file, "file", "", "attach a local file; its type is detected from the content")
			fs.StringVar(&poll, "poll", "", "send a poll with these options, separated by |")
		},
		Run: func(args []string) error {
			if len(args) < 1 {
				return errUsage
			}
			req := &api.SendRequest{
				ChatID:    args[0],
				Content:   strings.Join(args[1:], " "),
				Type:      model.Text,
				ReplyToID: replyTo,
			}
			switch {
			case file != "":
				att, err := media.Classify(file)
				if err != nil {
					return err
				}
				req.Type, req.MediaURL = att.Type, att.Path
				if req.Content == "" {
					req.Content = att.MIME
				}
			case poll != "":
				req.Type = model.Poll
				for _, o := range strings.Split(poll, "|") {
					if o = strings.TrimSpace(o); o != "" {
						req.PollOptions = append(req.PollOptions, o)
					}
				}
			}
			return x.call(func(ctx context.Context, c *client.Client) error {
				resp, err := c.Message.Send(ctx, req)
				if err != nil {
					return err
				}
				return x.emit(resp, func(w io.Writer) {
					fmt.Fprintf(w, "%s %s\n", resp.Message.ID, resp.Message.Status)
				})
			})
		},
	}
}

func messageCommand(x *ctl) *Command {
	// ref wraps the subcommands that address a single message and return nothing.
	ref := func(name, summary, usage string, nargs int, fn func(ctx context.Context, c *client.Client, chatID, msgID string, rest []string) error) *Command {
		return &Command{
			Name:    name,
			Summary: summary,
			Usage:   "<chat-id> <message-id> " + usage,
			Run: func(args []string) error {
				if len(args) < 2+nargs {
					return errUsage
				}
				return x.call(func(ctx context.Context, c *client.Client) error {
					if err := fn(ctx, c, args[0], args[1], args[2:]); err != nil {
						return err
					}
					return x.emit(api.Empty{}, func(w io.Writer) { fmt.Fprintln(w, "ok") })
				})
			},
		}
	}
	flag := func(name, summary string, fn func(c *client.Client) func(ctx context.Context, chatID, msgID string) (bool, error)) *Command {
		return &Command{
			Name:    name,
			Summary: summary,
			Usage:   "<chat-id> <message-id>",
			Run: func(args []string) error {
				if len(args) != 2 {
					return errUsage
				}
				return x.call(func(ctx context.Context, c *client.Client) error {
					on, err := fn(c)(ctx, args[0], args[1])
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

	return &Command{
		Name:    "message",
		Summary: "Act on a single message",
		Subcommands: []*Command{
			ref("react", "Toggle an emoji reaction", "<emoji>", 1, func(ctx context.Context, c *client.Client, chatID, msgID string, rest []string) error {
				return c.Message.React(ctx, chatID, msgID, rest[0])
			}),
			ref("edit", "Replace the text of your own message", "<text>...", 1, func(ctx context.Context, c *client.Client, chatID, msgID string, rest []string) error {
				return c.Message.Edit(ctx, chatID, msgID, strings.Join(rest, " "))
			}),
			ref("delete", "Delete a message for everyone", "", 0, func(ctx context.Context, c *client.Client, chatID, msgID string, _ []string) error {
				return c.Message.Delete(ctx, chatID, msgID)
			}),
			ref("vote", "Vote on a poll option", "<option-id>", 1, func(ctx context.Context, c *client.Client, chatID, msgID string, rest []string) error {
				return c.Message.Vote(ctx, chatID, msgID, rest[0])
			}),
			{
				Name:    "forward",
				Summary: "Forward a message to another chat",
				Usage:   "<chat-id> <message-id> <target-chat-id>",
				Run: func(args []string) error {
					if len(args) != 3 {
						return errUsage
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						resp, err := c.Message.Forward(ctx, &api.ForwardRequest{ChatID: args[0], MessageID: args[1], TargetChatID: args[2]})
						if err != nil {
							return err
						}
						return x.emit(resp, func(w io.Writer) { fmt.Fprintln(w, resp.Message.ID) })
					})
				},
			},
			flag("star", "Toggle starred", func(c *client.Client) func(context.Context, string, string) (bool, error) { return c.Message.Star }),
			flag("pin", "Toggle the chat's pinned message", func(c *client.Client) func(context.Context, string, string) (bool, error) { return c.Message.Pin }),
		},
	}
}

func searchCommand(x *ctl) *Command {
	var (
		starred bool
		limit   int
	)
	return &Command{
		Name:    "search",
		Summary: "Search message text across chats",
		Usage:   "<query>...",
		Flags: func(fs *pflag.FlagSet) {
			fs.BoolVar(&starred, "starred", false, "list starred messages instead")
			fs.IntVarP(&limit, "limit", "n", 50, "maximum hits")
		},
		Run: func(args []string) error {
			query := strings.Join(args, " ")
			if query == "" && !starred {
				return errUsage
			}
			return x.call(func(ctx context.Context, c *client.Client) error {
				resp, err := c.Message.Search(ctx, &api.SearchRequest{Query: query, Limit: limit, Starred: starred})
				if err != nil {
					return err
				}
				return x.emit(resp, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
					for _, h := range resp.Hits {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", h.ChatTitle, h.Message.ID, humanize.Time(h.Message.Timestamp), messageText(h.Message))
					}
					_ = tw.Flush()
				})
			})
		},
	}
}

func suggestCommand(x *ctl) *Command {
	return &Command{
		Name:    "suggest",
		Summary: "Suggest replies for a chat",
		Usage:   "<chat-id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			return x.call(func(ctx context.Context, c *client.Client) error {
				replies, err := c.Message.Suggest(ctx, args[0])
				if err != nil {
					return err
				}
				return x.emit(api.SuggestResponse{Replies: replies}, func(w io.Writer) {
					for _, r := range replies {
						fmt.Fprintln(w, r)
					}
				})
			})
		},
	}
}
