package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/tui/client"
	"github.com/matheus3301/wppsim/internal/tui/ui"
)

func profileCommand(x *ctl) *Command {
	var name, bio, avatar, presence string
	var receipts, enter, theme, wallpaper string
	var current string

	show := func(ctx context.Context, c *client.Client) error {
		p, err := c.Profile.GetProfile(ctx)
		if err != nil {
			return err
		}
		return x.emit(p, func(w io.Writer) { printProfile(w, p) })
	}

	return &Command{
		Name:    "profile",
		Summary: "Show or edit your profile",
		Run: func(args []string) error {
			if len(args) > 0 {
				return errUsage
			}
			return x.call(show)
		},
		Subcommands: []*Command{
			{
				Name:    "set",
				Summary: "Edit name, bio, avatar or status",
				Flags: func(fs *pflag.FlagSet) {
					fs.StringVar(&name, "name", "", "display name")
					fs.StringVar(&bio, "bio", "", "about text")
					fs.StringVar(&avatar, "avatar", "", "avatar URL")
					fs.StringVar(&presence, "status", "", "online, offline or busy")
				},
				Run: func([]string) error {
					req := &api.UpdateProfileRequest{
						Name:   optional(name),
						Bio:    optional(bio),
						Avatar: optional(avatar),
					}
					if presence != "" {
						p := model.Presence(presence)
						req.Presence = &p
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						p, err := c.Profile.UpdateProfile(ctx, req)
						if err != nil {
							return err
						}
						return x.emit(p, func(w io.Writer) { printProfile(w, p) })
					})
				},
			},
			{
				Name:    "settings",
				Summary: "Change preferences",
				Flags: func(fs *pflag.FlagSet) {
					fs.StringVar(&receipts, "receipts", "", "read receipts on|off")
					fs.StringVar(&enter, "enter-to-send", "", "enter sends the message on|off")
					fs.StringVar(&theme, "theme", "", "UI theme")
					fs.StringVar(&wallpaper, "wallpaper", "", "default wallpaper")
				},
				Run: func([]string) error {
					req := &api.UpdateSettingsRequest{Theme: optional(theme), Wallpaper: optional(wallpaper)}
					for _, sw := range []struct {
						val string
						dst **bool
					}{{receipts, &req.ReadReceipts}, {enter, &req.EnterToSend}} {
						if sw.val == "" {
							continue
						}
						on, err := parseSwitch(sw.val)
						if err != nil {
							return err
						}
						*sw.dst = &on
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						p, err := c.Profile.UpdateSettings(ctx, req)
						if err != nil {
							return err
						}
						return x.emit(p, func(w io.Writer) { printProfile(w, p) })
					})
				},
			},
			{
				Name:    "pin",
				Summary: "Set or change the chat lock PIN",
				Usage:   "<new-pin>",
				Flags: func(fs *pflag.FlagSet) {
					fs.StringVar(&current, "current", "", "current PIN, required when one is set")
				},
				Run: func(args []string) error {
					if len(args) != 1 {
						return errUsage
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						if err := c.Profile.SetPIN(ctx, current, args[0]); err != nil {
							return err
						}
						return x.emit(api.Empty{}, func(w io.Writer) { fmt.Fprintln(w, "ok") })
					})
				},
			},
			{
				Name:    "qr",
				Summary: "Print your contact card as a QR code",
				Run: func([]string) error {
					return x.call(func(ctx context.Context, c *client.Client) error {
						p, err := c.Profile.GetProfile(ctx)
						if err != nil {
							return err
						}
						card := p.Me.VCard()
						qr, err := ui.QR(card)
						if err != nil {
							return fmt.Errorf("encode contact card: %w", err)
						}
						return x.emit(struct {
							VCard string `json:"vcard"`
						}{card}, func(w io.Writer) { fmt.Fprint(w, qr) })
					})
				},
			},
		},
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func printProfile(w io.Writer, p *api.ProfileResponse) {
	me := p.Me
	fmt.Fprintf(w, "ID:       %s\n", me.ID)
	fmt.Fprintf(w, "Name:     %s\n", me.Name)
	if me.Phone != "" {
		fmt.Fprintf(w, "Phone:    %s\n", me.Phone)
	}
	if me.Bio != "" {
		fmt.Fprintf(w, "About:    %s\n", me.Bio)
	}
	fmt.Fprintf(w, "Status:   %s\n", me.Presence)
	fmt.Fprintf(w, "Receipts: %s\n", onOff(me.ReadReceipts()))
	if s := me.Settings; s != nil {
		fmt.Fprintf(w, "Enter:    %s\n", onOff(s.EnterToSend))
		if s.Theme != "" {
			fmt.Fprintf(w, "Theme:    %s\n", s.Theme)
		}
	}
	pin := "not set"
	if p.PINSet {
		pin = "set"
	}
	fmt.Fprintf(w, "PIN:      %s\n", pin)
	fmt.Fprintf(w, "Blocked:  %d\n", len(me.BlockedIDs))
}

func contactsCommand(x *ctl) *Command {
	return &Command{
		Name:    "contacts",
		Summary: "List contacts",
		Run: func([]string) error {
			return x.call(func(ctx context.Context, c *client.Client) error {
				contacts, err := c.Profile.ListContacts(ctx)
				if err != nil {
					return err
				}
				return x.emit(api.ContactsResponse{Contacts: contacts}, func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME\tPRESENCE\tCHAT\tBLOCKED")
					for _, ct := range contacts {
						chat := ct.ChatID
						if chat == "" {
							chat = "-"
						}
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ct.User.ID, ct.User.Name, presence(ct.User), chat, onOff(ct.Blocked))
					}
					_ = tw.Flush()
				})
			})
		},
	}
}

func blockCommand(x *ctl) *Command {
	var confirm bool
	return &Command{
		Name:    "block",
		Summary: "Block a contact",
		Usage:   "<user-id>",
		Flags: func(fs *pflag.FlagSet) {
			fs.BoolVar(&confirm, "yes", false, "confirm blocking")
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			return x.call(func(ctx context.Context, c *client.Client) error {
				if err := c.Profile.Block(ctx, args[0], confirm); err != nil {
					return err
				}
				return x.emit(api.Empty{}, func(w io.Writer) { fmt.Fprintln(w, "blocked") })
			})
		},
	}
}

func unblockCommand(x *ctl) *Command {
	return &Command{
		Name:    "unblock",
		Summary: "Unblock a contact",
		Usage:   "<user-id>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return errUsage
			}
			return x.call(func(ctx context.Context, c *client.Client) error {
				if err := c.Profile.Unblock(ctx, args[0]); err != nil {
					return err
				}
				return x.emit(api.Empty{}, func(w io.Writer) { fmt.Fprintln(w, "unblocked") })
			})
		},
	}
}

func storiesCommand(x *ctl) *Command {
	var all bool
	return &Command{
		Name:    "stories",
		Summary: "List stories grouped by author",
		Flags: func(fs *pflag.FlagSet) {
			fs.BoolVar(&all, "all", false, "include expired stories")
		},
		Run: func([]string) error {
			return x.call(func(ctx context.Context, c *client.Client) error {
				resp, err := c.Profile.ListStories(ctx, all)
				if err != nil {
					return err
				}
				return x.emit(resp, func(w io.Writer) {
					for _, g := range resp.Groups {
						mark := "•"
						if g.Seen {
							mark = " "
						}
						fmt.Fprintf(w, "%s %s\n", mark, g.Author.Name)
						for _, s := range g.Stories {
							fmt.Fprintf(w, "    %s  %-8s %s  (%d views, %s)\n", s.ID, s.Type, s.Content, len(s.Viewers), humanize.Time(s.Timestamp))
						}
					}
				})
			})
		},
	}
}

func storyCommand(x *ctl) *Command {
	var kind, bg string
	return &Command{
		Name:    "story",
		Summary: "Post, view or reply to stories",
		Subcommands: []*Command{
			{
				Name:    "post",
				Summary: "Post a story",
				Usage:   "<content>...",
				Flags: func(fs *pflag.FlagSet) {
					fs.StringVar(&kind, "type", string(model.StoryText), "text, image or video")
					fs.StringVar(&bg, "background", "", "background colour of a text story")
				},
				Run: func(args []string) error {
					if len(args) == 0 {
						return errUsage
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						resp, err := c.Profile.AddStory(ctx, &api.AddStoryRequest{
							Type:       model.StoryType(kind),
							Content:    strings.Join(args, " "),
							Background: bg,
						})
						if err != nil {
							return err
						}
						return x.emit(resp, func(w io.Writer) { fmt.Fprintln(w, resp.Story.ID) })
					})
				},
			},
			{
				Name:    "view",
				Summary: "Mark a story as viewed",
				Usage:   "<story-id>",
				Run: func(args []string) error {
					if len(args) != 1 {
						return errUsage
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						if err := c.Profile.ViewStory(ctx, args[0]); err != nil {
							return err
						}
						return x.emit(api.Empty{}, func(w io.Writer) { fmt.Fprintln(w, "ok") })
					})
				},
			},
			{
				Name:    "reply",
				Summary: "Reply privately to a story",
				Usage:   "<story-id> <text>...",
				Run: func(args []string) error {
					if len(args) < 2 {
						return errUsage
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						resp, err := c.Profile.ReplyStory(ctx, args[0], strings.Join(args[1:], " "))
						if err != nil {
							return err
						}
						return x.emit(resp, func(w io.Writer) { fmt.Fprintf(w, "%s in %s\n", resp.Message.ID, resp.ChatID) })
					})
				},
			},
		},
	}
}

func callCommand(x *ctl) *Command {
	var video bool
	printCall := func(resp *api.CallResponse) error {
		return x.emit(resp, func(w io.Writer) {
			fmt.Fprintf(w, "%s %s %s\n", resp.Call.ID, resp.Call.Kind, resp.Call.State)
		})
	}
	return &Command{
		Name:    "call",
		Summary: "Start or end a call",
		Subcommands: []*Command{
			{
				Name:    "start",
				Summary: "Call a contact",
				Usage:   "<user-id>",
				Flags: func(fs *pflag.FlagSet) {
					fs.BoolVar(&video, "video", false, "start a video call")
				},
				Run: func(args []string) error {
					if len(args) != 1 {
						return errUsage
					}
					kind := model.AudioCall
					if video {
						kind = model.VideoCall
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						resp, err := c.Profile.StartCall(ctx, &api.StartCallRequest{UserID: args[0], Kind: kind})
						if err != nil {
							return err
						}
						return printCall(resp)
					})
				},
			},
			{
				Name:    "end",
				Summary: "Hang up a call, the active one by default",
				Usage:   "[call-id]",
				Run: func(args []string) error {
					if len(args) > 1 {
						return errUsage
					}
					return x.call(func(ctx context.Context, c *client.Client) error {
						var id string
						if len(args) == 1 {
							id = args[0]
						} else {
							calls, err := c.Profile.ListCalls(ctx)
							if err != nil {
								return err
							}
							if calls.Active == nil {
								return errors.New("no call in progress")
							}
							id = calls.Active.ID
						}
						resp, err := c.Profile.EndCall(ctx, id)
						if err != nil {
							return err
						}
						return printCall(resp)
					})
				},
			},
		},
	}
}

func callsCommand(x *ctl) *Command {
	return &Command{
		Name:    "calls",
		Summary: "Show the call log",
		Run: func([]string) error {
			return x.call(func(ctx context.Context, c *client.Client) error {
				resp, err := c.Profile.ListCalls(ctx)
				if err != nil {
					return err
				}
				return x.emit(resp, func(w io.Writer) {
					if a := resp.Active; a != nil {
						fmt.Fprintf(w, "Active: %s %s call with %s (%s)\n\n", a.ID, a.Kind, a.PeerID, a.State)
					}
					tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tPEER\tKIND\tSTATE\tSTARTED\tDURATION")
					for _, cr := range resp.Calls {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", cr.ID, cr.PeerID, cr.Kind, cr.State, humanize.Time(cr.StartedAt), cr.Duration())
					}
					_ = tw.Flush()
				})
			})
		},
	}
}

func watchCommand(x *ctl) *Command {
	return &Command{
		Name:    "watch",
		Summary: "Stream daemon events until interrupted",
		Usage:   "[kind-prefix]",
		Run: func(args []string) error {
			if len(args) > 1 {
				return errUsage
			}
			var prefix string
			if len(args) == 1 {
				prefix = args[0]
			}
			c, err := x.connect()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stream, err := c.Chat.WatchEvents(ctx, prefix)
			if err != nil {
				return err
			}
			for {
				evt, err := stream.Recv()
				if err != nil {
					if errors.Is(err, io.EOF) || ctx.Err() != nil {
						return nil
					}
					return err
				}
				if err := x.emit(evt, func(w io.Writer) {
					fmt.Fprintf(w, "%s  %-24s %s\n", evt.OccurredAt.Local().Format("15:04:05.000"), evt.Kind, evt.Payload)
				}); err != nil {
					return err
				}
			}
		},
	}
}
