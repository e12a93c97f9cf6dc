package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/media"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
)

// runCommand executes a ':' command from the prompt.
func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "":
	case "q", "quit":
		a.Stop()
	case "h", "help":
		a.push(pageHelp)
	case "chats":
		a.resetToChats()
	case "profile":
		a.push(pageProfile)
	case "updates":
		a.push(pageUpdates)
	case "chat":
		a.cmdChat(cmd.Args)
	case "new":
		a.cmdNew(cmd.Args)
	case "group":
		a.cmdGroup(cmd.Fields())
	case "view", "folderview":
		a.cmdView(cmd.Args)
	case "search":
		if cmd.Args == "" {
			a.push(pageSearch)
			return
		}
		a.runSearch(cmd.Args, false)
	case "starred":
		a.runSearch("", true)

	case "send", "reply":
		a.cmdSend(cmd)
	case "react":
		a.cmdReact(cmd.Args)
	case "edit":
		a.cmdEdit(cmd.Args)
	case "delete":
		a.withMessage(func(ctx context.Context, chatID string, m *model.Message) error {
			return a.grpc.Message.Delete(ctx, chatID, m.ID)
		})
	case "forward":
		a.cmdForward(cmd.Args)
	case "vote":
		a.cmdVote(cmd.Args)
	case "poll":
		a.cmdPoll(cmd.Args)
	case "file", "attach":
		a.cmdFile(cmd.Args)
	case "suggest":
		a.suggest()

	case "pin", "archive":
		a.toggleChat(cmd.Name)
	case "mute":
		a.cmdMute(cmd.Args)
	case "folder":
		a.cmdFolder(cmd.Args)
	case "lock":
		a.withChat(func(ctx context.Context, chatID string) error {
			return a.grpc.Chat.Lock(ctx, chatID, cmd.Args)
		})
	case "unlock":
		a.withChat(func(ctx context.Context, chatID string) error {
			return a.grpc.Chat.Unlock(ctx, chatID)
		})
	case "clear":
		if !cmd.Force {
			a.flash.Warn("Clearing history cannot be undone, use :clear! to confirm")
			return
		}
		a.withChat(func(ctx context.Context, chatID string) error {
			return a.grpc.Chat.ClearHistory(ctx, chatID, true)
		})
	case "unread":
		a.withChat(func(ctx context.Context, chatID string) error {
			return a.grpc.Chat.MarkUnread(ctx, chatID)
		})
	case "note":
		a.withChat(func(ctx context.Context, chatID string) error {
			return a.grpc.Chat.SetNote(ctx, chatID, cmd.Args)
		})
	case "wallpaper":
		a.withChat(func(ctx context.Context, chatID string) error {
			return a.grpc.Chat.SetWallpaper(ctx, chatID, cmd.Args)
		})
	case "ephemeral":
		on, err := parseOnOff(cmd.Args)
		if err != nil {
			a.flash.Warn(err.Error())
			return
		}
		a.withChat(func(ctx context.Context, chatID string) error {
			return a.grpc.Chat.SetEphemeral(ctx, chatID, on)
		})

	case "block":
		if !cmd.Force {
			a.flash.Warn("Blocking hides their messages, use :block! to confirm")
			return
		}
		a.withCounterpart(func(ctx context.Context, userID string) error {
			return a.grpc.Profile.Block(ctx, userID, true)
		})
	case "unblock":
		a.withCounterpart(func(ctx context.Context, userID string) error {
			return a.grpc.Profile.Unblock(ctx, userID)
		})
	case "call":
		kind := model.AudioCall
		if strings.EqualFold(cmd.Args, "video") {
			kind = model.VideoCall
		}
		a.withCounterpart(func(ctx context.Context, userID string) error {
			_, err := a.grpc.Profile.StartCall(ctx, &api.StartCallRequest{UserID: userID, Kind: kind})
			return err
		})
	case "hangup":
		a.cmdHangup()

	case "story":
		a.cmdStory(cmd.Args)
	case "sreply":
		a.cmdStoryReply(cmd.Args)
	case "name", "bio", "status":
		a.cmdProfile(cmd.Name, cmd.Args)
	case "receipts":
		on, err := parseOnOff(cmd.Args)
		if err != nil {
			a.flash.Warn(err.Error())
			return
		}
		a.call(func(ctx context.Context) error {
			_, err := a.grpc.Profile.UpdateSettings(ctx, &api.UpdateSettingsRequest{ReadReceipts: &on})
			return err
		})
	case "setpin":
		a.cmdSetPIN(cmd.Fields())

	default:
		a.flash.Warn(fmt.Sprintf("Unknown command %q, see :help", cmd.Name))
	}
}

// resetToChats drops every page above the chat list.
func (a *App) resetToChats() {
	if a.pages.Contains(pageChat) {
		a.call(a.vm.CloseChat)
	}
	a.components[a.pages.Current()].Stop()
	a.pages.Reset(pageChats)
	a.components[pageChats].Start()
	a.focusPage(pageChats)
}

func (a *App) cmdChat(name string) {
	if name == "" {
		a.flash.Warn("usage: chat <name>")
		return
	}
	id := a.vm.FindChat(name)
	if id == "" {
		a.flash.Warn("No chat matches " + name)
		return
	}
	a.openChat(id)
}

func (a *App) cmdNew(userID string) {
	if userID == "" {
		a.flash.Warn("usage: new <user id>")
		return
	}
	a.call(func(ctx context.Context) error {
		chatID, err := a.grpc.Chat.Open(ctx, userID)
		if err != nil {
			return err
		}
		a.openChat(chatID)
		return nil
	})
}

func (a *App) cmdGroup(args []string) {
	if len(args) < 2 {
		a.flash.Warn("usage: group <name> <id,id,...>")
		return
	}
	name := strings.Join(args[:len(args)-1], " ")
	var members []string
	for _, id := range strings.Split(args[len(args)-1], ",") {
		if id = strings.TrimSpace(id); id != "" {
			members = append(members, id)
		}
	}
	a.call(func(ctx context.Context) error {
		chatID, err := a.grpc.Chat.CreateGroup(ctx, name, members)
		if err != nil {
			return err
		}
		a.openChat(chatID)
		return nil
	})
}

func (a *App) cmdView(name string) {
	v, err := roster.ParseView(strings.ToLower(name))
	if err != nil {
		a.flash.Warn(err.Error())
		return
	}
	a.vm.SetView(v)
	a.resetToChats()
	a.flash.Info("Folder: " + string(v))
	a.updateCrumbs(a.pages.Stack())
	a.vm.Invalidate()
}

func (a *App) cmdSend(cmd Command) {
	chatID := a.vm.ActiveChatID()
	if chatID == "" || cmd.Args == "" {
		a.flash.Warn("usage: " + cmd.Name + " <text> (in an open chat)")
		return
	}
	var replyTo string
	if cmd.Name == "reply" {
		m := a.thread.Selected()
		if m == nil {
			a.flash.Warn("Select a message first (j/k)")
			return
		}
		replyTo = m.ID
	}
	a.call(func(ctx context.Context) error {
		_, err := a.grpc.Message.Send(ctx, &api.SendRequest{
			ChatID:    chatID,
			Content:   cmd.Args,
			Type:      model.Text,
			ReplyToID: replyTo,
		})
		return err
	})
}

func (a *App) cmdReact(emoji string) {
	if emoji == "" {
		emoji = "👍"
	}
	a.withMessage(func(ctx context.Context, chatID string, m *model.Message) error {
		return a.grpc.Message.React(ctx, chatID, m.ID, emoji)
	})
}

func (a *App) cmdEdit(text string) {
	if text == "" {
		a.flash.Warn("usage: edit <text>")
		return
	}
	a.withMessage(func(ctx context.Context, chatID string, m *model.Message) error {
		return a.grpc.Message.Edit(ctx, chatID, m.ID, text)
	})
}

func (a *App) cmdForward(target string) {
	targetID := a.vm.FindChat(target)
	if targetID == "" {
		a.flash.Warn("No chat matches " + target)
		return
	}
	a.withMessage(func(ctx context.Context, chatID string, m *model.Message) error {
		_, err := a.grpc.Message.Forward(ctx, &api.ForwardRequest{
			ChatID:       chatID,
			MessageID:    m.ID,
			TargetChatID: targetID,
		})
		if err == nil {
			a.flash.Info("Forwarded")
		}
		return err
	})
}

func (a *App) cmdVote(arg string) {
	n, err := parseIndex(arg)
	if err != nil {
		a.flash.Warn(err.Error())
		return
	}
	a.withMessage(func(ctx context.Context, chatID string, m *model.Message) error {
		if m.Type != model.Poll {
			return errors.New("selected message is not a poll")
		}
		if n > len(m.PollOptions) {
			return fmt.Errorf("poll has %d options", len(m.PollOptions))
		}
		return a.grpc.Message.Vote(ctx, chatID, m.ID, m.PollOptions[n-1].ID)
	})
}

func (a *App) cmdPoll(args string) {
	question, options, err := parsePoll(args)
	if err != nil {
		a.flash.Warn(err.Error())
		return
	}
	chatID := a.vm.ActiveChatID()
	if chatID == "" {
		a.flash.Warn("Open a chat first")
		return
	}
	a.call(func(ctx context.Context) error {
		_, err := a.grpc.Message.Send(ctx, &api.SendRequest{
			ChatID:      chatID,
			Content:     question,
			Type:        model.Poll,
			PollOptions: options,
		})
		return err
	})
}

func (a *App) cmdFile(path string) {
	chatID := a.vm.ActiveChatID()
	if chatID == "" || path == "" {
		a.flash.Warn("usage: file <path> (in an open chat)")
		return
	}
	att, err := media.Classify(path)
	if err != nil {
		a.flash.Err(err)
		return
	}
	a.call(func(ctx context.Context) error {
		_, err := a.grpc.Message.Send(ctx, &api.SendRequest{
			ChatID:   chatID,
			Content:  att.MIME,
			Type:     att.Type,
			MediaURL: att.Path,
		})
		return err
	})
}

func (a *App) cmdMute(arg string) {
	if arg == "" {
		a.toggleChat("mute")
		return
	}
	d, err := muteDuration(arg)
	if err != nil {
		a.flash.Warn(err.Error())
		return
	}
	a.withChat(func(ctx context.Context, chatID string) error {
		if err := a.grpc.Chat.MuteFor(ctx, chatID, d); err != nil {
			return err
		}
		a.flash.Info("Muted for " + arg)
		return nil
	})
}

func (a *App) cmdFolder(name string) {
	folder := model.Folder(strings.ToLower(name))
	switch folder {
	case model.FolderDefault, model.FolderPersonal, model.FolderWork:
	case "", "none":
		folder = model.FolderDefault
	default:
		a.flash.Warn("usage: folder default|personal|work (use :lock for locked)")
		return
	}
	a.withChat(func(ctx context.Context, chatID string) error {
		return a.grpc.Chat.SetFolder(ctx, &api.SetFolderRequest{ChatID: chatID, Folder: folder})
	})
}

// withCounterpart resolves the other participant of the target
// one-to-one chat.
func (a *App) withCounterpart(fn func(ctx context.Context, userID string) error) {
	a.withChat(func(ctx context.Context, chatID string) error {
		detail, err := a.grpc.Chat.GetChat(ctx, chatID)
		if err != nil {
			return err
		}
		if detail.Counterpart == nil {
			return errors.New("not a one-to-one chat")
		}
		return fn(ctx, detail.Counterpart.ID)
	})
}

func (a *App) cmdHangup() {
	a.call(func(ctx context.Context) error {
		calls, err := a.grpc.Profile.ListCalls(ctx)
		if err != nil {
			return err
		}
		if calls.Active == nil {
			return errors.New("no call in progress")
		}
		_, err = a.grpc.Profile.EndCall(ctx, calls.Active.ID)
		return err
	})
}

func (a *App) cmdStory(text string) {
	if text == "" {
		a.flash.Warn("usage: story <text>")
		return
	}
	a.call(func(ctx context.Context) error {
		_, err := a.grpc.Profile.AddStory(ctx, &api.AddStoryRequest{Type: model.StoryText, Content: text})
		if err == nil {
			a.flash.Info("Story posted")
		}
		return err
	})
}

func (a *App) cmdStoryReply(args string) {
	idx, text, _ := strings.Cut(args, " ")
	n, err := parseIndex(idx)
	if err != nil || strings.TrimSpace(text) == "" {
		a.flash.Warn("usage: sreply <n> <text>")
		return
	}
	s, ok := a.updates.StoryByIndex(n)
	if !ok {
		a.flash.Warn("No story " + strconv.Itoa(n))
		return
	}
	a.call(func(ctx context.Context) error {
		_, err := a.grpc.Profile.ReplyStory(ctx, s.ID, strings.TrimSpace(text))
		if err == nil {
			a.flash.Info("Reply sent")
		}
		return err
	})
}

func (a *App) cmdProfile(field, value string) {
	req := &api.UpdateProfileRequest{}
	switch field {
	case "name":
		if value == "" {
			a.flash.Warn("usage: name <name>")
			return
		}
		req.Name = &value
	case "bio":
		req.Bio = &value
	case "status":
		p := model.Presence(strings.ToLower(value))
		switch p {
		case model.Online, model.Offline, model.Busy:
		default:
			a.flash.Warn("usage: status online|offline|busy")
			return
		}
		req.Presence = &p
	}
	a.call(func(ctx context.Context) error {
		_, err := a.grpc.Profile.UpdateProfile(ctx, req)
		return err
	})
}

func (a *App) cmdSetPIN(args []string) {
	if len(args) == 0 || len(args) > 2 {
		a.flash.Warn("usage: setpin <new> [current]")
		return
	}
	next, current := args[0], ""
	if len(args) == 2 {
		current = args[1]
	}
	a.call(func(ctx context.Context) error {
		if err := a.grpc.Profile.SetPIN(ctx, current, next); err != nil {
			return err
		}
		a.flash.Info("PIN updated")
		return nil
	})
}

func joinQuoted(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, ", ")
}
