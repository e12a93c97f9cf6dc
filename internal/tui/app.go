package tui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/bus"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/tui/client"
	"github.com/matheus3301/wppsim/internal/tui/keys"
	vmodel "github.com/matheus3301/wppsim/internal/tui/model"
	"github.com/matheus3301/wppsim/internal/tui/ui"
	"github.com/matheus3301/wppsim/internal/tui/views"
)

const (
	pageChats   = "chats"
	pageChat    = "chat"
	pageInfo    = "info"
	pageSearch  = "search"
	pageProfile = "profile"
	pageUpdates = "updates"
	pageHelp    = "help"

	callTimeout     = 5 * time.Second
	refreshInterval = 5 * time.Second
	watchRetry      = 2 * time.Second
)

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	vm       *vmodel.ViewModel
	grpc     *client.Client
	registry *keys.Registry
	session  string

	main        *tview.Flex
	pages       *ui.Pages
	sessionInfo *ui.SessionInfo
	menu        *ui.Menu
	crumbs      *ui.Crumbs
	prompt      *ui.Prompt
	flash       *ui.FlashModel
	flashBar    *ui.FlashBar

	chatList *views.ConversationList
	thread   *views.MessageThread
	info     *views.ConversationInfo
	searchV  *views.SearchView
	profile  *views.ProfileView
	updates  *views.UpdatesView
	help     *views.HelpView

	components map[string]ui.Component

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(c *client.Client, sessionName string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:         tview.NewApplication(),
		theme:       theme,
		vm:          vmodel.NewViewModel(c),
		grpc:        c,
		registry:    keys.NewRegistry(),
		session:     sessionName,
		pages:       ui.NewPages(),
		sessionInfo: ui.NewSessionInfo(theme),
		menu:        ui.NewMenu(theme),
		crumbs:      ui.NewCrumbs(theme),
		prompt:      ui.NewPrompt(theme),
		flash:       ui.NewFlashModel(),
		flashBar:    ui.NewFlashBar(theme),
		chatList:    views.NewConversationList(theme),
		thread:      views.NewMessageThread(theme),
		info:        views.NewConversationInfo(theme),
		searchV:     views.NewSearchView(theme),
		profile:     views.NewProfileView(theme),
		updates:     views.NewUpdatesView(theme),
		help:        views.NewHelpView(theme),
		ctx:         ctx,
		cancel:      cancel,
	}

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	r := a.registry
	r.AddGlobal("command", &keys.Action{
		Key: tcell.KeyRune, Rune: ':', Description: "Command", Visible: true,
		Handler: func() { a.activatePrompt(ui.PromptCommand) },
	})
	r.AddGlobal("filter", &keys.Action{
		Key: tcell.KeyRune, Rune: '/', Description: "Filter", Visible: true,
		Handler: a.showFilter,
	})
	r.AddGlobal("help", &keys.Action{
		Key: tcell.KeyRune, Rune: '?', Description: "Help", Visible: true,
		Handler: func() { a.push(pageHelp) },
	})
	r.AddGlobal("back", &keys.Action{
		Key: tcell.KeyRune, Rune: 'q', Description: "Back/Quit", Visible: true,
		Handler: a.back,
	})

	// Chat list.
	r.AddView(pageChats, "open", &keys.Action{Key: tcell.KeyEnter, Handler: func() {
		if id := a.chatList.SelectedChat(); id != "" {
			a.openChat(id)
		}
	}})
	r.AddView(pageChats, "next-folder", &keys.Action{Key: tcell.KeyTab, Handler: func() { a.cycleFolder(1) }})
	r.AddView(pageChats, "prev-folder", &keys.Action{Key: tcell.KeyBacktab, Handler: func() { a.cycleFolder(-1) }})
	r.AddView(pageChats, "pin", &keys.Action{Key: tcell.KeyRune, Rune: 'p', Handler: func() { a.toggleChat("pin") }})
	r.AddView(pageChats, "mute", &keys.Action{Key: tcell.KeyRune, Rune: 'm', Handler: func() { a.toggleChat("mute") }})
	r.AddView(pageChats, "archive", &keys.Action{Key: tcell.KeyRune, Rune: 'a', Handler: func() { a.toggleChat("archive") }})
	r.AddView(pageChats, "unread", &keys.Action{Key: tcell.KeyRune, Rune: 'u', Handler: func() {
		a.withChat(func(ctx context.Context, chatID string) error {
			return a.grpc.Chat.MarkUnread(ctx, chatID)
		})
	}})
	r.AddView(pageChats, "updates", &keys.Action{Key: tcell.KeyRune, Rune: 'U', Handler: func() { a.push(pageUpdates) }})
	r.AddView(pageChats, "profile", &keys.Action{Key: tcell.KeyRune, Rune: 'P', Handler: func() { a.push(pageProfile) }})

	// Thread.
	r.AddView(pageChat, "compose", &keys.Action{Key: tcell.KeyRune, Rune: 'i', Handler: func() {
		a.app.SetFocus(a.thread.Composer())
	}})
	r.AddView(pageChat, "down", &keys.Action{Key: tcell.KeyRune, Rune: 'j', Handler: func() { a.thread.MoveCursor(1) }})
	r.AddView(pageChat, "up", &keys.Action{Key: tcell.KeyRune, Rune: 'k', Handler: func() { a.thread.MoveCursor(-1) }})
	r.AddView(pageChat, "down-arrow", &keys.Action{Key: tcell.KeyDown, Handler: func() { a.thread.MoveCursor(1) }})
	r.AddView(pageChat, "up-arrow", &keys.Action{Key: tcell.KeyUp, Handler: func() { a.thread.MoveCursor(-1) }})
	r.AddView(pageChat, "reply", &keys.Action{Key: tcell.KeyRune, Rune: 'r', Handler: func() {
		if m := a.thread.Selected(); m != nil {
			a.thread.SetReplyTo(m)
			a.app.SetFocus(a.thread.Composer())
		}
	}})
	r.AddView(pageChat, "star", &keys.Action{Key: tcell.KeyRune, Rune: 's', Handler: func() {
		a.withMessage(func(ctx context.Context, chatID string, m *model.Message) error {
			on, err := a.grpc.Message.Star(ctx, chatID, m.ID)
			if err == nil {
				a.flash.Info(onOff("Starred", "Unstarred", on))
			}
			return err
		})
	}})
	r.AddView(pageChat, "pin-message", &keys.Action{Key: tcell.KeyRune, Rune: 'P', Handler: func() {
		a.withMessage(func(ctx context.Context, chatID string, m *model.Message) error {
			on, err := a.grpc.Message.Pin(ctx, chatID, m.ID)
			if err == nil {
				a.flash.Info(onOff("Message pinned", "Message unpinned", on))
			}
			return err
		})
	}})
	r.AddView(pageChat, "react", &keys.Action{Key: tcell.KeyRune, Rune: '+', Handler: func() {
		a.withMessage(func(ctx context.Context, chatID string, m *model.Message) error {
			return a.grpc.Message.React(ctx, chatID, m.ID, "👍")
		})
	}})
	r.AddView(pageChat, "edit", &keys.Action{Key: tcell.KeyRune, Rune: 'e', Handler: func() {
		if m := a.thread.Selected(); m != nil {
			a.activatePrompt(ui.PromptCommand)
			a.prompt.SetText("edit " + m.Content)
		}
	}})
	r.AddView(pageChat, "delete", &keys.Action{Key: tcell.KeyRune, Rune: 'D', Handler: func() {
		a.withMessage(func(ctx context.Context, chatID string, m *model.Message) error {
			return a.grpc.Message.Delete(ctx, chatID, m.ID)
		})
	}})
	r.AddView(pageChat, "details", &keys.Action{Key: tcell.KeyRune, Rune: 'd', Handler: func() {
		a.info.Update(a.vm.Active())
		a.push(pageInfo)
	}})
	r.AddView(pageChat, "suggest", &keys.Action{Key: tcell.KeyRune, Rune: 'g', Handler: a.suggest})
}

func (a *App) setupCallbacks() {
	a.chatList.SetSelectedFunc(func(row, _ int) {
		if id := a.chatList.ChatByIndex(row); id != "" {
			a.openChat(id)
		}
	})

	a.thread.SetOnSend(func(text, replyTo string) {
		chatID := a.thread.ChatID()
		if chatID == "" {
			return
		}
		a.call(func(ctx context.Context) error {
			_, err := a.grpc.Message.Send(ctx, &api.SendRequest{
				ChatID:    chatID,
				Content:   text,
				Type:      model.Text,
				ReplyToID: replyTo,
			})
			return err
		})
	})

	a.searchV.SetOnQuery(func(query string) {
		a.runSearch(query, false)
	})
	a.searchV.Results().SetSelectedFunc(func(int, int) {
		if chatID, _ := a.searchV.SelectedResult(); chatID != "" {
			a.openChat(chatID)
		}
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		case ui.PromptFilter:
			a.vm.SetQuery(text)
			a.vm.Invalidate()
		}
	})
	a.prompt.SetOnCancel(a.hidePrompt)

	a.pages.SetOnChange(func(stack []string) {
		a.updateCrumbs(stack)
		a.updateMenu()
	})
}

func (a *App) updateCrumbs(stack []string) {
	trail := make([]ui.Crumb, len(stack))
	for i, n := range stack {
		trail[i] = ui.Crumb{Label: a.components[n].Name()}
		if n == pageChats {
			if v := a.vm.View(); v != roster.ViewAll {
				trail[i].Badge = string(v)
			}
		}
	}
	a.crumbs.Update(trail)
}

func (a *App) setupLayout() {
	a.components = map[string]ui.Component{
		pageChats:   a.chatList,
		pageChat:    a.thread,
		pageInfo:    a.info,
		pageSearch:  a.searchV,
		pageProfile: a.profile,
		pageUpdates: a.updates,
		pageHelp:    a.help,
	}
	for name, p := range map[string]tview.Primitive{
		pageChats:   a.chatList,
		pageChat:    a.thread,
		pageInfo:    a.info,
		pageSearch:  a.searchV,
		pageProfile: a.profile,
		pageUpdates: a.updates,
		pageHelp:    a.help,
	} {
		a.pages.AddPage(name, p, true, false)
		a.components[name].Init()
	}

	header := tview.NewFlex().
		AddItem(a.sessionInfo, 0, 1, false).
		AddItem(a.menu, 0, 2, false).
		AddItem(ui.NewLogo(a.theme), 22, 0, false)

	a.main = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 6, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)

	a.app.SetRoot(a.main, true)
	a.pages.Reset(pageChats)

	a.app.SetInputCapture(a.handleKey)
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	page := a.pages.Current()

	// Text inputs keep their keys; Esc leaves the composer.
	switch field := a.app.GetFocus().(type) {
	case *ui.Prompt:
		return ev
	case *tview.InputField:
		if field == a.thread.Composer() && ev.Key() == tcell.KeyEscape {
			a.thread.SetReplyTo(nil)
			a.app.SetFocus(a.thread.Messages())
			return nil
		}
		if field == a.searchV.Input() && ev.Key() == tcell.KeyEscape {
			a.back()
			return nil
		}
		return ev
	}

	if ev.Key() == tcell.KeyEscape {
		a.back()
		return nil
	}

	if ev.Key() == tcell.KeyRune && ev.Rune() >= '0' && ev.Rune() <= '9' {
		n := int(ev.Rune() - '0')
		switch page {
		case pageChats:
			if n == 0 {
				a.vm.SetQuery("")
				a.vm.Invalidate()
			} else if id := a.chatList.ChatByIndex(n); id != "" {
				a.openChat(id)
			}
			return nil
		case pageUpdates:
			a.viewStory(n)
			return nil
		}
	}

	if a.registry.HandleEvent(page, ev) {
		return nil
	}
	return ev
}

func (a *App) updateMenu() {
	comp, ok := a.components[a.pages.Current()]
	if !ok {
		return
	}
	a.menu.Update(append(comp.Hints(), a.registry.Hints("")...))
}

func (a *App) push(page string) {
	if a.pages.Current() == page {
		return
	}
	if comp, ok := a.components[a.pages.Current()]; ok {
		comp.Stop()
	}
	a.pages.Push(page)
	a.components[page].Start()
	a.focusPage(page)

	switch page {
	case pageProfile, pageUpdates:
		a.vm.Invalidate()
	case pageSearch:
		a.searchV.Reset()
	}
}

func (a *App) focusPage(page string) {
	switch page {
	case pageChat:
		a.app.SetFocus(a.thread.Messages())
	case pageSearch:
		a.app.SetFocus(a.searchV.Input())
	default:
		if p, ok := a.components[page].(tview.Primitive); ok {
			a.app.SetFocus(p)
		}
	}
}

// back clears the thread selection, then pops a page, then quits.
func (a *App) back() {
	page := a.pages.Current()
	if page == pageChat && a.thread.ClearSelection() {
		return
	}
	if a.pages.Depth() <= 1 {
		if page == pageChats && a.vm.Query() != "" {
			a.vm.SetQuery("")
			a.vm.Invalidate()
			return
		}
		a.Stop()
		return
	}
	a.components[page].Stop()
	a.pages.Pop()
	if page == pageChat && !a.pages.Contains(pageChat) {
		go func() {
			ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
			defer cancel()
			_ = a.vm.CloseChat(ctx)
			a.vm.Invalidate()
		}()
	}
	cur := a.pages.Current()
	a.components[cur].Start()
	a.focusPage(cur)
}

func (a *App) activatePrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.main.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.main.ResizeItem(a.prompt, 0, 0)
	a.focusPage(a.pages.Current())
}

func (a *App) showFilter() {
	if a.pages.Current() != pageChats {
		a.push(pageSearch)
		return
	}
	a.activatePrompt(ui.PromptFilter)
}

func (a *App) cycleFolder(step int) {
	v := a.vm.CycleView(step)
	a.flash.Info("Folder: " + string(v))
	a.updateCrumbs(a.pages.Stack())
	a.vm.Invalidate()
}

func (a *App) openChat(chatID string) {
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		defer cancel()
		if err := a.vm.OpenChat(ctx, chatID); err != nil {
			a.flash.Err(err)
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.thread.Update(a.vm.Active(), a.vm.Messages())
			if a.pages.Current() == pageSearch && !a.pages.Contains(pageChat) {
				// A search hit takes the place of the results page.
				a.components[pageSearch].Stop()
				a.pages.Replace(pageChat)
				a.components[pageChat].Start()
				a.focusPage(pageChat)
			} else {
				a.push(pageChat)
			}
			a.updateMenu()
		})
		a.vm.Invalidate()
	}()
}

// targetChat is the open chat, or the highlighted row of the chat list.
func (a *App) targetChat() string {
	if a.pages.Current() == pageChats {
		return a.chatList.SelectedChat()
	}
	return a.vm.ActiveChatID()
}

// call runs fn against the daemon off the UI goroutine, flashes a failure
// and schedules a refresh.
func (a *App) call(fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			a.flash.Err(err)
		}
		a.vm.Invalidate()
	}()
}

func (a *App) withChat(fn func(ctx context.Context, chatID string) error) {
	chatID := a.targetChat()
	if chatID == "" {
		a.flash.Warn("No chat selected")
		return
	}
	a.call(func(ctx context.Context) error { return fn(ctx, chatID) })
}

func (a *App) withMessage(fn func(ctx context.Context, chatID string, m *model.Message) error) {
	chatID := a.vm.ActiveChatID()
	m := a.thread.Selected()
	if chatID == "" || m == nil {
		a.flash.Warn("Select a message first (j/k)")
		return
	}
	msg := *m
	a.call(func(ctx context.Context) error { return fn(ctx, chatID, &msg) })
}

func (a *App) toggleChat(what string) {
	a.withChat(func(ctx context.Context, chatID string) error {
		var (
			on  bool
			err error
		)
		switch what {
		case "pin":
			on, err = a.grpc.Chat.TogglePin(ctx, chatID)
		case "mute":
			on, err = a.grpc.Chat.ToggleMute(ctx, chatID)
		case "archive":
			on, err = a.grpc.Chat.ToggleArchive(ctx, chatID)
		}
		if err == nil {
			a.flash.Info(onOff("Chat "+what+" on", "Chat "+what+" off", on))
		}
		return err
	})
}

func (a *App) suggest() {
	chatID := a.vm.ActiveChatID()
	if chatID == "" {
		return
	}
	a.flash.Info("Asking for suggestions…")
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, 15*time.Second)
		defer cancel()
		replies, err := a.grpc.Message.Suggest(ctx, chatID)
		if err != nil {
			a.flash.Err(err)
			return
		}
		if len(replies) == 0 {
			a.flash.Warn("No suggestions")
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.thread.SetDraft(replies[0])
			a.app.SetFocus(a.thread.Composer())
		})
		if len(replies) > 1 {
			a.flash.Info("Also: " + joinQuoted(replies[1:]))
		}
	}()
}

func (a *App) runSearch(query string, starred bool) {
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		defer cancel()
		hits, err := a.vm.Search(ctx, query, starred)
		if err != nil {
			a.flash.Err(err)
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.push(pageSearch)
			a.searchV.Update(query, starred, hits)
			a.app.SetFocus(a.searchV.Results())
		})
	}()
}

func (a *App) viewStory(n int) {
	s, ok := a.updates.StoryByIndex(n)
	if !ok {
		return
	}
	a.call(func(ctx context.Context) error {
		if err := a.grpc.Profile.ViewStory(ctx, s.ID); err != nil {
			return err
		}
		a.flash.Info("Story: " + s.Content)
		return nil
	})
}

// Run starts the TUI application.
func (a *App) Run() error {
	go a.refreshLoop()
	go a.watchEvents()
	go a.flashLoop()
	a.flash.Info("Session " + a.session)
	a.vm.Invalidate()
	return a.app.Run()
}

func (a *App) refreshLoop() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.vm.RefreshCh():
		case <-ticker.C:
		case <-a.ctx.Done():
			return
		}
		a.reload()
	}
}

func (a *App) reload() {
	ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
	defer cancel()

	if err := a.vm.LoadStatus(ctx); err != nil {
		a.flash.Err(err)
		return
	}
	for _, load := range []func(context.Context) error{
		a.vm.LoadProfile,
		a.vm.LoadChats,
		a.vm.ReloadActive,
		a.vm.LoadUpdates,
	} {
		if err := load(ctx); err != nil {
			a.flash.Err(err)
			break
		}
	}

	a.app.QueueUpdateDraw(a.render)
}

func (a *App) render() {
	me := ""
	if p := a.vm.Profile(); p != nil {
		me = p.Me.Name
		a.thread.SetSelf(p.Me.ID)
	}
	if st := a.vm.Status(); st != nil {
		a.sessionInfo.Update(&ui.SessionData{
			Session:  st.Session,
			Me:       me,
			Backend:  st.Backend,
			Status:   st.Status,
			Chats:    st.ChatCount,
			Messages: st.MessageCount,
			Unread:   st.UnreadCount,
			Uptime:   time.Duration(st.UptimeMs) * time.Millisecond,
		})
	}

	row, _ := a.chatList.GetSelection()
	selected := a.chatList.ChatByIndex(row)
	a.chatList.Update(a.vm.Chats(), a.vm.View(), a.vm.Query())
	if selected != "" {
		a.chatList.SelectChat(selected)
	}

	if a.vm.ActiveChatID() != "" {
		a.thread.Update(a.vm.Active(), a.vm.Messages())
		if a.pages.Current() == pageInfo {
			a.info.Update(a.vm.Active())
		}
	}

	switch a.pages.Current() {
	case pageProfile:
		a.profile.Update(a.vm.Profile(), a.vm.Contacts())
	case pageUpdates:
		a.updates.Update(a.vm.Updates())
	}
	m, _ := a.flash.Current()
	a.flashBar.Show(m)
}

// watchEvents follows the daemon's event stream. Notices are flashed, any
// other event schedules a refresh.
func (a *App) watchEvents() {
	for a.ctx.Err() == nil {
		stream, err := a.grpc.Chat.WatchEvents(a.ctx, "")
		if err == nil {
			err = a.consume(stream)
		}
		if a.ctx.Err() != nil {
			return
		}
		if err != nil && !errors.Is(err, io.EOF) {
			a.flash.Err(err)
		}
		select {
		case <-time.After(watchRetry):
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *App) consume(stream *api.EventReceiver) error {
	for {
		evt, err := stream.Recv()
		if err != nil {
			return err
		}
		if evt.Kind == bus.KindNotice {
			var text string
			if json.Unmarshal(evt.Payload, &text) == nil && text != "" {
				a.flash.Notice(text)
			}
			continue
		}
		a.vm.Invalidate()
	}
}

func (a *App) flashLoop() {
	for {
		select {
		case msg := <-a.flash.Updates():
			a.app.QueueUpdateDraw(func() {
				a.flashBar.Show(msg)
			})
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

func onOff(on, off string, v bool) string {
	if v {
		return on
	}
	return off
}
