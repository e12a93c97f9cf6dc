package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/tui/ui"
)

// ConversationList is the main chat list view.
type ConversationList struct {
	*tview.Table
	theme  *ui.Theme
	chats  []api.ChatSummary
	view   roster.View
	filter string
}

// NewConversationList creates a new conversation list table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitleColor(theme.TitleColor)

	cl := &ConversationList{
		Table: table,
		theme: theme,
		view:  roster.ViewAll,
	}
	cl.render()
	return cl
}

// Name implements Component.
func (cl *ConversationList) Name() string { return "Chats" }

// Init implements Component.
func (cl *ConversationList) Init() {}

// Start implements Component.
func (cl *ConversationList) Start() {}

// Stop implements Component.
func (cl *ConversationList) Stop() {}

// Hints implements Component.
func (cl *ConversationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "Tab", Description: "Next folder"},
		{Key: "/", Description: "Filter"},
		{Key: "p", Description: "Pin"},
		{Key: "m", Description: "Mute"},
		{Key: "a", Description: "Archive"},
		{Key: "u", Description: "Mark unread"},
		{Key: "0-9", Description: "Jump", Numeric: true},
	}
}

// Update refreshes the chat list with new data.
func (cl *ConversationList) Update(chats []api.ChatSummary, view roster.View, filter string) {
	cl.chats = chats
	cl.view = view
	cl.filter = filter
	cl.render()
}

func (cl *ConversationList) render() {
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
		{" TYPE", 0},
	}
	for col, h := range headers {
		cell := tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp)
		cl.SetCell(0, col, cell)
	}

	for i, chat := range cl.chats {
		row := i + 1
		fg := cl.theme.FgColor
		if chat.Unread > 0 {
			fg = cl.theme.CounterColor
		}

		last := tview.Escape(sanitizeForTerminal(preview(chat.LastMessage)))
		if chat.Typing {
			last = fmt.Sprintf("[%s]typing…[-]", ui.Hex(cl.theme.TypingColor))
		}
		ts := ""
		if chat.LastMessage != nil {
			ts = formatTimestamp(chat.LastMessage.Timestamp)
		}
		chatType := "DM"
		if chat.Type == model.Group {
			chatType = "GROUP"
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+cl.nameCell(chat)).SetExpansion(1).SetTextColor(fg))
		cl.SetCell(row, 1, tview.NewTableCell(" "+last).SetExpansion(2).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 2, tview.NewTableCell(ts).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
		cl.SetCell(row, 3, tview.NewTableCell(chatType).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
	}

	cl.SetTitle(folderTitle(cl.theme, cl.view, len(cl.chats), cl.filter))
}

func (cl *ConversationList) nameCell(chat api.ChatSummary) string {
	var b strings.Builder
	if chat.Unread > 0 {
		fmt.Fprintf(&b, "(%d) ", chat.Unread)
	}
	b.WriteString(tview.Escape(sanitizeForTerminal(chat.Title)))
	var marks []string
	if chat.Pinned {
		marks = append(marks, "📌")
	}
	if chat.Muted {
		marks = append(marks, "🔇")
	}
	if chat.Blocked {
		marks = append(marks, "⛔")
	}
	if len(marks) > 0 {
		fmt.Fprintf(&b, " [%s]%s[-]", ui.Hex(cl.theme.MarkerColor), strings.Join(marks, ""))
	}
	return b.String()
}

// folderTitle renders the folder tabs with the current one highlighted.
func folderTitle(theme *ui.Theme, current roster.View, count int, filter string) string {
	tabs := make([]string, 0, len(roster.Views))
	for _, v := range roster.Views {
		if v == current {
			tabs = append(tabs, fmt.Sprintf("[%s::b]%s(%d)[-:-:-]", ui.Hex(theme.CounterColor), v, count))
			continue
		}
		tabs = append(tabs, string(v))
	}
	title := " " + strings.Join(tabs, " | ") + " "
	if filter != "" {
		title += fmt.Sprintf("/%s ", tview.Escape(filter))
	}
	return title
}

// SelectedChat returns the id of the currently selected chat.
func (cl *ConversationList) SelectedChat() string {
	row, _ := cl.GetSelection()
	return cl.ChatByIndex(row)
}

// ChatByIndex returns the id of the Nth listed conversation (1-based).
func (cl *ConversationList) ChatByIndex(n int) string {
	if n < 1 || n > len(cl.chats) {
		return ""
	}
	return cl.chats[n-1].ID
}

// SelectChat moves the cursor to chatID if it is listed.
func (cl *ConversationList) SelectChat(chatID string) {
	for i, c := range cl.chats {
		if c.ID == chatID {
			cl.Select(i+1, 0)
			return
		}
	}
}
