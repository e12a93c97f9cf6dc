package views

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rivo/tview"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/tui/ui"
)

// ConversationInfo displays detailed information about a conversation.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Conversation Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (ci *ConversationInfo) Name() string { return "Details" }

// Init implements Component.
func (ci *ConversationInfo) Init() {}

// Start implements Component.
func (ci *ConversationInfo) Start() {}

// Stop implements Component.
func (ci *ConversationInfo) Stop() {}

// Hints implements Component.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// Update renders conversation details.
func (ci *ConversationInfo) Update(d *api.ChatDetail) {
	ci.Clear()
	if d == nil {
		return
	}
	_, _ = fmt.Fprint(ci, ci.render(d))
	ci.SetTitle(fmt.Sprintf(" %s Details ", tview.Escape(d.Title)))
}

func (ci *ConversationInfo) render(d *api.ChatDetail) string {
	fg := ui.Hex(ci.theme.FgColor)
	ct := ui.Hex(ci.theme.CounterColor)
	row := func(label, value string) string {
		if value == "" {
			value = "-"
		}
		return fmt.Sprintf(" [%s::b]%-13s[-:-:-] [%s]%s[-]\n", fg, label+":", ct, tview.Escape(sanitizeForTerminal(value)))
	}

	c := d.Chat
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(row("Name", d.Title))
	b.WriteString(row("ID", c.ID))
	if c.Type == model.Group {
		b.WriteString(row("Type", "Group"))
	} else {
		b.WriteString(row("Type", "Direct Message"))
	}
	if u := d.Counterpart; u != nil {
		b.WriteString(row("Phone", u.Phone))
		b.WriteString(row("About", u.Bio))
		b.WriteString(row("Presence", lastSeen(*u)))
	}
	if len(d.Members) > 0 {
		names := make([]string, len(d.Members))
		for i, u := range d.Members {
			names[i] = u.Name
		}
		b.WriteString(row("Members", strings.Join(names, ", ")))
	}
	b.WriteString(row("Unread", fmt.Sprint(c.Unread)))
	b.WriteString(row("Messages", fmt.Sprint(len(c.Messages))))
	b.WriteString(row("Folder", string(c.Folder)))
	b.WriteString(row("Muted", ci.muted(d)))
	b.WriteString(row("Archived", yesNo(c.Archived)))
	b.WriteString(row("Pinned", yesNo(c.Pinned)))
	b.WriteString(row("Disappearing", yesNo(c.Ephemeral)))
	b.WriteString(row("Wallpaper", c.Wallpaper))
	b.WriteString(row("Note", c.Note))
	if d.Blocked {
		b.WriteString(row("Blocked", "yes"))
	}
	return b.String()
}

func (ci *ConversationInfo) muted(d *api.ChatDetail) string {
	if !d.Muted {
		return "no"
	}
	if until := d.Chat.MutedUntil; until != nil {
		return "until " + humanize.Time(*until)
	}
	return "yes"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
