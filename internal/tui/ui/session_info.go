package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// SessionData holds session information for display.
type SessionData struct {
	Session  string
	Me       string
	Backend  string
	Status   string
	Chats    int
	Messages int
	Unread   int
	Uptime   time.Duration
}

// SessionInfo displays session metadata in the header.
type SessionInfo struct {
	*tview.TextView
	theme *Theme
}

// NewSessionInfo creates a new session info panel.
func NewSessionInfo(theme *Theme) *SessionInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &SessionInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the session info.
func (si *SessionInfo) Update(data *SessionData) {
	si.Clear()
	if data == nil {
		return
	}
	_, _ = fmt.Fprint(si, si.render(data))
}

func (si *SessionInfo) render(data *SessionData) string {
	fg := colorName(si.theme.FgColor)
	ct := colorName(si.theme.CounterColor)

	me := data.Me
	if me == "" {
		me = "-"
	}
	row := func(label, value string) string {
		return fmt.Sprintf("[%s::b]%-8s[-:-:-] [%s]%s[-]", fg, label+":", ct, tview.Escape(value))
	}
	return row("Session", data.Session) + "\n" +
		row("Me", me) + "\n" +
		row("Status", fmt.Sprintf("%s (%s)", data.Status, data.Backend)) + "\n" +
		row("Chats", fmt.Sprintf("%d (%d unread)", data.Chats, data.Unread)) + "\n" +
		row("Msgs", fmt.Sprint(data.Messages)) + "\n" +
		row("Uptime", formatDuration(data.Uptime))
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm", m)
}
