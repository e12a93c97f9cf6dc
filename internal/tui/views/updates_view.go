package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/stories"
	"github.com/matheus3301/wppsim/internal/tui/ui"
)

// UpdatesView lists stories grouped by author and the call log.
type UpdatesView struct {
	*tview.TextView
	theme  *ui.Theme
	groups []stories.Group
}

// NewUpdatesView creates a new updates view.
func NewUpdatesView(theme *ui.Theme) *UpdatesView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Updates ")
	tv.SetTitleColor(theme.TitleColor)

	return &UpdatesView{TextView: tv, theme: theme}
}

// Name implements Component.
func (uv *UpdatesView) Name() string { return "Updates" }

// Init implements Component.
func (uv *UpdatesView) Init() {}

// Start implements Component.
func (uv *UpdatesView) Start() {}

// Stop implements Component.
func (uv *UpdatesView) Stop() {}

// Hints implements Component.
func (uv *UpdatesView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "1-9", Description: "View story", Numeric: true},
		{Key: ":story", Description: "Post text story"},
		{Key: ":sreply", Description: "Reply to story"},
		{Key: ":call", Description: "Call contact"},
		{Key: ":hangup", Description: "End call"},
		{Key: "Esc", Description: "Back"},
	}
}

// Update renders stories and calls.
func (uv *UpdatesView) Update(groups []stories.Group, calls *api.CallsResponse) {
	uv.groups = groups
	uv.Clear()
	_, _ = fmt.Fprint(uv, uv.render(groups, calls))
}

// StoryByIndex returns the Nth listed story (1-based) across all groups.
func (uv *UpdatesView) StoryByIndex(n int) (model.Story, bool) {
	i := 0
	for _, g := range uv.groups {
		for _, s := range g.Stories {
			i++
			if i == n {
				return s, true
			}
		}
	}
	return model.Story{}, false
}

func (uv *UpdatesView) render(groups []stories.Group, calls *api.CallsResponse) string {
	ct := ui.Hex(uv.theme.CounterColor)
	nc := ui.Hex(uv.theme.NumericKeyColor)

	var b strings.Builder
	b.WriteString("\n [::b]Stories[-:-:-]\n\n")
	if len(groups) == 0 {
		b.WriteString("  [::d]No recent updates[-:-:-]\n")
	}
	n := 0
	for _, g := range groups {
		seen := ""
		if g.Seen {
			seen = " [::d](seen)[-:-:-]"
		}
		fmt.Fprintf(&b, "  [%s::b]%s[-:-:-]%s\n", ct, tview.Escape(sanitizeForTerminal(g.Author.Name)), seen)
		for _, s := range g.Stories {
			n++
			text := s.Content
			if s.Type != model.StoryText {
				text = fmt.Sprintf("[%s] %s", s.Type, text)
			}
			fmt.Fprintf(&b, "    [%s]%d[-] %s [::d]%s · %d views[-:-:-]\n", nc, n, tview.Escape(truncate(sanitizeForTerminal(text), 50)), storyAge(s), len(s.Viewers))
		}
	}

	b.WriteString("\n [::b]Calls[-:-:-]\n\n")
	if calls == nil || len(calls.Calls) == 0 {
		b.WriteString("  [::d]No calls[-:-:-]\n")
		return b.String()
	}
	if a := calls.Active; a != nil {
		fmt.Fprintf(&b, "  [%s::b]● %s call with %s: %s[-:-:-]\n", ui.Hex(uv.theme.TypingColor), a.Kind, a.PeerID, a.State)
	}
	for _, c := range calls.Calls {
		icon := "📞"
		if c.Kind == model.VideoCall {
			icon = "📹"
		}
		fmt.Fprintf(&b, "  %s %-12s %-10s %-8s [::d]%s[-:-:-]\n", icon, c.PeerID, c.State, callDuration(c), formatTimestamp(c.StartedAt))
	}
	return b.String()
}
