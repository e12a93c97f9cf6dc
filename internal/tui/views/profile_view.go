package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/tui/ui"
)

// ProfileView shows the current user, their settings, a scannable contact
// card and the contact list.
type ProfileView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewProfileView creates a new profile view.
func NewProfileView(theme *ui.Theme) *ProfileView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Profile ")
	tv.SetTitleColor(theme.TitleColor)

	return &ProfileView{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (pv *ProfileView) Name() string { return "Profile" }

// Init implements Component.
func (pv *ProfileView) Init() {}

// Start implements Component.
func (pv *ProfileView) Start() {}

// Stop implements Component.
func (pv *ProfileView) Stop() {}

// Hints implements Component.
func (pv *ProfileView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: ":name", Description: "Rename"},
		{Key: ":bio", Description: "About"},
		{Key: ":status", Description: "Presence"},
		{Key: ":receipts", Description: "Read receipts"},
		{Key: ":setpin", Description: "Chat lock PIN"},
		{Key: "Esc", Description: "Back"},
	}
}

// Update renders the profile and contacts.
func (pv *ProfileView) Update(p *api.ProfileResponse, contacts []api.Contact) {
	pv.Clear()
	if p == nil {
		return
	}
	_, _ = fmt.Fprint(pv, pv.render(p, contacts))
	pv.ScrollToBeginning()
}

func (pv *ProfileView) render(p *api.ProfileResponse, contacts []api.Contact) string {
	fg := ui.Hex(pv.theme.FgColor)
	ct := ui.Hex(pv.theme.CounterColor)
	row := func(label, value string) string {
		if value == "" {
			value = "-"
		}
		return fmt.Sprintf(" [%s::b]%-14s[-:-:-] [%s]%s[-]\n", fg, label+":", ct, tview.Escape(sanitizeForTerminal(value)))
	}

	me := p.Me
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(row("Name", me.Name))
	b.WriteString(row("Phone", me.Phone))
	b.WriteString(row("About", me.Bio))
	b.WriteString(row("Presence", string(me.Presence)))
	b.WriteString(row("Read receipts", yesNo(me.ReadReceipts())))
	if s := me.Settings; s != nil {
		b.WriteString(row("Enter to send", yesNo(s.EnterToSend)))
		b.WriteString(row("Theme", s.Theme))
		b.WriteString(row("Wallpaper", s.Wallpaper))
	}
	pin := "not set"
	if p.PINSet {
		pin = "set"
	}
	b.WriteString(row("Chat lock PIN", pin))
	b.WriteString(row("Blocked", fmt.Sprint(len(me.BlockedIDs))))

	b.WriteString("\n [::b]My contact card[-:-:-]\n\n")
	if qr, err := ui.QR(me.VCard()); err != nil {
		b.WriteString("  (QR generation failed: " + err.Error() + ")\n")
	} else {
		b.WriteString(qr)
	}

	fmt.Fprintf(&b, "\n [::b]Contacts (%d)[-:-:-]\n\n", len(contacts))
	for _, c := range contacts {
		state := lastSeen(c.User)
		if c.Blocked {
			state = "blocked"
		}
		fmt.Fprintf(&b, "  [%s]%-20s[-] %-16s [::d]%s[-:-:-]\n", ct, tview.Escape(sanitizeForTerminal(c.User.Name)), c.User.Phone, state)
	}
	return b.String()
}
