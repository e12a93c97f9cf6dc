package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/wppsim/internal/tui/ui"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Init implements Component.
func (hv *HelpView) Init() {}

// Start implements Component.
func (hv *HelpView) Start() {}

// Stop implements Component.
func (hv *HelpView) Stop() {}

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

type helpSection struct {
	title string
	rows  [][2]string
}

var helpSections = []helpSection{
	{"Global Keys", [][2]string{
		{":", "Command mode"}, {"/", "Filter chats"}, {"?", "Help"},
		{"Esc", "Cancel / Go back"}, {"q", "Quit / Back"}, {"Ctrl-C", "Quit immediately"},
	}},
	{"Chat List", [][2]string{
		{"Enter", "Open chat"}, {"Tab/S-Tab", "Next/previous folder"}, {"1-9", "Open Nth chat"},
		{"0", "Clear filter"}, {"p", "Pin / unpin"}, {"m", "Mute / unmute"},
		{"a", "Archive / unarchive"}, {"u", "Mark unread"}, {"U", "Updates"}, {"P", "Profile"},
	}},
	{"Chat", [][2]string{
		{"i", "Focus composer"}, {"j/k", "Select message"}, {"r", "Reply to selected"},
		{"s", "Star selected"}, {"P", "Pin selected in chat"}, {"+", "React 👍"},
		{"e", "Edit selected (own)"}, {"D", "Delete selected"}, {"g", "AI reply suggestion"},
		{"d", "Chat details"}, {"Enter", "Send (in composer)"},
	}},
	{"Commands", [][2]string{
		{":chat <name>", "Open chat by name"}, {":new <user-id>", "Chat with a contact"},
		{":group <name> <id,id>", "Create group"}, {":view <folder>", "all unread groups personal work archived locked"},
		{":search <text>", "Search messages"}, {":starred", "Starred messages"},
		{":chats / :profile / :updates", "Switch page"}, {":send / :reply <text>", "Send, or reply to selected"},
		{":delete", "Delete selected"}, {":suggest", "Suggest replies"},
		{":react <emoji>", "React to selected"}, {":edit <text>", "Edit selected"},
		{":forward <chat>", "Forward selected"}, {":vote <n>", "Vote on selected poll"},
		{":poll q | a | b", "Send a poll"}, {":file <path>", "Send an attachment"},
		{":mute [1h|8h|1w]", "Mute chat"}, {":folder <name>", "Move chat to folder"},
		{":lock <pin>", "Lock chat"}, {":unlock", "Unlock chat"}, {":clear!", "Clear history"},
		{":note <text>", "Contact note"}, {":wallpaper <name>", "Chat wallpaper"},
		{":ephemeral on|off", "Disappearing messages"}, {":block! / :unblock", "Block contact"},
		{":call [video]", "Call contact"}, {":hangup", "End call"},
		{":story <text>", "Post story"}, {":sreply <n> <text>", "Reply to story"},
		{":name / :bio / :status", "Edit profile"}, {":receipts on|off", "Read receipts"},
		{":setpin <new> [current]", "Chat lock PIN"}, {":quit / :q", "Quit application"},
	}},
}

func (hv *HelpView) render() {
	kc := ui.Hex(hv.theme.MenuKeyColor)

	var b strings.Builder
	for _, sec := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", sec.title)
		for _, r := range sec.rows {
			fmt.Fprintf(&b, "  [%s]%-26s[-:-:-] %s\n", kc, tview.Escape(r[0]), r[1])
		}
	}
	_, _ = fmt.Fprint(hv, b.String())
}
