package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/tui/ui"
)

// MessageThread displays messages and a composer for a single chat.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	banner   *tview.TextView
	messages *tview.TextView
	composer *tview.InputField

	selfID  string
	detail  *api.ChatDetail
	msgs    []model.Message
	cursor  int // index into msgs, -1 when nothing is selected
	replyTo *model.Message
	onSend  func(text, replyTo string)
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	banner := tview.NewTextView().
		SetDynamicColors(true)
	banner.SetBackgroundColor(theme.BgColor)

	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(banner, 0, 0, false).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		banner:   banner,
		messages: messages,
		composer: composer,
		cursor:   -1,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || mt.onSend == nil {
			return
		}
		text := composer.GetText()
		if strings.TrimSpace(text) == "" {
			return
		}
		reply := ""
		if mt.replyTo != nil {
			reply = mt.replyTo.ID
		}
		mt.onSend(text, reply)
		composer.SetText("")
		mt.SetReplyTo(nil)
	})

	return mt
}

// Name implements Component.
func (mt *MessageThread) Name() string {
	if mt.detail != nil {
		return mt.detail.Title
	}
	return "Messages"
}

// Init implements Component.
func (mt *MessageThread) Init() {}

// Start implements Component.
func (mt *MessageThread) Start() {}

// Stop implements Component.
func (mt *MessageThread) Stop() {}

// Hints implements Component.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "j/k", Description: "Select message"},
		{Key: "r", Description: "Reply"},
		{Key: "s", Description: "Star"},
		{Key: "P", Description: "Pin message"},
		{Key: "+", Description: "React 👍"},
		{Key: "D", Description: "Delete"},
		{Key: "d", Description: "Details"},
		{Key: "g", Description: "Suggest"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetSelf tells the thread which sender id is the current user.
func (mt *MessageThread) SetSelf(id string) {
	mt.selfID = id
}

// SetOnSend sets the callback when a message is sent.
func (mt *MessageThread) SetOnSend(fn func(text, replyTo string)) {
	mt.onSend = fn
}

// ChatID returns the current chat id.
func (mt *MessageThread) ChatID() string {
	if mt.detail == nil {
		return ""
	}
	return mt.detail.Chat.ID
}

// Update refreshes the thread. The selection survives when the selected
// message is still present.
func (mt *MessageThread) Update(detail *api.ChatDetail, msgs []model.Message) {
	var keep string
	if sel := mt.Selected(); sel != nil {
		keep = sel.ID
	}
	if detail == nil || mt.detail == nil || detail.Chat.ID != mt.detail.Chat.ID {
		keep = ""
		mt.replyTo = nil
	}
	mt.detail = detail
	mt.msgs = msgs
	mt.cursor = -1
	for i := range msgs {
		if msgs[i].ID == keep {
			mt.cursor = i
		}
	}
	mt.render(keep == "")
}

// MoveCursor selects the message delta positions away. The first move
// from no selection lands on the newest message.
func (mt *MessageThread) MoveCursor(delta int) {
	if len(mt.msgs) == 0 {
		return
	}
	if mt.cursor < 0 {
		mt.cursor = len(mt.msgs) - 1
	} else {
		mt.cursor = max(0, min(len(mt.msgs)-1, mt.cursor+delta))
	}
	mt.render(false)
}

// ClearSelection drops the message cursor.
func (mt *MessageThread) ClearSelection() bool {
	if mt.cursor < 0 {
		return false
	}
	mt.cursor = -1
	mt.render(true)
	return true
}

// Selected returns the selected message, or nil.
func (mt *MessageThread) Selected() *model.Message {
	if mt.cursor < 0 || mt.cursor >= len(mt.msgs) {
		return nil
	}
	return &mt.msgs[mt.cursor]
}

// SetReplyTo quotes m in the composer. nil clears the quote.
func (mt *MessageThread) SetReplyTo(m *model.Message) {
	if m == nil {
		mt.replyTo = nil
		mt.composer.SetLabel(" > ")
		return
	}
	cp := *m
	mt.replyTo = &cp
	mt.composer.SetLabel(fmt.Sprintf(" ↪ %s > ", truncate(sanitizeForTerminal(preview(&cp)), 24)))
}

// SetDraft replaces the composer text.
func (mt *MessageThread) SetDraft(text string) {
	mt.composer.SetText(text)
}

func (mt *MessageThread) render(scrollToEnd bool) {
	mt.messages.Clear()
	mt.renderHeader()

	byID := make(map[string]int, len(mt.msgs))
	for i, m := range mt.msgs {
		byID[m.ID] = i
	}
	for i := range mt.msgs {
		_, _ = fmt.Fprint(mt.messages, mt.renderMessage(i, byID))
	}
	if mt.detail != nil && mt.detail.Typing {
		_, _ = fmt.Fprintf(mt.messages, "[%s::i]%s is typing…[-:-:-]\n", ui.Hex(mt.theme.TypingColor), tview.Escape(mt.detail.Title))
	}

	if mt.cursor >= 0 {
		mt.messages.Highlight(regionID(mt.cursor))
		mt.messages.ScrollToHighlight()
	} else {
		mt.messages.Highlight()
		if scrollToEnd {
			mt.messages.ScrollToEnd()
		}
	}
}

func (mt *MessageThread) renderHeader() {
	mt.banner.Clear()
	mt.ResizeItem(mt.banner, 0, 0)
	if mt.detail == nil {
		mt.messages.SetTitle(" Messages ")
		return
	}

	title := " " + tview.Escape(sanitizeForTerminal(mt.detail.Title))
	switch {
	case mt.detail.Typing:
		title += " · typing…"
	case mt.detail.Counterpart != nil:
		title += " · " + lastSeen(*mt.detail.Counterpart)
	case len(mt.detail.Members) > 0:
		title += fmt.Sprintf(" · %d members", len(mt.detail.Members))
	}
	if mt.detail.Muted {
		title += " 🔇"
	}
	if mt.detail.Chat.Ephemeral {
		title += " ⏱"
	}
	mt.messages.SetTitle(title + " ")

	var lines []string
	if mt.detail.Blocked {
		lines = append(lines, fmt.Sprintf("[%s]You blocked this contact. Messages will not be sent.[-]", ui.Hex(mt.theme.FlashWarnColor)))
	}
	if id := mt.detail.Chat.PinnedMessageID; id != "" {
		for i := range mt.msgs {
			if mt.msgs[i].ID == id {
				lines = append(lines, fmt.Sprintf("[%s]📌 %s[-]", ui.Hex(mt.theme.MarkerColor), tview.Escape(truncate(sanitizeForTerminal(preview(&mt.msgs[i])), 60))))
				break
			}
		}
	}
	if len(lines) > 0 {
		_, _ = fmt.Fprint(mt.banner, strings.Join(lines, "\n"))
		mt.ResizeItem(mt.banner, len(lines), 0)
	}
}

func (mt *MessageThread) renderMessage(i int, byID map[string]int) string {
	m := mt.msgs[i]
	var b strings.Builder

	fromMe := m.SenderID == mt.selfID
	sender, color := mt.senderName(m.SenderID), ui.Hex(mt.theme.PeerColor)
	if fromMe {
		sender, color = "You", ui.Hex(mt.theme.SelfColor)
	}

	fmt.Fprintf(&b, `["%s"]`, regionID(i))
	if m.Type == model.System {
		fmt.Fprintf(&b, "[::d]— %s —[-:-:-]", tview.Escape(sanitizeForTerminal(m.Content)))
		b.WriteString(`[""]` + "\n\n")
		return b.String()
	}

	fmt.Fprintf(&b, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]", color, tview.Escape(sanitizeForTerminal(sender)), formatTimestamp(m.Timestamp))
	if fromMe {
		b.WriteString(" " + deliveryTick(mt.theme, m.Status))
	}
	marker := ui.Hex(mt.theme.MarkerColor)
	if m.Starred {
		fmt.Fprintf(&b, " [%s]★[-]", marker)
	}
	if mt.detail != nil && mt.detail.Chat.PinnedMessageID == m.ID {
		fmt.Fprintf(&b, " [%s]📌[-]", marker)
	}
	if m.Edited && !m.Deleted {
		b.WriteString(" [::d](edited)[-:-:-]")
	}
	b.WriteString("\n")

	if m.Forwarded {
		b.WriteString("[::i]↪ Forwarded[-:-:-]\n")
	}
	if m.ReplyToID != "" {
		if j, ok := byID[m.ReplyToID]; ok {
			q := mt.msgs[j]
			fmt.Fprintf(&b, "[::d]┃ %s: %s[-:-:-]\n", tview.Escape(sanitizeForTerminal(mt.senderLabel(q.SenderID))), tview.Escape(truncate(sanitizeForTerminal(preview(&q)), 50)))
		}
	}

	switch {
	case m.Deleted:
		fmt.Fprintf(&b, "[::i]%s[-:-:-]\n", model.DeletedPlaceholder)
	case m.Type == model.Poll:
		b.WriteString(mt.renderPoll(m))
	default:
		body := m.Content
		if m.Type != model.Text {
			body = fmt.Sprintf("[%s] %s", m.Type, body)
			if m.MediaURL != "" {
				body += " (" + m.MediaURL + ")"
			}
		}
		b.WriteString(tview.Escape(sanitizeForTerminal(body)) + "\n")
	}

	if r := reactionsLine(m.Reactions); r != "" {
		b.WriteString(sanitizeForTerminal(r) + "\n")
	}
	b.WriteString(`[""]` + "\n")
	return b.String()
}

func (mt *MessageThread) renderPoll(m model.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 [::b]%s[-:-:-]\n", tview.Escape(sanitizeForTerminal(m.Content)))
	total := pollTotal(m.PollOptions)
	for n, o := range m.PollOptions {
		mark := "○"
		for _, v := range o.Voters {
			if v == mt.selfID {
				mark = "●"
			}
		}
		pct := 0
		if total > 0 {
			pct = len(o.Voters) * 100 / total
		}
		fmt.Fprintf(&b, "  %d. %s %s  %d (%d%%)\n", n+1, mark, tview.Escape(sanitizeForTerminal(o.Text)), len(o.Voters), pct)
	}
	return b.String()
}

func (mt *MessageThread) senderLabel(id string) string {
	if id == mt.selfID {
		return "You"
	}
	return mt.senderName(id)
}

func (mt *MessageThread) senderName(id string) string {
	if mt.detail != nil {
		if c := mt.detail.Counterpart; c != nil && c.ID == id {
			return c.Name
		}
		for _, u := range mt.detail.Members {
			if u.ID == id {
				return u.Name
			}
		}
	}
	return id
}

func regionID(i int) string {
	return fmt.Sprintf("m%d", i)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}
