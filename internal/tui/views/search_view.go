package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/tui/ui"
)

// SearchView lists message search hits across all chats, or the starred
// messages when no query is given.
type SearchView struct {
	*tview.Flex
	theme   *ui.Theme
	input   *tview.InputField
	results *tview.Table
	hits    []roster.Hit
}

func NewSearchView(theme *ui.Theme) *SearchView {
	sv := &SearchView{
		theme:   theme,
		input:   tview.NewInputField().SetLabel(" Search: ").SetFieldWidth(0),
		results: tview.NewTable().SetSelectable(true, false).SetFixed(1, 0),
	}
	sv.input.SetBackgroundColor(theme.BgColor)
	sv.input.SetFieldBackgroundColor(theme.BgColor)
	sv.input.SetFieldTextColor(theme.FgColor)
	sv.input.SetLabelColor(theme.MenuKeyColor)

	sv.results.SetBorder(true).
		SetBorderColor(theme.BorderColor).
		SetTitleColor(theme.TitleColor).
		SetBackgroundColor(theme.BgColor)
	sv.results.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	sv.Flex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(sv.input, 1, 0, true).
		AddItem(sv.results, 0, 1, false)
	sv.Update("", false, nil)
	return sv
}

func (sv *SearchView) Name() string { return "Search" }
func (sv *SearchView) Init()        {}
func (sv *SearchView) Start()       {}
func (sv *SearchView) Stop()        {}

func (sv *SearchView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Search/Open"},
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
	}
}

// SetOnQuery registers fn to run when a query is submitted from the input.
func (sv *SearchView) SetOnQuery(fn func(query string)) {
	sv.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && fn != nil {
			fn(sv.input.GetText())
		}
	})
}

// Update shows hits for query. Matches of query in the message text are
// underlined.
func (sv *SearchView) Update(query string, starred bool, hits []roster.Hit) {
	sv.hits = hits
	title := "Results"
	switch {
	case starred:
		title = "Starred messages"
	case query != "":
		title = "Results for " + query
	}
	sv.results.Clear()
	sv.results.SetTitle(fmt.Sprintf(" %s (%d) ", tview.Escape(title), len(hits)))

	for col, h := range []string{" CHAT", " MESSAGE", " TIME"} {
		sv.results.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(sv.theme.TableHeaderFg).
			SetBackgroundColor(sv.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}
	for i, h := range hits {
		text := highlight(sanitizeForTerminal(preview(&h.Message)), query)
		if h.Message.Starred {
			text = "★ " + text
		}
		cells := []*tview.TableCell{
			tview.NewTableCell(" " + tview.Escape(sanitizeForTerminal(h.ChatTitle))).SetMaxWidth(25),
			tview.NewTableCell(" " + text).SetExpansion(1),
			tview.NewTableCell(" " + formatTimestamp(h.Message.Timestamp)).SetMaxWidth(12),
		}
		for col, c := range cells {
			sv.results.SetCell(i+1, col, c.SetTextColor(sv.theme.FgColor))
		}
	}
}

// highlight escapes s and underlines each case-insensitive match of query.
func highlight(s, query string) string {
	if query == "" {
		return tview.Escape(s)
	}
	lower, q := strings.ToLower(s), strings.ToLower(query)
	if len(lower) != len(s) {
		// Case folding changed byte offsets; skip highlighting.
		return tview.Escape(s)
	}
	var b strings.Builder
	for {
		i := strings.Index(lower, q)
		if i < 0 {
			b.WriteString(tview.Escape(s))
			return b.String()
		}
		b.WriteString(tview.Escape(s[:i]))
		b.WriteString("[::u]" + tview.Escape(s[i:i+len(q)]) + "[::-]")
		s, lower = s[i+len(q):], lower[i+len(q):]
	}
}

// SelectedResult returns the chat and message id of the selected hit.
func (sv *SearchView) SelectedResult() (chatID, messageID string) {
	row, _ := sv.results.GetSelection()
	if row < 1 || row > len(sv.hits) {
		return "", ""
	}
	h := sv.hits[row-1]
	return h.ChatID, h.Message.ID
}

// Reset clears the query and results.
func (sv *SearchView) Reset() {
	sv.input.SetText("")
	sv.Update("", false, nil)
}

func (sv *SearchView) Input() *tview.InputField { return sv.input }
func (sv *SearchView) Results() *tview.Table    { return sv.results }
