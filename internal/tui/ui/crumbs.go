package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Crumb is one step of the navigation trail. Badge, when set, is shown
// dimmed after the label, e.g. the folder of the chat list.
type Crumb struct {
	Label string
	Badge string
}

// Crumbs is the navigation bar under the main pages.
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &Crumbs{
		TextView: tv,
		theme:    theme,
	}
}

// Update redraws the trail. The last crumb is highlighted.
func (c *Crumbs) Update(trail []Crumb) {
	c.Clear()
	_, _ = fmt.Fprint(c, c.render(trail))
}

func (c *Crumbs) render(trail []Crumb) string {
	parts := make([]string, len(trail))
	for i, cr := range trail {
		fg, bg, attr := c.theme.CrumbInactiveFg, c.theme.CrumbInactiveBg, ""
		if i == len(trail)-1 {
			fg, bg, attr = c.theme.CrumbActiveFg, c.theme.CrumbActiveBg, "b"
		}
		text := tview.Escape(cr.Label)
		if cr.Badge != "" {
			text += " [::d]" + tview.Escape(cr.Badge) + "[::-]"
		}
		parts[i] = fmt.Sprintf("[%s:%s:%s] %s [-:-:-]", colorName(fg), colorName(bg), attr, text)
	}
	return strings.Join(parts, " › ")
}

// colorName returns a tview-compatible color name string.
func colorName(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}
