package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/tui/ui"
)

// now is swapped in tests.
var now = time.Now

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	n := now()
	if t.Year() == n.Year() && t.YearDay() == n.YearDay() {
		return t.Local().Format("15:04")
	}
	return t.Local().Format("01/02")
}

// deliveryTick renders the status of an outgoing message.
func deliveryTick(theme *ui.Theme, d model.Delivery) string {
	switch d {
	case model.Sent:
		return fmt.Sprintf("[%s]✓[-]", ui.Hex(theme.TickColor))
	case model.Delivered:
		return fmt.Sprintf("[%s]✓✓[-]", ui.Hex(theme.TickColor))
	case model.Read:
		return fmt.Sprintf("[%s]✓✓[-]", ui.Hex(theme.TickReadColor))
	case model.Failed:
		return fmt.Sprintf("[%s]![-]", ui.Hex(theme.FlashErrColor))
	}
	return ""
}

func reactionsLine(rs []model.Reaction) string {
	if len(rs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		p := r.Emoji
		if r.Count > 1 {
			p += fmt.Sprint(r.Count)
		}
		if r.Mine {
			p = "(" + p + ")"
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}

// lastSeen describes a contact's presence for headers and the contact list.
func lastSeen(u model.User) string {
	switch u.Presence {
	case model.Online:
		return "online"
	case model.Busy:
		return "busy"
	}
	if u.LastSeen.IsZero() {
		return "offline"
	}
	return "last seen " + humanize.RelTime(u.LastSeen, now(), "ago", "from now")
}

// storyAge renders how long ago a story was posted.
func storyAge(s model.Story) string {
	return humanize.RelTime(s.Timestamp, now(), "ago", "from now")
}

// preview is the one-line summary of a message in the chat list.
func preview(m *model.Message) string {
	if m == nil {
		return ""
	}
	if m.Deleted {
		return model.DeletedPlaceholder
	}
	switch m.Type {
	case model.Text, model.System, "":
		return firstLine(m.Content)
	case model.Poll:
		return "📊 " + firstLine(m.Content)
	}
	label := string(m.Type)
	if m.Content != "" {
		return "[" + label + "] " + firstLine(m.Content)
	}
	return "[" + label + "]"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func pollTotal(opts []model.PollOption) int {
	n := 0
	for _, o := range opts {
		n += len(o.Voters)
	}
	return n
}

func callDuration(c model.CallRecord) string {
	d := c.Duration()
	if d == 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}
