package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FlashLevel int

const (
	FlashInfo FlashLevel = iota
	// FlashNotice is used for notices pushed by the daemon, e.g. a message
	// that could not be delivered to a blocked contact.
	FlashNotice
	FlashWarn
	FlashErr
)

var flashTTL = [...]time.Duration{
	FlashInfo:   5 * time.Second,
	FlashNotice: 8 * time.Second,
	FlashWarn:   8 * time.Second,
	FlashErr:    10 * time.Second,
}

var flashIcon = [...]string{
	FlashInfo:   "",
	FlashNotice: "🔔 ",
	FlashWarn:   "⚠ ",
	FlashErr:    "✖ ",
}

type FlashMessage struct {
	Text    string
	Level   FlashLevel
	Expires time.Time
}

func (m FlashMessage) expired(now time.Time) bool {
	return m.Text == "" || now.After(m.Expires)
}

// FlashModel keeps the last status line message. Every post is also sent on
// Updates without blocking; a full channel drops the post.
type FlashModel struct {
	mu      sync.RWMutex
	current FlashMessage
	updates chan FlashMessage
}

func NewFlashModel() *FlashModel {
	return &FlashModel{updates: make(chan FlashMessage, 8)}
}

func (f *FlashModel) Info(msg string)   { f.Post(msg, FlashInfo, flashTTL[FlashInfo]) }
func (f *FlashModel) Notice(msg string) { f.Post(msg, FlashNotice, flashTTL[FlashNotice]) }
func (f *FlashModel) Warn(msg string)   { f.Post(msg, FlashWarn, flashTTL[FlashWarn]) }

// Err reports a failed daemon call. Rejections the user can act on (blocked
// contact, wrong PIN, bad input) are shown as warnings.
func (f *FlashModel) Err(err error) {
	if err == nil {
		return
	}
	text, level := describe(err)
	f.Post(text, level, flashTTL[level])
}

func describe(err error) (string, FlashLevel) {
	st, ok := status.FromError(err)
	if !ok {
		return err.Error(), FlashErr
	}
	switch st.Code() {
	case codes.FailedPrecondition, codes.PermissionDenied, codes.InvalidArgument, codes.NotFound:
		return st.Message(), FlashWarn
	case codes.Unavailable:
		return "daemon unavailable: " + st.Message(), FlashErr
	default:
		return st.Message(), FlashErr
	}
}

// Post shows msg for ttl.
func (f *FlashModel) Post(msg string, level FlashLevel, ttl time.Duration) {
	m := FlashMessage{Text: msg, Level: level, Expires: time.Now().Add(ttl)}
	f.mu.Lock()
	f.current = m
	f.mu.Unlock()
	select {
	case f.updates <- m:
	default:
	}
}

// Current returns the live message, if any.
func (f *FlashModel) Current() (FlashMessage, bool) {
	f.mu.RLock()
	m := f.current
	f.mu.RUnlock()
	if m.expired(time.Now()) {
		return FlashMessage{}, false
	}
	return m, true
}

// Text is the live message text or "".
func (f *FlashModel) Text() string {
	m, _ := f.Current()
	return m.Text
}

func (f *FlashModel) Updates() <-chan FlashMessage {
	return f.updates
}

// FlashBar renders the status line.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	return &FlashBar{TextView: tv, theme: theme}
}

// Show draws m, or clears the bar when m has expired.
func (fb *FlashBar) Show(m FlashMessage) {
	fb.Clear()
	if m.expired(time.Now()) {
		return
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s%s[-]", colorName(fb.color(m.Level)), flashIcon[m.Level], tview.Escape(m.Text))
}

func (fb *FlashBar) color(l FlashLevel) tcell.Color {
	switch l {
	case FlashWarn, FlashNotice:
		return fb.theme.FlashWarnColor
	case FlashErr:
		return fb.theme.FlashErrColor
	}
	return fb.theme.FlashInfoColor
}
