package tui

import (
	"strings"
	"testing"

	"github.com/matheus3301/wppsim/internal/roster"
)

// newTestApp builds the UI without a daemon. Only commands that never reach
// the client may be run against it.
func newTestApp(t *testing.T) *App {
	t.Helper()
	a := NewApp(nil, "test")
	t.Cleanup(a.cancel)
	return a
}

func TestRunCommandWarnings(t *testing.T) {
	tests := []struct {
		cmd  string
		want string
	}{
		{"frobnicate", `Unknown command "frobnicate"`},
		{"clear", "use :clear! to confirm"},
		{"block", "use :block! to confirm"},
		{"react 😂", "Select a message first"},
		{"delete", "Select a message first"},
		{"poll Lunch?", "usage: poll"},
		{"mute soon", `invalid duration "soon"`},
		{"ephemeral maybe", "expected on or off"},
		{"vote x", "expected a number"},
		{"chat", "usage: chat <name>"},
		{"chat nobody", "No chat matches nobody"},
		{"send hi", "usage: send"},
		{"status away", "usage: status online|offline|busy"},
		{"setpin", "usage: setpin"},
		{"sreply 1 hi", "No story 1"},
		{"folder locked", "use :lock for locked"},
		{"pin", "No chat selected"},
	}
	for _, tt := range tests {
		a := newTestApp(t)
		a.runCommand(ParseCommand(tt.cmd))
		if got := a.flash.Text(); !strings.Contains(got, tt.want) {
			t.Errorf(":%s flashed %q, want %q", tt.cmd, got, tt.want)
		}
	}
}

func TestViewCommand(t *testing.T) {
	a := newTestApp(t)
	a.runCommand(ParseCommand("view Work"))
	if a.vm.View() != roster.ViewWork {
		t.Errorf("view = %s", a.vm.View())
	}
	if a.pages.Current() != pageChats {
		t.Errorf("page = %s", a.pages.Current())
	}

	a.runCommand(ParseCommand("view nowhere"))
	if a.vm.View() != roster.ViewWork {
		t.Errorf("bad view changed folder to %s", a.vm.View())
	}
	if !strings.Contains(a.flash.Text(), "unknown view") {
		t.Errorf("flash = %q", a.flash.Text())
	}
}

func TestHelpAndBack(t *testing.T) {
	a := newTestApp(t)
	a.runCommand(ParseCommand("help"))
	if a.pages.Current() != pageHelp {
		t.Fatalf("page = %s", a.pages.Current())
	}
	a.back()
	if a.pages.Current() != pageChats || a.pages.Depth() != 1 {
		t.Errorf("after back: %v", a.pages.Stack())
	}
}

func TestBackClearsFilterBeforeQuitting(t *testing.T) {
	a := newTestApp(t)
	a.vm.SetQuery("ann")
	a.back()
	if a.vm.Query() != "" {
		t.Errorf("query = %q", a.vm.Query())
	}
	if a.ctx.Err() != nil {
		t.Error("first back should not quit")
	}
}

func TestCycleFolderFlashes(t *testing.T) {
	a := newTestApp(t)
	a.cycleFolder(1)
	if a.vm.View() != roster.Views[1] {
		t.Errorf("view = %s", a.vm.View())
	}
	if a.flash.Text() != "Folder: "+string(roster.Views[1]) {
		t.Errorf("flash = %q", a.flash.Text())
	}
}

func TestJoinQuoted(t *testing.T) {
	if got := joinQuoted([]string{"Sure", `Say "hi"`}); got != `"Sure", "Say \"hi\""` {
		t.Errorf("joinQuoted = %s", got)
	}
}
