package model

import (
	"testing"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/roster"
)

func TestCycle(t *testing.T) {
	views := []roster.View{roster.ViewAll, roster.ViewUnread, roster.ViewGroups}
	tests := []struct {
		cur  roster.View
		step int
		want roster.View
	}{
		{roster.ViewAll, 1, roster.ViewUnread},
		{roster.ViewGroups, 1, roster.ViewAll},
		{roster.ViewAll, -1, roster.ViewGroups},
		{roster.ViewUnread, -4, roster.ViewAll},
		{roster.ViewLocked, 1, roster.ViewAll},
	}
	for _, tt := range tests {
		if got := cycle(views, tt.cur, tt.step); got != tt.want {
			t.Errorf("cycle(%s, %d) = %s, want %s", tt.cur, tt.step, got, tt.want)
		}
	}
}

func TestCycleViewWraps(t *testing.T) {
	vm := NewViewModel(nil)
	if vm.View() != roster.ViewAll {
		t.Fatalf("initial view = %s", vm.View())
	}
	for range roster.Views {
		vm.CycleView(1)
	}
	if vm.View() != roster.ViewAll {
		t.Errorf("full cycle ended on %s", vm.View())
	}
	if got := vm.CycleView(-1); got != roster.Views[len(roster.Views)-1] {
		t.Errorf("CycleView(-1) = %s", got)
	}
}

func TestFindChat(t *testing.T) {
	chats := []api.ChatSummary{
		{ID: "c1", Title: "Emma Wilson"},
		{ID: "c2", Title: "Emma"},
		{ID: "c3", Title: "Weekend Hiking"},
	}
	tests := []struct {
		name, want string
	}{
		{"emma", "c2"},
		{"wilson", "c1"},
		{"HIKING", "c3"},
		{"  ", ""},
		{"nobody", ""},
	}
	for _, tt := range tests {
		if got := findChat(chats, tt.name); got != tt.want {
			t.Errorf("findChat(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestInvalidateCoalesces(t *testing.T) {
	vm := NewViewModel(nil)
	vm.Invalidate()
	vm.Invalidate()
	<-vm.RefreshCh()
	select {
	case <-vm.RefreshCh():
		t.Error("second signal should have been coalesced")
	default:
	}
}
