package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/matheus3301/wppsim/internal/api"
	"github.com/matheus3301/wppsim/internal/model"
)

func testTree(got *[]string, n *int) *Command {
	return &Command{
		Name: "root",
		Subcommands: []*Command{
			{
				Name:  "leaf",
				Usage: "<arg>",
				Flags: func(fs *pflag.FlagSet) {
					fs.IntVarP(n, "num", "n", 1, "a number")
				},
				Run: func(args []string) error {
					if len(args) == 0 {
						return errUsage
					}
					*got = args
					return nil
				},
			},
		},
	}
}

func TestExecuteDispatchesWithFlags(t *testing.T) {
	var got []string
	var n int
	root := testTree(&got, &n)
	if err := root.Execute([]string{"leaf", "-n", "3", "a", "b"}); err != nil {
		t.Fatal(err)
	}
	if n != 3 || strings.Join(got, ",") != "a,b" {
		t.Errorf("n=%d args=%v", n, got)
	}
}

func TestExecuteUsageError(t *testing.T) {
	var got []string
	var n int
	err := testTree(&got, &n).Execute([]string{"leaf"})
	if err == nil || err.Error() != "usage: root leaf <arg>" {
		t.Errorf("err = %v", err)
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	var got []string
	var n int
	err := testTree(&got, &n).Execute([]string{"nope"})
	if err == nil || !strings.Contains(err.Error(), `unknown command "nope"`) {
		t.Errorf("err = %v", err)
	}
}

func TestExecuteBadFlag(t *testing.T) {
	var got []string
	var n int
	err := testTree(&got, &n).Execute([]string{"leaf", "--bogus", "x"})
	if err == nil || !strings.Contains(err.Error(), "root leaf --help") {
		t.Errorf("err = %v", err)
	}
}

func TestHelpListsSubcommands(t *testing.T) {
	var buf bytes.Buffer
	root := newRoot(&ctl{})
	root.help = &buf
	if err := root.Execute([]string{"--help"}); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"chats", "send", "message", "profile", "watch"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("help missing %q:\n%s", want, buf.String())
		}
	}
}

func TestRunRejectsInvalidSession(t *testing.T) {
	t.Setenv("WPPSIM_HOME", t.TempDir())
	var out, errOut bytes.Buffer
	err := run([]string{"--session", "bad/name", "status"}, &out, &errOut)
	if err == nil {
		t.Fatal("invalid session name should fail")
	}
}

func TestDescribe(t *testing.T) {
	err := status.Error(codes.FailedPrecondition, "chat is locked")
	if got := describe(err); got != "chat is locked (FailedPrecondition)" {
		t.Errorf("describe = %q", got)
	}
	if got := describe(errors.New("plain")); got != "plain" {
		t.Errorf("describe = %q", got)
	}
}

func TestParseSwitch(t *testing.T) {
	for in, want := range map[string]bool{"on": true, "OFF": false, "true": true, "0": false} {
		got, err := parseSwitch(in)
		if err != nil || got != want {
			t.Errorf("parseSwitch(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := parseSwitch("maybe"); err == nil {
		t.Error("parseSwitch(maybe) should fail")
	}
}

func TestChatFlags(t *testing.T) {
	ch := api.ChatSummary{ID: "c1", Pinned: true, Muted: true, Folder: model.FolderWork}
	if got := chatFlags(ch, "c1"); got != "active,pinned,muted,work" {
		t.Errorf("chatFlags = %q", got)
	}
	if got := chatFlags(api.ChatSummary{ID: "c2", Folder: model.FolderDefault}, ""); got != "-" {
		t.Errorf("chatFlags = %q", got)
	}
}

func TestMessageText(t *testing.T) {
	tests := []struct {
		m    model.Message
		want string
	}{
		{model.Message{Type: model.Text, Content: "a\nb", Edited: true}, "a ⏎ b (edited)"},
		{model.Message{Type: model.Image, Content: "cat.png", Forwarded: true}, "[fwd] [image] cat.png"},
		{model.Message{Type: model.Text, Deleted: true, Content: "x"}, model.DeletedPlaceholder},
		{model.Message{Type: model.Text, Content: "hi", Starred: true, Reactions: []model.Reaction{{Emoji: "👍", Count: 2}}}, "hi ★ 👍2"},
		{model.Message{Type: model.Poll, Content: "Lunch?", PollOptions: []model.PollOption{{Text: "Tacos", Voters: []string{"u1"}}}}, "📊 Lunch? [1] Tacos (1) "},
	}
	for _, tt := range tests {
		if got := messageText(tt.m); got != tt.want {
			t.Errorf("messageText = %q, want %q", got, tt.want)
		}
	}
}

func TestLastLine(t *testing.T) {
	if lastLine(nil) != "" {
		t.Error("nil message should render empty")
	}
	m := &model.Message{Type: model.Text, Content: "first\nsecond", Timestamp: time.Now().Add(-2*time.Hour - time.Minute)}
	if got := lastLine(m); got != "2 hours ago  first" {
		t.Errorf("lastLine = %q", got)
	}
}

func TestOptional(t *testing.T) {
	if optional("") != nil {
		t.Error("empty should be nil")
	}
	if p := optional("x"); p == nil || *p != "x" {
		t.Error("optional(x) lost the value")
	}
}
