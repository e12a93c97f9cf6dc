// Package suggest proposes short replies for a conversation.
package suggest

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/wppsim/internal/model"
)

// Fallback is returned whenever no provider answer is usable.
var Fallback = []string{"Sounds good!", "Can you tell me more?", "Thanks!"}

const (
	historyLen     = 5
	maxSuggestions = 3
	systemPrompt   = "You suggest replies in a chat app. Given the recent conversation, " +
		"answer with exactly three short replies the user could send next, one per line, " +
		"without numbering or quotes."
)

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

// Service asks a Provider for replies and degrades to Fallback.
type Service struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewService creates a Service. A nil provider always yields Fallback.
func NewService(provider Provider, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, timeout: timeout, logger: logger}
}

// Suggest returns up to three replies for the chat from selfID's point of view.
func (s *Service) Suggest(ctx context.Context, chat model.Chat, selfID string) []string {
	if s.provider == nil {
		return fallback()
	}
	prompt := Transcript(chat.Messages, selfID)
	if prompt == "" {
		return fallback()
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	raw, err := s.provider.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		s.logger.Warn("suggestion provider failed", zap.String("chat", chat.ID), zap.Error(err))
		return fallback()
	}
	out := parse(raw)
	if len(out) == 0 {
		return fallback()
	}
	return out
}

// Transcript renders the last five readable messages as "Me:" and
// "Partner:" turns.
func Transcript(msgs []model.Message, selfID string) string {
	var turns []string
	for i := len(msgs) - 1; i >= 0 && len(turns) < historyLen; i-- {
		m := msgs[i]
		if m.Deleted || m.Type == model.System {
			continue
		}
		who := "Partner"
		if m.SenderID == selfID {
			who = "Me"
		}
		content := m.Content
		if m.Type != model.Text {
			content = "[" + string(m.Type) + "] " + content
		}
		turns = append(turns, who+": "+strings.TrimSpace(content))
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return strings.Join(turns, "\n")
}

func parse(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = listMarker.ReplaceAllString(strings.TrimSpace(line), "")
		line = strings.TrimSpace(strings.Trim(line, `"`))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func fallback() []string {
	return append([]string(nil), Fallback...)
}
