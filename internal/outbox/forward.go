package outbox

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matheus3301/wppsim/internal/bus"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
)

// Forward copies a message into targetChatID as a forwarded message. The
// target becomes the active chat first unless its counterpart is blocked; the
// original message is untouched and no typing or reply is simulated.
func (s *Sender) Forward(chatID, messageID, targetChatID string) (model.Message, error) {
	_, src, ok := s.store.Snapshot().Message(chatID, messageID)
	if !ok {
		if _, found := s.store.Snapshot().Chat(chatID); !found {
			return model.Message{}, roster.ErrChatNotFound
		}
		return model.Message{}, roster.ErrMessageNotFound
	}
	if src.Deleted || src.Type == model.System {
		return model.Message{}, fmt.Errorf("%w: message cannot be forwarded", roster.ErrInvalidArgument)
	}
	st := s.store.Snapshot()
	target, ok := st.Chat(targetChatID)
	if !ok {
		return model.Message{}, roster.ErrChatNotFound
	}
	if st.BlocksCounterpart(*target) {
		return model.Message{}, s.blocked()
	}
	if err := s.store.SelectChat(targetChatID); err != nil {
		return model.Message{}, err
	}
	req := SendRequest{
		ChatID:    targetChatID,
		Content:   src.Content,
		Type:      src.Type,
		MediaURL:  src.MediaURL,
		forwarded: true,
	}
	for _, o := range src.PollOptions {
		req.PollOptions = append(req.PollOptions, o.Text)
	}
	return s.Send(req)
}

// ReplyToStory opens the chat with the story's author and sends text quoting the story.
func (s *Sender) ReplyToStory(storyID, text string) (string, model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return "", model.Message{}, fmt.Errorf("%w: reply is empty", roster.ErrInvalidArgument)
	}
	st := s.store.Snapshot()
	i := slices.IndexFunc(st.Stories, func(story model.Story) bool { return story.ID == storyID })
	if i < 0 {
		return "", model.Message{}, fmt.Errorf("%w: story %s", roster.ErrMessageNotFound, storyID)
	}
	story := st.Stories[i]
	if story.AuthorID == st.Me.ID {
		return "", model.Message{}, fmt.Errorf("%w: cannot reply to your own story", roster.ErrInvalidArgument)
	}
	if st.Me.HasBlocked(story.AuthorID) {
		return "", model.Message{}, s.blocked()
	}
	chatID, err := s.store.CreateOrOpenChat(story.AuthorID)
	if err != nil {
		return "", model.Message{}, err
	}
	msg, err := s.Send(SendRequest{
		ChatID:  chatID,
		Content: fmt.Sprintf("Replying to your status %q: %s", excerpt(story), strings.TrimSpace(text)),
		Type:    model.Text,
	})
	return chatID, msg, err
}

// blocked publishes the blocked-contact notice and returns ErrBlocked.
func (s *Sender) blocked() error {
	if s.bus != nil {
		s.bus.Emit(bus.KindNotice, ErrBlocked.Error())
	}
	return ErrBlocked
}

func excerpt(story model.Story) string {
	if story.Type != model.StoryText {
		return string(story.Type)
	}
	r := []rune(story.Content)
	if len(r) > 40 {
		return string(r[:40]) + "…"
	}
	return story.Content
}
