// Package outbox turns a user's send into a message and drives its simulated
// delivery lifecycle: delivered and read receipts, the counterpart typing,
// and the counterpart's canned reply.
package outbox

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matheus3301/wppsim/internal/bus"
	"github.com/matheus3301/wppsim/internal/clock"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/status"
)

// ErrBlocked is returned when sending to a contact the user has blocked.
var ErrBlocked = errors.New("you blocked this contact, unblock them to send a message")

// errStale marks a timer callback whose target moved on; nothing is committed.
var errStale = errors.New("stale lifecycle callback")

// Timings controls the simulated lifecycle delays, measured from the send.
type Timings struct {
	DeliverAfter     time.Duration
	ReadAfter        time.Duration
	TypingStartAfter time.Duration
	TypingStopAfter  time.Duration
}

// DefaultTimings returns the stock lifecycle delays.
func DefaultTimings() Timings {
	return Timings{
		DeliverAfter:     time.Second,
		ReadAfter:        2500 * time.Millisecond,
		TypingStartAfter: 2 * time.Second,
		TypingStopAfter:  4500 * time.Millisecond,
	}
}

// DefaultAutoReplies are the counterpart's canned answers.
var DefaultAutoReplies = []string{
	"Got it 👍",
	"Haha, nice!",
	"Sure, let me check and get back to you.",
	"Sounds good to me.",
	"Can we talk later?",
}

// Options configures a Sender.
type Options struct {
	Timings     Timings
	AutoReplies []string
}

// SendRequest describes a message to compose.
type SendRequest struct {
	ChatID      string
	Content     string
	Type        model.MessageType
	MediaURL    string
	ReplyToID   string
	PollOptions []string

	forwarded bool
}

// StatusChange is the payload of message.status_changed events.
type StatusChange struct {
	ChatID    string
	MessageID string
	Status    model.Delivery
}

// Typing is the payload of typing events.
type Typing struct {
	ChatID string
	UserID string
}

// Arrival is the payload of message.sent and message.received events.
type Arrival struct {
	ChatID  string
	Message model.Message
}

// Sender composes outgoing messages and schedules their lifecycle.
type Sender struct {
	store  *roster.Store
	clock  clock.Clock
	bus    *bus.Bus
	logger *zap.Logger
	opts   Options

	mu       sync.Mutex
	timers   map[string]map[uint64]clock.Timer
	nextID   uint64
	replyIdx int
	stopped  bool
}

// NewSender creates a Sender that schedules on the store's clock.
func NewSender(store *roster.Store, b *bus.Bus, opts Options, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timings == (Timings{}) {
		opts.Timings = DefaultTimings()
	}
	if len(opts.AutoReplies) == 0 {
		opts.AutoReplies = DefaultAutoReplies
	}
	return &Sender{
		store:  store,
		clock:  store.Clock(),
		bus:    b,
		logger: logger,
		opts:   opts,
		timers: make(map[string]map[uint64]clock.Timer),
	}
}

// Send appends a new outgoing message to the chat and schedules its lifecycle.
func (s *Sender) Send(req SendRequest) (model.Message, error) {
	if req.Type == "" {
		req.Type = model.Text
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := validate(req); err != nil {
		return model.Message{}, err
	}

	now := s.clock.Now()
	var (
		msg          model.Message
		readReceipts bool
		active       bool
		peer         string
	)
	_, err := s.store.Update("send_message", func(st *roster.State) error {
		c, ok := st.Chat(req.ChatID)
		if !ok {
			return roster.ErrChatNotFound
		}
		if st.BlocksCounterpart(*c) {
			return ErrBlocked
		}
		msg = model.Message{
			ID:        uuid.NewString(),
			SenderID:  st.Me.ID,
			Content:   req.Content,
			Type:      req.Type,
			Timestamp: now,
			Status:    model.Sent,
			MediaURL:  req.MediaURL,
			Forwarded: req.forwarded,
			Reactions: []model.Reaction{},
		}
		if req.ReplyToID != "" && c.MessageIndex(req.ReplyToID) >= 0 {
			msg.ReplyToID = req.ReplyToID
		}
		for _, text := range req.PollOptions {
			msg.PollOptions = append(msg.PollOptions, model.PollOption{
				ID: uuid.NewString(), Text: strings.TrimSpace(text), Voters: []string{},
			})
		}
		c.Messages = append(c.Messages, msg)
		c.SyncLast()
		c.Unread = 0
		readReceipts = st.Me.ReadReceipts()
		active = st.ActiveChatID == c.ID
		peer = s.pickResponder(*c, st.Me.ID)
		st.Bump(c.ID)
		return nil
	})
	if errors.Is(err, ErrBlocked) {
		return model.Message{}, s.blocked()
	}
	if err != nil {
		return model.Message{}, err
	}

	s.logger.Info("message sent", zap.String("chat", req.ChatID), zap.String("message", msg.ID),
		zap.String("type", string(msg.Type)), zap.Bool("forwarded", msg.Forwarded))
	if s.bus != nil {
		s.bus.Emit(bus.KindMessageSent, Arrival{ChatID: req.ChatID, Message: msg})
	}

	t := s.opts.Timings
	s.schedule(req.ChatID, t.DeliverAfter, func() { s.advance(req.ChatID, msg.ID, model.Delivered) })
	if readReceipts {
		s.schedule(req.ChatID, t.ReadAfter, func() { s.advance(req.ChatID, msg.ID, model.Read) })
	}
	if active && !req.forwarded && peer != "" {
		s.schedule(req.ChatID, t.TypingStartAfter, func() { s.startTyping(req.ChatID, peer) })
		s.schedule(req.ChatID, t.TypingStopAfter, func() { s.reply(req.ChatID, peer) })
	}
	return msg, nil
}

func validate(req SendRequest) error {
	switch req.Type {
	case model.Text:
		if req.Content == "" {
			return fmt.Errorf("%w: message content is empty", roster.ErrInvalidArgument)
		}
	case model.Poll:
		if req.Content == "" {
			return fmt.Errorf("%w: a poll needs a question", roster.ErrInvalidArgument)
		}
		n := 0
		for _, o := range req.PollOptions {
			if strings.TrimSpace(o) != "" {
				n++
			}
		}
		if n < 2 || n != len(req.PollOptions) {
			return fmt.Errorf("%w: a poll needs at least two non-empty options", roster.ErrInvalidArgument)
		}
	case model.Image, model.Video, model.Audio, model.Document:
		if req.MediaURL == "" {
			return fmt.Errorf("%w: %s message needs a media reference", roster.ErrInvalidArgument, req.Type)
		}
	case model.Location, model.Contact:
		if req.Content == "" {
			return fmt.Errorf("%w: %s message needs content", roster.ErrInvalidArgument, req.Type)
		}
	case model.System:
		return fmt.Errorf("%w: system messages cannot be sent", roster.ErrInvalidArgument)
	default:
		return fmt.Errorf("%w: unknown message type %q", roster.ErrInvalidArgument, req.Type)
	}
	return nil
}

// pickResponder chooses who answers in a chat: the counterpart of an
// individual chat, or the members of a group in turn.
func (s *Sender) pickResponder(c model.Chat, selfID string) string {
	var others []string
	for _, p := range c.Participants {
		if p != selfID {
			others = append(others, p)
		}
	}
	if len(others) == 0 {
		return ""
	}
	if c.Type != model.Group {
		return others[0]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return others[s.replyIdx%len(others)]
}

// advance moves a message forward to next if it still exists and has not
// already gone past it.
func (s *Sender) advance(chatID, messageID string, next model.Delivery) {
	_, err := s.store.Update("message_"+string(next), func(st *roster.State) error {
		c, m, ok := st.Message(chatID, messageID)
		if !ok || m.Deleted || !status.CanAdvance(m.Status, next) {
			return errStale
		}
		m.Status = next
		c.SyncLast()
		return nil
	})
	if err != nil {
		s.logger.Debug("status update skipped", zap.String("chat", chatID),
			zap.String("message", messageID), zap.String("status", string(next)))
		return
	}
	if s.bus != nil {
		s.bus.Emit(bus.KindMessageStatus, StatusChange{ChatID: chatID, MessageID: messageID, Status: next})
	}
}

func (s *Sender) startTyping(chatID, peer string) {
	_, err := s.store.Update("typing_started", func(st *roster.State) error {
		if _, ok := st.Chat(chatID); !ok || st.Me.HasBlocked(peer) {
			return errStale
		}
		st.Typing[chatID] = true
		return nil
	})
	if err == nil && s.bus != nil {
		s.bus.Emit(bus.KindTypingStarted, Typing{ChatID: chatID, UserID: peer})
	}
}

// reply clears the typing indicator and appends the counterpart's answer.
func (s *Sender) reply(chatID, peer string) {
	now := s.clock.Now()
	text := s.nextReply()
	var msg model.Message
	_, err := s.store.Update("auto_reply", func(st *roster.State) error {
		c, ok := st.Chat(chatID)
		if !ok {
			return errStale
		}
		delete(st.Typing, chatID)
		if st.Me.HasBlocked(peer) {
			return nil
		}
		msg = model.Message{
			ID:        uuid.NewString(),
			SenderID:  peer,
			Content:   text,
			Type:      model.Text,
			Timestamp: now,
			Status:    model.Read,
			Reactions: []model.Reaction{},
		}
		c.Messages = append(c.Messages, msg)
		c.SyncLast()
		if st.ActiveChatID != chatID {
			c.Unread++
		}
		st.Bump(chatID)
		return nil
	})
	if err != nil {
		s.logger.Debug("auto reply skipped", zap.String("chat", chatID))
		return
	}
	if s.bus == nil {
		return
	}
	s.bus.Emit(bus.KindTypingStopped, Typing{ChatID: chatID, UserID: peer})
	if msg.ID != "" {
		s.bus.Emit(bus.KindMessageArrived, Arrival{ChatID: chatID, Message: msg})
	}
}

func (s *Sender) nextReply() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.opts.AutoReplies[s.replyIdx%len(s.opts.AutoReplies)]
	s.replyIdx++
	return text
}

// schedule runs fn after d unless the chat's timers are cancelled first.
func (s *Sender) schedule(chatID string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	id := s.nextID
	s.nextID++
	if s.timers[chatID] == nil {
		s.timers[chatID] = make(map[uint64]clock.Timer)
	}
	s.timers[chatID][id] = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[chatID][id]
		delete(s.timers[chatID], id)
		if len(s.timers[chatID]) == 0 {
			delete(s.timers, chatID)
		}
		s.mu.Unlock()
		if live {
			fn()
		}
	})
}

// Pending returns how many lifecycle callbacks are scheduled.
func (s *Sender) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ts := range s.timers {
		n += len(ts)
	}
	return n
}

// CancelChat drops every pending callback for chatID.
func (s *Sender) CancelChat(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers[chatID] {
		t.Stop()
	}
	delete(s.timers, chatID)
}

// Stop cancels all pending callbacks. Later sends still commit but schedule nothing.
func (s *Sender) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for chatID, ts := range s.timers {
		for _, t := range ts {
			t.Stop()
		}
		delete(s.timers, chatID)
	}
}
