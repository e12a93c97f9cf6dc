package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/seed"
)

// Storage keys. Each holds one JSON document.
const (
	KeyProfile  = "profile"
	KeyContacts = "contacts"
	KeyChats    = "chats"
	KeyStories  = "stories"
	KeyCalls    = "calls"
)

// Encode renders the persisted parts of st. Typing and the active chat are
// session-only and left out.
func Encode(st *roster.State) (map[string][]byte, error) {
	docs := map[string]any{
		KeyProfile:  st.Me,
		KeyContacts: nonNil(st.Contacts),
		KeyChats:    nonNil(st.Chats),
		KeyStories:  nonNil(st.Stories),
		KeyCalls:    nonNil(st.Calls),
	}
	out := make(map[string][]byte, len(docs))
	for k, v := range docs {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		out[k] = b
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Decode rebuilds a state from stored documents. The chats and profile
// documents are required; the others default to empty.
func Decode(docs map[string][]byte) (*roster.State, error) {
	st := &roster.State{Typing: make(map[string]bool)}
	targets := []struct {
		key      string
		dst      any
		required bool
	}{
		{KeyProfile, &st.Me, true},
		{KeyChats, &st.Chats, true},
		{KeyContacts, &st.Contacts, false},
		{KeyStories, &st.Stories, false},
		{KeyCalls, &st.Calls, false},
	}
	for _, t := range targets {
		raw, ok := docs[t.key]
		if !ok {
			if t.required {
				return nil, fmt.Errorf("decode: %s missing", t.key)
			}
			continue
		}
		if err := json.Unmarshal(raw, t.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t.key, err)
		}
	}
	for i := range st.Chats {
		normalize(&st.Chats[i])
	}
	if err := seed.Validate(st); err != nil {
		return nil, err
	}
	return st, nil
}

func normalize(c *model.Chat) {
	if c.Messages == nil {
		c.Messages = []model.Message{}
	}
	if c.Folder == "" {
		c.Folder = model.FolderDefault
	}
	for i := range c.Messages {
		m := &c.Messages[i]
		if m.Reactions == nil {
			m.Reactions = []model.Reaction{}
		}
		if m.Deleted {
			m.Content = model.DeletedPlaceholder
			m.Type = model.Text
		}
	}
	c.SyncLast()
}

// Save writes the persisted parts of st in one batch.
func Save(ctx context.Context, b Backend, st *roster.State) error {
	docs, err := Encode(st)
	if err != nil {
		return err
	}
	if err := b.PutAll(ctx, docs); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load reads the stored state. When nothing is stored, or what is stored
// cannot be read, the seed dataset anchored at now is returned instead and
// fromSeed is true. Only backend failures are returned as errors.
func Load(ctx context.Context, b Backend, now time.Time, logger *zap.Logger) (st *roster.State, fromSeed bool, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	docs := make(map[string][]byte)
	for _, key := range []string{KeyProfile, KeyContacts, KeyChats, KeyStories, KeyCalls} {
		raw, err := b.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		docs[key] = raw
	}
	if len(docs) == 0 {
		logger.Info("no stored state, starting from seed")
		return seed.Default(now), true, nil
	}
	st, err = Decode(docs)
	if err != nil {
		logger.Warn("stored state unreadable, falling back to seed", zap.Error(err))
		return seed.Default(now), true, nil
	}
	return st, false, nil
}
