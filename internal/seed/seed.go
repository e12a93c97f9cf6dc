// Package seed builds the initial state used on first start and whenever
// stored state cannot be read.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
)

//go:embed seed.yaml
var defaultDataset []byte

type dataset struct {
	Me       userDoc    `yaml:"me"`
	Contacts []userDoc  `yaml:"contacts"`
	Chats    []chatDoc  `yaml:"chats"`
	Stories  []storyDoc `yaml:"stories"`
	Calls    []callDoc  `yaml:"calls"`
}

type userDoc struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Avatar   string       `yaml:"avatar"`
	Status   string       `yaml:"status"`
	Bio      string       `yaml:"bio"`
	Phone    string       `yaml:"phone"`
	LastSeen string       `yaml:"last_seen"`
	Settings *settingsDoc `yaml:"settings"`
}

type settingsDoc struct {
	ReadReceipts bool   `yaml:"read_receipts"`
	EnterToSend  bool   `yaml:"enter_to_send"`
	Theme        string `yaml:"theme"`
}

type chatDoc struct {
	ID            string       `yaml:"id"`
	Type          string       `yaml:"type"`
	Name          string       `yaml:"name"`
	Participants  []string     `yaml:"participants"`
	Pinned        bool         `yaml:"pinned"`
	Archived      bool         `yaml:"archived"`
	Muted         bool         `yaml:"muted"`
	Folder        string       `yaml:"folder"`
	Note          string       `yaml:"note"`
	Unread        int          `yaml:"unread"`
	PinnedMessage string       `yaml:"pinned_message"`
	Messages      []messageDoc `yaml:"messages"`
}

type messageDoc struct {
	ID        string           `yaml:"id"`
	From      string           `yaml:"from"`
	Type      string           `yaml:"type"`
	Text      string           `yaml:"text"`
	Media     string           `yaml:"media"`
	Ago       string           `yaml:"ago"`
	Status    string           `yaml:"status"`
	Starred   bool             `yaml:"starred"`
	Reactions []model.Reaction `yaml:"reactions"`
	Poll      []pollDoc        `yaml:"poll"`
}

type pollDoc struct {
	ID     string   `yaml:"id"`
	Text   string   `yaml:"text"`
	Voters []string `yaml:"voters"`
}

type storyDoc struct {
	ID         string   `yaml:"id"`
	Author     string   `yaml:"author"`
	Type       string   `yaml:"type"`
	Content    string   `yaml:"content"`
	Background string   `yaml:"background"`
	Ago        string   `yaml:"ago"`
	Viewers    []string `yaml:"viewers"`
}

type callDoc struct {
	ID       string `yaml:"id"`
	Peer     string `yaml:"peer"`
	Kind     string `yaml:"kind"`
	State    string `yaml:"state"`
	Ago      string `yaml:"ago"`
	Duration string `yaml:"duration"`
}

// Default builds the embedded dataset with every relative time anchored at now.
func Default(now time.Time) *roster.State {
	st, err := Parse(defaultDataset, now)
	if err != nil {
		panic(fmt.Sprintf("seed: embedded dataset is invalid: %v", err))
	}
	return st
}

// Parse decodes a YAML dataset. Times are written as durations before now.
func Parse(data []byte, now time.Time) (*roster.State, error) {
	var ds dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	b := builder{now: now}
	st := &roster.State{
		Me:     b.user(ds.Me),
		Typing: make(map[string]bool),
	}
	for _, u := range ds.Contacts {
		st.Contacts = append(st.Contacts, b.user(u))
	}
	for _, c := range ds.Chats {
		st.Chats = append(st.Chats, b.chat(c))
	}
	for _, s := range ds.Stories {
		ts := b.ago(s.Ago)
		viewers := s.Viewers
		if viewers == nil {
			viewers = []string{}
		}
		st.Stories = append(st.Stories, model.Story{
			ID: s.ID, AuthorID: s.Author, Type: model.StoryType(s.Type), Content: s.Content,
			Background: s.Background, Timestamp: ts, ExpiresAt: ts.Add(model.StoryTTL), Viewers: viewers,
		})
	}
	for _, c := range ds.Calls {
		start := b.ago(c.Ago)
		rec := model.CallRecord{ID: c.ID, PeerID: c.Peer, Kind: model.CallKind(c.Kind),
			State: model.CallState(c.State), StartedAt: start}
		end := start
		if c.Duration != "" {
			connected := start.Add(5 * time.Second)
			rec.ConnectedAt = &connected
			end = connected.Add(b.duration(c.Duration))
		}
		rec.EndedAt = &end
		st.Calls = append(st.Calls, rec)
	}
	if b.err != nil {
		return nil, b.err
	}
	if err := Validate(st); err != nil {
		return nil, err
	}
	return st, nil
}

// Validate checks the references inside a state: participants, senders and
// authors must be known users, and message ids must be unique per chat.
func Validate(st *roster.State) error {
	if st.Me.ID == "" {
		return fmt.Errorf("seed: current user has no id")
	}
	known := func(id string) bool { _, ok := st.User(id); return ok }
	for _, c := range st.Chats {
		seen := make(map[string]bool)
		for _, p := range c.Participants {
			if !known(p) {
				return fmt.Errorf("seed: chat %s: unknown participant %s", c.ID, p)
			}
		}
		for _, m := range c.Messages {
			if seen[m.ID] {
				return fmt.Errorf("seed: chat %s: duplicate message %s", c.ID, m.ID)
			}
			seen[m.ID] = true
			if !known(m.SenderID) {
				return fmt.Errorf("seed: chat %s: message %s from unknown user %s", c.ID, m.ID, m.SenderID)
			}
		}
	}
	for _, s := range st.Stories {
		if !known(s.AuthorID) {
			return fmt.Errorf("seed: story %s: unknown author %s", s.ID, s.AuthorID)
		}
	}
	return nil
}

type builder struct {
	now time.Time
	err error
}

func (b *builder) duration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("seed: bad duration %q: %w", s, err)
	}
	return d
}

func (b *builder) ago(s string) time.Time {
	return b.now.Add(-b.duration(s))
}

func (b *builder) user(d userDoc) model.User {
	u := model.User{
		ID: d.ID, Name: d.Name, Avatar: d.Avatar, Presence: model.Presence(d.Status),
		Bio: d.Bio, Phone: d.Phone, LastSeen: b.ago(d.LastSeen),
	}
	if u.Presence == "" {
		u.Presence = model.Offline
	}
	if d.Settings != nil {
		u.Settings = &model.Settings{
			ReadReceipts: d.Settings.ReadReceipts,
			EnterToSend:  d.Settings.EnterToSend,
			Theme:        d.Settings.Theme,
		}
	}
	return u
}

func (b *builder) chat(d chatDoc) model.Chat {
	c := model.Chat{
		ID: d.ID, Type: model.ChatType(d.Type), Name: d.Name, Participants: d.Participants,
		Pinned: d.Pinned, Archived: d.Archived, Muted: d.Muted, Folder: model.Folder(d.Folder),
		Note: d.Note, Unread: d.Unread, PinnedMessageID: d.PinnedMessage, Messages: []model.Message{},
	}
	if c.Type == "" {
		c.Type = model.Individual
	}
	if c.Folder == "" {
		c.Folder = model.FolderDefault
	}
	for _, m := range d.Messages {
		msg := model.Message{
			ID: m.ID, SenderID: m.From, Content: m.Text, Type: model.MessageType(m.Type),
			Timestamp: b.ago(m.Ago), Status: model.Delivery(m.Status), MediaURL: m.Media,
			Starred: m.Starred, Reactions: m.Reactions,
		}
		if msg.Type == "" {
			msg.Type = model.Text
		}
		if msg.Status == "" {
			msg.Status = model.Read
		}
		if msg.Reactions == nil {
			msg.Reactions = []model.Reaction{}
		}
		for _, o := range m.Poll {
			voters := o.Voters
			if voters == nil {
				voters = []string{}
			}
			msg.PollOptions = append(msg.PollOptions, model.PollOption{ID: o.ID, Text: o.Text, Voters: voters})
		}
		c.Messages = append(c.Messages, msg)
	}
	c.SyncLast()
	return c
}
