package stories

import (
	"errors"
	"testing"
	"time"

	"github.com/matheus3301/wppsim/internal/clock"
	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
)

var epoch = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *clock.FakeClock, *roster.Store) {
	t.Helper()
	story := func(id, author string, age time.Duration) model.Story {
		ts := epoch.Add(-age)
		return model.Story{ID: id, AuthorID: author, Type: model.StoryText, Content: id,
			Timestamp: ts, ExpiresAt: ts.Add(model.StoryTTL), Viewers: []string{}}
	}
	st := &roster.State{
		Me:       model.User{ID: "me", Name: "Me"},
		Contacts: []model.User{{ID: "u1", Name: "Alice"}, {ID: "u2", Name: "Bob"}},
		Stories: []model.Story{
			story("a-old", "u1", 5*time.Hour),
			story("b-new", "u2", time.Hour),
			story("a-new", "u1", 3*time.Hour),
			story("expired", "u2", 30*time.Hour),
		},
	}
	clk := clock.Fake(epoch)
	store := roster.NewStore(st, nil, clk, nil)
	return New(store), clk, store
}

func TestListGroupsAndOrders(t *testing.T) {
	s, _, _ := setup(t)
	groups := s.List(false)
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].Author.Name != "Bob" || groups[1].Author.Name != "Alice" {
		t.Errorf("order = %s, %s", groups[0].Author.Name, groups[1].Author.Name)
	}
	if len(groups[0].Stories) != 1 {
		t.Errorf("expired story listed: %+v", groups[0].Stories)
	}
	if a := groups[1].Stories; a[0].ID != "a-old" || a[1].ID != "a-new" {
		t.Errorf("alice stories = %s, %s", a[0].ID, a[1].ID)
	}
	if all := s.List(true); len(all[0].Stories)+len(all[1].Stories) != 4 {
		t.Error("includeExpired should list every story")
	}
}

func TestOwnStoriesFirst(t *testing.T) {
	s, clk, _ := setup(t)
	clk.Advance(-2 * time.Hour)
	if _, err := s.Add(model.StoryText, "hello", "#25D366"); err != nil {
		t.Fatal(err)
	}
	groups := s.List(false)
	if groups[0].Author.ID != "me" {
		t.Errorf("first group = %s, want me", groups[0].Author.ID)
	}
}

func TestAddSetsExpiry(t *testing.T) {
	s, _, _ := setup(t)
	story, err := s.Add(model.StoryImage, "beach.jpg", "")
	if err != nil {
		t.Fatal(err)
	}
	if !story.ExpiresAt.Equal(epoch.Add(24*time.Hour)) || story.AuthorID != "me" {
		t.Errorf("story = %+v", story)
	}
	if _, err := s.Add("poem", "x", ""); !errors.Is(err, roster.ErrInvalidArgument) {
		t.Errorf("bad type err = %v", err)
	}
	if _, err := s.Add(model.StoryText, " ", ""); !errors.Is(err, roster.ErrInvalidArgument) {
		t.Errorf("empty err = %v", err)
	}
}

func TestViewOnce(t *testing.T) {
	s, _, store := setup(t)
	for range 2 {
		if err := s.View("b-new"); err != nil {
			t.Fatal(err)
		}
	}
	for _, story := range store.Snapshot().Stories {
		if story.ID == "b-new" && len(story.Viewers) != 1 {
			t.Errorf("viewers = %v", story.Viewers)
		}
	}
	groups := s.List(false)
	if !groups[0].Seen || groups[1].Seen {
		t.Errorf("seen flags = %v, %v", groups[0].Seen, groups[1].Seen)
	}
	if err := s.View("ghost"); !roster.IsNotFound(err) {
		t.Errorf("unknown story err = %v", err)
	}
}
