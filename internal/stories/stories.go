// Package stories manages status posts that expire a day after they are made.
package stories

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
)

// Service adds, views and lists stories.
type Service struct {
	store *roster.Store
}

// New creates a Service over store.
func New(store *roster.Store) *Service {
	return &Service{store: store}
}

// Add posts a story authored by the current user.
func (s *Service) Add(typ model.StoryType, content, background string) (model.Story, error) {
	content = strings.TrimSpace(content)
	switch typ {
	case model.StoryText, model.StoryImage, model.StoryVideo:
	default:
		return model.Story{}, fmt.Errorf("%w: unknown story type %q", roster.ErrInvalidArgument, typ)
	}
	if content == "" {
		return model.Story{}, fmt.Errorf("%w: story content is empty", roster.ErrInvalidArgument)
	}
	now := s.store.Now()
	var story model.Story
	_, err := s.store.Update("add_story", func(st *roster.State) error {
		story = model.Story{
			ID:         uuid.NewString(),
			AuthorID:   st.Me.ID,
			Type:       typ,
			Content:    content,
			Background: background,
			Timestamp:  now,
			ExpiresAt:  now.Add(model.StoryTTL),
			Viewers:    []string{},
		}
		st.Stories = append(st.Stories, story)
		return nil
	})
	return story, err
}

// View records the current user as a viewer of someone else's story.
func (s *Service) View(storyID string) error {
	_, err := s.store.Update("view_story", func(st *roster.State) error {
		i := slices.IndexFunc(st.Stories, func(story model.Story) bool { return story.ID == storyID })
		if i < 0 {
			return fmt.Errorf("%w: story %s", roster.ErrMessageNotFound, storyID)
		}
		story := &st.Stories[i]
		if story.AuthorID != st.Me.ID && !slices.Contains(story.Viewers, st.Me.ID) {
			story.Viewers = append(story.Viewers, st.Me.ID)
		}
		return nil
	})
	return err
}

// Group is one author's stories, oldest first.
type Group struct {
	Author  model.User
	Stories []model.Story
	// Seen is true when the current user viewed every story in the group.
	Seen bool
}

// List groups stories by author. The current user's group comes first, the
// rest by their newest story. Expired stories are skipped unless
// includeExpired is set; expiry is only checked here, nothing is deleted.
func (s *Service) List(includeExpired bool) []Group {
	st := s.store.Snapshot()
	now := s.store.Now()
	byAuthor := make(map[string]*Group)
	var order []string
	for _, story := range st.Stories {
		if !includeExpired && story.Expired(now) {
			continue
		}
		g, ok := byAuthor[story.AuthorID]
		if !ok {
			author, _ := st.User(story.AuthorID)
			if author.ID == "" {
				author.ID = story.AuthorID
			}
			g = &Group{Author: author, Seen: true}
			byAuthor[story.AuthorID] = g
			order = append(order, story.AuthorID)
		}
		g.Stories = append(g.Stories, story)
		if story.AuthorID != st.Me.ID && !slices.Contains(story.Viewers, st.Me.ID) {
			g.Seen = false
		}
	}

	groups := make([]Group, 0, len(order))
	for _, id := range order {
		g := byAuthor[id]
		slices.SortStableFunc(g.Stories, func(a, b model.Story) int { return a.Timestamp.Compare(b.Timestamp) })
		groups = append(groups, *g)
	}
	me := st.Me.ID
	slices.SortStableFunc(groups, func(a, b Group) int {
		if (a.Author.ID == me) != (b.Author.ID == me) {
			if a.Author.ID == me {
				return -1
			}
			return 1
		}
		return newest(b).Compare(newest(a))
	})
	return groups
}

func newest(g Group) time.Time {
	return g.Stories[len(g.Stories)-1].Timestamp
}
