package model

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/matheus3301/wppsim/internal/api"
	domain "github.com/matheus3301/wppsim/internal/model"
	"github.com/matheus3301/wppsim/internal/roster"
	"github.com/matheus3301/wppsim/internal/stories"
	"github.com/matheus3301/wppsim/internal/tui/client"
)

// threadLimit caps how many messages the thread view fetches.
const threadLimit = 200

// ViewModel caches daemon state and signals UI refreshes.
type ViewModel struct {
	mu sync.RWMutex

	client   *client.Client
	status   *api.StatusResponse
	chats    []api.ChatSummary
	view     roster.View
	query    string
	active   *api.ChatDetail
	messages []domain.Message
	profile  *api.ProfileResponse
	contacts []api.Contact
	stories  []stories.Group
	calls    *api.CallsResponse

	refreshCh chan struct{}
}

// NewViewModel creates a new view model connected to the daemon client.
func NewViewModel(c *client.Client) *ViewModel {
	return &ViewModel{
		client:    c,
		view:      roster.ViewAll,
		refreshCh: make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

// Invalidate asks the UI to reload from the daemon.
func (vm *ViewModel) Invalidate() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// LoadStatus fetches the daemon status.
func (vm *ViewModel) LoadStatus(ctx context.Context) error {
	resp, err := vm.client.Session.GetStatus(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.status = resp
	vm.mu.Unlock()
	return nil
}

// LoadChats fetches the chat list for the current view and filter.
func (vm *ViewModel) LoadChats(ctx context.Context) error {
	vm.mu.RLock()
	req := &api.ListChatsRequest{View: string(vm.view), Query: vm.query}
	vm.mu.RUnlock()

	resp, err := vm.client.Chat.ListChats(ctx, req)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.chats = resp.Chats
	vm.mu.Unlock()
	return nil
}

// OpenChat selects chatID on the daemon and loads its thread.
func (vm *ViewModel) OpenChat(ctx context.Context, chatID string) error {
	if err := vm.client.Chat.Select(ctx, chatID); err != nil {
		return err
	}
	return vm.LoadThread(ctx, chatID)
}

// CloseChat deselects the active chat.
func (vm *ViewModel) CloseChat(ctx context.Context) error {
	vm.mu.Lock()
	vm.active = nil
	vm.messages = nil
	vm.mu.Unlock()
	return vm.client.Chat.Deselect(ctx)
}

// LoadThread fetches chat details and messages for chatID.
func (vm *ViewModel) LoadThread(ctx context.Context, chatID string) error {
	detail, err := vm.client.Chat.GetChat(ctx, chatID)
	if err != nil {
		return err
	}
	msgs, err := vm.client.Message.ListMessages(ctx, chatID, threadLimit)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.active = detail
	vm.messages = msgs
	vm.mu.Unlock()
	return nil
}

// ReloadActive refreshes the open thread, if any.
func (vm *ViewModel) ReloadActive(ctx context.Context) error {
	id := vm.ActiveChatID()
	if id == "" {
		return nil
	}
	return vm.LoadThread(ctx, id)
}

// LoadProfile fetches the current user's profile and contacts.
func (vm *ViewModel) LoadProfile(ctx context.Context) error {
	resp, err := vm.client.Profile.GetProfile(ctx)
	if err != nil {
		return err
	}
	contacts, err := vm.client.Profile.ListContacts(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.profile = resp
	vm.contacts = contacts
	vm.mu.Unlock()
	return nil
}

// LoadUpdates fetches stories and the call log.
func (vm *ViewModel) LoadUpdates(ctx context.Context) error {
	st, err := vm.client.Profile.ListStories(ctx, false)
	if err != nil {
		return err
	}
	cl, err := vm.client.Profile.ListCalls(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.stories = st.Groups
	vm.calls = cl
	vm.mu.Unlock()
	return nil
}

// Search runs a message search. starred lists starred messages instead.
func (vm *ViewModel) Search(ctx context.Context, query string, starred bool) ([]roster.Hit, error) {
	resp, err := vm.client.Message.Search(ctx, &api.SearchRequest{Query: query, Starred: starred})
	if err != nil {
		return nil, err
	}
	return resp.Hits, nil
}

// SetView switches the folder tab.
func (vm *ViewModel) SetView(v roster.View) {
	vm.mu.Lock()
	vm.view = v
	vm.mu.Unlock()
}

// View returns the current folder tab.
func (vm *ViewModel) View() roster.View {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.view
}

// CycleView moves the folder tab by step, wrapping around.
func (vm *ViewModel) CycleView(step int) roster.View {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.view = cycle(roster.Views, vm.view, step)
	return vm.view
}

func cycle(views []roster.View, cur roster.View, step int) roster.View {
	i := slices.Index(views, cur)
	if i < 0 {
		return views[0]
	}
	n := len(views)
	return views[((i+step)%n+n)%n]
}

// SetQuery sets the chat-list filter. Empty clears it.
func (vm *ViewModel) SetQuery(q string) {
	vm.mu.Lock()
	vm.query = q
	vm.mu.Unlock()
}

// Query returns the chat-list filter.
func (vm *ViewModel) Query() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.query
}

// Status returns the last fetched daemon status.
func (vm *ViewModel) Status() *api.StatusResponse {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.status
}

// Chats returns the last fetched chat list.
func (vm *ViewModel) Chats() []api.ChatSummary {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.chats
}

// Active returns the open chat, or nil.
func (vm *ViewModel) Active() *api.ChatDetail {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.active
}

// ActiveChatID returns the open chat id, or "".
func (vm *ViewModel) ActiveChatID() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.active == nil {
		return ""
	}
	return vm.active.Chat.ID
}

// Messages returns the open thread's messages, oldest first.
func (vm *ViewModel) Messages() []domain.Message {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.messages
}

// Profile returns the last fetched profile.
func (vm *ViewModel) Profile() *api.ProfileResponse {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.profile
}

// Contacts returns the last fetched contact list.
func (vm *ViewModel) Contacts() []api.Contact {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.contacts
}

// Updates returns the last fetched stories and call log.
func (vm *ViewModel) Updates() ([]stories.Group, *api.CallsResponse) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.stories, vm.calls
}

// FindChat returns the id of the first listed chat whose title contains
// name, case-insensitively.
func (vm *ViewModel) FindChat(name string) string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return findChat(vm.chats, name)
}

func findChat(chats []api.ChatSummary, name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	for _, c := range chats {
		if strings.EqualFold(c.Title, name) {
			return c.ID
		}
	}
	for _, c := range chats {
		if strings.Contains(strings.ToLower(c.Title), name) {
			return c.ID
		}
	}
	return ""
}

// Client exposes the daemon client for one-off calls.
func (vm *ViewModel) Client() *client.Client {
	return vm.client
}
