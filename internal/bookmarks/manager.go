package bookmarks

import (
	"sync"

	"github.com/designweb/gallery/internal/logger"
	"github.com/designweb/gallery/internal/store"
)

// Manager dispenses one Container per authenticated user. Containers live for
// the duration of the user's session; Drop releases them on logout.
type Manager struct {
	folders   store.FolderStoreIface
	bookmarks store.BookmarkStoreIface
	notify    Notifier
	log       logger.Logger

	mu         sync.Mutex
	containers map[string]*Container
}

func NewManager(folders store.FolderStoreIface, bookmarks store.BookmarkStoreIface, notify Notifier, log logger.Logger) *Manager {
	return &Manager{
		folders:    folders,
		bookmarks:  bookmarks,
		notify:     notify,
		log:        log,
		containers: make(map[string]*Container),
	}
}

// For returns the user's container, creating it on first use. The user
// reference is refreshed on every call so the container tracks auth-state
// transitions (sign-in, profile refresh).
func (m *Manager) For(u *store.User) *Container {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.containers[u.ID]
	if !ok {
		c = NewContainer(m.folders, m.bookmarks, m.notify, m.log)
		m.containers[u.ID] = c
	}
	c.SetUser(u)
	return c
}

// Drop discards the user's container. Called on sign-out so a later session
// starts from a clean mirror.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.containers, userID)
}
