// Package bookmarks holds the authenticated user's bookmark folders and
// saved-website set in memory, mediates optimistic local mutation against the
// relational store, and answers IsBookmarked lookups for the page handlers.
package bookmarks

import (
	"context"
	"errors"
	"sync"

	"github.com/designweb/gallery/internal/logger"
	"github.com/designweb/gallery/internal/store"
)

// ErrNoUser is returned by mutations that require an authenticated user.
var ErrNoUser = errors.New("bookmarks: no authenticated user")

// Container is the per-user bookmark state. It is an explicit injected
// dependency — handlers receive it through the Manager, never through a
// package global. All operations serialize on the internal mutex; the remote
// store is the durable source of truth and this is its session-local mirror.
type Container struct {
	folders   store.FolderStoreIface
	bookmarks store.BookmarkStoreIface
	notify    Notifier
	log       logger.Logger

	mu              sync.Mutex
	user            *store.User
	folderList      []*store.Folder // newest-created first
	bookmarkList    []*store.Bookmark
	saved           map[string]struct{} // website ids, union across all folders
	loading         bool
	dialogOpen      bool
	activeWebsiteID string
}

func NewContainer(folders store.FolderStoreIface, bookmarks store.BookmarkStoreIface, notify Notifier, log logger.Logger) *Container {
	if notify == nil {
		notify = NopNotifier{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Container{
		folders:   folders,
		bookmarks: bookmarks,
		notify:    notify,
		log:       log,
		saved:     make(map[string]struct{}),
	}
}

// SetUser replaces the current user reference. Pure assignment; callers must
// invoke it on every auth-state transition so the container never acts on a
// stale identity.
func (c *Container) SetUser(u *store.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = u
}

// OpenSaveDialog marks the save dialog open for the given website and, for a
// signed-in user, refreshes the folder list so boards created in another
// session show up.
func (c *Container) OpenSaveDialog(ctx context.Context, websiteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialogOpen = true
	c.activeWebsiteID = websiteID
	if c.user != nil {
		c.fetchFoldersLocked(ctx)
	}
}

// CloseSaveDialog clears the dialog flag. The active website id is retained
// on purpose: closing is idempotent and a reopened dialog targets the same
// site.
func (c *Container) CloseSaveDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialogOpen = false
}

// FetchFolders reloads the folder list with current bookmark counts.
// No-op without a user. A failed read keeps the existing list: stale but
// consistent beats a destructive clear.
func (c *Container) FetchFolders(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return
	}
	c.fetchFoldersLocked(ctx)
}

func (c *Container) fetchFoldersLocked(ctx context.Context) {
	c.loading = true
	folders, err := c.folders.ListByUser(ctx, c.user.ID)
	if err != nil {
		c.log.Error("fetch folders", logger.Error(err), logger.String("user", c.user.ID))
		c.loading = false
		return
	}
	c.folderList = folders
	c.loading = false
}

// FetchBookmarks reloads the bookmark list and rebuilds the saved-website-id
// set. No-op without a user; a failed read leaves prior state untouched.
func (c *Container) FetchBookmarks(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return
	}
	c.fetchBookmarksLocked(ctx)
}

func (c *Container) fetchBookmarksLocked(ctx context.Context) {
	list, err := c.bookmarks.ListByUser(ctx, c.user.ID)
	if err != nil {
		c.log.Error("fetch bookmarks", logger.Error(err), logger.String("user", c.user.ID))
		return
	}
	saved := make(map[string]struct{}, len(list))
	for _, b := range list {
		saved[b.WebsiteID] = struct{}{}
	}
	c.bookmarkList = list
	c.saved = saved
}

// AddFolder creates a folder and prepends it to the local list; most-recent-
// first ordering is enforced locally rather than re-fetched. A store failure
// is surfaced as a notification and leaves local state alone.
func (c *Container) AddFolder(ctx context.Context, name string) (*store.Folder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil, ErrNoUser
	}

	folder, err := c.folders.Create(ctx, c.user.ID, name)
	if err != nil {
		if errors.Is(err, store.ErrEmptyName) {
			return nil, err
		}
		c.log.Error("create folder", logger.Error(err), logger.String("user", c.user.ID))
		c.notify.Error(ctx, "Failed to create folder")
		return nil, err
	}

	c.folderList = append([]*store.Folder{folder}, c.folderList...)
	return folder, nil
}

// AddBookmark saves the active website into folderID with an optimistic
// update: the saved set, folder count, and dialog flag change before the
// insert is issued, and the saveCommand's delta rolls everything back if the
// insert fails. Already-saved websites are a no-op — the guard runs against
// the synchronously updated set, so a rapid second call is gated even while
// the first insert is still in flight.
func (c *Container) AddBookmark(ctx context.Context, folderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil || c.activeWebsiteID == "" {
		return
	}
	websiteID := c.activeWebsiteID
	if _, ok := c.saved[websiteID]; ok {
		return
	}

	cmd := &saveCommand{c: c, folderID: folderID, websiteID: websiteID}
	delta := cmd.apply()

	bookmark, err := cmd.commit(ctx)
	if err != nil {
		delta.rollback(c)
		c.log.Error("add bookmark", logger.Error(err),
			logger.String("user", c.user.ID), logger.String("website", websiteID))
		c.notify.Error(ctx, "Failed to add bookmark")
		return
	}

	c.bookmarkList = append(c.bookmarkList, bookmark)
	c.notify.Success(ctx, "Bookmark added", &Undo{BookmarkID: bookmark.ID})
}

// Undo takes back a saved bookmark. Only a successful remote delete touches
// local state; a failed delete leaves the save standing and is silent beyond
// the log line.
func (c *Container) Undo(ctx context.Context, bookmarkID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return
	}

	idx := -1
	for i, b := range c.bookmarkList {
		if b.ID == bookmarkID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	bookmark := c.bookmarkList[idx]

	if err := c.bookmarks.Delete(ctx, bookmarkID); err != nil {
		c.log.Error("undo bookmark", logger.Error(err), logger.String("bookmark", bookmarkID))
		return
	}

	c.bookmarkList = append(c.bookmarkList[:idx:idx], c.bookmarkList[idx+1:]...)

	saved := make(map[string]struct{}, len(c.saved))
	for id := range c.saved {
		if id != bookmark.WebsiteID {
			saved[id] = struct{}{}
		}
	}
	c.saved = saved

	folders := make([]*store.Folder, len(c.folderList))
	for i, f := range c.folderList {
		if f.ID == bookmark.FolderID {
			dropped := *f
			dropped.Count--
			folders[i] = &dropped
		} else {
			folders[i] = f
		}
	}
	c.folderList = folders

	c.notify.Success(ctx, "Bookmark removed", nil)
}

// DeleteFolder optimistically removes the folder locally, then deletes it
// remotely; the DB cascade removes its bookmarks. On failure the snapshotted
// list is restored. On success the bookmark list and saved set are re-fetched
// so they reflect the cascade.
func (c *Container) DeleteFolder(ctx context.Context, folderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return
	}

	prev := c.folderList
	folders := make([]*store.Folder, 0, len(prev))
	for _, f := range prev {
		if f.ID != folderID {
			folders = append(folders, f)
		}
	}
	c.folderList = folders

	if err := c.folders.Delete(ctx, folderID); err != nil {
		c.folderList = prev
		c.log.Error("delete folder", logger.Error(err), logger.String("folder", folderID))
		c.notify.Error(ctx, "Failed to delete folder")
		return
	}

	c.notify.Success(ctx, "Folder deleted", nil)
	c.fetchBookmarksLocked(ctx)
}

// IsBookmarked reports whether the website is saved in any folder.
func (c *Container) IsBookmarked(websiteID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.saved[websiteID]
	return ok
}

// Folders returns the current folder list, newest first. The returned slice
// is a copy; elements are treated as immutable by the container.
func (c *Container) Folders() []*store.Folder {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*store.Folder, len(c.folderList))
	copy(out, c.folderList)
	return out
}

// Bookmarks returns the current bookmark list.
func (c *Container) Bookmarks() []*store.Bookmark {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*store.Bookmark, len(c.bookmarkList))
	copy(out, c.bookmarkList)
	return out
}

// Loading reports whether a folder fetch is in progress.
func (c *Container) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// DialogOpen reports whether the save dialog is open.
func (c *Container) DialogOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialogOpen
}

// ActiveWebsiteID returns the website targeted by the in-progress save.
func (c *Container) ActiveWebsiteID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeWebsiteID
}
