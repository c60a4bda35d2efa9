package bookmarks

import (
	"context"

	"github.com/designweb/gallery/internal/store"
)

// saveCommand is the two-phase optimistic save of the active website into a
// folder. apply computes and installs the local delta and returns a snapshot
// that can roll it back; commit performs the remote insert. The caller holds
// the container lock for the whole sequence.
type saveCommand struct {
	c         *Container
	folderID  string
	websiteID string
}

// saveDelta is the reversible local effect of apply. rollback restores the
// saved set and folder counts exactly to their pre-apply state, so repeated
// failed attempts cannot compound drift.
type saveDelta struct {
	prevSaved   map[string]struct{}
	prevFolders []*store.Folder
}

// apply adds the website id to a fresh saved set, bumps the target folder's
// count, and closes the save dialog, making the UI reflect the save before
// the insert resolves. Folder values are replaced, never mutated in place,
// so previously handed-out snapshots stay intact.
func (cmd *saveCommand) apply() *saveDelta {
	c := cmd.c

	delta := &saveDelta{
		prevSaved:   c.saved,
		prevFolders: c.folderList,
	}

	saved := make(map[string]struct{}, len(c.saved)+1)
	for id := range c.saved {
		saved[id] = struct{}{}
	}
	saved[cmd.websiteID] = struct{}{}

	folders := make([]*store.Folder, len(c.folderList))
	for i, f := range c.folderList {
		if f.ID == cmd.folderID {
			bumped := *f
			bumped.Count++
			folders[i] = &bumped
		} else {
			folders[i] = f
		}
	}

	c.saved = saved
	c.folderList = folders
	c.dialogOpen = false
	return delta
}

// commit inserts the bookmark row against the remote store.
func (cmd *saveCommand) commit(ctx context.Context) (*store.Bookmark, error) {
	return cmd.c.bookmarks.Create(ctx, cmd.c.user.ID, cmd.folderID, cmd.websiteID)
}

// rollback restores the snapshotted state and reopens the save dialog
// unconditionally: the failed save needs the user's attention even when the
// dialog had already been dismissed before the insert resolved.
func (d *saveDelta) rollback(c *Container) {
	c.saved = d.prevSaved
	c.folderList = d.prevFolders
	c.dialogOpen = true
}
