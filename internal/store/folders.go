package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Folder represents a row in the bookmark_folders table. Count is a derived
// read-through of the number of bookmarks referencing the folder; it is
// populated by ListByUser and maintained optimistically by the bookmark
// container between fetches.
type Folder struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	Count     int       `db:"count"`
}

// FolderStore is the sqlx-backed implementation of FolderStoreIface.
type FolderStore struct {
	db *sqlx.DB
}

func NewFolderStore(db *sqlx.DB) *FolderStore {
	return &FolderStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *FolderStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a new folder owned by userID. The name must be non-empty
// after trimming; ErrEmptyName otherwise.
func (s *FolderStore) Create(ctx context.Context, userID, name string) (*Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO bookmark_folders (id, user_id, name, created_at)
		VALUES (?, ?, ?, ?)
	`), id, userID, name, now)
	if err != nil {
		return nil, err
	}

	return &Folder{ID: id, UserID: userID, Name: name, CreatedAt: now, Count: 0}, nil
}

// GetByID returns the folder matching id with its bookmark count, or ErrNotFound.
func (s *FolderStore) GetByID(ctx context.Context, id string) (*Folder, error) {
	var f Folder
	err := s.db.GetContext(ctx, &f, s.q(`
		SELECT f.id, f.user_id, f.name, f.created_at, COUNT(b.id) AS count
		FROM bookmark_folders f
		LEFT JOIN bookmarks b ON b.folder_id = f.id
		WHERE f.id = ?
		GROUP BY f.id, f.user_id, f.name, f.created_at
	`), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListByUser returns all folders owned by userID, newest-created first, each
// annotated with its current bookmark count.
func (s *FolderStore) ListByUser(ctx context.Context, userID string) ([]*Folder, error) {
	var folders []*Folder
	err := s.db.SelectContext(ctx, &folders, s.q(`
		SELECT f.id, f.user_id, f.name, f.created_at, COUNT(b.id) AS count
		FROM bookmark_folders f
		LEFT JOIN bookmarks b ON b.folder_id = f.id
		WHERE f.user_id = ?
		GROUP BY f.id, f.user_id, f.name, f.created_at
		ORDER BY f.created_at DESC, f.id DESC
	`), userID)
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// Delete removes a folder by ID. The ON DELETE CASCADE rule removes its
// contained bookmarks.
func (s *FolderStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM bookmark_folders WHERE id = ?`), id)
	return err
}
