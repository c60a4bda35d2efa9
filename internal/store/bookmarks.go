package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// BookmarkTypeWebsite is the only bookmark type the gallery writes today.
const BookmarkTypeWebsite = "website"

// Bookmark represents a row in the bookmarks table: one (user, folder,
// website) save record. WebsiteID refers to a document in the content store.
type Bookmark struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	FolderID  string    `db:"folder_id"`
	Type      string    `db:"type"`
	WebsiteID string    `db:"website_id"`
	CreatedAt time.Time `db:"created_at"`
}

// BookmarkStore is the sqlx-backed implementation of BookmarkStoreIface.
type BookmarkStore struct {
	db *sqlx.DB
}

func NewBookmarkStore(db *sqlx.DB) *BookmarkStore {
	return &BookmarkStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *BookmarkStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a new website bookmark and returns the stored row.
func (s *BookmarkStore) Create(ctx context.Context, userID, folderID, websiteID string) (*Bookmark, error) {
	b := &Bookmark{
		ID:        uuid.New().String(),
		UserID:    userID,
		FolderID:  folderID,
		Type:      BookmarkTypeWebsite,
		WebsiteID: websiteID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO bookmarks (id, user_id, folder_id, type, website_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), b.ID, b.UserID, b.FolderID, b.Type, b.WebsiteID, b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListByUser returns all bookmarks owned by userID.
func (s *BookmarkStore) ListByUser(ctx context.Context, userID string) ([]*Bookmark, error) {
	var bookmarks []*Bookmark
	err := s.db.SelectContext(ctx, &bookmarks, s.q(`
		SELECT * FROM bookmarks WHERE user_id = ? ORDER BY created_at ASC, id ASC
	`), userID)
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// ListByFolder returns all bookmarks in a folder, oldest first.
func (s *BookmarkStore) ListByFolder(ctx context.Context, folderID string) ([]*Bookmark, error) {
	var bookmarks []*Bookmark
	err := s.db.SelectContext(ctx, &bookmarks, s.q(`
		SELECT * FROM bookmarks WHERE folder_id = ? ORDER BY created_at ASC, id ASC
	`), folderID)
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// Delete removes a bookmark by ID.
func (s *BookmarkStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM bookmarks WHERE id = ?`), id)
	return err
}
