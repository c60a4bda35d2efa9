package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyName is returned when a folder name is empty after trimming.
	ErrEmptyName = errors.New("folder name must not be empty")
)

// FolderStoreIface exposes all bookmark-folder data operations.
// The bookmark container and handlers never query the DB directly; all
// access goes through this interface.
type FolderStoreIface interface {
	Create(ctx context.Context, userID, name string) (*Folder, error)
	GetByID(ctx context.Context, id string) (*Folder, error)
	ListByUser(ctx context.Context, userID string) ([]*Folder, error)
	Delete(ctx context.Context, id string) error
}

// BookmarkStoreIface exposes all bookmark data operations.
type BookmarkStoreIface interface {
	Create(ctx context.Context, userID, folderID, websiteID string) (*Bookmark, error)
	ListByUser(ctx context.Context, userID string) ([]*Bookmark, error)
	ListByFolder(ctx context.Context, folderID string) ([]*Bookmark, error)
	Delete(ctx context.Context, id string) error
}
