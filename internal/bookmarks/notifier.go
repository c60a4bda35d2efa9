package bookmarks

import "context"

// Undo references a just-created bookmark so a success notification can offer
// to take the save back.
type Undo struct {
	BookmarkID string
}

// Notifier delivers transient user-facing notifications. The HTTP layer
// implements it with session flash messages; tests record calls.
type Notifier interface {
	Success(ctx context.Context, msg string, undo *Undo)
	Error(ctx context.Context, msg string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(context.Context, string, *Undo) {}
func (NopNotifier) Error(context.Context, string)          {}
