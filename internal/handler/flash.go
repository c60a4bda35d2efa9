package handler

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/designweb/gallery/internal/bookmarks"
)

// Flash represents a one-time notification message shown to the user.
type Flash struct {
	Type           string // "success", "error"
	Message        string
	UndoBookmarkID string // non-empty when the toast offers an undo action
}

// Session keys for the pending flash. The flash rides the session as three
// strings so no codec registration is needed.
const (
	flashTypeKey = "flash_type"
	flashMsgKey  = "flash_msg"
	flashUndoKey = "flash_undo"
)

func putFlash(ctx context.Context, sessions *scs.SessionManager, f Flash) {
	sessions.Put(ctx, flashTypeKey, f.Type)
	sessions.Put(ctx, flashMsgKey, f.Message)
	sessions.Put(ctx, flashUndoKey, f.UndoBookmarkID)
}

// popFlash removes and returns the pending flash, or nil.
func popFlash(r *http.Request, sessions *scs.SessionManager) *Flash {
	if sessions == nil {
		return nil
	}
	msg := sessions.PopString(r.Context(), flashMsgKey)
	if msg == "" {
		return nil
	}
	return &Flash{
		Type:           sessions.PopString(r.Context(), flashTypeKey),
		Message:        msg,
		UndoBookmarkID: sessions.PopString(r.Context(), flashUndoKey),
	}
}

// flashNotifier surfaces container notifications as session flashes. It is the
// HTTP-layer implementation of bookmarks.Notifier; the toast (with its undo
// button, when present) renders on the next page load.
type flashNotifier struct {
	sessions *scs.SessionManager
}

// NewFlashNotifier returns a Notifier that writes flash messages to the
// request's session.
func NewFlashNotifier(sessions *scs.SessionManager) bookmarks.Notifier {
	return &flashNotifier{sessions: sessions}
}

func (n *flashNotifier) Success(ctx context.Context, msg string, undo *bookmarks.Undo) {
	f := Flash{Type: "success", Message: msg}
	if undo != nil {
		f.UndoBookmarkID = undo.BookmarkID
	}
	putFlash(ctx, n.sessions, f)
}

func (n *flashNotifier) Error(ctx context.Context, msg string) {
	putFlash(ctx, n.sessions, Flash{Type: "error", Message: msg})
}
