package repository

import (
	"context"
	"errors"
	"time"

	chat "github.com/xiaoxin-go/webchat/internal/pkg/chat/domain"
)

var (
	// ErrNotFound is returned when a conversation record does not exist or
	// does not belong to the given owner.
	ErrNotFound = errors.New("directory: conversation not found")
)

// Directory defines persistence operations for per-viewer conversation
// records. Implementations must make ResolveOrCreate safe under concurrent
// invocation for the same (owner, target, kind) tuple: at most one record is
// ever created, concurrent losers read back the earliest row.
type Directory interface {
	ResolveOrCreate(ctx context.Context, ownerID, targetID int64, kind chat.Kind) (chat.Conversation, error)
	Get(ctx context.Context, id int64) (chat.Conversation, error)

	// ListForUser returns the owner's conversations, most-recently-updated first.
	ListForUser(ctx context.Context, ownerID int64) ([]chat.Conversation, error)

	// Touch updates the denormalized last-message summary. bumpUnread marks
	// the update as unseen by the owner. Callers on the send path must treat
	// a Touch failure as non-fatal.
	Touch(ctx context.Context, id int64, lastMessage string, at time.Time, bumpUnread bool) error

	ClearUnread(ctx context.Context, id int64) error

	// Delete removes the owner-side record only; the counterpart's record of
	// the same logical conversation is untouched.
	Delete(ctx context.Context, id, ownerID int64) error
}
