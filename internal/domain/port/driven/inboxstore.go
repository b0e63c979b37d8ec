package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
)

// ErrItemNotFound indicates the requested inbox item does not exist.
var ErrItemNotFound = errors.New("inbox item not found")

// InboxStore defines the driven port for in-app notification persistence.
type InboxStore interface {
	Add(ctx context.Context, item model.InboxItem) error
	// List returns items newest first. limit <= 0 means no limit.
	List(ctx context.Context, unreadOnly bool, limit int) ([]model.InboxItem, error)
	// Get returns ErrItemNotFound if id is unknown.
	Get(ctx context.Context, id string) (model.InboxItem, error)
	// MarkRead returns ErrItemNotFound if id is unknown. Marking an already
	// read item keeps the original read time.
	MarkRead(ctx context.Context, id string, at time.Time) error
}
