// Package surface implements the Surface port: the in-app notification inbox,
// plus optional mirrors to email and Telegram.
package surface

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Surface = (*Inbox)(nil)

// Inbox records alerts and notifications as inbox items.
type Inbox struct {
	store driven.InboxStore
	now   func() time.Time
	newID func() string
}

// NewInbox creates an Inbox backed by store.
func NewInbox(store driven.InboxStore) *Inbox {
	return &Inbox{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Alert stores a as an alert item.
func (i *Inbox) Alert(ctx context.Context, a model.Alert) error {
	item := model.InboxItem{
		ID:        i.newID(),
		Kind:      model.InboxKindAlert,
		Title:     a.Heading,
		Message:   a.Body,
		Count:     a.Count,
		CreatedAt: i.now().UTC(),
	}
	if err := i.store.Add(ctx, item); err != nil {
		return fmt.Errorf("record alert: %w", err)
	}
	return nil
}

// Notify stores message as a notify item.
func (i *Inbox) Notify(ctx context.Context, message string, count int) error {
	item := model.InboxItem{
		ID:        i.newID(),
		Kind:      model.InboxKindNotify,
		Message:   message,
		Count:     count,
		CreatedAt: i.now().UTC(),
	}
	if err := i.store.Add(ctx, item); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}
