package surface

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
)

// memInbox is an in-memory InboxStore for testing.
type memInbox struct {
	items  []model.InboxItem
	addErr error
}

func (m *memInbox) Add(_ context.Context, item model.InboxItem) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.items = append(m.items, item)
	return nil
}

func (m *memInbox) List(_ context.Context, _ bool, _ int) ([]model.InboxItem, error) {
	return m.items, nil
}

func (m *memInbox) Get(_ context.Context, id string) (model.InboxItem, error) {
	for _, it := range m.items {
		if it.ID == id {
			return it, nil
		}
	}
	return model.InboxItem{}, fmt.Errorf("not found")
}

func (m *memInbox) MarkRead(_ context.Context, _ string, _ time.Time) error { return nil }

func newTestInbox(store *memInbox) *Inbox {
	inbox := NewInbox(store)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	inbox.now = func() time.Time { return fixed }
	inbox.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return inbox
}

func TestInbox_Alert(t *testing.T) {
	store := &memInbox{}
	inbox := newTestInbox(store)

	err := inbox.Alert(context.Background(), model.Alert{Heading: "New Message at X", Body: "Unread Count: 5", Count: 5})
	require.NoError(t, err)

	require.Len(t, store.items, 1)
	item := store.items[0]
	assert.Equal(t, "id-1", item.ID)
	assert.Equal(t, model.InboxKindAlert, item.Kind)
	assert.Equal(t, "New Message at X", item.Title)
	assert.Equal(t, "Unread Count: 5", item.Message)
	assert.Equal(t, 5, item.Count)
	assert.Nil(t, item.ReadAt)
}

func TestInbox_Notify(t *testing.T) {
	store := &memInbox{}
	inbox := newTestInbox(store)

	require.NoError(t, inbox.Notify(context.Background(), "8 unread messages at X", 8))

	require.Len(t, store.items, 1)
	assert.Equal(t, model.InboxKindNotify, store.items[0].Kind)
	assert.Equal(t, "8 unread messages at X", store.items[0].Message)
	assert.Equal(t, 8, store.items[0].Count)
}

func TestInbox_StoreError(t *testing.T) {
	boom := errors.New("disk full")
	inbox := newTestInbox(&memInbox{addErr: boom})

	err := inbox.Notify(context.Background(), "m", 1)
	require.ErrorIs(t, err, boom)
}
