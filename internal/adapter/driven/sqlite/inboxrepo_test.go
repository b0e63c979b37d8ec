package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
)

func sampleItem(id string, createdAt time.Time) model.InboxItem {
	return model.InboxItem{
		ID:        id,
		Kind:      model.InboxKindNotify,
		Title:     "Message Waiting",
		Message:   "3 unread messages at WalletChat.fun",
		Count:     3,
		CreatedAt: createdAt,
	}
}

func TestInboxRepo_AddAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInboxRepo(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	item := sampleItem("n1", now)
	require.NoError(t, repo.Add(ctx, item))

	got, err := repo.Get(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, item, got)
}

func TestInboxRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInboxRepo(db)

	_, err := repo.Get(context.Background(), "nope")
	require.ErrorIs(t, err, driven.ErrItemNotFound)
}

func TestInboxRepo_ListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInboxRepo(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Add(ctx, sampleItem("old", base)))
	require.NoError(t, repo.Add(ctx, sampleItem("mid", base.Add(time.Minute))))
	require.NoError(t, repo.Add(ctx, sampleItem("new", base.Add(2*time.Minute))))

	items, err := repo.List(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "new", items[0].ID)
	assert.Equal(t, "mid", items[1].ID)
	assert.Equal(t, "old", items[2].ID)

	limited, err := repo.List(ctx, false, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestInboxRepo_ListEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInboxRepo(db)

	items, err := repo.List(context.Background(), false, 10)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestInboxRepo_MarkRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInboxRepo(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Add(ctx, sampleItem("n1", base)))
	require.NoError(t, repo.Add(ctx, sampleItem("n2", base.Add(time.Second))))

	readAt := base.Add(time.Hour)
	require.NoError(t, repo.MarkRead(ctx, "n1", readAt))

	// A second mark keeps the first timestamp.
	require.NoError(t, repo.MarkRead(ctx, "n1", readAt.Add(time.Hour)))

	got, err := repo.Get(ctx, "n1")
	require.NoError(t, err)
	require.NotNil(t, got.ReadAt)
	assert.Equal(t, readAt, *got.ReadAt)

	unread, err := repo.List(ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n2", unread[0].ID)
}

func TestInboxRepo_MarkReadMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInboxRepo(db)

	err := repo.MarkRead(context.Background(), "nope", time.Now())
	require.ErrorIs(t, err, driven.ErrItemNotFound)
}
