package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/unreadwatch/internal/adapter/driven/secret"
	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
)

func testKey() []byte {
	key := make([]byte, secret.KeySize)
	for i := range key {
		key[i] = byte(i + 1)
	}
	return key
}

func TestStateRepo_LoadDefaults(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStateRepo(db, "default", nil)

	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.NotificationState{}, state)
	assert.False(t, state.SignedIn())
}

func TestStateRepo_SaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStateRepo(db, "default", nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	saved, err := repo.Save(ctx, model.NotificationState{
		Credential:  "k1",
		Identity:    "0xabc",
		HasNotified: true,
		UnreadCount: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, fixed, saved.UpdatedAt)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestStateRepo_SaveOverwritesAllFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStateRepo(db, "default", nil)
	ctx := context.Background()

	_, err := repo.Save(ctx, model.NotificationState{Credential: "k1", Identity: "0xabc", HasNotified: true, UnreadCount: 7})
	require.NoError(t, err)

	_, err = repo.Save(ctx, model.NotificationState{})
	require.NoError(t, err)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Credential)
	assert.Empty(t, got.Identity)
	assert.False(t, got.HasNotified)
	assert.Zero(t, got.UnreadCount)
}

func TestStateRepo_SaveRejectsHalfPair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStateRepo(db, "default", nil)

	_, err := repo.Save(context.Background(), model.NotificationState{Credential: "k1"})
	require.ErrorIs(t, err, driven.ErrInvalidState)

	_, err = repo.Save(context.Background(), model.NotificationState{Identity: "0xabc"})
	require.ErrorIs(t, err, driven.ErrInvalidState)
}

func TestStateRepo_SaveClampsNegativeCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStateRepo(db, "default", nil)
	ctx := context.Background()

	saved, err := repo.Save(ctx, model.NotificationState{UnreadCount: -3})
	require.NoError(t, err)
	assert.Zero(t, saved.UnreadCount)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, got.UnreadCount)
}

func TestStateRepo_InstancesAreIsolated(t *testing.T) {
	db := setupTestDB(t)
	a := NewStateRepo(db, "a", nil)
	b := NewStateRepo(db, "b", nil)
	ctx := context.Background()

	_, err := a.Save(ctx, model.NotificationState{Credential: "k1", Identity: "0xabc", UnreadCount: 2})
	require.NoError(t, err)

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.False(t, got.SignedIn())
}

func TestStateRepo_SealedCredential(t *testing.T) {
	db := setupTestDB(t)
	box, err := secret.NewBox(testKey())
	require.NoError(t, err)
	repo := NewStateRepo(db, "default", box)
	ctx := context.Background()

	_, err = repo.Save(ctx, model.NotificationState{Credential: "k1", Identity: "0xabc"})
	require.NoError(t, err)

	var stored string
	var sealed bool
	err = db.Reader.QueryRowContext(ctx,
		`SELECT credential, sealed FROM notification_state WHERE instance_id = ?`, "default",
	).Scan(&stored, &sealed)
	require.NoError(t, err)
	assert.True(t, sealed)
	assert.NotEqual(t, "k1", stored)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "k1", got.Credential)
}

func TestStateRepo_SealedCredentialWithoutKey(t *testing.T) {
	db := setupTestDB(t)
	box, err := secret.NewBox(testKey())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = NewStateRepo(db, "default", box).Save(ctx, model.NotificationState{Credential: "k1", Identity: "0xabc"})
	require.NoError(t, err)

	_, err = NewStateRepo(db, "default", nil).Load(ctx)
	require.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}
