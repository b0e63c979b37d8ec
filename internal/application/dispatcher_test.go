package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/unreadwatch/internal/application"
	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
)

func TestDispatch_FirstAlert(t *testing.T) {
	store := &mockStateStore{state: signedIn(false, 0)}
	surface := &mockSurface{}
	d := application.NewDispatcher(store, surface, "WalletChat.fun", nil)

	next, err := d.Dispatch(context.Background(), store.state, model.Decision{Kind: model.DecisionFirstAlert, Count: 5})
	require.NoError(t, err)

	assert.True(t, next.HasNotified)
	assert.Equal(t, 5, next.UnreadCount)
	assert.Equal(t, next, store.current())

	require.Len(t, surface.alerts, 1)
	assert.Equal(t, "New Message at WalletChat.fun", surface.alerts[0].Heading)
	assert.Contains(t, surface.alerts[0].Body, "Unread Count: 5")
	assert.Contains(t, surface.alerts[0].Body, "Future unread message notifications can be found in the Notifications tab!")
	assert.Empty(t, surface.notifies)
}

func TestDispatch_Update(t *testing.T) {
	store := &mockStateStore{state: signedIn(true, 5)}
	surface := &mockSurface{}
	d := application.NewDispatcher(store, surface, "WalletChat.fun", nil)

	next, err := d.Dispatch(context.Background(), store.state, model.Decision{Kind: model.DecisionUpdate, Count: 8})
	require.NoError(t, err)

	assert.Equal(t, 8, next.UnreadCount)
	assert.True(t, next.HasNotified)
	assert.Empty(t, surface.alerts)
	assert.Equal(t, []notifyCall{{Message: "8 unread messages at WalletChat.fun", Count: 8}}, surface.notifies)
}

func TestDispatch_NoneTouchesNothing(t *testing.T) {
	store := &mockStateStore{state: signedIn(true, 5)}
	surface := &mockSurface{}
	d := application.NewDispatcher(store, surface, "X", nil)

	next, err := d.Dispatch(context.Background(), store.state, model.NoDecision)
	require.NoError(t, err)

	assert.Equal(t, signedIn(true, 5), next)
	assert.Empty(t, store.saves)
	assert.Zero(t, surface.calls())
}

func TestDispatch_SaveFailureSkipsSurface(t *testing.T) {
	boom := errors.New("disk full")
	store := &mockStateStore{state: signedIn(false, 0), saveErr: boom}
	surface := &mockSurface{}
	d := application.NewDispatcher(store, surface, "X", nil)

	prior := store.state
	next, err := d.Dispatch(context.Background(), prior, model.Decision{Kind: model.DecisionFirstAlert, Count: 5})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, prior, next)
	assert.Zero(t, surface.calls())
}

func TestDispatch_AlertFailureKeepsPersistedState(t *testing.T) {
	boom := errors.New("surface down")
	store := &mockStateStore{state: signedIn(false, 0)}
	surface := &mockSurface{alertErr: boom}
	d := application.NewDispatcher(store, surface, "X", nil)

	next, err := d.Dispatch(context.Background(), store.state, model.Decision{Kind: model.DecisionFirstAlert, Count: 5})
	require.ErrorIs(t, err, boom)

	// The record already says notified, so the next tick cannot alert again.
	assert.True(t, next.HasNotified)
	assert.True(t, store.current().HasNotified)
}
