// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
)

// Sentinel errors returned by StateStore implementations.
var (
	// ErrInvalidState indicates a record whose credential and identity are not
	// both present or both absent.
	ErrInvalidState = errors.New("invalid notification state: credential and identity must be set together")

	// ErrEncryptionKeyNotSet is returned when a sealed credential is read back
	// without UNREADWATCH_SECRET_KEY configured.
	ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set UNREADWATCH_SECRET_KEY")
)

// StateStore defines the driven port for the single persisted notification
// record. Implementations never return an error for an absent record; Load
// materializes defaults instead.
type StateStore interface {
	// Load returns the current record, or the zero-value defaults when none
	// has been written yet.
	Load(ctx context.Context) (model.NotificationState, error)

	// Save persists the full record atomically and returns what was stored.
	// It returns ErrInvalidState when state is not Paired.
	Save(ctx context.Context, state model.NotificationState) (model.NotificationState, error)
}
