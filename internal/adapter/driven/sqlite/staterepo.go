package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/unreadwatch/internal/adapter/driven/secret"
	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StateStore = (*StateRepo)(nil)

// StateRepo is the SQLite implementation of the StateStore port interface.
// It owns exactly one row of notification_state, selected by instance ID.
// When the box holds a key, the credential is sealed before write.
type StateRepo struct {
	db         *DB
	instanceID string
	box        *secret.Box
	now        func() time.Time
}

// NewStateRepo creates a StateRepo for the given instance. box may be nil or
// disabled, in which case credentials are stored as plaintext.
func NewStateRepo(db *DB, instanceID string, box *secret.Box) *StateRepo {
	return &StateRepo{db: db, instanceID: instanceID, box: box, now: time.Now}
}

// Load returns the persisted record, or defaults if the instance has no row.
func (r *StateRepo) Load(ctx context.Context) (model.NotificationState, error) {
	const query = `
		SELECT credential, sealed, identity, has_notified, unread_count, updated_at
		FROM notification_state
		WHERE instance_id = ?
	`

	var (
		state     model.NotificationState
		stored    string
		sealed    bool
		updatedAt string
	)
	err := r.db.Reader.QueryRowContext(ctx, query, r.instanceID).Scan(
		&stored, &sealed, &state.Identity, &state.HasNotified, &state.UnreadCount, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NotificationState{}, nil
	}
	if err != nil {
		return model.NotificationState{}, fmt.Errorf("load state %q: %w", r.instanceID, err)
	}

	state.Credential = stored
	if sealed && stored != "" {
		plaintext, err := r.box.Open(stored)
		if err != nil {
			return model.NotificationState{}, fmt.Errorf("unseal credential for %q: %w", r.instanceID, err)
		}
		state.Credential = plaintext
	}

	state.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.NotificationState{}, fmt.Errorf("parse updated_at for %q: %w", r.instanceID, err)
	}

	return state.Normalize(), nil
}

// Save writes all fields of state in a single upsert.
func (r *StateRepo) Save(ctx context.Context, state model.NotificationState) (model.NotificationState, error) {
	if !state.Paired() {
		return model.NotificationState{}, driven.ErrInvalidState
	}
	state = state.Normalize()
	state.UpdatedAt = r.now().UTC()

	stored := state.Credential
	sealed := false
	if r.box.Enabled() && stored != "" {
		var err error
		stored, err = r.box.Seal(stored)
		if err != nil {
			return model.NotificationState{}, fmt.Errorf("seal credential for %q: %w", r.instanceID, err)
		}
		sealed = true
	}

	const query = `
		INSERT INTO notification_state (instance_id, credential, sealed, identity, has_notified, unread_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(instance_id) DO UPDATE SET
			credential = excluded.credential,
			sealed = excluded.sealed,
			identity = excluded.identity,
			has_notified = excluded.has_notified,
			unread_count = excluded.unread_count,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		r.instanceID, stored, sealed, state.Identity, state.HasNotified, state.UnreadCount, formatTime(state.UpdatedAt),
	)
	if err != nil {
		return model.NotificationState{}, fmt.Errorf("save state %q: %w", r.instanceID, err)
	}

	return state, nil
}
