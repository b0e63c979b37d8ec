package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.InboxStore = (*InboxRepo)(nil)

// InboxRepo is the SQLite implementation of the InboxStore port interface.
type InboxRepo struct {
	db *DB
}

// NewInboxRepo creates a new InboxRepo backed by the given DB.
func NewInboxRepo(db *DB) *InboxRepo {
	return &InboxRepo{db: db}
}

// Add inserts a new inbox item. The ID must be unique.
func (r *InboxRepo) Add(ctx context.Context, item model.InboxItem) error {
	const query = `
		INSERT INTO inbox_items (id, kind, title, message, count, created_at, read_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var readAt any
	if item.ReadAt != nil {
		readAt = formatTime(*item.ReadAt)
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		item.ID, string(item.Kind), item.Title, item.Message, item.Count, formatTime(item.CreatedAt), readAt,
	)
	if err != nil {
		return fmt.Errorf("add inbox item %q: %w", item.ID, err)
	}
	return nil
}

// List returns inbox items ordered newest first.
func (r *InboxRepo) List(ctx context.Context, unreadOnly bool, limit int) ([]model.InboxItem, error) {
	query := `SELECT id, kind, title, message, count, created_at, read_at FROM inbox_items`
	if unreadOnly {
		query += ` WHERE read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inbox items: %w", err)
	}
	defer rows.Close()

	items := []model.InboxItem{}
	for rows.Next() {
		item, err := scanInboxItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inbox items: %w", err)
	}

	return items, nil
}

// Get retrieves a single inbox item.
func (r *InboxRepo) Get(ctx context.Context, id string) (model.InboxItem, error) {
	const query = `SELECT id, kind, title, message, count, created_at, read_at FROM inbox_items WHERE id = ?`

	item, err := scanInboxItem(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.InboxItem{}, driven.ErrItemNotFound
	}
	if err != nil {
		return model.InboxItem{}, err
	}
	return item, nil
}

// MarkRead stamps read_at on an unread item. Already-read items keep their timestamp.
func (r *InboxRepo) MarkRead(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE inbox_items SET read_at = COALESCE(read_at, ?) WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("mark inbox item %q read: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return driven.ErrItemNotFound
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInboxItem(s rowScanner) (model.InboxItem, error) {
	var (
		item      model.InboxItem
		kind      string
		createdAt string
		readAt    sql.NullString
	)
	if err := s.Scan(&item.ID, &kind, &item.Title, &item.Message, &item.Count, &createdAt, &readAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.InboxItem{}, err
		}
		return model.InboxItem{}, fmt.Errorf("scan inbox item: %w", err)
	}
	item.Kind = model.InboxKind(kind)

	var err error
	item.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.InboxItem{}, fmt.Errorf("parse created_at for %q: %w", item.ID, err)
	}

	if readAt.Valid {
		t, err := parseTime(readAt.String)
		if err != nil {
			return model.InboxItem{}, fmt.Errorf("parse read_at for %q: %w", item.ID, err)
		}
		item.ReadAt = &t
	}

	return item, nil
}
