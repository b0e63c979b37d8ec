// Package filestore persists the notification state and inbox as a JSON
// document on disk. Every write replaces the whole document atomically.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/unreadwatch/internal/adapter/driven/secret"
	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.StateStore = (*Store)(nil)
	_ driven.InboxStore = (*Store)(nil)
)

type stateRecord struct {
	Credential  string    `json:"credential,omitempty"`
	Sealed      bool      `json:"sealed,omitempty"`
	Identity    string    `json:"identity,omitempty"`
	HasNotified bool      `json:"has_notified"`
	UnreadCount int       `json:"unread_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type inboxRecord struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Count     int        `json:"count"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

type document struct {
	State *stateRecord  `json:"state,omitempty"`
	Inbox []inboxRecord `json:"inbox"`
}

// Store keeps one JSON document per instance.
type Store struct {
	mu   sync.Mutex
	path string
	box  *secret.Box
	now  func() time.Time
}

// Open returns a Store for instanceID. The document lives next to path as
// "<base>.<instanceID>.json"; the directory is created if missing.
func Open(path, instanceID string, box *secret.Box) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("file store path is required")
	}
	if instanceID == "" {
		return nil, errors.New("file store instance id is required")
	}

	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	return &Store{
		path: filepath.Join(dir, base+"."+instanceID+".json"),
		box:  box,
		now:  time.Now,
	}, nil
}

// Path returns the document path.
func (s *Store) Path() string { return s.path }

// Load returns the persisted record, or defaults if none has been written.
func (s *Store) Load(_ context.Context) (model.NotificationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return model.NotificationState{}, err
	}
	if doc.State == nil {
		return model.NotificationState{}, nil
	}

	rec := doc.State
	state := model.NotificationState{
		Credential:  rec.Credential,
		Identity:    rec.Identity,
		HasNotified: rec.HasNotified,
		UnreadCount: rec.UnreadCount,
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
	if rec.Sealed && rec.Credential != "" {
		state.Credential, err = s.box.Open(rec.Credential)
		if err != nil {
			return model.NotificationState{}, fmt.Errorf("unseal credential: %w", err)
		}
	}
	return state.Normalize(), nil
}

// Save replaces the state record.
func (s *Store) Save(_ context.Context, state model.NotificationState) (model.NotificationState, error) {
	if !state.Paired() {
		return model.NotificationState{}, driven.ErrInvalidState
	}
	state = state.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return model.NotificationState{}, err
	}

	state.UpdatedAt = s.now().UTC()
	rec := &stateRecord{
		Credential:  state.Credential,
		Identity:    state.Identity,
		HasNotified: state.HasNotified,
		UnreadCount: state.UnreadCount,
		UpdatedAt:   state.UpdatedAt,
	}
	if s.box.Enabled() && rec.Credential != "" {
		rec.Credential, err = s.box.Seal(rec.Credential)
		if err != nil {
			return model.NotificationState{}, fmt.Errorf("seal credential: %w", err)
		}
		rec.Sealed = true
	}
	doc.State = rec

	if err := s.write(doc); err != nil {
		return model.NotificationState{}, err
	}
	return state, nil
}

// Add appends an inbox item.
func (s *Store) Add(_ context.Context, item model.InboxItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	for _, rec := range doc.Inbox {
		if rec.ID == item.ID {
			return fmt.Errorf("add inbox item %q: duplicate id", item.ID)
		}
	}

	doc.Inbox = append(doc.Inbox, inboxRecord{
		ID:        item.ID,
		Kind:      string(item.Kind),
		Title:     item.Title,
		Message:   item.Message,
		Count:     item.Count,
		CreatedAt: item.CreatedAt.UTC(),
		ReadAt:    utcPtr(item.ReadAt),
	})
	return s.write(doc)
}

// List returns inbox items newest first.
func (s *Store) List(_ context.Context, unreadOnly bool, limit int) ([]model.InboxItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	items := []model.InboxItem{}
	for _, rec := range doc.Inbox {
		if unreadOnly && rec.ReadAt != nil {
			continue
		}
		items = append(items, rec.toModel())
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Get returns a single inbox item.
func (s *Store) Get(_ context.Context, id string) (model.InboxItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return model.InboxItem{}, err
	}
	for _, rec := range doc.Inbox {
		if rec.ID == id {
			return rec.toModel(), nil
		}
	}
	return model.InboxItem{}, driven.ErrItemNotFound
}

// MarkRead stamps ReadAt on an unread item. Already-read items keep their timestamp.
func (s *Store) MarkRead(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	for i := range doc.Inbox {
		if doc.Inbox[i].ID != id {
			continue
		}
		if doc.Inbox[i].ReadAt == nil {
			t := at.UTC()
			doc.Inbox[i].ReadAt = &t
			return s.write(doc)
		}
		return nil
	}
	return driven.ErrItemNotFound
}

func (s *Store) read() (document, error) {
	var doc document
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	if doc.Inbox == nil {
		doc.Inbox = []inboxRecord{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func (r inboxRecord) toModel() model.InboxItem {
	return model.InboxItem{
		ID:        r.ID,
		Kind:      model.InboxKind(r.Kind),
		Title:     r.Title,
		Message:   r.Message,
		Count:     r.Count,
		CreatedAt: r.CreatedAt.UTC(),
		ReadAt:    utcPtr(r.ReadAt),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
