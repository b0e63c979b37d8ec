// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
)

// Sentinel errors returned by AgentService operations.
var (
	ErrInvalidParams  = errors.New("invalid params")
	ErrNotSignedIn    = errors.New("not signed in")
	ErrMethodNotFound = errors.New("method not found")
)

// TickResult describes one completed poll.
type TickResult struct {
	Polled   bool // False when no credential was stored.
	Fetched  int  // Normalized count; 0 when not polled or the fetch failed.
	Decision model.Decision
	State    model.NotificationState
}

// AgentService owns the notification state record. Every operation that reads
// or writes the record holds mu, so ticks and inbound calls never interleave.
type AgentService struct {
	mu          sync.Mutex
	store       driven.StateStore
	counter     driven.UnreadCounter
	surface     driven.Surface
	dispatcher  *Dispatcher
	serviceName string
	observer    Observer
	log         *slog.Logger
}

// NewAgentService creates an AgentService. observer and log may be nil.
func NewAgentService(
	store driven.StateStore,
	counter driven.UnreadCounter,
	surface driven.Surface,
	serviceName string,
	observer Observer,
	log *slog.Logger,
) *AgentService {
	if observer == nil {
		observer = nopObserver{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &AgentService{
		store:       store,
		counter:     counter,
		surface:     surface,
		dispatcher:  NewDispatcher(store, surface, serviceName, log),
		serviceName: serviceName,
		observer:    observer,
		log:         log,
	}
}

// Tick runs one poll: load, fetch if signed in, decide, dispatch.
func (s *AgentService) Tick(ctx context.Context) (TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior, err := s.store.Load(ctx)
	if err != nil {
		s.observer.ObserveTick(OutcomeError)
		return TickResult{}, fmt.Errorf("load state: %w", err)
	}

	if !prior.SignedIn() {
		s.log.Debug("tick skipped: not signed in")
		s.observer.ObserveTick(OutcomeUnauthenticated)
		return TickResult{Decision: model.NoDecision, State: prior}, nil
	}

	fetched := s.fetch(ctx, prior)
	decision := Decide(prior, fetched)
	s.observer.ObserveDecision(decision.Kind)

	next, err := s.dispatcher.Dispatch(ctx, prior, decision)
	result := TickResult{Polled: true, Fetched: fetched, Decision: decision, State: next}
	if err != nil {
		s.observer.ObserveTick(OutcomeError)
		return result, err
	}

	if decision.Kind == model.DecisionNone {
		s.observer.ObserveTick(OutcomeNoChange)
	} else {
		s.observer.ObserveTick(OutcomeDispatched)
	}
	s.log.Debug("tick complete", "fetched", fetched, "decision", decision.String())
	return result, nil
}

// fetch returns the remote count, degrading every failure to 0.
func (s *AgentService) fetch(ctx context.Context, state model.NotificationState) int {
	n, err := s.counter.FetchUnreadCount(ctx, state.Credential, state.Identity)
	if err != nil {
		s.log.Warn("unread count fetch failed", "identity", state.Identity, "error", err)
		s.observer.ObserveFetch(0, err)
		return 0
	}
	if n < 0 {
		n = 0
	}
	s.observer.ObserveFetch(n, nil)
	return n
}

// SetCredentials stores credential and identity, keeping HasNotified and
// UnreadCount. Both values must be non-empty.
func (s *AgentService) SetCredentials(ctx context.Context, credential, identity string) error {
	if strings.TrimSpace(credential) == "" || strings.TrimSpace(identity) == "" {
		return fmt.Errorf("%w: credential and identity are required", ErrInvalidParams)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	state.Credential = credential
	state.Identity = identity
	if _, err := s.store.Save(ctx, state); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	s.log.Info("credentials stored", "identity", identity)
	return nil
}

// Bootstrap stores credential and identity only when no credential is
// stored yet. It reports whether the store was changed.
func (s *AgentService) Bootstrap(ctx context.Context, credential, identity string) (bool, error) {
	if credential == "" && identity == "" {
		return false, nil
	}
	if credential == "" || identity == "" {
		return false, fmt.Errorf("%w: bootstrap needs both credential and identity", ErrInvalidParams)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load state: %w", err)
	}
	if state.SignedIn() {
		return false, nil
	}
	state.Credential = credential
	state.Identity = identity
	if _, err := s.store.Save(ctx, state); err != nil {
		return false, fmt.Errorf("save bootstrap credentials: %w", err)
	}

	s.log.Info("bootstrap credentials stored", "identity", identity)
	return true, nil
}

// RemoveCredentials resets the record to defaults. The next sign-in starts
// over with a fresh first alert.
func (s *AgentService) RemoveCredentials(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Save(ctx, model.NotificationState{}); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}

	s.log.Info("credentials removed")
	return nil
}

// IsSignedIn reports whether a credential is stored. Store errors read as
// signed out.
func (s *AgentService) IsSignedIn(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn("sign-in check failed", "error", err)
		return false
	}
	return state.SignedIn()
}

// FetchUnread returns the live remote count without touching state.
func (s *AgentService) FetchUnread(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load state: %w", err)
	}
	if !state.SignedIn() {
		return 0, ErrNotSignedIn
	}
	return s.fetch(ctx, state), nil
}

// InAppNotify posts the fixed "message waiting" notification.
func (s *AgentService) InAppNotify(ctx context.Context) error {
	if err := s.surface.Notify(ctx, WaitingMessage(s.serviceName), 0); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// State returns the current record.
func (s *AgentService) State(ctx context.Context) (model.NotificationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return model.NotificationState{}, fmt.Errorf("load state: %w", err)
	}
	return state, nil
}
