package application_test

import (
	"context"
	"sync"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockStateStore struct {
	mu      sync.Mutex
	state   model.NotificationState
	loadErr error
	saveErr error
	saves   []model.NotificationState
}

func (m *mockStateStore) Load(_ context.Context) (model.NotificationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return model.NotificationState{}, m.loadErr
	}
	return m.state, nil
}

func (m *mockStateStore) Save(_ context.Context, state model.NotificationState) (model.NotificationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return model.NotificationState{}, m.saveErr
	}
	if !state.Paired() {
		return model.NotificationState{}, driven.ErrInvalidState
	}
	state = state.Normalize()
	m.state = state
	m.saves = append(m.saves, state)
	return state, nil
}

func (m *mockStateStore) current() model.NotificationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

type fetchCall struct {
	Credential string
	Identity   string
}

type mockCounter struct {
	mu    sync.Mutex
	count int
	err   error
	calls []fetchCall
}

func (m *mockCounter) FetchUnreadCount(_ context.Context, credential, identity string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fetchCall{Credential: credential, Identity: identity})
	if m.err != nil {
		return 0, m.err
	}
	return m.count, nil
}

func (m *mockCounter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type notifyCall struct {
	Message string
	Count   int
}

type mockSurface struct {
	mu        sync.Mutex
	alerts    []model.Alert
	notifies  []notifyCall
	alertErr  error
	notifyErr error
}

func (m *mockSurface) Alert(_ context.Context, a model.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.alertErr != nil {
		return m.alertErr
	}
	m.alerts = append(m.alerts, a)
	return nil
}

func (m *mockSurface) Notify(_ context.Context, message string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.notifies = append(m.notifies, notifyCall{Message: message, Count: count})
	return nil
}

func (m *mockSurface) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts) + len(m.notifies)
}

type mockObserver struct {
	mu        sync.Mutex
	ticks     []string
	decisions []model.DecisionKind
	failures  int
	lastCount int
}

func (m *mockObserver) ObserveTick(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = append(m.ticks, outcome)
}

func (m *mockObserver) ObserveDecision(kind model.DecisionKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, kind)
}

func (m *mockObserver) ObserveFetch(count int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.failures++
	}
	m.lastCount = count
}

func signedIn(hasNotified bool, count int) model.NotificationState {
	return model.NotificationState{
		Credential:  "k1",
		Identity:    "0xabc",
		HasNotified: hasNotified,
		UnreadCount: count,
	}
}
