package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
)

// Dispatcher turns a decision into at most one surface call, persisting the
// resulting state first so a failed surface call cannot repeat an alert.
type Dispatcher struct {
	store       driven.StateStore
	surface     driven.Surface
	serviceName string
	log         *slog.Logger
}

// NewDispatcher creates a Dispatcher. A nil logger falls back to slog.Default.
func NewDispatcher(store driven.StateStore, surface driven.Surface, serviceName string, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{store: store, surface: surface, serviceName: serviceName, log: log}
}

// Dispatch applies d to prior and returns the state now persisted.
//
// FirstAlert records HasNotified and the alerted count, then alerts.
// Update records the new count, then notifies. None touches nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, prior model.NotificationState, decision model.Decision) (model.NotificationState, error) {
	switch decision.Kind {
	case model.DecisionFirstAlert:
		next := prior
		next.HasNotified = true
		next.UnreadCount = decision.Count
		saved, err := d.store.Save(ctx, next)
		if err != nil {
			return prior, fmt.Errorf("persist first alert: %w", err)
		}
		if err := d.surface.Alert(ctx, FirstAlert(d.serviceName, decision.Count)); err != nil {
			return saved, fmt.Errorf("issue alert: %w", err)
		}
		d.log.Info("first alert issued", "count", decision.Count)
		return saved, nil

	case model.DecisionUpdate:
		next := prior
		next.UnreadCount = decision.Count
		saved, err := d.store.Save(ctx, next)
		if err != nil {
			return prior, fmt.Errorf("persist unread count: %w", err)
		}
		if err := d.surface.Notify(ctx, UpdateMessage(d.serviceName, decision.Count), decision.Count); err != nil {
			return saved, fmt.Errorf("issue notification: %w", err)
		}
		d.log.Info("unread count notification issued", "previous", prior.UnreadCount, "count", decision.Count)
		return saved, nil

	default:
		return prior, nil
	}
}
