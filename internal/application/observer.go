package application

import "github.com/ericfisherdev/unreadwatch/internal/domain/model"

// Tick outcomes reported to an Observer.
const (
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeNoChange        = "no_change"
	OutcomeDispatched      = "dispatched"
	OutcomeError           = "error"
)

// Observer receives poll telemetry. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveTick(outcome string)
	ObserveDecision(kind model.DecisionKind)
	ObserveFetch(count int, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveTick(string) {}
func (nopObserver) ObserveDecision(model.DecisionKind) {}
func (nopObserver) ObserveFetch(int, error) {}
