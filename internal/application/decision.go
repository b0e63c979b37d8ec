package application

import "github.com/ericfisherdev/unreadwatch/internal/domain/model"

// Decide maps the prior record and a freshly fetched count to the action to
// take. It is a total function: every input yields exactly one decision.
//
//	fetched <= 0                  -> None
//	!HasNotified                  -> FirstAlert(fetched)
//	fetched != prior.UnreadCount  -> Update(fetched)
//	otherwise                     -> None
func Decide(prior model.NotificationState, fetched int) model.Decision {
	switch {
	case fetched <= 0:
		return model.NoDecision
	case !prior.HasNotified:
		return model.Decision{Kind: model.DecisionFirstAlert, Count: fetched}
	case fetched != prior.UnreadCount:
		return model.Decision{Kind: model.DecisionUpdate, Count: fetched}
	default:
		return model.NoDecision
	}
}
