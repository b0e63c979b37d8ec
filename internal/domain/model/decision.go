package model

import "fmt"

// DecisionKind enumerates the possible outcomes of one notification decision.
type DecisionKind string

const (
	DecisionNone       DecisionKind = "none"
	DecisionFirstAlert DecisionKind = "first_alert" // One-time blocking alert.
	DecisionUpdate     DecisionKind = "update"      // Silent in-app notification.
)

// Decision is the output of the notification decision engine. Count carries
// the fetched unread count for FirstAlert and Update; it is zero for None.
type Decision struct {
	Kind  DecisionKind
	Count int
}

// NoDecision is the no-op decision.
var NoDecision = Decision{Kind: DecisionNone}

// String returns a compact form such as "update(8)" for logging.
func (d Decision) String() string {
	if d.Kind == DecisionNone || d.Kind == "" {
		return string(DecisionNone)
	}
	return fmt.Sprintf("%s(%d)", d.Kind, d.Count)
}
