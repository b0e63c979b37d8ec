package model

import "time"

// NotificationState is the single persisted record that drives the
// notification decision. It is keyed by the installed agent instance.
//
// The zero value is the default record: unauthenticated, never notified,
// no unread messages acknowledged.
type NotificationState struct {
	Credential  string // Opaque bearer secret; empty means unauthenticated.
	Identity    string // User identity sent to the remote service; set iff Credential is set.
	HasNotified bool   // True once the first-ever alert has been shown.
	UnreadCount int    // Last unread count the user was informed about.
	UpdatedAt   time.Time
}

// SignedIn reports whether a credential is stored. Polling is disabled
// while this returns false.
func (s NotificationState) SignedIn() bool {
	return s.Credential != ""
}

// Paired reports whether Credential and Identity are both present or both
// absent. A record that is not paired must never be persisted.
func (s NotificationState) Paired() bool {
	return (s.Credential == "") == (s.Identity == "")
}

// Normalize clamps UnreadCount to zero or above.
func (s NotificationState) Normalize() NotificationState {
	if s.UnreadCount < 0 {
		s.UnreadCount = 0
	}
	return s
}
