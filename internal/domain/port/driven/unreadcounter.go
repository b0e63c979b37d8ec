package driven

import "context"

// UnreadCounter defines the driven port for the remote unread-count lookup.
type UnreadCounter interface {
	// FetchUnreadCount returns the number of unread messages for identity,
	// authenticated with credential. Transport, status, and decode failures
	// are returned as errors; callers decide how to degrade.
	FetchUnreadCount(ctx context.Context, credential, identity string) (int, error)
}
