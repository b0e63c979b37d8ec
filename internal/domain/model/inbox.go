package model

import "time"

// InboxKind distinguishes the two user-facing interaction styles.
type InboxKind string

const (
	InboxKindAlert  InboxKind = "alert"  // Blocking modal shown on first detection.
	InboxKindNotify InboxKind = "notify" // Non-blocking in-app notification.
)

// InboxItem is one entry in the in-app notifications list.
type InboxItem struct {
	ID        string
	Kind      InboxKind
	Title     string
	Message   string
	Count     int // Unread count the item reported; 0 when not count-bearing.
	CreatedAt time.Time
	ReadAt    *time.Time // nil while unread.
}

// Alert is the content of a blocking modal alert. Body is markdown.
type Alert struct {
	Heading string
	Body    string
	Count   int
}
