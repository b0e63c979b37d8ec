package application

import (
	"fmt"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
)

// alertFooter closes every first-detection alert.
const alertFooter = "Future unread message notifications can be found in the Notifications tab!"

// FirstAlert builds the one-time alert shown when unread messages are first detected.
func FirstAlert(serviceName string, count int) model.Alert {
	return model.Alert{
		Heading: "New Message at " + serviceName,
		Body:    fmt.Sprintf("Unread Count: %d\n\n%s", count, alertFooter),
		Count:   count,
	}
}

// UpdateMessage is the in-app notification text for a changed unread count.
func UpdateMessage(serviceName string, count int) string {
	return fmt.Sprintf("%d unread messages at %s", count, serviceName)
}

// WaitingMessage is the fixed text posted by the inAppNotify method.
func WaitingMessage(serviceName string) string {
	return "Message Waiting at " + serviceName
}
