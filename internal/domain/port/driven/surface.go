package driven

import (
	"context"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
)

// Surface defines the driven port for the user-interaction surface.
type Surface interface {
	// Alert shows a blocking modal. It returns once the alert has been
	// recorded for the user.
	Alert(ctx context.Context, alert model.Alert) error

	// Notify posts a non-blocking in-app notification.
	Notify(ctx context.Context, message string, count int) error
}
