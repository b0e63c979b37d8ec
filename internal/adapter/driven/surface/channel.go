package surface

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/unreadwatch/internal/domain/model"
	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
)

// Channel delivers a copy of a surface event to an outside destination.
type Channel interface {
	Name() string
	Send(ctx context.Context, subject, body string) error
}

// Compile-time interface satisfaction check.
var _ driven.Surface = (*Composite)(nil)

// Composite forwards every event to a primary Surface and then mirrors it to
// each Channel. Only the primary's errors are returned; mirror failures are
// logged and do not fail the event.
type Composite struct {
	primary  driven.Surface
	channels []Channel
	log      *slog.Logger
}

// NewComposite creates a Composite. A nil logger falls back to slog.Default.
func NewComposite(primary driven.Surface, log *slog.Logger, channels ...Channel) *Composite {
	if log == nil {
		log = slog.Default()
	}
	return &Composite{primary: primary, channels: channels, log: log}
}

// Alert implements driven.Surface.
func (c *Composite) Alert(ctx context.Context, a model.Alert) error {
	if err := c.primary.Alert(ctx, a); err != nil {
		return err
	}
	c.mirror(ctx, "alert", a.Heading, a.Body)
	return nil
}

// Notify implements driven.Surface.
func (c *Composite) Notify(ctx context.Context, message string, count int) error {
	if err := c.primary.Notify(ctx, message, count); err != nil {
		return err
	}
	c.mirror(ctx, "notify", message, message)
	return nil
}

func (c *Composite) mirror(ctx context.Context, event, subject, body string) {
	for _, ch := range c.channels {
		if err := ch.Send(ctx, subject, body); err != nil {
			c.log.Warn("surface mirror failed", "channel", ch.Name(), "event", event, "error", err)
			continue
		}
		c.log.Debug("surface mirror delivered", "channel", ch.Name(), "event", event)
	}
}
