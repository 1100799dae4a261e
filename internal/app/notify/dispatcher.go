// Package notify delivers notifications to recipients through the configured
// channels and posts best-effort webhook summaries.
package notify

import (
	"context"

	"github.com/taskforge/taskforge/internal/app/core"
	"github.com/taskforge/taskforge/internal/app/domain/notification"
	"github.com/taskforge/taskforge/internal/app/metrics"
	"github.com/taskforge/taskforge/pkg/logger"
)

// Channel delivers one notification over a single transport (in-app record,
// email, ...).
type Channel interface {
	Name() string
	Send(ctx context.Context, n notification.Notification) error
}

// Notifier is the delivery contract lifecycle services and job handlers
// depend on.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, kind notification.Kind, payload map[string]any) error
}

// Dispatcher fans one message across all configured channels. A channel
// failure is wrapped as a DeliveryError; delivery to other channels and other
// recipients continues regardless.
type Dispatcher struct {
	channels []Channel
	log      *logger.Logger
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher delivering through the given channels.
func NewDispatcher(log *logger.Logger, channels ...Channel) *Dispatcher {
	if log == nil {
		log = logger.NewDefault("notify")
	}
	return &Dispatcher{channels: channels, log: log}
}

// Notify delivers to one recipient through every channel. The returned error
// is the first per-channel DeliveryError, after all channels were attempted.
func (d *Dispatcher) Notify(ctx context.Context, recipientID string, kind notification.Kind, payload map[string]any) error {
	n := notification.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		Payload:     payload,
	}

	var firstErr error
	for _, ch := range d.channels {
		err := ch.Send(ctx, n)
		metrics.RecordDelivery(ch.Name(), err == nil)
		if err == nil {
			continue
		}
		derr := core.NewDeliveryError(recipientID, ch.Name(), err)
		d.log.WithError(derr).
			WithField("recipient", recipientID).
			WithField("kind", string(kind)).
			Warn("notification delivery failed")
		if firstErr == nil {
			firstErr = derr
		}
	}
	return firstErr
}

// NotifyEach delivers to every recipient, isolating failures per recipient:
// one recipient's failure never blocks or aborts delivery to the others.
// Failures are already logged by Notify; the delivered count is returned for
// callers that track it.
func (d *Dispatcher) NotifyEach(ctx context.Context, recipientIDs []string, kind notification.Kind, payload map[string]any) int {
	delivered := 0
	for _, id := range recipientIDs {
		if id == "" {
			continue
		}
		if err := d.Notify(ctx, id, kind, payload); err == nil {
			delivered++
		}
	}
	return delivered
}
