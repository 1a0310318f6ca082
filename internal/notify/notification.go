package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Notification is a snapshot of a region's full contents at the time of a
// change. It is never a diff.
type Notification struct {
	ID      string    `json:"id" msgpack:"id"`
	Source  string    `json:"source" msgpack:"source"`
	Payload []any     `json:"payload" msgpack:"payload"`
	Time    time.Time `json:"time" msgpack:"time"`
}

// New builds a notification for source. The payload is copied so later
// mutations of the caller's slice cannot leak into a published snapshot.
func New(source string, payload []any) Notification {
	cp := make([]any, len(payload))
	copy(cp, payload)
	return Notification{
		ID:      uuid.NewString(),
		Source:  source,
		Payload: cp,
		Time:    time.Now().UTC(),
	}
}

// Publisher is the notification port. Implementations deliver a notification
// to their subscribers; the returned error is advisory and is never retried.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// PublisherFunc adapts a plain function to the Publisher interface.
type PublisherFunc func(ctx context.Context, n Notification) error

// Publish calls f(ctx, n).
func (f PublisherFunc) Publish(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// Discard is a Publisher that drops every notification.
var Discard Publisher = PublisherFunc(func(context.Context, Notification) error { return nil })
