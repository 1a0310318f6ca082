package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/regioncache/internal/notify"
)

// Recorder is a notify.Publisher that keeps every notification it receives.
// Setting Err makes every publish fail after recording.
type Recorder struct {
	mu    sync.Mutex
	notes []notify.Notification
	Err   error
}

// Publish implements notify.Publisher.
func (r *Recorder) Publish(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return r.Err
}

// Notifications returns all recorded notifications in publish order.
func (r *Recorder) Notifications() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Notification, len(r.notes))
	copy(out, r.notes)
	return out
}

// For returns the payloads published for source, in publish order.
func (r *Recorder) For(source string) [][]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out [][]any
	for _, n := range r.notes {
		if n.Source == source {
			out = append(out, n.Payload)
		}
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = nil
}
