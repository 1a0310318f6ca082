package notify

import (
	"context"
	"errors"
	"fmt"
)

// Fanout delivers each notification to every member publisher. A failing
// member does not stop delivery to the others; all failures are joined.
type Fanout struct {
	names   []string
	members []Publisher
}

// NewFanout creates an empty fan-out.
func NewFanout() *Fanout {
	return &Fanout{}
}

// Add appends a named member. The name is only used to label errors.
func (f *Fanout) Add(name string, p Publisher) *Fanout {
	f.names = append(f.names, name)
	f.members = append(f.members, p)
	return f
}

// Len returns the number of members.
func (f *Fanout) Len() int {
	return len(f.members)
}

// Publish implements Publisher.
func (f *Fanout) Publish(ctx context.Context, n Notification) error {
	var errs []error
	for i, p := range f.members {
		if err := p.Publish(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("publisher %q: %w", f.names[i], err))
		}
	}
	return errors.Join(errs...)
}
