package lifecycle

import (
	"log/slog"
	"time"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLoadTimeout bounds each region's load. Zero or negative disables the
// bound.
func WithLoadTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		disp.loadTimeout = d
	}
}

// WithLogger makes the dispatcher log through logger instead of the logger
// carried by the event's context.
func WithLogger(logger *slog.Logger) Option {
	return func(disp *Dispatcher) {
		disp.logger = logger
	}
}
