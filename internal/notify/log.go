package notify

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/regioncache/internal/ctxlog"
)

// Log publishes notifications as structured log records.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a log publisher. A nil logger means "use the context logger".
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

// Publish implements Publisher.
func (l *Log) Publish(ctx context.Context, n Notification) error {
	logger := l.logger
	if logger == nil {
		logger = ctxlog.FromContext(ctx)
	}
	logger.Info("Region changed.", "id", n.ID, "source", n.Source, "size", len(n.Payload))
	logger.Debug("Region snapshot.", "id", n.ID, "payload", n.Payload)
	return nil
}
