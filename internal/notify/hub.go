package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/regioncache/internal/ctxlog"
	"github.com/zishang520/socket.io/v2/socket"
)

const (
	// DefaultEvent is the socket.io event name carrying notifications.
	DefaultEvent = "region_changed"

	// AllRegions is the room every subscriber joins on connect.
	AllRegions = "*"

	subscribeEvent   = "subscribe"
	unsubscribeEvent = "unsubscribe"
)

// Hub is a socket.io server that subscribers connect to. A subscriber is
// placed in the AllRegions room on connect and can narrow what it sees by
// emitting "subscribe"/"unsubscribe" with region names; each notification is
// broadcast to its region's room and to AllRegions.
type Hub struct {
	io    *socket.Server
	event string
	codec Codec

	// emit is swapped out in tests.
	emit func(rooms []string, event string, data any) error
}

// NewHub creates a socket.io hub. Mount Handler() under "/socket.io/".
func NewHub(logger *slog.Logger, event string, codec Codec) *Hub {
	if event == "" {
		event = DefaultEvent
	}
	if codec == nil {
		codec = JSON
	}
	if logger == nil {
		logger = slog.Default()
	}

	io := socket.NewServer(nil, nil)
	h := &Hub{io: io, event: event, codec: codec}
	h.emit = h.broadcast

	io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		client.Join(socket.Room(AllRegions))
		logger.Debug("Subscriber connected.", "sid", client.Id())

		client.On(subscribeEvent, func(args ...any) {
			for _, name := range regionNames(args) {
				client.Join(socket.Room(name))
				logger.Debug("Subscriber joined region.", "sid", client.Id(), "region", name)
			}
		})
		client.On(unsubscribeEvent, func(args ...any) {
			for _, name := range regionNames(args) {
				client.Leave(socket.Room(name))
				logger.Debug("Subscriber left region.", "sid", client.Id(), "region", name)
			}
		})
	})

	return h
}

// Handler returns the HTTP handler serving the socket.io protocol.
func (h *Hub) Handler() http.Handler {
	return h.io.ServeHandler(nil)
}

// Publish implements Publisher.
func (h *Hub) Publish(ctx context.Context, n Notification) error {
	data, err := emitValue(h.codec, n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Broadcasting notification.", "source", n.Source, "event", h.event)
	return h.emit([]string{n.Source, AllRegions}, h.event, data)
}

// Close disconnects all subscribers and stops the server.
func (h *Hub) Close() error {
	h.io.Close(nil)
	return nil
}

func (h *Hub) broadcast(rooms []string, event string, data any) error {
	targets := make([]socket.Room, 0, len(rooms))
	for _, r := range rooms {
		targets = append(targets, socket.Room(r))
	}
	return h.io.To(targets...).Emit(event, data)
}

// regionNames extracts region names from subscribe arguments, accepting
// both variadic strings and a single list.
func regionNames(args []any) []string {
	var names []string
	for _, a := range args {
		switch v := a.(type) {
		case string:
			if v != "" {
				names = append(names, v)
			}
		case []any:
			names = append(names, regionNames(v)...)
		}
	}
	return names
}
