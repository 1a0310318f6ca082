package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/specialistvlad/regioncache/internal/ctxlog"
)

// WebSocket writes one frame per notification to a WebSocket endpoint.
type WebSocket struct {
	mu    sync.Mutex
	conn  *websocket.Conn
	codec Codec
}

// DialWebSocket opens the connection. A nil codec selects JSON.
func DialWebSocket(ctx context.Context, url string, codec Codec) (*WebSocket, error) {
	if codec == nil {
		codec = JSON
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", url, err)
	}
	ctxlog.FromContext(ctx).Info("Connected to websocket endpoint.", "url", url, "codec", codec.Name())
	return &WebSocket{conn: conn, codec: codec}, nil
}

// Publish implements Publisher. Concurrent publishes are serialized because
// a websocket connection supports one writer at a time.
func (w *WebSocket) Publish(ctx context.Context, n Notification) error {
	frame, err := w.codec.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	msgType := websocket.TextMessage
	if w.codec.Binary() {
		msgType = websocket.BinaryMessage
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := w.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := w.conn.WriteMessage(msgType, frame); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

// Close sends a close frame and closes the connection.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return w.conn.Close()
}
