package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/regioncache/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIOOptions configures an upstream socket.io publisher.
type SocketIOOptions struct {
	URL                string
	Namespace          string
	Event              string
	Codec              Codec
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
}

// SocketIOClient pushes notifications to a remote socket.io server.
type SocketIOClient struct {
	sock  *socket.Socket
	event string
	codec Codec

	// emit is swapped out in tests.
	emit func(event string, data any)
}

// DialSocketIO connects to the remote server and waits for the connect
// acknowledgement, the connect error, ctx cancellation or the timeout.
func DialSocketIO(ctx context.Context, opts SocketIOOptions) (*SocketIOClient, error) {
	logger := ctxlog.FromContext(ctx).With("publisher", "socketio_client", "url", opts.URL)

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if opts.Event == "" {
		opts.Event = DefaultEvent
	}
	if opts.Codec == nil {
		opts.Codec = JSON
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 15 * time.Second
	}

	sioOpts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		sioOpts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sioOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sioOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sioOpts)
	io := manager.Socket(opts.Namespace, sioOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to upstream socket.io server.", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	timer := time.NewTimer(opts.ConnectTimeout)
	defer timer.Stop()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", opts.ConnectTimeout)
	}

	c := &SocketIOClient{sock: io, event: opts.Event, codec: opts.Codec}
	c.emit = func(event string, data any) { io.Emit(event, data) }
	return c, nil
}

// Publish implements Publisher. socket.io emits are fire-and-forget.
func (c *SocketIOClient) Publish(ctx context.Context, n Notification) error {
	data, err := emitValue(c.codec, n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Emitting notification upstream.", "source", n.Source, "event", c.event)
	c.emit(c.event, data)
	return nil
}

// Close disconnects from the upstream server.
func (c *SocketIOClient) Close() error {
	if c.sock != nil {
		c.sock.Disconnect()
	}
	return nil
}
