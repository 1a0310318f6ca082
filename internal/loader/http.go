package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/regioncache/internal/ctxlog"
	"resty.dev/v3"
)

// ErrHTTPStatus is returned when the endpoint answers with a non-2xx status.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// HTTP loads pairs from an endpoint returning a JSON array of
// {"key": ..., "value": ...} objects, in array order.
type HTTP struct {
	client *resty.Client
	url    string
}

type httpPair struct {
	Key   any `json:"key"`
	Value any `json:"value"`
}

// NewHTTP returns a loader for url. A zero timeout leaves requests bounded
// only by the caller's context.
func NewHTTP(url string, timeout time.Duration) *HTTP {
	client := resty.New().SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTP{client: client, url: url}
}

// FetchAll implements Loader.
func (h *HTTP) FetchAll(ctx context.Context) ([]Pair, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Fetching pairs over HTTP.", "url", h.url)

	var body []httpPair
	res, err := h.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(h.url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", h.url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("GET %s: %w: %s", h.url, ErrHTTPStatus, res.Status())
	}

	pairs := make([]Pair, 0, len(body))
	for i, p := range body {
		if p.Key == nil {
			return nil, fmt.Errorf("GET %s: element %d has no key", h.url, i)
		}
		pairs = append(pairs, Pair{Key: p.Key, Value: p.Value})
	}
	logger.Debug("HTTP pairs fetched.", "url", h.url, "count", len(pairs))
	return pairs, nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	return h.client.Close()
}
