package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ratio-analytics-website/internal/domain"
)

// HTTPTransport posts form payloads as JSON to a backend endpoint
type HTTPTransport struct {
	endpoint string
	client   *http.Client
	header   http.Header
}

type Option func(*HTTPTransport)

// WithHeader adds a header to every request
func WithHeader(key, value string) Option {
	return func(t *HTTPTransport) { t.header.Add(key, value) }
}

// NewHTTPTransport creates a transport for endpoint. The client has no timeout of
// its own; the caller's context bounds each request.
func NewHTTPTransport(endpoint string, opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		endpoint: endpoint,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send posts payload. Any 2xx status is success; everything else is a *domain.TransportError.
func (t *HTTPTransport) Send(ctx context.Context, payload domain.FormPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &domain.TransportError{Err: fmt.Errorf("failed to encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return &domain.TransportError{Err: fmt.Errorf("failed to build request: %w", err)}
	}
	for key, values := range t.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return nil
}
