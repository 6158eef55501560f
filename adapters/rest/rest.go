// Package rest implements the backend source over plain HTTP: JSON
// arrays/objects from GET /{resource}, GET /{resource}/{id} and the
// batched GET /{resource}?ids=id1,id2.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/refdata-go/ports/source"
)

// StatusError is a non-2xx backend response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the logger (default: slog.Default).
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRetry sets how many attempts a request gets and the fixed delay
// between them. Retries fire on transport errors and 5xx responses only.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if backoff >= 0 {
			c.backoff = backoff
		}
	}
}

// Client talks to the reference-data backend.
type Client struct {
	baseURL  string
	http     *http.Client
	log      *slog.Logger
	attempts int
	backoff  time.Duration
}

// New creates a Client for the backend at baseURL, e.g.
// "https://api.example.com/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      slog.Default(),
		attempts: 3,
		backoff:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(slog.String("component", "rest"))
	return c
}

func (c *Client) One(ctx context.Context, resource, id string) (source.Record, error) {
	body, err := c.get(ctx, resource+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var rec source.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", resource, id, err)
	}
	if rec == nil {
		return nil, source.ErrNotFound
	}
	if rec.ID() == "" {
		return nil, fmt.Errorf("malformed record in %s/%s: missing id", resource, id)
	}
	return rec, nil
}

func (c *Client) List(ctx context.Context, resource string) ([]source.Record, error) {
	return c.getList(ctx, resource, nil)
}

func (c *Client) ByIDs(ctx context.Context, resource string, ids []string) ([]source.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := url.Values{"ids": []string{strings.Join(ids, ",")}}
	return c.getList(ctx, resource, q)
}

func (c *Client) getList(ctx context.Context, resource string, q url.Values) ([]source.Record, error) {
	body, err := c.get(ctx, resource, q)
	if err != nil {
		return nil, err
	}

	var recs []source.Record
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("decode %s listing: %w", resource, err)
	}
	for _, rec := range recs {
		if rec.ID() == "" {
			return nil, fmt.Errorf("malformed record in %s listing: missing id", resource)
		}
	}
	return recs, nil
}

// get performs a GET with fixed-backoff retries on transport errors and
// 5xx responses. 404 maps to source.ErrNotFound without retrying.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + "/" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	reqID := gonanoid.Must(8)
	log := c.log.With(slog.String("url", u), slog.String("request_id", reqID))

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-Id", reqID)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			log.Debug("request failed, retrying", slog.Int("attempt", attempt), slog.Any("error", err))
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, source.ErrNotFound
		case resp.StatusCode >= 500:
			lastErr = &StatusError{Status: resp.StatusCode, Body: truncate(string(body), 256)}
			log.Debug("server error, retrying", slog.Int("attempt", attempt), slog.Int("status", resp.StatusCode))
			continue
		default:
			return nil, &StatusError{Status: resp.StatusCode, Body: truncate(string(body), 256)}
		}
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", c.attempts, lastErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ source.Source = (*Client)(nil)
