package refdata

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/codewandler/refdata-go/core/cache"
	"github.com/codewandler/refdata-go/core/sf"
	"github.com/codewandler/refdata-go/ports/source"
)

// DefaultTTL is how long a cache entry is considered fresh unless
// overridden per client or per resource.
const DefaultTTL = 5 * time.Minute

// Option configures a Client.
type Option func(*config)

type config struct {
	log          *slog.Logger
	metrics      Metrics
	store        *cache.Store[source.Record]
	ttl          time.Duration
	resourceTTL  map[string]time.Duration
	swr          bool
	dedup        bool
	onRevalidate func(resource, id string, err error)
}

// WithLogger sets the logger (default: slog.Default).
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics sets the metrics backend (default: nop).
func WithMetrics(m Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithStore injects a shared cache store. Multiple clients can point at
// the same store to share cached reference data.
func WithStore(s *cache.Store[source.Record]) Option {
	return func(c *config) {
		if s != nil {
			c.store = s
		}
	}
}

// WithTTL sets the default entry TTL (default: DefaultTTL).
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithResourceTTL overrides the TTL for a single resource.
func WithResourceTTL(resource string, ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.resourceTTL[resource] = ttl
		}
	}
}

// WithStaleWhileRevalidate toggles serving stale entries while refreshing
// them in the background (default: enabled). When disabled, a stale entry
// is treated like a miss and fetched synchronously.
func WithStaleWhileRevalidate(enabled bool) Option {
	return func(c *config) {
		c.swr = enabled
	}
}

// WithRequestDedup collapses concurrent fetches for the same key into a
// single backend call, background revalidations included. Off by default:
// without it, two goroutines racing on an uncached id both fetch and the
// last cache write wins, which is redundant but harmless.
func WithRequestDedup() Option {
	return func(c *config) {
		c.dedup = true
	}
}

// WithOnRevalidate registers a callback invoked after every background
// revalidation, with the error it ended in (nil on success).
func WithOnRevalidate(fn func(resource, id string, err error)) Option {
	return func(c *config) {
		c.onRevalidate = fn
	}
}

// Client is the cached reference-data fetcher. All methods are safe for
// concurrent use.
type Client struct {
	src          source.Source
	store        *cache.Store[source.Record]
	log          *slog.Logger
	metrics      Metrics
	ttl          time.Duration
	resourceTTL  map[string]time.Duration
	swr          bool
	recordFlight *sf.Group[source.Record]
	listFlight   *sf.Group[[]source.Record]
	onRevalidate func(resource, id string, err error)

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// New creates a Client reading through src.
func New(src source.Source, opts ...Option) *Client {
	cfg := &config{
		log:         slog.Default(),
		metrics:     NopMetrics(),
		ttl:         DefaultTTL,
		resourceTTL: map[string]time.Duration{},
		swr:         true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.store == nil {
		cfg.store = cache.New[source.Record]()
	}

	c := &Client{
		src:          src,
		store:        cfg.store,
		log:          cfg.log.With(slog.String("component", "refdata")),
		metrics:      cfg.metrics,
		ttl:          cfg.ttl,
		resourceTTL:  cfg.resourceTTL,
		swr:          cfg.swr,
		onRevalidate: cfg.onRevalidate,
	}
	if cfg.dedup {
		c.recordFlight = sf.New[source.Record]()
		c.listFlight = sf.New[[]source.Record]()
	}
	return c
}

// Store exposes the underlying cache store, e.g. to share it with a
// second client.
func (c *Client) Store() *cache.Store[source.Record] { return c.store }

func (c *Client) ttlFor(resource string) time.Duration {
	if ttl, ok := c.resourceTTL[resource]; ok {
		return ttl
	}
	return c.ttl
}

// Record returns the record for (resource, id).
//
// An empty id yields (nil, nil) without any fetch. A fresh cache entry is
// served as-is. A stale entry is served immediately while a background
// refresh runs. A missing entry is fetched synchronously; a record the
// backend does not know yields (nil, nil) and writes no cache entry.
func (c *Client) Record(ctx context.Context, resource, id string) (source.Record, error) {
	if id == "" {
		return nil, nil
	}

	rec, state := c.store.GetRecord(resource, id)
	switch state {
	case cache.StateFresh:
		c.metrics.Hit(resource)
		return rec, nil
	case cache.StateStale:
		if c.swr {
			c.metrics.StaleServed(resource)
			c.revalidate(ctx, resource, id)
			return rec, nil
		}
	}

	c.metrics.Miss(resource)
	return c.fetchRecord(ctx, resource, id)
}

// Refetch fetches (resource, id) from the backend regardless of cache
// freshness and updates the cache on success.
func (c *Client) Refetch(ctx context.Context, resource, id string) (source.Record, error) {
	if id == "" {
		return nil, nil
	}
	if c.recordFlight != nil {
		// Never join an older in-flight fetch: a refetch must hit the wire.
		c.recordFlight.Forget(sf.Key(resource, id))
	}
	return c.fetchRecord(ctx, resource, id)
}

func (c *Client) fetchRecord(ctx context.Context, resource, id string) (source.Record, error) {
	fetch := func() (source.Record, error) {
		defer c.metrics.FetchDuration(resource).ObserveDuration()
		return c.src.One(ctx, resource, id)
	}

	var (
		rec source.Record
		err error
	)
	if c.recordFlight != nil {
		rec, err, _ = c.recordFlight.Do(sf.Key(resource, id), fetch)
	} else {
		rec, err = fetch()
	}
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			// Absent records are not an error state and are not cached.
			return nil, nil
		}
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	c.store.PutRecord(resource, id, rec, c.ttlFor(resource))
	return rec, nil
}

// revalidate refreshes a stale entry in the background. Failures keep the
// stale entry and are only logged; the consumer already got data.
func (c *Client) revalidate(ctx context.Context, resource, id string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	// Detached from the caller: an unmounting consumer must not abort the
	// refresh, the cache write is harmless either way.
	bgCtx := context.WithoutCancel(ctx)

	go func() {
		defer c.wg.Done()

		fetch := func() (source.Record, error) {
			return c.src.One(bgCtx, resource, id)
		}
		var (
			rec source.Record
			err error
		)
		if c.recordFlight != nil {
			// Concurrent stale reads collapse into one refresh.
			rec, err, _ = c.recordFlight.Do(sf.Key(resource, id), fetch)
		} else {
			rec, err = fetch()
		}
		if err == nil && rec != nil {
			c.store.PutRecord(resource, id, rec, c.ttlFor(resource))
		}
		c.metrics.Revalidated(resource, err == nil)
		if err != nil {
			c.log.Warn("revalidation failed, serving stale",
				slog.String("resource", resource),
				slog.String("id", id),
				slog.Any("error", err),
			)
		}
		if c.onRevalidate != nil {
			c.onRevalidate(resource, id, err)
		}
	}()
}

// List returns all records of a resource, with the same staleness policy
// as Record. Every successful fetch also upserts the listed records into
// the per-record cache, so subsequent Record calls for listed ids are
// cache hits.
func (c *Client) List(ctx context.Context, resource string) ([]source.Record, error) {
	list, state := c.store.GetList(resource)
	switch state {
	case cache.StateFresh:
		c.metrics.Hit(resource)
		return list, nil
	case cache.StateStale:
		if c.swr {
			c.metrics.StaleServed(resource)
			c.revalidateList(ctx, resource)
			return list, nil
		}
	}

	c.metrics.Miss(resource)
	return c.fetchList(ctx, resource)
}

// RefetchList fetches the resource listing regardless of cache freshness.
func (c *Client) RefetchList(ctx context.Context, resource string) ([]source.Record, error) {
	if c.listFlight != nil {
		c.listFlight.Forget(sf.Key(resource, ""))
	}
	return c.fetchList(ctx, resource)
}

func (c *Client) fetchList(ctx context.Context, resource string) ([]source.Record, error) {
	fetch := func() ([]source.Record, error) {
		defer c.metrics.FetchDuration(resource).ObserveDuration()
		return c.src.List(ctx, resource)
	}

	var (
		list []source.Record
		err  error
	)
	if c.listFlight != nil {
		list, err, _ = c.listFlight.Do(sf.Key(resource, ""), fetch)
	} else {
		list, err = fetch()
	}
	if err != nil {
		return nil, err
	}

	c.storeList(resource, list)
	return list, nil
}

// storeList writes the list entry and cross-populates the record cache.
func (c *Client) storeList(resource string, list []source.Record) {
	ttl := c.ttlFor(resource)
	c.store.PutList(resource, list, ttl)
	for _, rec := range list {
		if id := rec.ID(); id != "" {
			c.store.PutRecord(resource, id, rec, ttl)
		}
	}
}

func (c *Client) revalidateList(ctx context.Context, resource string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	bgCtx := context.WithoutCancel(ctx)

	go func() {
		defer c.wg.Done()

		fetch := func() ([]source.Record, error) {
			return c.src.List(bgCtx, resource)
		}
		var (
			list []source.Record
			err  error
		)
		if c.listFlight != nil {
			list, err, _ = c.listFlight.Do(sf.Key(resource, ""), fetch)
		} else {
			list, err = fetch()
		}
		if err == nil {
			c.storeList(resource, list)
		}
		c.metrics.Revalidated(resource, err == nil)
		if err != nil {
			c.log.Warn("list revalidation failed, serving stale",
				slog.String("resource", resource),
				slog.Any("error", err),
			)
		}
		if c.onRevalidate != nil {
			c.onRevalidate(resource, "", err)
		}
	}()
}

// batchFetch fetches only the given ids in one call and upserts each
// returned record. Used by the resolver.
func (c *Client) batchFetch(ctx context.Context, resource string, ids []string) ([]source.Record, error) {
	defer c.metrics.FetchDuration(resource).ObserveDuration()
	c.metrics.BatchFetch(resource, len(ids))

	recs, err := c.src.ByIDs(ctx, resource, ids)
	if err != nil {
		return nil, err
	}
	ttl := c.ttlFor(resource)
	for _, rec := range recs {
		if id := rec.ID(); id != "" {
			c.store.PutRecord(resource, id, rec, ttl)
		}
	}
	return recs, nil
}

// Clear drops all cached entries of one resource; other resources keep
// their entries.
func (c *Client) Clear(resource string) {
	c.store.Clear(resource)
	c.log.Debug("cache cleared", slog.String("resource", resource))
}

// Reset drops the entire cache.
func (c *Client) Reset() {
	c.store.Reset()
	c.log.Debug("cache reset")
}

// Close stops accepting background revalidations and waits for in-flight
// ones to finish their cache writes.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
}
