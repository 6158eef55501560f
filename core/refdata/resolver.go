package refdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/codewandler/refdata-go/core/cache"
	"github.com/codewandler/refdata-go/internal/fingerprint"
	"github.com/codewandler/refdata-go/ports/source"
)

// Binding declares which row fields reference a resource, e.g. drivers
// are referenced by eta_driver_id and etd_driver_id.
type Binding struct {
	Resource string
	Fields   []string
}

// Resolver turns a page of grid rows into O(1) foreign-key lookups with
// one batched backend call per resource. It remembers the id set of the
// previous Resolve per resource and only refetches when that set changes,
// so reloading the same page costs nothing.
type Resolver struct {
	client   *Client
	bindings []Binding
	log      *slog.Logger

	mu       sync.Mutex
	resolved map[string]resolvedSet
}

type resolvedSet struct {
	fp   string
	byID map[string]source.Record
}

// NewResolver creates a Resolver over client for the given bindings.
func NewResolver(client *Client, bindings ...Binding) *Resolver {
	return &Resolver{
		client:   client,
		bindings: bindings,
		log:      client.log.With(slog.String("component", "resolver")),
		resolved: map[string]resolvedSet{},
	}
}

// Lookup holds the resolved id → record maps. Lookups are pure: an
// unknown or empty id returns nil and never triggers a fetch.
type Lookup struct {
	byResource map[string]map[string]source.Record
}

// Get returns the record of resource with the given id, or nil.
func (l *Lookup) Get(resource, id string) source.Record {
	if l == nil || id == "" {
		return nil
	}
	return l.byResource[resource][id]
}

// Resolve collects the distinct non-empty ids referenced by rows, batch
// fetches the ones not already fresh in the cache, and returns the
// lookup table.
//
// A failed batch for one resource degrades that resource's lookups to
// nil without affecting the others; the partial Lookup is returned
// alongside the joined error.
func (r *Resolver) Resolve(ctx context.Context, rows []source.Record) (*Lookup, error) {
	type result struct {
		resource string
		set      resolvedSet
		err      error
	}

	var (
		wg      sync.WaitGroup
		results = make(chan result, len(r.bindings))
	)

	r.mu.Lock()
	prev := r.resolved
	r.mu.Unlock()

	for _, b := range r.bindings {
		ids := collectIDs(rows, b.Fields)
		fp := fingerprint.Set(ids)

		if p, ok := prev[b.Resource]; ok && p.fp == fp {
			// Same id set as last time, nothing to fetch.
			results <- result{resource: b.Resource, set: p}
			continue
		}

		wg.Add(1)
		go func(b Binding, ids []string, fp string) {
			defer wg.Done()
			byID, err := r.fetch(ctx, b.Resource, ids)
			results <- result{
				resource: b.Resource,
				set:      resolvedSet{fp: fp, byID: byID},
				err:      err,
			}
		}(b, ids, fp)
	}

	wg.Wait()
	close(results)

	lookup := &Lookup{byResource: map[string]map[string]source.Record{}}
	next := make(map[string]resolvedSet, len(r.bindings))
	var errs []error
	for res := range results {
		lookup.byResource[res.resource] = res.set.byID
		next[res.resource] = res.set
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.resource, res.err))
		}
	}

	r.mu.Lock()
	r.resolved = next
	r.mu.Unlock()

	return lookup, errors.Join(errs...)
}

// Invalidate forgets the remembered id sets, forcing the next Resolve to
// fetch again.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.resolved = map[string]resolvedSet{}
	r.mu.Unlock()
}

// fetch builds the id → record map for one resource: fresh cached
// records are taken as-is, the rest go out in a single batched call.
func (r *Resolver) fetch(ctx context.Context, resource string, ids []string) (map[string]source.Record, error) {
	byID := make(map[string]source.Record, len(ids))

	var missing []string
	for _, id := range ids {
		if rec, state := r.client.store.GetRecord(resource, id); state == cache.StateFresh {
			byID[id] = rec
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return byID, nil
	}

	recs, err := r.client.batchFetch(ctx, resource, missing)
	if err != nil {
		r.log.Warn("batch fetch failed, lookups degrade to nil",
			slog.String("resource", resource),
			slog.Int("ids", len(missing)),
			slog.Any("error", err),
		)
		return map[string]source.Record{}, err
	}
	for _, rec := range recs {
		if id := rec.ID(); id != "" {
			byID[id] = rec
		}
	}
	return byID, nil
}

// collectIDs scans rows for the given fields, dropping empties and
// duplicates while keeping first-seen order.
func collectIDs(rows []source.Record, fields []string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, row := range rows {
		for _, f := range fields {
			v, ok := row[f].(string)
			if !ok {
				continue
			}
			id := strings.TrimSpace(v)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
