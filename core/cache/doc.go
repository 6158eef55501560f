// Package cache provides the in-memory TTL store backing the reference-data
// layer. It keeps two parallel structures per resource: a per-record cache
// keyed by (resource, id) and a per-list cache keyed by resource alone.
//
// Entries are immutable once written; a refresh replaces the entry in a
// single assignment. Expiry is lazy: a stale entry is reported as
// [StateStale] on read but stays in place until overwritten or cleared,
// so callers can serve stale data while revalidating.
//
// # Usage
//
//	store := cache.New[source.Record]()
//	store.PutRecord("drivers", "1", rec, 5*time.Minute)
//
//	rec, state := store.GetRecord("drivers", "1")
//	switch state {
//	case cache.StateFresh:
//	    // serve as-is
//	case cache.StateStale:
//	    // serve, then revalidate in the background
//	case cache.StateMissing:
//	    // fetch synchronously
//	}
package cache
