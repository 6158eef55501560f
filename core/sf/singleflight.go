package sf

import "golang.org/x/sync/singleflight"

// Group deduplicates concurrent fetches for the same cache key. While a
// fetch for a key is in flight, other callers for that key wait and
// receive the same result instead of hitting the backend again.
type Group[T any] struct {
	group singleflight.Group
}

// New creates a Group for value type T.
func New[T any]() *Group[T] {
	return &Group[T]{}
}

// Key builds the group key for a (resource, id) pair. List fetches use
// the resource name alone.
func Key(resource, id string) string {
	if id == "" {
		return resource
	}
	return resource + ":" + id
}

// Do runs fn for key, collapsing concurrent calls with the same key into
// a single execution. shared reports whether the result was produced by
// another caller's in-flight fetch.
func (g *Group[T]) Do(key string, fn func() (T, error)) (out T, err error, shared bool) {
	v, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		return out, err, shared
	}
	return v.(T), nil, shared
}

// Forget drops the in-flight call for key, so the next Do executes fn
// again instead of joining it. Used by explicit refetches.
func (g *Group[T]) Forget(key string) {
	g.group.Forget(key)
}
