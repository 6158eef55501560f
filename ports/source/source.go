package source

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
)

// Record is a single reference record as returned by the backend.
// Every record carries a string "id" field; everything else is opaque
// to the cache layer.
type Record map[string]any

// ID returns the record's id field, or "" if absent or not a string.
func (r Record) ID() string {
	if r == nil {
		return ""
	}
	v, ok := r["id"].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// Source is the backend the reference cache loads from.
type Source interface {
	// One fetches a single record by id. Returns ErrNotFound if the
	// backend has no such record.
	One(ctx context.Context, resource, id string) (Record, error)

	// List fetches all records of a resource.
	List(ctx context.Context, resource string) ([]Record, error)

	// ByIDs fetches only the records with the given ids, in one call.
	// Unknown ids are silently omitted from the result.
	ByIDs(ctx context.Context, resource string, ids []string) ([]Record, error)
}
