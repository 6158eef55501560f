package source

import (
	"context"
	"sync"
)

// MemSource is an in-memory Source for tests and examples. It counts
// every call per resource so cache behavior can be asserted.
type MemSource struct {
	mu   sync.Mutex
	data map[string]map[string]Record

	oneCalls   map[string]int
	listCalls  map[string]int
	byIDsCalls map[string]int
	lastIDs    map[string][]string
}

func NewMemSource() *MemSource {
	return &MemSource{
		data:       map[string]map[string]Record{},
		oneCalls:   map[string]int{},
		listCalls:  map[string]int{},
		byIDsCalls: map[string]int{},
		lastIDs:    map[string][]string{},
	}
}

// Seed replaces the records of a resource.
func (m *MemSource) Seed(resource string, records ...Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := make(map[string]Record, len(records))
	for _, r := range records {
		byID[r.ID()] = r
	}
	m.data[resource] = byID
}

func (m *MemSource) One(_ context.Context, resource, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oneCalls[resource]++
	r, ok := m.data[resource][id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *MemSource) List(_ context.Context, resource string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls[resource]++
	out := make([]Record, 0, len(m.data[resource]))
	for _, r := range m.data[resource] {
		out = append(out, r)
	}
	return out, nil
}

func (m *MemSource) ByIDs(_ context.Context, resource string, ids []string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byIDsCalls[resource]++
	m.lastIDs[resource] = append([]string{}, ids...)
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		if r, ok := m.data[resource][id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// OneCalls returns how many single-record fetches were issued for resource.
func (m *MemSource) OneCalls(resource string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.oneCalls[resource]
}

// ListCalls returns how many list fetches were issued for resource.
func (m *MemSource) ListCalls(resource string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls[resource]
}

// ByIDsCalls returns how many batched fetches were issued for resource.
func (m *MemSource) ByIDsCalls(resource string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byIDsCalls[resource]
}

// LastIDs returns the id list of the most recent batched fetch for resource.
func (m *MemSource) LastIDs(resource string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.lastIDs[resource]...)
}

var _ Source = (*MemSource)(nil)
