package refdata

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/refdata-go/ports/source"
)

func gridBindings() []Binding {
	return []Binding{
		{Resource: "drivers", Fields: []string{"eta_driver_id", "etd_driver_id"}},
		{Resource: "terminals", Fields: []string{"terminal_id"}},
		{Resource: "trucks", Fields: []string{"eta_truck_id", "etd_truck_id"}},
	}
}

func seedGrid(src *source.MemSource) {
	src.Seed("drivers",
		source.Record{"id": "d1", "name": "A"},
		source.Record{"id": "d2", "name": "B"},
		source.Record{"id": "d3", "name": "C"},
	)
	src.Seed("terminals",
		source.Record{"id": "t1", "name": "Oslo"},
	)
	src.Seed("trucks",
		source.Record{"id": "k1", "name": "Scania"},
	)
}

func TestResolver_OneBatchPerResource(t *testing.T) {
	src := source.NewMemSource()
	seedGrid(src)
	c := New(src)
	defer c.Close()

	// 50 rows referencing only 3 distinct drivers.
	rows := make([]source.Record, 0, 50)
	for i := 0; i < 50; i++ {
		rows = append(rows, source.Record{
			"id":            fmt.Sprintf("o%d", i),
			"eta_driver_id": fmt.Sprintf("d%d", i%3+1),
			"terminal_id":   "t1",
		})
	}

	r := NewResolver(c, gridBindings()...)
	lookup, err := r.Resolve(t.Context(), rows)
	require.NoError(t, err)

	require.Equal(t, 1, src.ByIDsCalls("drivers"))
	require.ElementsMatch(t, []string{"d1", "d2", "d3"}, src.LastIDs("drivers"))
	require.Equal(t, 1, src.ByIDsCalls("terminals"))

	// Trucks were never referenced: no call at all.
	require.Equal(t, 0, src.ByIDsCalls("trucks"))

	require.Equal(t, "A", lookup.Get("drivers", "d1")["name"])
	require.Equal(t, "Oslo", lookup.Get("terminals", "t1")["name"])
	require.Nil(t, lookup.Get("drivers", "unknown"))
	require.Nil(t, lookup.Get("drivers", ""))
}

func TestResolver_EmptyIDsNeverBatched(t *testing.T) {
	src := source.NewMemSource()
	seedGrid(src)
	c := New(src)
	defer c.Close()

	rows := []source.Record{
		{"id": "o1", "eta_driver_id": "d1", "etd_driver_id": ""},
		{"id": "o2"},
		{"id": "o3", "eta_driver_id": nil},
	}

	r := NewResolver(c, gridBindings()...)
	lookup, err := r.Resolve(t.Context(), rows)
	require.NoError(t, err)

	require.Equal(t, []string{"d1"}, src.LastIDs("drivers"))
	require.Nil(t, lookup.Get("drivers", ""))
}

func TestResolver_EquivalentIDSetDoesNotRefetch(t *testing.T) {
	src := source.NewMemSource()
	seedGrid(src)
	c := New(src)
	defer c.Close()

	rows := []source.Record{
		{"id": "o1", "eta_driver_id": "d1", "etd_driver_id": "d2"},
	}
	r := NewResolver(c, gridBindings()...)

	_, err := r.Resolve(t.Context(), rows)
	require.NoError(t, err)
	require.Equal(t, 1, src.ByIDsCalls("drivers"))

	// A fresh slice with the same ids in a different shape.
	rows2 := []source.Record{
		{"id": "o9", "eta_driver_id": "d2"},
		{"id": "o8", "etd_driver_id": "d1", "eta_driver_id": "d1"},
	}
	_, err = r.Resolve(t.Context(), rows2)
	require.NoError(t, err)
	require.Equal(t, 1, src.ByIDsCalls("drivers"))

	// A genuinely new id set refetches.
	rows3 := []source.Record{
		{"id": "o7", "eta_driver_id": "d3"},
	}
	_, err = r.Resolve(t.Context(), rows3)
	require.NoError(t, err)
	require.Equal(t, 2, src.ByIDsCalls("drivers"))
}

func TestResolver_FreshCachedIDsExcludedFromBatch(t *testing.T) {
	src := source.NewMemSource()
	seedGrid(src)
	c := New(src)
	defer c.Close()

	// Prime d1 through the single-record path.
	_, err := c.Record(t.Context(), "drivers", "d1")
	require.NoError(t, err)

	rows := []source.Record{
		{"id": "o1", "eta_driver_id": "d1", "etd_driver_id": "d2"},
	}
	r := NewResolver(c, gridBindings()...)
	lookup, err := r.Resolve(t.Context(), rows)
	require.NoError(t, err)

	// Only the uncached id went on the wire.
	require.Equal(t, []string{"d2"}, src.LastIDs("drivers"))
	require.Equal(t, "A", lookup.Get("drivers", "d1")["name"])
	require.Equal(t, "B", lookup.Get("drivers", "d2")["name"])
}

func TestResolver_FailureIsolatedPerResource(t *testing.T) {
	mem := source.NewMemSource()
	seedGrid(mem)
	src := &selectiveFailSource{MemSource: mem, failResource: "drivers"}
	c := New(src)
	defer c.Close()

	rows := []source.Record{
		{"id": "o1", "eta_driver_id": "d1", "terminal_id": "t1"},
	}
	r := NewResolver(c, gridBindings()...)
	lookup, err := r.Resolve(t.Context(), rows)
	require.ErrorIs(t, err, errBackendDown)

	// Drivers degrade to nil, terminals still resolve.
	require.Nil(t, lookup.Get("drivers", "d1"))
	require.Equal(t, "Oslo", lookup.Get("terminals", "t1")["name"])
}

func TestResolver_BatchPopulatesRecordCache(t *testing.T) {
	src := source.NewMemSource()
	seedGrid(src)
	c := New(src)
	defer c.Close()

	rows := []source.Record{{"id": "o1", "eta_driver_id": "d1"}}
	r := NewResolver(c, gridBindings()...)
	_, err := r.Resolve(t.Context(), rows)
	require.NoError(t, err)

	// Batched records are usable by the single-record path.
	rec, err := c.Record(t.Context(), "drivers", "d1")
	require.NoError(t, err)
	require.Equal(t, "A", rec["name"])
	require.Equal(t, 0, src.OneCalls("drivers"))
}

func TestResolver_Invalidate(t *testing.T) {
	src := source.NewMemSource()
	seedGrid(src)

	// Short-circuit the record cache so Invalidate actually refetches.
	c := New(src)
	defer c.Close()

	rows := []source.Record{{"id": "o1", "terminal_id": "t1"}}
	r := NewResolver(c, gridBindings()...)

	_, err := r.Resolve(t.Context(), rows)
	require.NoError(t, err)
	require.Equal(t, 1, src.ByIDsCalls("terminals"))

	r.Invalidate()
	c.Clear("terminals")

	_, err = r.Resolve(t.Context(), rows)
	require.NoError(t, err)
	require.Equal(t, 2, src.ByIDsCalls("terminals"))
}

// selectiveFailSource fails calls for a single resource.
type selectiveFailSource struct {
	*source.MemSource
	failResource string
}

func (s *selectiveFailSource) ByIDs(ctx context.Context, resource string, ids []string) ([]source.Record, error) {
	if resource == s.failResource {
		return nil, errBackendDown
	}
	return s.MemSource.ByIDs(ctx, resource, ids)
}
