package logistics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/refdata-go/core/refdata"
	"github.com/codewandler/refdata-go/ports/source"
)

func newTestClient(t *testing.T) (*Client, *source.MemSource) {
	t.Helper()

	src := source.NewMemSource()
	src.Seed(ResourceDrivers,
		source.Record{"id": "d1", "name": "Ola", "phone": "111"},
		source.Record{"id": "d2", "name": "Kari", "phone": "222"},
	)
	src.Seed(ResourceTerminals,
		source.Record{"id": "t1", "name": "Oslo Terminal", "short_name": "OSL", "time_zone": "Europe/Oslo"},
	)
	src.Seed(ResourceTrucks,
		source.Record{"id": "k1", "name": "Scania R500", "license_plate": "ab12345"},
	)
	src.Seed(ResourceTrailers,
		source.Record{"id": "r1", "name": "Krone", "license_plate": "cd67890"},
	)
	src.Seed(ResourceOrders,
		source.Record{
			"id": "o1", "reference": "REF-001", "terminal_id": "t1",
			"eta_driver_id": "d1", "etd_driver_id": "d2",
			"eta_truck_id": "k1", "eta_trailer_id": "r1",
			"pallets": float64(12), "kilos": 840.5,
		},
		source.Record{
			"id": "o2", "reference": "REF-002", "terminal_id": "t1",
			"eta_driver_id": "d1",
		},
	)

	ref := refdata.New(src)
	t.Cleanup(ref.Close)
	return New(ref), src
}

func TestClient_TypedRecords(t *testing.T) {
	c, _ := newTestClient(t)

	d, err := c.Driver(t.Context(), "d1")
	require.NoError(t, err)
	require.Equal(t, &Driver{ID: "d1", Name: "Ola", Phone: "111"}, d)

	term, err := c.Terminal(t.Context(), "t1")
	require.NoError(t, err)
	require.Equal(t, "OSL", term.ShortName)
	require.Equal(t, "Europe/Oslo", term.TimeZone)

	missing, err := c.Driver(t.Context(), "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	empty, err := c.Driver(t.Context(), "")
	require.NoError(t, err)
	require.Nil(t, empty)
}

func TestClient_TypedLists(t *testing.T) {
	c, src := newTestClient(t)

	drivers, err := c.Drivers(t.Context())
	require.NoError(t, err)
	require.Len(t, drivers, 2)

	// Typed single reads ride on the list's record cache.
	d, err := c.Driver(t.Context(), "d2")
	require.NoError(t, err)
	require.Equal(t, "Kari", d.Name)
	require.Equal(t, 0, src.OneCalls(ResourceDrivers))
}

func TestClient_Orders(t *testing.T) {
	c, _ := newTestClient(t)

	orders, err := c.Orders(t.Context())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	byRef := map[string]Order{}
	for _, o := range orders {
		byRef[o.Reference] = o
	}
	o1 := byRef["REF-001"]
	require.Equal(t, "d1", o1.EtaDriverID)
	require.Equal(t, 12, o1.Pallets)
	require.InDelta(t, 840.5, o1.Kilos, 0.001)
}

func TestClient_ResolveOrders(t *testing.T) {
	c, src := newTestClient(t)

	orders, err := c.Orders(t.Context())
	require.NoError(t, err)

	lookup, err := c.ResolveOrders(t.Context(), orders)
	require.NoError(t, err)

	// One batched call per referenced resource type.
	require.Equal(t, 1, src.ByIDsCalls(ResourceDrivers))
	require.Equal(t, 1, src.ByIDsCalls(ResourceTerminals))
	require.Equal(t, 1, src.ByIDsCalls(ResourceTrucks))
	require.Equal(t, 1, src.ByIDsCalls(ResourceTrailers))
	require.ElementsMatch(t, []string{"d1", "d2"}, src.LastIDs(ResourceDrivers))

	require.Equal(t, "Ola", lookup.Driver("d1").Name)
	require.Equal(t, "Oslo Terminal", lookup.Terminal("t1").Name)
	require.Equal(t, "ab12345", lookup.Truck("k1").LicensePlate)
	require.Equal(t, "Krone", lookup.Trailer("r1").Name)

	require.Nil(t, lookup.Driver(""))
	require.Nil(t, lookup.Driver("unknown"))
	require.Nil(t, lookup.Trailer("d1"))
}

func TestClient_ResolveOrders_SamePageNoRefetch(t *testing.T) {
	c, src := newTestClient(t)

	orders, err := c.Orders(t.Context())
	require.NoError(t, err)

	_, err = c.ResolveOrders(t.Context(), orders)
	require.NoError(t, err)
	_, err = c.ResolveOrders(t.Context(), orders)
	require.NoError(t, err)

	require.Equal(t, 1, src.ByIDsCalls(ResourceDrivers))
}
