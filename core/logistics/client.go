package logistics

import (
	"context"
	"encoding/json"

	"github.com/codewandler/refdata-go/core/refdata"
	"github.com/codewandler/refdata-go/ports/source"
)

// Client is the typed view over the generic reference-data client for
// the logistics backend resources.
type Client struct {
	ref      *refdata.Client
	resolver *refdata.Resolver
}

// New wraps a refdata client.
func New(ref *refdata.Client) *Client {
	return &Client{
		ref:      ref,
		resolver: refdata.NewResolver(ref, OrderBindings()...),
	}
}

// OrderBindings maps the order grid's foreign-key fields to their
// resources.
func OrderBindings() []refdata.Binding {
	return []refdata.Binding{
		{Resource: ResourceDrivers, Fields: []string{"eta_driver_id", "etd_driver_id"}},
		{Resource: ResourceTerminals, Fields: []string{"terminal_id"}},
		{Resource: ResourceTrucks, Fields: []string{"eta_truck_id", "etd_truck_id"}},
		{Resource: ResourceTrailers, Fields: []string{"eta_trailer_id", "etd_trailer_id"}},
	}
}

func (c *Client) Driver(ctx context.Context, id string) (*Driver, error) {
	return record[Driver](ctx, c.ref, ResourceDrivers, id)
}

func (c *Client) Drivers(ctx context.Context) ([]Driver, error) {
	return list[Driver](ctx, c.ref, ResourceDrivers)
}

func (c *Client) Terminal(ctx context.Context, id string) (*Terminal, error) {
	return record[Terminal](ctx, c.ref, ResourceTerminals, id)
}

func (c *Client) Terminals(ctx context.Context) ([]Terminal, error) {
	return list[Terminal](ctx, c.ref, ResourceTerminals)
}

func (c *Client) Truck(ctx context.Context, id string) (*Truck, error) {
	return record[Truck](ctx, c.ref, ResourceTrucks, id)
}

func (c *Client) Trucks(ctx context.Context) ([]Truck, error) {
	return list[Truck](ctx, c.ref, ResourceTrucks)
}

func (c *Client) Trailer(ctx context.Context, id string) (*Trailer, error) {
	return record[Trailer](ctx, c.ref, ResourceTrailers, id)
}

func (c *Client) Trailers(ctx context.Context) ([]Trailer, error) {
	return list[Trailer](ctx, c.ref, ResourceTrailers)
}

func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	return list[Order](ctx, c.ref, ResourceOrders)
}

// ResolveOrders resolves the foreign keys of a page of orders with one
// batched fetch per resource type.
func (c *Client) ResolveOrders(ctx context.Context, orders []Order) (*OrderLookup, error) {
	rows := make([]source.Record, 0, len(orders))
	for _, o := range orders {
		row, err := encode(o)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	lookup, err := c.resolver.Resolve(ctx, rows)
	if err != nil {
		return &OrderLookup{lookup: lookup}, err
	}
	return &OrderLookup{lookup: lookup}, nil
}

// OrderLookup answers foreign-key lookups for a resolved page of orders.
// Unknown or empty ids return nil.
type OrderLookup struct {
	lookup *refdata.Lookup
}

func (l *OrderLookup) Driver(id string) *Driver {
	return lookupAs[Driver](l.lookup, ResourceDrivers, id)
}

func (l *OrderLookup) Terminal(id string) *Terminal {
	return lookupAs[Terminal](l.lookup, ResourceTerminals, id)
}

func (l *OrderLookup) Truck(id string) *Truck {
	return lookupAs[Truck](l.lookup, ResourceTrucks, id)
}

func (l *OrderLookup) Trailer(id string) *Trailer {
	return lookupAs[Trailer](l.lookup, ResourceTrailers, id)
}

// record fetches one typed record; (nil, nil) when the id is empty or
// the backend has no such record.
func record[T any](ctx context.Context, ref *refdata.Client, resource, id string) (*T, error) {
	rec, err := ref.Record(ctx, resource, id)
	if err != nil || rec == nil {
		return nil, err
	}
	out, err := decode[T](rec)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func list[T any](ctx context.Context, ref *refdata.Client, resource string) ([]T, error) {
	recs, err := ref.List(ctx, resource)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := decode[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func lookupAs[T any](lookup *refdata.Lookup, resource, id string) *T {
	rec := lookup.Get(resource, id)
	if rec == nil {
		return nil
	}
	out, err := decode[T](rec)
	if err != nil {
		return nil
	}
	return &out
}

func decode[T any](rec source.Record) (out T, err error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}

func encode[T any](v T) (source.Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec source.Record
	err = json.Unmarshal(data, &rec)
	return rec, err
}
