// Package logistics is the typed facade over the reference-data client
// for the order-management backend: drivers, terminals, trucks, trailers
// and orders.
//
// Grid consumers resolve a page of orders once and read foreign keys
// through the returned lookup:
//
//	lc := logistics.New(refClient)
//	orders, _ := lc.Orders(ctx)
//
//	lookup, _ := lc.ResolveOrders(ctx, orders)
//	for _, o := range orders {
//	    if d := lookup.Driver(o.EtaDriverID); d != nil {
//	        fmt.Println(o.Reference, "→", d.Name)
//	    }
//	}
package logistics
