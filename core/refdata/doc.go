// Package refdata implements the reference-data caching layer: cached
// single-record and list fetches with stale-while-revalidate, and a batch
// resolver for foreign-key lookups across grid rows.
//
// A [Client] sits between consumers and a [source.Source] (the backend).
// Reads consult the shared TTL store first:
//
//   - fresh entry: served without a backend call
//   - stale entry: served immediately while a background goroutine
//     revalidates; a failed revalidation keeps the stale value
//   - no entry: fetched synchronously
//
// List fetches additionally upsert every listed record into the per-record
// cache, so a later Record call for a listed id is a cache hit.
//
// A [Resolver] answers "which driver/truck/trailer/terminal belongs to
// these rows" with one batched backend call per resource, keyed off the
// deduplicated id set. Replacing the rows with an equivalent id set does
// not refetch.
//
// # Usage
//
//	client := refdata.New(src, refdata.WithTTL(5*time.Minute))
//	defer client.Close()
//
//	rec, err := client.Record(ctx, "drivers", "123")
//
//	r := refdata.NewResolver(client,
//	    refdata.Binding{Resource: "drivers", Fields: []string{"eta_driver_id", "etd_driver_id"}},
//	)
//	lookup, err := r.Resolve(ctx, rows)
//	driver := lookup.Get("drivers", rows[0]["eta_driver_id"].(string))
package refdata
