// Package sf provides keyed single-flight deduplication for backend
// fetches. It is opt-in at the client level: by default, two goroutines
// requesting the same uncached record both hit the backend and the last
// cache write wins, which is harmless since both carry equivalent data.
// Enabling dedup collapses such races into one fetch.
//
// # Usage
//
//	g := sf.New[source.Record]()
//
//	rec, err, _ := g.Do(sf.Key("drivers", "123"), func() (source.Record, error) {
//	    return src.One(ctx, "drivers", "123")
//	})
package sf
