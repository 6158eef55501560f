// Package metrics provides abstract metric primitives so the cache layer
// can be instrumented (Prometheus, StatsD, ...) without coupling the core
// packages to a specific backend.
package metrics

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes to record the elapsed time.
type Timer interface {
	// ObserveDuration records the elapsed time since the timer was created.
	ObserveDuration()
}
