package refdata

import "github.com/codewandler/refdata-go/core/metrics"

// Metrics receives cache lifecycle events. Implementations must be safe
// for concurrent use. See adapters/prometheus for a real backend.
type Metrics interface {
	// Hit is called when a fresh entry is served.
	Hit(resource string)
	// Miss is called when no usable entry exists and the backend is hit.
	Miss(resource string)
	// StaleServed is called when a stale entry is served while a
	// background revalidation runs.
	StaleServed(resource string)
	// Revalidated is called when a background revalidation finishes.
	Revalidated(resource string, success bool)
	// BatchFetch is called when the resolver issues a batched fetch of
	// size ids.
	BatchFetch(resource string, size int)
	// FetchDuration times a backend fetch.
	FetchDuration(resource string) metrics.Timer
}

// nopMetrics is the default Metrics implementation.
type nopMetrics struct{}

func (nopMetrics) Hit(string)                         {}
func (nopMetrics) Miss(string)                        {}
func (nopMetrics) StaleServed(string)                 {}
func (nopMetrics) Revalidated(string, bool)           {}
func (nopMetrics) BatchFetch(string, int)             {}
func (nopMetrics) FetchDuration(string) metrics.Timer { return metrics.NopTimer() }

// NopMetrics returns a Metrics implementation that ignores all events.
func NopMetrics() Metrics { return nopMetrics{} }
