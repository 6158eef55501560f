// Load test for the reference cache: hammers a stub backend through the
// cached client and reports hit ratio and throughput.
//
// Tunables (env): N (reads), W (workers), TTL_MS (entry TTL),
// RESOURCES (distinct resources), IDS (distinct ids per resource).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codewandler/refdata-go/core/refdata"
	"github.com/codewandler/refdata-go/ports/source"
)

var (
	logLevel     = slog.LevelWarn
	N            = getEnvInt("N", 500_000)
	workers      = getEnvInt("W", 8)
	ttlMS        = getEnvInt("TTL_MS", 250)
	numResources = getEnvInt("RESOURCES", 4)
	numIDs       = getEnvInt("IDS", 200)
)

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

// countingSource wraps the in-memory source and counts backend reads.
type countingSource struct {
	*source.MemSource
	reads atomic.Int64
}

func (c *countingSource) One(ctx context.Context, resource, id string) (source.Record, error) {
	c.reads.Add(1)
	return c.MemSource.One(ctx, resource, id)
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	src := &countingSource{MemSource: source.NewMemSource()}
	resources := make([]string, numResources)
	for r := 0; r < numResources; r++ {
		resources[r] = fmt.Sprintf("resource-%d", r)
		recs := make([]source.Record, 0, numIDs)
		for i := 0; i < numIDs; i++ {
			recs = append(recs, source.Record{
				"id":   fmt.Sprintf("%d", i),
				"name": fmt.Sprintf("record %d/%d", r, i),
			})
		}
		src.Seed(resources[r], recs...)
	}

	client := refdata.New(src,
		refdata.WithLogger(log),
		refdata.WithTTL(time.Duration(ttlMS)*time.Millisecond),
		refdata.WithRequestDedup(),
	)
	defer client.Close()

	fmt.Printf("reads=%d workers=%d ttl=%dms resources=%d ids=%d\n",
		N, workers, ttlMS, numResources, numIDs)

	startAt := time.Now()

	var wg sync.WaitGroup
	perWorker := N / workers
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < perWorker; i++ {
				resource := resources[rng.Intn(len(resources))]
				id := fmt.Sprintf("%d", rng.Intn(numIDs))
				if _, err := client.Record(context.Background(), resource, id); err != nil {
					panic(err)
				}
			}
		}(int64(w))
	}
	wg.Wait()

	took := time.Since(startAt)
	total := int64(perWorker * workers)
	backend := src.reads.Load()

	fmt.Printf("| %9d reads | %6d ms | %8d reads/s | %d backend fetches | %.2f%% hit ratio |\n",
		total,
		took.Milliseconds(),
		int(float64(total)/took.Seconds()),
		backend,
		100*float64(total-backend)/float64(total),
	)
}
