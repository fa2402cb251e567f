package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// benchResult holds read latencies in milliseconds
type benchResult struct {
	latencies []float64
	entries   uint64
	errors    int
	firstErr  error
	duration  time.Duration
}

func (r *benchResult) print(e *env) {
	total := len(r.latencies) + r.errors
	fmt.Fprintf(e.stdout, "Reads:       %d (%d errors)\n", total, r.errors)
	if r.firstErr != nil {
		fmt.Fprintf(e.stdout, "First Error: %v\n", r.firstErr)
	}
	if len(r.latencies) == 0 {
		return
	}
	sort.Float64s(r.latencies)
	var sum float64
	for _, l := range r.latencies {
		sum += l
	}
	secs := r.duration.Seconds()
	fmt.Fprintf(e.stdout, "Duration:    %s\n", r.duration.Round(time.Millisecond))
	fmt.Fprintf(e.stdout, "Throughput:  %.2f reads/sec, %.0f entries/sec\n", float64(len(r.latencies))/secs, float64(r.entries)/secs)
	fmt.Fprintf(e.stdout, "Latency (ms):\n")
	fmt.Fprintf(e.stdout, "  Min:  %.2f\n", r.latencies[0])
	fmt.Fprintf(e.stdout, "  Avg:  %.2f\n", sum/float64(len(r.latencies)))
	fmt.Fprintf(e.stdout, "  P50:  %.2f\n", percentile(r.latencies, 50))
	fmt.Fprintf(e.stdout, "  P95:  %.2f\n", percentile(r.latencies, 95))
	fmt.Fprintf(e.stdout, "  P99:  %.2f\n", percentile(r.latencies, 99))
	fmt.Fprintf(e.stdout, "  Max:  %.2f\n", r.latencies[len(r.latencies)-1])
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(math.Ceil(float64(len(sorted))*p/100.0)) - 1
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func runBench(ctx context.Context, e *env, fs *flag.FlagSet, args []string) error {
	column := fs.String("column", "", "Column to read (required)")
	size := fs.Int64("size", 10000, "Entries per read")
	workers := fs.Int("workers", 4, "Concurrent readers")
	reads := fs.Int("reads", 100, "Reads per worker")
	concurrency := fs.Int("concurrency", 0, "Baskets fetched at once per read")
	seed := fs.Int64("seed", 1, "Random seed for read offsets")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	if *column == "" || *size <= 0 || *workers <= 0 || *reads <= 0 {
		fmt.Fprintln(fs.Output(), "-column is required; -size, -workers and -reads must be positive")
		return errUsage
	}

	ds, err := loadDataset(ctx, e, fs.Arg(0))
	if err != nil {
		return err
	}
	if _, ok := ds.ColumnIndex(*column); !ok {
		return fmt.Errorf("unknown column %q", *column)
	}
	n := int64(ds.NumEntries())
	if *size > n {
		*size = n
	}
	engine := e.engine(*concurrency)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result benchResult
	)
	began := time.Now()
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(rng *rand.Rand) {
			defer wg.Done()
			for i := 0; i < *reads && ctx.Err() == nil; i++ {
				start := rng.Int63n(n - *size + 1)
				t := time.Now()
				_, err := engine.Array(ctx, ds, *column, start, start+*size)
				ms := float64(time.Since(t).Microseconds()) / 1000

				mu.Lock()
				if err != nil {
					result.errors++
					if result.firstErr == nil {
						result.firstErr = err
					}
				} else {
					result.latencies = append(result.latencies, ms)
					result.entries += uint64(*size)
				}
				mu.Unlock()
			}
		}(rand.New(rand.NewSource(*seed + int64(w))))
	}
	wg.Wait()
	result.duration = time.Since(began)

	e.logger.Debug("Benchmark finished", "column", *column, "workers", *workers, "duration", result.duration)
	result.print(e)
	return ctx.Err()
}
