// Package bench measures the per-call cost of every registered transform
// against a fixed-size sample buffer, so the registry's
// Transform.BenchmarkTimeMs reflects the host it's actually running on
// rather than a hardcoded guess.
package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rawblock/cryptomunge/internal/registry"
)

// sampleSize is the buffer size benchmarked transforms run against —
// large enough to smooth out fixed per-call overhead, small enough that
// a full registry benchmark run finishes in well under a second.
const sampleSize = 64 * 1024

// iterations is how many times each transform is applied to the sample
// buffer before averaging.
const iterations = 50

// Result is one transform's measured timing.
type Result struct {
	ID        byte    `json:"id"`
	Name      string  `json:"name"`
	AvgTimeMs float64 `json:"avgTimeMs"`
	TotalRuns int     `json:"totalRuns"`
}

// Run benchmarks every transform in reg against a deterministic sample
// buffer and writes the measured time back into the registry via
// SetBenchmark, returning the raw results in id order.
func Run(reg *registry.Registry) ([]Result, error) {
	sample := make([]byte, sampleSize)
	for i := range sample {
		sample[i] = byte(i)
	}
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i * 7)
	}

	transforms := reg.Iterate()
	results := make([]Result, 0, len(transforms))
	for _, t := range transforms {
		start := time.Now()
		data := sample
		for i := 0; i < iterations; i++ {
			out, err := reg.Apply(t.ID, data, key)
			if err != nil {
				return nil, fmt.Errorf("bench: transform %d: %w", t.ID, err)
			}
			data = out
		}
		elapsed := time.Since(start)
		avgMs := float64(elapsed.Microseconds()) / 1000.0 / float64(iterations)

		if err := reg.SetBenchmark(t.ID, avgMs); err != nil {
			return nil, err
		}
		results = append(results, Result{ID: t.ID, Name: t.Name, AvgTimeMs: avgMs, TotalRuns: iterations})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

// WriteJSON writes results as TransformBenchmarkResults.json.
func WriteJSON(path string, results []Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteText writes results as TransformBenchmarkResults.txt, a
// human-readable table matching the CLI's own tabular output style.
func WriteText(path string, results []Result) error {
	var buf []byte
	buf = append(buf, []byte("id  name                          avg_ms      runs\n")...)
	for _, r := range results {
		line := fmt.Sprintf("%-3d %-30s %10.4f %9d\n", r.ID, r.Name, r.AvgTimeMs, r.TotalRuns)
		buf = append(buf, []byte(line)...)
	}
	return os.WriteFile(path, buf, 0o644)
}
