package bench

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rawblock/cryptomunge/internal/registry"
)

func TestRunPopulatesRegistryBenchmarks(t *testing.T) {
	reg := registry.Default()
	results, err := Run(reg)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != reg.Len() {
		t.Fatalf("expected one result per registered transform, got %d results for %d transforms", len(results), reg.Len())
	}
	for _, r := range results {
		tr, err := reg.Get(r.ID)
		if err != nil {
			t.Fatal(err)
		}
		if tr.BenchmarkTimeMs < 0 {
			t.Fatalf("transform %d: expected a non-negative measured benchmark time, got %f", r.ID, tr.BenchmarkTimeMs)
		}
	}
}

func TestResultsAreSortedByID(t *testing.T) {
	reg := registry.Default()
	results, err := Run(reg)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(results); i++ {
		if results[i].ID < results[i-1].ID {
			t.Fatalf("expected results sorted by id, got %d after %d", results[i].ID, results[i-1].ID)
		}
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	reg := registry.Default()
	results, err := Run(reg)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "TransformBenchmarkResults.json")
	if err := WriteJSON(path, results); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var reloaded []Result
	if err := json.Unmarshal(data, &reloaded); err != nil {
		t.Fatal(err)
	}
	if len(reloaded) != len(results) {
		t.Fatalf("expected %d results round-tripped, got %d", len(results), len(reloaded))
	}
}

func TestWriteTextProducesNonEmptyFile(t *testing.T) {
	reg := registry.Default()
	results, err := Run(reg)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "TransformBenchmarkResults.txt")
	if err := WriteText(path, results); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("expected non-empty benchmark text report")
	}
}
