// Package registry holds the table of reversible byte transforms and their
// inverses. Registration happens once at startup; the table is immutable
// thereafter.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rawblock/cryptomunge/pkg/models"
)

// TransformFunc applies one round of a transform to src using the given
// key material, returning the transformed bytes. Implementations must not
// mutate src.
type TransformFunc func(src []byte, key []byte) []byte

// entry pairs a Transform descriptor with its forward implementation.
type entry struct {
	t    models.Transform
	impl TransformFunc
}

// Registry is a keyed table from transform id to Transform descriptor plus
// its forward implementation. Safe for concurrent reads once built.
type Registry struct {
	mu      sync.RWMutex
	entries map[byte]entry
	ids     []byte // cached sorted id list
	built   bool
}

// New returns an empty registry. Use Register to populate it, then Build to
// validate the inverse-closure invariant and freeze ordering.
func New() *Registry {
	return &Registry{entries: make(map[byte]entry)}
}

// Register adds a transform and its implementation. Must be called before
// Build. Panics on duplicate id — that is a programmer error at startup,
// not a runtime condition.
func (r *Registry) Register(t models.Transform, impl TransformFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built {
		panic("registry: Register called after Build")
	}
	if _, exists := r.entries[t.ID]; exists {
		panic(fmt.Sprintf("registry: duplicate transform id %d", t.ID))
	}
	r.entries[t.ID] = entry{t: t, impl: impl}
}

// Build validates the inverse-closure invariant and freezes the
// id ordering used by iterate(). Returns models.ErrInverseMissing if the
// invariant does not hold.
func (r *Registry) Build() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]byte, 0, len(r.entries))
	for id, e := range r.entries {
		inv, ok := r.entries[e.t.InverseID]
		if !ok {
			return fmt.Errorf("%w: transform %d (%s) references inverse %d", models.ErrInverseMissing, id, e.t.Name, e.t.InverseID)
		}
		if inv.t.InverseID != id {
			return fmt.Errorf("%w: transform %d and %d do not form a closed pair", models.ErrInverseMissing, id, e.t.InverseID)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	r.ids = ids
	r.built = true
	return nil
}

// Get returns the Transform descriptor for id, or models.ErrUnknownTransform.
func (r *Registry) Get(id byte) (models.Transform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return models.Transform{}, fmt.Errorf("%w: %d", models.ErrUnknownTransform, id)
	}
	return e.t, nil
}

// InverseID returns the inverse transform id for id.
func (r *Registry) InverseID(id byte) (byte, error) {
	t, err := r.Get(id)
	if err != nil {
		return 0, err
	}
	return t.InverseID, nil
}

// Apply runs the forward transform for id once against src.
func (r *Registry) Apply(id byte, src []byte, key []byte) ([]byte, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownTransform, id)
	}
	return e.impl(src, key), nil
}

// Iterate returns every registered Transform, ordered by id.
func (r *Registry) Iterate() []models.Transform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Transform, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.entries[id].t)
	}
	return out
}

// Len returns the number of registered transforms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

// SetBenchmark updates the measured benchmark_time_ms for a transform,
// called by internal/bench after a warmup run. Does not affect ordering or
// the inverse-closure invariant.
func (r *Registry) SetBenchmark(id byte, ms float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("%w: %d", models.ErrUnknownTransform, id)
	}
	e.t.BenchmarkTimeMs = ms
	r.entries[id] = e
	return nil
}
