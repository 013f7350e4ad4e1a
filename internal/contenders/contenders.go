// Package contenders maintains the top-K transform sequences by aggregate
// score, with JSON persistence for resumable search runs.
package contenders

import (
	"bytes"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rawblock/cryptomunge/pkg/models"
)

// DefaultCapacity is the default cap on tracked contenders.
const DefaultCapacity = 1000

// Registry is a capacity-bounded, score-sorted set of Contenders. Safe for
// concurrent use behind a single mutex guarding this shared structure.
type Registry struct {
	mu       sync.Mutex
	capacity int
	items    []models.Contender
	seen     map[string]struct{}
}

// New returns an empty Registry with the given capacity. Capacity 0 is
// valid and yields a registry that silently accepts and discards every
// candidate.
func New(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		items:    make([]models.Contender, 0, capacity),
		seen:     make(map[string]struct{}),
	}
}

// sequenceKey builds the canonical dedup/tie-break key for a sequence: a
// byte string encoding (transformID, rounds) pairs in order plus the
// global round count. Lexicographic comparison of this key gives a
// deterministic secondary sort key, replacing a thread-interleaving-
// sensitive insertion order.
func sequenceKey(seq models.ParsedSequence) string {
	buf := make([]byte, 0, 2*len(seq.Steps)+1)
	for _, s := range seq.Steps {
		buf = append(buf, s.TransformID, byte(s.Rounds))
	}
	buf = append(buf, byte(seq.GlobalRounds))
	return string(buf)
}

// less reports whether a should rank ahead of b: higher aggregate score
// first, then lexicographically smaller sequence key.
func less(a, b models.Contender) bool {
	if a.AggregateScore != b.AggregateScore {
		return a.AggregateScore > b.AggregateScore
	}
	return sequenceKey(a.Sequence) < sequenceKey(b.Sequence)
}

// Consider inserts a candidate if it belongs in the top-K. Duplicate
// sequences (already present, by sequenceKey) are rejected. Returns true
// if the candidate was inserted.
func (r *Registry) Consider(seq models.ParsedSequence, aggregateScore float64, metrics []models.AnalysisResult) bool {
	if r.capacity <= 0 {
		return false
	}
	key := sequenceKey(seq)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.seen[key]; dup {
		return false
	}

	candidate := models.Contender{
		Sequence:       seq,
		AggregateScore: aggregateScore,
		Metrics:        metrics,
		InsertedAt:     time.Now(),
	}

	if len(r.items) < r.capacity {
		pos := sort.Search(len(r.items), func(i int) bool { return less(candidate, r.items[i]) })
		r.items = append(r.items, models.Contender{})
		copy(r.items[pos+1:], r.items[pos:])
		r.items[pos] = candidate
		r.seen[key] = struct{}{}
		return true
	}

	// Full: only insert if candidate beats the current K-th contender.
	worst := r.items[len(r.items)-1]
	if !less(candidate, worst) {
		return false
	}
	pos := sort.Search(len(r.items), func(i int) bool { return less(candidate, r.items[i]) })
	r.items = append(r.items, models.Contender{})
	copy(r.items[pos+1:], r.items[pos:])
	r.items[pos] = candidate
	delete(r.seen, sequenceKey(worst.Sequence))
	r.items = r.items[:r.capacity]
	r.seen[key] = struct{}{}
	return true
}

// Top returns the first n contenders (or fewer, if the registry holds
// less than n).
func (r *Registry) Top(n int) []models.Contender {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > len(r.items) {
		n = len(r.items)
	}
	out := make([]models.Contender, n)
	copy(out, r.items[:n])
	return out
}

// Len returns the number of contenders currently retained.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// snapshot is the JSON-serializable form of a Registry.
type snapshot struct {
	Capacity int                `json:"capacity"`
	Items    []models.Contender `json:"items"`
}

// Snapshot serializes the registry for checkpointing.
func (r *Registry) Snapshot() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := snapshot{Capacity: r.capacity, Items: append([]models.Contender{}, r.items...)}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Restore replaces the registry's contents from a Snapshot payload.
func (r *Registry) Restore(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return models.ErrStateFileCorrupt
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capacity = s.Capacity
	r.items = s.Items
	r.seen = make(map[string]struct{}, len(s.Items))
	for _, it := range r.items {
		r.seen[sequenceKey(it.Sequence)] = struct{}{}
	}
	return nil
}
