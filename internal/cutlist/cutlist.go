// Package cutlist maintains the per-(level, pass-count) pruning matrix
// that shrinks the Munge candidate pool based on prior top-10 results.
// The matrix key omits data type; each transform's value is a [5]byte
// row with one column per models.InputType, matching the persisted file
// format exactly.
package cutlist

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rawblock/cryptomunge/pkg/models"
)

// LevelPass identifies one (level, pass-count) matrix slot.
type LevelPass struct {
	Level     int
	PassCount int
}

func (lp LevelPass) key() string { return fmt.Sprintf("L%d-P%d", lp.Level, lp.PassCount) }

// NewTransformDefault controls whether a transform id never before seen in
// a matrix slot starts out kept or cut. The original engine defaulted to
// cut; here it defaults to kept, so new transforms can prove themselves in
// search immediately instead of requiring manual seeding.
const NewTransformDefault byte = 1

// MinContributingLevel and MinContributingPassCount: only levels >= 3 and
// pass-counts >= 2 contribute to cut decisions; earlier levels are too
// noisy.
const (
	MinContributingLevel     = 3
	MinContributingPassCount = 2
)

// CutList holds the full matrix and its on-disk path.
type CutList struct {
	mu     sync.RWMutex
	matrix map[string]map[byte][models.NDataTypes]byte
	path   string
}

// New returns an empty in-memory CutList not yet bound to a file.
func New() *CutList {
	return &CutList{matrix: make(map[string]map[byte][models.NDataTypes]byte)}
}

// Load reads path as JSON and returns a populated CutList. A missing file
// is not an error — it returns an empty CutList bound to path so the next
// Save creates it.
func Load(path string) (*CutList, error) {
	cl := New()
	cl.path = path
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cl, nil
		}
		return cl, fmt.Errorf("%w: %v", models.ErrCutListMalformed, err)
	}
	var raw map[string]map[byte][models.NDataTypes]byte
	if err := json.Unmarshal(data, &raw); err != nil {
		return cl, fmt.Errorf("%w: %v", models.ErrCutListMalformed, err)
	}
	cl.matrix = raw
	return cl, nil
}

// Save atomically rewrites the backing file.
func (cl *CutList) Save() error {
	cl.mu.RLock()
	data, err := json.MarshalIndent(cl.matrix, "", "  ")
	cl.mu.RUnlock()
	if err != nil {
		return err
	}
	if cl.path == "" {
		return nil
	}
	dir := filepath.Dir(cl.path)
	tmp, err := os.CreateTemp(dir, ".cutlist-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, cl.path)
}

// IsCut reports whether id is cut for (lp, dataType). Out-of-scope levels
// (below MinContributingLevel/MinContributingPassCount) never cut
// anything — the matrix simply has no entries for them.
func (cl *CutList) IsCut(lp LevelPass, dataType models.InputType, id byte) bool {
	col := models.DataTypeIndex(dataType)
	if col < 0 {
		return false
	}
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	row, ok := cl.matrix[lp.key()]
	if !ok {
		return NewTransformDefault == 0
	}
	bits, ok := row[id]
	if !ok {
		return NewTransformDefault == 0
	}
	return bits[col] == 0
}

// FilterPool returns the subset of candidateIDs that are not cut for
// (lp, dataType). When lp is below the contributing thresholds, or
// useCutList is false, the pool passes through unfiltered.
func (cl *CutList) FilterPool(lp LevelPass, dataType models.InputType, candidateIDs []byte, useCutList bool) []byte {
	if !useCutList || lp.Level < MinContributingLevel || lp.PassCount < MinContributingPassCount {
		return candidateIDs
	}
	out := make([]byte, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		if !cl.IsCut(lp, dataType, id) {
			out = append(out, id)
		}
	}
	return out
}

// UpdateTop10 records which transform ids appeared in the top-10
// contenders for (lp, dataType), marking them kept. Bits are ORed into the
// existing row rather than overwritten, so an id already marked kept
// within this run cannot be downgraded to cut by a later, smaller top-10.
func (cl *CutList) UpdateTop10(lp LevelPass, dataType models.InputType, keptIDs []byte, allCandidateIDs []byte) {
	col := models.DataTypeIndex(dataType)
	if col < 0 {
		return
	}
	if lp.Level < MinContributingLevel || lp.PassCount < MinContributingPassCount {
		return
	}
	kept := make(map[byte]bool, len(keptIDs))
	for _, id := range keptIDs {
		kept[id] = true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()
	row, ok := cl.matrix[lp.key()]
	if !ok {
		row = make(map[byte][models.NDataTypes]byte)
	}
	for _, id := range allCandidateIDs {
		bits, ok := row[id]
		if !ok {
			var def [models.NDataTypes]byte
			for i := range def {
				def[i] = NewTransformDefault
			}
			bits = def
		}
		if kept[id] {
			bits[col] = 1
		} else if !ok {
			bits[col] = 0
		}
		row[id] = bits
	}
	cl.matrix[lp.key()] = row
}

// Snapshot returns a sorted, read-only view of the kept transform ids for
// (lp, dataType) — used by the integrity check below and by callers that
// need a deterministic list rather than map iteration order.
func (cl *CutList) Snapshot(lp LevelPass, dataType models.InputType) []byte {
	col := models.DataTypeIndex(dataType)
	if col < 0 {
		return nil
	}
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	row, ok := cl.matrix[lp.key()]
	if !ok {
		return nil
	}
	var kept []byte
	for id, bits := range row {
		if bits[col] == 1 {
			kept = append(kept, id)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })
	return kept
}

// VerifyIntegrity compares three views that must agree post-compilation:
// the filtered pool actually handed to the pipeline, the top-10-derived
// kept set reconstructed from disk, and the in-memory matrix slice. A
// mismatch on first bootstrap (no on-disk baseline) is logged but
// non-fatal; once a baseline file exists, a mismatch is an error.
func (cl *CutList) VerifyIntegrity(lp LevelPass, dataType models.InputType, filteredList []byte, hasBaseline bool) error {
	inMemory := cl.Snapshot(lp, dataType)
	onDisk, err := Load(cl.path)
	if err != nil {
		if hasBaseline {
			return fmt.Errorf("%w: reloading baseline: %v", models.ErrCutListInconsistent, err)
		}
		return nil
	}
	fromDisk := onDisk.Snapshot(lp, dataType)

	if !sameSet(inMemory, fromDisk) {
		if hasBaseline {
			return fmt.Errorf("%w: in-memory matrix disagrees with on-disk baseline for %s/%s", models.ErrCutListInconsistent, lp.key(), dataType)
		}
		log.Printf("cutlist: bootstrap: in-memory matrix disagrees with on-disk copy for %s/%s", lp.key(), dataType)
		return nil
	}
	filteredSorted := append([]byte{}, filteredList...)
	sort.Slice(filteredSorted, func(i, j int) bool { return filteredSorted[i] < filteredSorted[j] })
	// The filtered pool is a subset of "kept"; a superset relationship
	// violation means the pipeline saw ids the matrix says are cut.
	keptSet := make(map[byte]bool, len(inMemory))
	for _, id := range inMemory {
		keptSet[id] = true
	}
	for _, id := range filteredSorted {
		if len(inMemory) > 0 && !keptSet[id] {
			if hasBaseline {
				return fmt.Errorf("%w: filtered pool contains cut id %d", models.ErrCutListInconsistent, id)
			}
			log.Printf("cutlist: bootstrap: filtered pool contains cut id %d", id)
			return nil
		}
	}
	return nil
}

// Len reports how many (level,pass) rows the matrix currently tracks.
func (cl *CutList) Len() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.matrix)
}

func sameSet(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
