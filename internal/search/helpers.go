package search

import (
	"github.com/rawblock/cryptomunge/internal/registry"
	"github.com/rawblock/cryptomunge/pkg/models"
)

// stepsFromIDs builds SequenceSteps from transform ids using a single
// fixed per-transform round count, the common case for Munge and
// Best-Fit (BTR varies per-transform rounds itself and builds its own
// steps).
func stepsFromIDs(ids []byte, rounds int) []models.SequenceStep {
	steps := make([]models.SequenceStep, len(ids))
	for i, id := range ids {
		steps[i] = models.SequenceStep{TransformID: id, Rounds: rounds}
	}
	return steps
}

// removeInversePairs builds the --remove-inverse candidate pool: a
// transform id is dropped if its inverse_id is also present anywhere in
// pool. This is a pool-build reduction, not a per-candidate filter — a
// transform removed here can never appear in any enumerated sequence,
// rather than merely never appearing adjacent to its own inverse. An
// involution (inverse_id == id) is always dropped by this rule, since its
// inverse is trivially present whenever it is.
func removeInversePairs(reg *registry.Registry, pool []byte) []byte {
	present := make(map[byte]bool, len(pool))
	for _, id := range pool {
		present[id] = true
	}
	out := make([]byte, 0, len(pool))
	for _, id := range pool {
		inv, err := reg.InverseID(id)
		if err == nil && present[inv] {
			continue
		}
		out = append(out, id)
	}
	return out
}

// uniqueTransformIDs returns the deduplicated set of transform ids that
// appear anywhere across a batch of contenders, used to build the
// "kept" set CutList.UpdateTop10 expects.
func uniqueTransformIDs(contenders []models.Contender) []byte {
	seen := make(map[byte]bool)
	var out []byte
	for _, c := range contenders {
		for _, step := range c.Sequence.Steps {
			if !seen[step.TransformID] {
				seen[step.TransformID] = true
				out = append(out, step.TransformID)
			}
		}
	}
	return out
}
