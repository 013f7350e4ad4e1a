// Package search implements the three transform-sequence discovery
// drivers — Munge, BTR, and Best-Fit — over a shared scoring path.
// Each driver differs only in how it generates candidate
// ParsedSequences; none of them know how a candidate is scored or
// ranked.
package search

import (
	"context"
	"time"

	"github.com/rawblock/cryptomunge/internal/contenders"
	"github.com/rawblock/cryptomunge/internal/cutlist"
	"github.com/rawblock/cryptomunge/internal/registry"
	"github.com/rawblock/cryptomunge/pkg/models"
)

// mungePassCount is the fixed CutList pass-count column Munge writes to.
// Munge has no notion of "rounds swept" the way BTR does; it only varies
// sequence length (level). It reports its completed full enumeration
// pass at pass-count 2 rather than 1, so a level's CutList contribution
// only takes effect once a level has actually finished (matching the
// CutList policy that pass-counts below 2 are too noisy to contribute).
const mungePassCount = 2

// MungeOptions configures one Munge run.
type MungeOptions struct {
	Pool            []byte // candidate transform ids to draw from
	MinLength       int
	MaxLength       int
	GlobalRounds    int
	StepRounds      int // fixed per-transform rounds for this sweep
	RemoveInverse   bool
	UseCutList      bool
	DataType        models.InputType
	CheckpointEvery time.Duration
}

// Munge is the lazy ordered-with-repetition enumeration driver: for each
// sequence length from MinLength to MaxLength, it walks every ordering of
// Pool transform ids (with repetition), scoring and considering each one.
type Munge struct {
	reg        *registry.Registry
	scorer     *Scorer
	envs       *EnvPool
	contenders *contenders.Registry
	cuts       *cutlist.CutList
	progress   Progress
	alert      AlertFunc
	saveState  func()
}

// NewMunge wires a Munge driver to its shared dependencies.
func NewMunge(reg *registry.Registry, scorer *Scorer, envs *EnvPool, cont *contenders.Registry, cuts *cutlist.CutList, alert AlertFunc, saveState func()) *Munge {
	return &Munge{reg: reg, scorer: scorer, envs: envs, contenders: cont, cuts: cuts, alert: alert, saveState: saveState}
}

// Progress returns a point-in-time snapshot of this driver's run state.
func (m *Munge) Progress() Snapshot { return m.progress.Snapshot() }

// Run walks every level from opts.MinLength to opts.MaxLength, updating
// the CutList once each level completes.
func (m *Munge) Run(ctx context.Context, opts MungeOptions) error {
	m.progress.start()
	defer m.progress.stop()

	checkpointCtx, stopCheckpoint := context.WithCancel(ctx)
	defer stopCheckpoint()
	if opts.CheckpointEvery > 0 && m.saveState != nil {
		go runCheckpointTicker(checkpointCtx, opts.CheckpointEvery, m.saveState)
	}

	for level := opts.MinLength; level <= opts.MaxLength; level++ {
		m.progress.setLevel(level)
		lp := cutlist.LevelPass{Level: level, PassCount: mungePassCount}
		// Filter against the *previous* level's kept set — a level's own
		// completion writes its kept set at its own key, so reading that
		// same key here would always see nothing yet. Spec §4.G: "at the
		// next level, transforms not in the kept set are pruned."
		filterLP := cutlist.LevelPass{Level: level - 1, PassCount: mungePassCount}
		pool := m.cuts.FilterPool(filterLP, opts.DataType, opts.Pool, opts.UseCutList)
		if opts.RemoveInverse {
			pool = removeInversePairs(m.reg, pool)
		}
		if len(pool) == 0 {
			continue
		}

		radices := make([]int, level)
		for i := range radices {
			radices[i] = len(pool)
		}
		od := newOdometer(radices)

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			digits, ok := od.next()
			if !ok {
				break
			}

			ids := make([]byte, level)
			for i, d := range digits {
				ids[i] = pool[d]
			}

			seq := models.ParsedSequence{Steps: stepsFromIDs(ids, opts.StepRounds), GlobalRounds: opts.GlobalRounds}
			if err := m.evaluateAndConsider(seq); err != nil {
				continue
			}
		}

		top := m.contenders.Top(10)
		m.cuts.UpdateTop10(lp, opts.DataType, uniqueTransformIDs(top), pool)
		if m.saveState != nil {
			m.saveState()
		}
		_ = m.cuts.Save()
	}

	return nil
}

func (m *Munge) evaluateAndConsider(seq models.ParsedSequence) error {
	env := m.envs.Rent()
	defer m.envs.Return(env)

	score, metrics, err := m.scorer.Score(seq, *env)
	m.progress.addEvaluated()
	if err != nil {
		return err
	}
	if m.contenders.Consider(seq, score, metrics) {
		m.progress.addConsidered()
		if m.alert != nil {
			ids := make([]byte, len(seq.Steps))
			for i, s := range seq.Steps {
				ids[i] = s.TransformID
			}
			m.alert(SequenceAlert{TransformIDs: ids, GlobalRounds: seq.GlobalRounds, Score: score})
		}
	}
	return nil
}
