package search

import (
	"context"
	"time"

	"github.com/rawblock/cryptomunge/internal/contenders"
	"github.com/rawblock/cryptomunge/pkg/models"
)

// BTROptions configures one BTR (round optimization) run.
type BTROptions struct {
	BaseIDs         []byte // fixed transform order to sweep rounds over
	CheckpointEvery time.Duration
}

// BTR holds a fixed transform ordering constant and exhaustively sweeps
// per-step rounds (1-9 each) and the global round count (1-9) — a lazy
// enumeration of 9^(len(BaseIDs)+1) combinations.
type BTR struct {
	scorer     *Scorer
	envs       *EnvPool
	contenders *contenders.Registry
	progress   Progress
	alert      AlertFunc
	saveState  func()
}

// NewBTR wires a BTR driver to its shared dependencies.
func NewBTR(scorer *Scorer, envs *EnvPool, cont *contenders.Registry, alert AlertFunc, saveState func()) *BTR {
	return &BTR{scorer: scorer, envs: envs, contenders: cont, alert: alert, saveState: saveState}
}

// Progress returns a point-in-time snapshot of this driver's run state.
func (b *BTR) Progress() Snapshot { return b.progress.Snapshot() }

// Run sweeps every (per-step rounds, global rounds) combination for
// opts.BaseIDs.
func (b *BTR) Run(ctx context.Context, opts BTROptions) error {
	b.progress.start()
	defer b.progress.stop()
	b.progress.setLevel(len(opts.BaseIDs))

	checkpointCtx, stopCheckpoint := context.WithCancel(ctx)
	defer stopCheckpoint()
	if opts.CheckpointEvery > 0 && b.saveState != nil {
		go runCheckpointTicker(checkpointCtx, opts.CheckpointEvery, b.saveState)
	}

	n := len(opts.BaseIDs)
	if n == 0 {
		return models.ErrEmptySequence
	}

	radices := make([]int, n+1)
	for i := range radices {
		radices[i] = 9
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

		steps := make([]models.SequenceStep, n)
		for i := 0; i < n; i++ {
			steps[i] = models.SequenceStep{TransformID: opts.BaseIDs[i], Rounds: digits[i] + 1}
		}
		seq := models.ParsedSequence{Steps: steps, GlobalRounds: digits[n] + 1}

		env := b.envs.Rent()
		score, metrics, err := b.scorer.Score(seq, *env)
		b.envs.Return(env)
		b.progress.addEvaluated()
		if err != nil {
			continue
		}
		if b.contenders.Consider(seq, score, metrics) {
			b.progress.addConsidered()
			if b.alert != nil {
				b.alert(SequenceAlert{TransformIDs: opts.BaseIDs, GlobalRounds: seq.GlobalRounds, Score: score})
			}
		}
	}

	if b.saveState != nil {
		b.saveState()
	}
	return nil
}
