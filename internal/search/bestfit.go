package search

import (
	"context"
	"time"

	"github.com/rawblock/cryptomunge/internal/contenders"
	"github.com/rawblock/cryptomunge/pkg/models"
)

// BestFitOptions configures one Best-Fit run.
type BestFitOptions struct {
	BaseIDs         []byte // transform multiset to reorder
	StepRounds      int
	GlobalRounds    int
	CheckpointEvery time.Duration
}

// BestFit holds a transform multiset constant and exhaustively tries
// every distinct ordering, looking for the permutation that scores best.
type BestFit struct {
	scorer     *Scorer
	envs       *EnvPool
	contenders *contenders.Registry
	progress   Progress
	alert      AlertFunc
	saveState  func()
}

// NewBestFit wires a Best-Fit driver to its shared dependencies.
func NewBestFit(scorer *Scorer, envs *EnvPool, cont *contenders.Registry, alert AlertFunc, saveState func()) *BestFit {
	return &BestFit{scorer: scorer, envs: envs, contenders: cont, alert: alert, saveState: saveState}
}

// Progress returns a point-in-time snapshot of this driver's run state.
func (bf *BestFit) Progress() Snapshot { return bf.progress.Snapshot() }

// Run tries every permutation of opts.BaseIDs.
func (bf *BestFit) Run(ctx context.Context, opts BestFitOptions) error {
	bf.progress.start()
	defer bf.progress.stop()
	bf.progress.setLevel(len(opts.BaseIDs))

	checkpointCtx, stopCheckpoint := context.WithCancel(ctx)
	defer stopCheckpoint()
	if opts.CheckpointEvery > 0 && bf.saveState != nil {
		go runCheckpointTicker(checkpointCtx, opts.CheckpointEvery, bf.saveState)
	}

	if len(opts.BaseIDs) == 0 {
		return models.ErrEmptySequence
	}

	perm := newPermuter(opts.BaseIDs)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ids, ok := perm.next()
		if !ok {
			break
		}

		seq := models.ParsedSequence{Steps: stepsFromIDs(ids, opts.StepRounds), GlobalRounds: opts.GlobalRounds}

		env := bf.envs.Rent()
		score, metrics, err := bf.scorer.Score(seq, *env)
		bf.envs.Return(env)
		bf.progress.addEvaluated()
		if err != nil {
			continue
		}
		if bf.contenders.Consider(seq, score, metrics) {
			bf.progress.addConsidered()
			if bf.alert != nil {
				bf.alert(SequenceAlert{TransformIDs: ids, GlobalRounds: seq.GlobalRounds, Score: score})
			}
		}
	}

	if bf.saveState != nil {
		bf.saveState()
	}
	return nil
}
