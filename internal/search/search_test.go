package search

import (
	"bytes"
	"context"
	"testing"

	"github.com/rawblock/cryptomunge/internal/contenders"
	"github.com/rawblock/cryptomunge/internal/cutlist"
	"github.com/rawblock/cryptomunge/internal/registry"
	"github.com/rawblock/cryptomunge/pkg/models"
)

func testEnv() models.ExecutionEnvironment {
	return models.ExecutionEnvironment{
		Salt:          []byte("0123456789abcdef"),
		Password:      []byte("test-password"),
		GlobalRounds:  1,
		OperationMode: models.ModeExploratory,
		ScoringMode:   models.ScoringPractical,
	}
}

func testPlaintext() []byte {
	return bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 4)
}

func TestMungeFindsAndRanksContenders(t *testing.T) {
	reg := registry.Default()
	scorer := NewScorer(reg, testPlaintext())
	envs := NewEnvPool(testEnv())
	cont := contenders.New(10)
	cuts := cutlist.New()

	m := NewMunge(reg, scorer, envs, cont, cuts, nil, nil)
	opts := MungeOptions{
		Pool:         []byte{1, 8, 9},
		MinLength:    1,
		MaxLength:    2,
		GlobalRounds: 1,
		StepRounds:   1,
		UseCutList:   false,
		DataType:     models.InputCombined,
	}
	if err := m.Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if cont.Len() == 0 {
		t.Fatal("expected Munge to populate the contender registry")
	}
	// 3 + 3*3 = 12 candidate sequences total across level 1 and 2.
	if got := m.Progress().Evaluated; got != 12 {
		t.Fatalf("expected 12 evaluated candidates, got %d", got)
	}
}

func TestMungeRemoveInverseSkipsSelfCancelingPairs(t *testing.T) {
	reg := registry.Default()
	scorer := NewScorer(reg, testPlaintext())
	envs := NewEnvPool(testEnv())
	cont := contenders.New(10)
	cuts := cutlist.New()

	m := NewMunge(reg, scorer, envs, cont, cuts, nil, nil)
	opts := MungeOptions{
		Pool:          []byte{8}, // ByteReverse is its own inverse
		MinLength:     2,
		MaxLength:     2,
		GlobalRounds:  1,
		StepRounds:    1,
		RemoveInverse: true,
		DataType:      models.InputCombined,
	}
	if err := m.Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if m.Progress().Evaluated != 0 {
		t.Fatalf("expected the only length-2 candidate (8,8) to be skipped as a self-canceling pair, evaluated=%d", m.Progress().Evaluated)
	}
}

func TestMungeRespectsContextCancellation(t *testing.T) {
	reg := registry.Default()
	scorer := NewScorer(reg, testPlaintext())
	envs := NewEnvPool(testEnv())
	cont := contenders.New(10)
	cuts := cutlist.New()

	m := NewMunge(reg, scorer, envs, cont, cuts, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := MungeOptions{Pool: []byte{1, 8, 9}, MinLength: 1, MaxLength: 3, GlobalRounds: 1, StepRounds: 1, DataType: models.InputCombined}
	if err := m.Run(ctx, opts); err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestBTRSweepsRoundsAndFindsBestContender(t *testing.T) {
	reg := registry.Default()
	scorer := NewScorer(reg, testPlaintext())
	envs := NewEnvPool(testEnv())
	cont := contenders.New(5)

	driver := NewBTR(scorer, envs, cont, nil, nil)
	opts := BTROptions{BaseIDs: []byte{1}}
	if err := driver.Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	// 9 round choices * 9 global-round choices = 81.
	if got := driver.Progress().Evaluated; got != 81 {
		t.Fatalf("expected 81 evaluated combinations, got %d", got)
	}
	if cont.Len() == 0 {
		t.Fatal("expected BTR to populate the contender registry")
	}
}

func TestBestFitTriesEveryOrdering(t *testing.T) {
	reg := registry.Default()
	scorer := NewScorer(reg, testPlaintext())
	envs := NewEnvPool(testEnv())
	cont := contenders.New(10)

	driver := NewBestFit(scorer, envs, cont, nil, nil)
	opts := BestFitOptions{BaseIDs: []byte{1, 8, 9}, StepRounds: 1, GlobalRounds: 1}
	if err := driver.Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if got := driver.Progress().Evaluated; got != 6 {
		t.Fatalf("expected 3! = 6 evaluated orderings, got %d", got)
	}
}

func TestMungeUpdatesCutListAfterLevelCompletion(t *testing.T) {
	reg := registry.Default()
	scorer := NewScorer(reg, testPlaintext())
	envs := NewEnvPool(testEnv())
	cont := contenders.New(3)
	cuts := cutlist.New()

	m := NewMunge(reg, scorer, envs, cont, cuts, nil, nil)
	opts := MungeOptions{
		Pool:         []byte{1, 8, 9},
		MinLength:    3,
		MaxLength:    3,
		GlobalRounds: 1,
		StepRounds:   1,
		UseCutList:   true,
		DataType:     models.InputCombined,
	}
	if err := m.Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	lp := cutlist.LevelPass{Level: 3, PassCount: 2}
	kept := cuts.Snapshot(lp, models.InputCombined)
	if len(kept) == 0 {
		t.Fatal("expected CutList to record at least one kept transform id after level completion")
	}
}

// TestMungeNextLevelPrunesAgainstPriorLevelCutList is e2e scenario 4 from
// spec.md §8: seed the CutList for level 3 keeping only a subset of the
// pool, then run Munge at level 4 over the full pool and confirm the
// excluded id never reaches evaluation.
func TestMungeNextLevelPrunesAgainstPriorLevelCutList(t *testing.T) {
	reg := registry.Default()
	scorer := NewScorer(reg, testPlaintext())
	envs := NewEnvPool(testEnv())
	cont := contenders.New(5)
	cuts := cutlist.New()

	seedLP := cutlist.LevelPass{Level: 3, PassCount: mungePassCount}
	cuts.UpdateTop10(seedLP, models.InputCombined, []byte{1, 8}, []byte{1, 8, 9})

	m := NewMunge(reg, scorer, envs, cont, cuts, nil, nil)
	opts := MungeOptions{
		Pool:         []byte{1, 8, 9},
		MinLength:    4,
		MaxLength:    4,
		GlobalRounds: 1,
		StepRounds:   1,
		UseCutList:   true,
		DataType:     models.InputCombined,
	}
	if err := m.Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	// The level-3 seed kept only {1,8}, so level 4 must enumerate over a
	// pool of 2, not 3: 2^4 = 16 candidates, not 3^4 = 81.
	if got := m.Progress().Evaluated; got != 16 {
		t.Fatalf("expected level 4 to prune id 9 via the level-3 CutList (16 evaluated), got %d", got)
	}
}
