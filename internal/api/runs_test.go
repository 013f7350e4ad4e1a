package api

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rawblock/cryptomunge/internal/cutlist"
	"github.com/rawblock/cryptomunge/internal/registry"
	"github.com/rawblock/cryptomunge/internal/search"
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

func newTestManager() (*RunManager, *registry.Registry) {
	reg := registry.Default()
	scorer := search.NewScorer(reg, testPlaintext())
	envs := search.NewEnvPool(testEnv())
	cuts := cutlist.New()
	return NewRunManager(reg, scorer, envs, cuts, nil, nil, 10), reg
}

func TestStartMungeReachesCompletionAndIsQueryable(t *testing.T) {
	m, _ := newTestManager()
	opts := search.MungeOptions{
		Pool:         []byte{1, 8, 9},
		MinLength:    1,
		MaxLength:    2,
		GlobalRounds: 1,
		StepRounds:   1,
		UseCutList:   false,
		DataType:     models.InputCombined,
	}
	id := m.StartMunge(context.Background(), opts)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, ok := m.Status(id)
		if !ok {
			t.Fatal("expected run to be registered immediately")
		}
		if !status.Progress.Running {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	status, ok := m.Status(id)
	if !ok {
		t.Fatal("run disappeared after completion")
	}
	if status.Driver != "munge" {
		t.Fatalf("Driver = %q, want munge", status.Driver)
	}
	if status.Progress.Evaluated == 0 {
		t.Fatal("expected at least one evaluated candidate")
	}

	top, ok := m.TopContenders(id, 5)
	if !ok {
		t.Fatal("expected TopContenders to find the run")
	}
	if len(top) == 0 {
		t.Fatal("expected at least one contender from a 2-level munge over 3 transforms")
	}
}

func TestGetUnknownRunReturnsFalse(t *testing.T) {
	m, _ := newTestManager()
	if _, ok := m.Get(uuid.New()); ok {
		t.Fatal("expected an unregistered run id to miss")
	}
	if _, ok := m.Status(uuid.New()); ok {
		t.Fatal("expected Status for an unregistered run id to miss")
	}
	if _, ok := m.TopContenders(uuid.New(), 5); ok {
		t.Fatal("expected TopContenders for an unregistered run id to miss")
	}
}

func TestCancelStopsALongRunningBTR(t *testing.T) {
	m, _ := newTestManager()
	opts := search.BTROptions{BaseIDs: []byte{1, 8, 9}}
	id := m.StartBTR(context.Background(), opts)

	if !m.Cancel(id) {
		t.Fatal("expected Cancel to find the freshly started run")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, _ := m.Status(id)
		if !status.Progress.Running {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("expected run to stop running after Cancel")
}

func TestDataTypeFromStringFallsBackToCombined(t *testing.T) {
	if got := dataTypeFromString("NotARealType"); got != models.InputCombined {
		t.Fatalf("dataTypeFromString(invalid) = %v, want Combined", got)
	}
	if got := dataTypeFromString("Random"); got != models.InputRandom {
		t.Fatalf("dataTypeFromString(Random) = %v, want Random", got)
	}
}
