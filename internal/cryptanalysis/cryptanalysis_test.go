package cryptanalysis

import (
	"math/rand"
	"testing"

	"github.com/rawblock/cryptomunge/pkg/models"
)

func randomBuf(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	r.Read(b)
	return b
}

func TestEvaluateReturnsAllNineMetricsInOrder(t *testing.T) {
	ct := randomBuf(4096, 1)
	av := randomBuf(4096, 2)
	kd := randomBuf(4096, 3)
	pt := randomBuf(4096, 4)

	results := Evaluate(ct, av, kd, pt, models.ModeCryptographic)
	if len(results) != len(models.AllMetrics) {
		t.Fatalf("expected %d metrics, got %d", len(models.AllMetrics), len(results))
	}
	for i, r := range results {
		if r.MetricName != models.AllMetrics[i] {
			t.Fatalf("metric %d: expected %s, got %s", i, models.AllMetrics[i], r.MetricName)
		}
	}
}

func TestAggregateDeterministic(t *testing.T) {
	ct := randomBuf(4096, 10)
	av := randomBuf(4096, 11)
	kd := randomBuf(4096, 12)
	pt := randomBuf(4096, 13)

	results := Evaluate(ct, av, kd, pt, models.ModeCryptographic)
	a := Aggregate(results, models.ModeCryptographic, models.ScoringPractical)
	b := Aggregate(results, models.ModeCryptographic, models.ScoringPractical)
	if a != b {
		t.Fatalf("aggregate score not deterministic: %f != %f", a, b)
	}

	m1 := Aggregate(results, models.ModeCryptographic, models.ScoringMetric)
	m2 := Aggregate(results, models.ModeCryptographic, models.ScoringMetric)
	if m1 != m2 {
		t.Fatalf("metric-mode aggregate not deterministic: %f != %f", m1, m2)
	}
}

func TestConstantBufferScoresPoorly(t *testing.T) {
	ct := make([]byte, 4096) // all zero bytes: minimal entropy, maximal periodicity
	av := make([]byte, 4096)
	kd := make([]byte, 4096)
	pt := make([]byte, 4096)

	results := Evaluate(ct, av, kd, pt, models.ModeCryptographic)
	for _, r := range results {
		if r.MetricName == models.MetricEntropy && r.Passed {
			t.Fatalf("all-zero buffer should fail the entropy threshold, got score %f", r.Score)
		}
	}
}

func TestWeightsForUnknownModeFallsBackToExploratory(t *testing.T) {
	w := WeightsFor(models.OperationMode("bogus"))
	exp := WeightsFor(models.ModeExploratory)
	if len(w) != len(exp) {
		t.Fatalf("expected fallback to Exploratory weight table")
	}
}

func TestPassCount(t *testing.T) {
	results := []models.AnalysisResult{
		{Passed: true}, {Passed: false}, {Passed: true},
	}
	passed, total := PassCount(results)
	if passed != 2 || total != 3 {
		t.Fatalf("expected 2/3, got %d/%d", passed, total)
	}
}
