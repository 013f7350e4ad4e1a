package cryptanalysis

import (
	"math"

	"github.com/rawblock/cryptomunge/pkg/models"
)

// Aggregate folds a set of AnalysisResults into a single real-valued score
// under the requested OperationMode (weight table) and ScoringMode
// (folding formula).
func Aggregate(results []models.AnalysisResult, opMode models.OperationMode, scoring models.ScoringMode) float64 {
	weights := WeightsFor(opMode)
	switch scoring {
	case models.ScoringMetric:
		return aggregateMetric(results, weights)
	default:
		return aggregatePractical(results, weights)
	}
}

// aggregateMetric implements the Metric-mode formula: each metric's
// higher-is-better score is clamped at a cap, divided by that cap, then
// compressed with log1p so no single metric dominates the sum, then
// weighted.
//
//	contribution = weight * log1p(min(score, cap)/cap * (e-1))
//
// cap is 1.2x the metric's threshold (metrics are allowed to exceed their
// threshold and still earn extra, bounded, credit) and log1p(x*(e-1)) maps
// x in [0,1] onto [0, 1] monotonically with diminishing returns.
func aggregateMetric(results []models.AnalysisResult, weights WeightTable) float64 {
	const eMinus1 = math.E - 1
	var total float64
	for _, r := range results {
		w, ok := weights[r.MetricName]
		if !ok {
			continue
		}
		capAt := r.Threshold * 1.2
		if capAt <= 0 {
			capAt = 1.2
		}
		capped := r.Score
		if capped > capAt {
			capped = capAt
		}
		if capped < 0 {
			capped = 0
		}
		normalized := capped / capAt
		total += w * math.Log1p(normalized*eMinus1)
	}
	return round4(total)
}

// band names the four proximity bands of Practical mode.
type band int

const (
	bandFail band = iota
	bandNearMiss
	bandPass
	bandPerfect
)

// bandPoints assigns band-specific points, Perfect > Pass > NearMiss > 0.
func bandPoints(b band) float64 {
	switch b {
	case bandPerfect:
		return 4
	case bandPass:
		return 3
	case bandNearMiss:
		return 1
	default:
		return 0
	}
}

// classifyBand buckets a result by proximity to its threshold. Perfect:
// at least 10% of the headroom (1.0 - threshold) above threshold, or any
// passing score when the threshold is 1.0 or more (Entropy). Pass: meets
// threshold. NearMiss: within 10% of threshold below it. Fail: otherwise.
func classifyBand(r models.AnalysisResult) band {
	if r.Score >= r.Threshold {
		headroom := 1.0 - r.Threshold
		if headroom <= 0 || r.Score >= r.Threshold+0.1*headroom {
			return bandPerfect
		}
		return bandPass
	}
	nearMissFloor := r.Threshold - 0.1*r.Threshold
	if r.Score >= nearMissFloor {
		return bandNearMiss
	}
	return bandFail
}

// aggregatePractical implements Practical mode:
// classify each metric into a band, assign band points, weighted sum.
func aggregatePractical(results []models.AnalysisResult, weights WeightTable) float64 {
	var total float64
	for _, r := range results {
		w, ok := weights[r.MetricName]
		if !ok {
			continue
		}
		total += w * bandPoints(classifyBand(r))
	}
	return round4(total)
}

// PassCount returns how many of the results met their threshold, and the
// total evaluated — used for "Pass Count: k/total" reporting.
func PassCount(results []models.AnalysisResult) (passed, total int) {
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	return passed, len(results)
}
