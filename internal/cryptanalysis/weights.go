package cryptanalysis

import "github.com/rawblock/cryptomunge/pkg/models"

// WeightTable maps each metric to its weight under one OperationMode.
type WeightTable map[models.MetricName]float64

// weightTables holds the six OperationMode weight tables. Cryptographic
// favors the avalanche/key-dependency/entropy trio that
// matters for a would-be cipher; Exploratory spreads weight evenly to
// surface any interesting candidate; Flattening emphasizes the metrics
// that catch leftover structure (periodicity, positional mapping,
// frequency distribution); None disables scoring entirely (used for
// reversibility-only dry runs). The "_New" variants are recalibrated
// successors that de-emphasize MangosCorrelation, which proved noisy on
// short buffers during early search runs.
var weightTables = map[models.OperationMode]WeightTable{
	models.ModeCryptographic: {
		models.MetricEntropy:               1.2,
		models.MetricBitVariance:           1.0,
		models.MetricSlidingWindow:         0.8,
		models.MetricFrequencyDistribution: 0.8,
		models.MetricPeriodicityCheck:      0.8,
		models.MetricMangosCorrelation:     1.0,
		models.MetricPositionalMapping:     0.6,
		models.MetricAvalancheScore:        1.5,
		models.MetricKeyDependency:         1.5,
	},
	models.ModeCryptographicNew: {
		models.MetricEntropy:               1.2,
		models.MetricBitVariance:           1.0,
		models.MetricSlidingWindow:         0.8,
		models.MetricFrequencyDistribution: 0.9,
		models.MetricPeriodicityCheck:      0.9,
		models.MetricMangosCorrelation:     0.4,
		models.MetricPositionalMapping:     0.6,
		models.MetricAvalancheScore:        1.6,
		models.MetricKeyDependency:         1.6,
	},
	models.ModeExploratory: {
		models.MetricEntropy:               1.0,
		models.MetricBitVariance:           1.0,
		models.MetricSlidingWindow:         1.0,
		models.MetricFrequencyDistribution: 1.0,
		models.MetricPeriodicityCheck:      1.0,
		models.MetricMangosCorrelation:     1.0,
		models.MetricPositionalMapping:     1.0,
		models.MetricAvalancheScore:        1.0,
		models.MetricKeyDependency:         1.0,
	},
	models.ModeExploratoryNew: {
		models.MetricEntropy:               1.0,
		models.MetricBitVariance:           1.0,
		models.MetricSlidingWindow:         1.0,
		models.MetricFrequencyDistribution: 1.0,
		models.MetricPeriodicityCheck:      1.0,
		models.MetricMangosCorrelation:     0.3,
		models.MetricPositionalMapping:     1.0,
		models.MetricAvalancheScore:        1.2,
		models.MetricKeyDependency:         1.2,
	},
	models.ModeFlattening: {
		models.MetricEntropy:               0.6,
		models.MetricBitVariance:           0.6,
		models.MetricSlidingWindow:         1.2,
		models.MetricFrequencyDistribution: 1.4,
		models.MetricPeriodicityCheck:      1.4,
		models.MetricMangosCorrelation:     0.6,
		models.MetricPositionalMapping:     1.2,
		models.MetricAvalancheScore:        0.4,
		models.MetricKeyDependency:         0.4,
	},
	models.ModeNone: {},
}

// WeightsFor returns the weight table for mode. Unknown modes fall back to
// Exploratory's even weighting rather than silently scoring zero.
func WeightsFor(mode models.OperationMode) WeightTable {
	if w, ok := weightTables[mode]; ok {
		return w
	}
	return weightTables[models.ModeExploratory]
}
