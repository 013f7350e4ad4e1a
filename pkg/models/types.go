// Package models holds the shared data types for the transform registry,
// the search drivers, and the cryptanalysis engine.
package models

import "time"

// Transform describes one reversible byte-level function registered in the
// Transform Registry. InverseID may equal ID for involutions.
type Transform struct {
	ID              byte    `json:"id"`
	Name            string  `json:"name"`
	InverseID       byte    `json:"inverseId"`
	BenchmarkTimeMs float64 `json:"benchmarkTimeMs"`
}

// SequenceStep is one (transform_id, per_transform_rounds) pair inside an
// ordered sequence.
type SequenceStep struct {
	TransformID byte `json:"transformId"`
	Rounds      int  `json:"rounds"` // per-transform rounds, clamped [1,9]
}

// InputType names the four natural classification categories plus the
// caller-supplied fifth category used when a profile is not derived from
// classification but handed in directly.
type InputType string

const (
	InputCombined InputType = "Combined"
	InputNatural  InputType = "Natural"
	InputRandom   InputType = "Random"
	InputSequence InputType = "Sequence"
	InputUserData InputType = "UserData"
)

// NDataTypes is the number of columns in a CutMatrix row — one per
// InputType value above.
const NDataTypes = 5

// DataTypeIndex returns the CutMatrix column index for an InputType, or -1
// if the type is not one of the five recognized columns.
func DataTypeIndex(t InputType) int {
	switch t {
	case InputCombined:
		return 0
	case InputNatural:
		return 1
	case InputRandom:
		return 2
	case InputSequence:
		return 3
	case InputUserData:
		return 4
	default:
		return -1
	}
}

// InputProfile is the canonical (sequence, global_rounds) pairing returned
// by the classifier for a given InputType.
type InputProfile struct {
	Name         InputType      `json:"name"`
	Sequence     []SequenceStep `json:"sequence"`
	GlobalRounds int            `json:"globalRounds"`
}

// ParsedSequence is the thing the search drivers discover and score: an
// ordered list of transform steps plus a global round count.
type ParsedSequence struct {
	Steps        []SequenceStep `json:"steps"`
	GlobalRounds int            `json:"globalRounds"`
}

// MetricName identifies one of the nine cryptanalysis metrics.
type MetricName string

const (
	MetricEntropy               MetricName = "Entropy"
	MetricBitVariance           MetricName = "BitVariance"
	MetricSlidingWindow         MetricName = "SlidingWindow"
	MetricFrequencyDistribution MetricName = "FrequencyDistribution"
	MetricPeriodicityCheck      MetricName = "PeriodicityCheck"
	MetricMangosCorrelation     MetricName = "MangosCorrelation"
	MetricPositionalMapping     MetricName = "PositionalMapping"
	MetricAvalancheScore        MetricName = "AvalancheScore"
	MetricKeyDependency         MetricName = "KeyDependency"
)

// AllMetrics is the fixed, ordered set of the nine metrics evaluated on
// every candidate.
var AllMetrics = []MetricName{
	MetricEntropy,
	MetricBitVariance,
	MetricSlidingWindow,
	MetricFrequencyDistribution,
	MetricPeriodicityCheck,
	MetricMangosCorrelation,
	MetricPositionalMapping,
	MetricAvalancheScore,
	MetricKeyDependency,
}

// AnalysisResult is the scored outcome of one metric against one
// ciphertext.
type AnalysisResult struct {
	MetricName MetricName `json:"metricName"`
	Score      float64    `json:"score"`
	Threshold  float64    `json:"threshold"`
	Passed     bool       `json:"passed"`
	Notes      string     `json:"notes"`
}

// ScoringMode selects how the nine AnalysisResults are folded into one
// aggregate score.
type ScoringMode string

const (
	ScoringPractical ScoringMode = "Practical"
	ScoringMetric    ScoringMode = "Metric"
)

// OperationMode selects the weight table applied to the nine metrics.
type OperationMode string

const (
	ModeCryptographic    OperationMode = "Cryptographic"
	ModeCryptographicNew OperationMode = "Cryptographic_New"
	ModeExploratory      OperationMode = "Exploratory"
	ModeExploratoryNew   OperationMode = "Exploratory_New"
	ModeFlattening       OperationMode = "Flattening"
	ModeNone             OperationMode = "None"
)

// Contender is a candidate sequence that survived reversibility and entered
// the top-K of the registry.
type Contender struct {
	Sequence       ParsedSequence   `json:"sequence"`
	AggregateScore float64          `json:"aggregateScore"`
	Metrics        []AnalysisResult `json:"metrics"`
	InsertedAt     time.Time        `json:"insertedAt"`
}

// CutMatrixKey identifies one (level, pass-count, data-type) slot in the
// CutList.
type CutMatrixKey struct {
	Level     int       `json:"level"`
	PassCount int       `json:"passCount"`
	DataType  InputType `json:"dataType"`
}

// ExecutionEnvironment is the per-worker context rented from the search
// driver's environment pool. It owns no state shared with other workers.
type ExecutionEnvironment struct {
	Salt          []byte
	Password      []byte
	GlobalRounds  int
	OperationMode OperationMode
	ScoringMode   ScoringMode
}

// Clone returns a deep-enough copy for scoped per-candidate mutation.
func (e ExecutionEnvironment) Clone() ExecutionEnvironment {
	salt := make([]byte, len(e.Salt))
	copy(salt, e.Salt)
	pass := make([]byte, len(e.Password))
	copy(pass, e.Password)
	e.Salt = salt
	e.Password = pass
	return e
}
