package search

import (
	"bytes"

	"github.com/rawblock/cryptomunge/internal/avalanche"
	"github.com/rawblock/cryptomunge/internal/cryptanalysis"
	"github.com/rawblock/cryptomunge/internal/pipeline"
	"github.com/rawblock/cryptomunge/internal/registry"
	"github.com/rawblock/cryptomunge/pkg/models"
)

// Scorer binds a fixed plaintext sample and transform registry to the
// avalanche harness and cryptanalysis engine, giving every search driver
// the same candidate-evaluation path.
type Scorer struct {
	pipe      *pipeline.Pipeline
	harness   *avalanche.Harness
	plaintext []byte
}

// NewScorer returns a Scorer bound to reg and the fixed sample plaintext.
func NewScorer(reg *registry.Registry, plaintext []byte) *Scorer {
	pipe := pipeline.New(reg)
	return &Scorer{pipe: pipe, harness: avalanche.New(pipe), plaintext: plaintext}
}

// reversible verifies Decrypt(Encrypt(x)) == x for seq against the sample
// plaintext, the per-candidate reversibility check spec.md §4.H.1 step 3
// requires before a candidate is scored at all; a registry built from
// well-formed inverse pairs always passes it today, but the check itself
// guards against a future non-involutive or buggy transform silently
// producing a broken contender.
func (s *Scorer) reversible(seq models.ParsedSequence, env models.ExecutionEnvironment) bool {
	ct, err := s.pipe.EncryptWithSalt(seq, env.Salt, env.Password, s.plaintext)
	if err != nil {
		return false
	}
	pt, err := s.pipe.Decrypt(env.Password, ct)
	if err != nil {
		return false
	}
	return bytes.Equal(pt, s.plaintext)
}

// Score runs one candidate sequence through the reversibility check, the
// avalanche harness, and the nine-metric cryptanalysis engine, returning
// its aggregate score and the individual per-metric results. A sequence
// that fails the reversibility check is dropped with ErrReversibilityFailed
// rather than scored, per spec.md §7.
func (s *Scorer) Score(seq models.ParsedSequence, env models.ExecutionEnvironment) (float64, []models.AnalysisResult, error) {
	if !s.reversible(seq, env) {
		return 0, nil, models.ErrReversibilityFailed
	}

	payloads, err := s.harness.Generate(seq, env.Salt, env.Password, s.plaintext)
	if err != nil {
		return 0, nil, err
	}

	// The cryptanalysis metrics evaluate ciphertext payload bytes, not the
	// header (version + salt + serialized sequence) Encrypt prepends —
	// the header is identical across all three payloads, which would
	// pollute Entropy/FrequencyDistribution with constant bytes and bias
	// AvalancheScore/KeyDependency's Hamming ratios toward fewer differing
	// bits than the ciphertext itself actually has.
	base, err := pipeline.GetPayloadOnly(payloads.Base)
	if err != nil {
		return 0, nil, err
	}
	aval, err := pipeline.GetPayloadOnly(payloads.Avalanche)
	if err != nil {
		return 0, nil, err
	}
	keyDep, err := pipeline.GetPayloadOnly(payloads.KeyDependency)
	if err != nil {
		return 0, nil, err
	}

	results := cryptanalysis.Evaluate(base, aval, keyDep, s.plaintext, env.OperationMode)
	aggregate := cryptanalysis.Aggregate(results, env.OperationMode, env.ScoringMode)
	return aggregate, results, nil
}
