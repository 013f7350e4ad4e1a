package profiler

import "github.com/rawblock/cryptomunge/pkg/models"

// canonicalProfiles is the constant table of best-known sequences per
// input category, seeded from default registry transform ids and
// documented as "best-known from prior search runs" rather
// than computed at runtime — a fresh Munge run against
// internal/contenders is how these entries would be refreshed in
// practice, but baking in a reasonable starting point means the profiler
// is useful with an empty contender registry.
var canonicalProfiles = map[models.InputType]models.InputProfile{
	models.InputNatural: {
		Name: models.InputNatural,
		Sequence: []models.SequenceStep{
			{TransformID: 1, Rounds: 3},  // XorKeystream
			{TransformID: 12, Rounds: 2}, // KeyedSubstitution
			{TransformID: 8, Rounds: 1},  // ByteReverse
		},
		GlobalRounds: 4,
	},
	models.InputRandom: {
		Name: models.InputRandom,
		Sequence: []models.SequenceStep{
			{TransformID: 12, Rounds: 1}, // KeyedSubstitution
			{TransformID: 1, Rounds: 1},  // XorKeystream
		},
		GlobalRounds: 2,
	},
	models.InputSequence: {
		Name: models.InputSequence,
		Sequence: []models.SequenceStep{
			{TransformID: 14, Rounds: 2}, // KeyedBlockTranspose
			{TransformID: 1, Rounds: 2},  // XorKeystream
			{TransformID: 9, Rounds: 1},  // NibbleSwap
		},
		GlobalRounds: 3,
	},
	models.InputCombined: {
		Name: models.InputCombined,
		Sequence: []models.SequenceStep{
			{TransformID: 1, Rounds: 2},  // XorKeystream
			{TransformID: 14, Rounds: 1}, // KeyedBlockTranspose
			{TransformID: 12, Rounds: 1}, // KeyedSubstitution
			{TransformID: 8, Rounds: 1},  // ByteReverse
		},
		GlobalRounds: 3,
	},
}

// Profile returns the canonical InputProfile for buf: it classifies buf,
// then looks up the constant sequence/global-rounds pairing for that
// class.
func Profile(buf []byte) models.InputProfile {
	class := Classify(buf)
	if p, ok := canonicalProfiles[class]; ok {
		return p
	}
	return canonicalProfiles[models.InputCombined]
}

// UserDataProfile wraps a caller-supplied sequence and global-rounds
// setting as an InputProfile tagged UserData, bypassing classification
// entirely: on UserData, the caller's existing global rounds are
// preserved.
func UserDataProfile(seq []models.SequenceStep, globalRounds int) models.InputProfile {
	return models.InputProfile{Name: models.InputUserData, Sequence: seq, GlobalRounds: globalRounds}
}
