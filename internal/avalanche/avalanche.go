// Package avalanche produces the auxiliary payloads the cryptanalysis
// engine needs: a single-bit-flipped-input ciphertext and a
// single-bit-flipped-key ciphertext, both derived deterministically from
// the sequence being tested so scores reproduce across runs and thread
// counts.
package avalanche

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/rawblock/cryptomunge/internal/pipeline"
	"github.com/rawblock/cryptomunge/pkg/models"
)

// Harness produces the avalanche and key-dependency ciphertexts for a
// fixed pipeline.
type Harness struct {
	pipe *pipeline.Pipeline
}

// New returns a Harness bound to pipe.
func New(pipe *pipeline.Pipeline) *Harness {
	return &Harness{pipe: pipe}
}

// Payloads bundles the two auxiliary ciphertexts plus the base ciphertext,
// each still carrying the header pipeline.Encrypt prepends; callers strip
// it with pipeline.GetPayloadOnly before handing payloads to
// internal/cryptanalysis.Evaluate.
type Payloads struct {
	Base          []byte
	Avalanche     []byte
	KeyDependency []byte
}

// serializeReversed renders the reverse of seq.Steps (plus GlobalRounds)
// as bytes for hashing — a pure function of the sequence, independent of
// salt or password, so the derived seed is reproducible across runs.
func serializeReversed(seq models.ParsedSequence) []byte {
	n := len(seq.Steps)
	buf := make([]byte, 0, 2*n+4)
	for i := n - 1; i >= 0; i-- {
		buf = append(buf, seq.Steps[i].TransformID, byte(seq.Steps[i].Rounds))
	}
	var gr [4]byte
	binary.BigEndian.PutUint32(gr[:], uint32(seq.GlobalRounds))
	return append(buf, gr[:]...)
}

// seedFor derives the 64-bit flip-position seed from a deterministic
// double-SHA256 digest of the reversed sequence.
func seedFor(seq models.ParsedSequence) uint64 {
	digest := chainhash.DoubleHashB(serializeReversed(seq))
	return binary.BigEndian.Uint64(digest[:8])
}

// flipBit returns a copy of buf with one bit flipped at the given bit
// position (bit 0 of each byte is its least significant bit).
func flipBit(buf []byte, bitPos int) []byte {
	out := append([]byte{}, buf...)
	if len(out) == 0 {
		return out
	}
	byteIdx := bitPos / 8
	bitIdx := uint(bitPos % 8)
	out[byteIdx] ^= 1 << bitIdx
	return out
}

// Generate produces Payloads for (seq, salt, password, plaintext): the
// base ciphertext plus its bit-flipped and key-flipped variants.
func (h *Harness) Generate(seq models.ParsedSequence, salt, password, plaintext []byte) (Payloads, error) {
	base, err := h.pipe.EncryptWithSalt(seq, salt, password, plaintext)
	if err != nil {
		return Payloads{}, err
	}

	seed := seedFor(seq)

	// Step 2-3: flip one plaintext bit, encrypt with the same password.
	if len(plaintext) > 0 {
		bitPos := int(seed % uint64(8*len(plaintext)))
		modifiedPlaintext := flipBit(plaintext, bitPos)
		avalanche, err := h.pipe.EncryptWithSalt(seq, salt, password, modifiedPlaintext)
		if err != nil {
			return Payloads{}, err
		}

		// Step 4: independently flip one password bit, encrypt the
		// original plaintext with the modified password.
		var modifiedPassword []byte
		if len(password) > 0 {
			keyBitPos := int(seed % uint64(8*len(password)))
			modifiedPassword = flipBit(password, keyBitPos)
		} else {
			modifiedPassword = []byte{0x01}
		}
		keyDependency, err := h.pipe.EncryptWithSalt(seq, salt, modifiedPassword, plaintext)
		if err != nil {
			return Payloads{}, err
		}

		return Payloads{Base: base, Avalanche: avalanche, KeyDependency: keyDependency}, nil
	}

	return Payloads{Base: base, Avalanche: base, KeyDependency: base}, nil
}
