// Package pipeline applies an ordered sequence of registered transforms,
// with per-transform rounds and a global round count, as a reversible
// block cipher.
package pipeline

import (
	"crypto/rand"
	"fmt"

	"github.com/rawblock/cryptomunge/internal/registry"
	"github.com/rawblock/cryptomunge/pkg/models"
)

const saltSize = 16

// Pipeline applies sequences against a fixed transform registry.
type Pipeline struct {
	reg *registry.Registry
}

// New returns a Pipeline bound to reg.
func New(reg *registry.Registry) *Pipeline {
	return &Pipeline{reg: reg}
}

func clampRounds(n int) int {
	if n < 1 {
		return 1
	}
	if n > 9 {
		return 9
	}
	return n
}

// validate enforces the one boundary behavior the pipeline core owns
// directly: an empty sequence is rejected. Per-transform rounds clamp to
// [1,9] here since every call path shares that bound; global rounds do
// not — scoring/search callers clamp GlobalRounds to [1,9] themselves
// before building a ParsedSequence, but the pipeline itself accepts any
// value so a benchmarking caller can drive GlobalRounds arbitrarily high.
func validate(seq models.ParsedSequence) error {
	if len(seq.Steps) == 0 {
		return models.ErrEmptySequence
	}
	return nil
}

// Encrypt applies seq.Steps GlobalRounds times (each step applied its own
// per-transform Rounds times within each global round) and prepends a
// header so Decrypt needs only the returned ciphertext plus password.
func (p *Pipeline) Encrypt(seq models.ParsedSequence, password, plaintext []byte) ([]byte, error) {
	if err := validate(seq); err != nil {
		return nil, err
	}
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("pipeline: salt generation: %w", err)
	}
	payload, err := p.encryptPayload(seq, salt, password, plaintext)
	if err != nil {
		return nil, err
	}
	header := encodeHeader(salt, seq)
	return append(header, payload...), nil
}

// EncryptWithSalt is Encrypt with a caller-supplied salt, used by the
// avalanche/key-dependency harness so both payloads are
// generated under directly comparable conditions.
func (p *Pipeline) EncryptWithSalt(seq models.ParsedSequence, salt, password, plaintext []byte) ([]byte, error) {
	if err := validate(seq); err != nil {
		return nil, err
	}
	payload, err := p.encryptPayload(seq, salt, password, plaintext)
	if err != nil {
		return nil, err
	}
	header := encodeHeader(salt, seq)
	return append(header, payload...), nil
}

func (p *Pipeline) encryptPayload(seq models.ParsedSequence, salt, password, plaintext []byte) ([]byte, error) {
	globalRounds := seq.GlobalRounds
	data := append([]byte{}, plaintext...)
	for g := 0; g < globalRounds; g++ {
		for i, step := range seq.Steps {
			key := deriveStepKey(salt, password, i)
			tr := clampRounds(step.Rounds)
			for r := 0; r < tr; r++ {
				out, err := p.reg.Apply(step.TransformID, data, key)
				if err != nil {
					return nil, err
				}
				data = out
			}
		}
	}
	return data, nil
}

// Decrypt recovers the plaintext from a ciphertext produced by Encrypt,
// given only the password.
func (p *Pipeline) Decrypt(password, ciphertext []byte) ([]byte, error) {
	salt, seq, consumed, err := decodeHeader(ciphertext)
	if err != nil {
		return nil, err
	}
	return p.decryptPayload(seq, salt, password, ciphertext[consumed:])
}

func (p *Pipeline) decryptPayload(seq models.ParsedSequence, salt, password, payload []byte) ([]byte, error) {
	globalRounds := seq.GlobalRounds
	data := append([]byte{}, payload...)
	for g := 0; g < globalRounds; g++ {
		for i := len(seq.Steps) - 1; i >= 0; i-- {
			step := seq.Steps[i]
			invID, err := p.reg.InverseID(step.TransformID)
			if err != nil {
				return nil, err
			}
			key := deriveStepKey(salt, password, i)
			tr := clampRounds(step.Rounds)
			for r := 0; r < tr; r++ {
				out, err := p.reg.Apply(invID, data, key)
				if err != nil {
					return nil, err
				}
				data = out
			}
		}
	}
	return data, nil
}
