package pipeline

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
)

// deriveStepKey produces the per-transform key material for step index i
// of a sequence, keyed on the call's salt and password. The derivation depends only
// on (salt, password, step index) — never on whether the forward or
// inverse transform id is being applied — so Decrypt re-derives the exact
// same key material Encrypt used at the mirrored position.
func deriveStepKey(salt, password []byte, stepIndex int) []byte {
	mac := hmac.New(sha256.New, append(append([]byte{}, password...), salt...))
	var idxBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], uint32(stepIndex))
	mac.Write([]byte("cryptomunge-step"))
	mac.Write(idxBuf[:])
	return mac.Sum(nil) // 32 bytes, cycled by keyByte() in the transforms
}
