package pipeline

import (
	"encoding/binary"
	"fmt"

	"github.com/rawblock/cryptomunge/pkg/models"
)

const headerVersion = 1

// encodeHeader serializes the format version, salt, global rounds, and
// sequence so Decrypt needs only the ciphertext.
//
// Layout: version(1) | saltLen(1) | salt | globalRounds(1) | stepCount(2) |
// [transformID(1) rounds(1)]*stepCount
func encodeHeader(salt []byte, seq models.ParsedSequence) []byte {
	buf := make([]byte, 0, 4+len(salt)+2*len(seq.Steps))
	buf = append(buf, headerVersion, byte(len(salt)))
	buf = append(buf, salt...)
	buf = append(buf, byte(seq.GlobalRounds))
	var countBuf [2]byte
	binary.BigEndian.PutUint16(countBuf[:], uint16(len(seq.Steps)))
	buf = append(buf, countBuf[:]...)
	for _, s := range seq.Steps {
		buf = append(buf, s.TransformID, byte(s.Rounds))
	}
	return buf
}

// decodeHeader parses the header produced by encodeHeader, returning the
// salt, the sequence, and the number of bytes consumed.
func decodeHeader(ciphertext []byte) (salt []byte, seq models.ParsedSequence, consumed int, err error) {
	if len(ciphertext) < 4 {
		return nil, models.ParsedSequence{}, 0, models.ErrTruncatedCiphertext
	}
	if ciphertext[0] != headerVersion {
		return nil, models.ParsedSequence{}, 0, fmt.Errorf("pipeline: unsupported header version %d", ciphertext[0])
	}
	saltLen := int(ciphertext[1])
	pos := 2
	if len(ciphertext) < pos+saltLen+3 {
		return nil, models.ParsedSequence{}, 0, models.ErrTruncatedCiphertext
	}
	salt = append([]byte{}, ciphertext[pos:pos+saltLen]...)
	pos += saltLen
	globalRounds := int(ciphertext[pos])
	pos++
	stepCount := int(binary.BigEndian.Uint16(ciphertext[pos : pos+2]))
	pos += 2
	if len(ciphertext) < pos+2*stepCount {
		return nil, models.ParsedSequence{}, 0, models.ErrTruncatedCiphertext
	}
	steps := make([]models.SequenceStep, stepCount)
	for i := 0; i < stepCount; i++ {
		steps[i] = models.SequenceStep{TransformID: ciphertext[pos], Rounds: int(ciphertext[pos+1])}
		pos += 2
	}
	return salt, models.ParsedSequence{Steps: steps, GlobalRounds: globalRounds}, pos, nil
}

// GetPayloadOnly strips the header prepended by Encrypt, returning the raw
// payload bytes used by the cryptanalysis engine.
func GetPayloadOnly(ciphertext []byte) ([]byte, error) {
	_, _, consumed, err := decodeHeader(ciphertext)
	if err != nil {
		return nil, err
	}
	return ciphertext[consumed:], nil
}
