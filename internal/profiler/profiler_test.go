package profiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rawblock/cryptomunge/pkg/models"
)

func TestMagicShortcutsShortCircuit(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want models.InputType
	}{
		{"pdf", append([]byte("%PDF-1.7"), bytes.Repeat([]byte{0}, 64)...), models.InputCombined},
		{"zip", append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0xAB}, 64)...), models.InputRandom},
		{"exe", append([]byte("MZ"), bytes.Repeat([]byte{0}, 64)...), models.InputRandom},
		{"png", append([]byte("\x89PNG\r\n"), bytes.Repeat([]byte{0}, 64)...), models.InputCombined},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.buf); got != c.want {
				t.Fatalf("Classify(%s) = %s, want %s", c.name, got, c.want)
			}
		})
	}
}

func TestClassifyNaturalText(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog and runs along the river ", 40)
	got := Classify([]byte(text))
	if got != models.InputNatural {
		t.Fatalf("expected plain lowercase text to classify Natural, got %s", got)
	}
}

func TestClassifyHighEntropyRandom(t *testing.T) {
	buf := make([]byte, 4096)
	x := uint32(0x2545F491)
	for i := range buf {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		buf[i] = byte(x)
	}
	got := Classify(buf)
	if got != models.InputRandom {
		t.Fatalf("expected high-entropy xorshift buffer to classify Random, got %s", got)
	}
}

func TestClassifyEmptyBufferIsCombined(t *testing.T) {
	if got := Classify(nil); got != models.InputCombined {
		t.Fatalf("expected empty buffer to classify Combined, got %s", got)
	}
}

func TestClassifyLongRunIsNatural(t *testing.T) {
	buf := bytes.Repeat([]byte{0x41}, 4096)
	got := Classify(buf)
	if got != models.InputNatural {
		t.Fatalf("expected a long constant run to classify Natural via the low-entropy check, got %s", got)
	}
}

func TestProfileReturnsCanonicalSequenceForClass(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog and runs along the river ", 40)
	p := Profile([]byte(text))
	if p.Name != models.InputNatural {
		t.Fatalf("expected Natural profile name, got %s", p.Name)
	}
	if len(p.Sequence) == 0 {
		t.Fatal("expected a non-empty canonical sequence")
	}
}

func TestUserDataProfilePreservesCallerSequence(t *testing.T) {
	seq := []models.SequenceStep{{TransformID: 9, Rounds: 5}}
	p := UserDataProfile(seq, 7)
	if p.Name != models.InputUserData {
		t.Fatalf("expected UserData name, got %s", p.Name)
	}
	if p.GlobalRounds != 7 {
		t.Fatalf("expected caller's global rounds preserved, got %d", p.GlobalRounds)
	}
	if len(p.Sequence) != 1 || p.Sequence[0].TransformID != 9 {
		t.Fatalf("expected caller's sequence preserved, got %+v", p.Sequence)
	}
}
