// Package profiler classifies a byte buffer into one of the canonical
// InputType categories and returns the best-known transform sequence and
// global-rounds setting for that category. Classification
// runs a file-magic shortcut first, then a windowed finite-state sampling
// pass over the buffer.
package profiler

import (
	"bytes"
	"math"

	"github.com/rawblock/cryptomunge/pkg/models"
)

const (
	windowSize  = 1024
	windowSlide = 512
)

// state names the windowed classification FSM's states, kept explicit
// (rather than collapsed into straight-line code) so the decision order
// stays visible in the implementation.
type state int

const (
	stateStart state = iota
	stateCheckSequence
	stateCheckAlphaWhite
	stateCheckEntropy
	stateCheckRLE
	stateFullAnalysis
	stateClassifyNatural
	stateClassifyRandom
	stateClassifyOther
)

// magicShortcut pairs a file-magic prefix with the classification it
// short-circuits to.
type magicShortcut struct {
	prefix []byte
	class  models.InputType
}

// magicShortcuts is checked in order; the first matching prefix wins.
// Classifications: ZIP, EXE, MKV and MSI -> Random; HTML and WAV ->
// Natural; PDF, JPG and PNG -> Combined (they mix a structured header
// with high-entropy payload).
var magicShortcuts = []magicShortcut{
	{[]byte("%PDF"), models.InputCombined},
	{[]byte("PK\x03\x04"), models.InputRandom},
	{[]byte("MZ"), models.InputRandom},
	{[]byte("<!DO"), models.InputNatural},
	{[]byte("<htm"), models.InputNatural},
	{[]byte("\xFF\xD8\xFF"), models.InputCombined},
	{[]byte("\x89PNG"), models.InputCombined},
	{[]byte("\x1A\x45\xDF\xA3"), models.InputRandom},
	{[]byte("RIFF"), models.InputNatural},
	{[]byte("\xD0\xCF\x11\xE0"), models.InputRandom},
}

// matchMagic returns the shortcut classification for buf, if any.
func matchMagic(buf []byte) (models.InputType, bool) {
	for _, m := range magicShortcuts {
		if bytes.HasPrefix(buf, m.prefix) {
			return m.class, true
		}
	}
	return "", false
}

// windowCounts tallies how each 1 KiB window terminated.
type windowCounts struct {
	total     int
	sequence  int
	natural   int
	random    int
	other     int
}

// classifyWindow runs one window through the decision FSM and returns the
// terminal state it reached, plus whether CheckSequence detected a
// monotone stride (tracked independently of the terminal classification).
func classifyWindow(w []byte) (term state, sawSequence bool) {
	s := stateStart
	for {
		switch s {
		case stateStart:
			s = stateCheckSequence
		case stateCheckSequence:
			if hasMonotoneStride(w) {
				sawSequence = true
			}
			s = stateCheckAlphaWhite
		case stateCheckAlphaWhite:
			if alphaWhiteFraction(w) > 0.90 {
				return stateClassifyNatural, sawSequence
			}
			s = stateCheckEntropy
		case stateCheckEntropy:
			h := shannonEntropy(w)
			if h > 7.5 {
				return stateClassifyRandom, sawSequence
			}
			if h < 6.5 {
				return stateClassifyNatural, sawSequence
			}
			s = stateCheckRLE
		case stateCheckRLE:
			if rleRatio(w) <= 0.5 {
				return stateClassifyNatural, sawSequence
			}
			s = stateFullAnalysis
		case stateFullAnalysis:
			return stateClassifyOther, sawSequence
		}
	}
}

// hasMonotoneStride reports whether consecutive bytes in w advance by a
// roughly constant stride (within +/-2), the hallmark of a counter,
// timestamp column, or other synthetic sequence.
func hasMonotoneStride(w []byte) bool {
	if len(w) < 3 {
		return false
	}
	stride := int(w[1]) - int(w[0])
	if stride == 0 {
		return false
	}
	matches := 0
	for i := 1; i < len(w)-1; i++ {
		d := int(w[i+1]) - int(w[i])
		if d >= stride-2 && d <= stride+2 {
			matches++
		}
	}
	return float64(matches)/float64(len(w)-1) > 0.90
}

// alphaWhiteFraction returns the fraction of bytes that are lowercase
// ASCII letters or a space.
func alphaWhiteFraction(w []byte) float64 {
	if len(w) == 0 {
		return 0
	}
	count := 0
	for _, b := range w {
		if (b >= 'a' && b <= 'z') || b == ' ' {
			count++
		}
	}
	return float64(count) / float64(len(w))
}

// shannonEntropy returns the Shannon entropy, in bits per byte, of w.
func shannonEntropy(w []byte) float64 {
	if len(w) == 0 {
		return 0
	}
	var counts [256]int
	for _, b := range w {
		counts[b]++
	}
	n := float64(len(w))
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// rleRatio returns the ratio of a simple run-length encoding's size to
// the input size — low ratios mean long runs of repeated bytes.
func rleRatio(w []byte) float64 {
	if len(w) == 0 {
		return 1
	}
	runs := 1
	for i := 1; i < len(w); i++ {
		if w[i] != w[i-1] {
			runs++
		}
	}
	// Each run costs 2 encoded bytes (value, count) in a naive RLE scheme.
	return float64(runs*2) / float64(len(w))
}

// Classify runs the file-magic shortcut and, failing that, the windowed
// FSM scan, returning the dominant InputType for buf.
func Classify(buf []byte) models.InputType {
	if class, ok := matchMagic(buf); ok {
		return class
	}
	if len(buf) == 0 {
		return models.InputCombined
	}

	var c windowCounts
	for start := 0; start < len(buf); start += windowSlide {
		end := start + windowSize
		if end > len(buf) {
			end = len(buf)
		}
		w := buf[start:end]
		c.total++
		term, sawSequence := classifyWindow(w)
		if sawSequence {
			c.sequence++
		}
		switch term {
		case stateClassifyNatural:
			c.natural++
		case stateClassifyRandom:
			c.random++
		default:
			c.other++
		}
		if end == len(buf) {
			break
		}
	}

	return aggregate(c)
}

// aggregate folds window-level tallies into a final classification:
// weighted scores pick the dominant class; if no
// class actually carries more than 80% of the windows and at least two
// classes each carry 10% or more, the result is Combined instead.
func aggregate(c windowCounts) models.InputType {
	if c.total == 0 {
		return models.InputCombined
	}

	sequenceScore := 3 * c.sequence
	naturalScore := 2 * c.natural
	randomScore := c.random

	type candidate struct {
		class      models.InputType
		score      int
		windowFrac float64
	}
	candidates := []candidate{
		{models.InputSequence, sequenceScore, float64(c.sequence) / float64(c.total)},
		{models.InputNatural, naturalScore, float64(c.natural) / float64(c.total)},
		{models.InputRandom, randomScore, float64(c.random) / float64(c.total)},
	}

	dominant := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.score > dominant.score {
			dominant = cand
		}
	}

	if dominant.windowFrac > 0.80 {
		return dominant.class
	}

	atOrAbove10 := 0
	for _, cand := range candidates {
		if cand.windowFrac >= 0.10 {
			atOrAbove10++
		}
	}
	if atOrAbove10 >= 2 {
		return models.InputCombined
	}

	return dominant.class
}
