package registry

import "github.com/rawblock/cryptomunge/pkg/models"

// Default registers the built-in set of experimental, reversible byte
// transforms. Each is paired with its inverse per the Transform Registry
// invariant. Benchmark times are placeholders until
// internal/bench overwrites them with a measured value.
func Default() *Registry {
	r := New()
	for _, d := range defaultDescriptors() {
		r.Register(d.t, d.impl)
	}
	if err := r.Build(); err != nil {
		panic(err) // startup-only invariant violation; registry errors are fatal
	}
	return r
}

func defaultDescriptors() []entry {
	mk := func(id, inv byte, name string, impl TransformFunc) entry {
		return entry{t: models.Transform{ID: id, Name: name, InverseID: inv, BenchmarkTimeMs: 0.01}, impl: impl}
	}
	return []entry{
		mk(1, 1, "XorKeystream", xorKeystream),
		mk(2, 3, "AddKeystream", addKeystream),
		mk(3, 2, "SubKeystream", subKeystream),
		mk(4, 5, "RotateLeft3", rotateLeft(3)),
		mk(5, 4, "RotateRight3", rotateRight(3)),
		mk(6, 7, "RotateLeft5", rotateLeft(5)),
		mk(7, 6, "RotateRight5", rotateRight(5)),
		mk(8, 8, "ByteReverse", byteReverse),
		mk(9, 9, "NibbleSwap", nibbleSwap),
		mk(10, 10, "PairSwap", pairSwap),
		mk(11, 11, "Complement", complement),
		mk(12, 13, "KeyedSubstitution", keyedSubstitution),
		mk(13, 12, "KeyedSubstitutionInverse", keyedSubstitutionInverse),
		mk(14, 15, "KeyedBlockTranspose", keyedBlockTranspose),
		mk(15, 14, "KeyedBlockTransposeInverse", keyedBlockTransposeInverse),
		mk(16, 17, "KeyedBlockPermutation", keyedBlockPermutation),
		mk(17, 16, "KeyedBlockPermutationInverse", keyedBlockPermutationInverse),
		mk(18, 19, "CascadeXorForward", cascadeXorForward),
		mk(19, 18, "CascadeXorInverse", cascadeXorInverse),
	}
}

func keyByte(key []byte, i int) byte {
	if len(key) == 0 {
		return 0
	}
	return key[i%len(key)]
}

// xorKeystream XORs each byte against the (cyclically repeated) key. Its
// own inverse: XOR is involutive given the same keystream.
func xorKeystream(src, key []byte) []byte {
	out := make([]byte, len(src))
	for i, b := range src {
		out[i] = b ^ keyByte(key, i)
	}
	return out
}

func addKeystream(src, key []byte) []byte {
	out := make([]byte, len(src))
	for i, b := range src {
		out[i] = b + keyByte(key, i)
	}
	return out
}

func subKeystream(src, key []byte) []byte {
	out := make([]byte, len(src))
	for i, b := range src {
		out[i] = b - keyByte(key, i)
	}
	return out
}

func rotateLeft(n uint) TransformFunc {
	return func(src, _ []byte) []byte {
		out := make([]byte, len(src))
		for i, b := range src {
			out[i] = b<<n | b>>(8-n)
		}
		return out
	}
}

func rotateRight(n uint) TransformFunc {
	return func(src, _ []byte) []byte {
		out := make([]byte, len(src))
		for i, b := range src {
			out[i] = b>>n | b<<(8-n)
		}
		return out
	}
}

// byteReverse reverses the order of the whole buffer; applying it twice
// restores the original order.
func byteReverse(src, _ []byte) []byte {
	out := make([]byte, len(src))
	n := len(src)
	for i, b := range src {
		out[n-1-i] = b
	}
	return out
}

// nibbleSwap exchanges the high and low nibble of every byte; an
// involution since swapping twice returns the original nibble order.
func nibbleSwap(src, _ []byte) []byte {
	out := make([]byte, len(src))
	for i, b := range src {
		out[i] = b<<4 | b>>4
	}
	return out
}

// pairSwap exchanges adjacent byte pairs (0<->1, 2<->3, ...). A trailing
// unpaired byte at odd length is left untouched, so the function is its
// own inverse regardless of buffer length parity.
func pairSwap(src, _ []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)
	for i := 0; i+1 < len(src); i += 2 {
		out[i], out[i+1] = out[i+1], out[i]
	}
	return out
}

// complement flips every bit; XOR 0xFF is its own inverse.
func complement(src, _ []byte) []byte {
	out := make([]byte, len(src))
	for i, b := range src {
		out[i] = ^b
	}
	return out
}

// sbox builds a keyed permutation of the 256 byte values using a
// Fisher-Yates shuffle seeded from key, grounded in the "quick
// pseudo-permutation" reversible-shuffle technique used for keyed byte
// substitution in the pack's transport-obfuscation examples.
func sbox(key []byte) (forward, inverse [256]byte) {
	for i := range forward {
		forward[i] = byte(i)
	}
	state := uint32(0x9E3779B9)
	for _, b := range key {
		state = state*2654435761 + uint32(b)
	}
	if len(key) == 0 {
		state = 0x2545F491
	}
	next := func() uint32 {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return state
	}
	for i := 255; i > 0; i-- {
		j := int(next() % uint32(i+1))
		forward[i], forward[j] = forward[j], forward[i]
	}
	for i, v := range forward {
		inverse[v] = byte(i)
	}
	return forward, inverse
}

func keyedSubstitution(src, key []byte) []byte {
	fwd, _ := sbox(key)
	out := make([]byte, len(src))
	for i, b := range src {
		out[i] = fwd[b]
	}
	return out
}

func keyedSubstitutionInverse(src, key []byte) []byte {
	_, inv := sbox(key)
	out := make([]byte, len(src))
	for i, b := range src {
		out[i] = inv[b]
	}
	return out
}

// blockDims picks a row count for keyedBlockTranspose/its inverse: the
// largest divisor of len(src) that is <= sqrt(len(src)) and >= 2, falling
// back to 1 (no-op reshape) when len(src) is prime or too small.
func blockDims(n int) int {
	if n < 4 {
		return 1
	}
	best := 1
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			best = d
		}
	}
	return best
}

func keyedBlockTranspose(src, _ []byte) []byte {
	n := len(src)
	rows := blockDims(n)
	if rows <= 1 {
		out := make([]byte, n)
		copy(out, src)
		return out
	}
	cols := n / rows
	out := make([]byte, n)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out[c*rows+r] = src[r*cols+c]
		}
	}
	return out
}

func keyedBlockTransposeInverse(src, _ []byte) []byte {
	n := len(src)
	rows := blockDims(n)
	if rows <= 1 {
		out := make([]byte, n)
		copy(out, src)
		return out
	}
	cols := n / rows
	out := make([]byte, n)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			out[r*cols+c] = src[c*rows+r]
		}
	}
	return out
}

const blockPermSize = 16

// blockPermutation builds a keyed permutation of the block indices for a
// buffer divided into blockPermSize-byte blocks (a short final partial
// block is left in place).
func blockPermutation(key []byte, nBlocks int) []int {
	perm := make([]int, nBlocks)
	for i := range perm {
		perm[i] = i
	}
	state := uint32(0x1B873593)
	for _, b := range key {
		state = state*2246822519 + uint32(b)
	}
	if len(key) == 0 {
		state = 0x85EBCA77
	}
	next := func() uint32 {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return state
	}
	for i := nBlocks - 1; i > 0; i-- {
		j := int(next() % uint32(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

func keyedBlockPermutation(src, key []byte) []byte {
	n := len(src)
	nBlocks := n / blockPermSize
	tail := n - nBlocks*blockPermSize
	out := make([]byte, n)
	if nBlocks == 0 {
		copy(out, src)
		return out
	}
	perm := blockPermutation(key, nBlocks)
	for dst, srcBlock := range perm {
		copy(out[dst*blockPermSize:(dst+1)*blockPermSize], src[srcBlock*blockPermSize:(srcBlock+1)*blockPermSize])
	}
	copy(out[nBlocks*blockPermSize:], src[nBlocks*blockPermSize:n])
	_ = tail
	return out
}

func keyedBlockPermutationInverse(src, key []byte) []byte {
	n := len(src)
	nBlocks := n / blockPermSize
	out := make([]byte, n)
	if nBlocks == 0 {
		copy(out, src)
		return out
	}
	perm := blockPermutation(key, nBlocks)
	for dst, srcBlock := range perm {
		copy(out[srcBlock*blockPermSize:(srcBlock+1)*blockPermSize], src[dst*blockPermSize:(dst+1)*blockPermSize])
	}
	copy(out[nBlocks*blockPermSize:], src[nBlocks*blockPermSize:n])
	return out
}

// cascadeXorForward chains each output byte into the next, CFB-style: the
// feedback term is the transform's own running output, so recovering the
// input requires the companion inverse below rather than re-applying this
// function.
func cascadeXorForward(src, key []byte) []byte {
	out := make([]byte, len(src))
	var prev byte
	for i, b := range src {
		out[i] = b ^ keyByte(key, i) ^ prev
		prev = out[i]
	}
	return out
}

// cascadeXorInverse undoes cascadeXorForward: the feedback term here is the
// previous *input* byte (already fully known ciphertext), not a value this
// function itself produced, which is what makes it a genuine inverse
// rather than the same formula re-applied.
func cascadeXorInverse(src, key []byte) []byte {
	out := make([]byte, len(src))
	var prev byte
	for i, b := range src {
		out[i] = b ^ keyByte(key, i) ^ prev
		prev = b
	}
	return out
}
