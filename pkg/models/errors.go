package models

import "errors"

// Registry errors.
var (
	ErrUnknownTransform = errors.New("unknown transform id")
	ErrInverseMissing   = errors.New("inverse transform missing from registry")
)

// Pipeline errors.
var (
	ErrTruncatedCiphertext = errors.New("truncated ciphertext")
	ErrEmptySequence       = errors.New("sequence must contain at least one transform")
	ErrArgumentOutOfRange  = errors.New("argument out of range")
	ErrReversibilityFailed = errors.New("decrypt(encrypt(x)) != x for candidate sequence")
)

// Classification errors.
var ErrUnknownClassification = errors.New("unknown classification")

// Persistence / verification errors.
var (
	ErrCutListMalformed    = errors.New("cutlist file malformed")
	ErrStateFileCorrupt    = errors.New("state file corrupt")
	ErrCutListInconsistent = errors.New("cutlist three-way verification mismatch")
)

// Sequence persistence errors.
var (
	ErrSequenceSyntax     = errors.New("malformed sequence text")
	ErrSequenceUnresolved = errors.New("transform name does not resolve uniquely")
)
