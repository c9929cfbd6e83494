// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Supported entropy sizes in bits.
const (
	EntropyBits128 = 128 // 12 words
	EntropyBits256 = 256 // 24 words

	minEntropyBits = 128
	maxEntropyBits = 256
)

// randReader is swapped out by tests to simulate a failing source.
var randReader io.Reader = rand.Reader

// NewEntropy returns bits/8 bytes read from the system's secure random
// source. Valid sizes are 128 to 256 bits in steps of 32; 128 and 256 are
// the sizes used for 12 and 24 word phrases.
//
// A short read is never papered over with a weaker source: it surfaces as
// ErrEntropyFailure.
func NewEntropy(bits int) ([]byte, error) {
	if !validEntropyBits(bits) {
		return nil, fmt.Errorf("%w: got %d bits", ErrInvalidEntropyLength, bits)
	}

	entropy := make([]byte, bits/8)
	if _, err := io.ReadFull(randReader, entropy); err != nil {
		Zero(entropy)
		return nil, fmt.Errorf("%w: %v", ErrEntropyFailure, err)
	}
	return entropy, nil
}

func validEntropyBits(bits int) bool {
	return bits >= minEntropyBits && bits <= maxEntropyBits && bits%32 == 0
}

// Zero overwrites b with zeros. It is used to wipe seeds, entropy and key
// material once they are no longer needed.
func Zero(b []byte) {
	clear(b)
}
