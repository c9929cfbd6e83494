// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

import (
	"crypto/sha512"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

// SeedSize is the length of a BIP39 seed in bytes.
const SeedSize = 64

const (
	seedIterations = 2048
	seedSaltPrefix = "mnemonic"
)

// NewSeed stretches a mnemonic and optional passphrase into a 64-byte seed
// with PBKDF2-HMAC-SHA512 (2048 rounds, salt "mnemonic"+passphrase). Both
// inputs are NFKD-normalised first. The phrase is not validated here; use
// MnemonicToEntropy for that.
func NewSeed(mnemonic, passphrase string) ([]byte, error) {
	if !utf8.ValidString(mnemonic) {
		return nil, fmt.Errorf("mnemonic: %w", ErrPassphraseEncoding)
	}
	if !utf8.ValidString(passphrase) {
		return nil, fmt.Errorf("passphrase: %w", ErrPassphraseEncoding)
	}

	password := norm.NFKD.Bytes([]byte(mnemonic))
	salt := norm.NFKD.Bytes([]byte(seedSaltPrefix + passphrase))
	defer Zero(password)
	defer Zero(salt)

	return pbkdf2.Key(password, salt, seedIterations, SeedSize, sha512.New), nil
}
