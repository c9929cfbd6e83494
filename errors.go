// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Every error returned by this package
// matches exactly one of these with errors.Is.
var (
	// ErrInvalidMnemonic covers unknown words, bad checksums and wrong word counts.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	// ErrInvalidDerivation covers malformed paths, out-of-range indices and
	// derived keys that fall outside the curve order.
	ErrInvalidDerivation = errors.New("invalid derivation")
	// ErrInvalidEncoding covers malformed hex and wrong byte lengths.
	ErrInvalidEncoding = errors.New("invalid encoding")
	// ErrEntropyFailure is returned when the system randomness source fails.
	ErrEntropyFailure = errors.New("could not read entropy")
	// ErrPassphraseEncoding is returned for text that is not valid UTF-8.
	ErrPassphraseEncoding = errors.New("text is not valid UTF-8")
)

// Mnemonic errors.
var (
	ErrWordCount        = fmt.Errorf("%w: word count must be 12, 15, 18, 21 or 24", ErrInvalidMnemonic)
	ErrUnknownWord      = fmt.Errorf("%w: word is not in the wordlist", ErrInvalidMnemonic)
	ErrChecksumMismatch = fmt.Errorf("%w: checksum mismatch", ErrInvalidMnemonic)
)

// Derivation errors.
var (
	ErrMalformedPath      = fmt.Errorf("%w: path must look like m/44'/60'/0'/0/0", ErrInvalidDerivation)
	ErrIndexOutOfRange    = fmt.Errorf("%w: index out of range", ErrInvalidDerivation)
	ErrDepthExceeded      = fmt.Errorf("%w: cannot derive more than 255 levels", ErrInvalidDerivation)
	ErrHardenedFromPublic = fmt.Errorf("%w: cannot derive a hardened child from a public key", ErrInvalidDerivation)
	ErrInvalidChildKey    = fmt.Errorf("%w: derived key is zero or exceeds the curve order", ErrInvalidDerivation)
	ErrInvalidSeedLength  = fmt.Errorf("%w: seed must be between 16 and 64 bytes", ErrInvalidDerivation)
)

// Encoding errors.
var (
	ErrInvalidHex           = fmt.Errorf("%w: malformed hex", ErrInvalidEncoding)
	ErrInvalidKeyLength     = fmt.Errorf("%w: wrong key length", ErrInvalidEncoding)
	ErrInvalidPrivateKey    = fmt.Errorf("%w: private key is zero or exceeds the curve order", ErrInvalidEncoding)
	ErrInvalidPublicKey     = fmt.Errorf("%w: public key is not a point on secp256k1", ErrInvalidEncoding)
	ErrInvalidAddress       = fmt.Errorf("%w: address must be 20 bytes of hex", ErrInvalidEncoding)
	ErrInvalidEntropyLength = fmt.Errorf("%w: entropy must be 128 to 256 bits in steps of 32", ErrInvalidEncoding)
	ErrInvalidExtendedKey   = fmt.Errorf("%w: malformed extended key", ErrInvalidEncoding)
	ErrUnsupportedLanguage  = fmt.Errorf("%w: unsupported wordlist language", ErrInvalidEncoding)
)
