// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Key sizes in bytes.
const (
	PrivateKeySize            = 32
	CompressedPublicKeySize   = 33
	UncompressedPublicKeySize = 65
	uncompressedPrefix        = 0x04
)

// decodeHex decodes s with or without a 0x prefix.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	} else {
		s = "0x" + s[2:]
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return b, nil
}

// EncodePrivateKey renders a private key as 0x-prefixed lowercase hex.
func EncodePrivateKey(priv []byte) string {
	return hexutil.Encode(priv)
}

// DecodePrivateKey parses a 32-byte private key from hex. The 0x prefix is
// optional. The scalar must lie in [1, n-1].
func DecodePrivateKey(s string) ([]byte, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	if len(b) != PrivateKeySize {
		Zero(b)
		return nil, fmt.Errorf("%w: private key has %d bytes, want %d", ErrInvalidKeyLength, len(b), PrivateKeySize)
	}
	if !validPrivateKey(b) {
		Zero(b)
		return nil, ErrInvalidPrivateKey
	}
	return b, nil
}

func validPrivateKey(priv []byte) bool {
	if len(priv) != PrivateKeySize {
		return false
	}
	var k btcec.ModNScalar
	overflow := k.SetByteSlice(priv)
	ok := !overflow && !k.IsZero()
	k.Zero()
	return ok
}

// PublicKeyFromPrivate computes the secp256k1 public key of priv, either
// compressed (33 bytes) or uncompressed (65 bytes, 0x04 prefix).
func PublicKeyFromPrivate(priv []byte, compressed bool) ([]byte, error) {
	if len(priv) != PrivateKeySize {
		return nil, fmt.Errorf("%w: private key has %d bytes, want %d", ErrInvalidKeyLength, len(priv), PrivateKeySize)
	}
	if !validPrivateKey(priv) {
		return nil, ErrInvalidPrivateKey
	}
	sk, pk := btcec.PrivKeyFromBytes(priv)
	defer sk.Zero()
	if compressed {
		return pk.SerializeCompressed(), nil
	}
	return pk.SerializeUncompressed(), nil
}

// EncodePublicKey renders a public key as 0x-prefixed lowercase hex.
func EncodePublicKey(pub []byte) string {
	return hexutil.Encode(pub)
}

// DecodePublicKey parses a compressed or uncompressed public key from hex
// and checks that it is a point on the curve.
func DecodePublicKey(s string) ([]byte, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	switch len(b) {
	case CompressedPublicKeySize:
		if b[0] != 0x02 && b[0] != 0x03 {
			return nil, fmt.Errorf("%w: bad prefix 0x%02x", ErrInvalidPublicKey, b[0])
		}
	case UncompressedPublicKeySize:
		if b[0] != uncompressedPrefix {
			return nil, fmt.Errorf("%w: bad prefix 0x%02x", ErrInvalidPublicKey, b[0])
		}
	default:
		return nil, fmt.Errorf("%w: public key has %d bytes", ErrInvalidKeyLength, len(b))
	}
	if _, err := btcec.ParsePubKey(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return b, nil
}

// uncompress returns the 65-byte form of a 33- or 65-byte public key.
func uncompress(pub []byte) ([]byte, error) {
	if len(pub) != CompressedPublicKeySize && len(pub) != UncompressedPublicKeySize {
		return nil, fmt.Errorf("%w: public key has %d bytes", ErrInvalidKeyLength, len(pub))
	}
	pk, err := btcec.ParsePubKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return pk.SerializeUncompressed(), nil
}
