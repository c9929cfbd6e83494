// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressLength is the size of an Ethereum address in bytes.
const AddressLength = common.AddressLength

// AddressFromPublicKey returns the EIP-55 address of pub: the last 20 bytes
// of Keccak-256 over the 64-byte X||Y coordinates. Compressed keys are
// decompressed first.
func AddressFromPublicKey(pub []byte) (string, error) {
	full, err := uncompress(pub)
	if err != nil {
		return "", err
	}
	hash := crypto.Keccak256(full[1:])
	return common.BytesToAddress(hash[len(hash)-AddressLength:]).Hex(), nil
}

// AddressFromPrivateKeyBytes derives the address controlled by priv.
func AddressFromPrivateKeyBytes(priv []byte) (string, error) {
	pub, err := PublicKeyFromPrivate(priv, false)
	if err != nil {
		return "", err
	}
	return AddressFromPublicKey(pub)
}

// ParseAddress decodes a 40-digit hex address, with or without 0x, in any
// case. Mixed-case input must carry a valid EIP-55 checksum.
func ParseAddress(s string) ([]byte, error) {
	digits := trimHexPrefix(s)
	if len(digits) != 2*common.AddressLength {
		return nil, fmt.Errorf("%w: got %d hex digits", ErrInvalidAddress, len(digits))
	}
	if !common.IsHexAddress(s) {
		return nil, fmt.Errorf("%w: %q is not hex", ErrInvalidAddress, s)
	}
	addr := common.HexToAddress(s)
	if isMixedCase(digits) && addr.Hex()[2:] != digits {
		return nil, fmt.Errorf("%w: bad EIP-55 checksum", ErrInvalidAddress)
	}
	return addr.Bytes(), nil
}

// ToChecksumAddress re-renders any valid address in EIP-55 form.
func ToChecksumAddress(s string) (string, error) {
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s).Hex(), nil
}

// IsValidAddress reports whether s parses as an address. All-lowercase and
// all-uppercase input is accepted without a checksum.
func IsValidAddress(s string) bool {
	_, err := ParseAddress(s)
	return err == nil
}

// IsChecksumAddress reports whether s is exactly the EIP-55 rendering of
// its own bytes.
func IsChecksumAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") {
		return false
	}
	canonical, err := ToChecksumAddress(s)
	return err == nil && canonical == s
}

func trimHexPrefix(s string) string {
	return strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}
