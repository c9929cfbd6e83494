// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/matryer/is"
)

// EIP-55 reference addresses.
var eip55Vectors = []string{
	"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
	"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
}

func TestToChecksumAddress(t *testing.T) {
	for _, want := range eip55Vectors {
		t.Run(want, func(t *testing.T) {
			is := is.New(t)
			for _, in := range []string{want, strings.ToLower(want), "0x" + strings.ToUpper(want[2:]), want[2:]} {
				got, err := ToChecksumAddress(in)
				is.NoErr(err)
				is.Equal(got, want)
			}
			is.True(IsChecksumAddress(want))
			is.True(IsValidAddress(want))
			is.Equal(want, common.HexToAddress(want).Hex())
		})
	}
}

func TestParseAddress(t *testing.T) {
	is := is.New(t)

	b, err := ParseAddress(eip55Vectors[0])
	is.NoErr(err)
	is.Equal(len(b), AddressLength)

	// All-lowercase and all-uppercase input carries no checksum.
	_, err = ParseAddress(strings.ToLower(eip55Vectors[0]))
	is.NoErr(err)
	_, err = ParseAddress("0x" + strings.ToUpper(eip55Vectors[0][2:]))
	is.NoErr(err)

	// Swap the case of one letter.
	bad := []byte(eip55Vectors[0])
	bad[3] ^= 0x20
	_, err = ParseAddress(string(bad))
	is.True(errors.Is(err, ErrInvalidAddress))
	is.True(!IsValidAddress(string(bad)))
	is.True(!IsChecksumAddress(strings.ToLower(eip55Vectors[0])))

	for _, s := range []string{"", "0x", "0x1234", "0xzzAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", eip55Vectors[0] + "00"} {
		_, err := ParseAddress(s)
		is.True(errors.Is(err, ErrInvalidAddress))
		is.True(errors.Is(err, ErrInvalidEncoding))
	}
}

func TestAddressFromPublicKey(t *testing.T) {
	is := is.New(t)

	// Private key 1 maps to the generator point.
	priv := make([]byte, 32)
	priv[31] = 1

	compressed, err := PublicKeyFromPrivate(priv, true)
	is.NoErr(err)
	is.Equal(EncodePublicKey(compressed), "0x0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")

	uncompressed, err := PublicKeyFromPrivate(priv, false)
	is.NoErr(err)
	is.Equal(len(uncompressed), UncompressedPublicKeySize)
	is.Equal(uncompressed[0], byte(0x04))

	a, err := AddressFromPublicKey(compressed)
	is.NoErr(err)
	b, err := AddressFromPublicKey(uncompressed)
	is.NoErr(err)
	is.Equal(a, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")
	is.Equal(a, b)

	c, err := AddressFromPrivateKeyBytes(priv)
	is.NoErr(err)
	is.Equal(c, a)
}

// TestAddressFromPublicKey_ChecksumRoundTrip lower-cases derived
// addresses and checks the checksum encoding restores them.
func TestAddressFromPublicKey_ChecksumRoundTrip(t *testing.T) {
	is := is.New(t)
	for n := 0; n < 50; n++ {
		priv, err := NewEntropy(EntropyBits256)
		is.NoErr(err)
		pub, err := PublicKeyFromPrivate(priv, true)
		is.NoErr(err)
		addr, err := AddressFromPublicKey(pub)
		is.NoErr(err)

		again, err := ToChecksumAddress(strings.ToLower(addr))
		is.NoErr(err)
		is.Equal(again, addr)
		is.Equal(addr, common.HexToAddress(addr).Hex())

		key, err := crypto.ToECDSA(priv)
		is.NoErr(err)
		is.Equal(addr, crypto.PubkeyToAddress(key.PublicKey).Hex())

		raw, err := ParseAddress(addr)
		is.NoErr(err)
		is.Equal(raw, common.HexToAddress(addr).Bytes())
	}
}

func TestToChecksumAddress_Invalid(t *testing.T) {
	for _, s := range []string{"", "0x", "0x1234", "0xzzAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", eip55Vectors[0] + "00"} {
		t.Run(s, func(t *testing.T) {
			is := is.New(t)
			_, err := ToChecksumAddress(s)
			is.True(errors.Is(err, ErrInvalidAddress))
			is.True(!IsChecksumAddress(s))
		})
	}
}

func TestAddressFromPublicKey_Errors(t *testing.T) {
	is := is.New(t)

	_, err := AddressFromPublicKey(make([]byte, 20))
	is.True(errors.Is(err, ErrInvalidKeyLength))

	// x is larger than the field prime.
	notOnCurve := append([]byte{0x02}, bytes.Repeat([]byte{0xff}, 32)...)
	_, err = AddressFromPublicKey(notOnCurve)
	is.True(errors.Is(err, ErrInvalidPublicKey))
}
