// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	minSeedLen = 16
	maxSeedLen = 64
)

// masterHMACKey is the fixed HMAC key BIP32 uses to turn a seed into the
// master node.
var masterHMACKey = []byte("Bitcoin seed")

// ExtendedKey is a node of the BIP32 tree: key material plus chain code,
// depth, parent fingerprint and child number. A private node holds the
// 32-byte scalar; a public node holds the 33-byte compressed point.
//
// Nodes are immutable once built and can be shared between goroutines.
// Nodes carry no pointer to their parent.
type ExtendedKey struct {
	key        []byte
	pubKey     []byte
	chainCode  []byte
	parentFP   [4]byte
	depth      uint8
	childIndex uint32
	isPrivate  bool
}

func newPrivateNode(priv, chainCode []byte, parentFP [4]byte, depth uint8, childIndex uint32) *ExtendedKey {
	sk, pk := btcec.PrivKeyFromBytes(priv)
	sk.Zero()
	return &ExtendedKey{
		key:        priv,
		pubKey:     pk.SerializeCompressed(),
		chainCode:  chainCode,
		parentFP:   parentFP,
		depth:      depth,
		childIndex: childIndex,
		isPrivate:  true,
	}
}

func newPublicNode(pub, chainCode []byte, parentFP [4]byte, depth uint8, childIndex uint32) *ExtendedKey {
	return &ExtendedKey{
		key:        pub,
		pubKey:     pub,
		chainCode:  chainCode,
		parentFP:   parentFP,
		depth:      depth,
		childIndex: childIndex,
	}
}

// hmacSHA512 returns HMAC-SHA512(key, data...).
func hmacSHA512(key []byte, data ...[]byte) []byte {
	mac := hmac.New(sha512.New, key)
	for _, d := range data {
		mac.Write(d)
	}
	return mac.Sum(nil)
}

// NewMaster derives the root node from a seed: the left half of
// HMAC-SHA512("Bitcoin seed", seed) is the private key and the right half
// the chain code.
func NewMaster(seed []byte) (*ExtendedKey, error) {
	if len(seed) < minSeedLen || len(seed) > maxSeedLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidSeedLength, len(seed))
	}

	lr := hmacSHA512(masterHMACKey, seed)
	defer Zero(lr)

	var k btcec.ModNScalar
	overflow := k.SetByteSlice(lr[:32])
	invalid := overflow || k.IsZero()
	k.Zero()
	if invalid {
		return nil, ErrInvalidChildKey
	}

	priv := append([]byte(nil), lr[:32]...)
	chainCode := append([]byte(nil), lr[32:]...)
	return newPrivateNode(priv, chainCode, [4]byte{}, 0, 0), nil
}

// Child derives the child at c.
//
// Hardened children hash 0x00 || k_par || index; normal children hash
// K_par || index. With I = HMAC-SHA512(c_par, data), a private child is
// (I_L + k_par) mod n and a public child is I_L*G + K_par; I_R is the new
// chain code. ErrInvalidChildKey is returned when I_L >= n or the result is
// zero or the point at infinity.
func (k *ExtendedKey) Child(c PathComponent) (*ExtendedKey, error) {
	if k.depth == maxDepth {
		return nil, ErrDepthExceeded
	}
	if c.Index >= HardenedOffset {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, c.Index)
	}
	if c.Hardened && !k.isPrivate {
		return nil, ErrHardenedFromPublic
	}

	data := make([]byte, 37)
	defer Zero(data)
	if c.Hardened {
		copy(data[1:33], k.key)
	} else {
		copy(data[:33], k.pubKey)
	}
	binary.BigEndian.PutUint32(data[33:], c.Value())

	lr := hmacSHA512(k.chainCode, data)
	defer Zero(lr)

	var il btcec.ModNScalar
	defer il.Zero()
	if il.SetByteSlice(lr[:32]) {
		return nil, ErrInvalidChildKey
	}

	chainCode := append([]byte(nil), lr[32:]...)
	parentFP := k.fingerprint()

	if k.isPrivate {
		var parent btcec.ModNScalar
		parent.SetByteSlice(k.key)
		il.Add(&parent)
		parent.Zero()
		if il.IsZero() {
			return nil, ErrInvalidChildKey
		}
		b := il.Bytes()
		priv := append([]byte(nil), b[:]...)
		Zero(b[:])
		return newPrivateNode(priv, chainCode, parentFP, k.depth+1, c.Value()), nil
	}

	parentPub, err := btcec.ParsePubKey(k.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	var ilPoint, parentPoint, sum btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&il, &ilPoint)
	parentPub.AsJacobian(&parentPoint)
	btcec.AddNonConst(&ilPoint, &parentPoint, &sum)
	if sum.Z.IsZero() {
		return nil, ErrInvalidChildKey
	}
	sum.ToAffine()
	pub := btcec.NewPublicKey(&sum.X, &sum.Y).SerializeCompressed()
	return newPublicNode(pub, chainCode, parentFP, k.depth+1, c.Value()), nil
}

// DeriveChild derives one child of parent; hardened selects the 2^31 offset.
func DeriveChild(parent *ExtendedKey, index uint32, hardened bool) (*ExtendedKey, error) {
	return parent.Child(PathComponent{Index: index, Hardened: hardened})
}

// Derive walks path starting from k. Intermediate nodes are wiped as soon
// as their child exists.
func (k *ExtendedKey) Derive(path DerivationPath) (*ExtendedKey, error) {
	node := k
	for i, c := range path {
		child, err := node.Child(c)
		if node != k {
			node.Zero()
		}
		if err != nil {
			return nil, fmt.Errorf("could not derive %s at component %d: %w", path, i, err)
		}
		node = child
	}
	return node, nil
}

// DerivePath derives the node at path from seed.
func DerivePath(seed []byte, path DerivationPath) (*ExtendedKey, error) {
	master, err := NewMaster(seed)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return master, nil
	}
	defer master.Zero()
	return master.Derive(path)
}

func (k *ExtendedKey) fingerprint() [4]byte {
	var fp [4]byte
	copy(fp[:], btcutil.Hash160(k.pubKey)[:4])
	return fp
}

// Fingerprint returns the first four bytes of HASH160 of the public key,
// the value children store as their parent fingerprint.
func (k *ExtendedKey) Fingerprint() uint32 {
	fp := k.fingerprint()
	return binary.BigEndian.Uint32(fp[:])
}

// ParentFingerprint returns the parent's fingerprint, zero for the master.
func (k *ExtendedKey) ParentFingerprint() uint32 {
	return binary.BigEndian.Uint32(k.parentFP[:])
}

// Depth returns the number of derivation steps from the master node.
func (k *ExtendedKey) Depth() uint8 {
	return k.depth
}

// ChildIndex returns the child number including the hardened offset.
func (k *ExtendedKey) ChildIndex() uint32 {
	return k.childIndex
}

// ChainCode returns a copy of the chain code.
func (k *ExtendedKey) ChainCode() []byte {
	return append([]byte(nil), k.chainCode...)
}

// IsPrivate reports whether k holds private key material.
func (k *ExtendedKey) IsPrivate() bool {
	return k.isPrivate
}

// PrivateKeyBytes returns a copy of the 32-byte private key, or nil for a
// public node.
func (k *ExtendedKey) PrivateKeyBytes() []byte {
	if !k.isPrivate {
		return nil
	}
	return append([]byte(nil), k.key...)
}

// PublicKeyBytes returns a copy of the compressed 33-byte public key.
func (k *ExtendedKey) PublicKeyBytes() []byte {
	return append([]byte(nil), k.pubKey...)
}

// Neuter returns the public-only counterpart of k.
func (k *ExtendedKey) Neuter() *ExtendedKey {
	if !k.isPrivate {
		return k
	}
	pub := append([]byte(nil), k.pubKey...)
	return newPublicNode(pub, k.ChainCode(), k.parentFP, k.depth, k.childIndex)
}

// Zero wipes the key material and chain code. k must not be used afterwards.
func (k *ExtendedKey) Zero() {
	if k.isPrivate {
		Zero(k.key)
	}
	Zero(k.chainCode)
}

// String serialises k as a mainnet xprv or xpub.
func (k *ExtendedKey) String() string {
	version := chaincfg.MainNetParams.HDPublicKeyID[:]
	if k.isPrivate {
		version = chaincfg.MainNetParams.HDPrivateKeyID[:]
	}
	return hdkeychain.NewExtendedKey(version, k.key, k.chainCode, k.parentFP[:],
		k.depth, k.childIndex, k.isPrivate).String()
}

// ParseExtendedKey parses a mainnet xprv or xpub.
func ParseExtendedKey(s string) (*ExtendedKey, error) {
	parsed, err := hdkeychain.NewKeyFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExtendedKey, err)
	}
	if !parsed.IsForNet(&chaincfg.MainNetParams) {
		return nil, fmt.Errorf("%w: not a mainnet key", ErrInvalidExtendedKey)
	}

	var parentFP [4]byte
	binary.BigEndian.PutUint32(parentFP[:], parsed.ParentFingerprint())

	if parsed.IsPrivate() {
		sk, err := parsed.ECPrivKey()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidExtendedKey, err)
		}
		priv := sk.Serialize()
		sk.Zero()
		return newPrivateNode(priv, parsed.ChainCode(), parentFP, parsed.Depth(), parsed.ChildIndex()), nil
	}

	pk, err := parsed.ECPubKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExtendedKey, err)
	}
	return newPublicNode(pk.SerializeCompressed(), parsed.ChainCode(), parentFP, parsed.Depth(), parsed.ChildIndex()), nil
}
