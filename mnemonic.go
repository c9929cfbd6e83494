// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"
)

const bitsPerWord = 11

// validWordCounts maps mnemonic length to entropy size in bytes.
var validWordCounts = map[int]int{
	12: 16, // 128 bits
	15: 20, // 160 bits
	18: 24, // 192 bits
	21: 28, // 224 bits
	24: 32, // 256 bits
}

// EntropyToMnemonic encodes entropy as a phrase from the English wordlist.
func EntropyToMnemonic(entropy []byte) (string, error) {
	return English.EntropyToMnemonic(entropy)
}

// MnemonicToEntropy decodes an English phrase back to its entropy.
func MnemonicToEntropy(mnemonic string) ([]byte, error) {
	return English.MnemonicToEntropy(mnemonic)
}

// IsMnemonicValid reports whether mnemonic is a well-formed English phrase.
func IsMnemonicValid(mnemonic string) bool {
	return English.IsMnemonicValid(mnemonic)
}

// EntropyToMnemonic appends the first len(entropy)/4 bits of
// SHA-256(entropy) as a checksum and maps every 11-bit group of the result
// to a word.
func (wl *Wordlist) EntropyToMnemonic(entropy []byte) (string, error) {
	if !validEntropyBits(len(entropy) * 8) {
		return "", fmt.Errorf("%w: got %d bytes", ErrInvalidEntropyLength, len(entropy))
	}
	if wl.sharesBIP39List() {
		m, err := bip39.NewMnemonic(entropy)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidEntropyLength, err)
		}
		return m, nil
	}

	entBits := len(entropy) * 8
	csBits := entBits / 32
	checksum := sha256.Sum256(entropy)

	// csBits is at most 8, so one checksum byte covers it.
	buf := make([]byte, len(entropy)+1)
	defer Zero(buf)
	copy(buf, entropy)
	buf[len(entropy)] = checksum[0]

	words := make([]string, (entBits+csBits)/bitsPerWord)
	for i := range words {
		words[i] = wl.words[readBits(buf, i*bitsPerWord, bitsPerWord)]
	}
	return strings.Join(words, wl.separator), nil
}

// MnemonicToEntropy reverses EntropyToMnemonic. The word count is checked
// before any lookup or hashing happens.
func (wl *Wordlist) MnemonicToEntropy(mnemonic string) ([]byte, error) {
	words := strings.Fields(mnemonic)
	entLen, ok := validWordCounts[len(words)]
	if !ok {
		return nil, fmt.Errorf("%w: got %d", ErrWordCount, len(words))
	}
	if wl.sharesBIP39List() {
		return entropyFromBIP39(norm.NFKD.String(strings.Join(words, " ")))
	}

	totalBits := len(words) * bitsPerWord
	buf := make([]byte, (totalBits+7)/8)
	defer Zero(buf)
	for i, w := range words {
		idx, ok := wl.Index(w)
		if !ok {
			return nil, fmt.Errorf("%w: word %d", ErrUnknownWord, i+1)
		}
		writeBits(buf, i*bitsPerWord, bitsPerWord, idx)
	}

	entropy := make([]byte, entLen)
	copy(entropy, buf[:entLen])

	csBits := totalBits - entLen*8
	mask := byte(0xff) << uint(8-csBits)
	checksum := sha256.Sum256(entropy)
	if buf[entLen]&mask != checksum[0]&mask {
		Zero(entropy)
		return nil, ErrChecksumMismatch
	}
	return entropy, nil
}

// IsMnemonicValid reports whether MnemonicToEntropy would succeed.
func (wl *Wordlist) IsMnemonicValid(mnemonic string) bool {
	entropy, err := wl.MnemonicToEntropy(mnemonic)
	if err != nil {
		return false
	}
	Zero(entropy)
	return true
}

// sharesBIP39List reports whether go-bip39's process-wide wordlist is wl.
// Other lists go through the local codec since go-bip39 holds only one.
func (wl *Wordlist) sharesBIP39List() bool {
	return wl == English && slices.Equal(bip39.GetWordList(), wl.words)
}

// entropyFromBIP39 maps go-bip39 failures onto this package's errors. The
// unknown-word message from go-bip39 quotes the word, so it is dropped.
func entropyFromBIP39(mnemonic string) ([]byte, error) {
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	switch {
	case err == nil:
		return entropy, nil
	case errors.Is(err, bip39.ErrChecksumIncorrect):
		return nil, ErrChecksumMismatch
	case errors.Is(err, bip39.ErrInvalidMnemonic):
		return nil, ErrWordCount
	default:
		return nil, ErrUnknownWord
	}
}

// readBits returns the n-bit big-endian value starting at bit offset.
func readBits(buf []byte, offset, n int) int {
	v := 0
	for i := offset; i < offset+n; i++ {
		v = v<<1 | int(buf[i/8]>>(7-uint(i%8))&1)
	}
	return v
}

// writeBits stores the low n bits of v starting at bit offset.
func writeBits(buf []byte, offset, n, v int) {
	for i := 0; i < n; i++ {
		if v>>(n-1-i)&1 == 1 {
			bit := offset + i
			buf[bit/8] |= 1 << (7 - uint(bit%8))
		}
	}
}
