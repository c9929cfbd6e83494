// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// HardenedOffset is added to an index to mark hardened derivation.
const HardenedOffset uint32 = 0x80000000

// maxDepth is the deepest node BIP32 can serialise.
const maxDepth = 255

// PathComponent is one step of a derivation path: an index below 2^31 that
// is either hardened or normal.
type PathComponent struct {
	Index    uint32
	Hardened bool
}

// Hardened returns the hardened component for index i.
func Hardened(i uint32) PathComponent {
	return PathComponent{Index: i, Hardened: true}
}

// Normal returns the non-hardened component for index i.
func Normal(i uint32) PathComponent {
	return PathComponent{Index: i}
}

// Value returns the 32-bit child number used on the wire.
func (c PathComponent) Value() uint32 {
	if c.Hardened {
		return c.Index + HardenedOffset
	}
	return c.Index
}

func (c PathComponent) String() string {
	if c.Hardened {
		return strconv.FormatUint(uint64(c.Index), 10) + "'"
	}
	return strconv.FormatUint(uint64(c.Index), 10)
}

func componentFromValue(v uint32) PathComponent {
	if v >= HardenedOffset {
		return Hardened(v - HardenedOffset)
	}
	return Normal(v)
}

// DerivationPath is an absolute path from the master node.
//
// BIP44 gives it the shape m / purpose' / coin_type' / account' / change /
// address_index, with coin type 60' for Ethereum.
type DerivationPath []PathComponent

// DefaultBasePath is m/44'/60'/0'/0; addresses are its normal children.
var DefaultBasePath = DerivationPath{Hardened(44), Hardened(60), Hardened(0), Normal(0)}

// DefaultPath returns m/44'/60'/0'/0/index.
func DefaultPath(index uint32) DerivationPath {
	return DefaultBasePath.Child(Normal(index))
}

// AccountPath returns m/44'/60'/account'.
func AccountPath(account uint32) DerivationPath {
	return DerivationPath{Hardened(44), Hardened(60), Hardened(account)}
}

// Child returns a copy of p with c appended.
func (p DerivationPath) Child(c PathComponent) DerivationPath {
	out := make(DerivationPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, c)
}

// ParseDerivationPath parses paths such as "m/44'/60'/0'/0/0". A trailing
// ', h or H marks a hardened component; components may be decimal or
// 0x-prefixed hex, and whitespace around them is ignored. An unmarked value
// of 2^31 or more is taken as already carrying the hardened offset. "m"
// alone is the master node.
func ParseDerivationPath(path string) (DerivationPath, error) {
	components := strings.Split(path, "/")
	if strings.TrimSpace(components[0]) != "m" {
		return nil, fmt.Errorf("%w: %q does not start with m", ErrMalformedPath, path)
	}
	components = components[1:]
	if len(components) > maxDepth {
		return nil, fmt.Errorf("%w: %d components", ErrDepthExceeded, len(components))
	}

	result := make(DerivationPath, 0, len(components))
	for _, component := range components {
		c, err := parseComponent(strings.TrimSpace(component))
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// MustParseDerivationPath is like ParseDerivationPath but panics on error.
func MustParseDerivationPath(path string) DerivationPath {
	p, err := ParseDerivationPath(path)
	if err != nil {
		panic(err)
	}
	return p
}

func parseComponent(s string) (PathComponent, error) {
	hardened := false
	if n := len(s); n > 0 && (s[n-1] == '\'' || s[n-1] == 'h' || s[n-1] == 'H') {
		hardened = true
		s = strings.TrimSpace(s[:n-1])
	}
	if s == "" {
		return PathComponent{}, fmt.Errorf("%w: empty component", ErrMalformedPath)
	}

	var (
		v   uint64
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 32)
	} else {
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return PathComponent{}, fmt.Errorf("%w: %s", ErrIndexOutOfRange, s)
		}
		return PathComponent{}, fmt.Errorf("%w: invalid component %q", ErrMalformedPath, s)
	}

	if hardened {
		if uint32(v) >= HardenedOffset {
			return PathComponent{}, fmt.Errorf("%w: hardened index %d must be below 2^31", ErrIndexOutOfRange, v)
		}
		return Hardened(uint32(v)), nil
	}
	return componentFromValue(uint32(v)), nil
}

// String renders p in canonical form with ' for hardened components.
func (p DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, c := range p {
		b.WriteByte('/')
		b.WriteString(c.String())
	}
	return b.String()
}

// MarshalJSON encodes p as its canonical string.
func (p DerivationPath) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a path string.
func (p *DerivationPath) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDerivationPath(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
