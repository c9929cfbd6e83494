// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestParseDerivationPath(t *testing.T) {
	tests := []struct {
		in   string
		want DerivationPath
		str  string
	}{
		{"m", DerivationPath{}, "m"},
		{"m/44'/60'/0'/0/0", DefaultPath(0), "m/44'/60'/0'/0/0"},
		{"m/44h/60H/0'/0/7", DefaultPath(7), "m/44'/60'/0'/0/7"},
		{" m / 44' / 0x3c' ", DerivationPath{Hardened(44), Hardened(60)}, "m/44'/60'"},
		{"m/2147483648", DerivationPath{Hardened(0)}, "m/0'"},
		{"m/2147483647'", DerivationPath{Hardened(HardenedOffset - 1)}, "m/2147483647'"},
		{"m/0/1/2", DerivationPath{Normal(0), Normal(1), Normal(2)}, "m/0/1/2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			is := is.New(t)
			p, err := ParseDerivationPath(tt.in)
			is.NoErr(err)
			is.Equal(len(p), len(tt.want))
			for i := range p {
				is.Equal(p[i], tt.want[i])
			}
			is.Equal(p.String(), tt.str)
		})
	}
}

func TestParseDerivationPath_Errors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrMalformedPath},
		{"44'/60'", ErrMalformedPath},
		{"M/44'", ErrMalformedPath},
		{"m/", ErrMalformedPath},
		{"m//0", ErrMalformedPath},
		{"m/abc", ErrMalformedPath},
		{"m/-1", ErrMalformedPath},
		{"m/1.5", ErrMalformedPath},
		{"m/'", ErrMalformedPath},
		{"m/0x", ErrMalformedPath},
		{"m/2147483648'", ErrIndexOutOfRange},
		{"m/4294967296", ErrIndexOutOfRange},
		{"m/0x1ffffffff", ErrIndexOutOfRange},
		{"m" + strings.Repeat("/0", maxDepth+1), ErrDepthExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			is := is.New(t)
			p, err := ParseDerivationPath(tt.in)
			is.True(p == nil)
			is.True(errors.Is(err, tt.want))
			is.True(errors.Is(err, ErrInvalidDerivation))
		})
	}
}

func TestParseDerivationPath_MaxDepth(t *testing.T) {
	is := is.New(t)
	p, err := ParseDerivationPath("m" + strings.Repeat("/1", maxDepth))
	is.NoErr(err)
	is.Equal(len(p), maxDepth)
}

func TestPathComponent_Value(t *testing.T) {
	is := is.New(t)
	is.Equal(Hardened(44).Value(), uint32(0x8000002c))
	is.Equal(Normal(5).Value(), uint32(5))
	is.Equal(componentFromValue(0x8000002c), Hardened(44))
}

func TestDerivationPath_Helpers(t *testing.T) {
	is := is.New(t)
	is.Equal(DefaultBasePath.String(), "m/44'/60'/0'/0")
	is.Equal(AccountPath(3).String(), "m/44'/60'/3'")
	is.Equal(DefaultPath(42).String(), "m/44'/60'/0'/0/42")

	// Child must not alias the receiver.
	a := DefaultBasePath.Child(Normal(1))
	b := DefaultBasePath.Child(Normal(2))
	is.Equal(a.String(), "m/44'/60'/0'/0/1")
	is.Equal(b.String(), "m/44'/60'/0'/0/2")
	is.Equal(len(DefaultBasePath), 4)
}

func TestDerivationPath_JSON(t *testing.T) {
	is := is.New(t)

	type doc struct {
		Path DerivationPath `json:"path"`
	}
	b, err := json.Marshal(doc{Path: DefaultPath(1)})
	is.NoErr(err)
	is.Equal(string(b), `{"path":"m/44'/60'/0'/0/1"}`)

	var d doc
	is.NoErr(json.Unmarshal([]byte(`{"path":"m/44h/60h/0h/0/9"}`), &d))
	is.Equal(d.Path.String(), "m/44'/60'/0'/0/9")

	err = json.Unmarshal([]byte(`{"path":"x/1"}`), &d)
	is.True(errors.Is(err, ErrMalformedPath))
}
