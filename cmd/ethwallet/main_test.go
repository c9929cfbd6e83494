package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/complex-gh/ethwallet"
	"github.com/matryer/is"
)

func TestEmit(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })

	is.NoErr(emit(ethwallet.ValidationResult{Valid: true, WordCount: 12}, nil))
	is.Equal(strings.TrimSpace(buf.String()), `{"success":true,"data":{"valid":true,"wordCount":12}}`)

	buf.Reset()
	err := emit(nil, ethwallet.ErrWordCount)
	is.True(errors.Is(err, errReported))

	var env ethwallet.Envelope
	is.NoErr(json.Unmarshal(buf.Bytes(), &env))
	is.True(!env.Success)
	is.Equal(env.Error, ethwallet.ErrWordCount.Error())
}

func TestReadSecret_Value(t *testing.T) {
	is := is.New(t)
	s, err := readSecret("abandon about", "unused: ")
	is.NoErr(err)
	is.Equal(s, "abandon about")
}

func TestRenderBlock(t *testing.T) {
	is := is.New(t)
	var b strings.Builder
	renderBlock(&b, baseStyle, 40, "could not derive")
	is.True(strings.Contains(b.String(), "could not derive"))
	is.True(strings.HasSuffix(b.String(), "\n"))
}
