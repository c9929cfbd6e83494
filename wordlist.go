// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tyler-smith/go-bip39/wordlists"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/unicode/norm"
)

// WordlistSize is the number of words in every BIP39 wordlist.
const WordlistSize = 2048

// ideographicSpace separates Japanese mnemonic words.
const ideographicSpace = "\u3000"

// Wordlist is an immutable BIP39 wordlist with a reverse index. It is safe
// for concurrent use.
type Wordlist struct {
	language  string
	words     []string
	index     map[string]int
	separator string
}

// NewWordlist builds a Wordlist from exactly 2048 distinct words. Words are
// indexed in NFKD form so accented input matches regardless of how it was
// composed.
func NewWordlist(name string, words []string, separator string) (*Wordlist, error) {
	if len(words) != WordlistSize {
		return nil, fmt.Errorf("wordlist %s has %d words, want %d", name, len(words), WordlistSize)
	}

	wl := &Wordlist{
		language:  name,
		words:     make([]string, len(words)),
		index:     make(map[string]int, len(words)),
		separator: separator,
	}
	for i, w := range words {
		key := norm.NFKD.String(w)
		if _, dup := wl.index[key]; dup {
			return nil, fmt.Errorf("wordlist %s has duplicate word %q", name, w)
		}
		wl.words[i] = w
		wl.index[key] = i
	}
	return wl, nil
}

func mustNewWordlist(name string, words []string, separator string) *Wordlist {
	wl, err := NewWordlist(name, words, separator)
	if err != nil {
		panic(err)
	}
	return wl
}

// English is the default wordlist.
var English = mustNewWordlist("english", wordlists.English, " ")

// Language returns the wordlist's name, e.g. "english".
func (wl *Wordlist) Language() string {
	return wl.language
}

// Separator returns the string placed between words of a phrase.
func (wl *Wordlist) Separator() string {
	return wl.separator
}

// Word returns the word at index i.
func (wl *Wordlist) Word(i int) (string, bool) {
	if i < 0 || i >= len(wl.words) {
		return "", false
	}
	return wl.words[i], true
}

// Index returns the position of word in the list. Matching is exact and
// case-sensitive.
func (wl *Wordlist) Index(word string) (int, bool) {
	i, ok := wl.index[norm.NFKD.String(word)]
	return i, ok
}

// Normalize collapses any run of whitespace in phrase to the list's
// separator and trims the ends.
func (wl *Wordlist) Normalize(phrase string) string {
	return strings.Join(strings.Fields(phrase), wl.separator)
}

func lazyWordlist(name string, words []string, separator string) func() (*Wordlist, error) {
	return sync.OnceValues(func() (*Wordlist, error) {
		return NewWordlist(name, words, separator)
	})
}

var (
	chineseSimplified  = lazyWordlist("chinese_simplified", wordlists.ChineseSimplified, " ")
	chineseTraditional = lazyWordlist("chinese_traditional", wordlists.ChineseTraditional, " ")
	czech              = lazyWordlist("czech", wordlists.Czech, " ")
	french             = lazyWordlist("french", wordlists.French, " ")
	italian            = lazyWordlist("italian", wordlists.Italian, " ")
	japanese           = lazyWordlist("japanese", wordlists.Japanese, ideographicSpace)
	korean             = lazyWordlist("korean", wordlists.Korean, " ")
	spanish            = lazyWordlist("spanish", wordlists.Spanish, " ")
	english            = func() (*Wordlist, error) { return English, nil }
)

var wordLists = map[language.Tag]func() (*Wordlist, error){
	language.Chinese:              chineseSimplified,
	language.SimplifiedChinese:    chineseSimplified,
	language.TraditionalChinese:   chineseTraditional,
	language.Czech:                czech,
	language.AmericanEnglish:      english,
	language.BritishEnglish:       english,
	language.English:              english,
	language.French:               french,
	language.Italian:              italian,
	language.Japanese:             japanese,
	language.Korean:               korean,
	language.Spanish:              spanish,
	language.EuropeanSpanish:      spanish,
	language.LatinAmericanSpanish: spanish,
}

func sanitizeLang(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

// WordlistForLanguage resolves a BCP 47 tag ("en", "zh-Hant") or an English
// language name ("japanese", "traditional chinese") to a wordlist.
func WordlistForLanguage(name string) (*Wordlist, error) {
	name = sanitizeLang(name)
	if name == "" {
		return English, nil
	}

	tag := language.Make(name)
	en := display.English.Languages()
	for t := range wordLists {
		if sanitizeLang(en.Name(t)) == name {
			tag = t
			break
		}
	}
	if tag == language.Und {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
	}

	load, ok := wordLists[tag]
	if !ok {
		base, _ := tag.Base()
		load, ok = wordLists[language.Make(base.String())]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
	}
	return load()
}
