// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package ethwallet

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MaxRange is the largest batch DeriveRange accepts.
const MaxRange = 1000

// WalletRecord is the result of deriving one key pair.
//
// DerivationPath echoes the path as the caller wrote it; Path is its
// canonical rendering.
type WalletRecord struct {
	Address        string `json:"address"`
	PrivateKey     string `json:"privateKey"`
	PublicKey      string `json:"publicKey"`
	Mnemonic       string `json:"mnemonic,omitempty"`
	DerivationPath string `json:"derivationPath"`
	Path           string `json:"path"`
	// Index is set for records produced by DeriveChild and DeriveRange.
	Index *uint32 `json:"index,omitempty"`
}

// ValidationResult is returned by Validate.
type ValidationResult struct {
	Valid     bool `json:"valid"`
	WordCount int  `json:"wordCount"`
}

// KeyInfo is returned by AddressFromPrivateKey.
type KeyInfo struct {
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`
}

// AccountKeys holds the extended keys of a BIP44 account node.
type AccountKeys struct {
	Path string `json:"path"`
	XPrv string `json:"xprv"`
	XPub string `json:"xpub"`
}

// Options configures a Service. The zero value is usable.
type Options struct {
	// DerivationPath is used when a call does not name one. Defaults to
	// m/44'/60'/0'/0/0.
	DerivationPath DerivationPath
	// Strength is the entropy size in bits used when Generate gets 0.
	// Defaults to 128.
	Strength int
	// Passphrase is the optional BIP39 passphrase.
	Passphrase string
	// Wordlist defaults to English.
	Wordlist *Wordlist
	// UncompressedPublicKey selects 65-byte public keys in results.
	UncompressedPublicKey bool
	// Logger receives debug events; secrets are never logged.
	Logger *zerolog.Logger
}

// Service implements the wallet operations. It holds only configuration
// and is safe for concurrent use.
type Service struct {
	path         DerivationPath
	strength     int
	passphrase   string
	wordlist     *Wordlist
	uncompressed bool
	log          zerolog.Logger
}

// NewService validates opts and returns a Service.
func NewService(opts Options) (*Service, error) {
	s := &Service{
		path:         opts.DerivationPath,
		strength:     opts.Strength,
		passphrase:   opts.Passphrase,
		wordlist:     opts.Wordlist,
		uncompressed: opts.UncompressedPublicKey,
		log:          zerolog.Nop(),
	}
	if s.path == nil {
		s.path = DefaultPath(0)
	}
	if s.strength == 0 {
		s.strength = EntropyBits128
	}
	if !validEntropyBits(s.strength) {
		return nil, fmt.Errorf("%w: strength %d", ErrInvalidEntropyLength, s.strength)
	}
	if s.wordlist == nil {
		s.wordlist = English
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	return s, nil
}

// WithPassphrase returns a copy of s that uses passphrase for seed
// derivation.
func (s *Service) WithPassphrase(passphrase string) *Service {
	c := *s
	c.passphrase = passphrase
	return &c
}

func (s *Service) resolvePath(path string) (DerivationPath, error) {
	if strings.TrimSpace(path) == "" {
		return s.path, nil
	}
	return ParseDerivationPath(path)
}

// Generate creates a fresh mnemonic of the given strength (0 selects the
// configured default) and derives the key pair at path ("" selects the
// configured default).
func (s *Service) Generate(strength int, path string) (WalletRecord, error) {
	if strength == 0 {
		strength = s.strength
	}
	p, err := s.resolvePath(path)
	if err != nil {
		return WalletRecord{}, err
	}

	entropy, err := NewEntropy(strength)
	if err != nil {
		s.log.Debug().Str("op", "generate").Err(err).Msg("could not read entropy")
		return WalletRecord{}, err
	}
	defer Zero(entropy)

	mnemonic, err := s.wordlist.EntropyToMnemonic(entropy)
	if err != nil {
		return WalletRecord{}, err
	}

	rec, err := s.derive(mnemonic, p)
	if err != nil {
		s.log.Debug().Str("op", "generate").Stringer("path", p).Err(err).Msg("derivation failed")
		return WalletRecord{}, err
	}
	rec.Mnemonic = mnemonic
	if echo := strings.TrimSpace(path); echo != "" {
		rec.DerivationPath = echo
	}

	s.log.Debug().Str("op", "generate").Int("strength", strength).Stringer("path", p).
		Str("address", rec.Address).Msg("wallet generated")
	return rec, nil
}

// Restore validates mnemonic and derives the key pair at path ("" selects
// the configured default). Surrounding and repeated whitespace is ignored;
// the record carries the normalised phrase.
func (s *Service) Restore(mnemonic, path string) (WalletRecord, error) {
	p, err := s.resolvePath(path)
	if err != nil {
		return WalletRecord{}, err
	}
	phrase, err := s.checkMnemonic(mnemonic)
	if err != nil {
		s.log.Debug().Str("op", "restore").Err(err).Msg("rejected mnemonic")
		return WalletRecord{}, err
	}

	rec, err := s.derive(phrase, p)
	if err != nil {
		s.log.Debug().Str("op", "restore").Stringer("path", p).Err(err).Msg("derivation failed")
		return WalletRecord{}, err
	}
	rec.Mnemonic = phrase
	if echo := strings.TrimSpace(path); echo != "" {
		rec.DerivationPath = echo
	}

	s.log.Debug().Str("op", "restore").Stringer("path", p).Str("address", rec.Address).Msg("wallet restored")
	return rec, nil
}

// DeriveChild derives the key pair at m/44'/60'/0'/0/index.
func (s *Service) DeriveChild(mnemonic string, index uint32) (WalletRecord, error) {
	if index >= HardenedOffset {
		return WalletRecord{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	phrase, err := s.checkMnemonic(mnemonic)
	if err != nil {
		s.log.Debug().Str("op", "derive").Err(err).Msg("rejected mnemonic")
		return WalletRecord{}, err
	}

	p := DefaultPath(index)
	rec, err := s.derive(phrase, p)
	if err != nil {
		return WalletRecord{}, err
	}
	rec.Index = &index

	s.log.Debug().Str("op", "derive").Uint32("index", index).Str("address", rec.Address).Msg("child derived")
	return rec, nil
}

// DeriveRange derives count consecutive children of m/44'/60'/0'/0
// starting at start. Children are derived in parallel and returned in
// index order.
func (s *Service) DeriveRange(ctx context.Context, mnemonic string, start uint32, count int) ([]WalletRecord, error) {
	if count < 1 || count > MaxRange {
		return nil, fmt.Errorf("%w: count %d must be between 1 and %d", ErrIndexOutOfRange, count, MaxRange)
	}
	if uint64(start)+uint64(count) > uint64(HardenedOffset) {
		return nil, fmt.Errorf("%w: range %d+%d crosses 2^31", ErrIndexOutOfRange, start, count)
	}
	phrase, err := s.checkMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}

	seed, err := NewSeed(phrase, s.passphrase)
	if err != nil {
		return nil, err
	}
	base, err := DerivePath(seed, DefaultBasePath)
	Zero(seed)
	if err != nil {
		return nil, err
	}
	defer base.Zero()

	records := make([]WalletRecord, count)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < count; i++ {
		i := i
		index := start + uint32(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			node, err := base.Child(Normal(index))
			if err != nil {
				return fmt.Errorf("could not derive index %d: %w", index, err)
			}
			defer node.Zero()

			rec, err := s.recordFromNode(node, DefaultPath(index))
			if err != nil {
				return err
			}
			rec.Index = &index
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Debug().Str("op", "derive_range").Uint32("start", start).Int("count", count).Msg("children derived")
	return records, nil
}

// Validate reports whether mnemonic is a valid phrase and how many words it
// has. It never fails; every problem yields Valid false.
func (s *Service) Validate(mnemonic string) ValidationResult {
	res := ValidationResult{
		Valid:     s.wordlist.IsMnemonicValid(mnemonic),
		WordCount: len(strings.Fields(mnemonic)),
	}
	s.log.Debug().Str("op", "validate").Bool("valid", res.Valid).Int("words", res.WordCount).Msg("mnemonic checked")
	return res
}

// AddressFromPrivateKey returns the address and public key for a hex
// private key. The 0x prefix is optional.
func (s *Service) AddressFromPrivateKey(privateKeyHex string) (KeyInfo, error) {
	priv, err := DecodePrivateKey(privateKeyHex)
	if err != nil {
		s.log.Debug().Str("op", "address").Err(err).Msg("rejected private key")
		return KeyInfo{}, err
	}
	defer Zero(priv)

	pub, err := PublicKeyFromPrivate(priv, !s.uncompressed)
	if err != nil {
		return KeyInfo{}, err
	}
	addr, err := AddressFromPublicKey(pub)
	if err != nil {
		return KeyInfo{}, err
	}

	s.log.Debug().Str("op", "address").Str("address", addr).Msg("address computed")
	return KeyInfo{Address: addr, PublicKey: EncodePublicKey(pub)}, nil
}

// AccountKeys returns the xprv and xpub of m/44'/60'/account'.
func (s *Service) AccountKeys(mnemonic string, account uint32) (AccountKeys, error) {
	if account >= HardenedOffset {
		return AccountKeys{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, account)
	}
	phrase, err := s.checkMnemonic(mnemonic)
	if err != nil {
		return AccountKeys{}, err
	}
	seed, err := NewSeed(phrase, s.passphrase)
	if err != nil {
		return AccountKeys{}, err
	}
	defer Zero(seed)

	p := AccountPath(account)
	node, err := DerivePath(seed, p)
	if err != nil {
		return AccountKeys{}, err
	}
	defer node.Zero()

	s.log.Debug().Str("op", "xpub").Stringer("path", p).Msg("account keys exported")
	return AccountKeys{
		Path: p.String(),
		XPrv: node.String(),
		XPub: node.Neuter().String(),
	}, nil
}

// checkMnemonic normalises whitespace and verifies the phrase.
func (s *Service) checkMnemonic(mnemonic string) (string, error) {
	entropy, err := s.wordlist.MnemonicToEntropy(mnemonic)
	if err != nil {
		return "", err
	}
	Zero(entropy)
	return s.wordlist.Normalize(mnemonic), nil
}

func (s *Service) derive(mnemonic string, path DerivationPath) (WalletRecord, error) {
	seed, err := NewSeed(mnemonic, s.passphrase)
	if err != nil {
		return WalletRecord{}, err
	}
	defer Zero(seed)

	node, err := DerivePath(seed, path)
	if err != nil {
		return WalletRecord{}, err
	}
	defer node.Zero()

	return s.recordFromNode(node, path)
}

func (s *Service) recordFromNode(node *ExtendedKey, path DerivationPath) (WalletRecord, error) {
	priv := node.PrivateKeyBytes()
	defer Zero(priv)

	pub := node.PublicKeyBytes()
	if s.uncompressed {
		var err error
		if pub, err = uncompress(pub); err != nil {
			return WalletRecord{}, err
		}
	}
	addr, err := AddressFromPublicKey(pub)
	if err != nil {
		return WalletRecord{}, err
	}

	return WalletRecord{
		Address:        addr,
		PrivateKey:     EncodePrivateKey(priv),
		PublicKey:      EncodePublicKey(pub),
		DerivationPath: path.String(),
		Path:           path.String(),
	}, nil
}
