// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package config loads ethwallet settings from the environment and an
// optional config file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/complex-gh/ethwallet"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when read from the environment, e.g.
// ETHWALLET_DERIVATION_PATH.
const EnvPrefix = "ETHWALLET"

const (
	// DerivationPathKey is the default BIP44 path for generate and restore
	DerivationPathKey = "DERIVATION_PATH"
	// MnemonicStrengthKey is the default entropy size in bits (128 = 12 words, 256 = 24 words)
	MnemonicStrengthKey = "MNEMONIC_STRENGTH"
	// LanguageKey selects the wordlist, as a language tag or English name
	LanguageKey = "LANGUAGE"
	// LogLevelKey is one of trace, debug, info, warn, error, off
	LogLevelKey = "LOG_LEVEL"
	// LogJSONKey switches logs from console format to JSON lines
	LogJSONKey = "LOG_JSON"
	// ListenAddrKey is the host:port the HTTP server binds to
	ListenAddrKey = "LISTEN_ADDR"
	// TimeoutKey bounds each HTTP request. Plain numbers are seconds; 0
	// disables the limit.
	TimeoutKey = "TIMEOUT"
	// CORSOriginsKey is a comma separated list of allowed browser origins
	CORSOriginsKey = "CORS_ORIGINS"
)

// Defaults.
const (
	DefaultDerivationPath = "m/44'/60'/0'/0/0"
	DefaultStrength       = ethwallet.EntropyBits128
	DefaultLanguage       = "en"
	DefaultLogLevel       = "info"
	DefaultListenAddr     = "127.0.0.1:8645"
	DefaultTimeout        = 30 * time.Second
)

// Config is the resolved configuration.
type Config struct {
	DerivationPath ethwallet.DerivationPath
	Strength       int
	Language       string
	Wordlist       *ethwallet.Wordlist
	LogLevel       string
	LogJSON        bool
	ListenAddr     string
	Timeout        time.Duration
	CORSOrigins    []string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(DerivationPathKey, DefaultDerivationPath)
	v.SetDefault(MnemonicStrengthKey, DefaultStrength)
	v.SetDefault(LanguageKey, DefaultLanguage)
	v.SetDefault(LogLevelKey, DefaultLogLevel)
	v.SetDefault(LogJSONKey, false)
	v.SetDefault(ListenAddrKey, DefaultListenAddr)
	v.SetDefault(TimeoutKey, DefaultTimeout.String())
	v.SetDefault(CORSOriginsKey, "")
	return v
}

// Load reads the environment and, when file is not empty, the config file
// it names. Environment variables win over the file.
func Load(file string) (*Config, error) {
	v := newViper()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", file, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	path, err := ethwallet.ParseDerivationPath(v.GetString(DerivationPathKey))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", DerivationPathKey, err)
	}

	strength := v.GetInt(MnemonicStrengthKey)
	if !validStrength(strength) {
		return nil, fmt.Errorf("%s must be one of 128, 160, 192, 224 or 256, got %d", MnemonicStrengthKey, strength)
	}

	lang := v.GetString(LanguageKey)
	wl, err := ethwallet.WordlistForLanguage(lang)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", LanguageKey, err)
	}

	timeout, err := parseTimeout(v.GetString(TimeoutKey))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", TimeoutKey, err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("%s must not be negative, got %s", TimeoutKey, timeout)
	}

	listen := strings.TrimSpace(v.GetString(ListenAddrKey))
	if listen == "" {
		return nil, fmt.Errorf("%s must not be empty", ListenAddrKey)
	}

	return &Config{
		DerivationPath: path,
		Strength:       strength,
		Language:       lang,
		Wordlist:       wl,
		LogLevel:       v.GetString(LogLevelKey),
		LogJSON:        v.GetBool(LogJSONKey),
		ListenAddr:     listen,
		Timeout:        timeout,
		CORSOrigins:    splitList(v.GetStringSlice(CORSOriginsKey)),
	}, nil
}

// ServiceOptions maps the configuration onto wallet service options.
func (c *Config) ServiceOptions(logger *zerolog.Logger) ethwallet.Options {
	return ethwallet.Options{
		DerivationPath: c.DerivationPath,
		Strength:       c.Strength,
		Wordlist:       c.Wordlist,
		Logger:         logger,
	}
}

func validStrength(bits int) bool {
	return bits >= 128 && bits <= 256 && bits%32 == 0
}

// parseTimeout accepts Go durations ("45s", "1m") and bare seconds ("30").
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// splitList flattens comma separated entries and drops blanks.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
