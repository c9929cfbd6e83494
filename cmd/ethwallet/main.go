// Package main provides the ethwallet CLI for generating and restoring
// Ethereum HD wallets.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/complex-gh/ethwallet"
	"github.com/complex-gh/ethwallet/internal/config"
	klog "github.com/complex-gh/ethwallet/internal/log"
	"github.com/complex-gh/ethwallet/internal/rpc"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-tty"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	maxWidth = 72
)

var (
	baseStyle  = lipgloss.NewStyle().Margin(0, 0, 1, 2) //nolint:mnd
	red        = lipgloss.Color(completeColor("#FF4444", "196", "9"))
	errorStyle = baseStyle.
			Foreground(red).
			Background(lipgloss.AdaptiveColor{Light: completeColor("#FFEBEB", "255", "7"), Dark: completeColor("#2B1A1A", "235", "8")}).
			Padding(1, 2) //nolint:mnd

	cfgFile       string
	language      string
	passphrase    string
	askPassphrase bool
	derivePath    string
	uncompressed  bool
	logLevel      string
	logJSON       bool

	mnemonicFlag   string
	strength       int
	index          uint32
	count          int
	account        uint32
	privateKeyFlag string
	listenAddr     string

	rootCmd = &cobra.Command{
		Use:   "ethwallet",
		Short: "Generate and restore Ethereum HD wallets",
		Long: `Generate and restore Ethereum HD wallets (BIP39 mnemonics, BIP32/BIP44
derivation, EIP-55 addresses).

Every command prints a JSON envelope on stdout:
    {"success": true, "data": {...}}
    {"success": false, "error": "..."}

Mnemonics and private keys are read from --mnemonic / --private-key, from
stdin when it is not a terminal, or from a hidden prompt.

SECURITY TIP: prefer the prompt or stdin over flags so secrets do not end
up in your shell history.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate a new mnemonic and derive its first account",
		Example: `  ethwallet generate
  ethwallet generate --strength 256
  ethwallet generate --path "m/44'/60'/0'/0/5" --language ja`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return emit(svc.Generate(strength, derivePath))
		},
	}

	restoreCmd = &cobra.Command{
		Use:   "restore",
		Short: "Restore a wallet from its mnemonic",
		Example: `  ethwallet restore
  echo "abandon ... about" | ethwallet restore --path "m/44'/60'/0'/0/1"`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			m, err := readSecret(mnemonicFlag, "Enter mnemonic: ")
			if err != nil {
				return emit(nil, err)
			}
			return emit(svc.Restore(m, derivePath))
		},
	}

	deriveCmd = &cobra.Command{
		Use:   "derive",
		Short: "Derive the account at m/44'/60'/0'/0/<index>",
		Example: `  ethwallet derive --index 3
  ethwallet derive --index 0 --count 10 < phrase.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := readSecret(mnemonicFlag, "Enter mnemonic: ")
			if err != nil {
				return emit(nil, err)
			}
			if count > 1 {
				return emit(svc.DeriveRange(cmd.Context(), m, index, count))
			}
			return emit(svc.DeriveChild(m, index))
		},
	}

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Check a mnemonic's words and checksum",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			m, err := readSecret(mnemonicFlag, "Enter mnemonic: ")
			if err != nil {
				return emit(nil, err)
			}
			return emit(svc.Validate(m), nil)
		},
	}

	addressCmd = &cobra.Command{
		Use:   "address",
		Short: "Show the address and public key of a private key",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			k, err := readSecret(privateKeyFlag, "Enter private key: ")
			if err != nil {
				return emit(nil, err)
			}
			return emit(svc.AddressFromPrivateKey(k))
		},
	}

	xpubCmd = &cobra.Command{
		Use:   "xpub",
		Short: "Export the extended keys of m/44'/60'/<account>'",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			m, err := readSecret(mnemonicFlag, "Enter mnemonic: ")
			if err != nil {
				return emit(nil, err)
			}
			return emit(svc.AccountKeys(m, account))
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the wallet operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := cfg.ListenAddr
			if cmd.Flags().Changed("listen") {
				addr = listenAddr
			}
			srv := rpc.New(addr, svc, rpc.Config{
				Timeout:     cfg.Timeout,
				CORSOrigins: cfg.CORSOrigins,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.Start(); err != nil {
				return err
			}
			<-ctx.Done()
			klog.CLI.Info().Msg("shutting down")
			return srv.Stop(context.Background())
		},
	}

	manCmd = &cobra.Command{
		Use:          "man",
		Args:         cobra.NoArgs,
		Short:        "generate man pages",
		Hidden:       true,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			manPage, err := mcobra.NewManPage(1, rootCmd)
			if err != nil {
				//nolint: wrapcheck
				return err
			}
			manPage = manPage.WithSection("Copyright", "(C) 2025-2026 complex.\n"+
				"Released under MIT license.")
			fmt.Println(manPage.Build(roff.NewDocument()))
			return nil
		},
	}

	// completionCmd generates shell completion scripts for bash, zsh, fish, and powershell.
	completionCmd = &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for ethwallet.

To load completions:

Bash:
  $ source <(ethwallet completion bash)

Zsh:
  $ ethwallet completion zsh > "${fpath[1]}/_ethwallet"

Fish:
  $ ethwallet completion fish | source

PowerShell:
  PS> ethwallet completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		SilenceUsage:          true,
		RunE: func(_ *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unknown shell: %s", args[0])
			}
		},
	}

	cfg *config.Config
	svc *ethwallet.Service

	stdout io.Writer = os.Stdout
)

// errReported marks an error whose envelope has already been printed.
var errReported = errors.New("reported")

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")
	pf.StringVarP(&language, "language", "l", "", "Wordlist language (default from config, en)")
	pf.StringVar(&passphrase, "passphrase", "", "BIP39 passphrase")
	pf.BoolVar(&askPassphrase, "ask-passphrase", false, "Prompt for the BIP39 passphrase")
	pf.StringVarP(&derivePath, "path", "p", "", "Derivation path (default from config, m/44'/60'/0'/0/0)")
	pf.BoolVar(&uncompressed, "uncompressed", false, "Print 65-byte uncompressed public keys")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVar(&logJSON, "log-json", false, "Log JSON lines to stderr")

	generateCmd.Flags().IntVarP(&strength, "strength", "s", 0, "Entropy bits: 128, 160, 192, 224 or 256")
	for _, c := range []*cobra.Command{restoreCmd, deriveCmd, validateCmd, xpubCmd} {
		c.Flags().StringVarP(&mnemonicFlag, "mnemonic", "m", "", "Mnemonic phrase")
	}
	deriveCmd.Flags().Uint32VarP(&index, "index", "i", 0, "Address index")
	deriveCmd.Flags().IntVarP(&count, "count", "n", 1, "Number of consecutive addresses")
	xpubCmd.Flags().Uint32VarP(&account, "account", "a", 0, "Account number")
	addressCmd.Flags().StringVarP(&privateKeyFlag, "private-key", "k", "", "Hex private key")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from config, 127.0.0.1:8645)")

	rootCmd.AddCommand(generateCmd, restoreCmd, deriveCmd, validateCmd, addressCmd, xpubCmd, serveCmd)
	rootCmd.AddCommand(manCmd)
	rootCmd.AddCommand(completionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			printError(err)
		}
		os.Exit(1)
	}
}

// setup loads configuration and builds the service before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = logLevel
	}
	klog.Init(level, cfg.LogJSON || logJSON)

	opts := cfg.ServiceOptions(&klog.Wallet)
	if language != "" {
		wl, err := ethwallet.WordlistForLanguage(language)
		if err != nil {
			return err
		}
		opts.Wordlist = wl
	}
	opts.UncompressedPublicKey = uncompressed

	opts.Passphrase = passphrase
	if askPassphrase {
		defer fmt.Fprintf(os.Stderr, "\n")
		pass, err := readPassword("Enter BIP39 passphrase: ")
		if err != nil {
			return err
		}
		opts.Passphrase = string(pass)
		ethwallet.Zero(pass)
	}

	svc, err = ethwallet.NewService(opts)
	return err
}

// emit prints data or err as a JSON envelope. Failures are also rendered
// as an error block when stderr is a terminal.
func emit(data any, err error) error {
	if werr := writeEnvelope(stdout, ethwallet.NewEnvelope(data, err)); werr != nil {
		return werr
	}
	if err != nil {
		printError(err)
		return errReported
	}
	return nil
}

func writeEnvelope(w io.Writer, env ethwallet.Envelope) error {
	enc := json.NewEncoder(w)
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	return nil
}

func printError(err error) {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		b := strings.Builder{}
		b.WriteRune('\n')
		renderBlock(&b, errorStyle, getWidth(maxWidth), err.Error())
		fmt.Fprint(os.Stderr, b.String())
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
}

// readSecret returns value when set, otherwise reads stdin when it is not a
// terminal, otherwise prompts on the tty without echo.
func readSecret(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		b, err := io.ReadAll(io.LimitReader(os.Stdin, 1<<16))
		if err != nil {
			return "", fmt.Errorf("could not read stdin: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	defer fmt.Fprintf(os.Stderr, "\n")
	b, err := readPassword(prompt)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(b))
	ethwallet.Zero(b)
	return s, nil
}

func readPassword(msg string) ([]byte, error) {
	_, _ = fmt.Fprint(os.Stderr, msg)
	t, err := tty.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open tty: %w", err)
	}
	defer t.Close()                                     //nolint: errcheck
	pass, err := term.ReadPassword(int(t.Input().Fd())) //nolint: gosec
	if err != nil {
		return nil, fmt.Errorf("could not read input: %w", err)
	}
	return pass, nil
}

func getWidth(maxw int) int {
	w, _, err := term.GetSize(int(os.Stderr.Fd())) //nolint: gosec
	if err != nil || w > maxw {
		return maxWidth
	}
	return w
}

func renderBlock(w io.Writer, s lipgloss.Style, width int, str string) {
	_, _ = io.WriteString(w, s.Width(width).Render(str))
	_, _ = io.WriteString(w, "\n")
}

func completeColor(truecolor, ansi256, ansi string) string {
	//nolint: exhaustive
	switch lipgloss.ColorProfile() {
	case termenv.TrueColor:
		return truecolor
	case termenv.ANSI256:
		return ansi256
	}
	return ansi
}
