package cli

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/DeBrosOfficial/lostsouls/pkg/config"
	"github.com/DeBrosOfficial/lostsouls/pkg/contracts"
	"github.com/DeBrosOfficial/lostsouls/pkg/ipfs"
	"github.com/DeBrosOfficial/lostsouls/pkg/logging"
	"github.com/DeBrosOfficial/lostsouls/pkg/market"
	"github.com/DeBrosOfficial/lostsouls/pkg/marketplace"
	"github.com/DeBrosOfficial/lostsouls/pkg/tlsutil"
	"github.com/DeBrosOfficial/lostsouls/pkg/wallet"
)

// Globals are the flags shared by every command.
type Globals struct {
	ConfigPath string
	Format     string
	Timeout    time.Duration
}

// JSON reports whether output should be JSON.
func (g Globals) JSON() bool {
	return g.Format == "json"
}

// session is the wired client: config, logger, storage, contract, wallet and
// the market on top of them.
type session struct {
	cfg      *config.Config
	logger   *logging.ColoredLogger
	storage  *ipfs.Client
	contract *marketplace.Contract
	wallet   contracts.WalletProvider
	market   *market.Market
}

// stderrAlerter prints market alerts for one-shot commands.
var stderrAlerter = contracts.AlerterFunc(func(msg string) {
	fmt.Fprintf(os.Stderr, "⚠️  %s\n", msg)
})

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// sessionOptions carry what differs between the front ends.
type sessionOptions struct {
	alerter contracts.Alerter
	// logToFile sends logs to ~/.lostsouls/souls.log when no output file is
	// configured, so they do not draw over the terminal.
	logToFile bool
	// prompt unlocks keystore accounts. Nil leaves only the configured or
	// SOULS_WALLET_PASSPHRASE passphrase.
	prompt wallet.PassphraseFunc
}

// commandOptions are used by the one-shot commands.
func commandOptions() sessionOptions {
	return sessionOptions{alerter: stderrAlerter, logToFile: true, prompt: promptPassphrase}
}

// openSession wires the client.
func openSession(ctx context.Context, g Globals, opts sessionOptions) (*session, error) {
	cfg, err := loadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	output := cfg.Logging.OutputFile
	if output == "" && opts.logToFile {
		if _, err := config.EnsureConfigDir(); err == nil {
			output, _ = config.DefaultPath("souls.log")
		}
	}
	logger, err := logging.NewLogger(cfg.Logging.Level, output)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	storage, err := ipfs.NewClient(ipfs.Config{
		APIURL:        cfg.IPFS.APIURL,
		GatewayURL:    cfg.IPFS.GatewayURL,
		ProjectID:     cfg.IPFS.ProjectID,
		ProjectSecret: cfg.IPFS.ProjectSecret,
		Timeout:       cfg.IPFS.Timeout,
		CacheSize:     cfg.IPFS.CacheSize,
		TLS: tlsutil.Options{
			CACertPath:         cfg.IPFS.CACert,
			InsecureSkipVerify: cfg.IPFS.Insecure,
		},
	}, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create IPFS client: %w", err)
	}

	contract, err := marketplace.Dial(ctx, cfg.Market.RPCURL, cfg.Market.ContractAddress, logger.Logger)
	if err != nil {
		return nil, err
	}

	w, err := wallet.Detect(ctx, cfg.Wallet, opts.prompt, logger.Logger)
	if err != nil {
		contract.Close()
		return nil, err
	}

	mk := market.New(market.Options{
		Wallet:             w,
		Storage:            storage,
		Contract:           contract,
		Alerter:            opts.alerter,
		Logger:             logger,
		Currency:           cfg.Market.Currency,
		ChainID:            big.NewInt(cfg.Market.ChainID),
		TxTimeout:          cfg.Market.TxTimeout,
		ResolveConcurrency: cfg.Market.ResolveConcurrency,
	})

	walletName := "none"
	if w != nil {
		walletName = w.Name()
	}
	logger.ComponentInfo(logging.ComponentCLI, "Session opened",
		zap.String("rpc", cfg.Market.RPCURL),
		zap.String("contract", cfg.Market.ContractAddress),
		zap.String("wallet", walletName),
	)

	return &session{
		cfg:      cfg,
		logger:   logger,
		storage:  storage,
		contract: contract,
		wallet:   w,
		market:   mk,
	}, nil
}

func (s *session) Close() {
	if c, ok := s.wallet.(interface{ Close() }); ok {
		c.Close()
	}
	s.contract.Close()
	_ = s.logger.Sync()
}

// promptPassphrase reads a keystore passphrase from the terminal.
func promptPassphrase(account common.Address) (string, error) {
	return readSecret(fmt.Sprintf("Passphrase for %s: ", account.Hex()))
}

func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s", config.EnvWalletPassphrase)
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
