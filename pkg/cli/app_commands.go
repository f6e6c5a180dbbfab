package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/lostsouls/pkg/config"
	"github.com/DeBrosOfficial/lostsouls/pkg/gateway"
	"github.com/DeBrosOfficial/lostsouls/pkg/logging"
	"github.com/DeBrosOfficial/lostsouls/pkg/tui"
	"github.com/DeBrosOfficial/lostsouls/pkg/wallet"
)

// uiOptions routes alerts and passphrase prompts through the running UI.
func uiOptions(alerts *tui.ProgramAlerter, prompter *tui.PassphrasePrompter) sessionOptions {
	return sessionOptions{alerter: alerts, logToFile: true, prompt: prompter.Passphrase}
}

// serveOptions never prompts: a request must not wait on the server's
// terminal.
func serveOptions() sessionOptions {
	return sessionOptions{alerter: stderrAlerter}
}

// HandleUICommand runs the terminal UI until the user quits.
func HandleUICommand(g Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	alerts := &tui.ProgramAlerter{}
	prompter := &tui.PassphrasePrompter{}
	s, err := openSession(ctx, g, uiOptions(alerts, prompter))
	if err != nil {
		return err
	}
	defer s.Close()

	m := tui.NewModel(ctx, s.market, s.cfg.UI.SearchDebounce)
	s.logger.ComponentInfo(logging.ComponentUI, "UI started")
	runErr := tui.Run(ctx, m, alerts, prompter)
	for _, msg := range alerts.Pending() {
		fmt.Fprintf(os.Stderr, "⚠️  %s\n", msg)
	}
	if runErr != nil {
		s.logger.ComponentError(logging.ComponentUI, "UI exited", zap.Error(runErr))
		return fmt.Errorf("UI error: %w", runErr)
	}
	s.logger.ComponentInfo(logging.ComponentUI, "UI closed")
	return nil
}

// HandleServeCommand runs the HTTP gateway until interrupted.
func HandleServeCommand(args []string, g Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, g, serveOptions())
	if err != nil {
		return err
	}
	defer s.Close()

	listen := s.cfg.Gateway.ListenAddr
	if len(args) > 0 {
		listen = args[0]
	}

	gw, err := gateway.New(gateway.Config{
		ListenAddr:     listen,
		RequestTimeout: s.cfg.Market.TxTimeout + s.cfg.IPFS.Timeout,
	}, s.market, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	if s.market.HasWallet() {
		go func() {
			if err := s.market.WatchAccounts(ctx); err != nil && ctx.Err() == nil {
				s.logger.ComponentWarn(logging.ComponentWallet, "account watch stopped", zap.Error(err))
			}
		}()
	}

	fmt.Printf("👻 LostSouls gateway listening on http://%s\n", listen)
	if err := gw.Start(ctx); err != nil {
		return fmt.Errorf("gateway error: %w", err)
	}
	return nil
}

// HandleAccountCommand shows the connected account, or creates a keystore
// account with "account new".
func HandleAccountCommand(args []string, g Globals) error {
	if len(args) > 0 {
		switch args[0] {
		case "new":
			return handleAccountNew(g)
		default:
			return fmt.Errorf("unknown account subcommand: %s (expected: new)", args[0])
		}
	}

	ctx, cancel := commandContext(g)
	defer cancel()
	s, err := openSession(ctx, g, commandOptions())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.market.CheckIfWalletIsConnected(ctx); err != nil {
		return err
	}
	account := s.market.CurrentAccount()
	provider := "none"
	if s.wallet != nil {
		provider = s.wallet.Name()
	}

	if g.JSON() {
		printJSON(map[string]any{"account": account, "wallet": provider, "currency": s.market.Currency()})
		return nil
	}
	fmt.Printf("👛 Wallet: %s\n", provider)
	if account == "" {
		fmt.Printf("No authorized account. Run 'souls connect' to authorize one.\n")
		return nil
	}
	fmt.Printf("Account: %s\n", account)
	return nil
}

func handleAccountNew(g Globals) error {
	// No contract is needed to create a key, so skip full validation.
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.Wallet.Type != config.WalletKeystore {
		return fmt.Errorf("account new needs wallet.type %q, configured %q", config.WalletKeystore, cfg.Wallet.Type)
	}

	passphrase := cfg.Wallet.Passphrase
	if passphrase == "" {
		first, err := readSecret("New passphrase: ")
		if err != nil {
			return err
		}
		again, err := readSecret("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if first != again {
			return fmt.Errorf("passphrases do not match")
		}
		passphrase = first
	}
	if passphrase == "" {
		return fmt.Errorf("passphrase must not be empty")
	}

	if err := os.MkdirAll(cfg.Wallet.KeystoreDir, 0700); err != nil {
		return fmt.Errorf("failed to create keystore directory: %w", err)
	}
	ks := wallet.NewKeystore(wallet.KeystoreOptions{Dir: cfg.Wallet.KeystoreDir}, nil)
	addr, err := ks.NewAccount(passphrase)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	if g.JSON() {
		printJSON(map[string]string{"account": addr.Hex(), "keystore": cfg.Wallet.KeystoreDir})
		return nil
	}
	fmt.Printf("✅ Created account %s\n", addr.Hex())
	fmt.Printf("   Keystore: %s\n", cfg.Wallet.KeystoreDir)
	return nil
}
