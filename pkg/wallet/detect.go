package wallet

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/lostsouls/pkg/config"
	"github.com/DeBrosOfficial/lostsouls/pkg/contracts"
)

// Detect builds the wallet provider described by cfg. It returns a nil
// provider, and no error, when no wallet is available: wallet type "none" or
// a keystore directory that does not exist yet. prompt is consulted for the
// keystore passphrase when cfg carries none.
func Detect(ctx context.Context, cfg config.WalletConfig, prompt PassphraseFunc, logger *zap.Logger) (contracts.WalletProvider, error) {
	switch cfg.Type {
	case config.WalletNone, "":
		return nil, nil

	case config.WalletKeystore:
		if _, err := os.Stat(cfg.KeystoreDir); os.IsNotExist(err) {
			if logger != nil {
				logger.Debug("keystore directory missing", zap.String("dir", cfg.KeystoreDir))
			}
			return nil, nil
		}
		passphrase := prompt
		if cfg.Passphrase != "" {
			passphrase = StaticPassphrase(cfg.Passphrase)
		}
		return NewKeystore(KeystoreOptions{Dir: cfg.KeystoreDir, Passphrase: passphrase}, logger), nil

	case config.WalletRPC:
		w, err := DialRPC(ctx, cfg.SignerURL, cfg.PollInterval, logger)
		if err != nil {
			return nil, err
		}
		return w, nil

	default:
		return nil, fmt.Errorf("unknown wallet type %q", cfg.Type)
	}
}
