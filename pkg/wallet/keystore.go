// Package wallet provides the wallet providers the marketplace talks to: an
// encrypted go-ethereum keystore directory and an external JSON-RPC signer.
//
// Both mirror the injected browser wallet API. Accounts returns the accounts
// already authorized, RequestAccounts asks for authorization, and
// SubscribeAccounts replaces the accountsChanged event.
package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/lostsouls/pkg/config"
	"github.com/DeBrosOfficial/lostsouls/pkg/contracts"
	"github.com/DeBrosOfficial/lostsouls/pkg/errors"
)

// ErrNoPassphrase is returned by RequestAccounts when no passphrase source is
// configured, as under the HTTP gateway where nobody can be prompted.
var ErrNoPassphrase = fmt.Errorf("no passphrase available; set %s or wallet.passphrase", config.EnvWalletPassphrase)

// PassphraseFunc returns the passphrase that unlocks account.
type PassphraseFunc func(account common.Address) (string, error)

// StaticPassphrase always returns p.
func StaticPassphrase(p string) PassphraseFunc {
	return func(common.Address) (string, error) { return p, nil }
}

// KeystoreOptions configures a keystore wallet.
type KeystoreOptions struct {
	Dir        string
	Passphrase PassphraseFunc

	// ScryptN and ScryptP default to the standard go-ethereum parameters.
	ScryptN int
	ScryptP int
}

// Keystore is a wallet backed by an encrypted key directory. An account is
// authorized once it has been unlocked with its passphrase.
type Keystore struct {
	ks         *keystore.KeyStore
	passphrase PassphraseFunc
	logger     *zap.Logger

	mu         sync.RWMutex
	authorized []common.Address
	feed       event.Feed
}

var _ contracts.WalletProvider = (*Keystore)(nil)

// NewKeystore opens (or creates) the key directory.
func NewKeystore(opts KeystoreOptions, logger *zap.Logger) *Keystore {
	n, p := opts.ScryptN, opts.ScryptP
	if n == 0 || p == 0 {
		n, p = keystore.StandardScryptN, keystore.StandardScryptP
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Keystore{
		ks:         keystore.NewKeyStore(opts.Dir, n, p),
		passphrase: opts.Passphrase,
		logger:     logger,
	}
}

// Name implements contracts.WalletProvider.
func (k *Keystore) Name() string { return "keystore" }

// KeyStore exposes the underlying go-ethereum keystore.
func (k *Keystore) KeyStore() *keystore.KeyStore { return k.ks }

// NewAccount creates a fresh key encrypted with passphrase.
func (k *Keystore) NewAccount(passphrase string) (common.Address, error) {
	acct, err := k.ks.NewAccount(passphrase)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to create account: %w", err)
	}
	k.logger.Info("created keystore account", zap.String("address", acct.Address.Hex()))
	return acct.Address, nil
}

// Accounts returns the unlocked accounts that still exist in the directory.
func (k *Keystore) Accounts(ctx context.Context) ([]common.Address, error) {
	return k.present(), nil
}

func (k *Keystore) present() []common.Address {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make([]common.Address, 0, len(k.authorized))
	for _, addr := range k.authorized {
		if k.ks.HasAddress(addr) {
			out = append(out, addr)
		}
	}
	return out
}

// RequestAccounts unlocks the first key in the directory.
func (k *Keystore) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if authorized := k.present(); len(authorized) > 0 {
		return authorized, nil
	}

	all := k.ks.Accounts()
	if len(all) == 0 {
		return nil, errors.NewWalletRejectedError(k.Name(), fmt.Errorf("keystore has no accounts"))
	}
	if k.passphrase == nil {
		return nil, errors.NewWalletRejectedError(k.Name(), ErrNoPassphrase)
	}

	acct := all[0]
	pass, err := k.passphrase(acct.Address)
	if err != nil {
		return nil, errors.NewWalletRejectedError(k.Name(), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := k.ks.Unlock(acct, pass); err != nil {
		return nil, errors.NewWalletRejectedError(k.Name(), err)
	}

	k.mu.Lock()
	k.authorized = append(k.authorized, acct.Address)
	k.mu.Unlock()

	k.logger.Info("keystore account unlocked", zap.String("address", acct.Address.Hex()))
	authorized := k.present()
	k.feed.Send(authorized)
	return authorized, nil
}

// SubscribeAccounts reports the authorized accounts after every unlock and
// whenever key files are added or removed.
func (k *Keystore) SubscribeAccounts(ctx context.Context, sink chan<- []common.Address) (func(), error) {
	walletEvents := make(chan accounts.WalletEvent, 8)
	walletSub := k.ks.Subscribe(walletEvents)

	unlocks := make(chan []common.Address, 8)
	unlockSub := k.feed.Subscribe(unlocks)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer walletSub.Unsubscribe()
		defer unlockSub.Unsubscribe()

		for {
			var accts []common.Address
			select {
			case <-ctx.Done():
				return
			case err := <-walletSub.Err():
				if err != nil {
					k.logger.Warn("keystore subscription ended", zap.Error(err))
				}
				return
			case ev := <-walletEvents:
				k.logger.Debug("keystore wallet event",
					zap.String("url", ev.Wallet.URL().String()),
					zap.Int("kind", int(ev.Kind)))
				accts = k.present()
			case accts = <-unlocks:
			}

			select {
			case sink <- accts:
			case <-ctx.Done():
				return
			}
		}
	}()
	return cancel, nil
}

// Transactor returns signing options for an unlocked account.
func (k *Keystore) Transactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	unlocked := false
	for _, addr := range k.present() {
		if addr == account {
			unlocked = true
			break
		}
	}
	if !unlocked {
		return nil, errors.NewWalletRejectedError(k.Name(), fmt.Errorf("account %s is locked", account.Hex()))
	}

	opts, err := bind.NewKeyStoreTransactorWithChainID(k.ks, accounts.Account{Address: account}, chainID)
	if err != nil {
		return nil, errors.NewWalletRejectedError(k.Name(), err)
	}
	opts.Context = ctx
	return opts, nil
}
