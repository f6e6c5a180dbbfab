package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// WalletProvider mirrors the injected wallet API: eth_accounts,
// eth_requestAccounts and the accountsChanged subscription, plus signing.
type WalletProvider interface {
	// Name identifies the provider in logs and errors ("keystore", "rpc").
	Name() string

	// Accounts returns the accounts already authorized, without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)

	// RequestAccounts asks the wallet to authorize and returns the accounts.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// SubscribeAccounts delivers the authorized account list whenever it
	// changes until ctx is done or the returned cancel func is called.
	SubscribeAccounts(ctx context.Context, sink chan<- []common.Address) (cancel func(), err error)

	// Transactor returns signing options for account on chainID.
	Transactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error)
}
