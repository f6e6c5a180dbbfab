package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/lostsouls/pkg/contracts"
	soulerrors "github.com/DeBrosOfficial/lostsouls/pkg/errors"
)

// methodNotFound is the JSON-RPC error code for an unsupported method.
const methodNotFound = -32601

// RPC is a wallet living behind a JSON-RPC endpoint (a dev node with unlocked
// accounts, or an external signer). Account changes are detected by polling.
type RPC struct {
	client       *rpc.Client
	url          string
	pollInterval time.Duration
	logger       *zap.Logger
}

var _ contracts.WalletProvider = (*RPC)(nil)

// DialRPC connects to the signer at url.
func DialRPC(ctx context.Context, url string, pollInterval time.Duration, logger *zap.Logger) (*RPC, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, soulerrors.NewServiceError("signer", fmt.Sprintf("failed to dial %s", url), 0, err)
	}
	return NewRPC(client, url, pollInterval, logger), nil
}

// NewRPC wraps an existing client.
func NewRPC(client *rpc.Client, url string, pollInterval time.Duration, logger *zap.Logger) *RPC {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RPC{client: client, url: url, pollInterval: pollInterval, logger: logger}
}

// Name implements contracts.WalletProvider.
func (r *RPC) Name() string { return "rpc" }

// Close closes the underlying connection.
func (r *RPC) Close() { r.client.Close() }

// Accounts calls eth_accounts.
func (r *RPC) Accounts(ctx context.Context) ([]common.Address, error) {
	var accts []common.Address
	if err := r.client.CallContext(ctx, &accts, "eth_accounts"); err != nil {
		return nil, soulerrors.NewServiceError("signer", "eth_accounts failed", 0, err)
	}
	return accts, nil
}

// RequestAccounts calls eth_requestAccounts, falling back to eth_accounts on
// nodes that do not implement it.
func (r *RPC) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accts []common.Address
	err := r.client.CallContext(ctx, &accts, "eth_requestAccounts")
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == methodNotFound {
		r.logger.Debug("eth_requestAccounts unsupported, using eth_accounts", zap.String("url", r.url))
		return r.Accounts(ctx)
	}
	if err != nil {
		return nil, soulerrors.NewWalletRejectedError(r.Name(), err)
	}
	return accts, nil
}

// SubscribeAccounts polls eth_accounts and reports each change.
func (r *RPC) SubscribeAccounts(ctx context.Context, sink chan<- []common.Address) (func(), error) {
	last, err := r.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(r.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			accts, err := r.Accounts(ctx)
			if err != nil {
				r.logger.Debug("account poll failed", zap.Error(err))
				continue
			}
			if slices.Equal(accts, last) {
				continue
			}
			last = accts

			select {
			case sink <- accts:
			case <-ctx.Done():
				return
			}
		}
	}()
	return cancel, nil
}

// signTxArgs is the eth_signTransaction request object.
type signTxArgs struct {
	From                 common.Address  `json:"from"`
	To                   *common.Address `json:"to,omitempty"`
	Gas                  hexutil.Uint64  `json:"gas"`
	GasPrice             *hexutil.Big    `json:"gasPrice,omitempty"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas,omitempty"`
	Value                *hexutil.Big    `json:"value"`
	Nonce                hexutil.Uint64  `json:"nonce"`
	Data                 hexutil.Bytes   `json:"data"`
	ChainID              *hexutil.Big    `json:"chainId"`
}

type signTxResult struct {
	Raw hexutil.Bytes `json:"raw"`
}

// Transactor returns options whose signer delegates to eth_signTransaction.
func (r *RPC) Transactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	accts, err := r.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(accts, account) {
		return nil, soulerrors.NewWalletRejectedError(r.Name(), fmt.Errorf("account %s is not managed by %s", account.Hex(), r.url))
	}

	return &bind.TransactOpts{
		From:    account,
		Context: ctx,
		Signer: func(from common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if from != account {
				return nil, bind.ErrNotAuthorized
			}
			return r.signTransaction(ctx, from, tx, chainID)
		},
	}, nil
}

func (r *RPC) signTransaction(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	args := signTxArgs{
		From:    from,
		To:      tx.To(),
		Gas:     hexutil.Uint64(tx.Gas()),
		Value:   (*hexutil.Big)(tx.Value()),
		Nonce:   hexutil.Uint64(tx.Nonce()),
		Data:    tx.Data(),
		ChainID: (*hexutil.Big)(chainID),
	}
	if tx.Type() == types.DynamicFeeTxType {
		args.MaxFeePerGas = (*hexutil.Big)(tx.GasFeeCap())
		args.MaxPriorityFeePerGas = (*hexutil.Big)(tx.GasTipCap())
	} else {
		args.GasPrice = (*hexutil.Big)(tx.GasPrice())
	}

	var res signTxResult
	if err := r.client.CallContext(ctx, &res, "eth_signTransaction", args); err != nil {
		return nil, soulerrors.NewWalletRejectedError(r.Name(), err)
	}

	signed := new(types.Transaction)
	if err := signed.UnmarshalBinary(res.Raw); err != nil {
		return nil, fmt.Errorf("failed to decode signed transaction: %w", err)
	}
	if signed.Hash() == tx.Hash() {
		return nil, fmt.Errorf("signer returned an unsigned transaction")
	}
	return signed, nil
}
