package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MarketItem is one listing entry as returned by the contract.
type MarketItem struct {
	TokenId *big.Int
	Seller  common.Address
	Owner   common.Address
	Price   *big.Int
	Sold    bool
}

// Marketplace is the deployed marketplace contract. Read calls that depend on
// msg.sender take the caller address explicitly.
type Marketplace interface {
	GetListingPrice(ctx context.Context) (*big.Int, error)
	FetchMarketItems(ctx context.Context) ([]MarketItem, error)
	FetchItemsListed(ctx context.Context, from common.Address) ([]MarketItem, error)
	FetchMyNFTs(ctx context.Context, from common.Address) ([]MarketItem, error)
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)

	// Transactions. opts.Value carries the listing fee or the sale price.
	CreateToken(opts *bind.TransactOpts, tokenURI string, price *big.Int) (*types.Transaction, error)
	ResellToken(opts *bind.TransactOpts, tokenID, price *big.Int) (*types.Transaction, error)
	CreateMarketSale(opts *bind.TransactOpts, tokenID *big.Int) (*types.Transaction, error)

	// WaitMined blocks until tx is mined and fails if it reverted.
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}
