// Package marketplace binds the deployed NFT marketplace contract.
//
// The contract ABI is fixed and embedded; calls go through a go-ethereum
// BoundContract so packing, gas estimation and signing follow the usual
// abigen code paths.
package marketplace

import (
	"context"
	_ "embed"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/lostsouls/pkg/contracts"
	"github.com/DeBrosOfficial/lostsouls/pkg/errors"
)

//go:embed NFTMarketplace.abi.json
var marketplaceABI string

// ParseABI returns the parsed marketplace ABI.
func ParseABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(marketplaceABI))
}

// Contract is a typed client for the marketplace contract.
type Contract struct {
	address  common.Address
	abi      abi.ABI
	bound    *bind.BoundContract
	receipts bind.DeployBackend
	client   *ethclient.Client
	logger   *zap.Logger
}

var _ contracts.Marketplace = (*Contract)(nil)

// Dial connects to rpcURL and binds the contract at address.
func Dial(ctx context.Context, rpcURL, address string, logger *zap.Logger) (*Contract, error) {
	if !common.IsHexAddress(address) {
		return nil, errors.NewValidationError("market.contract_address", "must be a 0x-prefixed hex address", address)
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.NewServiceError("rpc", fmt.Sprintf("failed to dial %s", rpcURL), 0, err)
	}

	c, err := New(common.HexToAddress(address), client, client, client, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	c.client = client
	return c, nil
}

// New binds the contract at address using the given backends. transactor may
// be nil for a read-only client.
func New(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, receipts bind.DeployBackend, logger *zap.Logger) (*Contract, error) {
	parsed, err := ParseABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse marketplace ABI: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Contract{
		address:  address,
		abi:      parsed,
		bound:    bind.NewBoundContract(address, parsed, caller, transactor, nil),
		receipts: receipts,
		logger:   logger,
	}, nil
}

// Address returns the bound contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// ChainID asks the node for its chain id. Only available on dialed clients.
func (c *Contract) ChainID(ctx context.Context) (*big.Int, error) {
	if c.client == nil {
		return nil, errors.NewServiceError("rpc", "no node connection", 0, nil)
	}
	return c.client.ChainID(ctx)
}

// Close releases the node connection, if any.
func (c *Contract) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Contract) call(ctx context.Context, from common.Address, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: from}
	if err := c.bound.Call(opts, &out, method, params...); err != nil {
		return nil, errors.NewTransactionError(method, err)
	}
	if len(out) == 0 {
		return nil, errors.NewTransactionError(method, fmt.Errorf("empty result"))
	}
	return out, nil
}

// GetListingPrice returns the fee, in wei, charged for a new listing.
func (c *Contract) GetListingPrice(ctx context.Context) (*big.Int, error) {
	out, err := c.call(ctx, common.Address{}, "getListingPrice")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (c *Contract) fetchItems(ctx context.Context, from common.Address, method string) ([]contracts.MarketItem, error) {
	out, err := c.call(ctx, from, method)
	if err != nil {
		return nil, err
	}
	items := *abi.ConvertType(out[0], new([]contracts.MarketItem)).(*[]contracts.MarketItem)
	c.logger.Debug("fetched market items",
		zap.String("method", method),
		zap.Int("count", len(items)))
	return items, nil
}

// FetchMarketItems returns every unsold listing in contract order.
func (c *Contract) FetchMarketItems(ctx context.Context) ([]contracts.MarketItem, error) {
	return c.fetchItems(ctx, common.Address{}, "fetchMarketItems")
}

// FetchItemsListed returns the listings whose seller is from.
func (c *Contract) FetchItemsListed(ctx context.Context, from common.Address) ([]contracts.MarketItem, error) {
	return c.fetchItems(ctx, from, "fetchItemsListed")
}

// FetchMyNFTs returns the tokens owned by from.
func (c *Contract) FetchMyNFTs(ctx context.Context, from common.Address) ([]contracts.MarketItem, error) {
	return c.fetchItems(ctx, from, "fetchMyNFTs")
}

// TokenURI returns the metadata URI of tokenID.
func (c *Contract) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	out, err := c.call(ctx, common.Address{}, "tokenURI", tokenID)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (c *Contract) transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error) {
	tx, err := c.bound.Transact(opts, method, params...)
	if err != nil {
		return nil, errors.NewTransactionError(method, err)
	}
	c.logger.Info("transaction submitted",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()),
		zap.String("from", opts.From.Hex()))
	return tx, nil
}

// CreateToken mints a token for tokenURI and lists it at price.
func (c *Contract) CreateToken(opts *bind.TransactOpts, tokenURI string, price *big.Int) (*types.Transaction, error) {
	return c.transact(opts, "createToken", tokenURI, price)
}

// ResellToken lists an owned token again at price.
func (c *Contract) ResellToken(opts *bind.TransactOpts, tokenID, price *big.Int) (*types.Transaction, error) {
	return c.transact(opts, "resellToken", tokenID, price)
}

// CreateMarketSale buys tokenID; opts.Value must equal the asking price.
func (c *Contract) CreateMarketSale(opts *bind.TransactOpts, tokenID *big.Int) (*types.Transaction, error) {
	return c.transact(opts, "createMarketSale", tokenID)
}

// WaitMined blocks until tx is mined and fails if it reverted.
func (c *Contract) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	method := c.methodName(tx)
	receipt, err := bind.WaitMined(ctx, c.receipts, tx)
	if err != nil {
		return nil, errors.NewTransactionError(method, err).WithTxHash(tx.Hash().Hex())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, errors.NewTransactionError(method, fmt.Errorf("reverted in block %s", receipt.BlockNumber)).
			WithTxHash(tx.Hash().Hex())
	}
	c.logger.Debug("transaction mined",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()),
		zap.Uint64("gas_used", receipt.GasUsed))
	return receipt, nil
}

func (c *Contract) methodName(tx *types.Transaction) string {
	if data := tx.Data(); len(data) >= 4 {
		if m, err := c.abi.MethodById(data[:4]); err == nil {
			return m.Name
		}
	}
	return "transaction"
}
