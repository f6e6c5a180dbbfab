// Package market is the marketplace context object shared by the terminal UI,
// the HTTP gateway and the CLI. It owns the connected account and the loading
// flag, and turns user actions into wallet, storage and contract calls.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DeBrosOfficial/lostsouls/pkg/contracts"
	"github.com/DeBrosOfficial/lostsouls/pkg/errors"
	"github.com/DeBrosOfficial/lostsouls/pkg/logging"
	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
	"github.com/DeBrosOfficial/lostsouls/pkg/units"
)

// User-facing alert texts.
const (
	AlertNoWallet       = "Please install a wallet first."
	AlertFieldsRequired = "All fields are required"
)

// ListingKind selects between the two account-scoped listing queries.
type ListingKind string

const (
	ListingOwned  ListingKind = "owned"  // fetchMyNFTs
	ListingListed ListingKind = "listed" // fetchItemsListed
)

// ListingInput is the create form.
type ListingInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"` // decimal ether
	FileURL     string `json:"image"`
}

// Options wires a Market to its collaborators. Wallet may be nil, meaning no
// wallet is installed.
type Options struct {
	Wallet   contracts.WalletProvider
	Storage  contracts.StorageProvider
	Contract contracts.Marketplace
	Alerter  contracts.Alerter
	Logger   *logging.ColoredLogger

	Currency           string
	ChainID            *big.Int
	TxTimeout          time.Duration
	ResolveConcurrency int
}

// Market holds the session state. It is safe for concurrent use.
type Market struct {
	wallet   contracts.WalletProvider
	storage  contracts.StorageProvider
	contract contracts.Marketplace
	alerter  contracts.Alerter
	logger   *logging.ColoredLogger

	currency    string
	chainID     *big.Int
	txTimeout   time.Duration
	concurrency int

	mu       sync.RWMutex
	account  string
	inflight int // transactions between sign and receipt

	subMu   sync.RWMutex
	subs    map[int]chan Event
	nextSub int
}

// New creates a Market.
func New(opts Options) *Market {
	m := &Market{
		wallet:      opts.Wallet,
		storage:     opts.Storage,
		contract:    opts.Contract,
		alerter:     opts.Alerter,
		logger:      opts.Logger,
		currency:    opts.Currency,
		chainID:     opts.ChainID,
		txTimeout:   opts.TxTimeout,
		concurrency: opts.ResolveConcurrency,
		subs:        make(map[int]chan Event),
	}
	if m.alerter == nil {
		m.alerter = contracts.AlerterFunc(func(string) {})
	}
	if m.logger == nil {
		m.logger = logging.NewNopLogger()
	}
	if m.currency == "" {
		m.currency = "ETH"
	}
	if m.txTimeout <= 0 {
		m.txTimeout = 2 * time.Minute
	}
	if m.concurrency <= 0 {
		m.concurrency = 8
	}
	return m
}

// CurrentAccount returns the connected account, or "" before connection.
func (m *Market) CurrentAccount() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.account
}

// IsLoading reports whether a purchase or listing transaction is in flight.
func (m *Market) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inflight > 0
}

// Currency returns the display symbol of the native currency.
func (m *Market) Currency() string {
	return m.currency
}

// HasWallet reports whether a wallet provider is installed.
func (m *Market) HasWallet() bool {
	return m.wallet != nil
}

func (m *Market) setAccount(account string) {
	m.mu.Lock()
	m.account = account
	m.mu.Unlock()

	m.logger.ComponentInfo(logging.ComponentMarket, "Account set", zap.String("account", account))
	m.publish(Event{Type: EventAccountChanged, Account: account})
}

// beginLoading counts one more action in flight and returns the func that
// ends it. Loading events fire only when the count leaves or reaches zero.
func (m *Market) beginLoading() func() {
	m.mu.Lock()
	m.inflight++
	first := m.inflight == 1
	account := m.account
	m.mu.Unlock()

	if first {
		m.publish(Event{Type: EventLoadingChanged, Account: account, Loading: true})
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.inflight--
			last := m.inflight == 0
			account := m.account
			m.mu.Unlock()

			if last {
				m.publish(Event{Type: EventLoadingChanged, Account: account, Loading: false})
			}
		})
	}
}

// fail is the terminal path of every failed network action: one alert and a
// reset event for the surfaces. Callers release their loading slot.
func (m *Market) fail(action string, err error) error {
	m.logger.ComponentError(logging.ComponentMarket, action+" failed", zap.Error(err))
	m.alerter.Alert(err.Error())
	m.publish(Event{Type: EventReset, Account: m.CurrentAccount(), Error: err.Error()})
	return err
}

// CheckIfWalletIsConnected adopts an already authorized account without
// prompting the wallet.
func (m *Market) CheckIfWalletIsConnected(ctx context.Context) error {
	if m.wallet == nil {
		m.alerter.Alert(AlertNoWallet)
		return errors.NewWalletMissingError()
	}

	accts, err := m.wallet.Accounts(ctx)
	if err != nil {
		m.logger.ComponentWarn(logging.ComponentWallet, "eth_accounts failed", zap.Error(err))
		return err
	}
	if len(accts) == 0 {
		m.logger.ComponentDebug(logging.ComponentWallet, "No authorized account found")
		return nil
	}

	m.setAccount(accts[0].Hex())
	return nil
}

// ConnectWallet asks the wallet for authorization and stores the first
// account it returns.
func (m *Market) ConnectWallet(ctx context.Context) (string, error) {
	if m.wallet == nil {
		m.alerter.Alert(AlertNoWallet)
		return "", errors.NewWalletMissingError()
	}

	accts, err := m.wallet.RequestAccounts(ctx)
	if err == nil && len(accts) == 0 {
		err = errors.NewWalletRejectedError(m.wallet.Name(), fmt.Errorf("no accounts returned"))
	}
	if err != nil {
		return "", m.fail("connect", err)
	}

	account := accts[0].Hex()
	m.setAccount(account)
	return account, nil
}

// WatchAccounts follows the wallet's account-change feed until ctx is done.
// An empty account list leaves the current account in place.
func (m *Market) WatchAccounts(ctx context.Context) error {
	if m.wallet == nil {
		return errors.NewWalletMissingError()
	}

	sink := make(chan []common.Address, 4)
	cancel, err := m.wallet.SubscribeAccounts(ctx, sink)
	if err != nil {
		return fmt.Errorf("failed to subscribe to account changes: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case accts := <-sink:
			if len(accts) == 0 {
				continue
			}
			if next := accts[0].Hex(); next != m.CurrentAccount() {
				m.setAccount(next)
			}
		}
	}
}

func (m *Market) ensureAccount(ctx context.Context) (string, error) {
	if account := m.CurrentAccount(); account != "" {
		return account, nil
	}
	return m.ConnectWallet(ctx)
}

// UploadToStorage uploads r and returns its gateway URL. Failures are logged
// and returned; no alert is raised.
func (m *Market) UploadToStorage(ctx context.Context, name string, r io.Reader) (string, error) {
	added, err := m.storage.Add(ctx, r, name)
	if err != nil {
		m.logger.ComponentError(logging.ComponentIPFS, "Error uploading file to IPFS", zap.Error(err))
		return "", errors.NewStorageError("upload", err)
	}
	url := m.storage.URL(added.Cid)
	m.logger.ComponentInfo(logging.ComponentIPFS, "Uploaded to IPFS",
		zap.String("name", added.Name),
		zap.String("url", url))
	return url, nil
}

func (m *Market) parsePrice(price string) (*big.Int, error) {
	wei, err := units.ParseEther(price)
	if err != nil {
		return nil, err
	}
	if wei.Sign() <= 0 {
		return nil, errors.NewValidationError("price", "must be greater than zero", price)
	}
	return wei, nil
}

// CreateListing stores the token metadata, mints the token and lists it for
// sale. It returns the metadata URI.
func (m *Market) CreateListing(ctx context.Context, in ListingInput) (string, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.Price) == "" || strings.TrimSpace(in.FileURL) == "" {
		m.alerter.Alert(AlertFieldsRequired)
		return "", errors.NewValidationError("", AlertFieldsRequired, nil)
	}
	price, err := m.parsePrice(in.Price)
	if err != nil {
		m.alerter.Alert(errors.GetErrorMessage(err))
		return "", err
	}

	data, err := json.Marshal(nft.Metadata{Name: in.Name, Description: in.Description, Image: in.FileURL})
	if err != nil {
		return "", errors.Wrap(err, "marshal metadata")
	}
	uri, err := m.UploadToStorage(ctx, "metadata.json", bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	if err := m.listToken(ctx, "createToken", price, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return m.contract.CreateToken(opts, uri, price)
	}); err != nil {
		return "", err
	}

	m.publish(Event{Type: EventListingCreated, Account: m.CurrentAccount(), TokenURI: uri})
	return uri, nil
}

// Resell lists an owned token again at a new price.
func (m *Market) Resell(ctx context.Context, tokenID int64, price string) error {
	wei, err := m.parsePrice(price)
	if err != nil {
		m.alerter.Alert(errors.GetErrorMessage(err))
		return err
	}

	if err := m.listToken(ctx, "resellToken", wei, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return m.contract.ResellToken(opts, big.NewInt(tokenID), wei)
	}); err != nil {
		return err
	}

	m.publish(Event{Type: EventResold, Account: m.CurrentAccount(), TokenID: tokenID})
	return nil
}

// listToken pays the listing fee with a createToken or resellToken call.
func (m *Market) listToken(ctx context.Context, method string, price *big.Int, send func(*bind.TransactOpts) (*types.Transaction, error)) error {
	fee, err := m.contract.GetListingPrice(ctx)
	if err != nil {
		return m.fail(method, err)
	}
	m.logger.ComponentDebug(logging.ComponentContract, "Listing price",
		zap.String("fee", units.FormatEther(fee)),
		zap.String("price", units.FormatEther(price)))
	return m.submit(ctx, method, fee, send)
}

// submit signs and sends a payable transaction, then waits for its receipt.
// The loading flag covers the whole round trip.
func (m *Market) submit(ctx context.Context, method string, value *big.Int, send func(*bind.TransactOpts) (*types.Transaction, error)) error {
	account, err := m.ensureAccount(ctx)
	if err != nil {
		return err
	}
	if m.chainID == nil {
		return m.fail(method, errors.NewInternalError("chain id not configured", nil))
	}

	defer m.beginLoading()()

	opts, err := m.wallet.Transactor(ctx, common.HexToAddress(account), m.chainID)
	if err != nil {
		return m.fail(method, err)
	}
	opts.Value = value

	tx, err := send(opts)
	if err != nil {
		return m.fail(method, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, m.txTimeout)
	defer cancel()
	if _, err := m.contract.WaitMined(waitCtx, tx); err != nil {
		if waitCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			err = errors.NewTimeoutError(method+" receipt", m.txTimeout.String())
		}
		return m.fail(method, err)
	}

	m.logger.ComponentInfo(logging.ComponentContract, "Transaction confirmed",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()))
	return nil
}

// Purchase buys record at its listed price.
func (m *Market) Purchase(ctx context.Context, record nft.Record) error {
	price, err := units.ParseEther(record.Price)
	if err != nil {
		m.alerter.Alert(errors.GetErrorMessage(err))
		return err
	}

	defer m.beginLoading()()

	if err := m.submit(ctx, "createMarketSale", price, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return m.contract.CreateMarketSale(opts, big.NewInt(record.TokenID))
	}); err != nil {
		return err
	}

	m.publish(Event{Type: EventPurchased, Account: m.CurrentAccount(), TokenID: record.TokenID})
	return nil
}

// FetchAllListings returns every unsold listing in contract order. No account
// is needed.
func (m *Market) FetchAllListings(ctx context.Context) ([]nft.Record, error) {
	items, err := m.contract.FetchMarketItems(ctx)
	if err != nil {
		return nil, m.fail("fetchMarketItems", err)
	}
	records, err := m.resolve(ctx, items)
	if err != nil {
		return nil, m.fail("fetchMarketItems", err)
	}
	return records, nil
}

// FindListing returns the unsold listing with tokenID. A non-empty price must
// equal the listed price, so callers pay what they were shown.
func (m *Market) FindListing(ctx context.Context, tokenID int64, price string) (nft.Record, error) {
	records, err := m.FetchAllListings(ctx)
	if err != nil {
		return nft.Record{}, err
	}
	record, ok := nft.NewCollection(records).Find(tokenID)
	if !ok {
		return nft.Record{}, errors.NewNotFoundError("nft", strconv.FormatInt(tokenID, 10))
	}
	if price != "" && units.ComparePrices(price, record.Price) != 0 {
		return nft.Record{}, errors.NewValidationError("price", "does not match the listing price "+record.Price, price)
	}
	return record, nil
}

// FetchOwnedOrListedListings returns the tokens the current account owns or
// has listed.
func (m *Market) FetchOwnedOrListedListings(ctx context.Context, kind ListingKind) ([]nft.Record, error) {
	account := m.CurrentAccount()
	if account == "" {
		return nil, fmt.Errorf("fetch %s listings: %w", kind, errors.ErrNoAccount)
	}
	from := common.HexToAddress(account)

	var (
		items  []contracts.MarketItem
		err    error
		method string
	)
	switch kind {
	case ListingOwned:
		method = "fetchMyNFTs"
		items, err = m.contract.FetchMyNFTs(ctx, from)
	case ListingListed:
		method = "fetchItemsListed"
		items, err = m.contract.FetchItemsListed(ctx, from)
	default:
		return nil, errors.NewValidationError("kind", "must be owned or listed", kind)
	}
	if err != nil {
		return nil, m.fail(method, err)
	}

	records, err := m.resolve(ctx, items)
	if err != nil {
		return nil, m.fail(method, err)
	}
	return records, nil
}

// resolve joins market items with their metadata. Lookups run concurrently;
// each result lands in its item's slot so order is preserved.
func (m *Market) resolve(ctx context.Context, items []contracts.MarketItem) ([]nft.Record, error) {
	records := make([]nft.Record, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, item := range items {
		g.Go(func() error {
			if item.TokenId == nil || !item.TokenId.IsInt64() {
				return errors.NewValidationError("tokenId", "out of int64 range: "+item.TokenId.String(), item.TokenId)
			}
			uri, err := m.contract.TokenURI(gctx, item.TokenId)
			if err != nil {
				return err
			}
			md, err := m.storage.FetchMetadata(gctx, uri)
			if err != nil {
				return errors.NewStorageError("fetch metadata", err)
			}
			records[i] = nft.Record{
				TokenID:     item.TokenId.Int64(),
				Seller:      item.Seller.Hex(),
				Owner:       item.Owner.Hex(),
				Price:       units.FormatEther(item.Price),
				Image:       md.Image,
				Name:        md.Name,
				Description: md.Description,
				TokenURI:    uri,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.logger.ComponentDebug(logging.ComponentMarket, "Resolved listings", zap.Int("count", len(records)))
	return records, nil
}
