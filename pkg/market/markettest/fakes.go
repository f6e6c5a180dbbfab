// Package markettest provides in-memory collaborators for exercising a
// market.Market without a chain, a wallet or an IPFS node.
package markettest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/DeBrosOfficial/lostsouls/pkg/contracts"
	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
)

// Wallet is a scripted wallet provider.
type Wallet struct {
	mu         sync.Mutex
	Authorized []common.Address
	Grant      []common.Address
	RequestErr error
	Requests   int

	sinks []chan<- []common.Address
}

var _ contracts.WalletProvider = (*Wallet)(nil)

// NewWallet returns a wallet that grants accounts on request.
func NewWallet(accounts ...common.Address) *Wallet {
	return &Wallet{Grant: accounts}
}

func (w *Wallet) Name() string { return "fake" }

func (w *Wallet) Accounts(ctx context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]common.Address(nil), w.Authorized...), nil
}

func (w *Wallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Requests++
	if w.RequestErr != nil {
		return nil, w.RequestErr
	}
	w.Authorized = append([]common.Address(nil), w.Grant...)
	return append([]common.Address(nil), w.Authorized...), nil
}

func (w *Wallet) SubscribeAccounts(ctx context.Context, sink chan<- []common.Address) (func(), error) {
	w.mu.Lock()
	w.sinks = append(w.sinks, sink)
	w.mu.Unlock()
	return func() {}, nil
}

// SwitchAccounts simulates the user picking another account in the wallet.
func (w *Wallet) SwitchAccounts(accounts ...common.Address) {
	w.mu.Lock()
	w.Authorized = accounts
	sinks := append([]chan<- []common.Address(nil), w.sinks...)
	w.mu.Unlock()

	for _, s := range sinks {
		s <- accounts
	}
}

// Subscribers reports how many account subscriptions are open.
func (w *Wallet) Subscribers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.sinks)
}

func (w *Wallet) Transactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{
		From:    account,
		Context: ctx,
		Signer: func(_ common.Address, tx *types.Transaction) (*types.Transaction, error) {
			return tx, nil
		},
	}, nil
}

// Storage is an in-memory content store addressed by fake CIDs.
type Storage struct {
	mu       sync.Mutex
	Base     string
	AddErr   error
	Uploads  map[string][]byte
	Metadata map[string]*nft.Metadata
	Adds     int
	Fetches  int
}

var _ contracts.StorageProvider = (*Storage)(nil)

// NewStorage returns an empty store.
func NewStorage() *Storage {
	return &Storage{
		Base:     "https://gw.test",
		Uploads:  make(map[string][]byte),
		Metadata: make(map[string]*nft.Metadata),
	}
}

func (s *Storage) Add(ctx context.Context, r io.Reader, name string) (*contracts.AddResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Adds++
	if s.AddErr != nil {
		return nil, s.AddErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	cid := fmt.Sprintf("bafy%04d", len(s.Uploads)+1)
	s.Uploads[cid] = buf.Bytes()
	return &contracts.AddResponse{Name: name, Cid: cid, Size: int64(buf.Len())}, nil
}

func (s *Storage) URL(cid string) string {
	return s.Base + "/ipfs/" + cid
}

func (s *Storage) FetchMetadata(ctx context.Context, uri string) (*nft.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fetches++
	md, ok := s.Metadata[uri]
	if !ok {
		return nil, fmt.Errorf("no metadata at %s", uri)
	}
	return md, nil
}

// Calls counts requests made against a Contract.
type Calls map[string]int

// Total returns the number of calls of any kind.
func (c Calls) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Contract is a scripted marketplace contract.
type Contract struct {
	mu sync.Mutex

	ListingPrice *big.Int
	Items        []contracts.MarketItem
	Listed       map[common.Address][]contracts.MarketItem
	Owned        map[common.Address][]contracts.MarketItem
	URIs         map[int64]string

	// URIDelay delays TokenURI per token id to shuffle completion order.
	URIDelay map[int64]time.Duration

	SendErr   error
	WaitErr   error
	FetchErr  error
	Calls     Calls
	Submitted []Submission

	// NeverMined makes WaitMined block until its context ends.
	NeverMined bool
}

// Submission records a transaction handed to the contract.
type Submission struct {
	Method  string
	From    common.Address
	Value   *big.Int
	TokenID *big.Int
	Price   *big.Int
	URI     string
}

var _ contracts.Marketplace = (*Contract)(nil)

// NewContract returns a contract with a 0.025 ether listing fee.
func NewContract() *Contract {
	return &Contract{
		ListingPrice: big.NewInt(25e15),
		Listed:       make(map[common.Address][]contracts.MarketItem),
		Owned:        make(map[common.Address][]contracts.MarketItem),
		URIs:         make(map[int64]string),
		URIDelay:     make(map[int64]time.Duration),
		Calls:        make(Calls),
	}
}

func (c *Contract) record(method string) {
	c.mu.Lock()
	c.Calls[method]++
	c.mu.Unlock()
}

// CallCount returns the calls made so far.
func (c *Contract) CallCount() Calls {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(Calls, len(c.Calls))
	for k, v := range c.Calls {
		out[k] = v
	}
	return out
}

func (c *Contract) GetListingPrice(ctx context.Context) (*big.Int, error) {
	c.record("getListingPrice")
	return new(big.Int).Set(c.ListingPrice), nil
}

func (c *Contract) FetchMarketItems(ctx context.Context) ([]contracts.MarketItem, error) {
	c.record("fetchMarketItems")
	if c.FetchErr != nil {
		return nil, c.FetchErr
	}
	return c.Items, nil
}

func (c *Contract) FetchItemsListed(ctx context.Context, from common.Address) ([]contracts.MarketItem, error) {
	c.record("fetchItemsListed")
	if c.FetchErr != nil {
		return nil, c.FetchErr
	}
	return c.Listed[from], nil
}

func (c *Contract) FetchMyNFTs(ctx context.Context, from common.Address) ([]contracts.MarketItem, error) {
	c.record("fetchMyNFTs")
	if c.FetchErr != nil {
		return nil, c.FetchErr
	}
	return c.Owned[from], nil
}

func (c *Contract) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	c.record("tokenURI")
	c.mu.Lock()
	delay := c.URIDelay[tokenID.Int64()]
	uri, ok := c.URIs[tokenID.Int64()]
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if !ok {
		return "", fmt.Errorf("nonexistent token %s", tokenID)
	}
	return uri, nil
}

func (c *Contract) submit(opts *bind.TransactOpts, s Submission) (*types.Transaction, error) {
	c.record(s.Method)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return nil, c.SendErr
	}
	s.From = opts.From
	s.Value = opts.Value
	c.Submitted = append(c.Submitted, s)
	return types.NewTx(&types.LegacyTx{Nonce: uint64(len(c.Submitted)), Value: opts.Value}), nil
}

func (c *Contract) CreateToken(opts *bind.TransactOpts, uri string, price *big.Int) (*types.Transaction, error) {
	return c.submit(opts, Submission{Method: "createToken", URI: uri, Price: price})
}

func (c *Contract) ResellToken(opts *bind.TransactOpts, tokenID, price *big.Int) (*types.Transaction, error) {
	return c.submit(opts, Submission{Method: "resellToken", TokenID: tokenID, Price: price})
}

func (c *Contract) CreateMarketSale(opts *bind.TransactOpts, tokenID *big.Int) (*types.Transaction, error) {
	return c.submit(opts, Submission{Method: "createMarketSale", TokenID: tokenID})
}

func (c *Contract) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	c.record("waitMined")
	if c.NeverMined {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if c.WaitErr != nil {
		return nil, c.WaitErr
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}, nil
}

// Alerter records alerts.
type Alerter struct {
	mu       sync.Mutex
	messages []string
}

var _ contracts.Alerter = (*Alerter)(nil)

func (a *Alerter) Alert(msg string) {
	a.mu.Lock()
	a.messages = append(a.messages, msg)
	a.mu.Unlock()
}

// Messages returns the alerts raised so far.
func (a *Alerter) Messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}

// Item builds a market item priced in wei.
func Item(id int64, seller, owner common.Address, wei *big.Int) contracts.MarketItem {
	return contracts.MarketItem{TokenId: big.NewInt(id), Seller: seller, Owner: owner, Price: wei}
}
