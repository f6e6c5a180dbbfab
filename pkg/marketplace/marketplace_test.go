package marketplace

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/DeBrosOfficial/lostsouls/pkg/contracts"
	soulerrors "github.com/DeBrosOfficial/lostsouls/pkg/errors"
)

var (
	marketAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	alice      = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob        = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

// fakeCaller answers eth_call by unpacking the selector and packing canned
// outputs with the real ABI.
type fakeCaller struct {
	abi     abi.ABI
	results map[string][]interface{}
	fail    map[string]error
	froms   map[string]common.Address
}

func newFakeCaller(t *testing.T) *fakeCaller {
	t.Helper()
	parsed, err := ParseABI()
	if err != nil {
		t.Fatalf("ParseABI: %v", err)
	}
	return &fakeCaller{
		abi:     parsed,
		results: make(map[string][]interface{}),
		fail:    make(map[string]error),
		froms:   make(map[string]common.Address),
	}
}

func (f *fakeCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (f *fakeCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if call.To == nil || *call.To != marketAddr {
		return nil, fmt.Errorf("unexpected target %v", call.To)
	}
	method, err := f.abi.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	f.froms[method.Name] = call.From
	if err := f.fail[method.Name]; err != nil {
		return nil, err
	}
	if method.Name == "tokenURI" {
		args, err := method.Inputs.Unpack(call.Data[4:])
		if err != nil {
			return nil, err
		}
		id := args[0].(*big.Int)
		return method.Outputs.Pack(fmt.Sprintf("https://gw/ipfs/meta-%s", id))
	}
	return method.Outputs.Pack(f.results[method.Name]...)
}

type fakeReceipts struct {
	receipt *types.Receipt
}

func (f *fakeReceipts) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return f.receipt, nil
}

func (f *fakeReceipts) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return nil, nil
}

func items() []contracts.MarketItem {
	return []contracts.MarketItem{
		{TokenId: big.NewInt(1), Seller: alice, Owner: marketAddr, Price: big.NewInt(5e17)},
		{TokenId: big.NewInt(2), Seller: bob, Owner: marketAddr, Price: big.NewInt(2e18)},
	}
}

func TestContract_GetListingPrice(t *testing.T) {
	caller := newFakeCaller(t)
	caller.results["getListingPrice"] = []interface{}{big.NewInt(25e15)}

	c, err := New(marketAddr, caller, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	fee, err := c.GetListingPrice(context.Background())
	if err != nil {
		t.Fatalf("GetListingPrice: %v", err)
	}
	if fee.Cmp(big.NewInt(25e15)) != 0 {
		t.Errorf("fee = %s", fee)
	}
}

func TestContract_FetchItems(t *testing.T) {
	caller := newFakeCaller(t)
	for _, m := range []string{"fetchMarketItems", "fetchItemsListed", "fetchMyNFTs"} {
		caller.results[m] = []interface{}{items()}
	}

	c, err := New(marketAddr, caller, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		method string
		fetch  func() ([]contracts.MarketItem, error)
		from   common.Address
	}{
		{"fetchMarketItems", func() ([]contracts.MarketItem, error) { return c.FetchMarketItems(ctx) }, common.Address{}},
		{"fetchItemsListed", func() ([]contracts.MarketItem, error) { return c.FetchItemsListed(ctx, alice) }, alice},
		{"fetchMyNFTs", func() ([]contracts.MarketItem, error) { return c.FetchMyNFTs(ctx, bob) }, bob},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got, err := tt.fetch()
			if err != nil {
				t.Fatalf("%s: %v", tt.method, err)
			}
			if len(got) != 2 {
				t.Fatalf("len = %d", len(got))
			}
			if got[0].TokenId.Int64() != 1 || got[1].Seller != bob || got[1].Price.Cmp(big.NewInt(2e18)) != 0 {
				t.Errorf("decoded items = %+v", got)
			}
			if caller.froms[tt.method] != tt.from {
				t.Errorf("msg.sender = %s, want %s", caller.froms[tt.method].Hex(), tt.from.Hex())
			}
		})
	}
}

func TestContract_TokenURI(t *testing.T) {
	c, err := New(marketAddr, newFakeCaller(t), nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	uri, err := c.TokenURI(context.Background(), big.NewInt(7))
	if err != nil {
		t.Fatalf("TokenURI: %v", err)
	}
	if uri != "https://gw/ipfs/meta-7" {
		t.Errorf("uri = %s", uri)
	}
}

func TestContract_CallFailure(t *testing.T) {
	caller := newFakeCaller(t)
	caller.fail["fetchMarketItems"] = errors.New("connection refused")

	c, _ := New(marketAddr, caller, nil, nil, nil)
	_, err := c.FetchMarketItems(context.Background())
	if !soulerrors.IsTransaction(err) {
		t.Fatalf("expected transaction error, got %v", err)
	}
}

func TestContract_WaitMined(t *testing.T) {
	parsed, _ := ParseABI()
	data, err := parsed.Pack("createMarketSale", big.NewInt(3))
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	tx := types.NewTx(&types.LegacyTx{To: &marketAddr, Data: data, Value: big.NewInt(1)})

	t.Run("success", func(t *testing.T) {
		receipts := &fakeReceipts{receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(10)}}
		c, _ := New(marketAddr, newFakeCaller(t), nil, receipts, nil)
		if _, err := c.WaitMined(context.Background(), tx); err != nil {
			t.Fatalf("WaitMined: %v", err)
		}
	})

	t.Run("reverted", func(t *testing.T) {
		receipts := &fakeReceipts{receipt: &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(11)}}
		c, _ := New(marketAddr, newFakeCaller(t), nil, receipts, nil)
		_, err := c.WaitMined(context.Background(), tx)

		var txErr *soulerrors.TransactionError
		if !errors.As(err, &txErr) {
			t.Fatalf("expected TransactionError, got %v", err)
		}
		if txErr.Method != "createMarketSale" {
			t.Errorf("method = %s", txErr.Method)
		}
		if txErr.TxHash != tx.Hash().Hex() {
			t.Errorf("tx hash = %s", txErr.TxHash)
		}
	})
}

func TestDial_InvalidAddress(t *testing.T) {
	_, err := Dial(context.Background(), "http://127.0.0.1:8545", "not-an-address", nil)
	if !soulerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
