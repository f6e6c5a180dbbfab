package tui

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DeBrosOfficial/lostsouls/pkg/market"
	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
	"github.com/DeBrosOfficial/lostsouls/pkg/tui/nav"
)

// AlertMsg shows a transient banner. The program alerter sends these.
type AlertMsg struct {
	Text string
}

type clearAlertMsg struct{ seq int }

type listingsMsg struct {
	route   nav.Route
	records []nft.Record
	err     error
}

type connectedMsg struct {
	account string
	err     error
}

type walletCheckedMsg struct{ err error }

type uploadedMsg struct {
	url string
	err error
}

type createdMsg struct {
	uri string
	err error
}

type purchasedMsg struct {
	tokenID int64
	err     error
}

type resoldMsg struct {
	tokenID int64
	err     error
}

type eventMsg struct {
	event market.Event
	ok    bool
}

const alertTTL = 4 * time.Second

func clearAlertCmd(seq int) tea.Cmd {
	return tea.Tick(alertTTL, func(time.Time) tea.Msg { return clearAlertMsg{seq: seq} })
}

func fetchCmd(ctx context.Context, mk *market.Market, route nav.Route) tea.Cmd {
	return func() tea.Msg {
		var (
			records []nft.Record
			err     error
		)
		switch route {
		case nav.RouteListed:
			records, err = mk.FetchOwnedOrListedListings(ctx, market.ListingListed)
		case nav.RouteMine:
			records, err = mk.FetchOwnedOrListedListings(ctx, market.ListingOwned)
		default:
			records, err = mk.FetchAllListings(ctx)
		}
		return listingsMsg{route: route, records: records, err: err}
	}
}

func checkWalletCmd(ctx context.Context, mk *market.Market) tea.Cmd {
	return func() tea.Msg {
		return walletCheckedMsg{err: mk.CheckIfWalletIsConnected(ctx)}
	}
}

func connectCmd(ctx context.Context, mk *market.Market) tea.Cmd {
	return func() tea.Msg {
		account, err := mk.ConnectWallet(ctx)
		return connectedMsg{account: account, err: err}
	}
}

func uploadCmd(ctx context.Context, mk *market.Market, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadedMsg{err: err}
		}
		defer f.Close()
		url, err := mk.UploadToStorage(ctx, filepath.Base(path), f)
		return uploadedMsg{url: url, err: err}
	}
}

func createCmd(ctx context.Context, mk *market.Market, in market.ListingInput) tea.Cmd {
	return func() tea.Msg {
		uri, err := mk.CreateListing(ctx, in)
		return createdMsg{uri: uri, err: err}
	}
}

func purchaseCmd(ctx context.Context, mk *market.Market, record nft.Record) tea.Cmd {
	return func() tea.Msg {
		return purchasedMsg{tokenID: record.TokenID, err: mk.Purchase(ctx, record)}
	}
}

func resellCmd(ctx context.Context, mk *market.Market, tokenID int64, price string) tea.Cmd {
	return func() tea.Msg {
		return resoldMsg{tokenID: tokenID, err: mk.Resell(ctx, tokenID, price)}
	}
}

func waitEventCmd(events <-chan market.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{event: ev, ok: ok}
	}
}
