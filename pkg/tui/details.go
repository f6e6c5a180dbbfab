package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
)

// MsgOwnNFT is shown instead of the buy button on the seller's own listing.
const MsgOwnNFT = "You cannot purchase your own NFT"

type detailsPage struct {
	record nft.Record
	resell textinput.Model
}

func newDetailsPage(record nft.Record, currency string) detailsPage {
	ti := textinput.New()
	ti.Placeholder = "New price in " + currency
	ti.CharLimit = 32
	ti.Width = 24
	return detailsPage{record: record, resell: ti}
}

// canBuy reports whether account may purchase the record.
func (d detailsPage) canBuy(account string) bool {
	return !d.record.SoldBy(account) && !d.record.OwnedBy(account)
}

func (d detailsPage) canResell(account string) bool {
	return d.record.OwnedBy(account)
}

func (d detailsPage) View(account, currency string, busy bool) string {
	r := d.record
	var s strings.Builder
	s.WriteString(titleStyle.Render(r.Name) + "\n")
	if r.Description != "" {
		s.WriteString(r.Description + "\n\n")
	}

	rows := [][2]string{
		{"Token", fmt.Sprintf("#%d", r.TokenID)},
		{"Image", r.Image},
		{"Creator", nft.ShortenAddress(r.Seller)},
		{"Owner", nft.ShortenAddress(r.Owner)},
		{"Price", r.Price + " " + currency},
	}
	for _, row := range rows {
		s.WriteString(blurredStyle.Render(fmt.Sprintf("%-8s", row[0])) + " " + row[1] + "\n")
	}
	s.WriteString("\n")

	switch {
	case busy:
		s.WriteString(subtitleStyle.Render("waiting for transaction...") + "\n")
	case d.record.SoldBy(account):
		s.WriteString(errorStyle.Render(MsgOwnNFT) + "\n")
	case d.canResell(account):
		s.WriteString(d.resell.View() + "\n")
		s.WriteString(buttonStyle.Render("List on Marketplace") + "\n")
	default:
		s.WriteString(buttonStyle.Render(fmt.Sprintf("Buy for %s %s", r.Price, currency)) + "\n")
	}

	help := "Esc to go back"
	if d.canResell(account) {
		help = "e to edit price • Enter to list • " + help
	} else if d.canBuy(account) {
		help = "Enter/b to buy • " + help
	}
	s.WriteString(helpStyle.Render(help))
	return boxStyle.Render(s.String())
}
