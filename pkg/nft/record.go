// Package nft holds the NFT records shown by the client and the in-memory
// collection the pages filter and sort.
package nft

import "strings"

// Record is one marketplace token joined with its storage metadata.
// Records are immutable once fetched.
type Record struct {
	TokenID     int64  `json:"token_id"`
	Seller      string `json:"seller"`
	Owner       string `json:"owner"`
	Price       string `json:"price"` // decimal ether
	Image       string `json:"image"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TokenURI    string `json:"token_uri"`
}

// Metadata is the JSON document stored on IPFS for every token.
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// SoldBy reports whether account is the seller of the record.
func (r Record) SoldBy(account string) bool {
	return account != "" && strings.EqualFold(r.Seller, account)
}

// OwnedBy reports whether account owns the record.
func (r Record) OwnedBy(account string) bool {
	return account != "" && strings.EqualFold(r.Owner, account)
}

// ShortenAddress renders 0x1234567890abcdef... as 0x1234...cdef.
func ShortenAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
