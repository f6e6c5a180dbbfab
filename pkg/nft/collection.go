package nft

import (
	"slices"
	"strings"

	"github.com/DeBrosOfficial/lostsouls/pkg/units"
)

// SortKey selects one of the three fixed orderings of the dropdown.
type SortKey int

const (
	SortRecent SortKey = iota
	SortPriceAsc
	SortPriceDesc
)

// SortKeys lists the keys in dropdown order.
var SortKeys = []SortKey{SortRecent, SortPriceAsc, SortPriceDesc}

var sortLabels = map[SortKey]string{
	SortRecent:    "Recently added",
	SortPriceAsc:  "Price (low to high)",
	SortPriceDesc: "Price (high to low)",
}

// String returns the dropdown label.
func (k SortKey) String() string {
	if l, ok := sortLabels[k]; ok {
		return l
	}
	return sortLabels[SortRecent]
}

// ParseSortKey maps a label or short name ("recent", "price_asc",
// "price_desc") to a key. Unknown input falls back to SortRecent.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "price_asc", "price-asc", "asc", strings.ToLower(sortLabels[SortPriceAsc]):
		return SortPriceAsc
	case "price_desc", "price-desc", "desc", strings.ToLower(sortLabels[SortPriceDesc]):
		return SortPriceDesc
	default:
		return SortRecent
	}
}

// Sort returns a sorted copy of records. Ties keep their relative order.
func Sort(records []Record, key SortKey) []Record {
	out := slices.Clone(records)
	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b Record) int { return units.ComparePrices(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b Record) int { return units.ComparePrices(b.Price, a.Price) })
	default:
		slices.SortStableFunc(out, func(a, b Record) int {
			switch {
			case a.TokenID > b.TokenID:
				return -1
			case a.TokenID < b.TokenID:
				return 1
			}
			return 0
		})
	}
	return out
}

// Filter returns the records whose name contains term, ignoring case. The
// term is matched as typed, surrounding spaces included. An empty term, or a
// term nothing matches, returns all records.
func Filter(records []Record, term string) []Record {
	term = strings.ToLower(term)
	if term == "" {
		return slices.Clone(records)
	}

	var matched []Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), term) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return slices.Clone(records)
	}
	return matched
}

// Collection is the page-level view over the last fetch: the full set in
// fetch order plus the committed search term and active sort key.
// It is not safe for concurrent use; each page owns its own.
type Collection struct {
	all  []Record
	term string
	sort SortKey
}

// NewCollection wraps a fetched set of records.
func NewCollection(records []Record) *Collection {
	return &Collection{all: slices.Clone(records)}
}

// Replace swaps in a freshly fetched set, keeping term and sort.
func (c *Collection) Replace(records []Record) {
	c.all = slices.Clone(records)
}

// Search commits a search term.
func (c *Collection) Search(term string) {
	c.term = term
}

// ClearSearch restores the unfiltered set.
func (c *Collection) ClearSearch() {
	c.term = ""
}

// SetSort changes the active ordering.
func (c *Collection) SetSort(key SortKey) {
	c.sort = key
}

// SortKey returns the active ordering.
func (c *Collection) SortKey() SortKey {
	return c.sort
}

// Term returns the committed search term.
func (c *Collection) Term() string {
	return c.term
}

// All returns the unfiltered records in fetch order.
func (c *Collection) All() []Record {
	return slices.Clone(c.all)
}

// Len returns the size of the unfiltered set.
func (c *Collection) Len() int {
	return len(c.all)
}

// View returns the records to display.
func (c *Collection) View() []Record {
	return Sort(Filter(c.all, c.term), c.sort)
}

// Find returns the record with the given token id.
func (c *Collection) Find(tokenID int64) (Record, bool) {
	for _, r := range c.all {
		if r.TokenID == tokenID {
			return r, true
		}
	}
	return Record{}, false
}
