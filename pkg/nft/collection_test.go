package nft

import (
	"strings"
	"testing"

	"github.com/DeBrosOfficial/lostsouls/pkg/units"
)

func sample() []Record {
	return []Record{
		{TokenID: 1, Name: "Lost Soul #1", Price: "0.5"},
		{TokenID: 4, Name: "Wandering Ghost", Price: "10"},
		{TokenID: 2, Name: "lost soul #2", Price: "9.5"},
		{TokenID: 3, Name: "Phantom", Price: "0.05"},
		{TokenID: 5, Name: "Spirit", Price: "0.5"},
	}
}

func tokenIDs(records []Record) []int64 {
	ids := make([]int64, len(records))
	for i, r := range records {
		ids[i] = r.TokenID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSort_PriceOrderings(t *testing.T) {
	asc := Sort(sample(), SortPriceAsc)
	for i := 1; i < len(asc); i++ {
		if units.ComparePrices(asc[i-1].Price, asc[i].Price) > 0 {
			t.Fatalf("ascending order broken at %d: %s > %s", i, asc[i-1].Price, asc[i].Price)
		}
	}

	desc := Sort(sample(), SortPriceDesc)
	for i := 1; i < len(desc); i++ {
		if units.ComparePrices(desc[i-1].Price, desc[i].Price) < 0 {
			t.Fatalf("descending order broken at %d: %s < %s", i, desc[i-1].Price, desc[i].Price)
		}
	}

	// "10" must sort above "9.5"; a string comparison would get this wrong.
	if desc[0].TokenID != 4 {
		t.Errorf("highest price first, got token %d", desc[0].TokenID)
	}
}

func TestSort_StableTies(t *testing.T) {
	asc := Sort(sample(), SortPriceAsc)
	want := []int64{3, 1, 5, 2, 4}
	if got := tokenIDs(asc); !equalIDs(got, want) {
		t.Errorf("ascending = %v, want %v", got, want)
	}
}

func TestSort_RecentlyAdded(t *testing.T) {
	got := tokenIDs(Sort(sample(), SortRecent))
	want := []int64{5, 4, 3, 2, 1}
	if !equalIDs(got, want) {
		t.Errorf("recent = %v, want %v", got, want)
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	in := sample()
	_ = Sort(in, SortRecent)
	if in[0].TokenID != 1 {
		t.Error("Sort mutated its input")
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		term string
		want []int64
	}{
		{"case insensitive match", "LOST", []int64{1, 2}},
		{"single match", "phan", []int64{3}},
		{"empty term restores all", "", []int64{1, 4, 2, 3, 5}},
		{"whitespace term nothing contains restores all", "   ", []int64{1, 4, 2, 3, 5}},
		{"spaces are part of the term", "soul ", []int64{1, 2}},
		{"trailing space must match", "ghost ", []int64{1, 4, 2, 3, 5}},
		{"leading space must match", " ghost", []int64{4}},
		{"no match restores all", "dragon", []int64{1, 4, 2, 3, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(sample(), tt.term)
			if !equalIDs(tokenIDs(got), tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.term, tokenIDs(got), tt.want)
			}
			if tt.term != "" && len(got) < len(sample()) {
				for _, r := range got {
					if !strings.Contains(strings.ToLower(r.Name), strings.ToLower(tt.term)) {
						t.Errorf("record %q does not contain %q", r.Name, tt.term)
					}
				}
			}
		})
	}
}

func TestCollection_View(t *testing.T) {
	c := NewCollection(sample())

	if got := tokenIDs(c.View()); !equalIDs(got, []int64{5, 4, 3, 2, 1}) {
		t.Errorf("default view = %v", got)
	}

	c.Search("soul")
	c.SetSort(SortPriceDesc)
	if got := tokenIDs(c.View()); !equalIDs(got, []int64{2, 1}) {
		t.Errorf("filtered desc view = %v", got)
	}

	c.ClearSearch()
	if c.Term() != "" || len(c.View()) != c.Len() {
		t.Error("ClearSearch should restore the unfiltered set")
	}

	c.Replace(sample()[:2])
	if c.Len() != 2 || c.SortKey() != SortPriceDesc {
		t.Errorf("Replace should keep sort and swap records, len=%d", c.Len())
	}

	if r, ok := c.Find(4); !ok || r.Name != "Wandering Ghost" {
		t.Errorf("Find(4) = %+v, %v", r, ok)
	}
	if _, ok := c.Find(99); ok {
		t.Error("Find(99) should miss")
	}
}

func TestParseSortKey(t *testing.T) {
	tests := map[string]SortKey{
		"":                    SortRecent,
		"recent":              SortRecent,
		"Price (low to high)": SortPriceAsc,
		"price_asc":           SortPriceAsc,
		"Price (high to low)": SortPriceDesc,
		"desc":                SortPriceDesc,
		"bogus":               SortRecent,
	}
	for in, want := range tests {
		if got := ParseSortKey(in); got != want {
			t.Errorf("ParseSortKey(%q) = %v, want %v", in, got, want)
		}
	}
	if SortPriceAsc.String() != "Price (low to high)" {
		t.Errorf("label = %s", SortPriceAsc)
	}
}

func TestShortenAddress(t *testing.T) {
	if got := ShortenAddress("0x1234567890abcdef1234567890abcdef12345678"); got != "0x1234...5678" {
		t.Errorf("ShortenAddress = %s", got)
	}
	if got := ShortenAddress("0x12"); got != "0x12" {
		t.Errorf("short input changed: %s", got)
	}
}

func TestRecordOwnership(t *testing.T) {
	r := Record{Seller: "0xAbC", Owner: "0xDef"}
	if !r.SoldBy("0xabc") || r.SoldBy("") {
		t.Error("SoldBy should be case-insensitive and false for empty account")
	}
	if !r.OwnedBy("0xDEF") || r.OwnedBy("0xabc") {
		t.Error("OwnedBy mismatch")
	}
}
