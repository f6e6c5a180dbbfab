package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
)

func printJSON(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal JSON: %v\n", err)
		return
	}
	fmt.Println(string(jsonData))
}

// printListings renders records as a table. empty is printed when there are
// none.
func printListings(title string, records []nft.Record, currency, empty string) {
	fmt.Printf("👻 %s (%d)\n\n", title, len(records))
	if len(records) == 0 {
		fmt.Println(empty)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSELLER\tOWNER")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s %s\t%s\t%s\n",
			r.TokenID,
			r.Name,
			r.Price, currency,
			nft.ShortenAddress(r.Seller),
			nft.ShortenAddress(r.Owner),
		)
	}
	w.Flush()
}
