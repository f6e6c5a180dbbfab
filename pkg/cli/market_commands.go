package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/DeBrosOfficial/lostsouls/pkg/errors"
	"github.com/DeBrosOfficial/lostsouls/pkg/market"
	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
)

// Empty-listing texts.
const (
	msgNoListings = "No NFTs listed for sale"
	msgNoOwned    = "No NFTs owned"
)

func commandContext(g Globals) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if g.Timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// parseFlags parses args into fs. It reports false, with no error, when help
// was requested.
func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return false, nil
		}
		return false, fmt.Errorf("failed to parse flags: %w", err)
	}
	return true, nil
}

// HandleConnectCommand requests wallet authorization and prints the account.
func HandleConnectCommand(g Globals) error {
	ctx, cancel := commandContext(g)
	defer cancel()
	s, err := openSession(ctx, g, commandOptions())
	if err != nil {
		return err
	}
	defer s.Close()

	account, err := s.market.ConnectWallet(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect wallet: %w", err)
	}
	if g.JSON() {
		printJSON(map[string]string{"account": account})
		return nil
	}
	fmt.Printf("✅ Connected: %s\n", account)
	return nil
}

// HandleExploreCommand prints all listings for sale.
func HandleExploreCommand(args []string, g Globals) error {
	fs := flag.NewFlagSet("explore", flag.ContinueOnError)
	search := fs.String("search", "", "Filter by name")
	sortBy := fs.String("sort", "recent", "recent, price_asc or price_desc")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	ctx, cancel := commandContext(g)
	defer cancel()
	s, err := openSession(ctx, g, commandOptions())
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.market.FetchAllListings(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch listings: %w", err)
	}
	showListings(g, "Souls for sale", records, *search, *sortBy, s.market.Currency(), msgNoListings)
	return nil
}

// HandleAccountListingsCommand prints the listings the connected account has
// listed (kind listed) or owns (kind owned). The wallet is connected first.
func HandleAccountListingsCommand(kind market.ListingKind, args []string, g Globals) error {
	fs := flag.NewFlagSet(string(kind), flag.ContinueOnError)
	search := fs.String("search", "", "Filter by name")
	sortBy := fs.String("sort", "recent", "recent, price_asc or price_desc")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	ctx, cancel := commandContext(g)
	defer cancel()
	s, err := openSession(ctx, g, commandOptions())
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.market.ConnectWallet(ctx); err != nil {
		return fmt.Errorf("failed to connect wallet: %w", err)
	}
	records, err := s.market.FetchOwnedOrListedListings(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to fetch listings: %w", err)
	}

	title, empty := "My souls", msgNoOwned
	if kind == market.ListingListed {
		title, empty = "My souls for sale", msgNoListings
	}
	showListings(g, title, records, *search, *sortBy, s.market.Currency(), empty)
	return nil
}

func showListings(g Globals, title string, records []nft.Record, search, sortBy, currency, empty string) {
	records = nft.Sort(nft.Filter(records, search), nft.ParseSortKey(sortBy))
	if g.JSON() {
		if records == nil {
			records = []nft.Record{}
		}
		printJSON(records)
		return
	}
	printListings(title, records, currency, empty)
}

// HandleUploadCommand uploads a file and prints its gateway URL.
func HandleUploadCommand(args []string, g Globals) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: souls upload <file>")
	}

	ctx, cancel := commandContext(g)
	defer cancel()
	s, err := openSession(ctx, g, commandOptions())
	if err != nil {
		return err
	}
	defer s.Close()

	url, err := uploadFile(ctx, s.market, args[0])
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", args[0], err)
	}
	if g.JSON() {
		printJSON(map[string]string{"url": url})
		return nil
	}
	fmt.Printf("✅ Uploaded: %s\n", url)
	return nil
}

func uploadFile(ctx context.Context, mk *market.Market, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return mk.UploadToStorage(ctx, filepath.Base(path), f)
}

// HandleCreateCommand uploads an image if needed, then lists a new NFT.
func HandleCreateCommand(args []string, g Globals) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	name := fs.String("name", "", "NFT name")
	description := fs.String("description", "", "NFT description")
	price := fs.String("price", "", "Price in ether")
	image := fs.String("image", "", "Image URL")
	file := fs.String("file", "", "Local image to upload instead of --image")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	ctx, cancel := commandContext(g)
	defer cancel()
	s, err := openSession(ctx, g, commandOptions())
	if err != nil {
		return err
	}
	defer s.Close()

	in := market.ListingInput{Name: *name, Description: *description, Price: *price, FileURL: *image}
	if *file != "" {
		url, err := uploadFile(ctx, s.market, *file)
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", *file, err)
		}
		in.FileURL = url
	}

	uri, err := s.market.CreateListing(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to create NFT: %w", err)
	}
	if g.JSON() {
		printJSON(map[string]string{"token_uri": uri})
		return nil
	}
	fmt.Printf("✅ Listed %q for %s %s\n", in.Name, in.Price, s.market.Currency())
	fmt.Printf("   Token URI: %s\n", uri)
	return nil
}

func parseTokenArgs(cmd string, args []string) (int64, string, error) {
	if len(args) < 2 {
		return 0, "", fmt.Errorf("usage: souls %s <token_id> <price>", cmd)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 0 {
		return 0, "", fmt.Errorf("invalid token id: %s", args[0])
	}
	return id, args[1], nil
}

// HandleBuyCommand purchases a listing at its advertised price.
func HandleBuyCommand(args []string, g Globals) error {
	id, price, err := parseTokenArgs("buy", args)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(g)
	defer cancel()
	s, err := openSession(ctx, g, commandOptions())
	if err != nil {
		return err
	}
	defer s.Close()

	record, err := s.market.FindListing(ctx, id, price)
	if err != nil {
		if errors.IsNotFound(err) {
			return fmt.Errorf("token #%d is not for sale", id)
		}
		return fmt.Errorf("failed to look up token #%d: %w", id, err)
	}
	if err := s.market.Purchase(ctx, record); err != nil {
		return fmt.Errorf("failed to buy token #%d: %w", id, err)
	}
	if g.JSON() {
		printJSON(map[string]any{"token_id": id, "price": record.Price, "account": s.market.CurrentAccount()})
		return nil
	}
	fmt.Printf("✅ Bought %q (#%d) for %s %s\n", record.Name, id, record.Price, s.market.Currency())
	return nil
}

// HandleResellCommand lists an owned token again at a new price.
func HandleResellCommand(args []string, g Globals) error {
	id, price, err := parseTokenArgs("resell", args)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(g)
	defer cancel()
	s, err := openSession(ctx, g, commandOptions())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.market.Resell(ctx, id, price); err != nil {
		return fmt.Errorf("failed to resell token #%d: %w", id, err)
	}
	if g.JSON() {
		printJSON(map[string]any{"token_id": id, "price": price})
		return nil
	}
	fmt.Printf("✅ Token #%d listed for %s %s\n", id, price, s.market.Currency())
	return nil
}
