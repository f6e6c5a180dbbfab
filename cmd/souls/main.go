package main

import (
	"fmt"
	"os"
	"time"

	"github.com/DeBrosOfficial/lostsouls/pkg/cli"
	"github.com/DeBrosOfficial/lostsouls/pkg/market"
)

// version metadata populated via -ldflags at build time
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	if len(os.Args) < 2 {
		showHelp()
		return
	}

	command := os.Args[1]
	globals, args := parseGlobalFlags(os.Args[2:])

	var err error
	switch command {
	case "version":
		fmt.Printf("souls %s", version)
		if commit != "" {
			fmt.Printf(" (commit %s)", commit)
		}
		if date != "" {
			fmt.Printf(" built %s", date)
		}
		fmt.Println()
		return

	// Front ends
	case "ui":
		err = cli.HandleUICommand(globals)
	case "serve":
		err = cli.HandleServeCommand(args, globals)

	// Wallet
	case "connect":
		err = cli.HandleConnectCommand(globals)
	case "account":
		err = cli.HandleAccountCommand(args, globals)

	// Listings
	case "explore":
		err = cli.HandleExploreCommand(args, globals)
	case "listed":
		err = cli.HandleAccountListingsCommand(market.ListingListed, args, globals)
	case "mine":
		err = cli.HandleAccountListingsCommand(market.ListingOwned, args, globals)

	// Trading
	case "upload":
		err = cli.HandleUploadCommand(args, globals)
	case "create":
		err = cli.HandleCreateCommand(args, globals)
	case "buy":
		err = cli.HandleBuyCommand(args, globals)
	case "resell":
		err = cli.HandleResellCommand(args, globals)

	case "help", "--help", "-h":
		showHelp()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		showHelp()
		os.Exit(1)
	}

	// Handlers return so their deferred cleanup runs before the exit.
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// parseGlobalFlags pulls -c/--config, -f/--format and -t/--timeout out of
// args and returns the rest.
func parseGlobalFlags(args []string) (cli.Globals, []string) {
	g := cli.Globals{Format: "table", Timeout: 3 * time.Minute}
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c", "--config":
			if i+1 < len(args) {
				g.ConfigPath = args[i+1]
				i++
			}
		case "-f", "--format":
			if i+1 < len(args) {
				g.Format = args[i+1]
				i++
			}
		case "-t", "--timeout":
			if i+1 < len(args) {
				if d, err := time.ParseDuration(args[i+1]); err == nil {
					g.Timeout = d
				}
				i++
			}
		default:
			rest = append(rest, args[i])
		}
	}
	return g, rest
}

func showHelp() {
	fmt.Printf("LostSouls - NFT marketplace client\n\n")
	fmt.Printf("Usage: souls <command> [args...]\n\n")

	fmt.Printf("🖥️  Front ends:\n")
	fmt.Printf("  ui                            - Interactive terminal UI\n")
	fmt.Printf("  serve [listen_addr]           - Run the local HTTP gateway\n\n")

	fmt.Printf("👛 Wallet:\n")
	fmt.Printf("  connect                       - Authorize a wallet account\n")
	fmt.Printf("  account                       - Show the connected account\n")
	fmt.Printf("  account new                   - Create a keystore account\n\n")

	fmt.Printf("👻 Listings:\n")
	fmt.Printf("  explore [--search s] [--sort k] - All souls for sale\n")
	fmt.Printf("  listed  [--search s] [--sort k] - Souls you have listed\n")
	fmt.Printf("  mine    [--search s] [--sort k] - Souls you own\n\n")

	fmt.Printf("💸 Trading:\n")
	fmt.Printf("  upload <file>                 - Upload a file to IPFS\n")
	fmt.Printf("  create --name n --description d --price p (--image url | --file path)\n")
	fmt.Printf("                                - Mint and list a new NFT\n")
	fmt.Printf("  buy <token_id> <price>        - Buy a listed NFT\n")
	fmt.Printf("  resell <token_id> <price>     - List an owned NFT again\n\n")

	fmt.Printf("Global flags:\n")
	fmt.Printf("  -c, --config <path>           - Config file (default ~/.lostsouls/config.yaml)\n")
	fmt.Printf("  -f, --format <table|json>     - Output format (default table)\n")
	fmt.Printf("  -t, --timeout <duration>      - Operation timeout (default 3m)\n")
}
