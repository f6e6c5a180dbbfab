// Package nav maps routes to navbar menu entries and guards the pages that
// need a connected account.
package nav

// Route is a page path.
type Route string

const (
	RouteExplore Route = "/"
	RouteListed  Route = "/listed-nfts"
	RouteMine    Route = "/my-nfts"
	RouteCreate  Route = "/create-nft"
	RouteDetails Route = "/nft-details"
)

// Menu labels.
const (
	LabelExplore = "explore souls"
	LabelListed  = "souls for sale"
	LabelMine    = "my souls"
)

// MenuItem is one navbar entry.
type MenuItem struct {
	Label string
	Route Route
}

// Menu lists the navbar entries in display order.
var Menu = []MenuItem{
	{LabelExplore, RouteExplore},
	{LabelListed, RouteListed},
	{LabelMine, RouteMine},
}

// Decision is the outcome of entering a route.
type Decision struct {
	// Active is the highlighted menu label, "" for none.
	Active string
	// Connect asks the caller to start wallet connection.
	Connect bool
	// Redirect, when set, replaces the requested route.
	Redirect Route
}

// Protected reports whether route needs a connected account.
func Protected(route Route) bool {
	return route == RouteListed || route == RouteMine
}

// CheckActive decides the highlighted label for route. On a protected route
// without an account it asks for a wallet connection and a redirect home.
func CheckActive(route Route, account string) Decision {
	switch route {
	case RouteExplore:
		return Decision{Active: LabelExplore}
	case RouteListed, RouteMine:
		if account == "" {
			return Decision{Connect: true, Redirect: RouteExplore}
		}
		if route == RouteListed {
			return Decision{Active: LabelListed}
		}
		return Decision{Active: LabelMine}
	default:
		return Decision{}
	}
}

// ActionLabel is the navbar button: "create" once connected, else "connect".
func ActionLabel(account string) string {
	if account != "" {
		return "create"
	}
	return "connect"
}
