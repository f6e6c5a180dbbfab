package nav

import "testing"

func TestCheckActive(t *testing.T) {
	const account = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

	tests := []struct {
		name    string
		route   Route
		account string
		want    Decision
	}{
		{"explore without account", RouteExplore, "", Decision{Active: LabelExplore}},
		{"explore with account", RouteExplore, account, Decision{Active: LabelExplore}},
		{"listed with account", RouteListed, account, Decision{Active: LabelListed}},
		{"mine with account", RouteMine, account, Decision{Active: LabelMine}},
		{"listed without account", RouteListed, "", Decision{Connect: true, Redirect: RouteExplore}},
		{"mine without account", RouteMine, "", Decision{Connect: true, Redirect: RouteExplore}},
		{"create highlights nothing", RouteCreate, account, Decision{}},
		{"details highlights nothing", RouteDetails, "", Decision{}},
		{"unknown route", Route("/nope"), account, Decision{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckActive(tt.route, tt.account); got != tt.want {
				t.Errorf("CheckActive(%s) = %+v, want %+v", tt.route, got, tt.want)
			}
		})
	}
}

func TestActionLabel(t *testing.T) {
	if ActionLabel("") != "connect" {
		t.Error("disconnected navbar should offer connect")
	}
	if ActionLabel("0xabc") != "create" {
		t.Error("connected navbar should offer create")
	}
}

func TestProtected(t *testing.T) {
	for _, r := range []Route{RouteListed, RouteMine} {
		if !Protected(r) {
			t.Errorf("%s should be protected", r)
		}
	}
	for _, r := range []Route{RouteExplore, RouteCreate, RouteDetails} {
		if Protected(r) {
			t.Errorf("%s should not be protected", r)
		}
	}
}
