package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeBrosOfficial/lostsouls/pkg/httputil"
	"github.com/DeBrosOfficial/lostsouls/pkg/tui/nav"
)

// Path of the explore listing; protected pages redirect here.
const pathExplore = "/v1/nfts"

func (g *Gateway) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(g.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"wallet": g.market.HasWallet(),
		})
	})

	r.Route("/v1", func(r chi.Router) {
		// Transactions wait for receipts, so the timeout is generous.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(g.config.RequestTimeout))

			r.Get("/account", g.handleAccount)
			r.Post("/wallet/connect", g.handleConnect)

			r.Get("/nfts", g.handleExplore)
			r.With(g.requireAccount(nav.RouteListed)).Get("/nfts/listed", g.handleListed)
			r.With(g.requireAccount(nav.RouteMine)).Get("/nfts/mine", g.handleMine)
			r.Post("/nfts", g.handleCreate)
			r.Post("/nfts/{tokenId}/purchase", g.handlePurchase)
			r.Post("/nfts/{tokenId}/resell", g.handleResell)

			r.Post("/storage/upload", g.handleUpload)
		})

		r.Get("/ws/events", g.hub.handle)
	})

	return r
}
