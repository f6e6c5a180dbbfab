package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/lostsouls/pkg/errors"
	"github.com/DeBrosOfficial/lostsouls/pkg/httputil"
	"github.com/DeBrosOfficial/lostsouls/pkg/logging"
	"github.com/DeBrosOfficial/lostsouls/pkg/market"
	"github.com/DeBrosOfficial/lostsouls/pkg/nft"
	"github.com/DeBrosOfficial/lostsouls/pkg/tui/nav"
)

// listingsResponse is the body of every listing page.
type listingsResponse struct {
	Active   string       `json:"active,omitempty"`
	Search   string       `json:"search,omitempty"`
	Sort     string       `json:"sort"`
	Currency string       `json:"currency"`
	Count    int          `json:"count"`
	Items    []nft.Record `json:"items"`
}

type priceRequest struct {
	Price string `json:"price"`
}

func (g *Gateway) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteErr(w, err, middleware.GetReqID(r.Context()))
}

func (g *Gateway) handleAccount(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"account":  g.market.CurrentAccount(),
		"loading":  g.market.IsLoading(),
		"currency": g.market.Currency(),
		"wallet":   g.market.HasWallet(),
	})
}

func (g *Gateway) handleConnect(w http.ResponseWriter, r *http.Request) {
	account, err := g.market.ConnectWallet(r.Context())
	if err != nil {
		g.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"account": account})
}

// writeListings filters and sorts records by the search and sort query
// parameters.
func (g *Gateway) writeListings(w http.ResponseWriter, r *http.Request, route nav.Route, records []nft.Record) {
	term := httputil.QueryParam(r, "search", "")
	key := nft.ParseSortKey(httputil.QueryParam(r, "sort", ""))

	items := nft.Sort(nft.Filter(records, term), key)
	if items == nil {
		items = []nft.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, listingsResponse{
		Active:   nav.CheckActive(route, g.market.CurrentAccount()).Active,
		Search:   term,
		Sort:     key.String(),
		Currency: g.market.Currency(),
		Count:    len(items),
		Items:    items,
	})
}

func (g *Gateway) handleExplore(w http.ResponseWriter, r *http.Request) {
	records, err := g.market.FetchAllListings(r.Context())
	if err != nil {
		g.writeErr(w, r, err)
		return
	}
	g.writeListings(w, r, nav.RouteExplore, records)
}

func (g *Gateway) handleListed(w http.ResponseWriter, r *http.Request) {
	records, err := g.market.FetchOwnedOrListedListings(r.Context(), market.ListingListed)
	if err != nil {
		g.writeErr(w, r, err)
		return
	}
	g.writeListings(w, r, nav.RouteListed, records)
}

func (g *Gateway) handleMine(w http.ResponseWriter, r *http.Request) {
	records, err := g.market.FetchOwnedOrListedListings(r.Context(), market.ListingOwned)
	if err != nil {
		g.writeErr(w, r, err)
		return
	}
	g.writeListings(w, r, nav.RouteMine, records)
}

func (g *Gateway) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, g.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(g.config.MaxUploadBytes); err != nil {
		g.writeErr(w, r, errors.NewValidationError("file", "invalid multipart body", nil))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		g.writeErr(w, r, errors.NewValidationError("file", "missing 'file'", nil))
		return
	}
	defer file.Close()

	url, err := g.market.UploadToStorage(r.Context(), header.Filename, file)
	if err != nil {
		g.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"url": url})
}

func (g *Gateway) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in market.ListingInput
	if err := httputil.DecodeJSONStrict(r, &in); err != nil {
		g.writeErr(w, r, errors.NewValidationError("body", "invalid JSON body", nil))
		return
	}

	uri, err := g.market.CreateListing(r.Context(), in)
	if err != nil {
		g.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"token_uri": uri})
}

func tokenIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "tokenId")
	id, ok := httputil.ParseTokenID(raw)
	if !ok {
		return 0, errors.NewValidationError("tokenId", "must be a non-negative integer", raw)
	}
	return id, nil
}

func (g *Gateway) handlePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := tokenIDParam(r)
	if err != nil {
		g.writeErr(w, r, err)
		return
	}
	var req priceRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSONStrict(r, &req); err != nil {
			g.writeErr(w, r, errors.NewValidationError("body", "invalid JSON body", nil))
			return
		}
	}

	record, err := g.market.FindListing(r.Context(), id, req.Price)
	if err != nil {
		g.writeErr(w, r, err)
		return
	}

	if err := g.market.Purchase(r.Context(), record); err != nil {
		g.writeErr(w, r, err)
		return
	}
	g.logger.ComponentInfo(logging.ComponentGateway, "NFT purchased",
		zap.Int64("token_id", id),
		zap.String("price", record.Price),
	)
	httputil.WriteSuccessWithData(w, map[string]any{"token_id": id})
}

func (g *Gateway) handleResell(w http.ResponseWriter, r *http.Request) {
	id, err := tokenIDParam(r)
	if err != nil {
		g.writeErr(w, r, err)
		return
	}
	var req priceRequest
	if err := httputil.DecodeJSONStrict(r, &req); err != nil {
		g.writeErr(w, r, errors.NewValidationError("body", "invalid JSON body", nil))
		return
	}

	if err := g.market.Resell(r.Context(), id, req.Price); err != nil {
		g.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccessWithData(w, map[string]any{"token_id": id})
}
