// Package gateway exposes the marketplace pages as a local HTTP API with a
// WebSocket stream of market events.
package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/lostsouls/pkg/logging"
	"github.com/DeBrosOfficial/lostsouls/pkg/market"
)

// Config configures the gateway server.
type Config struct {
	ListenAddr     string
	RequestTimeout time.Duration
	// MaxUploadBytes caps multipart uploads.
	MaxUploadBytes int64
}

// Gateway serves the HTTP API.
type Gateway struct {
	logger *logging.ColoredLogger
	config Config
	market *market.Market
	router chi.Router
	server *http.Server
	hub    *eventHub
}

// New creates a gateway over mk.
func New(cfg Config, mk *market.Market, logger *logging.ColoredLogger) (*Gateway, error) {
	if mk == nil {
		return nil, fmt.Errorf("market is required")
	}
	if logger == nil {
		var err error
		logger, err = logging.NewColoredLogger(logging.ComponentGateway, true)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:7070"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 3 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}

	g := &Gateway{
		logger: logger,
		config: cfg,
		market: mk,
		hub:    newEventHub(mk, logger),
	}
	g.router = g.routes()

	g.logger.ComponentInfo(logging.ComponentGateway, "Gateway initialized",
		zap.String("listen_addr", cfg.ListenAddr),
	)
	return g, nil
}

// Handler returns the root handler.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Start serves until ctx is cancelled, then shuts down.
func (g *Gateway) Start(ctx context.Context) error {
	g.server = &http.Server{
		Addr:              g.config.ListenAddr,
		Handler:           g.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", g.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", g.config.ListenAddr, err)
	}

	g.logger.ComponentInfo(logging.ComponentGateway, "Gateway server starting",
		zap.String("listen_addr", listener.Addr().String()),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := g.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			g.logger.ComponentError(logging.ComponentGateway, "Gateway server error", zap.Error(err))
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return g.Stop()
	case err := <-errCh:
		return err
	}
}

// Stop gracefully stops the server and closes event streams.
func (g *Gateway) Stop() error {
	g.hub.closeAll()
	if g.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	g.logger.ComponentInfo(logging.ComponentGateway, "Gateway shutting down")
	if err := g.server.Shutdown(ctx); err != nil {
		g.logger.ComponentError(logging.ComponentGateway, "Gateway shutdown error", zap.Error(err))
		return err
	}
	g.logger.ComponentInfo(logging.ComponentGateway, "Gateway shutdown complete")
	return nil
}
