package gateway

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/lostsouls/pkg/logging"
	"github.com/DeBrosOfficial/lostsouls/pkg/market"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local API; any origin may attach.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// eventHub streams market events to WebSocket clients.
type eventHub struct {
	market *market.Market
	logger *logging.ColoredLogger

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

func newEventHub(mk *market.Market, logger *logging.ColoredLogger) *eventHub {
	return &eventHub{
		market:  mk,
		logger:  logger,
		clients: make(map[string]*websocket.Conn),
	}
}

func (h *eventHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *eventHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(wsWriteWait))
		_ = conn.Close()
		delete(h.clients, id)
	}
}

// handle upgrades the request and forwards events until the client leaves.
// The first frame is a snapshot of the current account.
func (h *eventHub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ComponentWarn(logging.ComponentGateway, "events ws: upgrade failed", zap.Error(err))
		return
	}

	clientID := uuid.New().String()
	events, unsubscribe := h.market.Subscribe()

	h.mu.Lock()
	h.clients[clientID] = conn
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.ComponentInfo(logging.ComponentGateway, "events ws: client connected",
		zap.String("client_id", clientID),
		zap.Int("total_clients", total),
	)

	defer func() {
		unsubscribe()
		h.mu.Lock()
		delete(h.clients, clientID)
		h.mu.Unlock()
		_ = conn.Close()
		h.logger.ComponentInfo(logging.ComponentGateway, "events ws: client disconnected",
			zap.String("client_id", clientID),
		)
	}()

	// Reader: only control frames are expected; a read error means the client
	// went away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	snapshot := market.Event{
		Type:    market.EventAccountChanged,
		Account: h.market.CurrentAccount(),
		Loading: h.market.IsLoading(),
		Time:    time.Now(),
	}
	if err := h.write(conn, snapshot); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := h.write(conn, ev); err != nil {
				h.logger.ComponentWarn(logging.ComponentGateway, "events ws: write failed",
					zap.String("client_id", clientID),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (h *eventHub) write(conn *websocket.Conn, ev market.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(ev)
}
