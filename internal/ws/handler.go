// Package ws streams theme and settings changes to storefront clients over
// websockets.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/event"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/theme"
)

// Subscriber is the read side of the event bus.
type Subscriber interface {
	Subscribe(topic string, handler event.Handler) (unsubscribe func())
}

// ThemeSource resolves themes for outgoing messages.
type ThemeSource interface {
	Active(ctx context.Context) theme.ResolvedTheme
	Resolve(id string) theme.ResolvedTheme
}

// Handler serves GET /api/v1/ws/theme.
type Handler struct {
	hub            *Hub
	themes         ThemeSource
	originPatterns []string
	logger         *zap.Logger

	mu          sync.Mutex
	conns       map[*websocket.Conn]struct{}
	unsubscribe []func()
}

// NewHandler subscribes to settings and theme events. originPatterns are
// passed to websocket.Accept; an empty list allows same-origin only.
func NewHandler(bus Subscriber, themes ThemeSource, originPatterns []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		hub:            NewHub(logger),
		themes:         themes,
		originPatterns: originPatterns,
		logger:         logger,
		conns:          make(map[*websocket.Conn]struct{}),
	}
	if bus != nil {
		h.unsubscribe = []func(){
			bus.Subscribe(event.TopicSettingsUpdated, h.onSettingsUpdated),
			bus.Subscribe(event.TopicThemeChanged, h.onThemeChanged),
		}
	}
	return h
}

// RegisterRoutes registers the stream route.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/theme", h.handleThemeStream)
}

// ClientCount returns the number of connected clients.
func (h *Handler) ClientCount() int {
	return h.hub.ClientCount()
}

// Close unsubscribes from the bus and disconnects every client. The HTTP
// server does not track hijacked connections, so shutdown calls this.
func (h *Handler) Close() {
	h.mu.Lock()
	unsubscribe := h.unsubscribe
	h.unsubscribe = nil
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, u := range unsubscribe {
		u()
	}
	for _, c := range conns {
		_ = c.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// handleThemeStream upgrades the connection, sends the active theme and
// forwards change messages until the client disconnects.
//
//	@Summary		Live theme stream
//	@Description	WebSocket stream. Sends theme.snapshot on connect, then theme.changed and settings.updated messages.
//	@Tags			themes
//	@Success		101
//	@Router			/ws/theme [get]
func (h *Handler) handleThemeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Debug("websocket accept failed", zap.Error(err))
		return
	}
	h.track(conn, true)
	defer h.track(conn, false)

	ctx := r.Context()
	client := &Client{
		conn:   conn,
		id:     uuid.NewString(),
		send:   make(chan Message, sendBuffer),
		logger: h.logger,
	}
	// Register before resolving the snapshot: a change that lands in between
	// is broadcast to this client and the snapshot after it is newer still.
	h.hub.Register(client)

	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	snapshot := Message{
		Type:      MessageThemeSnapshot,
		Timestamp: time.Now().UTC(),
		Data:      ThemeData{Theme: h.themes.Active(ctx)},
	}
	select {
	case client.send <- snapshot:
	case <-done:
	}

	client.readPump(ctx)

	h.hub.Unregister(client)
	_ = conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

func (h *Handler) track(conn *websocket.Conn, add bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if add {
		h.conns[conn] = struct{}{}
	} else {
		delete(h.conns, conn)
	}
}

func (h *Handler) onSettingsUpdated(_ context.Context, e event.Event) {
	p, ok := e.Payload.(event.SettingsUpdated)
	if !ok {
		return
	}
	h.hub.Broadcast(Message{
		Type:      MessageSettingsUpdated,
		Timestamp: e.Timestamp,
		Data: SettingsUpdatedData{
			ActorID:       p.ActorID,
			ChangedFields: p.ChangedFields,
		},
	})
}

func (h *Handler) onThemeChanged(_ context.Context, e event.Event) {
	p, ok := e.Payload.(event.ThemeChanged)
	if !ok {
		return
	}
	h.hub.Broadcast(Message{
		Type:      MessageThemeChanged,
		Timestamp: e.Timestamp,
		Data: ThemeData{
			PreviousThemeID: p.PreviousThemeID,
			Theme:           h.themes.Resolve(p.ThemeID),
		},
	})
}
