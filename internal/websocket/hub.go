package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/gmomorfaruk/community-guardian/internal/domain"
	"github.com/gmomorfaruk/community-guardian/internal/metrics"
)

// hubCmd is the command interface for the Hub actor.
type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type registerCmd struct {
	baseHubCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseHubCmd
	connection *websocket.Conn
}

type broadcastCmd struct {
	baseHubCmd
	data    []byte
	alertID int64
}

type clientCountCmd struct {
	baseHubCmd
	replyChannel chan int
}

type stopCmd struct {
	baseHubCmd
}

// Hub owns the set of connected dashboard clients and fans persisted alerts
// out to all of them. A single actor goroutine serializes every mutation of
// the client set, so registration, removal, and broadcast never race. Each
// client gets its own writer goroutine with a bounded buffer; a client that
// cannot keep up is dropped during the broadcast pass instead of stalling it.
type Hub struct {
	cmdCh      chan hubCmd
	clock      clockwork.Clock
	clients    map[*websocket.Conn]*clientWriter
	maxClients int
}

// NewHub creates a hub and starts its actor goroutine.
// maxClients caps concurrently connected dashboards.
func NewHub(maxClients int, clock clockwork.Clock) *Hub {
	h := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		clock:      clock,
		clients:    make(map[*websocket.Conn]*clientWriter),
		maxClients: maxClients,
	}
	go h.run()
	return h
}

// Register adds a newly accepted dashboard connection.
// Returns an error only if the connection cap is reached.
func (h *Hub) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	h.cmdCh <- registerCmd{connection: conn, errorChannel: errCh}
	return <-errCh
}

// Unregister removes a connection. Safe to call for a connection that was
// already removed after a failed send; the second call is a no-op.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- unregisterCmd{connection: conn}
}

// Broadcast delivers a persisted alert to every currently connected client.
// It never reports delivery failures to the caller; clients that fail are
// removed from the hub instead. Implements domain.AlertBroadcaster.
func (h *Hub) Broadcast(alert *domain.Alert) {
	data, err := json.Marshal(alert)
	if err != nil {
		slog.Error("Failed to marshal alert for broadcast", "alert_id", alert.ID, "error", err)
		return
	}
	h.cmdCh <- broadcastCmd{data: data, alertID: alert.ID}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- clientCountCmd{replyChannel: replyCh}
	return <-replyCh
}

// Stop shuts down the hub, closing all client connections.
func (h *Hub) Stop() {
	h.cmdCh <- stopCmd{}
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case registerCmd:
			h.handleRegister(c)
		case unregisterCmd:
			h.handleUnregister(c.connection)
		case broadcastCmd:
			h.handleBroadcast(c)
		case clientCountCmd:
			c.replyChannel <- len(h.clients)
		case stopCmd:
			h.handleStop()
			return
		default:
			slog.Error("Hub: unknown command", "type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (h *Hub) handleRegister(c registerCmd) {
	if len(h.clients) >= h.maxClients {
		slog.Warn("Rejecting dashboard client: connection cap reached", "max_clients", h.maxClients)
		c.connection.Close()
		c.errorChannel <- fmt.Errorf("max connections (%d) reached", h.maxClients)
		return
	}

	cw := newClientWriter(uuid.New(), c.connection, h.clock)
	h.clients[c.connection] = cw
	metrics.WebSocketConnections.Inc()
	slog.Info("Dashboard client connected", "client_id", cw.id, "total_clients", len(h.clients))
	c.errorChannel <- nil
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, exists := h.clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, conn)
	metrics.WebSocketConnections.Dec()
	slog.Info("Dashboard client disconnected", "client_id", cw.id, "remaining_clients", len(h.clients))
}

func (h *Hub) handleBroadcast(c broadcastCmd) {
	metrics.AlertBroadcasts.Inc()

	var slow []*websocket.Conn
	for conn, writer := range h.clients {
		select {
		case writer.sendChannel <- c.data:
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		metrics.WebSocketSlowDisconnects.Inc()
		slog.Warn("Disconnecting slow dashboard client", "client_id", h.clients[conn].id, "alert_id", c.alertID)
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleStop() {
	for conn, cw := range h.clients {
		cw.stop()
		delete(h.clients, conn)
		metrics.WebSocketConnections.Dec()
	}
}
