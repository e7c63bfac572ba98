package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "live_match",
	Name:      "ws_connections",
	Help:      "Open WebSocket connections.",
})

// Hub manages WebSocket connections and broadcasts messages to match channels.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*Connection // conn_id -> connection
	matches     map[string][]uuid.UUID    // match_id -> []conn_id
	logger      zerolog.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]*Connection),
		matches:     make(map[string][]uuid.UUID),
		logger:      logger.With().Str("component", "ws_hub").Logger(),
	}
}

// RegisterConnection adds a connection under its id.
func (h *Hub) RegisterConnection(connID uuid.UUID, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, exists := h.connections[connID]; exists {
		old.Close()
	} else {
		connectionsGauge.Inc()
	}

	h.connections[connID] = conn
	h.logger.Debug().Str("conn_id", connID.String()).Msg("connection registered")
}

// UnregisterConnection closes a connection and removes it from every match.
func (h *Hub) UnregisterConnection(connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[connID]; exists {
		conn.Close()
		delete(h.connections, connID)
		connectionsGauge.Dec()
		h.logger.Debug().Str("conn_id", connID.String()).Msg("connection unregistered")
	}

	for matchID, conns := range h.matches {
		h.matches[matchID] = without(conns, connID)
		if len(h.matches[matchID]) == 0 {
			delete(h.matches, matchID)
		}
	}
}

// JoinMatch subscribes a connection to a match channel.
func (h *Hub) JoinMatch(matchID string, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.matches[matchID]
	for _, id := range conns {
		if id == connID {
			return // already joined
		}
	}
	h.matches[matchID] = append(conns, connID)
}

// LeaveMatch unsubscribes a connection from a match channel.
func (h *Hub) LeaveMatch(matchID string, connID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.matches[matchID] = without(h.matches[matchID], connID)
	if len(h.matches[matchID]) == 0 {
		delete(h.matches, matchID)
	}
}

// Subscribers returns how many connections follow a match.
func (h *Hub) Subscribers(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.matches[matchID])
}

// BroadcastToMatch queues a message for every subscriber of a match.
// Slow subscribers are skipped rather than waited on.
func (h *Hub) BroadcastToMatch(matchID string, msg Message) error {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.matches[matchID]))
	for _, id := range h.matches[matchID] {
		if conn, ok := h.connections[id]; ok {
			conns = append(conns, conn)
		}
	}
	h.mu.RUnlock()

	var firstErr error
	for _, conn := range conns {
		if err := conn.Send(msg); err != nil && firstErr == nil {
			firstErr = err
			h.logger.Warn().Err(err).Str("match_id", matchID).Msg("broadcast_send_failed")
		}
	}
	return firstErr
}

// SendTo delivers a message to a single connection.
func (h *Hub) SendTo(connID uuid.UUID, msg Message) error {
	h.mu.RLock()
	conn, exists := h.connections[connID]
	h.mu.RUnlock()

	if !exists {
		return ErrConnectionNotFound
	}
	return conn.Send(msg)
}

func without(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

var (
	ErrConnectionNotFound = &Error{Code: "connection_not_found", Message: "Connection not found"}
	ErrConnectionClosed   = &Error{Code: "connection_closed", Message: "Connection is closed"}
	ErrSendQueueFull      = &Error{Code: "send_queue_full", Message: "Send queue is full"}
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
