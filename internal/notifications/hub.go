package notifications

import (
	"context"
	"errors"
	"sync"

	"tecnopronto/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerPost = 1000
	maxTotalConns   = 10000
)

var (
	ErrHubClosed   = errors.New("hub is shutting down")
	ErrServerLimit = errors.New("server connection limit reached")
	ErrPostLimit   = errors.New("post connection limit reached")
)

// Hub maps post IDs to the websocket clients watching them.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
}

func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds a subscriber for postID (0 for all posts).
func (h *Hub) Register(postID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerLimit
	}

	m, ok := h.conns[postID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[postID] = m
	}
	if len(m) >= maxConnsPerPost {
		return nil, ErrPostLimit
	}

	client := newClient(h, conn, postID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnections.Inc()
	return client, nil
}

// UnregisterClient removes the client and closes its send channel. It is safe to call twice.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.PostID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.PostID)
	}
	h.totalConns--
	observability.WebSocketConnections.Dec()
	close(client.Send)
}

// Publish delivers message to the post's subscribers and to firehose subscribers.
func (h *Hub) Publish(postID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns[postID] {
		c.TrySend(message)
	}
	if postID == 0 {
		return
	}
	for c := range h.conns[0] {
		c.TrySend(message)
	}
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// StartWiring forwards every event received through the notifier to local subscribers.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartSubscriber(ctx, func(postID uint, payload string) {
		h.Publish(postID, []byte(payload))
	})
}

// Shutdown rejects new clients and closes every send channel. Each client's
// WritePump then sends the close frame and drops its connection, so the hub
// never writes to a conn itself.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, clients := range h.conns {
		for client := range clients {
			close(client.Send)
			observability.WebSocketConnections.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
