package ws

import "sync"

// Conn is the subset of *websocket.Conn the hub uses; narrowed so tests can
// register fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub is the per-process registry of live connections, keyed by user id.
// One connection per user: registering a second connection closes the first.
// It is injected into the messaging handlers rather than held as a global.
type Hub struct {
	mu    sync.RWMutex
	conns map[uint]Conn
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{conns: make(map[uint]Conn)}
}

// Register binds a connection to a user id, replacing (and closing) any
// previous connection for that user
func (h *Hub) Register(userID uint, conn Conn) {
	h.mu.Lock()
	prev := h.conns[userID]
	h.conns[userID] = conn
	h.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

// Unregister removes the connection for a user id, but only if it is still
// the one passed in — a replaced connection must not evict its successor
func (h *Hub) Unregister(userID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == conn {
		delete(h.conns, userID)
	}
}

// IsOnline reports whether the user has a live connection
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[userID]
	return ok
}

// SendToUser delivers a payload to the user's live connection, if any.
// Offline users are silently skipped; delivery is best-effort and the
// message is already persisted by the caller.
func (h *Hub) SendToUser(userID uint, v interface{}) {
	h.mu.RLock()
	conn, ok := h.conns[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := conn.WriteJSON(v); err != nil {
		h.Unregister(userID, conn)
		conn.Close()
	}
}

// Broadcast delivers a payload to every listed user that is online
func (h *Hub) Broadcast(userIDs []uint, v interface{}) {
	for _, id := range userIDs {
		h.SendToUser(id, v)
	}
}
