package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Envelope is the frame pushed to clients: an event discriminator plus the
// raw payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Hub tracks live websocket connections by handle id and enforces one active
// socket per (user, channel). The presence registry records which handle a
// user's view is bound to; the hub resolves that handle back to a socket on
// delivery.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Connection // handle id -> connection
	owners   map[ownerKey]string    // (user, channel) -> handle id
}

type ownerKey struct {
	userID  int64
	channel string
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Connection),
		owners:   make(map[ownerKey]string),
	}
}

// Attach registers a connection and starts its write loop. An earlier socket
// for the same (user, channel) is removed and closed after the swap, so a
// re-login on another device wins.
func (h *Hub) Attach(conn *Connection) {
	var previous *Connection

	key := ownerKey{userID: conn.UserID, channel: conn.Channel}
	h.mu.Lock()
	if existingID, ok := h.owners[key]; ok {
		if existing := h.sessions[existingID]; existing != nil {
			previous = existing
			delete(h.sessions, existingID)
		}
	}
	h.sessions[conn.ID] = conn
	h.owners[key] = conn.ID
	h.mu.Unlock()

	conn.Start()

	if previous != nil {
		previous.Close(4001, "session replaced")
	}
}

// Detach removes a connection if it is still the tracked one for its view.
func (h *Hub) Detach(conn *Connection) {
	key := ownerKey{userID: conn.UserID, channel: conn.Channel}
	h.mu.Lock()
	delete(h.sessions, conn.ID)
	if current, ok := h.owners[key]; ok && current == conn.ID {
		delete(h.owners, key)
	}
	h.mu.Unlock()
}

// Deliver pushes an event frame to the connection bound to handleID. A
// missing handle is an error so callers can log the stale binding.
func (h *Hub) Deliver(handleID, event string, payload []byte) error {
	h.mu.RLock()
	conn := h.sessions[handleID]
	h.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("realtime: no session for handle %s", handleID)
	}

	frame, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("realtime: encode frame: %w", err)
	}
	return conn.Send(frame)
}

// Close terminates every tracked connection and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Connection, 0, len(h.sessions))
	for _, conn := range h.sessions {
		sessions = append(sessions, conn)
	}
	h.sessions = make(map[string]*Connection)
	h.owners = make(map[ownerKey]string)
	h.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "server shutdown")
	}
}
