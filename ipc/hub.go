package ipc

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// broadcastTimeout bounds how long a slow client can hold up a broadcast.
const broadcastTimeout = 100 * time.Millisecond

// hub tracks connected clients and fans events out to them. Writes go
// through the per-client mutexes so response frames and broadcast frames
// never interleave on the wire.
type hub struct {
	mu      sync.Mutex
	clients map[*client]bool
}

// client is one websocket connection with its write lock.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// writeEvent writes with a deadline so a stalled client cannot hold up a
// broadcast indefinitely.
func (c *client) writeEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(broadcastTimeout))
	err := c.conn.WriteJSON(event)
	c.conn.SetWriteDeadline(time.Time{})
	return err
}

func newHub() *hub {
	return &hub{clients: make(map[*client]bool)}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.conn.Close()
	}
}

// broadcast sends an event to every client. Clients whose write fails are
// dropped.
func (h *hub) broadcast(event Event) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	var wg sync.WaitGroup
	var failedMu sync.Mutex
	var failed []*client

	for _, c := range clients {
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()

			if err := c.writeEvent(event); err != nil {
				failedMu.Lock()
				failed = append(failed, c)
				failedMu.Unlock()
			}
		}(c)
	}
	wg.Wait()

	for _, c := range failed {
		h.remove(c)
	}
}

// closeAll drops every client.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.conn.Close()
	}
}
