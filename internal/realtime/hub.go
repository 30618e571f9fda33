// Package realtime pushes lightweight change events to connected browser
// clients over websocket. Events carry no payload; clients refetch the data
// they care about when a relevant event arrives.
package realtime

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event names broadcast to clients
const (
	EventRequestUpdate = "request_update"
	EventNotifications = "notifications"
)

type event struct {
	Event string `json:"event"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the HTTP layer
	},
}

type Hub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]bool
	broadcast chan event
	done      chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan event, 64),
		done:      make(chan struct{}),
	}
}

// Run pumps queued events to every connected client. Blocks until Stop.
func (h *Hub) Run() {
	for {
		select {
		case ev := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteJSON(ev); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		case <-h.done:
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

// BroadcastRequestUpdate signals that some request changed
func (h *Hub) BroadcastRequestUpdate() {
	h.enqueue(event{Event: EventRequestUpdate})
}

// BroadcastNotifications signals that notifications were created for someone
func (h *Hub) BroadcastNotifications() {
	h.enqueue(event{Event: EventNotifications})
}

// enqueue drops the event when the buffer is full rather than blocking a
// request handler.
func (h *Hub) enqueue(ev event) {
	select {
	case h.broadcast <- ev:
	default:
		log.Printf("[Realtime] broadcast buffer full, dropping %s", ev.Event)
	}
}

// HandleWS upgrades the connection and registers the client. Reads are
// drained and discarded; the socket is push-only.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Realtime] websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.mu.Unlock()
	log.Printf("[Realtime] client connected (%d active)", count)

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
