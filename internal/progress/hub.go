// Package progress broadcasts pipeline progress events to a single
// connected client over a WebSocket, so a CLI run can be watched live from
// a browser.
package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var logger = log.New(log.Writer(), "ghostmap/progress: ", log.LstdFlags)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is one progress update emitted by a pipeline stage.
type Event struct {
	Stage     string `json:"stage"` // collect|sanitize|audit
	Message   string `json:"message,omitempty"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
}

// Message is the envelope broadcast over the socket.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// Hub manages a single active client connection; a new connection replaces
// whatever was previously attached.
type Hub struct {
	client     *client
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	mutex      sync.RWMutex
}

// NewHub returns a Hub; callers must start Run in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Run processes register/unregister/broadcast events in an endless loop
// that never returns; it owns h.client and must run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mutex.Lock()
			if h.client != nil {
				close(h.client.send)
			}
			h.client = c
			h.mutex.Unlock()
			logger.Printf("progress client connected")

		case c := <-h.unregister:
			h.mutex.Lock()
			if h.client == c {
				close(h.client.send)
				h.client = nil
				logger.Printf("progress client disconnected")
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.RLock()
			if h.client != nil {
				select {
				case h.client.send <- message:
				default:
					logger.Printf("client send buffer full, dropping connection")
					close(h.client.send)
					h.client = nil
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// Broadcast sends one progress event to the connected client, if any.
// Non-blocking: with no client attached, the event is dropped rather than
// stalling the pipeline stage that produced it.
func (h *Hub) Broadcast(event Event) {
	h.mutex.RLock()
	hasClient := h.client != nil
	h.mutex.RUnlock()
	if !hasClient {
		return
	}

	msg := Message{Type: "progress", Data: event, Timestamp: time.Now().Unix()}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Printf("failed to marshal progress event: %v", err)
		return
	}
	h.broadcast <- data
}

// ServeWS upgrades an HTTP request to a WebSocket and registers the
// resulting client with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Printf("readPump error: %v", err)
			}
			break
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
