package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"seqtrack/internal"
	"seqtrack/internal/records"

	"github.com/gin-gonic/gin"
)

// SSEHub fans record change events out to connected table views
type SSEHub struct {
	clients    map[chan records.Event]bool
	clientsMu  sync.RWMutex
	register   chan chan records.Event
	unregister chan chan records.Event
	broadcast  chan records.Event
	done       chan struct{}
	closeOnce  sync.Once
	logger     *internal.Logger
	keepAlive  time.Duration
}

// NewSSEHub creates a hub and starts its dispatch loop
func NewSSEHub(logger *internal.Logger) *SSEHub {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	hub := &SSEHub{
		clients:    make(map[chan records.Event]bool),
		register:   make(chan chan records.Event),
		unregister: make(chan chan records.Event),
		broadcast:  make(chan records.Event, 100),
		done:       make(chan struct{}),
		logger:     logger,
		keepAlive:  30 * time.Second,
	}

	go hub.run()
	return hub
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			h.logger.Debug("[SSE] client registered (total clients: %d)", len(h.clients))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				close(client)
			}
			h.logger.Debug("[SSE] client unregistered (remaining clients: %d)", len(h.clients))
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for client := range h.clients {
				select {
				case client <- event:
				default:
					h.logger.Warn("[SSE] client channel full, skipping %s event", event.Kind)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			h.clientsMu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client)
			}
			h.clientsMu.Unlock()
			return
		}
	}
}

// Notify queues an event for every connected client without blocking
func (h *SSEHub) Notify(event records.Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("[SSE] broadcast channel full, dropping %s event", event.Kind)
	}
}

// Subscribe registers a client; call the returned func to leave
func (h *SSEHub) Subscribe() (<-chan records.Event, func()) {
	ch := make(chan records.Event, 10)
	select {
	case h.register <- ch:
	case <-h.done:
		close(ch)
		return ch, func() {}
	}
	return ch, func() {
		select {
		case h.unregister <- ch:
		case <-h.done:
		}
	}
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Close stops the hub and ends every stream
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// HandleSSE streams change events to the browser
func (h *SSEHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	events, leave := h.Subscribe()
	defer leave()

	ctx := c.Request.Context()
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn("[SSE] failed to marshal event: %v", err)
				return true
			}
			c.SSEvent("record", string(payload))
			return true

		case <-time.After(h.keepAlive):
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true

		case <-ctx.Done():
			return false
		}
	})
}
