// Package errfeed streams fault events to WebSocket observers. The fault
// handler publishes one event per mapped error or recovered panic; the hub
// fans them out to connected clients.
package errfeed

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"faultgate/internal/metrics"
	"faultgate/pkg/contracts/events"
)

// broadcastBuffer bounds the number of pending events. Publishing never
// blocks request handling; events beyond the buffer are dropped.
const broadcastBuffer = 64

// Hub maintains the set of active clients and broadcasts events to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *metrics.Registry

	quit    chan struct{}
	running bool

	totalConnections int64
	eventsSent       int64
	eventsDropped    int64
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger, reg *metrics.Registry) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "errfeed.hub")),
		metrics:    reg,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub's main loop
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("error feed hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			h.setClientGauge(count)
			h.logger.Info("feed client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.greet(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()

				h.setClientGauge(count)
				h.logger.Info("feed client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				select {
				case client.send <- message:
					h.eventsSent++
				default:
					// Client's send buffer is full, disconnect it
					h.mu.Lock()
					if _, ok := h.clients[client]; ok {
						close(client.send)
						delete(h.clients, client)
					}
					count := len(h.clients)
					h.mu.Unlock()

					h.setClientGauge(count)
					h.logger.Warn("feed client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}
		}
	}
}

// greet sends the connection event to a newly registered client
func (h *Hub) greet(client *Client) {
	greeting := events.ConnectionEvent{
		Type:     events.MessageTypeConnection,
		Status:   "connected",
		Message:  "Connected to FaultGate error feed",
		ClientID: client.id,
		SentAt:   time.Now().UTC(),
	}

	data, err := json.Marshal(greeting)
	if err != nil {
		h.logger.Error("failed to marshal connection event", slog.String("error", err.Error()))
		return
	}

	select {
	case client.send <- data:
	default:
		h.logger.Warn("failed to send connection event, client buffer full",
			slog.String("client_id", client.id))
	}
}

// Publish implements faults.Publisher. It never blocks request handling;
// when the broadcast buffer is full the event is dropped and counted.
func (h *Hub) Publish(event events.ErrorEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal error event", slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.mu.Lock()
		h.eventsDropped++
		h.mu.Unlock()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop gracefully stops the hub and disconnects all clients
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.setClientGauge(0)
}

func (h *Hub) setClientGauge(n int) {
	if h.metrics != nil {
		h.metrics.SetFeedClients(n)
	}
}
