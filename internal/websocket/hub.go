package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/infrastructure"
)

// Message types sent by the hub itself.
const (
	TypeConnection = "connection"
)

// broadcastBuffer bounds the messages queued while the hub loop is busy.
const broadcastBuffer = 64

// Envelope is the JSON frame every client receives.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}

	mu      sync.RWMutex
	running bool

	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Start runs the hub loop in its own goroutine. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.recordClients(client, 1)

			h.logger.InfoContext(client.context(), "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.sendTo(client, TypeConnection, map[string]interface{}{
				"status":    "connected",
				"client_id": client.id,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			if !ok {
				continue
			}
			h.recordClients(client, -1)
			h.logger.InfoContext(client.context(), "Client unregistered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.Duration("connection_duration", time.Since(client.connectedAt)))

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// fanOut delivers message to every client, dropping those whose buffer is
// full.
func (h *Hub) fanOut(message []byte) {
	h.mu.Lock()
	var dropped []*Client
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			dropped = append(dropped, client)
		}
	}
	delivered := len(h.clients)
	h.mu.Unlock()

	for _, client := range dropped {
		h.recordClients(client, -1)
		h.logger.WarnContext(client.context(), "Client send buffer full, disconnecting",
			slog.String("client_id", client.id))
	}
	h.logger.Debug("Broadcast delivered",
		slog.Int("clients", delivered),
		slog.Int("dropped", len(dropped)),
		slog.Int("message_size", len(message)))
}

// Broadcast sends an event to every connected client. It never blocks the
// caller for long: when the hub is stopped or its queue is full the event
// is dropped.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	h.BroadcastWithTrace(messageType, data, "")
}

// BroadcastWithTrace is Broadcast with a trace ID in the envelope.
func (h *Hub) BroadcastWithTrace(messageType string, data interface{}, traceID string) {
	payload, err := encode(messageType, data, traceID)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("message_type", messageType),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.quit:
	default:
		h.logger.Warn("Broadcast queue full, message dropped",
			slog.String("message_type", messageType))
	}
}

// sendTo queues a message for one client.
func (h *Hub) sendTo(client *Client, messageType string, data interface{}) {
	payload, err := encode(messageType, data, client.traceID)
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
		h.logger.WarnContext(client.context(), "Failed to send message, client buffer full",
			slog.String("client_id", client.id),
			slog.String("message_type", messageType))
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop ends the hub loop and disconnects every client.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	close(h.quit)

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) recordClients(client *Client, delta int64) {
	if h.metrics == nil {
		return
	}
	h.metrics.WebSocketClients.Add(client.context(), delta)
}

func encode(messageType string, data interface{}, traceID string) ([]byte, error) {
	return json.Marshal(Envelope{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
		TraceID:   traceID,
	})
}

// clientContext carries the client's trace ID into log records.
func clientContext(traceID string) context.Context {
	ctx := context.Background()
	if traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, traceID)
	}
	return ctx
}
