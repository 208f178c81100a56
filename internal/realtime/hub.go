// Package realtime fans out engagement events to connected WebSocket clients
// and accepts watch-progress updates from them.
package realtime

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Outbound and inbound message types.
const (
	TypeStatus          = "status"
	TypePing            = "ping"
	TypePong            = "pong"
	TypeWatchProgress   = "watch_progress"
	TypeProgressSaved   = "progress_saved"
	TypeReactionUpdated = "reaction_updated"
	TypeNewComment      = "new_comment"
	TypeError           = "error"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage encodes data into a Message of the given type.
func NewMessage(typ string, data any) (Message, error) {
	if data == nil {
		return Message{Type: typ}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: typ, Data: raw}, nil
}

var clientsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "websocket_clients",
	Help: "Number of connected WebSocket clients.",
})

func init() {
	prometheus.MustRegister(clientsGauge)
}

// Hub tracks connected clients and broadcasts messages to all of them.
// Run it with RunWithContext; Register and Unregister are served only while it
// runs.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

// NewHub creates a Hub with a buffered broadcast queue.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// RunWithContext serves registrations and broadcasts until ctx ends, then
// closes every client and returns ctx.Err().
//
// Lifecycle events are drained before broadcasts so a client registered
// before a broadcast was queued always receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	defer h.stopOnce.Do(func() { close(h.done) })
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.Register:
			h.add(c)
			continue
		case c := <-h.Unregister:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case c := <-h.Register:
			h.add(c)
		case c := <-h.Unregister:
			h.remove(c)
		case m := <-h.broadcast:
			h.broadcastToClients(m)
		}
	}
}

// Done is closed once the hub has stopped.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	clientsGauge.Inc()
	log.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("websocket client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		clientsGauge.Dec()
		log.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("websocket client disconnected")
	}
}

// sorted returns the clients ordered by id. Callers hold h.mu.
func (h *Hub) sorted() []*Client {
	out := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// broadcastToClients delivers m to every client. A client whose send buffer
// is full is dropped rather than allowed to stall the others.
func (h *Hub) broadcastToClients(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.sorted() {
		select {
		case c.send <- m:
		default:
			close(c.send)
			delete(h.clients, c)
			clientsGauge.Dec()
			log.Warn().Uint64("client_id", c.id).Msg("websocket client too slow, dropped")
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	n := len(h.clients)
	for _, c := range h.sorted() {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	clientsGauge.Sub(float64(n))
	log.Info().Str("component", "websocket-hub").Int("clients_closed", n).Msg("websocket hub stopped")
}

// Broadcast queues m for every client. It never blocks: when the queue is
// full the message is dropped and logged.
func (h *Hub) Broadcast(m Message) {
	select {
	case h.broadcast <- m:
	default:
		log.Warn().Str("message_type", m.Type).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastJSON encodes data and queues it as a message of the given type.
func (h *Hub) BroadcastJSON(typ string, data any) {
	m, err := NewMessage(typ, data)
	if err != nil {
		log.Error().Err(err).Str("message_type", typ).Msg("encode broadcast")
		return
	}
	h.Broadcast(m)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
