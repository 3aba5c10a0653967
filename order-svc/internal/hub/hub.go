package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"barapp/order-svc/internal/domain"
	"barapp/order-svc/internal/metrics"

	"github.com/google/uuid"
)

const defaultBufferSize = 16

// Client is one connected terminal. Send is closed when the client is
// unregistered.
type Client struct {
	ID           string
	RestaurantID string
	Role         domain.Role
	send         chan []byte
}

func (c *Client) Send() <-chan []byte { return c.send }

// Hub is the process-local registry of connected terminals.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	bufferSize int
	metrics    *metrics.Registry
}

func New(bufferSize int, reg *metrics.Registry) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Hub{
		clients:    make(map[string]*Client),
		bufferSize: bufferSize,
		metrics:    reg,
	}
}

func (h *Hub) Register(restaurantID string, role domain.Role) *Client {
	c := &Client{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Role:         role,
		send:         make(chan []byte, h.bufferSize),
	}
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.metrics.ClientConnected()
	log.Printf("[hub] client %s connected (restaurant=%s role=%s)", c.ID, restaurantID, role)
	return c
}

func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		h.metrics.ClientDisconnected()
		log.Printf("[hub] client %s disconnected", id)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close unregisters every client.
func (h *Hub) Close() {
	h.mu.Lock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.Unlock()
	for _, id := range ids {
		h.Unregister(id)
	}
}

func (h *Hub) BroadcastAll(_ context.Context, event domain.Event) error {
	event.Role = ""
	return h.deliver(event, func(c *Client) bool { return true })
}

func (h *Hub) BroadcastToRole(_ context.Context, role domain.Role, event domain.Event) error {
	event.Role = role
	return h.deliver(event, func(c *Client) bool { return c.Role == role })
}

// deliver never blocks: a client whose buffer is full misses the event.
func (h *Hub) deliver(event domain.Event, match func(*Client) bool) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Name, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.RestaurantID != event.RestaurantID || !match(c) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			h.metrics.Dropped()
			log.Printf("[hub] client %s buffer full, dropping %s", c.ID, event.Name)
		}
	}
	return nil
}
