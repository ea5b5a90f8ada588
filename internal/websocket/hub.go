package websocket

import (
	"context"
	"encoding/json"

	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/rs/zerolog/log"
)

type broadcast struct {
	eventType string
	data      []byte
}

// Hub maintains the set of active clients and fans stored events out to them.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan broadcast
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates a new Hub. Call Run to start delivering messages.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcast, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			log.Info().Msg("Websocket hub stopped")
			return
		case client := <-h.register:
			h.clients[client] = true
			log.Info().Str("username", client.Username).Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				log.Info().Str("username", client.Username).Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.Wants(msg.eventType) {
					continue
				}
				if !client.trySend(msg.data) {
					// Slow consumer.
					client.close()
					delete(h.clients, client)
				}
			}
		}
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues event for every interested client. It never blocks; when
// the queue is full the event is dropped from the live feed.
func (h *Hub) Publish(event models.Event) {
	data, err := json.Marshal(NewEventMessage(event))
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to encode event for websocket")
		return
	}
	select {
	case h.broadcast <- broadcast{eventType: event.Type, data: data}:
	default:
		log.Warn().Str("event_type", event.Type).Msg("Websocket broadcast queue full, dropping event")
	}
}
