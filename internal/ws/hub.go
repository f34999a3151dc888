package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/beautypos/workstation/internal/enum"
	"github.com/beautypos/workstation/internal/workstation"
	"github.com/google/uuid"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// sessionEvent routes an event to one session's room. close drops the room
// after delivery.
type sessionEvent struct {
	SessionID uuid.UUID
	Event     Event
	close     bool
}

// Hub maintains the set of terminals watching each session and fans
// notifications out to them
type Hub struct {
	// Registered clients by session ID
	rooms map[uuid.UUID]map[*Client]bool

	// Sessions that have ended; late registrations for them are refused
	ended map[uuid.UUID]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan *sessionEvent

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		ended:      make(map[uuid.UUID]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *sessionEvent, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.ended[client.sessionID] {
				client.ended = true
				close(client.send)
				h.mu.Unlock()
				continue
			}
			if h.rooms[client.sessionID] == nil {
				h.rooms[client.sessionID] = make(map[*Client]bool)
			}
			h.rooms[client.sessionID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.sessionID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.sessionID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) deliver(event *sessionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if event.close {
		h.ended[event.SessionID] = true
	}

	message, err := json.Marshal(event.Event)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", event.Event.Type, err)
		return
	}

	clients := h.rooms[event.SessionID]
	for client := range clients {
		select {
		case client.send <- message:
		default:
			// Client's send buffer is full, close and unregister
			close(client.send)
			delete(clients, client)
		}
	}

	if event.close {
		for client := range clients {
			client.ended = true
			close(client.send)
			delete(clients, client)
		}
	}
	if len(clients) == 0 {
		delete(h.rooms, event.SessionID)
	}
}

// BroadcastToSession sends an event to all clients watching a session
func (h *Hub) BroadcastToSession(sessionID uuid.UUID, event Event) {
	h.broadcast <- &sessionEvent{SessionID: sessionID, Event: event}
}

// Notify publishes each notification as its own event, in order.
func (h *Hub) Notify(sessionID uuid.UUID, notes []workstation.Notification) {
	for _, n := range notes {
		payload, err := json.Marshal(n)
		if err != nil {
			log.Printf("ERROR: marshal notification: %v", err)
			continue
		}
		h.BroadcastToSession(sessionID, Event{Type: enum.EventNotification, Payload: payload})
	}
}

// SessionEnded tells watching clients the session is gone and disconnects them.
func (h *Hub) SessionEnded(sessionID uuid.UUID) {
	payload, _ := json.Marshal(map[string]string{"session_id": sessionID.String()})
	h.broadcast <- &sessionEvent{
		SessionID: sessionID,
		Event:     Event{Type: enum.EventSessionEnded, Payload: payload},
		close:     true,
	}
}
