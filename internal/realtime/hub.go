// Package realtime implements the room-based publish/subscribe bus
// that relays persisted state changes to live connections and tracks
// participant presence.
package realtime

import (
	"sync"
	"time"
)

// Subscriber receives events for the rooms it joined. Send must never
// block the hub; slow consumers drop frames.
type Subscriber interface {
	Send(event Event)
}

// Hub is the in-process bus. All methods are safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Subscriber]struct{}

	// presence is a multiset: participant key -> live connection ids.
	presence map[string]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]map[Subscriber]struct{}),
		presence: make(map[string]map[string]struct{}),
	}
}

func (h *Hub) Join(room string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[Subscriber]struct{})
		h.rooms[room] = members
	}
	members[sub] = struct{}{}
}

func (h *Hub) Leave(room string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, sub)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// LeaveAll drops the subscriber from every room. Used on disconnect;
// it does not touch other connections of the same participant.
func (h *Hub) LeaveAll(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		delete(members, sub)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Publish fans an event out to every subscriber of the room.
func (h *Hub) Publish(room string, event Event) {
	h.publish(room, event, nil)
}

// PublishExcept fans out to the room minus one subscriber. Typing
// indicators use this so the typist never echoes to themselves.
func (h *Hub) PublishExcept(room string, event Event, except Subscriber) {
	h.publish(room, event, except)
}

func (h *Hub) publish(room string, event Event, except Subscriber) {
	h.mu.RLock()
	members := make([]Subscriber, 0, len(h.rooms[room]))
	for sub := range h.rooms[room] {
		if sub != except {
			members = append(members, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range members {
		sub.Send(event)
	}
}

// Broadcast sends an event to every subscriber of every room once.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	seen := make(map[Subscriber]struct{})
	for _, members := range h.rooms {
		for sub := range members {
			seen[sub] = struct{}{}
		}
	}
	h.mu.RUnlock()

	for sub := range seen {
		sub.Send(event)
	}
}

// ConnectPresence records a live connection and reports whether the
// participant just transitioned offline -> online.
func (h *Hub) ConnectPresence(participantKey, connID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.presence[participantKey]
	if !ok {
		conns = make(map[string]struct{})
		h.presence[participantKey] = conns
	}
	wasOnline := len(conns) > 0
	conns[connID] = struct{}{}
	return !wasOnline
}

// DisconnectPresence removes one connection id and reports whether the
// participant just transitioned online -> offline. Other connections
// of the same participant are untouched.
func (h *Hub) DisconnectPresence(participantKey, connID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.presence[participantKey]
	if !ok {
		return false
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(h.presence, participantKey)
		return true
	}
	return false
}

func (h *Hub) IsOnline(participantKey string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.presence[participantKey]) > 0
}

// NowStamp is the timestamp format used on ephemeral events.
func NowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
