package websocket

import (
	"sync"
	"time"
)

// Member is one connection's presence entry in a room.
type Member struct {
	SocketID string `json:"socketId"`
	UserID   string `json:"userId"`
	Login    string `json:"login,omitempty"`
	CanEdit  bool   `json:"canEdit"`
	CursorX  int    `json:"cursorX"`
	CursorY  int    `json:"cursorY"`

	lastCursorRelay time.Time
}

// cursorMinInterval bounds how often one connection's cursor position is
// relayed to the room, roughly 30 updates per second.
const cursorMinInterval = 33 * time.Millisecond

// Registry tracks which connections are in which room, with their cursor
// positions. All state is process-lifetime only; a relay restart starts
// empty and clients rejoin.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Member
}

// NewRegistry creates an empty room registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]*Member)}
}

// Join adds a connection to a room and returns the member count afterwards.
func (r *Registry) Join(roomID string, m Member) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		room = make(map[string]*Member)
		r.rooms[roomID] = room
	}
	entry := m
	room[m.SocketID] = &entry
	return len(room)
}

// Leave removes a connection from a room. Empty rooms are discarded so no
// state leaks after the last user disconnects. Returns the remaining count.
func (r *Registry) Leave(roomID, socketID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return 0
	}
	delete(room, socketID)
	if len(room) == 0 {
		delete(r.rooms, roomID)
		return 0
	}
	return len(room)
}

// Member returns a copy of one presence entry.
func (r *Registry) Member(roomID, socketID string) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return Member{}, false
	}
	m, ok := room[socketID]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

// Members returns a copy of the room's presence list.
func (r *Registry) Members(roomID string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomID]
	members := make([]Member, 0, len(room))
	for _, m := range room {
		members = append(members, *m)
	}
	return members
}

// UpdateCursor records a cursor position and reports whether the update may
// be relayed now, or false when it falls inside the throttle window. The
// position is stored either way, so a member list always carries the latest
// known coordinates.
func (r *Registry) UpdateCursor(roomID, socketID string, x, y int) bool {
	return r.updateCursorAt(roomID, socketID, x, y, time.Now())
}

func (r *Registry) updateCursorAt(roomID, socketID string, x, y int, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	m, ok := room[socketID]
	if !ok {
		return false
	}
	m.CursorX = x
	m.CursorY = y
	if now.Sub(m.lastCursorRelay) < cursorMinInterval {
		return false
	}
	m.lastCursorRelay = now
	return true
}

// ActiveRooms returns the number of connections per room, for the REST
// listing.
func (r *Registry) ActiveRooms() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make(map[string]int, len(r.rooms))
	for id, room := range r.rooms {
		rooms[id] = len(room)
	}
	return rooms
}
