package collab

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one live websocket connection. Send is drained by writePump and
// is never closed; the hub drops a client that cannot keep up by closing done
// instead, so concurrent senders can never hit a closed channel.
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	ConnID string
	UserID string

	done      chan struct{}
	closeOnce sync.Once
	room      string // guarded by hub.mu
}

// close signals writePump and any pending sender to stop. Safe to call from
// multiple goroutines; a client built without a done channel is a no-op.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		if c.done != nil {
			close(c.done)
		}
	})
}

type broadcastMsg struct {
	Room   string
	Origin string // originating connection id, never delivered to
	Data   []byte
}

// Hub tracks which connections are in which itinerary room and fans accepted
// mutations out to them. All membership state is in-memory; a reconnecting
// client rebuilds its view from the store, not from missed events.
type Hub struct {
	rooms      map[string]map[*Client]bool
	conns      map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		conns:      make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.conns[c.ConnID] = c
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[c.ConnID]; ok {
				h.removeLocked(c)
				delete(h.conns, c.ConnID)
				c.close()
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				if c.ConnID == m.Origin {
					continue
				}
				select {
				case c.Send <- m.Data:
				default:
					h.removeLocked(c)
					delete(h.conns, c.ConnID)
					c.close()
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for _, c := range h.conns {
				h.removeLocked(c)
				c.close()
			}
			h.conns = make(map[string]*Client)
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts the hub down and signals every client to disconnect.
func (h *Hub) Stop() {
	close(h.done)
}

// Unregister removes c from the hub. Returns immediately once the hub has
// stopped, so connection teardown never blocks on a dead Run loop.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.close()
	}
}

// Join puts c into the given room. Idempotent; a connection belongs to at most
// one room, so joining a new room implicitly leaves the previous one.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.room == room {
		return
	}
	h.removeLocked(c)
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
	c.room = room
}

// Leave removes c from whatever room it occupies. No-op if not in one.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	if c.room == "" {
		return
	}
	if members := h.rooms[c.room]; members != nil {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.room = ""
}

// MembersOf returns a snapshot of connection ids currently in the room.
func (h *Hub) MembersOf(room string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := make([]string, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		members = append(members, c.ConnID)
	}
	return members
}

// Publish delivers data to every room member except the originator.
// Best-effort: a member mid-disconnect simply misses the event.
func (h *Hub) Publish(room, originConnID string, data []byte) {
	select {
	case h.broadcast <- broadcastMsg{Room: room, Origin: originConnID, Data: data}:
	case <-h.done:
	}
}
