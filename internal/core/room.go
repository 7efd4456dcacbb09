package core

// Room groups clients subscribed to the same broadcast channel.
// Not safe for concurrent use on its own; the hub guards access with its
// membership lock.
type Room struct {
	Name    string
	clients map[*Client]struct{}
}

// NewRoom constructs a room with no clients.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added;
// adding an existing member is a no-op.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Broadcast sends an event to all clients in the room, the sender
// included when it is a member.
func (r *Room) Broadcast(ev Event) {
	for client := range r.clients {
		client.deliver(ev)
	}
}

// Len returns the number of clients in the room.
func (r *Room) Len() int {
	return len(r.clients)
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}
