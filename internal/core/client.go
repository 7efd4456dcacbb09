package core

// Client is a live connection as seen by the core layer. The transport
// assigns the id at accept time; events written to the channel are
// delivered to that one connection.
type Client struct {
	ID     string
	Events chan Event
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string) *Client {
	return &Client{
		ID:     id,
		Events: make(chan Event, 64),
	}
}

func (c *Client) deliver(ev Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
