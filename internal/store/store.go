package store

import (
	"context"
	"errors"
	"time"
)

// RecentMessageLimit caps how many messages are replayed to a freshly
// joined connection.
const RecentMessageLimit = 50

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("not found")

// Connection is the persisted session for a live transport connection.
// One record per connection id; a repeated save for the same id replaces
// the previous record.
type Connection struct {
	ConnectionID string
	UserName     string
	Room         string
	ConnectedAt  time.Time
}

// Message is a persisted chat message with its sentiment label.
type Message struct {
	ID        int64
	Room      string
	UserName  string
	Text      string
	Sentiment string
	SentAt    time.Time
}

// ConnectionStore handles session persistence.
type ConnectionStore interface {
	// SaveConnection upserts the session record for a connection id.
	// Last write wins.
	SaveConnection(ctx context.Context, connectionID, room, userName string) error

	// GetConnection retrieves the session for a connection id.
	// Returns ErrNotFound if no session exists.
	GetConnection(ctx context.Context, connectionID string) (*Connection, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and returns it with the assigned
	// id and sent-at timestamp.
	SaveMessage(ctx context.Context, room, userName, text, sentiment string) (*Message, error)

	// GetRecentMessages returns up to RecentMessageLimit messages for a
	// room, most recent first.
	GetRecentMessages(ctx context.Context, room string) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	ConnectionStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
