package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avolkov/sentichat/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS connections (
	connection_id TEXT PRIMARY KEY,
	username      TEXT NOT NULL,
	room          TEXT NOT NULL,
	connected_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	room      TEXT NOT NULL,
	username  TEXT NOT NULL,
	text      TEXT NOT NULL,
	sentiment TEXT NOT NULL,
	sent_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_connections_room ON connections(room);
CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room, sent_at DESC);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply an alternative schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== ConnectionStore implementation ====

// SaveConnection upserts the session record for a connection id.
func (s *SQLiteStore) SaveConnection(ctx context.Context, connectionID, room, userName string) error {
	query := `
		INSERT INTO connections (connection_id, username, room, connected_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(connection_id) DO UPDATE SET
			username     = excluded.username,
			room         = excluded.room,
			connected_at = excluded.connected_at
	`
	if _, err := s.db.ExecContext(ctx, query, connectionID, userName, room, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert connection: %w", err)
	}
	return nil
}

// GetConnection retrieves the session for a connection id.
func (s *SQLiteStore) GetConnection(ctx context.Context, connectionID string) (*store.Connection, error) {
	query := `
		SELECT connection_id, username, room, connected_at
		FROM connections
		WHERE connection_id = ?
	`
	var conn store.Connection
	err := s.db.QueryRowContext(ctx, query, connectionID).Scan(
		&conn.ConnectionID,
		&conn.UserName,
		&conn.Room,
		&conn.ConnectedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("connection %s: %w", connectionID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query connection: %w", err)
	}

	return &conn, nil
}

// ==== MessageStore implementation ====

// SaveMessage persists a message and returns it with the assigned id and
// sent-at timestamp.
func (s *SQLiteStore) SaveMessage(ctx context.Context, room, userName, text, sentiment string) (*store.Message, error) {
	query := `
		INSERT INTO messages (room, username, text, sentiment, sent_at)
		VALUES (?, ?, ?, ?, ?)
	`
	sentAt := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, query, room, userName, text, sentiment, sentAt)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return &store.Message{
		ID:        id,
		Room:      room,
		UserName:  userName,
		Text:      text,
		Sentiment: sentiment,
		SentAt:    sentAt,
	}, nil
}

// GetRecentMessages returns up to store.RecentMessageLimit messages for a
// room, most recent first. Ties on sent_at break by insertion order.
func (s *SQLiteStore) GetRecentMessages(ctx context.Context, room string) ([]*store.Message, error) {
	query := `
		SELECT id, room, username, text, sentiment, sent_at
		FROM messages
		WHERE room = ?
		ORDER BY sent_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, room, store.RecentMessageLimit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.Room,
			&msg.UserName,
			&msg.Text,
			&msg.Sentiment,
			&msg.SentAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
