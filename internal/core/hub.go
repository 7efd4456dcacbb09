package core

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/avolkov/sentichat/internal/sentiment"
	"github.com/avolkov/sentichat/internal/store"
)

// Caller-only notice texts. Collaborator failures map to the same
// generic text per operation so internal detail never leaks to clients.
const (
	noticeJoinFailed   = "An error occurred while joining the chat."
	noticeEmptyMessage = "Message cannot be empty."
	noticeNoSession    = "Connection not found. Unable to send the message."
	noticeSendFailed   = "An error occurred while sending the message."
)

// Hub orchestrates the chat session protocol: it maps connections to
// rooms and identities, validates sends against that session state,
// annotates messages with sentiment, persists them, and fans them out
// to room members.
//
// Join and Send are invoked concurrently across connections; the only
// shared mutable state is the room membership table.
type Hub struct {
	sessions  store.ConnectionStore
	archive   store.MessageStore
	annotator sentiment.Annotator
	log       *zerolog.Logger

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewHub constructs a hub on top of the session store, message archive
// and sentiment annotator.
func NewHub(sessions store.ConnectionStore, archive store.MessageStore, annotator sentiment.Annotator, logger *zerolog.Logger) *Hub {
	return &Hub{
		sessions:  sessions,
		archive:   archive,
		annotator: annotator,
		log:       logger,
		rooms:     make(map[string]*Room),
	}
}

// Join associates the client with a room and user name, persists the
// session record (last write wins for the same connection id), and
// replays recent room history to the caller, most recent first.
//
// Joining the same room twice is harmless. Room and user name are
// opaque strings; no normalization is applied. On collaborator failure
// the caller receives a single generic notice; a session record already
// written is left in place.
func (h *Hub) Join(ctx context.Context, c *Client, room, userName string) error {
	h.log.Info().Str("user", userName).Str("room", room).Msg("user joining room")

	h.addToRoom(room, c)

	if err := h.sessions.SaveConnection(ctx, c.ID, room, userName); err != nil {
		return h.failJoin(c, room, userName, &DependencyError{Op: "save connection", Err: err})
	}

	recent, err := h.archive.GetRecentMessages(ctx, room)
	if err != nil {
		return h.failJoin(c, room, userName, &DependencyError{Op: "load history", Err: err})
	}

	// History goes to the caller only, preserving the fetched
	// most-recent-first order.
	for _, msg := range recent {
		c.deliver(Event{
			Kind:      EventMessageWithSentiment,
			UserName:  msg.UserName,
			Text:      msg.Text,
			Sentiment: msg.Sentiment,
		})
	}

	h.log.Info().Str("user", userName).Str("room", room).Msg("user joined room")
	return nil
}

// Send validates the text against the client's session, annotates it
// with sentiment, persists it, and broadcasts it to every connection in
// the session's room, the sender included.
//
// A send from a connection with no session, or with blank text, is
// rejected with a caller-only notice before any collaborator is
// touched. On annotation or persistence failure the room receives
// nothing and the caller gets a generic notice.
func (h *Hub) Send(ctx context.Context, c *Client, text string) error {
	if strings.TrimSpace(text) == "" {
		c.deliver(systemNotice(noticeEmptyMessage))
		return ErrEmptyMessage
	}

	conn, err := h.sessions.GetConnection(ctx, c.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.deliver(systemNotice(noticeNoSession))
			return ErrNoSession
		}
		h.log.Error().Err(err).Str("connection_id", c.ID).Msg("session lookup failed")
		c.deliver(systemNotice(noticeSendFailed))
		return &DependencyError{Op: "lookup session", Err: err}
	}

	label, err := h.annotator.AnalyzeSentiment(ctx, text)
	if err != nil {
		return h.failSend(c, conn, &DependencyError{Op: "analyze sentiment", Err: err})
	}

	msg, err := h.archive.SaveMessage(ctx, conn.Room, conn.UserName, text, string(label))
	if err != nil {
		return h.failSend(c, conn, &DependencyError{Op: "save message", Err: err})
	}

	h.broadcast(conn.Room, Event{
		Kind:      EventMessageWithSentiment,
		UserName:  msg.UserName,
		Text:      msg.Text,
		Sentiment: msg.Sentiment,
	})
	return nil
}

// Detach removes the client from every room it joined. Called by the
// transport on disconnect; the session record is left behind, since the
// connection id is never reused.
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for name, room := range h.rooms {
		if room.RemoveClient(c) && room.Empty() {
			delete(h.rooms, name)
		}
	}
}

// RoomSize reports how many connections are currently in a room.
func (h *Hub) RoomSize(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[name]
	if !ok {
		return 0
	}
	return room.Len()
}

func (h *Hub) addToRoom(name string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[name]
	if !ok {
		room = NewRoom(name)
		h.rooms[name] = room
	}
	room.AddClient(c)
}

func (h *Hub) broadcast(name string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, ok := h.rooms[name]; ok {
		room.Broadcast(ev)
	}
}

func (h *Hub) failJoin(c *Client, room, userName string, err error) error {
	h.log.Error().Err(err).Str("user", userName).Str("room", room).Msg("join failed")
	c.deliver(systemNotice(noticeJoinFailed))
	return err
}

func (h *Hub) failSend(c *Client, conn *store.Connection, err error) error {
	h.log.Error().Err(err).Str("user", conn.UserName).Str("room", conn.Room).Msg("send failed")
	c.deliver(systemNotice(noticeSendFailed))
	return err
}
