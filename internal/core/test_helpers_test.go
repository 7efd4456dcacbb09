package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/avolkov/sentichat/internal/sentiment"
	"github.com/avolkov/sentichat/internal/store"
)

type fakeSessions struct {
	mu      sync.Mutex
	records map[string]*store.Connection
	saveErr error
	getErr  error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{records: make(map[string]*store.Connection)}
}

func (f *fakeSessions) SaveConnection(_ context.Context, connectionID, room, userName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return f.saveErr
	}
	f.records[connectionID] = &store.Connection{
		ConnectionID: connectionID,
		UserName:     userName,
		Room:         room,
		ConnectedAt:  time.Now(),
	}
	return nil
}

func (f *fakeSessions) GetConnection(_ context.Context, connectionID string) (*store.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	conn, ok := f.records[connectionID]
	if !ok {
		return nil, fmt.Errorf("connection %s: %w", connectionID, store.ErrNotFound)
	}
	return conn, nil
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeArchive struct {
	mu        sync.Mutex
	messages  []*store.Message
	saveErr   error
	recentErr error
	nextID    int64
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{}
}

func (f *fakeArchive) SaveMessage(_ context.Context, room, userName, text, sentiment string) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.nextID++
	msg := &store.Message{
		ID:        f.nextID,
		Room:      room,
		UserName:  userName,
		Text:      text,
		Sentiment: sentiment,
		SentAt:    time.Now(),
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeArchive) GetRecentMessages(_ context.Context, room string) ([]*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.recentErr != nil {
		return nil, f.recentErr
	}

	// Newest first, capped like the real archive.
	var recent []*store.Message
	for i := len(f.messages) - 1; i >= 0 && len(recent) < store.RecentMessageLimit; i-- {
		if f.messages[i].Room == room {
			recent = append(recent, f.messages[i])
		}
	}
	return recent, nil
}

func (f *fakeArchive) stored() []*store.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*store.Message(nil), f.messages...)
}

type fakeAnnotator struct {
	mu    sync.Mutex
	label sentiment.Label
	err   error
	calls int
}

func (f *fakeAnnotator) AnalyzeSentiment(_ context.Context, _ string) (sentiment.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.label, nil
}

func (f *fakeAnnotator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestHub(sessions *fakeSessions, archive *fakeArchive, annotator *fakeAnnotator) *Hub {
	logger := zerolog.Nop()
	return NewHub(sessions, archive, annotator, &logger)
}

func mustEvent(t *testing.T, ch <-chan Event, kind EventKind) Event {
	t.Helper()

	select {
	case ev := <-ch:
		if ev.Kind != kind {
			t.Fatalf("expected event kind %v, got %+v", kind, ev)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("expected event kind %v not received", kind)
		return Event{}
	}
}

func mustNoEvent(t *testing.T, ch <-chan Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("expected no event, got %+v", ev)
	default:
	}
}
