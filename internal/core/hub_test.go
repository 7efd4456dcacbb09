package core

import (
	"context"
	"errors"
	"testing"

	"github.com/avolkov/sentichat/internal/sentiment"
)

func TestJoinReplaysHistoryMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessions()
	archive := newFakeArchive()
	hub := newTestHub(sessions, archive, &fakeAnnotator{label: sentiment.Neutral})

	for _, text := range []string{"first", "second", "third"} {
		if _, err := archive.SaveMessage(ctx, "lobby", "carol", text, "Neutral"); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}
	if _, err := archive.SaveMessage(ctx, "random", "dave", "elsewhere", "Negative"); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	alice := NewClient("c1")
	if err := hub.Join(ctx, alice, "lobby", "alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	// Replay preserves the fetched most-recent-first order and only
	// contains the joined room's messages.
	for _, want := range []string{"third", "second", "first"} {
		ev := mustEvent(t, alice.Events, EventMessageWithSentiment)
		if ev.Text != want || ev.UserName != "carol" || ev.Sentiment != "Neutral" {
			t.Fatalf("expected history event %q, got %+v", want, ev)
		}
	}
	mustNoEvent(t, alice.Events)

	if sessions.count() != 1 {
		t.Fatalf("expected one session record, got %d", sessions.count())
	}
}

func TestSendBroadcastsToRoomIncludingSender(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessions()
	archive := newFakeArchive()
	hub := newTestHub(sessions, archive, &fakeAnnotator{label: sentiment.Positive})

	alice := NewClient("c1")
	bob := NewClient("c2")
	if err := hub.Join(ctx, alice, "lobby", "alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if err := hub.Join(ctx, bob, "lobby", "bob"); err != nil {
		t.Fatalf("join bob: %v", err)
	}

	if err := hub.Send(ctx, alice, "hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	for _, c := range []*Client{alice, bob} {
		ev := mustEvent(t, c.Events, EventMessageWithSentiment)
		if ev.UserName != "alice" || ev.Text != "hello" || ev.Sentiment != "Positive" {
			t.Fatalf("unexpected broadcast event for %s: %+v", c.ID, ev)
		}
	}

	stored := archive.stored()
	if len(stored) != 1 || stored[0].Room != "lobby" || stored[0].Text != "hello" {
		t.Fatalf("unexpected archive contents: %+v", stored)
	}
}

func TestSendSentimentMatchesAnnotator(t *testing.T) {
	ctx := context.Background()
	hub := newTestHub(newFakeSessions(), newFakeArchive(), &fakeAnnotator{label: sentiment.Mixed})

	alice := NewClient("c1")
	if err := hub.Join(ctx, alice, "lobby", "alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := hub.Send(ctx, alice, "well, that happened"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	ev := mustEvent(t, alice.Events, EventMessageWithSentiment)
	if ev.Sentiment != string(sentiment.Mixed) {
		t.Fatalf("broadcast sentiment %q does not match annotator", ev.Sentiment)
	}
}

func TestSendWithoutJoinRejected(t *testing.T) {
	ctx := context.Background()
	archive := newFakeArchive()
	annotator := &fakeAnnotator{label: sentiment.Positive}
	hub := newTestHub(newFakeSessions(), archive, annotator)

	alice := NewClient("c1")
	err := hub.Send(ctx, alice, "hello")
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	ev := mustEvent(t, alice.Events, EventSystemNotice)
	if ev.UserName != SystemSender {
		t.Fatalf("notice not attributed to system: %+v", ev)
	}
	if annotator.callCount() != 0 {
		t.Error("annotator must not be called without a session")
	}
	if len(archive.stored()) != 0 {
		t.Error("no message must be persisted without a session")
	}
}

func TestSendEmptyTextRejected(t *testing.T) {
	ctx := context.Background()
	archive := newFakeArchive()
	annotator := &fakeAnnotator{label: sentiment.Positive}
	hub := newTestHub(newFakeSessions(), archive, annotator)

	alice := NewClient("c1")
	if err := hub.Join(ctx, alice, "lobby", "alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	for _, text := range []string{"", "   ", "\t\n"} {
		if err := hub.Send(ctx, alice, text); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("expected ErrEmptyMessage for %q, got %v", text, err)
		}
		mustEvent(t, alice.Events, EventSystemNotice)
	}

	if annotator.callCount() != 0 {
		t.Error("blank text must not reach the annotator")
	}
	if len(archive.stored()) != 0 {
		t.Error("blank text must not reach the archive")
	}
}

func TestSendAnnotatorFailure(t *testing.T) {
	ctx := context.Background()
	archive := newFakeArchive()
	annotator := &fakeAnnotator{err: errors.New("quota exhausted")}
	hub := newTestHub(newFakeSessions(), archive, annotator)

	alice := NewClient("c1")
	bob := NewClient("c2")
	if err := hub.Join(ctx, alice, "lobby", "alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if err := hub.Join(ctx, bob, "lobby", "bob"); err != nil {
		t.Fatalf("join bob: %v", err)
	}

	err := hub.Send(ctx, alice, "hello")
	var depErr *DependencyError
	if !errors.As(err, &depErr) {
		t.Fatalf("expected DependencyError, got %v", err)
	}

	// Caller gets the generic notice; the room receives nothing.
	mustEvent(t, alice.Events, EventSystemNotice)
	mustNoEvent(t, bob.Events)

	if len(archive.stored()) != 0 {
		t.Error("no message must be persisted when annotation fails")
	}
}

func TestSendPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	archive := newFakeArchive()
	archive.saveErr = errors.New("disk full")
	hub := newTestHub(newFakeSessions(), archive, &fakeAnnotator{label: sentiment.Positive})

	alice := NewClient("c1")
	bob := NewClient("c2")
	if err := hub.Join(ctx, alice, "lobby", "alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if err := hub.Join(ctx, bob, "lobby", "bob"); err != nil {
		t.Fatalf("join bob: %v", err)
	}

	var depErr *DependencyError
	if err := hub.Send(ctx, alice, "hello"); !errors.As(err, &depErr) {
		t.Fatalf("expected DependencyError, got %v", err)
	}

	mustEvent(t, alice.Events, EventSystemNotice)
	mustNoEvent(t, bob.Events)
}

func TestJoinTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessions()
	hub := newTestHub(sessions, newFakeArchive(), &fakeAnnotator{label: sentiment.Positive})

	alice := NewClient("c1")
	if err := hub.Join(ctx, alice, "lobby", "alice"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := hub.Join(ctx, alice, "lobby", "alice"); err != nil {
		t.Fatalf("second join: %v", err)
	}

	if sessions.count() != 1 {
		t.Fatalf("expected one session record, got %d", sessions.count())
	}
	if size := hub.RoomSize("lobby"); size != 1 {
		t.Fatalf("expected membership of 1, got %d", size)
	}

	// A broadcast reaches the double-joined client exactly once.
	if err := hub.Send(ctx, alice, "hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	mustEvent(t, alice.Events, EventMessageWithSentiment)
	mustNoEvent(t, alice.Events)
}

func TestJoinSessionWriteFailure(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessions()
	sessions.saveErr = errors.New("db unavailable")
	hub := newTestHub(sessions, newFakeArchive(), &fakeAnnotator{label: sentiment.Positive})

	alice := NewClient("c1")
	var depErr *DependencyError
	if err := hub.Join(ctx, alice, "lobby", "alice"); !errors.As(err, &depErr) {
		t.Fatalf("expected DependencyError, got %v", err)
	}

	ev := mustEvent(t, alice.Events, EventSystemNotice)
	if ev.UserName != SystemSender {
		t.Fatalf("notice not attributed to system: %+v", ev)
	}
}

func TestJoinHistoryFailureLeavesSessionWritten(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessions()
	archive := newFakeArchive()
	archive.recentErr = errors.New("query timeout")
	hub := newTestHub(sessions, archive, &fakeAnnotator{label: sentiment.Positive})

	alice := NewClient("c1")
	var depErr *DependencyError
	if err := hub.Join(ctx, alice, "lobby", "alice"); !errors.As(err, &depErr) {
		t.Fatalf("expected DependencyError, got %v", err)
	}
	mustEvent(t, alice.Events, EventSystemNotice)

	// No compensating rollback: the session write survives the failed
	// history fetch, so a subsequent send still works.
	archive.recentErr = nil
	if err := hub.Send(ctx, alice, "hello"); err != nil {
		t.Fatalf("send after partial join failed: %v", err)
	}
	mustEvent(t, alice.Events, EventMessageWithSentiment)
}

func TestDetachRemovesMembership(t *testing.T) {
	ctx := context.Background()
	hub := newTestHub(newFakeSessions(), newFakeArchive(), &fakeAnnotator{label: sentiment.Positive})

	alice := NewClient("c1")
	bob := NewClient("c2")
	if err := hub.Join(ctx, alice, "lobby", "alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if err := hub.Join(ctx, bob, "lobby", "bob"); err != nil {
		t.Fatalf("join bob: %v", err)
	}

	hub.Detach(bob)

	if err := hub.Send(ctx, alice, "hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	mustEvent(t, alice.Events, EventMessageWithSentiment)
	mustNoEvent(t, bob.Events)
}
