package core

// SystemSender labels caller-only notices emitted by the server itself.
const SystemSender = "System"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventMessageWithSentiment carries a chat message annotated with
	// its sentiment label. Used for both history replay and live
	// broadcast.
	EventMessageWithSentiment EventKind = iota
	// EventSystemNotice is a caller-only message from the server,
	// always attributed to SystemSender.
	EventSystemNotice
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind      EventKind
	UserName  string
	Text      string
	Sentiment string
}

func systemNotice(text string) Event {
	return Event{Kind: EventSystemNotice, UserName: SystemSender, Text: text}
}
