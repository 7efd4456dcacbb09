package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin = "join"
	InboundTypeMsg  = "msg"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	// EventReceiveMessageWithSentiment carries a sentiment-annotated
	// chat message, for both history replay and live broadcast.
	EventReceiveMessageWithSentiment = "receive_message_with_sentiment"
	// EventReceiveMessage carries a plain server notice; the user field
	// is always "System".
	EventReceiveMessage = "receive_message"
)

// JoinData requests to join a chat room under a user name.
type JoinData struct {
	Room string `json:"room"`
	User string `json:"user"`
}

// MsgData is a chat message from the client.
type MsgData struct {
	Text string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// MessageWithSentiment is the payload of EventReceiveMessageWithSentiment.
type MessageWithSentiment struct {
	User      string `json:"user"`
	Text      string `json:"text"`
	Sentiment string `json:"sentiment"`
}

// SystemMessage is the payload of EventReceiveMessage.
type SystemMessage struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
