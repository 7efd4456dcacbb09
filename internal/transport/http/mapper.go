package http

import (
	"encoding/json"

	"github.com/avolkov/sentichat/internal/core"
	"github.com/avolkov/sentichat/internal/proto"
)

// operation is a decoded client request ready for hub dispatch.
type operation struct {
	kind string
	room string
	user string
	text string
}

// decodeInbound maps a wire envelope to a hub operation. Room and user
// are opaque strings and pass through unvalidated; blank message text
// is the hub's call to reject, not the transport's.
func decodeInbound(inbound proto.Inbound) (*operation, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		return &operation{kind: proto.InboundTypeJoin, room: join.Room, user: join.User}, nil, nil
	case proto.InboundTypeMsg:
		var msg proto.MsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		return &operation{kind: proto.InboundTypeMsg, text: msg.Text}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(ev core.Event) proto.Outbound {
	switch ev.Kind {
	case core.EventMessageWithSentiment:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveMessageWithSentiment,
			Data: proto.MessageWithSentiment{
				User:      ev.UserName,
				Text:      ev.Text,
				Sentiment: ev.Sentiment,
			},
		}
	case core.EventSystemNotice:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveMessage,
			Data: proto.SystemMessage{
				User: ev.UserName,
				Text: ev.Text,
			},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
