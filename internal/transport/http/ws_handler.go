package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avolkov/sentichat/internal/core"
	"github.com/avolkov/sentichat/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to core.Client.
// Each accepted connection gets a fresh connection id; the id is never
// reused, so a reconnecting client starts unjoined.
type WSHandler struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(uuid.NewString())
	defer h.hub.Detach(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Protocol-level errors bypass the hub and go straight to the write
	// loop, keeping a single websocket writer.
	protoErrs := make(chan proto.Outbound, 4)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, protoErrs)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client, protoErrs)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, protoErrs chan<- proto.Outbound) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		op, protoErr, err := decodeInbound(inbound)
		if err != nil {
			h.log.Warn().Err(err).Str("connection_id", client.ID).Msg("failed to decode inbound")
			return err
		}
		if protoErr != nil {
			select {
			case protoErrs <- proto.Outbound{Type: proto.OutboundTypeError, Error: protoErr}:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		// Each operation runs as its own task; two overlapping sends
		// from the same connection race to completion.
		switch op.kind {
		case proto.InboundTypeJoin:
			go func(room, user string) {
				_ = h.hub.Join(ctx, client, room, user)
			}(op.room, op.user)
		case proto.InboundTypeMsg:
			go func(text string) {
				_ = h.hub.Send(ctx, client, text)
			}(op.text)
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, protoErrs <-chan proto.Outbound) error {
	for {
		select {
		case event := <-client.Events:
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("connection_id", client.ID).Msg("write ws event")
				return err
			}
		case outbound := <-protoErrs:
			if err := wsjson.Write(ctx, conn, outbound); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
