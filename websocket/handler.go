// Package websocket implements the realtime viewport covering protocol:
// viewers stream camera frames and get ordered tile lists back.
package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"golang.org/x/net/websocket"
)

const sendChanSize = 64

// ResponseSender sends protocol messages back to the connected viewer.
type ResponseSender interface {
	Send(msg Msg)
}

// Handler represents a covering service handler.
type Handler interface {
	// Handles a viewer connection.
	HandleConnect(conn *websocket.Conn)

	// Handles a ping message.
	HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a viewport state frame.
	HandleViewportState(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a viewer's disconnection.
	HandleDisconnect(err error)

	// The time a viewer is idle before being disconnected.
	IdleTimeout() time.Duration

	// Closes the handler and releases its allocated resources.
	Close()
}

// Handle runs the message loop for one connection until the context is
// canceled, the viewer goes idle, or the connection fails.
func Handle(ctx context.Context, conn *websocket.Conn, h Handler) {
	handler := handler{
		Conn:    conn,
		Handler: h,
	}
	handler.Handle(ctx)
}

type handler struct {
	Conn    *websocket.Conn
	Handler Handler

	sendChan       chan Msg
	recvChan       chan Msg
	disconnectChan chan error
}

func (h *handler) Handle(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.Handler.HandleConnect(h.Conn)

	h.sendChan = make(chan Msg, sendChanSize)
	h.recvChan = make(chan Msg, sendChanSize)
	h.disconnectChan = make(chan error, 8)
	defer func() {
		for len(h.disconnectChan) != 0 {
			<-h.disconnectChan
		}
	}()

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		h.startSending(ctx)
	}()
	go func() {
		defer wg.Done()
		h.startReceiving(ctx)
	}()

	idleTimeout := h.Handler.IdleTimeout()
	idleTimer := time.NewTimer(idleTimeout)
	defer idleTimer.Stop()

	responder := responseSender{send: h.send}

	for {
		select {
		case <-ctx.Done():
			// Closing the connection unblocks the receive goroutine.
			h.Conn.Close()
			h.Handler.HandleDisconnect(ctx.Err())
			wg.Wait()
			return

		case <-idleTimer.C:
			h.disconnect(errors.New("idle connection").WithTag("duration", idleTimeout))

		case msg := <-h.recvChan:
			idleTimer.Stop()
			idleTimer.Reset(idleTimeout)

			if err := h.handleMessage(ctx, msg, responder); err != nil {
				h.disconnect(errors.New("handling message failed").Wrap(err))
			}

		case err := <-h.disconnectChan:
			h.Conn.Close()
			h.Handler.HandleDisconnect(err)
			cancel()
			wg.Wait()
			return
		}
	}
}

func (h *handler) send(msg Msg) {
	h.sendChan <- msg
}

func (h *handler) startSending(ctx context.Context) {
	defer func() {
		for len(h.sendChan) != 0 {
			<-h.sendChan
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-h.sendChan:
			if err := Codec.Send(h.Conn, msg); err != nil {
				h.disconnect(errors.New("sending message failed").Wrap(err))
				return
			}
		}
	}
}

func (h *handler) startReceiving(ctx context.Context) {
	for {
		var msg Msg
		if err := Codec.Receive(h.Conn, &msg); err != nil {
			h.disconnect(errors.New("receiving message failed").Wrap(err))
			return
		}

		select {
		case <-ctx.Done():
			return
		case h.recvChan <- msg:
		}
	}
}

// handleMessage dispatches one message. Unknown types are answered with an
// error message rather than a disconnection: a newer client may speak a
// wider protocol.
func (h *handler) handleMessage(ctx context.Context, msg Msg, respond ResponseSender) error {
	switch msg.Type {
	case MsgTypePing:
		return h.Handler.HandlePing(ctx, respond, msg)

	case MsgTypeViewportState:
		return h.Handler.HandleViewportState(ctx, respond, msg)

	default:
		errMsg, err := NewMsg(MsgTypeError, msg.Seq, ErrorData{Code: ErrCodeUnknownType})
		if err != nil {
			return err
		}
		respond.Send(errMsg)
		return nil
	}
}

func (h *handler) disconnect(err error) {
	h.disconnectChan <- err
}

type responseSender struct {
	send func(Msg)
}

func (r responseSender) Send(msg Msg) {
	r.send(msg)
}
