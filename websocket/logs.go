package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/mimirmaps/tilecover/models"
	"golang.org/x/net/websocket"
)

// HandlerWithLogs decorates h with logging. It periodically logs a summary of
// the inbound message traffic rather than one line per frame, since viewers
// stream viewport states at render rate.
func HandlerWithLogs(h Handler, summaryInterval time.Duration) Handler {
	ctx, cancel := context.WithCancel(context.Background())

	handler := &handlerWithLogs{
		Handler:            h,
		summaryInterval:    summaryInterval,
		closeSummaryWorker: cancel,
		counter:            make(map[string]int),
	}

	go handler.startSummaryWorker(ctx)
	return handler
}

type handlerWithLogs struct {
	Handler

	summaryInterval    time.Duration
	closeSummaryWorker func()
	counterMutex       sync.Mutex
	counter            map[string]int

	remoteAddr string
	sessionID  string
}

func (h *handlerWithLogs) HandleConnect(conn *websocket.Conn) {
	h.Handler.HandleConnect(conn)

	if req := conn.Request(); req != nil {
		h.remoteAddr = req.RemoteAddr
	}
	if s, ok := h.Handler.(interface{ Session() *models.Session }); ok {
		if session := s.Session(); session != nil {
			h.sessionID = session.ID.String()
		}
	}

	logs.WithTag("session_id", h.sessionID).
		WithTag("remote_addr", h.remoteAddr).
		Info("new viewer is connected")
}

func (h *handlerWithLogs) HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error {
	h.incCounter(string(msg.Type))
	return h.Handler.HandlePing(ctx, respond, msg)
}

func (h *handlerWithLogs) HandleViewportState(ctx context.Context, respond ResponseSender, msg Msg) error {
	h.incCounter(string(msg.Type))
	return h.Handler.HandleViewportState(ctx, respond, msg)
}

func (h *handlerWithLogs) HandleDisconnect(err error) {
	h.Handler.HandleDisconnect(err)

	logs.WithTag("session_id", h.sessionID).
		WithTag("remote_addr", h.remoteAddr).
		WithTag("reason", err).
		Info("viewer disconnected")
}

func (h *handlerWithLogs) Close() {
	h.Handler.Close()
	h.closeSummaryWorker()
	h.logSummary()
}

func (h *handlerWithLogs) startSummaryWorker(ctx context.Context) {
	ticker := time.NewTicker(h.summaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			h.logSummary()
		}
	}
}

func (h *handlerWithLogs) incCounter(msgType string) {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	h.counter[msgType]++
}

func (h *handlerWithLogs) logSummary() {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	if len(h.counter) == 0 {
		return
	}

	entry := logs.WithTag("session_id", h.sessionID).
		WithTag("remote_addr", h.remoteAddr).
		WithTag("time_interval", h.summaryInterval)

	for k, v := range h.counter {
		entry = entry.WithTag(k, v)
		delete(h.counter, k)
	}

	entry.Info("inbound message summary")
}
