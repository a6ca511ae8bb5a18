package websocket

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/net/websocket"
)

const (
	msgTypeLabel        = "msg_type"
	projectionLabel     = "projection"
	errCodeLabel        = "error_code"
	publicEndpointLabel = "public_endpoint"
)

var (
	wsConnectedViewers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ws_connected_viewers",
		Help: "The number of connected viewers.",
	}, []string{
		publicEndpointLabel,
	})

	wsReceivedMsgs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_received_msgs",
		Help: "The number of messages received from WebSocket connections.",
	}, []string{
		publicEndpointLabel,
		msgTypeLabel,
	})

	wsSentErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_sent_errors",
		Help: "The number of error messages sent to viewers.",
	}, []string{
		publicEndpointLabel,
		errCodeLabel,
	})

	coveringTiles = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "covering_tiles",
		Help:    "The number of tiles emitted per covering.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{
		publicEndpointLabel,
		projectionLabel,
	})

	coveringDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "covering_duration_seconds",
		Help:    "The time to compute one covering.",
		Buckets: prometheus.DefBuckets,
	}, []string{
		publicEndpointLabel,
		projectionLabel,
	})
)

// HandlerWithMetrics decorates h with prometheus instrumentation.
func HandlerWithMetrics(h Handler, publicEndpoint string) Handler {
	return &handlerWithMetrics{
		Handler:        h,
		publicEndpoint: publicEndpoint,
	}
}

type handlerWithMetrics struct {
	Handler

	publicEndpoint string
}

func (h *handlerWithMetrics) HandleConnect(conn *websocket.Conn) {
	h.Handler.HandleConnect(conn)

	wsConnectedViewers.
		With(prometheus.Labels{publicEndpointLabel: h.publicEndpoint}).
		Inc()
}

func (h *handlerWithMetrics) HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error {
	h.countReceived(msg)
	return h.Handler.HandlePing(ctx, h.instrument(respond, ""), msg)
}

func (h *handlerWithMetrics) HandleViewportState(ctx context.Context, respond ResponseSender, msg Msg) error {
	h.countReceived(msg)

	var state ViewportState
	projection := ProjectionMercator
	if err := msg.DataTo(&state); err == nil && state.Projection != "" {
		projection = state.Projection
	}

	start := time.Now()
	err := h.Handler.HandleViewportState(ctx, h.instrument(respond, projection), msg)

	coveringDuration.
		With(prometheus.Labels{
			publicEndpointLabel: h.publicEndpoint,
			projectionLabel:     projection,
		}).
		Observe(time.Since(start).Seconds())
	return err
}

func (h *handlerWithMetrics) HandleDisconnect(err error) {
	h.Handler.HandleDisconnect(err)

	wsConnectedViewers.
		With(prometheus.Labels{publicEndpointLabel: h.publicEndpoint}).
		Dec()
}

func (h *handlerWithMetrics) countReceived(msg Msg) {
	wsReceivedMsgs.
		With(prometheus.Labels{
			publicEndpointLabel: h.publicEndpoint,
			msgTypeLabel:        string(msg.Type),
		}).
		Inc()
}

func (h *handlerWithMetrics) instrument(respond ResponseSender, projection string) ResponseSender {
	return metricsResponseSender{
		ResponseSender: respond,
		publicEndpoint: h.publicEndpoint,
		projection:     projection,
	}
}

type metricsResponseSender struct {
	ResponseSender

	publicEndpoint string
	projection     string
}

func (s metricsResponseSender) Send(msg Msg) {
	switch msg.Type {
	case MsgTypeCovering:
		var covering Covering
		if err := msg.DataTo(&covering); err == nil {
			coveringTiles.
				With(prometheus.Labels{
					publicEndpointLabel: s.publicEndpoint,
					projectionLabel:     s.projection,
				}).
				Observe(float64(len(covering.Tiles)))
		}

	case MsgTypeError:
		var errData ErrorData
		if err := msg.DataTo(&errData); err == nil {
			wsSentErrors.
				With(prometheus.Labels{
					publicEndpointLabel: s.publicEndpoint,
					errCodeLabel:        errData.Code,
				}).
				Inc()
		}
	}

	s.ResponseSender.Send(msg)
}
