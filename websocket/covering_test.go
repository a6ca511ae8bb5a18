package websocket

import (
	"context"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mimirmaps/tilecover/featureflag"
	"github.com/mimirmaps/tilecover/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

// dialTestServer starts a covering server with the full handler chain and
// returns a connected client.
func dialTestServer(t *testing.T, sessions *models.SessionStore, flags featureflag.FeatureFlag) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := httptest.NewServer(websocket.Server{
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			var ch Handler = &CoveringHandler{
				ClientIdleTimeout: time.Minute,
				Sessions:          sessions,
				FeatureFlags:      flags,
			}
			h := HandlerWithLogs(ch, time.Minute)
			h = HandlerWithMetrics(h, "http://localhost:4000")
			defer h.Close()

			Handle(ctx, conn, h)
		},
	})
	t.Cleanup(srv.Close)

	conn, err := websocket.Dial(strings.Replace(srv.URL, "http", "ws", 1), "", srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// overheadState is a straight-down camera at zoom 2 with an explicit frustum
// spanning the whole world.
func overheadState() ViewportState {
	frustum := [8][3]float64{
		{-0.1, -0.1, 10},
		{1.1, -0.1, 10},
		{-0.1, 1.1, 10},
		{1.1, 1.1, 10},
		{-0.1, -0.1, -10},
		{1.1, -0.1, -10},
		{-0.1, 1.1, -10},
		{1.1, 1.1, -10},
	}

	state := ViewportState{
		Projection:    ProjectionMercator,
		CameraPos:     [3]float64{0.5, 0.5, 0.3},
		Center:        [3]float64{0.5, 0.5, 0},
		FrustumPoints: &frustum,
	}
	state.Camera.Zoom = 2
	state.Camera.FOV = math.Pi / 3
	state.Camera.MaxZoom = 5
	state.Camera.TileSize = 512
	state.Options.TileSize = 512
	return state
}

func TestCoveringService(t *testing.T) {
	var sessions models.SessionStore
	conn := dialTestServer(t, &sessions, featureflag.New(nil))

	msg, err := NewMsg(MsgTypeViewportState, 1, overheadState())
	require.NoError(t, err)
	require.NoError(t, Codec.Send(conn, msg))

	var res Msg
	require.NoError(t, Codec.Receive(conn, &res))
	require.Equal(t, MsgTypeCovering, res.Type)
	require.Equal(t, uint64(1), res.Seq)

	var covering Covering
	require.NoError(t, res.DataTo(&covering))
	require.Len(t, covering.Tiles, 16)

	for _, id := range covering.Tiles {
		require.Equal(t, 2, id.Z)
		require.Equal(t, 0, id.Wrap)
	}

	// The four tiles around the view center come first.
	for _, id := range covering.Tiles[:4] {
		require.True(t, id.X == 1 || id.X == 2)
		require.True(t, id.Y == 1 || id.Y == 2)
	}
}

func TestCoveringServicePing(t *testing.T) {
	var sessions models.SessionStore
	conn := dialTestServer(t, &sessions, featureflag.New(nil))

	msg, err := NewMsg(MsgTypePing, 42, nil)
	require.NoError(t, err)
	require.NoError(t, Codec.Send(conn, msg))

	var res Msg
	require.NoError(t, Codec.Receive(conn, &res))
	require.Equal(t, MsgTypePong, res.Type)
	require.Equal(t, uint64(42), res.Seq)
}

func TestCoveringServiceUnknownType(t *testing.T) {
	var sessions models.SessionStore
	conn := dialTestServer(t, &sessions, featureflag.New(nil))

	require.NoError(t, Codec.Send(conn, Msg{Type: "teleport", Seq: 3}))

	var res Msg
	require.NoError(t, Codec.Receive(conn, &res))
	require.Equal(t, MsgTypeError, res.Type)
	require.Equal(t, uint64(3), res.Seq)

	var errData ErrorData
	require.NoError(t, res.DataTo(&errData))
	require.Equal(t, ErrCodeUnknownType, errData.Code)

	// The connection survives an unknown message.
	ping, err := NewMsg(MsgTypePing, 4, nil)
	require.NoError(t, err)
	require.NoError(t, Codec.Send(conn, ping))
	require.NoError(t, Codec.Receive(conn, &res))
	require.Equal(t, MsgTypePong, res.Type)
}

func TestCoveringServiceBadPayload(t *testing.T) {
	var sessions models.SessionStore
	conn := dialTestServer(t, &sessions, featureflag.New(nil))

	require.NoError(t, Codec.Send(conn, Msg{
		Type: MsgTypeViewportState,
		Seq:  7,
		Data: []byte(`42`),
	}))

	var res Msg
	require.NoError(t, Codec.Receive(conn, &res))
	require.Equal(t, MsgTypeError, res.Type)
	require.Equal(t, uint64(7), res.Seq)

	var errData ErrorData
	require.NoError(t, res.DataTo(&errData))
	require.Equal(t, ErrCodeBadRequest, errData.Code)

	ping, err := NewMsg(MsgTypePing, 8, nil)
	require.NoError(t, err)
	require.NoError(t, Codec.Send(conn, ping))
	require.NoError(t, Codec.Receive(conn, &res))
	require.Equal(t, MsgTypePong, res.Type)
}

func TestCoveringServiceTracksSessions(t *testing.T) {
	var sessions models.SessionStore
	conn := dialTestServer(t, &sessions, featureflag.New(nil))

	msg, err := NewMsg(MsgTypeViewportState, 1, overheadState())
	require.NoError(t, err)
	require.NoError(t, Codec.Send(conn, msg))

	var res Msg
	require.NoError(t, Codec.Receive(conn, &res))
	require.Equal(t, 1, sessions.Len())

	conn.Close()
	require.Eventually(t, func() bool {
		return sessions.Len() == 0
	}, time.Second*5, time.Millisecond*10)
}

func TestCoveringServiceGlobeFlagFallsBackToMercator(t *testing.T) {
	var sessions models.SessionStore
	conn := dialTestServer(t, &sessions,
		featureflag.New([]string{string(featureflag.FlagDisableGlobeProjection)}))

	state := overheadState()
	state.Projection = ProjectionGlobe

	msg, err := NewMsg(MsgTypeViewportState, 1, state)
	require.NoError(t, err)
	require.NoError(t, Codec.Send(conn, msg))

	// The globe strategy would cull the planar test frustum differently; with
	// the flag set the mercator strategy answers as usual.
	var res Msg
	require.NoError(t, Codec.Receive(conn, &res))
	require.Equal(t, MsgTypeCovering, res.Type)

	var covering Covering
	require.NoError(t, res.DataTo(&covering))
	require.Len(t, covering.Tiles, 16)
}
