package websocket

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/mimirmaps/tilecover/cover"
	"github.com/mimirmaps/tilecover/featureflag"
	"github.com/mimirmaps/tilecover/geom"
	"github.com/mimirmaps/tilecover/models"
	"github.com/mimirmaps/tilecover/terrain"
	"github.com/mimirmaps/tilecover/tile"
	"github.com/mimirmaps/tilecover/transform"
	"golang.org/x/net/websocket"
)

const (
	ProjectionMercator = "mercator"
	ProjectionGlobe    = "globe"
)

// ViewportState is a viewer's camera frame. CameraPos and Center are in
// normalized mercator coordinates plus elevation for both projections.
// FrustumPoints and ClipPlane are in the projection's own space; globe
// viewers must supply both (the frustum fallback built from the camera is
// planar). ClipPlane is (nx, ny, nz, d).
type ViewportState struct {
	Projection    string           `json:"projection,omitempty"`
	Camera        transform.Camera `json:"camera"`
	CameraPos     [3]float64       `json:"camera_pos"`
	Center        [3]float64       `json:"center"`
	FrustumPoints *[8][3]float64   `json:"frustum_points,omitempty"`
	ClipPlane     *[4]float64      `json:"clip_plane,omitempty"`
	Aspect        float64          `json:"aspect,omitempty"`
	Near          float64          `json:"near,omitempty"`
	Far           float64          `json:"far,omitempty"`
	Options       CoveringOptions  `json:"options"`
}

// CoveringOptions mirrors cover.Config on the wire. A nil MaxZoom defers to
// the camera's max zoom.
type CoveringOptions struct {
	MinZoom           int     `json:"min_zoom"`
	MaxZoom           *int    `json:"max_zoom,omitempty"`
	TileSize          float64 `json:"tile_size"`
	RoundZoom         bool    `json:"round_zoom"`
	ReparseOverscaled bool    `json:"reparse_overscaled"`
	Terrain           bool    `json:"terrain"`
}

// Covering is the response payload: tile identifiers ordered nearest-first,
// the order the consumer should fetch and draw them in.
type Covering struct {
	Tiles []tile.ID `json:"tiles"`
}

// CoveringHandler computes coverings for one connected viewer.
type CoveringHandler struct {
	// The time a viewer is idle before being disconnected.
	ClientIdleTimeout time.Duration

	// The store that contains all connected viewer sessions.
	Sessions *models.SessionStore

	FeatureFlags featureflag.FeatureFlag

	// Optional server-side elevation source used when a viewer requests
	// terrain-aware LOD.
	Terrain terrain.ElevationProvider

	conn    *websocket.Conn
	session *models.Session
}

func (h *CoveringHandler) HandleConnect(conn *websocket.Conn) {
	h.conn = conn
	h.session = models.NewSession()
	h.Sessions.Add(h.session)
}

func (h *CoveringHandler) HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error {
	pong, err := NewMsg(MsgTypePong, msg.Seq, nil)
	if err != nil {
		return err
	}
	respond.Send(pong)
	return nil
}

func (h *CoveringHandler) HandleViewportState(ctx context.Context, respond ResponseSender, msg Msg) error {
	var state ViewportState
	if err := msg.DataTo(&state); err != nil {
		logs.WithTag("session_id", h.session.ID).
			WithTag("seq", msg.Seq).
			Debug(err)
		return h.respondError(respond, msg.Seq, ErrCodeBadRequest)
	}

	projection := state.Projection
	if projection == "" {
		projection = ProjectionMercator
	}
	if projection != ProjectionMercator && projection != ProjectionGlobe {
		return h.respondError(respond, msg.Seq, ErrCodeBadRequest)
	}
	if h.FeatureFlags.IsSet(featureflag.FlagDisableGlobeProjection) {
		projection = ProjectionMercator
	}

	vp, cfg := h.buildRequest(state, projection)
	ids := cover.NewCoverer(strategyFor(projection)).Covering(vp, cfg)

	h.session.TouchFrame(msg.Seq, projection)

	response, err := NewMsg(MsgTypeCovering, msg.Seq, Covering{Tiles: ids})
	if err != nil {
		return err
	}
	respond.Send(response)
	return nil
}

func (h *CoveringHandler) HandleDisconnect(err error) {
	if h.session != nil {
		h.Sessions.Remove(h.session.ID)
	}
}

func (h *CoveringHandler) IdleTimeout() time.Duration {
	return h.ClientIdleTimeout
}

func (h *CoveringHandler) Close() {
}

// Session returns the viewer session, nil before the connection is
// established.
func (h *CoveringHandler) Session() *models.Session {
	return h.session
}

func (h *CoveringHandler) buildRequest(state ViewportState, projection string) (cover.Viewpoint, cover.Config) {
	cfg := cover.NewConfig()
	cfg.MinZoom = state.Options.MinZoom
	if state.Options.MaxZoom != nil {
		cfg.MaxZoom = *state.Options.MaxZoom
	}
	if state.Options.TileSize > 0 {
		cfg.TileSize = state.Options.TileSize
	}
	cfg.RoundZoom = state.Options.RoundZoom
	cfg.ReparseOverscaled = state.Options.ReparseOverscaled
	if state.Options.Terrain && h.Terrain != nil &&
		!h.FeatureFlags.IsSet(featureflag.FlagDisableTerrainLOD) {
		cfg.Terrain = h.Terrain
	}

	cam := state.Camera
	if h.FeatureFlags.IsSet(featureflag.FlagDisableWorldCopies) {
		cam.RenderWorldCopies = false
	}
	if projection == ProjectionGlobe {
		// The globe renders a single world.
		cam.RenderWorldCopies = false
	}

	cameraPos := geom.NewVec3(state.CameraPos[0], state.CameraPos[1], state.CameraPos[2])

	var frustum geom.Frustum
	if state.FrustumPoints != nil {
		var points [8]geom.Vec3
		inside := geom.Vec3{}
		for i, p := range state.FrustumPoints {
			points[i] = geom.NewVec3(p[0], p[1], p[2])
			inside = geom.Add(inside, points[i])
		}
		frustum = geom.NewFrustumFromPoints(points, geom.Mul(inside, 1.0/8))
	} else {
		aspect, near, far := state.Aspect, state.Near, state.Far
		if aspect == 0 {
			aspect = 1
		}
		if far == 0 {
			near, far = 0.01, 10
		}
		frustum = cam.Frustum(cameraPos, aspect, near, far)
	}

	var clipPlane *geom.Plane
	if state.ClipPlane != nil {
		plane := geom.NewPlane(
			geom.NewVec3(state.ClipPlane[0], state.ClipPlane[1], state.ClipPlane[2]),
			state.ClipPlane[3],
		)
		clipPlane = &plane
	}

	return cover.Viewpoint{
		Camera:    cam,
		Frustum:   frustum,
		ClipPlane: clipPlane,
		CameraPos: cameraPos,
		Center:    geom.NewVec3(state.Center[0], state.Center[1], state.Center[2]),
	}, cfg
}

// respondError answers a malformed message without tearing the connection
// down.
func (h *CoveringHandler) respondError(respond ResponseSender, seq uint64, code string) error {
	msg, err := NewMsg(MsgTypeError, seq, ErrorData{Code: code})
	if err != nil {
		return err
	}
	respond.Send(msg)
	return nil
}

func strategyFor(projection string) cover.Strategy {
	if projection == ProjectionGlobe {
		return cover.GlobeStrategy{}
	}
	return cover.MercatorStrategy{}
}
