// Package transform carries the camera state consumed by the covering
// engine and the projection helpers used to derive engine inputs from it.
package transform

import (
	"math"

	"github.com/mimirmaps/tilecover/geom"
)

// Padding is the screen padding in fractions of the viewport height. Only
// the top padding influences tile selection: it shifts the horizon into
// view, which calls for per-tile LOD.
type Padding struct {
	Top float64 `json:"top"`
}

// Camera is the per-frame camera state. All zooms are in slippy-map zoom
// levels; Pitch is in degrees, FOV is the vertical field of view in radians.
// Elevation is the terrain elevation under the view center, in normalized
// map units.
type Camera struct {
	Zoom              float64 `json:"zoom"`
	Pitch             float64 `json:"pitch"`
	Bearing           float64 `json:"bearing"`
	FOV               float64 `json:"fov"`
	MaxZoom           int     `json:"max_zoom"`
	TileSize          float64 `json:"tile_size"`
	Elevation         float64 `json:"elevation"`
	RenderWorldCopies bool    `json:"render_world_copies"`
	PitchBehavior     float64 `json:"pitch_behavior"`
	Padding           Padding `json:"padding"`
}

// DesiredZoomLevel seeds the screen-wide nominal zoom: the camera zoom
// adjusted for the ratio between the camera's tile size and the requested
// one, rounded or floored per the covering options.
func (c Camera) DesiredZoomLevel(tileSize float64, roundZoom bool) int {
	z := c.Zoom
	if tileSize > 0 && c.TileSize > 0 {
		z += math.Log2(c.TileSize / tileSize)
	}
	if roundZoom {
		return int(math.Round(z))
	}
	return int(math.Floor(z))
}

// Frustum builds the camera's view volume in normalized map space. The
// camera sits at eye, pitched away from straight down and rotated by the
// bearing; aspect is width over height, near and far are view distances in
// normalized units.
func (c Camera) Frustum(eye geom.Vec3, aspect, near, far float64) geom.Frustum {
	pitch := c.Pitch * math.Pi / 180
	bearing := c.Bearing * math.Pi / 180

	// Straight down is -Z; pitching tips the view toward the top of the
	// screen, which is -Y in tile coordinates.
	forward := geom.Vec3{
		X: math.Sin(pitch) * math.Sin(bearing),
		Y: -math.Sin(pitch) * math.Cos(bearing),
		Z: -math.Cos(pitch),
	}
	right := geom.Vec3{X: math.Cos(bearing), Y: math.Sin(bearing), Z: 0}
	up := geom.Cross(right, forward)

	tanHalf := math.Tan(c.FOV / 2)
	nearHalfH := tanHalf * near
	nearHalfW := nearHalfH * aspect
	farHalfH := tanHalf * far
	farHalfW := farHalfH * aspect

	nearCenter := geom.Add(eye, geom.Mul(forward, near))
	farCenter := geom.Add(eye, geom.Mul(forward, far))

	corner := func(center geom.Vec3, halfW, halfH, sx, sy float64) geom.Vec3 {
		return geom.Add(center, geom.Add(geom.Mul(right, sx*halfW), geom.Mul(up, sy*halfH)))
	}

	points := [8]geom.Vec3{
		corner(nearCenter, nearHalfW, nearHalfH, -1, 1),
		corner(nearCenter, nearHalfW, nearHalfH, 1, 1),
		corner(nearCenter, nearHalfW, nearHalfH, -1, -1),
		corner(nearCenter, nearHalfW, nearHalfH, 1, -1),
		corner(farCenter, farHalfW, farHalfH, -1, 1),
		corner(farCenter, farHalfW, farHalfH, 1, 1),
		corner(farCenter, farHalfW, farHalfH, -1, -1),
		corner(farCenter, farHalfW, farHalfH, 1, -1),
	}

	inside := geom.Add(eye, geom.Mul(forward, (near+far)/2))
	return geom.NewFrustumFromPoints(points, inside)
}
