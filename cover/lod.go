package cover

import (
	"math"

	"github.com/mimirmaps/tilecover/transform"
)

// tileTargetZoom computes a single tile's target zoom from its distance to
// the camera. The nominal zoom holds at the view center; tiles seen at a
// steeper tilt or from farther away earn a coarser target. distance2D and
// verticalDelta locate the tile relative to the camera in the plane and in
// elevation; distanceToCenter3D is the camera's distance to the view center,
// constant per frame.
func tileTargetZoom(cam transform.Camera, cfg Config, distance2D, verticalDelta, distanceToCenter3D float64) float64 {
	distanceToTile3D := math.Hypot(distance2D, verticalDelta)
	if distanceToTile3D == 0 {
		return math.Inf(1)
	}

	tilt := math.Atan2(distance2D, math.Abs(verticalDelta))

	z := cam.Zoom
	z += cam.PitchBehavior * math.Log2(math.Cos(tilt)) / 2
	z += math.Log2((cam.TileSize / cfg.TileSize) * (distanceToCenter3D / distanceToTile3D) / math.Cos(cam.FOV/2))

	if cfg.RoundZoom {
		return math.Round(z)
	}
	return math.Floor(z)
}
