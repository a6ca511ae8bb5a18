package cover

import (
	"github.com/mimirmaps/tilecover/geom"
	"github.com/mimirmaps/tilecover/tile"
	"github.com/mimirmaps/tilecover/transform"
)

// Pitch above which the far edge of the viewport is distant enough that a
// single screen-wide zoom level over-fetches.
const variableZoomPitch = 60.0

// MercatorStrategy supplies planar web-mercator geometry. Mercator space has
// no seam: world copies are plain horizontal translations, so wraps pass
// through unchanged.
type MercatorStrategy struct{}

func (MercatorStrategy) TileAABB(addr tile.Address, elevationFallback float64, cfg Config) geom.AABB {
	minX, minY, maxX, maxY := addr.Extent()
	wrapOffset := float64(addr.Wrap)

	minElevation, maxElevation := tileElevationRange(addr, elevationFallback, cfg)

	return geom.NewAABB(
		geom.Vec3{X: wrapOffset + minX, Y: minY, Z: minElevation},
		geom.Vec3{X: wrapOffset + maxX, Y: maxY, Z: maxElevation},
	)
}

func (MercatorStrategy) DistanceToTile2D(camX, camY float64, _ tile.Address, box geom.AABB) float64 {
	return box.DistanceXY(camX, camY)
}

func (MercatorStrategy) Wrap(_ geom.Vec3, _ tile.Address, parentWrap int) int {
	return parentWrap
}

func (MercatorStrategy) AllowsVariableZoom(cam transform.Camera, cfg Config) bool {
	return cam.Pitch > variableZoomPitch ||
		cam.Padding.Top >= 0.1 ||
		cfg.Terrain != nil
}

// tileElevationRange resolves a tile's elevation bounds from the configured
// terrain provider, falling back per missing bound. The lookup must not
// stall the frame; providers guarantee O(1) behavior.
func tileElevationRange(addr tile.Address, fallback float64, cfg Config) (min, max float64) {
	if cfg.Terrain == nil {
		return fallback, fallback
	}

	mm := cfg.Terrain.TileMinMax(addr)
	min, max = fallback, fallback
	if mm.HasMin {
		min = mm.Min
	}
	if mm.HasMax {
		max = mm.Max
	}
	return min, max
}
