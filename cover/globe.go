package cover

import (
	"math"

	"github.com/mimirmaps/tilecover/geom"
	"github.com/mimirmaps/tilecover/tile"
	"github.com/mimirmaps/tilecover/transform"
)

// GlobeStrategy supplies spherical geometry. Globe space is the unit sphere
// centered at the origin: X toward lon 90, Z toward lon 0, Y toward the
// south pole (matching the southward mercator y axis). Elevations are in
// units of the sphere radius.
type GlobeStrategy struct{}

// TileAABB bounds the tile's surface patch by sampling a 3x3 grid of points
// on the sphere and expanding by the elevation range. Sampling the edge
// midpoints keeps the box conservative for patches that bulge between
// corners.
func (GlobeStrategy) TileAABB(addr tile.Address, elevationFallback float64, cfg Config) geom.AABB {
	minX, minY, maxX, maxY := addr.Extent()
	minElevation, maxElevation := tileElevationRange(addr, elevationFallback, cfg)

	min := geom.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max := geom.Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}

	for i := 0; i <= 2; i++ {
		for j := 0; j <= 2; j++ {
			mercX := minX + float64(i)*(maxX-minX)/2
			mercY := minY + float64(j)*(maxY-minY)/2

			for _, radius := range [2]float64{1 + minElevation, 1 + maxElevation} {
				p := geom.Mul(globeSurface(mercX, mercY), radius)
				min.X = math.Min(min.X, p.X)
				min.Y = math.Min(min.Y, p.Y)
				min.Z = math.Min(min.Z, p.Z)
				max.X = math.Max(max.X, p.X)
				max.Y = math.Max(max.Y, p.Y)
				max.Z = math.Max(max.Z, p.Z)
			}
		}
	}

	return geom.NewAABB(min, max)
}

// DistanceToTile2D measures in the mercator plane with horizontal
// wrap-around, so a tile just west of the antimeridian is near a camera just
// east of it.
func (GlobeStrategy) DistanceToTile2D(camX, camY float64, addr tile.Address, _ geom.AABB) float64 {
	minX, minY, maxX, maxY := addr.Extent()

	dx := math.Inf(1)
	for _, shift := range [3]float64{-1, 0, 1} {
		dx = math.Min(dx, intervalDistance(camX+shift, minX, maxX))
	}
	dy := intervalDistance(camY, minY, maxY)
	return math.Hypot(dx, dy)
}

// Wrap recomputes the node's world copy so the tile's horizontal center
// lands within half a world of the view center. The globe renders a single
// world, so the recomputation is a pure function of tile and center: within
// the one seeded root no tile is duplicated or skipped across the seam.
func (GlobeStrategy) Wrap(center geom.Vec3, addr tile.Address, parentWrap int) int {
	n := float64(uint64(1) << uint(addr.Z))
	tileCenterX := (float64(addr.X) + 0.5) / n

	recomputed := int(math.Round(center.X - tileCenterX))
	if math.Abs(center.X-tileCenterX-float64(recomputed)) == 0.5 {
		// Exactly half a world away either way; keep the inherited copy.
		return parentWrap
	}
	return recomputed
}

// The globe's horizon always cuts the far side of the sphere out of view,
// and per-tile LOD is what keeps the visible limb from over-fetching.
func (GlobeStrategy) AllowsVariableZoom(_ transform.Camera, _ Config) bool {
	return true
}

// HorizonPlane returns the half-space of the unit sphere visible from the
// camera position: the plane through the horizon circle, keeping the cap
// facing the camera. Supplied to the engine as the clipping plane when
// rendering the globe.
func HorizonPlane(cameraPos geom.Vec3) geom.Plane {
	distance := cameraPos.Length()
	normal := geom.Normalized(cameraPos)
	// The horizon circle lies at distance 1/|c| from the sphere center.
	return geom.NewPlane(normal, -1/distance)
}

func globeSurface(mercX, mercY float64) geom.Vec3 {
	lon := (mercX - 0.5) * 2 * math.Pi
	lat := 2*math.Atan(math.Exp((0.5-mercY)*2*math.Pi)) - math.Pi/2

	return geom.Vec3{
		X: math.Cos(lat) * math.Sin(lon),
		Y: -math.Sin(lat),
		Z: math.Cos(lat) * math.Cos(lon),
	}
}

func intervalDistance(v, min, max float64) float64 {
	clamped := math.Max(math.Min(v, max), min)
	return math.Abs(clamped - v)
}
