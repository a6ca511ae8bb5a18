package cover

import (
	"github.com/mimirmaps/tilecover/geom"
	"github.com/mimirmaps/tilecover/tile"
	"github.com/mimirmaps/tilecover/transform"
)

// Strategy supplies the projection-specific geometry the traversal engine
// needs at each quadtree node. Implementations must be stateless: the engine
// re-invokes them once per frame with no retained state in between.
type Strategy interface {
	// TileAABB builds the tile's bounding box in normalized map space. When
	// the config carries a terrain provider, the box's elevation range comes
	// from it, substituting the fallback for missing bounds.
	TileAABB(addr tile.Address, elevationFallback float64, cfg Config) geom.AABB

	// DistanceToTile2D returns the planar distance from the camera position
	// to the nearest point of the tile, zero when the camera is over it.
	DistanceToTile2D(camX, camY float64, addr tile.Address, box geom.AABB) float64

	// Wrap derives a node's world copy from its parent's. Projections
	// without an antimeridian seam return parentWrap unchanged; a projection
	// may recompute it per node as long as no tile is duplicated or skipped
	// by the reassignment.
	Wrap(center geom.Vec3, addr tile.Address, parentWrap int) int

	// AllowsVariableZoom reports whether per-tile LOD may differ from the
	// nominal zoom. Keeping it off at low pitch is a performance guard
	// against requesting excessive tiles.
	AllowsVariableZoom(cam transform.Camera, cfg Config) bool
}
