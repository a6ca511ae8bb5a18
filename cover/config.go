package cover

import (
	"github.com/mimirmaps/tilecover/geom"
	"github.com/mimirmaps/tilecover/terrain"
	"github.com/mimirmaps/tilecover/transform"
)

// Config bounds a single covering computation. The engine does not validate
// it: a malformed range (MinZoom above the reachable depth, for instance)
// yields an empty result rather than an error.
type Config struct {
	// The coarsest zoom a returned tile may have. Candidates below it are
	// dropped, never promoted.
	MinZoom int

	// The deepest zoom the traversal may reach. Negative defers to the
	// camera's max zoom.
	MaxZoom int

	// The tile size the consumer renders at, in pixels.
	TileSize float64

	// Round the per-tile target zoom instead of flooring it.
	RoundZoom bool

	// At the zoom cap, emit tiles overscaled to the per-tile target zoom so
	// a coarser tile can be re-rendered at deeper levels.
	ReparseOverscaled bool

	// Optional elevation source. When set, tile boxes carry real elevation
	// ranges and per-tile LOD is enabled.
	Terrain terrain.ElevationProvider
}

// NewConfig returns a Config with the MaxZoom sentinel set to follow the
// camera.
func NewConfig() Config {
	return Config{MaxZoom: -1, TileSize: 512}
}

func (c Config) effectiveMaxZoom(cam transform.Camera) int {
	if c.MaxZoom < 0 {
		return cam.MaxZoom
	}
	return c.MaxZoom
}

// Viewpoint is the per-frame view geometry handed to the engine. The
// frustum and clipping plane are opaque, immutable during traversal, and
// expressed in the strategy's projection space (mercator or globe).
// CameraPos and Center are always the camera's and the view center's
// positions in normalized mercator coordinates plus elevation, regardless
// of projection: planar distances drive LOD even on the globe.
type Viewpoint struct {
	Camera    transform.Camera
	Frustum   geom.Frustum
	ClipPlane *geom.Plane
	CameraPos geom.Vec3
	Center    geom.Vec3
}
