// Package cover selects the minimal set of map tiles that covers a viewport
// at an appropriate resolution, for planar and globe projections.
package cover

import "github.com/mimirmaps/tilecover/geom"

// Classify combines the frustum test with an optional clipping-plane test
// into one visibility verdict for a tile box. The plane is an independent
// constraint (a globe horizon, typically): a box must pass both tests to
// count as fully visible, and failing either outright excludes it.
func Classify(frustum geom.Frustum, box geom.AABB, plane *geom.Plane) geom.Intersection {
	frustumTest := box.IntersectsFrustum(frustum)
	if plane == nil {
		return frustumTest
	}
	if frustumTest == geom.IntersectionNone {
		return geom.IntersectionNone
	}

	planeTest := box.IntersectsPlane(*plane)
	switch {
	case planeTest == geom.IntersectionNone:
		return geom.IntersectionNone
	case frustumTest == geom.IntersectionFull && planeTest == geom.IntersectionFull:
		return geom.IntersectionFull
	default:
		return geom.IntersectionPartial
	}
}
