package geom

import "math"

// Intersection is the tri-state result of a bounding volume test.
type Intersection int

const (
	IntersectionNone Intersection = iota
	IntersectionPartial
	IntersectionFull
)

// AABB is an axis-aligned box in normalized map space. The Z extent holds
// the elevation range of whatever the box bounds.
type AABB struct {
	Min Vec3
	Max Vec3
}

func NewAABB(min Vec3, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

func (b AABB) Center() Vec3 {
	return Mul(Add(b.Min, b.Max), 0.5)
}

// Corner returns the i-th corner of the box, i in [0, 8).
func (b AABB) Corner(i int) Vec3 {
	v := Vec3{b.Min.X, b.Min.Y, b.Min.Z}
	if i&1 != 0 {
		v.X = b.Max.X
	}
	if i&2 != 0 {
		v.Y = b.Max.Y
	}
	if i&4 != 0 {
		v.Z = b.Max.Z
	}
	return v
}

// DistanceX returns the signed axis distance from point to the box interval
// on X, zero when the point is within the interval.
func (b AABB) DistanceX(x float64) float64 {
	pointOnAABB := math.Max(math.Min(b.Max.X, x), b.Min.X)
	return pointOnAABB - x
}

func (b AABB) DistanceY(y float64) float64 {
	pointOnAABB := math.Max(math.Min(b.Max.Y, y), b.Min.Y)
	return pointOnAABB - y
}

// DistanceXY returns the planar Euclidean distance from a point to the
// nearest point of the box, zero when the point is inside its footprint.
func (b AABB) DistanceXY(x, y float64) float64 {
	return math.Hypot(b.DistanceX(x), b.DistanceY(y))
}

// IntersectsPlane tests the box against the positive half-space of p.
func (b AABB) IntersectsPlane(p Plane) Intersection {
	inside := 0
	for i := 0; i < 8; i++ {
		if p.DistanceTo(b.Corner(i)) >= 0 {
			inside++
		}
	}
	switch inside {
	case 8:
		return IntersectionFull
	case 0:
		return IntersectionNone
	default:
		return IntersectionPartial
	}
}

// IntersectsFrustum tests the box against a frustum. Testing the box corners
// against every frustum plane alone yields false positives near the frustum
// edges, so the frustum points are additionally tested against the box
// extents per axis.
func (b AABB) IntersectsFrustum(f Frustum) Intersection {
	fullyInside := true

	for _, p := range f.Planes {
		inside := 0
		for i := 0; i < 8; i++ {
			if p.DistanceTo(b.Corner(i)) >= 0 {
				inside++
			}
		}
		if inside == 0 {
			return IntersectionNone
		}
		if inside != 8 {
			fullyInside = false
		}
	}

	if fullyInside {
		return IntersectionFull
	}

	for axis := 0; axis < 3; axis++ {
		boxMin := b.Min.X
		boxMax := b.Max.X
		switch axis {
		case 1:
			boxMin, boxMax = b.Min.Y, b.Max.Y
		case 2:
			boxMin, boxMax = b.Min.Z, b.Max.Z
		}

		pointsBelow := 0
		pointsAbove := 0
		for _, pt := range f.Points {
			c := pt.X
			switch axis {
			case 1:
				c = pt.Y
			case 2:
				c = pt.Z
			}
			if c < boxMin {
				pointsBelow++
			}
			if c > boxMax {
				pointsAbove++
			}
		}
		if pointsBelow == len(f.Points) || pointsAbove == len(f.Points) {
			return IntersectionNone
		}
	}

	return IntersectionPartial
}
