package geom

// Plane is the half-space boundary Normal·p + D = 0. Points with a
// non-negative signed distance are on the kept side.
type Plane struct {
	Normal Vec3
	D      float64
}

func NewPlane(normal Vec3, d float64) Plane {
	return Plane{Normal: normal, D: d}
}

// PlaneThrough builds the plane containing the three points, with the normal
// following the right-hand rule on (b-a, c-a).
func PlaneThrough(a, b, c Vec3) Plane {
	n := Normalized(Cross(Sub(b, a), Sub(c, a)))
	return Plane{Normal: n, D: -n.Dot(a)}
}

func (p Plane) DistanceTo(v Vec3) float64 {
	return p.Normal.Dot(v) + p.D
}

// Flipped returns the plane bounding the opposite half-space.
func (p Plane) Flipped() Plane {
	return Plane{Normal: Mul(p.Normal, -1), D: -p.D}
}

// Frustum is a camera view volume: six inward-facing planes plus the eight
// corner points they span. It is built once per frame by the caller and
// never mutated during traversal.
type Frustum struct {
	Planes [6]Plane
	Points [8]Vec3
}

// NewBoxFrustum builds a degenerate orthographic frustum covering the given
// box. Handy for tests and top-down viewports.
func NewBoxFrustum(min, max Vec3) Frustum {
	box := AABB{Min: min, Max: max}

	var f Frustum
	for i := 0; i < 8; i++ {
		f.Points[i] = box.Corner(i)
	}
	f.Planes = [6]Plane{
		{Normal: Vec3{1, 0, 0}, D: -min.X},
		{Normal: Vec3{-1, 0, 0}, D: max.X},
		{Normal: Vec3{0, 1, 0}, D: -min.Y},
		{Normal: Vec3{0, -1, 0}, D: max.Y},
		{Normal: Vec3{0, 0, 1}, D: -min.Z},
		{Normal: Vec3{0, 0, -1}, D: max.Z},
	}
	return f
}

// NewFrustumFromPoints builds a frustum from its eight corner points, given
// as near quad then far quad, each in the order top-left, top-right,
// bottom-left, bottom-right. Planes are oriented toward insidePoint.
func NewFrustumFromPoints(points [8]Vec3, insidePoint Vec3) Frustum {
	f := Frustum{Points: points}

	ntl, ntr, nbl, nbr := points[0], points[1], points[2], points[3]
	ftl, ftr, fbl, _ := points[4], points[5], points[6], points[7]

	f.Planes = [6]Plane{
		PlaneThrough(ntl, ntr, nbl), // near
		PlaneThrough(ftl, fbl, ftr), // far
		PlaneThrough(ntl, nbl, ftl), // left
		PlaneThrough(ntr, ftr, nbr), // right
		PlaneThrough(ntl, ftl, ntr), // top
		PlaneThrough(nbl, nbr, fbl), // bottom
	}
	for i, p := range f.Planes {
		if p.DistanceTo(insidePoint) < 0 {
			f.Planes[i] = p.Flipped()
		}
	}
	return f
}
