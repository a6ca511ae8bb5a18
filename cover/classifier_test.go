package cover

import (
	"testing"

	"github.com/mimirmaps/tilecover/geom"
	"github.com/stretchr/testify/require"
)

func TestClassifyWithoutPlane(t *testing.T) {
	frustum := geom.NewBoxFrustum(geom.Vec3{X: 0, Y: 0, Z: -1}, geom.Vec3{X: 1, Y: 1, Z: 1})

	inside := geom.NewAABB(geom.Vec3{X: 0.2, Y: 0.2, Z: 0}, geom.Vec3{X: 0.4, Y: 0.4, Z: 0})
	require.Equal(t, geom.IntersectionFull, Classify(frustum, inside, nil))

	straddling := geom.NewAABB(geom.Vec3{X: 0.8, Y: 0.8, Z: 0}, geom.Vec3{X: 1.4, Y: 1.4, Z: 0})
	require.Equal(t, geom.IntersectionPartial, Classify(frustum, straddling, nil))

	outside := geom.NewAABB(geom.Vec3{X: 3, Y: 3, Z: 0}, geom.Vec3{X: 4, Y: 4, Z: 0})
	require.Equal(t, geom.IntersectionNone, Classify(frustum, outside, nil))
}

func TestClassifyCombinesPlaneAndFrustum(t *testing.T) {
	frustum := geom.NewBoxFrustum(geom.Vec3{X: 0, Y: 0, Z: -1}, geom.Vec3{X: 1, Y: 1, Z: 1})
	inside := geom.NewAABB(geom.Vec3{X: 0.2, Y: 0.2, Z: 0}, geom.Vec3{X: 0.4, Y: 0.4, Z: 0})

	t.Run("full only when both tests are full", func(t *testing.T) {
		keepAll := geom.NewPlane(geom.Vec3{X: 0, Y: 0, Z: 1}, 10)
		require.Equal(t, geom.IntersectionFull, Classify(frustum, inside, &keepAll))
	})

	t.Run("none when the plane excludes the box", func(t *testing.T) {
		dropAll := geom.NewPlane(geom.Vec3{X: 0, Y: 0, Z: 1}, -10)
		require.Equal(t, geom.IntersectionNone, Classify(frustum, inside, &dropAll))
	})

	t.Run("none when the frustum excludes the box", func(t *testing.T) {
		keepAll := geom.NewPlane(geom.Vec3{X: 0, Y: 0, Z: 1}, 10)
		outside := geom.NewAABB(geom.Vec3{X: 3, Y: 3, Z: 0}, geom.Vec3{X: 4, Y: 4, Z: 0})
		require.Equal(t, geom.IntersectionNone, Classify(frustum, outside, &keepAll))
	})

	t.Run("partial plane demotes a full frustum verdict", func(t *testing.T) {
		// Cuts through the middle of the box footprint.
		halving := geom.NewPlane(geom.Vec3{X: 1, Y: 0, Z: 0}, -0.3)
		require.Equal(t, geom.IntersectionPartial, Classify(frustum, inside, &halving))
	})

	t.Run("partial frustum stays partial under a full plane", func(t *testing.T) {
		keepAll := geom.NewPlane(geom.Vec3{X: 0, Y: 0, Z: 1}, 10)
		straddling := geom.NewAABB(geom.Vec3{X: 0.8, Y: 0.8, Z: 0}, geom.Vec3{X: 1.4, Y: 1.4, Z: 0})
		require.Equal(t, geom.IntersectionPartial, Classify(frustum, straddling, &keepAll))
	})
}
