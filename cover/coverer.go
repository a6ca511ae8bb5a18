package cover

import (
	"math"
	"sort"

	"github.com/mimirmaps/tilecover/geom"
	"github.com/mimirmaps/tilecover/tile"
)

// Beyond three copies on each side the duplicated tiles cannot reach the
// viewport at any zoom, so seeding stops there.
const maxWorldCopies = 3

// traversalNode is the ephemeral stack entry of the quadtree descent.
// Created when pushed, discarded when popped; never shared across frames.
type traversalNode struct {
	addr tile.Address

	// Set once an ancestor tested fully inside the view: visibility checks
	// are skipped below it, AABB and LOD computation are not.
	fullyVisible bool
}

type resultEntry struct {
	id tile.ID

	// Squared planar distance from the view center at nominal scale. Used
	// only for the final ordering, never for LOD.
	distanceSq float64

	// 3D distance estimate from the camera to the tile.
	tileDistanceToCamera float64
}

// Coverer walks the tile quadtree for one projection strategy. It holds no
// per-frame state: Covering may be called once per rendered frame, or from
// several frames concurrently, without races.
type Coverer struct {
	Strategy Strategy
}

func NewCoverer(s Strategy) *Coverer {
	return &Coverer{Strategy: s}
}

// Covering returns the tiles that must be drawn to cover the viewport,
// ordered by ascending squared planar distance from the view center. An
// empty frustum intersection, or a MinZoom above the reachable depth, yields
// an empty result.
func (c *Coverer) Covering(vp Viewpoint, cfg Config) []tile.ID {
	cam := vp.Camera
	maxZoom := cfg.effectiveMaxZoom(cam)

	desiredZoom := cam.DesiredZoomLevel(cfg.TileSize, cfg.RoundZoom)
	nominalZoom := clampInt(desiredZoom, 0, maxZoom)

	variableZoom := c.Strategy.AllowsVariableZoom(cam, cfg)
	verticalDelta := vp.CameraPos.Z - vp.Center.Z
	distanceToCenter3D := vp.CameraPos.DistanceTo(vp.Center)

	// View center in tile units at the nominal zoom, for the ordering
	// distance.
	nominalScale := float64(uint64(1) << uint(nominalZoom))
	centerScaledX := vp.Center.X * nominalScale
	centerScaledY := vp.Center.Y * nominalScale

	stack := make([]traversalNode, 0, 4*(maxZoom+1))
	stack = append(stack, traversalNode{addr: tile.NewAddress(0, 0, 0, 0)})
	if cam.RenderWorldCopies {
		for wrap := 1; wrap <= maxWorldCopies; wrap++ {
			stack = append(stack,
				traversalNode{addr: tile.NewAddress(0, 0, 0, wrap)},
				traversalNode{addr: tile.NewAddress(0, 0, 0, -wrap)},
			)
		}
	}

	var results []resultEntry

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		box := c.Strategy.TileAABB(node.addr, cam.Elevation, cfg)

		if !node.fullyVisible {
			switch Classify(vp.Frustum, box, vp.ClipPlane) {
			case geom.IntersectionNone:
				continue
			case geom.IntersectionFull:
				node.fullyVisible = true
			}
		}

		distance2D := c.Strategy.DistanceToTile2D(vp.CameraPos.X, vp.CameraPos.Y, node.addr, box)

		// The raw target drives overscaling and may exceed the zoom cap;
		// the descent depth is capped.
		rawTargetZoom := math.Max(0, float64(desiredZoom))
		if variableZoom {
			rawTargetZoom = math.Max(0, tileTargetZoom(cam, cfg, distance2D, verticalDelta, distanceToCenter3D))
		}
		targetZoom := math.Min(rawTargetZoom, float64(maxZoom))

		node.addr.Wrap = c.Strategy.Wrap(vp.Center, node.addr, node.addr.Wrap)

		if float64(node.addr.Z) >= targetZoom {
			if node.addr.Z < cfg.MinZoom {
				continue
			}

			overscaledZoom := node.addr.Z
			if node.addr.Z == maxZoom && cfg.ReparseOverscaled && !math.IsInf(rawTargetZoom, 1) {
				overscaledZoom = maxInt(node.addr.Z, int(rawTargetZoom))
			}

			scale := math.Exp2(float64(nominalZoom - node.addr.Z))
			dx := centerScaledX - 0.5 - float64(node.addr.X)*scale
			dy := centerScaledY - 0.5 - float64(node.addr.Y)*scale

			results = append(results, resultEntry{
				id:                   tile.NewID(overscaledZoom, node.addr),
				distanceSq:           dx*dx + dy*dy,
				tileDistanceToCamera: math.Hypot(distance2D, verticalDelta),
			})
			continue
		}

		for _, child := range node.addr.Children() {
			stack = append(stack, traversalNode{addr: child, fullyVisible: node.fullyVisible})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].distanceSq < results[j].distanceSq
	})

	ids := make([]tile.ID, len(results))
	for i, entry := range results {
		ids[i] = entry.id
	}
	return ids
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
