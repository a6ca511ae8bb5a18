package tile

import (
	"fmt"

	"github.com/paulmach/orb/maptile"
)

// Address identifies a quadtree node: canonical zoom, column, row, and the
// world copy the node belongs to. Wrap 0 is the primary copy; negative wraps
// are copies west of the antimeridian, positive wraps east of it.
type Address struct {
	Z    int
	X    int
	Y    int
	Wrap int
}

func NewAddress(z, x, y, wrap int) Address {
	return Address{Z: z, X: x, Y: y, Wrap: wrap}
}

// Children returns the four quadtree children, inheriting the wrap.
func (a Address) Children() [4]Address {
	var children [4]Address
	for i := 0; i < 4; i++ {
		children[i] = Address{
			Z:    a.Z + 1,
			X:    a.X*2 + i%2,
			Y:    a.Y*2 + i/2,
			Wrap: a.Wrap,
		}
	}
	return children
}

// Extent returns the tile footprint in normalized mercator coordinates of
// the primary world copy, both in [0, 1].
func (a Address) Extent() (minX, minY, maxX, maxY float64) {
	n := float64(uint64(1) << uint(a.Z))
	return float64(a.X) / n, float64(a.Y) / n, float64(a.X+1) / n, float64(a.Y+1) / n
}

func (a Address) String() string {
	return fmt.Sprintf("%d/%d/%d w%d", a.Z, a.X, a.Y, a.Wrap)
}

// ID is a renderable tile identifier: the canonical address plus the zoom at
// which the tile content is rendered. OverscaledZ exceeds Z when a tile at
// the zoom cap is reused for deeper levels.
type ID struct {
	OverscaledZ int `json:"overscaled_z"`
	Wrap        int `json:"wrap"`
	Z           int `json:"z"`
	X           int `json:"x"`
	Y           int `json:"y"`
}

func NewID(overscaledZ int, addr Address) ID {
	return ID{
		OverscaledZ: overscaledZ,
		Wrap:        addr.Wrap,
		Z:           addr.Z,
		X:           addr.X,
		Y:           addr.Y,
	}
}

func (id ID) Address() Address {
	return Address{Z: id.Z, X: id.X, Y: id.Y, Wrap: id.Wrap}
}

// Maptile returns the canonical tile as an orb maptile, for handing over to
// fetch pipelines built on orb.
func (id ID) Maptile() maptile.Tile {
	return maptile.New(uint32(id.X), uint32(id.Y), maptile.Zoom(id.Z))
}

func (id ID) String() string {
	if id.OverscaledZ != id.Z {
		return fmt.Sprintf("%d/%d/%d w%d @%d", id.Z, id.X, id.Y, id.Wrap, id.OverscaledZ)
	}
	return fmt.Sprintf("%d/%d/%d w%d", id.Z, id.X, id.Y, id.Wrap)
}
