// Package terrain exposes per-tile elevation ranges to the covering engine.
package terrain

import (
	"sync"

	"github.com/mimirmaps/tilecover/tile"
)

// MinMax is a tile's elevation range. Either bound may be missing when the
// underlying data has not been sampled yet; consumers substitute their own
// fallback for missing bounds.
type MinMax struct {
	Min    float64
	Max    float64
	HasMin bool
	HasMax bool
}

// ElevationProvider looks up the elevation range of a tile. Implementations
// must be O(1) and non-blocking: a miss returns zero-value MinMax instead of
// stalling the caller's frame.
type ElevationProvider interface {
	TileMinMax(addr tile.Address) MinMax
}

type key struct {
	z int
	x int
	y int
}

// MemStore is an in-memory ElevationProvider keyed by canonical tile
// coordinates. Wrap is ignored: every world copy shares the same terrain.
type MemStore struct {
	mutex  sync.RWMutex
	ranges map[key]MinMax
}

func NewMemStore() *MemStore {
	return &MemStore{ranges: make(map[key]MinMax)}
}

func (s *MemStore) Set(addr tile.Address, min, max float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ranges[key{addr.Z, addr.X, addr.Y}] = MinMax{
		Min:    min,
		Max:    max,
		HasMin: true,
		HasMax: true,
	}
}

func (s *MemStore) TileMinMax(addr tile.Address) MinMax {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.ranges[key{addr.Z, addr.X, addr.Y}]
}

func (s *MemStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.ranges)
}
