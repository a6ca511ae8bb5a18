package terrain

import (
	"testing"

	"github.com/mimirmaps/tilecover/tile"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	store := NewMemStore()

	t.Run("miss returns missing bounds", func(t *testing.T) {
		mm := store.TileMinMax(tile.NewAddress(4, 2, 3, 0))
		require.False(t, mm.HasMin)
		require.False(t, mm.HasMax)
	})

	t.Run("hit ignores wrap", func(t *testing.T) {
		store.Set(tile.NewAddress(4, 2, 3, 0), -12, 840)

		mm := store.TileMinMax(tile.NewAddress(4, 2, 3, -2))
		require.True(t, mm.HasMin)
		require.True(t, mm.HasMax)
		require.Equal(t, float64(-12), mm.Min)
		require.Equal(t, float64(840), mm.Max)
		require.Equal(t, 1, store.Len())
	})
}
