package featureflag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatureFlag(t *testing.T) {
	f := New([]string{string(FlagDisableGlobeProjection)})

	require.True(t, f.IsSet(FlagDisableGlobeProjection))
	require.False(t, f.IsSet(FlagDisableTerrainLOD))

	t.Run("run if enabled", func(t *testing.T) {
		var ran bool
		f.IfSet(FlagDisableGlobeProjection, func() { ran = true })
		require.True(t, ran)

		ran = false
		f.IfSet(FlagDisableTerrainLOD, func() { ran = true })
		require.False(t, ran)
	})

	t.Run("run if disabled", func(t *testing.T) {
		var ran bool
		f.IfNotSet(FlagDisableGlobeProjection, func() { ran = true })
		require.False(t, ran)

		f.IfNotSet(FlagDisableWorldCopies, func() { ran = true })
		require.True(t, ran)
	})
}
