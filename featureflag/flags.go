package featureflag

type Flag string

const (
	// Forces the mercator strategy even when a viewer asks for the globe.
	FlagDisableGlobeProjection Flag = "DISABLE_GLOBE_PROJECTION"

	// Ignores terrain elevation ranges during tile selection.
	FlagDisableTerrainLOD Flag = "DISABLE_TERRAIN_LOD"

	// Restricts coverings to the primary world copy.
	FlagDisableWorldCopies Flag = "DISABLE_WORLD_COPIES"
)
