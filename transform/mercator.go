package transform

import (
	"math"

	"github.com/paulmach/orb"
)

// Web mercator is undefined beyond arctan(sinh(pi)).
const maxMercatorLat = 85.05112877980659

// Mercator projects a lon/lat point to normalized web-mercator coordinates,
// both axes in [0, 1] with y growing southward.
func Mercator(p orb.Point) (x, y float64) {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, p.Y()))

	x = (p.X() + 180) / 360
	latRad := lat * math.Pi / 180
	y = 0.5 - math.Log(math.Tan(math.Pi/4+latRad/2))/(2*math.Pi)
	return x, y
}

// Unmercator is the inverse of Mercator.
func Unmercator(x, y float64) orb.Point {
	lon := x*360 - 180
	latRad := 2*math.Atan(math.Exp((0.5-y)*2*math.Pi)) - math.Pi/2
	return orb.Point{lon, latRad * 180 / math.Pi}
}
