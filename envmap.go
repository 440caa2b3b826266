package hdrpeak

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LatLong returns the latitude and longitude in radians of pixel c in a
// width x height latitude-longitude environment map.
//
// Pixel (0, 0) has latitude +pi/2 and longitude +pi, pixel (width-1,
// height-1) has latitude -pi/2 and longitude -pi.
func LatLong(c Coord, width, height int) (latitude, longitude float32) {
	if height > 1 {
		latitude = -math32.Pi * (float32(c.Y)/float32(height-1) - 0.5)
	}
	if width > 1 {
		longitude = -2 * math32.Pi * (float32(c.X)/float32(width-1) - 0.5)
	}
	return latitude, longitude
}

// Direction returns the unit world direction of pixel c in a width x height
// latitude-longitude environment map. Latitude 0, longitude 0 is +Z,
// longitude pi/2 is +X and latitude pi/2 is +Y.
func Direction(c Coord, width, height int) mgl32.Vec3 {
	lat, lon := LatLong(c, width, height)
	cosLat := math32.Cos(lat)
	return mgl32.Vec3{
		math32.Sin(lon) * cosLat,
		math32.Sin(lat),
		math32.Cos(lon) * cosLat,
	}
}
