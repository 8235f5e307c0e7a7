package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
)

// GeoPointToLocal projects point onto a local East-North plane centered at origin and returns its
// position in meters (X east, Y north). This is an approximation of a sphere by a plane; the closer
// the points, the better it is.
func GeoPointToLocal(origin, point *geo.Point) r3.Vector {
	corner := geo.NewPoint(origin.Lat(), point.Lng())
	// GreatCircleDistance is in kilometers.
	east := 1e3 * origin.GreatCircleDistance(corner)
	north := 1e3 * point.GreatCircleDistance(corner)
	if point.Lng() < origin.Lng() {
		east = -east
	}
	if point.Lat() < origin.Lat() {
		north = -north
	}
	return r3.Vector{X: east, Y: north}
}

// LocalToGeoPoint is the approximate inverse of GeoPointToLocal.
func LocalToGeoPoint(origin *geo.Point, local r3.Vector) *geo.Point {
	// Bearings in degrees clockwise from north; distances in kilometers.
	bearingEast, bearingNorth := 90., 0.
	if local.X < 0 {
		bearingEast = 270
	}
	if local.Y < 0 {
		bearingNorth = 180
	}
	east := origin.PointAtDistanceAndBearing(math.Abs(local.X)*1e-3, bearingEast)
	corner := geo.NewPoint(origin.Lat(), east.Lng())
	return corner.PointAtDistanceAndBearing(math.Abs(local.Y)*1e-3, bearingNorth)
}
