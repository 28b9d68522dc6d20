// Package geo contains pure geospatial computation: great-circle distance,
// bounding boxes used as coarse pre-filters, and zone containment.
package geo

import (
	"fmt"
	"math"

	"service-dispatch/internal/domain"
)

const earthRadiusKm = 6371.0

// kmPerDegreeLat is the approximate length of one degree of latitude.
const kmPerDegreeLat = 111.0

// DistanceKm returns the great-circle (haversine) distance in kilometres
// between two points specified in decimal degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Distance returns the haversine distance between two points.
func Distance(a, b domain.Point) float64 {
	return DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

// WithinRadius reports whether two points lie within radiusKm of each other.
func WithinRadius(a, b domain.Point, radiusKm float64) bool {
	return Distance(a, b) <= radiusKm
}

// Box is a rectangular lat/lon envelope.
type Box struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// Contains reports whether the point falls inside the box.
func (b Box) Contains(p domain.Point) bool {
	return p.Lat >= b.LatMin && p.Lat <= b.LatMax &&
		p.Lon >= b.LonMin && p.Lon <= b.LonMax
}

// BoundingBox returns an approximate rectangular envelope around a circle of
// radiusKm centred on the given point. The box may include points outside the
// circle near its corners but never excludes a point inside the circle: the
// longitude span is scaled by the cosine of the box edge closest to a pole,
// which is the widest the circle can get. Used purely as a coarse pre-filter
// before an exact distance check.
func BoundingBox(center domain.Point, radiusKm float64) Box {
	if radiusKm < 0 {
		radiusKm = 0
	}

	latDelta := radiusKm / kmPerDegreeLat
	latMin := math.Max(center.Lat-latDelta, -90)
	latMax := math.Min(center.Lat+latDelta, 90)

	// Longitude degrees shrink towards the poles, so size the span at the
	// box edge with the largest |lat|.
	edgeLat := math.Max(math.Abs(latMin), math.Abs(latMax))
	cosEdge := math.Cos(degreesToRadians(edgeLat))

	if cosEdge <= 1e-6 {
		// The circle touches a pole; every longitude is inside.
		return Box{LatMin: latMin, LatMax: latMax, LonMin: -180, LonMax: 180}
	}

	lonDelta := radiusKm / (kmPerDegreeLat * cosEdge)
	lonMin := math.Max(center.Lon-lonDelta, -180)
	lonMax := math.Min(center.Lon+lonDelta, 180)

	return Box{LatMin: latMin, LatMax: latMax, LonMin: lonMin, LonMax: lonMax}
}

// FormatDistance renders a distance as a human string: metres below one
// kilometre, two-decimal kilometres otherwise.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%.0f m", km*1000)
	}
	return fmt.Sprintf("%.2f km", km)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
