package domain

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid checks that the coordinates fall inside the ±90/±180 bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}
