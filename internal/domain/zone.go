package domain

// DeliveryZone is a named polygonal service area. An active zone may carry a
// discovery-radius override for drivers located inside it.
type DeliveryZone struct {
	ID       int64
	Name     string
	Active   bool
	RadiusKm *float64
	Polygon  []Point
}

// RadiusConfig is the active discovery-radius configuration consulted when
// listing pickup-ready orders near a driver. An explicitly inactive config
// disables radius filtering entirely.
type RadiusConfig struct {
	RadiusKm float64
	Active   bool
}
