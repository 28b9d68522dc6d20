package geo

import "service-dispatch/internal/domain"

// ZoneForPoint returns the first active zone (in slice order) whose polygon
// contains the point, or nil when none match.
func ZoneForPoint(zones []domain.DeliveryZone, p domain.Point) *domain.DeliveryZone {
	for i := range zones {
		z := &zones[i]
		if !z.Active {
			continue
		}
		if pointInPolygon(p, z.Polygon) {
			return z
		}
	}
	return nil
}

// pointInPolygon implements the even-odd ray casting rule. A point on an edge
// may land on either side; zone boundaries are not treated as exact.
func pointInPolygon(p domain.Point, poly []domain.Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		vi, vj := poly[i], poly[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) &&
			p.Lon < (vj.Lon-vi.Lon)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lon {
			inside = !inside
		}
		j = i
	}
	return inside
}
