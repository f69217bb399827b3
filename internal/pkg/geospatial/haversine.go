package geospatial

import (
	"math"

	"github.com/samirrijal/usngrid/internal/core/domain"
)

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// BoundingBox returns a viewport around a point with the given radius in meters,
// clamped to valid latitudes.
func BoundingBox(lat, lon, radiusMeters float64) domain.BoundingBox {
	latDelta := radiusMeters / 111320.0
	lonDelta := 180.0
	if c := math.Cos(toRad(lat)); c > 1e-9 {
		lonDelta = math.Min(radiusMeters/(111320.0*c), 180)
	}

	return domain.BoundingBox{
		South: math.Max(lat-latDelta, -90),
		North: math.Min(lat+latDelta, 90),
		West:  math.Max(lon-lonDelta, -180),
		East:  math.Min(lon+lonDelta, 180),
	}
}

func toRad(deg float64) float64 {
	return deg * deg2rad
}
