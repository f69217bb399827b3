package geospatial

import "math"

const (
	// MinLatitude and MaxLatitude bound the UTM/USNG domain.
	MinLatitude = -80.0
	MaxLatitude = 84.0

	zoneWidth  = 6.0
	bandHeight = 8.0
)

// bandLetters are the 8° latitude bands from -80° north, skipping I and O.
const bandLetters = "CDEFGHJKLMNPQRSTUVWX"

// NoBand is returned by LatitudeBand outside the UTM latitude limits.
const NoBand byte = 'Z'

// NormalizeLongitude maps any longitude into [-180, 180).
func NormalizeLongitude(lon float64) float64 {
	l := math.Mod(lon+180, 360)
	if l < 0 {
		l += 360
	}
	return l - 180
}

// ZoneNumber returns the UTM zone (1-60) for a point, applying the Norway and
// Svalbard exceptions. ok is false when lon is outside [-180, 360] or lat is
// outside [-80, 84].
func ZoneNumber(lat, lon float64) (zone int, ok bool) {
	if lon > 360 || lon < -180 || lat > MaxLatitude || lat < MinLatitude {
		return 0, false
	}

	l := NormalizeLongitude(lon)
	zone = int(math.Floor((l+180)/zoneWidth)) + 1
	if zone > 60 {
		zone = 60
	}

	// West coast of Norway
	if lat >= 56 && lat < 64 && l >= 3 && l < 12 {
		zone = 32
	}

	// Svalbard
	if lat >= 72 && lat < 84 {
		switch {
		case l >= 0 && l < 9:
			zone = 31
		case l >= 9 && l < 21:
			zone = 33
		case l >= 21 && l < 33:
			zone = 35
		case l >= 33 && l < 42:
			zone = 37
		}
	}
	return zone, true
}

// LatitudeBand returns the grid zone designator letter for a latitude, C through X.
// The X band is 12° high and includes 84°. NoBand is returned outside [-80, 84].
func LatitudeBand(lat float64) byte {
	if lat > MaxLatitude || lat < MinLatitude || math.IsNaN(lat) {
		return NoBand
	}
	i := int(math.Floor((lat - MinLatitude) / bandHeight))
	if i >= len(bandLetters) {
		i = len(bandLetters) - 1
	}
	return bandLetters[i]
}

// CentralMeridian returns the longitude of the central meridian of a zone.
func CentralMeridian(zone int) float64 {
	return float64(zone-1)*zoneWidth - 180 + zoneWidth/2
}
