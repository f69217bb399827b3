package geospatial

import (
	"math"

	"github.com/samirrijal/usngrid/internal/core/domain"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi

	// K0 is the scale factor on the central meridian.
	K0 = 0.9996
	// FalseEasting is the easting of the central meridian (meters).
	FalseEasting = 500000.0
)

// Projection converts between geographic and UTM coordinates on one ellipsoid.
// Equations from USGS Professional Paper 1395 (Snyder, "Map Projections - A
// Working Manual", 1987). A Projection is immutable and safe for concurrent use.
type Projection struct {
	ellipsoid Ellipsoid

	a      float64 // equatorial radius
	e2     float64 // eccentricity squared
	ep2    float64 // second eccentricity squared
	e1     float64 // used by the footprint latitude series
	m1, m2 float64 // meridian arc coefficients
	m3, m4 float64
}

// NewProjection precomputes the series constants for an ellipsoid.
func NewProjection(e Ellipsoid) *Projection {
	e2 := e.EccSquared
	e4 := e2 * e2
	e6 := e4 * e2
	root := math.Sqrt(1 - e2)

	return &Projection{
		ellipsoid: e,
		a:         e.EquatorialRadius,
		e2:        e2,
		ep2:       e2 / (1 - e2),
		e1:        (1 - root) / (1 + root),
		m1:        1 - e2/4 - 3*e4/64 - 5*e6/256,
		m2:        3*e2/8 + 3*e4/32 + 45*e6/1024,
		m3:        15*e4/256 + 45*e6/1024,
		m4:        35 * e6 / 3072,
	}
}

// ProjectionFor returns a projection for a datum.
func ProjectionFor(d domain.Datum) (*Projection, error) {
	e, err := EllipsoidFor(d)
	if err != nil {
		return nil, err
	}
	return NewProjection(e), nil
}

// Ellipsoid returns the reference ellipsoid of the projection.
func (p *Projection) Ellipsoid() Ellipsoid { return p.ellipsoid }

// ToUTM converts a latitude/longitude to UTM. A zone of 0 selects the point's
// natural zone; any other zone forces the computation into that zone so a cell
// straddling a zone boundary can be gridded in one system.
func (p *Projection) ToUTM(lat, lon float64, zone int) (domain.UTMCoordinate, error) {
	// USNG is only defined between 80S and 84N
	if lat > MaxLatitude || lat < MinLatitude {
		return domain.UTMCoordinate{}, &CoordinateError{Op: "to utm", Lat: lat, Lon: lon, Err: ErrInvalidLatitude}
	}
	if lat > 90 || lat < -90 || math.IsNaN(lat) {
		return domain.UTMCoordinate{}, &CoordinateError{Op: "to utm", Lat: lat, Lon: lon, Err: ErrInvalidLatitude}
	}
	if lon > 360 || lon < -180 || math.IsNaN(lon) {
		return domain.UTMCoordinate{}, &CoordinateError{Op: "to utm", Lat: lat, Lon: lon, Err: ErrInvalidLongitude}
	}

	if zone == 0 {
		z, ok := ZoneNumber(lat, lon)
		if !ok {
			return domain.UTMCoordinate{}, &CoordinateError{Op: "to utm", Lat: lat, Lon: lon, Err: ErrZoneLookup}
		}
		zone = z
	}

	latRad := lat * deg2rad
	// offset from the central meridian, taken the short way round so the
	// 180° edge of a forced zone 60 stays next to it
	dLonRad := NormalizeLongitude(lon-CentralMeridian(zone)) * deg2rad

	sinLat := math.Sin(latRad)
	cosLat := math.Cos(latRad)
	tanLat := math.Tan(latRad)

	n := p.a / math.Sqrt(1-p.e2*sinLat*sinLat)
	t := tanLat * tanLat
	c := p.ep2 * cosLat * cosLat
	a := cosLat * dLonRad
	m := p.meridianArc(latRad)

	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	easting := K0*n*(a+(1-t+c)*a3/6+(5-18*t+t*t+72*c-58*p.ep2)*a5/120) + FalseEasting

	northing := K0 * (m + n*tanLat*(a2/2+
		(5-t+9*c+4*c*c)*a4/24+
		(61-58*t+t*t+600*c-330*p.ep2)*a6/720))

	return domain.UTMCoordinate{
		Easting:  easting,
		Northing: northing,
		Zone:     zone,
		Letter:   string(LatitudeBand(lat)),
	}, nil
}

// ToGeographic converts a UTM coordinate back to latitude/longitude. Northing
// is negative in the southern hemisphere. The letter is informational only.
func (p *Projection) ToGeographic(northing, easting float64, zone int, letter string) domain.GeoPoint {
	x := easting - FalseEasting
	y := northing

	m := y / K0
	mu := m / (p.a * p.m1)

	// footprint latitude: the latitude on the central meridian with the same northing
	e1 := p.e1
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu)

	sinPhi := math.Sin(phi1)
	cosPhi := math.Cos(phi1)
	tanPhi := math.Tan(phi1)

	n1 := p.a / math.Sqrt(1-p.e2*sinPhi*sinPhi)
	t1 := tanPhi * tanPhi
	c1 := p.ep2 * cosPhi * cosPhi
	r1 := p.a * (1 - p.e2) / math.Pow(1-p.e2*sinPhi*sinPhi, 1.5)
	d := x / (n1 * K0)

	d2 := d * d
	d3 := d2 * d
	d4 := d3 * d
	d5 := d4 * d
	d6 := d5 * d

	lat := phi1 - (n1*tanPhi/r1)*(d2/2-
		(5+3*t1+10*c1-4*c1*c1-9*p.ep2)*d4/24+
		(61+90*t1+298*c1+45*t1*t1-252*p.ep2-3*c1*c1)*d6/720)

	lon := (d - (1+2*t1+c1)*d3/6 +
		(5-2*c1+28*t1-3*c1*c1+8*p.ep2+24*t1*t1)*d5/120) / cosPhi

	return domain.GeoPoint{
		Lat: lat * rad2deg,
		Lon: CentralMeridian(zone) + lon*rad2deg,
	}
}

// meridianArc is the true distance along the central meridian from the equator.
func (p *Projection) meridianArc(latRad float64) float64 {
	return p.a * (p.m1*latRad -
		p.m2*math.Sin(2*latRad) +
		p.m3*math.Sin(4*latRad) -
		p.m4*math.Sin(6*latRad))
}
