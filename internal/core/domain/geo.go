package domain

// GeoPoint represents a geographic coordinate in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GridLine is an ordered sequence of geographic points in generation order.
type GridLine []GeoPoint

// BoundingBox represents a map viewport in degrees.
type BoundingBox struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// UTMCoordinate is a projected position inside one UTM zone.
// Northing is relative to the equator and negative in the southern hemisphere.
type UTMCoordinate struct {
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
	Zone     int     `json:"zone"`
	Letter   string  `json:"letter"`
}

// FalseNorthingOffset is added to southern hemisphere northings when a
// non-negative northing is required (USNG strings).
const FalseNorthingOffset = 10000000.0

// FalseNorthing returns the northing with the southern hemisphere offset applied.
func (u UTMCoordinate) FalseNorthing() float64 {
	if u.Northing < 0 {
		return u.Northing + FalseNorthingOffset
	}
	return u.Northing
}

// GeoRectangle is one cell of a viewport, usually a whole or partial GZD.
type GeoRectangle struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Degenerate reports whether the rectangle has zero height (the -80° row).
func (r GeoRectangle) Degenerate() bool {
	return r.South == r.North
}

// Center returns the midpoint of the rectangle. Degenerate rectangles have none.
func (r GeoRectangle) Center() (GeoPoint, bool) {
	if r.Degenerate() {
		return GeoPoint{}, false
	}
	return r.midpoint(), true
}

// Midpoint returns the arithmetic middle of the edges, including for degenerate rows.
func (r GeoRectangle) Midpoint() GeoPoint {
	return r.midpoint()
}

func (r GeoRectangle) midpoint() GeoPoint {
	return GeoPoint{Lat: (r.South + r.North) / 2, Lon: (r.West + r.East) / 2}
}

// SW returns the south-west corner.
func (r GeoRectangle) SW() GeoPoint { return GeoPoint{Lat: r.South, Lon: r.West} }

// NE returns the north-east corner.
func (r GeoRectangle) NE() GeoPoint { return GeoPoint{Lat: r.North, Lon: r.East} }

// Contains reports whether p lies inside or on the edge of the rectangle.
func (r GeoRectangle) Contains(p GeoPoint) bool {
	return p.Lat >= r.South && p.Lat <= r.North && p.Lon >= r.West && p.Lon <= r.East
}
