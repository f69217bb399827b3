package grid

import "github.com/samirrijal/usngrid/internal/core/domain"

// OutCode is the Cohen-Sutherland region code of a point relative to a cell.
type OutCode uint8

const (
	OutWest OutCode = 1 << iota
	OutEast
	OutSouth
	OutNorth
)

// Inside reports whether no edge bit is set.
func (c OutCode) Inside() bool { return c == 0 }

// ComputeOutCode classifies p against the edges of r. Points on an edge are inside.
func ComputeOutCode(r domain.GeoRectangle, p domain.GeoPoint) OutCode {
	var code OutCode
	if p.Lat < r.South {
		code |= OutSouth
	}
	if p.Lat > r.North {
		code |= OutNorth
	}
	if p.Lon < r.West {
		code |= OutWest
	}
	if p.Lon > r.East {
		code |= OutEast
	}
	return code
}

// ClipSegment decides whether the segment p1-p2 contributes to a line clipped to r
// and returns the point to emit in place of p1.
//
// When exactly one endpoint is inside, the outside endpoint is moved onto the
// first crossed edge, checked in north, south, west, east order. Only one edge
// is applied, so a corner crossing can leave the point outside the other edge.
// p2 is never altered.
func ClipSegment(r domain.GeoRectangle, p1, p2 domain.GeoPoint) (domain.GeoPoint, bool) {
	c1 := ComputeOutCode(r, p1)
	c2 := ComputeOutCode(r, p2)

	if c1&c2 != 0 {
		return domain.GeoPoint{}, false
	}
	if c1|c2 == 0 {
		return p1, true
	}
	if c1.Inside() {
		p1, p2 = p2, p1
		c1 = c2
	}

	switch {
	case c1&OutNorth != 0:
		t := (r.North - p1.Lat) / (p2.Lat - p1.Lat)
		return domain.GeoPoint{Lat: r.North, Lon: p1.Lon + t*(p2.Lon-p1.Lon)}, true
	case c1&OutSouth != 0:
		t := (r.South - p1.Lat) / (p2.Lat - p1.Lat)
		return domain.GeoPoint{Lat: r.South, Lon: p1.Lon + t*(p2.Lon-p1.Lon)}, true
	case c1&OutWest != 0:
		t := (r.West - p1.Lon) / (p2.Lon - p1.Lon)
		return domain.GeoPoint{Lat: p1.Lat + t*(p2.Lat-p1.Lat), Lon: r.West}, true
	default:
		t := (r.East - p1.Lon) / (p2.Lon - p1.Lon)
		return domain.GeoPoint{Lat: p1.Lat + t*(p2.Lat-p1.Lat), Lon: r.East}, true
	}
}

// ClipLine clips a sampled line to r. Each adjacent pair contributes at most its
// (possibly clipped) first point, so the last input point is never emitted.
// The input is not modified.
func ClipLine(r domain.GeoRectangle, line domain.GridLine) domain.GridLine {
	if len(line) < 2 {
		return domain.GridLine{}
	}
	out := make(domain.GridLine, 0, len(line)-1)
	for i := 0; i < len(line)-1; i++ {
		if p, ok := ClipSegment(r, line[i], line[i+1]); ok {
			out = append(out, p)
		}
	}
	return out
}
