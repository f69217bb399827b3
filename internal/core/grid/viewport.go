// Package grid decomposes a viewport into grid zone cells and generates the
// clipped USNG grid lines inside each cell.
package grid

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/pkg/geospatial"
)

const (
	zoneWidth  = 6.0
	bandHeight = 8.0

	// latitude of the last 8° band start; the X band above it runs to 84°
	lastBandStart = 72.0
)

// ViewPort is a bounding box split into grid zone rectangles. It is built for
// one render pass and is read-only afterwards, so it may be shared by workers.
type ViewPort struct {
	bounds domain.BoundingBox
	lats   []float64
	lngs   []float64
	rects  []domain.GeoRectangle
	index  *rtreego.Rtree
}

// NewViewPort pushes bbox out by margin degrees, clamps it to the UTM domain and
// computes the zone and band boundaries that fall inside it.
func NewViewPort(bbox domain.BoundingBox, margin float64) *ViewPort {
	west := math.Max(bbox.West-margin, -180)
	east := math.Min(bbox.East+margin, 180)
	south := math.Max(bbox.South-margin, -90)
	north := math.Min(bbox.North+margin, 90)

	// UTM is undefined beyond 84N and 80S
	north = math.Max(math.Min(north, geospatial.MaxLatitude), geospatial.MinLatitude)
	south = math.Min(south, geospatial.MaxLatitude)

	v := &ViewPort{
		bounds: domain.BoundingBox{South: south, North: north, West: west, East: east},
	}
	v.lats = latBoundaries(south, north)
	v.lngs = lngBoundaries(west, east)

	if len(v.lats) < 2 || len(v.lngs) < 2 {
		panic(fmt.Sprintf("grid: empty boundary sequence for %+v (lats=%v lngs=%v)", bbox, v.lats, v.lngs))
	}

	for i := 0; i < len(v.lats)-1; i++ {
		for j := 0; j < len(v.lngs)-1; j++ {
			s, w := v.lats[i], v.lngs[j]
			// these cells are absorbed by the widened Svalbard zones
			if s >= lastBandStart && (w == 6 || w == 18 || w == 30) {
				continue
			}
			v.rects = append(v.rects, AssignCorners(s, v.lats[i+1], w, v.lngs[j+1]))
		}
	}

	v.index = newCellIndex(v.rects)
	return v
}

func latBoundaries(south, north float64) []float64 {
	var first, y1 float64
	if south < geospatial.MinLatitude {
		// the -80 row is degenerate but still carries zone lines
		first = geospatial.MinLatitude
		y1 = geospatial.MinLatitude
	} else {
		first = south
		y1 = (math.Floor(south/bandHeight) + 1) * bandHeight
	}

	lats := []float64{first}
	for lat := y1; lat < north; lat += bandHeight {
		if lat > lastBandStart {
			break
		}
		lats = append(lats, lat)
	}
	return append(lats, north)
}

func lngBoundaries(west, east float64) []float64 {
	lngs := []float64{west}
	// a viewport crossing the antimeridian keeps only its edges
	if west < east {
		x1 := (math.Floor(west/zoneWidth) + 1) * zoneWidth
		for lng := x1; lng < east; lng += zoneWidth {
			lngs = append(lngs, lng)
		}
	}
	return append(lngs, east)
}

// AssignCorners builds a cell rectangle, widening or narrowing the cells
// around the Norway and Svalbard zone exceptions.
func AssignCorners(south, north, west, east float64) domain.GeoRectangle {
	r := domain.GeoRectangle{South: south, North: north, West: west, East: east}
	switch {
	// Norway
	case south == 56 && west == 0:
		r.East = east - 3
	case south == 56 && west == 6:
		r.West = west - 3
	// Svalbard
	case south == 72 && west == 0:
		r.East = east + 3
	case south == 72 && west == 12:
		r.West = west - 3
		r.East = east + 3
	case south == 72 && west == 36:
		r.West = west - 3
	}
	return r
}

// Bounds returns the clamped bounding box the viewport was built from.
func (v *ViewPort) Bounds() domain.BoundingBox { return v.bounds }

// Lats returns the latitude boundaries in ascending order.
func (v *ViewPort) Lats() []float64 { return v.lats }

// Lngs returns the longitude boundaries, ascending unless the viewport crosses
// the antimeridian.
func (v *ViewPort) Lngs() []float64 { return v.lngs }

// Rectangles returns the cells row by row from the south-west.
func (v *ViewPort) Rectangles() []domain.GeoRectangle { return v.rects }

// ZoneLines returns the grid zone boundaries: one polyline along each latitude
// boundary across every longitude, then one along each longitude boundary.
func (v *ViewPort) ZoneLines() []domain.GridLine {
	lines := make([]domain.GridLine, 0, len(v.lats)+len(v.lngs))
	for _, lat := range v.lats {
		line := make(domain.GridLine, 0, len(v.lngs))
		for _, lng := range v.lngs {
			line = append(line, domain.GeoPoint{Lat: lat, Lon: lng})
		}
		lines = append(lines, line)
	}
	for _, lng := range v.lngs {
		line := make(domain.GridLine, 0, len(v.lats))
		for _, lat := range v.lats {
			line = append(line, domain.GeoPoint{Lat: lat, Lon: lng})
		}
		lines = append(lines, line)
	}
	return lines
}

// Designator returns the grid zone designator of a cell, e.g. "18S".
// The degenerate -80° row takes the designator of its midpoint.
func (v *ViewPort) Designator(r domain.GeoRectangle) string {
	return Designator(r)
}

// Designator returns the grid zone designator of a cell's midpoint.
func Designator(r domain.GeoRectangle) string {
	mid := r.Midpoint()
	zone, ok := geospatial.ZoneNumber(mid.Lat, mid.Lon)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d%c", zone, geospatial.LatitudeBand(mid.Lat))
}

// Zones returns every cell with its designator.
func (v *ViewPort) Zones() []domain.GridZone {
	zones := make([]domain.GridZone, 0, len(v.rects))
	for _, r := range v.rects {
		zones = append(zones, domain.GridZone{Designator: Designator(r), Rect: r})
	}
	return zones
}
