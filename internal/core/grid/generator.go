package grid

import (
	"fmt"
	"math"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/pkg/geospatial"
)

// CellGrid is the output of one cell at one interval.
type CellGrid struct {
	// Lines holds the clipped east-west lines followed by the north-south lines.
	Lines []domain.GridLine
	// EastWest is the number of leading east-west lines in Lines.
	EastWest int
	Anchors  domain.LabelAnchors
	// Labels is only filled for the 100 km interval.
	Labels []domain.SquareLabel
}

// Points returns the total number of points across all lines.
func (g CellGrid) Points() int {
	n := 0
	for _, l := range g.Lines {
		n += len(l)
	}
	return n
}

// Generator produces grid lines for viewport cells. It holds no per-call state.
type Generator struct {
	proj *geospatial.Projection
}

func NewGenerator(proj *geospatial.Projection) *Generator {
	return &Generator{proj: proj}
}

// Precision is the sampling step in meters along a grid line for a zoom level.
func Precision(zoom int) int {
	switch {
	case zoom < 12:
		return 10000
	case zoom > 15:
		return 100
	default:
		return 1000
	}
}

// DefaultIntervals returns the layers drawn at a zoom level, zone lines first
// and then by descending interval.
func DefaultIntervals(zoom int) []domain.Interval {
	var out []domain.Interval
	if zoom > 2 {
		out = append(out, domain.IntervalGZD)
	}
	if zoom > 5 {
		out = append(out, domain.Interval100K)
	}
	if zoom > 9 {
		out = append(out, domain.Interval10K)
	}
	if zoom > 12 {
		out = append(out, domain.Interval1K)
	}
	return out
}

// EstimatePoints approximates how many points Cell would sample for a rectangle,
// without projecting anything. Used to reject requests before rendering.
func EstimatePoints(r domain.GeoRectangle, interval domain.Interval, zoom int) int {
	if interval <= 0 {
		return 0
	}
	const metersPerDegree = 111320.0
	cosLat := math.Max(math.Cos(r.Midpoint().Lat*math.Pi/180), 0.05)
	width := (r.East-r.West)*metersPerDegree*cosLat + 2*float64(interval)
	height := (r.North-r.South)*metersPerDegree + 2*float64(interval)

	// east-west lines of width/prec points plus north-south lines of height/prec
	return int(2 * width * height / (float64(interval) * float64(Precision(zoom))))
}

// Cell generates the grid lines of one rectangle at one interval. The whole cell
// is computed in the zone of its midpoint. Projection errors are returned so the
// caller can skip the cell.
func (g *Generator) Cell(r domain.GeoRectangle, interval domain.Interval, zoom int) (CellGrid, error) {
	if interval <= 0 {
		return CellGrid{}, fmt.Errorf("grid: interval %d is not a line spacing", interval)
	}

	mid := r.Midpoint()
	zone, ok := geospatial.ZoneNumber(mid.Lat, mid.Lon)
	if !ok {
		return CellGrid{}, &geospatial.CoordinateError{Op: "cell zone", Lat: mid.Lat, Lon: mid.Lon, Err: geospatial.ErrZoneLookup}
	}
	letter := string(geospatial.LatitudeBand(mid.Lat))

	sw, ne, err := g.extent(r, zone)
	if err != nil {
		return CellGrid{}, err
	}

	iv := float64(interval)
	swE := math.Floor(sw.Easting/iv)*iv - iv
	swN := math.Floor(sw.Northing/iv)*iv - iv
	neE := math.Floor(ne.Easting/iv+1)*iv + iv
	neN := math.Floor(ne.Northing/iv+1)*iv + iv
	prec := float64(Precision(zoom))

	out := CellGrid{
		Anchors: domain.LabelAnchors{Cell: r, Interval: interval},
	}

	// zone boundaries are labelled by the coarser layers
	if interval > domain.Interval1K {
		out.Anchors.Northings = append(out.Anchors.Northings, r.South)
	}
	for n := swN; n < neN; n += iv {
		// two intervals in roughly offsets grid convergence
		a := g.proj.ToGeographic(n, swE+2*iv, zone, letter)
		if a.Lat > r.South && a.Lat < r.North {
			out.Anchors.Northings = append(out.Anchors.Northings, a.Lat)
		}

		raw := make(domain.GridLine, 0, int((neE-swE)/prec)+1)
		for e := swE; e <= neE; e += prec {
			raw = append(raw, g.proj.ToGeographic(n, e, zone, letter))
		}
		out.Lines = append(out.Lines, ClipLine(r, raw))
	}
	out.Anchors.Northings = append(out.Anchors.Northings, r.North)
	out.EastWest = len(out.Lines)

	if interval > domain.Interval1K {
		out.Anchors.Eastings = append(out.Anchors.Eastings, r.West)
	}
	for e := swE; e < neE; e += iv {
		a := g.proj.ToGeographic(swN+2*iv, e, zone, letter)
		if a.Lon > r.West && a.Lon < r.East {
			out.Anchors.Eastings = append(out.Anchors.Eastings, a.Lon)
		}

		raw := make(domain.GridLine, 0, int((neN-swN)/prec)+1)
		for n := swN; n <= neN; n += prec {
			raw = append(raw, g.proj.ToGeographic(n, e, zone, letter))
		}
		out.Lines = append(out.Lines, ClipLine(r, raw))
	}
	out.Anchors.Eastings = append(out.Anchors.Eastings, r.East)

	if interval == domain.Interval100K && !r.Degenerate() {
		out.Labels = g.squareLabels(r, zone, letter, swE, swN, neE, neN)
	}
	return out, nil
}

// extent returns the UTM south-west and north-east limits of r in zone. The
// limits start from the SW and NE corners and grow to cover the other corners
// and the edges' crossing of the central meridian, where meridian convergence
// and parallel curvature push the cell outside the corner box.
func (g *Generator) extent(r domain.GeoRectangle, zone int) (sw, ne domain.UTMCoordinate, err error) {
	sw, err = g.proj.ToUTM(r.South, r.West, zone)
	if err != nil {
		return sw, ne, fmt.Errorf("south-west corner: %w", err)
	}
	ne, err = g.proj.ToUTM(r.North, r.East, zone)
	if err != nil {
		return sw, ne, fmt.Errorf("north-east corner: %w", err)
	}

	extra := []domain.GeoPoint{{Lat: r.North, Lon: r.West}, {Lat: r.South, Lon: r.East}}
	if cm := geospatial.CentralMeridian(zone); cm > r.West && cm < r.East {
		extra = append(extra, domain.GeoPoint{Lat: r.South, Lon: cm}, domain.GeoPoint{Lat: r.North, Lon: cm})
	}
	for _, p := range extra {
		u, err := g.proj.ToUTM(p.Lat, p.Lon, zone)
		if err != nil {
			return sw, ne, fmt.Errorf("cell edge: %w", err)
		}
		sw.Easting = math.Min(sw.Easting, u.Easting)
		sw.Northing = math.Min(sw.Northing, u.Northing)
		ne.Easting = math.Max(ne.Easting, u.Easting)
		ne.Northing = math.Max(ne.Northing, u.Northing)
	}
	return sw, ne, nil
}

// squareLabels places the 100 km square identifier at each square center inside r.
func (g *Generator) squareLabels(r domain.GeoRectangle, zone int, letter string, swE, swN, neE, neN float64) []domain.SquareLabel {
	const half = float64(domain.Interval100K) / 2

	var labels []domain.SquareLabel
	for n := swN; n < neN; n += float64(domain.Interval100K) {
		for e := swE; e < neE; e += float64(domain.Interval100K) {
			pos := g.proj.ToGeographic(n+half, e+half, zone, letter)
			if !r.Contains(pos) {
				continue
			}
			center := domain.UTMCoordinate{Easting: e + half, Northing: n + half}
			labels = append(labels, domain.SquareLabel{
				Position: pos,
				Text:     geospatial.GridSquareID(zone, center.FalseNorthing(), center.Easting),
			})
		}
	}
	return labels
}
