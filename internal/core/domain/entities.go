package domain

import (
	"fmt"
	"strings"
	"time"
)

// Datum selects the reference ellipsoid used by every projection call.
type Datum string

const (
	DatumNAD83 Datum = "nad83" // GRS80 ellipsoid
	DatumNAD27 Datum = "nad27" // Clarke 1866 ellipsoid
)

// ParseDatum accepts "nad83", "nad27" (any case) and "" (NAD83).
func ParseDatum(s string) (Datum, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(DatumNAD83), "grs80":
		return DatumNAD83, nil
	case string(DatumNAD27), "clarke1866":
		return DatumNAD27, nil
	default:
		return "", fmt.Errorf("unknown datum %q", s)
	}
}

// Interval is a grid spacing in meters.
type Interval int

const (
	// IntervalGZD marks the grid zone designator boundary layer.
	IntervalGZD  Interval = 0
	Interval100K Interval = 100000
	Interval10K  Interval = 10000
	Interval1K   Interval = 1000
)

// Name returns the layer name used in responses and exports.
func (i Interval) Name() string {
	switch {
	case i == IntervalGZD:
		return "gzd"
	case i >= 1000 && i%1000 == 0:
		return fmt.Sprintf("%dk", int(i)/1000)
	default:
		return fmt.Sprintf("%dm", int(i))
	}
}

// GridRequest describes one render pass.
type GridRequest struct {
	Bounds     BoundingBox `json:"bounds"`
	Zoom       int         `json:"zoom"`
	Datum      Datum       `json:"datum"`
	Intervals  []Interval  `json:"intervals,omitempty"`
	IncludeGZD bool        `json:"include_gzd"`
}

// GridLayer holds every clipped polyline generated for one interval.
type GridLayer struct {
	Interval Interval   `json:"interval"`
	Name     string     `json:"name"`
	Lines    []GridLine `json:"lines"`
}

// LabelAnchors are boundary-aligned positions for northing/easting labels of a cell.
type LabelAnchors struct {
	Cell      GeoRectangle `json:"cell"`
	Interval  Interval     `json:"interval"`
	Northings []float64    `json:"northings"`
	Eastings  []float64    `json:"eastings"`
}

// SquareLabel is the 100 km square identifier positioned at the square center.
type SquareLabel struct {
	Position GeoPoint `json:"position"`
	Text     string   `json:"text"`
}

// SkippedCell records a cell that could not be gridded.
type SkippedCell struct {
	Cell     GeoRectangle `json:"cell"`
	Interval Interval     `json:"interval"`
	Reason   string       `json:"reason"`
}

// GridResult is the output of one render pass.
type GridResult struct {
	Request  GridRequest    `json:"request"`
	Cells    []GridZone     `json:"cells"`
	Layers   []GridLayer    `json:"layers"`
	Anchors  []LabelAnchors `json:"anchors,omitempty"`
	Labels   []SquareLabel  `json:"labels,omitempty"`
	Skipped  []SkippedCell  `json:"skipped,omitempty"`
	Cached   bool           `json:"cached"`
	Duration time.Duration  `json:"duration"`
}

// Layer returns the layer for the given interval, if present.
func (r *GridResult) Layer(i Interval) (GridLayer, bool) {
	for _, l := range r.Layers {
		if l.Interval == i {
			return l, true
		}
	}
	return GridLayer{}, false
}

// Counts returns the number of lines and points across all layers.
func (r *GridResult) Counts() (lines, points int) {
	for _, l := range r.Layers {
		lines += len(l.Lines)
		for _, line := range l.Lines {
			points += len(line)
		}
	}
	return lines, points
}

// GridZone is a viewport cell with its grid zone designator.
type GridZone struct {
	Designator string       `json:"designator"`
	Rect       GeoRectangle `json:"rect"`
	// CenterDistance is the great-circle distance in meters from a queried
	// point to the cell midpoint. Only set by point lookups.
	CenterDistance float64 `json:"center_distance_m,omitempty"`
}

// SavedViewport is a named bounding box stored for later rendering.
type SavedViewport struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Bounds    BoundingBox `json:"bounds"`
	Zoom      int         `json:"zoom"`
	Datum     Datum       `json:"datum"`
	Intervals []Interval  `json:"intervals,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Request converts a saved viewport into a render request.
func (v *SavedViewport) Request() GridRequest {
	return GridRequest{
		Bounds:     v.Bounds,
		Zoom:       v.Zoom,
		Datum:      v.Datum,
		Intervals:  v.Intervals,
		IncludeGZD: true,
	}
}

// GridRenderedEvent is published after an uncached render completes.
type GridRenderedEvent struct {
	Time       time.Time   `json:"time"`
	Bounds     BoundingBox `json:"bounds"`
	Zoom       int         `json:"zoom"`
	Datum      Datum       `json:"datum"`
	Cells      int         `json:"cells"`
	Lines      int         `json:"lines"`
	Points     int         `json:"points"`
	Skipped    int         `json:"skipped"`
	DurationMS int64       `json:"duration_ms"`
}
