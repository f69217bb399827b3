// Package geojson encodes rendered grids as RFC 7946 FeatureCollections.
package geojson

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"

	"github.com/samirrijal/usngrid/internal/core/domain"
)

// MediaType is the registered GeoJSON content type.
const MediaType = "application/geo+json"

// FromGrid converts a render result. Grid lines become LineString features
// tagged with their layer; 100 km square labels become Point features. Lines
// with fewer than two points are not valid LineStrings and are dropped.
func FromGrid(res *domain.GridResult) *orbjson.FeatureCollection {
	fc := orbjson.NewFeatureCollection()
	fc.BBox = orbjson.NewBBox(bound(res.Request.Bounds))

	for _, layer := range res.Layers {
		for _, line := range layer.Lines {
			if len(line) < 2 {
				continue
			}
			f := orbjson.NewFeature(lineString(line))
			f.Properties["kind"] = "line"
			f.Properties["layer"] = layer.Name
			f.Properties["interval"] = int(layer.Interval)
			fc.Append(f)
		}
	}

	for _, l := range res.Labels {
		f := orbjson.NewFeature(point(l.Position))
		f.Properties["kind"] = "label"
		f.Properties["text"] = l.Text
		fc.Append(f)
	}
	return fc
}

// FromZones converts grid zone cells into Polygon features.
func FromZones(zones []domain.GridZone) *orbjson.FeatureCollection {
	fc := orbjson.NewFeatureCollection()
	for _, z := range zones {
		r := z.Rect
		cell := orb.Bound{
			Min: orb.Point{r.West, r.South},
			Max: orb.Point{r.East, r.North},
		}
		f := orbjson.NewFeature(cell.ToPolygon())
		f.Properties["designator"] = z.Designator
		if z.CenterDistance > 0 {
			f.Properties["center_distance_m"] = z.CenterDistance
		}
		fc.Append(f)
	}
	return fc
}

// Encode writes the GeoJSON form of res to w.
func Encode(w io.Writer, res *domain.GridResult) error {
	return json.NewEncoder(w).Encode(FromGrid(res))
}

// bound keeps west > east for antimeridian boxes, as RFC 7946 §5.2 expects.
func bound(b domain.BoundingBox) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

func point(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

func lineString(line domain.GridLine) orb.LineString {
	ls := make(orb.LineString, len(line))
	for i, p := range line {
		ls[i] = point(p)
	}
	return ls
}
