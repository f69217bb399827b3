// Package shapefile exports rendered grids as ESRI shapefiles.
package shapefile

import (
	"fmt"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"github.com/samirrijal/usngrid/internal/core/domain"
)

const (
	fieldLayer = iota
	fieldInterval
)

const (
	fieldText = iota
)

// WriteLines writes every grid line of res as a POLYLINE record to path
// (plus the .shx and .dbf siblings). Each record carries its layer name and
// interval in meters. It returns the number of records written.
func WriteLines(path string, res *domain.GridResult) (int, error) {
	w, err := shp.Create(path, shp.POLYLINE)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer w.Close()

	if err := w.SetFields([]shp.Field{
		shp.StringField("LAYER", 8),
		shp.NumberField("INTERVAL", 7),
	}); err != nil {
		return 0, fmt.Errorf("set fields: %w", err)
	}

	n := 0
	for _, layer := range res.Layers {
		for _, line := range layer.Lines {
			if len(line) < 2 {
				continue
			}
			row := int(w.Write(shp.NewPolyLine([][]shp.Point{toPoints(line)})))
			if err := w.WriteAttribute(row, fieldLayer, layer.Name); err != nil {
				return n, fmt.Errorf("write layer attribute: %w", err)
			}
			if err := w.WriteAttribute(row, fieldInterval, int(layer.Interval)); err != nil {
				return n, fmt.Errorf("write interval attribute: %w", err)
			}
			n++
		}
	}
	return n, nil
}

// WriteLabels writes the 100 km square labels of res as POINT records.
func WriteLabels(path string, res *domain.GridResult) (int, error) {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer w.Close()

	if err := w.SetFields([]shp.Field{shp.StringField("TEXT", 4)}); err != nil {
		return 0, fmt.Errorf("set fields: %w", err)
	}

	for i, l := range res.Labels {
		row := int(w.Write(&shp.Point{X: l.Position.Lon, Y: l.Position.Lat}))
		if err := w.WriteAttribute(row, fieldText, l.Text); err != nil {
			return i, fmt.Errorf("write label attribute: %w", err)
		}
	}
	return len(res.Labels), nil
}

// LabelsPath derives the label file name from a line file name:
// "grid.shp" -> "grid_labels.shp".
func LabelsPath(linesPath string) string {
	return strings.TrimSuffix(linesPath, ".shp") + "_labels.shp"
}

func toPoints(line domain.GridLine) []shp.Point {
	pts := make([]shp.Point, len(line))
	for i, p := range line {
		pts[i] = shp.Point{X: p.Lon, Y: p.Lat}
	}
	return pts
}
