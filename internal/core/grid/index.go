package grid

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/samirrijal/usngrid/internal/core/domain"
)

// R-tree rectangles need non-zero sides; the -80° row has none.
const indexEpsilon = 1e-9

// indexedCell wraps a viewport cell for R-tree storage.
type indexedCell struct {
	pos  int
	rect domain.GeoRectangle
}

// Bounds implements rtreego.Spatial.
func (c *indexedCell) Bounds() rtreego.Rect {
	return boxRect(c.rect.West, c.rect.South, c.rect.East, c.rect.North)
}

func boxRect(minLon, minLat, maxLon, maxLat float64) rtreego.Rect {
	if minLon > maxLon {
		minLon, maxLon = maxLon, minLon
	}
	point := rtreego.Point{minLon, minLat}
	lengths := []float64{
		math.Max(maxLon-minLon, indexEpsilon),
		math.Max(maxLat-minLat, indexEpsilon),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

func newCellIndex(rects []domain.GeoRectangle) *rtreego.Rtree {
	tree := rtreego.NewTree(2, 25, 50)
	for i, r := range rects {
		tree.Insert(&indexedCell{pos: i, rect: r})
	}
	return tree
}

// CellsAt returns the cells containing p, edges included, in viewport order.
// A point on a shared boundary belongs to every cell touching it.
func (v *ViewPort) CellsAt(p domain.GeoPoint) []domain.GridZone {
	query := boxRect(p.Lon-indexEpsilon, p.Lat-indexEpsilon, p.Lon+indexEpsilon, p.Lat+indexEpsilon)
	hits := v.index.SearchIntersect(query)

	cells := make([]*indexedCell, 0, len(hits))
	for _, h := range hits {
		c := h.(*indexedCell)
		if c.rect.Contains(p) {
			cells = append(cells, c)
		}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].pos < cells[j].pos })

	zones := make([]domain.GridZone, 0, len(cells))
	for _, c := range cells {
		zones = append(zones, domain.GridZone{Designator: Designator(c.rect), Rect: c.rect})
	}
	return zones
}
