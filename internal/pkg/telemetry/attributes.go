package telemetry

// Span names.
const (
	SpanRender     = "grid.render"
	SpanRenderCell = "grid.render_cell"
	SpanWarmCache  = "grid.warm_cache"
)

// Span attribute keys shared by the grid spans.
const (
	AttrZoom       = "grid.zoom"
	AttrDatum      = "grid.datum"
	AttrInterval   = "grid.interval"
	AttrCells      = "grid.cells"
	AttrLines      = "grid.lines"
	AttrCached     = "grid.cached"
	AttrDesignator = "grid.cell.designator"
)
