package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/grid"
	"github.com/samirrijal/usngrid/internal/core/ports"
	"github.com/samirrijal/usngrid/internal/pkg/geospatial"
	"github.com/samirrijal/usngrid/internal/pkg/logging"
	"github.com/samirrijal/usngrid/internal/pkg/metrics"
	"github.com/samirrijal/usngrid/internal/pkg/telemetry"
)

// GridOptions tunes the renderer.
type GridOptions struct {
	Datum          domain.Datum // used when a request names none
	Margin         float64      // degrees added around every viewport
	Workers        int
	CacheTTL       time.Duration
	MaxSpanDegrees float64
	MaxPoints      int
}

// DefaultGridOptions returns the options used when none are configured.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		Workers:        runtime.GOMAXPROCS(0),
		CacheTTL:       time.Hour,
		MaxSpanDegrees: 60,
		MaxPoints:      2000000,
	}
}

// GridService renders USNG grid overlays.
type GridService struct {
	cache       ports.CacheService
	events      ports.EventPublisher
	opts        GridOptions
	projections map[domain.Datum]*geospatial.Projection
	tracer      trace.Tracer
}

// NewGridService creates a new GridService. cache and events may be nil.
func NewGridService(cache ports.CacheService, events ports.EventPublisher, opts GridOptions) *GridService {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &GridService{
		cache:  cache,
		events: events,
		opts:   opts,
		projections: map[domain.Datum]*geospatial.Projection{
			domain.DatumNAD83: geospatial.NewProjection(geospatial.GRS80),
			domain.DatumNAD27: geospatial.NewProjection(geospatial.Clarke1866),
		},
		tracer: telemetry.Tracer("usngrid/usecases"),
	}
}

// Projection returns the projection for a datum.
func (s *GridService) Projection(d domain.Datum) (*geospatial.Projection, error) {
	datum, err := domain.ParseDatum(string(d))
	if err != nil {
		return nil, invalidf("%v", err)
	}
	return s.projections[datum], nil
}

// Zones returns the grid zone cells covering a bounding box.
func (s *GridService) Zones(ctx context.Context, b domain.BoundingBox) ([]domain.GridZone, error) {
	if err := ValidateBounds(b); err != nil {
		return nil, err
	}
	var zones []domain.GridZone
	for _, part := range splitAntimeridian(b) {
		zones = append(zones, grid.NewViewPort(part, 0).Zones()...)
	}
	return zones, nil
}

// cellTask is one rectangle at one interval; it writes only its own slot.
type cellTask struct {
	rect     domain.GeoRectangle
	interval domain.Interval
	out      grid.CellGrid
	err      error
	elapsed  time.Duration
}

// Render decomposes the request viewport, generates every requested layer and
// clips the lines to their cells. Cells that cannot be projected are skipped
// and reported in the result.
func (s *GridService) Render(ctx context.Context, req domain.GridRequest) (*domain.GridResult, error) {
	req, err := s.normalize(req)
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)

	cacheKey := gridCacheKey(req, s.opts.Margin)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var res domain.GridResult
			if err := json.Unmarshal(data, &res); err == nil {
				metrics.CacheHits.WithLabelValues("grid").Inc()
				res.Cached = true
				return &res, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("grid").Inc()
	}

	ctx, span := s.tracer.Start(ctx, telemetry.SpanRender, trace.WithAttributes(
		attribute.Int(telemetry.AttrZoom, req.Zoom),
		attribute.String(telemetry.AttrDatum, string(req.Datum)),
	))
	defer span.End()

	start := time.Now()
	res, err := s.render(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	res.Duration = time.Since(start)

	lines, points := res.Counts()
	span.SetAttributes(
		attribute.Int(telemetry.AttrCells, len(res.Cells)),
		attribute.Int(telemetry.AttrLines, lines),
	)
	log.Debug("grid rendered",
		"zoom", req.Zoom,
		"datum", req.Datum,
		"cells", len(res.Cells),
		"lines", lines,
		"points", points,
		"skipped", len(res.Skipped),
		"duration", res.Duration,
	)

	if s.cache != nil {
		if data, err := json.Marshal(res); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.opts.CacheTTL)
		}
	}

	if s.events != nil {
		ev := &domain.GridRenderedEvent{
			Time:       time.Now().UTC(),
			Bounds:     req.Bounds,
			Zoom:       req.Zoom,
			Datum:      req.Datum,
			Cells:      len(res.Cells),
			Lines:      lines,
			Points:     points,
			Skipped:    len(res.Skipped),
			DurationMS: res.Duration.Milliseconds(),
		}
		if err := s.events.PublishGridRendered(ctx, ev); err != nil {
			log.Warn("publish grid rendered", "error", err)
		}
	}

	return res, nil
}

// Enqueue validates a request and hands it to the render work queue.
func (s *GridService) Enqueue(ctx context.Context, req domain.GridRequest) (domain.GridRequest, error) {
	req, err := s.normalize(req)
	if err != nil {
		return req, err
	}
	if s.events == nil {
		return req, errors.New("render queue not configured")
	}
	if err := s.events.PublishRenderRequest(ctx, &req); err != nil {
		return req, fmt.Errorf("enqueue render: %w", err)
	}
	return req, nil
}

func (s *GridService) normalize(req domain.GridRequest) (domain.GridRequest, error) {
	if req.Datum == "" {
		req.Datum = s.opts.Datum
	}
	datum, err := domain.ParseDatum(string(req.Datum))
	if err != nil {
		return req, invalidf("%v", err)
	}
	req.Datum = datum

	if err := ValidateZoom(req.Zoom); err != nil {
		return req, err
	}
	if err := ValidateBounds(req.Bounds); err != nil {
		return req, err
	}
	if s.opts.MaxSpanDegrees > 0 {
		if LonSpan(req.Bounds) > s.opts.MaxSpanDegrees || req.Bounds.North-req.Bounds.South > s.opts.MaxSpanDegrees {
			return req, invalidf("viewport exceeds %.0f degrees", s.opts.MaxSpanDegrees)
		}
	}

	intervals := req.Intervals
	if len(intervals) == 0 {
		intervals = grid.DefaultIntervals(req.Zoom)
	}
	req.Intervals, err = normalizeIntervals(intervals, req.IncludeGZD)
	if err != nil {
		return req, err
	}
	req.IncludeGZD = len(req.Intervals) > 0 && req.Intervals[0] == domain.IntervalGZD
	return req, nil
}

func (s *GridService) render(ctx context.Context, req domain.GridRequest) (*domain.GridResult, error) {
	var viewports []*grid.ViewPort
	for _, part := range splitAntimeridian(req.Bounds) {
		viewports = append(viewports, grid.NewViewPort(part, s.opts.Margin))
	}

	res := &domain.GridResult{Request: req}
	var rects []domain.GeoRectangle
	for _, vp := range viewports {
		res.Cells = append(res.Cells, vp.Zones()...)
		rects = append(rects, vp.Rectangles()...)
	}

	// tasks are laid out layer by layer, cells in viewport order
	var tasks []*cellTask
	estimate := 0
	for _, iv := range req.Intervals {
		if iv == domain.IntervalGZD {
			continue
		}
		for _, r := range rects {
			estimate += grid.EstimatePoints(r, iv, req.Zoom)
			tasks = append(tasks, &cellTask{rect: r, interval: iv})
		}
	}
	if s.opts.MaxPoints > 0 && estimate > s.opts.MaxPoints {
		return nil, invalidf("viewport would generate about %d points (limit %d); zoom in or request coarser intervals", estimate, s.opts.MaxPoints)
	}

	gen := grid.NewGenerator(s.projections[req.Datum])
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for _, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, span := s.tracer.Start(gctx, telemetry.SpanRenderCell, trace.WithAttributes(
				attribute.String(telemetry.AttrDesignator, grid.Designator(t.rect)),
				attribute.Int(telemetry.AttrInterval, int(t.interval)),
			))
			defer span.End()

			start := time.Now()
			t.out, t.err = gen.Cell(t.rect, t.interval, req.Zoom)
			t.elapsed = time.Since(start)
			if t.err != nil {
				span.RecordError(t.err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render grid: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render grid: %w", err)
	}

	log := logging.FromContext(ctx)
	for _, iv := range req.Intervals {
		layer := domain.GridLayer{Interval: iv, Name: iv.Name()}
		if iv == domain.IntervalGZD {
			for _, vp := range viewports {
				layer.Lines = append(layer.Lines, vp.ZoneLines()...)
			}
			res.Layers = append(res.Layers, layer)
			continue
		}

		var elapsed time.Duration
		for _, t := range tasks {
			if t.interval != iv {
				continue
			}
			elapsed += t.elapsed
			if t.err != nil {
				reason := skipReason(t.err)
				res.Skipped = append(res.Skipped, domain.SkippedCell{Cell: t.rect, Interval: iv, Reason: t.err.Error()})
				metrics.GridCellsSkipped.WithLabelValues(layer.Name, reason).Inc()
				log.Warn("grid cell skipped",
					"cell", grid.Designator(t.rect),
					"layer", layer.Name,
					"reason", reason,
					"error", t.err,
				)
				continue
			}
			for _, l := range t.out.Lines {
				if len(l) > 0 {
					layer.Lines = append(layer.Lines, l)
				}
			}
			res.Anchors = append(res.Anchors, t.out.Anchors)
			res.Labels = append(res.Labels, t.out.Labels...)
		}

		points := 0
		for _, l := range layer.Lines {
			points += len(l)
		}
		metrics.GridRenderDuration.WithLabelValues(layer.Name).Observe(elapsed.Seconds())
		metrics.GridLinesGenerated.WithLabelValues(layer.Name).Add(float64(len(layer.Lines)))
		metrics.GridPointsGenerated.WithLabelValues(layer.Name).Add(float64(points))
		res.Layers = append(res.Layers, layer)
	}

	return res, nil
}

// splitAntimeridian returns b, or its two halves when West > East.
func splitAntimeridian(b domain.BoundingBox) []domain.BoundingBox {
	if b.West <= b.East {
		return []domain.BoundingBox{b}
	}
	west, east := b, b
	west.East = 180
	east.West = -180
	return []domain.BoundingBox{west, east}
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, geospatial.ErrInvalidLatitude):
		return "invalid_latitude"
	case errors.Is(err, geospatial.ErrInvalidLongitude):
		return "invalid_longitude"
	case errors.Is(err, geospatial.ErrZoneLookup):
		return "zone_lookup"
	default:
		return "other"
	}
}

func gridCacheKey(req domain.GridRequest, margin float64) string {
	names := make([]string, len(req.Intervals))
	for i, iv := range req.Intervals {
		names[i] = iv.Name()
	}
	b := req.Bounds
	return fmt.Sprintf("grid:%s:%d:%.6f:%.6f:%.6f:%.6f:%.3f:%s",
		req.Datum, req.Zoom, b.South, b.North, b.West, b.East, margin, strings.Join(names, ","))
}
