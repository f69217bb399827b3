package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/usecases"
)

// --- Mock CacheService ---

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls []time.Duration
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls = append(c.ttls, ttl)
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	renderedFn func(ctx context.Context, ev *domain.GridRenderedEvent) error
	requestFn  func(ctx context.Context, req *domain.GridRequest) error
}

func (m *mockPublisher) PublishGridRendered(ctx context.Context, ev *domain.GridRenderedEvent) error {
	if m.renderedFn != nil {
		return m.renderedFn(ctx, ev)
	}
	return nil
}

func (m *mockPublisher) PublishRenderRequest(ctx context.Context, req *domain.GridRequest) error {
	if m.requestFn != nil {
		return m.requestFn(ctx, req)
	}
	return nil
}

// --- Tests ---

func testOptions() usecases.GridOptions {
	opts := usecases.DefaultGridOptions()
	opts.Workers = 4
	opts.CacheTTL = 10 * time.Minute
	return opts
}

func TestGridService_Render(t *testing.T) {
	var events []*domain.GridRenderedEvent
	pub := &mockPublisher{
		renderedFn: func(ctx context.Context, ev *domain.GridRenderedEvent) error {
			events = append(events, ev)
			return nil
		},
	}
	svc := usecases.NewGridService(nil, pub, testOptions())

	res, err := svc.Render(context.Background(), domain.GridRequest{
		Bounds:     domain.BoundingBox{South: 30, North: 40, West: -100, East: -90},
		Zoom:       13,
		Intervals:  []domain.Interval{domain.Interval100K},
		IncludeGZD: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Request.Datum != domain.DatumNAD83 {
		t.Errorf("datum = %q, want nad83 default", res.Request.Datum)
	}
	// lngs -100,-96,-90 and lats 30,32,40
	if len(res.Cells) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(res.Cells))
	}
	wantDesignators := []string{"14R", "15R", "14S", "15S"}
	for i, c := range res.Cells {
		if c.Designator != wantDesignators[i] {
			t.Errorf("cell %d = %s, want %s", i, c.Designator, wantDesignators[i])
		}
	}
	if len(res.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(res.Layers))
	}
	if res.Layers[0].Name != "gzd" || res.Layers[1].Name != "100k" {
		t.Errorf("layer order = %s, %s", res.Layers[0].Name, res.Layers[1].Name)
	}
	for _, l := range res.Layers {
		if len(l.Lines) == 0 {
			t.Errorf("layer %s has no lines", l.Name)
		}
		for i, line := range l.Lines {
			if len(line) == 0 {
				t.Errorf("layer %s line %d is empty", l.Name, i)
			}
		}
	}
	if len(res.Anchors) != 4 {
		t.Errorf("expected one anchor set per cell, got %d", len(res.Anchors))
	}
	if len(res.Skipped) != 0 {
		t.Errorf("unexpected skipped cells: %+v", res.Skipped)
	}
	if res.Cached {
		t.Error("first render should not be cached")
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	lines, points := res.Counts()
	if events[0].Cells != 4 || events[0].Lines != lines || events[0].Points != points {
		t.Errorf("event = %+v, want cells 4 lines %d points %d", events[0], lines, points)
	}
}

func TestGridService_Render_CellOrderMatchesLines(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, testOptions())
	req := domain.GridRequest{
		Bounds:    domain.BoundingBox{South: 30, North: 40, West: -100, East: -90},
		Zoom:      13,
		Intervals: []domain.Interval{domain.Interval100K},
	}

	first, err := svc.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := svc.Render(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		a, b := first.Layers[0].Lines, again.Layers[0].Lines
		if len(a) != len(b) {
			t.Fatalf("line count changed between runs: %d vs %d", len(a), len(b))
		}
		for j := range a {
			if len(a[j]) != len(b[j]) || a[j][0] != b[j][0] {
				t.Fatalf("line %d differs between runs", j)
			}
		}
	}
}

func TestGridService_Render_LayerOrder(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, testOptions())

	res, err := svc.Render(context.Background(), domain.GridRequest{
		Bounds:     domain.BoundingBox{South: 38, North: 39, West: -77, East: -76},
		Zoom:       13,
		Intervals:  []domain.Interval{domain.Interval10K, domain.Interval100K, domain.Interval10K},
		IncludeGZD: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.Interval{domain.IntervalGZD, domain.Interval100K, domain.Interval10K}
	if len(res.Layers) != len(want) {
		t.Fatalf("expected %d layers, got %d", len(want), len(res.Layers))
	}
	for i, iv := range want {
		if res.Layers[i].Interval != iv {
			t.Errorf("layer %d = %d, want %d", i, res.Layers[i].Interval, iv)
		}
	}
	l100, _ := res.Layer(domain.Interval100K)
	l10, _ := res.Layer(domain.Interval10K)
	if len(l100.Lines) == 0 || len(l10.Lines) <= len(l100.Lines) {
		t.Errorf("10k layer should have more lines than 100k: %d vs %d", len(l10.Lines), len(l100.Lines))
	}
}

func TestGridService_Render_DefaultIntervals(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, testOptions())

	res, err := svc.Render(context.Background(), domain.GridRequest{
		Bounds: domain.BoundingBox{South: 38, North: 39, West: -77, East: -76},
		Zoom:   7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Request.IncludeGZD {
		t.Error("zoom 7 defaults should include zone lines")
	}
	if len(res.Layers) != 2 || res.Layers[0].Interval != domain.IntervalGZD || res.Layers[1].Interval != domain.Interval100K {
		t.Errorf("unexpected layers: %+v", res.Request.Intervals)
	}
}

func TestGridService_Render_Cache(t *testing.T) {
	cache := newMemCache()
	published := 0
	pub := &mockPublisher{
		renderedFn: func(ctx context.Context, ev *domain.GridRenderedEvent) error {
			published++
			return nil
		},
	}
	svc := usecases.NewGridService(cache, pub, testOptions())
	req := domain.GridRequest{
		Bounds: domain.BoundingBox{South: 38, North: 39, West: -77, East: -76},
		Zoom:   8,
		Datum:  "NAD27",
	}

	first, err := svc.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached {
		t.Error("first render should miss the cache")
	}
	if len(cache.data) != 1 {
		t.Fatalf("expected 1 cache entry, got %d", len(cache.data))
	}
	if cache.ttls[0] != 10*time.Minute {
		t.Errorf("ttl = %v, want 10m", cache.ttls[0])
	}

	second, err := svc.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached {
		t.Error("second render should hit the cache")
	}
	if second.Request.Datum != domain.DatumNAD27 {
		t.Errorf("datum = %q, want nad27", second.Request.Datum)
	}
	if len(second.Layers) != len(first.Layers) {
		t.Errorf("cached layers = %d, want %d", len(second.Layers), len(first.Layers))
	}
	if published != 1 {
		t.Errorf("expected 1 event, got %d", published)
	}
}

func TestGridService_Render_PublishFailureIgnored(t *testing.T) {
	pub := &mockPublisher{
		renderedFn: func(ctx context.Context, ev *domain.GridRenderedEvent) error {
			return errors.New("nats down")
		},
	}
	svc := usecases.NewGridService(nil, pub, testOptions())

	_, err := svc.Render(context.Background(), domain.GridRequest{
		Bounds: domain.BoundingBox{South: 0, North: 4, West: 0, East: 4},
		Zoom:   3,
	})
	if err != nil {
		t.Fatalf("publish failure should not fail the render: %v", err)
	}
}

func TestGridService_Render_Antimeridian(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, testOptions())

	res, err := svc.Render(context.Background(), domain.GridRequest{
		Bounds:     domain.BoundingBox{South: 0, North: 4, West: 178, East: -178},
		Zoom:       6,
		Intervals:  []domain.Interval{domain.Interval100K},
		IncludeGZD: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(res.Cells))
	}
	if res.Cells[0].Designator != "60N" || res.Cells[1].Designator != "1N" {
		t.Errorf("designators = %s, %s; want 60N, 1N", res.Cells[0].Designator, res.Cells[1].Designator)
	}
	for _, line := range res.Layers[1].Lines {
		for _, p := range line {
			if p.Lon > -170 && p.Lon < 170 {
				t.Fatalf("point %+v is far from the antimeridian", p)
			}
		}
	}
}

func TestGridService_Render_Invalid(t *testing.T) {
	opts := testOptions()
	opts.MaxSpanDegrees = 20
	opts.MaxPoints = 50000
	svc := usecases.NewGridService(nil, nil, opts)

	ok := domain.BoundingBox{South: 38, North: 39, West: -77, East: -76}
	tests := []struct {
		name string
		req  domain.GridRequest
	}{
		{"zoom too high", domain.GridRequest{Bounds: ok, Zoom: 23}},
		{"negative zoom", domain.GridRequest{Bounds: ok, Zoom: -1}},
		{"unknown datum", domain.GridRequest{Bounds: ok, Zoom: 8, Datum: "wgs72"}},
		{"south above north", domain.GridRequest{Bounds: domain.BoundingBox{South: 10, North: 5, West: 0, East: 1}, Zoom: 8}},
		{"latitude out of range", domain.GridRequest{Bounds: domain.BoundingBox{South: -95, North: 5, West: 0, East: 1}, Zoom: 8}},
		{"too wide", domain.GridRequest{Bounds: domain.BoundingBox{South: 0, North: 1, West: 0, East: 30}, Zoom: 8}},
		{"too wide across antimeridian", domain.GridRequest{Bounds: domain.BoundingBox{South: 0, North: 1, West: 160, East: -160}, Zoom: 8}},
		{"unsupported interval", domain.GridRequest{Bounds: ok, Zoom: 8, Intervals: []domain.Interval{5000}}},
		{"too many points", domain.GridRequest{Bounds: domain.BoundingBox{South: 30, North: 40, West: -100, East: -90}, Zoom: 16, Intervals: []domain.Interval{domain.Interval1K}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Render(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, usecases.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
			if !usecases.IsClientError(err) {
				t.Errorf("IsClientError(%v) = false", err)
			}
		})
	}
}

func TestGridService_Render_Cancelled(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Render(ctx, domain.GridRequest{
		Bounds: domain.BoundingBox{South: 30, North: 40, West: -100, East: -90},
		Zoom:   8,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGridService_Zones(t *testing.T) {
	svc := usecases.NewGridService(nil, nil, testOptions())

	zones, err := svc.Zones(context.Background(), domain.BoundingBox{South: 56, North: 64, West: 0, East: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Norway: 31V is narrowed to [0,3], 32V widened to [3,12]
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if zones[0].Designator != "31V" || zones[1].Designator != "32V" {
		t.Errorf("designators = %s, %s", zones[0].Designator, zones[1].Designator)
	}

	if _, err := svc.Zones(context.Background(), domain.BoundingBox{South: 5, North: 1}); !usecases.IsClientError(err) {
		t.Errorf("expected client error, got %v", err)
	}
}

func TestGridService_Enqueue(t *testing.T) {
	var queued *domain.GridRequest
	pub := &mockPublisher{
		requestFn: func(ctx context.Context, req *domain.GridRequest) error {
			queued = req
			return nil
		},
	}
	svc := usecases.NewGridService(nil, pub, testOptions())

	req, err := svc.Enqueue(context.Background(), domain.GridRequest{
		Bounds: domain.BoundingBox{South: 38, North: 39, West: -78, East: -77},
		Zoom:   11,
		Datum:  "NAD27",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queued == nil {
		t.Fatal("request was not published")
	}
	if queued.Datum != domain.DatumNAD27 || req.Datum != domain.DatumNAD27 {
		t.Errorf("datum = %q, want nad27", queued.Datum)
	}
	if len(queued.Intervals) == 0 || queued.Intervals[0] != domain.IntervalGZD {
		t.Errorf("intervals = %v, want the zoom 11 defaults with zone lines first", queued.Intervals)
	}

	if _, err := svc.Enqueue(context.Background(), domain.GridRequest{Zoom: 99}); !errors.Is(err, usecases.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}

	noQueue := usecases.NewGridService(nil, nil, testOptions())
	if _, err := noQueue.Enqueue(context.Background(), req); err == nil || usecases.IsClientError(err) {
		t.Errorf("err = %v, want a server error without a queue", err)
	}
}
