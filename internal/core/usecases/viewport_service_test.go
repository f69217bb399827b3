package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/ports"
	"github.com/samirrijal/usngrid/internal/core/usecases"
)

const testViewportID = "6f1c2b9e-3d4a-4c5b-9e8f-0a1b2c3d4e5f"

// --- Mock ViewportRepository ---

type mockViewportRepo struct {
	createFn  func(ctx context.Context, v *domain.SavedViewport) error
	getByIDFn func(ctx context.Context, id string) (*domain.SavedViewport, error)
	listFn    func(ctx context.Context, limit, offset int) ([]domain.SavedViewport, error)
	deleteFn  func(ctx context.Context, id string) error
	count     int
}

func (m *mockViewportRepo) Create(ctx context.Context, v *domain.SavedViewport) error {
	if m.createFn != nil {
		return m.createFn(ctx, v)
	}
	return nil
}

func (m *mockViewportRepo) GetByID(ctx context.Context, id string) (*domain.SavedViewport, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ports.ErrNotFound
}

func (m *mockViewportRepo) List(ctx context.Context, limit, offset int) ([]domain.SavedViewport, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockViewportRepo) Count(ctx context.Context) (int, error) {
	return m.count, nil
}

func (m *mockViewportRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock GridRenderer ---

type mockRenderer struct {
	renderFn func(ctx context.Context, req domain.GridRequest) (*domain.GridResult, error)
}

func (m *mockRenderer) Render(ctx context.Context, req domain.GridRequest) (*domain.GridResult, error) {
	if m.renderFn != nil {
		return m.renderFn(ctx, req)
	}
	return &domain.GridResult{Request: req}, nil
}

// --- Tests ---

func TestViewportService_Create(t *testing.T) {
	var stored *domain.SavedViewport
	repo := &mockViewportRepo{
		createFn: func(ctx context.Context, v *domain.SavedViewport) error {
			v.ID = testViewportID
			v.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			stored = v
			return nil
		},
	}
	svc := usecases.NewViewportService(repo, &mockRenderer{})

	v := &domain.SavedViewport{
		Name:      "  Potomac  ",
		Bounds:    domain.BoundingBox{South: 38, North: 39, West: -77.5, East: -76.5},
		Zoom:      11,
		Datum:     "NAD83",
		Intervals: []domain.Interval{domain.Interval1K, domain.IntervalGZD, domain.Interval10K},
	}
	if err := svc.Create(context.Background(), v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil || stored.ID != testViewportID {
		t.Fatalf("repository not called with the viewport")
	}
	if v.Name != "Potomac" {
		t.Errorf("name = %q, want trimmed", v.Name)
	}
	if v.Datum != domain.DatumNAD83 {
		t.Errorf("datum = %q, want nad83", v.Datum)
	}
	want := []domain.Interval{domain.Interval10K, domain.Interval1K}
	if len(v.Intervals) != len(want) || v.Intervals[0] != want[0] || v.Intervals[1] != want[1] {
		t.Errorf("intervals = %v, want %v", v.Intervals, want)
	}
}

func TestViewportService_Create_Invalid(t *testing.T) {
	called := false
	repo := &mockViewportRepo{
		createFn: func(ctx context.Context, v *domain.SavedViewport) error {
			called = true
			return nil
		},
	}
	svc := usecases.NewViewportService(repo, &mockRenderer{})
	ok := domain.BoundingBox{South: 38, North: 39, West: -77, East: -76}

	tests := []struct {
		name string
		v    domain.SavedViewport
	}{
		{"empty name", domain.SavedViewport{Name: "  ", Bounds: ok, Zoom: 8}},
		{"bad bounds", domain.SavedViewport{Name: "x", Bounds: domain.BoundingBox{South: 5, North: 1}, Zoom: 8}},
		{"bad zoom", domain.SavedViewport{Name: "x", Bounds: ok, Zoom: 40}},
		{"bad datum", domain.SavedViewport{Name: "x", Bounds: ok, Zoom: 8, Datum: "ed50"}},
		{"bad interval", domain.SavedViewport{Name: "x", Bounds: ok, Zoom: 8, Intervals: []domain.Interval{42}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.v
			if err := svc.Create(context.Background(), &v); !errors.Is(err, usecases.ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}
	if called {
		t.Error("repository should not be called for invalid viewports")
	}
}

func TestViewportService_Create_RepoError(t *testing.T) {
	repo := &mockViewportRepo{
		createFn: func(ctx context.Context, v *domain.SavedViewport) error {
			return errors.New("connection refused")
		},
	}
	svc := usecases.NewViewportService(repo, &mockRenderer{})

	err := svc.Create(context.Background(), &domain.SavedViewport{
		Name:   "x",
		Bounds: domain.BoundingBox{South: 0, North: 1, West: 0, East: 1},
		Zoom:   5,
	})
	if err == nil || usecases.IsClientError(err) {
		t.Errorf("err = %v, want a server error", err)
	}
}

func TestViewportService_Get(t *testing.T) {
	repo := &mockViewportRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.SavedViewport, error) {
			return &domain.SavedViewport{ID: id, Name: "Potomac"}, nil
		},
	}
	svc := usecases.NewViewportService(repo, &mockRenderer{})

	v, err := svc.Get(context.Background(), testViewportID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Name != "Potomac" {
		t.Errorf("name = %q", v.Name)
	}

	if _, err := svc.Get(context.Background(), "not-a-uuid"); !errors.Is(err, usecases.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestViewportService_Get_NotFound(t *testing.T) {
	svc := usecases.NewViewportService(&mockViewportRepo{}, &mockRenderer{})

	if _, err := svc.Get(context.Background(), testViewportID); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestViewportService_List_ClampLimit(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 20, 0},
		{-3, -1, 20, 0},
		{500, 10, 20, 10},
		{50, 5, 50, 5},
	}
	for _, tt := range tests {
		var gotLimit, gotOffset int
		repo := &mockViewportRepo{
			listFn: func(ctx context.Context, limit, offset int) ([]domain.SavedViewport, error) {
				gotLimit, gotOffset = limit, offset
				return nil, nil
			},
		}
		repo.count = 7
		svc := usecases.NewViewportService(repo, &mockRenderer{})
		page, err := svc.List(context.Background(), tt.limit, tt.offset)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotLimit != tt.wantLimit || gotOffset != tt.wantOffset {
			t.Errorf("List(%d, %d) passed %d, %d; want %d, %d",
				tt.limit, tt.offset, gotLimit, gotOffset, tt.wantLimit, tt.wantOffset)
		}
		if page.Limit != tt.wantLimit || page.Offset != tt.wantOffset || page.Total != 7 {
			t.Errorf("page = %+v", page)
		}
	}
}

func TestViewportService_Delete(t *testing.T) {
	var deleted string
	repo := &mockViewportRepo{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := usecases.NewViewportService(repo, &mockRenderer{})

	if err := svc.Delete(context.Background(), testViewportID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != testViewportID {
		t.Errorf("deleted %q", deleted)
	}
	if err := svc.Delete(context.Background(), ""); !errors.Is(err, usecases.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestViewportService_Render(t *testing.T) {
	saved := &domain.SavedViewport{
		ID:        testViewportID,
		Bounds:    domain.BoundingBox{South: 38, North: 39, West: -77, East: -76},
		Zoom:      10,
		Datum:     domain.DatumNAD27,
		Intervals: []domain.Interval{domain.Interval10K},
	}
	repo := &mockViewportRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.SavedViewport, error) {
			return saved, nil
		},
	}
	var got domain.GridRequest
	renderer := &mockRenderer{
		renderFn: func(ctx context.Context, req domain.GridRequest) (*domain.GridResult, error) {
			got = req
			return &domain.GridResult{Request: req}, nil
		},
	}
	svc := usecases.NewViewportService(repo, renderer)

	if _, err := svc.Render(context.Background(), testViewportID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Bounds != saved.Bounds || got.Zoom != 10 || got.Datum != domain.DatumNAD27 {
		t.Errorf("request = %+v", got)
	}
	if !got.IncludeGZD {
		t.Error("saved viewports always include zone lines")
	}
}
