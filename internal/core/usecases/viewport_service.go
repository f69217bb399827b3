package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/ports"
)

const maxViewportName = 120

// ViewportPage is one page of saved viewports.
type ViewportPage struct {
	Items  []domain.SavedViewport
	Limit  int
	Offset int
	Total  int
}

// ViewportService manages saved viewports and renders their grids.
type ViewportService struct {
	viewports ports.ViewportRepository
	grid      ports.GridRenderer
}

// NewViewportService creates a new ViewportService.
func NewViewportService(viewports ports.ViewportRepository, grid ports.GridRenderer) *ViewportService {
	return &ViewportService{viewports: viewports, grid: grid}
}

// Create validates and stores a viewport. The repository assigns ID and CreatedAt.
func (s *ViewportService) Create(ctx context.Context, v *domain.SavedViewport) error {
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return invalidf("name must not be empty")
	}
	if len(v.Name) > maxViewportName {
		return invalidf("name longer than %d characters", maxViewportName)
	}
	if err := ValidateBounds(v.Bounds); err != nil {
		return err
	}
	if err := ValidateZoom(v.Zoom); err != nil {
		return err
	}
	datum, err := domain.ParseDatum(string(v.Datum))
	if err != nil {
		return invalidf("%v", err)
	}
	v.Datum = datum

	intervals, err := normalizeIntervals(v.Intervals, false)
	if err != nil {
		return err
	}
	// zone lines are always drawn for saved viewports
	v.Intervals = intervals[:0]
	for _, iv := range intervals {
		if iv != domain.IntervalGZD {
			v.Intervals = append(v.Intervals, iv)
		}
	}

	if err := s.viewports.Create(ctx, v); err != nil {
		return fmt.Errorf("create viewport: %w", err)
	}
	return nil
}

// Get returns a saved viewport by ID.
func (s *ViewportService) Get(ctx context.Context, id string) (*domain.SavedViewport, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.viewports.GetByID(ctx, id)
}

// List returns a page of saved viewports, newest first, with the total count.
// limit and offset are clamped and returned in the page.
func (s *ViewportService) List(ctx context.Context, limit, offset int) (ViewportPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.viewports.List(ctx, limit, offset)
	if err != nil {
		return ViewportPage{}, fmt.Errorf("list viewports: %w", err)
	}
	total, err := s.viewports.Count(ctx)
	if err != nil {
		return ViewportPage{}, fmt.Errorf("count viewports: %w", err)
	}
	return ViewportPage{Items: items, Limit: limit, Offset: offset, Total: total}, nil
}

// Delete removes a saved viewport.
func (s *ViewportService) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.viewports.Delete(ctx, id)
}

// Render renders the grid of a saved viewport.
func (s *ViewportService) Render(ctx context.Context, id string) (*domain.GridResult, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.grid.Render(ctx, v.Request())
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return invalidf("viewport id %q is not a UUID", id)
	}
	return nil
}
