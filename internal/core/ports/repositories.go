package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/usngrid/internal/core/domain"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// ViewportRepository persists saved viewports.
type ViewportRepository interface {
	Create(ctx context.Context, v *domain.SavedViewport) error
	GetByID(ctx context.Context, id string) (*domain.SavedViewport, error)
	List(ctx context.Context, limit, offset int) ([]domain.SavedViewport, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}
