package ports

import (
	"context"
	"time"

	"github.com/samirrijal/usngrid/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishGridRendered(ctx context.Context, event *domain.GridRenderedEvent) error
	PublishRenderRequest(ctx context.Context, req *domain.GridRequest) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeRenderRequests(ctx context.Context, handler func(ctx context.Context, req *domain.GridRequest) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GridRenderer renders the grid overlay of a viewport.
type GridRenderer interface {
	Render(ctx context.Context, req domain.GridRequest) (*domain.GridResult, error)
}
