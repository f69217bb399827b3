package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/ports"
	"github.com/samirrijal/usngrid/internal/core/usecases"
)

// RenderSummary is what a RenderGrid activity reports back to the workflow.
// Grid geometry stays in the cache; only counts cross the Temporal boundary.
type RenderSummary struct {
	Cells   int
	Lines   int
	Points  int
	Skipped int
	Cached  bool
}

// WarmCacheActivities holds the activity implementations for the cache warm workflow.
type WarmCacheActivities struct {
	Grid ports.GridRenderer
}

// RenderGrid renders one viewport, which stores the result in the grid cache.
// Invalid requests fail without retry.
func (a *WarmCacheActivities) RenderGrid(ctx context.Context, req domain.GridRequest) (RenderSummary, error) {
	logger := activity.GetLogger(ctx)

	res, err := a.Grid.Render(ctx, req)
	if err != nil {
		if usecases.IsClientError(err) {
			return RenderSummary{}, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidRequest", err)
		}
		return RenderSummary{}, fmt.Errorf("render grid: %w", err)
	}

	lines, points := res.Counts()
	logger.Info("viewport rendered",
		"zoom", req.Zoom,
		"cells", len(res.Cells),
		"lines", lines,
		"cached", res.Cached,
	)
	return RenderSummary{
		Cells:   len(res.Cells),
		Lines:   lines,
		Points:  points,
		Skipped: len(res.Skipped),
		Cached:  res.Cached,
	}, nil
}
