package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/usngrid/internal/core/domain"
)

// WarmCacheWorkflowName is the registered workflow type.
const WarmCacheWorkflowName = "WarmCacheWorkflow"

// WarmCacheInput is the input for the cache warm workflow.
type WarmCacheInput struct {
	Requests []domain.GridRequest
}

// WarmCacheResult reports how many viewports were rendered.
type WarmCacheResult struct {
	Rendered int
	Failed   int
	Cached   int // already cached before this run
	Lines    int
	Skipped  int // cells that could not be gridded
}

// WarmCacheWorkflow renders every requested viewport once so later requests
// are served from the cache. Renders run as parallel activities; a failed
// render is counted and does not fail the workflow.
func WarmCacheWorkflow(ctx workflow.Context, input WarmCacheInput) (WarmCacheResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting cache warm workflow", "requests", len(input.Requests))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{"InvalidRequest"},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	futures := make([]workflow.Future, len(input.Requests))
	for i, req := range input.Requests {
		futures[i] = workflow.ExecuteActivity(ctx, "RenderGrid", req)
	}

	var result WarmCacheResult
	for i, f := range futures {
		var summary RenderSummary
		if err := f.Get(ctx, &summary); err != nil {
			logger.Warn("viewport render failed", "index", i, "error", err)
			result.Failed++
			continue
		}
		result.Rendered++
		result.Lines += summary.Lines
		result.Skipped += summary.Skipped
		if summary.Cached {
			result.Cached++
		}
	}

	logger.Info("Cache warm finished", "rendered", result.Rendered, "failed", result.Failed)
	return result, nil
}
