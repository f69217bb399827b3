package workflows_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/usecases"
	"github.com/samirrijal/usngrid/internal/workflows"
)

type mockRenderer struct {
	calls    atomic.Int32
	renderFn func(ctx context.Context, req domain.GridRequest) (*domain.GridResult, error)
}

func (m *mockRenderer) Render(ctx context.Context, req domain.GridRequest) (*domain.GridResult, error) {
	m.calls.Add(1)
	return m.renderFn(ctx, req)
}

func gridResult(lines int, cached bool) *domain.GridResult {
	layer := domain.GridLayer{Interval: domain.Interval100K, Name: "100k"}
	for i := 0; i < lines; i++ {
		layer.Lines = append(layer.Lines, domain.GridLine{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 0}})
	}
	return &domain.GridResult{
		Cells:  []domain.GridZone{{Designator: "31N"}},
		Layers: []domain.GridLayer{layer},
		Cached: cached,
	}
}

func TestWarmCacheWorkflow(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	renderer := &mockRenderer{
		renderFn: func(ctx context.Context, req domain.GridRequest) (*domain.GridResult, error) {
			switch req.Zoom {
			case 99:
				return nil, fmt.Errorf("%w: zoom out of range", usecases.ErrInvalidRequest)
			case 8:
				return gridResult(2, true), nil
			default:
				return gridResult(3, false), nil
			}
		},
	}
	env.RegisterActivity(&workflows.WarmCacheActivities{Grid: renderer})

	env.ExecuteWorkflow(workflows.WarmCacheWorkflow, workflows.WarmCacheInput{
		Requests: []domain.GridRequest{
			{Zoom: 7},
			{Zoom: 8},
			{Zoom: 99},
		},
	})

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}

	var res workflows.WarmCacheResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatal(err)
	}
	if res.Rendered != 2 || res.Failed != 1 || res.Cached != 1 || res.Lines != 5 {
		t.Errorf("result = %+v, want 2 rendered, 1 failed, 1 cached, 5 lines", res)
	}
	// the invalid request is not retried
	if got := renderer.calls.Load(); got != 3 {
		t.Errorf("render calls = %d, want 3", got)
	}
}

func TestWarmCacheWorkflow_RetriesServerErrors(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	renderer := &mockRenderer{}
	renderer.renderFn = func(ctx context.Context, req domain.GridRequest) (*domain.GridResult, error) {
		if renderer.calls.Load() < 3 {
			return nil, errors.New("cache unavailable")
		}
		return gridResult(1, false), nil
	}
	env.RegisterActivity(&workflows.WarmCacheActivities{Grid: renderer})

	env.ExecuteWorkflow(workflows.WarmCacheWorkflow, workflows.WarmCacheInput{
		Requests: []domain.GridRequest{{Zoom: 9}},
	})

	var res workflows.WarmCacheResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatal(err)
	}
	if res.Rendered != 1 || res.Failed != 0 {
		t.Errorf("result = %+v, want the third attempt to succeed", res)
	}
	if got := renderer.calls.Load(); got != 3 {
		t.Errorf("render calls = %d, want 3", got)
	}
}

func TestWarmCacheWorkflow_Empty(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterActivity(&workflows.WarmCacheActivities{})

	env.ExecuteWorkflow(workflows.WarmCacheWorkflow, workflows.WarmCacheInput{})

	var res workflows.WarmCacheResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatal(err)
	}
	if res != (workflows.WarmCacheResult{}) {
		t.Errorf("result = %+v, want zero", res)
	}
}
