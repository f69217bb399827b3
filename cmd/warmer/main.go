package main

import (
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/usngrid/internal/adapters/valkey"
	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/usecases"
	"github.com/samirrijal/usngrid/internal/pkg/config"
	"github.com/samirrijal/usngrid/internal/pkg/logging"
	"github.com/samirrijal/usngrid/internal/workflows"
)

// warmer is the Temporal worker for the cache warm workflow.
func main() {
	cfg, err := config.Load("usngrid-warmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    sdklog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	gridSvc := usecases.NewGridService(cache, nil, usecases.GridOptions{
		Datum:          domain.Datum(cfg.Grid.Datum),
		Margin:         cfg.Grid.MarginDegrees,
		Workers:        cfg.Grid.Workers,
		CacheTTL:       cfg.Grid.CacheTTLDuration(),
		MaxSpanDegrees: cfg.Grid.MaxSpanDegrees,
		MaxPoints:      cfg.Grid.MaxPoints,
	})

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.WarmCacheWorkflow)
	w.RegisterActivity(&workflows.WarmCacheActivities{Grid: gridSvc})

	slog.Info("warmer worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
