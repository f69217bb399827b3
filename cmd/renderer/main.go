package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/samirrijal/usngrid/internal/adapters/nats"
	"github.com/samirrijal/usngrid/internal/adapters/valkey"
	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/ports"
	"github.com/samirrijal/usngrid/internal/core/usecases"
	"github.com/samirrijal/usngrid/internal/pkg/config"
	"github.com/samirrijal/usngrid/internal/pkg/logging"
	"github.com/samirrijal/usngrid/internal/pkg/metrics"
	"github.com/samirrijal/usngrid/internal/pkg/telemetry"
)

// renderer consumes queued render requests and warms the grid cache.
func main() {
	cfg, err := config.Load("usngrid-renderer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// without a cache the rendered grids would be thrown away
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats publisher unavailable, rendered events disabled", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	gridSvc := usecases.NewGridService(cache, events, usecases.GridOptions{
		Datum:          domain.Datum(cfg.Grid.Datum),
		Margin:         cfg.Grid.MarginDegrees,
		Workers:        cfg.Grid.Workers,
		CacheTTL:       cfg.Grid.CacheTTLDuration(),
		MaxSpanDegrees: cfg.Grid.MaxSpanDegrees,
		MaxPoints:      cfg.Grid.MaxPoints,
	})

	err = sub.SubscribeRenderRequests(ctx, func(ctx context.Context, req *domain.GridRequest) error {
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		res, err := gridSvc.Render(ctx, *req)
		switch {
		case err == nil:
			metrics.RenderRequestsConsumed.WithLabelValues("ok").Inc()
			lines, _ := res.Counts()
			slog.Info("render request done",
				"zoom", req.Zoom,
				"cells", len(res.Cells),
				"lines", lines,
				"cached", res.Cached,
				"duration", res.Duration,
			)
			return nil
		case usecases.IsClientError(err):
			// redelivery cannot fix a bad request
			metrics.RenderRequestsConsumed.WithLabelValues("rejected").Inc()
			slog.Warn("render request rejected", "error", err)
			return nil
		default:
			metrics.RenderRequestsConsumed.WithLabelValues("error").Inc()
			slog.Error("render request failed", "error", err)
			return err
		}
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("renderer started", "subject", natsadapter.SubjectRenderRequests)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("renderer stopping", "signal", sig.String())
}
