package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/usngrid/internal/adapters/http"
	natsadapter "github.com/samirrijal/usngrid/internal/adapters/nats"
	"github.com/samirrijal/usngrid/internal/adapters/postgres"
	"github.com/samirrijal/usngrid/internal/adapters/valkey"
	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/ports"
	"github.com/samirrijal/usngrid/internal/core/usecases"
	"github.com/samirrijal/usngrid/internal/pkg/config"
	"github.com/samirrijal/usngrid/internal/pkg/logging"
	"github.com/samirrijal/usngrid/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("usngrid-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	// Cache
	var gridCache ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, rendering uncached", "error", err)
	} else {
		defer cache.Close()
		gridCache = cache
	}

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, render queue and events disabled", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	gridSvc := usecases.NewGridService(gridCache, events, usecases.GridOptions{
		Datum:          domain.Datum(cfg.Grid.Datum),
		Margin:         cfg.Grid.MarginDegrees,
		Workers:        cfg.Grid.Workers,
		CacheTTL:       cfg.Grid.CacheTTLDuration(),
		MaxSpanDegrees: cfg.Grid.MaxSpanDegrees,
		MaxPoints:      cfg.Grid.MaxPoints,
	})

	deps := &http.Dependencies{
		Grid:      gridSvc,
		Convert:   usecases.NewConvertService(),
		Viewports: usecases.NewViewportService(postgres.NewViewportRepo(db), gridSvc),
		DB:        db,
		Cache:     cache,
	}
	if pub != nil {
		deps.NATS = pub.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "usngrid API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		ExposeHeaders:    "X-Request-ID, X-Grid-Cache, Link, Location",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
