package http

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by /v1/health. Release builds set it with -ldflags.
var Version = ""

func buildVersion() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := buildVersion()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Truncate(time.Second).String(),
			"version": version,
			"go":      runtime.Version(),
		})
	}
}

type readinessCheck struct {
	name     string
	required bool
	check    func(ctx context.Context) string // "" when configured and healthy
	present  bool
}

// ReadyHandler checks the database, NATS and the grid cache. Only the database
// is required: without NATS render jobs are refused and without the cache
// grids render uncached.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := []readinessCheck{
		{
			name:     "database",
			required: true,
			present:  deps.DB != nil,
			check: func(ctx context.Context) string {
				if err := deps.DB.Pool.Ping(ctx); err != nil {
					return "error: " + err.Error()
				}
				return ""
			},
		},
		{
			name:    "nats",
			present: deps.NATS != nil,
			check: func(ctx context.Context) string {
				if !deps.NATS.IsConnected() {
					return "disconnected"
				}
				return ""
			},
		},
		{
			name:    "cache",
			present: deps.Cache != nil,
			check: func(ctx context.Context) string {
				if err := deps.Cache.Ping(ctx); err != nil {
					return "error: " + err.Error()
				}
				return ""
			},
		},
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for _, rc := range checks {
			switch {
			case !rc.present:
				results[rc.name] = "not configured"
				if rc.required {
					ready = false
				}
			default:
				if problem := rc.check(ctx); problem != "" {
					results[rc.name] = problem
					ready = false
				} else {
					results[rc.name] = "ok"
				}
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"checks": results,
			})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	}
}
