package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "usngrid",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "usngrid",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "usngrid",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Grid metrics
	GridRenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "usngrid",
		Subsystem: "grid",
		Name:      "render_duration_seconds",
		Help:      "Summed cell generation time of one grid layer per render",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"layer"})

	GridLinesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "usngrid",
		Subsystem: "grid",
		Name:      "lines_generated_total",
		Help:      "Total clipped grid lines generated",
	}, []string{"layer"})

	GridPointsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "usngrid",
		Subsystem: "grid",
		Name:      "points_generated_total",
		Help:      "Total points emitted on clipped grid lines",
	}, []string{"layer"})

	GridCellsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "usngrid",
		Subsystem: "grid",
		Name:      "cells_skipped_total",
		Help:      "Total viewport cells skipped because of projection errors",
	}, []string{"layer", "reason"})

	RenderRequestsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "usngrid",
		Subsystem: "renderer",
		Name:      "requests_consumed_total",
		Help:      "Render requests consumed from the work queue",
	}, []string{"status"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "usngrid",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "usngrid",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "usngrid",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "usngrid",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "usngrid",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "usngrid",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})

	DBPoolEmptyAcquires = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "usngrid",
		Subsystem: "db",
		Name:      "pool_empty_acquires_total",
		Help:      "Acquires that had to wait for a new or released connection",
	})

	DBPoolCanceledAcquires = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "usngrid",
		Subsystem: "db",
		Name:      "pool_canceled_acquires_total",
		Help:      "Acquires canceled by their context",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat reported as metrics.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
	EmptyAcquireCount() int64
	CanceledAcquireCount() int64
}

var lastPoolStat struct {
	sync.Mutex
	empty, canceled int64
}

// UpdateDBPoolMetrics publishes pool gauges and advances the acquire counters
// by the change since the previous call.
func UpdateDBPoolMetrics(stat PoolStat) {
	DBPoolConnsAcquired.Set(float64(stat.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(stat.IdleConns()))
	DBPoolConnsOpen.Set(float64(stat.TotalConns()))

	lastPoolStat.Lock()
	defer lastPoolStat.Unlock()
	if d := stat.EmptyAcquireCount() - lastPoolStat.empty; d > 0 {
		DBPoolEmptyAcquires.Add(float64(d))
	}
	if d := stat.CanceledAcquireCount() - lastPoolStat.canceled; d > 0 {
		DBPoolCanceledAcquires.Add(float64(d))
	}
	lastPoolStat.empty = stat.EmptyAcquireCount()
	lastPoolStat.canceled = stat.CanceledAcquireCount()
}
