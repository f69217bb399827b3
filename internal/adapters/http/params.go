package http

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/usecases"
)

const (
	formatJSON    = "json"
	formatGeoJSON = "geojson"
)

// queryFloat parses a required, finite float query parameter.
func queryFloat(c *fiber.Ctx, name string) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return v, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func parseBounds(c *fiber.Ctx) (domain.BoundingBox, error) {
	var b domain.BoundingBox
	var err error
	if b.South, err = queryFloat(c, "south"); err != nil {
		return b, err
	}
	if b.North, err = queryFloat(c, "north"); err != nil {
		return b, err
	}
	if b.West, err = queryFloat(c, "west"); err != nil {
		return b, err
	}
	if b.East, err = queryFloat(c, "east"); err != nil {
		return b, err
	}
	return b, nil
}

// parseIntervals accepts a comma-separated list such as "100k,10k".
func parseIntervals(raw string) ([]domain.Interval, error) {
	var out []domain.Interval
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		iv, err := usecases.ParseInterval(part)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, nil
}

// parseGridOptions reads zoom, datum, intervals and gzd. Without an explicit
// interval list the zoom level decides which layers are drawn.
func parseGridOptions(c *fiber.Ctx, req *domain.GridRequest) error {
	raw := strings.TrimSpace(c.Query("zoom"))
	if raw == "" {
		return fmt.Errorf("zoom is required")
	}
	zoom, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("zoom must be an integer, got %q", raw)
	}
	req.Zoom = zoom
	req.Datum = domain.Datum(c.Query("datum"))

	if req.Intervals, err = parseIntervals(c.Query("intervals")); err != nil {
		return err
	}
	req.IncludeGZD = c.QueryBool("gzd", true)
	return nil
}

func parseFormat(c *fiber.Ctx) (string, error) {
	switch f := strings.ToLower(c.Query("format", formatJSON)); f {
	case formatJSON, formatGeoJSON:
		return f, nil
	default:
		return "", fmt.Errorf("format must be json or geojson, got %q", f)
	}
}
