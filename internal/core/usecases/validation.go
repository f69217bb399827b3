package usecases

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/pkg/geospatial"
)

// ErrInvalidRequest marks errors caused by bad caller input.
var ErrInvalidRequest = errors.New("invalid request")

const (
	MinZoom = 0
	MaxZoom = 22
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, geospatial.ErrInvalidLatitude) ||
		errors.Is(err, geospatial.ErrInvalidLongitude) ||
		errors.Is(err, geospatial.ErrZoneLookup)
}

// ValidateBounds checks a viewport. West may exceed East for a box that
// crosses the antimeridian.
func ValidateBounds(b domain.BoundingBox) error {
	for _, v := range []float64{b.South, b.North, b.West, b.East} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidf("bounds must be finite")
		}
	}
	if b.South < -90 || b.North > 90 {
		return invalidf("latitude must be within [-90, 90]")
	}
	if b.West < -180 || b.West > 180 || b.East < -180 || b.East > 180 {
		return invalidf("longitude must be within [-180, 180]")
	}
	if b.South > b.North {
		return invalidf("south %.6f is north of north %.6f", b.South, b.North)
	}
	return nil
}

// LonSpan returns the east-west extent of b in degrees, across the antimeridian if needed.
func LonSpan(b domain.BoundingBox) float64 {
	if b.West > b.East {
		return 360 - b.West + b.East
	}
	return b.East - b.West
}

// ValidateZoom checks a zoom level.
func ValidateZoom(zoom int) error {
	if zoom < MinZoom || zoom > MaxZoom {
		return invalidf("zoom must be within [%d, %d], got %d", MinZoom, MaxZoom, zoom)
	}
	return nil
}

var validIntervals = map[domain.Interval]bool{
	domain.IntervalGZD:  true,
	domain.Interval100K: true,
	domain.Interval10K:  true,
	domain.Interval1K:   true,
}

// ParseInterval accepts a layer name ("gzd", "100k", "10k", "1k") or meters.
func ParseInterval(s string) (domain.Interval, error) {
	switch s {
	case "gzd", "zones":
		return domain.IntervalGZD, nil
	case "100k", "100000":
		return domain.Interval100K, nil
	case "10k", "10000":
		return domain.Interval10K, nil
	case "1k", "1000":
		return domain.Interval1K, nil
	}
	return 0, invalidf("unknown interval %q", s)
}

// normalizeIntervals drops duplicates and orders layers: zone lines first, then
// coarse to fine.
func normalizeIntervals(in []domain.Interval, includeGZD bool) ([]domain.Interval, error) {
	seen := make(map[domain.Interval]bool, len(in)+1)
	out := make([]domain.Interval, 0, len(in)+1)
	if includeGZD {
		seen[domain.IntervalGZD] = true
		out = append(out, domain.IntervalGZD)
	}
	for _, iv := range in {
		if !validIntervals[iv] {
			return nil, invalidf("unsupported interval %d", iv)
		}
		if seen[iv] {
			continue
		}
		seen[iv] = true
		out = append(out, iv)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i] == domain.IntervalGZD {
			return out[j] != domain.IntervalGZD
		}
		if out[j] == domain.IntervalGZD {
			return false
		}
		return out[i] > out[j]
	})
	return out, nil
}
