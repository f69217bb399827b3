package geospatial

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLatitude is returned for latitudes outside the projection domain.
	ErrInvalidLatitude = errors.New("invalid latitude")
	// ErrInvalidLongitude is returned for longitudes outside [-180, 360].
	ErrInvalidLongitude = errors.New("invalid longitude")
	// ErrZoneLookup is returned when no UTM zone exists for a point.
	ErrZoneLookup = errors.New("zone lookup failed")
)

// CoordinateError carries the coordinate that failed a conversion.
type CoordinateError struct {
	Op  string
	Lat float64
	Lon float64
	Err error
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%s: %v (lat=%.6f lon=%.6f)", e.Op, e.Err, e.Lat, e.Lon)
}

func (e *CoordinateError) Unwrap() error { return e.Err }
