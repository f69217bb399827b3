package geospatial

import (
	"fmt"

	"github.com/samirrijal/usngrid/internal/core/domain"
)

// Ellipsoid holds the reference ellipsoid parameters used by the UTM series.
type Ellipsoid struct {
	Name             string
	EquatorialRadius float64 // meters
	EccSquared       float64 // first eccentricity squared
}

var (
	// GRS80 is the NAD83 ellipsoid.
	GRS80 = Ellipsoid{Name: "GRS80", EquatorialRadius: 6378137.0, EccSquared: 0.006694380023}
	// Clarke1866 is the NAD27 ellipsoid.
	Clarke1866 = Ellipsoid{Name: "Clarke1866", EquatorialRadius: 6378206.4, EccSquared: 0.006768658}
)

// EllipsoidFor returns the ellipsoid for a datum.
func EllipsoidFor(d domain.Datum) (Ellipsoid, error) {
	switch d {
	case domain.DatumNAD83, "":
		return GRS80, nil
	case domain.DatumNAD27:
		return Clarke1866, nil
	default:
		return Ellipsoid{}, fmt.Errorf("no ellipsoid for datum %q", d)
	}
}
