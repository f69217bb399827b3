package usecases_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/usecases"
	"github.com/samirrijal/usngrid/internal/pkg/geospatial"
)

func TestConvertService_ToUTM(t *testing.T) {
	svc := usecases.NewConvertService()

	u, err := svc.ToUTM("", 0, -75, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Zone != 18 || u.Letter != "N" {
		t.Errorf("zone = %d%s, want 18N", u.Zone, u.Letter)
	}
	if math.Abs(u.Easting-500000) > 1e-6 || math.Abs(u.Northing) > 1e-6 {
		t.Errorf("got %.3f/%.3f, want 500000/0", u.Easting, u.Northing)
	}

	forced, err := svc.ToUTM(domain.DatumNAD83, 0, -75, 17)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if forced.Zone != 17 || forced.Easting <= 500000 {
		t.Errorf("forced zone 17 = %+v, want easting east of the central meridian", forced)
	}
}

func TestConvertService_ToUTM_Errors(t *testing.T) {
	svc := usecases.NewConvertService()

	tests := []struct {
		name     string
		datum    domain.Datum
		lat, lon float64
		zone     int
		sentinel error
	}{
		{"above 84", domain.DatumNAD83, 85, 0, 0, geospatial.ErrInvalidLatitude},
		{"below -80", domain.DatumNAD83, -81, 0, 0, geospatial.ErrInvalidLatitude},
		{"longitude", domain.DatumNAD83, 10, 400, 0, geospatial.ErrInvalidLongitude},
		{"zone", domain.DatumNAD83, 10, 10, 61, usecases.ErrInvalidRequest},
		{"datum", "osgb36", 10, 10, 0, usecases.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ToUTM(tt.datum, tt.lat, tt.lon, tt.zone)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("err = %v, want %v", err, tt.sentinel)
			}
			if !usecases.IsClientError(err) {
				t.Errorf("IsClientError(%v) = false", err)
			}
		})
	}
}

func TestConvertService_ToGeographic_RoundTrip(t *testing.T) {
	svc := usecases.NewConvertService()

	points := []struct {
		datum    domain.Datum
		lat, lon float64
	}{
		{domain.DatumNAD83, 38.8895, -77.0352},
		{domain.DatumNAD83, -33.8568, 151.2153},
		{domain.DatumNAD27, 60.1699, 24.9384},
		{domain.DatumNAD27, -54.8019, -68.3030},
	}
	for _, p := range points {
		u, err := svc.ToUTM(p.datum, p.lat, p.lon, 0)
		if err != nil {
			t.Fatalf("ToUTM(%v, %v): %v", p.lat, p.lon, err)
		}
		// users supply the false northing south of the equator
		in := usecases.UTMInput{Easting: u.Easting, Northing: u.FalseNorthing(), Zone: u.Zone, Letter: u.Letter}
		got, err := svc.ToGeographic(p.datum, in)
		if err != nil {
			t.Fatalf("ToGeographic(%+v): %v", in, err)
		}
		if math.Abs(got.Lat-p.lat) > 1e-6 || math.Abs(got.Lon-p.lon) > 1e-6 {
			t.Errorf("round trip (%v, %v) -> %+v", p.lat, p.lon, got)
		}
	}
}

func TestConvertService_ToGeographic_Invalid(t *testing.T) {
	svc := usecases.NewConvertService()

	tests := []struct {
		name string
		in   usecases.UTMInput
	}{
		{"zone 0", usecases.UTMInput{Easting: 500000, Northing: 1, Zone: 0, Letter: "N"}},
		{"zone 61", usecases.UTMInput{Easting: 500000, Northing: 1, Zone: 61, Letter: "N"}},
		{"letter I", usecases.UTMInput{Easting: 500000, Northing: 1, Zone: 18, Letter: "I"}},
		{"letter O", usecases.UTMInput{Easting: 500000, Northing: 1, Zone: 18, Letter: "o"}},
		{"two letters", usecases.UTMInput{Easting: 500000, Northing: 1, Zone: 18, Letter: "NS"}},
		{"easting", usecases.UTMInput{Easting: 50, Northing: 1, Zone: 18, Letter: "N"}},
		{"northing", usecases.UTMInput{Easting: 500000, Northing: -1, Zone: 18, Letter: "N"}},
		{"nan", usecases.UTMInput{Easting: math.NaN(), Northing: 1, Zone: 18, Letter: "N"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ToGeographic(domain.DatumNAD83, tt.in); !errors.Is(err, usecases.ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestConvertService_ToGeographic_LowercaseLetter(t *testing.T) {
	svc := usecases.NewConvertService()
	got, err := svc.ToGeographic(domain.DatumNAD83, usecases.UTMInput{Easting: 500000, Northing: 0, Zone: 18, Letter: "n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got.Lat) > 1e-9 || math.Abs(got.Lon+75) > 1e-9 {
		t.Errorf("got %+v, want (0, -75)", got)
	}
}

func TestConvertService_ToUSNG(t *testing.T) {
	svc := usecases.NewConvertService()

	got, err := svc.ToUSNG(domain.DatumNAD83, 38.8895, -77.0352, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "18S UJ 23 06" {
		t.Errorf("ToUSNG = %q, want 18S UJ 23 06", got)
	}

	if _, err := svc.ToUSNG(domain.DatumNAD83, 38.8895, -77.0352, 7); !errors.Is(err, usecases.ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
	if _, err := svc.ToUSNG(domain.DatumNAD83, 86, 0, 3); !errors.Is(err, geospatial.ErrInvalidLatitude) {
		t.Errorf("err = %v, want ErrInvalidLatitude", err)
	}
}

func TestConvertService_ZonesAt(t *testing.T) {
	svc := usecases.NewConvertService()

	tests := []struct {
		name     string
		lat, lon float64
		want     []string
	}{
		{"washington", 38.8895, -77.0352, []string{"18S"}},
		{"norway west coast", 60, 5, []string{"32V"}},
		{"norway narrow 31V", 60, 2, []string{"31V"}},
		{"svalbard", 78, 15, []string{"33X"}},
		{"north limit", 84, 10, []string{"33X"}},
		{"south limit", -80, 10, []string{"32C"}},
		{"zone boundary", 4, 6, []string{"31N", "32N"}},
		{"antimeridian", 0.5, 180, []string{"60N"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zones, err := svc.ZonesAt(tt.lat, tt.lon)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(zones) != len(tt.want) {
				t.Fatalf("ZonesAt(%v, %v) = %+v, want %v", tt.lat, tt.lon, zones, tt.want)
			}
			for i, z := range zones {
				if z.Designator != tt.want[i] {
					t.Errorf("zone %d = %s, want %s", i, z.Designator, tt.want[i])
				}
				if !z.Rect.Contains(domain.GeoPoint{Lat: tt.lat, Lon: tt.lon}) {
					t.Errorf("zone %s rect %+v does not contain the point", z.Designator, z.Rect)
				}
			}
		})
	}

	for _, bad := range [][2]float64{{85, 0}, {-81, 0}, {0, 181}, {math.NaN(), 0}} {
		if _, err := svc.ZonesAt(bad[0], bad[1]); !errors.Is(err, usecases.ErrInvalidRequest) {
			t.Errorf("ZonesAt(%v, %v) err = %v, want ErrInvalidRequest", bad[0], bad[1], err)
		}
	}
}

func TestConvertService_ZonesAtCenterDistance(t *testing.T) {
	svc := usecases.NewConvertService()

	zones, err := svc.ZonesAt(38.8895, -77.0352)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("zones = %+v, want one", zones)
	}
	// 18S spans 32N-40N and 78W-72W, so its midpoint is (36, -75)
	want := geospatial.Haversine(38.8895, -77.0352, 36, -75)
	if got := zones[0].CenterDistance; math.Abs(got-want) > 1e-6 {
		t.Errorf("center distance = %v, want %v", got, want)
	}
	if d := zones[0].CenterDistance; d < 350000 || d > 390000 {
		t.Errorf("center distance = %.0f m, want roughly 370 km", d)
	}

	// a point on the 31N/32N boundary sits halfway between both midpoints
	zones, err = svc.ZonesAt(4, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("zones = %+v, want two", zones)
	}
	if math.Abs(zones[0].CenterDistance-zones[1].CenterDistance) > 1e-6 {
		t.Errorf("distances = %v and %v, want equal", zones[0].CenterDistance, zones[1].CenterDistance)
	}
}
