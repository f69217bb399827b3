package usecases

import (
	"math"
	"strings"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/grid"
	"github.com/samirrijal/usngrid/internal/pkg/geospatial"
)

// UTMInput is a UTM position as users write it: southern bands carry the
// 10,000,000 m false northing.
type UTMInput struct {
	Easting  float64
	Northing float64
	Zone     int
	Letter   string
}

// ConvertService converts single coordinates between geographic, UTM and USNG.
type ConvertService struct {
	projections map[domain.Datum]*geospatial.Projection
}

// NewConvertService creates a new ConvertService.
func NewConvertService() *ConvertService {
	return &ConvertService{
		projections: map[domain.Datum]*geospatial.Projection{
			domain.DatumNAD83: geospatial.NewProjection(geospatial.GRS80),
			domain.DatumNAD27: geospatial.NewProjection(geospatial.Clarke1866),
		},
	}
}

func (s *ConvertService) projection(d domain.Datum) (*geospatial.Projection, error) {
	datum, err := domain.ParseDatum(string(d))
	if err != nil {
		return nil, invalidf("%v", err)
	}
	return s.projections[datum], nil
}

// ToUTM projects a point. zone 0 selects the natural zone.
func (s *ConvertService) ToUTM(datum domain.Datum, lat, lon float64, zone int) (domain.UTMCoordinate, error) {
	p, err := s.projection(datum)
	if err != nil {
		return domain.UTMCoordinate{}, err
	}
	if zone < 0 || zone > 60 {
		return domain.UTMCoordinate{}, invalidf("zone must be within [1, 60], got %d", zone)
	}
	return p.ToUTM(lat, lon, zone)
}

// ToGeographic inverts a UTM position.
func (s *ConvertService) ToGeographic(datum domain.Datum, in UTMInput) (domain.GeoPoint, error) {
	p, err := s.projection(datum)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	if in.Zone < 1 || in.Zone > 60 {
		return domain.GeoPoint{}, invalidf("zone must be within [1, 60], got %d", in.Zone)
	}
	letter := strings.ToUpper(strings.TrimSpace(in.Letter))
	if len(letter) != 1 || !strings.Contains("CDEFGHJKLMNPQRSTUVWX", letter) {
		return domain.GeoPoint{}, invalidf("latitude band %q must be one of C-X without I and O", in.Letter)
	}
	if math.IsNaN(in.Easting) || in.Easting < 100000 || in.Easting > 900000 {
		return domain.GeoPoint{}, invalidf("easting %.1f outside [100000, 900000]", in.Easting)
	}
	if math.IsNaN(in.Northing) || in.Northing < 0 || in.Northing > domain.FalseNorthingOffset {
		return domain.GeoPoint{}, invalidf("northing %.1f outside [0, 10000000]", in.Northing)
	}

	northing := in.Northing
	if letter[0] < 'N' {
		northing -= domain.FalseNorthingOffset
	}
	return p.ToGeographic(northing, in.Easting, in.Zone, letter), nil
}

// ToUSNG formats a point as a USNG string with digits (0-5) per axis.
func (s *ConvertService) ToUSNG(datum domain.Datum, lat, lon float64, digits int) (string, error) {
	p, err := s.projection(datum)
	if err != nil {
		return "", err
	}
	if digits < 0 || digits > 5 {
		return "", invalidf("precision must be within [0, 5], got %d", digits)
	}
	return p.ToUSNG(lat, lon, digits)
}

// ZonesAt returns the grid zone cells that contain a point, each with its
// distance to the point. Points on a zone boundary belong to every cell
// sharing it.
func (s *ConvertService) ZonesAt(lat, lon float64) ([]domain.GridZone, error) {
	if math.IsNaN(lat) || lat < geospatial.MinLatitude || lat > geospatial.MaxLatitude {
		return nil, invalidf("latitude must be within [-80, 84], got %v", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return nil, invalidf("longitude must be within [-180, 180], got %v", lon)
	}

	// the band row around the point, one zone either side so the widened
	// Norway and Svalbard cells are whole
	south := math.Floor((lat+80)/8)*8 - 80
	north := south + 8
	if south >= 72 {
		south, north = 72, 84
	}
	west := math.Floor((lon+180)/6)*6 - 180
	box := domain.BoundingBox{
		South: south,
		North: north,
		West:  math.Max(west-6, -180),
		East:  math.Min(west+12, 180),
	}
	zones := grid.NewViewPort(box, 0).CellsAt(domain.GeoPoint{Lat: lat, Lon: lon})
	for i := range zones {
		mid := zones[i].Rect.Midpoint()
		zones[i].CenterDistance = geospatial.Haversine(lat, lon, mid.Lat, mid.Lon)
	}
	return zones, nil
}
