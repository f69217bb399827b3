package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/usngrid/internal/adapters/geojson"
	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/usecases"
	"github.com/samirrijal/usngrid/internal/pkg/geospatial"
)

const maxAroundRadius = 500000 // meters

// writeGrid renders a result in the requested format.
func writeGrid(c *fiber.Ctx, res *domain.GridResult, format string) error {
	if res.Cached {
		c.Set("X-Grid-Cache", "hit")
	} else {
		c.Set("X-Grid-Cache", "miss")
	}
	if format == formatGeoJSON {
		if err := c.JSON(geojson.FromGrid(res)); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, geojson.MediaType)
		return nil
	}
	return c.JSON(res)
}

// GridHandler renders the USNG overlay of a bounding box.
func GridHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format, err := parseFormat(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var req domain.GridRequest
		if req.Bounds, err = parseBounds(c); err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := parseGridOptions(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}

		res, err := deps.Grid.Render(c.UserContext(), req)
		if err != nil {
			return errFromService(c, err)
		}
		return writeGrid(c, res, format)
	}
}

// GridAroundHandler renders the overlay within a radius (meters) of a point.
func GridAroundHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format, err := parseFormat(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		lat, err := queryFloat(c, "lat")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		lon, err := queryFloat(c, "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		radius := c.QueryFloat("radius", 5000)
		if radius <= 0 || radius > maxAroundRadius {
			return errBadRequest(c, "radius must be between 1 and 500000 meters")
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return errBadRequest(c, "lat and lon must be valid coordinates")
		}

		req := domain.GridRequest{Bounds: geospatial.BoundingBox(lat, lon, radius)}
		if err := parseGridOptions(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}

		res, err := deps.Grid.Render(c.UserContext(), req)
		if err != nil {
			return errFromService(c, err)
		}
		return writeGrid(c, res, format)
	}
}

// gridJobRequest is the body of POST /v1/grid/jobs.
type gridJobRequest struct {
	Bounds    domain.BoundingBox `json:"bounds"`
	Zoom      int                `json:"zoom"`
	Datum     string             `json:"datum"`
	Intervals []string           `json:"intervals"`
	GZD       *bool              `json:"gzd"`
}

// GridJobHandler queues a render on the work queue; the renderer worker
// fills the cache so later requests for the same viewport are hits.
func GridJobHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body gridJobRequest
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		req := domain.GridRequest{
			Bounds:     body.Bounds,
			Zoom:       body.Zoom,
			Datum:      domain.Datum(body.Datum),
			IncludeGZD: body.GZD == nil || *body.GZD,
		}
		for _, s := range body.Intervals {
			ivs, err := parseIntervals(s)
			if err != nil {
				return errBadRequest(c, err.Error())
			}
			req.Intervals = append(req.Intervals, ivs...)
		}

		if deps.NATS == nil {
			return errUnavailable(c, "render queue not available")
		}
		queued, err := deps.Grid.Enqueue(c.UserContext(), req)
		if err != nil {
			return errFromService(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"status":  "queued",
			"request": queued,
		})
	}
}

// ZonesHandler returns grid zone cells, either those containing lat/lon or
// those covering a south/north/west/east box.
func ZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format, err := parseFormat(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		var zones []domain.GridZone
		if c.Query("lat") != "" || c.Query("lon") != "" {
			lat, err := queryFloat(c, "lat")
			if err != nil {
				return errBadRequest(c, err.Error())
			}
			lon, err := queryFloat(c, "lon")
			if err != nil {
				return errBadRequest(c, err.Error())
			}
			zones, err = deps.Convert.ZonesAt(lat, lon)
			if err != nil {
				return errFromService(c, err)
			}
		} else {
			b, err := parseBounds(c)
			if err != nil {
				return errBadRequest(c, "either lat and lon or south, north, west and east are required")
			}
			zones, err = deps.Grid.Zones(c.UserContext(), b)
			if err != nil {
				return errFromService(c, err)
			}
		}

		c.Set("Cache-Control", "public, max-age=86400")
		if format == formatGeoJSON {
			if err := c.JSON(geojson.FromZones(zones)); err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, geojson.MediaType)
			return nil
		}
		if zones == nil {
			zones = []domain.GridZone{}
		}
		return c.JSON(zones)
	}
}

// utmResponse reports a UTM position the way users write it: southern bands
// carry the 10,000,000 m false northing.
type utmResponse struct {
	Easting    float64      `json:"easting"`
	Northing   float64      `json:"northing"`
	Zone       int          `json:"zone"`
	Letter     string       `json:"letter"`
	Hemisphere string       `json:"hemisphere"`
	Datum      domain.Datum `json:"datum"`
}

// ConvertUTMHandler projects lat/lon to UTM, optionally into a forced zone.
func ConvertUTMHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err := queryFloat(c, "lat")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		lon, err := queryFloat(c, "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		zone, err := queryInt(c, "zone", 0)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		datum, err := domain.ParseDatum(c.Query("datum"))
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		u, err := deps.Convert.ToUTM(datum, lat, lon, zone)
		if err != nil {
			return errFromService(c, err)
		}
		hemisphere := "N"
		if u.Northing < 0 {
			hemisphere = "S"
		}
		return c.JSON(utmResponse{
			Easting:    u.Easting,
			Northing:   u.FalseNorthing(),
			Zone:       u.Zone,
			Letter:     u.Letter,
			Hemisphere: hemisphere,
			Datum:      datum,
		})
	}
}

// ConvertGeographicHandler inverts a UTM position to lat/lon.
func ConvertGeographicHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		easting, err := queryFloat(c, "easting")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		northing, err := queryFloat(c, "northing")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		zone, err := queryInt(c, "zone", 0)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		letter := c.Query("letter")
		if letter == "" {
			return errBadRequest(c, "letter is required")
		}
		datum, err := domain.ParseDatum(c.Query("datum"))
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		p, err := deps.Convert.ToGeographic(datum, usecases.UTMInput{
			Easting:  easting,
			Northing: northing,
			Zone:     zone,
			Letter:   letter,
		})
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(fiber.Map{
			"lat":   p.Lat,
			"lon":   p.Lon,
			"datum": datum,
		})
	}
}

// ConvertUSNGHandler formats lat/lon as a USNG string.
func ConvertUSNGHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err := queryFloat(c, "lat")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		lon, err := queryFloat(c, "lon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		precision, err := queryInt(c, "precision", 5)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		datum, err := domain.ParseDatum(c.Query("datum"))
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		s, err := deps.Convert.ToUSNG(datum, lat, lon, precision)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(fiber.Map{
			"usng":      s,
			"precision": precision,
			"datum":     datum,
		})
	}
}
