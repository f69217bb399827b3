package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/usngrid/internal/core/domain"
)

// viewportRequest is the body of POST /v1/viewports.
type viewportRequest struct {
	Name      string             `json:"name"`
	Bounds    domain.BoundingBox `json:"bounds"`
	Zoom      int                `json:"zoom"`
	Datum     string             `json:"datum"`
	Intervals []string           `json:"intervals"`
}

// CreateViewportHandler stores a named viewport.
func CreateViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body viewportRequest
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		v := &domain.SavedViewport{
			Name:   body.Name,
			Bounds: body.Bounds,
			Zoom:   body.Zoom,
			Datum:  domain.Datum(body.Datum),
		}
		for _, s := range body.Intervals {
			ivs, err := parseIntervals(s)
			if err != nil {
				return errBadRequest(c, err.Error())
			}
			v.Intervals = append(v.Intervals, ivs...)
		}

		if err := deps.Viewports.Create(c.UserContext(), v); err != nil {
			return errFromService(c, err)
		}
		c.Location("/v1/viewports/" + v.ID)
		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

// ListViewportsHandler returns saved viewports, newest first.
func ListViewportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := deps.Viewports.List(c.UserContext(), c.QueryInt("limit", 20), c.QueryInt("offset", 0))
		if err != nil {
			return errFromService(c, err)
		}
		items := page.Items
		if items == nil {
			items = []domain.SavedViewport{}
		}

		pg := paginationOf(page)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: items, Pagination: pg})
	}
}

// GetViewportHandler returns a saved viewport by ID.
func GetViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := deps.Viewports.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(v)
	}
}

// DeleteViewportHandler removes a saved viewport.
func DeleteViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Viewports.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFromService(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ViewportGridHandler renders the overlay of a saved viewport.
func ViewportGridHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format, err := parseFormat(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		res, err := deps.Viewports.Render(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		return writeGrid(c, res, format)
	}
}
