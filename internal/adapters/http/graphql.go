package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services. Struct
// results resolve through their json tags.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	rectType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Rectangle",
		Fields: graphql.Fields{
			"south": &graphql.Field{Type: graphql.Float},
			"north": &graphql.Field{Type: graphql.Float},
			"west":  &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
		},
	})

	utmType := graphql.NewObject(graphql.ObjectConfig{
		Name: "UTM",
		Fields: graphql.Fields{
			"easting":  &graphql.Field{Type: graphql.Float},
			"northing": &graphql.Field{Type: graphql.Float, Description: "Includes the false northing south of the equator"},
			"zone":     &graphql.Field{Type: graphql.Int},
			"letter":   &graphql.Field{Type: graphql.String},
		},
	})

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GridZone",
		Fields: graphql.Fields{
			"designator": &graphql.Field{Type: graphql.String},
			"rect":       &graphql.Field{Type: rectType},
			"centerDistance": &graphql.Field{
				Type:        graphql.Float,
				Description: "Meters from the queried point to the cell midpoint",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if z, ok := p.Source.(domain.GridZone); ok {
						return z.CenterDistance, nil
					}
					return nil, nil
				},
			},
		},
	})

	layerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GridLayer",
		Fields: graphql.Fields{
			"interval": &graphql.Field{Type: graphql.Int},
			"name":     &graphql.Field{Type: graphql.String},
			"lines":    &graphql.Field{Type: graphql.NewList(graphql.NewList(geoPointType))},
			"lineCount": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if l, ok := p.Source.(domain.GridLayer); ok {
						return len(l.Lines), nil
					}
					return 0, nil
				},
			},
		},
	})

	labelType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SquareLabel",
		Fields: graphql.Fields{
			"position": &graphql.Field{Type: geoPointType},
			"text":     &graphql.Field{Type: graphql.String},
		},
	})

	gridType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Grid",
		Fields: graphql.Fields{
			"cells":  &graphql.Field{Type: graphql.NewList(zoneType)},
			"layers": &graphql.Field{Type: graphql.NewList(layerType)},
			"labels": &graphql.Field{Type: graphql.NewList(labelType)},
			"cached": &graphql.Field{Type: graphql.Boolean},
			"skipped": &graphql.Field{
				Type:        graphql.Int,
				Description: "Number of cells that could not be gridded",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if r, ok := p.Source.(*domain.GridResult); ok {
						return len(r.Skipped), nil
					}
					return 0, nil
				},
			},
		},
	})

	datumArg := &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.DatumNAD83)}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"utm": &graphql.Field{
				Type:        utmType,
				Description: "Project a point to UTM; zone 0 picks the natural zone",
				Args: graphql.FieldConfigArgument{
					"lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"zone":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"datum": datumArg,
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					u, err := deps.Convert.ToUTM(
						domain.Datum(p.Args["datum"].(string)),
						p.Args["lat"].(float64),
						p.Args["lon"].(float64),
						p.Args["zone"].(int),
					)
					if err != nil {
						return nil, err
					}
					u.Northing = u.FalseNorthing()
					return u, nil
				},
			},
			"geographic": &graphql.Field{
				Type:        geoPointType,
				Description: "Invert a UTM position",
				Args: graphql.FieldConfigArgument{
					"easting":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"northing": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"zone":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"letter":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"datum":    datumArg,
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Convert.ToGeographic(domain.Datum(p.Args["datum"].(string)), usecases.UTMInput{
						Easting:  p.Args["easting"].(float64),
						Northing: p.Args["northing"].(float64),
						Zone:     p.Args["zone"].(int),
						Letter:   p.Args["letter"].(string),
					})
				},
			},
			"usng": &graphql.Field{
				Type:        graphql.String,
				Description: "Format a point as a USNG string",
				Args: graphql.FieldConfigArgument{
					"lat":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"precision": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 5},
					"datum":     datumArg,
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Convert.ToUSNG(
						domain.Datum(p.Args["datum"].(string)),
						p.Args["lat"].(float64),
						p.Args["lon"].(float64),
						p.Args["precision"].(int),
					)
				},
			},
			"zones": &graphql.Field{
				Type:        graphql.NewList(zoneType),
				Description: "Grid zone cells containing a point",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Convert.ZonesAt(p.Args["lat"].(float64), p.Args["lon"].(float64))
				},
			},
			"grid": &graphql.Field{
				Type:        gridType,
				Description: "Render the USNG overlay of a bounding box",
				Args: graphql.FieldConfigArgument{
					"south":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"north":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"west":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"east":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"zoom":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"datum":     datumArg,
					"intervals": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"gzd":       &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: true},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					req := domain.GridRequest{
						Bounds: domain.BoundingBox{
							South: p.Args["south"].(float64),
							North: p.Args["north"].(float64),
							West:  p.Args["west"].(float64),
							East:  p.Args["east"].(float64),
						},
						Zoom:       p.Args["zoom"].(int),
						Datum:      domain.Datum(p.Args["datum"].(string)),
						IncludeGZD: p.Args["gzd"].(bool),
					}
					if raw, ok := p.Args["intervals"].([]interface{}); ok {
						for _, v := range raw {
							s, _ := v.(string)
							iv, err := usecases.ParseInterval(s)
							if err != nil {
								return nil, err
							}
							req.Intervals = append(req.Intervals, iv)
						}
					}
					return deps.Grid.Render(p.Context, req)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
