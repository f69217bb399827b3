package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/samirrijal/usngrid/internal/adapters/geojson"
	"github.com/samirrijal/usngrid/internal/adapters/shapefile"
	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/core/usecases"
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Render a grid overlay to GeoJSON or a shapefile",
	Long: `Render the USNG grid of a viewport without a running API.

Examples:
  usngctl grid --south 38 --north 39 --west -78 --east -77 --zoom 11
  usngctl grid --south 38 --north 39 --west -78 --east -77 --zoom 11 --intervals 100k,10k -o dc.geojson
  usngctl grid --south 38 --north 39 --west -78 --east -77 --zoom 9 --format shapefile -o dc.shp

Shapefile output writes the grid lines to the named file and the 100 km
square labels to a sibling file ending in _labels.shp.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := gridRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("output")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		res, err := usecases.NewGridService(nil, nil, usecases.DefaultGridOptions()).Render(ctx, req)
		if err != nil {
			return err
		}
		if n := len(res.Skipped); n > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d cells skipped\n", n)
		}

		switch strings.ToLower(format) {
		case "geojson":
			if out == "" || out == "-" {
				return geojson.Encode(cmd.OutOrStdout(), res)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := geojson.Encode(f, res); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		case "shapefile", "shp":
			if out == "" {
				return fmt.Errorf("--output is required for shapefile output")
			}
			lines, err := shapefile.WriteLines(out, res)
			if err != nil {
				return err
			}
			labels, err := shapefile.WriteLabels(shapefile.LabelsPath(out), res)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d lines to %s and %d labels to %s\n",
				lines, out, labels, shapefile.LabelsPath(out))
			return nil
		default:
			return fmt.Errorf("unknown format %q (want geojson or shapefile)", format)
		}
	},
}

func gridRequestFromFlags(cmd *cobra.Command) (domain.GridRequest, error) {
	datum, err := datumFlag(cmd)
	if err != nil {
		return domain.GridRequest{}, err
	}
	var req domain.GridRequest
	req.Datum = datum
	req.Bounds.South, _ = cmd.Flags().GetFloat64("south")
	req.Bounds.North, _ = cmd.Flags().GetFloat64("north")
	req.Bounds.West, _ = cmd.Flags().GetFloat64("west")
	req.Bounds.East, _ = cmd.Flags().GetFloat64("east")
	req.Zoom, _ = cmd.Flags().GetInt("zoom")
	req.IncludeGZD, _ = cmd.Flags().GetBool("gzd")

	names, _ := cmd.Flags().GetStringSlice("intervals")
	for _, name := range names {
		iv, err := usecases.ParseInterval(name)
		if err != nil {
			return domain.GridRequest{}, err
		}
		req.Intervals = append(req.Intervals, iv)
	}
	return req, nil
}

func addGridFlags(c *cobra.Command) {
	for _, name := range []string{"south", "north", "west", "east"} {
		c.Flags().Float64(name, 0, "Viewport "+name+" edge in degrees (required)")
		c.MarkFlagRequired(name)
	}
	c.Flags().IntP("zoom", "z", 0, "Web map zoom level (required)")
	c.MarkFlagRequired("zoom")
	c.Flags().StringSlice("intervals", nil, "Grid intervals: gzd, 100k, 10k, 1k (default from zoom)")
	c.Flags().Bool("gzd", true, "Draw grid zone lines with explicit intervals")
}

func init() {
	rootCmd.AddCommand(gridCmd)
	addGridFlags(gridCmd)
	gridCmd.Flags().StringP("format", "f", "geojson", "Output format: geojson or shapefile")
	gridCmd.Flags().StringP("output", "o", "", "Output file (geojson defaults to stdout)")
}
