package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samirrijal/usngrid/internal/core/usecases"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a single coordinate",
}

var toUTMCmd = &cobra.Command{
	Use:   "utm",
	Short: "Project a latitude/longitude to UTM",
	Long: `Project a geographic coordinate to UTM.

Examples:
  usngctl convert utm --lat 38.8895 --lon -77.0352
  usngctl convert utm --lat -33.86 --lon 151.21 --datum nad27
  usngctl convert utm --lat 0 --lon -75 --zone 17

Southern positions are printed with the 10,000,000 m false northing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		datum, err := datumFlag(cmd)
		if err != nil {
			return err
		}
		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")
		zone, _ := cmd.Flags().GetInt("zone")

		u, err := usecases.NewConvertService().ToUTM(datum, lat, lon, zone)
		if err != nil {
			return err
		}
		hemisphere := "N"
		if u.Letter < "N" {
			hemisphere = "S"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d%s %.3fmE %.3fmN (%s)\n", u.Zone, u.Letter, u.Easting, u.FalseNorthing(), hemisphere)
		return nil
	},
}

var toGeoCmd = &cobra.Command{
	Use:   "geographic",
	Short: "Invert a UTM position to latitude/longitude",
	Long: `Invert a UTM position.

Examples:
  usngctl convert geographic --zone 18 --letter S --easting 323394 --northing 4306483
  usngctl convert geographic --zone 56 --letter H --easting 334369 --northing 6252267`,
	RunE: func(cmd *cobra.Command, args []string) error {
		datum, err := datumFlag(cmd)
		if err != nil {
			return err
		}
		var in usecases.UTMInput
		in.Zone, _ = cmd.Flags().GetInt("zone")
		in.Letter, _ = cmd.Flags().GetString("letter")
		in.Easting, _ = cmd.Flags().GetFloat64("easting")
		in.Northing, _ = cmd.Flags().GetFloat64("northing")

		p, err := usecases.NewConvertService().ToGeographic(datum, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.8f %.8f\n", p.Lat, p.Lon)
		return nil
	},
}

var toUSNGCmd = &cobra.Command{
	Use:   "usng",
	Short: "Format a latitude/longitude as a USNG reference",
	Long: `Format a geographic coordinate as a USNG reference.

Examples:
  usngctl convert usng --lat 38.8895 --lon -77.0352
  usngctl convert usng --lat 38.8895 --lon -77.0352 --precision 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		datum, err := datumFlag(cmd)
		if err != nil {
			return err
		}
		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")
		precision, _ := cmd.Flags().GetInt("precision")

		s, err := usecases.NewConvertService().ToUSNG(datum, lat, lon, precision)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	},
}

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List the grid zones containing a point",
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")

		zones, err := usecases.NewConvertService().ZonesAt(lat, lon)
		if err != nil {
			return err
		}
		for _, z := range zones {
			fmt.Fprintf(cmd.OutOrStdout(), "%-4s lat [%g, %g] lon [%g, %g] center %.1f km\n",
				z.Designator, z.Rect.South, z.Rect.North, z.Rect.West, z.Rect.East, z.CenterDistance/1000)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd, zonesCmd)
	convertCmd.AddCommand(toUTMCmd, toGeoCmd, toUSNGCmd)

	for _, c := range []*cobra.Command{toUTMCmd, toUSNGCmd, zonesCmd} {
		c.Flags().Float64("lat", 0, "Latitude (required)")
		c.Flags().Float64("lon", 0, "Longitude (required)")
		c.MarkFlagRequired("lat")
		c.MarkFlagRequired("lon")
	}
	toUTMCmd.Flags().Int("zone", 0, "Force a UTM zone (default: natural zone)")
	toUSNGCmd.Flags().IntP("precision", "p", 5, "Digits per axis (0-5)")

	toGeoCmd.Flags().Int("zone", 0, "UTM zone (required)")
	toGeoCmd.Flags().String("letter", "", "Latitude band letter (required)")
	toGeoCmd.Flags().Float64("easting", 0, "Easting in meters (required)")
	toGeoCmd.Flags().Float64("northing", 0, "Northing in meters, with false northing south of the equator (required)")
	for _, name := range []string{"zone", "letter", "easting", "northing"} {
		toGeoCmd.MarkFlagRequired(name)
	}
}
