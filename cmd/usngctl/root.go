package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/pkg/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "usngctl",
	Short: "USNG coordinate conversion and grid export",
	Long: `usngctl converts coordinates between geographic, UTM and USNG and
renders USNG grid overlays offline.

Grids can be written as GeoJSON or as ESRI shapefiles, and batches of
viewports can be queued on the cache warm workflow.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		logging.Setup(level, "text")
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("datum", "d", string(domain.DatumNAD83), "Horizontal datum (nad83 or nad27)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level")
}

func datumFlag(cmd *cobra.Command) (domain.Datum, error) {
	raw, _ := cmd.Flags().GetString("datum")
	return domain.ParseDatum(raw)
}
