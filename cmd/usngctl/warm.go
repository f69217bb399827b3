package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"

	"github.com/samirrijal/usngrid/internal/core/domain"
	"github.com/samirrijal/usngrid/internal/pkg/config"
	"github.com/samirrijal/usngrid/internal/workflows"
)

var warmCmd = &cobra.Command{
	Use:   "warm [requests.json]",
	Short: "Queue viewports on the cache warm workflow",
	Long: `Start a cache warm workflow on Temporal and wait for its result.

The requests file holds a JSON array of grid requests, for example
  [{"bounds": {"south": 38, "north": 39, "west": -78, "east": -77}, "zoom": 11}]
Without a file a single viewport is taken from the grid flags.

Temporal address, namespace and task queue come from the usngrid config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var reqs []domain.GridRequest
		if len(args) == 1 {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := json.Unmarshal(data, &reqs); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
		} else {
			req, err := gridRequestFromFlags(cmd)
			if err != nil {
				return err
			}
			reqs = append(reqs, req)
		}
		if len(reqs) == 0 {
			return fmt.Errorf("no requests to warm")
		}

		cfg, err := config.Load("usngctl")
		if err != nil {
			return err
		}
		c, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    sdklog.NewStructuredLogger(slog.Default()),
		})
		if err != nil {
			return fmt.Errorf("temporal client: %w", err)
		}
		defer c.Close()

		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        "warm-cache-" + uuid.NewString(),
			TaskQueue: cfg.Temporal.TaskQueue,
		}, workflows.WarmCacheWorkflowName, workflows.WarmCacheInput{Requests: reqs})
		if err != nil {
			return fmt.Errorf("start workflow: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "workflow %s started (run %s)\n", run.GetID(), run.GetRunID())

		if detach, _ := cmd.Flags().GetBool("detach"); detach {
			return nil
		}
		var res workflows.WarmCacheResult
		if err := run.Get(ctx, &res); err != nil {
			return fmt.Errorf("workflow: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rendered %d, failed %d, already cached %d, %d lines\n",
			res.Rendered, res.Failed, res.Cached, res.Lines)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(warmCmd)
	warmCmd.Flags().Float64("south", 0, "Viewport south edge in degrees")
	warmCmd.Flags().Float64("north", 0, "Viewport north edge in degrees")
	warmCmd.Flags().Float64("west", 0, "Viewport west edge in degrees")
	warmCmd.Flags().Float64("east", 0, "Viewport east edge in degrees")
	warmCmd.Flags().IntP("zoom", "z", 0, "Web map zoom level")
	warmCmd.Flags().StringSlice("intervals", nil, "Grid intervals: gzd, 100k, 10k, 1k (default from zoom)")
	warmCmd.Flags().Bool("gzd", true, "Draw grid zone lines with explicit intervals")
	warmCmd.Flags().Duration("timeout", 10*time.Minute, "How long to wait for the workflow")
	warmCmd.Flags().Bool("detach", false, "Return after starting the workflow")
}
