package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/taxiblocks/internal/config"
	"github.com/sells-group/taxiblocks/internal/pipeline"
	"github.com/sells-group/taxiblocks/internal/trip"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every trip batch and write pickup counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyRunFlags(cmd, cfg)
		limit, _ := cmd.Flags().GetInt("limit")

		report, err := runPipeline(ctx, cfg, limit)
		if err != nil {
			return err
		}

		zap.L().Info("run finished",
			zap.String("run_id", report.RunID),
			zap.Int("batches", len(report.Batches)),
			zap.Int("trips", report.Trips),
		)
		return nil
	},
}

// applyRunFlags overrides configuration with any flags set on cmd.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		c.Data.Dir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("trips-dir") {
		c.Data.TripsDir, _ = flags.GetString("trips-dir")
	}
	if flags.Changed("output-dir") {
		c.Output.Dir, _ = flags.GetString("output-dir")
	}
}

// runPipeline loads the reference data once and processes all batches.
func runPipeline(ctx context.Context, c *config.Config, limit int) (*pipeline.RunReport, error) {
	ref, err := pipeline.LoadReference(ctx, pipeline.ReferenceOptions{
		BlocksPath:       c.Data.Resolve(c.Data.BlocksFile),
		DemographicsPath: c.Data.Resolve(c.Data.DemographicsFile),
	})
	if err != nil {
		return nil, err
	}

	st, err := initStore(ctx, c)
	if err != nil {
		return nil, err
	}
	if st != nil {
		defer st.Close() //nolint:errcheck
	}

	runner := &pipeline.Runner{
		Ref:   ref,
		Store: st,
		Opts: pipeline.Options{
			TripsDir:  c.Data.Resolve(c.Data.TripsDir),
			OutputDir: c.Output.Dir,
			Limit:     limit,
			Read: trip.ReadOptions{
				HeaderSuffix:    c.Trips.HeaderSuffix,
				Encoding:        c.Trips.Encoding,
				TimestampLayout: c.Trips.TimestampLayout,
			},
		},
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return report, err
	}

	if c.Output.Manifest {
		path := filepath.Join(c.Output.Dir, pipeline.ManifestName)
		if err := pipeline.WriteManifest(path, report); err != nil {
			return report, eris.Wrap(err, "run")
		}
	}
	return report, nil
}

func init() {
	runCmd.Flags().String("data-dir", "", "directory holding the reference datasets (overrides data.dir)")
	runCmd.Flags().String("trips-dir", "", "directory of trip batch files, relative to the data dir (overrides data.trips_dir)")
	runCmd.Flags().String("output-dir", "", "directory for pickup count files (overrides output.dir)")
	runCmd.Flags().Int("limit", 0, "process at most this many batches (0 = all)")
	rootCmd.AddCommand(runCmd)
}
