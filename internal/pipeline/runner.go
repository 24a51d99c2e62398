package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/taxiblocks/internal/aggregate"
	"github.com/sells-group/taxiblocks/internal/census"
	"github.com/sells-group/taxiblocks/internal/sjoin"
	"github.com/sells-group/taxiblocks/internal/store"
	"github.com/sells-group/taxiblocks/internal/trip"
)

// Options configures a Runner.
type Options struct {
	TripsDir  string
	OutputDir string
	Limit     int // process at most Limit batches; 0 means all
	Read      trip.ReadOptions
}

// BatchReport describes one processed batch.
type BatchReport struct {
	Name     string            `json:"name" yaml:"name"`
	Output   string            `json:"output" yaml:"output"`
	Records  int               `json:"records" yaml:"records"`
	Clean    trip.CleanStats   `json:"clean" yaml:"clean"`
	Join     sjoin.JoinStats   `json:"join" yaml:"join"`
	Summary  aggregate.Summary `json:"summary" yaml:"summary"`
	Duration time.Duration     `json:"duration" yaml:"duration"`
}

// RunReport describes a whole run.
type RunReport struct {
	RunID      string        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Bounds     census.BBox   `json:"bounds" yaml:"bounds"`
	Batches    []BatchReport `json:"batches" yaml:"batches"`
	Trips      int           `json:"trips" yaml:"trips"`
}

// Runner processes every batch in a directory against one Reference.
// Store is optional.
type Runner struct {
	Ref   *Reference
	Store store.Store
	Opts  Options
}

// ListBatches returns the regular files in dir, sorted by name.
func ListBatches(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: list batches in %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Run processes the batches one at a time, each to completion before the
// next begins. The first error aborts the run; outputs already written stay.
func (r *Runner) Run(ctx context.Context) (*RunReport, error) {
	log := zap.L().With(zap.String("trips_dir", r.Opts.TripsDir))

	names, err := ListBatches(r.Opts.TripsDir)
	if err != nil {
		return nil, err
	}
	if r.Opts.Limit > 0 && len(names) > r.Opts.Limit {
		names = names[:r.Opts.Limit]
	}

	report := &RunReport{StartedAt: time.Now().UTC(), Bounds: r.Ref.Bounds}

	if r.Store != nil {
		run, err := r.Store.CreateRun(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
		report.RunID = run.ID
		log = log.With(zap.String("run_id", run.ID))
	}

	log.Info("pipeline: starting run", zap.Int("batches", len(names)))

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			_ = r.finish(ctx, report, store.RunStatusFailed, log)
			return report, eris.Wrap(err, "pipeline: run cancelled")
		}

		br, err := r.runBatch(ctx, report.RunID, name)
		if err != nil {
			log.Error("pipeline: batch failed", zap.String("batch", name), zap.Error(err))
			_ = r.finish(ctx, report, store.RunStatusFailed, log)
			return report, err
		}
		report.Batches = append(report.Batches, *br)
		report.Trips += br.Summary.Trips

		log.Info("pipeline: batch complete",
			zap.String("batch", name),
			zap.Int("batch_num", i+1),
			zap.Int("batch_total", len(names)),
			zap.Float64("percent", percent(i+1, len(names))),
			zap.Int("kept", br.Clean.Kept),
			zap.Int("joined", br.Join.Joined),
			zap.Int("blocks", br.Summary.Blocks),
			zap.Duration("duration", br.Duration),
		)
	}

	if err := r.finish(ctx, report, store.RunStatusComplete, log); err != nil {
		return report, err
	}
	log.Info("pipeline: run complete",
		zap.Int("batches", len(report.Batches)),
		zap.Int("trips", report.Trips),
	)
	return report, nil
}

func (r *Runner) runBatch(ctx context.Context, runID, name string) (*BatchReport, error) {
	start := time.Now()
	path := filepath.Join(r.Opts.TripsDir, name)

	batch, err := trip.ReadBatch(path, r.Opts.Read)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: batch %s", name)
	}

	res := ProcessBatch(r.Ref, batch.Records)
	zap.L().Debug("pipeline: batch filtered",
		zap.String("batch", name),
		zap.Int("incomplete", res.Clean.Incomplete),
		zap.Int("back_in_time", res.Clean.BackInTime),
		zap.Int("negative_amount", res.Clean.NegativeAmount),
		zap.Int("invalid_rate_code", res.Clean.InvalidRateCode),
		zap.Int("out_of_bounds", res.Clean.OutOfBounds),
		zap.Int("no_block", res.Join.NoBlock),
		zap.Int("no_demographics", res.Join.NoDemographics),
	)

	out, err := aggregate.WriteFile(r.Opts.OutputDir, batch.Name, res.Counts)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: batch %s", name)
	}

	if r.Store != nil {
		if err := r.Store.SaveCounts(ctx, runID, batch.Name, res.Counts.Rows()); err != nil {
			return nil, eris.Wrapf(err, "pipeline: batch %s", name)
		}
	}

	return &BatchReport{
		Name:     batch.Name,
		Output:   out,
		Records:  len(batch.Records),
		Clean:    res.Clean,
		Join:     res.Join,
		Summary:  aggregate.Summarize(res.Counts),
		Duration: time.Since(start),
	}, nil
}

// finish stamps the report and records the final status. A failure to record
// a failed status is only logged so the original error surfaces.
func (r *Runner) finish(ctx context.Context, report *RunReport, status store.RunStatus, log *zap.Logger) error {
	report.FinishedAt = time.Now().UTC()
	if r.Store == nil {
		return nil
	}

	// The run context may already be cancelled.
	err := r.Store.CompleteRun(context.WithoutCancel(ctx), report.RunID, status, len(report.Batches), report.Trips)
	if err == nil {
		return nil
	}
	if status == store.RunStatusFailed {
		log.Warn("pipeline: failed to record run status", zap.Error(err))
		return nil
	}
	return eris.Wrap(err, "pipeline: complete run")
}

func percent(done, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(done) * 100 / float64(total)
}
