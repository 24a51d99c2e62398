// Package store records pipeline runs and their per-batch pickup counts.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/taxiblocks/internal/aggregate"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one invocation of the pipeline over a trips directory.
type Run struct {
	ID        string    `json:"id"`
	Status    RunStatus `json:"status"`
	Batches   int       `json:"batches"`
	Trips     int       `json:"trips"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 100

// Store persists runs and pickup counts.
type Store interface {
	// Runs
	CreateRun(ctx context.Context) (*Run, error)
	CompleteRun(ctx context.Context, runID string, status RunStatus, batches, trips int) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Counts
	SaveCounts(ctx context.Context, runID, batch string, rows []aggregate.Row) error
	LoadCounts(ctx context.Context, runID, batch string) ([]aggregate.Row, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Config selects and configures a Store backend.
type Config struct {
	Driver      string
	DatabaseURL string
}

// Open returns the Store for cfg.Driver, migrated and ready. Driver "none"
// (or empty) yields a nil Store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "taxiblocks.db"
		}
		s, err = NewSQLite(dsn)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
