// Package pipeline drives trip batches through cleaning, spatial join, and
// aggregation.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/taxiblocks/internal/census"
	"github.com/sells-group/taxiblocks/internal/demographics"
	"github.com/sells-group/taxiblocks/internal/sjoin"
)

// Reference is the immutable context shared by every batch: block polygons,
// their attributes, the derived boundary box, and the point index.
type Reference struct {
	Blocks       *census.BlockSet
	Demographics *demographics.Table
	Bounds       census.BBox
	Index        *sjoin.Index
}

// ReferenceOptions locates the reference datasets.
type ReferenceOptions struct {
	BlocksPath       string
	DemographicsPath string
	Demographics     demographics.Options
}

// LoadReference loads both reference datasets and derives the bounds and
// index. Any failure is fatal to the run.
func LoadReference(ctx context.Context, opts ReferenceOptions) (*Reference, error) {
	log := zap.L().With(zap.String("component", "reference"))

	blocks, err := census.Load(opts.BlocksPath)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load blocks")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: load reference")
	}

	table, err := demographics.Load(opts.DemographicsPath, opts.Demographics)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load demographics")
	}

	ref, err := NewReference(blocks, table)
	if err != nil {
		return nil, err
	}

	log.Info("pipeline: reference loaded",
		zap.Int("blocks", blocks.Len()),
		zap.Int("demographics", table.Len()),
		zap.Float64("min_lat", ref.Bounds.MinLat),
		zap.Float64("min_lon", ref.Bounds.MinLon),
		zap.Float64("max_lat", ref.Bounds.MaxLat),
		zap.Float64("max_lon", ref.Bounds.MaxLon),
	)
	return ref, nil
}

// NewReference derives bounds and index from already loaded datasets.
func NewReference(blocks *census.BlockSet, table *demographics.Table) (*Reference, error) {
	index, err := sjoin.NewIndex(blocks)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: build index")
	}
	return &Reference{
		Blocks:       blocks,
		Demographics: table,
		Bounds:       census.ComputeBounds(blocks),
		Index:        index,
	}, nil
}
