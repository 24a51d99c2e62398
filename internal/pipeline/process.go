package pipeline

import (
	"github.com/sells-group/taxiblocks/internal/aggregate"
	"github.com/sells-group/taxiblocks/internal/sjoin"
	"github.com/sells-group/taxiblocks/internal/trip"
)

// BatchResult is the outcome of processing one batch's records.
type BatchResult struct {
	Clean  trip.CleanStats
	Join   sjoin.JoinStats
	Counts aggregate.CountTable
}

// ProcessBatch cleans, joins, and counts records against ref. It touches no
// shared state, so batches may be processed in any order.
func ProcessBatch(ref *Reference, records []trip.Record) BatchResult {
	cleaned, cleanStats := trip.Clean(records, ref.Bounds)
	joined, joinStats := sjoin.NewJoiner(ref.Index, ref.Demographics).Join(cleaned)

	return BatchResult{
		Clean:  cleanStats,
		Join:   joinStats,
		Counts: aggregate.Count(joined),
	}
}
