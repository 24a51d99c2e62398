package trip

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/taxiblocks/internal/tabular"
)

// DefaultHeaderSuffix marks batch files that start with a header row.
const DefaultHeaderSuffix = "00"

// HasHeader reports whether a batch file named name carries a header row.
// This is the only place file names influence parsing.
func HasHeader(name, suffix string) bool {
	if suffix == "" {
		suffix = DefaultHeaderSuffix
	}
	return strings.HasSuffix(filepath.Base(name), suffix)
}

// ReadOptions configures ReadBatch.
type ReadOptions struct {
	HeaderSuffix    string
	Encoding        string
	TimestampLayout string
}

// ReadBatch reads and parses a whole batch file. Malformed rows come back as
// Incomplete records; only I/O and structural CSV errors are returned.
func ReadBatch(path string, opts ReadOptions) (*Batch, error) {
	name := filepath.Base(path)

	raw, err := tabular.ReadFile(path, tabular.FileOptions{
		HasHeader: HasHeader(name, opts.HeaderSuffix),
		Encoding:  opts.Encoding,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "trip: read batch %s", name)
	}

	records := make([]Record, len(raw.Rows))
	for i, row := range raw.Rows {
		records[i] = ParseRow(row, opts.TimestampLayout)
	}

	return &Batch{Name: name, Records: records}, nil
}
