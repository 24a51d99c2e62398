package aggregate

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
)

// Output columns.
const (
	GEOIDColumn = "geoid_pickup"
	CountColumn = "count"
)

// OutputSuffix is appended to the batch name to form the output file name.
const OutputSuffix = "_pickups.csv"

// OutputName returns the count file name for a batch.
func OutputName(batch string) string {
	return batch + OutputSuffix
}

// WriteCSV writes t with a header row, one line per block, ordered by GEOID.
func WriteCSV(w io.Writer, t CountTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{GEOIDColumn, CountColumn}); err != nil {
		return eris.Wrap(err, "aggregate: write header")
	}
	for _, r := range t.Rows() {
		rec := []string{strconv.FormatInt(r.GEOID, 10), strconv.Itoa(r.Count)}
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "aggregate: write row %d", r.GEOID)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "aggregate: flush")
	}
	return nil
}

// WriteFile writes t to dir/OutputName(batch), creating dir if needed, and
// returns the path written.
func WriteFile(dir, batch string, t CountTable) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "aggregate: create %s", dir)
	}

	path := filepath.Join(dir, OutputName(batch))
	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "aggregate: create %s", path)
	}

	if err := WriteCSV(f, t); err != nil {
		f.Close() //nolint:errcheck
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", eris.Wrapf(err, "aggregate: close %s", path)
	}
	return path, nil
}
