package tabular

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// FileOptions configures ReadFile for either supported format.
type FileOptions struct {
	HasHeader bool
	Encoding  string // CSV only
	Sheet     string // XLSX only; empty selects the first sheet
}

// ReadFile reads path as XLSX when it has an .xlsx extension and as CSV
// otherwise. Trip batch files often carry no extension at all.
func ReadFile(path string, opts FileOptions) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path, XLSXOptions{SheetName: opts.Sheet, HasHeader: opts.HasHeader})
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	t, err := ReadCSV(f, CSVOptions{HasHeader: opts.HasHeader, Encoding: opts.Encoding})
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: read %s", path)
	}
	return t, nil
}
