// Package tabular reads the delimited and spreadsheet files the pipeline consumes.
package tabular

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// Table is a fully materialized file: an optional header plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter  rune   // default ','
	HasHeader  bool   // if true, the first row is returned as Header
	Encoding   string // HTML charset label; "" or utf-8 reads bytes as-is
	Comment    rune   // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// ReadCSV reads every row of r. Rows may have differing field counts;
// callers validate row shape themselves.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	src, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(src)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	t := &Table{}
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}

		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}

		if first && opts.HasHeader {
			first = false
			t.Header = record
			continue
		}
		first = false

		t.Rows = append(t.Rows, record)
	}

	return t, nil
}

// decodeReader wraps r with a charset decoder for non-UTF-8 inputs.
func decodeReader(r io.Reader, label string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		return r, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(r), nil
}
