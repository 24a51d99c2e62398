// Package demographics holds the block-level socio-economic attribute table.
package demographics

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/taxiblocks/internal/tabular"
)

// KeyColumn is the column that joins attribute rows to census blocks.
const KeyColumn = "geoid"

// Table maps a block GEOID to its attribute values. It is read-only after Load.
type Table struct {
	columns []string
	rows    map[int64][]string
}

// Row is the attribute values of one block, in Table column order.
type Row struct {
	GEOID  int64
	Values []string
}

// Options configures Load.
type Options struct {
	Encoding string // CSV charset label
	Sheet    string // XLSX sheet name
}

// Load reads an attribute table from a CSV or XLSX file with a header row.
func Load(path string, opts Options) (*Table, error) {
	raw, err := tabular.ReadFile(path, tabular.FileOptions{
		HasHeader: true,
		Encoding:  opts.Encoding,
		Sheet:     opts.Sheet,
	})
	if err != nil {
		return nil, eris.Wrap(err, "demographics: load")
	}
	return FromTable(raw)
}

// FromTable builds a Table from parsed rows. The geoid column is located by
// name; a leading column with an empty header is a row index written by
// dataframe tools and is dropped. All remaining columns become attributes.
func FromTable(raw *tabular.Table) (*Table, error) {
	if len(raw.Header) == 0 {
		return nil, eris.New("demographics: missing header row")
	}

	keyIdx := -1
	var attrIdx []int
	var columns []string
	for i, name := range raw.Header {
		name = strings.TrimSpace(name)
		switch {
		case strings.EqualFold(name, KeyColumn):
			keyIdx = i
		case i == 0 && name == "":
		default:
			attrIdx = append(attrIdx, i)
			columns = append(columns, name)
		}
	}
	if keyIdx < 0 {
		return nil, eris.Errorf("demographics: no %q column in header", KeyColumn)
	}

	rows := make(map[int64][]string, len(raw.Rows))
	for n, rec := range raw.Rows {
		if keyIdx >= len(rec) {
			return nil, eris.Errorf("demographics: row %d has no %s value", n+1, KeyColumn)
		}
		geoid, err := strconv.ParseInt(strings.TrimSpace(rec[keyIdx]), 10, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "demographics: row %d: parse %s", n+1, KeyColumn)
		}
		if _, dup := rows[geoid]; dup {
			return nil, eris.Errorf("demographics: duplicate %s %d at row %d", KeyColumn, geoid, n+1)
		}

		values := make([]string, len(attrIdx))
		for j, idx := range attrIdx {
			if idx < len(rec) {
				values[j] = rec[idx]
			}
		}
		rows[geoid] = values
	}

	return &Table{columns: columns, rows: rows}, nil
}

// Len returns the number of blocks with attributes.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the attribute names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Suffixed returns the attribute names with suffix appended to each.
func (t *Table) Suffixed(suffix string) []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c + suffix
	}
	return out
}

// Get returns the attributes for geoid.
func (t *Table) Get(geoid int64) (Row, bool) {
	v, ok := t.rows[geoid]
	if !ok {
		return Row{}, false
	}
	return Row{GEOID: geoid, Values: v}, true
}

// Has reports whether geoid has an attribute row.
func (t *Table) Has(geoid int64) bool {
	_, ok := t.rows[geoid]
	return ok
}
