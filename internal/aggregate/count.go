// Package aggregate turns joined trips into per-block pickup counts.
package aggregate

import (
	"sort"

	"github.com/sells-group/taxiblocks/internal/sjoin"
)

// CountTable maps a pickup block GEOID to the number of trips that started there.
type CountTable map[int64]int

// Row is one line of a count table.
type Row struct {
	GEOID int64
	Count int
}

// Count groups joined trips by pickup block. Blocks without trips are absent.
func Count(joined []sjoin.Joined) CountTable {
	t := make(CountTable)
	for _, j := range joined {
		t[j.PickupGEOID]++
	}
	return t
}

// Total returns the number of trips counted.
func (t CountTable) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

// Rows returns the table ordered by GEOID.
func (t CountTable) Rows() []Row {
	rows := make([]Row, 0, len(t))
	for geoid, c := range t {
		rows = append(rows, Row{GEOID: geoid, Count: c})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].GEOID < rows[j].GEOID })
	return rows
}
