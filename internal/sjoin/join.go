package sjoin

import (
	"github.com/sells-group/taxiblocks/internal/demographics"
	"github.com/sells-group/taxiblocks/internal/trip"
)

// AttributeSuffix qualifies demographic attributes that describe the pickup block.
const AttributeSuffix = "_pickup"

// Joined is a cleaned trip with its pickup block and that block's attributes.
type Joined struct {
	trip.Record
	PickupGEOID int64
	Pickup      demographics.Row
}

// JoinStats counts the records lost at each inner join.
type JoinStats struct {
	Input          int `json:"input" yaml:"input"`
	NoBlock        int `json:"no_block" yaml:"no_block"`
	NoDemographics int `json:"no_demographics" yaml:"no_demographics"`
	Joined         int `json:"joined" yaml:"joined"`
}

// Joiner pairs trips with blocks and demographics. Both references are
// read-only and shared across batches.
type Joiner struct {
	index        *Index
	demographics *demographics.Table
}

// NewJoiner returns a Joiner over a block index and attribute table.
func NewJoiner(index *Index, table *demographics.Table) *Joiner {
	return &Joiner{index: index, demographics: table}
}

// AttributeColumns returns the attribute names carried by Joined.Pickup.Values.
func (j *Joiner) AttributeColumns() []string {
	return j.demographics.Suffixed(AttributeSuffix)
}

// Join keeps each record whose pickup point falls inside a block that also
// has an attribute row. Both misses drop the record without error.
func (j *Joiner) Join(records []trip.Record) ([]Joined, JoinStats) {
	stats := JoinStats{Input: len(records)}
	out := make([]Joined, 0, len(records))

	for _, r := range records {
		geoid, ok := j.index.Locate(r.PickupLon, r.PickupLat)
		if !ok {
			stats.NoBlock++
			continue
		}
		row, ok := j.demographics.Get(geoid)
		if !ok {
			stats.NoDemographics++
			continue
		}
		out = append(out, Joined{Record: r, PickupGEOID: geoid, Pickup: row})
	}

	stats.Joined = len(out)
	return out, stats
}
