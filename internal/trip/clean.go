package trip

import (
	"math"

	"github.com/sells-group/taxiblocks/internal/census"
)

// CleanStats counts how many records each filter removed.
type CleanStats struct {
	Input           int `json:"input" yaml:"input"`
	Incomplete      int `json:"incomplete" yaml:"incomplete"`
	BackInTime      int `json:"back_in_time" yaml:"back_in_time"`
	NegativeAmount  int `json:"negative_amount" yaml:"negative_amount"`
	InvalidRateCode int `json:"invalid_rate_code" yaml:"invalid_rate_code"`
	OutOfBounds     int `json:"out_of_bounds" yaml:"out_of_bounds"`
	Kept            int `json:"kept" yaml:"kept"`
}

// Dropped returns the number of records removed by any filter.
func (s CleanStats) Dropped() int { return s.Input - s.Kept }

// ValidRateCode reports whether id is a known rate code (1 through 6).
func ValidRateCode(id int) bool {
	return id >= 1 && id <= 6
}

type verdict int

const (
	keep verdict = iota
	dropIncomplete
	dropBackInTime
	dropNegativeAmount
	dropRateCode
	dropOutOfBounds
)

// Clean returns the records that pass every filter, in input order, along
// with per-filter drop counts. Each record is judged on its own fields, so
// cleaning is idempotent.
func Clean(records []Record, box census.BBox) ([]Record, CleanStats) {
	stats := CleanStats{Input: len(records)}
	kept := make([]Record, 0, len(records))

	for _, r := range records {
		switch judge(r, box) {
		case dropIncomplete:
			stats.Incomplete++
		case dropBackInTime:
			stats.BackInTime++
		case dropNegativeAmount:
			stats.NegativeAmount++
		case dropRateCode:
			stats.InvalidRateCode++
		case dropOutOfBounds:
			stats.OutOfBounds++
		default:
			kept = append(kept, r)
		}
	}

	stats.Kept = len(kept)
	return kept, stats
}

func judge(r Record, box census.BBox) verdict {
	if r.Incomplete || hasNaN(r) {
		return dropIncomplete
	}
	if r.PickupAt.After(r.DropoffAt) {
		return dropBackInTime
	}
	if r.TipAmount < 0 || r.TollsAmount < 0 || r.TotalAmount < 0 ||
		r.FareAmount < 0 || r.Extra < 0 || r.ImprovementSurcharge < 0 {
		return dropNegativeAmount
	}
	if !ValidRateCode(r.RateCodeID) {
		return dropRateCode
	}
	if !withinBounds(r, box) {
		return dropOutOfBounds
	}
	return keep
}

// withinBounds passes when either end's latitude is inside the box and,
// separately, either end's longitude is inside the box. The pickup point
// itself may still lie off the map.
func withinBounds(r Record, box census.BBox) bool {
	latOK := box.ContainsLat(r.PickupLat) || box.ContainsLat(r.DropoffLat)
	lonOK := box.ContainsLon(r.PickupLon) || box.ContainsLon(r.DropoffLon)
	return latOK && lonOK
}

func hasNaN(r Record) bool {
	for _, f := range []float64{
		r.TripDistance, r.PickupLon, r.PickupLat, r.DropoffLon, r.DropoffLat,
		r.FareAmount, r.Extra, r.MTATax, r.TipAmount, r.TollsAmount,
		r.ImprovementSurcharge, r.TotalAmount,
	} {
		if math.IsNaN(f) {
			return true
		}
	}
	return false
}
