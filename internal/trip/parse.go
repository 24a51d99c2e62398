package trip

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultTimestampLayout matches the TLC yellow-cab export format.
const DefaultTimestampLayout = "2006-01-02 15:04:05"

// rowParser accumulates field parse failures for a single row.
type rowParser struct {
	row    []string
	layout string
	bad    bool
}

func (p *rowParser) field(i int) (string, bool) {
	v := strings.TrimSpace(p.row[i])
	if v == "" {
		p.bad = true
		return "", false
	}
	return v, true
}

func (p *rowParser) integer(i int) int {
	v, ok := p.field(i)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.bad = true
		return 0
	}
	return n
}

func (p *rowParser) number(i int) float64 {
	v, ok := p.field(i)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		p.bad = true
		return 0
	}
	return f
}

func (p *rowParser) timestamp(i int) time.Time {
	v, ok := p.field(i)
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(p.layout, v)
	if err != nil {
		p.bad = true
		return time.Time{}
	}
	return ts
}

func (p *rowParser) text(i int) string {
	v, _ := p.field(i)
	return v
}

// ParseRow converts one raw row in Columns order into a Record. It never
// fails: a wrong column count or any missing or malformed field marks the
// record Incomplete so the cleaner drops it.
func ParseRow(row []string, layout string) Record {
	if len(row) != len(Columns) {
		return Record{Incomplete: true}
	}
	if layout == "" {
		layout = DefaultTimestampLayout
	}

	p := &rowParser{row: row, layout: layout}
	r := Record{
		VendorID:             p.integer(0),
		PickupAt:             p.timestamp(1),
		DropoffAt:            p.timestamp(2),
		PassengerCount:       p.integer(3),
		TripDistance:         p.number(4),
		PickupLon:            p.number(5),
		PickupLat:            p.number(6),
		RateCodeID:           p.integer(7),
		StoreAndFwdFlag:      p.text(8),
		DropoffLon:           p.number(9),
		DropoffLat:           p.number(10),
		PaymentType:          p.integer(11),
		FareAmount:           p.number(12),
		Extra:                p.number(13),
		MTATax:               p.number(14),
		TipAmount:            p.number(15),
		TollsAmount:          p.number(16),
		ImprovementSurcharge: p.number(17),
		TotalAmount:          p.number(18),
	}
	r.Incomplete = p.bad
	return r
}
