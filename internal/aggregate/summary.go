package aggregate

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of pickups across blocks in one table.
type Summary struct {
	Blocks int     `json:"blocks" yaml:"blocks"`
	Trips  int     `json:"trips" yaml:"trips"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Max    int     `json:"max" yaml:"max"`
}

// Summarize computes per-block statistics for t. An empty table yields a zero Summary.
func Summarize(t CountTable) Summary {
	if len(t) == 0 {
		return Summary{}
	}

	counts := make([]float64, 0, len(t))
	for _, c := range t {
		counts = append(counts, float64(c))
	}

	s := Summary{
		Blocks: len(t),
		Trips:  int(floats.Sum(counts)),
		Max:    int(floats.Max(counts)),
	}
	if len(counts) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(counts, nil)
	} else {
		s.Mean = counts[0]
	}
	return s
}
