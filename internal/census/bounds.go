package census

import "math"

// BBox is the axis-aligned box spanning every block in a BlockSet.
type BBox struct {
	MinLat float64 `json:"min_lat" yaml:"min_lat"`
	MinLon float64 `json:"min_lon" yaml:"min_lon"`
	MaxLat float64 `json:"max_lat" yaml:"max_lat"`
	MaxLon float64 `json:"max_lon" yaml:"max_lon"`
}

// ContainsLat reports whether lat lies in [MinLat, MaxLat].
func (b BBox) ContainsLat(lat float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat
}

// ContainsLon reports whether lon lies in [MinLon, MaxLon].
func (b BBox) ContainsLon(lon float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon
}

// Covers reports whether other lies entirely inside b.
func (b BBox) Covers(other BBox) bool {
	return other.MinLat >= b.MinLat && other.MaxLat <= b.MaxLat &&
		other.MinLon >= b.MinLon && other.MaxLon <= b.MaxLon
}

// BoundsOf returns the bounding rectangle of a single block.
func BoundsOf(b Block) BBox {
	bounds := b.Geom.Bounds()
	return BBox{
		MinLat: bounds.Min(1),
		MinLon: bounds.Min(0),
		MaxLat: bounds.Max(1),
		MaxLon: bounds.Max(0),
	}
}

// ComputeBounds takes the minimum of every block's minimums and the maximum
// of every block's maximums, independently per axis. The set is non-empty by
// construction.
func ComputeBounds(set *BlockSet) BBox {
	box := BBox{
		MinLat: math.Inf(1),
		MinLon: math.Inf(1),
		MaxLat: math.Inf(-1),
		MaxLon: math.Inf(-1),
	}
	for i := 0; i < set.Len(); i++ {
		bb := BoundsOf(set.At(i))
		box.MinLat = math.Min(box.MinLat, bb.MinLat)
		box.MinLon = math.Min(box.MinLon, bb.MinLon)
		box.MaxLat = math.Max(box.MaxLat, bb.MaxLat)
		box.MaxLon = math.Max(box.MaxLon, bb.MaxLon)
	}
	return box
}
