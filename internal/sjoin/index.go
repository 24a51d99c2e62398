// Package sjoin assigns trip pickups to census blocks and attaches the
// block's socio-economic attributes.
package sjoin

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/location"

	"github.com/sells-group/taxiblocks/internal/census"
)

// queryTolerance pads point queries so that candidates touching the point's
// rectangle are never missed; exact containment is decided afterwards.
const queryTolerance = 1e-9

// entry is a block's bounding rectangle in the R-tree.
type entry struct {
	idx  int
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect { return e.rect }

// Index answers "which block contains this point" over a BlockSet.
// It is immutable after NewIndex and safe to share.
type Index struct {
	blocks *census.BlockSet
	tree   *rtreego.Rtree
}

// NewIndex bulk-loads the bounding rectangle of every block.
func NewIndex(blocks *census.BlockSet) (*Index, error) {
	objs := make([]rtreego.Spatial, 0, blocks.Len())
	for i := 0; i < blocks.Len(); i++ {
		bb := census.BoundsOf(blocks.At(i))
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{bb.MinLon, bb.MinLat},
			rtreego.Point{bb.MaxLon, bb.MaxLat},
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sjoin: index block %d", blocks.At(i).GEOID)
		}
		objs = append(objs, &entry{idx: i, rect: rect})
	}

	return &Index{
		blocks: blocks,
		tree:   rtreego.NewTree(2, 25, 50, objs...),
	}, nil
}

// Locate returns the GEOID of the block whose polygon strictly contains the
// point. Points on a block edge are not contained. When several blocks
// contain the point, the one loaded first wins.
func (ix *Index) Locate(lon, lat float64) (int64, bool) {
	hits := ix.tree.SearchIntersect(rtreego.Point{lon, lat}.ToRect(queryTolerance))
	if len(hits) == 0 {
		return 0, false
	}

	candidates := make([]int, len(hits))
	for i, h := range hits {
		candidates[i] = h.(*entry).idx
	}
	sort.Ints(candidates)

	c := geom.Coord{lon, lat}
	for _, i := range candidates {
		b := ix.blocks.At(i)
		if Within(b.Geom, c) {
			return b.GEOID, true
		}
	}
	return 0, false
}

// Within reports whether c lies in the interior of mp.
func Within(mp *geom.MultiPolygon, c geom.Coord) bool {
	for i := 0; i < mp.NumPolygons(); i++ {
		if polygonContains(mp.Polygon(i), c) {
			return true
		}
	}
	return false
}

// polygonContains requires c inside the shell and outside every hole,
// touching neither.
func polygonContains(p *geom.Polygon, c geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	layout := p.Layout()
	if xy.LocatePointInRing(layout, c, p.LinearRing(0).FlatCoords()) != location.Interior {
		return false
	}
	for j := 1; j < p.NumLinearRings(); j++ {
		if xy.LocatePointInRing(layout, c, p.LinearRing(j).FlatCoords()) != location.Exterior {
			return false
		}
	}
	return true
}
