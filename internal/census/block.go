// Package census holds the census-block polygon set and the map boundary
// derived from it. Both are loaded once per run and never mutated.
package census

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Block is one census block (group) boundary keyed by its GEOID.
type Block struct {
	GEOID int64
	Geom  *geom.MultiPolygon
}

// BlockSet is an ordered, read-only collection of blocks with unique GEOIDs.
// Load order is preserved and used to break ties between overlapping blocks.
type BlockSet struct {
	blocks []Block
	byID   map[int64]int
}

// NewBlockSet validates blocks and wraps them in a BlockSet. It fails on an
// empty input, a block without geometry, or a repeated GEOID.
func NewBlockSet(blocks []Block) (*BlockSet, error) {
	if len(blocks) == 0 {
		return nil, eris.New("census: block set is empty")
	}

	byID := make(map[int64]int, len(blocks))
	for i, b := range blocks {
		if b.Geom == nil || b.Geom.Empty() {
			return nil, eris.Errorf("census: block %d has no geometry", b.GEOID)
		}
		if prev, dup := byID[b.GEOID]; dup {
			return nil, eris.Errorf("census: duplicate geoid %d (records %d and %d)", b.GEOID, prev, i)
		}
		byID[b.GEOID] = i
	}

	return &BlockSet{blocks: blocks, byID: byID}, nil
}

// Len returns the number of blocks.
func (s *BlockSet) Len() int { return len(s.blocks) }

// At returns the i-th block in load order.
func (s *BlockSet) At(i int) Block { return s.blocks[i] }

// Lookup returns the block with the given GEOID.
func (s *BlockSet) Lookup(geoid int64) (Block, bool) {
	i, ok := s.byID[geoid]
	if !ok {
		return Block{}, false
	}
	return s.blocks[i], true
}

// toMultiPolygon normalises Polygon and MultiPolygon geometries.
func toMultiPolygon(g geom.T) (*geom.MultiPolygon, error) {
	switch t := g.(type) {
	case *geom.MultiPolygon:
		return t, nil
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(t.Layout())
		if err := mp.Push(t); err != nil {
			return nil, eris.Wrap(err, "census: wrap polygon")
		}
		return mp, nil
	case nil:
		return nil, nil
	default:
		return nil, eris.Errorf("census: unsupported geometry type %T", g)
	}
}
