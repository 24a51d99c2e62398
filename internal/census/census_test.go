package census

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// square returns a one-polygon block covering [minLon,maxLon]x[minLat,maxLat].
func square(geoid int64, minLon, minLat, maxLon, maxLat float64) Block {
	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}})
	mp := geom.NewMultiPolygon(geom.XY)
	if err := mp.Push(poly); err != nil {
		panic(err)
	}
	return Block{GEOID: geoid, Geom: mp}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewBlockSet_Empty(t *testing.T) {
	_, err := NewBlockSet(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestNewBlockSet_DuplicateGEOID(t *testing.T) {
	_, err := NewBlockSet([]Block{
		square(1, 0, 0, 1, 1),
		square(1, 1, 1, 2, 2),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate geoid 1")
}

func TestNewBlockSet_MissingGeometry(t *testing.T) {
	_, err := NewBlockSet([]Block{{GEOID: 5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no geometry")
}

func TestBlockSet_Lookup(t *testing.T) {
	set, err := NewBlockSet([]Block{square(10, 0, 0, 1, 1), square(20, 1, 0, 2, 1)})
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, int64(20), set.At(1).GEOID)

	b, ok := set.Lookup(10)
	require.True(t, ok)
	assert.Equal(t, int64(10), b.GEOID)

	_, ok = set.Lookup(99)
	assert.False(t, ok)
}

func TestComputeBounds(t *testing.T) {
	set, err := NewBlockSet([]Block{
		square(1, -74.05, 40.60, -73.95, 40.70),
		square(2, -73.90, 40.75, -73.70, 40.90),
		square(3, -74.25, 40.50, -74.10, 40.55),
	})
	require.NoError(t, err)

	box := ComputeBounds(set)
	assert.Equal(t, BBox{MinLat: 40.50, MinLon: -74.25, MaxLat: 40.90, MaxLon: -73.70}, box)
}

func TestComputeBounds_CoversEveryBlock(t *testing.T) {
	blocks := []Block{
		square(1, 3, -2, 4, 5),
		square(2, -8, 1, -1, 2),
		square(3, 0, 0, 10, 0.5),
		square(4, 2, -9, 2.5, -8),
	}
	set, err := NewBlockSet(blocks)
	require.NoError(t, err)

	box := ComputeBounds(set)
	for _, b := range blocks {
		assert.True(t, box.Covers(BoundsOf(b)), "block %d escapes %+v", b.GEOID, box)
	}
}

func TestComputeBounds_SingleBlock(t *testing.T) {
	set, err := NewBlockSet([]Block{square(7, 1, 2, 3, 4)})
	require.NoError(t, err)
	assert.Equal(t, BBox{MinLat: 2, MinLon: 1, MaxLat: 4, MaxLon: 3}, ComputeBounds(set))
}

func TestBBox_ContainsClosedInterval(t *testing.T) {
	box := BBox{MinLat: 40, MinLon: -75, MaxLat: 41, MaxLon: -73}

	assert.True(t, box.ContainsLat(40))
	assert.True(t, box.ContainsLat(41))
	assert.False(t, box.ContainsLat(41.0001))
	assert.True(t, box.ContainsLon(-75))
	assert.False(t, box.ContainsLon(-72.9))
}

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"geoid": "360610001001", "name": "a"},
      "geometry": {"type": "Polygon", "coordinates": [[[-74, 40], [-73, 40], [-73, 41], [-74, 41], [-74, 40]]]}
    },
    {
      "type": "Feature",
      "properties": {"GEOID": 360610001002},
      "geometry": {"type": "MultiPolygon", "coordinates": [[[[-73, 40], [-72, 40], [-72, 41], [-73, 41], [-73, 40]]]]}
    },
    {
      "type": "Feature",
      "properties": {"geoid": "360610001003"},
      "geometry": null
    }
  ]
}`

func TestLoadGeoJSON(t *testing.T) {
	path := writeFile(t, "blocks.geojson", sampleGeoJSON)

	set, err := LoadGeoJSON(path)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, int64(360610001001), set.At(0).GEOID)
	assert.Equal(t, int64(360610001002), set.At(1).GEOID)
	assert.Equal(t, 1, set.At(0).Geom.NumPolygons())

	box := ComputeBounds(set)
	assert.Equal(t, BBox{MinLat: 40, MinLon: -74, MaxLat: 41, MaxLon: -72}, box)
}

func TestLoadGeoJSON_BadGEOID(t *testing.T) {
	path := writeFile(t, "blocks.geojson", `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"geoid":"abc"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`)

	_, err := LoadGeoJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature 0")
}

func TestLoadGeoJSON_MissingGEOID(t *testing.T) {
	path := writeFile(t, "blocks.geojson", `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`)

	_, err := LoadGeoJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing geoid")
}

func TestLoadGeoJSON_UnsupportedGeometry(t *testing.T) {
	path := writeFile(t, "blocks.geojson", `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"geoid":1},"geometry":{"type":"Point","coordinates":[0,0]}}]}`)

	_, err := LoadGeoJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported geometry type")
}

func TestLoadGeoJSON_MissingFile(t *testing.T) {
	_, err := LoadGeoJSON(filepath.Join(t.TempDir(), "nope.geojson"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "census: read")
}

func TestLoadGeoJSON_NotJSON(t *testing.T) {
	path := writeFile(t, "blocks.geojson", "not json")
	_, err := LoadGeoJSON(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode geojson")
}

func TestParseGEOID(t *testing.T) {
	id, err := parseGEOID("  42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = parseGEOID(float64(360610001001))
	require.NoError(t, err)
	assert.Equal(t, int64(360610001001), id)

	_, err = parseGEOID(1.5)
	assert.Error(t, err)

	_, err = parseGEOID(true)
	assert.Error(t, err)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("blocks.kml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported block file")
}

func TestLoad_DispatchesGeoJSON(t *testing.T) {
	path := writeFile(t, "blocks.json", sampleGeoJSON)
	set, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
}
