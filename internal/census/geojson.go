package census

import (
	"encoding/json"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// GEOIDProperty is the feature property (or shapefile attribute) holding the block id.
const GEOIDProperty = "geoid"

// LoadGeoJSON reads a FeatureCollection of block polygons. Every feature must
// carry an integer geoid property; features without geometry are skipped.
func LoadGeoJSON(path string) (*BlockSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "census: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "census: decode geojson %s", path)
	}

	blocks := make([]Block, 0, len(fc.Features))
	var skipped int
	for i, f := range fc.Features {
		geoid, err := parseGEOID(lookupProperty(f.Properties, GEOIDProperty))
		if err != nil {
			return nil, eris.Wrapf(err, "census: feature %d", i)
		}

		mp, err := toMultiPolygon(f.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "census: feature %d (geoid %d)", i, geoid)
		}
		if mp == nil || mp.Empty() {
			skipped++
			continue
		}

		blocks = append(blocks, Block{GEOID: geoid, Geom: mp})
	}

	if skipped > 0 {
		zap.L().Warn("census: skipped features without geometry",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}

	return NewBlockSet(blocks)
}

// lookupProperty finds key case-insensitively.
func lookupProperty(props map[string]interface{}, key string) interface{} {
	if v, ok := props[key]; ok {
		return v
	}
	for k, v := range props {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

// parseGEOID accepts the geoid as a JSON string or number.
func parseGEOID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, eris.Wrapf(err, "parse geoid %q", t)
		}
		return id, nil
	case float64:
		if t != math.Trunc(t) || math.Abs(t) > 1<<53 {
			return 0, eris.Errorf("geoid %v is not an integer", t)
		}
		return int64(t), nil
	case json.Number:
		id, err := t.Int64()
		if err != nil {
			return 0, eris.Wrapf(err, "parse geoid %q", t.String())
		}
		return id, nil
	case nil:
		return 0, eris.New("missing geoid property")
	default:
		return 0, eris.Errorf("unsupported geoid type %T", v)
	}
}
