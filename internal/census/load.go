package census

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Load reads a block polygon file, choosing the decoder by extension.
func Load(path string) (*BlockSet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return LoadGeoJSON(path)
	case ".shp":
		return LoadShapefile(path)
	default:
		return nil, eris.Errorf("census: unsupported block file %s (want .geojson or .shp)", path)
	}
}
