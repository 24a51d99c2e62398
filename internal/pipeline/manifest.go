package pipeline

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ManifestName is the file WriteManifest produces inside the output directory.
const ManifestName = "manifest.yaml"

// WriteManifest writes report as YAML to path.
func WriteManifest(path string, report *RunReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "pipeline: marshal manifest")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "pipeline: create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "pipeline: write manifest %s", path)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read manifest %s", path)
	}
	var report RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse manifest %s", path)
	}
	return &report, nil
}
