package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the optional per-country override file.
const ManifestFile = "manifest.yaml"

// Manifest overrides the defaults of a country adapter.
type Manifest struct {
	Name          string     `yaml:"name"`
	ElectionTypes []string   `yaml:"election_types"`
	Format        FormatSpec `yaml:"format"`
}

// FormatSpec describes the CSV layout of every file of the country.
type FormatSpec struct {
	Delimiter string `yaml:"delimiter"`
	Encoding  string `yaml:"encoding"`
}

// LoadManifest reads <dir>/manifest.yaml. A missing file yields nil.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Format.Delimiter) > 1 {
		return nil, fmt.Errorf("manifest %s: delimiter %q must be one character", path, m.Format.Delimiter)
	}
	return &m, nil
}

// apply merges the manifest onto layout defaults.
func (m *Manifest) apply(name *string, types *[]string, opts *LoadOptions) {
	if m == nil {
		return
	}
	if m.Name != "" {
		*name = m.Name
	}
	if len(m.ElectionTypes) > 0 {
		*types = m.ElectionTypes
	}
	if m.Format.Delimiter != "" {
		opts.Separator = m.Format.Delimiter
	}
	if m.Format.Encoding != "" {
		opts.Encoding = m.Format.Encoding
	}
}
