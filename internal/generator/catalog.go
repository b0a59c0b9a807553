// Package generator produces synthetic production-error payloads and sends
// them to the ingestion webhook.
package generator

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

var ErrEmptyCatalog = errors.New("catalog has no entries")

// Entry is one synthetic incident.
type Entry struct {
	Name            string         `yaml:"name"`
	StatusCode      int            `yaml:"status_code"`
	Detail          string         `yaml:"detail"`
	Severity        string         `yaml:"severity"`
	Context         map[string]any `yaml:"context"`
	Metrics         map[string]any `yaml:"metrics"`
	SuggestedChecks []string       `yaml:"suggested_checks"`
}

// Catalog is the ordered list of incidents the generator rotates through.
type Catalog []Entry

// DefaultCatalog returns the built-in incident catalog.
func DefaultCatalog() (Catalog, error) {
	return LoadCatalog(catalogYAML)
}

// LoadCatalog parses a YAML list of entries. Every entry needs a name.
func LoadCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c) == 0 {
		return nil, ErrEmptyCatalog
	}
	for i, e := range c {
		if e.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: name is required", i)
		}
	}
	return c, nil
}
