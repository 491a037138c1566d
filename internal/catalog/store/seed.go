// Package store provides the catalog sources: the embedded YAML seed and PostgreSQL.
package store

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/abgdnv/gostorefront/internal/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

var _ catalog.Loader = (*SeedLoader)(nil)

type seedFile struct {
	Categories []catalog.Category `yaml:"categories"`
	Products   []catalog.Product  `yaml:"products"`
}

// SeedLoader reads the catalog from a YAML document. Without a path it serves the embedded seed.
type SeedLoader struct {
	path string
}

// NewSeedLoader creates a SeedLoader. An empty path selects the embedded seed.
func NewSeedLoader(path string) *SeedLoader {
	return &SeedLoader{path: path}
}

// Load parses the seed document.
func (l *SeedLoader) Load(_ context.Context) ([]catalog.Product, []catalog.Category, error) {
	data := defaultSeed
	if l.path != "" {
		var err error
		if data, err = os.ReadFile(l.path); err != nil {
			return nil, nil, fmt.Errorf("failed to read seed file %s: %w", l.path, err)
		}
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	return seed.Products, seed.Categories, nil
}

// Default builds the catalog from the embedded seed.
func Default() (*catalog.Catalog, error) {
	return catalog.Load(context.Background(), NewSeedLoader(""))
}
