package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Loader reads products and categories from a catalog source.
type Loader interface {
	Load(ctx context.Context) ([]Product, []Category, error)
}

// Load reads the records from the loader and builds a validated catalog.
func Load(ctx context.Context, loader Loader) (*Catalog, error) {
	products, categories, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return New(products, categories)
}

// Holder publishes the current catalog to concurrent readers and lets it be swapped at runtime.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder creates a Holder serving c.
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Current returns the catalog in use.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Replace swaps in a new catalog. Readers holding the previous snapshot keep using it.
func (h *Holder) Replace(c *Catalog) {
	h.current.Store(c)
}

// Reload builds a new catalog from the loader and swaps it in. On failure the current catalog stays.
func (h *Holder) Reload(ctx context.Context, loader Loader) (*Catalog, error) {
	c, err := Load(ctx, loader)
	if err != nil {
		return nil, err
	}
	h.Replace(c)
	return c, nil
}

// FindByID looks the product up in the current catalog.
func (h *Holder) FindByID(id string) (Product, error) {
	return h.Current().FindByID(id)
}
