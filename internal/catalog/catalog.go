package catalog

import (
	"fmt"
	"slices"

	storefronterrors "github.com/abgdnv/gostorefront/internal/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Catalog is an immutable snapshot of the products and categories offered by the storefront.
// It is safe for concurrent use.
type Catalog struct {
	products   []Product
	categories []Category
	index      map[string]int
	maxPrice   int64
}

// New validates the records and builds a catalog. Product IDs and category slugs must be unique
// and every product must reference a known category.
func New(products []Product, categories []Category) (*Catalog, error) {
	slugs := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if err := validate.Struct(c); err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", storefronterrors.ErrInvalidCatalog, c.ID, err)
		}
		if _, dup := slugs[c.Slug]; dup {
			return nil, fmt.Errorf("%w: duplicate category slug %q", storefronterrors.ErrInvalidCatalog, c.Slug)
		}
		slugs[c.Slug] = struct{}{}
	}

	index := make(map[string]int, len(products))
	for i, p := range products {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("%w: product %q: %v", storefronterrors.ErrInvalidCatalog, p.ID, err)
		}
		if _, dup := index[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %q", storefronterrors.ErrInvalidCatalog, p.ID)
		}
		if _, known := slugs[p.Category]; !known {
			return nil, fmt.Errorf("%w: product %q references unknown category %q", storefronterrors.ErrInvalidCatalog, p.ID, p.Category)
		}
		index[p.ID] = i
	}

	return &Catalog{
		products:   slices.Clone(products),
		categories: slices.Clone(categories),
		index:      index,
		maxPrice:   MaxPrice(products),
	}, nil
}

// Products returns a copy of the products in catalog order.
func (c *Catalog) Products() []Product {
	return slices.Clone(c.products)
}

// Categories returns a copy of the categories.
func (c *Catalog) Categories() []Category {
	return slices.Clone(c.categories)
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// MaxPrice returns the highest product price, the upper bound of the price filter.
func (c *Catalog) MaxPrice() int64 {
	return c.maxPrice
}

// FindByID returns the product with the given ID or ErrProductNotFound.
func (c *Catalog) FindByID(id string) (Product, error) {
	i, ok := c.index[id]
	if !ok {
		return Product{}, fmt.Errorf("find product %q: %w", id, storefronterrors.ErrProductNotFound)
	}
	return c.products[i], nil
}

// Filter applies f to the catalog.
func (c *Catalog) Filter(f Filter) []Product {
	return Apply(c.products, f)
}

// Related returns up to limit products related to the product with the given ID.
// An unknown ID yields ErrProductNotFound rather than an empty list.
func (c *Catalog) Related(id string, limit int) ([]Product, error) {
	target, err := c.FindByID(id)
	if err != nil {
		return nil, err
	}
	return Related(c.products, target, limit), nil
}

// Featured returns the products flagged as featured, in catalog order.
func (c *Catalog) Featured() []Product {
	featured := make([]Product, 0)
	for _, p := range c.products {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	return featured
}

// ByCategory returns the products of the given category slug. AllCategories returns everything.
func (c *Catalog) ByCategory(slug string) []Product {
	if slug == AllCategories {
		return c.Products()
	}
	found := make([]Product, 0)
	for _, p := range c.products {
		if p.Category == slug {
			found = append(found, p)
		}
	}
	return found
}

// Search returns the products matching the query in name, description or tags.
func (c *Catalog) Search(query string) []Product {
	return Search(c.products, query)
}
