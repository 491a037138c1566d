package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// SortKey selects the order of a filtered product list.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortRating    SortKey = "rating"
)

// AllCategories is the category sentinel that disables category filtering.
const AllCategories = "all"

// DefaultRelatedLimit is the number of related products returned when no limit is given.
const DefaultRelatedLimit = 4

// ParseSortKey converts a raw value into a SortKey.
func ParseSortKey(raw string) (SortKey, bool) {
	switch key := SortKey(raw); key {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortRating:
		return key, true
	default:
		return "", false
	}
}

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Contains reports whether Min <= price <= Max.
func (r PriceRange) Contains(price int64) bool {
	return price >= r.Min && price <= r.Max
}

// Filter describes a browse request: category, inclusive price range, sort order and search term.
// An empty Category or AllCategories matches every category; an empty Search matches every product.
type Filter struct {
	Category string
	Price    PriceRange
	Sort     SortKey
	Search   string
}

// Apply returns a new slice with the products satisfying every predicate of the filter,
// ordered by its sort key. The input slice is not modified.
func Apply(products []Product, f Filter) []Product {
	term := strings.ToLower(f.Search)
	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if !matchesSearch(p, term) || !matchesCategory(p, f.Category) || !f.Price.Contains(p.Price) {
			continue
		}
		filtered = append(filtered, p)
	}
	sortProducts(filtered, f.Sort)
	return filtered
}

// Search returns the products whose name, description or tags contain the query, ignoring case.
func Search(products []Product, query string) []Product {
	term := strings.ToLower(query)
	found := make([]Product, 0)
	for _, p := range products {
		if matchesSearch(p, term) {
			found = append(found, p)
		}
	}
	return found
}

// MaxPrice returns the highest price in the list, or 0 for an empty list.
func MaxPrice(products []Product) int64 {
	var highest int64
	for _, p := range products {
		highest = max(highest, p.Price)
	}
	return highest
}

// Related returns up to limit products other than target that share its category or at least
// one of its tags, in catalog order. A zero limit yields an empty list; a negative limit means
// DefaultRelatedLimit.
func Related(products []Product, target Product, limit int) []Product {
	if limit < 0 {
		limit = DefaultRelatedLimit
	}
	if limit == 0 {
		return []Product{}
	}
	related := make([]Product, 0, limit)
	for _, p := range products {
		if len(related) == limit {
			break
		}
		if p.ID == target.ID {
			continue
		}
		if p.Category == target.Category || sharesTag(p, target) {
			related = append(related, p)
		}
	}
	return related
}

func matchesSearch(p Product, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func matchesCategory(p Product, category string) bool {
	return category == "" || category == AllCategories || p.Category == category
}

func sharesTag(a, b Product) bool {
	for _, tag := range a.Tags {
		if b.HasTag(tag) {
			return true
		}
	}
	return false
}

// sortProducts orders the slice in place. Unknown keys keep catalog order.
func sortProducts(products []Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(products, func(a, b Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(products, func(a, b Product) int { return cmp.Compare(b.Price, a.Price) })
	case SortRating:
		slices.SortStableFunc(products, func(a, b Product) int { return cmp.Compare(b.Rating, a.Rating) })
	case SortNewest:
		// no timestamps in the catalog, the identifier stands in for recency.
		// IDs compare byte-wise, not locale-aware; fine for the ASCII prod_N scheme.
		slices.SortStableFunc(products, func(a, b Product) int { return strings.Compare(b.ID, a.ID) })
	}
}
