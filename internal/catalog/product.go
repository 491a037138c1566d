// Package catalog holds the read-only product catalog and the filter/sort engine used to browse it.
package catalog

import "github.com/shopspring/decimal"

// Product is a single catalog record. Price is expressed in minor currency units.
// Products are immutable once loaded.
type Product struct {
	ID          string   `json:"id"                 yaml:"id"          validate:"required,max=64"`
	Name        string   `json:"name"               yaml:"name"        validate:"required,max=200"`
	Description string   `json:"description"        yaml:"description" validate:"max=2000"`
	Price       int64    `json:"price"              yaml:"price"       validate:"min=0"`
	Category    string   `json:"category"           yaml:"category"    validate:"required"`
	Image       string   `json:"image"              yaml:"image"`
	Seller      string   `json:"seller"             yaml:"seller"`
	Rating      float64  `json:"rating"             yaml:"rating"      validate:"min=0,max=5"`
	Reviews     int      `json:"reviews"            yaml:"reviews"     validate:"min=0"`
	Featured    bool     `json:"featured,omitempty" yaml:"featured"`
	Discount    int      `json:"discount,omitempty" yaml:"discount"    validate:"min=0,max=100"`
	Tags        []string `json:"tags,omitempty"     yaml:"tags"        validate:"dive,required"`
	Stock       int      `json:"stock"              yaml:"stock"       validate:"min=0"`
}

// Category groups products; Slug is the filter key.
type Category struct {
	ID   string `json:"id"   yaml:"id"   validate:"required"`
	Name string `json:"name" yaml:"name" validate:"required"`
	Slug string `json:"slug" yaml:"slug" validate:"required"`
}

var hundred = decimal.NewFromInt(100)

// DiscountedPrice returns the price after applying the discount percent, rounded to the
// nearest unit. Products without a discount return their list price.
func (p Product) DiscountedPrice() int64 {
	if p.Discount <= 0 {
		return p.Price
	}
	factor := hundred.Sub(decimal.NewFromInt(int64(p.Discount))).Div(hundred)
	return decimal.NewFromInt(p.Price).Mul(factor).Round(0).IntPart()
}

// HasTag reports whether the product carries the given tag.
func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
