package domain

import (
	"github.com/shopspring/decimal"
)

// HandlePrefix is prepended to a ProductId to form the Shopify handle.
// The handle is the only identifier convention this system assumes on the
// Shopify side.
const HandlePrefix = "prod-"

// Product is the canonical, merged representation of one catalog item before
// any Shopify-specific translation. Exactly one Product exists per identifier
// after merge. Optional fields use Null types so that "absent" stays
// distinguishable from zero.
type Product struct {
	ID                 string
	Title              string
	DescriptionShort   string
	LongDescription    string
	Manufacturer       string
	Category           string
	CategoryPath       string
	PriceB2C           decimal.NullDecimal
	PriceB2BRegular    decimal.NullDecimal
	PriceB2BDiscounted decimal.NullDecimal
	Stock              int
	StockNextDelivery  string
	GrossWeight        decimal.NullDecimal
	NetWeight          decimal.NullDecimal
	WarrantyLabel      string
	WarrantyGroup      int // 0 means no warranty group
	WarrantyTiers      []WarrantyTier
	Images             []ProductImage
	EOL                bool
	NonReturnable      bool
	Promotion          bool
	Accessories        []string // ordered ProductIds of accessory products
}

// WarrantyTier is one computed warranty add-on price for a duration.
type WarrantyTier struct {
	RuleID int
	Name   string
	Months int
	AddOn  decimal.Decimal
}

// ProductImage is an encoded image payload attached to a product.
// Content is always base64.
type ProductImage struct {
	Filename string
	Content  string
	Primary  bool
}

// Handle returns the Shopify handle for this product.
func (p *Product) Handle() string {
	return HandlePrefix + p.ID
}

// BasePrice returns the price warranty tiers and variants are computed from:
// B2C gross if present, otherwise the regular B2B price, otherwise zero.
func (p *Product) BasePrice() decimal.Decimal {
	if p.PriceB2C.Valid {
		return p.PriceB2C.Decimal
	}
	if p.PriceB2BRegular.Valid {
		return p.PriceB2BRegular.Decimal
	}
	return decimal.Zero
}

// PrimaryImage returns the product's primary image. When no image carries the
// primary flag the first image wins; the merge stage orders flagged primaries
// first so this stays deterministic.
func (p *Product) PrimaryImage() (ProductImage, bool) {
	for _, img := range p.Images {
		if img.Primary {
			return img, true
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0], true
	}
	return ProductImage{}, false
}

// Body returns the HTML body used on the listing: the long description,
// falling back to the short one.
func (p *Product) Body() string {
	if p.LongDescription != "" {
		return p.LongDescription
	}
	return p.DescriptionShort
}
