package domain

import "github.com/shopspring/decimal"

// RemoteListing is the Shopify-side view of a product. Shopify owns this
// representation; the sync only reads and writes it through the catalog
// client and never assumes authority over Shopify's id space except via the
// handle convention.
type RemoteListing struct {
	RemoteID        int64
	Handle          string
	Title           string
	BodyHTML        string
	Price           decimal.NullDecimal // price of the first variant
	SKU             string
	Stock           int // inventory quantity of the first variant
	PrimaryImageSrc string
	ImageSrcs       []string
	Tags            []string
}
