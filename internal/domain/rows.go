package domain

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// ProductRow is one raw row from the wortmann_produkte table.
type ProductRow struct {
	ProductID          string              `db:"product_id"`
	Title              sql.NullString      `db:"title"`
	DescriptionShort   sql.NullString      `db:"description_short"`
	LongDescription    sql.NullString      `db:"long_description"`
	Manufacturer       sql.NullString      `db:"manufacturer"`
	Category           sql.NullString      `db:"category"`
	CategoryPath       sql.NullString      `db:"category_path"`
	Warranty           sql.NullString      `db:"warranty"`
	PriceB2BRegular    decimal.NullDecimal `db:"price_b2b_regular"`
	PriceB2BDiscounted decimal.NullDecimal `db:"price_b2b_discounted"`
	PriceB2CInclVAT    decimal.NullDecimal `db:"price_b2c_incl_vat"`
	Stock              sql.NullInt64       `db:"stock"`
	StockNextDelivery  sql.NullString      `db:"stock_next_delivery"`
	GrossWeight        decimal.NullDecimal `db:"gross_weight"`
	NetWeight          decimal.NullDecimal `db:"net_weight"`
	NonReturnable      bool                `db:"non_returnable"`
	EOL                bool                `db:"eol"`
	Promotion          bool                `db:"promotion"`
	WarrantyGroup      sql.NullInt64       `db:"garantiegruppe"`
	AccessoryProducts  sql.NullString      `db:"accessory_products"` // pipe-separated ProductIds
}

// ImageRow is one raw row from the bilder_shopify table. Payload is either
// hex-encoded binary (optionally 0x-prefixed) or already base64.
type ImageRow struct {
	SupplierAID string         `db:"supplier_aid"`
	Filename    sql.NullString `db:"filename"`
	Payload     sql.NullString `db:"payload"`
	IsPrimary   bool           `db:"is_primary"`
}

// WarrantyRow is one pricing rule from the garantie_optionen table.
// Percentage is a fraction of the base price (0.05 = 5%).
type WarrantyRow struct {
	ID         int             `db:"id"`
	Name       string          `db:"name"`
	Months     int             `db:"monate"`
	Percentage decimal.Decimal `db:"prozentsatz"`
	Minimum    decimal.Decimal `db:"minimum"`
	Group      int             `db:"garantiegruppe"`
}
