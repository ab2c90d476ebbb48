package shopify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slimsamil/Wortmann2Shopify/internal/domain"
)

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestBuildPayloadWithWarrantyTiers(t *testing.T) {
	p := &domain.Product{
		ID:           "1100001",
		Title:        "TERRA PC-BUSINESS 5000",
		Manufacturer: "WORTMANN AG",
		Category:     "PC-Systeme",
		CategoryPath: "Hardware|PC-Systeme|Business",
		PriceB2C:     dec("999.90"),
		Stock:        12,
		WarrantyTiers: []domain.WarrantyTier{
			{RuleID: 1, Name: "Garantieerweiterung", Months: 36, AddOn: decimal.RequireFromString("20")},
			{RuleID: 2, Name: "Garantieerweiterung", Months: 60, AddOn: decimal.RequireFromString("50")},
		},
	}

	envelope := buildPayload(p)
	product := envelope.Product

	assert.Equal(t, "prod-1100001", product.Handle)
	assert.Equal(t, "WORTMANN AG", product.Vendor)
	assert.Equal(t, "Hardware, PC-Systeme, Business", product.Tags)

	require.Len(t, product.Variants, 2)
	assert.Equal(t, "1019.90", product.Variants[0].Price)
	assert.Equal(t, "1100001-G1", product.Variants[0].SKU)
	assert.Equal(t, "Garantieerweiterung 36 Monate", product.Variants[0].Option1)
	assert.Equal(t, "1049.90", product.Variants[1].Price)
	assert.Equal(t, "deny", product.Variants[0].InventoryPolicy)
	assert.Empty(t, product.Variants[0].InventoryManagement, "tier variants carry no tracked inventory")

	require.Len(t, product.Options, 1)
	assert.Equal(t, "Garantie", product.Options[0].Name)
	assert.Len(t, product.Options[0].Values, 2)

	// Stock still travels in the metafield when variants are warranty tiers.
	var stockValue string
	for _, m := range product.Metafields {
		if m.Key == "Inventarbestand" {
			stockValue = m.Value
		}
		assert.NotEqual(t, "warranty", m.Key, "warranty metafield only appears without tiers")
	}
	assert.Equal(t, "12", stockValue)
}

func TestBuildPayloadWithoutTiers(t *testing.T) {
	p := &domain.Product{
		ID:            "1100002",
		Title:         "TERRA Mouse",
		PriceB2C:      dec("9.99"),
		Stock:         250,
		WarrantyLabel: "24 Monate Garantie",
	}

	product := buildPayload(p).Product

	require.Len(t, product.Variants, 1)
	v := product.Variants[0]
	assert.Equal(t, "9.99", v.Price)
	assert.Equal(t, "1100002", v.SKU)
	assert.Equal(t, 250, v.InventoryQuantity)
	assert.Equal(t, "shopify", v.InventoryManagement)
	assert.Equal(t, "24 Monate Garantie", v.Option1)

	keys := make(map[string]string, len(product.Metafields))
	for _, m := range product.Metafields {
		keys[m.Key] = m.Value
	}
	assert.Equal(t, "24 Monate Garantie", keys["warranty"])
	assert.Equal(t, "250", keys["Inventarbestand"])
	assert.Equal(t, "0", keys["Price_B2B_Regular"], "absent price serializes as 0")
}

func TestBuildPayloadDefaults(t *testing.T) {
	product := buildPayload(&domain.Product{ID: "1100003"}).Product

	assert.Equal(t, "Untitled Product", product.Title)
	require.Len(t, product.Variants, 1)
	assert.Equal(t, "0.00", product.Variants[0].Price)
	assert.Equal(t, "Standard", product.Variants[0].Option1)
	assert.Empty(t, product.Tags)
}

func TestBuildPayloadImagesAndAccessories(t *testing.T) {
	p := &domain.Product{
		ID:          "1100004",
		Images:      []domain.ProductImage{{Filename: "front.jpg", Content: "SGVsbG8=", Primary: true}},
		Accessories: []string{"2200001", "2200002"},
	}

	product := buildPayload(p).Product

	require.Len(t, product.Images, 1)
	assert.Equal(t, "SGVsbG8=", product.Images[0].Attachment)
	assert.Equal(t, "front.jpg", product.Images[0].Filename)

	var related string
	for _, m := range product.Metafields {
		if m.Key == "verwandte_produkte" {
			related = m.Value
		}
	}
	assert.JSONEq(t, `["prod-2200001","prod-2200002"]`, related)
}

func TestListingFromAPI(t *testing.T) {
	ap := &apiProduct{
		ID:       77,
		Handle:   "prod-1100001",
		Title:    "TERRA PC",
		BodyHTML: "<p>desc</p>",
		Tags:     "Hardware, PC-Systeme , ",
		Variants: []apiVariant{
			{Price: "999.90", SKU: "1100001", InventoryQuantity: 3},
			{Price: "1049.90", SKU: "1100001-G2"},
		},
		Image:  &apiImage{Src: "https://cdn.shopify.com/front.jpg?v=1"},
		Images: []apiImage{{Src: "https://cdn.shopify.com/front.jpg?v=1"}, {Src: "https://cdn.shopify.com/back.jpg"}},
	}

	listing := listingFromAPI(ap)

	assert.Equal(t, int64(77), listing.RemoteID)
	assert.Equal(t, "prod-1100001", listing.Handle)
	assert.Equal(t, "1100001", listing.SKU, "first variant is authoritative")
	assert.Equal(t, 3, listing.Stock)
	require.True(t, listing.Price.Valid)
	assert.True(t, listing.Price.Decimal.Equal(decimal.RequireFromString("999.90")))
	assert.Equal(t, "https://cdn.shopify.com/front.jpg?v=1", listing.PrimaryImageSrc)
	assert.Len(t, listing.ImageSrcs, 2)
	assert.Equal(t, []string{"Hardware", "PC-Systeme"}, listing.Tags)
}

func TestListingFromAPIFallsBackToFirstImage(t *testing.T) {
	ap := &apiProduct{
		ID:     5,
		Handle: "prod-X",
		Images: []apiImage{{Src: "https://cdn.shopify.com/only.jpg"}},
	}
	listing := listingFromAPI(ap)
	assert.Equal(t, "https://cdn.shopify.com/only.jpg", listing.PrimaryImageSrc)
}
