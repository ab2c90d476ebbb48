package shopify

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/slimsamil/Wortmann2Shopify/internal/domain"
)

const pricePrecision = 2

// Write-side payloads for the Admin REST API.

type productEnvelope struct {
	Product productPayload `json:"product"`
}

type productPayload struct {
	Title       string             `json:"title"`
	Handle      string             `json:"handle"`
	BodyHTML    string             `json:"body_html"`
	Vendor      string             `json:"vendor,omitempty"`
	ProductType string             `json:"product_type,omitempty"`
	Tags        string             `json:"tags,omitempty"`
	Variants    []variantPayload   `json:"variants"`
	Options     []optionPayload    `json:"options"`
	Metafields  []metafieldPayload `json:"metafields"`
	Images      []imagePayload     `json:"images,omitempty"`
}

type variantPayload struct {
	Price               string  `json:"price"`
	SKU                 string  `json:"sku"`
	InventoryQuantity   int     `json:"inventory_quantity"`
	InventoryManagement string  `json:"inventory_management,omitempty"`
	InventoryPolicy     string  `json:"inventory_policy,omitempty"`
	Weight              float64 `json:"weight"`
	WeightUnit          string  `json:"weight_unit"`
	Option1             string  `json:"option1"`
}

type optionPayload struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type metafieldPayload struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

type imagePayload struct {
	Attachment string `json:"attachment"`
	Filename   string `json:"filename,omitempty"`
}

// Read-side shapes returned by the Admin REST API.

type productsResponse struct {
	Products []apiProduct `json:"products"`
}

type productResponse struct {
	Product apiProduct `json:"product"`
}

type apiProduct struct {
	ID       int64        `json:"id"`
	Handle   string       `json:"handle"`
	Title    string       `json:"title"`
	BodyHTML string       `json:"body_html"`
	Tags     string       `json:"tags"`
	Variants []apiVariant `json:"variants"`
	Image    *apiImage    `json:"image"`
	Images   []apiImage   `json:"images"`
}

type apiVariant struct {
	Price             string `json:"price"`
	SKU               string `json:"sku"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

type apiImage struct {
	Src string `json:"src"`
}

// buildPayload translates a canonical product into the Admin API shape: one
// variant per computed warranty tier, or a single stock-tracked variant when
// the product has none. Warranty-tier variants carry no inventory of their
// own; stock lives in the Inventarbestand metafield in that case.
func buildPayload(p *domain.Product) productEnvelope {
	basePrice := p.BasePrice().Round(pricePrecision)
	weight := productWeight(p)

	var variants []variantPayload
	var optionValues []string

	for _, tier := range p.WarrantyTiers {
		label := tier.Name
		if tier.Months > 0 {
			label = tier.Name + " " + strconv.Itoa(tier.Months) + " Monate"
		}
		variants = append(variants, variantPayload{
			Price:           basePrice.Add(tier.AddOn).StringFixed(pricePrecision),
			SKU:             p.ID + "-G" + strconv.Itoa(tier.RuleID),
			InventoryPolicy: "deny",
			Weight:          weight,
			WeightUnit:      "kg",
			Option1:         label,
		})
		optionValues = append(optionValues, label)
	}

	if len(variants) == 0 {
		label := p.WarrantyLabel
		if label == "" {
			label = "Standard"
		}
		variants = []variantPayload{{
			Price:               basePrice.StringFixed(pricePrecision),
			SKU:                 p.ID,
			InventoryQuantity:   p.Stock,
			InventoryManagement: "shopify",
			InventoryPolicy:     "deny",
			Weight:              weight,
			WeightUnit:          "kg",
			Option1:             label,
		}}
		optionValues = []string{label}
	}

	payload := productPayload{
		Title:       titleOrDefault(p),
		Handle:      p.Handle(),
		BodyHTML:    p.Body(),
		Vendor:      p.Manufacturer,
		ProductType: p.Category,
		Variants:    variants,
		Options:     []optionPayload{{Name: "Garantie", Values: dedupe(optionValues)}},
		Metafields:  buildMetafields(p),
	}

	if p.CategoryPath != "" {
		payload.Tags = strings.Join(strings.Split(p.CategoryPath, "|"), ", ")
	}
	for _, img := range p.Images {
		payload.Images = append(payload.Images, imagePayload{Attachment: img.Content, Filename: img.Filename})
	}

	return productEnvelope{Product: payload}
}

func buildMetafields(p *domain.Product) []metafieldPayload {
	var fields []metafieldPayload

	if len(p.WarrantyTiers) == 0 {
		fields = append(fields, metafieldPayload{
			Namespace: "custom", Key: "warranty",
			Value: p.WarrantyLabel, Type: "single_line_text_field",
		})
	}

	fields = append(fields,
		metafieldPayload{
			Namespace: "custom", Key: "Inventarbestand",
			Value: strconv.Itoa(p.Stock), Type: "number_integer",
		},
		metafieldPayload{
			Namespace: "custom", Key: "StockNextDelivery",
			Value: p.StockNextDelivery, Type: "single_line_text_field",
		},
		metafieldPayload{
			Namespace: "custom", Key: "Price_B2B_Regular",
			Value: nullPriceString(p.PriceB2BRegular), Type: "number_decimal",
		},
		metafieldPayload{
			Namespace: "custom", Key: "Price_B2B_Discounted",
			Value: nullPriceString(p.PriceB2BDiscounted), Type: "number_decimal",
		},
		metafieldPayload{
			Namespace: "custom", Key: "verwandte_produkte",
			Value: accessoryHandlesJSON(p.Accessories), Type: "json",
		},
	)
	return fields
}

func productWeight(p *domain.Product) float64 {
	if p.GrossWeight.Valid {
		return p.GrossWeight.Decimal.InexactFloat64()
	}
	if p.NetWeight.Valid {
		return p.NetWeight.Decimal.InexactFloat64()
	}
	return 0
}

func titleOrDefault(p *domain.Product) string {
	if p.Title != "" {
		return p.Title
	}
	return "Untitled Product"
}

func nullPriceString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "0"
	}
	return d.Decimal.Round(pricePrecision).String()
}

// accessoryHandlesJSON serializes accessory references as a JSON array of
// prefixed handles, or the empty string when there are none.
func accessoryHandlesJSON(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	handles := make([]string, 0, len(ids))
	for _, id := range ids {
		handles = append(handles, domain.HandlePrefix+id)
	}
	raw, err := json.Marshal(handles)
	if err != nil {
		return ""
	}
	return string(raw)
}

// listingFromAPI normalizes an Admin API product into the domain view. Price
// and stock come from the first variant, the convention the payload builder
// maintains.
func listingFromAPI(ap *apiProduct) domain.RemoteListing {
	listing := domain.RemoteListing{
		RemoteID: ap.ID,
		Handle:   ap.Handle,
		Title:    ap.Title,
		BodyHTML: ap.BodyHTML,
	}

	if len(ap.Variants) > 0 {
		v := ap.Variants[0]
		listing.SKU = v.SKU
		listing.Stock = v.InventoryQuantity
		if price, err := decimal.NewFromString(v.Price); err == nil {
			listing.Price = decimal.NewNullDecimal(price)
		}
	}

	if ap.Image != nil && ap.Image.Src != "" {
		listing.PrimaryImageSrc = ap.Image.Src
	}
	for _, img := range ap.Images {
		if img.Src == "" {
			continue
		}
		listing.ImageSrcs = append(listing.ImageSrcs, img.Src)
		if listing.PrimaryImageSrc == "" {
			listing.PrimaryImageSrc = img.Src
		}
	}

	if ap.Tags != "" {
		for _, tag := range strings.Split(ap.Tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				listing.Tags = append(listing.Tags, tag)
			}
		}
	}

	return listing
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
