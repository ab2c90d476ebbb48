package usecase

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/slimsamil/Wortmann2Shopify/internal/domain"
)

// MergeService joins raw product, image and warranty rows into canonical
// Products, one per identifier. It is a pure transform over its inputs;
// per-item problems (undecodable image, unknown warranty group) are logged
// and the affected product ships without that part, the merge never aborts.
type MergeService struct {
	logger *zap.Logger
}

// NewMergeService creates a merge service.
func NewMergeService(logger *zap.Logger) *MergeService {
	return &MergeService{logger: logger}
}

// Merge builds canonical products. Images are matched by supplier id with an
// index-by-key join; warranty tiers are computed from the product's group.
// limit > 0 truncates the number of products considered (test/staging runs).
func (s *MergeService) Merge(products []domain.ProductRow, images []domain.ImageRow, rules []domain.WarrantyRow, limit int) []domain.Product {
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}

	imagesByProduct := make(map[string][]domain.ImageRow, len(images))
	for _, img := range images {
		if img.SupplierAID == "" {
			continue
		}
		imagesByProduct[img.SupplierAID] = append(imagesByProduct[img.SupplierAID], img)
	}
	// Primary-flagged rows first; the sort is stable so when nothing is
	// flagged the first row encountered becomes the primary.
	for _, list := range imagesByProduct {
		sort.SliceStable(list, func(i, j int) bool { return list[i].IsPrimary && !list[j].IsPrimary })
	}

	calc := NewWarrantyCalculator(rules)

	merged := make([]domain.Product, 0, len(products))
	seen := make(map[string]bool, len(products))
	for _, row := range products {
		if row.ProductID == "" {
			s.logger.Warn("skipping product row without id")
			continue
		}
		if seen[row.ProductID] {
			continue
		}
		seen[row.ProductID] = true

		p := productFromRow(row)
		s.attachImages(&p, imagesByProduct[p.ID])

		tiers, err := calc.Compute(p.BasePrice(), p.WarrantyGroup)
		if err != nil {
			s.logger.Warn("warranty computation failed, product ships without tiers",
				zap.String("product_id", p.ID), zap.Error(err))
		} else {
			p.WarrantyTiers = tiers
		}

		merged = append(merged, p)
	}

	s.logger.Info("merged products", zap.Int("count", len(merged)), zap.Int("images", len(images)), zap.Int("warranty_rules", len(rules)))
	return merged
}

func (s *MergeService) attachImages(p *domain.Product, rows []domain.ImageRow) {
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if !row.Payload.Valid || row.Payload.String == "" {
			continue
		}
		content, err := EncodeImage(row.Payload.String)
		if err != nil {
			s.logger.Warn("skipping undecodable image",
				zap.String("product_id", p.ID), zap.String("filename", row.Filename.String), zap.Error(err))
			continue
		}
		if seen[content] {
			continue
		}
		seen[content] = true
		p.Images = append(p.Images, domain.ProductImage{
			Filename: row.Filename.String,
			Content:  content,
			Primary:  row.IsPrimary,
		})
	}
	// First-encountered wins when no row is flagged primary.
	if len(p.Images) > 0 {
		hasPrimary := false
		for _, img := range p.Images {
			if img.Primary {
				hasPrimary = true
				break
			}
		}
		if !hasPrimary {
			p.Images[0].Primary = true
		}
	}
}

func productFromRow(row domain.ProductRow) domain.Product {
	p := domain.Product{
		ID:                 row.ProductID,
		Title:              row.Title.String,
		DescriptionShort:   row.DescriptionShort.String,
		LongDescription:    row.LongDescription.String,
		Manufacturer:       row.Manufacturer.String,
		Category:           row.Category.String,
		CategoryPath:       row.CategoryPath.String,
		WarrantyLabel:      row.Warranty.String,
		PriceB2C:           row.PriceB2CInclVAT,
		PriceB2BRegular:    row.PriceB2BRegular,
		PriceB2BDiscounted: row.PriceB2BDiscounted,
		StockNextDelivery:  row.StockNextDelivery.String,
		GrossWeight:        row.GrossWeight,
		NetWeight:          row.NetWeight,
		EOL:                row.EOL,
		NonReturnable:      row.NonReturnable,
		Promotion:          row.Promotion,
	}
	if row.Stock.Valid && row.Stock.Int64 > 0 {
		p.Stock = int(row.Stock.Int64)
	}
	if row.WarrantyGroup.Valid {
		p.WarrantyGroup = int(row.WarrantyGroup.Int64)
	}
	if row.AccessoryProducts.Valid && row.AccessoryProducts.String != "" {
		for _, id := range strings.Split(row.AccessoryProducts.String, "|") {
			if id = strings.TrimSpace(id); id != "" {
				p.Accessories = append(p.Accessories, id)
			}
		}
	}
	return p
}
