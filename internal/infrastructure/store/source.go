package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/slimsamil/Wortmann2Shopify/internal/domain"
)

// productColumns is the canonical column list of the wortmann_produkte table;
// spelled out so row scanning stays stable when the feed importer adds new
// columns to the table.
const productColumns = `product_id, title, description_short, long_description, manufacturer, category,
	category_path, warranty, price_b2b_regular, price_b2b_discounted, price_b2c_incl_vat, stock,
	stock_next_delivery, gross_weight, net_weight, non_returnable, eol, promotion, garantiegruppe,
	accessory_products`

// Source reads the raw catalog tables the feed importer maintains. It is
// strictly read-only; reconciliation never writes back.
type Source struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSource creates a record source over an open database handle.
func NewSource(db *sqlx.DB, logger *zap.Logger) *Source {
	return &Source{db: db, logger: logger}
}

// Ping verifies database connectivity, for health checks.
func (s *Source) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// FetchProducts returns product rows excluding EOL products. limit <= 0 means
// the whole catalog.
func (s *Source) FetchProducts(ctx context.Context, limit int) ([]domain.ProductRow, error) {
	query := fmt.Sprintf("SELECT %s FROM wortmann_produkte WHERE eol = FALSE ORDER BY product_id", productColumns)

	var rows []domain.ProductRow
	var err error
	if limit > 0 {
		err = s.db.SelectContext(ctx, &rows, query+" LIMIT $1", limit)
	} else {
		err = s.db.SelectContext(ctx, &rows, query)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	s.logger.Info("fetched products from database", zap.Int("count", len(rows)))
	return rows, nil
}

// FetchProductsByIDs returns the rows for the given product ids in a single
// query.
func (s *Source) FetchProductsByIDs(ctx context.Context, ids []string) ([]domain.ProductRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		fmt.Sprintf("SELECT %s FROM wortmann_produkte WHERE product_id IN (?) ORDER BY product_id", productColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build product id query: %w", err)
	}

	var rows []domain.ProductRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("fetch products by ids: %w", err)
	}
	s.logger.Info("fetched products by ids",
		zap.Int("count", len(rows)), zap.Int("requested", len(ids)))
	return rows, nil
}

// FetchImages returns every image row. Primary-flagged rows sort first per
// product, matching the merge stage's primary selection policy.
func (s *Source) FetchImages(ctx context.Context) ([]domain.ImageRow, error) {
	query := `SELECT supplier_aid, filename, payload, is_primary
		FROM bilder_shopify ORDER BY supplier_aid, is_primary DESC, filename`

	var rows []domain.ImageRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("fetch images: %w", err)
	}
	s.logger.Info("fetched images from database", zap.Int("count", len(rows)))
	return rows, nil
}

// FetchImagesByProductIDs returns the image rows for the given product ids.
func (s *Source) FetchImagesByProductIDs(ctx context.Context, ids []string) ([]domain.ImageRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT supplier_aid, filename, payload, is_primary
		FROM bilder_shopify WHERE supplier_aid IN (?) ORDER BY supplier_aid, is_primary DESC, filename`, ids)
	if err != nil {
		return nil, fmt.Errorf("build image id query: %w", err)
	}

	var rows []domain.ImageRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("fetch images by ids: %w", err)
	}
	s.logger.Info("fetched images by ids",
		zap.Int("count", len(rows)), zap.Int("requested", len(ids)))
	return rows, nil
}

// FetchWarrantyRules returns the full warranty rule set.
func (s *Source) FetchWarrantyRules(ctx context.Context) ([]domain.WarrantyRow, error) {
	query := `SELECT id, name, monate, prozentsatz, minimum, garantiegruppe
		FROM garantie_optionen ORDER BY garantiegruppe, monate`

	var rows []domain.WarrantyRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("fetch warranty rules: %w", err)
	}
	s.logger.Info("fetched warranty rules from database", zap.Int("count", len(rows)))
	return rows, nil
}
