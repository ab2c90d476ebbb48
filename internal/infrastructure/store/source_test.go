package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var productCols = []string{
	"product_id", "title", "description_short", "long_description", "manufacturer", "category",
	"category_path", "warranty", "price_b2b_regular", "price_b2b_discounted", "price_b2c_incl_vat", "stock",
	"stock_next_delivery", "gross_weight", "net_weight", "non_returnable", "eol", "promotion", "garantiegruppe",
	"accessory_products",
}

func addProductRow(rows *sqlmock.Rows, id, title string) *sqlmock.Rows {
	return rows.AddRow(
		id, title, "short", "long", "WORTMANN AG", "PC-Systeme",
		"Hardware|PC-Systeme", "24 Monate", "840.25", "799.00", "999.90", 3,
		"2026-09-01", "7.5", "6.2", false, false, false, 1,
		"2200001|2200002",
	)
}

func newTestSource(t *testing.T) (*Source, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewSource(db, zap.NewNop()), mock
}

func TestFetchProducts(t *testing.T) {
	source, mock := newTestSource(t)

	rows := addProductRow(sqlmock.NewRows(productCols), "1100001", "TERRA PC")
	rows = addProductRow(rows, "1100002", "TERRA Mouse")
	mock.ExpectQuery("FROM wortmann_produkte WHERE eol = FALSE ORDER BY product_id").
		WillReturnRows(rows)

	got, err := source.FetchProducts(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1100001", got[0].ProductID)
	assert.Equal(t, "TERRA PC", got[0].Title.String)
	assert.Equal(t, "999.9", got[0].PriceB2CInclVAT.Decimal.String())
	assert.Equal(t, int64(3), got[0].Stock.Int64)
	assert.Equal(t, int64(1), got[0].WarrantyGroup.Int64)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchProductsWithLimit(t *testing.T) {
	source, mock := newTestSource(t)

	mock.ExpectQuery("ORDER BY product_id LIMIT \\$1").
		WithArgs(10).
		WillReturnRows(addProductRow(sqlmock.NewRows(productCols), "1100001", "TERRA PC"))

	got, err := source.FetchProducts(context.Background(), 10)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchProductsByIDs(t *testing.T) {
	source, mock := newTestSource(t)

	mock.ExpectQuery("FROM wortmann_produkte WHERE product_id IN (.+) ORDER BY product_id").
		WithArgs("1100001", "1100002").
		WillReturnRows(addProductRow(sqlmock.NewRows(productCols), "1100001", "TERRA PC"))

	got, err := source.FetchProductsByIDs(context.Background(), []string{"1100001", "1100002"})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1100001", got[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchProductsByIDsEmptyInput(t *testing.T) {
	source, _ := newTestSource(t)

	got, err := source.FetchProductsByIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchImages(t *testing.T) {
	source, mock := newTestSource(t)

	rows := sqlmock.NewRows([]string{"supplier_aid", "filename", "payload", "is_primary"}).
		AddRow("1100001", "front.jpg", "48656c6c6f", true).
		AddRow("1100001", "back.jpg", "576f726c64", false)
	mock.ExpectQuery("FROM bilder_shopify ORDER BY supplier_aid, is_primary DESC, filename").
		WillReturnRows(rows)

	got, err := source.FetchImages(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "front.jpg", got[0].Filename.String)
	assert.True(t, got[0].IsPrimary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchWarrantyRules(t *testing.T) {
	source, mock := newTestSource(t)

	rows := sqlmock.NewRows([]string{"id", "name", "monate", "prozentsatz", "minimum", "garantiegruppe"}).
		AddRow(1, "Garantieerweiterung", 36, "0.01", "20", 1).
		AddRow(2, "Garantieerweiterung", 60, "0.05", "20", 1)
	mock.ExpectQuery("FROM garantie_optionen ORDER BY garantiegruppe, monate").
		WillReturnRows(rows)

	got, err := source.FetchWarrantyRules(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 36, got[0].Months)
	assert.Equal(t, "0.01", got[0].Percentage.String())
	assert.Equal(t, 1, got[0].Group)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchProductsError(t *testing.T) {
	source, mock := newTestSource(t)

	mock.ExpectQuery("FROM wortmann_produkte").
		WillReturnError(assert.AnError)

	_, err := source.FetchProducts(context.Background(), 0)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch products")
}
