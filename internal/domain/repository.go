package domain

import "context"

// RecordSource defines read-only access to the raw catalog tables. The
// reconciliation core never writes back to the source database.
type RecordSource interface {
	// FetchProducts returns non-EOL product rows; limit <= 0 means no limit.
	FetchProducts(ctx context.Context, limit int) ([]ProductRow, error)
	FetchProductsByIDs(ctx context.Context, ids []string) ([]ProductRow, error)
	FetchImages(ctx context.Context) ([]ImageRow, error)
	FetchImagesByProductIDs(ctx context.Context, ids []string) ([]ImageRow, error)
	FetchWarrantyRules(ctx context.Context) ([]WarrantyRow, error)
}

// CatalogClient defines the operations the sync needs against Shopify.
// Implementations own rate limiting and retry; callers never throttle.
type CatalogClient interface {
	// ListAll returns every listing in the shop, paginating transparently.
	ListAll(ctx context.Context) ([]RemoteListing, error)
	// GetByHandle returns ErrProductNotFound when no listing has the handle.
	GetByHandle(ctx context.Context, handle string) (*RemoteListing, error)
	Create(ctx context.Context, product *Product) (*RemoteListing, error)
	Update(ctx context.Context, remoteID int64, product *Product) (*RemoteListing, error)
	Delete(ctx context.Context, remoteID int64) error
	// TestConnection verifies credentials against the shop endpoint.
	TestConnection(ctx context.Context) error
}
