package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/slimsamil/Wortmann2Shopify/internal/domain"
)

// SyncService orchestrates one reconciliation run:
// fetch rows -> merge -> diff against Shopify -> schedule batches.
type SyncService struct {
	source domain.RecordSource
	client domain.CatalogClient
	merge  *MergeService
	diff   *DiffService
	sched  *BatchScheduler
	logger *zap.Logger
}

// NewSyncService wires the pipeline stages around a record source and a
// catalog client.
func NewSyncService(source domain.RecordSource, client domain.CatalogClient, logger *zap.Logger) *SyncService {
	return &SyncService{
		source: source,
		client: client,
		merge:  NewMergeService(logger),
		diff:   NewDiffService(logger),
		sched:  NewBatchScheduler(client, logger),
		logger: logger,
	}
}

// ReconcileOptions controls a full catalog reconciliation.
type ReconcileOptions struct {
	DryRun       bool
	BatchSize    int
	ProductLimit int // > 0 truncates the catalog, for test/staging runs
}

// SyncByIDsOptions controls a targeted sync of specific products.
type SyncByIDsOptions struct {
	IDs             []string
	DryRun          bool
	CreateIfMissing bool
	BatchSize       int
}

// Reconcile compares the whole canonical catalog against the shop and pushes
// the differences. Source-read failures are fatal: without source data no
// reconciliation is possible.
func (s *SyncService) Reconcile(ctx context.Context, opts ReconcileOptions) (*domain.RunSummary, error) {
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidBatchSize, opts.BatchSize)
	}

	products, err := s.source.FetchProducts(ctx, opts.ProductLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no products in source database", domain.ErrProductNotFound)
	}
	images, err := s.source.FetchImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	rules, err := s.source.FetchWarrantyRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	local := s.merge.Merge(products, images, rules, opts.ProductLimit)

	remote, err := s.client.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing shop catalog: %w", err)
	}

	cs := s.diff.Diff(local, remote)
	return s.sched.Run(ctx, cs, opts.BatchSize, opts.DryRun)
}

// SyncByIDs reconciles only the named products. Handles may be passed with or
// without the prod- prefix. Products missing from the source are reported as
// skipped; lookups that fail remotely are reported as failed items. Neither
// aborts the run.
func (s *SyncService) SyncByIDs(ctx context.Context, opts SyncByIDsOptions) (*domain.RunSummary, error) {
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidBatchSize, opts.BatchSize)
	}
	ids := normalizeIDs(opts.IDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no product ids given", domain.ErrInvalidRequest)
	}

	rows, err := s.source.FetchProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: none of the requested products exist in the source database", domain.ErrProductNotFound)
	}

	found := make(map[string]bool, len(rows))
	for _, r := range rows {
		found[r.ProductID] = true
	}
	var extra []domain.ItemResult
	for _, id := range ids {
		if !found[id] {
			s.logger.Warn("requested product missing from source database", zap.String("product_id", id))
			extra = append(extra, domain.ItemResult{
				ProductID: id,
				Handle:    domain.HandlePrefix + id,
				Status:    domain.ItemSkipped,
				Error:     "not found in source database",
			})
		}
	}

	images, err := s.source.FetchImagesByProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	rules, err := s.source.FetchWarrantyRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	local := s.merge.Merge(rows, images, rules, 0)

	// Targeted lookups instead of a full catalog listing. These are reads, so
	// they run even on a dry run.
	var remote []domain.RemoteListing
	lookupFailed := make(map[string]bool)
	for i := range local {
		handle := local[i].Handle()
		listing, err := s.client.GetByHandle(ctx, handle)
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			// Will be tagged Create by the differ.
		case err != nil:
			lookupFailed[handle] = true
			extra = append(extra, domain.ItemResult{
				ProductID: local[i].ID,
				Handle:    handle,
				Status:    domain.ItemFailed,
				Error:     err.Error(),
			})
		case listing != nil:
			remote = append(remote, *listing)
		}
	}

	cs := s.diff.Diff(local, remote)

	kept := cs.Changes[:0]
	for _, c := range cs.Changes {
		if lookupFailed[c.Handle()] {
			continue
		}
		if c.Action == domain.ActionCreate && !opts.CreateIfMissing {
			extra = append(extra, domain.ItemResult{
				ProductID: productID(&c),
				Handle:    c.Handle(),
				Action:    c.Action,
				Status:    domain.ItemSkipped,
				Error:     "not in Shopify and create_if_missing is false",
			})
			continue
		}
		kept = append(kept, c)
	}
	cs.Changes = kept

	summary, err := s.sched.Run(ctx, cs, opts.BatchSize, opts.DryRun)
	if err != nil {
		return nil, err
	}
	mergeExtraResults(summary, extra)
	return summary, nil
}

// DeleteByIDs removes the named products from Shopify. Deletion is an
// explicit operation; reconciliation never deletes remote-only listings on
// its own.
func (s *SyncService) DeleteByIDs(ctx context.Context, rawIDs []string, batchSize int) (*domain.RunSummary, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidBatchSize, batchSize)
	}
	ids := normalizeIDs(rawIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no product ids given", domain.ErrInvalidRequest)
	}

	cs := &domain.ChangeSet{}
	var extra []domain.ItemResult
	for _, id := range ids {
		handle := domain.HandlePrefix + id
		listing, err := s.client.GetByHandle(ctx, handle)
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			extra = append(extra, domain.ItemResult{
				ProductID: id,
				Handle:    handle,
				Action:    domain.ActionDelete,
				Status:    domain.ItemSkipped,
				Error:     "not found in Shopify",
			})
		case err != nil:
			extra = append(extra, domain.ItemResult{
				ProductID: id,
				Handle:    handle,
				Action:    domain.ActionDelete,
				Status:    domain.ItemFailed,
				Error:     err.Error(),
			})
		default:
			cs.Changes = append(cs.Changes, domain.Change{Action: domain.ActionDelete, Listing: listing})
		}
	}

	summary, err := s.sched.Run(ctx, cs, batchSize, false)
	if err != nil {
		return nil, err
	}
	mergeExtraResults(summary, extra)
	return summary, nil
}

// normalizeIDs strips the handle prefix and drops duplicates while keeping
// the caller's order.
func normalizeIDs(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, id := range raw {
		id = strings.TrimPrefix(strings.TrimSpace(id), domain.HandlePrefix)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// mergeExtraResults folds pre- and post-scheduling item outcomes into the
// summary and restates the counts in the message.
func mergeExtraResults(summary *domain.RunSummary, extra []domain.ItemResult) {
	if len(extra) == 0 {
		return
	}
	for _, r := range extra {
		summary.Results = append(summary.Results, r)
		switch r.Status {
		case domain.ItemFailed:
			summary.FailedUploads++
		case domain.ItemSkipped:
			summary.SkippedItems++
		}
	}
	summary.Message = fmt.Sprintf("%s: %d successful, %d failed, %d skipped",
		summary.Status, summary.SuccessfulUploads, summary.FailedUploads, summary.SkippedItems)
}
