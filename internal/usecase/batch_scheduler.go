package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slimsamil/Wortmann2Shopify/internal/domain"
)

// itemState tracks one change-set entry through dispatch:
// pending -> in flight -> succeeded | failed. Failed is terminal here; retries
// happen inside the catalog client, below this state machine, and failed
// items are never re-queued within a run.
type itemState int

const (
	statePending itemState = iota
	stateInFlight
	stateSucceeded
	stateFailed
)

func (s itemState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateInFlight:
		return "in_flight"
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// BatchScheduler partitions a change set into ordered batches and dispatches
// each item to the catalog client. It never parallelizes beyond what the
// client's token bucket allows; the limiter is the single point of
// throttling.
type BatchScheduler struct {
	client domain.CatalogClient
	logger *zap.Logger
}

// NewBatchScheduler creates a scheduler bound to a catalog client.
func NewBatchScheduler(client domain.CatalogClient, logger *zap.Logger) *BatchScheduler {
	return &BatchScheduler{client: client, logger: logger}
}

// Run dispatches the actionable entries of the change set in batches of
// batchSize and aggregates per-item outcomes into a RunSummary. A
// non-positive batchSize is rejected before any work starts; it is the one
// hard-fail precondition of the pipeline. With dryRun the full batching
// decision is made but no mutating call is issued. One item's failure never
// aborts the batch or the run; a run has no mid-flight cancellation and
// always returns a complete summary.
func (s *BatchScheduler) Run(ctx context.Context, cs *domain.ChangeSet, batchSize int, dryRun bool) (*domain.RunSummary, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidBatchSize, batchSize)
	}
	start := time.Now()

	summary := &domain.RunSummary{
		RunID:             uuid.NewString(),
		DryRun:            dryRun,
		UnchangedProducts: cs.Count(domain.ActionUnchanged),
	}
	for _, c := range cs.Changes {
		if c.Product != nil {
			summary.TotalProducts++
		}
		if c.Action == domain.ActionRemoteOnly {
			summary.RemoteOnly = append(summary.RemoteOnly, c.Handle())
		}
	}

	items := cs.Actionable()
	// Deterministic dispatch order: stable sort by handle, so repeated runs
	// over identical input produce identical logs.
	sort.SliceStable(items, func(i, j int) bool { return items[i].Handle() < items[j].Handle() })

	if dryRun {
		for i := range items {
			summary.Results = append(summary.Results, domain.ItemResult{
				ProductID: productID(&items[i]),
				Handle:    items[i].Handle(),
				Action:    items[i].Action,
				Status:    domain.ItemSkipped,
			})
		}
		summary.SkippedItems = len(items)
		summary.Status = "success"
		summary.Message = fmt.Sprintf("dry run: %d to create, %d to update, %d unchanged, %d remote-only; no changes applied",
			cs.Count(domain.ActionCreate), cs.Count(domain.ActionUpdate),
			summary.UnchangedProducts, len(summary.RemoteOnly))
		summary.ExecutionTime = time.Since(start).Seconds()
		return summary, nil
	}

	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[i:end]
		s.logger.Info("dispatching batch",
			zap.Int("batch", i/batchSize+1), zap.Int("size", len(batch)), zap.Int("remaining", len(items)-end))

		for j := range batch {
			result := s.dispatch(ctx, &batch[j])
			if result.Status == domain.ItemSucceeded {
				summary.SuccessfulUploads++
			} else {
				summary.FailedUploads++
			}
			summary.Results = append(summary.Results, result)
		}
	}

	summary.Status = "completed"
	summary.Message = fmt.Sprintf("sync completed: %d successful, %d failed, %d unchanged, %d remote-only",
		summary.SuccessfulUploads, summary.FailedUploads, summary.UnchangedProducts, len(summary.RemoteOnly))
	summary.ExecutionTime = time.Since(start).Seconds()

	s.logger.Info("run finished",
		zap.String("run_id", summary.RunID),
		zap.Int("successful", summary.SuccessfulUploads),
		zap.Int("failed", summary.FailedUploads),
		zap.Float64("seconds", summary.ExecutionTime))
	return summary, nil
}

func (s *BatchScheduler) dispatch(ctx context.Context, c *domain.Change) domain.ItemResult {
	state := statePending
	result := domain.ItemResult{
		ProductID: productID(c),
		Handle:    c.Handle(),
		Action:    c.Action,
	}

	state = stateInFlight
	var (
		listing *domain.RemoteListing
		err     error
	)
	switch c.Action {
	case domain.ActionCreate:
		listing, err = s.client.Create(ctx, c.Product)
	case domain.ActionUpdate:
		listing, err = s.client.Update(ctx, c.Listing.RemoteID, c.Product)
	case domain.ActionDelete:
		err = s.client.Delete(ctx, c.Listing.RemoteID)
		listing = c.Listing
	default:
		err = fmt.Errorf("%w: action %q is not dispatchable", domain.ErrInvalidRequest, c.Action)
	}

	if err != nil {
		state = stateFailed
		result.Status = domain.ItemFailed
		result.Error = err.Error()
	} else {
		state = stateSucceeded
		result.Status = domain.ItemSucceeded
		if listing != nil {
			result.RemoteID = listing.RemoteID
		}
	}

	s.logger.Debug("item dispatched",
		zap.String("handle", result.Handle),
		zap.String("action", string(result.Action)),
		zap.String("state", state.String()))
	return result
}

func productID(c *domain.Change) string {
	if c.Product != nil {
		return c.Product.ID
	}
	return ""
}
