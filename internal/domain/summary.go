package domain

// ItemStatus is the terminal state of one change-set entry within a run.
type ItemStatus string

const (
	ItemSucceeded ItemStatus = "success"
	ItemFailed    ItemStatus = "failed"
	ItemSkipped   ItemStatus = "skipped"
)

// ItemResult is the per-item outcome of one dispatched change.
type ItemResult struct {
	ProductID string       `json:"product_id,omitempty"`
	Handle    string       `json:"handle"`
	Action    ChangeAction `json:"action"`
	Status    ItemStatus   `json:"status"`
	RemoteID  int64        `json:"shopify_id,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// RunSummary is the only artifact a run returns to callers; it is immutable
// once the run completes. The message always states success/failure counts.
type RunSummary struct {
	RunID             string       `json:"run_id"`
	Status            string       `json:"status"`
	Message           string       `json:"message"`
	DryRun            bool         `json:"dry_run"`
	TotalProducts     int          `json:"total_products"`
	SuccessfulUploads int          `json:"successful_uploads"`
	FailedUploads     int          `json:"failed_uploads"`
	SkippedItems      int          `json:"skipped_items"`
	UnchangedProducts int          `json:"unchanged_products"`
	RemoteOnly        []string     `json:"remote_only,omitempty"` // handles reported, never auto-deleted
	ExecutionTime     float64      `json:"execution_time"`        // seconds
	Results           []ItemResult `json:"results"`
}
