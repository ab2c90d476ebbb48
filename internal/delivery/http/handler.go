package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slimsamil/Wortmann2Shopify/internal/domain"
	"github.com/slimsamil/Wortmann2Shopify/internal/usecase"
)

// SyncService is the slice of the sync usecase the handlers need.
type SyncService interface {
	Reconcile(ctx context.Context, opts usecase.ReconcileOptions) (*domain.RunSummary, error)
	SyncByIDs(ctx context.Context, opts usecase.SyncByIDsOptions) (*domain.RunSummary, error)
	DeleteByIDs(ctx context.Context, ids []string, batchSize int) (*domain.RunSummary, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectionTester checks Shopify connectivity.
type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	sync             SyncService
	db               Pinger
	shopify          ConnectionTester
	defaultBatchSize int
}

// NewHandler creates a new HTTP handler
func NewHandler(sync SyncService, db Pinger, shopify ConnectionTester, defaultBatchSize int) *Handler {
	if defaultBatchSize <= 0 {
		defaultBatchSize = 5
	}
	return &Handler{sync: sync, db: db, shopify: shopify, defaultBatchSize: defaultBatchSize}
}

type reconcileRequest struct {
	ProductLimit int  `json:"product_limit"`
	BatchSize    int  `json:"batch_size"`
	DryRun       bool `json:"dry_run"`
}

type syncByIDsRequest struct {
	ProductIDs      []string `json:"product_ids" binding:"required"`
	DryRun          bool     `json:"dry_run"`
	CreateIfMissing *bool    `json:"create_if_missing"`
	BatchSize       int      `json:"batch_size"`
}

type deleteProductsRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required"`
	BatchSize  int      `json:"batch_size"`
}

// ExecuteWorkflow runs a full catalog reconciliation. The body is optional;
// defaults apply when omitted.
func (h *Handler) ExecuteWorkflow(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.BatchSize == 0 {
		req.BatchSize = h.defaultBatchSize
	}

	summary, err := h.sync.Reconcile(c.Request.Context(), usecase.ReconcileOptions{
		DryRun:       req.DryRun,
		BatchSize:    req.BatchSize,
		ProductLimit: req.ProductLimit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SyncProducts reconciles only the named products.
func (h *Handler) SyncProducts(c *gin.Context) {
	var req syncByIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.BatchSize == 0 {
		req.BatchSize = h.defaultBatchSize
	}
	createIfMissing := true
	if req.CreateIfMissing != nil {
		createIfMissing = *req.CreateIfMissing
	}

	summary, err := h.sync.SyncByIDs(c.Request.Context(), usecase.SyncByIDsOptions{
		IDs:             req.ProductIDs,
		DryRun:          req.DryRun,
		CreateIfMissing: createIfMissing,
		BatchSize:       req.BatchSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DeleteProducts removes the named products from Shopify. Reconciliation
// never deletes; this is the explicit operation for it.
func (h *Handler) DeleteProducts(c *gin.Context) {
	var req deleteProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.BatchSize == 0 {
		req.BatchSize = h.defaultBatchSize
	}

	summary, err := h.sync.DeleteByIDs(c.Request.Context(), req.ProductIDs, req.BatchSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "wortmann2shopify",
		"version": "1.0.0",
	})
}

// DetailedHealth reports connectivity to the product database and Shopify.
func (h *Handler) DetailedHealth(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{"database": "ok", "shopify": "ok"}
	healthy := true

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}
	if err := h.shopify.TestConnection(ctx); err != nil {
		checks["shopify"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}

// Root returns basic API information.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "Wortmann2Shopify",
		"version": "1.0.0",
		"status":  "running",
		"health":  "/api/v1/health",
	})
}

// respondError maps the error taxonomy onto HTTP statuses: preconditions and
// bad input are 400, unknown products 404, an unreachable source database
// 503, everything else 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidBatchSize), errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSourceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
