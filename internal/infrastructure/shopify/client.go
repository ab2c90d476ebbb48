package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/slimsamil/Wortmann2Shopify/internal/domain"
)

// Config holds connection and throttling settings for the Shopify Admin API.
type Config struct {
	ShopURL           string
	AccessToken       string
	APIVersion        string
	RequestsPerSecond float64
	Burst             int
	MaxAttempts       int
	PageSize          int
}

// Retry timing: base delay doubling per attempt, capped, with jitter so
// concurrent batches do not resynchronize against the platform.
const (
	baseRetryDelay = 500 * time.Millisecond
	maxRetryDelay  = 8 * time.Second
	jitterFraction = 0.25
)

// Client talks to the Shopify Admin REST API. It owns the token bucket
// (Shopify's published ceiling is 2 requests/second sustained with short
// bursts) and the retry policy; callers never throttle or retry themselves.
type Client struct {
	httpClient *http.Client
	cfg        Config
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a Shopify client. Zero config values fall back to the
// platform defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-10"
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 250
	}
	cfg.ShopURL = strings.TrimRight(cfg.ShopURL, "/")

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:     logger,
	}
}

func (c *Client) endpoint(pathAndQuery string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.cfg.ShopURL, c.cfg.APIVersion, pathAndQuery)
}

// do executes one Admin API request. Before every attempt it acquires a
// rate-limit token, suspending the caller until the bucket refills; requests
// are never dropped. 429s, 5xx and transport errors are retried up to
// MaxAttempts with backoff; other 4xx are permanent and reported immediately.
func (c *Client) do(ctx context.Context, method, reqURL string, body []byte) (http.Header, []byte, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limiter: %w", err)
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("X-Shopify-Access-Token", c.cfg.AccessToken)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		var delay time.Duration
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrShopifyAPI, err)
			delay = retryDelay(attempt)
			c.logger.Warn("shopify request failed",
				zap.String("method", method), zap.Int("attempt", attempt), zap.Error(err))
		} else {
			respBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			switch {
			case resp.StatusCode < 300:
				return resp.Header, respBody, nil
			case resp.StatusCode == http.StatusTooManyRequests:
				lastErr = fmt.Errorf("%w: status 429", domain.ErrShopifyAPI)
				delay = retryDelay(attempt)
				if ra := retryAfter(resp.Header); ra > 0 {
					delay = ra
				}
				c.logger.Warn("shopify throttled",
					zap.Int("attempt", attempt), zap.Duration("delay", delay))
			case resp.StatusCode >= 500:
				lastErr = fmt.Errorf("%w: status %d", domain.ErrShopifyAPI, resp.StatusCode)
				delay = retryDelay(attempt)
				c.logger.Warn("shopify server error",
					zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt))
			case resp.StatusCode == http.StatusNotFound:
				return nil, nil, domain.ErrProductNotFound
			default:
				// 4xx other than 429: the payload is wrong, retrying cannot help.
				return nil, nil, fmt.Errorf("%w: status %d: %s",
					domain.ErrShopifyValidation, resp.StatusCode, truncateBody(respBody))
			}
		}

		if attempt >= c.cfg.MaxAttempts {
			return nil, nil, fmt.Errorf("giving up after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, nil, err
		}
	}
}

// ListAll fetches every product in the shop, following cursor pagination via
// the Link header. Shopify's product counts are eventually consistent, so the
// client accumulates until the platform stops handing out a next page rather
// than trusting any total.
func (c *Client) ListAll(ctx context.Context) ([]domain.RemoteListing, error) {
	var all []domain.RemoteListing
	pageInfo := ""
	for {
		reqURL := c.endpoint(fmt.Sprintf("products.json?limit=%d", c.cfg.PageSize))
		if pageInfo != "" {
			reqURL += "&page_info=" + url.QueryEscape(pageInfo)
		}

		header, body, err := c.do(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		var page productsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode products page: %w", err)
		}
		for i := range page.Products {
			all = append(all, listingFromAPI(&page.Products[i]))
		}

		pageInfo = nextPageInfo(header.Get("Link"))
		if pageInfo == "" {
			break
		}
	}
	c.logger.Info("fetched shop catalog", zap.Int("listings", len(all)))
	return all, nil
}

// GetByHandle returns the listing with the given handle, or
// domain.ErrProductNotFound.
func (c *Client) GetByHandle(ctx context.Context, handle string) (*domain.RemoteListing, error) {
	reqURL := c.endpoint("products.json?handle=" + url.QueryEscape(handle))
	_, body, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	var page productsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode product lookup: %w", err)
	}
	if len(page.Products) == 0 {
		return nil, domain.ErrProductNotFound
	}
	listing := listingFromAPI(&page.Products[0])
	return &listing, nil
}

// Create publishes a new product.
func (c *Client) Create(ctx context.Context, product *domain.Product) (*domain.RemoteListing, error) {
	payload, err := json.Marshal(buildPayload(product))
	if err != nil {
		return nil, fmt.Errorf("encode product %s: %w", product.ID, err)
	}
	_, body, err := c.do(ctx, http.MethodPost, c.endpoint("products.json"), payload)
	if err != nil {
		return nil, err
	}
	return decodeListing(body)
}

// Update overwrites an existing product by its Shopify id.
func (c *Client) Update(ctx context.Context, remoteID int64, product *domain.Product) (*domain.RemoteListing, error) {
	payload, err := json.Marshal(buildPayload(product))
	if err != nil {
		return nil, fmt.Errorf("encode product %s: %w", product.ID, err)
	}
	reqURL := c.endpoint(fmt.Sprintf("products/%d.json", remoteID))
	_, body, err := c.do(ctx, http.MethodPut, reqURL, payload)
	if err != nil {
		return nil, err
	}
	return decodeListing(body)
}

// Delete removes a product by its Shopify id.
func (c *Client) Delete(ctx context.Context, remoteID int64) error {
	reqURL := c.endpoint(fmt.Sprintf("products/%d.json", remoteID))
	_, _, err := c.do(ctx, http.MethodDelete, reqURL, nil)
	return err
}

// TestConnection verifies the credentials against the shop endpoint.
func (c *Client) TestConnection(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodGet, c.endpoint("shop.json"), nil)
	return err
}

func decodeListing(body []byte) (*domain.RemoteListing, error) {
	var envelope productResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	listing := listingFromAPI(&envelope.Product)
	return &listing, nil
}

// retryDelay doubles the base delay per attempt, capped, with ±25% jitter.
func retryDelay(attempt int) time.Duration {
	d := baseRetryDelay * time.Duration(1<<(attempt-1))
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	jitter := time.Duration((rand.Float64()*2 - 1) * jitterFraction * float64(d))
	return d + jitter
}

// retryAfter honors Shopify's Retry-After header (fractional seconds).
func retryAfter(header http.Header) time.Duration {
	raw := header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// nextPageInfo extracts the page_info cursor of the rel="next" link, if any.
func nextPageInfo(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end < 0 || end <= start {
			continue
		}
		u, err := url.Parse(part[start+1 : end])
		if err != nil {
			continue
		}
		return u.Query().Get("page_info")
	}
	return ""
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
