package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slimsamil/Wortmann2Shopify/internal/domain"
)

// testClient builds a client pointed at the test server with an effectively
// unthrottled limiter so tests do not wait on the token bucket.
func testClient(serverURL string, maxAttempts int) *Client {
	return NewClient(Config{
		ShopURL:           serverURL,
		AccessToken:       "test-token",
		RequestsPerSecond: 1000,
		Burst:             100,
		MaxAttempts:       maxAttempts,
		PageSize:          2,
	}, zap.NewNop())
}

func TestClientRetriesThrottling(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Retry-After", "0.01")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(server.URL, 3)
	_, err := client.GetByHandle(context.Background(), "prod-1100001")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrShopifyAPI)
	assert.Equal(t, 3, requests, "should stop after MaxAttempts requests")
}

func TestClientRetriesServerErrors(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.Header().Set("Retry-After", "0.01")
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"products":[{"id":1,"handle":"prod-1100001","title":"PC"}]}`)
	}))
	defer server.Close()

	client := testClient(server.URL, 3)
	listing, err := client.GetByHandle(context.Background(), "prod-1100001")

	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	assert.Equal(t, int64(1), listing.RemoteID)
}

func TestClientValidationErrorIsPermanent(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"errors":{"title":["can't be blank"]}}`)
	}))
	defer server.Close()

	client := testClient(server.URL, 5)
	_, err := client.Create(context.Background(), &domain.Product{ID: "1100001"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrShopifyValidation)
	assert.Equal(t, 1, requests, "validation errors must not be retried")
}

func TestClientNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(server.URL, 5)
	err := client.Delete(context.Background(), 12345)

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestClientGetByHandleEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"products":[]}`)
	}))
	defer server.Close()

	client := testClient(server.URL, 5)
	_, err := client.GetByHandle(context.Background(), "prod-unknown")

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestClientListAllFollowsPagination(t *testing.T) {
	var seenPageInfo []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageInfo := r.URL.Query().Get("page_info")
		seenPageInfo = append(seenPageInfo, pageInfo)
		switch pageInfo {
		case "":
			w.Header().Set("Link", `<https://shop.example.com/admin/api/2023-10/products.json?limit=2&page_info=cursor-2>; rel="next"`)
			fmt.Fprint(w, `{"products":[{"id":1,"handle":"prod-A"},{"id":2,"handle":"prod-B"}]}`)
		case "cursor-2":
			fmt.Fprint(w, `{"products":[{"id":3,"handle":"prod-C"}]}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	client := testClient(server.URL, 5)
	listings, err := client.ListAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"", "cursor-2"}, seenPageInfo)
	require.Len(t, listings, 3)
	assert.Equal(t, "prod-C", listings[2].Handle)
}

func TestClientCreate(t *testing.T) {
	var gotToken string
	var gotEnvelope productEnvelope
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		fmt.Fprint(w, `{"product":{"id":77,"handle":"prod-1100001","title":"TERRA PC","variants":[{"price":"999.90","sku":"1100001","inventory_quantity":3}]}}`)
	}))
	defer server.Close()

	client := testClient(server.URL, 5)
	listing, err := client.Create(context.Background(), &domain.Product{
		ID:    "1100001",
		Title: "TERRA PC",
		Stock: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, "test-token", gotToken)
	assert.Equal(t, "prod-1100001", gotEnvelope.Product.Handle)
	assert.Equal(t, int64(77), listing.RemoteID)
	assert.Equal(t, 3, listing.Stock)
	assert.Equal(t, "999.9", listing.Price.Decimal.String())
}

func TestRetryAfterHeader(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "2.5")
	assert.Equal(t, "2.5s", retryAfter(header).String())

	header.Set("Retry-After", "garbage")
	assert.Zero(t, retryAfter(header))

	assert.Zero(t, retryAfter(http.Header{}))
}

func TestNextPageInfo(t *testing.T) {
	link := `<https://shop.myshopify.com/admin/api/2023-10/products.json?limit=250&page_info=prev-cursor>; rel="previous", ` +
		`<https://shop.myshopify.com/admin/api/2023-10/products.json?limit=250&page_info=next-cursor>; rel="next"`
	assert.Equal(t, "next-cursor", nextPageInfo(link))
	assert.Empty(t, nextPageInfo(`<https://shop.myshopify.com/x?page_info=a>; rel="previous"`))
	assert.Empty(t, nextPageInfo(""))
}
