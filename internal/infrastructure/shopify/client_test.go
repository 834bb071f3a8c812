package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"palantir/internal/config"
	apperrors "palantir/internal/errors"
)

func testClient(baseURL string) *Client {
	return NewClient(config.InventoryConfig{
		BaseURL:                    baseURL,
		RequestsPerSecond:          1000,
		Burst:                      1000,
		BreakerConsecutiveFailures: 3,
		BreakerOpenTimeout:         time.Minute,
	}, 5*time.Second, zap.NewNop())
}

func TestGetLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/locations", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"locations": [
					{"id": "loc-1", "name": "Downtown", "isActive": true, "address": "1 Main St"},
					{"id": "loc-2", "name": "Mothballed", "isActive": false}
				]
			}
		}`))
	}))
	defer srv.Close()

	locations, err := testClient(srv.URL).GetLocations(context.Background())

	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "loc-1", locations[0].ID)
	assert.Equal(t, "Downtown", locations[0].Name)
	assert.True(t, locations[0].IsActive)
	assert.Equal(t, "1 Main St", locations[0].Address)
	assert.False(t, locations[1].IsActive)
}

func TestGetInventoryPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inventory", r.URL.Path)
		assert.Equal(t, "loc-1", r.URL.Query().Get("locationId"))
		assert.Equal(t, "250", r.URL.Query().Get("limit"))
		assert.Equal(t, "cur-5", r.URL.Query().Get("after"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"inventory": [
					{
						"productId": "p-1",
						"title": "Widget",
						"status": "active",
						"image": {"url": "http://img/1.png", "altText": "a widget"},
						"variants": [
							{"variantId": "v-1", "sku": "SKU-1", "barcode": "111", "price": "9.99", "available": 4, "inventoryItemId": "ii-1"}
						]
					}
				],
				"hasMore": true,
				"pageInfo": {"endCursor": "cur-6"}
			}
		}`))
	}))
	defer srv.Close()

	page, err := testClient(srv.URL).GetInventoryPage(context.Background(), "loc-1", 250, "cur-5")

	require.NoError(t, err)
	assert.True(t, page.HasMore)
	assert.Equal(t, "cur-6", page.EndCursor)
	require.Len(t, page.Products, 1)
	product := page.Products[0]
	assert.Equal(t, "p-1", product.ProductID)
	assert.Equal(t, "http://img/1.png", product.ImageURL)
	require.Len(t, product.Variants, 1)
	assert.Equal(t, "SKU-1", product.Variants[0].SKU)
	assert.Equal(t, 4, product.Variants[0].Available)
}

func TestGetInventoryPageFirstPageOmitsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAfter := r.URL.Query()["after"]
		assert.False(t, hasAfter)
		_, _ = w.Write([]byte(`{"success": true, "data": {"inventory": [], "hasMore": false, "pageInfo": {"endCursor": ""}}}`))
	}))
	defer srv.Close()

	page, err := testClient(srv.URL).GetInventoryPage(context.Background(), "loc-1", 250, "")

	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.Products)
}

func TestClientRejectsEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "error": "shop is on fire"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetLocations(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "shop is on fire")
}

func TestClientRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetLocations(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClientBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	for i := 0; i < 3; i++ {
		_, err := client.GetLocations(context.Background())
		require.Error(t, err)
		_, unavailable := apperrors.IsUnavailableError(err)
		assert.False(t, unavailable, "breaker tripped too early on attempt %d", i+1)
	}

	_, err := client.GetLocations(context.Background())
	require.Error(t, err)
	_, unavailable := apperrors.IsUnavailableError(err)
	assert.True(t, unavailable)
}

func TestClientHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).GetLocations(ctx)
	require.Error(t, err)
}
