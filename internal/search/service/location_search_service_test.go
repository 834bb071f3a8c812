package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"palantir/internal/config"
	"palantir/internal/domain"
)

func testConfig() config.SearchConfig {
	cfg := config.DefaultSearchConfig()
	cfg.RetryBackoffUnit = 0
	return cfg
}

type fetchStep struct {
	records []domain.InventoryRecord
	err     error
}

type fakeFetcher struct {
	mu          sync.Mutex
	steps       []fetchStep
	fetchCalls  int
	detailCalls int
	details     []domain.ProductDetail
}

func (f *fakeFetcher) FetchAllInventory(ctx context.Context, locationID string) ([]domain.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	step := f.steps[len(f.steps)-1]
	if f.fetchCalls < len(f.steps) {
		step = f.steps[f.fetchCalls]
	}
	f.fetchCalls++
	return step.records, step.err
}

func (f *fakeFetcher) LoadDetails(ctx context.Context, locationID string, matched []domain.InventoryRecord) []domain.ProductDetail {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	return f.details
}

func inventoryOf(keys ...string) []domain.InventoryRecord {
	records := make([]domain.InventoryRecord, len(keys))
	for i, key := range keys {
		records[i] = domain.InventoryRecord{Key: key, ProductID: "p-" + key, VariantID: "v-" + key}
	}
	return records
}

func detailsOf(skus ...string) []domain.ProductDetail {
	details := make([]domain.ProductDetail, len(skus))
	for i, sku := range skus {
		details[i] = domain.ProductDetail{
			ProductID: "p-" + sku,
			Title:     "Product " + sku,
			Variants: []domain.VariantDetail{
				{VariantID: "v-" + sku, SKU: sku, Available: 7},
			},
		}
	}
	return details
}

func TestSearchLocationHappyPath(t *testing.T) {
	fetcher := &fakeFetcher{
		steps:   []fetchStep{{records: inventoryOf("SKU-1", "SKU-2")}},
		details: detailsOf("SKU-1"),
	}
	svc := NewLocationSearchService(fetcher, testConfig(), zap.NewNop())

	results, err := svc.SearchLocation(context.Background(), "loc-1", []string{"SKU-1", "SKU-9"})

	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].IsFound())
	assert.Equal(t, "SKU-1", results[0].Key)
	require.NotNil(t, results[0].Product)
	require.NotNil(t, results[0].Variant)
	assert.Equal(t, "p-SKU-1", results[0].Product.ProductID)

	assert.False(t, results[1].IsFound())
	assert.Equal(t, "SKU-9", results[1].Key)
	assert.Nil(t, results[1].Product)
}

func TestSearchLocationEmptyInventoryShortCircuits(t *testing.T) {
	fetcher := &fakeFetcher{steps: []fetchStep{{records: nil}}}
	svc := NewLocationSearchService(fetcher, testConfig(), zap.NewNop())

	results, err := svc.SearchLocation(context.Background(), "loc-1", []string{"SKU-1", "SKU-2"})

	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.IsFound())
	}
	assert.Equal(t, 0, fetcher.detailCalls)
}

func TestSearchLocationNoMatchesSkipsDetailPass(t *testing.T) {
	fetcher := &fakeFetcher{steps: []fetchStep{{records: inventoryOf("SKU-1")}}}
	svc := NewLocationSearchService(fetcher, testConfig(), zap.NewNop())

	results, err := svc.SearchLocation(context.Background(), "loc-1", []string{"SKU-9"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].IsFound())
	assert.Equal(t, 0, fetcher.detailCalls)
}

func TestSearchLocationMatchesByBarcode(t *testing.T) {
	fetcher := &fakeFetcher{
		steps: []fetchStep{{records: []domain.InventoryRecord{
			{Key: "4006381333931", ProductID: "p-1", VariantID: "v-1"},
		}}},
		details: []domain.ProductDetail{{
			ProductID: "p-1",
			Title:     "Scanner Fodder",
			Variants: []domain.VariantDetail{
				{VariantID: "v-1", SKU: "SKU-1", Barcode: "4006381333931", Available: 2},
			},
		}},
	}
	svc := NewLocationSearchService(fetcher, testConfig(), zap.NewNop())

	results, err := svc.SearchLocation(context.Background(), "loc-1", []string{"4006381333931"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsFound())
	assert.Equal(t, "v-1", results[0].Variant.VariantID)
}

func TestSearchLocationRetriesThenSucceeds(t *testing.T) {
	fetcher := &fakeFetcher{
		steps: []fetchStep{
			{err: errors.New("transient")},
			{err: errors.New("transient")},
			{records: inventoryOf("SKU-1")},
		},
		details: detailsOf("SKU-1"),
	}
	svc := NewLocationSearchService(fetcher, testConfig(), zap.NewNop())

	results, err := svc.SearchLocation(context.Background(), "loc-1", []string{"SKU-1"})

	require.NoError(t, err)
	assert.Equal(t, 3, fetcher.fetchCalls)
	require.Len(t, results, 1)
	assert.True(t, results[0].IsFound())
}

func TestSearchLocationGivesUpAfterAllAttempts(t *testing.T) {
	boom := errors.New("persistent failure")
	fetcher := &fakeFetcher{steps: []fetchStep{{err: boom}}}
	cfg := testConfig()
	svc := NewLocationSearchService(fetcher, cfg, zap.NewNop())

	results, err := svc.SearchLocation(context.Background(), "loc-1", []string{"SKU-1"})

	assert.Nil(t, results)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, cfg.MaxLocationRetries+1, fetcher.fetchCalls)
}

func TestSearchLocationDoesNotRetryAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &fakeFetcher{steps: []fetchStep{{err: errors.New("aborted mid-fetch")}}}
	svc := NewLocationSearchService(fetcher, testConfig(), zap.NewNop())

	cancel()
	results, err := svc.SearchLocation(ctx, "loc-1", []string{"SKU-1"})

	assert.Nil(t, results)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fetcher.fetchCalls)
}

func TestAssembleResultsFirstVariantWins(t *testing.T) {
	details := []domain.ProductDetail{
		{
			ProductID: "p-1",
			Variants: []domain.VariantDetail{
				{VariantID: "v-1", SKU: "SKU-1", Available: 1},
				{VariantID: "v-2", SKU: "sku-1", Available: 9},
			},
		},
	}

	results := assembleResults([]string{"SKU-1"}, details)

	require.Len(t, results, 1)
	require.True(t, results[0].IsFound())
	assert.Equal(t, "v-1", results[0].Variant.VariantID)
}

func TestAssembleResultsOneResultPerKey(t *testing.T) {
	results := assembleResults([]string{"A", "B", "C"}, detailsOf("B"))

	require.Len(t, results, 3)
	assert.False(t, results[0].IsFound())
	assert.True(t, results[1].IsFound())
	assert.False(t, results[2].IsFound())
}
