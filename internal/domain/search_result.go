package domain

import "strings"

// NormalizeKey is the canonical form used for all key comparisons: search
// keys and inventory keys are matched by trimmed, lowercased equality.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// InventoryRecord is the lightweight entry produced by the summary pass over
// a location's inventory. One record per variant with a non-empty key.
type InventoryRecord struct {
	Key       string
	ProductID string
	VariantID string
}

type SearchStatus string

const (
	SearchStatusFound    SearchStatus = "found"
	SearchStatusNotFound SearchStatus = "not-found"
)

// SearchResult is the per-key, per-location outcome. Product and Variant are
// set if and only if Status is found; the constructors below are the only
// way results are built, which keeps that invariant structural.
type SearchResult struct {
	Key     string
	Status  SearchStatus
	Product *ProductDetail
	Variant *VariantDetail
}

func FoundResult(key string, product *ProductDetail, variant *VariantDetail) SearchResult {
	return SearchResult{
		Key:     key,
		Status:  SearchStatusFound,
		Product: product,
		Variant: variant,
	}
}

func NotFoundResult(key string) SearchResult {
	return SearchResult{
		Key:    key,
		Status: SearchStatusNotFound,
	}
}

func (r SearchResult) IsFound() bool {
	return r.Status == SearchStatusFound
}

// LocationSearchOutcome holds one location's complete result set. When the
// location's pipeline failed irrecoverably, Err carries the reason and
// Results contains every key marked not-found.
type LocationSearchOutcome struct {
	LocationID string
	Results    []SearchResult
	Err        string
}

// AllNotFoundOutcome builds the degraded outcome for a failed location so
// the completeness invariant (one result per key) still holds.
func AllNotFoundOutcome(locationID string, keys []string, reason string) *LocationSearchOutcome {
	results := make([]SearchResult, len(keys))
	for i, key := range keys {
		results[i] = NotFoundResult(key)
	}
	return &LocationSearchOutcome{
		LocationID: locationID,
		Results:    results,
		Err:        reason,
	}
}

type SearchStats struct {
	TotalSearched int
	Found         int
	NotFound      int
}
