package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"palantir/internal/commons"
	"palantir/internal/config"
	"palantir/internal/domain"
	"palantir/internal/search/matcher"
)

type Fetcher interface {
	FetchAllInventory(ctx context.Context, locationID string) ([]domain.InventoryRecord, error)
	LoadDetails(ctx context.Context, locationID string, matched []domain.InventoryRecord) []domain.ProductDetail
}

// LocationSearchService runs the full pipeline for one location: summary
// fetch, match, detail fetch, result assembly. The whole pipeline retries on
// any error; context cancellation aborts immediately and is never retried.
type LocationSearchService struct {
	fetcher Fetcher
	cfg     config.SearchConfig
	logger  *zap.Logger
}

func NewLocationSearchService(fetcher Fetcher, cfg config.SearchConfig, logger *zap.Logger) *LocationSearchService {
	return &LocationSearchService{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *LocationSearchService) SearchLocation(ctx context.Context, locationID string, searchKeys []string) ([]domain.SearchResult, error) {
	maxAttempts := s.cfg.MaxLocationRetries + 1
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		results, err := s.searchOnce(ctx, locationID, searchKeys)
		if err == nil {
			return results, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		if attempt < maxAttempts {
			backoff := time.Duration(attempt) * s.cfg.RetryBackoffUnit
			s.logger.Warn("location search attempt failed, retrying",
				zap.String("locationId", locationID),
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", maxAttempts),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			if err := commons.Sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("location %s: failed after %d attempts: %w", locationID, maxAttempts, lastErr)
}

func (s *LocationSearchService) searchOnce(ctx context.Context, locationID string, searchKeys []string) ([]domain.SearchResult, error) {
	records, err := s.fetcher.FetchAllInventory(ctx, locationID)
	if err != nil {
		return nil, err
	}

	// Empty location: every key is not-found, no detail pass needed.
	if len(records) == 0 {
		results := make([]domain.SearchResult, len(searchKeys))
		for i, key := range searchKeys {
			results[i] = domain.NotFoundResult(key)
		}
		return results, nil
	}

	matched := matcher.Match(searchKeys, records)

	var details []domain.ProductDetail
	if len(matched) > 0 {
		details = s.fetcher.LoadDetails(ctx, locationID, matched)
	}

	return assembleResults(searchKeys, details), nil
}

// assembleResults produces exactly one result per search key. A key counts
// as found when its normalized form equals a loaded variant's SKU or
// barcode; the first matching variant wins.
func assembleResults(searchKeys []string, details []domain.ProductDetail) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(searchKeys))

	for _, key := range searchKeys {
		norm := domain.NormalizeKey(key)
		found := false

		for pi := range details {
			product := &details[pi]
			for vi := range product.Variants {
				variant := &product.Variants[vi]
				if domain.NormalizeKey(variant.SKU) == norm || domain.NormalizeKey(variant.Barcode) == norm {
					results = append(results, domain.FoundResult(key, product, variant))
					found = true
					break
				}
			}
			if found {
				break
			}
		}

		if !found {
			results = append(results, domain.NotFoundResult(key))
		}
	}

	return results
}
