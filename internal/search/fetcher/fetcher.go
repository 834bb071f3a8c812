package fetcher

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"palantir/internal/commons"
	"palantir/internal/config"
	"palantir/internal/domain"
	apperrors "palantir/internal/errors"
)

// InventoryAPI is the slice of the inventory client the fetcher needs.
type InventoryAPI interface {
	GetInventoryPage(ctx context.Context, locationID string, limit int, after string) (*domain.InventoryPage, error)
}

// Fetcher walks a location's cursor-paginated inventory. The summary pass
// collects lightweight key records for matching; the detail pass re-walks
// the same pages but keeps only matched products.
type Fetcher struct {
	api    InventoryAPI
	cfg    config.SearchConfig
	logger *zap.Logger
}

func New(api InventoryAPI, cfg config.SearchConfig, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		api:    api,
		cfg:    cfg,
		logger: logger,
	}
}

// FetchAllInventory retrieves one key record per variant key at the given
// location. Termination, whichever comes first: the API reports no more
// pages, the page ceiling is reached (partial result plus a truncation
// warning), or the consecutive-error ceiling is reached (FetchExhausted).
// Between successful pages it sleeps a growing delay to stay under upstream
// rate limits; after a page error it waits a longer fixed delay.
func (f *Fetcher) FetchAllInventory(ctx context.Context, locationID string) ([]domain.InventoryRecord, error) {
	var records []domain.InventoryRecord
	var lastErr error
	cursor := ""
	hasMore := true
	pageCount := 0
	consecutiveErrors := 0

	for hasMore && pageCount < f.cfg.MaxPages && consecutiveErrors < f.cfg.MaxConsecutiveErrors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageCount++

		page, err := f.api.GetInventoryPage(ctx, locationID, f.cfg.PageLimit, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			consecutiveErrors++
			f.logger.Warn("inventory page fetch failed",
				zap.String("locationId", locationID),
				zap.Int("page", pageCount),
				zap.Int("consecutiveErrors", consecutiveErrors),
				zap.Error(err),
			)
			if consecutiveErrors >= f.cfg.MaxConsecutiveErrors {
				break
			}
			if err := commons.Sleep(ctx, f.cfg.PageErrorDelay); err != nil {
				return nil, err
			}
			continue
		}

		consecutiveErrors = 0
		records = append(records, recordsFromPage(page)...)

		hasMore = page.HasMore && page.EndCursor != ""
		cursor = page.EndCursor

		if hasMore {
			if err := commons.Sleep(ctx, f.interPageDelay(pageCount)); err != nil {
				return nil, err
			}
		}
	}

	if consecutiveErrors >= f.cfg.MaxConsecutiveErrors {
		return nil, apperrors.NewFetchExhaustedError(locationID, consecutiveErrors, lastErr)
	}

	if pageCount >= f.cfg.MaxPages && hasMore {
		f.logger.Warn("inventory fetch truncated at page ceiling",
			zap.String("locationId", locationID),
			zap.Int("maxPages", f.cfg.MaxPages),
			zap.Int("records", len(records)),
		)
	}

	return records, nil
}

// LoadDetails re-walks the location's inventory keeping only products from
// the matched set, stopping early once every needed product was collected.
// Fails open: a page error ends the walk and whatever was gathered so far is
// returned, leaving the unresolved keys to surface as not-found.
func (f *Fetcher) LoadDetails(ctx context.Context, locationID string, matched []domain.InventoryRecord) []domain.ProductDetail {
	if len(matched) == 0 {
		return nil
	}

	needed := make(map[string]struct{}, len(matched))
	for _, rec := range matched {
		needed[rec.ProductID] = struct{}{}
	}

	var details []domain.ProductDetail
	collected := make(map[string]struct{}, len(needed))
	cursor := ""
	hasMore := true
	pageCount := 0

	for hasMore && pageCount < f.cfg.DetailMaxPages {
		if ctx.Err() != nil {
			break
		}
		pageCount++

		page, err := f.api.GetInventoryPage(ctx, locationID, f.cfg.PageLimit, cursor)
		if err != nil {
			f.logger.Warn("detail load stopped early",
				zap.String("locationId", locationID),
				zap.Int("page", pageCount),
				zap.Int("collected", len(collected)),
				zap.Int("needed", len(needed)),
				zap.Error(err),
			)
			break
		}

		for _, product := range page.Products {
			if _, want := needed[product.ProductID]; !want {
				continue
			}
			if _, have := collected[product.ProductID]; have {
				continue
			}
			collected[product.ProductID] = struct{}{}
			details = append(details, product)
		}

		if len(collected) >= len(needed) {
			break
		}

		hasMore = page.HasMore && page.EndCursor != ""
		cursor = page.EndCursor

		if hasMore {
			if err := commons.Sleep(ctx, f.cfg.BaseInterPageDelay); err != nil {
				break
			}
		}
	}

	return details
}

// interPageDelay grows linearly with the page count and is capped, matching
// the upstream's tolerance for sustained paging.
func (f *Fetcher) interPageDelay(pageCount int) time.Duration {
	delay := f.cfg.BaseInterPageDelay + time.Duration(pageCount)*f.cfg.InterPageDelayStep
	if delay > f.cfg.MaxInterPageDelay {
		delay = f.cfg.MaxInterPageDelay
	}
	return delay
}

// recordsFromPage flattens a page into key records. SKU and barcode both
// become records, so a search key of either scheme matches; variants without
// keys are skipped.
func recordsFromPage(page *domain.InventoryPage) []domain.InventoryRecord {
	var records []domain.InventoryRecord
	for _, product := range page.Products {
		for _, variant := range product.Variants {
			if sku := strings.TrimSpace(variant.SKU); sku != "" {
				records = append(records, domain.InventoryRecord{
					Key:       sku,
					ProductID: product.ProductID,
					VariantID: variant.VariantID,
				})
			}
			if barcode := strings.TrimSpace(variant.Barcode); barcode != "" {
				records = append(records, domain.InventoryRecord{
					Key:       barcode,
					ProductID: product.ProductID,
					VariantID: variant.VariantID,
				})
			}
		}
	}
	return records
}
