package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"palantir/internal/domain"
	"palantir/internal/dto"
	apperrors "palantir/internal/errors"
	"palantir/internal/history"
	"palantir/internal/search/input"
	"palantir/internal/search/session"
)

const sessionHeader = "X-Session-ID"

type BulkSearchUseCase interface {
	StartBulkSearch(ctx context.Context, sessionID string, rawKeys []string) error
}

type HistoryReader interface {
	FindRecent(ctx context.Context, limit int) ([]history.Record, error)
}

type Controller struct {
	useCase  BulkSearchUseCase
	sessions *session.Store
	reader   HistoryReader
	logger   *zap.Logger
}

func NewController(useCase BulkSearchUseCase, sessions *session.Store, reader HistoryReader, logger *zap.Logger) *Controller {
	return &Controller{
		useCase:  useCase,
		sessions: sessions,
		reader:   reader,
		logger:   logger,
	}
}

// HandleStartSearch kicks off a bulk search for the caller's session. The
// search runs in the background; callers poll progress and results.
func (c *Controller) HandleStartSearch(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.BulkSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	var keys []string
	switch {
	case strings.TrimSpace(req.CSV) != "":
		keys = input.ParseCSV(req.CSV)
	case strings.TrimSpace(req.Input) != "":
		keys = input.ParseFreeText(req.Input)
	}

	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	if err := c.useCase.StartBulkSearch(r.Context(), sessionID, keys); err != nil {
		if ve, ok := apperrors.IsValidationError(err); ok {
			logger.Warn("bulk search rejected", zap.String("reason", ve.Message))
			c.writeValidationError(w, ve.Message, ve.Details...)
			return
		}
		logger.Error("failed to start bulk search", zap.Error(err))
		c.writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":   "UPSTREAM_ERROR",
			"message": err.Error(),
		})
		return
	}

	logger.Info("bulk search started",
		zap.String("sessionId", sessionID),
		zap.Int("keyCount", len(keys)),
	)
	c.writeJSON(w, http.StatusAccepted, dto.BulkSearchAcceptedResponse{
		TraceID:   traceID,
		SessionID: sessionID,
		Message:   "search started",
		Timestamp: time.Now().UTC(),
	})
}

// HandleGetResults returns one location's results through the active stock
// filter. Switching location or filter is a read-time view; nothing is
// re-searched.
func (c *Controller) HandleGetResults(w http.ResponseWriter, r *http.Request) {
	sess, ok := c.session(r)
	if !ok {
		c.writeNotFound(w, "no active search session")
		return
	}

	filter, ok := domain.ParseStockFilter(r.URL.Query().Get("stock"))
	if !ok {
		c.writeValidationError(w, "invalid stock filter", apperrors.ValidationDetail{
			Field:   "stock",
			Message: "stock must be one of all, in-stock, low-stock, out-of-stock",
		})
		return
	}

	locationID := r.URL.Query().Get("location")
	if locationID == "" {
		locationID = sess.SelectedLocation()
	} else if !sess.SelectLocation(locationID) {
		c.writeNotFound(w, fmt.Sprintf("no results for location %s", locationID))
		return
	}

	results := sess.FilteredResults(locationID, filter)
	resp := dto.ResultsResponse{
		LocationID:    locationID,
		StockFilter:   string(filter),
		Results:       make([]dto.SearchResultDTO, len(results)),
		LocationError: sess.OutcomeError(locationID),
	}
	for i, res := range results {
		resp.Results[i] = toResultDTO(res)
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *Controller) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := c.session(r)
	if !ok {
		c.writeNotFound(w, "no active search session")
		return
	}

	phase := sess.Phase()
	progress := sess.Progress()
	c.writeJSON(w, http.StatusOK, dto.ProgressResponse{
		Phase:         string(phase.Kind),
		LocationIndex: phase.LocationIndex,
		Step:          progress.Step,
		Percentage:    progress.Percentage,
		IsLoading:     progress.IsLoading,
	})
}

func (c *Controller) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := c.session(r)
	if !ok {
		c.writeNotFound(w, "no active search session")
		return
	}

	stats := sess.Stats()
	locationErrors := sess.LocationErrors()
	c.writeJSON(w, http.StatusOK, dto.StatsResponse{
		TotalSearched:  stats.TotalSearched,
		Found:          stats.Found,
		NotFound:       stats.NotFound,
		NotFoundKeys:   sess.NotFoundKeys(),
		LocationErrors: locationErrors,
		ErrorSummary:   summarizeErrors(locationErrors),
	})
}

func (c *Controller) HandleClearSearch(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID != "" {
		c.sessions.Clear(sessionID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	resp := dto.HistoryResponse{Records: []dto.HistoryRecordDTO{}}
	if c.reader == nil {
		c.writeJSON(w, http.StatusOK, resp)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 200 {
			c.writeValidationError(w, "invalid limit", apperrors.ValidationDetail{
				Field:   "limit",
				Message: "limit must be between 1 and 200",
			})
			return
		}
		limit = parsed
	}

	records, err := c.reader.FindRecent(r.Context(), limit)
	if err != nil {
		c.logger.Error("failed to load search history", zap.Error(err))
		c.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "INTERNAL_ERROR",
			"message": "an unexpected error occurred",
		})
		return
	}

	for _, rec := range records {
		resp.Records = append(resp.Records, dto.HistoryRecordDTO{
			ID:             rec.ID,
			TotalSearched:  rec.TotalSearched,
			Found:          rec.Found,
			NotFound:       rec.NotFound,
			LowStockFound:  rec.LowStockFound,
			Locations:      rec.Locations,
			LocationErrors: rec.LocationErrors,
			DurationMs:     rec.DurationMs,
			CreatedAt:      rec.CreatedAt,
		})
	}
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *Controller) session(r *http.Request) (*domain.SearchSession, bool) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		return nil, false
	}
	return c.sessions.Get(sessionID)
}

func toResultDTO(res domain.SearchResult) dto.SearchResultDTO {
	out := dto.SearchResultDTO{
		SKU:    res.Key,
		Status: string(res.Status),
	}
	if res.Product != nil {
		out.Product = &dto.ProductDTO{
			ProductID:    res.Product.ProductID,
			Title:        res.Product.Title,
			Status:       res.Product.Status,
			ImageURL:     res.Product.ImageURL,
			ImageAltText: res.Product.ImageAltText,
		}
	}
	if res.Variant != nil {
		out.Variant = &dto.VariantDTO{
			VariantID:       res.Variant.VariantID,
			SKU:             res.Variant.SKU,
			Barcode:         res.Variant.Barcode,
			Price:           res.Variant.Price,
			CompareAtPrice:  res.Variant.CompareAtPrice,
			Available:       res.Variant.Available,
			InventoryItemID: res.Variant.InventoryItemID,
			StockStatus:     string(res.Variant.StockStatus()),
		}
	}
	return out
}

// summarizeErrors renders the first two location errors plus a count of the
// rest, the way the admin UI shows its warning banner.
func summarizeErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	shown := errs
	if len(shown) > 2 {
		shown = shown[:2]
	}
	summary := fmt.Sprintf("Search completed but some locations had issues: %s", strings.Join(shown, ", "))
	if len(errs) > 2 {
		summary += fmt.Sprintf(" and %d more...", len(errs)-2)
	}
	return summary
}

func (c *Controller) writeNotFound(w http.ResponseWriter, message string) {
	c.writeJSON(w, http.StatusNotFound, map[string]string{
		"error":   "NOT_FOUND",
		"message": message,
	})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
