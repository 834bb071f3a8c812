package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"palantir/internal/commons"
	"palantir/internal/config"
	"palantir/internal/domain"
	apperrors "palantir/internal/errors"
	"palantir/internal/history"
	"palantir/internal/search/input"
	"palantir/internal/search/session"
)

type LocationAPI interface {
	GetLocations(ctx context.Context) ([]domain.Location, error)
}

type LocationSearcher interface {
	SearchLocation(ctx context.Context, locationID string, searchKeys []string) ([]domain.SearchResult, error)
}

// HistoryRecorder persists completed-search stats. Optional; a nil recorder
// disables history.
type HistoryRecorder interface {
	RecordSearch(ctx context.Context, rec history.Record) error
}

// BulkSearchUseCase coordinates the multi-location search as an explicit
// state machine: Idle -> Initializing -> Searching(i) -> Finalizing ->
// Completed | Failed. Locations run sequentially; one location's failure is
// recorded and the loop continues.
type BulkSearchUseCase struct {
	locations LocationAPI
	searcher  LocationSearcher
	sessions  *session.Store
	recorder  HistoryRecorder
	cfg       config.SearchConfig
	logger    *zap.Logger
}

func NewBulkSearchUseCase(
	locations LocationAPI,
	searcher LocationSearcher,
	sessions *session.Store,
	recorder HistoryRecorder,
	cfg config.SearchConfig,
	logger *zap.Logger,
) *BulkSearchUseCase {
	return &BulkSearchUseCase{
		locations: locations,
		searcher:  searcher,
		sessions:  sessions,
		recorder:  recorder,
		cfg:       cfg,
		logger:    logger,
	}
}

// StartBulkSearch validates the input, registers a fresh session under
// sessionID (cancelling any search already running for it) and launches the
// search in the background. Validation failures are fatal and issue no
// inventory calls.
func (uc *BulkSearchUseCase) StartBulkSearch(ctx context.Context, sessionID string, rawKeys []string) error {
	keys := input.Dedup(rawKeys)
	if len(keys) == 0 {
		return apperrors.NewValidationError("no search keys provided", apperrors.ValidationDetail{
			Field:   "keys",
			Message: "provide search keys via free text or CSV",
		})
	}
	if len(keys) > uc.cfg.MaxSearchKeys {
		return apperrors.NewValidationError(
			fmt.Sprintf("too many search keys, limit is %d per search", uc.cfg.MaxSearchKeys),
			apperrors.ValidationDetail{
				Field:   "keys",
				Message: fmt.Sprintf("key count %d exceeds maximum of %d", len(keys), uc.cfg.MaxSearchKeys),
			},
		)
	}

	locations, err := uc.locations.GetLocations(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to load locations", err)
	}
	active := domain.ActiveLocations(locations)
	if len(active) == 0 {
		return apperrors.NewValidationError("no active locations available for search", apperrors.ValidationDetail{
			Field:   "locations",
			Message: "at least one active location is required",
		})
	}

	sess := domain.NewSearchSession(keys, active)
	sess.SetPhase(domain.Phase{Kind: domain.PhaseInitializing})
	sess.SetProgress("Initializing multi-location search...", 0, true)

	// The search outlives the HTTP request that started it; it is bound to
	// the session's own context so Clear or a new search can cancel it.
	searchCtx, cancel := context.WithCancel(context.Background())
	uc.sessions.Begin(sessionID, sess, cancel)

	go uc.run(searchCtx, sessionID, sess)

	return nil
}

func (uc *BulkSearchUseCase) run(ctx context.Context, sessionID string, sess *domain.SearchSession) {
	start := time.Now()
	keys := sess.Keys()
	active := sess.ActiveLocations()
	errorsSoFar := 0

	for i, loc := range active {
		if ctx.Err() != nil {
			uc.logger.Info("bulk search cancelled",
				zap.String("sessionId", sessionID),
				zap.Int("locationsProcessed", i),
			)
			return
		}

		sess.SetPhase(domain.Phase{Kind: domain.PhaseSearching, LocationIndex: i})
		percentage := int(math.Round(float64(i+1) / float64(len(active)) * 80))
		sess.SetProgress(
			fmt.Sprintf("Searching %s... (%d/%d)", loc.Name, i+1, len(active)),
			percentage,
			true,
		)

		results, err := uc.searcher.SearchLocation(ctx, loc.ID, keys)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			errorsSoFar++
			reason := fmt.Sprintf("Location %s: %v", loc.Name, err)
			uc.logger.Warn("location search failed, continuing",
				zap.String("sessionId", sessionID),
				zap.String("locationId", loc.ID),
				zap.Error(err),
			)
			sess.StoreOutcome(domain.AllNotFoundOutcome(loc.ID, keys, reason))
		} else {
			sess.StoreOutcome(&domain.LocationSearchOutcome{LocationID: loc.ID, Results: results})
		}

		// Ease off a struggling backend: longer pause once any location
		// has errored.
		delay := uc.cfg.InterLocationDelay
		if errorsSoFar > 0 {
			delay = uc.cfg.InterLocationErrorDelay
		}
		if err := commons.Sleep(ctx, delay); err != nil {
			return
		}
	}

	sess.SetPhase(domain.Phase{Kind: domain.PhaseFinalizing})
	sess.SetProgress("Finalizing results...", 90, true)

	if sess.OutcomeCount() == 0 {
		sess.Fail("no valid results obtained from any location")
		return
	}

	sess.Finalize()
	sess.SetPhase(domain.Phase{Kind: domain.PhaseCompleted})

	locationErrors := sess.LocationErrors()
	step := "Multi-location search completed successfully!"
	if len(locationErrors) > 0 {
		step = fmt.Sprintf("Multi-location search completed with %d location errors!", len(locationErrors))
	}
	sess.SetProgress(step, 100, false)

	stats := sess.Stats()
	uc.logger.Info("bulk search completed",
		zap.String("sessionId", sessionID),
		zap.Int("totalSearched", stats.TotalSearched),
		zap.Int("found", stats.Found),
		zap.Int("notFound", stats.NotFound),
		zap.Int("locationErrors", len(locationErrors)),
		zap.Duration("duration", time.Since(start)),
	)

	uc.recordHistory(ctx, sess, stats, len(active), len(locationErrors), time.Since(start))
	uc.sessions.ScheduleProgressReset(sessionID, uc.cfg.ProgressResetDelay)
}

// recordHistory is best effort: history failures are logged, never surfaced.
func (uc *BulkSearchUseCase) recordHistory(ctx context.Context, sess *domain.SearchSession, stats domain.SearchStats, locations, locationErrors int, duration time.Duration) {
	if uc.recorder == nil {
		return
	}
	rec := history.Record{
		TotalSearched:  stats.TotalSearched,
		Found:          stats.Found,
		NotFound:       stats.NotFound,
		LowStockFound:  sess.LowStockFoundCount(history.LowStockReportThreshold),
		Locations:      locations,
		LocationErrors: locationErrors,
		DurationMs:     duration.Milliseconds(),
	}
	if err := uc.recorder.RecordSearch(ctx, rec); err != nil {
		uc.logger.Warn("failed to record search history", zap.Error(err))
	}
}
