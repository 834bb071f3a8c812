package search

import (
	"database/sql"

	"go.uber.org/zap"

	"palantir/internal/config"
	historyrepo "palantir/internal/history/repository"
	"palantir/internal/infrastructure/shopify"
	"palantir/internal/search/controller"
	"palantir/internal/search/fetcher"
	"palantir/internal/search/service"
	"palantir/internal/search/session"
	"palantir/internal/search/usecase"
)

// NewModule wires the bulk search feature. db may be nil, which disables
// search history.
func NewModule(client *shopify.Client, db *sql.DB, cfg config.SearchConfig, logger *zap.Logger) *controller.Controller {
	f := fetcher.New(client, cfg, logger)
	locationSvc := service.NewLocationSearchService(f, cfg, logger)
	sessions := session.NewStore()

	var recorder usecase.HistoryRecorder
	var reader controller.HistoryReader
	if db != nil {
		repo := historyrepo.NewMySQLSearchHistoryRepository(db)
		recorder = repo
		reader = repo
	}

	uc := usecase.NewBulkSearchUseCase(client, locationSvc, sessions, recorder, cfg, logger)
	return controller.NewController(uc, sessions, reader, logger)
}
