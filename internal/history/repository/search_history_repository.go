package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"palantir/internal/history"
)

type MySQLSearchHistoryRepository struct {
	db *sql.DB
}

func NewMySQLSearchHistoryRepository(db *sql.DB) *MySQLSearchHistoryRepository {
	return &MySQLSearchHistoryRepository{db: db}
}

func (r *MySQLSearchHistoryRepository) RecordSearch(ctx context.Context, rec history.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	query := `
		INSERT INTO SearchHistory (id, totalSearched, found, notFound, lowStockFound,
		                           locations, locationErrors, durationMs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.TotalSearched, rec.Found, rec.NotFound, rec.LowStockFound,
		rec.Locations, rec.LocationErrors, rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("inserting search history: %w", err)
	}

	return nil
}

func (r *MySQLSearchHistoryRepository) FindRecent(ctx context.Context, limit int) ([]history.Record, error) {
	query := `
		SELECT id, totalSearched, found, notFound, lowStockFound,
		       locations, locationErrors, durationMs, createdAt
		FROM SearchHistory
		ORDER BY createdAt DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying search history: %w", err)
	}
	defer rows.Close()

	var records []history.Record
	for rows.Next() {
		var rec history.Record
		err := rows.Scan(
			&rec.ID, &rec.TotalSearched, &rec.Found, &rec.NotFound, &rec.LowStockFound,
			&rec.Locations, &rec.LocationErrors, &rec.DurationMs, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning search history row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search history rows: %w", err)
	}

	return records, nil
}
