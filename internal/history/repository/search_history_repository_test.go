package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palantir/internal/history"
	"palantir/internal/testutil"
)

// Unit Tests

func TestNewMySQLSearchHistoryRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLSearchHistoryRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func TestSearchHistoryRepository_RecordSearch_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLSearchHistoryRepository(db)

	err := repo.RecordSearch(context.Background(), history.Record{
		ID:             "rec-1",
		TotalSearched:  25,
		Found:          20,
		NotFound:       5,
		LowStockFound:  3,
		Locations:      2,
		LocationErrors: 1,
		DurationMs:     4321,
	})
	require.NoError(t, err)

	var found, notFound, lowStock int
	err = db.QueryRow(`
		SELECT found, notFound, lowStockFound FROM SearchHistory WHERE id = 'rec-1'
	`).Scan(&found, &notFound, &lowStock)
	require.NoError(t, err)
	assert.Equal(t, 20, found)
	assert.Equal(t, 5, notFound)
	assert.Equal(t, 3, lowStock)
}

func TestSearchHistoryRepository_RecordSearch_GeneratesID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLSearchHistoryRepository(db)

	err := repo.RecordSearch(context.Background(), history.Record{
		TotalSearched: 1,
		Found:         1,
		Locations:     1,
		DurationMs:    10,
	})
	require.NoError(t, err)

	records, err := repo.FindRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].ID)
}

func TestSearchHistoryRepository_FindRecent_OrderAndLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLSearchHistoryRepository(db)

	for i, id := range []string{"rec-old", "rec-mid", "rec-new"} {
		_, err := db.Exec(`
			INSERT INTO SearchHistory (id, totalSearched, found, notFound, lowStockFound,
			                           locations, locationErrors, durationMs, createdAt)
			VALUES (?, 10, 8, 2, 1, 2, 0, 100, DATE_ADD(NOW(), INTERVAL ? SECOND))
		`, id, i)
		require.NoError(t, err)
	}

	records, err := repo.FindRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rec-new", records[0].ID)
	assert.Equal(t, "rec-mid", records[1].ID)
}

func TestSearchHistoryRepository_FindRecent_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLSearchHistoryRepository(db)

	records, err := repo.FindRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
