package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the test database. Expects a MySQL instance on
// localhost:3306 with a database named 'palantir_test'; tests skip when it
// is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/palantir_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// SetupTestTables creates the tables the tests need.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createSearchHistoryTable := `
	CREATE TABLE IF NOT EXISTS SearchHistory (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		totalSearched INT NOT NULL,
		found INT NOT NULL,
		notFound INT NOT NULL,
		lowStockFound INT NOT NULL DEFAULT 0,
		locations INT NOT NULL,
		locationErrors INT NOT NULL DEFAULT 0,
		durationMs BIGINT NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := db.Exec(createSearchHistoryTable); err != nil {
		t.Fatalf("failed to create SearchHistory table: %v", err)
	}
}

// CleanupTestDB empties the test tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	if _, err := db.Exec("DELETE FROM SearchHistory"); err != nil {
		t.Logf("failed to clean table SearchHistory: %v", err)
	}

	db.Close()
}
