// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/dispatch/pkg/storage/sqldriver"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT,
	response TEXT,
	agent_name TEXT,
	response_time REAL,
	timestamp TEXT
)`

// SQLiteDriver implements storage.Driver using SQLite
type SQLiteDriver struct {
	*sqldriver.Driver
}

// NewSQLiteDriver creates a new SQLite-backed log store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDriver(dbPath string) (*SQLiteDriver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// ":memory:" databases are per-connection
	db.SetMaxOpenConns(1)

	drv := &sqldriver.Driver{
		DB: db,
		Dialect: sqldriver.Dialect{
			Schema:      schema,
			Placeholder: sqldriver.QuestionPlaceholder,
		},
	}

	if err := drv.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteDriver{Driver: drv}, nil
}
