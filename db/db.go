// ABOUTME: SQLite connection for the reference backend and the Flask importer
// ABOUTME: Creates the parent directory, applies connection pragmas and the leads schema
package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// busyTimeoutMS covers the importer and the devserver touching one file.
const busyTimeoutMS = 5000

// dsn builds a go-sqlite3 connection string with WAL journaling, enforced
// foreign keys and a busy timeout.
func dsn(path string) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", fmt.Sprint(busyTimeoutMS))
	return path + "?" + params.Encode()
}

// OpenDatabase opens (creating if needed) the leads database at path and
// makes sure the schema exists.
func OpenDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	database, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, err
	}
	// One writer at a time; a second connection would see SQLITE_BUSY.
	database.SetMaxOpenConns(1)

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := InitSchema(database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return database, nil
}
