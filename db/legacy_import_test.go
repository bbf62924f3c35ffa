package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/smscrm/models"
)

// setupFlaskDB builds a database shaped like the one the Flask backend
// created: singular table names and a single phone column.
func setupFlaskDB(t *testing.T) *sql.DB {
	t.Helper()
	src, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	_, err = src.Exec(`
		CREATE TABLE lead (
			id INTEGER PRIMARY KEY,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			email VARCHAR(120) NOT NULL,
			phone VARCHAR(20) NOT NULL,
			status VARCHAR(7) NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		);
		CREATE TABLE note (
			id INTEGER PRIMARY KEY,
			content TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME,
			lead_id INTEGER NOT NULL
		);
		INSERT INTO lead (id, first_name, last_name, email, phone, status, created_at) VALUES
			(3, 'Jason', 'Hemingway', 'jason@example.com', '417-619-1055', 'REPLIED', '2024-03-01 12:00:00.123456'),
			(7, 'Noah', 'Hertlein', 'noah@example.com', '860-934-3187', 'bogus', NULL);
		INSERT INTO note (id, content, created_at, lead_id) VALUES
			(1, 'Texted about the spring promo', '2024-03-02 09:00:00', 3),
			(2, 'Replied, wants a call', '2024-03-03 10:30:00', 3),
			(3, 'orphan', '2024-03-03 10:30:00', 99);
	`)
	require.NoError(t, err)
	return src
}

func TestImportFlaskDatabase(t *testing.T) {
	src := setupFlaskDB(t)
	dst := setupTestDB(t)
	ctx := context.Background()

	report, err := ImportFlaskDatabase(ctx, src, dst, false)
	require.NoError(t, err)
	assert.Equal(t, ImportReport{Leads: 2, Notes: 2}, report)

	repo := NewLeadsRepository(dst)
	jason, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "417-619-1055", jason.Phone1)
	assert.Equal(t, models.StatusReplied, jason.Status)
	assert.Equal(t, 2024, jason.CreatedAt.Year())
	require.Len(t, jason.Notes, 2)
	assert.Equal(t, "Texted about the spring promo", jason.Notes[0].Content)
	assert.Equal(t, 3, jason.Notes[1].CreatedAt.Day())

	noah, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, noah.Status, "unknown statuses become NEW")

	next, err := repo.Create(ctx, sampleFields("Ann", ""))
	require.NoError(t, err)
	assert.Greater(t, next.ID, int64(7))
}

func TestImportFlaskDatabaseDryRunAndRerun(t *testing.T) {
	src := setupFlaskDB(t)
	dst := setupTestDB(t)
	ctx := context.Background()
	repo := NewLeadsRepository(dst)

	report, err := ImportFlaskDatabase(ctx, src, dst, true)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Leads)
	leads, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, leads)

	_, err = ImportFlaskDatabase(ctx, src, dst, false)
	require.NoError(t, err)

	report, err = ImportFlaskDatabase(ctx, src, dst, false)
	require.NoError(t, err)
	assert.Equal(t, ImportReport{Skipped: 2}, report)
}

func TestImportFlaskDatabaseWithoutLeadTable(t *testing.T) {
	empty, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer func() { _ = empty.Close() }()

	_, err = ImportFlaskDatabase(context.Background(), empty, setupTestDB(t), false)
	assert.EqualError(t, err, "source has no lead table")
}
