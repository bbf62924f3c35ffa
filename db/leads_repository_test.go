// ABOUTME: Tests for the leads repository
// ABOUTME: Uses a temp-file SQLite database per test
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

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := OpenDatabase(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func sampleFields(first string, status models.Status) models.LeadFields {
	return models.LeadFields{FirstName: first, LastName: "Lee", Phone1: "555-1234", Status: status}
}

func TestCreateAndGetLead(t *testing.T) {
	repo := NewLeadsRepository(setupTestDB(t))
	ctx := context.Background()

	lead, err := repo.Create(ctx, models.LeadFields{FirstName: "Ann", LastName: "Lee", Phone1: "555-1234", Mortgaged: true})
	require.NoError(t, err)
	assert.NotZero(t, lead.ID)
	assert.Equal(t, models.StatusNew, lead.Status)
	assert.True(t, lead.Mortgaged)
	require.NotNil(t, lead.CreatedAt)
	assert.False(t, lead.CreatedAt.IsZero())
	assert.NotNil(t, lead.Notes)

	got, err := repo.Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)

	_, err = repo.Get(ctx, 9999)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	repo := NewLeadsRepository(setupTestDB(t))
	ctx := context.Background()

	for _, f := range []models.LeadFields{
		sampleFields("Ann", models.StatusNew),
		sampleFields("Bo", models.StatusReplied),
		sampleFields("Cy", models.StatusReplied),
	} {
		_, err := repo.Create(ctx, f)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Ann", all[0].FirstName, "leads come back in id order")

	replied, err := repo.List(ctx, models.StatusReplied)
	require.NoError(t, err)
	assert.Len(t, replied, 2)

	sent, err := repo.List(ctx, models.StatusSent)
	require.NoError(t, err)
	assert.NotNil(t, sent)
	assert.Empty(t, sent)
}

func TestUpdateAppliesPatch(t *testing.T) {
	repo := NewLeadsRepository(setupTestDB(t))
	ctx := context.Background()

	lead, err := repo.Create(ctx, sampleFields("Ann", models.StatusNew))
	require.NoError(t, err)

	booked := models.StatusBooked
	zip := "60601"
	updated, err := repo.Update(ctx, lead.ID, models.LeadPatch{Status: &booked, Zip: &zip})
	require.NoError(t, err)
	assert.Equal(t, models.StatusBooked, updated.Status)
	assert.Equal(t, "60601", updated.Zip)
	assert.Equal(t, "Ann", updated.FirstName)
	assert.Equal(t, lead.CreatedAt.Unix(), updated.CreatedAt.Unix())

	_, err = repo.Update(ctx, 9999, models.LeadPatch{Status: &booked})
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestNotesKeepOrder(t *testing.T) {
	repo := NewLeadsRepository(setupTestDB(t))
	ctx := context.Background()

	lead, err := repo.Create(ctx, sampleFields("Ann", models.StatusNew))
	require.NoError(t, err)
	other, err := repo.Create(ctx, sampleFields("Bo", models.StatusNew))
	require.NoError(t, err)

	for _, content := range []string{"first", "second", "third"} {
		note, err := repo.AddNote(ctx, lead.ID, content)
		require.NoError(t, err)
		assert.Equal(t, lead.ID, note.LeadID)
		assert.NotNil(t, note.CreatedAt)
	}
	_, err = repo.AddNote(ctx, other.ID, "elsewhere")
	require.NoError(t, err)

	got, err := repo.Get(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, got.Notes, 3)
	assert.Equal(t, "first", got.Notes[0].Content)
	assert.Equal(t, "third", got.Notes[2].Content)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all[1].Notes, 1)

	_, err = repo.AddNote(ctx, 9999, "lost")
	assert.ErrorIs(t, err, ErrLeadNotFound)
}
