package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeVariantCoversEveryStatus(t *testing.T) {
	want := map[Status]string{
		StatusNew:     BadgePrimary,
		StatusSent:    BadgeInfo,
		StatusReplied: BadgeWarning,
		StatusBooked:  BadgeSuccess,
	}
	for _, s := range Statuses {
		assert.Equal(t, want[s], BadgeVariant(s), "status %s", s)
	}
	assert.Equal(t, BadgeSecondary, BadgeVariant("ARCHIVED"))
	assert.Equal(t, BadgeSecondary, BadgeVariant(""))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" replied ")
	require.NoError(t, err)
	assert.Equal(t, StatusReplied, s)

	_, err = ParseStatus("lost")
	assert.Error(t, err)
}

func TestStatusCycling(t *testing.T) {
	assert.Equal(t, StatusSent, StatusNew.Next())
	assert.Equal(t, StatusNew, StatusBooked.Next())
	assert.Equal(t, StatusBooked, StatusNew.Prev())
	assert.Equal(t, "Booked", StatusBooked.Label())
}

func sampleLeads() []Lead {
	return []Lead{
		{ID: 1, FirstName: "Cy", LastName: "Ames", Status: StatusNew},
		{ID: 2, FirstName: "Bo", LastName: "Ng", Status: StatusSent},
		{ID: 3, FirstName: "Al", LastName: "Ruiz", Status: StatusNew},
		{ID: 4, FirstName: "Di", LastName: "Fox", Status: StatusReplied},
		{ID: 5, FirstName: "Ed", LastName: "Yu", Status: StatusBooked},
	}
}

func TestFilterLeadsPerStatus(t *testing.T) {
	leads := sampleLeads()

	for _, s := range Statuses {
		got := FilterLeads(leads, Filter(s))
		for _, l := range got {
			assert.Equal(t, s, l.Status)
		}
		count := 0
		for _, l := range leads {
			if l.Status == s {
				count++
			}
		}
		assert.Len(t, got, count, "status %s", s)
	}

	assert.Equal(t, leads, FilterLeads(leads, FilterAll))
}

func TestFilterOptionsStartWithAll(t *testing.T) {
	opts := FilterOptions()
	require.Len(t, opts, 5)
	assert.Equal(t, FilterAll, opts[0].Value)
	assert.Equal(t, "All", opts[0].Label)
	assert.Equal(t, Filter(StatusBooked), opts[4].Value)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseFilter("sent")
	require.NoError(t, err)
	assert.Equal(t, Filter(StatusSent), f)

	_, err = ParseFilter("bogus")
	assert.Error(t, err)
}

func TestSortLeadsIsStable(t *testing.T) {
	leads := sampleLeads()

	byStatus := SortLeads(leads, SortStatus, false)
	ids := make([]int64, len(byStatus))
	for i, l := range byStatus {
		ids[i] = l.ID
	}
	// NEW rows keep their relative order (1 before 3).
	assert.Equal(t, []int64{1, 3, 2, 4, 5}, ids)

	byName := SortLeads(leads, SortName, false)
	assert.Equal(t, "Al Ruiz", byName[0].FullName())

	desc := SortLeads(leads, SortName, true)
	assert.Equal(t, "Ed Yu", desc[0].FullName())

	assert.Equal(t, leads, SortLeads(leads, SortNone, false))
}

func TestSortByCreated(t *testing.T) {
	older := Timestamp{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := Timestamp{Time: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	leads := []Lead{{ID: 1, CreatedAt: &newer}, {ID: 2, CreatedAt: &older}}

	sorted := SortLeads(leads, SortCreated, false)
	assert.Equal(t, int64(2), sorted[0].ID)
	assert.Equal(t, int64(1), leads[0].ID, "input is not mutated")
}
