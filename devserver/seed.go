package devserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/smscrm/db"
	"github.com/harperreed/smscrm/models"
)

// SampleLeads are inserted by Seed.
var SampleLeads = []models.LeadFields{
	{FirstName: "Jason", LastName: "Hemingway", Email: "jason@example.com", Phone1: "417-619-1055", Status: models.StatusNew},
	{FirstName: "Noah", LastName: "Hertlein", Email: "noah@example.com", Phone1: "860-934-3187", Status: models.StatusNew},
}

// Seed inserts the sample leads, skipping any whose name and email already
// exist. It returns how many were created.
func Seed(ctx context.Context, repo *db.LeadsRepository) (int, error) {
	existing, err := repo.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list leads: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, l := range existing {
		seen[seedKey(l.FirstName, l.LastName, l.Email)] = true
	}

	created := 0
	for _, f := range SampleLeads {
		if seen[seedKey(f.FirstName, f.LastName, f.Email)] {
			continue
		}
		if _, err := repo.Create(ctx, f); err != nil {
			return created, fmt.Errorf("failed to create %s %s: %w", f.FirstName, f.LastName, err)
		}
		created++
	}
	return created, nil
}

func seedKey(first, last, email string) string {
	return strings.ToLower(first + "\x00" + last + "\x00" + email)
}
