// ABOUTME: Import of databases written by the original Flask backend
// ABOUTME: Copies the "lead" and "note" tables into the leads schema, keeping ids and timestamps
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/smscrm/models"
)

// ImportReport counts what an import did (or would do, on a dry run).
type ImportReport struct {
	Leads   int
	Notes   int
	Skipped int // leads whose id already exists in the target
}

// legacyLeadColumns in scan order. Older Flask schemas have a single
// "phone" column instead of phone_1..phone_4.
var legacyLeadColumns = []string{
	"first_name", "last_name", "email", "phone_1", "phone_2", "phone_3", "phone_4",
	"address", "zip", "resort", "mortgaged", "status", "created_at",
}

type legacyLead struct {
	lead  models.Lead
	notes []models.Note
}

// ImportFlaskDatabase copies leads and notes from src into dst. Leads whose
// id already exists in dst are skipped along with their notes.
func ImportFlaskDatabase(ctx context.Context, src, dst *sql.DB, dryRun bool) (ImportReport, error) {
	var report ImportReport

	leads, err := readLegacyLeads(ctx, src)
	if err != nil {
		return report, err
	}
	if err := readLegacyNotes(ctx, src, leads); err != nil {
		return report, err
	}

	tx, err := dst.BeginTx(ctx, nil)
	if err != nil {
		return report, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range sortedIDs(leads) {
		l := leads[id]

		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM leads WHERE id = ?`, id).Scan(&exists)
		if err == nil {
			report.Skipped++
			continue
		}
		if err != sql.ErrNoRows {
			return report, err
		}

		report.Leads++
		report.Notes += len(l.notes)
		if dryRun {
			continue
		}

		created := l.lead.CreatedAt.Time
		_, err = tx.ExecContext(ctx, `
			INSERT INTO leads (id, first_name, last_name, email, phone_1, phone_2, phone_3, phone_4,
				address, zip, resort, mortgaged, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, l.lead.FirstName, l.lead.LastName, l.lead.Email, l.lead.Phone1, l.lead.Phone2, l.lead.Phone3,
			l.lead.Phone4, l.lead.Address, l.lead.Zip, l.lead.Resort, l.lead.Mortgaged, string(l.lead.Status),
			created, created)
		if err != nil {
			return report, fmt.Errorf("insert lead %d: %w", id, err)
		}

		for _, n := range l.notes {
			_, err := tx.ExecContext(ctx, `INSERT INTO notes (lead_id, content, created_at) VALUES (?, ?, ?)`,
				id, n.Content, n.CreatedAt.Time)
			if err != nil {
				return report, fmt.Errorf("insert note for lead %d: %w", id, err)
			}
		}
	}

	if dryRun {
		return report, nil
	}
	return report, tx.Commit()
}

func readLegacyLeads(ctx context.Context, src *sql.DB) (map[int64]*legacyLead, error) {
	cols, err := tableColumns(ctx, src, "lead")
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("source has no lead table")
	}

	exprs := make([]string, len(legacyLeadColumns))
	for i, name := range legacyLeadColumns {
		switch {
		case cols[name]:
			exprs[i] = fmt.Sprintf("COALESCE(CAST(%s AS TEXT), '')", name)
		case name == "phone_1" && cols["phone"]:
			exprs[i] = "COALESCE(CAST(phone AS TEXT), '')"
		default:
			exprs[i] = "''"
		}
	}

	rows, err := src.QueryContext(ctx, `SELECT id, `+strings.Join(exprs, ", ")+` FROM lead ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("read legacy leads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64]*legacyLead)
	for rows.Next() {
		var id int64
		var v [13]string
		if err := rows.Scan(&id, &v[0], &v[1], &v[2], &v[3], &v[4], &v[5], &v[6],
			&v[7], &v[8], &v[9], &v[10], &v[11], &v[12]); err != nil {
			return nil, err
		}

		status := models.Status(strings.ToUpper(strings.TrimSpace(v[11])))
		if !status.Valid() {
			status = models.StatusNew
		}
		created := legacyTime(v[12])

		out[id] = &legacyLead{lead: models.Lead{
			ID: id, FirstName: v[0], LastName: v[1], Email: v[2],
			Phone1: v[3], Phone2: v[4], Phone3: v[5], Phone4: v[6],
			Address: v[7], Zip: v[8], Resort: v[9], Mortgaged: legacyBool(v[10]),
			Status: status, CreatedAt: &created,
		}}
	}
	return out, rows.Err()
}

func readLegacyNotes(ctx context.Context, src *sql.DB, leads map[int64]*legacyLead) error {
	cols, err := tableColumns(ctx, src, "note")
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}

	rows, err := src.QueryContext(ctx, `
		SELECT lead_id, COALESCE(content, ''), COALESCE(CAST(created_at AS TEXT), '')
		FROM note ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("read legacy notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var leadID int64
		var content, created string
		if err := rows.Scan(&leadID, &content, &created); err != nil {
			return err
		}
		l, ok := leads[leadID]
		if !ok || strings.TrimSpace(content) == "" {
			continue
		}
		ts := legacyTime(created)
		l.notes = append(l.notes, models.Note{LeadID: leadID, Content: content, CreatedAt: &ts})
	}
	return rows.Err()
}

func tableColumns(ctx context.Context, database *sql.DB, table string) (map[string]bool, error) {
	rows, err := database.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

func legacyTime(s string) models.Timestamp {
	if ts, err := models.ParseTimestamp(strings.TrimSpace(s)); err == nil {
		return models.Timestamp{Time: ts.UTC()}
	}
	return models.Timestamp{Time: time.Now().UTC()}
}

func legacyBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

func sortedIDs(leads map[int64]*legacyLead) []int64 {
	ids := make([]int64, 0, len(leads))
	for id := range leads {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
