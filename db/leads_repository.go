// ABOUTME: Repository for campaign leads and their notes
// ABOUTME: CRUD over the leads/notes tables with notes loaded in insertion order
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/smscrm/models"
)

var (
	ErrLeadNotFound = errors.New("lead not found")
)

// LeadsRepository provides persistence for leads and notes.
type LeadsRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewLeadsRepository creates a new leads repository.
func NewLeadsRepository(db *sql.DB) *LeadsRepository {
	return &LeadsRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const leadColumns = `id, first_name, last_name, email, phone_1, phone_2, phone_3, phone_4,
	address, zip, resort, mortgaged, status, created_at`

// Create inserts a lead and returns the stored row. An empty status is NEW.
func (r *LeadsRepository) Create(ctx context.Context, f models.LeadFields) (models.Lead, error) {
	if f.Status == "" {
		f.Status = models.StatusNew
	}
	now := r.now()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO leads (first_name, last_name, email, phone_1, phone_2, phone_3, phone_4,
			address, zip, resort, mortgaged, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.FirstName, f.LastName, f.Email, f.Phone1, f.Phone2, f.Phone3, f.Phone4,
		f.Address, f.Zip, f.Resort, f.Mortgaged, string(f.Status), now, now)
	if err != nil {
		return models.Lead{}, fmt.Errorf("insert lead: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Lead{}, err
	}
	return r.Get(ctx, id)
}

// Get loads a lead with its notes.
func (r *LeadsRepository) Get(ctx context.Context, id int64) (models.Lead, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return models.Lead{}, ErrLeadNotFound
	}
	if err != nil {
		return models.Lead{}, err
	}

	notes, err := r.notesFor(ctx, []int64{id})
	if err != nil {
		return models.Lead{}, err
	}
	lead.Notes = notes[id]
	if lead.Notes == nil {
		lead.Notes = []models.Note{}
	}
	return lead, nil
}

// List returns leads in id order, narrowed to status when it is non-empty.
func (r *LeadsRepository) List(ctx context.Context, status models.Status) ([]models.Lead, error) {
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = r.db.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE status = ? ORDER BY id`, string(status))
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY id`)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	leads := []models.Lead{}
	var ids []int64
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
		ids = append(ids, lead.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	notes, err := r.notesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range leads {
		leads[i].Notes = notes[leads[i].ID]
		if leads[i].Notes == nil {
			leads[i].Notes = []models.Note{}
		}
	}
	return leads, nil
}

// Update applies the set fields of patch and returns the stored row.
func (r *LeadsRepository) Update(ctx context.Context, id int64, patch models.LeadPatch) (models.Lead, error) {
	lead, err := r.Get(ctx, id)
	if err != nil {
		return models.Lead{}, err
	}
	patch.Apply(&lead)

	_, err = r.db.ExecContext(ctx, `
		UPDATE leads SET first_name = ?, last_name = ?, email = ?, phone_1 = ?, phone_2 = ?,
			phone_3 = ?, phone_4 = ?, address = ?, zip = ?, resort = ?, mortgaged = ?, status = ?,
			updated_at = ?
		WHERE id = ?
	`, lead.FirstName, lead.LastName, lead.Email, lead.Phone1, lead.Phone2, lead.Phone3, lead.Phone4,
		lead.Address, lead.Zip, lead.Resort, lead.Mortgaged, string(lead.Status), r.now(), id)
	if err != nil {
		return models.Lead{}, fmt.Errorf("update lead %d: %w", id, err)
	}
	return r.Get(ctx, id)
}

// AddNote appends a note to the lead.
func (r *LeadsRepository) AddNote(ctx context.Context, leadID int64, content string) (models.Note, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM leads WHERE id = ?`, leadID).Scan(&exists)
	if err == sql.ErrNoRows {
		return models.Note{}, ErrLeadNotFound
	}
	if err != nil {
		return models.Note{}, err
	}

	now := r.now()
	res, err := r.db.ExecContext(ctx, `INSERT INTO notes (lead_id, content, created_at) VALUES (?, ?, ?)`,
		leadID, content, now)
	if err != nil {
		return models.Note{}, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Note{}, err
	}

	return models.Note{ID: id, LeadID: leadID, Content: content, CreatedAt: &models.Timestamp{Time: now}}, nil
}

// notesFor loads the notes of the given leads keyed by lead id, oldest first.
func (r *LeadsRepository) notesFor(ctx context.Context, ids []int64) (map[int64][]models.Note, error) {
	out := make(map[int64][]models.Note, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, lead_id, content, created_at FROM notes
		WHERE lead_id IN (`+placeholders+`)
		ORDER BY id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var n models.Note
		var created time.Time
		if err := rows.Scan(&n.ID, &n.LeadID, &n.Content, &created); err != nil {
			return nil, err
		}
		n.CreatedAt = &models.Timestamp{Time: created.UTC()}
		out[n.LeadID] = append(out[n.LeadID], n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (models.Lead, error) {
	var l models.Lead
	var status string
	var created time.Time
	err := row.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone1, &l.Phone2, &l.Phone3, &l.Phone4,
		&l.Address, &l.Zip, &l.Resort, &l.Mortgaged, &status, &created)
	if err != nil {
		return models.Lead{}, err
	}
	l.Status = models.Status(status)
	l.CreatedAt = &models.Timestamp{Time: created.UTC()}
	return l, nil
}
