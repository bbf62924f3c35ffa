// ABOUTME: Database schema definitions
// ABOUTME: Creates the leads and notes tables used by the reference backend
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	phone_1 TEXT NOT NULL DEFAULT '',
	phone_2 TEXT NOT NULL DEFAULT '',
	phone_3 TEXT NOT NULL DEFAULT '',
	phone_4 TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	zip TEXT NOT NULL DEFAULT '',
	resort TEXT NOT NULL DEFAULT '',
	mortgaged INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'NEW' CHECK (status IN ('NEW', 'SENT', 'REPLIED', 'BOOKED')),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);

CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	lead_id INTEGER NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (lead_id) REFERENCES leads(id)
);

CREATE INDEX IF NOT EXISTS idx_notes_lead_id ON notes(lead_id);
`

// InitSchema creates all tables and indexes if they don't exist.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
