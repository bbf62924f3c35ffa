// ABOUTME: Data models for campaign leads and their notes
// ABOUTME: Defines Lead, Note, LeadFields, LeadPatch and the lenient Timestamp type
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Lead struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email,omitempty"`
	Phone1    string     `json:"phone_1,omitempty"`
	Phone2    string     `json:"phone_2,omitempty"`
	Phone3    string     `json:"phone_3,omitempty"`
	Phone4    string     `json:"phone_4,omitempty"`
	Address   string     `json:"address,omitempty"`
	Zip       string     `json:"zip,omitempty"`
	Resort    string     `json:"resort,omitempty"`
	Mortgaged bool       `json:"mortgaged"`
	Status    Status     `json:"status"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
	Notes     []Note     `json:"notes"`
}

type Note struct {
	ID        int64      `json:"id"`
	LeadID    int64      `json:"lead_id,omitempty"`
	Content   string     `json:"content"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

// LeadFields is the editable field set of a lead: everything except the
// server-owned id, created_at and notes. It doubles as the create draft.
type LeadFields struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone1    string `json:"phone_1"`
	Phone2    string `json:"phone_2"`
	Phone3    string `json:"phone_3"`
	Phone4    string `json:"phone_4"`
	Address   string `json:"address"`
	Zip       string `json:"zip"`
	Resort    string `json:"resort"`
	Mortgaged bool   `json:"mortgaged"`
	Status    Status `json:"status"`
}

// LeadPatch is a partial update. Nil fields are left untouched by the server.
type LeadPatch struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone1    *string `json:"phone_1,omitempty"`
	Phone2    *string `json:"phone_2,omitempty"`
	Phone3    *string `json:"phone_3,omitempty"`
	Phone4    *string `json:"phone_4,omitempty"`
	Address   *string `json:"address,omitempty"`
	Zip       *string `json:"zip,omitempty"`
	Resort    *string `json:"resort,omitempty"`
	Mortgaged *bool   `json:"mortgaged,omitempty"`
	Status    *Status `json:"status,omitempty"`
}

// NewLeadFields returns the defaults used when creating a lead.
func NewLeadFields() LeadFields {
	return LeadFields{Status: StatusNew}
}

// Fields extracts the editable field set of the lead.
func (l Lead) Fields() LeadFields {
	return LeadFields{
		FirstName: l.FirstName,
		LastName:  l.LastName,
		Email:     l.Email,
		Phone1:    l.Phone1,
		Phone2:    l.Phone2,
		Phone3:    l.Phone3,
		Phone4:    l.Phone4,
		Address:   l.Address,
		Zip:       l.Zip,
		Resort:    l.Resort,
		Mortgaged: l.Mortgaged,
		Status:    l.Status,
	}
}

// FullName joins first and last name.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// Phones returns the non-empty phone numbers in slot order.
func (l Lead) Phones() []string {
	var phones []string
	for _, p := range []string{l.Phone1, l.Phone2, l.Phone3, l.Phone4} {
		if strings.TrimSpace(p) != "" {
			phones = append(phones, p)
		}
	}
	return phones
}

// PrimaryPhone is the first non-empty phone, or "".
func (l Lead) PrimaryPhone() string {
	phones := l.Phones()
	if len(phones) == 0 {
		return ""
	}
	return phones[0]
}

// Patch converts the full field set into a patch that sets every field.
func (f LeadFields) Patch() LeadPatch {
	f2 := f
	return LeadPatch{
		FirstName: &f2.FirstName,
		LastName:  &f2.LastName,
		Email:     &f2.Email,
		Phone1:    &f2.Phone1,
		Phone2:    &f2.Phone2,
		Phone3:    &f2.Phone3,
		Phone4:    &f2.Phone4,
		Address:   &f2.Address,
		Zip:       &f2.Zip,
		Resort:    &f2.Resort,
		Mortgaged: &f2.Mortgaged,
		Status:    &f2.Status,
	}
}

// DiffPatch returns a patch setting only the fields of next that differ from f.
func (f LeadFields) DiffPatch(next LeadFields) LeadPatch {
	var p LeadPatch
	diff := func(before, after string) *string {
		if before == after {
			return nil
		}
		v := after
		return &v
	}
	p.FirstName = diff(f.FirstName, next.FirstName)
	p.LastName = diff(f.LastName, next.LastName)
	p.Email = diff(f.Email, next.Email)
	p.Phone1 = diff(f.Phone1, next.Phone1)
	p.Phone2 = diff(f.Phone2, next.Phone2)
	p.Phone3 = diff(f.Phone3, next.Phone3)
	p.Phone4 = diff(f.Phone4, next.Phone4)
	p.Address = diff(f.Address, next.Address)
	p.Zip = diff(f.Zip, next.Zip)
	p.Resort = diff(f.Resort, next.Resort)
	if f.Mortgaged != next.Mortgaged {
		m := next.Mortgaged
		p.Mortgaged = &m
	}
	if f.Status != next.Status {
		s := next.Status
		p.Status = &s
	}
	return p
}

// IsEmpty reports whether the patch sets no field at all.
func (p LeadPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Phone1 == nil && p.Phone2 == nil && p.Phone3 == nil && p.Phone4 == nil &&
		p.Address == nil && p.Zip == nil && p.Resort == nil &&
		p.Mortgaged == nil && p.Status == nil
}

// Apply writes the set fields of the patch onto the lead.
func (p LeadPatch) Apply(l *Lead) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&l.FirstName, p.FirstName)
	setString(&l.LastName, p.LastName)
	setString(&l.Email, p.Email)
	setString(&l.Phone1, p.Phone1)
	setString(&l.Phone2, p.Phone2)
	setString(&l.Phone3, p.Phone3)
	setString(&l.Phone4, p.Phone4)
	setString(&l.Address, p.Address)
	setString(&l.Zip, p.Zip)
	setString(&l.Resort, p.Resort)
	if p.Mortgaged != nil {
		l.Mortgaged = *p.Mortgaged
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
}

// Timestamp is a server timestamp. The backend emits ISO-8601 with or
// without a zone offset and fractional seconds; zoneless values are UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses any layout the backend is known to emit.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
