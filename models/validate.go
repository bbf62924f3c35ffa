// ABOUTME: Field validation predicates for leads and notes
// ABOUTME: Shared by the forms (pre-submit), the API client and the dev backend
package models

import (
	"regexp"
	"sort"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^[0-9+\-(). ]{7,20}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipPattern   = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
)

// Field names used as FieldErrors keys. They match the JSON field names.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldPhone1    = "phone_1"
	FieldPhone2    = "phone_2"
	FieldPhone3    = "phone_3"
	FieldPhone4    = "phone_4"
	FieldZip       = "zip"
	FieldStatus    = "status"
	FieldContent   = "content"
)

// ValidPhone reports whether p is 7–20 digits and phone punctuation.
func ValidPhone(p string) bool {
	return phonePattern.MatchString(p)
}

// ValidEmail reports whether e has a local@domain.tld shape.
func ValidEmail(e string) bool {
	return emailPattern.MatchString(e)
}

// ValidZip reports whether z is a 5-digit or ZIP+4 code.
func ValidZip(z string) bool {
	return zipPattern.MatchString(z)
}

// FieldErrors maps a field name to its user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// Err returns nil when there are no errors, so callers can return it directly.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ValidateLead checks a complete field set before create or full update.
func ValidateLead(f LeadFields) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(f.FirstName) == "" {
		errs[FieldFirstName] = "First name is required"
	}
	if strings.TrimSpace(f.LastName) == "" {
		errs[FieldLastName] = "Last name is required"
	}

	phones := map[string]string{
		FieldPhone1: f.Phone1,
		FieldPhone2: f.Phone2,
		FieldPhone3: f.Phone3,
		FieldPhone4: f.Phone4,
	}
	anyPhone := false
	for field, p := range phones {
		if strings.TrimSpace(p) == "" {
			continue
		}
		anyPhone = true
		if !ValidPhone(strings.TrimSpace(p)) {
			errs[field] = "Please enter a valid phone number"
		}
	}
	if !anyPhone {
		errs[FieldPhone1] = "At least one phone number is required"
	}

	validateOptional(errs, f.Email, f.Zip)

	if f.Status != "" && !f.Status.Valid() {
		errs[FieldStatus] = "Status must be NEW, SENT, REPLIED or BOOKED"
	}

	return errs
}

// ValidatePatch checks only the fields a patch sets. Required fields may not
// be cleared.
func ValidatePatch(p LeadPatch) FieldErrors {
	errs := FieldErrors{}

	if p.FirstName != nil && strings.TrimSpace(*p.FirstName) == "" {
		errs[FieldFirstName] = "First name is required"
	}
	if p.LastName != nil && strings.TrimSpace(*p.LastName) == "" {
		errs[FieldLastName] = "Last name is required"
	}

	phones := []struct {
		field string
		value *string
	}{
		{FieldPhone1, p.Phone1},
		{FieldPhone2, p.Phone2},
		{FieldPhone3, p.Phone3},
		{FieldPhone4, p.Phone4},
	}
	setCount, emptyCount := 0, 0
	for _, ph := range phones {
		if ph.value == nil {
			continue
		}
		setCount++
		v := strings.TrimSpace(*ph.value)
		if v == "" {
			emptyCount++
			continue
		}
		if !ValidPhone(v) {
			errs[ph.field] = "Please enter a valid phone number"
		}
	}
	if setCount == len(phones) && emptyCount == len(phones) {
		errs[FieldPhone1] = "At least one phone number is required"
	}

	var email, zip string
	if p.Email != nil {
		email = *p.Email
	}
	if p.Zip != nil {
		zip = *p.Zip
	}
	validateOptional(errs, email, zip)

	if p.Status != nil && !p.Status.Valid() {
		errs[FieldStatus] = "Status must be NEW, SENT, REPLIED or BOOKED"
	}

	return errs
}

func validateOptional(errs FieldErrors, email, zip string) {
	if e := strings.TrimSpace(email); e != "" && !ValidEmail(e) {
		errs[FieldEmail] = "Please enter a valid email address"
	}
	if z := strings.TrimSpace(zip); z != "" && !ValidZip(z) {
		errs[FieldZip] = "Please enter a 5-digit ZIP or ZIP+4"
	}
}

// ValidateNote checks note content is not blank.
func ValidateNote(content string) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(content) == "" {
		errs[FieldContent] = "Note content is required"
	}
	return errs
}
