package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validFields() LeadFields {
	return LeadFields{
		FirstName: "Ann",
		LastName:  "Lee",
		Phone1:    "555-1234",
		Status:    StatusNew,
	}
}

func TestValidateLeadAcceptsMinimalDraft(t *testing.T) {
	assert.Empty(t, ValidateLead(validFields()))
	assert.NoError(t, ValidateLead(validFields()).Err())
}

func TestValidateLeadRejections(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*LeadFields)
		field string
	}{
		{"missing first name", func(f *LeadFields) { f.FirstName = "  " }, FieldFirstName},
		{"missing last name", func(f *LeadFields) { f.LastName = "" }, FieldLastName},
		{"no phones", func(f *LeadFields) { f.Phone1 = "" }, FieldPhone1},
		{"phone too short", func(f *LeadFields) { f.Phone1 = "555" }, FieldPhone1},
		{"phone with letters", func(f *LeadFields) { f.Phone1 = "555-CALL-NOW" }, FieldPhone1},
		{"bad secondary phone", func(f *LeadFields) { f.Phone3 = "12" }, FieldPhone3},
		{"phone too long", func(f *LeadFields) { f.Phone1 = "123456789012345678901" }, FieldPhone1},
		{"email without at", func(f *LeadFields) { f.Email = "ann.example.com" }, FieldEmail},
		{"email without domain dot", func(f *LeadFields) { f.Email = "ann@example" }, FieldEmail},
		{"zip four digits", func(f *LeadFields) { f.Zip = "1234" }, FieldZip},
		{"zip bad plus four", func(f *LeadFields) { f.Zip = "12345-12" }, FieldZip},
		{"unknown status", func(f *LeadFields) { f.Status = "LOST" }, FieldStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFields()
			tt.edit(&f)
			errs := ValidateLead(f)
			assert.Contains(t, errs, tt.field)
			assert.Error(t, errs.Err())
		})
	}
}

func TestValidateLeadAcceptsOptionalFormats(t *testing.T) {
	f := validFields()
	f.Phone1 = ""
	f.Phone2 = "+1 (555) 123-4567"
	f.Email = "ann@example.com"
	f.Zip = "12345-6789"
	assert.Empty(t, ValidateLead(f))

	f.Zip = "12345"
	assert.Empty(t, ValidateLead(f))
}

func TestValidatePatchOnlyChecksSetFields(t *testing.T) {
	booked := StatusBooked
	assert.Empty(t, ValidatePatch(LeadPatch{Status: &booked}))

	blank := ""
	errs := ValidatePatch(LeadPatch{FirstName: &blank})
	assert.Contains(t, errs, FieldFirstName)

	bad := "nope"
	errs = ValidatePatch(LeadPatch{Zip: &bad, Email: &bad})
	assert.Contains(t, errs, FieldZip)
	assert.Contains(t, errs, FieldEmail)

	f := validFields()
	f.Phone1 = ""
	errs = ValidatePatch(f.Patch())
	assert.Contains(t, errs, FieldPhone1, "full patch clearing every phone is rejected")
}

func TestValidateNote(t *testing.T) {
	assert.Contains(t, ValidateNote(""), FieldContent)
	assert.Contains(t, ValidateNote(" \n\t "), FieldContent)
	assert.Empty(t, ValidateNote("Called, left voicemail"))
}

func TestFieldErrorsMessageIsSorted(t *testing.T) {
	errs := FieldErrors{"zip": "bad zip", "email": "bad email"}
	assert.Equal(t, "email: bad email; zip: bad zip", errs.Error())
}
