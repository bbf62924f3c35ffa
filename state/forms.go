// ABOUTME: Controlled state for the lead and note forms
// ABOUTME: Runs validation before submit and tracks the submitting/finished lifecycle
package state

import (
	"strings"

	"github.com/harperreed/smscrm/models"
)

// LeadForm mirrors every editable lead field plus validation state.
type LeadForm struct {
	Fields     models.LeadFields
	Errors     models.FieldErrors
	Submitting bool

	// LeadID is the lead being edited, 0 when creating.
	LeadID int64
}

// NewLeadForm returns a blank create form (status NEW).
func NewLeadForm() LeadForm {
	return LeadForm{Fields: models.NewLeadFields(), Errors: models.FieldErrors{}}
}

// EditLeadForm seeds the form from an existing lead.
func EditLeadForm(lead models.Lead) LeadForm {
	fields := lead.Fields()
	if fields.Status == "" {
		fields.Status = models.StatusNew
	}
	return LeadForm{Fields: fields, Errors: models.FieldErrors{}, LeadID: lead.ID}
}

func (f *LeadForm) Editing() bool { return f.LeadID != 0 }

// ClearError drops the error for a field the user is editing.
func (f *LeadForm) ClearError(field string) {
	delete(f.Errors, field)
}

// Submit validates the fields. On success it enters the submitting state
// and returns the trimmed field set for the caller to send. On failure the
// field errors are recorded and nothing should be sent.
func (f *LeadForm) Submit() (models.LeadFields, bool) {
	if f.Submitting {
		return models.LeadFields{}, false
	}

	fields := trimFields(f.Fields)
	f.Errors = models.ValidateLead(fields)
	if len(f.Errors) > 0 {
		return models.LeadFields{}, false
	}

	f.Submitting = true
	return fields, true
}

// Finish ends submission. Success resets the form; failure keeps the
// user's input for a retry.
func (f *LeadForm) Finish(ok bool) {
	f.Submitting = false
	if ok {
		*f = NewLeadForm()
	}
}

func trimFields(f models.LeadFields) models.LeadFields {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone1 = strings.TrimSpace(f.Phone1)
	f.Phone2 = strings.TrimSpace(f.Phone2)
	f.Phone3 = strings.TrimSpace(f.Phone3)
	f.Phone4 = strings.TrimSpace(f.Phone4)
	f.Address = strings.TrimSpace(f.Address)
	f.Zip = strings.TrimSpace(f.Zip)
	f.Resort = strings.TrimSpace(f.Resort)
	if f.Status == "" {
		f.Status = models.StatusNew
	}
	return f
}

// NoteForm holds a single note's content.
type NoteForm struct {
	Content    string
	Error      string
	Submitting bool
	LeadID     int64
}

// NewNoteForm returns an empty note form for the lead.
func NewNoteForm(leadID int64) NoteForm {
	return NoteForm{LeadID: leadID}
}

// Submit rejects blank content; otherwise it enters the submitting state and
// returns the trimmed content.
func (f *NoteForm) Submit() (string, bool) {
	if f.Submitting {
		return "", false
	}
	if errs := models.ValidateNote(f.Content); len(errs) > 0 {
		f.Error = errs[models.FieldContent]
		return "", false
	}
	f.Error = ""
	f.Submitting = true
	return strings.TrimSpace(f.Content), true
}

// Finish ends submission; success clears the content.
func (f *NoteForm) Finish(ok bool) {
	f.Submitting = false
	if ok {
		f.Content = ""
		f.Error = ""
	}
}
