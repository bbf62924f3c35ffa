// ABOUTME: Tests for the lead browser and modal flows
// ABOUTME: Drives Update with key and completion messages against a fake backend
package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/models"
	"github.com/harperreed/smscrm/state"
)

type fakeService struct {
	leads   []models.Lead
	listErr error

	created []models.LeadFields
	patches map[int64]models.LeadPatch
	notes   map[int64][]string
}

func newFakeService(leads ...models.Lead) *fakeService {
	return &fakeService{leads: leads, patches: map[int64]models.LeadPatch{}, notes: map[int64][]string{}}
}

func (f *fakeService) ListLeads(ctx context.Context, filter models.Filter) ([]models.Lead, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return models.FilterLeads(f.leads, filter), nil
}

func (f *fakeService) CreateLead(ctx context.Context, draft models.LeadFields) (models.Lead, error) {
	f.created = append(f.created, draft)
	return models.Lead{ID: int64(100 + len(f.created)), FirstName: draft.FirstName, LastName: draft.LastName,
		Phone1: draft.Phone1, Status: draft.Status}, nil
}

func (f *fakeService) UpdateLead(ctx context.Context, id int64, patch models.LeadPatch) (models.Lead, error) {
	f.patches[id] = patch
	for _, l := range f.leads {
		if l.ID == id {
			patch.Apply(&l)
			return l, nil
		}
	}
	return models.Lead{}, &api.Error{Op: api.OpUpdateLead, Kind: api.KindNotFound, Status: 404, Message: "Lead not found"}
}

func (f *fakeService) AddNote(ctx context.Context, leadID int64, content string) (models.Note, error) {
	f.notes[leadID] = append(f.notes[leadID], content)
	return models.Note{ID: int64(len(f.notes[leadID])), LeadID: leadID, Content: content}, nil
}

func sampleLeads() []models.Lead {
	created := models.Timestamp{Time: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	return []models.Lead{
		{ID: 1, FirstName: "Ann", LastName: "Lee", Phone1: "555-1234", Status: models.StatusNew, CreatedAt: &created},
		{ID: 2, FirstName: "Bo", LastName: "Ng", Phone1: "555-5678", Status: models.StatusReplied,
			Notes: []models.Note{{ID: 1, Content: "Asked about pricing"}}},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = update(t, m, keyMsg(string(r)))
	}
	return m
}

// run executes a command and returns its message, skipping batch wrappers.
func run(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			if c == nil {
				continue
			}
			switch inner := c().(type) {
			case LeadsLoadedMsg, LeadCreatedMsg, LeadUpdatedMsg, NoteAddedMsg:
				out = append(out, inner)
			}
		}
		return out
	}
	return []tea.Msg{msg}
}

func loadedModel(t *testing.T, svc *fakeService) Model {
	t.Helper()
	m := NewModel(svc)
	assert.True(t, m.Store().Loading())
	m, _ = update(t, m, m.loadLeads()())
	require.False(t, m.Store().Loading())
	return m
}

func TestInitialLoad(t *testing.T) {
	m := loadedModel(t, newFakeService(sampleLeads()...))
	assert.Len(t, m.Store().Visible(), 2)

	view := m.View()
	assert.Contains(t, view, "Ann Lee")
	assert.Contains(t, view, "555-1234")
	assert.Contains(t, view, "Mar 1, 2024")
	assert.Contains(t, view, "1 note")
	assert.Contains(t, view, "no notes")
}

func TestInitialLoadFailureShowsBanner(t *testing.T) {
	svc := newFakeService()
	svc.listErr = errors.New("connection refused")
	m := loadedModel(t, svc)

	assert.Contains(t, m.View(), "Failed to load leads. Please try again.")

	m, _ = update(t, m, keyMsg("x"))
	assert.NotContains(t, m.View(), "Failed to load leads")
}

func TestFilterKeys(t *testing.T) {
	m := loadedModel(t, newFakeService(sampleLeads()...))

	m, _ = update(t, m, keyMsg("3"))
	assert.Equal(t, models.Filter(models.StatusReplied), m.Store().Filter())
	assert.Len(t, m.Store().Visible(), 1)
	assert.NotContains(t, m.View(), "Ann Lee")

	m, _ = update(t, m, keyMsg("2"))
	assert.Contains(t, m.View(), "No leads found.")

	m, _ = update(t, m, keyMsg("tab"))
	assert.Equal(t, models.Filter(models.StatusReplied), m.Store().Filter())

	m, _ = update(t, m, keyMsg("0"))
	assert.Equal(t, models.FilterAll, m.Store().Filter())
}

func TestExpandShowsNotesAndTelLink(t *testing.T) {
	m := loadedModel(t, newFakeService(sampleLeads()...))
	m, _ = update(t, m, keyMsg("j"))
	m, _ = update(t, m, keyMsg("enter"))

	view := m.View()
	assert.Contains(t, view, "Asked about pricing")
	assert.Contains(t, view, "tel:555-5678")
}

func TestCreateLeadFlow(t *testing.T) {
	svc := newFakeService(sampleLeads()...)
	m := loadedModel(t, svc)

	m, _ = update(t, m, keyMsg("n"))
	assert.Equal(t, state.ModeCreatingLead, m.Store().Mode())
	assert.Contains(t, m.View(), "NEW LEAD")

	// Missing phone blocks the submit.
	m = typeText(t, m, "Ann")
	m, _ = update(t, m, keyMsg("tab"))
	m = typeText(t, m, "Lee")
	m, cmd := update(t, m, keyMsg("enter"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "At least one phone number is required")
	assert.Equal(t, 3, m.focusIndex, "focus jumps to the phone field")
	assert.Empty(t, svc.created)

	m = typeText(t, m, "555-1234")
	assert.NotContains(t, m.View(), "At least one phone number is required")

	m, cmd = update(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.True(t, m.leadForm.Submitting)

	for _, msg := range run(t, cmd) {
		m, _ = update(t, m, msg)
	}
	require.Len(t, svc.created, 1)
	assert.Equal(t, models.StatusNew, svc.created[0].Status)
	assert.Equal(t, state.ModeBrowsing, m.Store().Mode())
	assert.Len(t, m.Store().Leads(), 3)
	assert.Contains(t, m.View(), "Ann Lee")
}

func TestCreateFailureKeepsModalOpen(t *testing.T) {
	m := loadedModel(t, newFakeService(sampleLeads()...))
	m, _ = update(t, m, keyMsg("n"))
	m.leadForm.Submitting = true

	m, _ = update(t, m, LeadCreatedMsg{Session: m.Store().Session(), Err: errors.New("boom")})
	assert.Equal(t, state.ModeCreatingLead, m.Store().Mode())
	assert.False(t, m.leadForm.Submitting)
	assert.Contains(t, m.View(), "Failed to create lead. Please try again.")
	assert.Len(t, m.Store().Leads(), 2)
}

func TestBannerDismissKeepsLeadFormInput(t *testing.T) {
	m := loadedModel(t, newFakeService(sampleLeads()...))
	m, _ = update(t, m, keyMsg("n"))
	m = typeText(t, m, "Ann")
	m.leadForm.Submitting = true

	m, _ = update(t, m, LeadCreatedMsg{Session: m.Store().Session(), Err: errors.New("boom")})
	view := m.View()
	assert.Contains(t, view, "Failed to create lead. Please try again.  (ctrl+x to dismiss)")
	assert.Contains(t, view, "Ctrl+X: Dismiss error")

	m, _ = update(t, m, keyMsg("ctrl+x"))
	assert.Empty(t, m.Store().Banner())
	assert.Equal(t, state.ModeCreatingLead, m.Store().Mode())
	assert.Equal(t, "Ann", m.leadForm.Fields.FirstName)
	assert.Equal(t, "Ann", m.formInputs[0].Value())
	assert.NotContains(t, m.View(), "Ctrl+X: Dismiss error")

	// Printable keys still go to the focused field.
	m = typeText(t, m, "x")
	assert.Equal(t, "Annx", m.leadForm.Fields.FirstName)
}

func TestBannerDismissKeepsNoteInput(t *testing.T) {
	m := loadedModel(t, newFakeService(sampleLeads()...))
	m, _ = update(t, m, keyMsg("a"))
	m = typeText(t, m, "Call back")
	m.noteForm.Submitting = true

	m, _ = update(t, m, NoteAddedMsg{Session: m.Store().Session(), LeadID: 1, Err: errors.New("boom")})
	assert.Contains(t, m.View(), "Failed to add note. Please try again.")

	m, _ = update(t, m, keyMsg("ctrl+x"))
	assert.Empty(t, m.Store().Banner())
	assert.Equal(t, state.ModeAddingNote, m.Store().Mode())
	assert.Equal(t, "Call back", m.noteInput.Value())
}

func TestUpdateMovingSelectedLeadOutOfFilterClampsSelection(t *testing.T) {
	leads := append(sampleLeads(), models.Lead{ID: 3, FirstName: "Cy", LastName: "Ko", Phone1: "555-0000", Status: models.StatusNew})
	m := loadedModel(t, newFakeService(leads...))

	m, _ = update(t, m, keyMsg("1"))
	require.Len(t, m.Store().Visible(), 2)
	m, _ = update(t, m, keyMsg("j"))
	require.Equal(t, 1, m.selectedRow)
	moved := m.Store().Visible()[1]
	moved.Status = models.StatusSent

	m, _ = update(t, m, LeadUpdatedMsg{Session: m.Store().Session(), Lead: moved})
	require.Len(t, m.Store().Visible(), 1)
	assert.Equal(t, 0, m.selectedRow)
	_, ok := m.selectedLead()
	assert.True(t, ok)
}

func TestEditLeadSendsOnlyChanges(t *testing.T) {
	svc := newFakeService(sampleLeads()...)
	m := loadedModel(t, svc)

	m, _ = update(t, m, keyMsg("e"))
	require.Equal(t, state.ModeEditingLead, m.Store().Mode())
	assert.Equal(t, "Ann", m.formInputs[0].Value())

	// Move to the status control and advance NEW → SENT.
	for m.focusIndex != statusIndex {
		m, _ = update(t, m, keyMsg("tab"))
	}
	m, _ = update(t, m, keyMsg(" "))
	assert.Equal(t, models.StatusSent, m.leadForm.Fields.Status)

	m, cmd := update(t, m, keyMsg("enter"))
	for _, msg := range run(t, cmd) {
		m, _ = update(t, m, msg)
	}

	patch := svc.patches[1]
	require.NotNil(t, patch.Status)
	assert.Equal(t, models.StatusSent, *patch.Status)
	assert.Nil(t, patch.FirstName)

	lead, _ := m.Store().Lead(1)
	assert.Equal(t, models.StatusSent, lead.Status)
	assert.Equal(t, state.ModeBrowsing, m.Store().Mode())
}

func TestEditWithoutChangesCloses(t *testing.T) {
	svc := newFakeService(sampleLeads()...)
	m := loadedModel(t, svc)
	m, _ = update(t, m, keyMsg("e"))
	m, cmd := update(t, m, keyMsg("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, state.ModeBrowsing, m.Store().Mode())
	assert.Empty(t, svc.patches)
}

func TestAddNoteFlow(t *testing.T) {
	svc := newFakeService(sampleLeads()...)
	m := loadedModel(t, svc)
	m, _ = update(t, m, keyMsg("j"))
	m, _ = update(t, m, keyMsg("a"))
	require.Equal(t, state.ModeAddingNote, m.Store().Mode())

	m, cmd := update(t, m, keyMsg("ctrl+s"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Note content is required")

	m = typeText(t, m, "Booked a tour")
	m, cmd = update(t, m, keyMsg("ctrl+s"))
	for _, msg := range run(t, cmd) {
		m, _ = update(t, m, msg)
	}

	assert.Equal(t, []string{"Booked a tour"}, svc.notes[2])
	lead, _ := m.Store().Lead(2)
	require.Len(t, lead.Notes, 2)
	assert.Equal(t, "Booked a tour", lead.Notes[1].Content)
	assert.Equal(t, state.ModeBrowsing, m.Store().Mode())
}

func TestCancelReturnsToBrowsing(t *testing.T) {
	m := loadedModel(t, newFakeService(sampleLeads()...))
	m, _ = update(t, m, keyMsg("a"))
	m, _ = update(t, m, keyMsg("esc"))
	assert.Equal(t, state.ModeBrowsing, m.Store().Mode())
}

func TestLateCompletionDoesNotCloseNewModal(t *testing.T) {
	m := loadedModel(t, newFakeService(sampleLeads()...))
	m, _ = update(t, m, keyMsg("n"))
	stale := m.Store().Session()
	m, _ = update(t, m, keyMsg("esc"))
	m, _ = update(t, m, keyMsg("a"))

	m, _ = update(t, m, LeadCreatedMsg{Session: stale, Lead: models.Lead{ID: 50, FirstName: "Late", LastName: "Lead", Status: models.StatusNew}})
	assert.Equal(t, state.ModeAddingNote, m.Store().Mode())
	_, ok := m.Store().Lead(50)
	assert.True(t, ok)
}

func TestSortKeyCycles(t *testing.T) {
	m := loadedModel(t, newFakeService(sampleLeads()...))
	m, _ = update(t, m, keyMsg("s"))
	key, _ := m.Store().Sort()
	assert.Equal(t, models.SortName, key)
	assert.True(t, strings.Contains(m.View(), "NAME ↑"))

	m, _ = update(t, m, keyMsg("S"))
	_, desc := m.Store().Sort()
	assert.True(t, desc)
	assert.Equal(t, "Bo", m.Store().Visible()[0].FirstName)
}

func TestBadgeFallback(t *testing.T) {
	assert.Contains(t, renderBadge("ARCHIVED"), "ARCHIVED")
	assert.Equal(t, "no notes", notesLabel(0))
	assert.Equal(t, "3 notes", notesLabel(3))
}
