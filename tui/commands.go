// ABOUTME: Async backend calls for the TUI and the messages they report back with
// ABOUTME: Every completion carries the modal session it was started in
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/models"
	"github.com/harperreed/smscrm/state"
)

// LeadsLoadedMsg is sent when the lead list fetch completes.
type LeadsLoadedMsg struct {
	Leads []models.Lead
	Err   error
}

// LeadCreatedMsg is sent when a create request completes.
type LeadCreatedMsg struct {
	Session state.Session
	Lead    models.Lead
	Err     error
}

// LeadUpdatedMsg is sent when an update request completes.
type LeadUpdatedMsg struct {
	Session state.Session
	Lead    models.Lead
	Err     error
}

// NoteAddedMsg is sent when an add-note request completes.
type NoteAddedMsg struct {
	Session state.Session
	LeadID  int64
	Note    models.Note
	Err     error
}

// The full list is always fetched; the status filter is applied locally.
func (m Model) loadLeads() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		leads, err := svc.ListLeads(ctx, models.FilterAll)
		return LeadsLoadedMsg{Leads: leads, Err: err}
	}
}

func (m Model) createLead(sess state.Session, fields models.LeadFields) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		lead, err := svc.CreateLead(ctx, fields)
		return LeadCreatedMsg{Session: sess, Lead: lead, Err: err}
	}
}

func (m Model) updateLead(sess state.Session, id int64, patch models.LeadPatch) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		lead, err := svc.UpdateLead(ctx, id, patch)
		return LeadUpdatedMsg{Session: sess, Lead: lead, Err: err}
	}
}

func (m Model) addNote(sess state.Session, leadID int64, content string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		note, err := svc.AddNote(ctx, leadID, content)
		return NoteAddedMsg{Session: sess, LeadID: leadID, Note: note, Err: err}
	}
}

func (m Model) handleLeadsLoaded(msg LeadsLoadedMsg) Model {
	if msg.Err != nil {
		m.logFailure(api.OpListLeads, msg.Err)
		m.store.LoadFailed(api.OpListLeads)
		return m
	}
	m.store.Loaded(msg.Leads)
	m.clampSelection()
	return m
}

func (m Model) handleLeadCreated(msg LeadCreatedMsg) Model {
	current := msg.Session == m.store.Session() && m.store.Mode() == state.ModeCreatingLead
	if msg.Err != nil {
		m.logFailure(api.OpCreateLead, msg.Err)
		if current {
			m.leadForm.Finish(false)
			m.store.SubmitFailed(api.OpCreateLead)
		}
		return m
	}

	m.store.LeadCreated(msg.Session, msg.Lead)
	m.clampSelection()
	if current {
		m.leadForm.Finish(true)
		m.store.DismissBanner()
	}
	return m
}

func (m Model) handleLeadUpdated(msg LeadUpdatedMsg) Model {
	current := msg.Session == m.store.Session() && m.store.Mode() == state.ModeEditingLead
	if msg.Err != nil {
		m.logFailure(api.OpUpdateLead, msg.Err)
		if current {
			m.leadForm.Finish(false)
			m.store.SubmitFailed(api.OpUpdateLead)
		}
		return m
	}

	m.store.LeadUpdated(msg.Session, msg.Lead)
	m.clampSelection()
	if current {
		m.leadForm.Finish(true)
		m.store.DismissBanner()
	}
	return m
}

func (m Model) handleNoteAdded(msg NoteAddedMsg) Model {
	current := msg.Session == m.store.Session() && m.store.Mode() == state.ModeAddingNote
	if msg.Err != nil {
		m.logFailure(api.OpAddNote, msg.Err)
		if current {
			m.noteForm.Finish(false)
			m.store.SubmitFailed(api.OpAddNote)
		}
		return m
	}

	m.store.NoteAdded(msg.Session, msg.LeadID, msg.Note)
	m.clampSelection()
	if current {
		m.noteForm.Finish(true)
		m.noteInput.Reset()
		m.store.DismissBanner()
	}
	return m
}

func (m Model) logFailure(op string, err error) {
	m.logger.Error("operation failed", "op", op, "kind", api.KindOf(err), "err", err)
}
