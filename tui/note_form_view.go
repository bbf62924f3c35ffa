package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/smscrm/state"
)

func newNoteInput() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "What happened?"
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetWidth(72)
	ta.SetHeight(5)
	return ta
}

func (m Model) renderNoteFormView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("ADD NOTE"))
	s.WriteString("\n")
	if lead, ok := m.store.Lead(m.noteForm.LeadID); ok {
		s.WriteString(mutedStyle.Render("for " + lead.FullName()))
		s.WriteString("\n\n")
	}

	s.WriteString(m.noteInput.View())
	s.WriteString("\n")
	if m.noteForm.Error != "" {
		s.WriteString(errorStyle.Render(m.noteForm.Error) + "\n")
	}
	if m.noteForm.Submitting {
		s.WriteString(m.spinner.View() + " Saving...\n")
	}

	help := []string{
		"Ctrl+S: Save",
		"Esc: Cancel",
	}
	if m.store.Banner() != "" {
		help = append(help, "Ctrl+X: Dismiss error")
	}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	return s.String()
}

func (m Model) handleNoteFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.store.Close()
		m.noteForm = state.NoteForm{}
		m.noteInput.Blur()
		return m, nil
	}

	if m.noteForm.Submitting {
		return m, nil
	}

	if msg.String() == "ctrl+s" {
		m.noteForm.Content = m.noteInput.Value()
		content, ok := m.noteForm.Submit()
		if !ok {
			return m, nil
		}
		sess := m.store.Session()
		return m, tea.Batch(m.addNote(sess, m.noteForm.LeadID, content), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	if m.noteInput.Value() != m.noteForm.Content {
		m.noteForm.Content = m.noteInput.Value()
		m.noteForm.Error = ""
	}
	return m, cmd
}
