package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/smscrm/models"
	"github.com/harperreed/smscrm/state"
)

type formField struct {
	key   string
	label string
	limit int
}

var leadFormFields = []formField{
	{models.FieldFirstName, "First name", 50},
	{models.FieldLastName, "Last name", 50},
	{models.FieldEmail, "Email", 100},
	{models.FieldPhone1, "Phone 1", 20},
	{models.FieldPhone2, "Phone 2", 20},
	{models.FieldPhone3, "Phone 3", 20},
	{models.FieldPhone4, "Phone 4", 20},
	{"address", "Address", 200},
	{models.FieldZip, "ZIP", 10},
	{"resort", "Resort", 100},
}

// The two non-text controls follow the text inputs in focus order.
var (
	mortgagedIndex = len(leadFormFields)
	statusIndex    = len(leadFormFields) + 1
	leadFormSlots  = len(leadFormFields) + 2
)

var formLabelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("252")).
	Width(12)

func fieldRef(f *models.LeadFields, key string) *string {
	switch key {
	case models.FieldFirstName:
		return &f.FirstName
	case models.FieldLastName:
		return &f.LastName
	case models.FieldEmail:
		return &f.Email
	case models.FieldPhone1:
		return &f.Phone1
	case models.FieldPhone2:
		return &f.Phone2
	case models.FieldPhone3:
		return &f.Phone3
	case models.FieldPhone4:
		return &f.Phone4
	case "address":
		return &f.Address
	case models.FieldZip:
		return &f.Zip
	case "resort":
		return &f.Resort
	}
	return nil
}

func (m *Model) initFormInputs() {
	inputs := make([]textinput.Model, len(leadFormFields))
	for i, field := range leadFormFields {
		inputs[i] = textinput.New()
		inputs[i].Prompt = ""
		inputs[i].Placeholder = field.label
		inputs[i].CharLimit = field.limit
		inputs[i].Width = 40
		inputs[i].SetValue(*fieldRef(&m.leadForm.Fields, field.key))
	}
	m.formInputs = inputs
	m.focusIndex = 0
	m.updateFormFocus()
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m Model) renderLeadFormView() string {
	var s strings.Builder

	// Title
	if m.leadForm.Editing() {
		s.WriteString(titleStyle.Render("EDIT LEAD"))
	} else {
		s.WriteString(titleStyle.Render("NEW LEAD"))
	}
	s.WriteString("\n\n")

	// Form fields
	for i, field := range leadFormFields {
		s.WriteString(m.focusMarker(i))
		s.WriteString(formLabelStyle.Render(field.label))
		s.WriteString(m.formInputs[i].View())
		s.WriteString("\n")
		if msg, ok := m.leadForm.Errors[field.key]; ok {
			s.WriteString("  " + errorStyle.Render(msg) + "\n")
		}
	}

	check := "[ ]"
	if m.leadForm.Fields.Mortgaged {
		check = "[x]"
	}
	s.WriteString(m.focusMarker(mortgagedIndex) + formLabelStyle.Render("Mortgaged") + check + "\n")
	s.WriteString(m.focusMarker(statusIndex) + formLabelStyle.Render("Status") +
		"◂ " + renderBadge(m.leadForm.Fields.Status) + " ▸\n")
	if msg, ok := m.leadForm.Errors[models.FieldStatus]; ok {
		s.WriteString("  " + errorStyle.Render(msg) + "\n")
	}

	s.WriteString("\n")
	if m.leadForm.Submitting {
		s.WriteString(m.spinner.View() + " Saving...\n")
	}

	// Help
	s.WriteString(m.renderLeadFormHelp())

	return s.String()
}

func (m Model) focusMarker(i int) string {
	if i == m.focusIndex {
		return "> "
	}
	return "  "
}

func (m Model) renderLeadFormHelp() string {
	help := []string{
		"Tab: Next field",
		"Space: Toggle",
		"←/→: Status",
		"Enter: Save",
		"Esc: Cancel",
	}
	if m.store.Banner() != "" {
		help = append(help, "Ctrl+X: Dismiss error")
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleLeadFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.store.Close()
		m.leadForm = state.LeadForm{}
		return m, nil
	}

	// Inputs are disabled while a submit is in flight.
	if m.leadForm.Submitting {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % leadFormSlots
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex - 1 + leadFormSlots) % leadFormSlots
		m.updateFormFocus()
		return m, nil
	case "enter", "ctrl+s":
		return m.submitLeadForm()
	}

	switch m.focusIndex {
	case mortgagedIndex:
		if k := msg.String(); k == " " || k == "left" || k == "right" {
			m.leadForm.Fields.Mortgaged = !m.leadForm.Fields.Mortgaged
		}
		return m, nil
	case statusIndex:
		switch msg.String() {
		case "left", "h":
			m.leadForm.Fields.Status = m.leadForm.Fields.Status.Prev()
			m.leadForm.ClearError(models.FieldStatus)
		case "right", "l", " ":
			m.leadForm.Fields.Status = m.leadForm.Fields.Status.Next()
			m.leadForm.ClearError(models.FieldStatus)
		}
		return m, nil
	}

	// Update current input
	var cmd tea.Cmd
	field := leadFormFields[m.focusIndex]
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	if ref := fieldRef(&m.leadForm.Fields, field.key); *ref != m.formInputs[m.focusIndex].Value() {
		*ref = m.formInputs[m.focusIndex].Value()
		m.leadForm.ClearError(field.key)
	}
	return m, cmd
}

func (m Model) submitLeadForm() (tea.Model, tea.Cmd) {
	fields, ok := m.leadForm.Submit()
	if !ok {
		m.focusFirstError()
		return m, nil
	}

	sess := m.store.Session()
	if !m.leadForm.Editing() {
		return m, tea.Batch(m.createLead(sess, fields), m.spinner.Tick)
	}

	patch := m.original.DiffPatch(fields)
	if patch.IsEmpty() {
		m.leadForm.Finish(true)
		m.store.Close()
		return m, nil
	}
	return m, tea.Batch(m.updateLead(sess, m.leadForm.LeadID, patch), m.spinner.Tick)
}

func (m *Model) focusFirstError() {
	for i, field := range leadFormFields {
		if _, ok := m.leadForm.Errors[field.key]; ok {
			m.focusIndex = i
			m.updateFormFocus()
			return
		}
	}
	if _, ok := m.leadForm.Errors[models.FieldStatus]; ok {
		m.focusIndex = statusIndex
		m.updateFormFocus()
	}
}
