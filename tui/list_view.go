package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/harperreed/smscrm/models"
	"github.com/harperreed/smscrm/state"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(12)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170")).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	tableSelectedStyle = tableCellStyle.
				Background(lipgloss.Color("235")).
				Foreground(lipgloss.Color("255"))

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("SMS CAMPAIGN LEADS"))
	s.WriteString("\n\n")

	// Tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	visible := m.store.Visible()
	switch {
	case m.store.Loading():
		s.WriteString(m.spinner.View() + " Loading leads...")
	case len(visible) == 0:
		s.WriteString(mutedStyle.Render("No leads found."))
	default:
		s.WriteString(m.renderTable(visible))
		if m.selectedRow < len(visible) && m.expanded[visible[m.selectedRow].ID] {
			s.WriteString("\n")
			s.WriteString(m.renderLeadDetail(visible[m.selectedRow]))
		}
	}
	s.WriteString("\n")

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	counts := m.store.Counts()
	total := len(m.store.Leads())

	var rendered []string
	for i, opt := range models.FilterOptions() {
		n := total
		if opt.Value != models.FilterAll {
			n = counts[models.Status(opt.Value)]
		}
		label := fmt.Sprintf("%d %s (%d)", i, opt.Label, n)
		if opt.Value == m.store.Filter() {
			rendered = append(rendered, tabActiveStyle.Render(label))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(label))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable(leads []models.Lead) string {
	rows := make([][]string, 0, len(leads))
	for i, lead := range leads {
		marker := " "
		if i == m.selectedRow {
			marker = "›"
		}
		if m.expanded[lead.ID] {
			marker += "▾"
		} else {
			marker += "▸"
		}
		rows = append(rows, []string{
			marker,
			lead.FullName(),
			orDash(lead.PrimaryPhone()),
			renderBadge(lead.Status),
			createdLabel(lead),
			notesLabel(len(lead.Notes)),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("", m.header("NAME", models.SortName), "PHONE", m.header("STATUS", models.SortStatus),
			m.header("CREATED", models.SortCreated), "NOTES").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case row == m.selectedRow:
				return tableSelectedStyle
			}
			return tableCellStyle
		})

	return t.Render()
}

// header marks the active sort column with an arrow.
func (m Model) header(title string, key models.SortKey) string {
	active, desc := m.store.Sort()
	if active != key {
		return title
	}
	if desc {
		return title + " ↓"
	}
	return title + " ↑"
}

func (m Model) renderLeadDetail(lead models.Lead) string {
	var s strings.Builder

	s.WriteString(renderField("Name", lead.FullName()))
	for i, phone := range lead.Phones() {
		s.WriteString(renderField(fmt.Sprintf("Phone %d", i+1), telLink(phone)))
	}
	if lead.Email != "" {
		s.WriteString(renderField("Email", lead.Email))
	}
	if lead.Address != "" {
		s.WriteString(renderField("Address", lead.Address))
	}
	if lead.Zip != "" {
		s.WriteString(renderField("ZIP", lead.Zip))
	}
	if lead.Resort != "" {
		s.WriteString(renderField("Resort", lead.Resort))
	}
	s.WriteString(renderField("Mortgaged", yesNo(lead.Mortgaged)))
	s.WriteString(renderField("Status", renderBadge(lead.Status)))

	s.WriteString("\n")
	if len(lead.Notes) == 0 {
		s.WriteString(mutedStyle.Render("No notes yet."))
	} else {
		s.WriteString(fieldLabelStyle.Render("Notes"))
		for _, note := range lead.Notes {
			s.WriteString("\n• " + note.Content)
			if note.CreatedAt != nil {
				s.WriteString(mutedStyle.Render("  " + humanize.Time(note.CreatedAt.Time)))
			}
		}
	}

	return detailStyle.Render(s.String())
}

func renderField(label, value string) string {
	return fieldLabelStyle.Render(label+":") + " " + fieldValueStyle.Render(value) + "\n"
}

// telLink wraps a phone number in an OSC 8 hyperlink so supporting
// terminals can dial it.
func telLink(phone string) string {
	return ansi.SetHyperlink("tel:"+phone) + phone + ansi.ResetHyperlink()
}

func createdLabel(lead models.Lead) string {
	if lead.CreatedAt == nil || lead.CreatedAt.IsZero() {
		return "—"
	}
	return lead.CreatedAt.Format("Jan 2, 2006")
}

func notesLabel(n int) string {
	switch n {
	case 0:
		return "no notes"
	case 1:
		return "1 note"
	}
	return fmt.Sprintf("%d notes", n)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab/0-4: Filter",
		"Enter: Notes",
		"n: New",
		"e: Edit",
		"a: Add note",
		"s/S: Sort",
		"r: Reload",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.store.Visible()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(visible)-1 {
			m.selectedRow++
		}
	case "tab":
		m.setFilter(m.filterIndex() + 1)
	case "shift+tab":
		m.setFilter(m.filterIndex() - 1)
	case "0", "1", "2", "3", "4":
		m.setFilter(int(msg.String()[0] - '0'))
	case "enter", " ":
		if lead, ok := m.selectedLead(); ok {
			m.expanded[lead.ID] = !m.expanded[lead.ID]
		}
	case "s":
		key, desc := m.store.Sort()
		m.store.SetSort(nextSortKey(key), desc)
	case "S":
		key, desc := m.store.Sort()
		m.store.SetSort(key, !desc)
	case "r":
		if !m.store.Loading() {
			m.store.StartLoading()
			return m, tea.Batch(m.spinner.Tick, m.loadLeads())
		}
	case "x", "esc":
		m.store.DismissBanner()
	case "n":
		return m.openCreate()
	case "e":
		if lead, ok := m.selectedLead(); ok {
			return m.openEdit(lead.ID)
		}
	case "a":
		if lead, ok := m.selectedLead(); ok {
			return m.openNote(lead.ID)
		}
	}

	return m, nil
}

func (m Model) selectedLead() (models.Lead, bool) {
	visible := m.store.Visible()
	if m.selectedRow < 0 || m.selectedRow >= len(visible) {
		return models.Lead{}, false
	}
	return visible[m.selectedRow], true
}

func (m Model) filterIndex() int {
	for i, opt := range models.FilterOptions() {
		if opt.Value == m.store.Filter() {
			return i
		}
	}
	return 0
}

func (m *Model) setFilter(i int) {
	opts := models.FilterOptions()
	i = (i + len(opts)) % len(opts)
	m.store.SetFilter(opts[i].Value)
	m.selectedRow = 0
}

func (m *Model) clampSelection() {
	n := len(m.store.Visible())
	if m.selectedRow >= n {
		m.selectedRow = max(n-1, 0)
	}
}

func nextSortKey(k models.SortKey) models.SortKey {
	for i, key := range models.SortKeys {
		if key == k {
			return models.SortKeys[(i+1)%len(models.SortKeys)]
		}
	}
	return models.SortNone
}

func (m Model) openCreate() (tea.Model, tea.Cmd) {
	m.store.DismissBanner()
	m.store.OpenCreate()
	m.leadForm = state.NewLeadForm()
	m.original = m.leadForm.Fields
	m.initFormInputs()
	return m, textinput.Blink
}

func (m Model) openEdit(id int64) (tea.Model, tea.Cmd) {
	lead, _, err := m.store.OpenEdit(id)
	if err != nil {
		m.logger.Warn("edit of unloaded lead", "id", id, "err", err)
		return m, nil
	}
	m.store.DismissBanner()
	m.leadForm = state.EditLeadForm(lead)
	m.original = m.leadForm.Fields
	m.initFormInputs()
	return m, textinput.Blink
}

func (m Model) openNote(id int64) (tea.Model, tea.Cmd) {
	if _, _, err := m.store.OpenNote(id); err != nil {
		m.logger.Warn("note on unloaded lead", "id", id, "err", err)
		return m, nil
	}
	m.store.DismissBanner()
	m.noteForm = state.NewNoteForm(id)
	m.noteInput.Reset()
	m.noteInput.Focus()
	return m, nil
}
