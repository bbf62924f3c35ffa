// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Browses campaign leads and drives the create/edit/note modals against the backend
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/logging"
	"github.com/harperreed/smscrm/models"
	"github.com/harperreed/smscrm/state"
)

// Model is the main bubbletea model
type Model struct {
	ctx    context.Context
	svc    api.LeadService
	store  *state.Store
	logger *log.Logger

	// List view state
	selectedRow int
	expanded    map[int64]bool

	// Lead form state
	leadForm   state.LeadForm
	original   models.LeadFields
	formInputs []textinput.Model
	focusIndex int

	// Note form state
	noteForm  state.NoteForm
	noteInput textarea.Model

	spinner spinner.Model

	// UI state
	width  int
	height int
}

type Option func(*Model)

// WithLogger routes model diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithContext bounds every backend call started by the model.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// NewModel creates a new TUI model
func NewModel(svc api.LeadService, opts ...Option) Model {
	m := Model{
		ctx:       context.Background(),
		svc:       svc,
		store:     state.NewStore(),
		logger:    logging.Discard(),
		expanded:  make(map[int64]bool),
		noteInput: newNoteInput(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		width:     80,
		height:    24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.store.StartLoading()
	return m
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, svc api.LeadService, opts ...Option) error {
	opts = append(opts, WithContext(ctx))
	p := tea.NewProgram(NewModel(svc, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadLeads())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.noteInput.SetWidth(min(m.width-4, 72))
		return m, nil
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case LeadsLoadedMsg:
		return m.handleLeadsLoaded(msg), nil
	case LeadCreatedMsg:
		return m.handleLeadCreated(msg), nil
	case LeadUpdatedMsg:
		return m.handleLeadUpdated(msg), nil
	case NoteAddedMsg:
		return m.handleNoteAdded(msg), nil
	}
	return m, nil
}

func (m Model) View() string {
	var view string
	switch m.store.Mode() {
	case state.ModeBrowsing:
		view = m.renderListView()
	case state.ModeCreatingLead, state.ModeEditingLead:
		view = m.renderLeadFormView()
	case state.ModeAddingNote:
		view = m.renderNoteFormView()
	}
	if banner := m.store.Banner(); banner != "" {
		view = bannerStyle.Render("✗ "+banner+"  ("+m.dismissKey()+" to dismiss)") + "\n" + view
	}
	return view
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	// Forms take printable keys as input, so the banner there needs a chord.
	if msg.String() == "ctrl+x" && m.store.Banner() != "" {
		m.store.DismissBanner()
		return m, nil
	}

	// Delegate to view-specific handlers
	switch m.store.Mode() {
	case state.ModeBrowsing:
		return m.handleListKeys(msg)
	case state.ModeCreatingLead, state.ModeEditingLead:
		return m.handleLeadFormKeys(msg)
	case state.ModeAddingNote:
		return m.handleNoteFormKeys(msg)
	}

	return m, nil
}

// dismissKey is the banner dismiss key for the current mode.
func (m Model) dismissKey() string {
	if m.store.Mode() == state.ModeBrowsing {
		return "x"
	}
	return "ctrl+x"
}

// busy reports whether a spinner should be showing.
func (m Model) busy() bool {
	return m.store.Loading() || m.leadForm.Submitting || m.noteForm.Submitting
}

// Store exposes the shell state, mostly for tests and the web layer.
func (m Model) Store() *state.Store {
	return m.store
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("124")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// badgeStyles colors a status badge by its variant.
var badgeStyles = map[string]lipgloss.Style{
	models.BadgePrimary:   badge("27"),
	models.BadgeInfo:      badge("37"),
	models.BadgeWarning:   badge("178"),
	models.BadgeSuccess:   badge("34"),
	models.BadgeSecondary: badge("243"),
}

func badge(bg string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color(bg)).
		Padding(0, 1)
}

func renderBadge(s models.Status) string {
	label := string(s)
	if label == "" {
		label = "UNKNOWN"
	}
	return badgeStyles[models.BadgeVariant(s)].Render(label)
}
