// ABOUTME: Application shell state: the canonical lead list and which modal is open
// ABOUTME: Single-writer container with derived filtered/sorted views
package state

import (
	"fmt"

	"github.com/harperreed/smscrm/models"
)

// Mode is the shell's UI mode.
type Mode int

const (
	ModeBrowsing Mode = iota
	ModeCreatingLead
	ModeEditingLead
	ModeAddingNote
)

func (m Mode) String() string {
	switch m {
	case ModeBrowsing:
		return "browsing"
	case ModeCreatingLead:
		return "creating lead"
	case ModeEditingLead:
		return "editing lead"
	case ModeAddingNote:
		return "adding note"
	}
	return "unknown"
}

// Session identifies one opening of a modal. Completions carry the session
// they were started in, so a late response never closes a newer modal.
type Session uint64

// Store owns the lead list. It is not safe for concurrent use: exactly one
// goroutine (the bubbletea update loop, or one web request) writes to it.
type Store struct {
	leads []models.Lead

	filter   models.Filter
	sortKey  models.SortKey
	sortDesc bool

	mode    Mode
	target  int64
	session Session

	loading bool
	banner  string
}

// NewStore returns an empty store browsing all leads.
func NewStore() *Store {
	return &Store{filter: models.FilterAll}
}

// BannerMessage is the single user-visible message for a failed operation.
func BannerMessage(op string) string {
	return fmt.Sprintf("Failed to %s. Please try again.", op)
}

// StartLoading marks the initial fetch in flight.
func (s *Store) StartLoading() {
	s.loading = true
}

// Loaded replaces the lead list with a fresh fetch.
func (s *Store) Loaded(leads []models.Lead) {
	s.leads = make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		s.upsert(l)
	}
	s.loading = false
	s.banner = ""
}

// LoadFailed ends loading with the load banner.
func (s *Store) LoadFailed(op string) {
	s.loading = false
	s.banner = BannerMessage(op)
}

func (s *Store) Loading() bool { return s.loading }

// Leads returns a copy of the full lead list in load order.
func (s *Store) Leads() []models.Lead {
	out := make([]models.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

// Lead looks up a lead by id.
func (s *Store) Lead(id int64) (models.Lead, bool) {
	if i := s.index(id); i >= 0 {
		return s.leads[i], true
	}
	return models.Lead{}, false
}

func (s *Store) Filter() models.Filter { return s.filter }

// SetFilter changes the status filter; "" means ALL.
func (s *Store) SetFilter(f models.Filter) {
	if f == "" {
		f = models.FilterAll
	}
	s.filter = f
}

// SetSort orders the visible rows by key.
func (s *Store) SetSort(key models.SortKey, desc bool) {
	s.sortKey = key
	s.sortDesc = desc
}

func (s *Store) Sort() (models.SortKey, bool) { return s.sortKey, s.sortDesc }

// Visible is the filtered, sorted view of the lead list. It is recomputed
// on every call.
func (s *Store) Visible() []models.Lead {
	return models.SortLeads(models.FilterLeads(s.leads, s.filter), s.sortKey, s.sortDesc)
}

// Counts tallies leads per status over the full list.
func (s *Store) Counts() map[models.Status]int {
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, l := range s.leads {
		counts[l.Status]++
	}
	return counts
}

func (s *Store) Mode() Mode { return s.mode }

// Target is the lead being edited or annotated, 0 otherwise.
func (s *Store) Target() int64 { return s.target }

// Session is the current modal session.
func (s *Store) Session() Session { return s.session }

// OpenCreate moves Browsing → CreatingLead.
func (s *Store) OpenCreate() Session {
	return s.open(ModeCreatingLead, 0)
}

// OpenEdit moves Browsing → EditingLead(id) and returns the lead to seed the form.
func (s *Store) OpenEdit(id int64) (models.Lead, Session, error) {
	lead, ok := s.Lead(id)
	if !ok {
		return models.Lead{}, 0, fmt.Errorf("lead %d not loaded", id)
	}
	return lead, s.open(ModeEditingLead, id), nil
}

// OpenNote moves Browsing → AddingNote(id).
func (s *Store) OpenNote(id int64) (models.Lead, Session, error) {
	lead, ok := s.Lead(id)
	if !ok {
		return models.Lead{}, 0, fmt.Errorf("lead %d not loaded", id)
	}
	return lead, s.open(ModeAddingNote, id), nil
}

func (s *Store) open(mode Mode, target int64) Session {
	s.session++
	s.mode = mode
	s.target = target
	return s.session
}

// Close returns to Browsing from any modal.
func (s *Store) Close() {
	s.mode = ModeBrowsing
	s.target = 0
}

// LeadCreated appends the canonical lead and closes the modal if the
// session is still current.
func (s *Store) LeadCreated(sess Session, lead models.Lead) {
	s.upsert(lead)
	s.complete(sess)
}

// LeadUpdated replaces the cached lead by id with the canonical object.
func (s *Store) LeadUpdated(sess Session, lead models.Lead) {
	s.upsert(lead)
	s.complete(sess)
}

// NoteAdded appends the note to its lead's notes, keeping prior entries
// and their order.
func (s *Store) NoteAdded(sess Session, leadID int64, note models.Note) {
	if i := s.index(leadID); i >= 0 {
		notes := make([]models.Note, 0, len(s.leads[i].Notes)+1)
		notes = append(notes, s.leads[i].Notes...)
		s.leads[i].Notes = append(notes, note)
	}
	s.complete(sess)
}

// SubmitFailed keeps the modal open and raises the banner for op.
func (s *Store) SubmitFailed(op string) {
	s.banner = BannerMessage(op)
}

// Banner is the dismissible error message, "" when none.
func (s *Store) Banner() string { return s.banner }

func (s *Store) DismissBanner() { s.banner = "" }

func (s *Store) complete(sess Session) {
	if sess == s.session && s.mode != ModeBrowsing {
		s.Close()
	}
}

// upsert replaces the lead with the same id or appends it, so every id
// appears exactly once.
func (s *Store) upsert(lead models.Lead) {
	if lead.Notes == nil {
		lead.Notes = []models.Note{}
	}
	if i := s.index(lead.ID); i >= 0 {
		s.leads[i] = lead
		return
	}
	s.leads = append(s.leads, lead)
}

func (s *Store) index(id int64) int {
	for i := range s.leads {
		if s.leads[i].ID == id {
			return i
		}
	}
	return -1
}
