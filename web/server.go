// ABOUTME: Web UI server with embedded templates
// ABOUTME: Server-rendered lead table and lead/note forms on top of the backend API
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/logging"
	"github.com/harperreed/smscrm/models"
	"github.com/harperreed/smscrm/state"
)

//go:embed templates/*
var templatesFS embed.FS

type Server struct {
	svc       api.LeadService
	templates *template.Template
	logger    *log.Logger
	router    chi.Router
}

var flashMessages = map[string]string{
	"created": "Lead created.",
	"updated": "Lead updated.",
	"noted":   "Note added.",
}

func NewServer(svc api.LeadService, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	// Helper functions for templates
	funcMap := template.FuncMap{
		"badgeClass": func(s models.Status) string {
			return "bg-" + models.BadgeVariant(s)
		},
		"telHref": telHref,
		"created": func(ts *models.Timestamp) string {
			if ts == nil || ts.IsZero() {
				return "—"
			}
			return ts.Format("Jan 2, 2006")
		},
		"ago": func(ts *models.Timestamp) string {
			if ts == nil || ts.IsZero() {
				return ""
			}
			return humanize.Time(ts.Time)
		},
		"dict": func(kv ...interface{}) (map[string]interface{}, error) {
			if len(kv)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			m := make(map[string]interface{}, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				key, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
				}
				m[key] = kv[i+1]
			}
			return m, nil
		},
		"notesLabel": func(n int) string {
			switch n {
			case 0:
				return "no notes"
			case 1:
				return "1 note"
			}
			return fmt.Sprintf("%d notes", n)
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		svc:       svc,
		templates: tmpl,
		logger:    logger,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/leads", http.StatusFound)
	})
	r.Get("/leads", s.handleLeads)
	r.Get("/leads/new", s.handleNewLead)
	r.Post("/leads", s.handleCreateLead)
	r.Get("/leads/{id}/edit", s.handleEditLead)
	r.Post("/leads/{id}", s.handleUpdateLead)
	r.Get("/leads/{id}/notes/new", s.handleNewNote)
	r.Post("/leads/{id}/notes", s.handleAddNote)
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("web request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()), "duration", time.Since(start))
	})
}

func (s *Server) renderTemplate(w http.ResponseWriter, status int, data map[string]interface{}) {
	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error("template error", "template", data["ContentTemplate"], "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// loadStore fetches the lead list into a fresh shell store. A failed fetch
// leaves the store empty with the load banner set.
func (s *Server) loadStore(ctx context.Context) *state.Store {
	store := state.NewStore()
	store.StartLoading()
	leads, err := s.svc.ListLeads(ctx, models.FilterAll)
	if err != nil {
		s.logFailure(api.OpListLeads, err)
		store.LoadFailed(api.OpListLeads)
		return store
	}
	store.Loaded(leads)
	return store
}

func (s *Server) logFailure(op string, err error) {
	s.logger.Error("operation failed", "op", op, "kind", api.KindOf(err), "err", err)
}

type filterTab struct {
	Label  string
	Value  models.Filter
	Count  int
	Active bool
}

type sortLink struct {
	Label  string
	Key    models.SortKey
	Active bool
	Desc   bool
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	store := s.loadStore(r.Context())

	filter, err := models.ParseFilter(q.Get("status"))
	if err != nil {
		filter = models.FilterAll
	}
	store.SetFilter(filter)
	store.SetSort(models.SortKey(q.Get("sort")), q.Get("desc") == "1")

	expand, _ := strconv.ParseInt(q.Get("expand"), 10, 64)

	counts := store.Counts()
	var tabs []filterTab
	for _, opt := range models.FilterOptions() {
		n := len(store.Leads())
		if opt.Value != models.FilterAll {
			n = counts[models.Status(opt.Value)]
		}
		tabs = append(tabs, filterTab{Label: opt.Label, Value: opt.Value, Count: n, Active: opt.Value == filter})
	}

	key, desc := store.Sort()
	sorts := []sortLink{
		{Label: "Name", Key: models.SortName},
		{Label: "Status", Key: models.SortStatus},
		{Label: "Created", Key: models.SortCreated},
	}
	for i := range sorts {
		if sorts[i].Key == key {
			sorts[i].Active = true
			sorts[i].Desc = desc
		}
	}

	data := map[string]interface{}{
		"Title":           "Leads",
		"ContentTemplate": "leads-content",
		"Leads":           store.Visible(),
		"Tabs":            tabs,
		"Sorts":           sorts,
		"Filter":          filter,
		"Expand":          expand,
		"Banner":          store.Banner(),
		"Flash":           flashMessages[q.Get("flash")],
	}
	s.renderTemplate(w, http.StatusOK, data)
}

func (s *Server) handleNewLead(w http.ResponseWriter, r *http.Request) {
	s.renderLeadForm(w, http.StatusOK, state.NewLeadForm(), "")
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	form := state.NewLeadForm()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	form.Fields = parseLeadFields(r)

	fields, ok := form.Submit()
	if !ok {
		s.renderLeadForm(w, http.StatusUnprocessableEntity, form, "")
		return
	}

	if _, err := s.svc.CreateLead(r.Context(), fields); err != nil {
		s.logFailure(api.OpCreateLead, err)
		form.Finish(false)
		s.renderLeadForm(w, statusFor(err), form, state.BannerMessage(api.OpCreateLead))
		return
	}

	http.Redirect(w, r, "/leads?flash=created", http.StatusSeeOther)
}

func (s *Server) handleEditLead(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.findLead(w, r)
	if !ok {
		return
	}
	s.renderLeadForm(w, http.StatusOK, state.EditLeadForm(lead), "")
}

func (s *Server) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.findLead(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	form := state.EditLeadForm(lead)
	original := form.Fields
	form.Fields = parseLeadFields(r)

	fields, ok := form.Submit()
	if !ok {
		s.renderLeadForm(w, http.StatusUnprocessableEntity, form, "")
		return
	}

	patch := original.DiffPatch(fields)
	if patch.IsEmpty() {
		http.Redirect(w, r, "/leads", http.StatusSeeOther)
		return
	}

	if _, err := s.svc.UpdateLead(r.Context(), lead.ID, patch); err != nil {
		s.logFailure(api.OpUpdateLead, err)
		form.Finish(false)
		s.renderLeadForm(w, statusFor(err), form, state.BannerMessage(api.OpUpdateLead))
		return
	}

	http.Redirect(w, r, "/leads?flash=updated", http.StatusSeeOther)
}

func (s *Server) handleNewNote(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.findLead(w, r)
	if !ok {
		return
	}
	s.renderNoteForm(w, http.StatusOK, lead, state.NewNoteForm(lead.ID), "")
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.findLead(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	form := state.NewNoteForm(lead.ID)
	form.Content = r.PostForm.Get("content")
	content, ok := form.Submit()
	if !ok {
		s.renderNoteForm(w, http.StatusUnprocessableEntity, lead, form, "")
		return
	}

	if _, err := s.svc.AddNote(r.Context(), lead.ID, content); err != nil {
		s.logFailure(api.OpAddNote, err)
		form.Finish(false)
		s.renderNoteForm(w, statusFor(err), lead, form, state.BannerMessage(api.OpAddNote))
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/leads?flash=noted&expand=%d", lead.ID), http.StatusSeeOther)
}

// findLead resolves the {id} route param against a fresh lead list, writing
// the error response itself when it cannot.
func (s *Server) findLead(w http.ResponseWriter, r *http.Request) (models.Lead, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid lead id", http.StatusBadRequest)
		return models.Lead{}, false
	}

	store := s.loadStore(r.Context())
	if banner := store.Banner(); banner != "" {
		s.renderTemplate(w, http.StatusBadGateway, map[string]interface{}{
			"Title":           "Leads",
			"ContentTemplate": "leads-content",
			"Banner":          banner,
			"Tabs":            []filterTab{},
			"Leads":           []models.Lead{},
		})
		return models.Lead{}, false
	}

	lead, ok := store.Lead(id)
	if !ok {
		http.Error(w, "Lead not found", http.StatusNotFound)
		return models.Lead{}, false
	}
	return lead, true
}

func (s *Server) renderLeadForm(w http.ResponseWriter, status int, form state.LeadForm, banner string) {
	title := "New lead"
	action := "/leads"
	if form.Editing() {
		title = "Edit lead"
		action = fmt.Sprintf("/leads/%d", form.LeadID)
	}
	s.renderTemplate(w, status, map[string]interface{}{
		"Title":           title,
		"ContentTemplate": "lead-form-content",
		"Form":            form,
		"Action":          action,
		"Statuses":        models.Statuses,
		"Banner":          banner,
	})
}

func (s *Server) renderNoteForm(w http.ResponseWriter, status int, lead models.Lead, form state.NoteForm, banner string) {
	s.renderTemplate(w, status, map[string]interface{}{
		"Title":           "Add note",
		"ContentTemplate": "note-form-content",
		"Lead":            lead,
		"Form":            form,
		"Action":          fmt.Sprintf("/leads/%d/notes", lead.ID),
		"Banner":          banner,
	})
}

func parseLeadFields(r *http.Request) models.LeadFields {
	f := r.PostForm
	status := models.Status(strings.ToUpper(strings.TrimSpace(f.Get("status"))))
	if status == "" {
		status = models.StatusNew
	}
	return models.LeadFields{
		FirstName: f.Get("first_name"),
		LastName:  f.Get("last_name"),
		Email:     f.Get("email"),
		Phone1:    f.Get("phone_1"),
		Phone2:    f.Get("phone_2"),
		Phone3:    f.Get("phone_3"),
		Phone4:    f.Get("phone_4"),
		Address:   f.Get("address"),
		Zip:       f.Get("zip"),
		Resort:    f.Get("resort"),
		Mortgaged: f.Get("mortgaged") != "",
		Status:    status,
	}
}

// statusFor picks the response code for a failed backend call.
func statusFor(err error) int {
	switch api.KindOf(err) {
	case api.KindValidation:
		return http.StatusUnprocessableEntity
	case api.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// telHref builds a click-to-call URL keeping only dialable characters.
func telHref(phone string) template.URL {
	var b strings.Builder
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9', r == '+', r == '-', r == '(', r == ')', r == '.':
			b.WriteRune(r)
		}
	}
	return template.URL("tel:" + b.String())
}
