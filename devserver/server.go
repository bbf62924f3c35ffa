// ABOUTME: Local reference backend implementing the leads REST contract
// ABOUTME: chi router over the SQLite leads repository with CORS and /metrics
package devserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harperreed/smscrm/db"
	"github.com/harperreed/smscrm/logging"
	"github.com/harperreed/smscrm/models"
)

// APIPrefix is where the REST routes are mounted.
const APIPrefix = "/api"

const msgRequiredFields = "First name, last name and at least one phone are required"

type Server struct {
	repo     *db.LeadsRepository
	logger   *log.Logger
	registry *prometheus.Registry
	metrics  *metrics
	router   chi.Router
}

func New(database *sql.DB, logger *log.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		repo:     db.NewLeadsRepository(database),
		logger:   logger,
		registry: reg,
		metrics:  newMetrics(reg),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
	}))
	r.Use(s.metrics.middleware)

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/leads", s.handleListLeads)
		r.Post("/leads", s.handleCreateLead)
		r.Patch("/leads/{id}", s.handleUpdateLead)
		r.Post("/notes/{id}", s.handleAddNote)
	})
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
		s.logger.Info("starting reference backend", "url", fmt.Sprintf("http://localhost:%d%s", port, APIPrefix))
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
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"request_id", r.Header.Get("X-Request-ID"), "duration", time.Since(start))
	})
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, envelope{Success: false, Error: msg, Message: detail})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "message": "API is running"})
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	var status models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status", err.Error())
			return
		}
		status = st
	}

	leads, err := s.repo.List(r.Context(), status)
	if err != nil {
		s.logger.Error("list leads failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve leads", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: leads})
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var fields models.LeadFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	fields.Status = normalizeStatus(fields.Status)

	if strings.TrimSpace(fields.FirstName) == "" || strings.TrimSpace(fields.LastName) == "" ||
		len(models.Lead{Phone1: fields.Phone1, Phone2: fields.Phone2, Phone3: fields.Phone3, Phone4: fields.Phone4}.Phones()) == 0 {
		writeError(w, http.StatusBadRequest, msgRequiredFields, "")
		return
	}
	if errs := models.ValidateLead(fields); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "Invalid lead", errs.Error())
		return
	}

	lead, err := s.repo.Create(r.Context(), fields)
	if err != nil {
		s.logger.Error("create lead failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to create lead", err.Error())
		return
	}
	s.metrics.leadsCreated.Inc()
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: lead, Message: "Lead created successfully"})
}

func (s *Server) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	var patch models.LeadPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if patch.Status != nil {
		st := normalizeStatus(*patch.Status)
		patch.Status = &st
	}
	if errs := models.ValidatePatch(patch); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, "Invalid lead", errs.Error())
		return
	}

	before, err := s.repo.Get(r.Context(), id)
	if errors.Is(err, db.ErrLeadNotFound) {
		writeError(w, http.StatusNotFound, "Lead not found", "")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update lead", err.Error())
		return
	}

	lead, err := s.repo.Update(r.Context(), id, patch)
	if err != nil {
		s.logger.Error("update lead failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to update lead", err.Error())
		return
	}
	if lead.Status != before.Status {
		s.metrics.statusChanges.WithLabelValues(string(lead.Status)).Inc()
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: lead, Message: "Lead updated successfully"})
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := leadID(w, r)
	if !ok {
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	// Lead existence is checked before content, like the original backend.
	if _, err := s.repo.Get(r.Context(), id); errors.Is(err, db.ErrLeadNotFound) {
		writeError(w, http.StatusNotFound, "Lead not found", "")
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		writeError(w, http.StatusBadRequest, "Note content is required", "")
		return
	}

	note, err := s.repo.AddNote(r.Context(), id, body.Content)
	if errors.Is(err, db.ErrLeadNotFound) {
		writeError(w, http.StatusNotFound, "Lead not found", "")
		return
	}
	if err != nil {
		s.logger.Error("add note failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to add note", err.Error())
		return
	}
	s.metrics.notesAdded.Inc()
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: note, Message: "Note added successfully"})
}

func leadID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "Lead not found", "")
		return 0, false
	}
	return id, true
}

// normalizeStatus upper-cases a status and defaults it to NEW. Unknown
// values are kept so validation can reject them.
func normalizeStatus(s models.Status) models.Status {
	up := models.Status(strings.ToUpper(strings.TrimSpace(string(s))))
	if up == "" {
		return models.StatusNew
	}
	return up
}
