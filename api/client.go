// ABOUTME: HTTP client for the leads backend REST API
// ABOUTME: Wraps list/create/update/add-note behind typed, context-aware calls with normalized errors
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/harperreed/smscrm/logging"
	"github.com/harperreed/smscrm/models"
)

// Operation names, used in errors, logs and banner messages.
const (
	OpListLeads  = "load leads"
	OpCreateLead = "create lead"
	OpUpdateLead = "update lead"
	OpAddNote    = "add note"
	OpHealth     = "check health"
)

// LeadService is the set of backend calls the view layers depend on.
type LeadService interface {
	ListLeads(ctx context.Context, filter models.Filter) ([]models.Lead, error)
	CreateLead(ctx context.Context, draft models.LeadFields) (models.Lead, error)
	UpdateLead(ctx context.Context, id int64, patch models.LeadPatch) (models.Lead, error)
	AddNote(ctx context.Context, leadID int64, content string) (models.Note, error)
}

var _ LeadService = (*Client)(nil)

type Client struct {
	http    *resty.Client
	logger  *log.Logger
	timeout time.Duration
}

type Option func(*Client)

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTimeout bounds every request. It applies whatever the option order,
// including over a client given to WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying transport, e.g. an httptest client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = newResty(resty.NewWithClient(hc), c.http.BaseURL)
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:   newResty(resty.New(), strings.TrimRight(baseURL, "/")),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.http.SetTimeout(c.timeout)
	}
	return c
}

func newResty(r *resty.Client, baseURL string) *resty.Client {
	return r.
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

// BaseURL is the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// ListLeads fetches leads. A non-ALL filter is sent as ?status= and also
// applied locally, so a backend that ignores the parameter is still narrowed.
func (c *Client) ListLeads(ctx context.Context, filter models.Filter) ([]models.Lead, error) {
	body, err := c.do(ctx, OpListLeads, http.MethodGet, "/leads", func(r *resty.Request) {
		if filter != "" && filter != models.FilterAll {
			r.SetQueryParam("status", string(filter))
		}
	})
	if err != nil {
		return nil, err
	}

	leads, err := decodeEnvelope[[]models.Lead](body, "leads")
	if err != nil {
		return nil, decodeError(OpListLeads, err)
	}
	for i := range leads {
		normalizeLead(&leads[i])
	}
	return models.FilterLeads(leads, filter), nil
}

// CreateLead validates the draft and posts it. The draft's status defaults
// to NEW.
func (c *Client) CreateLead(ctx context.Context, draft models.LeadFields) (models.Lead, error) {
	if draft.Status == "" {
		draft.Status = models.StatusNew
	}
	if err := models.ValidateLead(draft).Err(); err != nil {
		return models.Lead{}, validationError(OpCreateLead, err)
	}

	body, err := c.do(ctx, OpCreateLead, http.MethodPost, "/leads", func(r *resty.Request) {
		r.SetBody(draft)
	})
	if err != nil {
		return models.Lead{}, err
	}

	lead, err := decodeEnvelope[models.Lead](body, "lead")
	if err != nil {
		return models.Lead{}, decodeError(OpCreateLead, err)
	}
	normalizeLead(&lead)
	return lead, nil
}

// UpdateLead sends the fields set in patch and returns the canonical lead.
func (c *Client) UpdateLead(ctx context.Context, id int64, patch models.LeadPatch) (models.Lead, error) {
	if patch.IsEmpty() {
		return models.Lead{}, validationError(OpUpdateLead, fmt.Errorf("no fields to update"))
	}
	if err := models.ValidatePatch(patch).Err(); err != nil {
		return models.Lead{}, validationError(OpUpdateLead, err)
	}

	body, err := c.do(ctx, OpUpdateLead, http.MethodPatch, "/leads/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(id, 10))
		r.SetBody(patch)
	})
	if err != nil {
		return models.Lead{}, err
	}

	lead, err := decodeEnvelope[models.Lead](body, "lead")
	if err != nil {
		return models.Lead{}, decodeError(OpUpdateLead, err)
	}
	normalizeLead(&lead)
	return lead, nil
}

// AddNote attaches trimmed content to the lead and returns the created note.
func (c *Client) AddNote(ctx context.Context, leadID int64, content string) (models.Note, error) {
	if err := models.ValidateNote(content).Err(); err != nil {
		return models.Note{}, validationError(OpAddNote, err)
	}

	body, err := c.do(ctx, OpAddNote, http.MethodPost, "/notes/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(leadID, 10))
		r.SetBody(map[string]string{"content": strings.TrimSpace(content)})
	})
	if err != nil {
		return models.Note{}, err
	}

	note, err := decodeEnvelope[models.Note](body, "note")
	if err != nil {
		return models.Note{}, decodeError(OpAddNote, err)
	}
	if note.LeadID == 0 {
		note.LeadID = leadID
	}
	return note, nil
}

// Health pings GET /health.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, OpHealth, http.MethodGet, "/health", nil)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, configure func(*resty.Request)) ([]byte, error) {
	requestID := uuid.NewString()
	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID)
	if configure != nil {
		configure(req)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error("request failed", "op", op, "method", method, "path", path, "request_id", requestID, "err", err)
		return nil, networkError(op, err)
	}

	status := resp.StatusCode()
	c.logger.Debug("request", "op", op, "method", method, "path", path, "status", status,
		"request_id", requestID, "duration", time.Since(start))

	if status < 200 || status > 299 {
		apiErr := responseError(op, status, resp.Body())
		c.logger.Error("request rejected", "op", op, "kind", apiErr.Kind, "status", status,
			"request_id", requestID, "err", apiErr.Message)
		return nil, apiErr
	}
	return resp.Body(), nil
}

// decodeEnvelope accepts {"<key>": v}, {"data": v} or a bare v.
func decodeEnvelope[T any](body []byte, key string) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return out, fmt.Errorf("empty response body")
	}

	if trimmed[0] == '{' {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &env); err == nil {
			for _, k := range []string{key, "data"} {
				raw, ok := env[k]
				if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
					continue
				}
				err := json.Unmarshal(raw, &out)
				return out, err
			}
		}
	}

	err := json.Unmarshal(trimmed, &out)
	return out, err
}

func decodeError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindServer, Message: "invalid response: " + err.Error(), Err: err}
}

func normalizeLead(l *models.Lead) {
	if l.Notes == nil {
		l.Notes = []models.Note{}
	}
}
