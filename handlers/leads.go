// ABOUTME: Lead MCP tool handlers
// ABOUTME: Implements list_leads, create_lead, update_lead and add_lead_note over the leads API
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/models"
)

type LeadHandlers struct {
	svc api.LeadService
}

func NewLeadHandlers(svc api.LeadService) *LeadHandlers {
	return &LeadHandlers{svc: svc}
}

type NoteOutput struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at,omitempty"`
}

type LeadOutput struct {
	ID        int64        `json:"id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Email     string       `json:"email,omitempty"`
	Phones    []string     `json:"phones"`
	Address   string       `json:"address,omitempty"`
	Zip       string       `json:"zip,omitempty"`
	Resort    string       `json:"resort,omitempty"`
	Mortgaged bool         `json:"mortgaged"`
	Status    string       `json:"status"`
	CreatedAt string       `json:"created_at,omitempty"`
	Notes     []NoteOutput `json:"notes"`
}

type ListLeadsInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status: NEW, SENT, REPLIED, BOOKED or ALL (default ALL)"`
	Query  string `json:"query,omitempty" jsonschema:"Case-insensitive match on name, email or phone"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ListLeadsOutput struct {
	Leads []LeadOutput `json:"leads"`
	Total int          `json:"total"`
}

func (h *LeadHandlers) ListLeads(ctx context.Context, request *mcp.CallToolRequest, input ListLeadsInput) (*mcp.CallToolResult, ListLeadsOutput, error) {
	filter := models.FilterAll
	if input.Status != "" {
		f, err := models.ParseFilter(input.Status)
		if err != nil {
			return nil, ListLeadsOutput{}, err
		}
		filter = f
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	leads, err := h.svc.ListLeads(ctx, filter)
	if err != nil {
		return nil, ListLeadsOutput{}, fmt.Errorf("failed to list leads: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(input.Query))
	result := []LeadOutput{}
	total := 0
	for _, lead := range leads {
		if query != "" && !leadMatches(lead, query) {
			continue
		}
		total++
		if len(result) < limit {
			result = append(result, leadToOutput(lead))
		}
	}

	return nil, ListLeadsOutput{Leads: result, Total: total}, nil
}

type CreateLeadInput struct {
	FirstName string `json:"first_name" jsonschema:"First name (required)"`
	LastName  string `json:"last_name" jsonschema:"Last name (required)"`
	Email     string `json:"email,omitempty" jsonschema:"Email address"`
	Phone1    string `json:"phone_1,omitempty" jsonschema:"Primary phone (at least one phone is required)"`
	Phone2    string `json:"phone_2,omitempty" jsonschema:"Second phone"`
	Phone3    string `json:"phone_3,omitempty" jsonschema:"Third phone"`
	Phone4    string `json:"phone_4,omitempty" jsonschema:"Fourth phone"`
	Address   string `json:"address,omitempty" jsonschema:"Street address"`
	Zip       string `json:"zip,omitempty" jsonschema:"5-digit ZIP or ZIP+4"`
	Resort    string `json:"resort,omitempty" jsonschema:"Resort the lead is interested in"`
	Mortgaged bool   `json:"mortgaged,omitempty" jsonschema:"Whether the lead's property is mortgaged"`
	Status    string `json:"status,omitempty" jsonschema:"Initial status (default NEW)"`
}

func (h *LeadHandlers) CreateLead(ctx context.Context, request *mcp.CallToolRequest, input CreateLeadInput) (*mcp.CallToolResult, LeadOutput, error) {
	fields := models.LeadFields{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone1:    input.Phone1,
		Phone2:    input.Phone2,
		Phone3:    input.Phone3,
		Phone4:    input.Phone4,
		Address:   input.Address,
		Zip:       input.Zip,
		Resort:    input.Resort,
		Mortgaged: input.Mortgaged,
		Status:    models.StatusNew,
	}
	if input.Status != "" {
		st, err := models.ParseStatus(input.Status)
		if err != nil {
			return nil, LeadOutput{}, err
		}
		fields.Status = st
	}
	if errs := models.ValidateLead(fields); len(errs) > 0 {
		return nil, LeadOutput{}, fmt.Errorf("invalid lead: %w", errs)
	}

	lead, err := h.svc.CreateLead(ctx, fields)
	if err != nil {
		return nil, LeadOutput{}, fmt.Errorf("failed to create lead: %w", err)
	}
	return nil, leadToOutput(lead), nil
}

type UpdateLeadInput struct {
	ID        int64   `json:"id" jsonschema:"Lead ID (required)"`
	FirstName *string `json:"first_name,omitempty" jsonschema:"Updated first name"`
	LastName  *string `json:"last_name,omitempty" jsonschema:"Updated last name"`
	Email     *string `json:"email,omitempty" jsonschema:"Updated email address"`
	Phone1    *string `json:"phone_1,omitempty" jsonschema:"Updated primary phone"`
	Phone2    *string `json:"phone_2,omitempty" jsonschema:"Updated second phone"`
	Phone3    *string `json:"phone_3,omitempty" jsonschema:"Updated third phone"`
	Phone4    *string `json:"phone_4,omitempty" jsonschema:"Updated fourth phone"`
	Address   *string `json:"address,omitempty" jsonschema:"Updated street address"`
	Zip       *string `json:"zip,omitempty" jsonschema:"Updated ZIP"`
	Resort    *string `json:"resort,omitempty" jsonschema:"Updated resort"`
	Mortgaged *bool   `json:"mortgaged,omitempty" jsonschema:"Updated mortgaged flag"`
	Status    *string `json:"status,omitempty" jsonschema:"New status: NEW, SENT, REPLIED or BOOKED"`
}

func (h *LeadHandlers) UpdateLead(ctx context.Context, request *mcp.CallToolRequest, input UpdateLeadInput) (*mcp.CallToolResult, LeadOutput, error) {
	if input.ID <= 0 {
		return nil, LeadOutput{}, fmt.Errorf("id is required")
	}

	patch := models.LeadPatch{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone1:    input.Phone1,
		Phone2:    input.Phone2,
		Phone3:    input.Phone3,
		Phone4:    input.Phone4,
		Address:   input.Address,
		Zip:       input.Zip,
		Resort:    input.Resort,
		Mortgaged: input.Mortgaged,
	}
	if input.Status != nil {
		st, err := models.ParseStatus(*input.Status)
		if err != nil {
			return nil, LeadOutput{}, err
		}
		patch.Status = &st
	}
	if patch.IsEmpty() {
		return nil, LeadOutput{}, fmt.Errorf("no fields to update")
	}
	if errs := models.ValidatePatch(patch); len(errs) > 0 {
		return nil, LeadOutput{}, fmt.Errorf("invalid update: %w", errs)
	}

	lead, err := h.svc.UpdateLead(ctx, input.ID, patch)
	if err != nil {
		return nil, LeadOutput{}, fmt.Errorf("failed to update lead: %w", err)
	}
	return nil, leadToOutput(lead), nil
}

type AddLeadNoteInput struct {
	LeadID  int64  `json:"lead_id" jsonschema:"Lead ID (required)"`
	Content string `json:"content" jsonschema:"Note text (required)"`
}

func (h *LeadHandlers) AddLeadNote(ctx context.Context, request *mcp.CallToolRequest, input AddLeadNoteInput) (*mcp.CallToolResult, NoteOutput, error) {
	if input.LeadID <= 0 {
		return nil, NoteOutput{}, fmt.Errorf("lead_id is required")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, NoteOutput{}, fmt.Errorf("content is required")
	}

	note, err := h.svc.AddNote(ctx, input.LeadID, content)
	if err != nil {
		return nil, NoteOutput{}, fmt.Errorf("failed to add note: %w", err)
	}
	return nil, noteToOutput(note), nil
}

func leadMatches(l models.Lead, query string) bool {
	haystack := []string{l.FullName(), l.Email}
	haystack = append(haystack, l.Phones()...)
	for _, s := range haystack {
		if strings.Contains(strings.ToLower(s), query) {
			return true
		}
	}
	return false
}

func leadToOutput(l models.Lead) LeadOutput {
	out := LeadOutput{
		ID:        l.ID,
		FirstName: l.FirstName,
		LastName:  l.LastName,
		Email:     l.Email,
		Phones:    l.Phones(),
		Address:   l.Address,
		Zip:       l.Zip,
		Resort:    l.Resort,
		Mortgaged: l.Mortgaged,
		Status:    string(l.Status),
		Notes:     make([]NoteOutput, 0, len(l.Notes)),
	}
	if out.Phones == nil {
		out.Phones = []string{}
	}
	if l.CreatedAt != nil && !l.CreatedAt.IsZero() {
		out.CreatedAt = l.CreatedAt.Format(time.RFC3339)
	}
	for _, n := range l.Notes {
		out.Notes = append(out.Notes, noteToOutput(n))
	}
	return out
}

func noteToOutput(n models.Note) NoteOutput {
	out := NoteOutput{ID: n.ID, Content: n.Content}
	if n.CreatedAt != nil && !n.CreatedAt.IsZero() {
		out.CreatedAt = n.CreatedAt.Format(time.RFC3339)
	}
	return out
}
