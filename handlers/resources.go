// ABOUTME: MCP resource handlers for exposing campaign data
// ABOUTME: Provides read-only access to leads and the status funnel via smscrm:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/models"
	"github.com/harperreed/smscrm/viz"
)

const (
	ResourceLeads  = "smscrm://leads"
	ResourceFunnel = "smscrm://funnel"
)

type ResourceHandlers struct {
	svc api.LeadService
}

func NewResourceHandlers(svc api.LeadService) *ResourceHandlers {
	return &ResourceHandlers{svc: svc}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "smscrm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected smscrm://")
	}

	parts := strings.Split(strings.TrimPrefix(uri, "smscrm://"), "/")
	switch parts[0] {
	case "leads":
		if len(parts) == 1 || parts[1] == "" {
			return h.readAllLeads(ctx)
		}
		return h.readLead(ctx, parts[1])
	case "funnel":
		return h.readFunnel(ctx)
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func (h *ResourceHandlers) readAllLeads(ctx context.Context) (*mcp.ReadResourceResult, error) {
	leads, err := h.svc.ListLeads(ctx, models.FilterAll)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}

	out := make([]LeadOutput, len(leads))
	for i, l := range leads {
		out[i] = leadToOutput(l)
	}
	return jsonResource(ResourceLeads, out)
}

func (h *ResourceHandlers) readLead(ctx context.Context, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lead ID: %w", err)
	}

	lead, err := findLead(ctx, h.svc, id)
	if err != nil {
		return nil, err
	}
	return jsonResource(fmt.Sprintf("%s/%d", ResourceLeads, id), leadToOutput(lead))
}

func (h *ResourceHandlers) readFunnel(ctx context.Context) (*mcp.ReadResourceResult, error) {
	leads, err := h.svc.ListLeads(ctx, models.FilterAll)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	return jsonResource(ResourceFunnel, funnelToOutput(viz.ComputeFunnel(leads)))
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

// findLead scans the full list; the backend has no single-lead endpoint.
func findLead(ctx context.Context, svc api.LeadService, id int64) (models.Lead, error) {
	leads, err := svc.ListLeads(ctx, models.FilterAll)
	if err != nil {
		return models.Lead{}, fmt.Errorf("failed to fetch leads: %w", err)
	}
	for _, l := range leads {
		if l.ID == id {
			return l, nil
		}
	}
	return models.Lead{}, fmt.Errorf("lead %d not found", id)
}
