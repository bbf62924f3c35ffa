// ABOUTME: Funnel MCP handler
// ABOUTME: Provides the campaign_funnel tool with per-status counts and an optional DOT graph
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/models"
	"github.com/harperreed/smscrm/viz"
)

type FunnelHandlers struct {
	svc api.LeadService
}

func NewFunnelHandlers(svc api.LeadService) *FunnelHandlers {
	return &FunnelHandlers{svc: svc}
}

type CampaignFunnelInput struct {
	IncludeGraph bool `json:"include_graph,omitempty" jsonschema:"Also return the funnel as GraphViz DOT source"`
}

type FunnelStageOutput struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	Reached    int     `json:"reached"`
	Conversion float64 `json:"conversion_to_next"`
}

type CampaignFunnelOutput struct {
	Total     int                 `json:"total"`
	WithNotes int                 `json:"with_notes"`
	Mortgaged int                 `json:"mortgaged"`
	Unknown   int                 `json:"unknown_status"`
	Stages    []FunnelStageOutput `json:"stages"`
	DOTSource string              `json:"dot_source,omitempty"`
}

func (h *FunnelHandlers) CampaignFunnel(ctx context.Context, request *mcp.CallToolRequest, input CampaignFunnelInput) (*mcp.CallToolResult, CampaignFunnelOutput, error) {
	leads, err := h.svc.ListLeads(ctx, models.FilterAll)
	if err != nil {
		return nil, CampaignFunnelOutput{}, fmt.Errorf("failed to list leads: %w", err)
	}

	stats := viz.ComputeFunnel(leads)
	out := funnelToOutput(stats)
	if input.IncludeGraph {
		dot, err := viz.GenerateFunnelGraph(ctx, stats)
		if err != nil {
			return nil, CampaignFunnelOutput{}, fmt.Errorf("failed to generate graph: %w", err)
		}
		out.DOTSource = dot
	}
	return nil, out, nil
}

func funnelToOutput(stats viz.FunnelStats) CampaignFunnelOutput {
	stages := stats.Stages()
	out := CampaignFunnelOutput{
		Total:     stats.Total,
		WithNotes: stats.WithNotes,
		Mortgaged: stats.Mortgaged,
		Unknown:   stats.Other,
		Stages:    make([]FunnelStageOutput, len(stages)),
	}
	for i, s := range stages {
		out.Stages[i] = FunnelStageOutput{
			Status:     string(s.Status),
			Count:      s.Count,
			Reached:    s.Reached,
			Conversion: viz.Conversion(stages, i),
		}
	}
	return out
}
