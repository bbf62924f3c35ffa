// ABOUTME: MCP prompt handlers for reusable campaign workflow templates
// ABOUTME: Provides lead follow-up and campaign review prompts
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/models"
	"github.com/harperreed/smscrm/viz"
)

const (
	PromptLeadFollowUp   = "lead-follow-up"
	PromptCampaignReview = "campaign-review"
)

type PromptHandlers struct {
	svc api.LeadService
}

func NewPromptHandlers(svc api.LeadService) *PromptHandlers {
	return &PromptHandlers{svc: svc}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case PromptLeadFollowUp:
		return h.getLeadFollowUpPrompt(ctx, request.Params.Arguments)
	case PromptCampaignReview:
		return h.getCampaignReviewPrompt(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getLeadFollowUpPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	idStr, ok := args["lead_id"]
	if !ok {
		return nil, fmt.Errorf("lead_id is required")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lead_id: %w", err)
	}

	lead, err := findLead(ctx, h.svc, id)
	if err != nil {
		return nil, err
	}

	var promptText strings.Builder
	promptText.WriteString("Draft the next SMS follow-up for this campaign lead:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", lead.FullName()))
	promptText.WriteString(fmt.Sprintf("Status: %s\n", lead.Status))
	if phone := lead.PrimaryPhone(); phone != "" {
		promptText.WriteString(fmt.Sprintf("Phone: %s\n", phone))
	}
	if lead.Resort != "" {
		promptText.WriteString(fmt.Sprintf("Resort: %s\n", lead.Resort))
	}
	if lead.Mortgaged {
		promptText.WriteString("Property: mortgaged\n")
	}

	if len(lead.Notes) > 0 {
		promptText.WriteString("\nConversation notes (oldest first):\n")
		for _, n := range lead.Notes {
			when := ""
			if n.CreatedAt != nil && !n.CreatedAt.IsZero() {
				when = n.CreatedAt.Format("2006-01-02") + ": "
			}
			promptText.WriteString(fmt.Sprintf("  - %s%s\n", when, n.Content))
		}
	}

	promptText.WriteString("\nKeep the message under 160 characters and suggest the status the lead should move to.")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Follow-up for lead: %s", lead.FullName()),
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}

func (h *PromptHandlers) getCampaignReviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	leads, err := h.svc.ListLeads(ctx, models.FilterAll)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}

	stats := viz.ComputeFunnel(leads)
	stages := stats.Stages()

	var promptText strings.Builder
	promptText.WriteString("Please review the SMS campaign funnel:\n\n")
	promptText.WriteString(fmt.Sprintf("Total Leads: %d\n\n", stats.Total))
	promptText.WriteString("Leads by Status:\n")
	for i, s := range stages {
		promptText.WriteString(fmt.Sprintf("  - %s: %d", s.Status, s.Count))
		if i+1 < len(stages) {
			promptText.WriteString(fmt.Sprintf(" (%.0f%% move on to %s)", viz.Conversion(stages, i), stages[i+1].Status))
		}
		promptText.WriteString("\n")
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. Where the funnel loses the most leads")
	promptText.WriteString("\n2. Which leads should be messaged next")
	promptText.WriteString("\n3. Suggestions for improving the reply rate")

	return &mcp.GetPromptResult{
		Description: "SMS campaign funnel review",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}
