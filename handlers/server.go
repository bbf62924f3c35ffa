// ABOUTME: MCP server assembly
// ABOUTME: Registers lead tools, resources and prompts over a LeadService
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/smscrm/api"
)

// NewServer builds the MCP server. The caller picks the transport.
func NewServer(svc api.LeadService, version string) *mcp.Server {
	leadHandlers := NewLeadHandlers(svc)
	funnelHandlers := NewFunnelHandlers(svc)
	resourceHandlers := NewResourceHandlers(svc)
	promptHandlers := NewPromptHandlers(svc)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "smscrm",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_leads",
		Description: "List campaign leads, optionally filtered by status or a name/phone/email query",
	}, leadHandlers.ListLeads)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_lead",
		Description: "Create a new campaign lead (first name, last name and one phone are required)",
	}, leadHandlers.CreateLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_lead",
		Description: "Update a lead's fields or move it to a new status; only the given fields change",
	}, leadHandlers.UpdateLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_lead_note",
		Description: "Append a note to a lead's conversation history",
	}, leadHandlers.AddLeadNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "campaign_funnel",
		Description: "Summarise leads per status with stage-to-stage conversion",
	}, funnelHandlers.CampaignFunnel)

	server.AddResource(&mcp.Resource{
		URI:         ResourceLeads,
		Name:        "leads",
		Description: "All campaign leads with their notes",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: ResourceLeads + "/{id}",
		Name:        "lead",
		Description: "A single lead by id",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         ResourceFunnel,
		Name:        "funnel",
		Description: "Lead counts per status",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        PromptLeadFollowUp,
		Description: "Draft the next SMS follow-up for a lead",
		Arguments: []*mcp.PromptArgument{
			{Name: "lead_id", Description: "Lead ID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        PromptCampaignReview,
		Description: "Review the campaign funnel and suggest next steps",
	}, promptHandlers.GetPrompt)

	return server
}
