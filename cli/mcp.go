// ABOUTME: MCP server subcommand
// ABOUTME: Exposes the CRM as tools over stdio for assistant integration
package cli

import (
	"context"
	"database/sql"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fieldworkhq/pestcrm/handlers"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(db *sql.DB) error {
	log.Println("Starting Pest CRM MCP Server...")

	leadHandlers := handlers.NewLeadHandlers(db)
	quotationHandlers := handlers.NewQuotationHandlers(db)
	contractHandlers := handlers.NewContractHandlers(db)
	activityHandlers := handlers.NewActivityHandlers(db)
	userHandlers := handlers.NewUserHandlers(db)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "pestcrm",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_lead",
		Description: "Capture a new sales lead with customer and pest problem details",
	}, leadHandlers.AddLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_lead",
		Description: "Update an existing lead's contact details, priority, or notes",
	}, leadHandlers.UpdateLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_leads",
		Description: "Search leads by name or problem, with status, priority, and sales person filters",
	}, leadHandlers.FindLeads)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert_lead",
		Description: "Convert a lead into its first quotation and advance the lead to quote status",
	}, leadHandlers.ConvertLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_quotation",
		Description: "Create a quotation for a lead without changing the lead's status",
	}, quotationHandlers.CreateQuotation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_quotations",
		Description: "Search quotations, latest versions only unless show_all_versions is set",
	}, quotationHandlers.FindQuotations)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_quotation_versions",
		Description: "Get the full version history of a quotation family",
	}, quotationHandlers.GetQuotationVersions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_revision",
		Description: "Supersede a quotation with a new version, keeping prior versions immutable",
	}, quotationHandlers.CreateRevision)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "approve_quotation",
		Description: "Mark a pending quotation approved, making it eligible for contract conversion",
	}, quotationHandlers.ApproveQuotation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reject_quotation",
		Description: "Mark a pending quotation rejected",
	}, quotationHandlers.RejectQuotation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert_to_contract",
		Description: "Convert an approved quotation into an active contract",
	}, contractHandlers.ConvertToContract)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contracts",
		Description: "List contracts with an optional status filter",
	}, contractHandlers.FindContracts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contract_status",
		Description: "Move a contract between active, paused, completed, and cancelled",
	}, contractHandlers.UpdateContractStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_activity",
		Description: "Log a call, email, meeting, or note against a lead and refresh its last contact",
	}, activityHandlers.LogActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_activity",
		Description: "Mark a scheduled activity done",
	}, activityHandlers.CompleteActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_lead_activities",
		Description: "Get a lead's activity timeline, newest first",
	}, activityHandlers.GetLeadActivities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_schedule",
		Description: "List scheduled activities over the coming days, soonest first",
	}, activityHandlers.GetSchedule)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_user",
		Description: "Add a team member",
	}, userHandlers.AddUser)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_users",
		Description: "List team members with optional role and active filters",
	}, userHandlers.FindUsers)

	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
