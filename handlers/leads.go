// ABOUTME: Lead MCP tool handlers
// ABOUTME: Implements add_lead, update_lead, find_leads, and convert_lead tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fieldworkhq/pestcrm/db"
	"github.com/fieldworkhq/pestcrm/models"
)

type LeadHandlers struct {
	db *sql.DB
}

func NewLeadHandlers(database *sql.DB) *LeadHandlers {
	return &LeadHandlers{db: database}
}

type AddLeadInput struct {
	CustomerName       string   `json:"customer_name" jsonschema:"Customer name (required)"`
	CustomerType       string   `json:"customer_type,omitempty" jsonschema:"Residential or Commercial (default Residential)"`
	Email              string   `json:"email" jsonschema:"Email address (required)"`
	Phone              string   `json:"phone" jsonschema:"Phone number (required)"`
	Address            string   `json:"address,omitempty" jsonschema:"Service address"`
	ProblemDescription string   `json:"problem_description,omitempty" jsonschema:"Description of the pest problem"`
	Priority           string   `json:"priority,omitempty" jsonschema:"Priority: low, medium, high (default medium)"`
	EstimatedValue     int64    `json:"estimated_value,omitempty" jsonschema:"Estimated value in cents"`
	SalesPerson        string   `json:"sales_person,omitempty" jsonschema:"Assigned sales person"`
	LeadSource         string   `json:"lead_source,omitempty" jsonschema:"How the lead arrived (default Website Form)"`
	Services           []string `json:"services,omitempty" jsonschema:"Requested service names"`
	Notes              string   `json:"notes,omitempty" jsonschema:"Free-text notes"`
}

type LeadOutput struct {
	ID                 string   `json:"id"`
	CustomerName       string   `json:"customer_name"`
	CustomerType       string   `json:"customer_type"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	Address            string   `json:"address,omitempty"`
	ProblemDescription string   `json:"problem_description,omitempty"`
	Priority           string   `json:"priority"`
	Status             string   `json:"status"`
	EstimatedValue     int64    `json:"estimated_value"`
	SalesPerson        string   `json:"sales_person,omitempty"`
	LeadSource         string   `json:"lead_source,omitempty"`
	Services           []string `json:"services,omitempty"`
	LastContactAt      *string  `json:"last_contact_at,omitempty"`
	CreatedAt          string   `json:"created_at"`
}

func (h *LeadHandlers) AddLead(_ context.Context, request *mcp.CallToolRequest, input AddLeadInput) (*mcp.CallToolResult, LeadOutput, error) {
	lead := &models.Lead{
		CustomerName:       input.CustomerName,
		CustomerType:       input.CustomerType,
		Email:              input.Email,
		Phone:              input.Phone,
		Address:            input.Address,
		ProblemDescription: input.ProblemDescription,
		Priority:           input.Priority,
		EstimatedValue:     input.EstimatedValue,
		SalesPerson:        input.SalesPerson,
		LeadSource:         input.LeadSource,
		Services:           input.Services,
		Notes:              input.Notes,
	}

	if err := db.CreateLead(h.db, lead); err != nil {
		return nil, LeadOutput{}, fmt.Errorf("failed to create lead: %w", err)
	}

	return nil, leadToOutput(lead), nil
}

type UpdateLeadInput struct {
	ID             string   `json:"id" jsonschema:"Lead ID (required)"`
	CustomerName   string   `json:"customer_name,omitempty" jsonschema:"Updated customer name"`
	Email          string   `json:"email,omitempty" jsonschema:"Updated email"`
	Phone          string   `json:"phone,omitempty" jsonschema:"Updated phone"`
	Address        string   `json:"address,omitempty" jsonschema:"Updated address"`
	Priority       string   `json:"priority,omitempty" jsonschema:"Updated priority"`
	EstimatedValue *int64   `json:"estimated_value,omitempty" jsonschema:"Updated estimated value in cents"`
	SalesPerson    string   `json:"sales_person,omitempty" jsonschema:"Updated sales person"`
	Services       []string `json:"services,omitempty" jsonschema:"Updated requested services"`
	Notes          string   `json:"notes,omitempty" jsonschema:"Updated notes"`
}

func (h *LeadHandlers) UpdateLead(_ context.Context, request *mcp.CallToolRequest, input UpdateLeadInput) (*mcp.CallToolResult, LeadOutput, error) {
	if input.ID == "" {
		return nil, LeadOutput{}, fmt.Errorf("id is required")
	}

	leadID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, LeadOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	lead, err := db.GetLead(h.db, leadID)
	if err != nil {
		return nil, LeadOutput{}, fmt.Errorf("failed to get lead: %w", err)
	}

	if input.CustomerName != "" {
		lead.CustomerName = input.CustomerName
	}
	if input.Email != "" {
		lead.Email = input.Email
	}
	if input.Phone != "" {
		lead.Phone = input.Phone
	}
	if input.Address != "" {
		lead.Address = input.Address
	}
	if input.Priority != "" {
		lead.Priority = input.Priority
	}
	if input.EstimatedValue != nil {
		lead.EstimatedValue = *input.EstimatedValue
	}
	if input.SalesPerson != "" {
		lead.SalesPerson = input.SalesPerson
	}
	if input.Services != nil {
		lead.Services = input.Services
	}
	if input.Notes != "" {
		lead.Notes = input.Notes
	}

	if err := db.UpdateLead(h.db, lead); err != nil {
		return nil, LeadOutput{}, fmt.Errorf("failed to update lead: %w", err)
	}

	return nil, leadToOutput(lead), nil
}

type FindLeadsInput struct {
	Query       string `json:"query,omitempty" jsonschema:"Search over customer name and problem description"`
	Status      string `json:"status,omitempty" jsonschema:"Filter by status: lead, quote, contract, or All"`
	Priority    string `json:"priority,omitempty" jsonschema:"Filter by priority: low, medium, high, or All"`
	SalesPerson string `json:"sales_person,omitempty" jsonschema:"Filter to one sales person's leads"`
	SortBy      string `json:"sort_by,omitempty" jsonschema:"Sort: created (default), value, priority"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 50)"`
}

type FindLeadsOutput struct {
	Leads []LeadOutput `json:"leads"`
	Count int          `json:"count"`
}

func (h *LeadHandlers) FindLeads(_ context.Context, request *mcp.CallToolRequest, input FindLeadsInput) (*mcp.CallToolResult, FindLeadsOutput, error) {
	leads, err := db.FindLeads(h.db, db.LeadFilter{
		Query:       input.Query,
		Status:      input.Status,
		Priority:    input.Priority,
		SalesPerson: input.SalesPerson,
		SortBy:      input.SortBy,
		Limit:       input.Limit,
	})
	if err != nil {
		return nil, FindLeadsOutput{}, fmt.Errorf("failed to find leads: %w", err)
	}

	output := FindLeadsOutput{Count: len(leads)}
	for i := range leads {
		output.Leads = append(output.Leads, leadToOutput(&leads[i]))
	}
	return nil, output, nil
}

type ConvertLeadInput struct {
	LeadID     string             `json:"lead_id" jsonschema:"Lead ID to convert (required)"`
	Services   []ServiceLineInput `json:"services,omitempty" jsonschema:"Quotation service lines"`
	ValidUntil string             `json:"valid_until,omitempty" jsonschema:"Quotation validity date in ISO 8601 format"`
	Notes      string             `json:"notes,omitempty" jsonschema:"Quotation notes"`
}

func (h *LeadHandlers) ConvertLead(_ context.Context, request *mcp.CallToolRequest, input ConvertLeadInput) (*mcp.CallToolResult, QuotationOutput, error) {
	if input.LeadID == "" {
		return nil, QuotationOutput{}, fmt.Errorf("lead_id is required")
	}

	leadID, err := uuid.Parse(input.LeadID)
	if err != nil {
		return nil, QuotationOutput{}, fmt.Errorf("invalid lead_id: %w", err)
	}

	q := &models.Quotation{
		Services: serviceLinesFromInput(input.Services),
		Notes:    input.Notes,
	}
	if input.ValidUntil != "" {
		parsed, err := time.Parse(time.RFC3339, input.ValidUntil)
		if err != nil {
			return nil, QuotationOutput{}, fmt.Errorf("invalid valid_until format (use ISO 8601/RFC3339): %w", err)
		}
		q.ValidUntil = &parsed
	}

	if err := db.ConvertLeadToQuotation(h.db, leadID, q); err != nil {
		return nil, QuotationOutput{}, fmt.Errorf("failed to convert lead: %w", err)
	}

	return nil, quotationToOutput(q), nil
}

func leadToOutput(lead *models.Lead) LeadOutput {
	output := LeadOutput{
		ID:                 lead.ID.String(),
		CustomerName:       lead.CustomerName,
		CustomerType:       lead.CustomerType,
		Email:              lead.Email,
		Phone:              lead.Phone,
		Address:            lead.Address,
		ProblemDescription: lead.ProblemDescription,
		Priority:           lead.Priority,
		Status:             lead.Status,
		EstimatedValue:     lead.EstimatedValue,
		SalesPerson:        lead.SalesPerson,
		LeadSource:         lead.LeadSource,
		Services:           lead.Services,
		CreatedAt:          lead.CreatedAt.Format(time.RFC3339),
	}
	if lead.LastContactAt != nil {
		s := lead.LastContactAt.Format(time.RFC3339)
		output.LastContactAt = &s
	}
	return output
}
