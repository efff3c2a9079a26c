// ABOUTME: Quotation MCP tool handlers
// ABOUTME: Implements create_quotation, create_revision, status updates, and version queries
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

type QuotationHandlers struct {
	db *sql.DB
}

func NewQuotationHandlers(database *sql.DB) *QuotationHandlers {
	return &QuotationHandlers{db: database}
}

type ServiceLineInput struct {
	Name        string `json:"name" jsonschema:"Service name (required)"`
	Description string `json:"description,omitempty" jsonschema:"Service description"`
	Quantity    int    `json:"quantity,omitempty" jsonschema:"Quantity (default 1)"`
	UnitPrice   int64  `json:"unit_price" jsonschema:"Unit price in cents"`
	Included    bool   `json:"included" jsonschema:"Whether the line counts toward the total"`
}

type ServiceLineOutput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	TotalPrice  int64  `json:"total_price"`
	Included    bool   `json:"included"`
}

type QuotationOutput struct {
	ID                 string              `json:"id"`
	QuotationNumber    string              `json:"quotation_number"`
	LeadID             string              `json:"lead_id"`
	CustomerName       string              `json:"customer_name"`
	CustomerType       string              `json:"customer_type"`
	Email              string              `json:"email"`
	ProblemDescription string              `json:"problem_description,omitempty"`
	SalesPerson        string              `json:"sales_person,omitempty"`
	EstimatedValue     int64               `json:"estimated_value"`
	Status             string              `json:"status"`
	Services           []ServiceLineOutput `json:"services"`
	ValidUntil         *string             `json:"valid_until,omitempty"`
	Notes              string              `json:"notes,omitempty"`
	ParentQuotationID  *string             `json:"parent_quotation_id,omitempty"`
	Version            int                 `json:"version"`
	IsLatestVersion    bool                `json:"is_latest_version"`
	RevisionReason     string              `json:"revision_reason,omitempty"`
	CreatedAt          string              `json:"created_at"`
}

type CreateQuotationInput struct {
	LeadID       string             `json:"lead_id" jsonschema:"Originating lead ID (required)"`
	CustomerName string             `json:"customer_name,omitempty" jsonschema:"Customer name (defaults to the lead's)"`
	Email        string             `json:"email,omitempty" jsonschema:"Customer email (defaults to the lead's)"`
	SalesPerson  string             `json:"sales_person,omitempty" jsonschema:"Assigned sales person"`
	Services     []ServiceLineInput `json:"services,omitempty" jsonschema:"Service lines"`
	ValidUntil   string             `json:"valid_until,omitempty" jsonschema:"Validity date in ISO 8601 format"`
	Notes        string             `json:"notes,omitempty" jsonschema:"Free-text notes"`
	PaymentTerms string             `json:"payment_terms,omitempty" jsonschema:"Payment terms"`
}

// CreateQuotation creates a root quotation without touching the lead's
// status. Most callers want convert_lead instead, which does both in one
// step.
func (h *QuotationHandlers) CreateQuotation(_ context.Context, request *mcp.CallToolRequest, input CreateQuotationInput) (*mcp.CallToolResult, QuotationOutput, error) {
	if input.LeadID == "" {
		return nil, QuotationOutput{}, fmt.Errorf("lead_id is required")
	}
	leadID, err := uuid.Parse(input.LeadID)
	if err != nil {
		return nil, QuotationOutput{}, fmt.Errorf("invalid lead_id: %w", err)
	}

	lead, err := db.GetLead(h.db, leadID)
	if err != nil {
		return nil, QuotationOutput{}, fmt.Errorf("failed to get lead: %w", err)
	}

	q := &models.Quotation{
		LeadID:             leadID,
		CustomerName:       input.CustomerName,
		Email:              input.Email,
		SalesPerson:        input.SalesPerson,
		Services:           serviceLinesFromInput(input.Services),
		Notes:              input.Notes,
		PaymentTerms:       input.PaymentTerms,
		CustomerType:       lead.CustomerType,
		Phone:              lead.Phone,
		Address:            lead.Address,
		ProblemDescription: lead.ProblemDescription,
	}
	if q.CustomerName == "" {
		q.CustomerName = lead.CustomerName
	}
	if q.Email == "" {
		q.Email = lead.Email
	}
	if q.SalesPerson == "" {
		q.SalesPerson = lead.SalesPerson
	}
	if input.ValidUntil != "" {
		parsed, err := time.Parse(time.RFC3339, input.ValidUntil)
		if err != nil {
			return nil, QuotationOutput{}, fmt.Errorf("invalid valid_until format (use ISO 8601/RFC3339): %w", err)
		}
		q.ValidUntil = &parsed
	}

	if err := db.CreateQuotation(h.db, q); err != nil {
		return nil, QuotationOutput{}, fmt.Errorf("failed to create quotation: %w", err)
	}

	return nil, quotationToOutput(q), nil
}

type CreateRevisionInput struct {
	QuotationID string             `json:"quotation_id" jsonschema:"Quotation ID to revise (required)"`
	Reason      string             `json:"reason" jsonschema:"Why the revision is being created (required)"`
	Services    []ServiceLineInput `json:"services,omitempty" jsonschema:"Replacement service lines"`
	ValidUntil  string             `json:"valid_until,omitempty" jsonschema:"New validity date in ISO 8601 format"`
	Notes       string             `json:"notes,omitempty" jsonschema:"New notes"`
}

func (h *QuotationHandlers) CreateRevision(_ context.Context, request *mcp.CallToolRequest, input CreateRevisionInput) (*mcp.CallToolResult, QuotationOutput, error) {
	if input.QuotationID == "" {
		return nil, QuotationOutput{}, fmt.Errorf("quotation_id is required")
	}
	if input.Reason == "" {
		return nil, QuotationOutput{}, fmt.Errorf("reason is required")
	}

	quotationID, err := uuid.Parse(input.QuotationID)
	if err != nil {
		return nil, QuotationOutput{}, fmt.Errorf("invalid quotation_id: %w", err)
	}

	changes := db.RevisionChanges{}
	if input.Services != nil {
		changes.Services = serviceLinesFromInput(input.Services)
	}
	if input.ValidUntil != "" {
		parsed, err := time.Parse(time.RFC3339, input.ValidUntil)
		if err != nil {
			return nil, QuotationOutput{}, fmt.Errorf("invalid valid_until format (use ISO 8601/RFC3339): %w", err)
		}
		changes.ValidUntil = &parsed
	}
	if input.Notes != "" {
		changes.Notes = &input.Notes
	}

	revision, err := db.CreateRevision(h.db, quotationID, input.Reason, changes)
	if err != nil {
		return nil, QuotationOutput{}, fmt.Errorf("failed to create revision: %w", err)
	}

	return nil, quotationToOutput(revision), nil
}

type QuotationStatusInput struct {
	ID string `json:"id" jsonschema:"Quotation ID (required)"`
}

func (h *QuotationHandlers) ApproveQuotation(_ context.Context, request *mcp.CallToolRequest, input QuotationStatusInput) (*mcp.CallToolResult, QuotationOutput, error) {
	return h.setStatus(input, models.QuotationApproved)
}

func (h *QuotationHandlers) RejectQuotation(_ context.Context, request *mcp.CallToolRequest, input QuotationStatusInput) (*mcp.CallToolResult, QuotationOutput, error) {
	return h.setStatus(input, models.QuotationRejected)
}

func (h *QuotationHandlers) setStatus(input QuotationStatusInput, status string) (*mcp.CallToolResult, QuotationOutput, error) {
	if input.ID == "" {
		return nil, QuotationOutput{}, fmt.Errorf("id is required")
	}
	quotationID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, QuotationOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	if err := db.UpdateQuotationStatus(h.db, quotationID, status); err != nil {
		return nil, QuotationOutput{}, fmt.Errorf("failed to update status: %w", err)
	}

	q, err := db.GetQuotation(h.db, quotationID)
	if err != nil {
		return nil, QuotationOutput{}, fmt.Errorf("failed to reload quotation: %w", err)
	}
	return nil, quotationToOutput(q), nil
}

type FindQuotationsInput struct {
	Query           string `json:"query,omitempty" jsonschema:"Search over customer name and problem description"`
	Status          string `json:"status,omitempty" jsonschema:"Filter by status: pending, approved, rejected, revised, or All"`
	SalesPerson     string `json:"sales_person,omitempty" jsonschema:"Filter to one sales person's quotations"`
	ShowAllVersions bool   `json:"show_all_versions,omitempty" jsonschema:"Include superseded versions"`
	Limit           int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 50)"`
}

type FindQuotationsOutput struct {
	Quotations []QuotationOutput `json:"quotations"`
	Count      int               `json:"count"`
}

func (h *QuotationHandlers) FindQuotations(_ context.Context, request *mcp.CallToolRequest, input FindQuotationsInput) (*mcp.CallToolResult, FindQuotationsOutput, error) {
	quotations, err := db.FindQuotations(h.db, db.QuotationFilter{
		Query:           input.Query,
		Status:          input.Status,
		SalesPerson:     input.SalesPerson,
		ShowAllVersions: input.ShowAllVersions,
		Limit:           input.Limit,
	})
	if err != nil {
		return nil, FindQuotationsOutput{}, fmt.Errorf("failed to find quotations: %w", err)
	}

	output := FindQuotationsOutput{Count: len(quotations)}
	for i := range quotations {
		output.Quotations = append(output.Quotations, quotationToOutput(&quotations[i]))
	}
	return nil, output, nil
}

type QuotationVersionsInput struct {
	QuotationID string `json:"quotation_id" jsonschema:"Any quotation ID in the family (required)"`
}

// GetQuotationVersions returns the full version history of a quotation
// family, ordered by version.
func (h *QuotationHandlers) GetQuotationVersions(_ context.Context, request *mcp.CallToolRequest, input QuotationVersionsInput) (*mcp.CallToolResult, FindQuotationsOutput, error) {
	if input.QuotationID == "" {
		return nil, FindQuotationsOutput{}, fmt.Errorf("quotation_id is required")
	}
	quotationID, err := uuid.Parse(input.QuotationID)
	if err != nil {
		return nil, FindQuotationsOutput{}, fmt.Errorf("invalid quotation_id: %w", err)
	}

	q, err := db.GetQuotation(h.db, quotationID)
	if err != nil {
		return nil, FindQuotationsOutput{}, fmt.Errorf("failed to get quotation: %w", err)
	}

	family, err := db.GetQuotationFamily(h.db, q.RootID())
	if err != nil {
		return nil, FindQuotationsOutput{}, fmt.Errorf("failed to get versions: %w", err)
	}

	output := FindQuotationsOutput{Count: len(family)}
	for i := range family {
		output.Quotations = append(output.Quotations, quotationToOutput(&family[i]))
	}
	return nil, output, nil
}

func serviceLinesFromInput(inputs []ServiceLineInput) []models.QuotationService {
	var services []models.QuotationService
	for _, in := range inputs {
		services = append(services, models.QuotationService{
			Name:        in.Name,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Included:    in.Included,
		})
	}
	return services
}

func quotationToOutput(q *models.Quotation) QuotationOutput {
	output := QuotationOutput{
		ID:                 q.ID.String(),
		QuotationNumber:    q.QuotationNumber,
		LeadID:             q.LeadID.String(),
		CustomerName:       q.CustomerName,
		CustomerType:       q.CustomerType,
		Email:              q.Email,
		ProblemDescription: q.ProblemDescription,
		SalesPerson:        q.SalesPerson,
		EstimatedValue:     q.EstimatedValue,
		Status:             q.Status,
		Notes:              q.Notes,
		Version:            q.Version,
		IsLatestVersion:    q.IsLatestVersion,
		RevisionReason:     q.RevisionReason,
		CreatedAt:          q.CreatedAt.Format(time.RFC3339),
	}
	for _, s := range q.Services {
		output.Services = append(output.Services, ServiceLineOutput{
			Name:        s.Name,
			Description: s.Description,
			Quantity:    s.Quantity,
			UnitPrice:   s.UnitPrice,
			TotalPrice:  s.TotalPrice,
			Included:    s.Included,
		})
	}
	if q.ValidUntil != nil {
		s := q.ValidUntil.Format(time.RFC3339)
		output.ValidUntil = &s
	}
	if q.ParentQuotationID != nil {
		s := q.ParentQuotationID.String()
		output.ParentQuotationID = &s
	}
	return output
}
