// ABOUTME: Contract MCP tool handlers
// ABOUTME: Implements convert_to_contract, find_contracts, and update_contract_status
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

type ContractHandlers struct {
	db *sql.DB
}

func NewContractHandlers(database *sql.DB) *ContractHandlers {
	return &ContractHandlers{db: database}
}

type ContractOutput struct {
	ID             string              `json:"id"`
	ContractNumber string              `json:"contract_number"`
	QuotationID    string              `json:"quotation_id"`
	LeadID         string              `json:"lead_id"`
	CustomerName   string              `json:"customer_name"`
	CustomerType   string              `json:"customer_type"`
	Email          string              `json:"email"`
	SalesPerson    string              `json:"sales_person,omitempty"`
	Status         string              `json:"status"`
	StartDate      string              `json:"start_date"`
	EndDate        *string             `json:"end_date,omitempty"`
	TotalValue     int64               `json:"total_value"`
	Services       []ServiceLineOutput `json:"services"`
	PaymentTerms   string              `json:"payment_terms,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	CreatedAt      string              `json:"created_at"`
}

type ConvertToContractInput struct {
	QuotationID  string `json:"quotation_id" jsonschema:"Approved quotation ID to convert (required)"`
	StartDate    string `json:"start_date,omitempty" jsonschema:"Contract start date in ISO 8601 format (default now)"`
	EndDate      string `json:"end_date,omitempty" jsonschema:"Contract end date in ISO 8601 format"`
	PaymentTerms string `json:"payment_terms,omitempty" jsonschema:"Payment terms (defaults to the quotation's)"`
	Notes        string `json:"notes,omitempty" jsonschema:"Contract notes"`
}

func (h *ContractHandlers) ConvertToContract(_ context.Context, request *mcp.CallToolRequest, input ConvertToContractInput) (*mcp.CallToolResult, ContractOutput, error) {
	if input.QuotationID == "" {
		return nil, ContractOutput{}, fmt.Errorf("quotation_id is required")
	}
	quotationID, err := uuid.Parse(input.QuotationID)
	if err != nil {
		return nil, ContractOutput{}, fmt.Errorf("invalid quotation_id: %w", err)
	}

	terms := db.ContractTerms{PaymentTerms: input.PaymentTerms, Notes: input.Notes}
	if input.StartDate != "" {
		parsed, err := time.Parse(time.RFC3339, input.StartDate)
		if err != nil {
			return nil, ContractOutput{}, fmt.Errorf("invalid start_date format (use ISO 8601/RFC3339): %w", err)
		}
		terms.StartDate = parsed
	}
	if input.EndDate != "" {
		parsed, err := time.Parse(time.RFC3339, input.EndDate)
		if err != nil {
			return nil, ContractOutput{}, fmt.Errorf("invalid end_date format (use ISO 8601/RFC3339): %w", err)
		}
		terms.EndDate = &parsed
	}

	contract, err := db.ConvertQuotationToContract(h.db, quotationID, terms)
	if err != nil {
		return nil, ContractOutput{}, fmt.Errorf("failed to convert quotation: %w", err)
	}

	return nil, contractToOutput(contract), nil
}

type FindContractsInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status: active, paused, completed, cancelled, or All"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 50)"`
}

type FindContractsOutput struct {
	Contracts []ContractOutput `json:"contracts"`
	Count     int              `json:"count"`
}

func (h *ContractHandlers) FindContracts(_ context.Context, request *mcp.CallToolRequest, input FindContractsInput) (*mcp.CallToolResult, FindContractsOutput, error) {
	contracts, err := db.FindContracts(h.db, input.Status, input.Limit)
	if err != nil {
		return nil, FindContractsOutput{}, fmt.Errorf("failed to find contracts: %w", err)
	}

	output := FindContractsOutput{Count: len(contracts)}
	for i := range contracts {
		output.Contracts = append(output.Contracts, contractToOutput(&contracts[i]))
	}
	return nil, output, nil
}

type UpdateContractStatusInput struct {
	ID     string `json:"id" jsonschema:"Contract ID (required)"`
	Status string `json:"status" jsonschema:"New status: active, paused, completed, cancelled (required)"`
}

func (h *ContractHandlers) UpdateContractStatus(_ context.Context, request *mcp.CallToolRequest, input UpdateContractStatusInput) (*mcp.CallToolResult, ContractOutput, error) {
	if input.ID == "" {
		return nil, ContractOutput{}, fmt.Errorf("id is required")
	}
	if input.Status == "" {
		return nil, ContractOutput{}, fmt.Errorf("status is required")
	}
	contractID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, ContractOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	if err := db.UpdateContractStatus(h.db, contractID, input.Status); err != nil {
		return nil, ContractOutput{}, fmt.Errorf("failed to update status: %w", err)
	}

	contract, err := db.GetContract(h.db, contractID)
	if err != nil {
		return nil, ContractOutput{}, fmt.Errorf("failed to reload contract: %w", err)
	}
	return nil, contractToOutput(contract), nil
}

func contractToOutput(c *models.Contract) ContractOutput {
	output := ContractOutput{
		ID:             c.ID.String(),
		ContractNumber: c.ContractNumber,
		QuotationID:    c.QuotationID.String(),
		LeadID:         c.LeadID.String(),
		CustomerName:   c.CustomerName,
		CustomerType:   c.CustomerType,
		Email:          c.Email,
		SalesPerson:    c.SalesPerson,
		Status:         c.Status,
		StartDate:      c.StartDate.Format(time.RFC3339),
		TotalValue:     c.TotalValue,
		PaymentTerms:   c.PaymentTerms,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
	}
	for _, s := range c.Services {
		output.Services = append(output.Services, ServiceLineOutput{
			Name:        s.Name,
			Description: s.Description,
			Quantity:    s.Quantity,
			UnitPrice:   s.UnitPrice,
			TotalPrice:  s.TotalPrice,
			Included:    s.Included,
		})
	}
	if c.EndDate != nil {
		s := c.EndDate.Format(time.RFC3339)
		output.EndDate = &s
	}
	return output
}
