// ABOUTME: Tests for contract MCP tool handlers
// ABOUTME: Covers conversion gating and status updates through the tool layer
package handlers

import (
	"context"
	"testing"
)

func TestConvertToContractTool(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	q := seedQuotation(t, database)
	quotationHandler := NewQuotationHandlers(database)
	contractHandler := NewContractHandlers(database)

	if _, _, err := quotationHandler.ApproveQuotation(context.Background(), nil, QuotationStatusInput{ID: q.ID}); err != nil {
		t.Fatalf("ApproveQuotation failed: %v", err)
	}

	_, contract, err := contractHandler.ConvertToContract(context.Background(), nil, ConvertToContractInput{
		QuotationID:  q.ID,
		PaymentTerms: "Net 30",
	})
	if err != nil {
		t.Fatalf("ConvertToContract failed: %v", err)
	}

	if contract.Status != "active" {
		t.Errorf("Expected active contract, got %s", contract.Status)
	}
	if contract.TotalValue != q.EstimatedValue {
		t.Errorf("Expected value %d, got %d", q.EstimatedValue, contract.TotalValue)
	}
	if contract.QuotationID != q.ID {
		t.Error("Contract should reference its quotation")
	}
	if len(contract.Services) != 2 {
		t.Errorf("Expected 2 snapshotted services, got %d", len(contract.Services))
	}
}

func TestConvertToContractToolRequiresApproval(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	q := seedQuotation(t, database)
	handler := NewContractHandlers(database)

	_, _, err := handler.ConvertToContract(context.Background(), nil, ConvertToContractInput{QuotationID: q.ID})
	if err == nil {
		t.Error("Expected error converting a pending quotation")
	}
}

func TestUpdateContractStatusTool(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	q := seedQuotation(t, database)
	quotationHandler := NewQuotationHandlers(database)
	contractHandler := NewContractHandlers(database)

	if _, _, err := quotationHandler.ApproveQuotation(context.Background(), nil, QuotationStatusInput{ID: q.ID}); err != nil {
		t.Fatalf("ApproveQuotation failed: %v", err)
	}
	_, contract, err := contractHandler.ConvertToContract(context.Background(), nil, ConvertToContractInput{QuotationID: q.ID})
	if err != nil {
		t.Fatalf("ConvertToContract failed: %v", err)
	}

	_, paused, err := contractHandler.UpdateContractStatus(context.Background(), nil, UpdateContractStatusInput{
		ID:     contract.ID,
		Status: "paused",
	})
	if err != nil {
		t.Fatalf("UpdateContractStatus failed: %v", err)
	}
	if paused.Status != "paused" {
		t.Errorf("Expected paused, got %s", paused.Status)
	}

	_, _, err = contractHandler.UpdateContractStatus(context.Background(), nil, UpdateContractStatusInput{
		ID:     contract.ID,
		Status: "completed",
	})
	if err != nil {
		t.Fatalf("paused -> completed failed: %v", err)
	}

	_, _, err = contractHandler.UpdateContractStatus(context.Background(), nil, UpdateContractStatusInput{
		ID:     contract.ID,
		Status: "active",
	})
	if err == nil {
		t.Error("Expected error reactivating a completed contract")
	}
}
