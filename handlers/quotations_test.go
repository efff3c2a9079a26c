// ABOUTME: Tests for quotation MCP tool handlers
// ABOUTME: Covers revisions, version history, and approval flow through the tool layer
package handlers

import (
	"context"
	"testing"
)

func TestCreateRevisionTool(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	q := seedQuotation(t, database)
	handler := NewQuotationHandlers(database)

	_, revision, err := handler.CreateRevision(context.Background(), nil, CreateRevisionInput{
		QuotationID: q.ID,
		Reason:      "Customer declined the treatment",
		Services: []ServiceLineInput{
			{Name: "Initial Inspection", UnitPrice: 12000, Included: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	if revision.Version != 2 {
		t.Errorf("Expected version 2, got %d", revision.Version)
	}
	if revision.EstimatedValue != 12000 {
		t.Errorf("Expected total 12000, got %d", revision.EstimatedValue)
	}
	if revision.Status != "pending" {
		t.Errorf("Revision should reset to pending, got %s", revision.Status)
	}
	if revision.ParentQuotationID == nil || *revision.ParentQuotationID != q.ID {
		t.Error("Revision should point at the root quotation")
	}
}

func TestCreateRevisionToolRequiresReason(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	q := seedQuotation(t, database)
	handler := NewQuotationHandlers(database)

	_, _, err := handler.CreateRevision(context.Background(), nil, CreateRevisionInput{QuotationID: q.ID})
	if err == nil {
		t.Error("Expected error for missing reason")
	}
}

func TestGetQuotationVersionsTool(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	q := seedQuotation(t, database)
	handler := NewQuotationHandlers(database)

	_, rev, err := handler.CreateRevision(context.Background(), nil, CreateRevisionInput{
		QuotationID: q.ID,
		Reason:      "Price negotiation",
	})
	if err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	// Asking via the revision resolves the same family
	_, history, err := handler.GetQuotationVersions(context.Background(), nil, QuotationVersionsInput{QuotationID: rev.ID})
	if err != nil {
		t.Fatalf("GetQuotationVersions failed: %v", err)
	}
	if history.Count != 2 {
		t.Fatalf("Expected 2 versions, got %d", history.Count)
	}
	if history.Quotations[0].Version != 1 || history.Quotations[1].Version != 2 {
		t.Error("Expected version-ordered history")
	}
	if history.Quotations[0].IsLatestVersion {
		t.Error("Superseded version should not be marked latest")
	}
}

func TestApproveAndRejectTools(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	q := seedQuotation(t, database)
	handler := NewQuotationHandlers(database)

	_, approved, err := handler.ApproveQuotation(context.Background(), nil, QuotationStatusInput{ID: q.ID})
	if err != nil {
		t.Fatalf("ApproveQuotation failed: %v", err)
	}
	if approved.Status != "approved" {
		t.Errorf("Expected approved, got %s", approved.Status)
	}

	// Approved quotations cannot be rejected
	_, _, err = handler.RejectQuotation(context.Background(), nil, QuotationStatusInput{ID: q.ID})
	if err == nil {
		t.Error("Expected error rejecting an approved quotation")
	}
}

func TestFindQuotationsToolLatestOnly(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	q := seedQuotation(t, database)
	handler := NewQuotationHandlers(database)

	if _, _, err := handler.CreateRevision(context.Background(), nil, CreateRevisionInput{
		QuotationID: q.ID,
		Reason:      "Scope change",
	}); err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	_, latest, err := handler.FindQuotations(context.Background(), nil, FindQuotationsInput{})
	if err != nil {
		t.Fatalf("FindQuotations failed: %v", err)
	}
	if latest.Count != 1 {
		t.Errorf("Expected 1 latest quotation, got %d", latest.Count)
	}

	_, all, err := handler.FindQuotations(context.Background(), nil, FindQuotationsInput{ShowAllVersions: true})
	if err != nil {
		t.Fatalf("FindQuotations failed: %v", err)
	}
	if all.Count != 2 {
		t.Errorf("Expected 2 versions, got %d", all.Count)
	}
}

func TestCreateQuotationToolUnknownLead(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	handler := NewQuotationHandlers(database)
	_, _, err := handler.CreateQuotation(context.Background(), nil, CreateQuotationInput{
		LeadID: "c56a4180-65aa-42ec-a945-5fd21dec0538",
	})
	if err == nil {
		t.Error("Expected error for unknown lead")
	}
}
