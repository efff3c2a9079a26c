// ABOUTME: Tests for lead MCP tool handlers
// ABOUTME: Validates tool input validation, conversion, and search output
package handlers

import (
	"context"
	"testing"
)

func TestAddLeadTool(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	lead := seedLead(t, database)

	if lead.ID == "" {
		t.Error("ID was not set")
	}
	if lead.Status != "lead" {
		t.Errorf("Expected status lead, got %s", lead.Status)
	}
	if lead.CustomerType != "Residential" {
		t.Errorf("Expected default Residential, got %s", lead.CustomerType)
	}
}

func TestAddLeadToolValidation(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	handler := NewLeadHandlers(database)
	_, _, err := handler.AddLead(context.Background(), nil, AddLeadInput{CustomerName: "No Contact Info"})
	if err == nil {
		t.Error("Expected error for missing email and phone")
	}
}

func TestUpdateLeadTool(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	lead := seedLead(t, database)
	handler := NewLeadHandlers(database)

	value := int64(90000)
	_, updated, err := handler.UpdateLead(context.Background(), nil, UpdateLeadInput{
		ID:             lead.ID,
		Priority:       "low",
		EstimatedValue: &value,
	})
	if err != nil {
		t.Fatalf("UpdateLead failed: %v", err)
	}

	if updated.Priority != "low" {
		t.Errorf("Expected priority low, got %s", updated.Priority)
	}
	if updated.EstimatedValue != 90000 {
		t.Errorf("Expected value 90000, got %d", updated.EstimatedValue)
	}
	// Untouched fields survive
	if updated.CustomerName != lead.CustomerName {
		t.Error("Customer name should be unchanged")
	}
}

func TestUpdateLeadToolInvalidID(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	handler := NewLeadHandlers(database)
	_, _, err := handler.UpdateLead(context.Background(), nil, UpdateLeadInput{ID: "not-a-uuid"})
	if err == nil {
		t.Error("Expected error for malformed ID")
	}
}

func TestFindLeadsTool(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	seedLead(t, database)
	handler := NewLeadHandlers(database)

	_, found, err := handler.FindLeads(context.Background(), nil, FindLeadsInput{Query: "termite"})
	if err != nil {
		t.Fatalf("FindLeads failed: %v", err)
	}
	if found.Count != 1 {
		t.Errorf("Expected 1 lead, got %d", found.Count)
	}
}

func TestConvertLeadTool(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	q := seedQuotation(t, database)

	if q.Version != 1 {
		t.Errorf("Expected version 1, got %d", q.Version)
	}
	if !q.IsLatestVersion {
		t.Error("First quotation should be the latest version")
	}
	if q.EstimatedValue != 47000 {
		t.Errorf("Expected total 47000, got %d", q.EstimatedValue)
	}
	if q.CustomerName != "Davis Family Home" {
		t.Error("Quotation should snapshot the lead's customer details")
	}

	// Lead advanced to quote
	handler := NewLeadHandlers(database)
	_, found, err := handler.FindLeads(context.Background(), nil, FindLeadsInput{Status: "quote"})
	if err != nil {
		t.Fatalf("FindLeads failed: %v", err)
	}
	if found.Count != 1 {
		t.Errorf("Expected 1 quoted lead, got %d", found.Count)
	}
}

func TestConvertLeadToolTwice(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	q := seedQuotation(t, database)
	handler := NewLeadHandlers(database)

	_, _, err := handler.ConvertLead(context.Background(), nil, ConvertLeadInput{LeadID: q.LeadID})
	if err == nil {
		t.Error("Expected error converting an already-quoted lead")
	}
}
