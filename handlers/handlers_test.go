// ABOUTME: Shared test setup for MCP tool handlers
// ABOUTME: Provides a temp sqlite database and seed helpers
package handlers

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/fieldworkhq/pestcrm/db"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return database
}

func seedLead(t *testing.T, database *sql.DB) LeadOutput {
	t.Helper()
	handler := NewLeadHandlers(database)
	_, lead, err := handler.AddLead(context.Background(), nil, AddLeadInput{
		CustomerName:       "Davis Family Home",
		Email:              "davis@example.com",
		Phone:              "555-0101",
		ProblemDescription: "Termites in the back deck",
		Priority:           "high",
	})
	if err != nil {
		t.Fatalf("AddLead failed: %v", err)
	}
	return lead
}

func seedQuotation(t *testing.T, database *sql.DB) QuotationOutput {
	t.Helper()
	lead := seedLead(t, database)
	handler := NewLeadHandlers(database)
	_, q, err := handler.ConvertLead(context.Background(), nil, ConvertLeadInput{
		LeadID: lead.ID,
		Services: []ServiceLineInput{
			{Name: "Initial Inspection", UnitPrice: 12000, Included: true},
			{Name: "Termite Treatment", UnitPrice: 35000, Included: true},
		},
	})
	if err != nil {
		t.Fatalf("ConvertLead failed: %v", err)
	}
	return q
}
