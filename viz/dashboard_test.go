// ABOUTME: Tests for dashboard statistics
// ABOUTME: Covers pipeline rollups, funnel counts, and stale lead detection
package viz

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldworkhq/pestcrm/db"
	"github.com/fieldworkhq/pestcrm/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return database
}

func seedPipeline(t *testing.T, database *sql.DB) *models.Quotation {
	t.Helper()
	lead := &models.Lead{
		CustomerName:       "Davis Family Home",
		Email:              "davis@example.com",
		Phone:              "555-0101",
		ProblemDescription: "Termites in the back deck",
		Priority:           models.PriorityHigh,
	}
	require.NoError(t, db.CreateLead(database, lead))

	q := &models.Quotation{
		Services: []models.QuotationService{
			{Name: "Initial Inspection", Quantity: 1, UnitPrice: 12000, Included: true},
			{Name: "Termite Treatment", Quantity: 1, UnitPrice: 35000, Included: true},
		},
	}
	require.NoError(t, db.ConvertLeadToQuotation(database, lead.ID, q))
	return q
}

func TestGenerateDashboardStats(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	q := seedPipeline(t, database)

	stats, err := GenerateDashboardStats(database)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalLeads)
	assert.Equal(t, 1, stats.TotalQuotations)
	assert.Equal(t, 0, stats.TotalContracts)
	assert.Equal(t, 1, stats.FunnelQuotes)
	assert.Equal(t, 0, stats.FunnelLeads)

	pending := stats.PipelineByStatus[models.QuotationPending]
	assert.Equal(t, 1, pending.Count)
	assert.Equal(t, q.Total, pending.Amount)
}

func TestDashboardStatsSuccessRate(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	q := seedPipeline(t, database)
	require.NoError(t, db.UpdateQuotationStatus(database, q.ID, models.QuotationApproved))

	stats, err := GenerateDashboardStats(database)
	require.NoError(t, err)

	assert.Equal(t, 1.0, stats.QuoteSuccessRate)
}

func TestDashboardStatsFreshLeadsNotStale(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	lead := &models.Lead{
		CustomerName: "Fresh Lead",
		Email:        "fresh@example.com",
		Phone:        "555-0102",
	}
	require.NoError(t, db.CreateLead(database, lead))

	stats, err := GenerateDashboardStats(database)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FunnelLeads)
	assert.Empty(t, stats.StaleLeads)
}

func TestRenderDashboard(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	seedPipeline(t, database)

	stats, err := GenerateDashboardStats(database)
	require.NoError(t, err)

	out := RenderDashboard(stats)
	assert.Contains(t, out, "QUOTE PIPELINE")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "1 quotations")
}
