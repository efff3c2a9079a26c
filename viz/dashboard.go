// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides a sales pipeline overview for the CRM
package viz

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fieldworkhq/pestcrm/db"
	"github.com/fieldworkhq/pestcrm/models"
)

type DashboardStats struct {
	// Pipeline overview, latest quotation versions only
	PipelineByStatus map[string]PipelineStatusStats

	// Overall stats
	TotalLeads      int
	TotalQuotations int
	TotalContracts  int

	// Conversion funnel counts by lead status
	FunnelLeads     int
	FunnelQuotes    int
	FunnelContracts int

	// Quote success rate: approved / (approved + rejected)
	QuoteSuccessRate float64

	// New leads and quotations per month, oldest first, last six months
	Monthly []MonthlyCount

	// Needs attention
	StaleLeads         []StaleLead
	UpcomingActivities []models.LeadActivity
}

type PipelineStatusStats struct {
	Status string
	Count  int
	Amount int64 // in cents
}

type StaleLead struct {
	Name      string
	DaysSince int
}

type MonthlyCount struct {
	Month      string // "2026-01"
	Leads      int
	Quotations int
}

func GenerateDashboardStats(database *sql.DB) (*DashboardStats, error) {
	stats := &DashboardStats{
		PipelineByStatus: make(map[string]PipelineStatusStats),
	}

	leads, err := db.FindLeads(database, db.LeadFilter{Status: "All", Priority: "All", Limit: 10000})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	stats.TotalLeads = len(leads)

	for _, lead := range leads {
		switch lead.Status {
		case models.LeadStatusLead:
			stats.FunnelLeads++
		case models.LeadStatusQuote:
			stats.FunnelQuotes++
		case models.LeadStatusContract:
			stats.FunnelContracts++
		}
	}

	quotations, err := db.FindQuotations(database, db.QuotationFilter{Status: "All", Limit: 10000})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotations: %w", err)
	}
	stats.TotalQuotations = len(quotations)

	approved, rejected := 0, 0
	for _, q := range quotations {
		pstats := stats.PipelineByStatus[q.Status]
		pstats.Status = q.Status
		pstats.Count++
		pstats.Amount += q.Total
		stats.PipelineByStatus[q.Status] = pstats

		switch q.Status {
		case models.QuotationApproved:
			approved++
		case models.QuotationRejected:
			rejected++
		}
	}
	if approved+rejected > 0 {
		stats.QuoteSuccessRate = float64(approved) / float64(approved+rejected)
	}

	contracts, err := db.FindContracts(database, "All", 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contracts: %w", err)
	}
	stats.TotalContracts = len(contracts)

	// Stale leads: still unquoted and no contact in 14+ days
	now := time.Now()
	for _, lead := range leads {
		if lead.Status != models.LeadStatusLead {
			continue
		}
		since := lead.CreatedAt
		if lead.LastContactAt != nil {
			since = *lead.LastContactAt
		}
		daysSince := int(now.Sub(since).Hours() / 24)
		if daysSince >= 14 {
			stats.StaleLeads = append(stats.StaleLeads, StaleLead{
				Name:      lead.CustomerName,
				DaysSince: daysSince,
			})
		}
	}

	stats.UpcomingActivities, err = db.FindScheduledActivities(database, now, now.AddDate(0, 0, 7))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}

	stats.Monthly = monthlyCounts(leads, quotations, now)

	return stats, nil
}

// monthlyCounts buckets lead and quotation creation into the last six
// calendar months, oldest first.
func monthlyCounts(leads []models.Lead, quotations []models.Quotation, now time.Time) []MonthlyCount {
	byMonth := make(map[string]*MonthlyCount)
	var months []string
	for i := 5; i >= 0; i-- {
		m := now.AddDate(0, -i, 0).Format("2006-01")
		byMonth[m] = &MonthlyCount{Month: m}
		months = append(months, m)
	}

	for _, lead := range leads {
		if c, ok := byMonth[lead.CreatedAt.Format("2006-01")]; ok {
			c.Leads++
		}
	}
	for _, q := range quotations {
		if c, ok := byMonth[q.CreatedAt.Format("2006-01")]; ok {
			c.Quotations++
		}
	}

	counts := make([]MonthlyCount, 0, len(months))
	for _, m := range months {
		counts = append(counts, *byMonth[m])
	}
	return counts
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString(headerStyle.Render("  PEST CONTROL CRM DASHBOARD") + "\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString(sectionStyle.Render("QUOTE PIPELINE") + "\n")
	renderPipeline(&out, stats.PipelineByStatus)
	out.WriteString("\n")

	if len(stats.Monthly) > 0 {
		out.WriteString(sectionStyle.Render("LAST 6 MONTHS") + "\n")
		for _, m := range stats.Monthly {
			out.WriteString(fmt.Sprintf("  %s  %2d leads  %2d quotes\n", m.Month, m.Leads, m.Quotations))
		}
		out.WriteString("\n")
	}

	out.WriteString(sectionStyle.Render("FUNNEL") + "\n")
	out.WriteString(fmt.Sprintf("  leads %d → quoted %d → contracted %d\n\n",
		stats.FunnelLeads, stats.FunnelQuotes, stats.FunnelContracts))

	out.WriteString(sectionStyle.Render("STATS") + "\n")
	out.WriteString(fmt.Sprintf("  📋 %d leads  📄 %d quotations  📝 %d contracts",
		stats.TotalLeads, stats.TotalQuotations, stats.TotalContracts))
	if stats.QuoteSuccessRate > 0 {
		out.WriteString(fmt.Sprintf("  ✅ %.0f%% quote success", stats.QuoteSuccessRate*100))
	}
	out.WriteString("\n\n")

	if len(stats.UpcomingActivities) > 0 {
		out.WriteString(sectionStyle.Render("THIS WEEK") + "\n")
		for _, a := range stats.UpcomingActivities {
			out.WriteString(fmt.Sprintf("  %s  %s (%s)\n",
				a.ScheduledDate.Format("Mon Jan 2"), a.Description, a.Agenda))
		}
		out.WriteString("\n")
	}

	if len(stats.StaleLeads) > 0 {
		out.WriteString(sectionStyle.Render("NEEDS ATTENTION") + "\n")
		out.WriteString(warnStyle.Render(fmt.Sprintf("  ⚠️  %d leads with no contact in 14+ days", len(stats.StaleLeads))) + "\n")
		for _, s := range stats.StaleLeads {
			out.WriteString(fmt.Sprintf("     %s (%d days)\n", s.Name, s.DaysSince))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, pipeline map[string]PipelineStatusStats) {
	statuses := []string{
		models.QuotationPending,
		models.QuotationApproved,
		models.QuotationRejected,
		models.QuotationRevised,
	}

	maxCount := 0
	for _, pstats := range pipeline {
		if pstats.Count > maxCount {
			maxCount = pstats.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, status := range statuses {
		pstats, exists := pipeline[status]
		if !exists {
			continue
		}

		barLength := (pstats.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-10s %s  %2d ($%d)\n",
			status, bar, pstats.Count, pstats.Amount/100))
	}
}
