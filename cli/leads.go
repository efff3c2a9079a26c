// ABOUTME: Lead CLI commands
// ABOUTME: Human-friendly commands for capturing and working leads
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/db"
	"github.com/fieldworkhq/pestcrm/models"
)

// AddLeadCommand captures a new lead.
func AddLeadCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-lead", flag.ExitOnError)
	name := fs.String("name", "", "Customer name (required)")
	customerType := fs.String("type", models.CustomerResidential, "Customer type (Residential, Commercial)")
	email := fs.String("email", "", "Email address (required)")
	phone := fs.String("phone", "", "Phone number (required)")
	address := fs.String("address", "", "Service address")
	problem := fs.String("problem", "", "Pest problem description")
	priority := fs.String("priority", models.PriorityMedium, "Priority (low, medium, high)")
	value := fs.Int64("value", 0, "Estimated value in cents")
	salesPerson := fs.String("sales", "", "Assigned sales person")
	source := fs.String("source", "", "Lead source")
	services := fs.String("services", "", "Requested services, comma separated")
	notes := fs.String("notes", "", "Initial notes")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	if *email == "" {
		return fmt.Errorf("--email is required")
	}
	if *phone == "" {
		return fmt.Errorf("--phone is required")
	}

	lead := &models.Lead{
		CustomerName:       *name,
		CustomerType:       *customerType,
		Email:              *email,
		Phone:              *phone,
		Address:            *address,
		ProblemDescription: *problem,
		Priority:           *priority,
		EstimatedValue:     *value,
		SalesPerson:        *salesPerson,
		LeadSource:         *source,
		Notes:              *notes,
	}
	if *services != "" {
		for _, s := range strings.Split(*services, ",") {
			lead.Services = append(lead.Services, strings.TrimSpace(s))
		}
	}

	if err := db.CreateLead(database, lead); err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	fmt.Printf("✓ Lead created: %s (ID: %s)\n", lead.CustomerName, lead.ID)
	fmt.Printf("  Priority: %s\n", lead.Priority)
	if lead.EstimatedValue > 0 {
		fmt.Printf("  Estimated value: $%.2f\n", float64(lead.EstimatedValue)/100.0)
	}
	return nil
}

// ListLeadsCommand lists leads with optional filters.
func ListLeadsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-leads", flag.ExitOnError)
	query := fs.String("q", "", "Search customer name and problem description")
	status := fs.String("status", "", "Filter by status (lead, quote, contract, All)")
	priority := fs.String("priority", "", "Filter by priority (low, medium, high, All)")
	salesPerson := fs.String("sales", "", "Filter by sales person")
	sortBy := fs.String("sort", "", "Sort by: created, value, priority")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	leads, err := db.FindLeads(database, db.LeadFilter{
		Query:       *query,
		Status:      *status,
		Priority:    *priority,
		SalesPerson: *salesPerson,
		SortBy:      *sortBy,
		Limit:       *limit,
	})
	if err != nil {
		return fmt.Errorf("failed to find leads: %w", err)
	}

	if len(leads) == 0 {
		fmt.Println("No leads found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CUSTOMER\tPRIORITY\tSTATUS\tVALUE\tLAST CONTACT\tID")
	_, _ = fmt.Fprintln(w, "--------\t--------\t------\t-----\t------------\t--")

	for _, lead := range leads {
		lastContact := "never"
		if lead.LastContactAt != nil {
			lastContact = lead.LastContactAt.Format("2006-01-02")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t$%.2f\t%s\t%s\n",
			lead.CustomerName, lead.Priority, lead.Status,
			float64(lead.EstimatedValue)/100.0, lastContact, lead.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d lead(s)\n", len(leads))
	return nil
}

// ConvertLeadCommand turns a lead into its first quotation.
func ConvertLeadCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("convert-lead", flag.ExitOnError)
	services := fs.String("services", "", "Service lines as name=cents pairs, comma separated (e.g. 'Inspection=12000,Treatment=35000')")
	validDays := fs.Int("valid-days", 30, "Days the quotation stays valid")
	notes := fs.String("notes", "", "Quotation notes")
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: convert-lead [flags] <lead-id>")
	}
	leadID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid lead ID: %w", err)
	}

	lines, err := parseServiceLines(*services)
	if err != nil {
		return err
	}

	validUntil := time.Now().AddDate(0, 0, *validDays)
	q := &models.Quotation{
		Services:   lines,
		ValidUntil: &validUntil,
		Notes:      *notes,
	}
	if err := db.ConvertLeadToQuotation(database, leadID, q); err != nil {
		return fmt.Errorf("failed to convert lead: %w", err)
	}

	fmt.Printf("✓ Quotation created: %s (ID: %s)\n", q.QuotationNumber, q.ID)
	fmt.Printf("  Customer: %s\n", q.CustomerName)
	fmt.Printf("  Total: $%.2f\n", float64(q.Total)/100.0)
	return nil
}

// parseServiceLines parses "name=cents,name=cents" into included service lines.
func parseServiceLines(spec string) ([]models.QuotationService, error) {
	if spec == "" {
		return nil, nil
	}
	var lines []models.QuotationService
	for _, part := range strings.Split(spec, ",") {
		name, price, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("invalid service %q (expected name=cents)", part)
		}
		var cents int64
		if _, err := fmt.Sscanf(price, "%d", &cents); err != nil {
			return nil, fmt.Errorf("invalid price in %q: %w", part, err)
		}
		lines = append(lines, models.QuotationService{
			Name:      strings.TrimSpace(name),
			Quantity:  1,
			UnitPrice: cents,
			Included:  true,
		})
	}
	return lines, nil
}
