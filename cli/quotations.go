// ABOUTME: Quotation CLI commands
// ABOUTME: Listing, version history, revision, and approval workflows
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/db"
	"github.com/fieldworkhq/pestcrm/models"
)

// ListQuotationsCommand lists quotations, latest versions by default.
func ListQuotationsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-quotes", flag.ExitOnError)
	query := fs.String("q", "", "Search customer name and problem description")
	status := fs.String("status", "", "Filter by status (pending, approved, rejected, revised, All)")
	salesPerson := fs.String("sales", "", "Filter by sales person")
	allVersions := fs.Bool("all-versions", false, "Include superseded versions")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	quotations, err := db.FindQuotations(database, db.QuotationFilter{
		Query:           *query,
		Status:          *status,
		SalesPerson:     *salesPerson,
		ShowAllVersions: *allVersions,
		Limit:           *limit,
	})
	if err != nil {
		return fmt.Errorf("failed to find quotations: %w", err)
	}

	if len(quotations) == 0 {
		fmt.Println("No quotations found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NUMBER\tCUSTOMER\tVER\tTOTAL\tSTATUS\tID")
	_, _ = fmt.Fprintln(w, "------\t--------\t---\t-----\t------\t--")

	for _, q := range quotations {
		_, _ = fmt.Fprintf(w, "%s\t%s\tv%d\t$%.2f\t%s\t%s\n",
			q.QuotationNumber, q.CustomerName, q.Version,
			float64(q.Total)/100.0, q.Status, q.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d quotation(s)\n", len(quotations))
	return nil
}

// QuotationVersionsCommand prints the full version history of a family.
func QuotationVersionsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("quote-versions", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: quote-versions <quotation-id>")
	}
	quotationID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid quotation ID: %w", err)
	}

	q, err := db.GetQuotation(database, quotationID)
	if err != nil {
		return fmt.Errorf("failed to get quotation: %w", err)
	}

	family, err := db.GetQuotationFamily(database, q.RootID())
	if err != nil {
		return fmt.Errorf("failed to get versions: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VER\tNUMBER\tTOTAL\tSTATUS\tREASON\tCREATED")
	_, _ = fmt.Fprintln(w, "---\t------\t-----\t------\t------\t-------")

	for _, v := range family {
		marker := ""
		if v.IsLatestVersion {
			marker = " *"
		}
		_, _ = fmt.Fprintf(w, "v%d%s\t%s\t$%.2f\t%s\t%s\t%s\n",
			v.Version, marker, v.QuotationNumber, float64(v.Total)/100.0,
			v.Status, v.RevisionReason, v.CreatedAt.Format("2006-01-02"))
	}
	_ = w.Flush()

	return nil
}

// ReviseQuotationCommand supersedes a quotation with a new version.
func ReviseQuotationCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("revise-quote", flag.ExitOnError)
	reason := fs.String("reason", "", "Why the revision is needed (required)")
	services := fs.String("services", "", "Replacement service lines as name=cents pairs, comma separated")
	notes := fs.String("notes", "", "New notes")
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: revise-quote [flags] <quotation-id>")
	}
	if *reason == "" {
		return fmt.Errorf("--reason is required")
	}
	quotationID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid quotation ID: %w", err)
	}

	changes := db.RevisionChanges{}
	if *services != "" {
		lines, err := parseServiceLines(*services)
		if err != nil {
			return err
		}
		changes.Services = lines
	}
	if *notes != "" {
		changes.Notes = notes
	}

	revision, err := db.CreateRevision(database, quotationID, *reason, changes)
	if err != nil {
		return fmt.Errorf("failed to create revision: %w", err)
	}

	fmt.Printf("✓ Revision created: %s v%d (ID: %s)\n", revision.QuotationNumber, revision.Version, revision.ID)
	fmt.Printf("  Total: $%.2f\n", float64(revision.Total)/100.0)
	fmt.Printf("  Reason: %s\n", revision.RevisionReason)
	return nil
}

// ApproveQuotationCommand marks a quotation approved.
func ApproveQuotationCommand(database *sql.DB, args []string) error {
	return setQuotationStatus(database, args, "approve-quote", models.QuotationApproved)
}

// RejectQuotationCommand marks a quotation rejected.
func RejectQuotationCommand(database *sql.DB, args []string) error {
	return setQuotationStatus(database, args, "reject-quote", models.QuotationRejected)
}

func setQuotationStatus(database *sql.DB, args []string, cmd, status string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: %s <quotation-id>", cmd)
	}
	quotationID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid quotation ID: %w", err)
	}

	if err := db.UpdateQuotationStatus(database, quotationID, status); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	fmt.Printf("✓ Quotation %s: %s\n", quotationID.String()[:8], status)
	return nil
}
