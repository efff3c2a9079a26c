// ABOUTME: Contract CLI commands
// ABOUTME: Quotation-to-contract conversion and contract management
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/db"
)

// SignContractCommand converts an approved quotation into a contract.
func SignContractCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("sign-contract", flag.ExitOnError)
	start := fs.String("start", "", "Start date (YYYY-MM-DD, default today)")
	end := fs.String("end", "", "End date (YYYY-MM-DD)")
	paymentTerms := fs.String("terms", "", "Payment terms")
	notes := fs.String("notes", "", "Contract notes")
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: sign-contract [flags] <quotation-id>")
	}
	quotationID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid quotation ID: %w", err)
	}

	terms := db.ContractTerms{PaymentTerms: *paymentTerms, Notes: *notes}
	if *start != "" {
		parsed, err := time.Parse("2006-01-02", *start)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
		terms.StartDate = parsed
	}
	if *end != "" {
		parsed, err := time.Parse("2006-01-02", *end)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		terms.EndDate = &parsed
	}

	contract, err := db.ConvertQuotationToContract(database, quotationID, terms)
	if err != nil {
		return fmt.Errorf("failed to convert quotation: %w", err)
	}

	fmt.Printf("✓ Contract created: %s (ID: %s)\n", contract.ContractNumber, contract.ID)
	fmt.Printf("  Customer: %s\n", contract.CustomerName)
	fmt.Printf("  Value: $%.2f\n", float64(contract.TotalValue)/100.0)
	fmt.Printf("  Starts: %s\n", contract.StartDate.Format("2006-01-02"))
	return nil
}

// ListContractsCommand lists contracts.
func ListContractsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-contracts", flag.ExitOnError)
	status := fs.String("status", "", "Filter by status (active, paused, completed, cancelled, All)")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	contracts, err := db.FindContracts(database, *status, *limit)
	if err != nil {
		return fmt.Errorf("failed to find contracts: %w", err)
	}

	if len(contracts) == 0 {
		fmt.Println("No contracts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NUMBER\tCUSTOMER\tVALUE\tSTATUS\tSTART\tID")
	_, _ = fmt.Fprintln(w, "------\t--------\t-----\t------\t-----\t--")

	var total int64
	for _, c := range contracts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t$%.2f\t%s\t%s\t%s\n",
			c.ContractNumber, c.CustomerName, float64(c.TotalValue)/100.0,
			c.Status, c.StartDate.Format("2006-01-02"), c.ID.String()[:8])
		total += c.TotalValue
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d contract(s) - $%.2f\n", len(contracts), float64(total)/100.0)
	return nil
}

// ContractStatusCommand changes a contract's status.
func ContractStatusCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("contract-status", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) != 2 {
		return fmt.Errorf("usage: contract-status <id> <active|paused|completed|cancelled>")
	}
	contractID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid contract ID: %w", err)
	}

	if err := db.UpdateContractStatus(database, contractID, fs.Arg(1)); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	fmt.Printf("✓ Contract %s: %s\n", contractID.String()[:8], fs.Arg(1))
	return nil
}
