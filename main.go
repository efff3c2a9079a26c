// ABOUTME: Entry point for the pest control CRM MCP server and CLI
// ABOUTME: Routes to MCP server, CRM commands, web UI, or visualization
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/fieldworkhq/pestcrm/cli"
	"github.com/fieldworkhq/pestcrm/db"
	"github.com/fieldworkhq/pestcrm/web"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/pestcrm/pestcrm.db)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("pestcrm version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	finalDBPath := getDatabasePath(*dbPath)
	database, err := db.OpenDatabase(finalDBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	switch command {
	case "mcp":
		if err := cli.MCPCommand(database); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "crm":
		log.Printf("CRM database: %s", finalDBPath)

		if *initOnly {
			log.Println("Database initialized successfully")
			os.Exit(0)
		}

		if len(commandArgs) == 0 {
			fmt.Println("Error: crm requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		crmCommand := commandArgs[0]
		crmArgs := commandArgs[1:]

		var cmdErr error
		switch crmCommand {
		// Lead commands
		case "add-lead":
			cmdErr = cli.AddLeadCommand(database, crmArgs)
		case "list-leads":
			cmdErr = cli.ListLeadsCommand(database, crmArgs)
		case "convert-lead":
			cmdErr = cli.ConvertLeadCommand(database, crmArgs)

		// Quotation commands
		case "list-quotes":
			cmdErr = cli.ListQuotationsCommand(database, crmArgs)
		case "quote-versions":
			cmdErr = cli.QuotationVersionsCommand(database, crmArgs)
		case "revise-quote":
			cmdErr = cli.ReviseQuotationCommand(database, crmArgs)
		case "approve-quote":
			cmdErr = cli.ApproveQuotationCommand(database, crmArgs)
		case "reject-quote":
			cmdErr = cli.RejectQuotationCommand(database, crmArgs)

		// Contract commands
		case "sign-contract":
			cmdErr = cli.SignContractCommand(database, crmArgs)
		case "list-contracts":
			cmdErr = cli.ListContractsCommand(database, crmArgs)
		case "contract-status":
			cmdErr = cli.ContractStatusCommand(database, crmArgs)

		// Activity commands
		case "log-activity":
			cmdErr = cli.LogActivityCommand(database, crmArgs)
		case "timeline":
			cmdErr = cli.TimelineCommand(database, crmArgs)
		case "schedule":
			cmdErr = cli.ScheduleCommand(database, crmArgs)
		case "complete-activity":
			cmdErr = cli.CompleteActivityCommand(database, crmArgs)

		// User commands
		case "add-user":
			cmdErr = cli.AddUserCommand(database, crmArgs)
		case "list-users":
			cmdErr = cli.ListUsersCommand(database, crmArgs)
		case "deactivate-user":
			cmdErr = cli.DeactivateUserCommand(database, crmArgs)

		default:
			fmt.Printf("Unknown crm command: %s\n\n", crmCommand)
			printUsage()
			os.Exit(1)
		}
		if cmdErr != nil {
			log.Fatalf("Error: %v", cmdErr)
		}

	case "viz":
		if len(commandArgs) == 0 {
			fmt.Println("Error: viz requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		vizCommand := commandArgs[0]
		vizArgs := commandArgs[1:]

		var cmdErr error
		switch vizCommand {
		case "dashboard":
			cmdErr = cli.DashboardCommand(database, vizArgs)
		case "graph":
			cmdErr = cli.GraphCommand(database, vizArgs)
		default:
			fmt.Printf("Unknown viz command: %s\n\n", vizCommand)
			printUsage()
			os.Exit(1)
		}
		if cmdErr != nil {
			log.Fatalf("Error: %v", cmdErr)
		}

	case "web":
		fs := flag.NewFlagSet("web", flag.ExitOnError)
		port := fs.Int("port", 8080, "Port to listen on")
		_ = fs.Parse(commandArgs)

		server, err := web.NewServer(database)
		if err != nil {
			log.Fatalf("Failed to create web server: %v", err)
		}
		if err := server.Start(*port); err != nil {
			log.Fatalf("Web server failed: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func getDatabasePath(dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("PESTCRM_DB_PATH"); env != "" {
		return env
	}
	return filepath.Join(xdg.DataHome, "pestcrm", "pestcrm.db")
}

func printUsage() {
	fmt.Printf(`pestcrm v%s - Pest control sales CRM

USAGE:
  pestcrm [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/pestcrm/pestcrm.db)
  --init                 Initialize database and exit (use with 'crm')

COMMANDS:
  mcp                    Start MCP server on stdio
  crm                    CRM management commands
  viz                    Dashboard and graph commands
  web                    Read-only web UI (default port 8080)

CRM COMMANDS:
  pestcrm crm add-lead          Capture a new lead
    --name <name>                 Customer name (required)
    --email <email>               Email address (required)
    --phone <phone>               Phone number (required)
    --type <type>                 Residential or Commercial
    --problem <text>              Pest problem description
    --priority <p>                low, medium, high
    --value <cents>               Estimated value in cents

  pestcrm crm list-leads        List leads
    --q <text>                    Search name and problem
    --status <s>                  lead, quote, contract, All
    --priority <p>                low, medium, high, All
    --sort <field>                created, value, priority

  pestcrm crm convert-lead [flags] <id>   Create the first quotation
    --services <spec>             name=cents pairs, comma separated
    --valid-days <n>              Validity window (default 30)

  pestcrm crm list-quotes       List quotations (latest versions)
    --all-versions                Include superseded versions

  pestcrm crm quote-versions <id>         Show a quotation's history
  pestcrm crm revise-quote [flags] <id>   Create a new version
    --reason <text>               Why (required)
    --services <spec>             Replacement lines

  pestcrm crm approve-quote <id>
  pestcrm crm reject-quote <id>

  pestcrm crm sign-contract [flags] <quotation-id>
    --start <date>                YYYY-MM-DD
    --terms <text>                Payment terms

  pestcrm crm list-contracts
  pestcrm crm contract-status <id> <status>

  pestcrm crm log-activity [flags] <lead-id>
    --type <t>                    call, email, meeting, quote_sent, follow_up, note
    --desc <text>                 Description (required)
    --when <date>                 Schedule for a future date
    --agenda <a>                  call, email, meeting, site_visit, quote_review, contract_signing

  pestcrm crm timeline <lead-id>
  pestcrm crm schedule --days 7
  pestcrm crm complete-activity <id>

  pestcrm crm add-user --email <email> --name <name> --role <role>
  pestcrm crm list-users

VIZ COMMANDS:
  pestcrm viz dashboard         Terminal pipeline overview
  pestcrm viz graph             Pipeline graph as DOT
    --lead <id>                   Limit to one lead

EXAMPLES:
  # Capture a lead
  pestcrm crm add-lead --name "Davis Family" --email "davis@example.com" --phone "555-0101" --problem "Termites in deck"

  # Quote it
  pestcrm crm convert-lead --services "Inspection=12000,Termite Treatment=35000" <lead-id>

  # Revise after negotiation
  pestcrm crm revise-quote --reason "Customer declined treatment" --services "Inspection=12000" <quote-id>

`, version)
}
