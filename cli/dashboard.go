// ABOUTME: Dashboard and graph CLI commands
// ABOUTME: Terminal pipeline overview and DOT graph export
package cli

import (
	"database/sql"
	"flag"
	"fmt"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/viz"
)

// DashboardCommand prints the pipeline overview.
func DashboardCommand(database *sql.DB, args []string) error {
	stats, err := viz.GenerateDashboardStats(database)
	if err != nil {
		return fmt.Errorf("failed to generate dashboard: %w", err)
	}

	fmt.Print(viz.RenderDashboard(stats))
	return nil
}

// GraphCommand prints the pipeline as DOT for graphviz tooling.
func GraphCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	leadIDStr := fs.String("lead", "", "Limit to a single lead's pipeline")
	_ = fs.Parse(args)

	generator := viz.NewGraphGenerator(database)

	var dot string
	var err error
	if *leadIDStr != "" {
		leadID, parseErr := uuid.Parse(*leadIDStr)
		if parseErr != nil {
			return fmt.Errorf("invalid lead ID: %w", parseErr)
		}
		dot, err = generator.GenerateLeadGraph(leadID)
	} else {
		dot, err = generator.GeneratePipelineGraph()
	}
	if err != nil {
		return fmt.Errorf("failed to generate graph: %w", err)
	}

	fmt.Print(dot)
	return nil
}
