// ABOUTME: Pipeline graph generation via graphviz
// ABOUTME: Renders leads, quotation version chains, and contracts as DOT
package viz

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/db"
	"github.com/fieldworkhq/pestcrm/models"
)

type GraphGenerator struct {
	db *sql.DB
}

func NewGraphGenerator(database *sql.DB) *GraphGenerator {
	return &GraphGenerator{db: database}
}

// GeneratePipelineGraph renders the whole sales pipeline: every lead, its
// quotation versions chained in order, and any resulting contract.
func (g *GraphGenerator) GeneratePipelineGraph() (string, error) {
	return g.generate(nil)
}

// GenerateLeadGraph renders a single lead's slice of the pipeline.
func (g *GraphGenerator) GenerateLeadGraph(leadID uuid.UUID) (string, error) {
	return g.generate(&leadID)
}

func (g *GraphGenerator) generate(leadID *uuid.UUID) (string, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel("Sales Pipeline")
	graph.SetRankDir(cgraph.LRRank)

	var leads []models.Lead
	if leadID != nil {
		lead, err := db.GetLead(g.db, *leadID)
		if err != nil {
			return "", fmt.Errorf("failed to fetch lead: %w", err)
		}
		leads = []models.Lead{*lead}
	} else {
		leads, err = db.FindLeads(g.db, db.LeadFilter{Status: "All", Priority: "All", Limit: 10000})
		if err != nil {
			return "", fmt.Errorf("failed to fetch leads: %w", err)
		}
	}

	for _, lead := range leads {
		leadNode, err := graph.CreateNodeByName(fmt.Sprintf("lead_%s", lead.ID.String()[:8]))
		if err != nil {
			return "", fmt.Errorf("failed to create lead node: %w", err)
		}
		leadNode.SetLabel(fmt.Sprintf("%s\n(%s)", lead.CustomerName, lead.Status))
		leadNode.SetShape("box")
		leadNode.SetStyle("filled")
		leadNode.SetFillColor("lightblue")

		quotations, err := db.FindQuotations(g.db, db.QuotationFilter{
			LeadID:          &lead.ID,
			Status:          "All",
			ShowAllVersions: true,
			Limit:           10000,
		})
		if err != nil {
			return "", fmt.Errorf("failed to fetch quotations: %w", err)
		}

		// Root quotations hang off the lead, revisions chain by version.
		quoteNodes := make(map[uuid.UUID]*cgraph.Node)
		for i := range quotations {
			q := &quotations[i]
			node, err := graph.CreateNodeByName(fmt.Sprintf("quote_%s", q.ID.String()[:8]))
			if err != nil {
				return "", fmt.Errorf("failed to create quotation node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s v%d\n$%d (%s)", q.QuotationNumber, q.Version, q.Total/100, q.Status))
			node.SetShape("ellipse")
			node.SetStyle("filled")
			if q.IsLatestVersion {
				node.SetFillColor("lightgreen")
			} else {
				node.SetFillColor("lightgray")
			}
			quoteNodes[q.ID] = node

			if q.ParentQuotationID == nil {
				edge, err := graph.CreateEdgeByName("quoted", leadNode, node)
				if err != nil {
					return "", fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetLabel("quoted")
			}
		}

		// Revision edges: each version points at its predecessor in the family.
		byVersion := make(map[uuid.UUID][]*models.Quotation)
		for i := range quotations {
			q := &quotations[i]
			byVersion[q.RootID()] = append(byVersion[q.RootID()], q)
		}
		for _, family := range byVersion {
			for _, q := range family {
				if q.Version <= 1 {
					continue
				}
				for _, prev := range family {
					if prev.Version == q.Version-1 {
						edge, err := graph.CreateEdgeByName("revised", quoteNodes[prev.ID], quoteNodes[q.ID])
						if err != nil {
							return "", fmt.Errorf("failed to create revision edge: %w", err)
						}
						edge.SetLabel(q.RevisionReason)
						edge.SetStyle("dashed")
					}
				}
			}
		}

		for i := range quotations {
			q := &quotations[i]
			contract, err := db.GetContractByQuotation(g.db, q.ID)
			if err != nil {
				continue
			}
			node, err := graph.CreateNodeByName(fmt.Sprintf("contract_%s", contract.ID.String()[:8]))
			if err != nil {
				return "", fmt.Errorf("failed to create contract node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n$%d (%s)", contract.ContractNumber, contract.TotalValue/100, contract.Status))
			node.SetShape("diamond")
			node.SetStyle("filled")
			node.SetFillColor("lightyellow")

			edge, err := graph.CreateEdgeByName("signed", quoteNodes[q.ID], node)
			if err != nil {
				return "", fmt.Errorf("failed to create contract edge: %w", err)
			}
			edge.SetLabel("signed")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.String(), nil
}
