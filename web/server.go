// ABOUTME: Web UI server with embedded templates
// ABOUTME: Provides a read-only pipeline dashboard at localhost:8080
package web

import (
	"database/sql"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/db"
	"github.com/fieldworkhq/pestcrm/viz"
)

//go:embed templates/*
var templatesFS embed.FS

type Server struct {
	db        *sql.DB
	templates *template.Template
	generator *viz.GraphGenerator
}

func NewServer(database *sql.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"dollars": func(cents int64) string {
			return fmt.Sprintf("$%.2f", float64(cents)/100.0)
		},
		"percent": func(f float64) string {
			return fmt.Sprintf("%.0f%%", f*100)
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		db:        database,
		templates: tmpl,
		generator: viz.NewGraphGenerator(database),
	}, nil
}

func (s *Server) Start(port int) error {
	http.HandleFunc("/", s.handleDashboard)
	http.HandleFunc("/leads", s.handleLeads)
	http.HandleFunc("/quotations", s.handleQuotations)
	http.HandleFunc("/contracts", s.handleContracts)
	http.HandleFunc("/schedule", s.handleSchedule)
	http.HandleFunc("/graph", s.handleGraph)

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting web server at http://localhost%s", addr)
	return http.ListenAndServe(addr, nil)
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Template error rendering %s: %v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := viz.GenerateDashboardStats(s.db)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Stats":           stats,
		"Title":           "Dashboard",
		"ContentTemplate": "dashboard-content",
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := db.FindLeads(s.db, db.LeadFilter{
		Query:    r.URL.Query().Get("q"),
		Status:   r.URL.Query().Get("status"),
		Priority: "All",
		Limit:    100,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Leads":           leads,
		"Title":           "Leads",
		"ContentTemplate": "leads-content",
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleQuotations(w http.ResponseWriter, r *http.Request) {
	quotations, err := db.FindQuotations(s.db, db.QuotationFilter{
		Query:           r.URL.Query().Get("q"),
		Status:          r.URL.Query().Get("status"),
		ShowAllVersions: r.URL.Query().Get("all") == "1",
		Limit:           100,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Quotations":      quotations,
		"Title":           "Quotations",
		"ContentTemplate": "quotations-content",
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := db.FindContracts(s.db, r.URL.Query().Get("status"), 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Contracts":       contracts,
		"Title":           "Contracts",
		"ContentTemplate": "contracts-content",
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	stats, err := viz.GenerateDashboardStats(s.db)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Activities":      stats.UpcomingActivities,
		"Title":           "Schedule",
		"ContentTemplate": "schedule-content",
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var dot string
	var err error

	if idStr := r.URL.Query().Get("lead"); idStr != "" {
		leadID, parseErr := uuid.Parse(idStr)
		if parseErr != nil {
			http.Error(w, "Invalid lead ID", http.StatusBadRequest)
			return
		}
		dot, err = s.generator.GenerateLeadGraph(leadID)
	} else {
		dot, err = s.generator.GeneratePipelineGraph()
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"DOT":             dot,
		"Title":           "Pipeline Graph",
		"ContentTemplate": "graph-content",
	}
	s.renderTemplate(w, "layout.html", data)
}
