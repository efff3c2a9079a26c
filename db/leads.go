// ABOUTME: Lead database operations and intake validation
// ABOUTME: Handles lead creation, updates, forward-only status moves, and filtered queries
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/models"
)

// LeadFilter selects and orders leads. Empty or "All" values disable the
// corresponding filter. SortBy is one of "created" (default), "value",
// "priority".
type LeadFilter struct {
	Query       string
	Status      string
	Priority    string
	SalesPerson string
	SortBy      string
	Limit       int
}

func CreateLead(db *sql.DB, lead *models.Lead) error {
	if lead.CustomerName == "" {
		return fmt.Errorf("customer name is required")
	}
	if lead.Email == "" {
		return fmt.Errorf("email is required")
	}
	if lead.Phone == "" {
		return fmt.Errorf("phone is required")
	}

	lead.ID = uuid.New()
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	if lead.CustomerType == "" {
		lead.CustomerType = models.CustomerResidential
	}
	if lead.Priority == "" {
		lead.Priority = models.PriorityMedium
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusLead
	}
	if lead.LeadSource == "" {
		lead.LeadSource = models.SourceWebsiteForm
	}
	if lead.EstimatedValue < 0 {
		return fmt.Errorf("estimated value must be non-negative")
	}

	services, err := json.Marshal(lead.Services)
	if err != nil {
		return fmt.Errorf("encoding services: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO leads (id, customer_name, customer_type, email, phone, address, service_details,
			problem_description, priority, status, estimated_value, sales_person, lead_source,
			services, notes, last_contact_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, lead.ID.String(), lead.CustomerName, lead.CustomerType, lead.Email, lead.Phone, lead.Address,
		lead.ServiceDetails, lead.ProblemDescription, lead.Priority, lead.Status, lead.EstimatedValue,
		lead.SalesPerson, lead.LeadSource, string(services), lead.Notes, lead.LastContactAt,
		lead.CreatedAt, lead.UpdatedAt)

	return err
}

func GetLead(db *sql.DB, id uuid.UUID) (*models.Lead, error) {
	return getLead(db, id)
}

func getLead(q querier, id uuid.UUID) (*models.Lead, error) {
	row := q.QueryRow(`
		SELECT id, customer_name, customer_type, email, phone, address, service_details,
			problem_description, priority, status, estimated_value, sales_person, lead_source,
			services, notes, last_contact_at, created_at, updated_at
		FROM leads WHERE id = ?
	`, id.String())

	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lead %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*models.Lead, error) {
	lead := &models.Lead{}
	var address, serviceDetails, problem, salesPerson, leadSource, services, notes sql.NullString
	var lastContact sql.NullTime

	err := row.Scan(&lead.ID, &lead.CustomerName, &lead.CustomerType, &lead.Email, &lead.Phone,
		&address, &serviceDetails, &problem, &lead.Priority, &lead.Status, &lead.EstimatedValue,
		&salesPerson, &leadSource, &services, &notes, &lastContact, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return nil, err
	}

	lead.Address = address.String
	lead.ServiceDetails = serviceDetails.String
	lead.ProblemDescription = problem.String
	lead.SalesPerson = salesPerson.String
	lead.LeadSource = leadSource.String
	lead.Notes = notes.String
	if lastContact.Valid {
		t := lastContact.Time
		lead.LastContactAt = &t
	}
	if services.Valid && services.String != "" {
		if err := json.Unmarshal([]byte(services.String), &lead.Services); err != nil {
			return nil, fmt.Errorf("decoding services for lead %s: %w", lead.ID, err)
		}
	}

	return lead, nil
}

// UpdateLead rewrites a lead's mutable fields. The status column is left to
// the lifecycle transitions and is not touched here.
func UpdateLead(db *sql.DB, lead *models.Lead) error {
	lead.UpdatedAt = time.Now()

	services, err := json.Marshal(lead.Services)
	if err != nil {
		return fmt.Errorf("encoding services: %w", err)
	}

	res, err := db.Exec(`
		UPDATE leads
		SET customer_name = ?, customer_type = ?, email = ?, phone = ?, address = ?,
			service_details = ?, problem_description = ?, priority = ?, estimated_value = ?,
			sales_person = ?, lead_source = ?, services = ?, notes = ?, last_contact_at = ?,
			updated_at = ?
		WHERE id = ?
	`, lead.CustomerName, lead.CustomerType, lead.Email, lead.Phone, lead.Address,
		lead.ServiceDetails, lead.ProblemDescription, lead.Priority, lead.EstimatedValue,
		lead.SalesPerson, lead.LeadSource, string(services), lead.Notes, lead.LastContactAt,
		lead.UpdatedAt, lead.ID.String())
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("lead %s: %w", lead.ID, ErrNotFound)
	}
	return nil
}

// leadStatusRank orders the forward-only lead lifecycle.
func leadStatusRank(status string) int {
	switch status {
	case models.LeadStatusLead:
		return 1
	case models.LeadStatusQuote:
		return 2
	case models.LeadStatusContract:
		return 3
	}
	return 0
}

// advanceLeadStatus moves a lead forward along lead -> quote -> contract on
// the caller's transaction. Moving backward or to an unknown status fails.
func advanceLeadStatus(q querier, id uuid.UUID, status string, now time.Time) error {
	lead, err := getLead(q, id)
	if err != nil {
		return err
	}

	if leadStatusRank(status) == 0 {
		return fmt.Errorf("unknown lead status %q: %w", status, ErrInvalidTransition)
	}
	if lead.Status == status {
		return nil
	}
	if leadStatusRank(status) < leadStatusRank(lead.Status) {
		return fmt.Errorf("lead %s is %s, cannot move to %s: %w", id, lead.Status, status, ErrInvalidTransition)
	}

	_, err = q.Exec(`UPDATE leads SET status = ?, updated_at = ? WHERE id = ?`,
		status, now, id.String())
	return err
}

// TouchLeadContact records that the customer was contacted.
func TouchLeadContact(db *sql.DB, id uuid.UUID, at time.Time) error {
	res, err := db.Exec(`UPDATE leads SET last_contact_at = ?, updated_at = ? WHERE id = ?`,
		at, at, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("lead %s: %w", id, ErrNotFound)
	}
	return nil
}

func FindLeads(db *sql.DB, filter LeadFilter) ([]models.Lead, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	where := []string{}
	args := []interface{}{}

	if filter.Query != "" {
		where = append(where, "(customer_name LIKE ? COLLATE NOCASE OR problem_description LIKE ? COLLATE NOCASE OR service_details LIKE ? COLLATE NOCASE)")
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Status != "" && filter.Status != "All" {
		where = append(where, "status = ?")
		args = append(args, strings.ToLower(filter.Status))
	}
	if filter.Priority != "" && filter.Priority != "All" {
		where = append(where, "priority = ?")
		args = append(args, strings.ToLower(filter.Priority))
	}
	if filter.SalesPerson != "" {
		where = append(where, "sales_person = ?")
		args = append(args, filter.SalesPerson)
	}

	query := `
		SELECT id, customer_name, customer_type, email, phone, address, service_details,
			problem_description, priority, status, estimated_value, sales_person, lead_source,
			services, notes, last_contact_at, created_at, updated_at
		FROM leads`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	switch filter.SortBy {
	case "value":
		query += " ORDER BY estimated_value DESC"
	case "priority":
		// high > medium > low, not lexicographic
		query += ` ORDER BY CASE priority
			WHEN 'high' THEN 3
			WHEN 'medium' THEN 2
			WHEN 'low' THEN 1
			ELSE 0 END DESC, created_at DESC`
	default:
		query += " ORDER BY created_at DESC"
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}

	return leads, rows.Err()
}
