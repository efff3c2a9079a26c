// ABOUTME: Quotation database operations, numbering, and the status machine
// ABOUTME: Handles creation from leads, service line persistence, and version queries
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/models"
)

// QuotationFilter selects quotations. Unless ShowAllVersions is set, only
// the latest version of each quotation family is returned.
type QuotationFilter struct {
	Query           string
	Status          string
	SalesPerson     string
	LeadID          *uuid.UUID
	ShowAllVersions bool
	Limit           int
}

// CreateQuotation inserts a new root quotation (version 1). A quotation
// number Q-<year>-<seq> is allocated on first save. The referenced lead must
// exist; use ConvertLeadToQuotation to also advance the lead's status.
func CreateQuotation(db *sql.DB, q *models.Quotation) error {
	if err := validateQuotation(q); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := getLead(tx, q.LeadID); err != nil {
		return err
	}

	if err := insertQuotation(tx, q); err != nil {
		return err
	}

	return tx.Commit()
}

// ConvertLeadToQuotation creates a version-1 quotation from a lead and moves
// the lead to the quote status, as a single transaction. Customer fields left
// empty on the quotation are snapshotted from the lead.
func ConvertLeadToQuotation(db *sql.DB, leadID uuid.UUID, q *models.Quotation) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	lead, err := getLead(tx, leadID)
	if err != nil {
		return err
	}
	if lead.Status != models.LeadStatusLead {
		return fmt.Errorf("lead %s is %s, expected %s: %w",
			leadID, lead.Status, models.LeadStatusLead, ErrInvalidTransition)
	}

	q.LeadID = leadID
	if q.CustomerName == "" {
		q.CustomerName = lead.CustomerName
	}
	if q.CustomerType == "" {
		q.CustomerType = lead.CustomerType
	}
	if q.Email == "" {
		q.Email = lead.Email
	}
	if q.Phone == "" {
		q.Phone = lead.Phone
	}
	if q.Address == "" {
		q.Address = lead.Address
	}
	if q.ProblemDescription == "" {
		q.ProblemDescription = lead.ProblemDescription
	}
	if q.SalesPerson == "" {
		q.SalesPerson = lead.SalesPerson
	}

	if err := validateQuotation(q); err != nil {
		return err
	}
	if err := insertQuotation(tx, q); err != nil {
		return err
	}
	if err := advanceLeadStatus(tx, leadID, models.LeadStatusQuote, q.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func validateQuotation(q *models.Quotation) error {
	if q.CustomerName == "" {
		return fmt.Errorf("customer name is required")
	}
	if q.Email == "" {
		return fmt.Errorf("email is required")
	}
	if q.LeadID == uuid.Nil {
		return fmt.Errorf("lead id is required")
	}
	return nil
}

// insertQuotation assigns identity, numbering, and version-1 defaults, then
// writes the quotation and its service lines on the caller's transaction.
func insertQuotation(tx *sql.Tx, q *models.Quotation) error {
	q.ID = uuid.New()
	now := time.Now()
	q.CreatedAt = now
	q.UpdatedAt = now
	q.ParentQuotationID = nil
	q.Version = 1
	q.IsLatestVersion = true
	q.RevisionReason = ""
	if q.Status == "" {
		q.Status = models.QuotationPending
	}
	q.RecomputeTotals()

	number, err := nextNumber(tx, "Q", now)
	if err != nil {
		return err
	}
	q.QuotationNumber = number

	return writeQuotationRow(tx, q)
}

func writeQuotationRow(tx *sql.Tx, q *models.Quotation) error {
	var parent *string
	if q.ParentQuotationID != nil {
		s := q.ParentQuotationID.String()
		parent = &s
	}

	_, err := tx.Exec(`
		INSERT INTO quotations (id, quotation_number, lead_id, customer_name, customer_type, email,
			phone, address, problem_description, sales_person, estimated_value, status, valid_until,
			notes, payment_terms, tax_rate, subtotal, tax_amount, total, parent_quotation_id,
			version, is_latest_version, revision_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID.String(), q.QuotationNumber, q.LeadID.String(), q.CustomerName, q.CustomerType, q.Email,
		q.Phone, q.Address, q.ProblemDescription, q.SalesPerson, q.EstimatedValue, q.Status,
		q.ValidUntil, q.Notes, q.PaymentTerms, q.TaxRate, q.Subtotal, q.TaxAmount, q.Total,
		parent, q.Version, q.IsLatestVersion, q.RevisionReason, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return err
	}

	return writeServiceLines(tx, "quotation_services", "quotation_id", q.ID, q.Services)
}

func writeServiceLines(tx *sql.Tx, table, column string, id uuid.UUID, services []models.QuotationService) error {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (%s, position, name, description, quantity, unit_price, total_price, included)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, table, column)

	for i, s := range services {
		if _, err := tx.Exec(stmt, id.String(), i, s.Name, s.Description, s.Quantity,
			s.UnitPrice, s.TotalPrice, s.Included); err != nil {
			return err
		}
	}
	return nil
}

func GetQuotation(db *sql.DB, id uuid.UUID) (*models.Quotation, error) {
	return getQuotation(db, id)
}

func getQuotation(q querier, id uuid.UUID) (*models.Quotation, error) {
	row := q.QueryRow(quotationSelect+` WHERE id = ?`, id.String())

	quotation, err := scanQuotation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("quotation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if quotation.Services, err = readServiceLines(q, "quotation_services", "quotation_id", id); err != nil {
		return nil, err
	}
	return quotation, nil
}

const quotationSelect = `
	SELECT id, quotation_number, lead_id, customer_name, customer_type, email, phone, address,
		problem_description, sales_person, estimated_value, status, valid_until, notes,
		payment_terms, tax_rate, subtotal, tax_amount, total, parent_quotation_id, version,
		is_latest_version, revision_reason, created_at, updated_at
	FROM quotations`

func scanQuotation(row rowScanner) (*models.Quotation, error) {
	q := &models.Quotation{}
	var phone, address, problem, salesPerson, notes, paymentTerms, parent, reason sql.NullString
	var validUntil sql.NullTime

	err := row.Scan(&q.ID, &q.QuotationNumber, &q.LeadID, &q.CustomerName, &q.CustomerType,
		&q.Email, &phone, &address, &problem, &salesPerson, &q.EstimatedValue, &q.Status,
		&validUntil, &notes, &paymentTerms, &q.TaxRate, &q.Subtotal, &q.TaxAmount, &q.Total,
		&parent, &q.Version, &q.IsLatestVersion, &reason, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}

	q.Phone = phone.String
	q.Address = address.String
	q.ProblemDescription = problem.String
	q.SalesPerson = salesPerson.String
	q.Notes = notes.String
	q.PaymentTerms = paymentTerms.String
	q.RevisionReason = reason.String
	if validUntil.Valid {
		t := validUntil.Time
		q.ValidUntil = &t
	}
	if parent.Valid {
		pid, err := uuid.Parse(parent.String)
		if err == nil {
			q.ParentQuotationID = &pid
		}
	}

	return q, nil
}

func readServiceLines(q querier, table, column string, id uuid.UUID) ([]models.QuotationService, error) {
	rows, err := q.Query(fmt.Sprintf(`
		SELECT name, description, quantity, unit_price, total_price, included
		FROM %s WHERE %s = ? ORDER BY position`, table, column), id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.QuotationService
	for rows.Next() {
		var s models.QuotationService
		var description sql.NullString
		if err := rows.Scan(&s.Name, &description, &s.Quantity, &s.UnitPrice, &s.TotalPrice, &s.Included); err != nil {
			return nil, err
		}
		s.Description = description.String
		services = append(services, s)
	}

	return services, rows.Err()
}

// quotationTransitions lists the allowed explicit status moves. Revisions are
// not listed here; CreateRevision always starts the new version at pending.
var quotationTransitions = map[string][]string{
	models.QuotationPending:  {models.QuotationApproved, models.QuotationRejected},
	models.QuotationApproved: {models.QuotationRevised},
}

// UpdateQuotationStatus applies an explicit status transition.
func UpdateQuotationStatus(db *sql.DB, id uuid.UUID, status string) error {
	q, err := getQuotation(db, id)
	if err != nil {
		return err
	}

	allowed := false
	for _, next := range quotationTransitions[q.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("quotation %s is %s, cannot move to %s: %w", id, q.Status, status, ErrInvalidTransition)
	}

	_, err = db.Exec(`UPDATE quotations SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id.String())
	return err
}

// GetQuotationFamily returns the root quotation and all of its revisions,
// ordered by version.
func GetQuotationFamily(db *sql.DB, rootID uuid.UUID) ([]models.Quotation, error) {
	return getQuotationFamily(db, rootID)
}

func getQuotationFamily(q querier, rootID uuid.UUID) ([]models.Quotation, error) {
	rows, err := q.Query(quotationSelect+`
		WHERE id = ? OR parent_quotation_id = ?
		ORDER BY version`, rootID.String(), rootID.String())
	if err != nil {
		return nil, err
	}

	var family []models.Quotation
	for rows.Next() {
		member, err := scanQuotation(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		family = append(family, *member)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range family {
		if family[i].Services, err = readServiceLines(q, "quotation_services", "quotation_id", family[i].ID); err != nil {
			return nil, err
		}
	}

	if len(family) == 0 {
		return nil, fmt.Errorf("quotation family %s: %w", rootID, ErrNotFound)
	}
	return family, nil
}

func FindQuotations(db *sql.DB, filter QuotationFilter) ([]models.Quotation, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	where := []string{}
	args := []interface{}{}

	if !filter.ShowAllVersions {
		where = append(where, "is_latest_version = 1")
	}
	if filter.Query != "" {
		where = append(where, "(customer_name LIKE ? COLLATE NOCASE OR problem_description LIKE ? COLLATE NOCASE)")
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Status != "" && filter.Status != "All" {
		where = append(where, "status = ?")
		args = append(args, strings.ToLower(filter.Status))
	}
	if filter.SalesPerson != "" {
		where = append(where, "sales_person = ?")
		args = append(args, filter.SalesPerson)
	}
	if filter.LeadID != nil {
		where = append(where, "lead_id = ?")
		args = append(args, filter.LeadID.String())
	}

	query := quotationSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}

	var quotations []models.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		quotations = append(quotations, *q)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range quotations {
		if quotations[i].Services, err = readServiceLines(db, "quotation_services", "quotation_id", quotations[i].ID); err != nil {
			return nil, err
		}
	}

	return quotations, nil
}
