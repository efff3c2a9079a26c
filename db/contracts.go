// ABOUTME: Contract database operations and quotation conversion
// ABOUTME: Materializes contracts from approved quotations in one transaction
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/models"
)

// ContractTerms carries the conversion-time inputs that do not live on the
// quotation.
type ContractTerms struct {
	StartDate    time.Time
	EndDate      *time.Time
	PaymentTerms string
	Notes        string
}

// ConvertQuotationToContract turns an approved quotation into a contract. In
// one transaction it allocates a contract number, snapshots the quotation's
// included service lines, and advances the source lead to the contract
// status. Converting an already-converted quotation fails with
// ErrAlreadyConverted.
func ConvertQuotationToContract(db *sql.DB, quotationID uuid.UUID, terms ContractTerms) (*models.Contract, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	q, err := getQuotation(tx, quotationID)
	if err != nil {
		return nil, err
	}

	var existing string
	err = tx.QueryRow(`SELECT id FROM contracts WHERE quotation_id = ?`, quotationID.String()).Scan(&existing)
	if err == nil {
		return nil, fmt.Errorf("quotation %s: %w", quotationID, ErrAlreadyConverted)
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	if q.Status != models.QuotationApproved {
		return nil, fmt.Errorf("quotation %s is %s, expected %s: %w",
			quotationID, q.Status, models.QuotationApproved, ErrInvalidTransition)
	}

	now := time.Now()
	start := terms.StartDate
	if start.IsZero() {
		start = now
	}

	contract := &models.Contract{
		ID:           uuid.New(),
		QuotationID:  q.ID,
		LeadID:       q.LeadID,
		CustomerName: q.CustomerName,
		CustomerType: q.CustomerType,
		Email:        q.Email,
		Phone:        q.Phone,
		Address:      q.Address,
		SalesPerson:  q.SalesPerson,
		Status:       models.ContractActive,
		StartDate:    start,
		EndDate:      terms.EndDate,
		TotalValue:   q.EstimatedValue,
		PaymentTerms: terms.PaymentTerms,
		Notes:        terms.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if contract.PaymentTerms == "" {
		contract.PaymentTerms = q.PaymentTerms
	}

	for _, s := range q.Services {
		if s.Included {
			contract.Services = append(contract.Services, s)
		}
	}

	number, err := nextNumber(tx, "C", now)
	if err != nil {
		return nil, err
	}
	contract.ContractNumber = number

	if _, err := tx.Exec(`
		INSERT INTO contracts (id, contract_number, quotation_id, lead_id, customer_name,
			customer_type, email, phone, address, sales_person, status, start_date, end_date,
			total_value, payment_terms, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, contract.ID.String(), contract.ContractNumber, contract.QuotationID.String(),
		contract.LeadID.String(), contract.CustomerName, contract.CustomerType, contract.Email,
		contract.Phone, contract.Address, contract.SalesPerson, contract.Status,
		contract.StartDate, contract.EndDate, contract.TotalValue, contract.PaymentTerms,
		contract.Notes, contract.CreatedAt, contract.UpdatedAt); err != nil {
		return nil, err
	}

	if err := writeServiceLines(tx, "contract_services", "contract_id", contract.ID, contract.Services); err != nil {
		return nil, err
	}

	// The lead may already sit at quote (the usual path) or still at lead
	// when the quotation was created directly.
	if err := advanceLeadStatus(tx, q.LeadID, models.LeadStatusContract, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return contract, nil
}

func GetContract(db *sql.DB, id uuid.UUID) (*models.Contract, error) {
	row := db.QueryRow(contractSelect+` WHERE id = ?`, id.String())
	return loadContract(db, row, id.String())
}

// GetContractByQuotation returns the contract converted from a quotation.
func GetContractByQuotation(db *sql.DB, quotationID uuid.UUID) (*models.Contract, error) {
	row := db.QueryRow(contractSelect+` WHERE quotation_id = ?`, quotationID.String())
	return loadContract(db, row, quotationID.String())
}

const contractSelect = `
	SELECT id, contract_number, quotation_id, lead_id, customer_name, customer_type, email,
		phone, address, sales_person, status, start_date, end_date, total_value, payment_terms,
		notes, created_at, updated_at
	FROM contracts`

func loadContract(db *sql.DB, row *sql.Row, ref string) (*models.Contract, error) {
	contract, err := scanContract(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("contract %s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if contract.Services, err = readServiceLines(db, "contract_services", "contract_id", contract.ID); err != nil {
		return nil, err
	}
	return contract, nil
}

func scanContract(row rowScanner) (*models.Contract, error) {
	c := &models.Contract{}
	var phone, address, salesPerson, paymentTerms, notes sql.NullString
	var endDate sql.NullTime

	err := row.Scan(&c.ID, &c.ContractNumber, &c.QuotationID, &c.LeadID, &c.CustomerName,
		&c.CustomerType, &c.Email, &phone, &address, &salesPerson, &c.Status, &c.StartDate,
		&endDate, &c.TotalValue, &paymentTerms, &notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.Phone = phone.String
	c.Address = address.String
	c.SalesPerson = salesPerson.String
	c.PaymentTerms = paymentTerms.String
	c.Notes = notes.String
	if endDate.Valid {
		t := endDate.Time
		c.EndDate = &t
	}
	return c, nil
}

func FindContracts(db *sql.DB, status string, limit int) ([]models.Contract, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if status != "" && status != "All" {
		rows, err = db.Query(contractSelect+` WHERE status = ? ORDER BY created_at DESC LIMIT ?`, status, limit)
	} else {
		rows, err = db.Query(contractSelect+` ORDER BY created_at DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, err
	}

	var contracts []models.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		contracts = append(contracts, *c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range contracts {
		if contracts[i].Services, err = readServiceLines(db, "contract_services", "contract_id", contracts[i].ID); err != nil {
			return nil, err
		}
	}

	return contracts, nil
}

// contractTransitions lists the allowed contract status moves.
var contractTransitions = map[string][]string{
	models.ContractActive: {models.ContractCompleted, models.ContractCancelled, models.ContractPaused},
	models.ContractPaused: {models.ContractActive, models.ContractCompleted, models.ContractCancelled},
}

// UpdateContractStatus applies a contract status transition.
func UpdateContractStatus(db *sql.DB, id uuid.UUID, status string) error {
	contract, err := GetContract(db, id)
	if err != nil {
		return err
	}

	allowed := false
	for _, next := range contractTransitions[contract.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("contract %s is %s, cannot move to %s: %w", id, contract.Status, status, ErrInvalidTransition)
	}

	_, err = db.Exec(`UPDATE contracts SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id.String())
	return err
}
