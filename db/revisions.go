// ABOUTME: Quotation revision engine
// ABOUTME: Creates new versions atomically while keeping exactly one latest per family
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/models"
)

// RevisionChanges carries the fields a revision may override. Nil fields keep
// the source quotation's values.
type RevisionChanges struct {
	Services     []models.QuotationService
	ValidUntil   *time.Time
	Notes        *string
	PaymentTerms *string
	TaxRate      *float64
	SalesPerson  *string
}

// CreateRevision supersedes a quotation with a new version. In a single
// transaction it locates the family, flips whichever member is currently the
// latest, and inserts a copy of the source overlaid with changes: next
// version number, parent pointing at the root, status reset to pending, and
// totals recomputed from the service lines. Prior versions keep every stored
// field except the latest flag.
func CreateRevision(db *sql.DB, quotationID uuid.UUID, reason string, changes RevisionChanges) (*models.Quotation, error) {
	if reason == "" {
		return nil, fmt.Errorf("revision reason is required")
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	source, err := getQuotation(tx, quotationID)
	if err != nil {
		return nil, err
	}

	rootID := source.RootID()
	family, err := getQuotationFamily(tx, rootID)
	if err != nil {
		return nil, err
	}

	maxVersion := 0
	for _, member := range family {
		if member.Version > maxVersion {
			maxVersion = member.Version
		}
	}

	now := time.Now()

	// Flip whichever member currently holds the latest flag, not the
	// source: the caller may revise an older version out of order.
	if _, err := tx.Exec(`
		UPDATE quotations SET is_latest_version = 0, updated_at = ?
		WHERE (id = ? OR parent_quotation_id = ?) AND is_latest_version = 1
	`, now, rootID.String(), rootID.String()); err != nil {
		return nil, err
	}

	// An approved quotation being superseded moves to revised.
	if source.Status == models.QuotationApproved {
		if _, err := tx.Exec(`UPDATE quotations SET status = ?, updated_at = ? WHERE id = ?`,
			models.QuotationRevised, now, source.ID.String()); err != nil {
			return nil, err
		}
	}

	revision := applyChanges(source, changes)
	revision.ID = uuid.New()
	revision.ParentQuotationID = &rootID
	revision.Version = maxVersion + 1
	revision.IsLatestVersion = true
	revision.RevisionReason = reason
	revision.Status = models.QuotationPending
	revision.CreatedAt = now
	revision.UpdatedAt = now
	revision.RecomputeTotals()

	// Revisions inherit the root's number with a revision suffix.
	root := family[0]
	revision.QuotationNumber = fmt.Sprintf("%s-R%d", root.QuotationNumber, revision.Version)

	if err := writeQuotationRow(tx, revision); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return revision, nil
}

func applyChanges(source *models.Quotation, changes RevisionChanges) *models.Quotation {
	revision := *source
	revision.Services = make([]models.QuotationService, len(source.Services))
	copy(revision.Services, source.Services)

	if changes.Services != nil {
		revision.Services = changes.Services
	}
	if changes.ValidUntil != nil {
		revision.ValidUntil = changes.ValidUntil
	}
	if changes.Notes != nil {
		revision.Notes = *changes.Notes
	}
	if changes.PaymentTerms != nil {
		revision.PaymentTerms = *changes.PaymentTerms
	}
	if changes.TaxRate != nil {
		revision.TaxRate = *changes.TaxRate
	}
	if changes.SalesPerson != nil {
		revision.SalesPerson = *changes.SalesPerson
	}
	return &revision
}

// LatestVersion returns the family member currently flagged latest.
func LatestVersion(db *sql.DB, rootID uuid.UUID) (*models.Quotation, error) {
	family, err := getQuotationFamily(db, rootID)
	if err != nil {
		return nil, err
	}
	for i := range family {
		if family[i].IsLatestVersion {
			return &family[i], nil
		}
	}
	return nil, fmt.Errorf("quotation family %s has no latest version: %w", rootID, sql.ErrNoRows)
}
