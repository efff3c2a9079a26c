// ABOUTME: Tests for quotation operations, numbering, and the revision engine
// ABOUTME: Covers single-latest and monotonic-version invariants plus history immutability
package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/models"
)

func TestConvertLeadToQuotation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q := makeTestQuotation(t, db)

	if q.ID == uuid.Nil {
		t.Error("Quotation ID was not set")
	}
	if q.Version != 1 || !q.IsLatestVersion {
		t.Errorf("Expected version 1 latest, got version %d latest=%v", q.Version, q.IsLatestVersion)
	}
	if q.Status != models.QuotationPending {
		t.Errorf("Expected pending status, got %s", q.Status)
	}
	if q.EstimatedValue != 47000 {
		t.Errorf("Expected estimated value 47000, got %d", q.EstimatedValue)
	}

	// Customer snapshot taken from the lead
	if q.CustomerName != "Davis Family Home" {
		t.Errorf("Expected customer snapshot from lead, got %q", q.CustomerName)
	}

	// Number allocated as Q-<year>-<seq>
	want := fmt.Sprintf("Q-%d-0001", time.Now().Year())
	if q.QuotationNumber != want {
		t.Errorf("Expected quotation number %s, got %s", want, q.QuotationNumber)
	}

	// Lead advanced to quote as part of the same operation
	lead, err := GetLead(db, q.LeadID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if lead.Status != models.LeadStatusQuote {
		t.Errorf("Expected lead status quote, got %s", lead.Status)
	}
}

func TestConvertLeadToQuotationRequiresLeadStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q := makeTestQuotation(t, db)

	// Lead is now at quote; converting again must fail
	err := ConvertLeadToQuotation(db, q.LeadID, &models.Quotation{})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

func TestCreateQuotationRequiresLead(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q := &models.Quotation{
		LeadID:       uuid.New(),
		CustomerName: "Nobody",
		Email:        "nobody@example.com",
	}
	err := CreateQuotation(db, q)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing lead, got %v", err)
	}
}

func TestCreateRevision(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q1 := makeTestQuotation(t, db)

	// Exclude the termite treatment in the revision
	q2, err := CreateRevision(db, q1.ID, "price adjustment", RevisionChanges{
		Services: []models.QuotationService{
			{Name: "Initial Inspection", Quantity: 1, UnitPrice: 12000, Included: true},
			{Name: "Termite Treatment", Quantity: 1, UnitPrice: 35000, Included: false},
		},
	})
	if err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	if q2.Version != 2 {
		t.Errorf("Expected version 2, got %d", q2.Version)
	}
	if q2.ParentQuotationID == nil || *q2.ParentQuotationID != q1.ID {
		t.Error("Revision should point at the root quotation")
	}
	if !q2.IsLatestVersion {
		t.Error("Revision should be the latest version")
	}
	if q2.EstimatedValue != 12000 {
		t.Errorf("Expected total 12000 after exclusion, got %d", q2.EstimatedValue)
	}
	if q2.RevisionReason != "price adjustment" {
		t.Errorf("Expected revision reason stored, got %q", q2.RevisionReason)
	}

	// Prior version lost its latest flag
	prior, err := GetQuotation(db, q1.ID)
	if err != nil {
		t.Fatalf("GetQuotation failed: %v", err)
	}
	if prior.IsLatestVersion {
		t.Error("Prior version should no longer be latest")
	}
}

func TestCreateRevisionOfRevisionPointsAtRoot(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q1 := makeTestQuotation(t, db)

	q2, err := CreateRevision(db, q1.ID, "price adjustment", RevisionChanges{
		Services: []models.QuotationService{
			{Name: "Initial Inspection", Quantity: 1, UnitPrice: 12000, Included: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	// Revise the revision: discounted termite treatment comes back
	q3, err := CreateRevision(db, q2.ID, "customer negotiated discount", RevisionChanges{
		Services: []models.QuotationService{
			{Name: "Initial Inspection", Quantity: 1, UnitPrice: 12000, Included: true},
			{Name: "Termite Treatment", Quantity: 1, UnitPrice: 30000, Included: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	if q3.Version != 3 {
		t.Errorf("Expected version 3, got %d", q3.Version)
	}
	if q3.ParentQuotationID == nil || *q3.ParentQuotationID != q1.ID {
		t.Error("Chain must stay flat: revision of a revision points at the root")
	}
	if q3.EstimatedValue != 42000 {
		t.Errorf("Expected total 42000, got %d", q3.EstimatedValue)
	}
}

func TestSingleLatestInvariant(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q1 := makeTestQuotation(t, db)

	current := q1.ID
	for i := 0; i < 4; i++ {
		rev, err := CreateRevision(db, current, fmt.Sprintf("round %d", i+1), RevisionChanges{})
		if err != nil {
			t.Fatalf("CreateRevision %d failed: %v", i+1, err)
		}
		current = rev.ID

		family, err := GetQuotationFamily(db, q1.ID)
		if err != nil {
			t.Fatalf("GetQuotationFamily failed: %v", err)
		}

		latest := 0
		for _, member := range family {
			if member.IsLatestVersion {
				latest++
			}
		}
		if latest != 1 {
			t.Fatalf("After revision %d: expected exactly 1 latest, got %d", i+1, latest)
		}
	}
}

func TestMonotonicVersioning(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q1 := makeTestQuotation(t, db)

	// Revise out of order: always revise the root, not the latest
	for i := 0; i < 3; i++ {
		if _, err := CreateRevision(db, q1.ID, "rework", RevisionChanges{}); err != nil {
			t.Fatalf("CreateRevision failed: %v", err)
		}
	}

	family, err := GetQuotationFamily(db, q1.ID)
	if err != nil {
		t.Fatalf("GetQuotationFamily failed: %v", err)
	}

	if len(family) != 4 {
		t.Fatalf("Expected family of 4, got %d", len(family))
	}
	for i, member := range family {
		if member.Version != i+1 {
			t.Errorf("Expected version %d at position %d, got %d", i+1, i, member.Version)
		}
	}

	// Even revised out of order, exactly one latest survives
	latest, err := LatestVersion(db, q1.ID)
	if err != nil {
		t.Fatalf("LatestVersion failed: %v", err)
	}
	if latest.Version != 4 {
		t.Errorf("Expected latest version 4, got %d", latest.Version)
	}
}

func TestRevisionImmutability(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q1 := makeTestQuotation(t, db)
	before, err := GetQuotation(db, q1.ID)
	if err != nil {
		t.Fatalf("GetQuotation failed: %v", err)
	}

	notes := "renegotiated"
	if _, err := CreateRevision(db, q1.ID, "terms changed", RevisionChanges{Notes: &notes}); err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	after, err := GetQuotation(db, q1.ID)
	if err != nil {
		t.Fatalf("GetQuotation failed: %v", err)
	}

	if after.IsLatestVersion {
		t.Error("Prior version should have lost the latest flag")
	}
	if after.Notes != before.Notes {
		t.Error("Revision must not change the prior version's notes")
	}
	if after.EstimatedValue != before.EstimatedValue {
		t.Error("Revision must not change the prior version's totals")
	}
	if after.Status != before.Status {
		t.Error("Revision must not change the prior version's status")
	}
	if len(after.Services) != len(before.Services) {
		t.Error("Revision must not change the prior version's service lines")
	}
}

func TestCreateRevisionValidation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q1 := makeTestQuotation(t, db)

	if _, err := CreateRevision(db, q1.ID, "", RevisionChanges{}); err == nil {
		t.Error("Expected error for empty revision reason")
	}

	// Unknown quotation leaves the store unchanged
	_, err := CreateRevision(db, uuid.New(), "orphan", RevisionChanges{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	family, err := GetQuotationFamily(db, q1.ID)
	if err != nil {
		t.Fatalf("GetQuotationFamily failed: %v", err)
	}
	if len(family) != 1 {
		t.Errorf("Failed revision must not grow the store, family size %d", len(family))
	}
}

func TestRevisionNumberInheritsRoot(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q1 := makeTestQuotation(t, db)
	q2, err := CreateRevision(db, q1.ID, "price adjustment", RevisionChanges{})
	if err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	want := q1.QuotationNumber + "-R2"
	if q2.QuotationNumber != want {
		t.Errorf("Expected revision number %s, got %s", want, q2.QuotationNumber)
	}
}

func TestRevisionResetsRejectedStatus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q1 := makeTestQuotation(t, db)
	if err := UpdateQuotationStatus(db, q1.ID, models.QuotationRejected); err != nil {
		t.Fatalf("UpdateQuotationStatus failed: %v", err)
	}

	// A rejected quotation can still be superseded; the revision starts pending
	q2, err := CreateRevision(db, q1.ID, "address objections", RevisionChanges{})
	if err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}
	if q2.Status != models.QuotationPending {
		t.Errorf("Expected revision status pending, got %s", q2.Status)
	}
}

func TestUpdateQuotationStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q := makeTestQuotation(t, db)

	// rejected is terminal
	if err := UpdateQuotationStatus(db, q.ID, models.QuotationRejected); err != nil {
		t.Fatalf("pending -> rejected failed: %v", err)
	}
	err := UpdateQuotationStatus(db, q.ID, models.QuotationApproved)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("rejected -> approved should fail, got %v", err)
	}
}

func TestFindQuotationsVersionFilter(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q1 := makeTestQuotation(t, db)
	if _, err := CreateRevision(db, q1.ID, "rework", RevisionChanges{}); err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	latestOnly, err := FindQuotations(db, QuotationFilter{})
	if err != nil {
		t.Fatalf("FindQuotations failed: %v", err)
	}
	if len(latestOnly) != 1 || latestOnly[0].Version != 2 {
		t.Errorf("Expected only the latest version, got %d results", len(latestOnly))
	}

	all, err := FindQuotations(db, QuotationFilter{ShowAllVersions: true})
	if err != nil {
		t.Fatalf("FindQuotations failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected both versions, got %d results", len(all))
	}
}

func TestFindQuotationsSearch(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	makeTestQuotation(t, db)

	// Case-insensitive match against the problem description
	results, err := FindQuotations(db, QuotationFilter{Query: "termite"})
	if err != nil {
		t.Fatalf("FindQuotations failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 match for 'termite', got %d", len(results))
	}

	results, err = FindQuotations(db, QuotationFilter{Query: "bed bugs"})
	if err != nil {
		t.Fatalf("FindQuotations failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no matches, got %d", len(results))
	}
}

func TestQuotationNumberSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	var numbers []string
	for i := 0; i < 3; i++ {
		q := makeTestQuotation(t, db)
		numbers = append(numbers, q.QuotationNumber)
	}

	year := time.Now().Year()
	for i, n := range numbers {
		want := fmt.Sprintf("Q-%d-%04d", year, i+1)
		if n != want {
			t.Errorf("Expected number %s, got %s", want, n)
		}
	}
}

func TestReviseApprovedQuotationMarksItRevised(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	q := makeTestQuotation(t, db)
	if err := UpdateQuotationStatus(db, q.ID, models.QuotationApproved); err != nil {
		t.Fatalf("UpdateQuotationStatus failed: %v", err)
	}

	if _, err := CreateRevision(db, q.ID, "Customer asked for a smaller scope", RevisionChanges{}); err != nil {
		t.Fatalf("CreateRevision failed: %v", err)
	}

	old, err := GetQuotation(db, q.ID)
	if err != nil {
		t.Fatalf("GetQuotation failed: %v", err)
	}
	if old.Status != models.QuotationRevised {
		t.Errorf("Expected superseded approved quotation to be revised, got %s", old.Status)
	}
	if old.IsLatestVersion {
		t.Error("Superseded quotation should not be the latest version")
	}
}
