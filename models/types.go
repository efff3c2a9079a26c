// ABOUTME: Data models for pest-control CRM entities
// ABOUTME: Defines Lead, Quotation, Contract, LeadActivity, and User structs
package models

import (
	"time"

	"github.com/google/uuid"
)

type Lead struct {
	ID                 uuid.UUID  `json:"id"`
	CustomerName       string     `json:"customer_name"`
	CustomerType       string     `json:"customer_type"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	Address            string     `json:"address,omitempty"`
	ServiceDetails     string     `json:"service_details,omitempty"`
	ProblemDescription string     `json:"problem_description,omitempty"`
	Priority           string     `json:"priority"`
	Status             string     `json:"status"`
	EstimatedValue     int64      `json:"estimated_value,omitempty"` // in cents
	SalesPerson        string     `json:"sales_person,omitempty"`
	LeadSource         string     `json:"lead_source,omitempty"`
	Services           []string   `json:"services,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	LastContactAt      *time.Time `json:"last_contact_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type QuotationService struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`  // in cents
	TotalPrice  int64  `json:"total_price"` // quantity * unit price, recomputed on save
	Included    bool   `json:"included"`
}

type Quotation struct {
	ID                 uuid.UUID          `json:"id"`
	QuotationNumber    string             `json:"quotation_number"`
	LeadID             uuid.UUID          `json:"lead_id"`
	CustomerName       string             `json:"customer_name"`
	CustomerType       string             `json:"customer_type"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone,omitempty"`
	Address            string             `json:"address,omitempty"`
	ProblemDescription string             `json:"problem_description,omitempty"`
	SalesPerson        string             `json:"sales_person,omitempty"`
	EstimatedValue     int64              `json:"estimated_value"` // in cents, computed
	Status             string             `json:"status"`
	Services           []QuotationService `json:"services"`
	ValidUntil         *time.Time         `json:"valid_until,omitempty"`
	Notes              string             `json:"notes,omitempty"`
	PaymentTerms       string             `json:"payment_terms,omitempty"`

	// Financial breakdown, recomputed from included service lines on every save.
	TaxRate   float64 `json:"tax_rate"`
	Subtotal  int64   `json:"subtotal"`
	TaxAmount int64   `json:"tax_amount"`
	Total     int64   `json:"total"`

	// Version chain. Revisions point at the root quotation, not their
	// immediate predecessor, so the chain stays flat.
	ParentQuotationID *uuid.UUID `json:"parent_quotation_id,omitempty"`
	Version           int        `json:"version"`
	IsLatestVersion   bool       `json:"is_latest_version"`
	RevisionReason    string     `json:"revision_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Contract struct {
	ID             uuid.UUID          `json:"id"`
	ContractNumber string             `json:"contract_number"`
	QuotationID    uuid.UUID          `json:"quotation_id"`
	LeadID         uuid.UUID          `json:"lead_id"`
	CustomerName   string             `json:"customer_name"`
	CustomerType   string             `json:"customer_type"`
	Email          string             `json:"email"`
	Phone          string             `json:"phone,omitempty"`
	Address        string             `json:"address,omitempty"`
	SalesPerson    string             `json:"sales_person,omitempty"`
	Status         string             `json:"status"`
	StartDate      time.Time          `json:"start_date"`
	EndDate        *time.Time         `json:"end_date,omitempty"`
	TotalValue     int64              `json:"total_value"` // in cents
	Services       []QuotationService `json:"services"`
	PaymentTerms   string             `json:"payment_terms,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type LeadActivity struct {
	ID            uuid.UUID  `json:"id"`
	LeadID        uuid.UUID  `json:"lead_id"`
	ActivityType  string     `json:"activity_type"`
	Description   string     `json:"description"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
	Agenda        string     `json:"agenda,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	IsCompleted   bool       `json:"is_completed"`
	UserName      string     `json:"user_name,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Customer type constants.
const (
	CustomerResidential = "Residential"
	CustomerCommercial  = "Commercial"
)

// Lead status constants. Status only moves forward: lead -> quote -> contract.
const (
	LeadStatusLead     = "lead"
	LeadStatusQuote    = "quote"
	LeadStatusContract = "contract"
)

// Lead priority constants.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Lead source constants.
const (
	SourceWebsiteForm   = "Website Form"
	SourcePhoneCall     = "Phone Call"
	SourceReferral      = "Referral"
	SourceAdvertisement = "Advertisement"
	SourceOther         = "Other"
)

// Quotation status constants.
const (
	QuotationPending  = "pending"
	QuotationApproved = "approved"
	QuotationRejected = "rejected"
	QuotationRevised  = "revised"
)

// Contract status constants.
const (
	ContractActive    = "active"
	ContractCompleted = "completed"
	ContractCancelled = "cancelled"
	ContractPaused    = "paused"
)

// Activity type constants.
const (
	ActivityCall      = "call"
	ActivityEmail     = "email"
	ActivityMeeting   = "meeting"
	ActivityQuoteSent = "quote_sent"
	ActivityFollowUp  = "follow_up"
	ActivityNote      = "note"
)

// Scheduled activity agenda constants.
const (
	AgendaCall            = "call"
	AgendaEmail           = "email"
	AgendaMeeting         = "meeting"
	AgendaSiteVisit       = "site_visit"
	AgendaQuoteReview     = "quote_review"
	AgendaContractSigning = "contract_signing"
)

// User role constants.
const (
	RoleAdmin = "admin"
	RoleSales = "sales"
	RoleAgent = "agent"
)

// PriorityRank maps a lead priority to its sort weight, high first.
func PriorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// RecomputeTotals recalculates per-line and quotation-level totals from the
// included service lines. Caller-supplied totals are never trusted.
func (q *Quotation) RecomputeTotals() {
	var subtotal int64
	for i := range q.Services {
		s := &q.Services[i]
		if s.Quantity < 1 {
			s.Quantity = 1
		}
		s.TotalPrice = int64(s.Quantity) * s.UnitPrice
		if s.Included {
			subtotal += s.TotalPrice
		}
	}
	q.Subtotal = subtotal
	q.TaxAmount = int64(float64(subtotal) * q.TaxRate)
	q.Total = q.Subtotal + q.TaxAmount
	q.EstimatedValue = q.Total
}

// RootID returns the id of the original quotation in this family.
func (q *Quotation) RootID() uuid.UUID {
	if q.ParentQuotationID != nil {
		return *q.ParentQuotationID
	}
	return q.ID
}
