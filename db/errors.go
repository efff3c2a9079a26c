// ABOUTME: Sentinel errors shared by all database operations
// ABOUTME: Callers match with errors.Is to branch on not-found and lifecycle violations
package db

import "errors"

var (
	// ErrNotFound is returned when an operation references an unknown
	// entity id. Updates to unknown ids fail loudly instead of no-oping.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a status change is not
	// permitted by the lead or quotation state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyConverted is returned when a quotation that already has a
	// contract is converted a second time.
	ErrAlreadyConverted = errors.New("quotation already converted to contract")
)
