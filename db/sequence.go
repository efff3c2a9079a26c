// ABOUTME: Per-year document number sequences for quotations and contracts
// ABOUTME: Allocates gap-free numbers like Q-2026-0001 atomically inside a transaction
package db

import (
	"database/sql"
	"fmt"
	"time"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// nextNumber allocates the next document number for a prefix within the
// current year, e.g. Q-2026-0001. Allocation happens on the caller's
// transaction so a rolled-back insert never burns a number.
func nextNumber(tx querier, prefix string, now time.Time) (string, error) {
	scope := fmt.Sprintf("%s-%d", prefix, now.Year())

	if _, err := tx.Exec(`INSERT OR IGNORE INTO number_sequences (scope, next_seq) VALUES (?, 1)`, scope); err != nil {
		return "", fmt.Errorf("seeding sequence %s: %w", scope, err)
	}

	var seq int
	err := tx.QueryRow(`
		UPDATE number_sequences
		SET next_seq = next_seq + 1
		WHERE scope = ?
		RETURNING next_seq - 1
	`, scope).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("allocating next number for %s: %w", scope, err)
	}

	return fmt.Sprintf("%s-%04d", scope, seq), nil
}
