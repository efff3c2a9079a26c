// ABOUTME: User database operations
// ABOUTME: Users gate navigation scope only; there is no authentication
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/models"
)

func CreateUser(db *sql.DB, user *models.User) error {
	if user.Email == "" {
		return fmt.Errorf("email is required")
	}
	if user.Name == "" {
		return fmt.Errorf("name is required")
	}
	if user.Role == "" {
		user.Role = models.RoleAgent
	}
	if !isValidRole(user.Role) {
		return fmt.Errorf("invalid role: %s (valid: admin, sales, agent)", user.Role)
	}

	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true

	_, err := db.Exec(`
		INSERT INTO users (id, email, name, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID.String(), strings.ToLower(user.Email), user.Name, user.Role, user.IsActive,
		user.CreatedAt, user.UpdatedAt)
	return err
}

func GetUser(db *sql.DB, id uuid.UUID) (*models.User, error) {
	row := db.QueryRow(userSelect+` WHERE id = ?`, id.String())
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return user, err
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	row := db.QueryRow(userSelect+` WHERE email = ?`, strings.ToLower(email))
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return user, err
}

// FindUsers lists users, optionally restricted to one role and to active
// accounts.
func FindUsers(db *sql.DB, role string, activeOnly bool) ([]models.User, error) {
	where := []string{}
	args := []interface{}{}

	if role != "" && role != "All" {
		where = append(where, "role = ?")
		args = append(args, role)
	}
	if activeOnly {
		where = append(where, "is_active = 1")
	}

	query := userSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	return users, rows.Err()
}

// SetUserActive enables or disables an account.
func SetUserActive(db *sql.DB, id uuid.UUID, active bool) error {
	res, err := db.Exec(`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now(), id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

const userSelect = `SELECT id, email, name, role, is_active, created_at, updated_at FROM users`

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func isValidRole(role string) bool {
	switch role {
	case models.RoleAdmin, models.RoleSales, models.RoleAgent:
		return true
	}
	return false
}
