// ABOUTME: Lead activity log database operations
// ABOUTME: Handles activity recording, completion, and scheduled follow-up queries
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/models"
)

// AddLeadActivity appends an activity to a lead's log and refreshes the
// lead's last-contact timestamp in the same transaction. A scheduled date
// requires an agenda.
func AddLeadActivity(db *sql.DB, activity *models.LeadActivity) error {
	if activity.Description == "" {
		return fmt.Errorf("description is required")
	}
	if activity.ActivityType == "" {
		activity.ActivityType = models.ActivityNote
	}
	if !isValidActivityType(activity.ActivityType) {
		return fmt.Errorf("invalid activity type: %s (valid: call, email, meeting, quote_sent, follow_up, note)", activity.ActivityType)
	}
	if activity.ScheduledDate != nil && activity.Agenda == "" {
		return fmt.Errorf("agenda is required when a scheduled date is set")
	}
	if activity.Agenda != "" && !isValidAgenda(activity.Agenda) {
		return fmt.Errorf("invalid agenda: %s (valid: call, email, meeting, site_visit, quote_review, contract_signing)", activity.Agenda)
	}

	activity.ID = uuid.New()
	activity.CreatedAt = time.Now()
	if activity.IsCompleted && activity.CompletedDate == nil {
		activity.CompletedDate = &activity.CreatedAt
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := getLead(tx, activity.LeadID); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO lead_activities (id, lead_id, activity_type, description, scheduled_date,
			agenda, completed_date, is_completed, user_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, activity.ID.String(), activity.LeadID.String(), activity.ActivityType, activity.Description,
		activity.ScheduledDate, activity.Agenda, activity.CompletedDate, activity.IsCompleted,
		activity.UserName, activity.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE leads SET last_contact_at = ?, updated_at = ? WHERE id = ?`,
		activity.CreatedAt, activity.CreatedAt, activity.LeadID.String()); err != nil {
		return err
	}

	return tx.Commit()
}

// GetLeadActivities returns a lead's activity log, newest first.
func GetLeadActivities(db *sql.DB, leadID uuid.UUID) ([]models.LeadActivity, error) {
	rows, err := db.Query(activitySelect+` WHERE lead_id = ? ORDER BY created_at DESC`, leadID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

// CompleteActivity flips an activity to completed. Completion is the only
// mutation the log permits.
func CompleteActivity(db *sql.DB, id uuid.UUID) error {
	now := time.Now()
	res, err := db.Exec(`
		UPDATE lead_activities SET is_completed = 1, completed_date = ?
		WHERE id = ? AND is_completed = 0
	`, now, id.String())
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either unknown or already completed; distinguish for the caller.
		var completed bool
		err := db.QueryRow(`SELECT is_completed FROM lead_activities WHERE id = ?`, id.String()).Scan(&completed)
		if err == sql.ErrNoRows {
			return fmt.Errorf("activity %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// FindScheduledActivities returns incomplete activities scheduled inside the
// window, soonest first. Feeds the schedule view.
func FindScheduledActivities(db *sql.DB, from, to time.Time) ([]models.LeadActivity, error) {
	rows, err := db.Query(activitySelect+`
		WHERE is_completed = 0 AND scheduled_date IS NOT NULL AND scheduled_date >= ? AND scheduled_date < ?
		ORDER BY scheduled_date`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectActivities(rows)
}

const activitySelect = `
	SELECT id, lead_id, activity_type, description, scheduled_date, agenda, completed_date,
		is_completed, user_name, created_at
	FROM lead_activities`

func collectActivities(rows *sql.Rows) ([]models.LeadActivity, error) {
	var activities []models.LeadActivity
	for rows.Next() {
		var a models.LeadActivity
		var agenda, userName sql.NullString
		var scheduled, completed sql.NullTime

		if err := rows.Scan(&a.ID, &a.LeadID, &a.ActivityType, &a.Description, &scheduled,
			&agenda, &completed, &a.IsCompleted, &userName, &a.CreatedAt); err != nil {
			return nil, err
		}

		a.Agenda = agenda.String
		a.UserName = userName.String
		if scheduled.Valid {
			t := scheduled.Time
			a.ScheduledDate = &t
		}
		if completed.Valid {
			t := completed.Time
			a.CompletedDate = &t
		}
		activities = append(activities, a)
	}

	return activities, rows.Err()
}

func isValidActivityType(activityType string) bool {
	switch activityType {
	case models.ActivityCall, models.ActivityEmail, models.ActivityMeeting,
		models.ActivityQuoteSent, models.ActivityFollowUp, models.ActivityNote:
		return true
	}
	return false
}

func isValidAgenda(agenda string) bool {
	switch agenda {
	case models.AgendaCall, models.AgendaEmail, models.AgendaMeeting,
		models.AgendaSiteVisit, models.AgendaQuoteReview, models.AgendaContractSigning:
		return true
	}
	return false
}
