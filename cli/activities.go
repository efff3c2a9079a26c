// ABOUTME: Activity CLI commands
// ABOUTME: Logging lead interactions and viewing the upcoming schedule
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/db"
	"github.com/fieldworkhq/pestcrm/models"
)

// LogActivityCommand records an activity against a lead.
func LogActivityCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("log-activity", flag.ExitOnError)
	activityType := fs.String("type", models.ActivityNote, "Type (call, email, meeting, quote_sent, follow_up, note)")
	description := fs.String("desc", "", "What happened (required)")
	scheduled := fs.String("when", "", "Scheduled date for future activities (YYYY-MM-DD)")
	agenda := fs.String("agenda", "", "Agenda for scheduled activities (call, email, meeting, site_visit, quote_review, contract_signing)")
	userName := fs.String("user", "", "Who logged the activity")
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: log-activity [flags] <lead-id>")
	}
	if *description == "" {
		return fmt.Errorf("--desc is required")
	}
	leadID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid lead ID: %w", err)
	}

	activity := &models.LeadActivity{
		LeadID:       leadID,
		ActivityType: *activityType,
		Description:  *description,
		Agenda:       *agenda,
		UserName:     *userName,
	}
	if *scheduled != "" {
		parsed, err := time.Parse("2006-01-02", *scheduled)
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}
		activity.ScheduledDate = &parsed
	}

	if err := db.AddLeadActivity(database, activity); err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	fmt.Printf("✓ Activity logged (ID: %s)\n", activity.ID)
	if activity.ScheduledDate != nil {
		fmt.Printf("  Scheduled: %s (%s)\n", activity.ScheduledDate.Format("2006-01-02"), activity.Agenda)
	}
	return nil
}

// TimelineCommand prints a lead's activity history, newest first.
func TimelineCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("timeline", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: timeline <lead-id>")
	}
	leadID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid lead ID: %w", err)
	}

	activities, err := db.GetLeadActivities(database, leadID)
	if err != nil {
		return fmt.Errorf("failed to get activities: %w", err)
	}

	if len(activities) == 0 {
		fmt.Println("No activities logged")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tTYPE\tDESCRIPTION\tBY\tDONE")
	_, _ = fmt.Fprintln(w, "----\t----\t-----------\t--\t----")

	for _, a := range activities {
		done := ""
		if a.IsCompleted {
			done = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.CreatedAt.Format("2006-01-02"), a.ActivityType, a.Description, a.UserName, done)
	}
	_ = w.Flush()
	return nil
}

// ScheduleCommand lists scheduled activities over the next N days.
func ScheduleCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	days := fs.Int("days", 7, "How many days ahead to look")
	_ = fs.Parse(args)

	now := time.Now()
	activities, err := db.FindScheduledActivities(database, now, now.AddDate(0, 0, *days))
	if err != nil {
		return fmt.Errorf("failed to get schedule: %w", err)
	}

	if len(activities) == 0 {
		fmt.Printf("Nothing scheduled in the next %d days\n", *days)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WHEN\tAGENDA\tDESCRIPTION\tLEAD\tID")
	_, _ = fmt.Fprintln(w, "----\t------\t-----------\t----\t--")

	for _, a := range activities {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.ScheduledDate.Format("Mon Jan 2"), a.Agenda, a.Description,
			a.LeadID.String()[:8], a.ID.String()[:8])
	}
	_ = w.Flush()
	return nil
}

// CompleteActivityCommand marks a scheduled activity done.
func CompleteActivityCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("complete-activity", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: complete-activity <id>")
	}
	activityID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid activity ID: %w", err)
	}

	if err := db.CompleteActivity(database, activityID); err != nil {
		return fmt.Errorf("failed to complete activity: %w", err)
	}

	fmt.Printf("✓ Activity completed: %s\n", activityID.String()[:8])
	return nil
}
