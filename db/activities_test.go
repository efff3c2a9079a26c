// ABOUTME: Tests for lead activity logging and completion
// ABOUTME: Covers agenda validation, last-contact updates, and scheduled queries
package db

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/models"
)

func TestAddLeadActivity(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	lead := makeTestLead(t, db)

	activity := &models.LeadActivity{
		LeadID:       lead.ID,
		ActivityType: models.ActivityCall,
		Description:  "Initial contact call. Scheduled inspection for next Tuesday.",
		UserName:     "Alex Thompson",
	}
	if err := AddLeadActivity(db, activity); err != nil {
		t.Fatalf("AddLeadActivity failed: %v", err)
	}

	if activity.ID == uuid.Nil {
		t.Error("Activity ID was not set")
	}

	// Logging an activity refreshes the lead's last contact
	found, err := GetLead(db, lead.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if found.LastContactAt == nil {
		t.Error("Expected last contact to be recorded")
	}
}

func TestAddLeadActivityScheduledRequiresAgenda(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	lead := makeTestLead(t, db)
	scheduled := time.Now().AddDate(0, 0, 7)

	activity := &models.LeadActivity{
		LeadID:        lead.ID,
		ActivityType:  models.ActivityFollowUp,
		Description:   "Call back next week",
		ScheduledDate: &scheduled,
	}
	if err := AddLeadActivity(db, activity); err == nil {
		t.Error("Expected error when scheduled date is set without an agenda")
	}

	activity.Agenda = models.AgendaCall
	if err := AddLeadActivity(db, activity); err != nil {
		t.Fatalf("AddLeadActivity with agenda failed: %v", err)
	}
}

func TestAddLeadActivityValidation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	lead := makeTestLead(t, db)

	if err := AddLeadActivity(db, &models.LeadActivity{LeadID: lead.ID}); err == nil {
		t.Error("Expected error for missing description")
	}

	err := AddLeadActivity(db, &models.LeadActivity{
		LeadID:       lead.ID,
		ActivityType: "carrier_pigeon",
		Description:  "sent a bird",
	})
	if err == nil {
		t.Error("Expected error for invalid activity type")
	}

	err = AddLeadActivity(db, &models.LeadActivity{
		LeadID:      uuid.New(),
		Description: "ghost lead",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown lead, got %v", err)
	}
}

func TestCompleteActivity(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	lead := makeTestLead(t, db)
	scheduled := time.Now().AddDate(0, 0, 2)
	activity := &models.LeadActivity{
		LeadID:        lead.ID,
		ActivityType:  models.ActivityFollowUp,
		Description:   "Customer requested a call back",
		ScheduledDate: &scheduled,
		Agenda:        models.AgendaCall,
	}
	if err := AddLeadActivity(db, activity); err != nil {
		t.Fatalf("AddLeadActivity failed: %v", err)
	}

	if err := CompleteActivity(db, activity.ID); err != nil {
		t.Fatalf("CompleteActivity failed: %v", err)
	}

	activities, err := GetLeadActivities(db, lead.ID)
	if err != nil {
		t.Fatalf("GetLeadActivities failed: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("Expected 1 activity, got %d", len(activities))
	}
	if !activities[0].IsCompleted || activities[0].CompletedDate == nil {
		t.Error("Expected activity marked completed with a completion date")
	}

	// Completing twice is a no-op, not an error
	if err := CompleteActivity(db, activity.ID); err != nil {
		t.Errorf("Second completion should no-op, got %v", err)
	}
}

func TestCompleteActivityNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	err := CompleteActivity(db, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFindScheduledActivities(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	lead := makeTestLead(t, db)
	now := time.Now()

	dates := []time.Time{
		now.AddDate(0, 0, 1),
		now.AddDate(0, 0, 3),
		now.AddDate(0, 0, 30), // outside the window
	}
	for _, d := range dates {
		scheduled := d
		activity := &models.LeadActivity{
			LeadID:        lead.ID,
			ActivityType:  models.ActivityFollowUp,
			Description:   "Follow up",
			ScheduledDate: &scheduled,
			Agenda:        models.AgendaSiteVisit,
		}
		if err := AddLeadActivity(db, activity); err != nil {
			t.Fatalf("AddLeadActivity failed: %v", err)
		}
	}

	upcoming, err := FindScheduledActivities(db, now, now.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("FindScheduledActivities failed: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("Expected 2 activities inside the window, got %d", len(upcoming))
	}
	if !upcoming[0].ScheduledDate.Before(*upcoming[1].ScheduledDate) {
		t.Error("Expected soonest-first ordering")
	}
}
