// ABOUTME: Lead activity MCP tool handlers
// ABOUTME: Implements log_activity, complete_activity, lead timelines, and the schedule view
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fieldworkhq/pestcrm/db"
	"github.com/fieldworkhq/pestcrm/models"
)

type ActivityHandlers struct {
	db *sql.DB
}

func NewActivityHandlers(database *sql.DB) *ActivityHandlers {
	return &ActivityHandlers{db: database}
}

type ActivityOutput struct {
	ID            string  `json:"id"`
	LeadID        string  `json:"lead_id"`
	ActivityType  string  `json:"activity_type"`
	Description   string  `json:"description"`
	ScheduledDate *string `json:"scheduled_date,omitempty"`
	Agenda        string  `json:"agenda,omitempty"`
	CompletedDate *string `json:"completed_date,omitempty"`
	IsCompleted   bool    `json:"is_completed"`
	UserName      string  `json:"user_name,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type LogActivityInput struct {
	LeadID        string `json:"lead_id" jsonschema:"Lead ID (required)"`
	ActivityType  string `json:"activity_type,omitempty" jsonschema:"Type: call, email, meeting, quote_sent, follow_up, note (default note)"`
	Description   string `json:"description" jsonschema:"What happened (required)"`
	ScheduledDate string `json:"scheduled_date,omitempty" jsonschema:"Scheduled date in ISO 8601 format for future activities"`
	Agenda        string `json:"agenda,omitempty" jsonschema:"Agenda for scheduled activities: call, email, meeting, site_visit, quote_review, contract_signing"`
	UserName      string `json:"user_name,omitempty" jsonschema:"Who logged the activity"`
}

func (h *ActivityHandlers) LogActivity(_ context.Context, request *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	if input.LeadID == "" {
		return nil, ActivityOutput{}, fmt.Errorf("lead_id is required")
	}
	leadID, err := uuid.Parse(input.LeadID)
	if err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("invalid lead_id: %w", err)
	}

	activity := &models.LeadActivity{
		LeadID:       leadID,
		ActivityType: input.ActivityType,
		Description:  input.Description,
		Agenda:       input.Agenda,
		UserName:     input.UserName,
	}
	if input.ScheduledDate != "" {
		parsed, err := time.Parse(time.RFC3339, input.ScheduledDate)
		if err != nil {
			return nil, ActivityOutput{}, fmt.Errorf("invalid scheduled_date format (use ISO 8601/RFC3339): %w", err)
		}
		activity.ScheduledDate = &parsed
	}

	if err := db.AddLeadActivity(h.db, activity); err != nil {
		return nil, ActivityOutput{}, fmt.Errorf("failed to log activity: %w", err)
	}

	return nil, activityToOutput(activity), nil
}

type CompleteActivityInput struct {
	ID string `json:"id" jsonschema:"Activity ID (required)"`
}

type CompleteActivityOutput struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}

func (h *ActivityHandlers) CompleteActivity(_ context.Context, request *mcp.CallToolRequest, input CompleteActivityInput) (*mcp.CallToolResult, CompleteActivityOutput, error) {
	if input.ID == "" {
		return nil, CompleteActivityOutput{}, fmt.Errorf("id is required")
	}
	activityID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, CompleteActivityOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	if err := db.CompleteActivity(h.db, activityID); err != nil {
		return nil, CompleteActivityOutput{}, fmt.Errorf("failed to complete activity: %w", err)
	}

	return nil, CompleteActivityOutput{ID: input.ID, Completed: true}, nil
}

type LeadActivitiesInput struct {
	LeadID string `json:"lead_id" jsonschema:"Lead ID (required)"`
}

type ActivitiesOutput struct {
	Activities []ActivityOutput `json:"activities"`
	Count      int              `json:"count"`
}

// GetLeadActivities returns a lead's activity timeline, newest first.
func (h *ActivityHandlers) GetLeadActivities(_ context.Context, request *mcp.CallToolRequest, input LeadActivitiesInput) (*mcp.CallToolResult, ActivitiesOutput, error) {
	if input.LeadID == "" {
		return nil, ActivitiesOutput{}, fmt.Errorf("lead_id is required")
	}
	leadID, err := uuid.Parse(input.LeadID)
	if err != nil {
		return nil, ActivitiesOutput{}, fmt.Errorf("invalid lead_id: %w", err)
	}

	activities, err := db.GetLeadActivities(h.db, leadID)
	if err != nil {
		return nil, ActivitiesOutput{}, fmt.Errorf("failed to get activities: %w", err)
	}

	output := ActivitiesOutput{Count: len(activities)}
	for i := range activities {
		output.Activities = append(output.Activities, activityToOutput(&activities[i]))
	}
	return nil, output, nil
}

type ScheduleInput struct {
	Days int `json:"days,omitempty" jsonschema:"How many days ahead to look (default 7)"`
}

// GetSchedule returns upcoming scheduled activities, soonest first.
func (h *ActivityHandlers) GetSchedule(_ context.Context, request *mcp.CallToolRequest, input ScheduleInput) (*mcp.CallToolResult, ActivitiesOutput, error) {
	days := input.Days
	if days <= 0 {
		days = 7
	}

	now := time.Now()
	activities, err := db.FindScheduledActivities(h.db, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, ActivitiesOutput{}, fmt.Errorf("failed to get schedule: %w", err)
	}

	output := ActivitiesOutput{Count: len(activities)}
	for i := range activities {
		output.Activities = append(output.Activities, activityToOutput(&activities[i]))
	}
	return nil, output, nil
}

func activityToOutput(a *models.LeadActivity) ActivityOutput {
	output := ActivityOutput{
		ID:           a.ID.String(),
		LeadID:       a.LeadID.String(),
		ActivityType: a.ActivityType,
		Description:  a.Description,
		Agenda:       a.Agenda,
		IsCompleted:  a.IsCompleted,
		UserName:     a.UserName,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
	if a.ScheduledDate != nil {
		s := a.ScheduledDate.Format(time.RFC3339)
		output.ScheduledDate = &s
	}
	if a.CompletedDate != nil {
		s := a.CompletedDate.Format(time.RFC3339)
		output.CompletedDate = &s
	}
	return output
}
