// ABOUTME: User MCP tool handlers
// ABOUTME: Implements add_user and find_users
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fieldworkhq/pestcrm/db"
	"github.com/fieldworkhq/pestcrm/models"
)

type UserHandlers struct {
	db *sql.DB
}

func NewUserHandlers(database *sql.DB) *UserHandlers {
	return &UserHandlers{db: database}
}

type UserOutput struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type AddUserInput struct {
	Email string `json:"email" jsonschema:"Email address (required, unique)"`
	Name  string `json:"name" jsonschema:"Display name (required)"`
	Role  string `json:"role,omitempty" jsonschema:"Role: admin, sales, agent (default agent)"`
}

func (h *UserHandlers) AddUser(_ context.Context, request *mcp.CallToolRequest, input AddUserInput) (*mcp.CallToolResult, UserOutput, error) {
	user := &models.User{Email: input.Email, Name: input.Name, Role: input.Role}
	if err := db.CreateUser(h.db, user); err != nil {
		return nil, UserOutput{}, fmt.Errorf("failed to create user: %w", err)
	}
	return nil, userToOutput(user), nil
}

type FindUsersInput struct {
	Role       string `json:"role,omitempty" jsonschema:"Filter by role: admin, sales, agent, or All"`
	ActiveOnly bool   `json:"active_only,omitempty" jsonschema:"Only return active users"`
}

type FindUsersOutput struct {
	Users []UserOutput `json:"users"`
	Count int          `json:"count"`
}

func (h *UserHandlers) FindUsers(_ context.Context, request *mcp.CallToolRequest, input FindUsersInput) (*mcp.CallToolResult, FindUsersOutput, error) {
	users, err := db.FindUsers(h.db, input.Role, input.ActiveOnly)
	if err != nil {
		return nil, FindUsersOutput{}, fmt.Errorf("failed to find users: %w", err)
	}

	output := FindUsersOutput{Count: len(users)}
	for i := range users {
		output.Users = append(output.Users, userToOutput(&users[i]))
	}
	return nil, output, nil
}

func userToOutput(u *models.User) UserOutput {
	return UserOutput{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
