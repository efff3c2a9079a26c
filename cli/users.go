// ABOUTME: User CLI commands
// ABOUTME: Team member management
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/fieldworkhq/pestcrm/db"
	"github.com/fieldworkhq/pestcrm/models"
)

// AddUserCommand adds a team member.
func AddUserCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-user", flag.ExitOnError)
	email := fs.String("email", "", "Email address (required)")
	name := fs.String("name", "", "Display name (required)")
	role := fs.String("role", models.RoleAgent, "Role (admin, sales, agent)")
	_ = fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("--email is required")
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	user := &models.User{Email: *email, Name: *name, Role: *role}
	if err := db.CreateUser(database, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("✓ User created: %s <%s> (ID: %s)\n", user.Name, user.Email, user.ID)
	fmt.Printf("  Role: %s\n", user.Role)
	return nil
}

// ListUsersCommand lists team members.
func ListUsersCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ExitOnError)
	role := fs.String("role", "", "Filter by role (admin, sales, agent, All)")
	all := fs.Bool("all", false, "Include deactivated users")
	_ = fs.Parse(args)

	users, err := db.FindUsers(database, *role, !*all)
	if err != nil {
		return fmt.Errorf("failed to find users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tROLE\tACTIVE\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t----\t------\t--")

	for _, u := range users {
		active := "yes"
		if !u.IsActive {
			active = "no"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			u.Name, u.Email, u.Role, active, u.ID.String()[:8])
	}
	_ = w.Flush()
	return nil
}

// DeactivateUserCommand deactivates a team member.
func DeactivateUserCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("deactivate-user", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: deactivate-user <id>")
	}
	userID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}

	if err := db.SetUserActive(database, userID, false); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	fmt.Printf("✓ User deactivated: %s\n", userID.String()[:8])
	return nil
}
