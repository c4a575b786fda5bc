package admin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/school-assistant/internal/app"
	"github.com/dtnitsch/school-assistant/internal/common"
	"github.com/dtnitsch/school-assistant/models"
	dbpkg "github.com/dtnitsch/school-assistant/pkg/db"
)

// LeadsAddAction records a visitor who asked to be contacted.
func LeadsAddAction(c *cli.Context) error {
	name := strings.TrimSpace(c.String("name"))
	contact := strings.TrimSpace(c.String("contact"))
	if name == "" || contact == "" {
		return cli.Exit("both --name and --contact are required", 1)
	}

	_, database, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := database.InsertLead(c.Context, name, contact, c.String("query"))
	if err != nil {
		return err
	}
	fmt.Printf("Lead %d recorded. Staff will follow up with %s.\n", id, name)
	return nil
}

// LeadsListAction prints leads, optionally filtered by --status.
func LeadsListAction(c *cli.Context) error {
	status := models.LeadStatus(c.String("status"))
	if status != "" && !status.Valid() {
		return cli.Exit(fmt.Sprintf("unknown status %q", status), 1)
	}

	_, database, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	leads, err := database.ListLeads(c.Context, status)
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}
	if len(leads) == 0 {
		fmt.Println("No leads found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-20s %-24s %-10s %s\n", "ID", "Created", "Name", "Contact", "Status", "Query")
	fmt.Println(strings.Repeat("-", 120))
	for _, l := range leads {
		fmt.Printf("%-6d %-20s %s %s %-10s %s\n",
			l.ID,
			l.CreatedAt.Format("2006-01-02 15:04:05"),
			common.Cell(l.Name, 20),
			common.Cell(l.Contact, 24),
			l.Status,
			common.Truncate(l.Query, 40),
		)
	}
	fmt.Printf("\nTotal: %d leads\n", len(leads))
	return nil
}

// LeadsStatusAction moves a lead to a new status: leads status <id> <status>.
func LeadsStatusAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: schoolbot leads status <id> <new|contacted|enrolled|closed>", 1)
	}
	id, err := parseID(c.Args().Get(0))
	if err != nil {
		return err
	}
	status := models.LeadStatus(c.Args().Get(1))

	_, database, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.UpdateLeadStatus(c.Context, id, status, c.String("by")); err != nil {
		if errors.Is(err, dbpkg.ErrNotFound) {
			return cli.Exit(fmt.Sprintf("lead %d not found", id), 1)
		}
		return err
	}
	fmt.Printf("Lead %d is now %s\n", id, status)
	return nil
}

func parseID(arg string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(arg, "%d", &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID: %s", arg)
	}
	return id, nil
}
