package admin

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/school-assistant/internal/app"
	"github.com/dtnitsch/school-assistant/internal/common"
	"github.com/dtnitsch/school-assistant/models"
	"github.com/dtnitsch/school-assistant/pkg/calendar"
	"github.com/dtnitsch/school-assistant/pkg/composer"
)

const dateLayout = "2006-01-02"

// EventsAddAction adds a calendar event.
func EventsAddAction(c *cli.Context) error {
	date, err := time.Parse(dateLayout, c.String("date"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid --date %q, expected YYYY-MM-DD", c.String("date")), 1)
	}

	_, database, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	cal := calendar.New(database, nil)
	id, err := cal.AddEvent(c.Context, models.Event{
		Title:           c.String("title"),
		Description:     c.String("description"),
		Date:            date,
		Category:        c.String("category"),
		Tags:            splitTags(c.String("tags")),
		IsPublicHoliday: c.Bool("public-holiday"),
		CreatedBy:       c.String("by"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added event %d on %s\n", id, date.Format(dateLayout))
	return nil
}

// EventsListAction prints events, filtered by --month and --year.
func EventsListAction(c *cli.Context) error {
	_, database, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	events, err := calendar.New(database, nil).Events(c.Context, c.Int("month"), c.Int("year"))
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("No events found")
		return nil
	}

	fmt.Printf("%-6s %-12s %-30s %-12s %-7s %s\n", "ID", "Date", "Title", "Category", "Public", "Tags")
	fmt.Println(strings.Repeat("-", 100))
	for _, e := range events {
		fmt.Printf("%-6d %-12s %s %-12s %-7t %s\n",
			e.ID,
			e.Date.Format(dateLayout),
			common.Cell(e.Title, 30),
			e.Category,
			e.IsPublicHoliday,
			strings.Join(e.Tags, ","),
		)
	}
	fmt.Printf("\nTotal: %d events\n", len(events))
	return nil
}

// EventsHolidaysAction prints public holidays the way the assistant answers
// holiday questions.
func EventsHolidaysAction(c *cli.Context) error {
	_, database, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	month, year := c.Int("month"), c.Int("year")
	if year == 0 {
		year = time.Now().Year()
	}
	holidays, err := calendar.New(database, nil).Holidays(c.Context, month, year)
	if err != nil {
		return fmt.Errorf("failed to list holidays: %w", err)
	}
	if len(holidays) == 0 {
		fmt.Println(composer.NoHolidays(month))
		return nil
	}
	fmt.Print(composer.FormatHolidays(holidays, month))
	return nil
}

// EventsSeedAction seeds the national holidays for --year.
func EventsSeedAction(c *cli.Context) error {
	_, database, err := app.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	year := c.Int("year")
	if year == 0 {
		year = time.Now().Year()
	}
	added, err := calendar.New(database, nil).SeedPublicHolidays(c.Context, year)
	if err != nil {
		return fmt.Errorf("failed to seed holidays: %w", err)
	}
	fmt.Printf("Seeded %d public holidays for %d\n", added, year)
	return nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
