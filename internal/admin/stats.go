package admin

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/school-assistant/internal/app"
	"github.com/dtnitsch/school-assistant/pkg/help"
	"github.com/dtnitsch/school-assistant/pkg/keywords"
)

// StatsAction prints a summary of the knowledge base, conversations, leads,
// events and recent crawl runs.
func StatsAction(c *cli.Context) error {
	a, err := app.Bootstrap(c.Context, c)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := c.Context

	crawled, manual := a.Store.Counts()
	conversations, err := a.DB.CountConversations(ctx)
	if err != nil {
		return err
	}
	leads, fresh, err := a.DB.CountLeads(ctx)
	if err != nil {
		return err
	}
	events, err := a.DB.CountEvents(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("School:        %s\n", a.Config.School.Name)
	fmt.Printf("Seed URL:      %s\n", a.Config.School.SeedURL)
	fmt.Printf("Documents:     %d crawled, %d manual\n", crawled, manual)
	fmt.Printf("Conversations: %d\n", conversations)
	fmt.Printf("Leads:         %d (%d new)\n", leads, fresh)
	fmt.Printf("Events:        %d\n", events)

	if top := keywords.FromDocuments(a.Store.All(), c.Int("keywords")); len(top) > 0 {
		words := make([]string, len(top))
		for i, k := range top {
			words[i] = fmt.Sprintf("%s(%d)", k.Word, k.Count)
		}
		fmt.Printf("Top keywords:  %s\n", strings.Join(words, " "))
	}

	runs, err := a.DB.ListCrawlRuns(ctx, c.Int("runs"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("\nNo crawl runs yet. Run 'schoolbot crawl' first.")
		return nil
	}
	fmt.Printf("\n%-6s %-20s %-9s %-7s %-6s %-7s %-5s %s\n", "Run", "Started", "Outcome", "Fetched", "Failed", "Skipped", "Docs", "Error")
	fmt.Println(strings.Repeat("-", 100))
	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-9s %-7d %-6d %-7d %-5d %s\n",
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Outcome,
			r.PagesFetched,
			r.FailedCount,
			r.SkippedCount,
			r.DocumentCount,
			r.ErrorMessage,
		)
	}
	return nil
}

// QuickstartAction prints a short usage guide.
func QuickstartAction(c *cli.Context) error {
	fmt.Print(help.QuickstartYAML)
	return nil
}
