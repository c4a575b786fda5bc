package crawl

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/school-assistant/internal/app"
	"github.com/dtnitsch/school-assistant/internal/common"
	"github.com/dtnitsch/school-assistant/pkg/chatbot"
	"github.com/dtnitsch/school-assistant/pkg/crawler"
)

// CrawlAction runs one crawl, replaces the crawled documents and lists them.
func CrawlAction(c *cli.Context) error {
	a, err := app.Bootstrap(c.Context, c)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Service.Refresh(c.Context)
	if res != nil {
		printResult(res)
	}
	if err != nil {
		return crawlError(err)
	}

	if path := c.String("export"); path != "" {
		n, err := a.Service.ExportDocuments(path)
		if err != nil {
			return fmt.Errorf("failed to export documents: %w", err)
		}
		fmt.Printf("\nExported %d documents to %s\n", n, path)
	}
	return nil
}

// RefreshAction is the one-line form of CrawlAction for cron jobs.
func RefreshAction(c *cli.Context) error {
	a, err := app.Bootstrap(c.Context, c)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Service.Refresh(c.Context)
	if err != nil {
		return crawlError(err)
	}
	crawled, manual := a.Store.Counts()
	fmt.Printf("Refreshed: %d pages fetched, %d crawled documents, %d manual documents\n",
		res.PagesFetched, crawled, manual)
	return nil
}

func crawlError(err error) error {
	switch {
	case errors.Is(err, crawler.ErrInvalidSeed):
		return cli.Exit(fmt.Sprintf("configuration error: %v", err), 2)
	case errors.Is(err, chatbot.ErrEmptyCrawl):
		return cli.Exit("crawl produced no documents; the previous knowledge base was kept", 1)
	}
	return err
}

func printResult(res *crawler.Result) {
	fmt.Printf("%-4s %-30s %-10s %-7s %s\n", "#", "Title", "Category", "Chars", "URL")
	fmt.Println(strings.Repeat("-", 100))
	for i, d := range res.Documents {
		fmt.Printf("%-4d %s %-10s %-7d %s\n",
			i+1,
			common.Cell(d.Title, 30),
			d.CategoryOrDefault(),
			utf8.RuneCountInString(d.Content),
			d.SourceURL,
		)
	}
	fmt.Printf("\nPages fetched: %d | Documents: %d | Failed: %d | Skipped: %d | Duplicates: %d | Discovered: %d\n",
		res.PagesFetched, len(res.Documents), res.Failed, res.Skipped, res.Duplicates, res.Discovered)
}
