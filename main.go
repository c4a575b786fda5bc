package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/school-assistant/internal/admin"
	"github.com/dtnitsch/school-assistant/internal/ask"
	"github.com/dtnitsch/school-assistant/internal/crawl"
	"github.com/dtnitsch/school-assistant/internal/serve"
)

func main() {
	app := &cli.App{
		Name:  "schoolbot",
		Usage: "Answer questions about a school from its website, manual notes and calendar",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				EnvVars: []string{"SCHOOLBOT_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "crawl",
				Usage:  "Crawl the school website and replace the crawled documents",
				Action: crawl.CrawlAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "export",
						Usage: "Also export the knowledge base to this .json or .yaml file",
					},
				},
			},
			{
				Name:   "refresh",
				Usage:  "Re-crawl once and print a one-line summary",
				Action: crawl.RefreshAction,
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question",
				ArgsUsage: "<question>",
				Action:    ask.AskAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session ID recorded in the conversation log",
					},
					&cli.BoolFlag{
						Name:  "show-sources",
						Usage: "List the documents the answer was drawn from",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Interactive chat; auto-refresh runs in the background",
				Action: ask.ChatAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session ID (default: random)",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the refresh scheduler and metrics endpoint until interrupted",
				Action: serve.ServeAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "refresh-now",
						Usage: "Crawl once before the first scheduled refresh",
					},
				},
			},
			{
				Name:  "docs",
				Usage: "Manage the knowledge base",
				Subcommands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "Add a manual document",
						Action: admin.DocsAddAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "title", Required: true},
							&cli.StringFlag{Name: "content", Required: true},
							&cli.StringFlag{Name: "category", Usage: "Category (default: general)"},
							&cli.StringFlag{Name: "source", Usage: "Source URL (default: manual_entry)"},
						},
					},
					{
						Name:   "list",
						Usage:  "List documents",
						Action: admin.DocsListAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "origin", Usage: "Filter by origin: crawled or manual"},
						},
					},
					{
						Name:      "import",
						Usage:     "Import .txt/.md files or a .json/.yaml export",
						ArgsUsage: "<file>...",
						Action:    admin.DocsImportAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "category", Usage: "Category for imported text files"},
						},
					},
					{
						Name:      "delete",
						Usage:     "Delete manual documents",
						ArgsUsage: "<id>...",
						Action:    admin.DocsDeleteAction,
					},
					{
						Name:      "export",
						Usage:     "Export every document to .json or .yaml",
						ArgsUsage: "<file>",
						Action:    admin.DocsExportAction,
					},
				},
			},
			{
				Name:  "leads",
				Usage: "Manage follow-up requests",
				Subcommands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "Record a visitor who wants to be contacted",
						Action: admin.LeadsAddAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Required: true},
							&cli.StringFlag{Name: "contact", Required: true, Usage: "Phone number or email"},
							&cli.StringFlag{Name: "query", Usage: "What they asked about"},
						},
					},
					{
						Name:   "list",
						Usage:  "List leads",
						Action: admin.LeadsListAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "status", Usage: "Filter: new, contacted, enrolled, closed"},
						},
					},
					{
						Name:      "status",
						Usage:     "Change a lead's status",
						ArgsUsage: "<id> <status>",
						Action:    admin.LeadsStatusAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "by", Value: "admin", Usage: "Who made the change"},
						},
					},
				},
			},
			{
				Name:  "events",
				Usage: "Manage the school calendar",
				Subcommands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "Add an event",
						Action: admin.EventsAddAction,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "title", Required: true},
							&cli.StringFlag{Name: "date", Required: true, Usage: "YYYY-MM-DD"},
							&cli.StringFlag{Name: "description"},
							&cli.StringFlag{Name: "category", Usage: "holiday, celebration or custom (default)"},
							&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
							&cli.BoolFlag{Name: "public-holiday"},
							&cli.StringFlag{Name: "by", Value: "admin"},
						},
					},
					{
						Name:   "list",
						Usage:  "List events",
						Action: admin.EventsListAction,
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "month", Usage: "1-12, 0 for all"},
							&cli.IntFlag{Name: "year", Usage: "0 for all"},
						},
					},
					{
						Name:   "holidays",
						Usage:  "Show public holidays as the assistant would",
						Action: admin.EventsHolidaysAction,
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "month", Usage: "1-12, 0 for upcoming"},
							&cli.IntFlag{Name: "year", Usage: "Default: current year"},
						},
					},
					{
						Name:   "seed",
						Usage:  "Seed national public holidays",
						Action: admin.EventsSeedAction,
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "year", Usage: "Default: current year"},
						},
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Summarize documents, conversations, leads and crawl runs",
				Action: admin.StatsAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "keywords", Value: 10, Usage: "Number of top keywords"},
					&cli.IntFlag{Name: "runs", Value: 5, Usage: "Number of recent crawl runs"},
				},
			},
			{
				Name:   "quickstart",
				Usage:  "Print a usage guide",
				Action: admin.QuickstartAction,
			},
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
