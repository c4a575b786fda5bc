package admin

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/school-assistant/internal/app"
	"github.com/dtnitsch/school-assistant/internal/common"
	"github.com/dtnitsch/school-assistant/models"
	"github.com/dtnitsch/school-assistant/pkg/db"
	"github.com/dtnitsch/school-assistant/pkg/storage"
)

// DocsAddAction adds a manual document from flags.
func DocsAddAction(c *cli.Context) error {
	a, err := app.Bootstrap(c.Context, c)
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := a.Service.AddManualDocument(c.Context, c.String("title"), c.String("content"), c.String("category"), c.String("source"))
	if err != nil {
		return err
	}
	fmt.Printf("Added document %s (%s, %d chars)\n", doc.ID, doc.Title, utf8.RuneCountInString(doc.Content))
	return nil
}

// DocsImportAction imports text/markdown uploads or a JSON/YAML export.
func DocsImportAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("usage: schoolbot docs import <file>...", 1)
	}
	a, err := app.Bootstrap(c.Context, c)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, path := range c.Args().Slice() {
		switch ext := strings.ToLower(pathExt(path)); ext {
		case ".json", ".yaml", ".yml":
			n, err := a.Service.ImportDocuments(c.Context, path)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", path, err)
			}
			fmt.Printf("Imported %d documents from %s\n", n, path)
		default:
			doc, err := a.Service.ImportFile(c.Context, path, c.String("category"))
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", path, err)
			}
			fmt.Printf("Imported %s as %s\n", path, doc.ID)
		}
	}
	return nil
}

// DocsExportAction writes the knowledge base to a JSON or YAML file.
func DocsExportAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("usage: schoolbot docs export <file.json|file.yaml>", 1)
	}
	a, err := app.Bootstrap(c.Context, c)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.Service.ExportDocuments(path)
	if err != nil {
		return err
	}
	stats, err := new(storage.Storage).GetFileStats(path)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d documents to %s (%d bytes)\n", n, path, stats.SizeBytes)
	return nil
}

// DocsDeleteAction removes manual documents by id.
func DocsDeleteAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("usage: schoolbot docs delete <id>...", 1)
	}
	a, err := app.Bootstrap(c.Context, c)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, id := range c.Args().Slice() {
		if err := a.Service.DeleteManualDocument(c.Context, id); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return cli.Exit(fmt.Sprintf("manual document %s not found", id), 1)
			}
			return err
		}
		fmt.Printf("Deleted document %s\n", id)
	}
	return nil
}

// DocsListAction prints the knowledge base.
func DocsListAction(c *cli.Context) error {
	a, err := app.Bootstrap(c.Context, c)
	if err != nil {
		return err
	}
	defer a.Close()

	origin := models.Origin(c.String("origin"))
	docs := a.Store.All()

	fmt.Printf("%-36s %-8s %-12s %-30s %s\n", "ID", "Origin", "Category", "Title", "Source")
	fmt.Println(strings.Repeat("-", 120))
	shown := 0
	for _, d := range docs {
		if origin != "" && d.Origin != origin {
			continue
		}
		fmt.Printf("%-36s %-8s %-12s %s %s\n", d.ID, d.Origin, d.CategoryOrDefault(), common.Cell(d.Title, 30), d.SourceURL)
		shown++
	}
	fmt.Printf("\nTotal: %d documents\n", shown)
	return nil
}

func pathExt(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 && !strings.ContainsAny(path[i:], `/\`) {
		return path[i:]
	}
	return ""
}
