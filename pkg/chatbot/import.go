package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dtnitsch/school-assistant/models"
	"github.com/dtnitsch/school-assistant/pkg/storage"
)

// ImportFile adds an uploaded plain-text or markdown file as a manual
// document titled after the file name.
func (s *Service) ImportFile(ctx context.Context, path, category string) (models.Document, error) {
	st := &storage.Storage{}
	title, text, err := st.ReadText(path)
	if err != nil {
		return models.Document{}, err
	}
	return s.AddManualDocument(ctx, title, text, category, models.SourceUploadedFile)
}

// ImportDocuments adds every document in a JSON or YAML export as a manual
// document and returns how many were added. Entries without a title or
// content are skipped.
func (s *Service) ImportDocuments(ctx context.Context, path string) (int, error) {
	st := &storage.Storage{}
	docs, err := st.ImportDocuments(path)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, d := range docs {
		source := d.SourceURL
		if strings.TrimSpace(source) == "" {
			source = models.SourceUploadedFile
		}
		if _, err := s.AddManualDocument(ctx, d.Title, d.Content, d.Category, source); err != nil {
			if errors.Is(err, ErrInvalidDocument) {
				s.log.Warn("Skipping imported document", "title", d.Title, "error", err)
				continue
			}
			return added, fmt.Errorf("importing %q: %w", d.Title, err)
		}
		added++
	}
	return added, nil
}

// ExportDocuments writes the current knowledge base to path.
func (s *Service) ExportDocuments(path string) (int, error) {
	docs := s.deps.Store.All()
	st := &storage.Storage{}
	if err := st.ExportDocuments(path, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}
