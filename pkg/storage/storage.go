// Package storage reads and writes knowledge-base files: document exports in
// JSON or YAML and plain-text uploads.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/school-assistant/models"
)

// ErrUnsupportedFormat is returned for file extensions the assistant cannot read.
var ErrUnsupportedFormat = errors.New("unsupported file format")

type Storage struct{}

// FileStats holds metadata about a file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

func (s *Storage) SaveFile(filePath string, content []byte) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

func (s *Storage) ReadFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return data, nil
}

// GetFileStats returns metadata about a file using os.Stat (no I/O overhead).
func (s *Storage) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error getting file stats: %w", err)
	}

	return &FileStats{
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

type documentFile struct {
	ExportedAt time.Time         `json:"exported_at" yaml:"exported_at"`
	Documents  []models.Document `json:"documents" yaml:"documents"`
}

// ExportDocuments writes docs to path as JSON or YAML, chosen by extension.
func (s *Storage) ExportDocuments(path string, docs []models.Document) error {
	file := documentFile{ExportedAt: time.Now().UTC(), Documents: docs}

	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(file, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(file)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("error encoding documents: %w", err)
	}
	return s.SaveFile(path, data)
}

// ImportDocuments reads a file written by ExportDocuments.
func (s *Storage) ImportDocuments(path string) ([]models.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var unmarshal func([]byte, any) error
	switch ext {
	case ".json":
		unmarshal = json.Unmarshal
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	data, err := s.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file documentFile
	if err := unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return file.Documents, nil
}

// ReadText returns the text of an uploaded plain-text or markdown file along
// with a title derived from its name.
func (s *Storage) ReadText(path string) (title, text string, err error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md", ".markdown":
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	data, err := s.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	base := filepath.Base(path)
	title = strings.TrimSuffix(base, filepath.Ext(base))
	return title, strings.TrimSpace(string(data)), nil
}
