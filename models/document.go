// Package models defines the data structures shared by the crawler, the
// knowledge store and the answering pipeline.
package models

import (
	"strings"
	"time"
)

// Origin records where a document came from.
type Origin string

const (
	OriginCrawled Origin = "crawled"
	OriginManual  Origin = "manual"
)

// Sentinel source values for documents that have no web page behind them.
const (
	SourceManualEntry  = "manual_entry"
	SourceUploadedFile = "uploaded_file"
)

// DefaultCategory is used when a document is stored without a category.
const DefaultCategory = "general"

// Document is a unit of retrievable text.
type Document struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	Category  string    `json:"category" yaml:"category"`
	Origin    Origin    `json:"origin" yaml:"origin"`
	SourceURL string    `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// LinkableSource reports whether SourceURL points at a real web page.
func (d Document) LinkableSource() bool {
	switch d.SourceURL {
	case "", SourceManualEntry, SourceUploadedFile:
		return false
	}
	return strings.HasPrefix(d.SourceURL, "http://") || strings.HasPrefix(d.SourceURL, "https://")
}

// CategoryOrDefault returns the category, falling back to DefaultCategory.
func (d Document) CategoryOrDefault() string {
	if d.Category == "" {
		return DefaultCategory
	}
	return d.Category
}
