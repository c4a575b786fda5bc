package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dtnitsch/school-assistant/models"
)

// LoadCrawledDocuments returns the crawled set in crawl order.
func (db *DB) LoadCrawledDocuments(ctx context.Context) ([]models.Document, error) {
	docs, err := db.queryDocuments(ctx, `
		SELECT doc_id, title, content, category, source_url, created_at
		FROM crawled_documents ORDER BY position
	`, models.OriginCrawled)
	if err != nil {
		return nil, fmt.Errorf("failed to load crawled documents: %w", err)
	}
	return docs, nil
}

// LoadManualDocuments returns manual documents in insertion order.
func (db *DB) LoadManualDocuments(ctx context.Context) ([]models.Document, error) {
	docs, err := db.queryDocuments(ctx, `
		SELECT doc_id, title, content, category, source_url, created_at
		FROM manual_documents ORDER BY position
	`, models.OriginManual)
	if err != nil {
		return nil, fmt.Errorf("failed to load manual documents: %w", err)
	}
	return docs, nil
}

// ReplaceCrawledDocuments swaps the whole crawled set in one transaction.
func (db *DB) ReplaceCrawledDocuments(ctx context.Context, docs []models.Document) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM crawled_documents"); err != nil {
		return fmt.Errorf("failed to clear crawled documents: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO crawled_documents (position, doc_id, title, content, category, source_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range docs {
		if _, err := stmt.ExecContext(ctx, i, d.ID, d.Title, d.Content, d.CategoryOrDefault(), d.SourceURL, formatTime(d.CreatedAt)); err != nil {
			return fmt.Errorf("failed to insert crawled document %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit crawled documents: %w", err)
	}
	return nil
}

// InsertManualDocument appends one manual document.
func (db *DB) InsertManualDocument(ctx context.Context, d models.Document) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO manual_documents (doc_id, title, content, category, source_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, d.Title, d.Content, d.CategoryOrDefault(), d.SourceURL, formatTime(d.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert manual document: %w", err)
	}
	return nil
}

// DeleteManualDocument removes a manual document by id.
func (db *DB) DeleteManualDocument(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM manual_documents WHERE doc_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete manual document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("manual document %s: %w", id, ErrNotFound)
	}
	return nil
}

func (db *DB) queryDocuments(ctx context.Context, query string, origin models.Origin) ([]models.Document, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var (
			d         models.Document
			sourceURL sql.NullString
			createdAt string
		)
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &d.Category, &sourceURL, &createdAt); err != nil {
			return nil, err
		}
		d.SourceURL = sourceURL.String
		d.CreatedAt = parseTime(createdAt)
		d.Origin = origin
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
