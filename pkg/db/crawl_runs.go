package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CrawlRun records the outcome of one crawl attempt.
type CrawlRun struct {
	RunID          int64
	StartedAt      time.Time
	FinishedAt     time.Time
	SeedURL        string
	PagesFetched   int
	FailedCount    int
	SkippedCount   int
	DuplicateCount int
	DocumentCount  int
	Outcome        string
	ErrorMessage   string
}

// InsertCrawlRun stores a finished run and returns its id.
func (db *DB) InsertCrawlRun(ctx context.Context, r CrawlRun) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO crawl_runs (started_at, finished_at, seed_url, pages_fetched, failed_count,
			skipped_count, duplicate_count, document_count, outcome, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, formatTime(r.StartedAt), formatTime(r.FinishedAt), r.SeedURL, r.PagesFetched, r.FailedCount,
		r.SkippedCount, r.DuplicateCount, r.DocumentCount, r.Outcome, r.ErrorMessage)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get crawl run ID: %w", err)
	}
	return id, nil
}

// ListCrawlRuns returns the most recent runs first.
func (db *DB) ListCrawlRuns(ctx context.Context, limit int) ([]CrawlRun, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, started_at, finished_at, seed_url, pages_fetched, failed_count,
			skipped_count, duplicate_count, document_count, outcome, error_message
		FROM crawl_runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []CrawlRun
	for rows.Next() {
		var (
			r                 CrawlRun
			started, finished string
			errMsg            sql.NullString
		)
		if err := rows.Scan(&r.RunID, &started, &finished, &r.SeedURL, &r.PagesFetched, &r.FailedCount,
			&r.SkippedCount, &r.DuplicateCount, &r.DocumentCount, &r.Outcome, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		r.ErrorMessage = errMsg.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
