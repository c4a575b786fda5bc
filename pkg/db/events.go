package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dtnitsch/school-assistant/models"
)

const dateLayout = "2006-01-02"

// EventFilter narrows an event query. Zero values match everything.
type EventFilter struct {
	Month          int
	Year           int
	PublicHolidays bool
}

// InsertEvent stores an event and returns its id.
func (db *DB) InsertEvent(ctx context.Context, e models.Event) (int64, error) {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO events (title, description, event_date, category, tags, is_public_holiday, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Title, e.Description, e.Date.Format(dateLayout), e.Category, strings.Join(e.Tags, ","),
		e.IsPublicHoliday, e.CreatedBy, formatTime(createdAt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get event ID: %w", err)
	}
	return id, nil
}

// PublicHolidayExists reports whether date already carries a public holiday.
func (db *DB) PublicHolidayExists(ctx context.Context, date time.Time) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE event_date = ? AND is_public_holiday = 1",
		date.Format(dateLayout)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check public holiday: %w", err)
	}
	return n > 0, nil
}

// ListEvents returns events ordered by date.
func (db *DB) ListEvents(ctx context.Context, f EventFilter) ([]models.Event, error) {
	var (
		where []string
		args  []any
	)
	if f.Year > 0 {
		where = append(where, "strftime('%Y', event_date) = ?")
		args = append(args, fmt.Sprintf("%04d", f.Year))
	}
	if f.Month > 0 {
		where = append(where, "strftime('%m', event_date) = ?")
		args = append(args, fmt.Sprintf("%02d", f.Month))
	}
	if f.PublicHolidays {
		where = append(where, "is_public_holiday = 1")
	}

	query := `
		SELECT event_id, title, description, event_date, category, tags, is_public_holiday, created_by, created_at
		FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY event_date, event_id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			e                            models.Event
			description, tags, createdBy sql.NullString
			eventDate, createdAt         string
		)
		if err := rows.Scan(&e.ID, &e.Title, &description, &eventDate, &e.Category, &tags,
			&e.IsPublicHoliday, &createdBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Description = description.String
		e.CreatedBy = createdBy.String
		e.Date, _ = time.Parse(dateLayout, eventDate)
		e.CreatedAt = parseTime(createdAt)
		if tags.String != "" {
			e.Tags = strings.Split(tags.String, ",")
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the number of calendar events.
func (db *DB) CountEvents(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}
