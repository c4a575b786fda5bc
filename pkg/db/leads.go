package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/school-assistant/models"
)

// InsertLead stores a new lead with status "new" and returns its id.
func (db *DB) InsertLead(ctx context.Context, name, contact, query string) (int64, error) {
	now := formatTime(time.Now())
	res, err := db.ExecContext(ctx, `
		INSERT INTO leads (name, contact, query, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, name, contact, query, models.LeadNew, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert lead: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get lead ID: %w", err)
	}
	return id, nil
}

// GetLead returns a lead by id.
func (db *DB) GetLead(ctx context.Context, id int64) (*models.Lead, error) {
	row := db.QueryRowContext(ctx, `
		SELECT lead_id, name, contact, query, status, updated_by, created_at, updated_at
		FROM leads WHERE lead_id = ?
	`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lead %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// ListLeads returns leads newest first, optionally restricted to one status.
func (db *DB) ListLeads(ctx context.Context, status models.LeadStatus) ([]models.Lead, error) {
	query := `
		SELECT lead_id, name, contact, query, status, updated_by, created_at, updated_at
		FROM leads`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, lead_id DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

// UpdateLeadStatus moves a lead to status and records who did it.
func (db *DB) UpdateLeadStatus(ctx context.Context, id int64, status models.LeadStatus, updatedBy string) error {
	if !status.Valid() {
		return fmt.Errorf("invalid lead status %q", status)
	}
	res, err := db.ExecContext(ctx, `
		UPDATE leads SET status = ?, updated_by = ?, updated_at = ?
		WHERE lead_id = ?
	`, status, updatedBy, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("lead %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountLeads returns the total number of leads and how many are still new.
func (db *DB) CountLeads(ctx context.Context) (total, fresh int, err error) {
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'new' THEN 1 ELSE 0 END), 0) FROM leads
	`).Scan(&total, &fresh)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return total, fresh, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(r rowScanner) (*models.Lead, error) {
	var (
		l                    models.Lead
		query, updatedBy     sql.NullString
		status               string
		createdAt, updatedAt string
	)
	if err := r.Scan(&l.ID, &l.Name, &l.Contact, &query, &status, &updatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	l.Query = query.String
	l.UpdatedBy = updatedBy.String
	l.Status = models.LeadStatus(status)
	l.CreatedAt = parseTime(createdAt)
	l.UpdatedAt = parseTime(updatedAt)
	return &l, nil
}
