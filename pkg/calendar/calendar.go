// Package calendar manages school events and answers holiday lookups.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dtnitsch/school-assistant/models"
	"github.com/dtnitsch/school-assistant/pkg/db"
)

// ErrInvalidEvent is returned for events missing a title or date.
var ErrInvalidEvent = errors.New("invalid event")

// Event categories.
const (
	CategoryHoliday     = "holiday"
	CategoryCelebration = "celebration"
	CategoryCustom      = "custom"
)

// Repository is the persistence the calendar needs.
type Repository interface {
	InsertEvent(ctx context.Context, e models.Event) (int64, error)
	ListEvents(ctx context.Context, f db.EventFilter) ([]models.Event, error)
	PublicHolidayExists(ctx context.Context, date time.Time) (bool, error)
}

type Calendar struct {
	repo   Repository
	logger *slog.Logger
}

func New(repo Repository, logger *slog.Logger) *Calendar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calendar{repo: repo, logger: logger.With("component", "calendar")}
}

// AddEvent validates and stores e, returning its id.
func (c *Calendar) AddEvent(ctx context.Context, e models.Event) (int64, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return 0, fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if e.Date.IsZero() {
		return 0, fmt.Errorf("%w: date is required", ErrInvalidEvent)
	}
	if e.Category == "" {
		e.Category = CategoryCustom
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return c.repo.InsertEvent(ctx, e)
}

// Events lists events for month/year; zero means any.
func (c *Calendar) Events(ctx context.Context, month, year int) ([]models.Event, error) {
	return c.repo.ListEvents(ctx, db.EventFilter{Month: month, Year: year})
}

// Holidays lists public holidays in year, restricted to month when it is
// non-zero.
func (c *Calendar) Holidays(ctx context.Context, month, year int) ([]models.HolidayEvent, error) {
	events, err := c.repo.ListEvents(ctx, db.EventFilter{Month: month, Year: year, PublicHolidays: true})
	if err != nil {
		return nil, err
	}
	out := make([]models.HolidayEvent, len(events))
	for i, e := range events {
		out[i] = e.Holiday()
	}
	return out, nil
}

type publicHoliday struct {
	month       time.Month
	day         int
	title       string
	description string
}

var fixedHolidays = []publicHoliday{
	{time.January, 26, "Republic Day", "National Holiday"},
	{time.August, 15, "Independence Day", "National Holiday"},
	{time.October, 2, "Gandhi Jayanti", "National Holiday"},
	{time.December, 25, "Christmas Day", "National Holiday"},
}

// Diwali follows the lunar calendar; only known years are seeded.
var diwali = map[int]time.Time{
	2024: time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC),
	2025: time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC),
}

// SeedPublicHolidays adds the national holidays for year and returns how
// many were added. Dates that already carry a public holiday are skipped.
func (c *Calendar) SeedPublicHolidays(ctx context.Context, year int) (int, error) {
	var candidates []models.Event
	for _, h := range fixedHolidays {
		candidates = append(candidates, holidayEvent(time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC), h.title, h.description))
	}
	if d, ok := diwali[year]; ok {
		candidates = append(candidates, holidayEvent(d, "Diwali", "Festival of Lights"))
	}

	added := 0
	for _, e := range candidates {
		exists, err := c.repo.PublicHolidayExists(ctx, e.Date)
		if err != nil {
			return added, err
		}
		if exists {
			continue
		}
		if _, err := c.repo.InsertEvent(ctx, e); err != nil {
			return added, err
		}
		added++
	}
	c.logger.Info("Seeded public holidays", "year", year, "added", added)
	return added, nil
}

func holidayEvent(date time.Time, title, description string) models.Event {
	return models.Event{
		Title:           title,
		Description:     description,
		Date:            date,
		Category:        CategoryHoliday,
		Tags:            []string{"public", "national"},
		IsPublicHoliday: true,
		CreatedBy:       "system",
		CreatedAt:       time.Now(),
	}
}
